package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	syncdomain "migralog-backend/internal/sync/domain"
	"migralog-backend/internal/sync/repository"
)

// RowMapper turns a source record into the remote-store row for its domain.
type RowMapper func(userID string, rec *syncdomain.Record) syncdomain.Row

// DomainConfig describes one sync domain: which record type it tracks, how
// far the first-run backfill looks back, and where staged rows land remotely.
type DomainConfig struct {
	Name         string
	RecordType   string
	LookbackDays int
	RemoteTable  string
	ConflictKey  string
	MapRecord    RowMapper
}

// Options carries the tunables shared by every domain engine.
type Options struct {
	BatchSize    int           // outbox rows drained per push cycle
	MaxPollPages int           // hard ceiling on the hasMore loop
	RetryCeiling int           // retryable failures before an item goes failed
	Retention    time.Duration // how long permanent_failure rows are kept
}

// DefaultOptions mirrors the tuning the sync jobs shipped with.
func DefaultOptions() Options {
	return Options{
		BatchSize:    200,
		MaxPollPages: 50,
		RetryCeiling: 8,
		Retention:    30 * 24 * time.Hour,
	}
}

// syncEngine implements SyncEngine for one domain. All state lives in the
// outbox and sync-state tables, so a cancelled run resumes cleanly on the
// next invocation.
type syncEngine struct {
	cfg    DomainConfig
	opts   Options
	source syncdomain.HealthSource
	remote syncdomain.RemoteStore
	outbox repository.OutboxRepository
	state  repository.SyncStateRepository
	tokens syncdomain.TokenProvider
	now    func() time.Time
}

// NewSyncEngine creates a new instance of syncEngine
func NewSyncEngine(
	cfg DomainConfig,
	opts Options,
	source syncdomain.HealthSource,
	remote syncdomain.RemoteStore,
	outbox repository.OutboxRepository,
	state repository.SyncStateRepository,
	tokens syncdomain.TokenProvider,
) SyncEngine {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 200
	}
	if opts.MaxPollPages <= 0 {
		opts.MaxPollPages = 50
	}
	if opts.RetryCeiling <= 0 {
		opts.RetryCeiling = 8
	}
	if opts.Retention <= 0 {
		opts.Retention = 30 * 24 * time.Hour
	}
	return &syncEngine{
		cfg:    cfg,
		opts:   opts,
		source: source,
		remote: remote,
		outbox: outbox,
		state:  state,
		tokens: tokens,
		now:    time.Now,
	}
}

func (e *syncEngine) Domain() string {
	return e.cfg.Name
}

// RunOnce performs one full sync cycle for a user: backfill or incremental
// poll on the read side, then a bounded push of the outbox, then cleanup.
func (e *syncEngine) RunOnce(ctx context.Context, userID string) syncdomain.JobResult {
	accessToken, err := e.tokens.GetValidAccessToken(ctx, userID)
	if err != nil {
		log.Printf("[SyncEngine:%s] token provider error for user %s: %v", e.cfg.Name, userID, err)
		return syncdomain.JobRetry
	}
	if accessToken == "" {
		// An expired or not-yet-refreshed token is transient; defer.
		return syncdomain.JobRetry
	}

	state, err := e.state.Get(userID, e.cfg.Name)
	if err != nil {
		log.Printf("[SyncEngine:%s] failed to load sync state: %v", e.cfg.Name, err)
		return syncdomain.JobRetry
	}

	if state == nil || state.ChangesToken == "" {
		if err := e.backfill(ctx, userID, accessToken); err != nil {
			if errors.Is(err, syncdomain.ErrPermissionDenied) {
				log.Printf("[SyncEngine:%s] permission denied for user %s, giving up", e.cfg.Name, userID)
				return syncdomain.JobFailure
			}
			log.Printf("[SyncEngine:%s] backfill failed for user %s: %v", e.cfg.Name, userID, err)
			return syncdomain.JobRetry
		}
	} else {
		if err := e.poll(ctx, userID, accessToken, state.ChangesToken); err != nil {
			if errors.Is(err, syncdomain.ErrPermissionDenied) {
				return syncdomain.JobFailure
			}
			log.Printf("[SyncEngine:%s] poll failed for user %s: %v", e.cfg.Name, userID, err)
			return syncdomain.JobRetry
		}
	}

	result := e.push(ctx, userID, accessToken)

	if purged, err := e.outbox.PurgePermanentFailures(e.now().Add(-e.opts.Retention)); err != nil {
		log.Printf("[SyncEngine:%s] purge failed: %v", e.cfg.Name, err)
	} else if purged > 0 {
		log.Printf("[SyncEngine:%s] purged %d expired permanent failures", e.cfg.Name, purged)
	}

	return result
}

// backfill bulk-reads the lookback window and stages everything, then mints
// the first changes token. The token must be minted only after staging
// completes: minting first would lose records created in between, minting
// after means the next poll resumes exactly where the backfill left off.
func (e *syncEngine) backfill(ctx context.Context, userID, accessToken string) error {
	to := e.now()
	from := to.AddDate(0, 0, -e.cfg.LookbackDays)

	records, err := e.source.ReadRecords(ctx, accessToken, e.cfg.RecordType, from, to)
	if err != nil {
		return err
	}

	for i := range records {
		item := &syncdomain.OutboxItem{
			UserID:     userID,
			Domain:     e.cfg.Name,
			ExternalID: records[i].ID,
			Operation:  syncdomain.OperationUpsert,
		}
		if err := e.outbox.Stage(item); err != nil {
			return err
		}
	}

	token, err := e.source.ChangesToken(ctx, accessToken, e.cfg.RecordType)
	if err != nil {
		return err
	}
	if err := e.state.SaveToken(userID, e.cfg.Name, token); err != nil {
		return err
	}

	log.Printf("[SyncEngine:%s] backfilled %d records for user %s", e.cfg.Name, len(records), userID)
	return nil
}

// poll drains the incremental change feed page by page, bounded by the page
// ceiling so a pathological feed cannot spin the job forever.
func (e *syncEngine) poll(ctx context.Context, userID, accessToken, token string) error {
	for page := 0; page < e.opts.MaxPollPages; page++ {
		p, err := e.source.Changes(ctx, accessToken, token)
		if err != nil {
			return err
		}

		if p.TokenExpired {
			// The old cursor is gone; re-anchor at now and accept the gap.
			// The next scheduled run resumes cleanly from the fresh token.
			fresh, err := e.source.ChangesToken(ctx, accessToken, e.cfg.RecordType)
			if err != nil {
				return err
			}
			log.Printf("[SyncEngine:%s] changes token expired for user %s, re-anchored", e.cfg.Name, userID)
			return e.state.SaveToken(userID, e.cfg.Name, fresh)
		}

		for _, change := range p.Changes {
			item := &syncdomain.OutboxItem{
				UserID: userID,
				Domain: e.cfg.Name,
			}
			if change.IsDeletion() {
				item.ExternalID = change.DeletedID
				item.Operation = syncdomain.OperationDelete
			} else if change.Record != nil {
				item.ExternalID = change.Record.ID
				item.Operation = syncdomain.OperationUpsert
			} else {
				continue
			}
			if err := e.outbox.Stage(item); err != nil {
				return err
			}
		}

		// An empty cursor would wipe the anchor and force a full
		// re-backfill next cycle; keep the last good one instead.
		if p.NextToken != "" {
			token = p.NextToken
			if err := e.state.SaveToken(userID, e.cfg.Name, token); err != nil {
				return err
			}
		}

		if !p.HasMore {
			break
		}
	}

	return e.state.TouchPoll(userID, e.cfg.Name, e.now())
}

// push drains one bounded batch of pending outbox items, oldest first.
// Upserts re-read the record from the source so the freshest value is
// pushed, never the possibly stale content the outbox was staged with.
func (e *syncEngine) push(ctx context.Context, userID, accessToken string) syncdomain.JobResult {
	batch, err := e.outbox.FetchPending(userID, e.cfg.Name, e.opts.BatchSize)
	if err != nil {
		log.Printf("[SyncEngine:%s] failed to read outbox: %v", e.cfg.Name, err)
		return syncdomain.JobRetry
	}

	// Recorded even for an empty batch so staleness tooling can tell a
	// stalled job from an idle one.
	if err := e.state.TouchPush(userID, e.cfg.Name, e.now()); err != nil {
		log.Printf("[SyncEngine:%s] failed to record push attempt: %v", e.cfg.Name, err)
	}

	if len(batch) == 0 {
		return syncdomain.JobSuccess
	}

	var upserts []syncdomain.OutboxItem
	var deletes []syncdomain.OutboxItem
	for _, item := range batch {
		if item.Operation == syncdomain.OperationDelete {
			deletes = append(deletes, item)
		} else {
			upserts = append(upserts, item)
		}
	}

	result := syncdomain.JobSuccess

	for _, item := range upserts {
		rec, err := e.source.ReadRecord(ctx, accessToken, e.cfg.RecordType, item.ExternalID)
		if err != nil {
			if markErr := e.outbox.MarkRetryableFailure(item.ID, err.Error(), e.opts.RetryCeiling); markErr != nil {
				log.Printf("[SyncEngine:%s] failed to record retry for item %d: %v", e.cfg.Name, item.ID, markErr)
			}
			result = syncdomain.JobRetry
			continue
		}
		if rec == nil {
			// Gone from the source; the deletion tombstone arrives with the
			// next poll, so this intent is moot.
			if err := e.outbox.Remove([]uint{item.ID}); err != nil {
				log.Printf("[SyncEngine:%s] failed to drop stale item %d: %v", e.cfg.Name, item.ID, err)
			}
			continue
		}

		outcome := e.remote.Upsert(ctx, e.cfg.RemoteTable, e.cfg.MapRecord(userID, rec), e.cfg.ConflictKey)
		if r := e.reconcile(item, outcome); r == syncdomain.JobRetry {
			result = syncdomain.JobRetry
		}
	}

	if len(deletes) > 0 {
		ids := make([]string, 0, len(deletes))
		for _, item := range deletes {
			ids = append(ids, item.ExternalID)
		}
		outcome := e.remote.Delete(ctx, e.cfg.RemoteTable, "external_id", ids, userID)
		for _, item := range deletes {
			if r := e.reconcile(item, outcome); r == syncdomain.JobRetry {
				result = syncdomain.JobRetry
			}
		}
	}

	return result
}

// reconcile applies one write outcome to its outbox item.
func (e *syncEngine) reconcile(item syncdomain.OutboxItem, outcome syncdomain.Outcome) syncdomain.JobResult {
	switch outcome.Class {
	case syncdomain.OutcomeSuccess:
		if err := e.outbox.Remove([]uint{item.ID}); err != nil {
			log.Printf("[SyncEngine:%s] failed to remove item %d: %v", e.cfg.Name, item.ID, err)
			return syncdomain.JobRetry
		}
		return syncdomain.JobSuccess
	case syncdomain.OutcomePermanent:
		if err := e.outbox.MarkPermanentFailure(item.ID, outcome.Message); err != nil {
			log.Printf("[SyncEngine:%s] failed to mark item %d permanent: %v", e.cfg.Name, item.ID, err)
		}
		// A poisoned item must not block the rest of the batch.
		return syncdomain.JobSuccess
	default:
		if err := e.outbox.MarkRetryableFailure(item.ID, outcome.Message, e.opts.RetryCeiling); err != nil {
			log.Printf("[SyncEngine:%s] failed to record retry for item %d: %v", e.cfg.Name, item.ID, err)
		}
		return syncdomain.JobRetry
	}
}

func (e *syncEngine) Status(userID string) (*SyncStatus, error) {
	state, err := e.state.Get(userID, e.cfg.Name)
	if err != nil {
		return nil, err
	}
	counts, err := e.outbox.CountByStatus(userID, e.cfg.Name)
	if err != nil {
		return nil, err
	}

	status := &SyncStatus{
		Domain: e.cfg.Name,
		Outbox: counts,
	}
	if state != nil {
		status.Backfilled = state.ChangesToken != ""
		status.LastPollAt = state.LastPollAt
		status.LastPushAt = state.LastPushAt
	}
	return status, nil
}

func (e *syncEngine) RetryFailed(userID string) (int64, error) {
	return e.outbox.ResetFailed(userID, e.cfg.Name)
}
