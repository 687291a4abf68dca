package domain

import "context"

// OutcomeClass classifies the result of a single remote write attempt.
type OutcomeClass int

const (
	// OutcomeSuccess includes duplicate-key conflicts: the record already
	// exists remotely in the desired state, so the write is vacuously done.
	OutcomeSuccess OutcomeClass = iota
	// OutcomeRetryable covers network failures and 5xx responses.
	OutcomeRetryable
	// OutcomePermanent covers 4xx client errors that retrying cannot fix.
	OutcomePermanent
)

// Outcome is the classified result of a remote write.
type Outcome struct {
	Class   OutcomeClass
	Message string
}

func Success() Outcome {
	return Outcome{Class: OutcomeSuccess}
}

func Retryable(msg string) Outcome {
	return Outcome{Class: OutcomeRetryable, Message: msg}
}

func Permanent(msg string) Outcome {
	return Outcome{Class: OutcomePermanent, Message: msg}
}

// Row is one remote-store row payload.
type Row map[string]interface{}

// RemoteStore is the write/read surface of the cloud database. Upserts are
// idempotent on the conflict key (external record id + owner discriminator).
type RemoteStore interface {
	Upsert(ctx context.Context, table string, row Row, conflictKey string) Outcome
	Delete(ctx context.Context, table string, idColumn string, ids []string, userID string) Outcome
	Query(ctx context.Context, table string, filters map[string]string) ([]Row, error)
}

// JobResult is the exit contract of one scheduled sync invocation.
type JobResult int

const (
	// JobSuccess means work completed or there was nothing to do.
	JobSuccess JobResult = iota
	// JobRetry means a transient failure; the run should be rescheduled.
	JobRetry
	// JobFailure means the run cannot succeed without user action
	// (e.g. a revoked permission) and must not be retried automatically.
	JobFailure
)

func (r JobResult) String() string {
	switch r {
	case JobSuccess:
		return "success"
	case JobRetry:
		return "retry"
	case JobFailure:
		return "failure"
	default:
		return "unknown"
	}
}
