package notification

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	authdomain "migralog-backend/internal/auth/domain"
	authrepo "migralog-backend/internal/auth/repository"
	syncdomain "migralog-backend/internal/sync/domain"
	syncscheduler "migralog-backend/internal/sync/scheduler"
	syncusecase "migralog-backend/internal/sync/usecase"
)

type countingEngine struct {
	domain string
	runs   int64
}

func (e *countingEngine) Domain() string { return e.domain }

func (e *countingEngine) RunOnce(ctx context.Context, userID string) syncdomain.JobResult {
	atomic.AddInt64(&e.runs, 1)
	return syncdomain.JobSuccess
}

func (e *countingEngine) Status(userID string) (*syncusecase.SyncStatus, error) { return nil, nil }

func (e *countingEngine) RetryFailed(userID string) (int64, error) { return 0, nil }

func newTestService(t *testing.T) (*Service, *countingEngine, *authdomain.User) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&authdomain.User{}, &authdomain.RefreshToken{}))

	userRepo := authrepo.NewUserRepository(db)
	user := &authdomain.User{Email: "ana@example.com", HealthRefreshToken: "rt"}
	require.NoError(t, userRepo.Create(user))

	engine := &countingEngine{domain: "nutrition"}
	scheduler := syncscheduler.NewSyncScheduler([]syncusecase.SyncEngine{engine}, userRepo, time.Hour)

	svc := &Service{
		userRepo:     userRepo,
		scheduler:    scheduler,
		lastSequence: make(map[string]uint64),
	}
	return svc, engine, user
}

func message(t *testing.T, userID, domain string, sequence uint64) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(DataUpdateNotification{UserID: userID, Domain: domain, Sequence: sequence})
	require.NoError(t, err)
	return &pubsub.Message{Data: data}
}

func TestConcurrentDeliveriesTriggerExactlyOneSync(t *testing.T) {
	svc, engine, user := newTestService(t)

	// Receive invokes the handler from many goroutines; redelivered
	// copies of the same message must collapse to a single sync run.
	msg := message(t, user.ID, "nutrition", 7)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.handleMessage(context.Background(), msg)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&engine.runs))
}

func TestNewSequencesAdvanceCursor(t *testing.T) {
	svc, engine, user := newTestService(t)

	svc.handleMessage(context.Background(), message(t, user.ID, "nutrition", 1))
	svc.handleMessage(context.Background(), message(t, user.ID, "nutrition", 2))
	// An out-of-order redelivery is dropped.
	svc.handleMessage(context.Background(), message(t, user.ID, "nutrition", 1))

	assert.Equal(t, int64(2), atomic.LoadInt64(&engine.runs))
}

func TestUnnumberedMessagesAlwaysTrigger(t *testing.T) {
	svc, engine, user := newTestService(t)

	svc.handleMessage(context.Background(), message(t, user.ID, "nutrition", 0))
	svc.handleMessage(context.Background(), message(t, user.ID, "nutrition", 0))

	assert.Equal(t, int64(2), atomic.LoadInt64(&engine.runs))
}

func TestDisconnectedUserIsIgnored(t *testing.T) {
	svc, engine, user := newTestService(t)

	found, err := svc.userRepo.FindByID(user.ID)
	require.NoError(t, err)
	found.HealthRefreshToken = ""
	require.NoError(t, svc.userRepo.Update(found))

	svc.handleMessage(context.Background(), message(t, user.ID, "nutrition", 1))

	assert.Zero(t, atomic.LoadInt64(&engine.runs))
}
