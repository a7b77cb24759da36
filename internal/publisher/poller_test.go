package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dmcorrales/brandpulse-backend/pkg/db/models"
	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
)

type fakeProcessor struct {
	processed []uuid.UUID
	err       error
}

func (f *fakeProcessor) ProcessJob(ctx context.Context, jobID uuid.UUID) error {
	f.processed = append(f.processed, jobID)
	return f.err
}

func newTestPoller(t *testing.T, store *fakeStore, proc JobProcessor, now time.Time) *Poller {
	t.Helper()
	poller, err := NewPoller(PollerParams{
		Logger:         testLogger(),
		Repository:     store,
		Processor:      proc,
		Interval:       time.Hour,
		BatchSize:      10,
		MaxRetries:     3,
		RetryBaseDelay: 5 * time.Minute,
		Now:            func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}
	return poller
}

func failedJob(attempts int, lastAttempt time.Time) models.PublishingJob {
	return models.PublishingJob{
		ID:            uuid.New(),
		Platform:      enums.PlatformFacebook,
		Status:        enums.JobStatusFailed,
		AttemptCount:  attempts,
		LastAttemptAt: &lastAttempt,
	}
}

func TestRetryEligibleBackoffWindows(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	base := 5 * time.Minute

	cases := []struct {
		name string
		job  models.PublishingJob
		now  time.Time
		want bool
	}{
		{"first retry before window", failedJob(1, t0), t0.Add(4 * time.Minute), false},
		{"first retry at window", failedJob(1, t0), t0.Add(5 * time.Minute), true},
		{"second retry just inside window", failedJob(2, t0), t0.Add(9 * time.Minute), false},
		{"second retry past window", failedJob(2, t0), t0.Add(11 * time.Minute), true},
		{"third retry needs twenty minutes", failedJob(3, t0), t0.Add(19 * time.Minute), false},
		{"no attempt recorded", models.PublishingJob{Status: enums.JobStatusFailed}, t0, true},
	}
	for _, tc := range cases {
		if got := RetryEligible(tc.job, tc.now, base); got != tc.want {
			t.Errorf("%s: eligible=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestTickProcessesPendingBeforeRetries(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pending := models.PublishingJob{ID: uuid.New(), Status: enums.JobStatusPending, Platform: enums.PlatformInstagram}
	retry := failedJob(1, now.Add(-time.Hour))

	store := newFakeStore()
	store.duePending = []models.PublishingJob{pending}
	store.retryable = []models.PublishingJob{retry}

	proc := &fakeProcessor{}
	poller := newTestPoller(t, store, proc, now)

	if err := poller.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(proc.processed) != 2 {
		t.Fatalf("unexpected processed count: %d", len(proc.processed))
	}
	if proc.processed[0] != pending.ID || proc.processed[1] != retry.ID {
		t.Fatalf("pending job must run before retries")
	}
}

func TestTickFiltersRetriesStillInBackoff(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	eligible := failedJob(1, now.Add(-6*time.Minute))
	waiting := failedJob(2, now.Add(-9*time.Minute))

	store := newFakeStore()
	store.retryable = []models.PublishingJob{eligible, waiting}

	proc := &fakeProcessor{}
	poller := newTestPoller(t, store, proc, now)

	if err := poller.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(proc.processed) != 1 || proc.processed[0] != eligible.ID {
		t.Fatalf("backoff filter selected wrong jobs: %v", proc.processed)
	}
}

func TestTickAggregatesErrorsAndContinues(t *testing.T) {
	now := time.Now()
	store := newFakeStore()
	store.duePendingErr = errors.New("store offline")
	store.retryable = []models.PublishingJob{failedJob(1, now.Add(-time.Hour))}

	proc := &fakeProcessor{}
	poller := newTestPoller(t, store, proc, now)

	err := poller.tick(context.Background())
	if err == nil {
		t.Fatalf("expected aggregated tick error")
	}
	if len(proc.processed) != 1 {
		t.Fatalf("retry pass skipped after pending query failure")
	}
}

func TestRunTickSwallowsErrors(t *testing.T) {
	store := newFakeStore()
	store.duePendingErr = errors.New("store offline")
	poller := newTestPoller(t, store, &fakeProcessor{}, time.Now())

	// Must not panic or propagate; future ticks stay alive.
	poller.runTick(context.Background())
	poller.runTick(context.Background())
	if got := store.duePendingHits.Load(); got != 2 {
		t.Fatalf("expected both ticks to query the store, got %d", got)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	store := newFakeStore()
	poller := newTestPoller(t, store, &fakeProcessor{}, time.Now())

	poller.Start(context.Background())
	first := poller.done
	poller.Start(context.Background())
	if poller.done != first {
		t.Fatalf("second Start created a new timer loop")
	}
	poller.Stop()
}

func TestStopIsIdempotent(t *testing.T) {
	store := newFakeStore()
	poller := newTestPoller(t, store, &fakeProcessor{}, time.Now())

	poller.Stop()

	poller.Start(context.Background())
	poller.Stop()
	poller.Stop()

	if poller.cancel != nil || poller.done != nil {
		t.Fatalf("poller state not reset after Stop")
	}
}

func TestStartRunsImmediateFirstTick(t *testing.T) {
	store := newFakeStore()
	proc := &fakeProcessor{}
	poller := newTestPoller(t, store, proc, time.Now())

	poller.Start(context.Background())
	deadline := time.After(2 * time.Second)
	for store.duePendingHits.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("first tick did not run")
		case <-time.After(10 * time.Millisecond):
		}
	}
	poller.Stop()
}
