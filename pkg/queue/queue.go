// Package queue runs background jobs (order e-mails, staff alerts) on an
// in-memory or Redis-backed list. Jobs travel as JSON tagged with their Go
// type name, so every job type is registered at boot:
//
//	queue.Register(queue.TypeName(&jobs.SendMailJob{}), func() queue.Job { return &jobs.SendMailJob{} })
//	queue.Dispatch(&jobs.SendMailJob{To: "ana@example.com"})
//
// A failing job is pushed back with exponential backoff until it has been
// attempted MaxAttempts times, then recorded as failed.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/cafe/pkg/logger"
	"github.com/shashiranjanraj/cafe/pkg/metrics"
)

type Job interface {
	Handle(ctx context.Context) error
}

// Driver stores encoded envelopes. Pop returns (nil, nil) when it gave up
// waiting without a job.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	PushDelayed(ctx context.Context, payload []byte, delay time.Duration) error
	Pop(ctx context.Context) ([]byte, error)
}

// promoter is implemented by drivers that move delayed jobs with a
// background loop.
type promoter interface {
	Promote(ctx context.Context)
}

// ErrUnknownJob means the envelope names a type nobody registered.
var ErrUnknownJob = errors.New("queue: unknown job type")

type Manager struct {
	mu          sync.RWMutex
	driver      Driver
	registry    map[string]func() Job
	failed      []FailedJob
	maxAttempts int
	backoff     time.Duration
}

type FailedJob struct {
	ID       string
	Type     string
	Err      error
	Attempts int
	FailedAt time.Time
}

type envelope struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Attempts int             `json:"attempts"`
	Payload  json.RawMessage `json:"payload"`
}

var std = &Manager{
	registry:    map[string]func() Job{},
	maxAttempts: 3,
	backoff:     time.Second,
	driver:      NewMemoryDriver(1000),
}

func SetDriver(d Driver) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.driver = d
}

// SetMaxAttempts bounds how often one job runs, including the first try.
func SetMaxAttempts(n int) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.maxAttempts = max(n, 1)
}

// SetBackoff sets the first retry delay. Later retries double it.
func SetBackoff(d time.Duration) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.backoff = d
}

func TypeName(job Job) string { return fmt.Sprintf("%T", job) }

func Register(name string, factory func() Job) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.registry[name] = factory
}

// ─── Dispatch ────────────────────────────────────────────────────────────────

func Dispatch(job Job) error {
	return DispatchCtx(context.Background(), job)
}

func DispatchCtx(ctx context.Context, job Job) error {
	raw, err := encode(job, 0)
	if err != nil {
		return err
	}
	return std.currentDriver().Push(ctx, raw)
}

// DispatchAfter hands job to the driver's delayed set.
func DispatchAfter(ctx context.Context, job Job, delay time.Duration) error {
	raw, err := encode(job, 0)
	if err != nil {
		return err
	}
	return std.currentDriver().PushDelayed(ctx, raw, delay)
}

func encode(job Job, attempts int) ([]byte, error) {
	typeName := TypeName(job)
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("queue: marshal %s: %w", typeName, err)
	}
	return json.Marshal(envelope{ID: uuid.NewString(), Type: typeName, Attempts: attempts, Payload: payload})
}

func (m *Manager) currentDriver() Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.driver
}

// ─── Workers ─────────────────────────────────────────────────────────────────

// StartWorkers runs n workers until ctx ends.
func StartWorkers(ctx context.Context, n int) {
	d := std.currentDriver()
	if p, ok := d.(promoter); ok {
		go p.Promote(ctx)
	}
	for i := 0; i < n; i++ {
		go std.work(ctx, d)
	}
	logger.Info("queue: workers started", "count", n, "driver", fmt.Sprintf("%T", d))
}

func (m *Manager) work(ctx context.Context, d Driver) {
	for ctx.Err() == nil {
		raw, err := d.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(500 * time.Millisecond):
			}
			continue
		}
		if raw != nil {
			m.process(ctx, d, raw)
		}
	}
}

func (m *Manager) process(ctx context.Context, d Driver, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	job, err := m.decode(env)
	if err != nil {
		m.fail(env, err)
		return
	}

	start := time.Now()
	env.Attempts++
	err = job.Handle(ctx)
	if err == nil {
		metrics.RecordQueueJob(env.Type, "success", start)
		logger.Info("queue: job done", "type", env.Type, "id", env.ID, "attempt", env.Attempts)
		return
	}

	m.mu.RLock()
	maxAttempts, backoff := m.maxAttempts, m.backoff
	m.mu.RUnlock()

	if env.Attempts >= maxAttempts {
		metrics.RecordQueueJob(env.Type, "failed", start)
		m.fail(env, err)
		return
	}

	delay := backoff << (env.Attempts - 1)
	logger.Warn("queue: job failed, will retry", "type", env.Type, "id", env.ID, "attempt", env.Attempts, "retry_in", delay, "error", err)
	metrics.RecordQueueJob(env.Type, "retry", start)

	again, _ := json.Marshal(env)
	if err := d.PushDelayed(ctx, again, delay); err != nil {
		m.fail(env, fmt.Errorf("requeue: %w", err))
	}
}

func (m *Manager) decode(env envelope) (Job, error) {
	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, env.Type)
	}
	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		return nil, fmt.Errorf("queue: decode %s: %w", env.Type, err)
	}
	return job, nil
}

// FailedJobs returns the failures seen by this process.
func FailedJobs() []FailedJob {
	std.mu.RLock()
	defer std.mu.RUnlock()
	out := make([]FailedJob, len(std.failed))
	copy(out, std.failed)
	return out
}
