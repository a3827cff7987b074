// Package schedule runs recurring maintenance tasks inside the server
// process.
//
//	schedule.Daily().At("03:00").Name("carts:prune").WithoutOverlapping().Run(prune)
//	schedule.Every(10 * time.Minute).Run(refresh)
//	schedule.Cron("*/15 8-18 * * 1-5").Run(report)
//	schedule.Start(ctx)
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shashiranjanraj/cafe/pkg/logger"
)

type Task func(ctx context.Context)

// timing yields the first run time strictly after t.
type timing interface {
	next(t time.Time) time.Time
	String() string
}

type Job struct {
	s         *Scheduler
	name      string
	when      timing
	noOverlap bool
	err       error

	task    Task
	due     time.Time
	running atomic.Bool
}

type Scheduler struct {
	mu   sync.Mutex
	jobs []*Job
	wg   sync.WaitGroup
	now  func() time.Time
}

func New() *Scheduler {
	return &Scheduler{now: time.Now}
}

var std = New()

// ─── Builders ────────────────────────────────────────────────────────────────

func (s *Scheduler) Every(d time.Duration) *Job {
	j := &Job{s: s, when: interval(d)}
	if d <= 0 {
		j.err = fmt.Errorf("schedule: interval must be positive, got %s", d)
	}
	return j
}

func (s *Scheduler) Hourly() *Job { return s.Every(time.Hour) }

// Daily runs at midnight local time unless At moves it.
func (s *Scheduler) Daily() *Job {
	return &Job{s: s, when: daily{}}
}

// Cron takes a five field expression: minute hour day-of-month month
// day-of-week. Fields accept *, n, a-b, */step and comma lists.
func (s *Scheduler) Cron(expr string) *Job {
	c, err := parseCron(expr)
	return &Job{s: s, when: c, err: err}
}

func Every(d time.Duration) *Job { return std.Every(d) }
func Hourly() *Job              { return std.Hourly() }
func Daily() *Job               { return std.Daily() }
func Cron(expr string) *Job     { return std.Cron(expr) }

// At sets the wall clock time, "HH:MM", of a Daily job.
func (j *Job) At(hhmm string) *Job {
	d, ok := j.when.(daily)
	if !ok {
		j.err = fmt.Errorf("schedule: At only applies to Daily jobs")
		return j
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		j.err = fmt.Errorf("schedule: bad time %q: %w", hhmm, err)
		return j
	}
	d.hour, d.min = t.Hour(), t.Minute()
	j.when = d
	return j
}

func (j *Job) Name(name string) *Job {
	j.name = name
	return j
}

// WithoutOverlapping skips a run while the previous one is still going.
func (j *Job) WithoutOverlapping() *Job {
	j.noOverlap = true
	return j
}

// Run registers the job. A job built with invalid options is logged and
// dropped.
func (j *Job) Run(task Task) *Job {
	if j.err != nil {
		logger.Error("schedule: job rejected", "job", j.name, "error", j.err)
		return j
	}
	j.task = task

	s := j.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if j.name == "" {
		j.name = fmt.Sprintf("job-%d", len(s.jobs)+1)
	}
	j.due = j.when.next(s.now())
	s.jobs = append(s.jobs, j)
	return j
}

// Err reports why the job was rejected, if it was.
func (j *Job) Err() error { return j.err }

// ─── Running ─────────────────────────────────────────────────────────────────

// Start ticks every second until ctx ends, then waits for running tasks.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		logger.Info("schedule: started", "jobs", len(s.List()))
		for {
			select {
			case <-ctx.Done():
				s.wg.Wait()
				logger.Info("schedule: stopped")
				return
			case <-ticker.C:
				s.Tick(ctx, s.now())
			}
		}
	}()
}

// Tick launches every job that is due at now and returns their names.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) []string {
	s.mu.Lock()
	var due []*Job
	for _, j := range s.jobs {
		if !now.Before(j.due) {
			j.due = j.when.next(now)
			due = append(due, j)
		}
	}
	s.mu.Unlock()

	var launched []string
	for _, j := range due {
		if j.noOverlap && !j.running.CompareAndSwap(false, true) {
			logger.Warn("schedule: previous run still going, skipping", "job", j.name)
			continue
		}
		if !j.noOverlap {
			j.running.Store(true)
		}
		launched = append(launched, j.name)
		s.wg.Add(1)
		go s.execute(ctx, j)
	}
	return launched
}

// Wait blocks until every launched task returns.
func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) execute(ctx context.Context, j *Job) {
	defer s.wg.Done()
	defer j.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("schedule: job panicked", "job", j.name, "panic", r)
		}
	}()

	start := time.Now()
	j.task(ctx)
	logger.Info("schedule: job finished", "job", j.name, "took", time.Since(start).Round(time.Millisecond))
}

// List describes the registered jobs and their next run, for the CLI.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, fmt.Sprintf("%s  [%s]  next %s", j.name, j.when, j.due.Format(time.RFC3339)))
	}
	return out
}

func Start(ctx context.Context) { std.Start(ctx) }
func List() []string            { return std.List() }

// ─── Timings ─────────────────────────────────────────────────────────────────

type interval time.Duration

func (d interval) next(t time.Time) time.Time { return t.Add(time.Duration(d)) }
func (d interval) String() string             { return "every " + time.Duration(d).String() }

type daily struct{ hour, min int }

func (d daily) next(t time.Time) time.Time {
	at := time.Date(t.Year(), t.Month(), t.Day(), d.hour, d.min, 0, 0, t.Location())
	if !at.After(t) {
		at = at.AddDate(0, 0, 1)
	}
	return at
}

func (d daily) String() string { return fmt.Sprintf("daily at %02d:%02d", d.hour, d.min) }

type cron struct {
	expr   string
	fields [5]map[int]bool
}

var cronRanges = [5][2]int{{0, 59}, {0, 23}, {1, 31}, {1, 12}, {0, 6}}

func parseCron(expr string) (cron, error) {
	c := cron{expr: expr}
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return c, fmt.Errorf("schedule: cron %q needs 5 fields", expr)
	}
	for i, p := range parts {
		set, err := parseCronField(p, cronRanges[i][0], cronRanges[i][1])
		if err != nil {
			return c, fmt.Errorf("schedule: cron %q: %w", expr, err)
		}
		c.fields[i] = set
	}
	return c, nil
}

func parseCronField(field string, lo, hi int) (map[int]bool, error) {
	set := map[int]bool{}
	for _, item := range strings.Split(field, ",") {
		rng, stepStr, hasStep := strings.Cut(item, "/")
		step := 1
		if hasStep {
			n, err := strconv.Atoi(stepStr)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("bad step in %q", item)
			}
			step = n
		}

		from, to := lo, hi
		switch {
		case rng == "*":
		case strings.Contains(rng, "-"):
			a, b, _ := strings.Cut(rng, "-")
			var errA, errB error
			from, errA = strconv.Atoi(a)
			to, errB = strconv.Atoi(b)
			if errA != nil || errB != nil {
				return nil, fmt.Errorf("bad range %q", item)
			}
		default:
			n, err := strconv.Atoi(rng)
			if err != nil {
				return nil, fmt.Errorf("bad value %q", item)
			}
			from, to = n, n
			if hasStep {
				to = hi
			}
		}
		if from < lo || to > hi || from > to {
			return nil, fmt.Errorf("%q out of range %d-%d", item, lo, hi)
		}
		for v := from; v <= to; v += step {
			set[v] = true
		}
	}
	return set, nil
}

func (c cron) matches(t time.Time) bool {
	return c.fields[0][t.Minute()] && c.fields[1][t.Hour()] &&
		c.fields[2][t.Day()] && c.fields[3][int(t.Month())] && c.fields[4][int(t.Weekday())]
}

// next scans minute by minute, bounded to a year ahead.
func (c cron) next(t time.Time) time.Time {
	m := t.Truncate(time.Minute).Add(time.Minute)
	for limit := m.AddDate(1, 0, 0); m.Before(limit); m = m.Add(time.Minute) {
		if c.matches(m) {
			return m
		}
	}
	return t.AddDate(100, 0, 0)
}

func (c cron) String() string { return "cron " + c.expr }
