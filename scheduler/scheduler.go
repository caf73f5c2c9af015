// Package scheduler runs the service's background jobs on gocron.
package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskFn is a scheduled job body.
type TaskFn func()

// JobInfo describes a registered job for the admin API.
type JobInfo struct {
	Name    string    `json:"name"`
	Kind    string    `json:"kind"`
	NextRun time.Time `json:"next_run"`
	LastRun time.Time `json:"last_run"`
}

type job struct {
	id   uuid.UUID
	kind string
}

// Scheduler names gocron jobs so they can be replaced and removed by name.
type Scheduler struct {
	mu     sync.Mutex
	s      gocron.Scheduler
	jobs   map[string]job
	logger *zap.Logger
	stop   sync.Once
}

// New creates and starts a Scheduler.
func New(logger *zap.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	s.Start()
	return &Scheduler{s: s, jobs: make(map[string]job), logger: logger}, nil
}

// AddTicker runs fn every interval, replacing any job with the same name.
// A run that is still going when the next is due is skipped.
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(name)

	j, err := s.s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.guard(name, fn)),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.jobs[name] = job{id: j.ID(), kind: "ticker"}
	s.logger.Info("scheduler task registered", zap.String("name", name), zap.Duration("interval", interval))
	return nil
}

// AddDelay runs fn once after delay, replacing any job with the same name.
func (s *Scheduler) AddDelay(name string, delay time.Duration, fn TaskFn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(name)

	var id uuid.UUID
	body := s.guard(name, fn)
	j, err := s.s.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(delay))),
		gocron.NewTask(func() {
			defer func() {
				s.mu.Lock()
				if cur, ok := s.jobs[name]; ok && cur.id == id {
					delete(s.jobs, name)
				}
				s.mu.Unlock()
			}()
			body()
		}),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	id = j.ID()
	s.jobs[name] = job{id: id, kind: "delay"}
	return nil
}

func (s *Scheduler) guard(name string, fn TaskFn) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("scheduler task panicked", zap.String("task", name), zap.Any("recover", r))
			}
		}()
		fn()
	}
}

// Remove stops the named job. Unknown names are ignored.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(name)
}

func (s *Scheduler) removeLocked(name string) {
	j, ok := s.jobs[name]
	if !ok {
		return
	}
	delete(s.jobs, name)
	if err := s.s.RemoveJob(j.id); err != nil {
		s.logger.Debug("remove job", zap.String("name", name), zap.Error(err))
	}
}

// Stop shuts the scheduler down. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stop.Do(func() {
		if err := s.s.Shutdown(); err != nil {
			s.logger.Warn("scheduler shutdown", zap.Error(err))
		}
	})
}

// ListTickers returns the names of the recurring jobs, sorted.
func (s *Scheduler) ListTickers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name, j := range s.jobs {
		if j.kind == "ticker" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Jobs describes every registered job, sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	kinds := make(map[uuid.UUID]string, len(s.jobs))
	for _, j := range s.jobs {
		kinds[j.id] = j.kind
	}
	s.mu.Unlock()

	var out []JobInfo
	for _, j := range s.s.Jobs() {
		kind, ok := kinds[j.ID()]
		if !ok {
			continue
		}
		info := JobInfo{Name: j.Name(), Kind: kind}
		info.NextRun, _ = j.NextRun()
		info.LastRun, _ = j.LastRun()
		out = append(out, info)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}
