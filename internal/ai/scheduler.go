package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Controller is the per-creature AI driven by the Scheduler.
type Controller interface {
	// Start arms the controller.
	Start()

	// Stop disarms the controller and drops its engagement state.
	Stop()

	// Think runs one decision pass. interval is the elapsed scheduling
	// interval in milliseconds.
	Think(interval int64)
}

// Scheduler drives all registered controllers at a fixed interval, strictly
// sequentially: no controller preempts another, and deferred tasks queued
// during a pass run after the pass on the same goroutine. That cooperative
// model is what lets the rest of the engine run lock-free.
type Scheduler struct {
	interval time.Duration

	controllers     sync.Map // objectID -> Controller
	controllerCount int64

	mu      sync.Mutex
	pending []func()

	stopCh chan struct{}
}

// NewScheduler creates a scheduler ticking at the given interval.
func NewScheduler(interval time.Duration) *Scheduler {
	return &Scheduler{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Interval returns the tick interval.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Register registers and starts a controller for a creature.
func (s *Scheduler) Register(objectID uint32, controller Controller) {
	s.controllers.Store(objectID, controller)
	s.mu.Lock()
	s.controllerCount++
	s.mu.Unlock()
	controller.Start()

	slog.Debug("AI controller registered", "objectID", objectID)
}

// Unregister stops and removes a creature's controller.
func (s *Scheduler) Unregister(objectID uint32) {
	value, ok := s.controllers.LoadAndDelete(objectID)
	if !ok {
		return
	}
	s.mu.Lock()
	s.controllerCount--
	s.mu.Unlock()

	value.(Controller).Stop()

	slog.Debug("AI controller unregistered", "objectID", objectID)
}

// Dispatch queues a task to run after the current tick pass. This is how
// follow-up work (the post-selection attack check) avoids recursing into a
// creature mid-tick.
func (s *Scheduler) Dispatch(task func()) {
	s.mu.Lock()
	s.pending = append(s.pending, task)
	s.mu.Unlock()
}

// Run drives the tick loop until the context is canceled or Stop is called.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("AI scheduler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("AI scheduler stopping")
			return ctx.Err()

		case <-s.stopCh:
			slog.Info("AI scheduler stopped")
			return nil

		case <-ticker.C:
			s.TickAll(s.interval.Milliseconds())
		}
	}
}

// Stop terminates the tick loop.
func (s *Scheduler) Stop() {
	close(s.stopCh)
}

// TickAll runs one pass over every controller and then drains the deferred
// task queue. Tasks queued by the drained tasks themselves wait for the
// next pass, which bounds the work done per tick.
func (s *Scheduler) TickAll(interval int64) {
	count := 0
	s.controllers.Range(func(_, value any) bool {
		value.(Controller).Think(interval)
		count++
		return true
	})

	s.mu.Lock()
	tasks := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, task := range tasks {
		task()
	}

	if count > 0 && IsDebugEnabled() {
		slog.Debug("AI tick completed", "controllers", count, "deferred", len(tasks))
	}
}

// Count returns the number of registered controllers.
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.controllerCount)
}

// Controller returns the controller registered for a creature.
func (s *Scheduler) Controller(objectID uint32) (Controller, error) {
	value, ok := s.controllers.Load(objectID)
	if !ok {
		return nil, fmt.Errorf("controller not found for objectID %d", objectID)
	}
	return value.(Controller), nil
}
