package testplan

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

// PlanScheduler is responsible for scheduling periodic plan runs.
type PlanScheduler interface {
	Start(ctx context.Context) error
	Stop() error
	RegisterCallback(func() error)
	WaitForShutdown(ctx context.Context) error
	Stopped() bool
}

// DefaultPlanScheduler implements the PlanScheduler interface.
type DefaultPlanScheduler struct {
	interval time.Duration
	runOnce  bool
	logger   log.Logger
	callback func() error

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

var _ PlanScheduler = (*DefaultPlanScheduler)(nil)

// NewDefaultPlanScheduler creates a new DefaultPlanScheduler.
func NewDefaultPlanScheduler(interval time.Duration, runOnce bool, logger log.Logger) *DefaultPlanScheduler {
	return &DefaultPlanScheduler{
		interval: interval,
		runOnce:  runOnce,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// RegisterCallback registers the callback to be called when the plan should run.
func (s *DefaultPlanScheduler) RegisterCallback(callback func() error) {
	s.callback = callback
}

// Start runs the callback once, then every interval unless in run-once mode.
// The error of the first run is returned; later errors are logged.
func (s *DefaultPlanScheduler) Start(ctx context.Context) error {
	if s.callback == nil {
		return errors.New("callback must be registered before starting scheduler")
	}

	s.done = make(chan struct{})
	s.running.Store(true)

	if s.runOnce {
		s.logger.Info("Starting scheduler in run-once mode")
		return s.callback()
	}

	s.logger.Info("Starting scheduler in continuous mode", "interval", s.interval)

	if err := s.callback(); err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Debug("Starting periodic plan runner goroutine", "interval", s.interval)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !s.running.Load() {
					s.logger.Debug("Scheduler stopped, exiting periodic plan runner")
					return
				}

				s.logger.Info("Running plan")
				if err := s.callback(); err != nil {
					s.logger.Error("Error running plan", "error", err)
				}

			case <-s.done:
				s.logger.Debug("Done signal received, stopping periodic plan runner")
				return

			case <-ctx.Done():
				s.logger.Debug("Context canceled, stopping periodic plan runner")
				s.running.Store(false)
				return
			}
		}
	}()

	return nil
}

// Stop stops the scheduler.
func (s *DefaultPlanScheduler) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		s.logger.Debug("Scheduler already stopped, nothing to do")
		return nil
	}

	s.logger.Debug("Sending done signal to goroutines")
	close(s.done)
	return nil
}

// Stopped returns true if the scheduler is stopped.
func (s *DefaultPlanScheduler) Stopped() bool {
	return !s.running.Load()
}

// WaitForShutdown blocks until all goroutines have terminated.
func (s *DefaultPlanScheduler) WaitForShutdown(ctx context.Context) error {
	s.logger.Debug("Waiting for all goroutines to terminate")

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Debug("All goroutines terminated successfully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Timed out waiting for goroutines to terminate", "error", ctx.Err())
		return ctx.Err()
	}
}
