// Package testplan runs the suites of a plan file against the registered
// templates and reports the results, once or periodically.
package testplan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ethereum-optimism/infra/op-testplan/logging"
	"github.com/ethereum-optimism/infra/op-testplan/metrics"
	"github.com/ethereum-optimism/infra/op-testplan/notification"
	"github.com/ethereum-optimism/infra/op-testplan/registry"
	"github.com/ethereum-optimism/infra/op-testplan/reporting"
	"github.com/ethereum-optimism/infra/op-testplan/runner"
	"github.com/ethereum-optimism/infra/op-testplan/service"
	"github.com/ethereum-optimism/infra/op-testplan/types"
	"github.com/ethereum-optimism/infra/op-testplan/ui"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
)

// planService implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = (*planService)(nil)

// RunOutcome is what one run of the plan produced
type RunOutcome struct {
	RunID  string
	Result *notification.Result
	Tree   *types.TestTree
}

// planService runs a plan on a schedule and reports every run.
type planService struct {
	config    *Config
	version   string
	registry  *registry.Registry
	builder   *runner.Builder
	metrics   *metrics.Listener
	scheduler PlanScheduler
	service   *service.Service
	out       io.Writer

	mu          sync.Mutex
	last        *RunOutcome
	lastResults []byte

	running          atomic.Bool
	shutdownCallback func(error) // Callback to signal application shutdown
}

// New creates the service for config. Templates are the ones plan suites
// may name.
func New(config *Config, version string, templates []*types.Template, shutdownCallback func(error)) (*planService, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if _, err := reporting.NewConsoleFormatter(config.Output, ""); err != nil {
		return nil, err
	}

	config.Log.Debug("Creating plan service with config",
		"plan", config.PlanFile,
		"suite", config.Suite,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce,
		"logDir", config.LogDir)

	reg, err := registry.NewRegistry(registry.Config{
		Log:       config.Log,
		PlanFile:  config.PlanFile,
		Templates: templates,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	s := &planService{
		config:           config,
		version:          version,
		registry:         reg,
		builder:          runner.NewBuilder(runner.BuilderConfig{Log: config.Log}),
		metrics:          metrics.NewListener(),
		scheduler:        NewDefaultPlanScheduler(config.RunInterval, config.RunOnce, config.Log),
		out:              os.Stdout,
		shutdownCallback: shutdownCallback,
	}

	if !config.RunOnce {
		s.service = service.New(config.Log, service.Config{
			HealthzHost: service.HealthzHost,
			HealthzPort: config.HealthzPort,
			MetricsHost: config.Metrics.ListenAddr,
			MetricsPort: metricsPort(config),
		}, s.LatestResults)
	}
	return s, nil
}

func metricsPort(config *Config) int {
	if !config.Metrics.Enabled {
		return 0
	}
	return config.Metrics.ListenPort
}

// Start runs the plan at the configured interval.
// Start implements the cliapp.Lifecycle interface.
func (s *planService) Start(ctx context.Context) error {
	s.running.Store(true)

	if s.config.RunOnce {
		s.config.Log.Info("Starting op-testplan in run-once mode", "version", s.version)
	} else {
		s.config.Log.Info("Starting op-testplan in continuous mode", "version", s.version, "interval", s.config.RunInterval)
		s.service.Start(ctx)
	}

	s.scheduler.RegisterCallback(func() error {
		_, err := s.RunPlan(ctx)
		return err
	})
	if err := s.scheduler.Start(ctx); err != nil {
		s.config.Log.Error("Runtime error running plan", "error", err)
		return err
	}

	if !s.config.RunOnce {
		s.config.Log.Debug("op-testplan started successfully")
		return nil
	}

	s.config.Log.Info("Plan completed, exiting (run-once mode)")
	if last := s.Last(); last != nil && !last.Result.WasSuccessful() {
		s.config.Log.Warn("Run-once plan completed with failures, returning exit code 1")
		return NewTestFailureError(summarize(last))
	}
	if s.shutdownCallback != nil {
		go s.shutdownCallback(nil)
	}
	return nil
}

// RunPlan runs the configured suites once and reports the outcome. Test
// failures are part of the outcome; only problems running the plan at all
// are returned as errors.
func (s *planService) RunPlan(ctx context.Context) (*RunOutcome, error) {
	runID := uuid.New().String()

	request, err := s.registry.Request(s.config.Suite)
	if err != nil {
		return nil, NewRuntimeError(err)
	}
	if s.config.Filter != nil {
		request = request.FilterWith(runner.MatchPattern(s.config.Filter))
	}
	planRunner := request.Runner(s.builder)

	if s.config.ShowPlan {
		fmt.Fprint(s.out, ui.PlanOutline(planRunner.Describe()))
	}

	core := runner.NewCore(runner.CoreConfig{Log: s.config.Log, Builder: s.builder})
	collector := runner.NewResultCollector()
	core.AddListener(collector)
	core.AddListener(s.metrics)

	logPath := func(*types.TestResult) string { return "" }
	if s.config.LogDir != "" {
		fileLogger, err := logging.NewFileLogger(s.config.LogDir, runID)
		if err != nil {
			return nil, NewRuntimeError(err)
		}
		core.AddListener(fileLogger)
		defer func() {
			if err := fileLogger.Complete(); err != nil {
				s.config.Log.Error("Failed to close run log", "runID", runID, "error", err)
			}
		}()
		logPath = fileLogger.LogPath
	}

	s.config.Log.Info("Running plan", "runID", runID, "plan", request.Name())
	result := core.RunRunner(ctx, planRunner)

	tree := collector.Tree(runID, request.Name(), logPath)
	if err := s.report(tree); err != nil {
		return nil, NewRuntimeError(err)
	}

	outcome := &RunOutcome{RunID: runID, Result: result, Tree: tree}
	s.mu.Lock()
	s.last = outcome
	s.mu.Unlock()

	s.config.Log.Info("Plan run completed", "runID", runID, "status", tree.Stats.Status, "successful", result.WasSuccessful())
	return outcome, nil
}

func (s *planService) report(tree *types.TestTree) error {
	console, err := reporting.NewConsoleFormatter(s.config.Output, fmt.Sprintf("Plan %s (%s)", tree.PlanName, tree.RunID))
	if err != nil {
		return err
	}
	if err := reporting.NewReporter(console, s.out, s.config.LogDir).Report(tree); err != nil {
		return err
	}

	results, err := reporting.NewTreeJSONFormatter(false).Format(tree)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lastResults = []byte(results)
	s.mu.Unlock()
	return nil
}

// Last returns the outcome of the most recent run.
func (s *planService) Last() *RunOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// LatestResults returns the JSON report of the most recent run.
func (s *planService) LatestResults() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResults, s.lastResults != nil
}

// Stop stops the op-testplan service.
// Stop implements the cliapp.Lifecycle interface.
func (s *planService) Stop(ctx context.Context) error {
	s.config.Log.Info("Stopping op-testplan")

	if !s.running.CompareAndSwap(true, false) {
		s.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}

	if err := s.scheduler.Stop(); err != nil {
		return err
	}
	if s.service != nil {
		s.service.Shutdown()
	}
	if err := s.scheduler.WaitForShutdown(ctx); err != nil {
		return err
	}

	s.config.Log.Info("op-testplan stopped successfully")
	return nil
}

// Stopped returns true if the op-testplan service is stopped.
// Stopped implements the cliapp.Lifecycle interface.
func (s *planService) Stopped() bool {
	return !s.running.Load()
}

func summarize(outcome *RunOutcome) string {
	return fmt.Sprintf("run %s: %d run, %d failed, %d ignored",
		outcome.RunID, outcome.Result.RunCount(), outcome.Result.FailureCount(), outcome.Result.IgnoreCount())
}
