package testplan

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/op-testplan/flags"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
	"github.com/ethereum/go-ethereum/log"
)

// Config holds the application configuration
type Config struct {
	PlanFile    string         // Absolute path of the plan config file
	Suite       string         // Suite to run, empty for every suite
	Filter      *regexp.Regexp // Only tests whose display name matches run, nil for all
	LogDir      string         // Directory for run reports, empty disables file output
	RunInterval time.Duration  // Interval between plan runs
	RunOnce     bool           // Exit after one run
	Output      string         // Console report format
	ShowPlan    bool           // Print the plan tree before running
	HealthzPort int            // Healthz and results server port, 0 disables it
	Metrics     opmetrics.CLIConfig
	Log         log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger, planFile string) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}
	if planFile == "" {
		return nil, errors.New("plan file is required")
	}

	absPlanFile, err := filepath.Abs(planFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for plan file '%s': %w", planFile, err)
	}

	logDir := ctx.String(flags.LogDir.Name)
	if logDir != "" {
		logDir, err = filepath.Abs(logDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for log directory '%s': %w", logDir, err)
		}
	}

	var filter *regexp.Regexp
	if pattern := ctx.String(flags.Filter.Name); pattern != "" {
		filter, err = regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", pattern, err)
		}
	}

	metricsCfg := opmetrics.ReadCLIConfig(ctx)
	if err := metricsCfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid metrics config: %w", err)
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	if runInterval < 0 {
		return nil, fmt.Errorf("run interval must not be negative, got %s", runInterval)
	}

	return &Config{
		PlanFile:    absPlanFile,
		Suite:       ctx.String(flags.Suite.Name),
		Filter:      filter,
		LogDir:      logDir,
		RunInterval: runInterval,
		RunOnce:     runInterval == 0,
		Output:      ctx.String(flags.Output.Name),
		ShowPlan:    ctx.Bool(flags.ShowPlan.Name),
		HealthzPort: ctx.Int(flags.HealthzPort.Name),
		Metrics:     metricsCfg,
		Log:         log,
	}, nil
}
