package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

const EnvVarPrefix = "OP_TESTPLAN"

// Output formats accepted by --output
var validOutputs = []string{"table", "text", "json"}

var (
	Plan = &cli.StringFlag{
		Name:     "plan",
		Value:    "",
		Required: true,
		EnvVars:  opservice.PrefixEnvVar(EnvVarPrefix, "PLAN"),
		Usage:    "Path to the plan config file (eg. 'plan.yaml' or 'plan.toml')",
	}
	Suite = &cli.StringFlag{
		Name:    "suite",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SUITE"),
		Usage:   "Suite of the plan to run. Empty runs every suite.",
	}
	Filter = &cli.StringFlag{
		Name:    "filter",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "FILTER"),
		Usage:   "Regular expression; only tests whose display name matches are run",
	}
	LogDir = &cli.StringFlag{
		Name:    "log-dir",
		Value:   "logs",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LOG_DIR"),
		Usage:   "Directory for per-run reports and failure logs. Empty disables file output.",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "RUN_INTERVAL"),
		Usage:   "Interval between plan runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	Output = &cli.StringFlag{
		Name:    "output",
		Value:   "table",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "OUTPUT"),
		Usage:   fmt.Sprintf("Console report format, one of %v", validOutputs),
		Action: func(_ *cli.Context, v string) error {
			return validateOutput(v)
		},
	}
	ShowPlan = &cli.BoolFlag{
		Name:    "show-plan",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SHOW_PLAN"),
		Usage:   "Print the plan tree before running it",
	}
	HealthzPort = &cli.IntFlag{
		Name:    "healthz.port",
		Value:   0,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "HEALTHZ_PORT"),
		Usage:   "Port of the healthz and results server in continuous mode. 0 disables it.",
	}
)

var requiredFlags = []cli.Flag{
	Plan,
}

var optionalFlags = []cli.Flag{
	Suite,
	Filter,
	LogDir,
	RunInterval,
	Output,
	ShowPlan,
	HealthzPort,
}
var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}

func validateOutput(v string) error {
	for _, valid := range validOutputs {
		if v == valid {
			return nil
		}
	}
	return fmt.Errorf("output must be one of %v, got %q", validOutputs, v)
}
