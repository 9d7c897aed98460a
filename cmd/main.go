package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	testplan "github.com/ethereum-optimism/infra/op-testplan"
	"github.com/ethereum-optimism/infra/op-testplan/catalog"
	"github.com/ethereum-optimism/infra/op-testplan/exitcodes"
	"github.com/ethereum-optimism/infra/op-testplan/flags"
	"github.com/ethereum-optimism/infra/op-testplan/registry"
	"github.com/ethereum-optimism/infra/op-testplan/runner"
	"github.com/ethereum-optimism/infra/op-testplan/types"
	"github.com/ethereum-optimism/infra/op-testplan/ui"
	"github.com/ethereum-optimism/optimism/devnet-sdk/telemetry"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/ethereum-optimism/optimism/op-service/ctxinterrupt"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := newApp()

	// Start telemetry
	ctx, shutdown, err := telemetry.SetupOpenTelemetry(
		context.Background(),
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		log.Crit("Failed to setup open telemetry", "message", err)
	}
	defer shutdown()

	// Start CLI
	ctx = ctxinterrupt.WithSignalWaiterMain(ctx)
	err = app.RunContext(ctx, os.Args)
	if err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "op-testplan"
	app.Usage = "Test plan runner"
	app.Description = "op-testplan runs the suites of a plan file and reports their results"
	app.Flags = cliapp.ProtectFlags(flags.Flags)
	app.Action = cliapp.LifecycleCmd(run)
	app.Commands = []*cli.Command{
		{
			Name:      "list",
			Usage:     "Print the plan tree without running it",
			UsageText: "op-testplan --plan <file> [--suite <id>] [--filter <regexp>] list",
			Action:    list,
		},
	}
	app.ExitErrHandler = func(c *cli.Context, err error) {
		if err == nil {
			return
		}
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
			return
		}
		cli.HandleExitCoder(cli.Exit(err.Error(), exitCode(err)))
	}
	return app
}

// exitCode maps an application error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitcodes.Success
	case testplan.IsRuntimeError(err):
		return exitcodes.RuntimeErr
	default:
		return exitcodes.TestFailure
	}
}

// shippedTemplates returns every template of the catalog.
func shippedTemplates() ([]*types.Template, error) {
	cat := catalog.New()
	templates := make([]*types.Template, 0, len(cat.Names()))
	for _, name := range cat.Names() {
		t, err := cat.Template(name, nil)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, nil
}

func run(ctx *cli.Context, closeApp context.CancelCauseFunc) (cliapp.Lifecycle, error) {
	logCfg := oplog.ReadCLIConfig(ctx)
	log := oplog.NewLogger(oplog.AppOut(ctx), logCfg)
	oplog.SetGlobalLogHandler(log.Handler())
	oplog.SetupDefaults()

	cfg, err := testplan.NewConfig(ctx, log, ctx.String(flags.Plan.Name))
	if err != nil {
		// Wrap in RuntimeError to signal this should exit with code 2
		return nil, testplan.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	templates, err := shippedTemplates()
	if err != nil {
		return nil, testplan.NewRuntimeError(err)
	}

	svc, err := testplan.New(cfg, Version, templates, closeApp)
	if err != nil {
		return nil, testplan.NewRuntimeError(fmt.Errorf("failed to create op-testplan: %w", err))
	}
	return svc, nil
}

// list prints the plan tree. Plan flags are read from the app level.
func list(ctx *cli.Context) error {
	logger := log.NewLogger(log.DiscardHandler())
	templates, err := shippedTemplates()
	if err != nil {
		return testplan.NewRuntimeError(err)
	}
	reg, err := registry.NewRegistry(registry.Config{
		Log:       logger,
		PlanFile:  ctx.String(flags.Plan.Name),
		Templates: templates,
	})
	if err != nil {
		return testplan.NewRuntimeError(err)
	}
	request, err := reg.Request(ctx.String(flags.Suite.Name))
	if err != nil {
		return testplan.NewRuntimeError(err)
	}
	if pattern := ctx.String(flags.Filter.Name); pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return testplan.NewRuntimeError(fmt.Errorf("invalid filter %q: %w", pattern, err))
		}
		request = request.FilterWith(runner.MatchPattern(re))
	}

	plan := request.Runner(runner.NewBuilder(runner.BuilderConfig{Log: logger})).Describe()
	_, err = fmt.Fprint(ctx.App.Writer, ui.PlanOutline(plan))
	return err
}
