package runner

import (
	"context"
	"fmt"

	"github.com/ethereum-optimism/infra/op-testplan/notification"
	"github.com/ethereum-optimism/infra/op-testplan/types"
	"github.com/ethereum/go-ethereum/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CoreConfig configures a Core
type CoreConfig struct {
	Log     log.Logger
	Builder *Builder
}

// Core runs requests, wrapping each in run-started and run-finished events
// and counting the outcome.
type Core struct {
	log      log.Logger
	builder  *Builder
	notifier *notification.RunNotifier
	tracer   trace.Tracer
}

// NewCore creates a Core. A nil Builder gets a default one.
func NewCore(cfg CoreConfig) *Core {
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.Builder == nil {
		cfg.Builder = NewBuilder(BuilderConfig{Log: cfg.Log})
	}
	return &Core{
		log:      cfg.Log,
		builder:  cfg.Builder,
		notifier: notification.NewRunNotifier(cfg.Log),
		tracer:   otel.Tracer("test plan"),
	}
}

// AddListener attaches a listener to every following run.
func (c *Core) AddListener(l notification.RunListener) {
	c.notifier.AddListener(l)
}

// RemoveListener detaches a listener.
func (c *Core) RemoveListener(l notification.RunListener) {
	c.notifier.RemoveListener(l)
}

// Builder returns the builder requests are built with.
func (c *Core) Builder() *Builder {
	return c.builder
}

// RunTemplates runs the given templates as one suite.
func (c *Core) RunTemplates(ctx context.Context, templates ...*types.Template) *notification.Result {
	name := "All"
	if len(templates) == 1 {
		name = templates[0].Name
	}
	return c.Run(ctx, Templates(name, templates...))
}

// Run builds the request's runner and runs it.
func (c *Core) Run(ctx context.Context, request Request) *notification.Result {
	return c.RunRunner(ctx, request.Runner(c.builder))
}

// RunRunner runs r. The returned result counts every event of this run.
func (c *Core) RunRunner(ctx context.Context, r Runner) *notification.Result {
	plan := r.Describe()
	_, span := c.tracer.Start(ctx, fmt.Sprintf("plan %s", plan.DisplayName()))
	defer span.End()
	span.SetAttributes(attribute.Int("tests", plan.TestCount()))

	result := notification.NewResult()
	listener := result.Listener()
	c.notifier.AddFirstListener(listener)
	defer c.notifier.RemoveListener(listener)

	c.log.Info("Running plan", "plan", plan.DisplayName(), "tests", plan.TestCount())
	c.notifier.FireTestRunStarted(plan)
	r.Run(c.notifier)
	c.notifier.FireTestRunFinished(plan, result)

	span.SetAttributes(
		attribute.Int("run", result.RunCount()),
		attribute.Int("failures", result.FailureCount()),
		attribute.Int("ignored", result.IgnoreCount()),
	)
	c.log.Info("Plan finished",
		"plan", plan.DisplayName(),
		"run", result.RunCount(),
		"failures", result.FailureCount(),
		"ignored", result.IgnoreCount(),
		"assumptionFailures", result.AssumptionFailureCount(),
		"duration", result.RunTime(),
	)
	return result
}
