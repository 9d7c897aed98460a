package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/ethereum-optimism/infra/op-testplan/runner"
	"github.com/ethereum-optimism/infra/op-testplan/types"
	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"
)

// Registry holds the registered templates and the plan that groups them into
// suites.
type Registry struct {
	config    Config
	plan      types.PlanConfig
	templates map[string]*types.Template
	mu        sync.RWMutex
}

// Config contains registry configuration
type Config struct {
	Log       log.Logger
	PlanFile  string
	Templates []*types.Template
}

// NewRegistry creates a new registry instance
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.PlanFile == "" {
		return nil, fmt.Errorf("plan file is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	r := &Registry{
		config:    cfg,
		templates: make(map[string]*types.Template),
	}

	if err := r.Register(cfg.Templates...); err != nil {
		return nil, err
	}

	if err := r.loadPlan(cfg.PlanFile); err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	cfg.Log.Debug("Registry loaded", "plan", r.plan.Name, "len(suites)", len(r.plan.Suites), "len(templates)", len(r.templates))

	return r, nil
}

// Register adds templates. Names must be unique.
func (r *Registry) Register(templates ...*types.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range templates {
		if t == nil || t.Name == "" {
			return fmt.Errorf("template must have a name")
		}
		if _, exists := r.templates[t.Name]; exists {
			return fmt.Errorf("template %q registered twice", t.Name)
		}
		r.templates[t.Name] = t
	}
	return nil
}

// loadPlan loads the plan file and resolves suite includes
func (r *Registry) loadPlan(path string) error {
	plan, err := loadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := validateSuites(plan); err != nil {
		return fmt.Errorf("invalid suites: %w", err)
	}

	suites := make(map[string]types.SuiteConfig, len(plan.Suites))
	for _, suite := range plan.Suites {
		suites[suite.ID] = suite
	}
	for i := range plan.Suites {
		if err := plan.Suites[i].ResolveIncludes(suites); err != nil {
			return fmt.Errorf("invalid suite includes: %w", err)
		}
	}

	if plan.Name == "" {
		plan.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.plan = *plan
	return nil
}

func validateSuites(plan *types.PlanConfig) error {
	seen := make(map[string]bool)
	for _, suite := range plan.Suites {
		if suite.ID == "" {
			return fmt.Errorf("suite without id")
		}
		if seen[suite.ID] {
			return fmt.Errorf("suite %q defined twice", suite.ID)
		}
		seen[suite.ID] = true
	}
	return nil
}

// Plan returns the resolved plan configuration
func (r *Registry) Plan() types.PlanConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.plan
}

// Template returns a registered template by name
func (r *Registry) Template(name string) (*types.Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[name]
	return t, ok
}

// Request builds the request for one suite, or for every suite of the plan
// when suiteID is empty.
func (r *Registry) Request(suiteID string) (runner.Request, error) {
	plan := r.Plan()

	if suiteID != "" {
		suite, ok := plan.SuiteByID(suiteID)
		if !ok {
			return runner.Request{}, fmt.Errorf("suite %q not found in plan %q", suiteID, plan.Name)
		}
		return r.suiteRequest(suite)
	}

	requests := make([]runner.Request, 0, len(plan.Suites))
	for _, suite := range plan.Suites {
		request, err := r.suiteRequest(suite)
		if err != nil {
			return runner.Request{}, err
		}
		requests = append(requests, request)
	}
	return runner.Compose(plan.Name, requests...), nil
}

func (r *Registry) suiteRequest(suite types.SuiteConfig) (runner.Request, error) {
	templates := make([]*types.Template, 0, len(suite.Templates))
	for _, name := range suite.Templates {
		t, ok := r.Template(name)
		if !ok {
			return runner.Request{}, fmt.Errorf("suite %q references unknown template %q", suite.ID, name)
		}
		templates = append(templates, t)
	}
	return runner.Templates(suite.ID, templates...), nil
}

// GetConfig returns the registry configuration
func (r *Registry) GetConfig() Config {
	return r.config
}

// loadConfig loads a plan config from a YAML or TOML file
func loadConfig(path string) (*types.PlanConfig, error) {
	log.Debug("Reading plan file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg types.PlanConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported plan file extension %q", filepath.Ext(path))
	}

	return &cfg, nil
}
