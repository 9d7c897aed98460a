package types

import "fmt"

// PlanConfig is the on-disk description of a test plan
type PlanConfig struct {
	Name   string        `yaml:"name" toml:"name"`
	Suites []SuiteConfig `yaml:"suites" toml:"suites"`
}

// SuiteConfig names the templates of one suite. A suite may include other
// suites of the same plan.
type SuiteConfig struct {
	ID          string   `yaml:"id" toml:"id"`
	Description string   `yaml:"description,omitempty" toml:"description,omitempty"`
	Includes    []string `yaml:"includes,omitempty" toml:"includes,omitempty"`
	Templates   []string `yaml:"templates,omitempty" toml:"templates,omitempty"`
}

// SuiteByID returns the suite with the given id
func (p *PlanConfig) SuiteByID(id string) (SuiteConfig, bool) {
	for _, suite := range p.Suites {
		if suite.ID == id {
			return suite, true
		}
	}
	return SuiteConfig{}, false
}

// ResolveIncludes merges the templates of included suites into this suite,
// recursively. Own templates come first, then those of each include in order;
// a template listed twice is kept once.
func (s *SuiteConfig) ResolveIncludes(suites map[string]SuiteConfig) error {
	processed := map[string]bool{s.ID: true}
	templates, err := s.collectTemplates(suites, processed)
	if err != nil {
		return err
	}
	s.Templates = templates
	return nil
}

func (s *SuiteConfig) collectTemplates(suites map[string]SuiteConfig, processed map[string]bool) ([]string, error) {
	seen := make(map[string]bool)
	var merged []string
	add := func(names []string) {
		for _, name := range names {
			if !seen[name] {
				merged = append(merged, name)
				seen[name] = true
			}
		}
	}
	add(s.Templates)

	for _, includeID := range s.Includes {
		// Check for circular dependencies
		if processed[includeID] {
			return nil, fmt.Errorf("circular include detected for suite %q", includeID)
		}

		included, ok := suites[includeID]
		if !ok {
			return nil, fmt.Errorf("suite %q includes non-existent suite %q", s.ID, includeID)
		}

		processed[includeID] = true
		templates, err := included.collectTemplates(suites, processed)
		if err != nil {
			return nil, fmt.Errorf("resolving includes for suite %q: %w", includeID, err)
		}
		add(templates)
		processed[includeID] = false
	}

	return merged, nil
}
