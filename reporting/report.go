// Package reporting renders result trees as tables, text and JSON, and writes
// the per-run report files.
package reporting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/acarl005/stripansi"
	"github.com/ethereum-optimism/infra/op-testplan/types"
)

// Output formats for the console report
const (
	OutputTable = "table"
	OutputText  = "text"
	OutputJSON  = "json"
)

const (
	SummaryFileName = "summary.log"
	ResultsFileName = "results.json"
)

// Formatter renders a result tree
type Formatter interface {
	Format(tree *types.TestTree) (string, error)
}

// NewConsoleFormatter returns the formatter for an output flag value.
func NewConsoleFormatter(output, title string) (Formatter, error) {
	switch output {
	case OutputTable, "":
		return NewTreeTableFormatter(title, true, false), nil
	case OutputText:
		return NewTreeTextFormatter(true, true, true), nil
	case OutputJSON:
		return NewTreeJSONFormatter(true), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", output)
	}
}

// RunDir is the directory holding the files of one run.
func RunDir(baseDir, runID string) string {
	return filepath.Join(baseDir, "testrun-"+runID)
}

// Reporter prints a run's tree and writes its report files
type Reporter struct {
	console Formatter
	out     io.Writer
	baseDir string
}

// NewReporter creates a reporter. An empty baseDir writes no files.
func NewReporter(console Formatter, out io.Writer, baseDir string) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{console: console, out: out, baseDir: baseDir}
}

// Report prints the tree and writes summary.log and results.json.
func (r *Reporter) Report(tree *types.TestTree) error {
	content, err := r.console.Format(tree)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	if _, err := fmt.Fprint(r.out, content); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}

	if r.baseDir == "" {
		return nil
	}
	return r.writeFiles(tree)
}

func (r *Reporter) writeFiles(tree *types.TestTree) error {
	outputDir := RunDir(r.baseDir, tree.RunID)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	summary, err := NewTreeTextFormatter(false, true, true).Format(tree)
	if err != nil {
		return fmt.Errorf("failed to format text summary: %w", err)
	}
	if err := writeClean(filepath.Join(outputDir, SummaryFileName), summary); err != nil {
		return err
	}

	results, err := NewTreeJSONFormatter(true).Format(tree)
	if err != nil {
		return err
	}
	return writeClean(filepath.Join(outputDir, ResultsFileName), results)
}

// writeClean writes content without ANSI escape sequences
func writeClean(path, content string) error {
	if err := os.WriteFile(path, []byte(stripansi.Strip(content)), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
