package reporting

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum-optimism/infra/op-testplan/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *types.TestTree {
	pass := types.NewTestDescription("Fibonacci", "test[0]")
	fail := types.NewTestDescription("Fibonacci", "test[1]")
	ignored := types.NewIgnoredTestDescription("Fibonacci", "test[2]")
	plan := types.NewSuiteDescription("Fibonacci",
		types.NewSuiteDescription("[0]", pass),
		types.NewSuiteDescription("[1]", fail),
		types.NewSuiteDescription("[2]", ignored),
	)

	failed := &types.TestResult{Description: fail, Status: types.TestStatusPass, Duration: 20 * time.Millisecond, ExecutionOrder: 2}
	failed.AddFailure(types.Failf("expected:<1> but was:<0>"))
	results := map[*types.Description]*types.TestResult{
		pass:    {Description: pass, Status: types.TestStatusPass, Duration: 10 * time.Millisecond, ExecutionOrder: 1},
		fail:    failed,
		ignored: {Description: ignored, Status: types.TestStatusSkip, Ignored: true},
	}
	return types.NewTestTreeBuilder().BuildFromPlan(plan, results, "run-1", "examples")
}

func TestNewConsoleFormatter(t *testing.T) {
	for _, output := range []string{"", OutputTable, OutputText, OutputJSON} {
		f, err := NewConsoleFormatter(output, "PLAN")
		require.NoError(t, err, output)
		assert.NotNil(t, f)
	}
	_, err := NewConsoleFormatter("xml", "PLAN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown output format "xml"`)
}

func TestTreeTableFormatter(t *testing.T) {
	out, err := NewTreeTableFormatter("PLAN examples", true, true).Format(sampleTree())
	require.NoError(t, err)

	assert.Contains(t, out, "PLAN examples")
	assert.Contains(t, out, "test[1](Fibonacci)")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "ORDER")
}

func TestTreeTextFormatter(t *testing.T) {
	out, err := NewTreeTextFormatter(true, true, true).Format(sampleTree())
	require.NoError(t, err)

	assert.Contains(t, out, "Run ID: run-1")
	assert.Contains(t, out, "Plan: examples")
	assert.Contains(t, out, "Total Tests: 3")
	assert.Contains(t, out, "Passed: 1")
	assert.Contains(t, out, "Failed: 1")
	assert.Contains(t, out, "[PASS] test[0](Fibonacci)")
	assert.Contains(t, out, "Failed Tests:")
	assert.Contains(t, out, "expected:<1> but was:<0>")
}

func TestTreeJSONFormatter(t *testing.T) {
	out, err := NewTreeJSONFormatter(false).Format(sampleTree())
	require.NoError(t, err)

	var resp TreeJSONResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, "examples", resp.PlanName)
	require.Len(t, resp.Tests, 3)
	assert.Equal(t, "test[0](Fibonacci)", resp.Tests[0].Name)
	assert.Equal(t, "Fibonacci", resp.Tests[0].Template)
	assert.Equal(t, types.TestStatusFail, resp.Tests[1].Status)
	assert.Contains(t, resp.Tests[1].Error, "expected:<1>")
	require.Len(t, resp.FailedTests, 1)
}

func TestReporter_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	console, err := NewConsoleFormatter(OutputTable, "PLAN")
	require.NoError(t, err)

	require.NoError(t, NewReporter(console, &out, dir).Report(sampleTree()))
	assert.Contains(t, out.String(), "TOTAL")

	summary, err := os.ReadFile(filepath.Join(RunDir(dir, "run-1"), SummaryFileName))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "Test Results Summary")
	assert.NotContains(t, string(summary), "\x1b[")

	results, err := os.ReadFile(filepath.Join(RunDir(dir, "run-1"), ResultsFileName))
	require.NoError(t, err)
	assert.True(t, json.Valid(results))
}

func TestReporter_NoBaseDir(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewReporter(NewTreeTextFormatter(false, false, false), &out, "").Report(sampleTree()))
	assert.Contains(t, out.String(), "Test Hierarchy:")
}

type failingFormatter struct{}

func (failingFormatter) Format(*types.TestTree) (string, error) {
	return "", errors.New("boom")
}

func TestReporter_FormatError(t *testing.T) {
	err := NewReporter(failingFormatter{}, &bytes.Buffer{}, "").Report(sampleTree())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to format report")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "15ms", formatDuration(15*time.Millisecond))
	assert.Equal(t, "1.5s", formatDuration(1500*time.Millisecond))
}
