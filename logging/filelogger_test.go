package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum-optimism/infra/op-testplan/catalog"
	"github.com/ethereum-optimism/infra/op-testplan/runner"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileLogger_Validation(t *testing.T) {
	_, err := NewFileLogger(t.TempDir(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runID cannot be empty")

	_, err = NewFileLogger("", "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseDir cannot be empty")
}

func TestFileLogger_WritesRunFiles(t *testing.T) {
	dir := t.TempDir()
	fileLogger, err := NewFileLogger(dir, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", fileLogger.GetRunID())
	assert.Equal(t, filepath.Join(dir, "testrun-abc"), fileLogger.GetBaseDir())

	core := runner.NewCore(runner.CoreConfig{Log: log.NewLogger(log.DiscardHandler())})
	collector := runner.NewResultCollector()
	core.AddListener(collector)
	core.AddListener(fileLogger)

	result := core.RunTemplates(context.Background(), catalog.Fibonacci(catalog.AlwaysZero))
	require.NoError(t, fileLogger.Complete())
	assert.Equal(t, 6, result.FailureCount())

	entries, err := os.ReadDir(fileLogger.GetFailedDir())
	require.NoError(t, err)
	assert.Len(t, entries, 6)

	allLogs, err := os.ReadFile(filepath.Join(fileLogger.GetBaseDir(), AllLogsFileName))
	require.NoError(t, err)
	content := string(allLogs)
	assert.Contains(t, content, "PLAN: Fibonacci")
	assert.Contains(t, content, "PASS  test[0](Fibonacci)")
	assert.Contains(t, content, "FAIL  test[1](Fibonacci)")
	assert.Contains(t, content, "Runs: 7, Failures: 6")

	tree := collector.Tree("abc", "Fibonacci", fileLogger.LogPath)
	require.Len(t, tree.FailedNodes, 6)
	for _, node := range tree.FailedNodes {
		require.NotEmpty(t, node.LogPath)
		data, err := os.ReadFile(node.LogPath)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(data), "TEST: "+node.Name), node.Name)
		assert.Contains(t, string(data), "FAILURE 1:")
	}
	assert.Empty(t, tree.TestNodes[0].LogPath)
}

func TestAsyncFile_WriteAfterClose(t *testing.T) {
	af, err := NewAsyncFile(filepath.Join(t.TempDir(), "out.log"))
	require.NoError(t, err)
	require.NoError(t, af.Write([]byte("hello")))
	require.NoError(t, af.Close())
	require.Error(t, af.Write([]byte("again")))
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "test_failing_test1__NamedFibonacci", safeFilename("test[failing test1](NamedFibonacci)"))
	assert.Equal(t, "a_b_c", safeFilename("a/b:c"))
}

func TestIndentText(t *testing.T) {
	assert.Equal(t, "  a\n\n  b", indentText("a\n\nb", "  "))
}
