// Package logging writes per-run log files for a plan run: a combined all.log
// and one file per failing test under failed/.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/ethereum-optimism/infra/op-testplan/notification"
	"github.com/ethereum-optimism/infra/op-testplan/reporting"
	"github.com/ethereum-optimism/infra/op-testplan/types"
	"github.com/ethereum-optimism/infra/op-testplan/ui"
)

const (
	AllLogsFileName = "all.log"
	FailedDirName   = "failed"
)

// AsyncFile provides non-blocking file writing capabilities
type AsyncFile struct {
	file    *os.File
	queue   chan []byte
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

// NewAsyncFile creates a new AsyncFile for non-blocking writes
func NewAsyncFile(path string) (*AsyncFile, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", path, err)
	}

	af := &AsyncFile{
		file:  file,
		queue: make(chan []byte, 100),
	}
	af.wg.Add(1)
	go af.processQueue()
	return af, nil
}

// Write queues data to be written asynchronously
func (af *AsyncFile) Write(data []byte) error {
	af.mu.Lock()
	defer af.mu.Unlock()

	if af.stopped {
		return fmt.Errorf("async file is closed")
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	af.queue <- dataCopy
	return nil
}

func (af *AsyncFile) processQueue() {
	defer af.wg.Done()

	for data := range af.queue {
		if _, err := af.file.Write(data); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing to file: %v\n", err)
		}
	}
}

// Close stops the async writer and closes the file
func (af *AsyncFile) Close() error {
	af.mu.Lock()
	if !af.stopped {
		af.stopped = true
		close(af.queue)
	}
	af.mu.Unlock()

	af.wg.Wait()
	return af.file.Close()
}

// FileLogger is a run listener that writes the log files of one run
type FileLogger struct {
	notification.BaseListener

	runID     string
	logDir    string
	failedDir string

	mu       sync.Mutex
	allLogs  *AsyncFile
	order    int
	failures map[*types.Description][]*notification.Failure
	started  map[*types.Description]time.Time
	logPaths map[*types.Description]string
}

var _ notification.RunListener = (*FileLogger)(nil)

// NewFileLogger creates the run directory for runID under baseDir.
func NewFileLogger(baseDir string, runID string) (*FileLogger, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}
	if baseDir == "" {
		return nil, fmt.Errorf("baseDir cannot be empty")
	}

	logDir := reporting.RunDir(baseDir, runID)
	failedDir := filepath.Join(logDir, FailedDirName)
	for _, dir := range []string{baseDir, logDir, failedDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	allLogs, err := NewAsyncFile(filepath.Join(logDir, AllLogsFileName))
	if err != nil {
		return nil, err
	}

	return &FileLogger{
		runID:     runID,
		logDir:    logDir,
		failedDir: failedDir,
		allLogs:   allLogs,
		failures:  make(map[*types.Description][]*notification.Failure),
		started:   make(map[*types.Description]time.Time),
		logPaths:  make(map[*types.Description]string),
	}, nil
}

// GetRunID returns the run this logger writes for
func (l *FileLogger) GetRunID() string {
	return l.runID
}

// GetBaseDir returns the run directory
func (l *FileLogger) GetBaseDir() string {
	return l.logDir
}

// GetFailedDir returns the directory containing logs for failed tests
func (l *FileLogger) GetFailedDir() string {
	return l.failedDir
}

// LogPath returns the failure log written for result, if any. It is meant
// as the tree builder's log path generator.
func (l *FileLogger) LogPath(result *types.TestResult) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.logPaths[result.Description]
}

func (l *FileLogger) TestRunStarted(plan *types.Description) {
	l.write(ui.BuildBoxHeader("PLAN: "+plan.DisplayName(), 72) +
		ui.BuildBoxLine(fmt.Sprintf("Run ID: %s", l.runID), 72) +
		ui.BuildBoxLine(fmt.Sprintf("Tests:  %d", plan.TestCount()), 72) +
		ui.BuildBoxFooter(72) + "\n")
}

func (l *FileLogger) TestStarted(desc *types.Description) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.order++
	l.started[desc] = time.Now()
}

func (l *FileLogger) TestFailure(failure *notification.Failure) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[failure.Description] = append(l.failures[failure.Description], failure)
}

func (l *FileLogger) TestAssumptionFailure(failure *notification.Failure) {
	l.write(fmt.Sprintf("SKIP  %s: %s\n", failure.TestHeader(), failure.Message()))
}

func (l *FileLogger) TestIgnored(desc *types.Description) {
	l.mu.Lock()
	l.order++
	l.mu.Unlock()
	l.write(fmt.Sprintf("IGNORED %s\n", desc.DisplayName()))
}

func (l *FileLogger) TestFinished(desc *types.Description) {
	l.mu.Lock()
	failures := l.failures[desc]
	var duration time.Duration
	if start, ok := l.started[desc]; ok {
		duration = time.Since(start)
	}
	order := l.order
	l.mu.Unlock()

	if len(failures) == 0 {
		l.write(fmt.Sprintf("PASS  %s (%s)\n", desc.DisplayName(), duration))
		return
	}

	l.write(fmt.Sprintf("FAIL  %s (%s)\n%s\n", desc.DisplayName(), duration, indentText(failures[0].Message(), "      ")))

	path := filepath.Join(l.failedDir, fmt.Sprintf("%03d_%s.log", order, safeFilename(desc.DisplayName())))
	if err := writeFailureFile(path, desc, duration, failures); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing failure log: %v\n", err)
		return
	}
	l.mu.Lock()
	l.logPaths[desc] = path
	l.mu.Unlock()
}

func (l *FileLogger) TestRunFinished(_ *types.Description, result *notification.Result) {
	l.write(fmt.Sprintf("\nRuns: %d, Failures: %d, Ignored: %d, Assumption failures: %d, Time: %s\n",
		result.RunCount(), result.FailureCount(), result.IgnoreCount(), result.AssumptionFailureCount(), result.RunTime()))
}

// Complete flushes and closes all.log.
func (l *FileLogger) Complete() error {
	return l.allLogs.Close()
}

func (l *FileLogger) write(content string) {
	if err := l.allLogs.Write([]byte(stripansi.Strip(content))); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to %s: %v\n", AllLogsFileName, err)
	}
}

func writeFailureFile(path string, desc *types.Description, duration time.Duration, failures []*notification.Failure) error {
	var content strings.Builder
	content.WriteString(ui.BuildBoxHeader("TEST: "+desc.DisplayName(), 72))
	content.WriteString(ui.BuildBoxLine("Template: "+desc.ClassName(), 72))
	content.WriteString(ui.BuildBoxLine("Method:   "+desc.MethodName(), 72))
	content.WriteString(ui.BuildBoxLine(fmt.Sprintf("Duration: %s", duration), 72))
	content.WriteString(ui.BuildBoxLine(fmt.Sprintf("Failures: %d", len(failures)), 72))
	content.WriteString(ui.BuildBoxFooter(72))

	for i, failure := range failures {
		fmt.Fprintf(&content, "\nFAILURE %d:\n", i+1)
		content.WriteString("~~~~~~~~~~\n")
		content.WriteString(failure.Trace())
		content.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(stripansi.Strip(content.String())), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// indentText adds indentation to each non-empty line
func indentText(text, indent string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}

// safeFilename converts a string to a safe filename by replacing problematic characters
func safeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_",
		"<", "_", ">", "_", "|", "_", " ", "_", "[", "_", "]", "_", "(", "_", ")", "",
	)
	return replacer.Replace(s)
}
