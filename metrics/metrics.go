package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/ethereum-optimism/infra/op-testplan/notification"
	"github.com/ethereum-optimism/infra/op-testplan/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricsNamespace = "testplan"
)

var (
	Debug                bool = true
	validResults              = []types.TestStatus{types.TestStatusPass, types.TestStatusFail, types.TestStatusSkip, types.TestStatusError}
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	testsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "tests_total",
		Help:      "Count of finished tests by outcome",
	}, []string{
		"plan",
		"template",
		"result",
	})

	testDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: MetricsNamespace,
		Name:      "test_duration_seconds",
		Help:      "Duration of individual tests",
		Buckets:   prometheus.DefBuckets,
	}, []string{
		"plan",
		"template",
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "runs_total",
		Help:      "Count of plan runs by outcome",
	}, []string{
		"plan",
		"result",
	})

	runTests = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_tests",
		Help:      "Test counts of the last run of a plan",
	}, []string{
		"plan",
		"kind",
	})

	runDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of the last run of a plan",
	}, []string{
		"plan",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordTest counts one finished test.
func RecordTest(plan string, template string, result types.TestStatus, seconds float64) {
	if !isValidResult(result) {
		log.Error("RecordTest - invalid result", "result", result)
		return
	}
	if Debug {
		log.Debug("metric inc",
			"m", "tests_total",
			"plan", plan,
			"template", template,
			"result", result)
	}
	testsTotal.WithLabelValues(plan, template, string(result)).Inc()
	if seconds > 0 {
		testDuration.WithLabelValues(plan, template).Observe(seconds)
	}
}

// RecordRun records the totals of a finished plan run.
func RecordRun(plan string, result *notification.Result) {
	outcome := "pass"
	if !result.WasSuccessful() {
		outcome = "fail"
	}
	runsTotal.WithLabelValues(plan, outcome).Inc()
	runTests.WithLabelValues(plan, "run").Set(float64(result.RunCount()))
	runTests.WithLabelValues(plan, "failed").Set(float64(result.FailureCount()))
	runTests.WithLabelValues(plan, "ignored").Set(float64(result.IgnoreCount()))
	runTests.WithLabelValues(plan, "assumption_failed").Set(float64(result.AssumptionFailureCount()))
	runDuration.WithLabelValues(plan).Set(result.RunTime().Seconds())
}

func isValidResult(result types.TestStatus) bool {
	return slices.Contains(validResults, result)
}
