// Package metrics holds the Prometheus collectors of the interview client.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "excel_interview",
		Name:      "api_requests_total",
		Help:      "Total number of requests sent to the interview service",
	}, []string{"method", "outcome"})

	apiLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "excel_interview",
		Name:      "api_request_duration_seconds",
		Help:      "Duration of requests to the interview service in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "outcome"})

	statusPolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "excel_interview",
		Name:      "status_polls_total",
		Help:      "Status fetches issued by interview runners",
	}, []string{"trigger"})

	skippedPolls = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "excel_interview",
		Name:      "status_polls_skipped_total",
		Help:      "Poll ticks skipped because a fetch or submission was outstanding",
	})

	answerSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "excel_interview",
		Name:      "answer_submissions_total",
		Help:      "Answer submissions by outcome",
	}, []string{"outcome"})

	reportAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "excel_interview",
		Name:      "report_fetch_attempts_total",
		Help:      "Report fetch attempts by outcome",
	}, []string{"outcome"})

	activeRunners = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "excel_interview",
		Name:      "active_runners",
		Help:      "Interview runners currently polling",
	})
)

// Poll triggers.
const (
	TriggerTick    = "tick"
	TriggerInitial = "initial"
	TriggerSubmit  = "submit"
)

// ObserveRequest records one outbound request. outcome is an HTTP status code or an
// error kind such as "timeout".
func ObserveRequest(method, outcome string, elapsed time.Duration) {
	apiRequests.WithLabelValues(method, outcome).Inc()
	apiLatency.WithLabelValues(method, outcome).Observe(elapsed.Seconds())
}

// StatusOutcome renders an HTTP status code as an outcome label.
func StatusOutcome(code int) string {
	return strconv.Itoa(code)
}

// ObservePoll counts a status fetch.
func ObservePoll(trigger string) {
	statusPolls.WithLabelValues(trigger).Inc()
}

// ObserveSkippedPoll counts a tick that found the runner busy.
func ObserveSkippedPoll() {
	skippedPolls.Inc()
}

// ObserveSubmission counts an answer submission.
func ObserveSubmission(outcome string) {
	answerSubmissions.WithLabelValues(outcome).Inc()
}

// ObserveReportAttempt counts a report fetch attempt.
func ObserveReportAttempt(outcome string) {
	reportAttempts.WithLabelValues(outcome).Inc()
}

// RunnerStarted and RunnerStopped track live runners.
func RunnerStarted() { activeRunners.Inc() }

// RunnerStopped decrements the live runner gauge.
func RunnerStopped() { activeRunners.Dec() }

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
