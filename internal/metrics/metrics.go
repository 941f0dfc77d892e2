package metrics

import (
	"sync"
	"time"
)

// MetricsCollector provides a centralized way to collect and retrieve metrics
type MetricsCollector struct {
	mutex               sync.RWMutex
	counters            map[string]int64
	gauges              map[string]float64
	requestLatencies    map[string][]time.Duration
	requestCounts       map[string]int64
	submissionCounts    map[string]int64
	submissionLatencies map[string][]time.Duration
	messageBusCounts    map[string]int64
	messageBusLatencies map[string][]time.Duration
	mediaUploadCounts   map[string]int64
	mediaLatencies      map[string][]time.Duration
	databaseQueryCounts map[string]int64
	databaseLatencies   map[string][]time.Duration
	errorCounts         map[string]int64
	startTime           time.Time
	maxHistogramSamples int
}

// Counter metrics
const (
	CounterHTTPRequests         = "http_requests_total"
	CounterHTTPRequestsSuccess  = "http_requests_success_total"
	CounterHTTPRequestsError    = "http_requests_error_total"
	CounterChecklistsSubmitted  = "checklists_submitted_total"
	CounterChecklistsAutoReject = "checklists_auto_rejected_total"
	CounterFatigueSubmitted     = "fatigue_declarations_total"
	CounterReviewsApproved      = "reviews_approved_total"
	CounterReviewsRejected      = "reviews_rejected_total"
	CounterSubmissionsFailed    = "submissions_failed_total"
	CounterMediaUploads         = "media_uploads_total"
	CounterMediaUploadsError    = "media_uploads_error_total"
	CounterMessagesSent         = "messages_sent_total"
	CounterMessagesError        = "messages_error_total"
	CounterDBQueriesTotal       = "db_queries_total"
	CounterDBQueriesError       = "db_queries_error_total"
	CounterErrorsTotal          = "errors_total"
)

// Gauge metrics
const (
	GaugePendingChecklists = "pending_checklists"
	GaugePendingFatigue    = "pending_fatigue_declarations"
)

// Submission types for submission metrics
const (
	SubmissionTypeChecklist  = "checklist"
	SubmissionTypeFatigue    = "fatigue"
	SubmissionTypeAutoReject = "auto_reject"
	SubmissionTypeApprove    = "approve"
	SubmissionTypeReject     = "reject"
	SubmissionTypeFailed     = "failed"
)

// Database query types
const (
	DBQueryTypeSelect = "select"
	DBQueryTypeInsert = "insert"
	DBQueryTypeUpdate = "update"
	DBQueryTypeDelete = "delete"
)

// Message bus operations
const (
	MessageBusOperationSend    = "send"
	MessageBusOperationReceive = "receive"
)

// Media operations
const (
	MediaOperationUpload = "upload"
)

// Error types
const (
	ErrorTypeHTTP       = "http"
	ErrorTypeValidation = "validation"
	ErrorTypeDatabase   = "database"
	ErrorTypeMessageBus = "message_bus"
	ErrorTypeMedia      = "media"
	ErrorTypeInternal   = "internal"
)

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:            make(map[string]int64),
		gauges:              make(map[string]float64),
		requestLatencies:    make(map[string][]time.Duration),
		requestCounts:       make(map[string]int64),
		submissionCounts:    make(map[string]int64),
		submissionLatencies: make(map[string][]time.Duration),
		messageBusCounts:    make(map[string]int64),
		messageBusLatencies: make(map[string][]time.Duration),
		mediaUploadCounts:   make(map[string]int64),
		mediaLatencies:      make(map[string][]time.Duration),
		databaseQueryCounts: make(map[string]int64),
		databaseLatencies:   make(map[string][]time.Duration),
		errorCounts:         make(map[string]int64),
		startTime:           time.Now(),
		maxHistogramSamples: 1000,
	}
}

// IncrementCounter increments a counter by the given value
func (m *MetricsCollector) IncrementCounter(name string, value int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.counters[name] += value
}

// SetGauge sets a gauge to the given value
func (m *MetricsCollector) SetGauge(name string, value float64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.gauges[name] = value
}

func appendLatency(samples []time.Duration, value time.Duration, max int) []time.Duration {
	if samples == nil {
		samples = make([]time.Duration, 0, max)
	}
	if len(samples) >= max {
		samples = samples[1:]
	}
	return append(samples, value)
}

// RecordHTTPRequest records metrics for an HTTP request
func (m *MetricsCollector) RecordHTTPRequest(path string, statusCode int, latency time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.counters[CounterHTTPRequests]++
	m.requestCounts[path]++
	m.requestLatencies[path] = appendLatency(m.requestLatencies[path], latency, m.maxHistogramSamples)

	if statusCode >= 200 && statusCode < 400 {
		m.counters[CounterHTTPRequestsSuccess]++
	} else {
		m.counters[CounterHTTPRequestsError]++
		m.errorCounts[ErrorTypeHTTP]++
	}
}

// RecordSubmission records metrics for a submission or review outcome
func (m *MetricsCollector) RecordSubmission(submissionType string, latency time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.submissionCounts[submissionType]++

	switch submissionType {
	case SubmissionTypeChecklist:
		m.counters[CounterChecklistsSubmitted]++
	case SubmissionTypeAutoReject:
		m.counters[CounterChecklistsAutoReject]++
	case SubmissionTypeFatigue:
		m.counters[CounterFatigueSubmitted]++
	case SubmissionTypeApprove:
		m.counters[CounterReviewsApproved]++
	case SubmissionTypeReject:
		m.counters[CounterReviewsRejected]++
	case SubmissionTypeFailed:
		m.counters[CounterSubmissionsFailed]++
		m.errorCounts[ErrorTypeInternal]++
	}

	m.submissionLatencies[submissionType] = appendLatency(m.submissionLatencies[submissionType], latency, m.maxHistogramSamples)
}

// RecordMediaUpload records metrics for an object storage upload
func (m *MetricsCollector) RecordMediaUpload(success bool, latency time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.mediaUploadCounts[MediaOperationUpload]++
	m.counters[CounterMediaUploads]++

	if !success {
		m.counters[CounterMediaUploadsError]++
		m.errorCounts[ErrorTypeMedia]++
	}

	m.mediaLatencies[MediaOperationUpload] = appendLatency(m.mediaLatencies[MediaOperationUpload], latency, m.maxHistogramSamples)
}

// RecordMessageBusOperation records metrics for a message bus operation
func (m *MetricsCollector) RecordMessageBusOperation(operation string, success bool, latency time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.messageBusCounts[operation]++

	if operation == MessageBusOperationSend {
		m.counters[CounterMessagesSent]++
	}

	if !success {
		m.counters[CounterMessagesError]++
		m.errorCounts[ErrorTypeMessageBus]++
	}

	m.messageBusLatencies[operation] = appendLatency(m.messageBusLatencies[operation], latency, m.maxHistogramSamples)
}

// RecordDatabaseQuery records metrics for a database query
func (m *MetricsCollector) RecordDatabaseQuery(queryType string, success bool, latency time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.databaseQueryCounts[queryType]++
	m.counters[CounterDBQueriesTotal]++

	if !success {
		m.counters[CounterDBQueriesError]++
		m.errorCounts[ErrorTypeDatabase]++
	}

	m.databaseLatencies[queryType] = appendLatency(m.databaseLatencies[queryType], latency, m.maxHistogramSamples)
}

// RecordError records an error of the given type
func (m *MetricsCollector) RecordError(errorType string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.errorCounts[errorType]++
	m.counters[CounterErrorsTotal]++
}

// SetPendingChecklists sets the number of checklists awaiting review
func (m *MetricsCollector) SetPendingChecklists(count int) {
	m.SetGauge(GaugePendingChecklists, float64(count))
}

// SetPendingFatigue sets the number of fatigue declarations awaiting review
func (m *MetricsCollector) SetPendingFatigue(count int) {
	m.SetGauge(GaugePendingFatigue, float64(count))
}

func averageLatencies(source map[string][]time.Duration) map[string]float64 {
	averages := make(map[string]float64)
	for key, latencies := range source {
		if len(latencies) == 0 {
			continue
		}
		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		averages[key] = float64(sum.Milliseconds()) / float64(len(latencies))
	}
	return averages
}

// GetMetrics returns all collected metrics in a structured format
func (m *MetricsCollector) GetMetrics() map[string]interface{} {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	uptime := time.Since(m.startTime)

	return map[string]interface{}{
		"uptime_seconds":           uptime.Seconds(),
		"counters":                 m.counters,
		"gauges":                   m.gauges,
		"request_counts":           m.requestCounts,
		"request_latencies_ms":     averageLatencies(m.requestLatencies),
		"submission_counts":        m.submissionCounts,
		"submission_latencies_ms":  averageLatencies(m.submissionLatencies),
		"media_upload_counts":      m.mediaUploadCounts,
		"media_latencies_ms":       averageLatencies(m.mediaLatencies),
		"message_bus_counts":       m.messageBusCounts,
		"message_bus_latencies_ms": averageLatencies(m.messageBusLatencies),
		"database_query_counts":    m.databaseQueryCounts,
		"database_latencies_ms":    averageLatencies(m.databaseLatencies),
		"error_counts":             m.errorCounts,
	}
}

// GetHealthStatus returns a simple health status based on metrics
func (m *MetricsCollector) GetHealthStatus() map[string]interface{} {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	healthy := true

	errorRate := 0.0
	totalRequests := m.counters[CounterHTTPRequests]
	if totalRequests > 0 {
		errorRate = float64(m.counters[CounterHTTPRequestsError]) / float64(totalRequests)
	}

	// 5% error rate is considered unhealthy
	const errorRateThreshold = 0.05

	if errorRate > errorRateThreshold {
		healthy = false
	}

	uptime := time.Since(m.startTime)

	return map[string]interface{}{
		"status": map[string]interface{}{
			"healthy":        healthy,
			"uptime_seconds": uptime.Seconds(),
		},
		"metrics": map[string]interface{}{
			"total_requests":        totalRequests,
			"error_rate":            errorRate,
			"checklists_submitted":  m.counters[CounterChecklistsSubmitted],
			"fatigue_declarations":  m.counters[CounterFatigueSubmitted],
			"reviews_approved":      m.counters[CounterReviewsApproved],
			"reviews_rejected":      m.counters[CounterReviewsRejected],
			"auto_rejected":         m.counters[CounterChecklistsAutoReject],
			"submissions_failed":    m.counters[CounterSubmissionsFailed],
		},
	}
}

// Global metrics collector instance
var globalCollector *MetricsCollector
var once sync.Once

// GetMetricsCollector returns the global metrics collector instance
func GetMetricsCollector() *MetricsCollector {
	once.Do(func() {
		globalCollector = NewMetricsCollector()
	})
	return globalCollector
}
