// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the validation service.
//
// # Description
//
// Metrics include:
//   - Request counters (by endpoint and status)
//   - Request latency histograms
//   - Applied link corrections (by reason)
//   - Rate-limited requests
//   - Directory reloads
//
// Metrics are exposed via the /metrics endpoint.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/AleutianAI/lexguard/services/lexguard/grounding"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "lexguard"

// Subsystem for HTTP metrics
const httpSubsystem = "http"

// Endpoint labels a service endpoint.
type Endpoint string

const (
	// EndpointValidate is POST /v1/validate.
	EndpointValidate Endpoint = "validate"

	// EndpointGetValidation is GET /v1/validations/:id.
	EndpointGetValidation Endpoint = "get_validation"
)

// ServiceMetrics holds the Prometheus metrics of the service.
//
// # Fields
//
//   - RequestsTotal: requests by endpoint and status
//   - RequestDurationSeconds: request latency by endpoint
//   - CorrectionsTotal: corrections applied to answers by reason
//   - RateLimitedTotal: requests rejected by the rate limiter
//   - DirectoryReloadsTotal: successful directory reloads
type ServiceMetrics struct {
	RequestsTotal          *prometheus.CounterVec
	RequestDurationSeconds *prometheus.HistogramVec
	CorrectionsTotal       *prometheus.CounterVec
	RateLimitedTotal       prometheus.Counter
	DirectoryReloadsTotal  prometheus.Counter
}

// NewServiceMetrics creates the metrics and registers them with reg.
//
// # Inputs
//
//   - reg: Registry to register with. Nil uses the default registerer.
//
// # Limitations
//
//   - Panics if the metrics are already registered with reg.
func NewServiceMetrics(reg prometheus.Registerer) *ServiceMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &ServiceMetrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "requests_total",
				Help:      "Total number of requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),

		RequestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
			},
			[]string{"endpoint"},
		),

		CorrectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "corrections_applied_total",
				Help:      "Total link corrections applied to answers by reason",
			},
			[]string{"reason"},
		),

		RateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "rate_limited_total",
				Help:      "Total requests rejected by the rate limiter",
			},
		),

		DirectoryReloadsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "directory_reloads_total",
				Help:      "Total successful reloads of the code directory",
			},
		),
	}
}

// RecordRequest records a completed request.
//
// # Inputs
//
//   - endpoint: The endpoint that handled the request.
//   - status: HTTP status code class label ("2xx", "4xx", "5xx").
//   - seconds: Request duration.
func (m *ServiceMetrics) RecordRequest(endpoint Endpoint, status string, seconds float64) {
	m.RequestsTotal.WithLabelValues(string(endpoint), status).Inc()
	m.RequestDurationSeconds.WithLabelValues(string(endpoint)).Observe(seconds)
}

// RecordReport counts the corrections applied in report.
func (m *ServiceMetrics) RecordReport(report *grounding.Report) {
	if report == nil {
		return
	}
	for _, c := range report.Corrections {
		m.CorrectionsTotal.WithLabelValues(string(c.Reason)).Inc()
	}
}

// RecordRateLimited counts a rejected request.
func (m *ServiceMetrics) RecordRateLimited() {
	m.RateLimitedTotal.Inc()
}

// RecordDirectoryReload counts a successful directory reload.
func (m *ServiceMetrics) RecordDirectoryReload() {
	m.DirectoryReloadsTotal.Inc()
}

// StatusClass maps an HTTP status code to its class label.
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
