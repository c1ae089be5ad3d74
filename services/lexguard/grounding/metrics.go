// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package grounding

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for validation.
var (
	tracer = otel.Tracer("lexguard.grounding")
	meter  = otel.Meter("lexguard.grounding")
)

var (
	validationsTotal   metric.Int64Counter
	validationDuration metric.Float64Histogram
	correctionsTotal   metric.Int64Counter
	issuesTotal        metric.Int64Counter
	articlesIndexed    metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		validationsTotal, err = meter.Int64Counter(
			"lexguard_validations_total",
			metric.WithDescription("Total answer validations by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		validationDuration, err = meter.Float64Histogram(
			"lexguard_validation_duration_seconds",
			metric.WithDescription("Answer validation duration"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		correctionsTotal, err = meter.Int64Counter(
			"lexguard_corrections_total",
			metric.WithDescription("Total link corrections by reason"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		issuesTotal, err = meter.Int64Counter(
			"lexguard_semantic_issues_total",
			metric.WithDescription("Total citation/link mismatches by whether they were corrected"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		articlesIndexed, err = meter.Int64Histogram(
			"lexguard_articles_indexed",
			metric.WithDescription("Articles indexed per evidence set"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// RecordValidation records aggregate metrics for one validation pass.
//
// Thread Safety: Safe for concurrent use.
func RecordValidation(ctx context.Context, report *Report) {
	if report == nil {
		return
	}
	if err := initMetrics(); err != nil {
		return
	}

	outcome := "skipped"
	switch {
	case report.Modified():
		outcome = "corrected"
	case report.Performed:
		outcome = "verified"
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	validationsTotal.Add(ctx, 1, attrs)
	validationDuration.Record(ctx, report.Duration.Seconds(), attrs)

	if report.Performed {
		articlesIndexed.Record(ctx, int64(len(report.ArticlesIndexed)))
	}
	for _, c := range report.Corrections {
		correctionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(c.Reason))))
	}
	for _, issue := range report.SemanticIssues {
		issuesTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("corrected", issue.Corrected)))
	}
}

// StartValidationSpan creates a span for one validation stage.
//
// Inputs:
//   - ctx: Parent context.
//   - operation: Operation name.
//   - answerLen: Length of the answer being validated.
//
// Thread Safety: Safe for concurrent use.
func StartValidationSpan(ctx context.Context, operation string, answerLen int) (context.Context, trace.Span) {
	return tracer.Start(ctx, operation,
		trace.WithAttributes(
			attribute.Int("lexguard.answer_length", answerLen),
		),
	)
}

// SetValidationSpanResult sets result attributes on a validation span.
func SetValidationSpanResult(span trace.Span, report *Report) {
	if report == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("lexguard.performed", report.Performed),
		attribute.Int("lexguard.articles_indexed", len(report.ArticlesIndexed)),
		attribute.Int("lexguard.citations", report.CitationsFound),
		attribute.Int("lexguard.links", report.LinksFound),
		attribute.Int("lexguard.corrections", len(report.Corrections)),
		attribute.Int("lexguard.semantic_issues", len(report.SemanticIssues)),
	)
}
