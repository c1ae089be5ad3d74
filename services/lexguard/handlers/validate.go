// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers provides HTTP request handlers for the validation service.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/AleutianAI/lexguard/services/lexguard/audit"
	"github.com/AleutianAI/lexguard/services/lexguard/grounding"
	"github.com/AleutianAI/lexguard/services/lexguard/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lexguard.handlers")

// AnswerValidator validates one answer against its evidence.
//
// *grounding.Validator satisfies it.
type AnswerValidator interface {
	ProcessAnswer(ctx context.Context, req *grounding.Request) (*grounding.Report, error)
}

// ReportStore persists reports by request ID.
//
// *audit.Store satisfies it.
type ReportStore interface {
	Put(ctx context.Context, report *grounding.Report) error
	Get(ctx context.Context, requestID string) (*grounding.Report, error)
}

// HandleValidate serves POST /v1/validate.
//
// # Description
//
// Binds and validates the body, runs the validator and returns the report.
// The report is persisted when a store is configured; a failed write is
// logged and does not fail the request.
//
// # Inputs
//
//   - v: The validator. Must not be nil.
//   - store: Optional report store.
//   - metrics: Optional service metrics.
//   - logger: Optional logger. Nil uses slog.Default().
//
// # Responses
//
//   - 200: grounding.Report
//   - 400: malformed or invalid body
//   - 500: validator failure
func HandleValidate(v AnswerValidator, store ReportStore, metrics *observability.ServiceMetrics, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		start := time.Now()
		ctx, span := tracer.Start(c.Request.Context(), "handlers.HandleValidate")
		defer span.End()

		status := http.StatusOK
		defer func() {
			if metrics != nil {
				metrics.RecordRequest(observability.EndpointValidate, observability.StatusClass(status), time.Since(start).Seconds())
			}
		}()

		var req ValidateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			status = http.StatusBadRequest
			span.SetStatus(codes.Error, "invalid body")
			c.JSON(status, ErrorResponse{Error: "invalid request body: " + err.Error()})
			return
		}
		if err := req.Validate(); err != nil {
			status = http.StatusBadRequest
			span.SetStatus(codes.Error, "validation failed")
			c.JSON(status, ErrorResponse{Error: "invalid request: " + err.Error(), RequestID: req.RequestID})
			return
		}
		req.EnsureDefaults()
		span.SetAttributes(
			attribute.String("request_id", req.RequestID),
			attribute.Int("chunks", len(req.Chunks)),
		)

		report, err := v.ProcessAnswer(ctx, req.ToRequest())
		if err != nil {
			status = http.StatusInternalServerError
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error("validation failed", "request_id", req.RequestID, "error", err)
			c.JSON(status, ErrorResponse{Error: "validation failed", RequestID: req.RequestID})
			return
		}

		if metrics != nil {
			metrics.RecordReport(report)
		}
		if store != nil {
			if err := store.Put(ctx, report); err != nil {
				logger.Warn("failed to persist report", "request_id", report.RequestID, "error", err)
			}
		}

		c.JSON(status, report)
	}
}

// HandleGetValidation serves GET /v1/validations/:id.
//
// # Responses
//
//   - 200: grounding.Report
//   - 404: unknown request ID
//   - 503: no store configured
//   - 500: store failure
func HandleGetValidation(store ReportStore, metrics *observability.ServiceMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		status := http.StatusOK
		defer func() {
			if metrics != nil {
				metrics.RecordRequest(observability.EndpointGetValidation, observability.StatusClass(status), time.Since(start).Seconds())
			}
		}()

		id := c.Param("id")
		if store == nil {
			status = http.StatusServiceUnavailable
			c.JSON(status, ErrorResponse{Error: "audit store is disabled", RequestID: id})
			return
		}

		report, err := store.Get(c.Request.Context(), id)
		switch {
		case errors.Is(err, audit.ErrNotFound):
			status = http.StatusNotFound
			c.JSON(status, ErrorResponse{Error: "validation not found", RequestID: id})
		case err != nil:
			status = http.StatusInternalServerError
			c.JSON(status, ErrorResponse{Error: "failed to load validation", RequestID: id})
		default:
			c.JSON(status, report)
		}
	}
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
