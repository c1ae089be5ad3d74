// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"log/slog"

	"github.com/AleutianAI/lexguard/services/lexguard/handlers"
	"github.com/AleutianAI/lexguard/services/lexguard/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Dependencies are the collaborators the routes are wired to.
type Dependencies struct {
	Validator handlers.AnswerValidator
	Store     handlers.ReportStore
	Metrics   *observability.ServiceMetrics
	Limiter   *rate.Limiter
	Logger    *slog.Logger

	// Gatherer backs /metrics. Nil uses the default gatherer.
	Gatherer prometheus.Gatherer
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.POST("/validate",
			handlers.RateLimit(deps.Limiter, deps.Metrics),
			handlers.HandleValidate(deps.Validator, deps.Store, deps.Metrics, deps.Logger),
		)
		v1.GET("/validations/:id", handlers.HandleGetValidation(deps.Store, deps.Metrics))
	}
}
