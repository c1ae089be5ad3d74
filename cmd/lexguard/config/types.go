// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AleutianAI/lexguard/services/lexguard/audit"
	"github.com/AleutianAI/lexguard/services/lexguard/grounding"
	"github.com/AleutianAI/lexguard/services/lexguard/portal"
	"github.com/AleutianAI/lexguard/services/lexguard/telemetry"
	"github.com/go-playground/validator/v10"
)

// CurrentConfigVersion is written to new config files.
const CurrentConfigVersion = "1"

type LexguardConfig struct {
	Meta MetaConfig `yaml:"meta"`

	// Server: HTTP listener and admission control for `lexguard serve`
	Server ServerConfig `yaml:"server"`

	// Validation: pipeline switches shared by every command
	Validation ValidationConfig `yaml:"validation"`

	// Directory: optional YAML file overriding the built-in code directory
	Directory DirectoryConfig `yaml:"directory"`

	// Audit: where served reports are kept
	Audit AuditConfig `yaml:"audit"`

	// Telemetry: exporters for traces and otel metrics
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type MetaConfig struct {
	Version string `yaml:"version"`
}

type ServerConfig struct {
	Port int `yaml:"port" validate:"min=1,max=65535"`

	// RateLimit is requests per second on /v1/validate. Zero disables it.
	RateLimit float64 `yaml:"rate_limit" validate:"min=0"`
	Burst     int     `yaml:"burst" validate:"min=0"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type ValidationConfig struct {
	Enabled                  bool   `yaml:"enabled"`
	PortalBaseURL            string `yaml:"portal_base_url" validate:"required,url"`
	ProximityWindow          int    `yaml:"proximity_window" validate:"min=1"`
	MaxAnswerBytes           int    `yaml:"max_answer_bytes" validate:"min=0"`
	CompleteLinks            bool   `yaml:"complete_links"`
	CheckSemantics           bool   `yaml:"check_semantics"`
	ApplySemanticCorrections bool   `yaml:"apply_semantic_corrections"`
}

type DirectoryConfig struct {
	// Path to a codes YAML file. Empty uses the built-in directory.
	Path string `yaml:"path,omitempty"`

	// Watch reloads Path on change while serving.
	Watch bool `yaml:"watch"`
}

type AuditConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Path      string        `yaml:"path"`
	InMemory  bool          `yaml:"in_memory"`
	Retention time.Duration `yaml:"retention"`
}

type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" validate:"omitempty,oneof=none otlp stdout"`
	MetricExporter string `yaml:"metric_exporter" validate:"omitempty,oneof=none prometheus stdout"`
	OTLPEndpoint   string `yaml:"otlp_endpoint,omitempty"`
}

var configValidate = validator.New()

// Validate checks every section against its validator tags.
func (c *LexguardConfig) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GroundingConfig converts the validation section for the pipeline.
func (c *LexguardConfig) GroundingConfig() grounding.Config {
	v := c.Validation
	return grounding.Config{
		Enabled:                  v.Enabled,
		PortalBaseURL:            v.PortalBaseURL,
		ProximityWindow:          v.ProximityWindow,
		MaxAnswerBytes:           v.MaxAnswerBytes,
		CompleteLinks:            v.CompleteLinks,
		CheckSemantics:           v.CheckSemantics,
		ApplySemanticCorrections: v.ApplySemanticCorrections,
	}
}

// AuditStoreConfig converts the audit section for audit.Open.
func (c *LexguardConfig) AuditStoreConfig() audit.Config {
	if c.Audit.InMemory {
		cfg := audit.InMemoryConfig()
		cfg.Retention = c.Audit.Retention
		return cfg
	}
	cfg := audit.DefaultConfig(c.Audit.Path)
	if c.Audit.Retention > 0 {
		cfg.Retention = c.Audit.Retention
	}
	return cfg
}

// TelemetryConfig merges the telemetry section over telemetry defaults.
func (c *LexguardConfig) TelemetryConfig() telemetry.Config {
	cfg := telemetry.DefaultConfig()
	if c.Telemetry.TraceExporter != "" {
		cfg.TraceExporter = c.Telemetry.TraceExporter
	}
	if c.Telemetry.MetricExporter != "" {
		cfg.MetricExporter = c.Telemetry.MetricExporter
	}
	if c.Telemetry.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	}
	return cfg
}

func DefaultConfig() LexguardConfig {
	pipeline := grounding.DefaultConfig()

	auditPath := filepath.Join(os.TempDir(), "lexguard", "audit")
	if home, err := os.UserHomeDir(); err == nil {
		auditPath = filepath.Join(home, ".lexguard", "audit")
	}

	return LexguardConfig{
		Meta: MetaConfig{Version: CurrentConfigVersion},
		Server: ServerConfig{
			Port:            8088,
			RateLimit:       50,
			Burst:           100,
			ShutdownTimeout: 10 * time.Second,
		},
		Validation: ValidationConfig{
			Enabled:                  pipeline.Enabled,
			PortalBaseURL:            portal.DefaultBaseURL,
			ProximityWindow:          pipeline.ProximityWindow,
			MaxAnswerBytes:           pipeline.MaxAnswerBytes,
			CompleteLinks:            pipeline.CompleteLinks,
			CheckSemantics:           pipeline.CheckSemantics,
			ApplySemanticCorrections: pipeline.ApplySemanticCorrections,
		},
		Directory: DirectoryConfig{Watch: true},
		Audit: AuditConfig{
			Enabled:   true,
			Path:      auditPath,
			Retention: 30 * 24 * time.Hour,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  telemetry.ExporterNone,
			MetricExporter: telemetry.ExporterPrometheus,
		},
	}
}
