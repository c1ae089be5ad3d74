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
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LEXGUARD_PORT", "")
	t.Setenv("LEXGUARD_DIRECTORY", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
}

// TestCreateDefault verifies default config creation.
func TestCreateDefault(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".lexguard", "lexguard.yaml")

	if err := createDefault(configPath); err != nil {
		t.Fatalf("createDefault() failed: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}
	var cfg LexguardConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}

	if cfg.Meta.Version != CurrentConfigVersion {
		t.Errorf("Meta.Version = %q, want %q", cfg.Meta.Version, CurrentConfigVersion)
	}
	if cfg.Validation.ProximityWindow != 300 {
		t.Errorf("Validation.ProximityWindow = %d, want 300", cfg.Validation.ProximityWindow)
	}
}

func TestLoadFrom_FirstRun(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "lexguard.yaml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file was not created: %v", err)
	}
	if cfg.Server.Port != 8088 {
		t.Errorf("Server.Port = %d, want 8088", cfg.Server.Port)
	}
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "lexguard.yaml")
	content := "server:\n  port: 9000\naudit:\n  retention: 1h\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Audit.Retention != time.Hour {
		t.Errorf("Audit.Retention = %v, want 1h", cfg.Audit.Retention)
	}
	if !cfg.Validation.CompleteLinks {
		t.Error("Validation.CompleteLinks should keep its default")
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEXGUARD_PORT", "7070")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	path := filepath.Join(t.TempDir(), "lexguard.yaml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Telemetry.TraceExporter != "otlp" {
		t.Errorf("Telemetry.TraceExporter = %q, want otlp", cfg.Telemetry.TraceExporter)
	}
	if got := cfg.TelemetryConfig().OTLPEndpoint; got != "collector:4317" {
		t.Errorf("OTLPEndpoint = %q, want collector:4317", got)
	}
}

func TestLoadFrom_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEXGUARD_PORT", "not-a-port")

	if _, err := LoadFrom(filepath.Join(t.TempDir(), "lexguard.yaml")); err == nil {
		t.Fatal("LoadFrom() should reject a non-numeric LEXGUARD_PORT")
	}
}

func TestLoadFrom_RejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
	}{
		{"zero window", "validation:\n  proximity_window: 0\n"},
		{"bad exporter", "telemetry:\n  trace_exporter: zipkin\n"},
		{"port out of range", "server:\n  port: 70000\n"},
		{"not yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "lexguard.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Errorf("LoadFrom() accepted %q", tt.content)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Validation.ApplySemanticCorrections = false
	cfg.Audit.InMemory = true

	g := cfg.GroundingConfig()
	if g.ApplySemanticCorrections {
		t.Error("GroundingConfig() lost ApplySemanticCorrections")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("GroundingConfig().Validate() = %v", err)
	}

	a := cfg.AuditStoreConfig()
	if !a.InMemory {
		t.Error("AuditStoreConfig() should be in-memory")
	}
	if a.Retention != cfg.Audit.Retention {
		t.Errorf("Retention = %v, want %v", a.Retention, cfg.Audit.Retention)
	}
}
