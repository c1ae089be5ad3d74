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
	"strconv"
	"sync"

	"github.com/AleutianAI/lexguard/services/lexguard/telemetry"
	"gopkg.in/yaml.v3"
)

var (
	// Global is a singleton instance
	Global LexguardConfig
	once   sync.Once
)

// Load ensures the config at path is loaded into the Global variable.
// An empty path means ~/.lexguard/lexguard.yaml.
func Load(path string) error {
	var err error
	once.Do(func() {
		Global, err = LoadFrom(path)
	})
	return err
}

// DefaultPath returns ~/.lexguard/lexguard.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".lexguard", "lexguard.yaml"), nil
}

// LoadFrom reads the config at path, creating it with defaults on first run.
// Fields missing from the file keep their default values. Environment
// overrides are applied last.
func LoadFrom(path string) (LexguardConfig, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return LexguardConfig{}, err
		}
		path = p
	}
	// create it if it doesn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createDefault(path); err != nil {
			return LexguardConfig{}, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return LexguardConfig{}, fmt.Errorf("failed to read the config file %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return LexguardConfig{}, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	if err := applyEnv(&cfg); err != nil {
		return LexguardConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return LexguardConfig{}, err
	}
	return cfg, nil
}

// applyEnv overrides file values from the environment.
//
//   - LEXGUARD_PORT: server port
//   - LEXGUARD_DIRECTORY: code directory file
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint; enables OTLP traces when
//     the file leaves tracing off
func applyEnv(cfg *LexguardConfig) error {
	if v := os.Getenv("LEXGUARD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LEXGUARD_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("LEXGUARD_DIRECTORY"); v != "" {
		cfg.Directory.Path = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
		if cfg.Telemetry.TraceExporter == "" || cfg.Telemetry.TraceExporter == telemetry.ExporterNone {
			cfg.Telemetry.TraceExporter = telemetry.ExporterOTLP
		}
	}
	return nil
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
