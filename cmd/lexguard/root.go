// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"log/slog"

	"github.com/AleutianAI/lexguard/cmd/lexguard/config"
	"github.com/AleutianAI/lexguard/pkg/logging"
	"github.com/AleutianAI/lexguard/services/lexguard/directory"
	"github.com/AleutianAI/lexguard/services/lexguard/grounding"
	"github.com/spf13/cobra"
)

// app is the state shared by every command of one invocation.
type app struct {
	configPath    string
	logLevel      string
	logJSON       bool
	logDir        string
	directoryPath string

	cfg     config.LexguardConfig
	logger  *slog.Logger
	closeFn func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "lexguard",
		Short: "Validate Chilean legal deep links in generated answers",
		Long: `lexguard checks the leychile deep links of an answer against the evidence
chunks it was generated from. Truncated links are completed and links that
point to a different article than the prose cites are reported or fixed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closeFn != nil {
				return a.closeFn()
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.lexguard/lexguard.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.BoolVar(&a.logJSON, "log-json", false, "emit JSON logs")
	flags.StringVar(&a.logDir, "log-dir", "", "also write JSON logs to this directory")
	flags.StringVar(&a.directoryPath, "directory", "", "codes YAML file overriding the configured directory")

	root.AddCommand(
		newValidateCmd(a),
		newBatchCmd(a),
		newServeCmd(a),
		newDirectoryCmd(a),
	)
	return root
}

// setup loads the config and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if a.configPath == "" {
		if err := config.Load(""); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		a.cfg = config.Global
	} else {
		cfg, err := config.LoadFrom(a.configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		a.cfg = cfg
	}
	if a.directoryPath != "" {
		a.cfg.Directory.Path = a.directoryPath
	}

	level, err := logging.ParseLevel(a.logLevel)
	if err != nil {
		return err
	}
	logger := logging.New(logging.Config{
		Level:   level,
		JSON:    a.logJSON || cmd.Name() == "serve",
		LogDir:  a.logDir,
		Service: "lexguard",
		Output:  cmd.ErrOrStderr(),
	})
	a.logger = logger.Slog()
	a.closeFn = logger.Close
	return nil
}

// loadDirectory returns the configured code directory.
func (a *app) loadDirectory() (*directory.Directory, error) {
	dir, err := directory.Load(a.cfg.Directory.Path)
	if err != nil {
		return nil, fmt.Errorf("loading directory: %w", err)
	}
	return dir, nil
}

// newValidator builds a validator over dirs from the loaded config.
func (a *app) newValidator(dirs grounding.DirectoryProvider) (*grounding.Validator, error) {
	return grounding.NewValidator(a.cfg.GroundingConfig(), dirs, a.logger)
}
