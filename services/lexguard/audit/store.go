// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package audit persists validation reports in an embedded BadgerDB so that
// every correction applied to an answer can be looked up by request ID.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/AleutianAI/lexguard/services/lexguard/grounding"
	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when no report is stored under a request ID.
var ErrNotFound = errors.New("audit: report not found")

const reportPrefix = "report/"

// Config holds configuration for the audit store.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Retention expires reports after this long. Zero keeps them forever.
	Retention time.Duration

	// GCInterval is how often to run value log garbage collection.
	// Set to 0 to disable.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum ratio of discardable data before GC.
	GCDiscardRatio float64

	// Logger receives BadgerDB's internal logs. Nil silences them.
	Logger *slog.Logger
}

// DefaultConfig returns defaults for a persistent store at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		Retention:      30 * 24 * time.Hour,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store keeps validation reports keyed by request ID.
//
// Thread Safety: Safe for concurrent use.
type Store struct {
	db        *badger.DB
	retention time.Duration
	gc        *gcRunner
}

// Open opens the audit store.
//
// Inputs:
//
//	cfg - Store configuration. Path is required unless InMemory is true.
//
// Outputs:
//
//	*Store - The opened store. Caller must call Close() when done.
//	error - Non-nil if the path is missing or the database cannot be opened.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent audit store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create audit directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	s := &Store{db: db, retention: cfg.Retention}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.gc = newGCRunner(db, cfg.GCInterval, cfg.GCDiscardRatio, cfg.Logger)
		s.gc.start()
	}
	return s, nil
}

// Put stores report under its request ID, replacing any previous report.
func (s *Store) Put(ctx context.Context, report *grounding.Report) error {
	if report == nil || report.RequestID == "" {
		return errors.New("report with a request ID is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", report.RequestID, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(reportKey(report.RequestID), data)
		if s.retention > 0 {
			entry = entry.WithTTL(s.retention)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("store report %s: %w", report.RequestID, err)
	}
	return nil
}

// Get returns the report stored under requestID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, requestID string) (*grounding.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var report grounding.Report
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(reportKey(requestID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &report)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, requestID)
	}
	if err != nil {
		return nil, fmt.Errorf("load report %s: %w", requestID, err)
	}
	return &report, nil
}

// Count returns the number of stored reports.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(reportPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}

// Close stops garbage collection and closes the database.
func (s *Store) Close() error {
	if s.gc != nil {
		s.gc.stop()
	}
	return s.db.Close()
}

func reportKey(requestID string) []byte {
	return []byte(reportPrefix + requestID)
}
