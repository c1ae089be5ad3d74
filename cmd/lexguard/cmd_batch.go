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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/AleutianAI/lexguard/pkg/ux"
	"github.com/AleutianAI/lexguard/services/lexguard/grounding"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxBatchLine bounds one JSONL request.
const maxBatchLine = 16 * 1024 * 1024

type batchOptions struct {
	concurrency int
	summary     bool
}

func newBatchCmd(a *app) *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch [requests.jsonl]",
		Short: "Validate a JSONL stream of requests",
		Long: `Batch reads one JSON request per line ({"request_id", "chunks", "answer"})
and writes one JSON report per line, in input order. Requests without an ID
get a generated one. Reads stdin when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runBatch(cmd, a, opts, in)
		},
	}
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", runtime.GOMAXPROCS(0), "requests validated in parallel")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print a one-line summary per request to stderr")
	return cmd
}

func runBatch(cmd *cobra.Command, a *app, opts *batchOptions, in io.Reader) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	requests, err := readBatch(in)
	if err != nil {
		return err
	}

	dir, err := a.loadDirectory()
	if err != nil {
		return err
	}
	v, err := a.newValidator(grounding.StaticDirectory(dir))
	if err != nil {
		return err
	}

	reports := make([]*grounding.Report, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	if opts.concurrency > 0 {
		g.SetLimit(opts.concurrency)
	}
	for i, req := range requests {
		g.Go(func() error {
			report, err := v.ProcessAnswer(gctx, req)
			if err != nil {
				return fmt.Errorf("request %s: %w", req.RequestID, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	enc := json.NewEncoder(out)
	p := ux.NewPrinter(false)
	for _, r := range reports {
		if err := enc.Encode(r); err != nil {
			return err
		}
		if opts.summary {
			fmt.Fprintln(cmd.ErrOrStderr(), p.Summary(r))
		}
	}
	a.logger.Info("batch complete", "requests", len(reports))
	return out.Flush()
}

// readBatch parses JSONL requests, skipping blank lines.
func readBatch(in io.Reader) ([]*grounding.Request, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBatchLine)

	var requests []*grounding.Request
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var req grounding.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if req.RequestID == "" {
			req.RequestID = uuid.New().String()
		}
		requests = append(requests, &req)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading requests: %w", err)
	}
	return requests, nil
}
