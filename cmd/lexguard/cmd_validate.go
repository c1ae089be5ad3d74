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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/AleutianAI/lexguard/pkg/ux"
	"github.com/AleutianAI/lexguard/services/lexguard/grounding"
	"github.com/AleutianAI/lexguard/services/lexguard/telemetry"
	"github.com/spf13/cobra"
)

type validateOptions struct {
	evidence    []string
	answerPath  string
	requestPath string
	requestID   string
	asJSON      bool
	showDiff    bool
	trace       bool
	strict      bool
}

func newValidateCmd(a *app) *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate one answer against its evidence chunks",
		Long: `Validate reads evidence chunks and an answer, completes truncated deep
links and checks that each cited article matches its nearby link.

Evidence is given as files or directories; every file is one chunk. A
request file holding {"chunks": [...], "answer": "..."} may be used instead.`,
		Example: `  lexguard validate --evidence chunks/ --answer answer.txt
  lexguard validate --request request.json --json
  cat answer.txt | lexguard validate --evidence cc-12.md --diff`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, a, opts)
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&opts.evidence, "evidence", "e", nil, "evidence chunk files or directories")
	f.StringVarP(&opts.answerPath, "answer", "a", "-", `answer file, "-" for stdin`)
	f.StringVarP(&opts.requestPath, "request", "r", "", "JSON request file with chunks and answer")
	f.StringVar(&opts.requestID, "request-id", "", "request ID recorded in the report")
	f.BoolVar(&opts.asJSON, "json", false, "print the report as JSON")
	f.BoolVar(&opts.showDiff, "diff", false, "print a unified diff of the corrected answer")
	f.BoolVar(&opts.trace, "trace", false, "print OpenTelemetry spans to stderr")
	f.BoolVar(&opts.strict, "strict", false, "exit with status 2 when the answer needed corrections or has issues")
	return cmd
}

func runValidate(cmd *cobra.Command, a *app, opts *validateOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.trace {
		tcfg := a.cfg.TelemetryConfig()
		tcfg.TraceExporter = telemetry.ExporterStdout
		tcfg.MetricExporter = telemetry.ExporterNone
		tcfg.Writer = cmd.ErrOrStderr()
		shutdown, err := telemetry.Init(ctx, tcfg)
		if err != nil {
			return err
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	req, err := loadRequest(cmd.InOrStdin(), opts)
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

	report, err := v.ProcessAnswer(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		p := ux.AutoPrinter(os.Stdout)
		if out != os.Stdout {
			p = ux.NewPrinter(false)
		}
		fmt.Fprint(out, p.RenderReport(report))
		if opts.showDiff {
			d, err := ux.AnswerDiff("answer", req.Answer, report.CorrectedText)
			if err != nil {
				return fmt.Errorf("rendering diff: %w", err)
			}
			fmt.Fprint(out, p.Diff(d))
		} else if report.Modified() {
			fmt.Fprintln(out)
			fmt.Fprintln(out, p.Box(report.CorrectedText))
		}
	}

	if opts.strict && (report.Modified() || len(report.SemanticIssues) > 0) {
		return &exitError{code: 2}
	}
	return nil
}

// loadRequest builds the request from a request file or from evidence paths
// plus an answer.
func loadRequest(stdin io.Reader, opts *validateOptions) (*grounding.Request, error) {
	if opts.requestPath != "" {
		data, err := os.ReadFile(opts.requestPath)
		if err != nil {
			return nil, fmt.Errorf("reading request: %w", err)
		}
		var req grounding.Request
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("parsing request %s: %w", opts.requestPath, err)
		}
		if opts.requestID != "" {
			req.RequestID = opts.requestID
		}
		return &req, nil
	}

	if len(opts.evidence) == 0 {
		return nil, errors.New("either --request or --evidence is required")
	}
	chunks, err := readEvidence(opts.evidence)
	if err != nil {
		return nil, err
	}

	var answer []byte
	if opts.answerPath == "-" {
		answer, err = io.ReadAll(stdin)
	} else {
		answer, err = os.ReadFile(opts.answerPath)
	}
	if err != nil {
		return nil, fmt.Errorf("reading answer: %w", err)
	}

	return &grounding.Request{
		RequestID: opts.requestID,
		Chunks:    chunks,
		Answer:    string(answer),
	}, nil
}

// readEvidence turns each file into one chunk. Directories contribute their
// regular files in name order, without recursion.
func readEvidence(paths []string) ([]grounding.EvidenceChunk, error) {
	var chunks []grounding.EvidenceChunk
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("evidence %s: %w", p, err)
		}
		files := []string{p}
		if info.IsDir() {
			entries, err := os.ReadDir(p)
			if err != nil {
				return nil, fmt.Errorf("evidence %s: %w", p, err)
			}
			files = files[:0]
			for _, e := range entries {
				if e.Type().IsRegular() {
					files = append(files, filepath.Join(p, e.Name()))
				}
			}
			sort.Strings(files)
		}
		for _, f := range files {
			data, err := os.ReadFile(f)
			if err != nil {
				return nil, fmt.Errorf("evidence %s: %w", f, err)
			}
			chunks = append(chunks, grounding.EvidenceChunk{SourceID: filepath.Base(f), Text: string(data)})
		}
	}
	return chunks, nil
}
