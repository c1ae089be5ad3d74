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
	"fmt"
	"log/slog"
	"time"

	"github.com/AleutianAI/lexguard/services/lexguard/directory"
	"github.com/AleutianAI/lexguard/services/lexguard/portal"
	"go.opentelemetry.io/otel/attribute"
)

// Validator sequences indexing, link completion and the semantic check over
// one answer and its evidence.
//
// Thread Safety: Safe for concurrent use after construction. Indexes are
// built per call and never shared between calls.
type Validator struct {
	config    Config
	scanner   *portal.Scanner
	corrector *Corrector
	dirs      DirectoryProvider
	logger    *slog.Logger
}

// NewValidator creates a validator.
//
// Inputs:
//
//	config - Pipeline configuration.
//	dirs - Supplies the code directory on every call. Nil uses the
//	  embedded default directory.
//	logger - Logger for corrections and skipped passes. Nil uses slog.Default().
//
// Outputs:
//
//	*Validator - The configured validator.
//	error - Non-nil if config is invalid.
func NewValidator(config Config, dirs DirectoryProvider, logger *slog.Logger) (*Validator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grounding config: %w", err)
	}
	scanner, err := portal.NewScanner(config.PortalBaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating link scanner: %w", err)
	}
	if dirs == nil {
		dirs = StaticDirectory(directory.Default())
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Validator{
		config:    config,
		scanner:   scanner,
		corrector: NewCorrector(scanner),
		dirs:      dirs,
		logger:    logger,
	}, nil
}

// Config returns the validator's configuration.
func (v *Validator) Config() Config {
	return v.config
}

// ProcessAnswer validates one answer against its evidence.
//
// Description:
//
//	Builds the evidence indexes, completes truncated links, then checks
//	citations against their nearby links on the completed text. When
//	validation is disabled, there is no evidence, or no chunk yields a
//	(link, article) pair, the answer passes through unchanged with
//	Performed false.
//
// Inputs:
//
//	ctx - Context for tracing.
//	req - The answer and its evidence chunks. Must not be nil.
//
// Outputs:
//
//	*Report - The corrected text, corrections and issues.
//	error - ErrNilRequest if req is nil. Nothing found is not an error.
func (v *Validator) ProcessAnswer(ctx context.Context, req *Request) (*Report, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	start := time.Now()
	ctx, span := StartValidationSpan(ctx, "grounding.Validator.ProcessAnswer", len(req.Answer))
	defer span.End()

	report := &Report{
		RequestID:       req.RequestID,
		CorrectedText:   req.Answer,
		ArticlesIndexed: []string{},
		Corrections:     []Correction{},
		SemanticIssues:  []SemanticIssue{},
	}
	finish := func(reason string) *Report {
		report.Duration = time.Since(start)
		if reason != "" {
			span.SetAttributes(attribute.String("lexguard.skip_reason", reason))
			v.logger.Debug("validation skipped",
				"request_id", req.RequestID,
				"reason", reason,
			)
		}
		SetValidationSpanResult(span, report)
		RecordValidation(ctx, report)
		return report
	}

	switch {
	case !v.config.Enabled:
		return finish("disabled"), nil
	case len(req.Chunks) == 0:
		return finish("no evidence"), nil
	case v.config.MaxAnswerBytes > 0 && len(req.Answer) > v.config.MaxAnswerBytes:
		v.logger.Warn("answer exceeds scan limit, passing through",
			"request_id", req.RequestID,
			"answer_bytes", len(req.Answer),
			"limit", v.config.MaxAnswerBytes,
		)
		return finish("answer too large"), nil
	}

	dir := v.dirs.Current()
	idx := NewChunkIndexer(v.scanner, dir).IndexEvidence(req.Chunks)
	if len(idx.Articles) == 0 {
		return finish("no indexed articles"), nil
	}

	report.Performed = true
	report.ArticlesIndexed = idx.Articles.Keys()

	text := req.Answer
	if v.config.CompleteLinks {
		var applied []Correction
		text, applied = v.corrector.CorrectIncompleteLinks(text, idx.Links)
		report.Corrections = append(report.Corrections, applied...)
	}

	citations := NewCitationScanner(dir)
	if v.config.CheckSemantics {
		checker := NewSemanticChecker(v.scanner, citations, v.config.ProximityWindow)
		issues, proposed := checker.CheckSemanticConsistency(text, idx.Links, idx.Articles)
		if v.config.ApplySemanticCorrections {
			var applied []Correction
			text, applied = ApplyCorrections(text, proposed)
			report.Corrections = append(report.Corrections, applied...)
		} else {
			for i := range issues {
				issues[i].Corrected = false
			}
		}
		report.SemanticIssues = append(report.SemanticIssues, issues...)
	}

	report.CorrectedText = text
	report.CitationsFound = len(citations.ExtractCitations(text))
	report.LinksFound = len(v.scanner.ExtractLinkMatches(text))

	for _, c := range report.Corrections {
		v.logger.Info("link corrected",
			"request_id", req.RequestID,
			"reason", c.Reason,
			"original", c.OriginalText,
			"replacement", c.ReplacementText,
		)
	}
	if len(report.SemanticIssues) > 0 {
		v.logger.Info("citation mismatches found",
			"request_id", req.RequestID,
			"issues", len(report.SemanticIssues),
		)
	}

	return finish(""), nil
}
