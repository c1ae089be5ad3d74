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
	"testing"
	"time"
)

func TestRecordValidation(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	RecordValidation(ctx, nil)
	RecordValidation(ctx, &Report{Duration: time.Millisecond})
	RecordValidation(ctx, &Report{
		Performed:       true,
		ArticlesIndexed: []string{"codigo civil articulo 12"},
		Corrections:     []Correction{{Reason: ReasonIncomplete}},
		SemanticIssues:  []SemanticIssue{{Code: IssueArticleMismatch, Corrected: true}},
		Duration:        5 * time.Millisecond,
	})
}

func TestStartValidationSpan(t *testing.T) {
	ctx := context.Background()

	_, span := StartValidationSpan(ctx, "test_operation", 1000)
	defer span.End()

	// Should not panic
	SetValidationSpanResult(span, nil)
	SetValidationSpanResult(span, &Report{Performed: true, CitationsFound: 2})
}
