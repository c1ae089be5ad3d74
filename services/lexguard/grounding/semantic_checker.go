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
	"fmt"

	"github.com/AleutianAI/lexguard/services/lexguard/portal"
)

// IssueArticleMismatch is the code of every SemanticIssue.
const IssueArticleMismatch = "SEMANTIC_ARTICLE_MISMATCH"

// SemanticChecker pairs citations with nearby links and flags pairs that
// name different articles.
//
// Thread Safety: Safe for concurrent use.
type SemanticChecker struct {
	scanner   *portal.Scanner
	citations *CitationScanner
	window    int
}

// NewSemanticChecker creates a checker. window is the proximity window in
// bytes; non-positive values use DefaultProximityWindow.
func NewSemanticChecker(scanner *portal.Scanner, citations *CitationScanner, window int) *SemanticChecker {
	if window <= 0 {
		window = DefaultProximityWindow
	}
	return &SemanticChecker{scanner: scanner, citations: citations, window: window}
}

// pairing is a citation with the link nearest to it.
type pairing struct {
	citation Citation
	match    portal.LinkMatch
	record   LinkRecord
}

// CheckSemanticConsistency reports citations whose nearest link points to
// another article, and proposes the authoritative link where one exists.
//
// Description:
//
//	Each citation is paired with the nearest link within the window,
//	measured from the citation end. The pair is a mismatch when the linked
//	record's article number differs from the cited one, or when both sides
//	name a norm and the norms differ. A bare citation borrows the linked
//	norm to build its key.
//
//	A correction replaces the link occurrence with the ArticleIndex entry
//	of the cited key. No correction is proposed when there is no entry,
//	when the entry is the linked link itself, when another citation agrees
//	with the same occurrence, or when the occurrence was already corrected.
//	The issue is reported in every case.
//
// Outputs:
//
//	[]SemanticIssue - One per mismatched citation.
//	[]Correction - "semantic_mismatch" corrections with offsets into answer.
func (sc *SemanticChecker) CheckSemanticConsistency(answer string, links LinkIndex, articles ArticleIndex) ([]SemanticIssue, []Correction) {
	matches := sc.scanner.ExtractLinkMatches(answer)
	if len(matches) == 0 {
		return nil, nil
	}

	var mismatched []pairing
	confirmed := make(map[int]bool)

	for _, c := range sc.citations.ExtractCitations(answer) {
		near, ok := portal.NearestIn(matches, c.End, sc.window)
		if !ok {
			continue
		}
		rec, ok := links.Lookup(near.Match.Link)
		if !ok || rec.Article == nil {
			continue
		}
		if agrees(c, *rec.Article) {
			confirmed[near.Match.Start] = true
			continue
		}
		mismatched = append(mismatched, pairing{citation: c, match: near.Match, record: rec})
	}

	var (
		issues      []SemanticIssue
		corrections []Correction
	)
	corrected := make(map[int]bool)

	for _, p := range mismatched {
		normName := p.citation.NormName
		if normName == "" {
			normName = p.record.Article.NormName
		}
		cited := NormalizedKey(normName, p.citation.ArticleNumber)
		linked := p.record.Article.Key()

		issue := SemanticIssue{
			Code:          IssueArticleMismatch,
			Message:       fmt.Sprintf("citation %q refers to %s but the nearby link points to %s", p.citation.Raw, cited, linked),
			Citation:      p.citation,
			Link:          p.match.Link,
			CitedArticle:  cited,
			LinkedArticle: linked,
		}

		start := p.match.Start
		if entry, ok := articles[cited]; ok && !confirmed[start] && !corrected[start] && !entry.Link.Equal(p.match.Link) {
			corrections = append(corrections, Correction{
				OriginalText:    p.match.Link.Raw,
				ReplacementText: entry.Link.Raw,
				Reason:          ReasonSemanticMismatch,
				Offset:          start,
			})
			corrected[start] = true
			issue.Corrected = true
		}

		issues = append(issues, issue)
	}

	return issues, corrections
}

func agrees(c Citation, linked ArticleInfo) bool {
	if c.ArticleNumber != linked.ArticleNumber {
		return false
	}
	return c.NormName == "" || linked.NormName == "" || c.NormName == linked.NormName
}
