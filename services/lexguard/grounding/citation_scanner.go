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
	"regexp"
	"sort"
	"strings"

	"github.com/AleutianAI/lexguard/services/lexguard/directory"
)

// Pattern names reported in Citation.Pattern.
const (
	PatternExplicit = "explicit"
	PatternAcronym  = "acronym"
	PatternBare     = "bare"
)

const (
	articleWord = `(?:art[ií]culos?|arts?\.)`
	numberCore  = `\d+(?:\.\d{3})*(?:\s*[°º])?(?:\s*(?:bis|ter|quater|quinquies)\b)?`
	numberList  = numberCore + `(?:\s*(?:,|y|e)\s*` + numberCore + `)*`
)

var (
	// numberPattern splits a matched number list into its numbers.
	numberPattern = regexp.MustCompile(`(?i)` + numberCore)

	// explicitPattern: "artículo 12 del ", "arts. 3 y 4 de la ". The norm
	// follows the match and is recognized separately.
	explicitPattern = regexp.MustCompile(`(?i)\b` + articleWord + `\s*(` + numberList + `)\s+(?:del|de\s+la|de)\s+`)

	// acronymPattern: "Art. 12 CC", "arts. 3 y 4 del C.T.".
	acronymPattern = regexp.MustCompile(`(?i:\b` + articleWord + `)\s*((?i:` + numberList + `))\s+(?:(?i:del?)\s+)?([A-Z][A-Za-z.]{1,7})`)

	// barePattern: "artículo 12" with no norm.
	barePattern = regexp.MustCompile(`(?i)\b` + articleWord + `\s*(` + numberList + `)`)

	// Fallbacks for norms the directory does not know.
	codeNamePattern = regexp.MustCompile(`^[Cc][óo]digo(?:\s+(?:de\s+la\s+|del\s+|de\s+)?[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)+`)
	lawNamePattern  = regexp.MustCompile(`^[Ll]ey\s+(?:[Nn](?:ro)?\.?\s*[°º]?\s*)?\d+(?:\.\d{3})*`)
)

// citationCandidate is a raw match before overlap resolution.
type citationCandidate struct {
	start, end int
	numbers    []string
	normName   string
	pattern    string
}

// CitationScanner finds natural-language article citations in prose.
//
// Description:
//
//	Three recognizers run in priority order: explicit ("artículo 12 del
//	Código Civil", "artículo 3 de la Ley N° 19.496"), acronym ("Art. 12
//	CC") and bare ("artículo 12"). A lower-priority match overlapping an
//	accepted one is discarded. A list ("artículos 12 y 13") yields one
//	citation per number, all sharing the match span.
//
// Thread Safety: Safe for concurrent use; immutable after construction.
type CitationScanner struct {
	dir *directory.Directory
}

// NewCitationScanner creates a scanner resolving norm names and acronyms
// through dir. A nil dir only recognizes fallback norm shapes.
func NewCitationScanner(dir *directory.Directory) *CitationScanner {
	return &CitationScanner{dir: dir}
}

// ExtractCitations returns every citation in text ordered by position.
// The result is never nil.
func (cs *CitationScanner) ExtractCitations(text string) []Citation {
	var candidates []citationCandidate
	candidates = append(candidates, cs.explicitCandidates(text)...)
	candidates = append(candidates, cs.acronymCandidates(text)...)
	candidates = append(candidates, bareCandidates(text)...)

	var accepted []citationCandidate
	for _, c := range candidates {
		if overlapsAny(c, accepted) {
			continue
		}
		accepted = append(accepted, c)
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].start < accepted[j].start
	})

	citations := make([]Citation, 0, len(accepted))
	for _, c := range accepted {
		raw := text[c.start:c.end]
		for _, n := range c.numbers {
			citations = append(citations, Citation{
				ArticleNumber: NormalizeArticleNumber(n),
				NormName:      c.normName,
				Position:      c.start,
				End:           c.end,
				Raw:           raw,
				Pattern:       c.pattern,
			})
		}
	}
	return citations
}

func (cs *CitationScanner) explicitCandidates(text string) []citationCandidate {
	var out []citationCandidate
	for _, m := range explicitPattern.FindAllStringSubmatchIndex(text, -1) {
		name, length, ok := cs.normAt(text[m[1]:])
		if !ok {
			continue
		}
		out = append(out, citationCandidate{
			start:    m[0],
			end:      m[1] + length,
			numbers:  splitNumbers(text[m[2]:m[3]]),
			normName: name,
			pattern:  PatternExplicit,
		})
	}
	return out
}

// normAt recognizes the norm name at the start of rest.
func (cs *CitationScanner) normAt(rest string) (string, int, bool) {
	if e, n, ok := cs.dir.MatchName(rest); ok {
		return NormalizeNormName(e.Name), n, true
	}
	for _, p := range []*regexp.Regexp{codeNamePattern, lawNamePattern} {
		if loc := p.FindStringIndex(rest); loc != nil {
			if name := CanonicalNormName(cs.dir, rest[:loc[1]]); name != "" {
				return name, loc[1], true
			}
		}
	}
	return "", 0, false
}

func (cs *CitationScanner) acronymCandidates(text string) []citationCandidate {
	var out []citationCandidate
	for _, m := range acronymPattern.FindAllStringSubmatchIndex(text, -1) {
		acronym := strings.TrimRight(text[m[4]:m[5]], ".")
		e, ok := cs.dir.Resolve(acronym)
		if !ok {
			continue
		}
		out = append(out, citationCandidate{
			start:    m[0],
			end:      m[4] + len(acronym),
			numbers:  splitNumbers(text[m[2]:m[3]]),
			normName: NormalizeNormName(e.Name),
			pattern:  PatternAcronym,
		})
	}
	return out
}

func bareCandidates(text string) []citationCandidate {
	var out []citationCandidate
	for _, m := range barePattern.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, citationCandidate{
			start:   m[0],
			end:     m[1],
			numbers: splitNumbers(text[m[2]:m[3]]),
			pattern: PatternBare,
		})
	}
	return out
}

func splitNumbers(list string) []string {
	return numberPattern.FindAllString(list, -1)
}

func overlapsAny(c citationCandidate, accepted []citationCandidate) bool {
	for _, a := range accepted {
		if c.start < a.end && a.start < c.end {
			return true
		}
	}
	return false
}
