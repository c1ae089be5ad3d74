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
	"strings"

	"github.com/AleutianAI/lexguard/services/lexguard/directory"
)

// Key normalization
//
// Every normalized key is produced by NormalizedKey, by both the chunk
// indexer and the semantic checker. The rules are:
//
//	norm name:      fold (lower case, no diacritics, single spaces), cut at the
//	                first descriptor separator (" - ", ",", ";", ":", "("),
//	                drop number markers ("n°", "nro."), drop thousands dots
//	                ("19.496" -> "19496"), trim trailing punctuation.
//	article number: fold, drop ordinal marks ("1°" -> "1"), drop thousands
//	                dots, single space before a latin suffix ("12bis" -> "12 bis").
//	key:            "<norm name> articulo <article number>"
var (
	numberMarkerPattern = regexp.MustCompile(`\b(?:n\.?\s*[°º]|nros?\.|num\.|numero\b)\s*`)
	thousandsPattern    = regexp.MustCompile(`(\d)\.(\d{3})`)
	articleParts        = regexp.MustCompile(`^(\d+)\s*([a-z]+)?$`)
	descriptorSeparator = []string{" - ", " – ", " — ", ",", ";", ":", "("}
)

// NormalizeNormName applies the norm-name rules above.
func NormalizeNormName(name string) string {
	s := directory.Fold(name)
	for _, sep := range descriptorSeparator {
		if i := strings.Index(s, sep); i >= 0 {
			s = s[:i]
		}
	}
	s = numberMarkerPattern.ReplaceAllString(s, "")
	s = dropThousands(s)
	s = strings.Trim(s, " -–—.,;:")
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeArticleNumber applies the article-number rules above.
func NormalizeArticleNumber(number string) string {
	s := directory.Fold(number)
	s = strings.NewReplacer("°", "", "º", "").Replace(s)
	s = dropThousands(s)
	s = strings.TrimSpace(s)
	if m := articleParts.FindStringSubmatch(s); m != nil {
		if m[2] == "" {
			return m[1]
		}
		return m[1] + " " + m[2]
	}
	return strings.Join(strings.Fields(s), " ")
}

// NormalizedKey builds the canonical join key "<norm> articulo <N>".
func NormalizedKey(normName, articleNumber string) string {
	return NormalizeNormName(normName) + " articulo " + NormalizeArticleNumber(articleNumber)
}

// CanonicalNormName normalizes name and maps it onto the directory when it
// is an acronym ("CC") or starts with a known norm name ("codigo civil de
// chile"). Both sides of every key go through this function.
func CanonicalNormName(dir *directory.Directory, name string) string {
	normalized := NormalizeNormName(name)
	if normalized == "" {
		return ""
	}
	if e, ok := dir.Resolve(normalized); ok {
		return NormalizeNormName(e.Name)
	}
	if e, n, ok := dir.MatchName(normalized); ok && (n == len(normalized) || normalized[n] == ' ') {
		return NormalizeNormName(e.Name)
	}
	return normalized
}

func dropThousands(s string) string {
	// Two passes cover overlapping groups such as "1.234.567".
	s = thousandsPattern.ReplaceAllString(s, "$1$2")
	return thousandsPattern.ReplaceAllString(s, "$1$2")
}
