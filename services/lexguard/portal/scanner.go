// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package portal

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// trailingPunctuation is stripped from the end of a match.
const trailingPunctuation = ".,;:!?"

// LinkMatch is one link occurrence in a text.
type LinkMatch struct {
	Link Link

	// Start and End are byte offsets of the occurrence, End exclusive.
	Start int
	End   int
}

// NearestLink is the result of a proximity search.
type NearestLink struct {
	Match LinkMatch

	// Distance is the byte distance from the reference position to Match.Start.
	Distance int
}

// Scanner finds portal deep links in text.
//
// Thread Safety: Safe for concurrent use (stateless after construction).
type Scanner struct {
	baseURL string
	pattern *regexp.Regexp
}

// NewScanner creates a scanner for links rooted at baseURL.
//
// Inputs:
//
//	baseURL - Portal endpoint, e.g. DefaultBaseURL. Empty uses DefaultBaseURL.
//
// Outputs:
//
//	*Scanner - The configured scanner.
//	error - Non-nil if baseURL is not an absolute http(s) URL.
func NewScanner(baseURL string) (*Scanner, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing portal base url: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("portal base url must be absolute http(s): %q", baseURL)
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	path := strings.TrimSuffix(parsed.Path, "/")

	// Scheme and the www. prefix are optional in the wild; the query string
	// runs until whitespace or a markdown/HTML delimiter.
	expr := `(?i)(?:https?://)?(?:www\.)?` + regexp.QuoteMeta(host+path) + `/?\?[^\s<>"'()\[\]{}|*` + "`" + `]+`

	return &Scanner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		pattern: regexp.MustCompile(expr),
	}, nil
}

// MustNewScanner is NewScanner for package-level defaults and tests.
func MustNewScanner(baseURL string) *Scanner {
	s, err := NewScanner(baseURL)
	if err != nil {
		panic(err)
	}
	return s
}

// BaseURL returns the portal endpoint the scanner recognizes.
func (s *Scanner) BaseURL() string {
	return s.baseURL
}

// ExtractLinks returns every deep link in text, left to right.
//
// Empty text yields an empty slice, never nil.
func (s *Scanner) ExtractLinks(text string) []Link {
	matches := s.ExtractLinkMatches(text)
	links := make([]Link, 0, len(matches))
	for _, m := range matches {
		links = append(links, m.Link)
	}
	return links
}

// ExtractLinkMatches returns every deep link occurrence in text with its
// byte span. Matches never overlap.
func (s *Scanner) ExtractLinkMatches(text string) []LinkMatch {
	matches := make([]LinkMatch, 0)
	if text == "" {
		return matches
	}

	for _, loc := range s.pattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		for end > start && strings.ContainsRune(trailingPunctuation, rune(text[end-1])) {
			end--
		}

		link := ParseLink(text[start:end])
		// A portal URL naming neither component is not a deep link.
		if link.NormID == "" && link.PartID == "" {
			continue
		}
		matches = append(matches, LinkMatch{Link: link, Start: start, End: end})
	}
	return matches
}

// FindNearestLink returns the link occurrence closest to position.
//
// Description:
//
//	Searches both directions from position. Distance is measured from
//	position to the start of each occurrence. An occurrence farther than
//	maxDistance is never returned. When two occurrences are equally close,
//	the one after position wins.
//
// Inputs:
//
//	text - The text to search.
//	position - Reference byte offset, typically the end of a citation.
//	maxDistance - Largest accepted distance in bytes.
//
// Outputs:
//
//	NearestLink - The nearest occurrence and its distance.
//	bool - False when no occurrence lies within maxDistance.
func (s *Scanner) FindNearestLink(text string, position, maxDistance int) (NearestLink, bool) {
	return NearestIn(s.ExtractLinkMatches(text), position, maxDistance)
}

// NearestIn applies the proximity rule of FindNearestLink to matches that
// were already extracted, so callers checking many positions scan once.
func NearestIn(matches []LinkMatch, position, maxDistance int) (NearestLink, bool) {
	if maxDistance < 0 {
		return NearestLink{}, false
	}

	var (
		best  NearestLink
		found bool
	)
	for _, m := range matches {
		after := m.Start >= position
		distance := m.Start - position
		if !after {
			distance = -distance
		}
		if distance > maxDistance {
			continue
		}
		if !found || distance < best.Distance ||
			(distance == best.Distance && after && best.Match.Start < position) {
			best = NearestLink{Match: m, Distance: distance}
			found = true
		}
	}
	return best, found
}
