// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package portal recognizes deep links into the legal-publication portal.
//
// A deep link identifies an article through two query components: the norm
// (idNorma) and the part within the norm (idParte). This package finds those
// links in arbitrary text, parses their components and locates the link
// nearest to a given offset.
//
// Thread Safety:
//
//	Link is an immutable value. Scanner is safe for concurrent use.
package portal

import (
	"net/url"
	"slices"
	"strings"
)

// DefaultBaseURL is the LeyChile navigation endpoint used by the assistant.
const DefaultBaseURL = "https://www.bcn.cl/leychile/navegar"

// Accepted query parameter names, compared case-insensitively.
var (
	normParams = []string{"idnorma", "normid"}
	partParams = []string{"idparte", "partid"}
)

// Link is a portal deep link.
//
// Two links are the same link when their component pair matches, regardless
// of how the raw strings are formatted.
type Link struct {
	// Raw is the link exactly as it appeared in the source text.
	Raw string `json:"raw"`

	// NormID identifies the legal instrument. Empty when absent.
	NormID string `json:"norm_id,omitempty"`

	// PartID identifies the article within the instrument. Empty when absent.
	PartID string `json:"part_id,omitempty"`
}

// ParseLink parses the components of a raw link.
//
// Description:
//
//	Never fails: a string that is not a URL, or lacks either component,
//	produces a Link with the missing components left empty.
func ParseLink(raw string) Link {
	link := Link{Raw: raw}

	q := strings.IndexByte(raw, '?')
	if q < 0 || q == len(raw)-1 {
		return link
	}

	// url.ParseQuery keeps every well-formed pair even when it reports an
	// error for a malformed one.
	values, _ := url.ParseQuery(strings.ReplaceAll(raw[q+1:], "&amp;", "&"))
	for key, vals := range values {
		lower := strings.ToLower(key)
		value := firstNonEmpty(vals)
		switch {
		case slices.Contains(normParams, lower) && link.NormID == "":
			link.NormID = value
		case slices.Contains(partParams, lower) && link.PartID == "":
			link.PartID = value
		}
	}
	return link
}

// IsComplete reports whether both components are present.
func (l Link) IsComplete() bool {
	return l.NormID != "" && l.PartID != ""
}

// Key is the equality key of the link: its component pair.
func (l Link) Key() string {
	return l.NormID + "|" + l.PartID
}

// Equal compares two links by component pair.
func (l Link) Equal(other Link) bool {
	return l.NormID == other.NormID && l.PartID == other.PartID
}

// Canonical re-serializes the link against base with the canonical
// parameter order. Absent components are omitted.
func (l Link) Canonical(base string) string {
	if base == "" {
		base = DefaultBaseURL
	}
	var params []string
	if l.NormID != "" {
		params = append(params, "idNorma="+url.QueryEscape(l.NormID))
	}
	if l.PartID != "" {
		params = append(params, "idParte="+url.QueryEscape(l.PartID))
	}
	if len(params) == 0 {
		return base
	}
	return base + "?" + strings.Join(params, "&")
}

// String returns the raw form.
func (l Link) String() string {
	return l.Raw
}

// IsCompleteLink reports whether raw carries both components.
func IsCompleteLink(raw string) bool {
	return ParseLink(raw).IsComplete()
}

// ExtractNormID returns the norm component of raw, if present.
func ExtractNormID(raw string) (string, bool) {
	id := ParseLink(raw).NormID
	return id, id != ""
}

// ExtractPartID returns the part component of raw, if present.
func ExtractPartID(raw string) (string, bool) {
	id := ParseLink(raw).PartID
	return id, id != ""
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
