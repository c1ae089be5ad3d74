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
	"errors"
	"sort"
	"time"

	"github.com/AleutianAI/lexguard/services/lexguard/directory"
	"github.com/AleutianAI/lexguard/services/lexguard/portal"
)

// ErrNilRequest is returned when ProcessAnswer is called without a request.
var ErrNilRequest = errors.New("grounding: request is required")

// EvidenceChunk is one retrieved passage supplied to the generation step.
type EvidenceChunk struct {
	// SourceID identifies the retrieved document.
	SourceID string `json:"source_id"`

	// Text is the chunk: a "## <norm> articulo <N>" header, a metadata line
	// carrying the portal link, and the statute body.
	Text string `json:"text"`
}

// ArticleInfo identifies "article N of norm X".
type ArticleInfo struct {
	// NormName is normalized (see NormalizeNormName).
	NormName string `json:"norm_name"`

	// ArticleNumber is normalized (see NormalizeArticleNumber).
	ArticleNumber string `json:"article_number"`
}

// Key returns the normalized key of the article.
func (a ArticleInfo) Key() string {
	return NormalizedKey(a.NormName, a.ArticleNumber)
}

// LinkRecord is the LinkIndex value for one link.
type LinkRecord struct {
	Link       portal.Link  `json:"link"`
	IsComplete bool         `json:"is_complete"`
	NormID     string       `json:"norm_id,omitempty"`
	PartID     string       `json:"part_id,omitempty"`
	Article    *ArticleInfo `json:"article,omitempty"`
	SourceID   string       `json:"source_id,omitempty"`
}

// LinkIndex maps a link's raw string form to its record.
type LinkIndex map[string]LinkRecord

// Lookup finds the record of link, first by raw string and then by
// component pair, so differently formatted spellings of the same link
// resolve to the same record. Records carrying article context win over
// records without it.
func (idx LinkIndex) Lookup(link portal.Link) (LinkRecord, bool) {
	if rec, ok := idx[link.Raw]; ok && rec.Article != nil {
		return rec, true
	}

	var (
		found LinkRecord
		ok    bool
	)
	for _, key := range idx.sortedKeys() {
		rec := idx[key]
		if !rec.Link.Equal(link) {
			continue
		}
		if !ok || (found.Article == nil && rec.Article != nil) {
			found, ok = rec, true
		}
	}
	return found, ok
}

// CompleteCandidates returns the distinct complete links agreeing with
// every component link carries. Distinctness is by component pair.
func (idx LinkIndex) CompleteCandidates(link portal.Link) []LinkRecord {
	seen := make(map[string]bool)
	var out []LinkRecord
	for _, key := range idx.sortedKeys() {
		rec := idx[key]
		if !rec.IsComplete {
			continue
		}
		if link.NormID != "" && rec.NormID != link.NormID {
			continue
		}
		if link.PartID != "" && rec.PartID != link.PartID {
			continue
		}
		if seen[rec.Link.Key()] {
			continue
		}
		seen[rec.Link.Key()] = true
		out = append(out, rec)
	}
	return out
}

func (idx LinkIndex) sortedKeys() []string {
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ArticleEntry is the authoritative link of one article.
type ArticleEntry struct {
	Link     portal.Link `json:"link"`
	Article  ArticleInfo `json:"article"`
	SourceID string      `json:"source_id,omitempty"`
}

// ArticleIndex maps a normalized key to its authoritative link.
type ArticleIndex map[string]ArticleEntry

// Keys returns the indexed article keys in sorted order.
func (idx ArticleIndex) Keys() []string {
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EvidenceIndex holds both indexes built from one retrieval result set.
type EvidenceIndex struct {
	Links    LinkIndex
	Articles ArticleIndex

	// ChunksSeen and ChunksIndexed count the input and the chunks that
	// produced an authoritative article entry.
	ChunksSeen    int
	ChunksIndexed int
}

// NewEvidenceIndex creates an empty index.
func NewEvidenceIndex() *EvidenceIndex {
	return &EvidenceIndex{
		Links:    make(LinkIndex),
		Articles: make(ArticleIndex),
	}
}

// Citation is a natural-language article reference found in prose.
type Citation struct {
	// ArticleNumber is normalized.
	ArticleNumber string `json:"article_number"`

	// NormName is normalized; empty when the prose names no norm.
	NormName string `json:"norm_name,omitempty"`

	// Position is the byte offset where the citation starts.
	Position int `json:"position"`

	// End is the byte offset just past the citation.
	End int `json:"end"`

	// Raw is the cited text.
	Raw string `json:"raw"`

	// Pattern names the recognizer that produced the citation.
	Pattern string `json:"pattern"`
}

// CorrectionReason tags why a correction was made.
type CorrectionReason string

const (
	// ReasonIncomplete marks a truncated link completed from the evidence.
	ReasonIncomplete CorrectionReason = "incomplete"

	// ReasonSemanticMismatch marks a link replaced because it pointed to a
	// different article than the prose cites.
	ReasonSemanticMismatch CorrectionReason = "semantic_mismatch"
)

// Correction is one atomic text substitution.
type Correction struct {
	OriginalText    string           `json:"original_text"`
	ReplacementText string           `json:"replacement_text"`
	Reason          CorrectionReason `json:"reason"`

	// Offset is the byte offset of OriginalText in the text the correction
	// was computed against.
	Offset int `json:"offset"`
}

// SemanticIssue describes a citation whose nearby link names another article.
type SemanticIssue struct {
	Code          string      `json:"code"`
	Message       string      `json:"message"`
	Citation      Citation    `json:"citation"`
	Link          portal.Link `json:"link"`
	CitedArticle  string      `json:"cited_article"`
	LinkedArticle string      `json:"linked_article"`

	// Corrected is true when a correction was proposed for this issue.
	Corrected bool `json:"corrected"`
}

// Request is one answer to validate together with its evidence.
type Request struct {
	RequestID string          `json:"request_id,omitempty"`
	Chunks    []EvidenceChunk `json:"chunks"`
	Answer    string          `json:"answer"`
}

// Report is the outcome of one validation pass.
type Report struct {
	RequestID string `json:"request_id,omitempty"`

	// Performed is false when the answer had no usable evidence and was
	// passed through untouched.
	Performed bool `json:"performed"`

	// ArticlesIndexed are the normalized keys found in the evidence.
	ArticlesIndexed []string `json:"articles_indexed"`

	CorrectedText  string          `json:"corrected_text"`
	Corrections    []Correction    `json:"corrections"`
	SemanticIssues []SemanticIssue `json:"semantic_issues"`

	CitationsFound int           `json:"citations_found"`
	LinksFound     int           `json:"links_found"`
	Duration       time.Duration `json:"duration"`
}

// Modified reports whether the corrected text differs from the answer.
func (r *Report) Modified() bool {
	return r != nil && len(r.Corrections) > 0
}

// DirectoryProvider supplies the normative-code directory in effect.
//
// *directory.Source satisfies it.
type DirectoryProvider interface {
	Current() *directory.Directory
}

// staticDirectory serves one directory forever.
type staticDirectory struct {
	dir *directory.Directory
}

func (s staticDirectory) Current() *directory.Directory {
	return s.dir
}

// StaticDirectory wraps d as a DirectoryProvider.
func StaticDirectory(d *directory.Directory) DirectoryProvider {
	return staticDirectory{dir: d}
}
