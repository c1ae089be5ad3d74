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

	"github.com/AleutianAI/lexguard/services/lexguard/directory"
	"github.com/AleutianAI/lexguard/services/lexguard/portal"
)

// headerPattern finds the first "## ..." line of a chunk.
var headerPattern = regexp.MustCompile(`(?m)^[ \t]*##[ \t]+(.+?)[ \t]*$`)

// articleTokenPattern is one recognizer of "article N" inside a header.
type articleTokenPattern struct {
	name    string
	pattern *regexp.Regexp
}

// headerArticlePatterns are tried in priority order. The first pattern with
// any match decides the header's article tokens.
var headerArticlePatterns = []articleTokenPattern{
	{
		name:    "articulo",
		pattern: regexp.MustCompile(`(?i)\bart[ií]culos?\s+(\d+(?:\.\d{3})*)\s*[°º]?(?:\s*(bis|ter|quater|quinquies)\b)?`),
	},
	{
		name:    "art_abbrev",
		pattern: regexp.MustCompile(`(?i)\barts?\.\s*(\d+(?:\.\d{3})*)\s*[°º]?(?:\s*(bis|ter|quater|quinquies)\b)?`),
	},
}

// ChunkIndexer extracts article identity and links from evidence chunks.
//
// Thread Safety: Safe for concurrent use; immutable after construction.
type ChunkIndexer struct {
	scanner *portal.Scanner
	dir     *directory.Directory
}

// NewChunkIndexer creates an indexer recognizing links through scanner and
// expanding acronyms through dir. A nil dir disables acronym expansion.
func NewChunkIndexer(scanner *portal.Scanner, dir *directory.Directory) *ChunkIndexer {
	return &ChunkIndexer{scanner: scanner, dir: dir}
}

// ExtractArticleInfo reads the article a chunk begins with from its header.
//
// Description:
//
//	The header is the first line of the form "## <descriptor> articulo <N>".
//	A descriptor may mention several articles when a chunk spans them; the
//	LAST article token is the article the chunk begins with. The norm name
//	is the descriptor text before the FIRST article token.
//
// Outputs:
//
//	ArticleInfo - Normalized norm name and article number.
//	bool - False when the chunk has no header or the header names no article.
func (ci *ChunkIndexer) ExtractArticleInfo(chunkText string) (ArticleInfo, bool) {
	m := headerPattern.FindStringSubmatch(chunkText)
	if m == nil {
		return ArticleInfo{}, false
	}
	header := m[1]

	for _, p := range headerArticlePatterns {
		tokens := p.pattern.FindAllStringSubmatchIndex(header, -1)
		if len(tokens) == 0 {
			continue
		}

		last := tokens[len(tokens)-1]
		number := header[last[2]:last[3]]
		if last[4] >= 0 {
			number += " " + header[last[4]:last[5]]
		}

		info := ArticleInfo{
			NormName:      CanonicalNormName(ci.dir, header[:tokens[0][0]]),
			ArticleNumber: NormalizeArticleNumber(number),
		}
		if info.NormName == "" || info.ArticleNumber == "" {
			return ArticleInfo{}, false
		}
		return info, true
	}
	return ArticleInfo{}, false
}

// ChunkLink returns the link a chunk's metadata carries: the first deep link
// in the chunk.
func (ci *ChunkIndexer) ChunkLink(chunkText string) (portal.Link, bool) {
	links := ci.scanner.ExtractLinks(chunkText)
	if len(links) == 0 {
		return portal.Link{}, false
	}
	return links[0], true
}

// IndexEvidence builds the LinkIndex and ArticleIndex of one result set.
//
// Description:
//
//	Every deep link of every chunk is recorded in the LinkIndex. The chunk's
//	own link (its first) carries the chunk's article when the header names
//	one, and complete links with an article become authoritative ArticleIndex
//	entries. For duplicate keys the last write wins, except that a record
//	without article context never replaces one that has it.
//
// Inputs:
//
//	chunks - Evidence in retrieval order. Nil or empty yields empty indexes.
//
// Outputs:
//
//	*EvidenceIndex - Never nil.
func (ci *ChunkIndexer) IndexEvidence(chunks []EvidenceChunk) *EvidenceIndex {
	idx := NewEvidenceIndex()

	for _, chunk := range chunks {
		idx.ChunksSeen++

		links := ci.scanner.ExtractLinks(chunk.Text)
		if len(links) == 0 {
			continue
		}

		var article *ArticleInfo
		if info, ok := ci.ExtractArticleInfo(chunk.Text); ok {
			article = &info
		}

		for i, link := range links {
			rec := LinkRecord{
				Link:       link,
				IsComplete: link.IsComplete(),
				NormID:     link.NormID,
				PartID:     link.PartID,
				SourceID:   chunk.SourceID,
			}
			if i == 0 {
				rec.Article = article
			}
			idx.Links.put(rec)
		}

		primary := links[0]
		if article == nil || !primary.IsComplete() {
			continue
		}
		idx.Articles[article.Key()] = ArticleEntry{
			Link:     primary,
			Article:  *article,
			SourceID: chunk.SourceID,
		}
		idx.ChunksIndexed++
	}

	return idx
}

func (idx LinkIndex) put(rec LinkRecord) {
	if prev, ok := idx[rec.Link.Raw]; ok && prev.Article != nil && rec.Article == nil {
		return
	}
	idx[rec.Link.Raw] = rec
}
