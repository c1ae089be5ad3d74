// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package grounding checks the legal citations of a generated answer against
// the retrieval evidence it was generated from.
//
// The pipeline runs per answer:
//
//	ChunkIndexer     evidence chunks -> LinkIndex + ArticleIndex
//	Corrector        truncated deep links -> their unique complete link
//	CitationScanner  prose -> "artículo N del <norma>" citations
//	SemanticChecker  citation + nearest link -> mismatch issues/corrections
//	Validator        sequences the stages and returns a Report
//
// Every index key is built by NormalizedKey, on the evidence side and the
// answer side alike.
//
// Thread Safety:
//
//	All exported types are safe for concurrent use after construction.
//	Indexes are request-scoped.
package grounding
