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
	"strings"
	"testing"

	"github.com/AleutianAI/lexguard/services/lexguard/directory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSemanticChecker(t *testing.T, window int) *SemanticChecker {
	t.Helper()
	return NewSemanticChecker(testScanner(t), NewCitationScanner(directory.Default()), window)
}

func TestCheckSemanticConsistency_Mismatch(t *testing.T) {
	idx := testIndexer(t).IndexEvidence([]EvidenceChunk{chunkArt12(), chunkArt13()})
	sc := newTestSemanticChecker(t, DefaultProximityWindow)
	answer := "Según el artículo 12 del Código Civil (" + linkArt13 + "), los derechos pueden renunciarse."

	issues, corrections := sc.CheckSemanticConsistency(answer, idx.Links, idx.Articles)

	require.Len(t, issues, 1)
	assert.Equal(t, IssueArticleMismatch, issues[0].Code)
	assert.Equal(t, "codigo civil articulo 12", issues[0].CitedArticle)
	assert.Equal(t, "codigo civil articulo 13", issues[0].LinkedArticle)
	assert.Equal(t, linkArt13, issues[0].Link.Raw)
	assert.True(t, issues[0].Corrected)

	require.Len(t, corrections, 1)
	assert.Equal(t, ReasonSemanticMismatch, corrections[0].Reason)
	assert.Equal(t, linkArt13, corrections[0].OriginalText)
	assert.Equal(t, linkArt12, corrections[0].ReplacementText)
	assert.Equal(t, strings.Index(answer, linkArt13), corrections[0].Offset)
}

func TestCheckSemanticConsistency_Agreement(t *testing.T) {
	idx := testIndexer(t).IndexEvidence([]EvidenceChunk{chunkArt12(), chunkArt13()})
	sc := newTestSemanticChecker(t, DefaultProximityWindow)
	answer := "El artículo 13 del Código Civil (" + linkArt13 + ") consagra la especialidad."

	issues, corrections := sc.CheckSemanticConsistency(answer, idx.Links, idx.Articles)

	assert.Empty(t, issues)
	assert.Empty(t, corrections)
}

func TestCheckSemanticConsistency_NoAuthoritativeEntry(t *testing.T) {
	idx := testIndexer(t).IndexEvidence([]EvidenceChunk{chunkArt12(), chunkArt13()})
	sc := newTestSemanticChecker(t, DefaultProximityWindow)
	answer := "El artículo 99 del Código Civil (" + linkArt13 + ")."

	issues, corrections := sc.CheckSemanticConsistency(answer, idx.Links, idx.Articles)

	require.Len(t, issues, 1)
	assert.False(t, issues[0].Corrected)
	assert.Empty(t, corrections)
}

func TestCheckSemanticConsistency_OutsideWindow(t *testing.T) {
	idx := testIndexer(t).IndexEvidence([]EvidenceChunk{chunkArt12(), chunkArt13()})
	sc := newTestSemanticChecker(t, 100)
	answer := "El artículo 12 del Código Civil " + strings.Repeat("x ", 200) + linkArt13

	issues, corrections := sc.CheckSemanticConsistency(answer, idx.Links, idx.Articles)

	assert.Empty(t, issues)
	assert.Empty(t, corrections)
}

func TestCheckSemanticConsistency_BareCitationBorrowsNorm(t *testing.T) {
	idx := testIndexer(t).IndexEvidence([]EvidenceChunk{chunkArt12(), chunkArt13()})
	sc := newTestSemanticChecker(t, DefaultProximityWindow)
	answer := "Conforme al artículo 12 " + linkArt13

	issues, corrections := sc.CheckSemanticConsistency(answer, idx.Links, idx.Articles)

	require.Len(t, issues, 1)
	assert.Equal(t, "codigo civil articulo 12", issues[0].CitedArticle)
	require.Len(t, corrections, 1)
	assert.Equal(t, linkArt12, corrections[0].ReplacementText)
}

func TestCheckSemanticConsistency_ConfirmedLinkIsKept(t *testing.T) {
	idx := testIndexer(t).IndexEvidence([]EvidenceChunk{chunkArt12(), chunkArt13()})
	sc := newTestSemanticChecker(t, DefaultProximityWindow)
	answer := "Los artículos 12 y 13 del Código Civil (" + linkArt13 + ") se complementan."

	issues, corrections := sc.CheckSemanticConsistency(answer, idx.Links, idx.Articles)

	require.Len(t, issues, 1)
	assert.Equal(t, "codigo civil articulo 12", issues[0].CitedArticle)
	assert.False(t, issues[0].Corrected)
	assert.Empty(t, corrections)
}

func TestCheckSemanticConsistency_OneCorrectionPerLink(t *testing.T) {
	idx := testIndexer(t).IndexEvidence([]EvidenceChunk{
		chunkArt12(),
		chunkArt13(),
		chunk("cc-14.md", "Código Civil articulo 14", "https://www.bcn.cl/leychile/navegar?idNorma=172986&idParte=8717795", "..."),
	})
	sc := newTestSemanticChecker(t, DefaultProximityWindow)
	answer := "Los artículos 12 y 13 del Código Civil (https://www.bcn.cl/leychile/navegar?idNorma=172986&idParte=8717795)."

	issues, corrections := sc.CheckSemanticConsistency(answer, idx.Links, idx.Articles)

	assert.Len(t, issues, 2)
	require.Len(t, corrections, 1)
	assert.Equal(t, linkArt12, corrections[0].ReplacementText)
}

func TestCheckSemanticConsistency_NormMismatch(t *testing.T) {
	idx := testIndexer(t).IndexEvidence([]EvidenceChunk{chunkArt12(), chunkArt13()})
	sc := newTestSemanticChecker(t, DefaultProximityWindow)
	answer := "El artículo 13 del Código Penal (" + linkArt13 + ")."

	issues, corrections := sc.CheckSemanticConsistency(answer, idx.Links, idx.Articles)

	require.Len(t, issues, 1)
	assert.Equal(t, "codigo penal articulo 13", issues[0].CitedArticle)
	assert.Empty(t, corrections)
}

func TestCheckSemanticConsistency_UnindexedLink(t *testing.T) {
	idx := testIndexer(t).IndexEvidence([]EvidenceChunk{chunkArt12()})
	sc := newTestSemanticChecker(t, DefaultProximityWindow)
	answer := "El artículo 12 del Código Civil (" + linkLey19496 + ")."

	issues, corrections := sc.CheckSemanticConsistency(answer, idx.Links, idx.Articles)

	assert.Empty(t, issues)
	assert.Empty(t, corrections)
}

func TestNewSemanticChecker_DefaultWindow(t *testing.T) {
	sc := newTestSemanticChecker(t, 0)
	assert.Equal(t, DefaultProximityWindow, sc.window)
}
