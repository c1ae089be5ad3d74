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
	"testing"

	"github.com/AleutianAI/lexguard/services/lexguard/directory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCitations_Explicit(t *testing.T) {
	cs := NewCitationScanner(directory.Default())
	text := "El artículo 12 del Código Civil permite renunciar derechos."

	got := cs.ExtractCitations(text)

	require.Len(t, got, 1)
	assert.Equal(t, "12", got[0].ArticleNumber)
	assert.Equal(t, "codigo civil", got[0].NormName)
	assert.Equal(t, PatternExplicit, got[0].Pattern)
	assert.Equal(t, "artículo 12 del Código Civil", got[0].Raw)
	assert.Equal(t, text[got[0].Position:got[0].End], got[0].Raw)
}

func TestExtractCitations_Acronym(t *testing.T) {
	cs := NewCitationScanner(directory.Default())

	got := cs.ExtractCitations("Art. 12 CC")

	require.Len(t, got, 1)
	assert.Equal(t, "12", got[0].ArticleNumber)
	assert.Equal(t, "codigo civil", got[0].NormName)
	assert.Equal(t, PatternAcronym, got[0].Pattern)
	assert.Equal(t, "Art. 12 CC", got[0].Raw)
}

func TestExtractCitations_Forms(t *testing.T) {
	cs := NewCitationScanner(directory.Default())

	tests := []struct {
		name        string
		text        string
		wantNumber  string
		wantNorm    string
		wantPattern string
	}{
		{"unaccented lower case", "segun el articulo 12 del codigo civil", "12", "codigo civil", PatternExplicit},
		{"dotted acronym with del", "conforme al art. 1545 del C.C.", "1545", "codigo civil", PatternAcronym},
		{"law with number marker", "el artículo 3 de la Ley N° 19.496 dispone", "3", "ley 19496", PatternExplicit},
		{"code outside the directory", "el artículo 5 del Código Aeronáutico", "5", "codigo aeronautico", PatternExplicit},
		{"ordinal and suffix", "el artículo 1° bis del Código del Trabajo", "1 bis", "codigo del trabajo", PatternExplicit},
		{"bare citation", "según el artículo 7, nadie puede", "7", "", PatternBare},
		{"unknown acronym falls back to bare", "ver Art. 12 XYZ", "12", "", PatternBare},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cs.ExtractCitations(tt.text)
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantNumber, got[0].ArticleNumber)
			assert.Equal(t, tt.wantNorm, got[0].NormName)
			assert.Equal(t, tt.wantPattern, got[0].Pattern)
		})
	}
}

func TestExtractCitations_MultipleInOrder(t *testing.T) {
	cs := NewCitationScanner(directory.Default())

	got := cs.ExtractCitations("El Art. 5 CP y el artículo 12 del Código Civil regulan materias distintas; el artículo 2 también.")

	require.Len(t, got, 3)
	assert.Equal(t, []string{"5", "12", "2"}, []string{got[0].ArticleNumber, got[1].ArticleNumber, got[2].ArticleNumber})
	assert.Equal(t, "codigo penal", got[0].NormName)
	assert.Equal(t, "codigo civil", got[1].NormName)
	assert.Equal(t, "", got[2].NormName)
	assert.Less(t, got[0].Position, got[1].Position)
	assert.Less(t, got[1].Position, got[2].Position)
}

func TestExtractCitations_List(t *testing.T) {
	cs := NewCitationScanner(directory.Default())

	got := cs.ExtractCitations("los artículos 12 y 13 del Código Civil")

	require.Len(t, got, 2)
	assert.Equal(t, "12", got[0].ArticleNumber)
	assert.Equal(t, "13", got[1].ArticleNumber)
	for _, c := range got {
		assert.Equal(t, "codigo civil", c.NormName)
		assert.Equal(t, "artículos 12 y 13 del Código Civil", c.Raw)
	}
}

func TestExtractCitations_Empty(t *testing.T) {
	cs := NewCitationScanner(directory.Default())

	got := cs.ExtractCitations("")
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, cs.ExtractCitations("El contrato es ley para los contratantes."))
}

func TestExtractCitations_NilDirectory(t *testing.T) {
	cs := NewCitationScanner(nil)

	got := cs.ExtractCitations("Art. 12 CC y el artículo 3 de la Ley 19.496")

	require.Len(t, got, 2)
	assert.Equal(t, PatternBare, got[0].Pattern)
	assert.Equal(t, "ley 19496", got[1].NormName)
}
