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
)

func TestNormalizeNormName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Código Civil", "codigo civil"},
		{"  CÓDIGO   del Trabajo, DFL 1", "codigo del trabajo"},
		{"Código Civil - Libro I", "codigo civil"},
		{"Ley N° 19.496", "ley 19496"},
		{"Ley Nº 19.496 (Protección al Consumidor)", "ley 19496"},
		{"ley nro. 20.000", "ley 20000"},
		{"Ley N.° 18.010", "ley 18010"},
		{"Ley de Numeración", "ley de numeracion"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeNormName(tt.in))
		})
	}
}

func TestNormalizeArticleNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12", "12"},
		{"1°", "1"},
		{"1º", "1"},
		{"12bis", "12 bis"},
		{" 12  BIS ", "12 bis"},
		{"1.234", "1234"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeArticleNumber(tt.in))
		})
	}
}

func TestNormalizedKey(t *testing.T) {
	assert.Equal(t, "codigo civil articulo 12", NormalizedKey("Código Civil", "12°"))
	assert.Equal(t, NormalizedKey("codigo civil", "12"), NormalizedKey("  CÓDIGO CIVIL ", "12"))
}

func TestCanonicalNormName(t *testing.T) {
	dir := directory.Default()

	assert.Equal(t, "codigo civil", CanonicalNormName(dir, "CC"))
	assert.Equal(t, "codigo civil", CanonicalNormName(dir, "C.C."))
	assert.Equal(t, "codigo civil", CanonicalNormName(dir, "Código Civil de Chile"))
	assert.Equal(t, "codigo de procedimiento civil", CanonicalNormName(dir, "Código de Procedimiento Civil"))
	assert.Equal(t, "ley 19496", CanonicalNormName(dir, "Ley 19.496"))
	assert.Equal(t, "codigo civiles", CanonicalNormName(dir, "Código Civiles"))
	assert.Equal(t, "", CanonicalNormName(dir, "  "))
	assert.Equal(t, "cc", CanonicalNormName(nil, "CC"))
}
