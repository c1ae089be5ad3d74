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
	"io"
	"log/slog"
	"testing"

	"github.com/AleutianAI/lexguard/services/lexguard/directory"
	"github.com/AleutianAI/lexguard/services/lexguard/portal"
	"github.com/stretchr/testify/require"
)

const (
	linkArt12      = "https://www.bcn.cl/leychile/navegar?idNorma=172986&idParte=8717793"
	linkArt13      = "https://www.bcn.cl/leychile/navegar?idNorma=172986&idParte=8717794"
	linkNormOnly   = "https://www.bcn.cl/leychile/navegar?idNorma=172986"
	linkPart12Only = "https://www.bcn.cl/leychile/navegar?idParte=8717793"
	linkLey19496   = "https://www.bcn.cl/leychile/navegar?idNorma=61438&idParte=8714212"
)

func chunk(sourceID, header, link, body string) EvidenceChunk {
	text := ""
	if header != "" {
		text += "## " + header + "\n"
	}
	if link != "" {
		text += "Fuente: " + link + "\n"
	}
	text += "---\n" + body + "\n---\n"
	return EvidenceChunk{SourceID: sourceID, Text: text}
}

func chunkArt12() EvidenceChunk {
	return chunk("cc-12.md", "Código Civil - Título Preliminar articulo 12", linkArt12,
		"Podrán renunciarse los derechos conferidos por las leyes, con tal que sólo miren al interés individual del renunciante.")
}

func chunkArt13() EvidenceChunk {
	return chunk("cc-13.md", "Código Civil - Título Preliminar articulo 13", linkArt13,
		"Las disposiciones de una ley, relativas a cosas o negocios particulares, prevalecerán sobre las disposiciones generales.")
}

func testScanner(t *testing.T) *portal.Scanner {
	t.Helper()
	s, err := portal.NewScanner(portal.DefaultBaseURL)
	require.NoError(t, err)
	return s
}

func testIndexer(t *testing.T) *ChunkIndexer {
	t.Helper()
	return NewChunkIndexer(testScanner(t), directory.Default())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testValidator(t *testing.T, cfg Config) *Validator {
	t.Helper()
	v, err := NewValidator(cfg, nil, testLogger())
	require.NoError(t, err)
	return v
}
