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
	"sort"
	"strings"
)

// ApplyCorrections substitutes corrections into text.
//
// Description:
//
//	Corrections are applied in offset order. A correction whose original
//	text is not found at its offset, or whose span overlaps one already
//	applied, is skipped. Bytes outside the applied spans are preserved.
//
// Inputs:
//
//	text - The text the corrections were computed against.
//	corrections - Corrections with offsets into text.
//
// Outputs:
//
//	string - The corrected text.
//	[]Correction - The corrections actually applied, in offset order.
func ApplyCorrections(text string, corrections []Correction) (string, []Correction) {
	if len(corrections) == 0 {
		return text, nil
	}

	ordered := make([]Correction, len(corrections))
	copy(ordered, corrections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Offset < ordered[j].Offset
	})

	var (
		b       strings.Builder
		applied []Correction
		cursor  int
	)
	b.Grow(len(text))

	for _, c := range ordered {
		end := c.Offset + len(c.OriginalText)
		if c.Offset < cursor || end > len(text) || text[c.Offset:end] != c.OriginalText {
			continue
		}
		b.WriteString(text[cursor:c.Offset])
		b.WriteString(c.ReplacementText)
		cursor = end
		applied = append(applied, c)
	}
	b.WriteString(text[cursor:])

	return b.String(), applied
}
