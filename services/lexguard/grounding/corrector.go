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
	"github.com/AleutianAI/lexguard/services/lexguard/portal"
)

// Corrector completes truncated deep links from the evidence.
//
// Thread Safety: Safe for concurrent use.
type Corrector struct {
	scanner *portal.Scanner
}

// NewCorrector creates a corrector recognizing links through scanner.
func NewCorrector(scanner *portal.Scanner) *Corrector {
	return &Corrector{scanner: scanner}
}

// CorrectIncompleteLinks replaces incomplete links that have exactly one
// complete counterpart in the index.
//
// Description:
//
//	For each incomplete link occurrence, the candidates are the distinct
//	complete links of the index agreeing on every component the occurrence
//	carries. One candidate replaces the occurrence; zero or several leave
//	it as is.
//
// Inputs:
//
//	answer - The answer text.
//	links - The LinkIndex of the evidence.
//
// Outputs:
//
//	string - The answer with the corrections applied.
//	[]Correction - One "incomplete" correction per replaced occurrence,
//	  with offsets into answer.
func (c *Corrector) CorrectIncompleteLinks(answer string, links LinkIndex) (string, []Correction) {
	var proposed []Correction
	for _, m := range c.scanner.ExtractLinkMatches(answer) {
		if m.Link.IsComplete() {
			continue
		}
		candidates := links.CompleteCandidates(m.Link)
		if len(candidates) != 1 {
			continue
		}
		proposed = append(proposed, Correction{
			OriginalText:    m.Link.Raw,
			ReplacementText: candidates[0].Link.Raw,
			Reason:          ReasonIncomplete,
			Offset:          m.Start,
		})
	}
	return ApplyCorrections(answer, proposed)
}
