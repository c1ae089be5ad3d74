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

	"github.com/AleutianAI/lexguard/services/lexguard/portal"
)

// DefaultProximityWindow is how far, in bytes, a link may sit from the end
// of a citation and still be considered the citation's link.
const DefaultProximityWindow = 300

// Config configures the validation pipeline.
type Config struct {
	// Enabled determines if validation runs. Disabled passes answers through.
	Enabled bool

	// PortalBaseURL is the deep-link endpoint recognized in text.
	PortalBaseURL string

	// ProximityWindow is the citation-to-link window of the semantic check.
	ProximityWindow int

	// MaxAnswerBytes skips validation of larger answers. Zero disables the limit.
	MaxAnswerBytes int

	// CompleteLinks enables the completeness correction stage.
	CompleteLinks bool

	// CheckSemantics enables the citation/link mismatch stage.
	CheckSemantics bool

	// ApplySemanticCorrections writes semantic corrections into the answer.
	// When false, mismatches are only reported.
	ApplySemanticCorrections bool
}

// DefaultConfig returns sensible defaults for the pipeline.
func DefaultConfig() Config {
	return Config{
		Enabled:                  true,
		PortalBaseURL:            portal.DefaultBaseURL,
		ProximityWindow:          DefaultProximityWindow,
		MaxAnswerBytes:           256 * 1024,
		CompleteLinks:            true,
		CheckSemantics:           true,
		ApplySemanticCorrections: true,
	}
}

// Validate checks the configuration for values the pipeline cannot use.
func (c Config) Validate() error {
	if c.ProximityWindow <= 0 {
		return errors.New("proximity window must be positive")
	}
	if c.MaxAnswerBytes < 0 {
		return errors.New("max answer bytes must not be negative")
	}
	return nil
}
