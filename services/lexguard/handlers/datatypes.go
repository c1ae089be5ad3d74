// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"github.com/AleutianAI/lexguard/services/lexguard/grounding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// =============================================================================
// Limits
// =============================================================================

const (
	// MaxTextBytes bounds every chunk text and the answer.
	MaxTextBytes = 256 * 1024

	// MaxChunks bounds the evidence of one request.
	MaxChunks = 200
)

// requestValidate is the validator instance for request datatypes.
// Initialized in init() with custom validators.
var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
	_ = requestValidate.RegisterValidation("maxbytes", validateMaxBytes)
}

// validateMaxBytes checks byte length, not rune count.
func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxTextBytes
}

// =============================================================================
// Validate Request
// =============================================================================

// ChunkPayload is one evidence chunk in a validate request.
type ChunkPayload struct {
	SourceID string `json:"source_id" validate:"max=512"`
	Text     string `json:"text" validate:"required,maxbytes"`
}

// ValidateRequest is the body of POST /v1/validate.
//
// # Validation
//
//   - RequestID: optional, at most 128 characters; generated when absent
//   - Chunks: at most MaxChunks, each validated
//   - Answer: at most MaxTextBytes bytes
type ValidateRequest struct {
	RequestID string         `json:"request_id" validate:"omitempty,max=128"`
	Chunks    []ChunkPayload `json:"chunks" validate:"max=200,dive"`
	Answer    string         `json:"answer" validate:"maxbytes"`
}

// Validate checks the request against its validator tags.
func (r *ValidateRequest) Validate() error {
	return requestValidate.Struct(r)
}

// EnsureDefaults generates a RequestID when the client did not send one.
func (r *ValidateRequest) EnsureDefaults() {
	if r.RequestID == "" {
		r.RequestID = uuid.New().String()
	}
}

// ToRequest converts the payload into a validation request.
func (r *ValidateRequest) ToRequest() *grounding.Request {
	chunks := make([]grounding.EvidenceChunk, 0, len(r.Chunks))
	for _, c := range r.Chunks {
		chunks = append(chunks, grounding.EvidenceChunk{SourceID: c.SourceID, Text: c.Text})
	}
	return &grounding.Request{
		RequestID: r.RequestID,
		Chunks:    chunks,
		Answer:    r.Answer,
	}
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
