// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// AnswerDiff returns a unified diff between the answer and its corrected text.
//
// Corrections replace links in place, so lines are compared pairwise and
// every run of changed lines becomes one hunk without context. When the
// line counts differ the whole text is one hunk. Equal texts yield "".
func AnswerDiff(name, original, corrected string) (string, error) {
	if original == corrected {
		return "", nil
	}
	orig := strings.Split(original, "\n")
	next := strings.Split(corrected, "\n")

	fd := &diff.FileDiff{
		OrigName: "a/" + name,
		NewName:  "b/" + name,
	}
	if len(orig) != len(next) {
		fd.Hunks = []*diff.Hunk{hunk(orig, next, 0, 0)}
	} else {
		for i := 0; i < len(orig); {
			if orig[i] == next[i] {
				i++
				continue
			}
			j := i
			for j < len(orig) && orig[j] != next[j] {
				j++
			}
			fd.Hunks = append(fd.Hunks, hunk(orig[i:j], next[i:j], i, i))
			i = j
		}
	}

	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func hunk(orig, next []string, origStart, newStart int) *diff.Hunk {
	var body bytes.Buffer
	for _, l := range orig {
		body.WriteString("-" + l + "\n")
	}
	for _, l := range next {
		body.WriteString("+" + l + "\n")
	}
	return &diff.Hunk{
		OrigStartLine: int32(origStart + 1),
		OrigLines:     int32(len(orig)),
		NewStartLine:  int32(newStart + 1),
		NewLines:      int32(len(next)),
		Body:          body.Bytes(),
	}
}

// Diff colors removed and added lines of a unified diff.
func (p Printer) Diff(unified string) string {
	if !p.color || unified == "" {
		return unified
	}
	lines := strings.SplitAfter(unified, "\n")
	for i, l := range lines {
		trimmed := strings.TrimSuffix(l, "\n")
		switch {
		case strings.HasPrefix(l, "---"), strings.HasPrefix(l, "+++"):
			lines[i] = Styles.Label.Render(trimmed) + l[len(trimmed):]
		case strings.HasPrefix(l, "-"):
			lines[i] = Styles.Removed.Render(trimmed) + l[len(trimmed):]
		case strings.HasPrefix(l, "+"):
			lines[i] = Styles.Added.Render(trimmed) + l[len(trimmed):]
		case strings.HasPrefix(l, "@@"):
			lines[i] = Styles.Muted.Render(trimmed) + l[len(trimmed):]
		}
	}
	return strings.Join(lines, "")
}
