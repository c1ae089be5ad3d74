// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package directory holds the normative-code lookup table.
//
// A Directory maps short codes ("CC") to canonical norm names ("Código
// Civil") and their portal norm identifiers. It is built once and never
// mutated; a reload produces a new Directory that callers swap in whole.
//
// Thread Safety:
//
//	Directory is immutable and safe for concurrent use.
package directory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptyDirectory is returned when a directory definition has no entries.
var ErrEmptyDirectory = errors.New("directory has no entries")

// Entry describes one normative code.
type Entry struct {
	// Code is the canonical acronym, upper case.
	Code string `yaml:"code" json:"code"`

	// Name is the canonical norm name as cited in prose.
	Name string `yaml:"name" json:"name"`

	// NormID is the portal identifier of the instrument, if known.
	NormID string `yaml:"norm_id,omitempty" json:"norm_id,omitempty"`

	// Aliases are additional acronyms resolving to this entry.
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// Directory is an immutable code lookup table.
type Directory struct {
	entries []Entry
	byCode  map[string]Entry

	// names are folded canonical names split in words, longest first.
	names []foldedName
}

type foldedName struct {
	words []string
	entry Entry
}

// New builds a directory from entries.
//
// Inputs:
//
//	entries - Code definitions. Codes and aliases must be unique.
//
// Outputs:
//
//	*Directory - The immutable directory.
//	error - ErrEmptyDirectory, or a description of the invalid entry.
func New(entries []Entry) (*Directory, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyDirectory
	}

	d := &Directory{
		entries: make([]Entry, 0, len(entries)),
		byCode:  make(map[string]Entry, len(entries)),
	}

	for i, e := range entries {
		e.Code = normalizeCode(e.Code)
		e.Name = strings.TrimSpace(e.Name)
		if e.Code == "" || e.Name == "" {
			return nil, fmt.Errorf("entry %d: code and name are required", i)
		}

		aliases := make([]string, 0, len(e.Aliases))
		for _, alias := range e.Aliases {
			if a := normalizeCode(alias); a != "" {
				aliases = append(aliases, a)
			}
		}
		e.Aliases = aliases

		for _, code := range append([]string{e.Code}, e.Aliases...) {
			if prev, dup := d.byCode[code]; dup {
				return nil, fmt.Errorf("entry %d: code %q already used by %q", i, code, prev.Name)
			}
			d.byCode[code] = e
		}

		d.entries = append(d.entries, e)
		d.names = append(d.names, foldedName{words: strings.Fields(Fold(e.Name)), entry: e})
	}

	sort.SliceStable(d.names, func(i, j int) bool {
		return len(d.names[i].words) > len(d.names[j].words)
	})

	return d, nil
}

// Resolve looks up a code or alias. Case and dots are ignored ("c.c." == "CC").
func (d *Directory) Resolve(code string) (Entry, bool) {
	if d == nil {
		return Entry{}, false
	}
	e, ok := d.byCode[normalizeCode(code)]
	return e, ok
}

// CanonicalName expands a code to its norm name, or returns name unchanged
// when it is not a known code.
func (d *Directory) CanonicalName(name string) string {
	if e, ok := d.Resolve(strings.TrimSpace(name)); ok {
		return e.Name
	}
	return name
}

// MatchName reports whether text starts with a known norm name.
//
// Description:
//
//	Comparison is word by word on folded text, so "codigo  civil" matches
//	"Código Civil". The longest name wins ("Código de Procedimiento Civil"
//	over a hypothetical "Código de Procedimiento").
//
// Outputs:
//
//	Entry - The matched entry.
//	int - Byte length of the matched prefix of text.
//	bool - False if no name matches.
func (d *Directory) MatchName(text string) (Entry, int, bool) {
	if d == nil {
		return Entry{}, 0, false
	}
	for _, n := range d.names {
		length, ok := matchWords(text, n.words)
		if ok {
			return n.entry, length, true
		}
	}
	return Entry{}, 0, false
}

// Entries returns a copy of the entries in definition order.
func (d *Directory) Entries() []Entry {
	if d == nil {
		return nil
	}
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Fold lower-cases s, strips diacritics and collapses whitespace.
//
// This is the single text folding used for every comparison of norm names
// and article tokens.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

func normalizeCode(code string) string {
	code = strings.ReplaceAll(strings.TrimSpace(code), ".", "")
	return strings.ToUpper(code)
}

// matchWords checks that the leading words of text fold to want, returning
// the byte length of those words in text.
func matchWords(text string, want []string) (int, bool) {
	if len(want) == 0 {
		return 0, false
	}
	pos := 0
	for i, w := range want {
		// Skip separating whitespace.
		for pos < len(text) && unicode.IsSpace(rune(text[pos])) {
			if i == 0 {
				return 0, false
			}
			pos++
		}
		start := pos
		for pos < len(text) {
			r, size := utf8.DecodeRuneInString(text[pos:])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			pos += size
		}
		if start == pos || Fold(text[start:pos]) != w {
			return 0, false
		}
	}
	return pos, true
}
