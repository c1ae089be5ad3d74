// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package directory

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefault_ResolvesCivilCode(t *testing.T) {
	d := Default()

	e, ok := d.Resolve("CC")
	require.True(t, ok)
	assert.Equal(t, "Código Civil", e.Name)
	assert.Equal(t, "172986", e.NormID)

	e, ok = d.Resolve("c.c.")
	require.True(t, ok)
	assert.Equal(t, "Código Civil", e.Name)

	_, ok = d.Resolve("XYZ")
	assert.False(t, ok)
}

func TestDefault_IsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrEmptyDirectory)

	_, err = New([]Entry{{Code: "CC"}})
	assert.Error(t, err)

	_, err = New([]Entry{
		{Code: "CC", Name: "Código Civil"},
		{Code: "XX", Name: "Otro", Aliases: []string{"cc"}},
	})
	assert.Error(t, err)
}

func TestCanonicalName(t *testing.T) {
	d := Default()

	assert.Equal(t, "Código del Trabajo", d.CanonicalName("CT"))
	assert.Equal(t, "ley 19496", d.CanonicalName("ley 19496"))
}

func TestMatchName(t *testing.T) {
	d := Default()

	tests := []struct {
		name     string
		text     string
		wantName string
		wantLen  int
		wantOK   bool
	}{
		{"accented", "Código Civil establece", "Código Civil", len("Código Civil"), true},
		{"unaccented lower", "codigo civil, que", "Código Civil", len("codigo civil"), true},
		{"longest wins", "Código de Procedimiento Civil dispone", "Código de Procedimiento Civil", len("Código de Procedimiento Civil"), true},
		{"extra spaces", "Código   Penal", "Código Penal", len("Código   Penal"), true},
		{"word boundary", "Código Civiles", "", 0, false},
		{"leading space", " Código Civil", "", 0, false},
		{"unknown", "Código Aeronáutico", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, n, ok := d.MatchName(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, e.Name)
			assert.Equal(t, tt.wantLen, n)
		})
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "articulo 12 del codigo civil", Fold("  Artículo   12 del\tCÓDIGO Civil "))
	assert.Equal(t, "", Fold(""))
}

func TestNilDirectory(t *testing.T) {
	var d *Directory

	_, ok := d.Resolve("CC")
	assert.False(t, ok)
	_, _, ok = d.MatchName("Código Civil")
	assert.False(t, ok)
	assert.Equal(t, 0, d.Len())
	assert.Nil(t, d.Entries())
}

func TestLoad(t *testing.T) {
	d, err := Load("")
	require.NoError(t, err)
	assert.Same(t, Default(), d)

	path := filepath.Join(t.TempDir(), "codes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("codes:\n  - code: LPC\n    name: Ley de Protección al Consumidor\n    norm_id: \"61438\"\n"), 0o644))

	d, err = Load(path)
	require.NoError(t, err)
	e, ok := d.Resolve("lpc")
	require.True(t, ok)
	assert.Equal(t, "61438", e.NormID)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("codes: [:"))
	assert.Error(t, err)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "codes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("codes:\n  - code: AA\n    name: Código Uno\n"), 0o644))

	initial, err := LoadFile(path)
	require.NoError(t, err)
	source := NewSource(initial)

	w, err := NewWatcher(path, source, testLogger())
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond

	reloaded := make(chan *Directory, 1)
	w.OnReload(func(d *Directory) {
		select {
		case reloaded <- d:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("codes:\n  - code: BB\n    name: Código Dos\n"), 0o644))

	select {
	case d := <-reloaded:
		_, ok := d.Resolve("BB")
		assert.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("directory was not reloaded")
	}

	_, ok := source.Current().Resolve("BB")
	assert.True(t, ok)
}

func TestWatcher_KeepsPreviousOnInvalidFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "codes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("codes:\n  - code: AA\n    name: Código Uno\n"), 0o644))

	initial, err := LoadFile(path)
	require.NoError(t, err)
	source := NewSource(initial)

	w, err := NewWatcher(path, source, testLogger())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("codes: []\n"), 0o644))
	w.reload()

	assert.Same(t, initial, source.Current())
	w.Stop()
}

func TestNewWatcher_RequiresArguments(t *testing.T) {
	_, err := NewWatcher("", NewSource(Default()), nil)
	assert.Error(t, err)

	_, err = NewWatcher("codes.yaml", nil, nil)
	assert.Error(t, err)
}
