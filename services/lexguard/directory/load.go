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
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed codes.yaml
var defaultCodes []byte

var (
	defaultOnce sync.Once
	defaultDir  *Directory
	defaultErr  error
)

// file is the on-disk shape of a directory definition.
type file struct {
	Codes []Entry `yaml:"codes"`
}

// Parse builds a directory from a YAML definition.
func Parse(data []byte) (*Directory, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing directory yaml: %w", err)
	}
	return New(f.Codes)
}

// LoadFile reads and parses a YAML directory definition.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Default returns the built-in directory of Chilean codes.
//
// The embedded definition is parsed once; the same immutable value is
// returned to every caller.
func Default() *Directory {
	defaultOnce.Do(func() {
		defaultDir, defaultErr = Parse(defaultCodes)
	})
	if defaultErr != nil {
		// The embedded file is part of the build; failing here is a build defect.
		panic(fmt.Sprintf("embedded directory is invalid: %v", defaultErr))
	}
	return defaultDir
}

// Load returns the directory at path, or the built-in one when path is empty.
func Load(path string) (*Directory, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
