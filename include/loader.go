// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package include

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned (possibly wrapped) by a Loader that has no
// unit for the requested path.
var ErrNotFound = errors.New("include not found")

// Loader fetches the source text of an included unit by its logical
// path. Load may block; Resolve imposes no timeout.
type Loader interface {
	Load(path string) (string, error)
}

// LoaderFunc adapts an ordinary function to the Loader interface.
type LoaderFunc func(path string) (string, error)

// Load calls f(path).
func (f LoaderFunc) Load(path string) (string, error) {
	return f(path)
}

// MapLoader serves units from memory.
type MapLoader map[string]string

// Load returns the unit stored under path.
func (m MapLoader) Load(path string) (string, error) {
	src, ok := m[path]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return src, nil
}
