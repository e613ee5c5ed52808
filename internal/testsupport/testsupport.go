// Package testsupport provides helpers for building throwaway project
// trees and cascade files in tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// Tree builds a project directory under t.TempDir() and exposes helpers
// for populating it.
type Tree struct {
	t   testing.TB
	Dir string
}

// NewTree creates an empty project tree rooted in a fresh temp directory.
func NewTree(t testing.TB) *Tree {
	t.Helper()
	return &Tree{t: t, Dir: t.TempDir()}
}

// AddPhotos creates a group directory with empty photo files of the given
// names.
func (tr *Tree) AddPhotos(date, group string, names ...string) {
	tr.t.Helper()
	dir := filepath.Join(tr.Dir, date, group)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		tr.t.Fatalf("mkdir %s: %v", dir, err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			tr.t.Fatalf("write photo %s: %v", name, err)
		}
	}
}

// AddDir creates an arbitrary directory relative to the project root.
func (tr *Tree) AddDir(parts ...string) {
	tr.t.Helper()
	dir := filepath.Join(append([]string{tr.Dir}, parts...)...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		tr.t.Fatalf("mkdir %s: %v", dir, err)
	}
}

// WriteConfig writes a cascade file at the given path segments relative
// to the project root, creating parent directories as needed.
func (tr *Tree) WriteConfig(contents string, parts ...string) {
	tr.t.Helper()
	path := filepath.Join(append([]string{tr.Dir}, parts...)...)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tr.t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		tr.t.Fatalf("write config %s: %v", path, err)
	}
}
