// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

// Package corpusio is the minimal in-tree stand-in for the generic
// fuzzing-framework on-disk corpus storage a full deployment may sit
// outside this module: a content-addressed, file-backed corpus
// directory implementing add/count/get/random-pick. Testcases are named
// by the SHA-256 of their encoded bytes rather than a sequence number.
package corpusio

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ulikunitz/xz"

	"github.com/google/railcar/pkg/rand"
)

// Dir is one on-disk corpus directory.
type Dir struct {
	path     string
	compress bool
}

// Open returns a Dir rooted at path, creating it if necessary. When
// compress is true, entries are written through an xz writer (gated, per
// spec §9's framework contract, behind this flag so the default path
// stays uncompressed MessagePack).
func Open(path string, compress bool) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("corpusio: open %s: %w", path, err)
	}
	return &Dir{path: path, compress: compress}, nil
}

func contentID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (d *Dir) filename(id string) string {
	if d.compress {
		return filepath.Join(d.path, id+".xz")
	}
	return filepath.Join(d.path, id)
}

// Add writes data under its content hash, returning that hash as the
// entry's id. Adding the same bytes twice is a no-op: the destination
// filename already exists.
func (d *Dir) Add(data []byte) (string, error) {
	id := contentID(data)
	dst := d.filename(id)
	if _, err := os.Stat(dst); err == nil {
		return id, nil
	}

	tmp := filepath.Join(d.path, "tmp-"+uuid.NewString())
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("corpusio: create scratch file: %w", err)
	}
	defer os.Remove(tmp)

	if err := d.writeEntry(f, data); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("corpusio: close scratch file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return "", fmt.Errorf("corpusio: rename into place: %w", err)
	}
	return id, nil
}

func (d *Dir) writeEntry(f *os.File, data []byte) error {
	if !d.compress {
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("corpusio: write entry: %w", err)
		}
		return nil
	}
	w, err := xz.NewWriter(f)
	if err != nil {
		return fmt.Errorf("corpusio: xz writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("corpusio: write compressed entry: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("corpusio: close xz writer: %w", err)
	}
	return nil
}

// Get reads back the entry named id.
func (d *Dir) Get(id string) ([]byte, error) {
	raw, err := os.ReadFile(d.filename(id))
	if err != nil {
		return nil, fmt.Errorf("corpusio: read %s: %w", id, err)
	}
	if !d.compress {
		return raw, nil
	}
	r, err := xz.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("corpusio: xz reader for %s: %w", id, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("corpusio: decompress %s: %w", id, err)
	}
	return data, nil
}

// List returns every entry id currently on disk, in directory order.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("corpusio: list %s: %w", d.path, err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".xz"))
	}
	return ids, nil
}

// Count reports the number of entries on disk.
func (d *Dir) Count() (int, error) {
	ids, err := d.List()
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Random returns a uniformly chosen entry's id and bytes.
func (d *Dir) Random(r rand.Source) (id string, data []byte, err error) {
	ids, err := d.List()
	if err != nil {
		return "", nil, err
	}
	if len(ids) == 0 {
		return "", nil, fmt.Errorf("corpusio: %s is empty", d.path)
	}
	id = ids[rand.Below(r, len(ids))]
	data, err = d.Get(id)
	return id, data, err
}

// LoadAll reads back every entry on disk; it's the seed-corpus loading
// hook the fuzzing loop calls before falling back to the generator
// (spec.md §4.12, INITIAL_CORPUS_SIZE).
func (d *Dir) LoadAll() ([][]byte, error) {
	ids, err := d.List()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(ids))
	for _, id := range ids {
		data, err := d.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}
