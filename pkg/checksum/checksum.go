// Copyright 2025 The csig Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package checksum parses and verifies signed checksum lists in the BSD
// digest format, one `ALGORITHM (FILENAME) = HEXDIGEST` line per file.
package checksum

import (
	"crypto"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/csig-dev/csig/pkg/algorithmregistry"
)

// lineSuffix separates the filename from the digest in a checksum line. Its
// width plus the digest length locates the end of the filename; keep it
// distinct from the digest length even though both are fixed per algorithm.
const lineSuffix = ") = "

var (
	// ErrMalformedLine reports a checksum line that does not fit the
	// ALGORITHM (FILENAME) = HEXDIGEST shape.
	ErrMalformedLine = errors.New("malformed checksum line")

	// ErrUnsupportedFilename reports a filename the format cannot express
	// safely yet.
	ErrUnsupportedFilename = errors.New("filenames with problematic characters are not yet supported")

	// ErrIO reports an unreadable file, an unreadable or empty checksum
	// list, or an unresolvable path.
	ErrIO = errors.New("i/o failure")

	// ErrMismatch reports a recomputed digest that differs from the
	// recorded one.
	ErrMismatch = errors.New("checksum mismatch")

	// ErrDigestComputation reports a digest computation that produced a
	// short or empty result. Kept distinct from ErrMismatch.
	ErrDigestComputation = errors.New("digest computation failed")
)

// FileChecksum is one parsed checksum-list entry. Entries are built only by
// ParseList and are immutable afterwards. Trusted records whether the entry
// came from a cryptographically verified list; it is propagated, never
// re-derived.
type FileChecksum struct {
	Filename  string
	Algorithm string
	Hash      string
	Trusted   bool
}

// List is an ordered, read-only collection of FileChecksum entries.
type List struct {
	entries []FileChecksum
}

// ParseList parses checksum-list text, one entry per non-empty line, marking
// every entry with the given trust flag.
func ParseList(text []byte, trusted bool, registry *algorithmregistry.Registry) (*List, error) {
	if registry == nil {
		registry = algorithmregistry.Default()
	}
	var entries []FileChecksum
	for _, line := range strings.Split(string(text), "\n") {
		if line == "" {
			continue
		}
		entry, err := parseLine(line, trusted, registry)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return &List{entries: entries}, nil
}

func parseLine(line string, trusted bool, registry *algorithmregistry.Registry) (FileChecksum, error) {
	token, _, found := strings.Cut(line, " ")
	if !found {
		return FileChecksum{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	alg, err := registry.Lookup(token)
	if err != nil {
		return FileChecksum{}, err
	}
	open := strings.IndexByte(line, '(')
	end := len(line) - alg.DigestLen - len(lineSuffix)
	if open < 0 || end <= open+1 {
		return FileChecksum{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	filename := line[open+1 : end]
	if strings.HasPrefix(filename, `\`) {
		return FileChecksum{}, fmt.Errorf("%w: %q", ErrUnsupportedFilename, filename)
	}
	return FileChecksum{
		Filename:  filename,
		Algorithm: alg.Name,
		Hash:      line[len(line)-alg.DigestLen:],
		Trusted:   trusted,
	}, nil
}

// Len returns the number of entries.
func (l *List) Len() int {
	return len(l.entries)
}

// All iterates the entries in list order.
func (l *List) All() iter.Seq[FileChecksum] {
	return func(yield func(FileChecksum) bool) {
		for _, entry := range l.entries {
			if !yield(entry) {
				return
			}
		}
	}
}

// Failed is a lazy view over the list yielding, in list order, only the
// entries whose file under dir is unreadable or fails digest verification.
// It never reports an error; it is a diagnostics path, not a trust decision.
// Files past the caller's stopping point are never hashed.
func (l *List) Failed(dir string) iter.Seq[FileChecksum] {
	return func(yield func(FileChecksum) bool) {
		for _, entry := range l.entries {
			if verifyEntry(dir, entry, algorithmregistry.Default()) != nil {
				if !yield(entry) {
					return
				}
			}
		}
	}
}

// verifyEntry recomputes the digest of the entry's file under dir and
// compares it against the recorded hash.
func verifyEntry(dir string, entry FileChecksum, registry *algorithmregistry.Registry) error {
	alg, err := registry.Lookup(entry.Algorithm)
	if err != nil {
		return err
	}
	digest, err := hashFile(alg.Hash, filepath.Join(dir, entry.Filename))
	if err != nil {
		return fmt.Errorf("%w: file %q in the checksum list could not be read", ErrIO, entry.Filename)
	}
	if digest == "" || len(digest) < alg.DigestLen {
		return fmt.Errorf("%w: computing %s digest of %q", ErrDigestComputation, entry.Algorithm, entry.Filename)
	}
	if digest != entry.Hash {
		return fmt.Errorf("%w: file %q does not pass checksum verification", ErrMismatch, entry.Filename)
	}
	return nil
}

func hashFile(h crypto.Hash, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	hasher := h.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
