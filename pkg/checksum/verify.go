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

package checksum

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/csig-dev/csig/pkg/algorithmregistry"
	"github.com/csig-dev/csig/pkg/signify"
)

// Verifier verifies signed checksum lists against one signify public key.
type Verifier struct {
	sig      *signify.Verifier
	registry *algorithmregistry.Registry
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithRegistry restricts the permitted checksum algorithms.
func WithRegistry(registry *algorithmregistry.Registry) Option {
	return func(v *Verifier) {
		v.registry = registry
	}
}

// NewVerifier returns a Verifier for the given public key text.
func NewVerifier(publicKeyText []byte, opts ...Option) *Verifier {
	v := &Verifier{
		sig:      signify.NewVerifier(publicKeyText),
		registry: algorithmregistry.Default(),
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// VerifyList authenticates signed checksum-list text and verifies every
// listed file relative to dir. Verification is all or nothing: the first
// failing entry aborts the call, and on success the returned count equals
// the full list length.
func (v *Verifier) VerifyList(signed []byte, dir string) (int, error) {
	text, err := v.sig.VerifyMessage(signed)
	if err != nil {
		return 0, err
	}
	return VerifyTrustedList(text, dir, v.registry)
}

// VerifyFile resolves path, reads the signed checksum list it names, and
// verifies every listed file relative to the list's parent directory.
func (v *Verifier) VerifyFile(path string) (int, error) {
	abs, data, err := ReadListFile(path)
	if err != nil {
		return 0, err
	}
	return v.VerifyList(data, filepath.Dir(abs))
}

// VerifyTrustedList parses already-authenticated checksum-list text and
// verifies every listed file relative to dir. Callers must have established
// trust in the text first; the chain verifier reuses this after its own
// message verification.
func VerifyTrustedList(text []byte, dir string, registry *algorithmregistry.Registry) (int, error) {
	if registry == nil {
		registry = algorithmregistry.Default()
	}
	list, err := ParseList(text, true, registry)
	if err != nil {
		return 0, err
	}
	for entry := range list.All() {
		if err := verifyEntry(dir, entry, registry); err != nil {
			return 0, err
		}
	}
	return list.Len(), nil
}

// ReadListFile canonicalizes path and reads the signed checksum list it
// names, mapping every failure, including an empty file, to ErrIO. It
// returns the canonical path so the caller can derive the base directory.
func ReadListFile(path string) (string, []byte, error) {
	abs, err := filepath.Abs(path)
	if err == nil {
		abs, err = filepath.EvalSymlinks(abs)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%w: resolving path %q: %v", ErrIO, path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", nil, fmt.Errorf("%w: reading checksum list %q: %v", ErrIO, abs, err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("%w: checksum list %q is empty", ErrIO, abs)
	}
	return abs, data, nil
}
