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

// Package algorithmregistry maps checksum-list algorithm tokens to hash
// functions and their fixed hex digest lengths, and lets callers restrict
// the permitted set.
package algorithmregistry

import (
	"crypto"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"errors"
	"fmt"
	"sort"
)

// ErrUnsupportedAlgorithm reports a checksum algorithm token outside the
// registry's permitted set.
var ErrUnsupportedAlgorithm = errors.New("checksum algorithm unsupported")

// Algorithm describes one supported checksum algorithm. DigestLen is the
// length of the hex-encoded digest. The ") = " suffix width used to locate
// the filename inside a checksum line is deliberately a separate constant
// and lives with the line parser.
type Algorithm struct {
	Name      string
	Hash      crypto.Hash
	DigestLen int
}

var supported = map[string]Algorithm{
	"SHA256": {Name: "SHA256", Hash: crypto.SHA256, DigestLen: 64},
	"SHA512": {Name: "SHA512", Hash: crypto.SHA512, DigestLen: 128},
}

// AllowedAlgorithms returns the names of every supported algorithm, sorted.
func AllowedAlgorithms() []string {
	names := make([]string, 0, len(supported))
	for name := range supported {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry is a permitted subset of the supported algorithms.
type Registry struct {
	allowed map[string]Algorithm
}

// New builds a registry restricted to the named algorithms. A nil or empty
// list permits everything the package supports.
func New(names []string) (*Registry, error) {
	if len(names) == 0 {
		return Default(), nil
	}
	allowed := make(map[string]Algorithm, len(names))
	for _, name := range names {
		alg, ok := supported[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
		}
		allowed[name] = alg
	}
	return &Registry{allowed: allowed}, nil
}

// Default returns a registry permitting every supported algorithm.
func Default() *Registry {
	return &Registry{allowed: supported}
}

// Lookup resolves an algorithm token from a checksum line.
func (r *Registry) Lookup(name string) (Algorithm, error) {
	alg, ok := r.allowed[name]
	if !ok {
		return Algorithm{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
	return alg, nil
}
