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

// Package chain verifies chained signatures (.csig): a root key's signed
// endorsement of a short-lived intermediate key, under which the final
// message is signed. Each verification is a fixed sequence of terminal
// steps: root signature, validity date, expiration, then the delegated
// message under a fresh intermediate verifier.
package chain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/csig-dev/csig/pkg/algorithmregistry"
	"github.com/csig-dev/csig/pkg/checksum"
	"github.com/csig-dev/csig/pkg/signify"
)

// dateLayout is the validity date format embedded in a .csig payload,
// interpreted at UTC day granularity.
const dateLayout = "2006-01-02"

// ErrExpired reports an intermediate key whose validity date has passed.
var ErrExpired = errors.New("intermediate key expired")

// csigParts is the number of logical parts of a .csig payload: root comment,
// root signature, validity date, intermediate-key comment, intermediate-key
// base64, and the delegated signed message (which keeps its own newlines).
const csigParts = 6

// Verifier verifies chained signatures rooted at one long-lived public key.
type Verifier struct {
	root     *signify.Verifier
	registry *algorithmregistry.Registry
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithRegistry restricts the permitted checksum algorithms for the
// checksum-list operations.
func WithRegistry(registry *algorithmregistry.Registry) Option {
	return func(v *Verifier) {
		v.registry = registry
	}
}

// NewVerifier returns a Verifier for the given root public key text.
func NewVerifier(rootPublicKeyText []byte, opts ...Option) *Verifier {
	v := &Verifier{
		root:     signify.NewVerifier(rootPublicKeyText),
		registry: algorithmregistry.Default(),
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// VerifyMessage authenticates a chained signed input and returns the
// delegated message bytes. A zero now means the current system date; the
// comparison is at UTC day granularity, and now equal to the validity date
// still passes.
func (v *Verifier) VerifyMessage(signed []byte, now time.Time) ([]byte, error) {
	parts := strings.SplitN(string(signed), "\n", csigParts)
	if len(parts) != csigParts {
		return nil, fmt.Errorf("%w: expected at least five newlines", signify.ErrMalformed)
	}

	// The root signs the validity date and the intermediate key as one
	// payload, so neither can be swapped in from a different endorsement.
	rootPayload := []byte(strings.Join(parts[:5], "\n") + "\n")
	if _, err := v.root.VerifyMessage(rootPayload); err != nil {
		return nil, fmt.Errorf("verifying root endorsement: %w", err)
	}

	validUntil, err := time.Parse(dateLayout, parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: parsing validity date %q: %v", signify.ErrMalformed, parts[2], err)
	}
	if now.IsZero() {
		now = time.Now()
	}
	day := truncateToDay(now)
	if day.After(validUntil) {
		days := int(day.Sub(validUntil) / (24 * time.Hour))
		return nil, fmt.Errorf("%w: the intermediate key expired %d day(s) ago", ErrExpired, days)
	}

	intermediateKey := []byte(parts[3] + "\n" + parts[4] + "\n")
	intermediate := signify.NewVerifier(intermediateKey)
	message, err := intermediate.VerifyMessage([]byte(parts[5]))
	if err != nil {
		return nil, fmt.Errorf("verifying delegated message: %w", err)
	}
	return message, nil
}

// VerifyList authenticates a chained, signed checksum list and verifies
// every listed file relative to dir, with the same all-or-nothing contract
// as the plain checksum verifier.
func (v *Verifier) VerifyList(signed []byte, dir string, now time.Time) (int, error) {
	text, err := v.VerifyMessage(signed, now)
	if err != nil {
		return 0, err
	}
	return checksum.VerifyTrustedList(text, dir, v.registry)
}

// VerifyFile resolves path, reads the chained signed checksum list it
// names, and verifies every listed file relative to its parent directory.
func (v *Verifier) VerifyFile(path string, now time.Time) (int, error) {
	abs, data, err := checksum.ReadListFile(path)
	if err != nil {
		return 0, err
	}
	return v.VerifyList(data, filepath.Dir(abs), now)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
