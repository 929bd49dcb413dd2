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

package chain

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/csig-dev/csig/pkg/checksum"
	"github.com/csig-dev/csig/pkg/signify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signer struct {
	priv   ed25519.PrivateKey
	keyNum []byte
	pub    []byte
}

func newSigner(seed byte, comment string) signer {
	priv := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{seed}, ed25519.SeedSize))
	keyNum := bytes.Repeat([]byte{seed ^ 0xa5}, 8)
	pubBlob := append(append([]byte("Ed"), keyNum...), priv.Public().(ed25519.PublicKey)...)
	pub := []byte(signify.CommentHeader + comment + "\n" + base64.StdEncoding.EncodeToString(pubBlob) + "\n")
	return signer{priv: priv, keyNum: keyNum, pub: pub}
}

func (s signer) signBlock(message []byte) []byte {
	sig := ed25519.Sign(s.priv, message)
	blob := append(append([]byte("Ed"), s.keyNum...), sig...)
	return []byte(signify.CommentHeader + "signature\n" + base64.StdEncoding.EncodeToString(blob) + "\n")
}

func (s signer) signedMessage(message []byte) []byte {
	return append(s.signBlock(message), message...)
}

// buildCsig assembles the six-part chained signature: the root endorses the
// validity date together with the intermediate public key, and the
// intermediate signs the final message.
func buildCsig(root, intermediate signer, date string, message []byte) []byte {
	endorsed := append([]byte(date+"\n"), intermediate.pub...)
	csig := append(root.signBlock(endorsed), endorsed...)
	return append(csig, intermediate.signedMessage(message)...)
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestVerifyMessage(t *testing.T) {
	root := newSigner(21, "root key")
	intermediate := newSigner(22, "intermediate key")
	message := []byte("delegated release manifest\n")
	csig := buildCsig(root, intermediate, "2025-06-30", message)

	for _, test := range []struct {
		name     string
		now      time.Time
		wantErr  error
		wantText string
	}{
		{
			name: "before the validity date",
			now:  date("2025-06-01"),
		},
		{
			name: "on the validity date",
			now:  date("2025-06-30"),
		},
		{
			name:     "one day past",
			now:      date("2025-07-01"),
			wantErr:  ErrExpired,
			wantText: "expired 1 day(s) ago",
		},
		{
			name:     "ninety days past",
			now:      date("2025-09-28"),
			wantErr:  ErrExpired,
			wantText: "expired 90 day(s) ago",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, err := NewVerifier(root.pub).VerifyMessage(csig, test.now)
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
				assert.ErrorContains(t, err, test.wantText)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, message, got)
		})
	}

	t.Run("zero now means today", func(t *testing.T) {
		future := buildCsig(root, intermediate, "9999-12-31", message)
		got, err := NewVerifier(root.pub).VerifyMessage(future, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, message, got)
	})
}

func TestVerifyMessageChainAtomicity(t *testing.T) {
	root := newSigner(23, "root key")
	intermediate := newSigner(24, "intermediate key")
	message := []byte("payload\n")
	csig := buildCsig(root, intermediate, "2025-06-30", message)
	now := date("2025-06-01")

	// Mutating any byte of the endorsed region must break the root
	// signature even when the delegated message is untouched.
	endorsedEnd := len(csig) - len(intermediate.signedMessage(message))
	for _, i := range []int{0, endorsedEnd / 2, endorsedEnd - 2} {
		tampered := append([]byte{}, csig...)
		tampered[i] ^= 0x01
		_, err := NewVerifier(root.pub).VerifyMessage(tampered, now)
		assert.Error(t, err, "offset %d", i)
	}

	t.Run("swapped intermediate key", func(t *testing.T) {
		imposter := newSigner(25, "intermediate key")
		endorsed := append([]byte("2025-06-30\n"), imposter.pub...)
		csig := append(root.signBlock(append([]byte("2025-06-30\n"), intermediate.pub...)), endorsed...)
		csig = append(csig, imposter.signedMessage(message)...)
		_, err := NewVerifier(root.pub).VerifyMessage(csig, now)
		assert.ErrorIs(t, err, signify.ErrSignatureInvalid)
	})

	t.Run("delegated message signed by wrong key", func(t *testing.T) {
		other := newSigner(26, "other key")
		endorsed := append([]byte("2025-06-30\n"), intermediate.pub...)
		csig := append(root.signBlock(endorsed), endorsed...)
		csig = append(csig, other.signedMessage(message)...)
		_, err := NewVerifier(root.pub).VerifyMessage(csig, now)
		assert.ErrorIs(t, err, signify.ErrKeyMismatch)
	})
}

func TestVerifyMessageMalformed(t *testing.T) {
	root := newSigner(27, "root key")
	intermediate := newSigner(28, "intermediate key")
	now := date("2025-06-01")

	t.Run("too few parts", func(t *testing.T) {
		_, err := NewVerifier(root.pub).VerifyMessage([]byte("a\nb\nc\n"), now)
		assert.ErrorIs(t, err, signify.ErrMalformed)
	})

	t.Run("unparsable validity date", func(t *testing.T) {
		// The bad date is properly signed, so the failure is the date
		// parse, not the root signature.
		csig := buildCsig(root, intermediate, "not-a-date", []byte("m"))
		_, err := NewVerifier(root.pub).VerifyMessage(csig, now)
		assert.ErrorIs(t, err, signify.ErrMalformed)
		assert.ErrorContains(t, err, "validity date")
	})
}

func TestVerifyListAndFile(t *testing.T) {
	root := newSigner(29, "root key")
	intermediate := newSigner(30, "intermediate key")
	now := date("2025-06-01")

	dir := t.TempDir()
	content := []byte("artifact contents")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "artifact.bin"), content, 0o644))
	digest := sha256.Sum256(content)
	text := fmt.Sprintf("SHA256 (artifact.bin) = %s\n", hex.EncodeToString(digest[:]))
	csig := buildCsig(root, intermediate, "2025-06-30", []byte(text))

	t.Run("chained list", func(t *testing.T) {
		count, err := NewVerifier(root.pub).VerifyList(csig, dir, now)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("chained list past expiry", func(t *testing.T) {
		count, err := NewVerifier(root.pub).VerifyList(csig, dir, date("2025-07-02"))
		assert.ErrorIs(t, err, ErrExpired)
		assert.Zero(t, count)
	})

	t.Run("chained list file", func(t *testing.T) {
		listPath := filepath.Join(dir, "manifest.csig")
		require.NoError(t, os.WriteFile(listPath, csig, 0o644))
		count, err := NewVerifier(root.pub).VerifyFile(listPath, now)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("missing file in list", func(t *testing.T) {
		missing := buildCsig(root, intermediate, "2025-06-30", []byte("SHA256 (nope) = "+hex.EncodeToString(digest[:])+"\n"))
		count, err := NewVerifier(root.pub).VerifyList(missing, dir, now)
		assert.ErrorIs(t, err, checksum.ErrIO)
		assert.Zero(t, count)
	})
}
