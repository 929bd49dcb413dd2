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

package signify

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"sync"

	"github.com/sigstore/sigstore/pkg/signature"
)

// Verifier authenticates signed messages against one signify public key. The
// key text is parsed on first use and cached; instances are safe for
// concurrent use and share no state with each other.
type Verifier struct {
	keyText []byte

	parseOnce sync.Once
	key       *KeyMaterial
	verifier  signature.Verifier
	parseErr  error
}

// NewVerifier returns a Verifier for the given public key text. The text is
// not parsed until the first verification.
func NewVerifier(publicKeyText []byte) *Verifier {
	return &Verifier{keyText: publicKeyText}
}

func (v *Verifier) publicKey() (*KeyMaterial, signature.Verifier, error) {
	v.parseOnce.Do(func() {
		v.key, v.parseErr = ParseKeyMaterial(v.keyText, PublicKeySize)
		if v.parseErr != nil {
			return
		}
		v.verifier, v.parseErr = signature.LoadED25519Verifier(ed25519.PublicKey(v.key.Raw))
	})
	return v.key, v.verifier, v.parseErr
}

// VerifyMessage authenticates a signed input of the form signature block
// followed by the message (embedded, or concatenated by the caller). It
// returns the message bytes unchanged on success.
func (v *Verifier) VerifyMessage(signed []byte) ([]byte, error) {
	sigBlock, message := SplitSignedMessage(signed)
	return v.VerifyDetached(message, sigBlock)
}

// VerifyDetached authenticates a message against a separately supplied
// signature block. The key number comparison happens before the
// cryptographic check so that a mismatched key surfaces as ErrKeyMismatch
// rather than ErrSignatureInvalid.
func (v *Verifier) VerifyDetached(message, sigBlock []byte) ([]byte, error) {
	key, verifier, err := v.publicKey()
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	sig, err := ParseKeyMaterial(sigBlock, SignatureSize)
	if err != nil {
		return nil, fmt.Errorf("parsing signature: %w", err)
	}
	if !bytes.Equal(sig.KeyNum, key.KeyNum) {
		return nil, fmt.Errorf("%w: signature key %x, verifier key %x", ErrKeyMismatch, sig.KeyNum, key.KeyNum)
	}
	if err := verifier.VerifySignature(bytes.NewReader(sig.Raw), bytes.NewReader(message)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	return message, nil
}
