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

// Package signify parses and verifies the two-line text format used by the
// OpenBSD signify tool for public keys and signatures.
package signify

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	// CommentHeader is the fixed prefix of the first line of every key and
	// signature file.
	CommentHeader = "untrusted comment: "

	// MaxCommentLen bounds the comment text following CommentHeader.
	MaxCommentLen = 1024

	// PublicKeySize is the length of the raw Ed25519 public key material.
	PublicKeySize = 32

	// SignatureSize is the length of a raw Ed25519 signature.
	SignatureSize = 64

	algorithmLen = 2
	keyNumLen    = 8
)

// algorithmEd25519 is the only signature algorithm the format defines.
var algorithmEd25519 = []byte("Ed")

var (
	// ErrMalformed reports input that does not match the signify text format.
	ErrMalformed = errors.New("malformed signify data")

	// ErrKeyMismatch reports a signature whose key number differs from the
	// verifier's public key. This is a configuration error, not a forgery.
	ErrKeyMismatch = errors.New("signature checked against wrong key")

	// ErrSignatureInvalid reports a failed cryptographic verification.
	ErrSignatureInvalid = errors.New("signature did not match")
)

// KeyMaterial is the decoded shape shared by public keys and signatures: a
// comment, a 2-byte algorithm tag, an 8-byte key number, and the raw
// cryptographic payload (32 bytes for a key, 64 for a signature).
type KeyMaterial struct {
	Comment   string
	Algorithm []byte
	KeyNum    []byte
	Raw       []byte
}

// ParseKeyMaterial decodes the two-line comment+base64 format. rawLen is the
// expected length of the trailing cryptographic payload, PublicKeySize or
// SignatureSize.
func ParseKeyMaterial(text []byte, rawLen int) (*KeyMaterial, error) {
	parts := strings.Split(string(text), "\n")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected exactly two newlines, got %d", ErrMalformed, len(parts)-1)
	}
	comment, ok := strings.CutPrefix(parts[0], CommentHeader)
	if !ok {
		return nil, fmt.Errorf("%w: comment must start with %q", ErrMalformed, CommentHeader)
	}
	if len(parts[0]) > len(CommentHeader)+MaxCommentLen {
		return nil, fmt.Errorf("%w: comment longer than %d bytes", ErrMalformed, MaxCommentLen)
	}
	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: decoding base64 payload: %v", ErrMalformed, err)
	}
	if len(decoded) != algorithmLen+keyNumLen+rawLen {
		return nil, fmt.Errorf("%w: data does not match expected length %d", ErrMalformed, algorithmLen+keyNumLen+rawLen)
	}
	if !bytes.Equal(decoded[:algorithmLen], algorithmEd25519) {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformed, decoded[:algorithmLen])
	}
	return &KeyMaterial{
		Comment:   comment,
		Algorithm: decoded[:algorithmLen],
		KeyNum:    decoded[algorithmLen : algorithmLen+keyNumLen],
		Raw:       decoded[algorithmLen+keyNumLen:],
	}, nil
}

// SplitSignedMessage separates a signature file's contents into the leading
// two-line signature block and whatever follows it. The block ends at the
// byte after the second newline; the remainder is the embedded message, which
// may be empty when the caller supplies the message out of band. No format
// validation happens here.
func SplitSignedMessage(signed []byte) (sigBlock, message []byte) {
	first := bytes.IndexByte(signed, '\n')
	if first < 0 {
		return signed, nil
	}
	second := bytes.IndexByte(signed[first+1:], '\n')
	if second < 0 {
		return signed, nil
	}
	boundary := first + 1 + second + 1
	return signed[:boundary], signed[boundary:]
}
