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

package algorithmregistry

import (
	"crypto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedAlgorithms(t *testing.T) {
	assert.Equal(t, []string{"SHA256", "SHA512"}, AllowedAlgorithms())
}

func TestLookup(t *testing.T) {
	for _, test := range []struct {
		name      string
		algorithm string
		wantHash  crypto.Hash
		wantLen   int
		wantErr   bool
	}{
		{name: "sha256", algorithm: "SHA256", wantHash: crypto.SHA256, wantLen: 64},
		{name: "sha512", algorithm: "SHA512", wantHash: crypto.SHA512, wantLen: 128},
		{name: "md5 rejected", algorithm: "MD5", wantErr: true},
		{name: "lowercase token rejected", algorithm: "sha256", wantErr: true},
	} {
		t.Run(test.name, func(t *testing.T) {
			alg, err := Default().Lookup(test.algorithm)
			if test.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.wantHash, alg.Hash)
			assert.Equal(t, test.wantLen, alg.DigestLen)
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("restricted set", func(t *testing.T) {
		registry, err := New([]string{"SHA256"})
		require.NoError(t, err)
		_, err = registry.Lookup("SHA256")
		assert.NoError(t, err)
		_, err = registry.Lookup("SHA512")
		assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	})

	t.Run("empty list permits everything", func(t *testing.T) {
		registry, err := New(nil)
		require.NoError(t, err)
		_, err = registry.Lookup("SHA512")
		assert.NoError(t, err)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := New([]string{"BLAKE3"})
		assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	})
}
