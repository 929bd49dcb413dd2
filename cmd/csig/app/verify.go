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

package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/csig-dev/csig/pkg/chain"
	"github.com/csig-dev/csig/pkg/signify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var verifyCmd = &cobra.Command{
	Use:   "verify SIGFILE [MSGFILE]",
	Short: "verify a signed message and print it",
	Long: `Verify a signed message. With only SIGFILE, the message must be
embedded after the signature block. With MSGFILE, the signature file holds
only the signature block and the message is supplied separately. The
verified message is written to stdout.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(_ *cobra.Command, args []string) error {
		key, err := publicKey()
		if err != nil {
			return err
		}
		signed, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading signature file: %w", err)
		}

		var message []byte
		switch {
		case viper.GetBool("chained"):
			if len(args) == 2 {
				return fmt.Errorf("chained verification does not support a detached message")
			}
			now, err := comparisonDate()
			if err != nil {
				return err
			}
			message, err = chain.NewVerifier(key).VerifyMessage(signed, now)
			if err != nil {
				return err
			}
		case len(args) == 2:
			detached, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("reading message file: %w", err)
			}
			message, err = signify.NewVerifier(key).VerifyDetached(detached, signed)
			if err != nil {
				return err
			}
		default:
			message, err = signify.NewVerifier(key).VerifyMessage(signed)
			if err != nil {
				return err
			}
		}

		slog.Info("signature verified", "file", args[0], "bytes", len(message))
		_, err = os.Stdout.Write(message)
		return err
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
