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
	"path/filepath"

	"github.com/csig-dev/csig/pkg/chain"
	"github.com/csig-dev/csig/pkg/checksum"
	"github.com/csig-dev/csig/pkg/signify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var checksumCmd = &cobra.Command{
	Use:   "checksum LISTFILE",
	Short: "verify a signed checksum list and the files it covers",
	Long: `Verify the signature on a checksum list and recompute the digest of
every file it names, relative to the list's directory. Verification is all
or nothing; the first failing entry aborts. With --show-failed the command
instead enumerates the failing entries without aborting, as a diagnostic.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		key, err := publicKey()
		if err != nil {
			return err
		}
		reg, err := registry()
		if err != nil {
			return err
		}
		if viper.GetBool("show-failed") {
			return showFailed(key, args[0])
		}
		now, err := comparisonDate()
		if err != nil {
			return err
		}

		var count int
		if viper.GetBool("chained") {
			count, err = chain.NewVerifier(key, chain.WithRegistry(reg)).VerifyFile(args[0], now)
		} else {
			count, err = checksum.NewVerifier(key, checksum.WithRegistry(reg)).VerifyFile(args[0])
		}
		if err != nil {
			return err
		}
		slog.Info("checksum list verified", "file", args[0], "entries", count)
		return nil
	},
}

// showFailed authenticates the list, then walks the non-throwing failed-entry
// view and reports each failing file.
func showFailed(key []byte, path string) error {
	abs, data, err := checksum.ReadListFile(path)
	if err != nil {
		return err
	}
	var text []byte
	if viper.GetBool("chained") {
		now, err := comparisonDate()
		if err != nil {
			return err
		}
		text, err = chain.NewVerifier(key).VerifyMessage(data, now)
		if err != nil {
			return err
		}
	} else {
		text, err = signify.NewVerifier(key).VerifyMessage(data)
		if err != nil {
			return err
		}
	}
	list, err := checksum.ParseList(text, true, nil)
	if err != nil {
		return err
	}
	failed := 0
	for entry := range list.Failed(filepath.Dir(abs)) {
		failed++
		fmt.Printf("%s (%s) FAILED\n", entry.Filename, entry.Algorithm)
	}
	slog.Info("checksum list scanned", "entries", list.Len(), "failed", failed)
	return nil
}

func init() {
	checksumCmd.Flags().Bool("show-failed", false, "list the entries that fail verification instead of aborting on the first failure")
	if err := viper.BindPFlags(checksumCmd.Flags()); err != nil {
		slog.Error(err.Error())
	}
	rootCmd.AddCommand(checksumCmd)
}
