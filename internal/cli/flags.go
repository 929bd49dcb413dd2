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

package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/csig-dev/csig/pkg/algorithmregistry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Initialize registers the flags shared by every csig subcommand on the root
// command and binds them to viper.
func Initialize(rootCmd *cobra.Command) error {
	rootCmd.PersistentFlags().String("key", "", "path to the signify public key (root key for chained verification)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level for the process. options are [debug, info, warn, error]")
	rootCmd.PersistentFlags().Bool("chained", false, "treat the input as a chained signature (.csig)")
	rootCmd.PersistentFlags().String("date", "", "comparison date for chained-signature expiration in YYYY-MM-DD form; defaults to the current UTC date")

	algorithmHelp := fmt.Sprintf("permitted checksum algorithms (allowed %s)", strings.Join(algorithmregistry.AllowedAlgorithms(), ", "))
	rootCmd.PersistentFlags().StringSlice("algorithms", algorithmregistry.AllowedAlgorithms(), algorithmHelp)

	return viper.BindPFlags(rootCmd.PersistentFlags())
}

// LogLevel parses the log-level flag, defaulting to info on unknown values.
func LogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
