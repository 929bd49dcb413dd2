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
	"time"

	"github.com/csig-dev/csig/internal/cli"
	"github.com/csig-dev/csig/pkg/algorithmregistry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "csig",
	Short: "verify signify signatures, checksum lists, and chained signatures",
	Long: `csig verifies artifacts signed in the signify format: plain signed
messages, signed checksum lists covering whole directory trees, and chained
signatures (.csig) in which a long-lived root key endorses a short-lived
intermediate key.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		level := cli.LogLevel(viper.GetString("log-level"))
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command. It is called once, by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	if err := cli.Initialize(rootCmd); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// publicKey reads the public key file named by the --key flag.
func publicKey() ([]byte, error) {
	path := viper.GetString("key")
	if path == "" {
		return nil, fmt.Errorf("must provide a public key with --key")
	}
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading public key: %w", err)
	}
	return key, nil
}

// registry builds the algorithm registry from the --algorithms flag.
func registry() (*algorithmregistry.Registry, error) {
	return algorithmregistry.New(viper.GetStringSlice("algorithms"))
}

// comparisonDate parses the --date flag; a zero time means "today".
func comparisonDate() (time.Time, error) {
	date := viper.GetString("date")
	if date == "" {
		return time.Time{}, nil
	}
	now, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --date %q: %w", date, err)
	}
	return now, nil
}
