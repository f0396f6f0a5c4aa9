// Copyright 2026 Blink Labs Software
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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	ping "github.com/blinklabs-io/handshake-ping"
	"github.com/blinklabs-io/handshake-ping/internal/config"
	"github.com/blinklabs-io/handshake-ping/internal/logging"
	"github.com/spf13/cobra"
)

const programName = "handshake-ping"

type globalFlags struct {
	configFile string
	logLevel   string
	summary    bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	f := &globalFlags{}
	cmd := &cobra.Command{
		Use:   programName,
		Short: "Ping Cardano nodes with a node-to-node handshake",
		Long: `Connects to every configured host at the same time, proposes the supported
node-to-node protocol versions and reports what each node answered along with
the connect and negotiate times.

The config file is taken from --config, then $` + config.EnvConfigFile + `, then the
first of App.yaml, App.yml or App.toml in the working directory.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), f)
		},
	}
	cmd.Flags().StringVar(&f.configFile, "config", "", "path to the config file")
	cmd.Flags().StringVar(
		&f.logLevel,
		"log-level",
		"",
		"log level (debug, info, warn, error). overrides log_level from the config file",
	)
	cmd.Flags().BoolVar(&f.summary, "summary", true, "print a summary table when done")
	return cmd
}

func run(ctx context.Context, stdout io.Writer, stderr io.Writer, f *globalFlags) error {
	cfg, err := config.Load(f.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logLevel := cfg.LogLevel
	if f.logLevel != "" {
		logLevel = f.logLevel
	}
	logger, err := logging.Configure(stderr, logLevel)
	if err != nil {
		return err
	}
	logger.Debug("loaded config", "path", cfg.Path, "hosts", len(cfg.Hosts))
	if len(cfg.DroppedVersions) > 0 {
		logger.Warn(
			"dropping versions above max_supported_version",
			"versions", cfg.DroppedVersions,
			"max_supported_version", *cfg.MaxSupportedVersion,
		)
	}
	if len(cfg.UnknownVersions) > 0 {
		logger.Warn("proposing unknown protocol versions", "versions", cfg.UnknownVersions)
	}

	pinger, err := ping.NewPinger(
		ping.WithHosts(cfg.PingHosts()...),
		ping.WithProtocolVersions(cfg.SupportedVersions),
		ping.WithDiffusionMode(cfg.DiffusionMode),
		ping.WithWorkers(cfg.Workers),
		ping.WithTimeout(cfg.Timeout),
		ping.WithPingerLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	results := pinger.Run(ctx)

	if f.summary {
		fmt.Fprintln(stdout, renderSummary(results))
	}
	return nil
}
