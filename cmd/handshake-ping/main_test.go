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
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	ping "github.com/blinklabs-io/handshake-ping"
	"github.com/blinklabs-io/handshake-ping/internal/config"
	"github.com/blinklabs-io/handshake-ping/internal/test/mockpeer"
	"github.com/blinklabs-io/handshake-ping/protocol/handshake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRootCommand(t *testing.T) {
	defer goleak.VerifyNone(t)
	prevLogger := slog.Default()
	defer slog.SetDefault(prevLogger)

	server, err := mockpeer.NewServer(
		[]mockpeer.ConversationEntry{
			mockpeer.ConversationEntryHandshakeRequestGeneric,
			mockpeer.ConversationEntryHandshakeAccept,
		},
	)
	require.NoError(t, err)
	configPath := filepath.Join(t.TempDir(), "App.yaml")
	require.NoError(
		t,
		os.WriteFile(
			configPath,
			[]byte(fmt.Sprintf(
				"hosts:\n  - host: %s\n    network_magic: %d\n    network_id: mock\n"+
					"supported_versions: [13, 14]\nmax_supported_version: 13\ntimeout: 5s\n",
				server.Addr(),
				mockpeer.MockNetworkMagic,
			)),
			0o600,
		),
	)

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", configPath, "--log-level", "debug"})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	require.NoError(t, cmd.Execute())
	require.NoError(t, server.Close())

	assert.Contains(t, stdout.String(), server.Addr())
	assert.Contains(t, stdout.String(), statusAccepted)
	assert.Contains(t, stderr.String(), "dropping versions above max_supported_version")
	assert.Contains(t, stderr.String(), "ping succeeded")
	assert.Contains(t, stderr.String(), "network_id=mock")
}

func TestRootCommandMissingConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvConfigFile, "")
	cmd := newRootCommand()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	assert.ErrorContains(t, err, "failed to load config")
}

func TestRenderSummary(t *testing.T) {
	results := []ping.Result{
		{
			Host:            ping.Host{Address: "relay1:3001", NetworkId: "mainnet"},
			ConnectDuration: 12 * time.Millisecond,
			Result: handshake.Result{
				NegotiateDuration: 30 * time.Millisecond,
				TotalDuration:     31 * time.Millisecond,
				Response: handshake.NewMsgAcceptVersion(
					13,
					[]handshake.NodeCapability{
						handshake.NetworkMagic(764824073),
						handshake.DiffusionMode(false),
					},
				),
			},
		},
		{
			Host: ping.Host{Address: "relay2:3001", NetworkId: "preview"},
			Result: handshake.Result{
				Response: handshake.NewMsgRefuse(
					handshake.RefuseReasonVersionMismatchData{
						Versions: []handshake.VersionNumber{13, 14},
					},
				),
			},
		},
		{
			Host: ping.Host{Address: "relay3:3001", NetworkId: "unknown"},
			Err:  errors.New("connect: connection refused"),
		},
	}
	out := renderSummary(results)
	for _, expected := range []string{
		"relay1:3001", "mainnet", statusAccepted, "13", "12ms", "30ms",
		"relay2:3001", statusRefused,
		"relay3:3001", statusFailed, "connection refused",
	} {
		assert.Contains(t, out, expected)
	}
}
