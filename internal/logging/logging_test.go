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

package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/blinklabs-io/handshake-ping/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testDefs := []struct {
		level    string
		expected slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, testDef := range testDefs {
		level, err := logging.ParseLevel(testDef.level)
		require.NoError(t, err, "level %q", testDef.level)
		assert.Equal(t, testDef.expected, level, "level %q", testDef.level)
	}
	_, err := logging.ParseLevel("loud")
	assert.Error(t, err)
}

func TestConfigure(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)
	var buf bytes.Buffer
	logger, err := logging.Configure(&buf, "warn")
	require.NoError(t, err)
	assert.Same(t, logger, slog.Default())
	logger.Info("hidden")
	logger.Warn("shown", "host", "127.0.0.1:3001")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "host=127.0.0.1:3001")
	_, err = logging.Configure(&buf, "loud")
	assert.Error(t, err)
}
