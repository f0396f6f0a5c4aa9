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

// Package logging sets up the process-wide slog logger
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel parses a level name such as "debug" or "WARN". An empty name is info
func ParseLevel(level string) (slog.Level, error) {
	var ret slog.Level
	if strings.TrimSpace(level) == "" {
		return slog.LevelInfo, nil
	}
	if err := ret.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return ret, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return ret, nil
}

// Configure builds a text logger writing to w at the given level and installs it as
// the default logger
func Configure(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := slog.New(
		slog.NewTextHandler(
			w,
			&slog.HandlerOptions{
				Level: lvl,
			},
		),
	)
	slog.SetDefault(logger)
	return logger, nil
}
