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
	"fmt"
	"time"

	ping "github.com/blinklabs-io/handshake-ping"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	statusAccepted = "accepted"
	statusRefused  = "refused"
	statusFailed   = "failed"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

var statusStyles = map[string]lipgloss.Style{
	statusAccepted: cellStyle.Foreground(lipgloss.Color("10")),
	statusRefused:  cellStyle.Foreground(lipgloss.Color("11")),
	statusFailed:   cellStyle.Foreground(lipgloss.Color("9")),
}

const statusColumn = 2

// renderSummary renders one table row per host, in host order
func renderSummary(results []ping.Result) string {
	statuses := make([]string, len(results))
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("HOST", "NETWORK", "RESULT", "VERSION", "CONNECT", "NEGOTIATE", "TOTAL", "DETAIL")
	for idx, result := range results {
		status, version, detail := describeResult(result)
		statuses[idx] = status
		t.Row(
			result.Host.Address,
			result.Host.NetworkId,
			status,
			version,
			formatDuration(result.ConnectDuration),
			formatDuration(result.NegotiateDuration),
			formatDuration(result.TotalDuration),
			detail,
		)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if col == statusColumn && row >= 0 && row < len(statuses) {
			return statusStyles[statuses[row]]
		}
		return cellStyle
	})
	return t.Render()
}

func describeResult(result ping.Result) (string, string, string) {
	if result.Err != nil {
		return statusFailed, "", result.Err.Error()
	}
	if accept, ok := result.Accepted(); ok {
		return statusAccepted, fmt.Sprintf("%d", accept.Version), accept.String()
	}
	if refuse, ok := result.Refused(); ok {
		return statusRefused, "", refuse.Reason.String()
	}
	return statusFailed, "", "no response"
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}
