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

package handshake_test

import (
	"testing"

	"github.com/blinklabs-io/handshake-ping/protocol/handshake"
	"github.com/stretchr/testify/assert"
)

func TestNewVersionTable(t *testing.T) {
	testDefs := []struct {
		name             string
		versions         []handshake.VersionNumber
		expectedVersions []handshake.VersionNumber
	}{
		{
			name:             "duplicates",
			versions:         []handshake.VersionNumber{8, 7, 8, 9},
			expectedVersions: []handshake.VersionNumber{7, 8, 9},
		},
		{
			name:             "already sorted",
			versions:         []handshake.VersionNumber{7, 8, 9, 10},
			expectedVersions: []handshake.VersionNumber{7, 8, 9, 10},
		},
		{
			name:             "reversed",
			versions:         []handshake.VersionNumber{14, 13, 12, 11},
			expectedVersions: []handshake.VersionNumber{11, 12, 13, 14},
		},
		{
			name:             "all the same",
			versions:         []handshake.VersionNumber{10, 10, 10},
			expectedVersions: []handshake.VersionNumber{10},
		},
		{
			name:             "empty",
			versions:         nil,
			expectedVersions: []handshake.VersionNumber{},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			const magic = 764824073
			table := handshake.NewVersionTable(
				testDef.versions,
				magic,
				handshake.DiffusionModeInitiatorOnly,
			)
			assert.Equal(t, testDef.expectedVersions, table.Versions())
			for _, entry := range table {
				assert.Equal(
					t,
					[]handshake.NodeCapability{
						handshake.NetworkMagic(magic),
						handshake.DiffusionMode(false),
					},
					entry.Capabilities,
				)
			}
		})
	}
}

func TestNewVersionTableStrictlyAscending(t *testing.T) {
	versions := []handshake.VersionNumber{5, 3, 9, 1, 3, 7, 9, 2, 8, 1, 6, 4, 10}
	table := handshake.NewVersionTable(versions, 2, false)
	assert.Len(t, table, 10)
	for i := 1; i < len(table); i++ {
		assert.Less(t, table[i-1].Version, table[i].Version)
	}
}

func TestNewVersionTableDiffusionMode(t *testing.T) {
	table := handshake.NewVersionTable(
		[]handshake.VersionNumber{11},
		1,
		handshake.DiffusionModeInitiatorAndResponder,
	)
	assert.Equal(
		t,
		handshake.VersionTable{
			{
				Version: 11,
				Capabilities: []handshake.NodeCapability{
					handshake.NetworkMagic(1),
					handshake.DiffusionMode(true),
				},
			},
		},
		table,
	)
}
