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

package handshake

import (
	"cmp"
	"slices"
)

// NewVersionTable builds a version table offering the same version data for every
// candidate version. Each version is placed with a binary search and an ordered
// insert, so the table is sorted ascending at all times and duplicates collapse to
// a single entry regardless of input order
func NewVersionTable(
	versions []VersionNumber,
	networkMagic uint32,
	diffusionMode bool,
) VersionTable {
	table := make(VersionTable, 0, len(versions))
	for _, version := range versions {
		idx, found := slices.BinarySearchFunc(
			table,
			version,
			func(entry VersionTableEntry, target VersionNumber) int {
				return cmp.Compare(entry.Version, target)
			},
		)
		if found {
			continue
		}
		table = slices.Insert(
			table,
			idx,
			VersionTableEntry{
				Version: version,
				Capabilities: []NodeCapability{
					NetworkMagic(networkMagic),
					DiffusionMode(diffusionMode),
				},
			},
		)
	}
	return table
}
