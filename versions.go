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

package ping

import (
	"slices"

	"github.com/blinklabs-io/handshake-ping/protocol/handshake"
)

type protocolVersionNtN struct {
	// Version data for these versions is [networkMagic, diffusionMode]. Later
	// versions add the peer sharing and query fields
	LegacyVersionData bool
	EnableBabbageEra  bool
	EnableFullDuplex  bool
	EnablePeerSharing bool
	EnableQuery       bool
}

// Map of NtN protocol versions to protocol features
//
// We don't bother with NtN protocol versions before 7 (when Alonzo was enabled)
var protocolVersionMapNtN = map[handshake.VersionNumber]protocolVersionNtN{
	7: {
		LegacyVersionData: true,
	},
	8: {
		LegacyVersionData: true,
	},
	9: {
		LegacyVersionData: true,
		EnableBabbageEra:  true,
	},
	10: {
		LegacyVersionData: true,
		EnableBabbageEra:  true,
		EnableFullDuplex:  true,
	},
	11: {
		EnableBabbageEra:  true,
		EnableFullDuplex:  true,
		EnablePeerSharing: true,
		EnableQuery:       true,
	},
	12: {
		EnableBabbageEra:  true,
		EnableFullDuplex:  true,
		EnablePeerSharing: true,
		EnableQuery:       true,
	},
	13: {
		EnableBabbageEra:  true,
		EnableFullDuplex:  true,
		EnablePeerSharing: true,
		EnableQuery:       true,
	},
	14: {
		EnableBabbageEra:  true,
		EnableFullDuplex:  true,
		EnablePeerSharing: true,
		EnableQuery:       true,
	},
}

// DefaultProtocolVersions returns the NtN protocol versions proposed when none are
// configured. These are the known versions whose version data matches what we send
func DefaultProtocolVersions() []handshake.VersionNumber {
	versions := []handshake.VersionNumber{}
	for version, features := range protocolVersionMapNtN {
		if features.LegacyVersionData {
			versions = append(versions, version)
		}
	}
	slices.Sort(versions)
	return versions
}

// KnownProtocolVersion reports whether version is a NtN protocol version we know about
func KnownProtocolVersion(version handshake.VersionNumber) bool {
	_, ok := protocolVersionMapNtN[version]
	return ok
}
