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

package ping_test

import (
	"testing"

	ping "github.com/blinklabs-io/handshake-ping"
	"github.com/blinklabs-io/handshake-ping/protocol/handshake"
	"github.com/stretchr/testify/assert"
)

func TestNetworkLookup(t *testing.T) {
	assert.Equal(t, ping.NetworkMainnet, ping.NetworkByName("mainnet"))
	assert.Equal(t, ping.NetworkInvalid, ping.NetworkByName("nope"))
	assert.Equal(t, ping.NetworkPreview, ping.NetworkByNetworkMagic(2))
	assert.Equal(t, ping.NetworkInvalid, ping.NetworkByNetworkMagic(42))
	assert.Equal(t, "sanchonet", ping.NetworkIdByNetworkMagic(4))
	assert.Equal(t, ping.NetworkIdUnknown, ping.NetworkIdByNetworkMagic(42))
	assert.Equal(t, "preprod", ping.NetworkPreprod.String())
}

func TestNetworkPublicRoot(t *testing.T) {
	assert.Equal(
		t,
		"preprod-node.world.dev.cardano.org:30000",
		ping.NetworkPreprod.PublicRoot(),
	)
	assert.Empty(t, ping.NetworkTestnet.PublicRoot())
}

func TestDefaultProtocolVersions(t *testing.T) {
	assert.Equal(
		t,
		[]handshake.VersionNumber{7, 8, 9, 10},
		ping.DefaultProtocolVersions(),
	)
	assert.True(t, ping.KnownProtocolVersion(14))
	assert.False(t, ping.KnownProtocolVersion(6))
}
