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

package cbor_test

import (
	"encoding/hex"
	"testing"

	"github.com/blinklabs-io/handshake-ping/cbor"
	"github.com/blinklabs-io/handshake-ping/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpBytes(t *testing.T) {
	// [1, 10, [1, false]]
	out := cbor.DumpBytes(test.DecodeHexString("83010a8201f4"))
	assert.Equal(
		t,
		"[\n  0x1 (1),\n  0xa (10),\n  [\n    0x1 (1),\n    false,\n  ],\n],\n",
		out,
	)
}

func TestDumpBytesMap(t *testing.T) {
	// {8: 1, 7: h'0102'}
	out := cbor.DumpBytes(test.DecodeHexString("a2080107420102"))
	assert.Equal(
		t,
		"{\n  0x7 =>\n    <bytes> (length 2),\n  0x8 =>\n    0x1 (1),\n},\n",
		out,
	)
}

func TestDumpBytesInvalid(t *testing.T) {
	assert.Equal(t, "ff00", cbor.DumpBytes([]byte{0xff, 0x00}))
}

func TestByteStringRoundTrip(t *testing.T) {
	bs := cbor.NewByteString([]byte{0xde, 0xad})
	assert.Equal(t, "dead", bs.String())
	cborData, err := cbor.Encode(bs)
	require.NoError(t, err)
	assert.Equal(t, "42dead", hex.EncodeToString(cborData))
	var decoded cbor.ByteString
	_, err = cbor.Decode(cborData, &decoded)
	require.NoError(t, err)
	assert.Equal(t, bs, decoded)
}
