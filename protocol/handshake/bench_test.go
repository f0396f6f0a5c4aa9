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
	"fmt"
	"testing"

	"github.com/blinklabs-io/handshake-ping/internal/test"
	"github.com/blinklabs-io/handshake-ping/muxer"
	"github.com/blinklabs-io/handshake-ping/protocol/handshake"
)

// benchSink prevents compiler dead-code elimination in benchmarks.
var benchSink any

// BenchmarkNewVersionTable benchmarks version table construction by input size.
func BenchmarkNewVersionTable(b *testing.B) {
	for _, count := range []int{4, 16, 64} {
		versions := make([]handshake.VersionNumber, 0, count)
		// Descending input is the worst case for positional insert
		for i := count; i > 0; i-- {
			versions = append(versions, handshake.VersionNumber(i))
		}
		b.Run(fmt.Sprintf("Versions_%d", count), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				benchSink = handshake.NewVersionTable(versions, 1, false)
			}
		})
	}
}

// BenchmarkEncodeProposal benchmarks encoding and framing a proposal.
func BenchmarkEncodeProposal(b *testing.B) {
	msg := handshake.NewMsgProposeVersions(
		handshake.NewVersionTable(
			[]handshake.VersionNumber{7, 8, 9, 10, 11, 12, 13, 14},
			764824073,
			false,
		),
	)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		payload, err := handshake.EncodeMessage(msg)
		if err != nil {
			b.Fatalf("EncodeMessage failed: %v", err)
		}
		segment, err := muxer.NewSegment(handshake.ProtocolId, payload, false)
		if err != nil {
			b.Fatalf("NewSegment failed: %v", err)
		}
		benchSink, _ = segment.MarshalBinary()
	}
}

// BenchmarkDecodeMessage benchmarks decoding of peer responses by kind.
func BenchmarkDecodeMessage(b *testing.B) {
	testDefs := []struct {
		name    string
		cborHex string
	}{
		{"Accept", "83010a8201f4"},
		{"RefuseVersionMismatch", "82028200840708090a"},
		{"RefuseDecodeError", "820283010b6d756e6b6e6f776e20656e636f64"},
	}
	for _, testDef := range testDefs {
		cborData := test.DecodeHexString(testDef.cborHex)
		b.Run(testDef.name, func(b *testing.B) {
			// Pre-validate that decoding succeeds before measuring
			if _, err := handshake.DecodeMessage(cborData); err != nil {
				b.Fatalf("DecodeMessage failed: %v", err)
			}
			b.SetBytes(int64(len(cborData)))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				benchSink, _ = handshake.DecodeMessage(cborData)
			}
		})
	}
}
