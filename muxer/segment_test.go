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

package muxer_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/blinklabs-io/handshake-ping/muxer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentCreation(t *testing.T) {
	tests := []struct {
		name       string
		payload    []byte
		protocolId uint16
		isResponse bool
		expectErr  bool
	}{
		{
			name:       "valid request segment",
			protocolId: 0x00,
			payload:    []byte("test payload"),
		},
		{
			name:       "valid response segment",
			protocolId: 0x00,
			payload:    []byte("test response"),
			isResponse: true,
		},
		{
			name:       "empty payload",
			protocolId: 0x02,
			payload:    []byte{},
		},
		{
			name:       "maximum payload size",
			protocolId: 0x03,
			payload:    make([]byte, muxer.SegmentMaxPayloadLength),
		},
		{
			name:       "payload too large",
			protocolId: 0x04,
			payload:    make([]byte, muxer.SegmentMaxPayloadLength+1),
			expectErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segment, err := muxer.NewSegment(tt.protocolId, tt.payload, tt.isResponse)
			if tt.expectErr {
				require.ErrorIs(t, err, muxer.ErrPayloadTooLarge)
				assert.Nil(t, segment)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.protocolId, segment.GetProtocolId())
			assert.Equal(t, tt.payload, segment.Payload)
			assert.Equal(t, uint16(len(tt.payload)), segment.PayloadLength)
			assert.Equal(t, tt.isResponse, segment.IsResponse())
			assert.NotEqual(t, segment.IsResponse(), segment.IsRequest())
		})
	}
}

func TestSegmentHeaderMethods(t *testing.T) {
	tests := []struct {
		name       string
		protocolId uint16
		isResponse bool
	}{
		{"request segment", 0x00, false},
		{"response segment", 0x00, true},
		{"high protocol ID request", 0x7FFF, false},
		{"high protocol ID response", 0x7FFF, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := muxer.SegmentHeader{
				ProtocolId: tt.protocolId,
			}
			if tt.isResponse {
				header.ProtocolId |= muxer.SegmentProtocolIdResponseFlag
			}
			assert.Equal(t, tt.isResponse, header.IsResponse())
			assert.Equal(t, !tt.isResponse, header.IsRequest())
			assert.Equal(t, tt.protocolId, header.GetProtocolId())
		})
	}
}

func TestSegmentMarshalLayout(t *testing.T) {
	payload := []byte{0x82, 0x00, 0xa0}
	segment, err := muxer.NewSegment(0, payload, false)
	require.NoError(t, err)
	segment.Timestamp = 0x01020304
	data, err := segment.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, muxer.SegmentHeaderLength+len(payload))
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, data[0:4])
	// Initiator segments for the handshake never carry the response bit
	assert.Equal(t, []byte{0x00, 0x00}, data[4:6])
	assert.Equal(t, uint16(len(payload)), binary.BigEndian.Uint16(data[6:8]))
	assert.Equal(t, payload, data[8:])

	segment, err = muxer.NewSegment(0, payload, true)
	require.NoError(t, err)
	data, err = segment.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80, 0x00}, data[4:6])
}

func TestSegmentMarshalLengthMismatch(t *testing.T) {
	segment := &muxer.Segment{
		SegmentHeader: muxer.SegmentHeader{PayloadLength: 4},
		Payload:       []byte{1},
	}
	_, err := segment.MarshalBinary()
	assert.Error(t, err)
}

func TestDecodeSegment(t *testing.T) {
	payloadLengths := []int{0, 1, 255, 256, 4096, muxer.SegmentMaxPayloadLength}
	for _, length := range payloadLengths {
		payload := bytes.Repeat([]byte{0xab}, length)
		segment, err := muxer.NewSegment(0, payload, true)
		require.NoError(t, err)
		data, err := segment.MarshalBinary()
		require.NoError(t, err)
		assert.Equal(t, uint16(length), binary.BigEndian.Uint16(data[6:8]))
		// Trailing bytes belong to the next segment and must not be consumed
		data = append(data, 0xff, 0xff)
		decoded, n, err := muxer.DecodeSegment(data)
		require.NoError(t, err)
		assert.Equal(t, muxer.SegmentHeaderLength+length, n)
		assert.Equal(t, segment.SegmentHeader, decoded.SegmentHeader)
		assert.Equal(t, payload, decoded.Payload)
	}
}

func TestDecodeSegmentShort(t *testing.T) {
	segment, err := muxer.NewSegment(0, []byte{1, 2, 3, 4, 5}, false)
	require.NoError(t, err)
	data, err := segment.MarshalBinary()
	require.NoError(t, err)
	for i := range len(data) {
		_, _, err := muxer.DecodeSegment(data[:i])
		assert.ErrorIs(t, err, muxer.ErrShortSegment, "length %d", i)
	}
}

func TestReadSegment(t *testing.T) {
	first, err := muxer.NewSegment(0, []byte{0x83, 0x01, 0x0a}, true)
	require.NoError(t, err)
	second, err := muxer.NewSegment(0, []byte{}, true)
	require.NoError(t, err)
	var stream bytes.Buffer
	for _, segment := range []*muxer.Segment{first, second} {
		data, err := segment.MarshalBinary()
		require.NoError(t, err)
		stream.Write(data)
	}
	got, err := muxer.ReadSegment(&stream)
	require.NoError(t, err)
	assert.Equal(t, first.Payload, got.Payload)
	got, err = muxer.ReadSegment(&stream)
	require.NoError(t, err)
	assert.Empty(t, got.Payload)
	_, err = muxer.ReadSegment(&stream)
	assert.ErrorIs(t, err, io.EOF)
}

// oneByteReader hands out data a byte at a time to exercise partial reads
type oneByteReader struct {
	data []byte
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = r.data[0]
	r.data = r.data[1:]
	return 1, nil
}

func TestReadSegmentPartialReads(t *testing.T) {
	segment, err := muxer.NewSegment(0, []byte("fragmented"), true)
	require.NoError(t, err)
	data, err := segment.MarshalBinary()
	require.NoError(t, err)
	got, err := muxer.ReadSegment(&oneByteReader{data: data})
	require.NoError(t, err)
	assert.Equal(t, []byte("fragmented"), got.Payload)
}

func TestReadSegmentTruncated(t *testing.T) {
	segment, err := muxer.NewSegment(0, []byte("truncated payload"), true)
	require.NoError(t, err)
	data, err := segment.MarshalBinary()
	require.NoError(t, err)
	testDefs := []struct {
		name   string
		length int
	}{
		{name: "partial header", length: 5},
		{name: "header only", length: muxer.SegmentHeaderLength},
		{name: "partial payload", length: muxer.SegmentHeaderLength + 3},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := muxer.ReadSegment(bytes.NewReader(data[:testDef.length]))
			require.Error(t, err)
			assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
		})
	}
}
