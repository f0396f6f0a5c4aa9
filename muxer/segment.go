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

package muxer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	SegmentHeaderLength           = 8
	SegmentProtocolIdResponseFlag = 0x8000
	SegmentMaxPayloadLength       = 65535
)

var (
	ErrPayloadTooLarge = errors.New("segment payload exceeds maximum length")
	ErrShortSegment    = errors.New("segment data shorter than header and declared payload")
)

// Timestamps are microseconds elapsed since this reference, truncated to 32 bits
var timestampReference = time.Now()

type SegmentHeader struct {
	Timestamp     uint32
	ProtocolId    uint16
	PayloadLength uint16
}

type Segment struct {
	SegmentHeader
	Payload []byte
}

// NewSegment builds a segment for the given mini-protocol. The response flag is
// set on the protocol ID when isResponse is true
func NewSegment(protocolId uint16, payload []byte, isResponse bool) (*Segment, error) {
	if len(payload) > SegmentMaxPayloadLength {
		return nil, fmt.Errorf(
			"%w: %d > %d",
			ErrPayloadTooLarge,
			len(payload),
			SegmentMaxPayloadLength,
		)
	}
	header := SegmentHeader{
		Timestamp:     currentTimestamp(),
		ProtocolId:    protocolId,
		PayloadLength: uint16(len(payload)), // #nosec G115 -- bounded above
	}
	if isResponse {
		header.ProtocolId = header.ProtocolId | SegmentProtocolIdResponseFlag
	}
	segment := &Segment{
		SegmentHeader: header,
		Payload:       payload,
	}
	return segment, nil
}

func currentTimestamp() uint32 {
	// #nosec G115 -- truncation to 32 bits is part of the wire format
	return uint32(time.Since(timestampReference).Microseconds() & 0xffffffff)
}

func (s *SegmentHeader) IsRequest() bool {
	return (s.ProtocolId & SegmentProtocolIdResponseFlag) == 0
}

func (s *SegmentHeader) IsResponse() bool {
	return (s.ProtocolId & SegmentProtocolIdResponseFlag) > 0
}

func (s *SegmentHeader) GetProtocolId() uint16 {
	return s.ProtocolId &^ SegmentProtocolIdResponseFlag
}

// MarshalBinary returns the 8-byte big-endian header followed by the payload
func (s *Segment) MarshalBinary() ([]byte, error) {
	if len(s.Payload) != int(s.PayloadLength) {
		return nil, fmt.Errorf(
			"segment payload length mismatch: header says %d, payload is %d",
			s.PayloadLength,
			len(s.Payload),
		)
	}
	buf := bytes.NewBuffer(make([]byte, 0, SegmentHeaderLength+len(s.Payload)))
	if err := binary.Write(buf, binary.BigEndian, s.SegmentHeader); err != nil {
		return nil, err
	}
	buf.Write(s.Payload)
	return buf.Bytes(), nil
}

// DecodeSegment decodes a single segment from the start of data. It returns the
// segment and the number of bytes consumed. Data shorter than the header plus the
// declared payload length results in ErrShortSegment
func DecodeSegment(data []byte) (*Segment, int, error) {
	if len(data) < SegmentHeaderLength {
		return nil, 0, fmt.Errorf(
			"%w: have %d bytes, need %d for header",
			ErrShortSegment,
			len(data),
			SegmentHeaderLength,
		)
	}
	header := SegmentHeader{
		Timestamp:     binary.BigEndian.Uint32(data[0:4]),
		ProtocolId:    binary.BigEndian.Uint16(data[4:6]),
		PayloadLength: binary.BigEndian.Uint16(data[6:8]),
	}
	end := SegmentHeaderLength + int(header.PayloadLength)
	if len(data) < end {
		return nil, 0, fmt.Errorf(
			"%w: have %d bytes, need %d",
			ErrShortSegment,
			len(data),
			end,
		)
	}
	segment := &Segment{
		SegmentHeader: header,
		Payload:       make([]byte, header.PayloadLength),
	}
	copy(segment.Payload, data[SegmentHeaderLength:end])
	return segment, end, nil
}

// ReadSegment reads exactly one segment from r. It blocks until the full header and
// the declared payload have arrived. A stream that ends early yields io.ErrUnexpectedEOF
func ReadSegment(r io.Reader) (*Segment, error) {
	header := SegmentHeader{}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, err
	}
	segment := &Segment{
		SegmentHeader: header,
		Payload:       make([]byte, header.PayloadLength),
	}
	// We use ReadFull because it guarantees to read the expected number of bytes or
	// return an error
	if _, err := io.ReadFull(r, segment.Payload); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return segment, nil
}
