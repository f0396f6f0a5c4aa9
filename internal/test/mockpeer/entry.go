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

package mockpeer

import (
	"github.com/blinklabs-io/handshake-ping/protocol/handshake"
)

const (
	MockNetworkMagic    uint32 = 999999
	MockProtocolVersion uint64 = 13
)

type EntryType int

const (
	EntryTypeNone   EntryType = 0
	EntryTypeInput  EntryType = 1
	EntryTypeOutput EntryType = 2
	EntryTypeClose  EntryType = 3
)

// ConversationEntry is one step of a scripted peer conversation
type ConversationEntry struct {
	Type       EntryType
	ProtocolId uint16
	IsResponse bool
	// OutputValues are CBOR encoded and sent together in a single segment
	OutputValues []any
	// OutputRaw is written to the connection as-is, bypassing segment framing
	OutputRaw []byte
	// InputMessageType is the expected leading message type of an input segment
	InputMessageType uint
	// InputFunc, if set, is called with the payload of an input segment
	InputFunc func(payload []byte) error
}

// ConversationEntryHandshakeRequestGeneric matches any handshake proposal from the client
var ConversationEntryHandshakeRequestGeneric = ConversationEntry{
	Type:             EntryTypeInput,
	ProtocolId:       handshake.ProtocolId,
	InputMessageType: handshake.MessageTypeProposeVersions,
}

// ConversationEntryHandshakeAccept accepts MockProtocolVersion with legacy version data
var ConversationEntryHandshakeAccept = ConversationEntry{
	Type:       EntryTypeOutput,
	ProtocolId: handshake.ProtocolId,
	IsResponse: true,
	OutputValues: []any{
		[]any{
			uint64(handshake.MessageTypeAcceptVersion),
			MockProtocolVersion,
			[]any{uint64(MockNetworkMagic), false},
		},
	},
}

// ConversationEntryHandshakeRefuseVersionMismatch refuses with the versions the mock supports
var ConversationEntryHandshakeRefuseVersionMismatch = ConversationEntry{
	Type:       EntryTypeOutput,
	ProtocolId: handshake.ProtocolId,
	IsResponse: true,
	OutputValues: []any{
		[]any{
			uint64(handshake.MessageTypeRefuse),
			[]any{
				uint64(handshake.RefuseReasonVersionMismatch),
				[]any{uint64(13), uint64(14)},
			},
		},
	},
}

// ConversationEntryClose closes the connection from the mock side
var ConversationEntryClose = ConversationEntry{
	Type: EntryTypeClose,
}
