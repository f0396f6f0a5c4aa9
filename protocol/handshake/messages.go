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
	"fmt"
	"strings"

	"github.com/blinklabs-io/handshake-ping/protocol"
)

// Message types
const (
	MessageTypeProposeVersions = 0
	MessageTypeAcceptVersion   = 1
	MessageTypeRefuse          = 2
)

// Refusal reasons
const (
	RefuseReasonVersionMismatch = 0
	RefuseReasonDecodeError     = 1
	RefuseReasonRefused         = 2
)

// VersionNumber is a handshake protocol version. The wire format allows any CBOR
// integer, but real versions are small positive numbers
type VersionNumber int64

// NodeCapability is one positional field of the node-to-node version data
type NodeCapability interface {
	fmt.Stringer
	isNodeCapability()
}

// NetworkMagic identifies the network the node belongs to. Always the first field
type NetworkMagic uint32

// DiffusionMode is true when the node runs in initiator-and-responder mode. Always the
// second field
type DiffusionMode bool

// PeerSharing advertises the peer sharing mode. Present in newer versions only
type PeerSharing uint64

// Query is set when the peer only wants to query supported versions. Present in newer
// versions only
type Query bool

func (NetworkMagic) isNodeCapability()  {}
func (DiffusionMode) isNodeCapability() {}
func (PeerSharing) isNodeCapability()   {}
func (Query) isNodeCapability()         {}

func (n NetworkMagic) String() string {
	return fmt.Sprintf("NetworkMagic(%d)", uint32(n))
}

func (d DiffusionMode) String() string {
	return fmt.Sprintf("DiffusionMode(%t)", bool(d))
}

func (p PeerSharing) String() string {
	return fmt.Sprintf("PeerSharing(%d)", uint64(p))
}

func (q Query) String() string {
	return fmt.Sprintf("Query(%t)", bool(q))
}

// VersionTableEntry maps one version to the capabilities offered for it
type VersionTableEntry struct {
	Version      VersionNumber
	Capabilities []NodeCapability
}

// VersionTable is ordered by strictly ascending version number
type VersionTable []VersionTableEntry

// Versions returns the version numbers in the table, in order
func (t VersionTable) Versions() []VersionNumber {
	ret := make([]VersionNumber, 0, len(t))
	for _, entry := range t {
		ret = append(ret, entry.Version)
	}
	return ret
}

func (t VersionTable) String() string {
	parts := make([]string, 0, len(t))
	for _, entry := range t {
		parts = append(
			parts,
			fmt.Sprintf("%d: %s", entry.Version, capabilitiesString(entry.Capabilities)),
		)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func capabilitiesString(caps []NodeCapability) string {
	parts := make([]string, 0, len(caps))
	for _, c := range caps {
		parts = append(parts, c.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type MsgProposeVersions struct {
	VersionTable VersionTable
}

func NewMsgProposeVersions(versionTable VersionTable) *MsgProposeVersions {
	return &MsgProposeVersions{
		VersionTable: versionTable,
	}
}

func (m *MsgProposeVersions) Type() uint8 {
	return MessageTypeProposeVersions
}

func (m *MsgProposeVersions) String() string {
	return "MsgProposeVersions" + m.VersionTable.String()
}

type MsgAcceptVersion struct {
	Version     VersionNumber
	VersionData []NodeCapability
}

func NewMsgAcceptVersion(version VersionNumber, versionData []NodeCapability) *MsgAcceptVersion {
	return &MsgAcceptVersion{
		Version:     version,
		VersionData: versionData,
	}
}

func (m *MsgAcceptVersion) Type() uint8 {
	return MessageTypeAcceptVersion
}

func (m *MsgAcceptVersion) String() string {
	return fmt.Sprintf(
		"MsgAcceptVersion(%d, %s)",
		m.Version,
		capabilitiesString(m.VersionData),
	)
}

// NetworkMagic returns the network magic from the accepted version data, if present
func (m *MsgAcceptVersion) NetworkMagic() (uint32, bool) {
	if len(m.VersionData) == 0 {
		return 0, false
	}
	magic, ok := m.VersionData[0].(NetworkMagic)
	return uint32(magic), ok
}

type MsgRefuse struct {
	Reason RefuseReason
}

func NewMsgRefuse(reason RefuseReason) *MsgRefuse {
	return &MsgRefuse{
		Reason: reason,
	}
}

func (m *MsgRefuse) Type() uint8 {
	return MessageTypeRefuse
}

func (m *MsgRefuse) String() string {
	return fmt.Sprintf("MsgRefuse(%s)", m.Reason)
}

// RefuseReason explains why the peer refused the proposal
type RefuseReason interface {
	fmt.Stringer
	Code() uint
}

type RefuseReasonVersionMismatchData struct {
	Versions []VersionNumber
}

func (r RefuseReasonVersionMismatchData) Code() uint {
	return RefuseReasonVersionMismatch
}

func (r RefuseReasonVersionMismatchData) String() string {
	return fmt.Sprintf("VersionMismatch(%v)", r.Versions)
}

type RefuseReasonDecodeErrorData struct {
	Version VersionNumber
	Message string
}

func (r RefuseReasonDecodeErrorData) Code() uint {
	return RefuseReasonDecodeError
}

func (r RefuseReasonDecodeErrorData) String() string {
	return fmt.Sprintf("HandshakeDecodeError(%d, %q)", r.Version, r.Message)
}

type RefuseReasonRefusedData struct {
	Version VersionNumber
	Message string
}

func (r RefuseReasonRefusedData) Code() uint {
	return RefuseReasonRefused
}

func (r RefuseReasonRefusedData) String() string {
	return fmt.Sprintf("Refused(%d, %q)", r.Version, r.Message)
}

// Compile-time interface checks
var (
	_ protocol.Message = (*MsgProposeVersions)(nil)
	_ protocol.Message = (*MsgAcceptVersion)(nil)
	_ protocol.Message = (*MsgRefuse)(nil)
)
