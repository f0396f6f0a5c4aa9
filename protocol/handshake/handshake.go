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

// Package handshake implements the initiator side of the Ouroboros
// node-to-node handshake mini-protocol: the message model, the conversion
// between messages and generic CBOR values, version table construction and a
// single propose-and-observe negotiation over a muxer.Bearer.
package handshake

import (
	"log/slog"
	"time"

	"github.com/blinklabs-io/handshake-ping/protocol"
)

const (
	ProtocolName        = "handshake"
	ProtocolId   uint16 = 0
)

const (
	DiffusionModeInitiatorOnly         = false
	DiffusionModeInitiatorAndResponder = true
)

var (
	statePropose = protocol.NewState(1, "Propose")
	stateConfirm = protocol.NewState(2, "Confirm")
	stateDone    = protocol.NewState(3, "Done")
)

// StateMap describes the handshake state machine from the initiator's point of view
var StateMap = protocol.StateMap{
	statePropose: protocol.StateMapEntry{
		Agency: protocol.AgencyClient,
		Transitions: []protocol.StateTransition{
			{
				MsgType:  MessageTypeProposeVersions,
				NewState: stateConfirm,
			},
		},
	},
	stateConfirm: protocol.StateMapEntry{
		Agency: protocol.AgencyServer,
		Transitions: []protocol.StateTransition{
			{
				MsgType:  MessageTypeAcceptVersion,
				NewState: stateDone,
			},
			{
				MsgType:  MessageTypeRefuse,
				NewState: stateDone,
			},
		},
	},
	stateDone: protocol.StateMapEntry{
		Agency: protocol.AgencyNone,
	},
}

// Config is used to configure a negotiation
type Config struct {
	ProtocolVersions []VersionNumber
	NetworkMagic     uint32
	// DiffusionMode is advertised for every proposed version. It is not negotiated
	DiffusionMode bool
	// Timeout bounds the whole exchange. Zero means wait for the peer indefinitely
	Timeout time.Duration
	Logger  *slog.Logger
}

// HandshakeOptionFunc represents a function used to modify the handshake config
type HandshakeOptionFunc func(*Config)

// NewConfig returns a new handshake config object with the provided options
func NewConfig(options ...HandshakeOptionFunc) Config {
	c := Config{
		DiffusionMode: DiffusionModeInitiatorOnly,
	}
	// Apply provided options functions
	for _, option := range options {
		option(&c)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// WithProtocolVersions specifies the candidate protocol versions to propose
func WithProtocolVersions(versions []VersionNumber) HandshakeOptionFunc {
	return func(c *Config) {
		c.ProtocolVersions = versions
	}
}

// WithNetworkMagic specifies the network magic value
func WithNetworkMagic(networkMagic uint32) HandshakeOptionFunc {
	return func(c *Config) {
		c.NetworkMagic = networkMagic
	}
}

// WithDiffusionMode specifies the diffusion mode advertised in the version data
func WithDiffusionMode(diffusionMode bool) HandshakeOptionFunc {
	return func(c *Config) {
		c.DiffusionMode = diffusionMode
	}
}

// WithTimeout specifies the timeout for the exchange
func WithTimeout(timeout time.Duration) HandshakeOptionFunc {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithLogger specifies the logger
func WithLogger(logger *slog.Logger) HandshakeOptionFunc {
	return func(c *Config) {
		c.Logger = logger
	}
}
