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

package protocol

import "errors"

var (
	// ErrInvalidMessage marks a message from the peer that could not be decoded
	ErrInvalidMessage = errors.New("protocol violation: invalid message received")
	// ErrProtocolViolation marks a message that is well formed but not allowed
	// in the current state
	ErrProtocolViolation = errors.New("protocol violation")
	// ErrUnexpectedProtocol marks a segment for a mini-protocol we did not expect
	ErrUnexpectedProtocol = errors.New("protocol violation: unexpected mini-protocol")
	// ErrInvariantViolation marks a bug in this program rather than bad peer input
	ErrInvariantViolation = errors.New("internal invariant violated")
)
