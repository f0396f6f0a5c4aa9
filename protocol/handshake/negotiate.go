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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/handshake-ping/cbor"
	"github.com/blinklabs-io/handshake-ping/muxer"
	"github.com/blinklabs-io/handshake-ping/protocol"
)

var ErrNoVersions = errors.New("no protocol versions to propose")

// Result describes a finished exchange
type Result struct {
	// Response is the decoded peer message, either *MsgAcceptVersion or *MsgRefuse. It
	// is set whenever the receive side succeeded, even if sending failed
	Response protocol.Message
	// State is the last state reached in the state machine
	State protocol.State
	// NegotiateDuration covers the concurrent send and receive
	NegotiateDuration time.Duration
	// TotalDuration also includes building and encoding the proposal
	TotalDuration time.Duration
}

// Accepted returns the version accepted by the peer, if any
func (r Result) Accepted() (*MsgAcceptVersion, bool) {
	msg, ok := r.Response.(*MsgAcceptVersion)
	return msg, ok
}

// Refused returns the refusal sent by the peer, if any
func (r Result) Refused() (*MsgRefuse, bool) {
	msg, ok := r.Response.(*MsgRefuse)
	return msg, ok
}

// Negotiate performs a single propose-and-observe handshake over the bearer. The
// proposal is sent while the response is read; neither direction waits for the other,
// and a failure in one does not cancel the other. The returned Result always carries
// the timings, even when an error is returned. A refusal from the peer is not an error
func Negotiate(ctx context.Context, bearer *muxer.Bearer, cfg *Config) (Result, error) {
	start := time.Now()
	var result Result
	if cfg == nil {
		tmpCfg := NewConfig()
		cfg = &tmpCfg
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("protocol", ProtocolName)
	state := statePropose
	result.State = state

	msg, err := prepareMessage(state, cfg)
	if err != nil {
		result.TotalDuration = time.Since(start)
		return result, err
	}
	logger.Debug("sending proposal", "message", msg)
	payload, err := EncodeMessage(msg)
	if err != nil {
		result.TotalDuration = time.Since(start)
		return result, err
	}
	segment, err := muxer.NewSegment(ProtocolId, payload, false)
	if err != nil {
		result.TotalDuration = time.Since(start)
		return result, err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := bearer.SetDeadline(deadline); err != nil {
			logger.Debug("failed to set bearer deadline", "error", err)
		}
	}
	// Closing the bearer is the only way to unblock a read from a silent peer
	doneChan := make(chan struct{})
	var watchWg sync.WaitGroup
	if ctx.Done() != nil {
		watchWg.Add(1)
		go func() {
			defer watchWg.Done()
			select {
			case <-ctx.Done():
				_ = bearer.Close()
			case <-doneChan:
			}
		}()
	}

	negotiateStart := time.Now()
	var wg sync.WaitGroup
	var sendErr, recvErr error
	var response protocol.Message
	wg.Add(2)
	go func() {
		defer wg.Done()
		sendErr = send(bearer.WriteHalf(), segment)
		if sendErr != nil {
			logger.Error("failed to send proposal", "error", sendErr)
			return
		}
		logger.Debug("sent proposal", "payload_length", len(payload))
	}()
	go func() {
		defer wg.Done()
		var respPayload []byte
		response, respPayload, recvErr = receive(bearer.ReadHalf())
		if recvErr != nil {
			logger.Error("failed to receive response", "error", recvErr)
			var decodeErr *DecodeError
			if errors.As(recvErr, &decodeErr) {
				logger.Debug(
					"undecodable response",
					"structure", cbor.DumpBytes(respPayload),
				)
			}
			return
		}
		logger.Info("received response", "message", response)
	}()
	wg.Wait()
	result.NegotiateDuration = time.Since(negotiateStart)
	close(doneChan)
	watchWg.Wait()

	if recvErr == nil {
		result.Response = response
	}
	if sendErr == nil {
		state, err = StateMap.Transition(state, msg.Type())
		if err != nil {
			sendErr = err
		}
	}
	if sendErr == nil && recvErr == nil {
		state, err = StateMap.Transition(state, response.Type())
		if err != nil {
			recvErr = err
		}
	}
	result.State = state
	result.TotalDuration = time.Since(start)
	if sendErr != nil || recvErr != nil {
		err := errors.Join(
			wrapError("send", sendErr),
			wrapError("receive", recvErr),
		)
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(ctxErr, err)
		}
		return result, err
	}
	return result, nil
}

// prepareMessage builds the message we send in the given state. Only the
// initiator's Propose state has anything to send
func prepareMessage(state protocol.State, cfg *Config) (protocol.Message, error) {
	switch state {
	case statePropose:
		if len(cfg.ProtocolVersions) == 0 {
			return nil, ErrNoVersions
		}
		versionTable := NewVersionTable(
			cfg.ProtocolVersions,
			cfg.NetworkMagic,
			cfg.DiffusionMode,
		)
		return NewMsgProposeVersions(versionTable), nil
	case stateConfirm:
		// The server has agency in Confirm
		return nil, nil
	default:
		return nil, fmt.Errorf(
			"%w: %s: no message to send in state %s",
			protocol.ErrInvariantViolation,
			ProtocolName,
			state,
		)
	}
}

func send(w *muxer.WriteHalf, segment *muxer.Segment) error {
	return w.WriteSegment(segment)
}

func receive(r *muxer.ReadHalf) (protocol.Message, []byte, error) {
	segment, err := r.ReadSegment()
	if err != nil {
		return nil, nil, err
	}
	if segment.GetProtocolId() != ProtocolId {
		return nil, nil, fmt.Errorf(
			"%w: received segment for protocol ID %d",
			protocol.ErrUnexpectedProtocol,
			segment.GetProtocolId(),
		)
	}
	msg, err := DecodeMessage(segment.Payload)
	return msg, segment.Payload, err
}

func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %s: %w", ProtocolName, op, err)
}
