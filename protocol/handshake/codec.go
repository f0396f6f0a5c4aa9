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
	"errors"
	"fmt"
	"math"

	"github.com/blinklabs-io/handshake-ping/cbor"
	"github.com/blinklabs-io/handshake-ping/protocol"
)

var (
	ErrMissingField   = errors.New("missing field")
	ErrWrongType      = errors.New("wrong value type")
	ErrOutOfRange     = errors.New("value out of range")
	ErrUnexpectedData = errors.New("unexpected extra data")
	ErrUnknownMessage = errors.New("unrecognized message type")
	ErrUnknownReason  = errors.New("unrecognized refuse reason")
)

// DecodeError identifies which field of a peer message failed to decode. It matches
// protocol.ErrInvalidMessage with errors.Is
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: failed to decode %s: %s", ProtocolName, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{protocol.ErrInvalidMessage, e.Err}
}

func decodeError(field string, err error) error {
	return &DecodeError{Field: field, Err: err}
}

// EncodeMessage returns the CBOR encoding of a message. Only MsgProposeVersions can be
// encoded, since the initiator never originates anything else
func EncodeMessage(msg protocol.Message) ([]byte, error) {
	value, err := MessageToValue(msg)
	if err != nil {
		return nil, err
	}
	return cbor.Encode(value)
}

// DecodeMessage decodes a CBOR payload received from the peer
func DecodeMessage(data []byte) (protocol.Message, error) {
	var tmp cbor.Value
	n, err := cbor.Decode(data, &tmp)
	if err != nil {
		return nil, decodeError("message", err)
	}
	if n != len(data) {
		return nil, decodeError(
			"message",
			fmt.Errorf("%w: %d trailing bytes", ErrUnexpectedData, len(data)-n),
		)
	}
	return MessageFromValue(tmp.Value)
}

// MessageToValue converts a message into a generic value tree suitable for cbor.Encode
func MessageToValue(msg protocol.Message) (any, error) {
	switch m := msg.(type) {
	case *MsgProposeVersions:
		if m == nil {
			return nil, fmt.Errorf("%w: nil MsgProposeVersions", protocol.ErrInvariantViolation)
		}
		versionMap := make(map[any]any, len(m.VersionTable))
		for _, entry := range m.VersionTable {
			key := versionToValue(entry.Version)
			if _, ok := versionMap[key]; ok {
				return nil, fmt.Errorf(
					"%w: duplicate version %d in version table",
					protocol.ErrInvariantViolation,
					entry.Version,
				)
			}
			versionData := make([]any, 0, len(entry.Capabilities))
			for _, c := range entry.Capabilities {
				versionData = append(versionData, capabilityToValue(c))
			}
			versionMap[key] = versionData
		}
		return []any{uint64(MessageTypeProposeVersions), versionMap}, nil
	default:
		return nil, fmt.Errorf(
			"%w: %s: encoding message %T is not supported",
			protocol.ErrInvariantViolation,
			ProtocolName,
			msg,
		)
	}
}

func versionToValue(version VersionNumber) any {
	if version >= 0 {
		return uint64(version)
	}
	return int64(version)
}

func capabilityToValue(c NodeCapability) any {
	switch v := c.(type) {
	case NetworkMagic:
		return uint64(v)
	case DiffusionMode:
		return bool(v)
	case PeerSharing:
		return uint64(v)
	case Query:
		return bool(v)
	}
	return nil
}

// MessageFromValue converts a generic value tree received from the peer into a
// message. Every access is checked, and failures are reported as *DecodeError
func MessageFromValue(value any) (protocol.Message, error) {
	items, err := asArray(value, "message")
	if err != nil {
		return nil, err
	}
	msgTypeValue, err := arrayItem(items, 0, "message type")
	if err != nil {
		return nil, err
	}
	msgType, err := asUint(msgTypeValue, "message type", math.MaxUint8)
	if err != nil {
		return nil, err
	}
	switch msgType {
	case MessageTypeAcceptVersion:
		return acceptVersionFromValue(items)
	case MessageTypeRefuse:
		return refuseFromValue(items)
	case MessageTypeProposeVersions:
		// A responder never proposes
		return nil, decodeError(
			"message type",
			fmt.Errorf("%w: %d (propose versions) from responder", ErrUnknownMessage, msgType),
		)
	default:
		return nil, decodeError(
			"message type",
			fmt.Errorf("%w: %d", ErrUnknownMessage, msgType),
		)
	}
}

func acceptVersionFromValue(items []any) (*MsgAcceptVersion, error) {
	if err := checkArrayLength(items, 3, "accept version"); err != nil {
		return nil, err
	}
	versionValue, err := arrayItem(items, 1, "accept version number")
	if err != nil {
		return nil, err
	}
	version, err := asVersionNumber(versionValue, "accept version number")
	if err != nil {
		return nil, err
	}
	versionDataValue, err := arrayItem(items, 2, "accept version data")
	if err != nil {
		return nil, err
	}
	versionData, err := versionDataFromValue(versionDataValue, "accept version data")
	if err != nil {
		return nil, err
	}
	return NewMsgAcceptVersion(version, versionData), nil
}

// versionDataFromValue decodes node-to-node version data positionally:
// [networkMagic, diffusionMode, peerSharing, query]. Older versions only carry
// the first two fields
func versionDataFromValue(value any, field string) ([]NodeCapability, error) {
	items, err := asArray(value, field)
	if err != nil {
		return nil, err
	}
	if len(items) > 4 {
		return nil, decodeError(
			field,
			fmt.Errorf("%w: %d fields, expected at most 4", ErrUnexpectedData, len(items)),
		)
	}
	ret := make([]NodeCapability, 0, len(items))
	for idx, item := range items {
		switch idx {
		case 0:
			magic, err := asUint(item, field+" network magic", math.MaxUint32)
			if err != nil {
				return nil, err
			}
			ret = append(ret, NetworkMagic(magic)) // #nosec G115 -- bounded by asUint
		case 1:
			diffusionMode, err := asBool(item, field+" diffusion mode")
			if err != nil {
				return nil, err
			}
			ret = append(ret, DiffusionMode(diffusionMode))
		case 2:
			peerSharing, err := asUint(item, field+" peer sharing", math.MaxUint64)
			if err != nil {
				return nil, err
			}
			ret = append(ret, PeerSharing(peerSharing))
		case 3:
			query, err := asBool(item, field+" query")
			if err != nil {
				return nil, err
			}
			ret = append(ret, Query(query))
		}
	}
	return ret, nil
}

func refuseFromValue(items []any) (*MsgRefuse, error) {
	if err := checkArrayLength(items, 2, "refuse"); err != nil {
		return nil, err
	}
	reasonValue, err := arrayItem(items, 1, "refuse reason")
	if err != nil {
		return nil, err
	}
	reason, err := refuseReasonFromValue(reasonValue)
	if err != nil {
		return nil, err
	}
	return NewMsgRefuse(reason), nil
}

func refuseReasonFromValue(value any) (RefuseReason, error) {
	items, err := asArray(value, "refuse reason")
	if err != nil {
		return nil, err
	}
	codeValue, err := arrayItem(items, 0, "refuse reason code")
	if err != nil {
		return nil, err
	}
	code, err := asUint(codeValue, "refuse reason code", math.MaxUint8)
	if err != nil {
		return nil, err
	}
	switch code {
	case RefuseReasonVersionMismatch:
		if err := checkArrayLength(items, 2, "version mismatch"); err != nil {
			return nil, err
		}
		ret := RefuseReasonVersionMismatchData{
			Versions: []VersionNumber{},
		}
		// The version list may be omitted entirely
		if len(items) < 2 {
			return ret, nil
		}
		versionItems, err := asArray(items[1], "version mismatch versions")
		if err != nil {
			return nil, err
		}
		for idx, item := range versionItems {
			version, err := asVersionNumber(
				item,
				fmt.Sprintf("version mismatch versions[%d]", idx),
			)
			if err != nil {
				return nil, err
			}
			ret.Versions = append(ret.Versions, version)
		}
		return ret, nil
	case RefuseReasonDecodeError:
		version, message, err := versionAndMessageFromValue(items, "handshake decode error")
		if err != nil {
			return nil, err
		}
		return RefuseReasonDecodeErrorData{Version: version, Message: message}, nil
	case RefuseReasonRefused:
		version, message, err := versionAndMessageFromValue(items, "refused")
		if err != nil {
			return nil, err
		}
		return RefuseReasonRefusedData{Version: version, Message: message}, nil
	default:
		return nil, decodeError(
			"refuse reason code",
			fmt.Errorf("%w: %d", ErrUnknownReason, code),
		)
	}
}

func versionAndMessageFromValue(items []any, field string) (VersionNumber, string, error) {
	if err := checkArrayLength(items, 3, field); err != nil {
		return 0, "", err
	}
	versionValue, err := arrayItem(items, 1, field+" version number")
	if err != nil {
		return 0, "", err
	}
	version, err := asVersionNumber(versionValue, field+" version number")
	if err != nil {
		return 0, "", err
	}
	messageValue, err := arrayItem(items, 2, field+" message")
	if err != nil {
		return 0, "", err
	}
	message, err := asText(messageValue, field+" message")
	if err != nil {
		return 0, "", err
	}
	return version, message, nil
}

func asArray(value any, field string) ([]any, error) {
	ret, ok := value.([]any)
	if !ok {
		return nil, decodeError(
			field,
			fmt.Errorf("%w: expected array, found %T", ErrWrongType, value),
		)
	}
	return ret, nil
}

func arrayItem(items []any, idx int, field string) (any, error) {
	if idx < 0 || idx >= len(items) {
		return nil, decodeError(
			field,
			fmt.Errorf("%w: no element at index %d of %d", ErrMissingField, idx, len(items)),
		)
	}
	return items[idx], nil
}

func checkArrayLength(items []any, maxLen int, field string) error {
	if len(items) > maxLen {
		return decodeError(
			field,
			fmt.Errorf("%w: %d elements, expected at most %d", ErrUnexpectedData, len(items), maxLen),
		)
	}
	return nil
}

func asUint(value any, field string, maxValue uint64) (uint64, error) {
	v, ok := value.(uint64)
	if !ok {
		if _, isInt := value.(int64); isInt {
			return 0, decodeError(
				field,
				fmt.Errorf("%w: negative value %d", ErrOutOfRange, value),
			)
		}
		return 0, decodeError(
			field,
			fmt.Errorf("%w: expected unsigned integer, found %T", ErrWrongType, value),
		)
	}
	if v > maxValue {
		return 0, decodeError(
			field,
			fmt.Errorf("%w: %d > %d", ErrOutOfRange, v, maxValue),
		)
	}
	return v, nil
}

func asVersionNumber(value any, field string) (VersionNumber, error) {
	switch v := value.(type) {
	case uint64:
		if v > math.MaxInt64 {
			return 0, decodeError(
				field,
				fmt.Errorf("%w: %d", ErrOutOfRange, v),
			)
		}
		return VersionNumber(v), nil
	case int64:
		return VersionNumber(v), nil
	default:
		return 0, decodeError(
			field,
			fmt.Errorf("%w: expected integer, found %T", ErrWrongType, value),
		)
	}
}

func asBool(value any, field string) (bool, error) {
	v, ok := value.(bool)
	if !ok {
		return false, decodeError(
			field,
			fmt.Errorf("%w: expected bool, found %T", ErrWrongType, value),
		)
	}
	return v, nil
}

func asText(value any, field string) (string, error) {
	v, ok := value.(string)
	if !ok {
		return "", decodeError(
			field,
			fmt.Errorf("%w: expected text string, found %T", ErrWrongType, value),
		)
	}
	return v, nil
}
