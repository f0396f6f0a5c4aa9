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

// Package mockpeer provides a scripted handshake responder for tests
package mockpeer

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/blinklabs-io/handshake-ping/cbor"
	"github.com/blinklabs-io/handshake-ping/muxer"
)

// Connection mocks a node on the far end of an in-memory connection
type Connection struct {
	mockConn  net.Conn
	conn      net.Conn
	errChan   chan error
	onceClose sync.Once
}

// NewConnection returns a new Connection running the provided conversation. The
// returned value is the client side of the connection
func NewConnection(conversation []ConversationEntry) *Connection {
	c := &Connection{
		errChan: make(chan error, 1),
	}
	c.conn, c.mockConn = net.Pipe()
	go func() {
		c.errChan <- runConversation(c.mockConn, conversation)
	}()
	return c
}

// Wait blocks until the conversation has finished and returns its error
func (c *Connection) Wait() error {
	err := <-c.errChan
	// Let later callers see the same result
	c.errChan <- err
	return err
}

// Read provides a proxy to the client-side connection's Read function
func (c *Connection) Read(b []byte) (n int, err error) {
	return c.conn.Read(b)
}

// Write provides a proxy to the client-side connection's Write function
func (c *Connection) Write(b []byte) (n int, err error) {
	return c.conn.Write(b)
}

// Close closes both sides of the connection and waits for the conversation to stop
func (c *Connection) Close() error {
	var err error
	c.onceClose.Do(func() {
		err = errors.Join(c.conn.Close(), c.mockConn.Close())
		_ = c.Wait()
	})
	return err
}

func (c *Connection) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Connection) SetDeadline(t time.Time) error {
	return c.conn.SetDeadline(t)
}

func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.conn.SetWriteDeadline(t)
}

func runConversation(conn net.Conn, conversation []ConversationEntry) error {
	bearer := muxer.NewBearer(conn)
	for idx, entry := range conversation {
		var err error
		switch entry.Type {
		case EntryTypeInput:
			err = processInputEntry(bearer, entry)
		case EntryTypeOutput:
			err = processOutputEntry(conn, bearer, entry)
		case EntryTypeClose:
			err = bearer.Close()
		default:
			err = fmt.Errorf("unknown conversation entry type: %d", entry.Type)
		}
		if err != nil {
			return fmt.Errorf("conversation entry %d: %w", idx, err)
		}
	}
	return nil
}

func processInputEntry(bearer *muxer.Bearer, entry ConversationEntry) error {
	segment, err := bearer.ReadHalf().ReadSegment()
	if err != nil {
		return err
	}
	if segment.GetProtocolId() != entry.ProtocolId {
		return fmt.Errorf(
			"input message protocol ID did not match expected value: expected %d, got %d",
			entry.ProtocolId,
			segment.GetProtocolId(),
		)
	}
	if segment.IsResponse() != entry.IsResponse {
		return fmt.Errorf(
			"input message response flag did not match expected value: expected %v, got %v",
			entry.IsResponse,
			segment.IsResponse(),
		)
	}
	msgType, err := messageType(segment.Payload)
	if err != nil {
		return fmt.Errorf("decode error: %w", err)
	}
	if uint64(entry.InputMessageType) != msgType {
		return fmt.Errorf(
			"input message is not of expected type: expected %d, got %d",
			entry.InputMessageType,
			msgType,
		)
	}
	if entry.InputFunc != nil {
		return entry.InputFunc(segment.Payload)
	}
	return nil
}

// messageType returns the leading message type of a payload holding a single CBOR list
func messageType(payload []byte) (uint64, error) {
	var tmp cbor.Value
	bytesRead, err := cbor.Decode(payload, &tmp)
	if err != nil {
		return 0, err
	}
	if bytesRead != len(payload) {
		return 0, fmt.Errorf("%d bytes of trailing data", len(payload)-bytesRead)
	}
	list, ok := tmp.Value.([]any)
	if !ok {
		return 0, fmt.Errorf("decoded value was not a list, found: %T", tmp.Value)
	}
	if len(list) == 0 {
		return 0, errors.New("cannot return first item from empty list")
	}
	msgType, ok := list[0].(uint64)
	if !ok {
		return 0, fmt.Errorf("first list item was not numeric, found: %v", list[0])
	}
	return msgType, nil
}

func processOutputEntry(conn net.Conn, bearer *muxer.Bearer, entry ConversationEntry) error {
	if entry.OutputRaw != nil {
		_, err := conn.Write(entry.OutputRaw)
		return err
	}
	payloadBuf := bytes.NewBuffer(nil)
	for _, value := range entry.OutputValues {
		data, err := cbor.Encode(value)
		if err != nil {
			return err
		}
		payloadBuf.Write(data)
	}
	segment, err := muxer.NewSegment(
		entry.ProtocolId,
		payloadBuf.Bytes(),
		entry.IsResponse,
	)
	if err != nil {
		return err
	}
	return bearer.WriteHalf().WriteSegment(segment)
}
