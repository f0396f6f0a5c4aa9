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

package ping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/blinklabs-io/handshake-ping/muxer"
	"github.com/blinklabs-io/handshake-ping/protocol/handshake"
)

var (
	ErrNotConnected = errors.New("endpoint is not connected")
	ErrEndpointUsed = errors.New("endpoint has already been used for a negotiation")
)

// Endpoint identifies a peer and owns the connection to it. An Endpoint is consumed by
// a single call to Negotiate and is never reused
type Endpoint struct {
	host         string
	networkMagic uint32
	networkId    string
	conn         net.Conn
	bearer       *muxer.Bearer
	dialer       *net.Dialer
	logger       *slog.Logger
	mutex        sync.Mutex
	used         bool
	onceClose    sync.Once
	closeErr     error
}

// NewEndpoint returns a new Endpoint with the specified options. If no connection is
// provided with WithConnection, Dial must be called before Negotiate
func NewEndpoint(options ...EndpointOptionFunc) *Endpoint {
	e := &Endpoint{}
	// Apply provided options functions
	for _, option := range options {
		option(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.dialer == nil {
		e.dialer = &net.Dialer{}
	}
	if e.networkId == "" {
		e.networkId = NetworkIdByNetworkMagic(e.networkMagic)
	}
	if e.conn != nil {
		e.bearer = muxer.NewBearer(e.conn)
	}
	return e
}

// Host returns the address of the peer
func (e *Endpoint) Host() string {
	return e.host
}

// NetworkMagic returns the network magic sent to the peer
func (e *Endpoint) NetworkMagic() uint32 {
	return e.networkMagic
}

// NetworkId returns the display label of the peer's network
func (e *Endpoint) NetworkId() string {
	return e.networkId
}

// Bearer returns the segment bearer for the connection, or nil before Dial
func (e *Endpoint) Bearer() *muxer.Bearer {
	return e.bearer
}

// Dial opens a connection to the endpoint's host using the specified protocol
func (e *Endpoint) Dial(ctx context.Context, proto string) error {
	if e.conn != nil {
		return fmt.Errorf("endpoint for %s is already connected", e.host)
	}
	conn, err := e.dialer.DialContext(ctx, proto, e.host)
	if err != nil {
		return err
	}
	e.conn = conn
	e.bearer = muxer.NewBearer(conn)
	e.logger.Debug(
		"connected",
		"local_addr", conn.LocalAddr().String(),
		"remote_addr", conn.RemoteAddr().String(),
	)
	return nil
}

// Negotiate runs one handshake over the connection and closes it afterward. The network
// magic and logger of the endpoint override any provided in options
func (e *Endpoint) Negotiate(
	ctx context.Context,
	options ...handshake.HandshakeOptionFunc,
) (handshake.Result, error) {
	e.mutex.Lock()
	if e.used {
		e.mutex.Unlock()
		return handshake.Result{}, ErrEndpointUsed
	}
	e.used = true
	e.mutex.Unlock()
	if e.bearer == nil {
		return handshake.Result{}, ErrNotConnected
	}
	defer func() {
		_ = e.Close()
	}()
	options = append(
		options,
		handshake.WithNetworkMagic(e.networkMagic),
		handshake.WithLogger(e.logger),
	)
	cfg := handshake.NewConfig(options...)
	return handshake.Negotiate(ctx, e.bearer, &cfg)
}

// Close closes the connection. It is safe to call more than once
func (e *Endpoint) Close() error {
	e.onceClose.Do(func() {
		if e.bearer != nil {
			e.closeErr = e.bearer.Close()
			return
		}
		if e.conn != nil {
			e.closeErr = e.conn.Close()
		}
	})
	return e.closeErr
}
