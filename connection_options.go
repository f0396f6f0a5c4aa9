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
	"log/slog"
	"net"
)

// EndpointOptionFunc is a type that represents functions that modify the Endpoint config
type EndpointOptionFunc func(*Endpoint)

// WithConnection specifies an existing connection to use. If none is provided, the Dial()
// function can be used to create one later
func WithConnection(conn net.Conn) EndpointOptionFunc {
	return func(e *Endpoint) {
		e.conn = conn
	}
}

// WithHost specifies the peer address in host:port form
func WithHost(host string) EndpointOptionFunc {
	return func(e *Endpoint) {
		e.host = host
	}
}

// WithNetwork specifies the network
func WithNetwork(network Network) EndpointOptionFunc {
	return func(e *Endpoint) {
		e.networkMagic = network.NetworkMagic
		e.networkId = network.Name
	}
}

// WithNetworkMagic specifies the network magic value
func WithNetworkMagic(networkMagic uint32) EndpointOptionFunc {
	return func(e *Endpoint) {
		e.networkMagic = networkMagic
	}
}

// WithNetworkId specifies the network label used in logs. If none is provided, the name
// of the known network matching the network magic is used
func WithNetworkId(networkId string) EndpointOptionFunc {
	return func(e *Endpoint) {
		e.networkId = networkId
	}
}

// WithDialer specifies the dialer used by Dial()
func WithDialer(dialer *net.Dialer) EndpointOptionFunc {
	return func(e *Endpoint) {
		e.dialer = dialer
	}
}

// WithLogger specifies the logger
func WithLogger(logger *slog.Logger) EndpointOptionFunc {
	return func(e *Endpoint) {
		e.logger = logger
	}
}
