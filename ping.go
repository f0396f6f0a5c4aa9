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

// Package ping dials Cardano nodes and performs a single node-to-node handshake with
// each of them, measuring how long connecting and negotiating took.
//
// The protocol pieces live in subpackages: cbor for the value encoding, muxer for
// segment framing and protocol/handshake for the handshake mini-protocol itself.
package ping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/blinklabs-io/handshake-ping/protocol/handshake"
)

var ErrNoHosts = errors.New("no hosts to ping")

// Host describes a peer to ping
type Host struct {
	Address      string
	NetworkMagic uint32
	// NetworkId is a display label. If empty, the name of the known network matching
	// NetworkMagic is used
	NetworkId string
}

// Result is the outcome of pinging a single host. The embedded handshake result is
// the zero value when the connection could not be established
type Result struct {
	handshake.Result
	Host            Host
	ConnectDuration time.Duration
	Err             error
}

// Pinger pings a list of hosts concurrently
type Pinger struct {
	hosts            []Host
	protocolVersions []handshake.VersionNumber
	diffusionMode    bool
	workers          int
	timeout          time.Duration
	dialer           *net.Dialer
	logger           *slog.Logger
}

// PingerOptionFunc is a type that represents functions that modify the Pinger config
type PingerOptionFunc func(*Pinger)

// NewPinger returns a new Pinger with the specified options
func NewPinger(options ...PingerOptionFunc) (*Pinger, error) {
	p := &Pinger{
		diffusionMode: handshake.DiffusionModeInitiatorOnly,
	}
	// Apply provided options functions
	for _, option := range options {
		option(p)
	}
	if len(p.hosts) == 0 {
		return nil, ErrNoHosts
	}
	if len(p.protocolVersions) == 0 {
		p.protocolVersions = DefaultProtocolVersions()
	}
	if p.workers < 0 {
		return nil, fmt.Errorf("invalid worker count: %d", p.workers)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.dialer == nil {
		p.dialer = &net.Dialer{}
	}
	return p, nil
}

// WithHosts specifies the hosts to ping
func WithHosts(hosts ...Host) PingerOptionFunc {
	return func(p *Pinger) {
		p.hosts = append(p.hosts, hosts...)
	}
}

// WithProtocolVersions specifies the protocol versions to propose. If none are
// provided, DefaultProtocolVersions() is used
func WithProtocolVersions(versions []handshake.VersionNumber) PingerOptionFunc {
	return func(p *Pinger) {
		p.protocolVersions = versions
	}
}

// WithDiffusionMode specifies the diffusion mode advertised to every host
func WithDiffusionMode(diffusionMode bool) PingerOptionFunc {
	return func(p *Pinger) {
		p.diffusionMode = diffusionMode
	}
}

// WithWorkers limits how many hosts are pinged at once. Zero, the default, pings all
// hosts at the same time
func WithWorkers(workers int) PingerOptionFunc {
	return func(p *Pinger) {
		p.workers = workers
	}
}

// WithTimeout specifies a per-host timeout. A single deadline covers connecting and
// the handshake together, starting once the host's turn to be pinged comes. Zero, the
// default, waits indefinitely
func WithTimeout(timeout time.Duration) PingerOptionFunc {
	return func(p *Pinger) {
		p.timeout = timeout
	}
}

// WithPingerDialer specifies the dialer used to connect to hosts
func WithPingerDialer(dialer *net.Dialer) PingerOptionFunc {
	return func(p *Pinger) {
		p.dialer = dialer
	}
}

// WithPingerLogger specifies the logger
func WithPingerLogger(logger *slog.Logger) PingerOptionFunc {
	return func(p *Pinger) {
		p.logger = logger
	}
}

// Run pings every host and returns the results in the same order as the hosts. It
// returns once every host has finished. A failure for one host never affects another
func (p *Pinger) Run(ctx context.Context) []Result {
	results := make([]Result, len(p.hosts))
	var workerChan chan struct{}
	if p.workers > 0 {
		workerChan = make(chan struct{}, p.workers)
	}
	var wg sync.WaitGroup
	for idx, host := range p.hosts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if workerChan != nil {
				select {
				case workerChan <- struct{}{}:
					defer func() { <-workerChan }()
				case <-ctx.Done():
					results[idx] = p.failed(host, ctx.Err())
					return
				}
			}
			results[idx] = p.ping(ctx, host)
		}()
	}
	wg.Wait()
	return results
}

func (p *Pinger) ping(ctx context.Context, host Host) Result {
	if host.NetworkId == "" {
		host.NetworkId = NetworkIdByNetworkMagic(host.NetworkMagic)
	}
	result := Result{Host: host}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	logger := p.logger.With(
		"host", host.Address,
		"network_id", host.NetworkId,
	)
	endpoint := NewEndpoint(
		WithHost(host.Address),
		WithNetworkMagic(host.NetworkMagic),
		WithNetworkId(host.NetworkId),
		WithDialer(p.dialer),
		WithLogger(logger),
	)
	defer func() {
		_ = endpoint.Close()
	}()
	connectStart := time.Now()
	if err := endpoint.Dial(ctx, "tcp"); err != nil {
		result.ConnectDuration = time.Since(connectStart)
		result.Err = fmt.Errorf("connect: %w", err)
		logger.Error("ping failed", "error", result.Err)
		return result
	}
	result.ConnectDuration = time.Since(connectStart)
	hsResult, err := endpoint.Negotiate(
		ctx,
		handshake.WithProtocolVersions(p.protocolVersions),
		handshake.WithDiffusionMode(p.diffusionMode),
	)
	result.Result = hsResult
	if err != nil {
		result.Err = err
		logger.Error("ping failed", "error", err)
		return result
	}
	logger.Info(
		"ping succeeded",
		"connect_ms", result.ConnectDuration.Milliseconds(),
		"negotiate_ms", result.NegotiateDuration.Milliseconds(),
		"total_ms", result.TotalDuration.Milliseconds(),
		"response", result.Response,
	)
	return result
}

func (p *Pinger) failed(host Host, err error) Result {
	if host.NetworkId == "" {
		host.NetworkId = NetworkIdByNetworkMagic(host.NetworkMagic)
	}
	p.logger.Error(
		"ping failed",
		"host", host.Address,
		"network_id", host.NetworkId,
		"error", err,
	)
	return Result{Host: host, Err: err}
}
