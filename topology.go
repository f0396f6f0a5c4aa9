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
	"encoding/json"
	"io"
	"net"
	"os"
	"strconv"
)

// TopologyConfig represents a Cardano node topology config. Only the peer addresses are
// of interest here
type TopologyConfig struct {
	Producers          []TopologyConfigLegacyProducer `json:"Producers"`
	LocalRoots         []TopologyConfigP2PLocalRoot   `json:"localRoots"`
	PublicRoots        []TopologyConfigP2PPublicRoot  `json:"publicRoots"`
	UseLedgerAfterSlot int64                          `json:"useLedgerAfterSlot"`
}

type TopologyConfigLegacyProducer struct {
	Address string `json:"addr"`
	Port    uint   `json:"port"`
	Valency uint   `json:"valency"`
}

type TopologyConfigP2PAccessPoint struct {
	Address string `json:"address"`
	Port    uint   `json:"port"`
}

type TopologyConfigP2PLocalRoot struct {
	AccessPoints []TopologyConfigP2PAccessPoint `json:"accessPoints"`
	Advertise    bool                           `json:"advertise"`
	Valency      uint                           `json:"valency"`
}

type TopologyConfigP2PPublicRoot struct {
	AccessPoints []TopologyConfigP2PAccessPoint `json:"accessPoints"`
	Advertise    bool                           `json:"advertise"`
}

func NewTopologyConfigFromFile(path string) (*TopologyConfig, error) {
	dataFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer dataFile.Close()
	return NewTopologyConfigFromReader(dataFile)
}

func NewTopologyConfigFromReader(r io.Reader) (*TopologyConfig, error) {
	t := &TopologyConfig{}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Hosts returns every peer address in the topology in host:port form. Legacy producers
// come first, followed by local roots and then public roots. Duplicates are dropped
func (t *TopologyConfig) Hosts() []string {
	var ret []string
	seen := make(map[string]struct{})
	add := func(address string, port uint) {
		if address == "" {
			return
		}
		host := net.JoinHostPort(address, strconv.FormatUint(uint64(port), 10))
		if _, ok := seen[host]; ok {
			return
		}
		seen[host] = struct{}{}
		ret = append(ret, host)
	}
	for _, producer := range t.Producers {
		add(producer.Address, producer.Port)
	}
	for _, root := range t.LocalRoots {
		for _, ap := range root.AccessPoints {
			add(ap.Address, ap.Port)
		}
	}
	for _, root := range t.PublicRoots {
		for _, ap := range root.AccessPoints {
			add(ap.Address, ap.Port)
		}
	}
	return ret
}
