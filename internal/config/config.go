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

// Package config loads the handshake-ping configuration file
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	ping "github.com/blinklabs-io/handshake-ping"
	"github.com/blinklabs-io/handshake-ping/internal/logging"
	"github.com/blinklabs-io/handshake-ping/protocol/handshake"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the environment variable checked for a config file path
const EnvConfigFile = "HANDSHAKE_PING_CONFIG"

// DefaultConfigFiles are looked for in the working directory, in order
var DefaultConfigFiles = []string{"App.yaml", "App.yml", "App.toml"}

var (
	ErrConfigNotFound = errors.New("no config file found")
	ErrNoHosts        = errors.New("no hosts configured")
	ErrNoVersions     = errors.New("no supported versions left after filtering")
)

// HostConfig describes one peer. Empty fields are filled from the defaults
type HostConfig struct {
	Host         string `yaml:"host"          toml:"host"`
	NetworkMagic uint32 `yaml:"network_magic" toml:"network_magic"`
	NetworkId    string `yaml:"network_id"    toml:"network_id"`
}

type Config struct {
	Hosts    []HostConfig `yaml:"hosts"    toml:"hosts"`
	Defaults HostConfig   `yaml:"defaults" toml:"defaults"`

	// TopologyFile is a cardano-node topology file whose peers are added to Hosts. A
	// relative path is relative to the config file
	TopologyFile        string                    `yaml:"topology_file"         toml:"topology_file"`
	SupportedVersions   []handshake.VersionNumber `yaml:"supported_versions"    toml:"supported_versions"`
	MaxSupportedVersion *handshake.VersionNumber  `yaml:"max_supported_version" toml:"max_supported_version"`

	// DiffusionMode advertises initiator-and-responder mode when set
	DiffusionMode bool `yaml:"diffusion_mode" toml:"diffusion_mode"`

	// Workers limits how many hosts are pinged at once. Zero means no limit
	Workers int `yaml:"workers" toml:"workers"`

	// Timeout bounds each host. Zero means no timeout
	Timeout  time.Duration `yaml:"timeout"   toml:"timeout"`
	LogLevel string        `yaml:"log_level" toml:"log_level"`

	// DroppedVersions are the supported versions removed by MaxSupportedVersion
	DroppedVersions []handshake.VersionNumber `yaml:"-" toml:"-"`

	// UnknownVersions are the proposed versions we have no feature information about
	UnknownVersions []handshake.VersionNumber `yaml:"-" toml:"-"`

	// Path is the file the config was loaded from
	Path string `yaml:"-" toml:"-"`
}

// FindConfigFile returns the config file to use. An explicit path wins, followed by
// the path in $HANDSHAKE_PING_CONFIG and then the first of DefaultConfigFiles that
// exists in the working directory
func FindConfigFile(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if envPath := os.Getenv(EnvConfigFile); envPath != "" {
		return envPath, nil
	}
	for _, name := range DefaultConfigFiles {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf(
		"%w: tried %s",
		ErrConfigNotFound,
		strings.Join(DefaultConfigFiles, ", "),
	)
}

// Load finds, parses and validates the config file. The path may be empty
func Load(path string) (*Config, error) {
	path, err := FindConfigFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Parse(f, strings.ToLower(filepath.Ext(path)) == ".toml")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	if err := cfg.finalize(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML or TOML config document without validating it. Unknown keys
// are an error
func Parse(r io.Reader, isToml bool) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if isToml {
		meta, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
		}
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// Validate fills in defaults and checks the config. Relative paths are resolved
// against the working directory
func (c *Config) Validate() error {
	return c.finalize(".")
}

func (c *Config) finalize(baseDir string) error {
	if c.TopologyFile != "" {
		topologyPath := c.TopologyFile
		if !filepath.IsAbs(topologyPath) {
			topologyPath = filepath.Join(baseDir, topologyPath)
		}
		topology, err := ping.NewTopologyConfigFromFile(topologyPath)
		if err != nil {
			return fmt.Errorf("load topology: %w", err)
		}
		for _, host := range topology.Hosts() {
			c.Hosts = append(c.Hosts, HostConfig{Host: host})
		}
		c.TopologyFile = ""
	}
	if len(c.Hosts) == 0 {
		return ErrNoHosts
	}
	for idx := range c.Hosts {
		host, err := c.mergeDefaults(c.Hosts[idx])
		if err != nil {
			return fmt.Errorf("hosts[%d]: %w", idx, err)
		}
		if host.Host == "" {
			return fmt.Errorf("hosts[%d]: missing host", idx)
		}
		if _, _, err := net.SplitHostPort(host.Host); err != nil {
			return fmt.Errorf("hosts[%d]: %w", idx, err)
		}
		if host.NetworkId == "" {
			host.NetworkId = ping.NetworkIdByNetworkMagic(host.NetworkMagic)
		}
		c.Hosts[idx] = host
	}
	if len(c.SupportedVersions) == 0 {
		c.SupportedVersions = ping.DefaultProtocolVersions()
	}
	c.filterVersions()
	if len(c.SupportedVersions) == 0 {
		return ErrNoVersions
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers: %d", c.Workers)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout: %s", c.Timeout)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// mergeDefaults returns host with its empty fields taken from the defaults
func (c *Config) mergeDefaults(host HostConfig) (HostConfig, error) {
	merged := c.Defaults
	if err := copier.CopyWithOption(
		&merged,
		&host,
		copier.Option{IgnoreEmpty: true},
	); err != nil {
		return host, err
	}
	return merged, nil
}

func (c *Config) filterVersions() {
	c.DroppedVersions = nil
	c.UnknownVersions = nil
	if c.MaxSupportedVersion != nil {
		maxVersion := *c.MaxSupportedVersion
		kept := make([]handshake.VersionNumber, 0, len(c.SupportedVersions))
		for _, version := range c.SupportedVersions {
			if version > maxVersion {
				c.DroppedVersions = append(c.DroppedVersions, version)
				continue
			}
			kept = append(kept, version)
		}
		c.SupportedVersions = kept
	}
	for _, version := range c.SupportedVersions {
		if !ping.KnownProtocolVersion(version) && !slices.Contains(c.UnknownVersions, version) {
			c.UnknownVersions = append(c.UnknownVersions, version)
		}
	}
}

// PingHosts returns the configured hosts for use with ping.WithHosts
func (c *Config) PingHosts() []ping.Host {
	ret := make([]ping.Host, 0, len(c.Hosts))
	for _, host := range c.Hosts {
		ret = append(
			ret,
			ping.Host{
				Address:      host.Host,
				NetworkMagic: host.NetworkMagic,
				NetworkId:    host.NetworkId,
			},
		)
	}
	return ret
}
