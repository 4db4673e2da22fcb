// Package config defines the configuration model for a provisioning
// run: the node defaults loaded from the YAML config file and the
// storage requirement manifest supplied alongside it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the node-level defaults the wizard pre-fills its
// prompts with. Every field has a built-in default so the tool works
// without a config file.
type Config struct {
	// NASPrefix is the naming prefix shared storage pools follow:
	// <nas_prefix>-<index>-<role>.
	NASPrefix string `yaml:"nas_prefix"`

	// Bridge is the network bridge containers attach to.
	Bridge string `yaml:"bridge"`

	// Template is the OS template volid passed to the create command.
	Template string `yaml:"template"`

	// DefaultHostname pre-fills the hostname prompt.
	DefaultHostname string `yaml:"default_hostname"`

	// DefaultIPv4 pre-fills the address prompt and anchors the
	// expected VLAN tag (third octet) unless ExpectedVLAN is set.
	DefaultIPv4 string `yaml:"default_ipv4"`

	// CIDRBits is the prefix length applied to the container address.
	CIDRBits int `yaml:"cidr_bits"`

	// ExpectedVLAN overrides the VLAN tag derived from DefaultIPv4.
	ExpectedVLAN int `yaml:"expected_vlan"`

	// DefaultDiskGiB and DefaultMemoryMiB pre-fill the sizing prompts.
	DefaultDiskGiB   int `yaml:"default_disk_gib"`
	DefaultMemoryMiB int `yaml:"default_memory_mib"`

	// DefaultRootfsPool is preselected in the root filesystem pool
	// prompt when present and active.
	DefaultRootfsPool string `yaml:"default_rootfs_pool"`

	// ManifestPath locates the storage requirement manifest.
	ManifestPath string `yaml:"manifest"`

	// ScratchDir is the parent directory for per-run scratch
	// directories. Empty means the system temp dir.
	ScratchDir string `yaml:"scratch_dir"`

	// ExcludedPools are platform-owned pools never offered for bind
	// mounts or auto-detection.
	ExcludedPools []string `yaml:"excluded_pools"`

	// Unprivileged requests an unprivileged container.
	Unprivileged bool `yaml:"unprivileged"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		NASPrefix:        "nas",
		Bridge:           "vmbr0",
		Template:         "local:vztmpl/debian-12-standard_12.7-1_amd64.tar.zst",
		DefaultHostname:  "media",
		DefaultIPv4:      "192.168.1.50",
		CIDRBits:         24,
		DefaultDiskGiB:   8,
		DefaultMemoryMiB: 2048,

		DefaultRootfsPool: "local-lvm",
		ManifestPath:     "/etc/ctforge/mounts.conf",
		ExcludedPools:    []string{"local", "local-lvm", "local-zfs"},
		Unprivileged:     true,
	}
}

// LoadFile reads the YAML config file, layering it over the built-in
// defaults. Unknown keys are rejected so typos surface immediately.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty file means "all defaults"; the decoder reports it as EOF.
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Load returns LoadFile(path) when path is non-empty and the built-in
// defaults otherwise.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.CIDRBits < 1 || c.CIDRBits > 32 {
		return fmt.Errorf("cidr_bits must be in 1..32, got %d", c.CIDRBits)
	}
	if c.ExpectedVLAN < 0 || c.ExpectedVLAN > 4094 {
		return fmt.Errorf("expected_vlan must be in 0..4094, got %d", c.ExpectedVLAN)
	}
	if c.DefaultDiskGiB < 1 {
		return fmt.Errorf("default_disk_gib must be positive, got %d", c.DefaultDiskGiB)
	}
	if c.DefaultMemoryMiB < 16 {
		return fmt.Errorf("default_memory_mib must be at least 16, got %d", c.DefaultMemoryMiB)
	}
	if c.Bridge == "" {
		return fmt.Errorf("bridge is required")
	}
	if c.Template == "" {
		return fmt.Errorf("template is required")
	}
	return nil
}

// ExpectedVLANTag resolves the VLAN tag the node expects: the
// configured override when set, otherwise the third octet of the
// default address, with 0 resolving to the untagged default 1.
func (c *Config) ExpectedVLANTag() int {
	if c.ExpectedVLAN > 0 {
		return c.ExpectedVLAN
	}
	octets := strings.Split(c.DefaultIPv4, ".")
	if len(octets) == 4 {
		if tag, err := strconv.Atoi(octets[2]); err == nil && tag > 0 {
			return tag
		}
	}
	return 1
}

// PoolExcluded reports whether a pool belongs to the platform's
// local/default set and must be skipped during mount negotiation.
func (c *Config) PoolExcluded(name string) bool {
	for _, p := range c.ExcludedPools {
		if p == name {
			return true
		}
	}
	return false
}
