// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package topo

import (
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/spf13/viper"
	"os"
)

var log = logging.GetLogger("topo")

// Descriptor is a description of a co-simulation experiment
type Descriptor struct {
	Name       string    `mapstructure:"name" yaml:"name"`
	Checkpoint bool      `mapstructure:"checkpoint" yaml:"checkpoint"`
	Networks   []Network `mapstructure:"networks" yaml:"networks"`
	Hosts      []Host    `mapstructure:"hosts" yaml:"hosts"`
}

// Network is a description of a simulated network
type Network struct {
	Name       string `mapstructure:"name" yaml:"name"`
	Kind       string `mapstructure:"kind" yaml:"kind"`
	EthLatency *int64 `mapstructure:"eth_latency" yaml:"eth_latency,omitempty"`
	SyncPeriod *int64 `mapstructure:"sync_period" yaml:"sync_period,omitempty"`
}

// Host is a description of a simulated host
type Host struct {
	Name string `mapstructure:"name" yaml:"name"`
	Kind string `mapstructure:"kind" yaml:"kind,omitempty"`
	Sync bool   `mapstructure:"sync" yaml:"sync"`
	Wait bool   `mapstructure:"wait" yaml:"wait"`
	Node Node   `mapstructure:"node" yaml:"node"`
	NICs []NIC  `mapstructure:"nics" yaml:"nics"`
}

// Node is a description of a simulated host's OS, driver and network configuration
type Node struct {
	Kind      string `mapstructure:"kind" yaml:"kind"`
	IP        string `mapstructure:"ip" yaml:"ip"`
	Prefix    *int   `mapstructure:"prefix" yaml:"prefix,omitempty"`
	Cores     int    `mapstructure:"cores" yaml:"cores,omitempty"`
	Memory    int    `mapstructure:"memory" yaml:"memory,omitempty"`
	MTU       int    `mapstructure:"mtu" yaml:"mtu,omitempty"`
	DiskImage string `mapstructure:"disk_image" yaml:"disk_image,omitempty"`
	App       App    `mapstructure:"app" yaml:"app"`
}

// App is a description of the application run by a simulated host
type App struct {
	Role   string `mapstructure:"role" yaml:"role"`
	NodeID int    `mapstructure:"node_id" yaml:"node_id,omitempty"`
	Target string `mapstructure:"target" yaml:"target,omitempty"`
}

// NIC is a description of a simulated NIC
type NIC struct {
	Kind       string `mapstructure:"kind" yaml:"kind"`
	MAC        string `mapstructure:"mac" yaml:"mac,omitempty"`
	Network    string `mapstructure:"network" yaml:"network,omitempty"`
	EthLatency *int64 `mapstructure:"eth_latency" yaml:"eth_latency,omitempty"`
	PCILatency *int64 `mapstructure:"pci_latency" yaml:"pci_latency,omitempty"`
	SyncPeriod *int64 `mapstructure:"sync_period" yaml:"sync_period,omitempty"`
}

// Reads configuration from the specified path (- for stdin) via viper; ready to Unmarshal
func readConfig(path string) (*viper.Viper, error) {
	cfg := viper.New()
	cfg.SetConfigType("yaml")
	if path == "-" {
		if err := cfg.ReadConfig(os.Stdin); err != nil {
			return cfg, err
		}
	} else {
		cfg.SetConfigFile(path)
		if err := cfg.ReadInConfig(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}
