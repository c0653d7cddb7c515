// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"golang.org/x/exp/slices"
)

// NodeKind identifies the guest OS image and NIC driver booted on a simulated host
type NodeKind string

// Supported node kinds
const (
	I40eLinuxNode     NodeKind = "i40e_linux"
	E1000LinuxNode    NodeKind = "e1000_linux"
	CorundumLinuxNode NodeKind = "corundum_linux"
)

var nodeKinds = []NodeKind{I40eLinuxNode, E1000LinuxNode, CorundumLinuxNode}

// Valid returns true if the node kind is a supported one
func (k NodeKind) Valid() bool {
	return slices.Contains(nodeKinds, k)
}

// AppRole identifies the workload a simulated host runs
type AppRole string

// Supported application roles
const (
	IdleApp        AppRole = "idle"
	NetCacheClient AppRole = "netcache_client"
	NetCacheServer AppRole = "netcache_server"
	PegasusClient  AppRole = "pegasus_client"
	PegasusServer  AppRole = "pegasus_server"
	HTTPClient     AppRole = "http_client"
	HTTPServer     AppRole = "http_server"
	PingClient     AppRole = "ping_client"
)

var appRoles = []AppRole{IdleApp, NetCacheClient, NetCacheServer, PegasusClient, PegasusServer,
	HTTPClient, HTTPServer, PingClient}

// Valid returns true if the application role is a supported one
func (r AppRole) Valid() bool {
	return slices.Contains(appRoles, r)
}

// HostKind identifies the simulator used to run a host
type HostKind string

// QemuHost is the VM-based host simulator
const QemuHost HostKind = "qemu"

// Valid returns true if the host kind is a supported one
func (k HostKind) Valid() bool {
	return k == QemuHost
}

// Node configuration defaults
const (
	DefaultPrefix    = 24
	DefaultCores     = 1
	DefaultMemory    = 512
	DefaultMTU       = 1500
	DefaultDiskImage = "base"
)

// App is a description of the application a host runs
type App struct {
	Role AppRole
	// NodeID is the peer index of distributed cache clients and servers
	NodeID int
	// Target is the IP address pinged by a ping client
	Target string
}

// NewApp creates an application descriptor for the given role
func NewApp(role AppRole) *App {
	return &App{Role: role}
}

// IsServer returns true if the role serves requests from clients
func (a *App) IsServer() bool {
	switch a.Role {
	case NetCacheServer, PegasusServer, HTTPServer:
		return true
	}
	return false
}

// IsIndexed returns true if the role carries a node index
func (a *App) IsIndexed() bool {
	switch a.Role {
	case NetCacheClient, NetCacheServer, PegasusClient, PegasusServer:
		return true
	}
	return false
}

// NodeConfig is the configuration of a simulated host: OS and driver selection, static IP and application
type NodeConfig struct {
	Kind      NodeKind
	IP        string
	Prefix    int
	Cores     int
	Memory    int
	MTU       int
	DiskImage string
	App       *App
}

// NewNodeConfig creates a node configuration of the given kind with default settings
func NewNodeConfig(kind NodeKind) *NodeConfig {
	return &NodeConfig{
		Kind:      kind,
		Prefix:    DefaultPrefix,
		Cores:     DefaultCores,
		Memory:    DefaultMemory,
		MTU:       DefaultMTU,
		DiskImage: DefaultDiskImage,
		App:       NewApp(IdleApp),
	}
}

func (c *NodeConfig) clone() *NodeConfig {
	if c == nil {
		return nil
	}
	cc := *c
	if c.App != nil {
		app := *c.App
		cc.App = &app
	}
	return &cc
}

// Host is a simulated machine running a guest OS and an application
type Host struct {
	Name   string
	Kind   HostKind
	Config *NodeConfig
	// Sync enables synchronization with the peer simulators
	Sync bool
	// Wait makes the runner wait for this host to finish
	Wait bool

	sealed bool
	nics   []*NIC
}

// NewHost creates a new host simulator for the given node configuration
func NewHost(kind HostKind, config *NodeConfig) *Host {
	return &Host{Kind: kind, Config: config}
}

// AddNIC attaches the specified NIC to the host
func (h *Host) AddNIC(nic *NIC) error {
	if h.sealed {
		return errors.NewForbidden("Host %s is sealed", h.Name)
	}
	if nic.host != nil {
		return errors.NewInvalid("NIC %s already attached to host %s", nic.Name(), nic.host.Name)
	}
	nic.host = h
	nic.index = len(h.nics)
	h.nics = append(h.nics, nic)
	return nil
}

// NICs returns the NICs attached to the host in attachment order
func (h *Host) NICs() []*NIC {
	return append([]*NIC(nil), h.nics...)
}
