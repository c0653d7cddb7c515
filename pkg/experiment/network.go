// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"fmt"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"golang.org/x/exp/slices"
)

// NICKind identifies the NIC device model
type NICKind string

// Supported NIC kinds
const (
	I40eNIC       NICKind = "i40e"
	E1000NIC      NICKind = "e1000"
	CorundumBMNIC NICKind = "corundum_bm"
)

var nicKinds = []NICKind{I40eNIC, E1000NIC, CorundumBMNIC}

// Valid returns true if the NIC kind is a supported one
func (k NICKind) Valid() bool {
	return slices.Contains(nicKinds, k)
}

// NetworkKind identifies the interconnect topology variant modelled by a network simulator
type NetworkKind string

// Supported network kinds
const (
	NS3BridgeNet   NetworkKind = "ns3_bridge"
	NS3DumbbellNet NetworkKind = "ns3_dumbbell"
	NS3NetCache    NetworkKind = "ns3_netcache"
	NS3HTTPNet     NetworkKind = "ns3_http"
	NS3Pegasus     NetworkKind = "ns3_pegasus"
	SwitchNet      NetworkKind = "switch"
)

var networkKinds = []NetworkKind{NS3BridgeNet, NS3DumbbellNet, NS3NetCache, NS3HTTPNet, NS3Pegasus, SwitchNet}

// Valid returns true if the network kind is a supported one
func (k NetworkKind) Valid() bool {
	return slices.Contains(networkKinds, k)
}

// NIC is a simulated network interface attached to a host and a network
type NIC struct {
	Kind NICKind
	// MAC is assigned when the experiment is materialized unless given
	MAC        string
	EthLatency Latency
	PCILatency Latency
	SyncPeriod Latency

	sealed  bool
	host    *Host
	index   int
	network *Network
}

// NewNIC creates a NIC simulator of the given kind with default latencies
func NewNIC(kind NICKind) *NIC {
	return &NIC{
		Kind:       kind,
		EthLatency: DefaultLatency,
		PCILatency: DefaultLatency,
		SyncPeriod: DefaultLatency,
	}
}

// Name returns the name of the NIC derived from its host
func (n *NIC) Name() string {
	if n.host == nil {
		return fmt.Sprintf("%s.detached", n.Kind)
	}
	return fmt.Sprintf("%s.nic%d", n.host.Name, n.index)
}

// Host returns the host the NIC is attached to; nil if none
func (n *NIC) Host() *Host {
	return n.host
}

// Network returns the network the NIC is attached to; nil if none
func (n *NIC) Network() *Network {
	return n.network
}

// SetNetwork attaches the NIC to the given network, detaching it from any previous one
func (n *NIC) SetNetwork(network *Network) error {
	if network == nil {
		return errors.NewInvalid("NIC %s: network must not be nil", n.Name())
	}
	if n.sealed {
		return errors.NewForbidden("NIC %s is sealed", n.Name())
	}
	if n.network == network {
		return nil
	}
	if network.sealed {
		return errors.NewForbidden("Network %s is sealed", network.Name)
	}
	if n.network != nil && n.network.sealed {
		return errors.NewForbidden("Network %s is sealed", n.network.Name)
	}
	if n.network != nil {
		n.network.detach(n)
	}
	n.network = network
	network.nics = append(network.nics, n)
	return nil
}

// Network is a network simulator modelling link behavior between the attached NICs
type Network struct {
	Name       string
	Kind       NetworkKind
	EthLatency Latency
	SyncPeriod Latency

	sealed bool
	nics   []*NIC
}

// NewNetwork creates a network simulator of the given kind with default latencies
func NewNetwork(kind NetworkKind) *Network {
	return &Network{
		Kind:       kind,
		EthLatency: DefaultLatency,
		SyncPeriod: DefaultLatency,
	}
}

// NICs returns the NICs attached to the network in attachment order
func (n *Network) NICs() []*NIC {
	return append([]*NIC(nil), n.nics...)
}

func (n *Network) detach(nic *NIC) {
	for i, a := range n.nics {
		if a == nic {
			n.nics = append(n.nics[:i], n.nics[i+1:]...)
			return
		}
	}
}

func defaultNetworkName(index int) string {
	return fmt.Sprintf("net%d", index)
}
