// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"fmt"
	"github.com/simbricks/simbricks-exp/pkg/experiment"
)

// NetCache declares three cache clients and two cache servers connected through the
// cache-specific network topology
func NetCache() (*experiment.Experiment, error) {
	b := newBuilder("netcache", false)

	var clients, servers []*experiment.NIC
	for i := 0; i < 3; i++ {
		clients = append(clients, b.host(fmt.Sprintf("client%d", i), fmt.Sprintf("10.0.0.%d", 5+i),
			indexed(experiment.NetCacheClient, i)))
	}
	for i := 0; i < 2; i++ {
		servers = append(servers, b.host(fmt.Sprintf("server%d", i), fmt.Sprintf("10.0.0.%d", 3+i),
			indexed(experiment.NetCacheServer, i)))
	}
	// Servers join the network ahead of the clients
	nics := append(servers, clients...)

	network := experiment.NewNetwork(experiment.NS3NetCache)
	b.network(network, nics...)

	const ethLatency = 2 * 1000
	network.EthLatency = ethLatency
	for _, nic := range nics {
		if nic != nil {
			nic.EthLatency = ethLatency
		}
	}
	return b.build()
}

// Ping declares a lone HTTP server attached to the HTTP-specific network topology
func Ping() (*experiment.Experiment, error) {
	b := newBuilder("ping", true)

	serverNIC := b.host("server", "10.0.0.2", experiment.NewApp(experiment.HTTPServer))

	network := experiment.NewNetwork(experiment.NS3HTTPNet)
	b.network(network, serverNIC)

	const ethLatency = 500
	network.EthLatency = ethLatency
	if serverNIC != nil {
		serverNIC.EthLatency = ethLatency
	}
	return b.build()
}

// SimplePing declares an HTTP client and an HTTP server connected through a dumbbell topology
// with a slow bottleneck link
func SimplePing() (*experiment.Experiment, error) {
	b := newBuilder("simple_ping", true)

	clientNIC := b.host("client1", "10.0.0.5", experiment.NewApp(experiment.HTTPClient))
	serverNIC := b.host("server", "10.0.0.2", experiment.NewApp(experiment.HTTPServer))

	network := experiment.NewNetwork(experiment.NS3DumbbellNet)
	b.network(network, serverNIC, clientNIC)

	network.EthLatency = 2 * 1000 * 1000
	for _, nic := range []*experiment.NIC{serverNIC, clientNIC} {
		if nic != nil {
			nic.EthLatency = 500
		}
	}
	return b.build()
}
