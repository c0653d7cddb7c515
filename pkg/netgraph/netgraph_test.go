// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package netgraph

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/simbricks/simbricks-exp/pkg/catalog"
	"github.com/simbricks/simbricks-exp/pkg/experiment"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestSimplePingLatency(t *testing.T) {
	e, err := catalog.SimplePing()
	assert.NoError(t, err)
	g, err := Build(e)
	assert.NoError(t, err)

	latency, hops, err := g.Latency("client1", "server")
	assert.NoError(t, err)
	assert.Equal(t, experiment.Latency(500+500+2000000+500), latency)
	assert.Equal(t, []string{"host client1", "nic client1.nic0", "network net0", "nic server.nic0", "host server"}, hops)

	_, _, err = g.Latency("client1", "nobody")
	assert.True(t, errors.IsNotFound(err))
	_, _, err = g.Latency("nobody", "server")
	assert.True(t, errors.IsNotFound(err))

	mismatches := g.LatencyMismatches()
	assert.Len(t, mismatches, 2)
	assert.Equal(t, "client1.nic0->net0: 500, net0->client1.nic0: 2000000", mismatches[0].String())
}

func TestNetCacheReport(t *testing.T) {
	e, err := catalog.NetCache()
	assert.NoError(t, err)
	g, err := Build(e)
	assert.NoError(t, err)

	report := g.Report()
	assert.Equal(t, "netcache", report.Experiment)
	assert.Len(t, report.Latencies, 5*4)
	assert.Empty(t, report.Unreachable)
	assert.Empty(t, report.Mismatches)
	for _, latency := range report.Latencies {
		assert.Equal(t, experiment.Latency(500+2000+2000+500), latency)
	}
}

func TestUnreachable(t *testing.T) {
	e := experiment.NewExperiment("split")
	for i, ip := range []string{"10.0.0.1", "10.0.1.1"} {
		network := experiment.NewNetwork(experiment.NS3BridgeNet)
		assert.NoError(t, e.AddNetwork(network))
		config := experiment.NewNodeConfig(experiment.I40eLinuxNode)
		config.IP = ip
		host := experiment.NewHost(experiment.QemuHost, config)
		host.Name = []string{"left", "right"}[i]
		assert.NoError(t, e.AddHost(host))
		nic := experiment.NewNIC(experiment.I40eNIC)
		assert.NoError(t, e.AddNIC(nic))
		assert.NoError(t, host.AddNIC(nic))
		assert.NoError(t, nic.SetNetwork(network))
	}

	g, err := Build(e)
	assert.NoError(t, err)
	assert.Equal(t, []Pair{{Src: "left", Dst: "right"}, {Src: "right", Dst: "left"}}, g.Unreachable())
	_, _, err = g.Latency("left", "right")
	assert.True(t, errors.IsNotFound(err))

	report := g.Report()
	assert.Empty(t, report.Latencies)
	assert.Len(t, report.Unreachable, 2)
}

func TestBuildInvalid(t *testing.T) {
	e, err := catalog.Ping()
	assert.NoError(t, err)
	e.NICs()[0].EthLatency = -1
	_, err = Build(e)
	assert.True(t, errors.IsInvalid(err))
}

func TestMultiHomedHostDoesNotForward(t *testing.T) {
	e := experiment.NewExperiment("routed")
	net0 := experiment.NewNetwork(experiment.NS3BridgeNet)
	net1 := experiment.NewNetwork(experiment.NS3BridgeNet)
	assert.NoError(t, e.AddNetwork(net0))
	assert.NoError(t, e.AddNetwork(net1))

	addHost := func(name string, ip string, networks ...*experiment.Network) {
		config := experiment.NewNodeConfig(experiment.I40eLinuxNode)
		config.IP = ip
		host := experiment.NewHost(experiment.QemuHost, config)
		host.Name = name
		assert.NoError(t, e.AddHost(host))
		for _, network := range networks {
			nic := experiment.NewNIC(experiment.I40eNIC)
			assert.NoError(t, e.AddNIC(nic))
			assert.NoError(t, host.AddNIC(nic))
			assert.NoError(t, nic.SetNetwork(network))
		}
	}
	addHost("a", "10.0.0.1", net0)
	addHost("router", "10.0.0.2", net0, net1)
	addHost("b", "10.0.1.1", net1)

	g, err := Build(e)
	assert.NoError(t, err)

	_, _, err = g.Latency("a", "b")
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, []Pair{{Src: "a", Dst: "b"}, {Src: "b", Dst: "a"}}, g.Unreachable())

	latency, hops, err := g.Latency("a", "router")
	assert.NoError(t, err)
	assert.Equal(t, experiment.Latency(2000), latency)
	assert.Equal(t, []string{"host a", "nic a.nic0", "network net0", "nic router.nic0", "host router"}, hops)

	latency, hops, err = g.Latency("router", "b")
	assert.NoError(t, err)
	assert.Equal(t, experiment.Latency(2000), latency)
	assert.Equal(t, "nic router.nic1", hops[1])
}
