// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package topo

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/simbricks/simbricks-exp/pkg/experiment"
	"github.com/stretchr/testify/assert"
	"path/filepath"
	"testing"
)

func TestLoadExperimentFile(t *testing.T) {
	d := &Descriptor{}
	err := LoadExperimentFile("../../experiments/simple_ping.yaml", d)
	assert.NoError(t, err)
	assert.Equal(t, "simple_ping", d.Name)
	assert.True(t, d.Checkpoint)
	assert.Len(t, d.Networks, 1)
	assert.Len(t, d.Hosts, 2)
	assert.Equal(t, int64(2000000), *d.Networks[0].EthLatency)
	assert.Nil(t, d.Networks[0].SyncPeriod)
	assert.Equal(t, "http_client", d.Hosts[0].Node.App.Role)
	assert.Equal(t, "dumbbell", d.Hosts[0].NICs[0].Network)
	assert.Equal(t, "", d.Hosts[1].NICs[0].Network)
}

func TestLoadExperiment(t *testing.T) {
	e, err := LoadExperiment("../../experiments/simple_ping.yaml")
	assert.NoError(t, err)
	assert.NoError(t, e.Validate())

	network, err := e.Network("dumbbell")
	assert.NoError(t, err)
	assert.Equal(t, experiment.NS3DumbbellNet, network.Kind)
	assert.Equal(t, experiment.Latency(2000000), network.EthLatency)
	assert.Equal(t, experiment.DefaultLatency, network.SyncPeriod)
	assert.Len(t, network.NICs(), 2)

	server, err := e.Host("server")
	assert.NoError(t, err)
	assert.Equal(t, experiment.QemuHost, server.Kind)
	assert.Equal(t, experiment.DefaultPrefix, server.Config.Prefix)
	assert.Equal(t, experiment.DefaultMemory, server.Config.Memory)
	assert.Equal(t, experiment.Latency(500), server.NICs()[0].EthLatency)
	assert.Equal(t, experiment.DefaultLatency, server.NICs()[0].PCILatency)
	assert.Equal(t, network, server.NICs()[0].Network())

	_, err = LoadExperiment("../../experiments/missing.yaml")
	assert.Error(t, err)
}

func TestLoadBrokenExperiment(t *testing.T) {
	e, err := LoadExperiment("../../experiments/broken.yaml")
	assert.NoError(t, err)
	assert.True(t, errors.IsInvalid(e.Validate()))
}

func TestConstructExperimentNetworkResolution(t *testing.T) {
	d := &Descriptor{
		Name: "two-nets",
		Networks: []Network{
			{Name: "a", Kind: string(experiment.NS3BridgeNet)},
			{Name: "b", Kind: string(experiment.NS3BridgeNet)},
		},
		Hosts: []Host{{
			Name: "h",
			Node: Node{Kind: string(experiment.I40eLinuxNode), IP: "10.0.0.1"},
			NICs: []NIC{{Kind: string(experiment.I40eNIC)}},
		}},
	}
	_, err := ConstructExperiment(d)
	assert.True(t, errors.IsInvalid(err))

	d.Hosts[0].NICs[0].Network = "c"
	_, err = ConstructExperiment(d)
	assert.True(t, errors.IsInvalid(err))

	d.Hosts[0].NICs[0].Network = "b"
	e, err := ConstructExperiment(d)
	assert.NoError(t, err)
	assert.NoError(t, e.Validate())
	assert.Equal(t, experiment.IdleApp, e.Hosts()[0].Config.App.Role)

	d.Networks[1].Name = "a"
	_, err = ConstructExperiment(d)
	assert.True(t, errors.IsInvalid(err))
}

func TestDescribeExperimentRoundTrip(t *testing.T) {
	saved, err := LoadExperiment("../../experiments/simple_ping.yaml")
	assert.NoError(t, err)
	saved.Hosts()[0].NICs()[0].MAC = "02:00:00:00:00:01"

	path := filepath.Join(t.TempDir(), "copy.yaml")
	assert.NoError(t, SaveExperimentFile(DescribeExperiment(saved), path))

	copied, err := LoadExperiment(path)
	assert.NoError(t, err)
	assert.NoError(t, copied.Validate())
	assert.Equal(t, saved.Name, copied.Name)
	assert.Equal(t, saved.Checkpoint, copied.Checkpoint)
	assert.Len(t, copied.Hosts(), len(saved.Hosts()))
	for i, h := range copied.Hosts() {
		o := saved.Hosts()[i]
		assert.Equal(t, o.Name, h.Name)
		assert.Equal(t, o.Config.IP, h.Config.IP)
		assert.Equal(t, o.Config.App.Role, h.Config.App.Role)
		assert.Equal(t, o.NICs()[0].EthLatency, h.NICs()[0].EthLatency)
		assert.Equal(t, o.NICs()[0].MAC, h.NICs()[0].MAC)
		assert.Equal(t, o.NICs()[0].Network().Name, h.NICs()[0].Network().Name)
	}
}

func TestDescribeExperimentPrefixRoundTrip(t *testing.T) {
	saved, err := LoadExperiment("../../experiments/simple_ping.yaml")
	assert.NoError(t, err)
	saved.Hosts()[0].Config.Prefix = 0
	saved.Hosts()[1].Config.Prefix = 16

	path := filepath.Join(t.TempDir(), "prefix.yaml")
	assert.NoError(t, SaveExperimentFile(DescribeExperiment(saved), path))

	d := &Descriptor{}
	assert.NoError(t, LoadExperimentFile(path, d))
	assert.NotNil(t, d.Hosts[0].Node.Prefix)
	assert.Equal(t, 0, *d.Hosts[0].Node.Prefix)

	copied, err := LoadExperiment(path)
	assert.NoError(t, err)
	assert.NoError(t, copied.Validate())
	assert.Equal(t, 0, copied.Hosts()[0].Config.Prefix)
	assert.Equal(t, 16, copied.Hosts()[1].Config.Prefix)
}

func TestConstructHostPrefix(t *testing.T) {
	hd := Host{Name: "h", Node: Node{Kind: string(experiment.I40eLinuxNode), IP: "10.0.0.1"}}
	host, err := ConstructHost(hd)
	assert.NoError(t, err)
	assert.Equal(t, experiment.DefaultPrefix, host.Config.Prefix)

	prefix := 0
	hd.Node.Prefix = &prefix
	host, err = ConstructHost(hd)
	assert.NoError(t, err)
	assert.Equal(t, 0, host.Config.Prefix)

	prefix = -8
	_, err = ConstructHost(hd)
	assert.True(t, errors.IsInvalid(err))

	_, err = ConstructExperiment(&Descriptor{Name: "negative", Hosts: []Host{hd}})
	assert.True(t, errors.IsInvalid(err))
}
