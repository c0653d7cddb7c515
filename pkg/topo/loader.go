// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package topo

import (
	"fmt"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/simbricks/simbricks-exp/pkg/experiment"
	"gopkg.in/yaml.v3"
	"io"
	"os"
)

const generatedHeader = "# Generated experiment descriptor; edit with care\n"

// LoadExperiment loads the specified YAML file and constructs the prescribed experiment
func LoadExperiment(path string) (*experiment.Experiment, error) {
	log.Infof("Loading experiment from %s", path)
	descriptor := &Descriptor{}
	if err := LoadExperimentFile(path, descriptor); err != nil {
		return nil, err
	}
	log.Debugf("Experiment %s: networks: %d; hosts: %d",
		descriptor.Name, len(descriptor.Networks), len(descriptor.Hosts))
	return ConstructExperiment(descriptor)
}

// LoadExperimentFile loads the specified experiment YAML file
func LoadExperimentFile(path string, descriptor *Descriptor) error {
	cfg, err := readConfig(path)
	if err != nil {
		return err
	}
	return cfg.Unmarshal(descriptor)
}

// ConstructExperiment creates an experiment from the specified descriptor
func ConstructExperiment(d *Descriptor) (*experiment.Experiment, error) {
	e := experiment.NewExperiment(d.Name)
	e.Checkpoint = d.Checkpoint

	networks := make(map[string]*experiment.Network)
	for _, nd := range d.Networks {
		network := ConstructNetwork(nd)
		if err := e.AddNetwork(network); err != nil {
			return nil, err
		}
		if _, ok := networks[network.Name]; ok {
			return nil, errors.NewInvalid("Duplicate network %s", network.Name)
		}
		networks[network.Name] = network
	}

	for _, hd := range d.Hosts {
		host, err := ConstructHost(hd)
		if err != nil {
			return nil, err
		}
		if err := e.AddHost(host); err != nil {
			return nil, err
		}
		for _, ndesc := range hd.NICs {
			nic := ConstructNIC(ndesc)
			if err := e.AddNIC(nic); err != nil {
				return nil, err
			}
			if err := host.AddNIC(nic); err != nil {
				return nil, err
			}
			network, err := findNetwork(ndesc.Network, e)
			if err != nil {
				return nil, errors.NewInvalid("Host %s: %s", host.Name, err.Error())
			}
			if err := nic.SetNetwork(network); err != nil {
				return nil, err
			}
		}
	}
	return e, nil
}

// Returns the named network; the sole network if no name is given
func findNetwork(name string, e *experiment.Experiment) (*experiment.Network, error) {
	if name != "" {
		return e.Network(name)
	}
	networks := e.Networks()
	if len(networks) != 1 {
		return nil, errors.NewInvalid("NIC network must be named when experiment has %d networks", len(networks))
	}
	return networks[0], nil
}

// ConstructNetwork creates a network simulator from the specified network YAML descriptor
func ConstructNetwork(nd Network) *experiment.Network {
	network := experiment.NewNetwork(experiment.NetworkKind(nd.Kind))
	network.Name = nd.Name
	network.EthLatency = latencyOrDefault(nd.EthLatency, network.EthLatency)
	network.SyncPeriod = latencyOrDefault(nd.SyncPeriod, network.SyncPeriod)
	return network
}

// ConstructHost creates a host simulator, without NICs, from the specified host YAML descriptor
func ConstructHost(hd Host) (*experiment.Host, error) {
	config := experiment.NewNodeConfig(experiment.NodeKind(hd.Node.Kind))
	config.IP = hd.Node.IP
	if hd.Node.Prefix != nil {
		if *hd.Node.Prefix < 0 {
			return nil, errors.NewInvalid("Host %s: negative prefix %d", hd.Name, *hd.Node.Prefix)
		}
		config.Prefix = *hd.Node.Prefix
	}
	config.Cores = defaultCount(hd.Node.Cores, config.Cores)
	config.Memory = defaultCount(hd.Node.Memory, config.Memory)
	config.MTU = defaultCount(hd.Node.MTU, config.MTU)
	if hd.Node.DiskImage != "" {
		config.DiskImage = hd.Node.DiskImage
	}
	if hd.Node.App.Role != "" {
		config.App = &experiment.App{
			Role:   experiment.AppRole(hd.Node.App.Role),
			NodeID: hd.Node.App.NodeID,
			Target: hd.Node.App.Target,
		}
	}

	kind := experiment.QemuHost
	if hd.Kind != "" {
		kind = experiment.HostKind(hd.Kind)
	}
	host := experiment.NewHost(kind, config)
	host.Name = hd.Name
	host.Sync = hd.Sync
	host.Wait = hd.Wait
	return host, nil
}

// ConstructNIC creates a NIC simulator from the specified NIC YAML descriptor
func ConstructNIC(nd NIC) *experiment.NIC {
	kind := experiment.I40eNIC
	if nd.Kind != "" {
		kind = experiment.NICKind(nd.Kind)
	}
	nic := experiment.NewNIC(kind)
	nic.MAC = nd.MAC
	nic.EthLatency = latencyOrDefault(nd.EthLatency, nic.EthLatency)
	nic.PCILatency = latencyOrDefault(nd.PCILatency, nic.PCILatency)
	nic.SyncPeriod = latencyOrDefault(nd.SyncPeriod, nic.SyncPeriod)
	return nic
}

// DescribeExperiment creates a YAML descriptor from the specified experiment
func DescribeExperiment(e *experiment.Experiment) *Descriptor {
	d := &Descriptor{
		Name:       e.Name,
		Checkpoint: e.Checkpoint,
	}
	for _, network := range e.Networks() {
		d.Networks = append(d.Networks, Network{
			Name:       network.Name,
			Kind:       string(network.Kind),
			EthLatency: latency(network.EthLatency),
			SyncPeriod: latency(network.SyncPeriod),
		})
	}
	for _, host := range e.Hosts() {
		hd := Host{
			Name: host.Name,
			Kind: string(host.Kind),
			Sync: host.Sync,
			Wait: host.Wait,
		}
		if c := host.Config; c != nil {
			prefix := c.Prefix
			hd.Node = Node{
				Kind:      string(c.Kind),
				IP:        c.IP,
				Prefix:    &prefix,
				Cores:     c.Cores,
				Memory:    c.Memory,
				MTU:       c.MTU,
				DiskImage: c.DiskImage,
			}
			if c.App != nil {
				hd.Node.App = App{Role: string(c.App.Role), NodeID: c.App.NodeID, Target: c.App.Target}
			}
		}
		for _, nic := range host.NICs() {
			nd := NIC{
				Kind:       string(nic.Kind),
				MAC:        nic.MAC,
				EthLatency: latency(nic.EthLatency),
				PCILatency: latency(nic.PCILatency),
				SyncPeriod: latency(nic.SyncPeriod),
			}
			if nic.Network() != nil {
				nd.Network = nic.Network().Name
			}
			hd.NICs = append(hd.NICs, nd)
		}
		d.Hosts = append(d.Hosts, hd)
	}
	return d
}

// SaveExperimentFile saves the given descriptor as YAML in the specified file path; stdout if -
func SaveExperimentFile(d *Descriptor, path string) error {
	if path == "-" {
		return WriteExperiment(d, os.Stdout)
	}
	output, err := os.Create(path)
	if err != nil {
		return err
	}
	defer output.Close()
	return WriteExperiment(d, output)
}

// WriteExperiment writes the given descriptor as YAML, preceded by the generated header comment
func WriteExperiment(d *Descriptor, w io.Writer) error {
	buffer, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	if _, err = fmt.Fprint(w, generatedHeader); err != nil {
		return err
	}
	_, err = w.Write(buffer)
	return err
}

func latency(l experiment.Latency) *int64 {
	v := int64(l)
	return &v
}

func latencyOrDefault(l *int64, def experiment.Latency) experiment.Latency {
	if l == nil {
		return def
	}
	return experiment.Latency(*l)
}
