// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package catalog declares the built-in co-simulation experiments
package catalog

import (
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/simbricks/simbricks-exp/pkg/experiment"
)

var log = logging.GetLogger("catalog")

// Constructor builds a single experiment
type Constructor func() (*experiment.Experiment, error)

// Built-in experiments in declaration order
var constructors = []Constructor{NetCache, Ping, SimplePing}

// Experiments builds all built-in experiments
func Experiments() ([]*experiment.Experiment, error) {
	experiments := make([]*experiment.Experiment, 0, len(constructors))
	for _, construct := range constructors {
		e, err := construct()
		if err != nil {
			return nil, err
		}
		experiments = append(experiments, e)
	}
	return experiments, nil
}

// Register builds all built-in experiments and registers them with the given registry
func Register(registry *experiment.Registry) error {
	experiments, err := Experiments()
	if err != nil {
		return err
	}
	for _, e := range experiments {
		if err := registry.Register(e); err != nil {
			return err
		}
	}
	log.Debugf("Registered %d built-in experiments", len(experiments))
	return nil
}

// State to assist declaring experiment topologies
type builder struct {
	exp *experiment.Experiment
	err error
}

func newBuilder(name string, checkpoint bool) *builder {
	e := experiment.NewExperiment(name)
	e.Checkpoint = checkpoint
	return &builder{exp: e}
}

// Creates a synchronized qemu host booting Linux with the i40e driver and attaches an i40e NIC to it
func (b *builder) host(name string, ip string, app *experiment.App) *experiment.NIC {
	if b.err != nil {
		return nil
	}
	config := experiment.NewNodeConfig(experiment.I40eLinuxNode)
	config.IP = ip
	config.App = app
	host := experiment.NewHost(experiment.QemuHost, config)
	host.Sync = true
	host.Name = name
	host.Wait = true
	if b.err = b.exp.AddHost(host); b.err != nil {
		return nil
	}
	nic := experiment.NewNIC(experiment.I40eNIC)
	if b.err = b.exp.AddNIC(nic); b.err != nil {
		return nil
	}
	if b.err = host.AddNIC(nic); b.err != nil {
		return nil
	}
	return nic
}

// Registers the network and connects the given NICs to it
func (b *builder) network(network *experiment.Network, nics ...*experiment.NIC) {
	if b.err != nil {
		return
	}
	if b.err = b.exp.AddNetwork(network); b.err != nil {
		return
	}
	for _, nic := range nics {
		if b.err = nic.SetNetwork(network); b.err != nil {
			return
		}
	}
}

func (b *builder) build() (*experiment.Experiment, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.exp, nil
}

func indexed(role experiment.AppRole, id int) *experiment.App {
	return &experiment.App{Role: role, NodeID: id}
}
