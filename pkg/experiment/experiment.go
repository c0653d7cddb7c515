// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package experiment contains the model of a co-simulation experiment: simulated hosts,
// their NICs and the network simulators interconnecting them.
package experiment

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"sync"
)

var log = logging.GetLogger("experiment")

// Latency is a duration expressed in simulated nanoseconds
type Latency int64

// DefaultLatency is the link, PCI and synchronization latency used unless overridden
const DefaultLatency Latency = 500

// Experiment is a named, runnable description of a simulated topology and its workloads
type Experiment struct {
	Name       string
	Checkpoint bool

	lock     sync.RWMutex
	sealed   bool
	hosts    []*Host
	nics     []*NIC
	networks []*Network
}

// NewExperiment creates a new empty experiment with the given name
func NewExperiment(name string) *Experiment {
	return &Experiment{Name: name}
}

// AddHost registers the specified host simulator with the experiment
func (e *Experiment) AddHost(host *Host) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if err := e.checkMutable(); err != nil {
		return err
	}
	for _, h := range e.hosts {
		if h == host {
			return errors.NewAlreadyExists("Host %s already added to experiment %s", host.Name, e.Name)
		}
	}
	e.hosts = append(e.hosts, host)
	return nil
}

// AddNIC registers the specified NIC simulator with the experiment
func (e *Experiment) AddNIC(nic *NIC) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if err := e.checkMutable(); err != nil {
		return err
	}
	for _, n := range e.nics {
		if n == nic {
			return errors.NewAlreadyExists("NIC %s already added to experiment %s", nic.Name(), e.Name)
		}
	}
	e.nics = append(e.nics, nic)
	return nil
}

// AddNetwork registers the specified network simulator with the experiment
func (e *Experiment) AddNetwork(network *Network) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if err := e.checkMutable(); err != nil {
		return err
	}
	for _, n := range e.networks {
		if n == network {
			return errors.NewAlreadyExists("Network %s already added to experiment %s", network.Name, e.Name)
		}
	}
	if network.Name == "" {
		network.Name = defaultNetworkName(len(e.networks))
	}
	e.networks = append(e.networks, network)
	return nil
}

// Hosts returns the registered host simulators in registration order
func (e *Experiment) Hosts() []*Host {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return append([]*Host(nil), e.hosts...)
}

// NICs returns the registered NIC simulators in registration order
func (e *Experiment) NICs() []*NIC {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return append([]*NIC(nil), e.nics...)
}

// Networks returns the registered network simulators in registration order
func (e *Experiment) Networks() []*Network {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return append([]*Network(nil), e.networks...)
}

// Host returns the host simulator with the specified name
func (e *Experiment) Host(name string) (*Host, error) {
	e.lock.RLock()
	defer e.lock.RUnlock()
	for _, h := range e.hosts {
		if h.Name == name {
			return h, nil
		}
	}
	return nil, errors.NewNotFound("Host %s not found in experiment %s", name, e.Name)
}

// Network returns the network simulator with the specified name
func (e *Experiment) Network(name string) (*Network, error) {
	e.lock.RLock()
	defer e.lock.RUnlock()
	for _, n := range e.networks {
		if n.Name == name {
			return n, nil
		}
	}
	return nil, errors.NewNotFound("Network %s not found in experiment %s", name, e.Name)
}

// Seal validates the experiment and prevents any further additions to it
func (e *Experiment) Seal() error {
	if err := e.Validate(); err != nil {
		return err
	}
	e.lock.Lock()
	defer e.lock.Unlock()
	e.sealed = true
	for _, h := range e.hosts {
		h.sealed = true
	}
	for _, n := range e.nics {
		n.sealed = true
	}
	for _, n := range e.networks {
		n.sealed = true
	}
	log.Debugf("Experiment %s: sealed with %d hosts, %d NICs and %d networks",
		e.Name, len(e.hosts), len(e.nics), len(e.networks))
	return nil
}

// Clone returns a deep copy of the experiment with its hosts, NICs and networks wired the same
// way; the copy is sealed if the experiment is
func (e *Experiment) Clone() *Experiment {
	e.lock.RLock()
	defer e.lock.RUnlock()
	c := &Experiment{Name: e.Name, Checkpoint: e.Checkpoint, sealed: e.sealed}

	networks := make(map[*Network]*Network, len(e.networks))
	for _, n := range e.networks {
		nc := *n
		nc.nics = nil
		networks[n] = &nc
		c.networks = append(c.networks, &nc)
	}
	hosts := make(map[*Host]*Host, len(e.hosts))
	for _, h := range e.hosts {
		hc := *h
		hc.Config = h.Config.clone()
		hc.nics = nil
		hosts[h] = &hc
		c.hosts = append(c.hosts, &hc)
	}
	nics := make(map[*NIC]*NIC, len(e.nics))
	for _, n := range e.nics {
		nc := *n
		nc.host = hosts[n.host]
		nc.network = networks[n.network]
		nics[n] = &nc
		c.nics = append(c.nics, &nc)
	}

	// Attachment order determines NIC names and port numbering
	for _, h := range e.hosts {
		for _, n := range h.nics {
			if nc, ok := nics[n]; ok {
				hosts[h].nics = append(hosts[h].nics, nc)
			}
		}
	}
	for _, n := range e.networks {
		for _, nic := range n.nics {
			if nc, ok := nics[nic]; ok {
				networks[n].nics = append(networks[n].nics, nc)
			}
		}
	}
	return c
}

// Sealed returns true if the experiment has been handed over and can no longer be changed
func (e *Experiment) Sealed() bool {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return e.sealed
}

func (e *Experiment) checkMutable() error {
	if e.sealed {
		return errors.NewForbidden("Experiment %s is sealed", e.Name)
	}
	return nil
}
