// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"golang.org/x/exp/slices"
	"net"
)

// Validate checks the structural consistency of the experiment topology and returns
// an invalid error describing the first violation found
func (e *Experiment) Validate() error {
	e.lock.RLock()
	defer e.lock.RUnlock()

	if e.Name == "" {
		return errors.NewInvalid("Experiment name must not be empty")
	}
	if err := e.validateNetworks(); err != nil {
		return err
	}
	if err := e.validateHosts(); err != nil {
		return err
	}
	if err := e.validateNICs(); err != nil {
		return err
	}
	return e.validateApps()
}

func (e *Experiment) validateNetworks() error {
	names := make(map[string]bool)
	for _, n := range e.networks {
		if names[n.Name] {
			return errors.NewInvalid("Experiment %s: duplicate network %s", e.Name, n.Name)
		}
		names[n.Name] = true
		if !n.Kind.Valid() {
			return errors.NewInvalid("Network %s: unsupported kind %q", n.Name, n.Kind)
		}
		for _, nic := range n.nics {
			if !slices.Contains(e.nics, nic) {
				return errors.NewInvalid("Network %s: NIC %s is not registered with experiment %s", n.Name, nic.Name(), e.Name)
			}
		}
		if n.EthLatency < 0 || n.SyncPeriod < 0 {
			return errors.NewInvalid("Network %s: latencies must not be negative", n.Name)
		}
	}
	return nil
}

func (e *Experiment) validateHosts() error {
	names := make(map[string]bool)
	ips := make(map[string]string)
	for _, h := range e.hosts {
		if h.Name == "" {
			return errors.NewInvalid("Experiment %s: host name must not be empty", e.Name)
		}
		if names[h.Name] {
			return errors.NewInvalid("Experiment %s: duplicate host %s", e.Name, h.Name)
		}
		names[h.Name] = true
		if !h.Kind.Valid() {
			return errors.NewInvalid("Host %s: unsupported host kind %q", h.Name, h.Kind)
		}

		if h.Config == nil {
			return errors.NewInvalid("Host %s: missing node configuration", h.Name)
		}
		if !h.Config.Kind.Valid() {
			return errors.NewInvalid("Host %s: unsupported node kind %q", h.Name, h.Config.Kind)
		}
		ip := net.ParseIP(h.Config.IP)
		if ip == nil || ip.To4() == nil {
			return errors.NewInvalid("Host %s: invalid IPv4 address %q", h.Name, h.Config.IP)
		}
		if other, ok := ips[ip.String()]; ok {
			return errors.NewInvalid("Host %s: IP %s already used by host %s", h.Name, h.Config.IP, other)
		}
		ips[ip.String()] = h.Name
		if h.Config.Prefix < 0 || h.Config.Prefix > 32 {
			return errors.NewInvalid("Host %s: invalid prefix length %d", h.Name, h.Config.Prefix)
		}

		if len(h.nics) == 0 {
			return errors.NewInvalid("Host %s: no NIC attached", h.Name)
		}
		for _, nic := range h.nics {
			if !slices.Contains(e.nics, nic) {
				return errors.NewInvalid("Host %s: NIC %s is not registered with experiment %s", h.Name, nic.Name(), e.Name)
			}
		}
	}
	return nil
}

func (e *Experiment) validateNICs() error {
	for _, nic := range e.nics {
		if !nic.Kind.Valid() {
			return errors.NewInvalid("NIC %s: unsupported kind %q", nic.Name(), nic.Kind)
		}
		if nic.host == nil || !slices.Contains(e.hosts, nic.host) {
			return errors.NewInvalid("NIC %s: not attached to any host of experiment %s", nic.Name(), e.Name)
		}
		if nic.network == nil {
			return errors.NewInvalid("NIC %s: not attached to any network", nic.Name())
		}
		if !slices.Contains(e.networks, nic.network) {
			return errors.NewInvalid("NIC %s: network %s is not registered with experiment %s",
				nic.Name(), nic.network.Name, e.Name)
		}
		if nic.EthLatency < 0 || nic.PCILatency < 0 || nic.SyncPeriod < 0 {
			return errors.NewInvalid("NIC %s: latencies must not be negative", nic.Name())
		}
	}
	return nil
}

func (e *Experiment) validateApps() error {
	servers := make(map[AppRole]int)
	indices := make(map[AppRole][]int)
	for _, h := range e.hosts {
		app := h.Config.App
		if app == nil {
			continue
		}
		if !app.Role.Valid() {
			return errors.NewInvalid("Host %s: unsupported application role %q", h.Name, app.Role)
		}
		if app.Role == PingClient {
			if ip := net.ParseIP(app.Target); ip == nil || ip.To4() == nil {
				return errors.NewInvalid("Host %s: invalid ping target %q", h.Name, app.Target)
			}
		}
		if !app.IsIndexed() {
			continue
		}
		if app.NodeID < 0 {
			return errors.NewInvalid("Host %s: negative node index %d", h.Name, app.NodeID)
		}
		if app.IsServer() {
			servers[app.Role]++
		} else if slices.Contains(indices[app.Role], app.NodeID) {
			return errors.NewInvalid("Host %s: %s node index %d already used", h.Name, app.Role, app.NodeID)
		}
		if !slices.Contains(indices[app.Role], app.NodeID) {
			indices[app.Role] = append(indices[app.Role], app.NodeID)
		}
	}
	for role, count := range servers {
		if count != len(indices[role]) {
			return errors.NewInvalid("Experiment %s: %d %s hosts use %d distinct node indices",
				e.Name, count, role, len(indices[role]))
		}
	}
	return nil
}
