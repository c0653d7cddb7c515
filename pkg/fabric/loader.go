// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package fabric materializes experiment topologies in a running fabric simulator
package fabric

import (
	"context"
	"fmt"
	simapi "github.com/onosproject/onos-api/go/onos/fabricsim"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/simbricks/simbricks-exp/pkg/experiment"
	"google.golang.org/grpc"
)

var log = logging.GetLogger("fabric")

const defaultAgentPort = 20000

// Fabric is the fabric simulator rendition of an experiment: a switch per network and
// a host per simulated host
type Fabric struct {
	Devices []*simapi.Device
	Hosts   []*simapi.Host
}

// ConstructFabric creates the simulated devices and hosts for the given experiment
func ConstructFabric(exp *experiment.Experiment, agentPort int32) (*Fabric, error) {
	if err := exp.Validate(); err != nil {
		return nil, err
	}
	macs, err := AssignMACs(exp)
	if err != nil {
		return nil, err
	}
	if agentPort == 0 {
		agentPort = defaultAgentPort
	}

	fabric := &Fabric{}
	ports := make(map[*experiment.NIC]simapi.PortID)
	for i, network := range exp.Networks() {
		device := ConstructDevice(network, agentPort+int32(i))
		for j, nic := range network.NICs() {
			ports[nic] = device.Ports[j].ID
		}
		fabric.Devices = append(fabric.Devices, device)
	}
	for _, host := range exp.Hosts() {
		fabric.Hosts = append(fabric.Hosts, ConstructHost(host, ports, macs))
	}
	return fabric, nil
}

// ConstructDevice creates a switch device with one port per NIC attached to the network
func ConstructDevice(network *experiment.Network, agentPort int32) *simapi.Device {
	nics := network.NICs()
	ports := make([]*simapi.Port, 0, len(nics))
	for i := range nics {
		number := uint32(i + 1)
		port := &simapi.Port{
			ID:             simapi.PortID(fmt.Sprintf("%s/%d", network.Name, number)),
			Name:           fmt.Sprintf("%d", number),
			Number:         number,
			InternalNumber: number,
			Speed:          "10Gbps",
			Enabled:        true,
		}
		ports = append(ports, port)
	}
	return &simapi.Device{
		ID:          simapi.DeviceID(network.Name),
		Type:        simapi.DeviceType_SWITCH,
		Ports:       ports,
		ControlPort: agentPort,
	}
}

// ConstructHost creates a host with one network interface per NIC, attached to the given switch ports
func ConstructHost(host *experiment.Host, ports map[*experiment.NIC]simapi.PortID, macs map[*experiment.NIC]string) *simapi.Host {
	nics := make([]*simapi.NetworkInterface, 0, len(host.NICs()))
	for _, nic := range host.NICs() {
		nics = append(nics, &simapi.NetworkInterface{
			ID:         ports[nic],
			MacAddress: macs[nic],
			IpAddress:  host.Config.IP,
		})
	}
	return &simapi.Host{
		ID:         simapi.HostID(host.Name),
		Interfaces: nics,
	}
}

// LoadExperiment creates the simulated devices and hosts of the experiment using the fabric
// simulator API client and starts the device agents
func LoadExperiment(ctx context.Context, conn *grpc.ClientConn, exp *experiment.Experiment, agentPort int32) error {
	log.Infof("Loading experiment %s", exp.Name)
	fabric, err := ConstructFabric(exp, agentPort)
	if err != nil {
		return err
	}

	deviceClient := simapi.NewDeviceServiceClient(conn)
	for _, device := range fabric.Devices {
		if _, err := deviceClient.AddDevice(ctx, &simapi.AddDeviceRequest{Device: device}); err != nil {
			log.Errorf("Unable to create simulated device: %+v", err)
			return err
		}
		if _, err := deviceClient.StartDevice(ctx, &simapi.StartDeviceRequest{ID: device.ID}); err != nil {
			log.Errorf("Unable to start agent for simulated device: %+v", err)
			return err
		}
	}

	hostClient := simapi.NewHostServiceClient(conn)
	for _, host := range fabric.Hosts {
		if _, err := hostClient.AddHost(ctx, &simapi.AddHostRequest{Host: host}); err != nil {
			log.Errorf("Unable to create simulated host: %+v", err)
			return err
		}
	}
	return nil
}

// ClearExperiment removes all hosts and devices from the fabric simulator
func ClearExperiment(ctx context.Context, conn *grpc.ClientConn) error {
	log.Info("Clearing all simulated hosts and devices")
	hostClient := simapi.NewHostServiceClient(conn)
	hosts, err := hostClient.GetHosts(ctx, &simapi.GetHostsRequest{})
	if err != nil {
		return err
	}
	for _, host := range hosts.Hosts {
		if _, err = hostClient.RemoveHost(ctx, &simapi.RemoveHostRequest{ID: host.ID}); err != nil {
			return err
		}
	}

	deviceClient := simapi.NewDeviceServiceClient(conn)
	devices, err := deviceClient.GetDevices(ctx, &simapi.GetDevicesRequest{})
	if err != nil {
		return err
	}
	for _, device := range devices.Devices {
		if _, err = deviceClient.RemoveDevice(ctx, &simapi.RemoveDeviceRequest{ID: device.ID}); err != nil {
			return err
		}
	}
	return nil
}
