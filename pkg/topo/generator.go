// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package topo

import (
	"encoding/binary"
	"fmt"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/simbricks/simbricks-exp/pkg/experiment"
	"net"
)

const defaultBaseIP = "10.0.0.2"

// Recipe is a container for holding one of the supported experiment recipes
type Recipe struct {
	ClientServer *ClientServer `mapstructure:"client_server" yaml:"client_server"`
	Cache        *Cache        `mapstructure:"cache" yaml:"cache"`
	// Add more recipes here
}

// ClientServer is a recipe for clients exercising servers over a single network;
// clients are attached round-robin to the servers
type ClientServer struct {
	Name           string `mapstructure:"name" yaml:"name"`
	Family         string `mapstructure:"family" yaml:"family"`
	Network        string `mapstructure:"network" yaml:"network"`
	Clients        int    `mapstructure:"clients" yaml:"clients"`
	Servers        int    `mapstructure:"servers" yaml:"servers"`
	BaseIP         string `mapstructure:"base_ip" yaml:"base_ip"`
	Latency        *int64 `mapstructure:"latency" yaml:"latency,omitempty"`
	NetworkLatency *int64 `mapstructure:"network_latency" yaml:"network_latency,omitempty"`
	Checkpoint     bool   `mapstructure:"checkpoint" yaml:"checkpoint"`
}

// Cache is a recipe for a distributed cache with indexed clients and servers
type Cache struct {
	Name           string `mapstructure:"name" yaml:"name"`
	Family         string `mapstructure:"family" yaml:"family"`
	Clients        int    `mapstructure:"clients" yaml:"clients"`
	Servers        int    `mapstructure:"servers" yaml:"servers"`
	BaseIP         string `mapstructure:"base_ip" yaml:"base_ip"`
	Latency        *int64 `mapstructure:"latency" yaml:"latency,omitempty"`
	NetworkLatency *int64 `mapstructure:"network_latency" yaml:"network_latency,omitempty"`
	Checkpoint     bool   `mapstructure:"checkpoint" yaml:"checkpoint"`
}

// GenerateExperiment loads the specified experiment recipe YAML file and uses the recipe to
// generate a fully elaborated experiment YAML file that can be loaded via LoadExperiment
func GenerateExperiment(recipePath string, outputPath string) error {
	log.Infof("Loading experiment recipe from %s", recipePath)
	recipe := &Recipe{}
	if err := loadRecipeFile(recipePath, recipe); err != nil {
		return err
	}
	descriptor, err := GenerateDescriptor(recipe)
	if err != nil {
		return err
	}
	return SaveExperimentFile(descriptor, outputPath)
}

// GenerateDescriptor elaborates the given recipe into an experiment descriptor
func GenerateDescriptor(recipe *Recipe) (*Descriptor, error) {
	switch {
	case recipe.ClientServer != nil:
		return GenerateClientServer(recipe.ClientServer)
	case recipe.Cache != nil:
		return GenerateCache(recipe.Cache)
	default:
		return nil, errors.NewInvalid("No supported experiment recipe found")
	}
}

// Loads the specified experiment recipe YAML file
func loadRecipeFile(path string, recipe *Recipe) error {
	cfg, err := readConfig(path)
	if err != nil {
		return err
	}
	return cfg.Unmarshal(recipe)
}

// GenerateClientServer generates an experiment descriptor from the specified client/server recipe
func GenerateClientServer(r *ClientServer) (*Descriptor, error) {
	var clientRole, serverRole experiment.AppRole
	switch r.Family {
	case "", "http":
		clientRole, serverRole = experiment.HTTPClient, experiment.HTTPServer
	case "ping":
		clientRole, serverRole = experiment.PingClient, experiment.IdleApp
	default:
		return nil, errors.NewInvalid("Unsupported client/server family %s", r.Family)
	}
	log.Infof("Generating %dx%d %s client/server experiment", r.Clients, r.Servers, r.Family)

	builder, err := newDescriptorBuilder(defaultString(r.Name, "client_server"), r.BaseIP, r.Checkpoint,
		defaultString(r.Network, string(experiment.NS3BridgeNet)), r.NetworkLatency, r.Latency)
	if err != nil {
		return nil, err
	}

	servers := defaultCount(r.Servers, 1)
	serverIPs := make([]string, 0, servers)
	for i := 0; i < servers; i++ {
		host := builder.addHost(fmt.Sprintf("server%d", i), App{Role: string(serverRole)})
		serverIPs = append(serverIPs, host.Node.IP)
	}
	for i := 0; i < defaultCount(r.Clients, 1); i++ {
		app := App{Role: string(clientRole)}
		if clientRole == experiment.PingClient {
			app.Target = serverIPs[i%len(serverIPs)]
		}
		builder.addHost(fmt.Sprintf("client%d", i), app)
	}
	return builder.descriptor, nil
}

// GenerateCache generates an experiment descriptor from the specified distributed cache recipe
func GenerateCache(r *Cache) (*Descriptor, error) {
	var clientRole, serverRole experiment.AppRole
	var network experiment.NetworkKind
	switch r.Family {
	case "", "netcache":
		clientRole, serverRole, network = experiment.NetCacheClient, experiment.NetCacheServer, experiment.NS3NetCache
	case "pegasus":
		clientRole, serverRole, network = experiment.PegasusClient, experiment.PegasusServer, experiment.NS3Pegasus
	default:
		return nil, errors.NewInvalid("Unsupported cache family %s", r.Family)
	}
	log.Infof("Generating %dx%d %s cache experiment", r.Clients, r.Servers, r.Family)

	builder, err := newDescriptorBuilder(defaultString(r.Name, string(network)), r.BaseIP, r.Checkpoint,
		string(network), r.NetworkLatency, r.Latency)
	if err != nil {
		return nil, err
	}

	// Servers are allocated first to keep their addresses stable as clients are added
	for i := 0; i < defaultCount(r.Servers, 1); i++ {
		builder.addHost(fmt.Sprintf("server%d", i), App{Role: string(serverRole), NodeID: i})
	}
	for i := 0; i < defaultCount(r.Clients, 1); i++ {
		builder.addHost(fmt.Sprintf("client%d", i), App{Role: string(clientRole), NodeID: i})
	}
	return builder.descriptor, nil
}

// State to assist generating experiment descriptors
type descriptorBuilder struct {
	descriptor *Descriptor
	nextIP     uint32
	latency    *int64
}

func newDescriptorBuilder(name string, baseIP string, checkpoint bool, networkKind string,
	networkLatency *int64, nicLatency *int64) (*descriptorBuilder, error) {
	ip := net.ParseIP(defaultString(baseIP, defaultBaseIP)).To4()
	if ip == nil {
		return nil, errors.NewInvalid("Invalid base IPv4 address %s", baseIP)
	}
	if networkLatency != nil && *networkLatency < 0 {
		return nil, errors.NewInvalid("Negative network latency %d", *networkLatency)
	}
	if nicLatency != nil && *nicLatency < 0 {
		return nil, errors.NewInvalid("Negative latency %d", *nicLatency)
	}
	// Unset latencies are left to the simulator defaults; 0 is a valid latency
	return &descriptorBuilder{
		descriptor: &Descriptor{
			Name:       name,
			Checkpoint: checkpoint,
			Networks:   []Network{{Name: "net0", Kind: networkKind, EthLatency: networkLatency}},
		},
		nextIP:  binary.BigEndian.Uint32(ip),
		latency: nicLatency,
	}, nil
}

func (b *descriptorBuilder) addHost(name string, app App) Host {
	host := Host{
		Name: name,
		Kind: string(experiment.QemuHost),
		Sync: true,
		Wait: true,
		Node: Node{
			Kind: string(experiment.I40eLinuxNode),
			IP:   b.allocateIP(),
			App:  app,
		},
		NICs: []NIC{{
			Kind:       string(experiment.I40eNIC),
			Network:    b.descriptor.Networks[0].Name,
			EthLatency: b.latency,
		}},
	}
	b.descriptor.Hosts = append(b.descriptor.Hosts, host)
	return host
}

func (b *descriptorBuilder) allocateIP() string {
	ip := make(net.IP, net.IPv4len)
	binary.BigEndian.PutUint32(ip, b.nextIP)
	b.nextIP++
	return ip.String()
}

// Returns count or the default count if the count is 0
func defaultCount(count int, defaultCount int) int {
	if count > 0 {
		return count
	}
	return defaultCount
}

func defaultString(value string, defaultValue string) string {
	if value != "" {
		return value
	}
	return defaultValue
}
