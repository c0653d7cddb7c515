// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package netgraph analyses the connectivity and end-to-end latencies of an experiment topology
package netgraph

import (
	"fmt"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/simbricks/simbricks-exp/pkg/experiment"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"math"
)

var log = logging.GetLogger("netgraph")

// Graph is a directed graph of hosts, NICs and networks weighted by the latency of traversing
// each simulated link in that direction. Every host is split into a source node that only
// sends and a sink node that only receives, so hosts never forward traffic.
type Graph struct {
	exp     *experiment.Experiment
	g       *simple.WeightedDirectedGraph
	sources map[string]graph.Node
	sinks   map[string]graph.Node
	names   map[int64]string
	trees   map[string]path.Shortest
}

// Build creates the latency graph of the given experiment; the experiment must be valid
func Build(exp *experiment.Experiment) (*Graph, error) {
	if err := exp.Validate(); err != nil {
		return nil, err
	}
	g := &Graph{
		exp:     exp,
		g:       simple.NewWeightedDirectedGraph(0, math.Inf(1)),
		sources: make(map[string]graph.Node),
		sinks:   make(map[string]graph.Node),
		names:   make(map[int64]string),
		trees:   make(map[string]path.Shortest),
	}

	networks := make(map[*experiment.Network]graph.Node)
	for _, network := range exp.Networks() {
		networks[network] = g.addNode("network " + network.Name)
	}

	for _, host := range exp.Hosts() {
		source := g.addNode("host " + host.Name)
		sink := g.addNode("host " + host.Name)
		g.sources[host.Name] = source
		g.sinks[host.Name] = sink
		for _, nic := range host.NICs() {
			nn := g.addNode("nic " + nic.Name())
			// PCI latency applies in both directions between host and device
			g.connect(source, nn, nic.PCILatency)
			g.connect(nn, sink, nic.PCILatency)

			// Each side of the Ethernet link declares its own sending latency
			if netNode, ok := networks[nic.Network()]; ok {
				g.connect(nn, netNode, nic.EthLatency)
				g.connect(netNode, nn, nic.Network().EthLatency)
			}
		}
	}
	log.Debugf("Experiment %s: latency graph with %d nodes", exp.Name, g.g.Nodes().Len())
	return g, nil
}

func (g *Graph) addNode(name string) graph.Node {
	node := g.g.NewNode()
	g.g.AddNode(node)
	g.names[node.ID()] = name
	return node
}

func (g *Graph) connect(from graph.Node, to graph.Node, latency experiment.Latency) {
	g.g.SetWeightedEdge(simple.WeightedEdge{F: from, T: to, W: float64(latency)})
}

// Returns the cached shortest path tree rooted at the given host
func (g *Graph) tree(host string) path.Shortest {
	if tree, ok := g.trees[host]; ok {
		return tree
	}
	tree := path.DijkstraFrom(g.sources[host], g.g)
	g.trees[host] = tree
	return tree
}

// Latency returns the one-way simulated latency from one host to another and the names of the
// simulated components traversed along the way
func (g *Graph) Latency(src string, dst string) (experiment.Latency, []string, error) {
	if _, ok := g.sources[src]; !ok {
		return 0, nil, errors.NewNotFound("Host %s not found", src)
	}
	dn, ok := g.sinks[dst]
	if !ok {
		return 0, nil, errors.NewNotFound("Host %s not found", dst)
	}
	nodes, weight := g.tree(src).To(dn.ID())
	if len(nodes) == 0 || math.IsInf(weight, 1) {
		return 0, nil, errors.NewNotFound("Host %s is unreachable from host %s", dst, src)
	}
	hops := make([]string, 0, len(nodes))
	for _, n := range nodes {
		hops = append(hops, g.names[n.ID()])
	}
	return experiment.Latency(weight), hops, nil
}

// Pair identifies a pair of hosts
type Pair struct {
	Src string
	Dst string
}

// Unreachable returns the ordered host pairs that have no path between them
func (g *Graph) Unreachable() []Pair {
	var pairs []Pair
	names := g.hostNames()
	for _, src := range names {
		for _, dst := range names {
			if src == dst {
				continue
			}
			if _, _, err := g.Latency(src, dst); err != nil {
				pairs = append(pairs, Pair{Src: src, Dst: dst})
			}
		}
	}
	return pairs
}

// Mismatch describes an Ethernet link whose two ends declare different latencies
type Mismatch struct {
	NIC        string
	Network    string
	NICLatency experiment.Latency
	NetLatency experiment.Latency
}

// String returns a human readable description of the mismatch
func (m Mismatch) String() string {
	return fmt.Sprintf("%s->%s: %d, %s->%s: %d", m.NIC, m.Network, m.NICLatency, m.Network, m.NIC, m.NetLatency)
}

// LatencyMismatches returns the NIC/network links with asymmetric Ethernet latencies
func (g *Graph) LatencyMismatches() []Mismatch {
	var mismatches []Mismatch
	for _, nic := range g.exp.NICs() {
		network := nic.Network()
		if network == nil || network.EthLatency == nic.EthLatency {
			continue
		}
		mismatches = append(mismatches, Mismatch{
			NIC:        nic.Name(),
			Network:    network.Name,
			NICLatency: nic.EthLatency,
			NetLatency: network.EthLatency,
		})
	}
	return mismatches
}

// Report summarizes the pairwise latencies and potential topology issues
type Report struct {
	Experiment  string
	Latencies   map[Pair]experiment.Latency
	Unreachable []Pair
	Mismatches  []Mismatch
}

// Report computes the pairwise latency report of the experiment
func (g *Graph) Report() *Report {
	report := &Report{
		Experiment: g.exp.Name,
		Latencies:  make(map[Pair]experiment.Latency),
		Mismatches: g.LatencyMismatches(),
	}
	names := g.hostNames()
	for _, src := range names {
		for _, dst := range names {
			if src == dst {
				continue
			}
			if latency, _, err := g.Latency(src, dst); err == nil {
				report.Latencies[Pair{Src: src, Dst: dst}] = latency
			} else {
				report.Unreachable = append(report.Unreachable, Pair{Src: src, Dst: dst})
			}
		}
	}
	return report
}

func (g *Graph) hostNames() []string {
	names := make([]string, 0, len(g.sources))
	for name := range g.sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
