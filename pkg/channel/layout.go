// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package channel describes the shared-memory message queues connecting a NIC simulator to its
// host and network simulators, and the socket and memory paths an experiment assigns to them.
package channel

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
)

// HeaderLen is the length of the fixed message header preceding each entry's payload
const HeaderLen = 64

// Queue dimensions
const (
	D2HEntryLen = 4096 + HeaderLen
	D2HEntries  = 1024
	H2DEntryLen = 4096 + HeaderLen
	H2DEntries  = 1024
	D2NEntryLen = 2048 + HeaderLen
	D2NEntries  = 1024
	N2DEntryLen = 2048 + HeaderLen
	N2DEntries  = 1024
)

// ShmSize is the size of the shared memory region created by a NIC simulator
const ShmSize = 32 * 1024 * 1024

// QueueSpec describes the placement of a single ring of fixed-size entries within the region
type QueueSpec struct {
	Offset   uint64 `yaml:"offset"`
	EntryLen uint64 `yaml:"entry_len"`
	Entries  uint64 `yaml:"entries"`
}

// Size returns the number of bytes occupied by the queue
func (q QueueSpec) Size() uint64 {
	return q.EntryLen * q.Entries
}

// End returns the offset just past the queue
func (q QueueSpec) End() uint64 {
	return q.Offset + q.Size()
}

// Layout describes the four queues of a NIC simulator: device-to-host and host-to-device over
// PCIe, device-to-network and network-to-device over Ethernet
type Layout struct {
	D2H QueueSpec `yaml:"d2h"`
	H2D QueueSpec `yaml:"h2d"`
	D2N QueueSpec `yaml:"d2n"`
	N2D QueueSpec `yaml:"n2d"`
}

// DefaultLayout returns the queues laid out back to back from the start of the region
func DefaultLayout() Layout {
	l := Layout{}
	l.D2H = QueueSpec{Offset: 0, EntryLen: D2HEntryLen, Entries: D2HEntries}
	l.H2D = QueueSpec{Offset: l.D2H.End(), EntryLen: H2DEntryLen, Entries: H2DEntries}
	l.D2N = QueueSpec{Offset: l.H2D.End(), EntryLen: D2NEntryLen, Entries: D2NEntries}
	l.N2D = QueueSpec{Offset: l.D2N.End(), EntryLen: N2DEntryLen, Entries: N2DEntries}
	return l
}

// Size returns the number of bytes needed to hold all queues
func (l Layout) Size() uint64 {
	size := uint64(0)
	for _, q := range l.queues() {
		if q.End() > size {
			size = q.End()
		}
	}
	return size
}

// Validate checks that the queues fit in a region of the given size and do not overlap
func (l Layout) Validate(regionSize uint64) error {
	queues := l.queues()
	for i, q := range queues {
		if q.EntryLen < HeaderLen || q.Entries == 0 {
			return errors.NewInvalid("Queue %d: entries must hold at least the %d byte header", i, HeaderLen)
		}
		if q.End() > regionSize {
			return errors.NewInvalid("Queue %d: ends at %d past region size %d", i, q.End(), regionSize)
		}
		for j, o := range queues[:i] {
			if q.Offset < o.End() && o.Offset < q.End() {
				return errors.NewInvalid("Queue %d overlaps queue %d", i, j)
			}
		}
	}
	return nil
}

func (l Layout) queues() []QueueSpec {
	return []QueueSpec{l.D2H, l.H2D, l.D2N, l.N2D}
}
