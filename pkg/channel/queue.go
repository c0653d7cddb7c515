// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"github.com/onosproject/onos-lib-go/pkg/errors"
)

// The last header byte of each entry carries the ownership bit and the message type
const (
	ownTypeOffset = HeaderLen - 1

	OwnMask = 0x80
	MsgMask = 0x7f

	// A zeroed region leaves every entry with its producer
	OwnProducer = 0x00
	OwnConsumer = 0x80
)

// ring is a circular queue of fixed-size entries inside a shared region
type ring struct {
	spec   QueueSpec
	region []byte
	pos    uint64
}

func newRing(region []byte, spec QueueSpec) (ring, error) {
	if spec.EntryLen < HeaderLen || spec.Entries == 0 {
		return ring{}, errors.NewInvalid("Invalid queue geometry %d x %d", spec.Entries, spec.EntryLen)
	}
	if uint64(len(region)) < spec.End() {
		return ring{}, errors.NewInvalid("Region of %d bytes too small for queue ending at %d", len(region), spec.End())
	}
	return ring{spec: spec, region: region}, nil
}

func (r *ring) current() []byte {
	start := r.spec.Offset + r.pos*r.spec.EntryLen
	return r.region[start : start+r.spec.EntryLen : start+r.spec.EntryLen]
}

func (r *ring) advance() {
	r.pos = (r.pos + 1) % r.spec.Entries
}

// Position returns the index of the entry the queue is at
func (r *ring) Position() uint64 {
	return r.pos
}

// Consumer is the receiving end of a queue
type Consumer struct {
	ring
}

// NewConsumer creates the receiving end of the queue placed in the region as specified
func NewConsumer(region []byte, spec QueueSpec) (*Consumer, error) {
	r, err := newRing(region, spec)
	if err != nil {
		return nil, err
	}
	return &Consumer{ring: r}, nil
}

// Poll returns the entry at the current position if the producer has handed it over
func (c *Consumer) Poll() ([]byte, bool) {
	entry := c.current()
	if Owner(entry) != OwnConsumer {
		return nil, false
	}
	return entry, true
}

// Done returns the entry to the producer, preserving its message type
func (c *Consumer) Done(entry []byte) {
	setOwnType(entry, OwnProducer, Type(entry))
}

// Next advances to the following entry
func (c *Consumer) Next() {
	c.advance()
}

// Producer is the sending end of a queue
type Producer struct {
	ring
}

// NewProducer creates the sending end of the queue placed in the region as specified
func NewProducer(region []byte, spec QueueSpec) (*Producer, error) {
	r, err := newRing(region, spec)
	if err != nil {
		return nil, err
	}
	return &Producer{ring: r}, nil
}

// Alloc returns the entry at the current position and advances if the entry is free;
// returns false if the consumer still holds it
func (p *Producer) Alloc() ([]byte, bool) {
	entry := p.current()
	if Owner(entry) != OwnProducer {
		return nil, false
	}
	p.advance()
	return entry, true
}

// Send hands the allocated entry over to the consumer with the given message type
func (p *Producer) Send(entry []byte, msgType byte) {
	setOwnType(entry, OwnConsumer, msgType)
}

// Owner returns the ownership bit of the entry
func Owner(entry []byte) byte {
	return entry[ownTypeOffset] & OwnMask
}

// Type returns the message type of the entry
func Type(entry []byte) byte {
	return entry[ownTypeOffset] & MsgMask
}

func setOwnType(entry []byte, owner byte, msgType byte) {
	entry[ownTypeOffset] = (owner & OwnMask) | (msgType & MsgMask)
}

// DeviceQueues are the queues as seen by the NIC simulator
type DeviceQueues struct {
	H2D *Consumer
	D2H *Producer
	N2D *Consumer
	D2N *Producer
}

// OpenDevice opens the queues of the region from the NIC simulator side
func OpenDevice(region []byte, layout Layout) (*DeviceQueues, error) {
	if err := layout.Validate(uint64(len(region))); err != nil {
		return nil, err
	}
	q := &DeviceQueues{}
	var err error
	if q.H2D, err = NewConsumer(region, layout.H2D); err != nil {
		return nil, err
	}
	if q.D2H, err = NewProducer(region, layout.D2H); err != nil {
		return nil, err
	}
	if q.N2D, err = NewConsumer(region, layout.N2D); err != nil {
		return nil, err
	}
	if q.D2N, err = NewProducer(region, layout.D2N); err != nil {
		return nil, err
	}
	return q, nil
}

// PeerQueues are the queues as seen by the host or network simulator attached to a NIC
type PeerQueues struct {
	In  *Consumer
	Out *Producer
}

// OpenHost opens the PCIe queues of the region from the host simulator side
func OpenHost(region []byte, layout Layout) (*PeerQueues, error) {
	return openPeer(region, layout, layout.D2H, layout.H2D)
}

// OpenNetwork opens the Ethernet queues of the region from the network simulator side
func OpenNetwork(region []byte, layout Layout) (*PeerQueues, error) {
	return openPeer(region, layout, layout.D2N, layout.N2D)
}

func openPeer(region []byte, layout Layout, in QueueSpec, out QueueSpec) (*PeerQueues, error) {
	if err := layout.Validate(uint64(len(region))); err != nil {
		return nil, err
	}
	consumer, err := NewConsumer(region, in)
	if err != nil {
		return nil, err
	}
	producer, err := NewProducer(region, out)
	if err != nil {
		return nil, err
	}
	return &PeerQueues{In: consumer, Out: producer}, nil
}
