// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/simbricks/simbricks-exp/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"net"
	"testing"
)

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()
	assert.Equal(t, uint64(0), l.D2H.Offset)
	assert.Equal(t, uint64(D2HEntryLen*D2HEntries), l.H2D.Offset)
	assert.Equal(t, l.H2D.End(), l.D2N.Offset)
	assert.Equal(t, l.D2N.End(), l.N2D.Offset)
	assert.Equal(t, uint64(2*4160*1024+2*2112*1024), l.Size())
	assert.NoError(t, l.Validate(ShmSize))

	assert.True(t, errors.IsInvalid(l.Validate(l.Size()-1)))

	overlapping := l
	overlapping.N2D.Offset = l.D2N.Offset + 64
	assert.True(t, errors.IsInvalid(overlapping.Validate(ShmSize)))

	tiny := l
	tiny.D2H.EntryLen = 16
	assert.True(t, errors.IsInvalid(tiny.Validate(ShmSize)))
}

func TestQueueWrapAround(t *testing.T) {
	spec := QueueSpec{Offset: 0, EntryLen: HeaderLen, Entries: 4}
	region := make([]byte, spec.Size())
	producer, err := NewProducer(region, spec)
	assert.NoError(t, err)
	consumer, err := NewConsumer(region, spec)
	assert.NoError(t, err)

	_, ok := consumer.Poll()
	assert.False(t, ok)

	for i := 0; i < 4; i++ {
		entry, ok := producer.Alloc()
		assert.True(t, ok)
		producer.Send(entry, byte(i+1))
	}
	// All entries are held by the consumer
	_, ok = producer.Alloc()
	assert.False(t, ok)
	assert.Equal(t, uint64(0), producer.Position())

	entry, ok := consumer.Poll()
	assert.True(t, ok)
	assert.Equal(t, byte(1), Type(entry))
	assert.Equal(t, byte(OwnConsumer), Owner(entry))
	consumer.Done(entry)
	consumer.Next()
	assert.Equal(t, byte(OwnProducer), Owner(entry))
	assert.Equal(t, byte(1), Type(entry))

	entry, ok = producer.Alloc()
	assert.True(t, ok)
	assert.Equal(t, uint64(1), producer.Position())
	producer.Send(entry, 0x7f)

	for i := 2; i <= 4; i++ {
		entry, ok := consumer.Poll()
		assert.True(t, ok)
		assert.Equal(t, byte(i), Type(entry))
		consumer.Done(entry)
		consumer.Next()
	}
	entry, ok = consumer.Poll()
	assert.True(t, ok)
	assert.Equal(t, byte(0x7f), Type(entry))
	assert.Equal(t, uint64(0), consumer.Position())
}

func TestQueueGeometry(t *testing.T) {
	_, err := NewProducer(make([]byte, 10), QueueSpec{EntryLen: HeaderLen, Entries: 1})
	assert.True(t, errors.IsInvalid(err))
	_, err = NewConsumer(make([]byte, 1024), QueueSpec{EntryLen: 8, Entries: 1})
	assert.True(t, errors.IsInvalid(err))
	_, err = OpenDevice(make([]byte, 1024), DefaultLayout())
	assert.True(t, errors.IsInvalid(err))
}

func TestHostDeviceExchange(t *testing.T) {
	layout := DefaultLayout()
	region := make([]byte, layout.Size())
	device, err := OpenDevice(region, layout)
	assert.NoError(t, err)
	host, err := OpenHost(region, layout)
	assert.NoError(t, err)

	entry, ok := host.Out.Alloc()
	assert.True(t, ok)
	copy(entry, []byte{0xde, 0xad})
	host.Out.Send(entry, 0x05)

	_, ok = device.N2D.Poll()
	assert.False(t, ok)

	received, ok := device.H2D.Poll()
	assert.True(t, ok)
	assert.Equal(t, byte(0x05), Type(received))
	assert.Equal(t, []byte{0xde, 0xad}, received[:2])
	device.H2D.Done(received)
	device.H2D.Next()

	reply, ok := device.D2H.Alloc()
	assert.True(t, ok)
	device.D2H.Send(reply, 0x02)
	completion, ok := host.In.Poll()
	assert.True(t, ok)
	assert.Equal(t, byte(0x02), Type(completion))
}

func TestFrameExchange(t *testing.T) {
	layout := DefaultLayout()
	region := make([]byte, layout.Size())
	device, err := OpenDevice(region, layout)
	assert.NoError(t, err)
	network, err := OpenNetwork(region, layout)
	assert.NoError(t, err)

	frame, err := UDPFrame(net.HardwareAddr{0x02, 0, 0, 0, 0, 1}, net.HardwareAddr{0x02, 0, 0, 0, 0, 2},
		net.ParseIP("10.0.0.5"), net.ParseIP("10.0.0.2"), 4000, 80, []byte("ping"))
	assert.NoError(t, err)
	assert.NoError(t, SendFrame(device.D2N, frame))

	received, ok := network.In.Poll()
	assert.True(t, ok)
	assert.Equal(t, byte(MsgPacket), Type(received))
	packet, err := DecodeFrame(received)
	assert.NoError(t, err)
	udpLayer := packet.Layer(layers.LayerTypeUDP)
	assert.NotNil(t, udpLayer)
	assert.Equal(t, layers.UDPPort(80), udpLayer.(*layers.UDP).DstPort)
	assert.Equal(t, []byte("ping"), udpLayer.(*layers.UDP).Payload)

	tooBig := make([]byte, D2NEntryLen)
	assert.True(t, errors.IsInvalid(WriteFrame(received, tooBig)))
	assert.True(t, errors.IsInvalid(SendFrame(device.D2N, tooBig)))
	assert.Equal(t, uint64(1), device.D2N.Position())
}

func TestARPRequestFrame(t *testing.T) {
	ourMAC := net.HardwareAddr{0x02, 11, 12, 13, 14, 15}
	frame, err := ARPRequestFrame(ourMAC, net.ParseIP("10.0.0.5"), net.ParseIP("10.0.0.2"))
	assert.NoError(t, err)
	assert.Len(t, frame, 60)

	packet := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.Default)
	arpLayer := packet.Layer(layers.LayerTypeARP)
	assert.NotNil(t, arpLayer)
	arp := arpLayer.(*layers.ARP)
	assert.Equal(t, []byte{10, 0, 0, 2}, arp.DstProtAddress)
	assert.Equal(t, []byte(ourMAC), arp.SourceHwAddress)
}

func TestSendFrameFull(t *testing.T) {
	spec := QueueSpec{EntryLen: HeaderLen + 64, Entries: 2}
	producer, err := NewProducer(make([]byte, spec.Size()), spec)
	assert.NoError(t, err)
	frame := make([]byte, 60)
	assert.NoError(t, SendFrame(producer, frame))
	assert.NoError(t, SendFrame(producer, frame))
	assert.True(t, errors.IsUnavailable(SendFrame(producer, frame)))
}

func TestPlan(t *testing.T) {
	e, err := catalog.NetCache()
	assert.NoError(t, err)
	plan, err := Plan(e, "/tmp/work", "/dev/shm")
	assert.NoError(t, err)
	assert.Len(t, plan, 5)

	first := plan[0]
	assert.Equal(t, "client0.nic0", first.NIC)
	assert.Equal(t, "client0", first.Host)
	assert.Equal(t, "net0", first.Network)
	assert.Equal(t, "/tmp/work/dev.pci.client0.nic0", first.PCISocket)
	assert.Equal(t, "/tmp/work/dev.eth.client0.nic0", first.EthSocket)
	assert.Equal(t, "/dev/shm/dev.shm.client0.nic0", first.ShmPath)
	assert.Equal(t, uint64(ShmSize), first.ShmSize)
	assert.Equal(t, DefaultLayout(), first.Layout)

	e.NICs()[0].EthLatency = -1
	_, err = Plan(e, "/tmp/work", "/dev/shm")
	assert.True(t, errors.IsInvalid(err))
}
