// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"net"
)

var broadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// ARPRequestFrame returns an Ethernet frame with an ARP request for the specified IPv4 address
func ARPRequestFrame(ourMAC net.HardwareAddr, ourIP net.IP, theirIP net.IP) ([]byte, error) {
	eth := &layers.Ethernet{
		SrcMAC:       ourMAC,
		DstMAC:       broadcastMAC,
		EthernetType: layers.EthernetTypeARP,
	}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   ourMAC,
		SourceProtAddress: ourIP.To4(),
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    theirIP.To4(),
	}
	return serialize(eth, arp)
}

// UDPFrame returns an Ethernet frame carrying a UDP datagram with the given payload
func UDPFrame(srcMAC net.HardwareAddr, dstMAC net.HardwareAddr, srcIP net.IP, dstIP net.IP,
	srcPort uint16, dstPort uint16, payload []byte) ([]byte, error) {
	eth := &layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       dstMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    srcIP.To4(),
		DstIP:    dstIP.To4(),
	}
	udp := &layers.UDP{SrcPort: layers.UDPPort(srcPort), DstPort: layers.UDPPort(dstPort)}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, err
	}
	return serialize(eth, ip, udp, gopacket.Payload(payload))
}

func serialize(ls ...gopacket.SerializableLayer) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		FixLengths:       true,
		ComputeChecksums: true,
	}
	err := gopacket.SerializeLayers(buf, opts, ls...)
	return buf.Bytes(), err
}

// SendFrame places the Ethernet frame into the next free entry of the queue and hands it
// over to the consumer as a packet message
func SendFrame(p *Producer, frame []byte) error {
	if len(frame) > int(p.spec.EntryLen)-HeaderLen {
		return errors.NewInvalid("Frame of %d bytes exceeds entry payload of %d bytes", len(frame), int(p.spec.EntryLen)-HeaderLen)
	}
	entry, ok := p.Alloc()
	if !ok {
		return errors.NewUnavailable("Queue is full")
	}
	if err := WriteFrame(entry, frame); err != nil {
		return err
	}
	p.Send(entry, MsgPacket)
	return nil
}
