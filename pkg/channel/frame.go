// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"encoding/binary"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/onosproject/onos-lib-go/pkg/errors"
)

// Ethernet message types
const (
	MsgSync   = 0x00
	MsgPacket = 0x01
)

// Ethernet entries carry the frame length in the first two header bytes, little endian
const lenOffset = 0

// WriteFrame places the given Ethernet frame into the queue entry
func WriteFrame(entry []byte, frame []byte) error {
	if len(frame) > len(entry)-HeaderLen || len(frame) > 0xffff {
		return errors.NewInvalid("Frame of %d bytes exceeds entry payload of %d bytes", len(frame), len(entry)-HeaderLen)
	}
	binary.LittleEndian.PutUint16(entry[lenOffset:], uint16(len(frame)))
	copy(entry[HeaderLen:], frame)
	return nil
}

// ReadFrame returns the Ethernet frame carried by the queue entry
func ReadFrame(entry []byte) ([]byte, error) {
	n := int(binary.LittleEndian.Uint16(entry[lenOffset:]))
	if n > len(entry)-HeaderLen {
		return nil, errors.NewInvalid("Frame length %d exceeds entry payload of %d bytes", n, len(entry)-HeaderLen)
	}
	return entry[HeaderLen : HeaderLen+n], nil
}

// DecodeFrame decodes the Ethernet frame carried by the queue entry
func DecodeFrame(entry []byte) (gopacket.Packet, error) {
	data, err := ReadFrame(entry)
	if err != nil {
		return nil, err
	}
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		return nil, errors.NewInvalid("Unable to decode frame: %v", errLayer.Error())
	}
	return packet, nil
}
