// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package fabric

import (
	"fmt"
	"github.com/iti/rngstream"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/simbricks/simbricks-exp/pkg/experiment"
	"hash/fnv"
	"net"
	"sync"
)

// AssignMACs returns the MAC address of every NIC of the experiment: the declared one or,
// if none is declared, a random locally administered unicast address unique within the experiment.
// The experiment itself is left untouched.
func AssignMACs(exp *experiment.Experiment) (map[*experiment.NIC]string, error) {
	macs := make(map[*experiment.NIC]string)
	used := make(map[string]bool)
	for _, nic := range exp.NICs() {
		if nic.MAC == "" {
			continue
		}
		mac, err := net.ParseMAC(nic.MAC)
		if err != nil {
			return nil, errors.NewInvalid("NIC %s: %v", nic.Name(), err)
		}
		if used[mac.String()] {
			return nil, errors.NewInvalid("NIC %s: MAC %s already used", nic.Name(), nic.MAC)
		}
		used[mac.String()] = true
		macs[nic] = mac.String()
	}

	rng, err := newStream(exp.Name)
	if err != nil {
		return nil, err
	}
	for _, nic := range exp.NICs() {
		if nic.MAC != "" {
			continue
		}
		mac := randomMAC(rng)
		for used[mac] {
			mac = randomMAC(rng)
		}
		used[mac] = true
		macs[nic] = mac
		log.Debugf("NIC %s: assigned MAC %s", nic.Name(), mac)
	}
	return macs, nil
}

// Moduli of the two component generators of the stream; seed words must stay below them
const (
	seedModulus1 = 4294967087
	seedModulus2 = 4294944443
)

var streamLock sync.Mutex

// Returns a random stream whose state is derived from the given name only
func newStream(name string) (*rngstream.RngStream, error) {
	seed := make([]uint64, 6)
	for i := range seed {
		h := fnv.New64a()
		_, _ = h.Write([]byte{byte(i)})
		_, _ = h.Write([]byte(name))
		modulus := uint64(seedModulus1)
		if i >= 3 {
			modulus = seedModulus2
		}
		seed[i] = h.Sum64()%(modulus-1) + 1
	}

	// Creating a stream advances the package-wide seed
	streamLock.Lock()
	rng := rngstream.New(name)
	streamLock.Unlock()
	if !rng.SetSeed(seed) {
		return nil, errors.NewInternal("Unable to seed random stream %s", name)
	}
	return rng, nil
}

func randomMAC(rng *rngstream.RngStream) string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = byte(rng.RandU01() * 256)
	}
	// Locally administered, unicast
	b[0] = (b[0] | 0x02) &^ 0x01
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", b[0], b[1], b[2], b[3], b[4], b[5])
}
