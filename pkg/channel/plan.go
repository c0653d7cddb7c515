// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"github.com/onosproject/onos-lib-go/pkg/logging"
	"github.com/simbricks/simbricks-exp/pkg/experiment"
	"path/filepath"
)

var log = logging.GetLogger("channel")

// NICChannels holds the endpoints a NIC simulator listens on within an experiment run
type NICChannels struct {
	NIC       string `yaml:"nic"`
	Host      string `yaml:"host"`
	Network   string `yaml:"network"`
	PCISocket string `yaml:"pci_socket"`
	EthSocket string `yaml:"eth_socket"`
	ShmPath   string `yaml:"shm_path"`
	ShmSize   uint64 `yaml:"shm_size"`
	Layout    Layout `yaml:"layout"`
}

// Plan assigns socket and shared memory paths to every NIC of the experiment
func Plan(exp *experiment.Experiment, workDir string, shmDir string) ([]NICChannels, error) {
	if err := exp.Validate(); err != nil {
		return nil, err
	}
	layout := DefaultLayout()
	if err := layout.Validate(ShmSize); err != nil {
		return nil, err
	}

	nics := exp.NICs()
	plan := make([]NICChannels, 0, len(nics))
	for _, nic := range nics {
		name := nic.Name()
		plan = append(plan, NICChannels{
			NIC:       name,
			Host:      nic.Host().Name,
			Network:   nic.Network().Name,
			PCISocket: filepath.Join(workDir, "dev.pci."+name),
			EthSocket: filepath.Join(workDir, "dev.eth."+name),
			ShmPath:   filepath.Join(shmDir, "dev.shm."+name),
			ShmSize:   ShmSize,
			Layout:    layout,
		})
	}
	log.Debugf("Experiment %s: planned channels for %d NICs", exp.Name, len(plan))
	return plan, nil
}
