// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/simbricks/simbricks-exp/pkg/channel"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	cmd := getRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	out, err := execute(t, "list")
	assert.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "netcache\thosts=5\tnics=5\tnetworks=1\tcheckpoint=false"))
	assert.True(t, strings.HasPrefix(lines[1], "ping\thosts=1"))
	assert.True(t, strings.HasPrefix(lines[2], "simple_ping\thosts=2"))
}

func TestShowCommand(t *testing.T) {
	out, err := execute(t, "show", "ping")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "#"))
	assert.Contains(t, out, "name: ping")
	assert.Contains(t, out, "role: http_server")

	_, err = execute(t, "show", "nope")
	assert.True(t, errors.IsNotFound(err))
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "--experiment", "../../experiments/simple_ping.yaml")
	assert.NoError(t, err)
	assert.Equal(t, "Experiment simple_ping is valid\n", out)

	_, err = execute(t, "validate", "--experiment", "../../experiments/broken.yaml")
	assert.True(t, errors.IsInvalid(err))
}

func TestAnalyzeCommand(t *testing.T) {
	out, err := execute(t, "analyze", "simple_ping")
	assert.NoError(t, err)
	assert.Contains(t, out, "Experiment simple_ping\n")
	assert.Contains(t, out, "client1 -> server: 2001500\n")
	assert.Contains(t, out, "server -> client1: 2001500\n")
	assert.Contains(t, out, "latency mismatch: ")
	assert.NotContains(t, out, "unreachable")

	path := filepath.Join(t.TempDir(), "netcache.prom")
	_, err = execute(t, "analyze", "netcache", "--metrics", path)
	assert.NoError(t, err)
	b, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(b), "simbricks_exp_unreachable_pairs{experiment=\"netcache\"} 0")
}

func TestPlanCommand(t *testing.T) {
	out, err := execute(t, "plan", "ping", "--workdir", "/work", "--shmdir", "/shm")
	assert.NoError(t, err)

	var plan []channel.NICChannels
	assert.NoError(t, yaml.Unmarshal([]byte(out), &plan))
	assert.Len(t, plan, 1)
	assert.Equal(t, "server.nic0", plan[0].NIC)
	assert.Equal(t, "/work/dev.pci.server.nic0", plan[0].PCISocket)
	assert.Equal(t, "/shm/dev.shm.server.nic0", plan[0].ShmPath)
}

func TestLoadCommandAgentPort(t *testing.T) {
	_, err := execute(t, "load", "ping", "--agent-port", "0")
	assert.True(t, errors.IsInvalid(err))
}
