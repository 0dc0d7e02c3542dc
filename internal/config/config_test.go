// This file is part of intcode - https://github.com/db47h/intcode
//
// Copyright 2019 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/db47h/intcode/internal/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	fn := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(fn, []byte(content), 0o644))
	return fn
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.Int("size", 50, "")
	fs.Int("nat", 255, "")
	fs.Duration("idle", 50*time.Millisecond, "")
	fs.Int64Slice("phases", nil, "")
	fs.Bool("feedback", false, "")
	return fs
}

func TestLoad_defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.File)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, 50, cfg.Network.Size)
	assert.Equal(t, 255, cfg.Network.NATAddress)
	assert.Equal(t, 50*time.Millisecond, cfg.Network.IdleTimeout)
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, cfg.Amp.Phases)
	assert.Equal(t, 0, cfg.Run.PipeSize)
}

func TestLoad_file(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "intcode.yaml", `
program: day9.txt
run:
  ascii: true
  keys:
    w: north
    s: south
network:
  size: 10
  idle_timeout: 200ms
`)
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "intcode.yaml", cfg.File)
	assert.Equal(t, "day9.txt", cfg.Program)
	assert.True(t, cfg.Run.ASCII)
	assert.Equal(t, map[string]string{"w": "north", "s": "south"}, cfg.Run.Keys)
	assert.Equal(t, 10, cfg.Network.Size)
	assert.Equal(t, 200*time.Millisecond, cfg.Network.IdleTimeout)
	// untouched defaults survive
	assert.Equal(t, 255, cfg.Network.NATAddress)
}

func TestLoad_explicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	fn := writeFile(t, t.TempDir(), "other.yml", "amp:\n  feedback: true\n  phases: [5, 6, 7, 8, 9]\n")
	cfg, err := config.Load(fn, nil)
	require.NoError(t, err)
	assert.Equal(t, fn, cfg.File)
	assert.True(t, cfg.Amp.Feedback)
	assert.Equal(t, []int64{5, 6, 7, 8, 9}, cfg.Amp.Phases)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "intcode.yaml", "verbose: true\nnetwork:\n  size: 10\n  nat_address: 100\n")
	t.Setenv("INTCODE_NETWORK__SIZE", "20")
	t.Setenv("INTCODE_NETWORK__IDLE_TIMEOUT", "1s")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--size", "30"}))
	cfg, err := config.Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Network.Size, "flag wins")
	assert.Equal(t, time.Second, cfg.Network.IdleTimeout, "env wins over default")
	assert.Equal(t, 100, cfg.Network.NATAddress, "file wins over default")
	// unchanged flags do not override the file
	assert.True(t, cfg.Verbose)

	fs = testFlags()
	require.NoError(t, fs.Parse(nil))
	cfg, err = config.Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Network.Size, "env wins over file")
}

func TestLoad_flags(t *testing.T) {
	t.Chdir(t.TempDir())
	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"-v", "--phases", "9,8,7", "--feedback", "--idle", "5ms", "--nat=-1"}))
	cfg, err := config.Load("", fs)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, []int64{9, 8, 7}, cfg.Amp.Phases)
	assert.True(t, cfg.Amp.Feedback)
	assert.Equal(t, 5*time.Millisecond, cfg.Network.IdleTimeout)
	assert.Equal(t, -1, cfg.Network.NATAddress)
}

func TestLoad_invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, env := range [][2]string{
		{"INTCODE_NETWORK__SIZE", "0"},
		{"INTCODE_NETWORK__NAT_ADDRESS", "3"},
		{"INTCODE_RUN__PIPE_SIZE", "-2"},
		{"INTCODE_NETWORK__IDLE_TIMEOUT", "0s"},
	} {
		t.Run(env[0], func(t *testing.T) {
			t.Setenv(env[0], env[1])
			_, err := config.Load("", nil)
			assert.Error(t, err)
		})
	}
}

func TestFlagKey(t *testing.T) {
	assert.Equal(t, "network.nat_address", config.FlagKey("nat"))
	assert.Equal(t, "run.pipe_size", config.FlagKey("pipe-size"))
	assert.Equal(t, "verbose", config.FlagKey("verbose"))
}
