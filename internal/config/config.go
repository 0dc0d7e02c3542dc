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

// Package config loads the settings of the intcode command.
//
// Settings come from, in increasing order of precedence: built-in defaults, a
// YAML file, INTCODE_ environment variables and command line flags. Nested
// keys are separated by a double underscore in environment variable names:
// INTCODE_NETWORK__SIZE sets network.size.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables holding settings.
const EnvPrefix = "INTCODE_"

// Config file names looked up in the current directory.
var fileNames = []string{"intcode.yaml", "intcode.yml"}

// Config holds all settings.
type Config struct {
	Verbose bool          `koanf:"verbose"`
	Trace   bool          `koanf:"trace"`
	Debug   bool          `koanf:"debug"`
	Program string        `koanf:"program"` // program file used when none is given on the command line
	Run     RunConfig     `koanf:"run"`
	Amp     AmpConfig     `koanf:"amp"`
	Network NetworkConfig `koanf:"network"`

	// File is the configuration file that was loaded, if any.
	File string `koanf:"-"`
}

// RunConfig holds the settings of the run command.
type RunConfig struct {
	ASCII    bool              `koanf:"ascii"`     // text mode I/O
	PipeSize int               `koanf:"pipe_size"` // 0 for unbounded
	Keys     map[string]string `koanf:"keys"`      // keystroke to input line mapping in raw terminal mode
}

// AmpConfig holds the settings of the amp command.
type AmpConfig struct {
	Phases   []int64 `koanf:"phases"`
	Feedback bool    `koanf:"feedback"`
}

// NetworkConfig holds the settings of the net command.
type NetworkConfig struct {
	Size        int           `koanf:"size"`
	NATAddress  int           `koanf:"nat_address"`
	IdleTimeout time.Duration `koanf:"idle_timeout"`
	StopAtNAT   bool          `koanf:"stop_at_nat"`
}

var defaults = map[string]interface{}{
	"verbose":              false,
	"trace":                false,
	"debug":                false,
	"run.ascii":            false,
	"run.pipe_size":        0,
	"amp.phases":           []int64{0, 1, 2, 3, 4},
	"amp.feedback":         false,
	"network.size":         50,
	"network.nat_address":  255,
	"network.idle_timeout": "50ms",
	"network.stop_at_nat":  false,
}

// flagKeys maps command line flags to their configuration key when the two
// differ beyond dashes and underscores.
var flagKeys = map[string]string{
	"ascii":       "run.ascii",
	"pipe-size":   "run.pipe_size",
	"phases":      "amp.phases",
	"feedback":    "amp.feedback",
	"size":        "network.size",
	"nat":         "network.nat_address",
	"idle":        "network.idle_timeout",
	"stop-at-nat": "network.stop_at_nat",
}

func findFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range fileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// FlagKey returns the configuration key set by the named flag.
func FlagKey(name string) string {
	if k, ok := flagKeys[name]; ok {
		return k
	}
	return strings.ReplaceAll(name, "-", "_")
}

func flagValue(flags *pflag.FlagSet, f *pflag.Flag) interface{} {
	if f.Value.Type() == "int64Slice" {
		v, _ := flags.GetInt64Slice(f.Name)
		return v
	}
	return posflag.FlagVal(flags, f)
}

// Load loads the configuration. If cfgFile is empty, intcode.yaml or
// intcode.yml is loaded from the current directory if present. Only flags from
// flags that were explicitly set override other settings; flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}

	cfgFile = findFile(cfgFile)
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "error reading config file %s", cfgFile)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load environment")
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return FlagKey(f.Name), flagValue(flags, f)
		}), nil); err != nil {
			return nil, errors.Wrap(err, "failed to load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}
	cfg.File = cfgFile
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings for consistency.
func (c *Config) Validate() error {
	if c.Run.PipeSize < 0 {
		return errors.Errorf("run.pipe_size: invalid size %d", c.Run.PipeSize)
	}
	if c.Network.Size <= 0 {
		return errors.Errorf("network.size: invalid size %d", c.Network.Size)
	}
	if c.Network.NATAddress >= 0 && c.Network.NATAddress < c.Network.Size {
		return errors.Errorf("network.nat_address: %d is a machine address", c.Network.NATAddress)
	}
	if c.Network.IdleTimeout <= 0 {
		return errors.Errorf("network.idle_timeout: invalid duration %v", c.Network.IdleTimeout)
	}
	if len(c.Amp.Phases) == 0 {
		return errors.New("amp.phases: no phase settings")
	}
	return nil
}
