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

package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/db47h/intcode/internal/config"
	"github.com/db47h/intcode/vm"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at link time.
var Version string

// cfg holds the settings loaded before any command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "intcode",
	Short:         "Run, assemble and wire together Intcode programs.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		c, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = c
		switch {
		case cfg.Trace:
			log.SetLevel(log.TraceLevel)
		case cfg.Verbose || cfg.Debug:
			log.SetLevel(log.DebugLevel)
		}
		if cfg.File != "" {
			log.WithField("file", cfg.File).Debug("configuration loaded")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintln(cmd.OutOrStdout(), "intcode", version())
			return nil
		}
		return cmd.Help()
	},
}

func version() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.Main.Version
	}
	return "(unknown version)"
}

func init() {
	log.SetOutput(os.Stderr)
	rootCmd.Flags().Bool("version", false, "report version of this executable")
	rootCmd.PersistentFlags().String("config", "", "configuration `file` (default intcode.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Bool("trace", false, "log every executed instruction")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug diagnostics")
}

// programFile returns the program file named on the command line, or the one
// from the configuration.
func programFile(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Program != "" {
		return cfg.Program, nil
	}
	return "", errors.New("no program file given")
}

func loadProgram(args []string) (vm.Image, error) {
	name, err := programFile(args)
	if err != nil {
		return nil, err
	}
	img, err := vm.LoadFile(name)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"file": name, "size": len(img)}).Debug("program loaded")
	return img, nil
}

// vmOptions returns the machine options common to all commands.
func vmOptions() []vm.Option {
	if cfg.Trace {
		return []vm.Option{vm.Trace(log.StandardLogger())}
	}
	return nil
}
