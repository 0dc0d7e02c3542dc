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
	"context"
	"fmt"

	"github.com/db47h/intcode/network"
	"github.com/db47h/intcode/vm"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var ampCmd = &cobra.Command{
	Use:   "amp [flags] [program]",
	Short: "Find the best phase settings for a series of amplifiers.",
	Long: `Run one copy of the program per phase setting, each one feeding the
next, and report the highest output signal over all orderings of the phases.
With --feedback, the last amplifier feeds the first one until they all halt.
With --exact, the phases are used in the given order only.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := loadProgram(args)
		if err != nil {
			return err
		}
		exact, _ := cmd.Flags().GetBool("exact")
		phases := make([]vm.Cell, len(cfg.Amp.Phases))
		for k, p := range cfg.Amp.Phases {
			phases[k] = vm.Cell(p)
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		log.WithFields(log.Fields{"phases": phases, "feedback": cfg.Amp.Feedback}).Debug("amplifiers")

		if exact {
			topology := network.Chain
			if cfg.Amp.Feedback {
				topology = network.Ring
			}
			signal, err := topology(ctx, img, phases)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signal)
			return nil
		}
		best, order, err := network.MaxSignal(ctx, img, phases, cfg.Amp.Feedback)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), best, order)
		return nil
	},
}

func init() {
	ampCmd.Flags().Int64Slice("phases", []int64{0, 1, 2, 3, 4}, "phase `settings`")
	ampCmd.Flags().Bool("feedback", false, "wire amplifiers in a feedback loop")
	ampCmd.Flags().Bool("exact", false, "use the phases in the given order")
	rootCmd.AddCommand(ampCmd)
}
