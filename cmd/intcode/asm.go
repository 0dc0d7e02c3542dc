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
	"bufio"
	"io"
	"os"

	"github.com/db47h/intcode/asm"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var asmCmd = &cobra.Command{
	Use:   "asm [flags] source",
	Short: "Assemble a program.",
	Long: `Assemble a program and write it in the comma separated text format
accepted by the run command. See the documentation of the asm package for the
assembler syntax.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "open failed")
		}
		defer f.Close()
		img, err := asm.Assemble(args[0], bufio.NewReader(f))
		if err != nil {
			return err
		}
		log.WithField("size", len(img)).Debug("assembled")

		var w io.Writer = cmd.OutOrStdout()
		if name, _ := cmd.Flags().GetString("output"); name != "" {
			of, err := os.Create(name)
			if err != nil {
				return errors.Wrap(err, "create failed")
			}
			defer of.Close()
			w = of
		}
		if _, err = img.WriteTo(w); err != nil {
			return err
		}
		_, err = w.Write([]byte{'\n'})
		return errors.Wrap(err, "write failed")
	},
}

var disasmCmd = &cobra.Command{
	Use:   "disasm [program]",
	Short: "Disassemble a program.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := loadProgram(args)
		if err != nil {
			return err
		}
		w := bufio.NewWriter(cmd.OutOrStdout())
		if err = asm.DisassembleAll(img, 0, w); err != nil {
			return err
		}
		return errors.Wrap(w.Flush(), "write failed")
	},
}

func init() {
	asmCmd.Flags().StringP("output", "o", "", "output `file` (default stdout)")
	rootCmd.AddCommand(asmCmd, disasmCmd)
}
