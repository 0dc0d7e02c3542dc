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
	"strconv"
	"strings"

	"github.com/db47h/intcode/lang/ascii"
	"github.com/db47h/intcode/vm"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const ctrlD = 4

var runCmd = &cobra.Command{
	Use:   "run [flags] [program]",
	Short: "Run an Intcode program.",
	Long: `Run an Intcode program.

Input values given with --input are sent first, followed by --line text
lines, then by whatever is read from stdin. In numeric mode, stdin values
are separated by white space or commas. In text mode (--ascii or --line),
stdin is sent as is, one character per value, and output values that are not
ASCII characters are printed on their own line when the program stops.

With --keys, the terminal is switched to raw mode and every keystroke found in
the run.keys configuration map sends the corresponding line. CTRL-D ends the
input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProgram,
}

func init() {
	runCmd.Flags().Int64SliceP("input", "i", nil, "input `values`")
	runCmd.Flags().StringArrayP("line", "l", nil, "text input `line`, can be repeated (implies --ascii)")
	runCmd.Flags().Bool("ascii", false, "text mode I/O")
	runCmd.Flags().Bool("no-stdin", false, "do not read input from stdin")
	runCmd.Flags().Bool("keys", false, "map keystrokes to input lines (implies --ascii)")
	runCmd.Flags().Int("pipe-size", 0, "input pipe size, 0 for unbounded")
	runCmd.Flags().Bool("dump", false, "dump machine state and memory upon exit")
	rootCmd.AddCommand(runCmd)
}

// numbers sends the integers read from r to w.
func numbers(w vm.OutPort, r io.Reader) error {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	for s.Scan() {
		for _, f := range strings.Split(s.Text(), ",") {
			if f == "" {
				continue
			}
			n, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				return errors.Wrapf(vm.ErrParse, "input %q", f)
			}
			if err = w.Send(vm.Cell(n)); err != nil {
				return err
			}
		}
	}
	return errors.Wrap(s.Err(), "read failed")
}

// text sends the characters read from r to w.
func text(w vm.OutPort, r io.Reader) error {
	ar := ascii.NewReader(r)
	for {
		v, err := ar.Recv()
		if err != nil {
			if errors.Is(err, vm.ErrClosed) {
				return nil
			}
			return err
		}
		if err = w.Send(v); err != nil {
			return err
		}
	}
}

// keystrokes sends the line mapped to each key read from r.
func keystrokes(w vm.OutPort, r io.Reader, keys map[string]string) error {
	br := bufio.NewReader(r)
	for {
		c, _, err := br.ReadRune()
		if err == io.EOF || c == ctrlD {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read failed")
		}
		line, ok := keys[string(c)]
		if !ok {
			log.WithField("key", strconv.QuoteRune(c)).Debug("unmapped key")
			continue
		}
		if err = ascii.Send(w, line); err != nil {
			return err
		}
	}
}

func runProgram(cmd *cobra.Command, args []string) (err error) {
	img, err := loadProgram(args)
	if err != nil {
		return err
	}
	values, _ := cmd.Flags().GetInt64Slice("input")
	lines, _ := cmd.Flags().GetStringArray("line")
	noStdin, _ := cmd.Flags().GetBool("no-stdin")
	keys, _ := cmd.Flags().GetBool("keys")
	dump, _ := cmd.Flags().GetBool("dump")
	textMode := cfg.Run.ASCII || len(lines) > 0 || keys

	stdin := cmd.InOrStdin()
	if keys {
		f, ok := stdin.(*os.File)
		if !ok || !term.IsTerminal(int(f.Fd())) {
			return errors.New("--keys requires stdin to be a terminal")
		}
		restore, err := setRawIO(f)
		if err != nil {
			return err
		}
		defer restore()
	}

	stdout := bufio.NewWriter(cmd.OutOrStdout())
	defer func() {
		if e := stdout.Flush(); err == nil {
			err = e
		}
	}()

	var (
		out vm.OutPort
		aw  *ascii.Writer
	)
	if textMode {
		aw = ascii.NewWriter(stdout)
		out = vm.OutFunc(func(v vm.Cell) error {
			if err := aw.Send(v); err != nil {
				return err
			}
			if v == '\n' {
				return stdout.Flush()
			}
			return nil
		})
	} else {
		out = vm.OutFunc(func(v vm.Cell) error {
			stdout.WriteString(strconv.FormatInt(int64(v), 10))
			stdout.WriteByte('\n')
			return stdout.Flush()
		})
	}

	w, r := vm.Pipe(cfg.Run.PipeSize)
	defer r.Close()
	go func() {
		defer w.Close()
		err := feed(w, values, lines)
		if err == nil && !noStdin {
			switch {
			case keys:
				err = keystrokes(w, stdin, cfg.Run.Keys)
			case textMode:
				err = text(w, stdin)
			default:
				err = numbers(w, stdin)
			}
		}
		if err != nil && !errors.Is(err, vm.ErrClosed) {
			log.WithError(err).Error("input failed")
		}
	}()

	i, err := vm.New(append([]vm.Option{vm.Program(img), vm.Input(r), vm.Output(out)}, vmOptions()...)...)
	if err != nil {
		return err
	}
	err = i.Run()
	log.WithFields(log.Fields{"state": i.State(), "instructions": i.InstructionCount()}).Debug("machine stopped")
	if textMode {
		for _, v := range aw.Values() {
			stdout.WriteString(strconv.FormatInt(int64(v), 10))
			stdout.WriteByte('\n')
		}
	}
	if dump {
		if e := dumpVM(i, stdout); err == nil {
			err = e
		}
	}
	return err
}

func feed(w vm.OutPort, values []int64, lines []string) error {
	for _, v := range values {
		if err := w.Send(vm.Cell(v)); err != nil {
			return err
		}
	}
	return ascii.Send(w, lines...)
}
