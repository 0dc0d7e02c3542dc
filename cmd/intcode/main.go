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

	"github.com/db47h/intcode/vm"
	"github.com/pkg/errors"
)

func atExit(err error) {
	if err == nil {
		return
	}
	debug := cfg != nil && cfg.Debug
	if !debug {
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\n%+v\n", err)
	var f *vm.Fault
	if errors.As(err, &f) {
		fmt.Fprintf(os.Stderr, "PC: %d, word: %d, cause: %v\n", f.PC, f.Word, f.Cause())
	}
	os.Exit(1)
}

func main() {
	atExit(rootCmd.Execute())
}
