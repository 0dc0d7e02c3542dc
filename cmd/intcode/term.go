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

//go:build !windows

package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// setRawIO switches the terminal f to raw input and returns a function that
// restores its previous settings. Output processing is left alone so that
// newlines written by the program still return the carriage. We do not use the
// higher level functions of the term package because they do not allow the use
// of existing file descriptors.
func setRawIO(f *os.File) (func(), error) {
	fd := f.Fd()
	var tios unix.Termios
	if err := termios.Tcgetattr(fd, &tios); err != nil {
		return nil, errors.Wrap(err, "Tcgetattr failed")
	}
	a := tios
	a.Iflag &^= unix.IGNBRK | unix.ISTRIP | unix.IXON | unix.IXOFF | unix.ICRNL
	a.Iflag |= unix.BRKINT | unix.IGNPAR
	a.Lflag &^= unix.ICANON | unix.IEXTEN | unix.ECHO
	a.Cc[unix.VMIN] = 1
	a.Cc[unix.VTIME] = 0
	if err := termios.Tcsetattr(fd, termios.TCSANOW, &a); err != nil {
		// well, try to restore as it was if it errors
		termios.Tcsetattr(fd, termios.TCSANOW, &tios)
		return nil, errors.Wrap(err, "Tcsetattr failed")
	}
	return func() {
		termios.Tcsetattr(fd, termios.TCSANOW, &tios)
	}, nil
}
