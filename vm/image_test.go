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

package vm_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/db47h/intcode/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text string
		want vm.Image
	}{
		{"1,0,0,0,99", vm.Image{1, 0, 0, 0, 99}},
		{"  1 , -2,3\n", vm.Image{1, -2, 3}},
		{"99\r\n", vm.Image{99}},
		{"1125899906842624", vm.Image{1125899906842624}},
	}
	for _, test := range tests {
		img, err := vm.Parse(test.text)
		require.NoError(t, err, test.text)
		assert.Equal(t, test.want, img, test.text)
	}
}

func TestParse_errors(t *testing.T) {
	for _, text := range []string{"", "  \n", "1,,2", "1,x", "1,2,", "0x10", "9223372036854775808"} {
		_, err := vm.Parse(text)
		assert.ErrorIs(t, err, vm.ErrParse, "%q", text)
	}
}

func TestImage_WriteTo(t *testing.T) {
	var b strings.Builder
	n, err := vm.Image{1, -20, 300}.WriteTo(&b)
	require.NoError(t, err)
	assert.Equal(t, "1,-20,300", b.String())
	assert.Equal(t, int64(len("1,-20,300")), n)
	assert.Equal(t, "", vm.Image{}.String())

	// round trip
	img, err := vm.Parse(quine.String())
	require.NoError(t, err)
	assert.Equal(t, quine, img)
}

func TestLoadFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "prog.txt")
	require.NoError(t, os.WriteFile(name, []byte("104,42,99\n"), 0o644))
	img, err := vm.LoadFile(name)
	require.NoError(t, err)
	assert.Equal(t, vm.Image{104, 42, 99}, img)

	_, err = vm.LoadFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(name, []byte("104,forty-two"), 0o644))
	_, err = vm.LoadFile(name)
	assert.ErrorIs(t, err, vm.ErrParse)
	assert.Contains(t, err.Error(), name)
}

func TestImage_Clone(t *testing.T) {
	assert.Nil(t, vm.Image(nil).Clone())
	img := vm.Image{1, 2}
	c := img.Clone()
	c[0] = 3
	assert.Equal(t, vm.Cell(1), img[0])
}
