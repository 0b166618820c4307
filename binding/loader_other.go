// SPDX-License-Identifier: Unlicense OR MIT

//go:build !darwin && !freebsd && !linux && !windows

package binding

import (
	"runtime"

	"github.com/pkg/errors"
)

var register = func(fptr any, addr uintptr) {
	panic("binding: native calls are not supported on " + runtime.GOOS)
}

// Library is an opened native library.
type Library struct{}

// Open reports that native libraries cannot be loaded on this platform.
// Packages still build, and InitWith accepts other symbol loaders.
func Open(names []string, procAddress string) (*Library, error) {
	return nil, errors.Errorf("binding: native libraries are not supported on %s", runtime.GOOS)
}

func (l *Library) Lookup(name string) (uintptr, error) {
	return 0, errors.Errorf("binding: symbol %s not found", name)
}

func (l *Library) Close() error {
	return nil
}
