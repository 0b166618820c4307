// SPDX-License-Identifier: Unlicense OR MIT

//go:build darwin || freebsd || linux

package binding

import (
	"runtime"
	"strings"

	"github.com/ebitengine/purego"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var register = purego.RegisterFunc

// Library is an opened native library.
type Library struct {
	name   string
	handle uintptr
	// getProc is the library's GetProcAddress entry point, if any.
	getProc func(name string) uintptr
}

// Open opens the first of names that loads. If procAddress is not empty,
// symbols the library does not export are resolved through the entry point
// of that name.
func Open(names []string, procAddress string) (*Library, error) {
	if len(names) == 0 {
		return nil, errors.Errorf("binding: no library for %s", runtime.GOOS)
	}
	var lastErr error
	for _, name := range names {
		h, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			log.WithField("library", name).WithError(err).Debug("Cannot open")
			lastErr = err
			continue
		}
		lib := &Library{name: name, handle: h}
		if procAddress != "" {
			if addr, err := purego.Dlsym(h, procAddress); err == nil && addr != 0 {
				register(&lib.getProc, addr)
			}
		}
		log.WithFields(logrus.Fields{
			"library":     name,
			"procAddress": lib.getProc != nil,
		}).Debug("Opened")
		return lib, nil
	}
	return nil, errors.Wrapf(lastErr, "binding: open %s", strings.Join(names, ", "))
}

// Lookup returns the address of name.
func (l *Library) Lookup(name string) (uintptr, error) {
	addr, err := purego.Dlsym(l.handle, name)
	if err == nil && addr != 0 {
		return addr, nil
	}
	if l.getProc != nil {
		if addr := l.getProc(name); addr != 0 {
			return addr, nil
		}
	}
	return 0, errors.Errorf("%s: symbol %s not found", l.name, name)
}

// Close releases the library. Function variables resolved from it must not
// be called afterwards.
func (l *Library) Close() error {
	if err := purego.Dlclose(l.handle); err != nil {
		return errors.Wrap(err, l.name)
	}
	return nil
}
