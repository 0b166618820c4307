// SPDX-License-Identifier: Unlicense OR MIT

package binding

import (
	"strings"

	"github.com/ebitengine/purego"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	syscall "golang.org/x/sys/windows"
)

var register = purego.RegisterFunc

// Library is an opened native library.
type Library struct {
	dll *syscall.DLL
	// getProc is the library's GetProcAddress entry point, if any.
	getProc func(name string) uintptr
}

// Open opens the first of names that loads. If procAddress is not empty,
// symbols the library does not export are resolved through the entry point
// of that name, such as wglGetProcAddress.
func Open(names []string, procAddress string) (*Library, error) {
	if len(names) == 0 {
		return nil, errors.New("binding: no library for windows")
	}
	var lastErr error
	for _, name := range names {
		handle, err := syscall.LoadLibraryEx(name, 0, syscall.LOAD_LIBRARY_SEARCH_DEFAULT_DIRS)
		if err != nil {
			log.WithField("library", name).WithError(err).Debug("Cannot open")
			lastErr = err
			continue
		}
		lib := &Library{dll: &syscall.DLL{Name: name, Handle: handle}}
		if procAddress != "" {
			if p, err := lib.dll.FindProc(procAddress); err == nil {
				register(&lib.getProc, p.Addr())
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
	if p, err := l.dll.FindProc(name); err == nil {
		return p.Addr(), nil
	}
	if l.getProc != nil {
		// Some drivers return small sentinels instead of NULL.
		switch addr := l.getProc(name); addr {
		case 0, 1, 2, 3, ^uintptr(0):
		default:
			return addr, nil
		}
	}
	return 0, errors.Errorf("%s: symbol %s not found", l.dll.Name, name)
}

// Close releases the library. Function variables resolved from it must not
// be called afterwards.
func (l *Library) Close() error {
	return errors.Wrap(l.dll.Release(), l.dll.Name)
}
