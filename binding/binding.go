// SPDX-License-Identifier: Unlicense OR MIT

// Package binding is the runtime support of the packages generated by
// glbind. It resolves native entry points into Go function variables and
// provides the conversions the generated wrappers use.
package binding

import (
	"fmt"
	"reflect"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/sirupsen/logrus"

	"gioui.org/glbind/internal/logging"
)

var log = logging.DefaultLogger.WithField(logging.LogSubsys, "binding")

// SymbolLoader resolves native symbols.
type SymbolLoader interface {
	// Lookup returns the address of the symbol name.
	Lookup(name string) (uintptr, error)
}

// Table maps native symbols to the function variables that call them.
type Table struct {
	mu      sync.Mutex
	entries []entry
}

type entry struct {
	name string
	fn   any
}

// Add registers fn, a pointer to a function variable, for the symbol name.
func (t *Table) Add(name string, fn any) {
	if v := reflect.ValueOf(fn); v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Func {
		panic(fmt.Sprintf("binding: %s: %T is not a pointer to a function", name, fn))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry{name: name, fn: fn})
}

// Load resolves every symbol of the table with loader. Function variables
// of symbols the loader cannot resolve are set to nil and their names
// returned.
func (t *Table) Load(loader SymbolLoader) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var missing []string
	for _, e := range t.entries {
		addr, err := loader.Lookup(e.name)
		if err != nil || addr == 0 {
			v := reflect.ValueOf(e.fn).Elem()
			v.Set(reflect.Zero(v.Type()))
			missing = append(missing, e.name)
			continue
		}
		register(e.fn, addr)
	}
	if len(missing) > 0 {
		log.WithFields(logrus.Fields{
			"missing": len(missing),
			"total":   len(t.entries),
		}).Debug("Unresolved symbols")
	}
	return missing
}

// Len returns the number of registered symbols.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// SliceData returns the address of the first element of s, or nil.
func SliceData[T any](s []T) unsafe.Pointer {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(s))
}

// Boolean converts b to a native boolean.
func Boolean[T ~uint8 | ~uint32 | ~int32](b bool) T {
	if b {
		return 1
	}
	return 0
}

// Pin pins the memory v refers to and returns its address. v may be a
// pointer, an unsafe.Pointer, a slice or a string; nil values yield nil.
func Pin(p *runtime.Pinner, v any) unsafe.Pointer {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	var ptr unsafe.Pointer
	switch rv.Kind() {
	case reflect.Pointer, reflect.UnsafePointer:
		ptr = rv.UnsafePointer()
	case reflect.Slice:
		if rv.Len() == 0 {
			return nil
		}
		ptr = rv.UnsafePointer()
	case reflect.String:
		s := rv.String()
		if s == "" {
			return nil
		}
		ptr = unsafe.Pointer(unsafe.StringData(s))
	default:
		panic(fmt.Sprintf("binding: cannot pin a %T", v))
	}
	if ptr == nil {
		return nil
	}
	p.Pin(ptr)
	return ptr
}

// SetLogLevel sets the logrus level of the binding logger, for example
// "trace" to log every native call.
func SetLogLevel(level string) error {
	return logging.SetLevel(level)
}

// LogCommand traces a native call. It does nothing unless the log level
// is trace.
func LogCommand(name string, ret any, args ...any) {
	if !logging.DefaultLogger.IsLevelEnabled(logrus.TraceLevel) {
		return
	}
	fields := logrus.Fields{"command": name}
	if len(args) > 0 {
		fields["args"] = fmt.Sprint(args...)
	}
	if ret != nil {
		fields["ret"] = ret
	}
	log.WithFields(fields).Trace("Call")
}

var (
	errorCheck atomic.Pointer[func(command string)]
	checking   atomic.Bool
)

// SetErrorCheck installs fn to run after every command, or removes the
// check if fn is nil. Commands called by fn itself are not checked.
//
// At most one check runs at a time: commands that complete on other
// goroutines while fn runs are not checked. Programs driving contexts from
// several threads should query errors explicitly after the commands they
// care about.
func SetErrorCheck(fn func(command string)) {
	if fn == nil {
		errorCheck.Store(nil)
		return
	}
	errorCheck.Store(&fn)
}

// CheckErrors runs the installed error check for command.
func CheckErrors(command string) {
	fn := errorCheck.Load()
	if fn == nil || !checking.CompareAndSwap(false, true) {
		return
	}
	defer checking.Store(false)
	(*fn)(command)
}

// Error is a native error code reported after a command.
type Error struct {
	Command string
	Code    uint32
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: error 0x%04X", e.Command, e.Code)
}

// PanicOnError returns an error check that panics with an Error when
// getError reports a code other than zero.
func PanicOnError(getError func() uint32) func(command string) {
	return func(command string) {
		if code := getError(); code != 0 {
			panic(Error{Command: command, Code: code})
		}
	}
}

// NotImplementedError is the panic value of a wrapper whose native
// function and aliases are all unresolved.
type NotImplementedError struct {
	Command string
	// Aliases reports whether the command has aliases.
	Aliases bool
}

func (e NotImplementedError) Error() string {
	if e.Aliases {
		return fmt.Sprintf("%s (and other aliases) are not implemented", e.Command)
	}
	return fmt.Sprintf("%s is not implemented", e.Command)
}
