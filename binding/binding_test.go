// SPDX-License-Identifier: Unlicense OR MIT

package binding

import (
	"errors"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"gioui.org/glbind/internal/logging"
)

type mapLoader map[string]uintptr

func (l mapLoader) Lookup(name string) (uintptr, error) {
	if addr, ok := l[name]; ok {
		return addr, nil
	}
	return 0, errors.New("not found")
}

// fakeRegister replaces the native registration with functions recording
// the address they were bound to.
func fakeRegister(t *testing.T) *[]uintptr {
	t.Helper()
	var calls []uintptr
	old := register
	register = func(fptr any, addr uintptr) {
		v := reflect.ValueOf(fptr).Elem()
		typ := v.Type()
		v.Set(reflect.MakeFunc(typ, func(args []reflect.Value) []reflect.Value {
			calls = append(calls, addr)
			out := make([]reflect.Value, typ.NumOut())
			for i := range out {
				out[i] = reflect.Zero(typ.Out(i))
			}
			return out
		}))
	}
	t.Cleanup(func() { register = old })
	return &calls
}

func TestTableLoad(t *testing.T) {
	calls := fakeRegister(t)
	var (
		clearFn  func(mask uint32)
		getErrFn func() uint32
		missFn   func()
	)
	var tab Table
	tab.Add("glClear", &clearFn)
	tab.Add("glGetError", &getErrFn)
	tab.Add("glMissing", &missFn)
	if n := tab.Len(); n != 3 {
		t.Fatalf("expected 3 symbols, got %d", n)
	}

	got := tab.Load(mapLoader{"glClear": 0x10, "glGetError": 0x20, "glZero": 0})
	if diff := cmp.Diff([]string{"glMissing"}, got); diff != "" {
		t.Errorf("missing (-want +got):\n%s", diff)
	}
	if clearFn == nil || getErrFn == nil || missFn != nil {
		t.Fatalf("unexpected resolution: glClear %v, glGetError %v, glMissing %v", clearFn != nil, getErrFn != nil, missFn != nil)
	}
	clearFn(0x4000)
	if code := getErrFn(); code != 0 {
		t.Errorf("expected zero result, got %d", code)
	}
	if diff := cmp.Diff([]uintptr{0x10, 0x20}, *calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}

	// Reloading with a smaller library clears stale functions.
	got = tab.Load(mapLoader{"glGetError": 0x30})
	if diff := cmp.Diff([]string{"glClear", "glMissing"}, got); diff != "" {
		t.Errorf("missing (-want +got):\n%s", diff)
	}
	if clearFn != nil {
		t.Error("glClear still resolved")
	}
}

func TestTableLoadZeroAddress(t *testing.T) {
	fakeRegister(t)
	var fn func()
	var tab Table
	tab.Add("glZero", &fn)
	if got := tab.Load(mapLoader{"glZero": 0}); len(got) != 1 || fn != nil {
		t.Errorf("expected a zero address to count as missing, got %v", got)
	}
}

func TestTableAddInvalid(t *testing.T) {
	for _, v := range []any{nil, 42, new(int), func() {}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Add(%T): expected a panic", v)
				}
			}()
			var tab Table
			tab.Add("glFoo", v)
		}()
	}
}

func TestSliceData(t *testing.T) {
	if p := SliceData[uint32](nil); p != nil {
		t.Errorf("expected nil for a nil slice, got %v", p)
	}
	if p := SliceData([]float32{}); p != nil {
		t.Errorf("expected nil for an empty slice, got %v", p)
	}
	s := []float32{1, 2}
	if p := SliceData(s); p != unsafe.Pointer(&s[0]) {
		t.Errorf("expected the first element address")
	}
}

func TestBoolean(t *testing.T) {
	if Boolean[uint8](true) != 1 || Boolean[uint8](false) != 0 {
		t.Error("uint8 conversion")
	}
	type EGLBoolean uint32
	if Boolean[EGLBoolean](true) != 1 {
		t.Error("named type conversion")
	}
}

func TestPin(t *testing.T) {
	var p runtime.Pinner
	defer p.Unpin()
	x := new(int64)
	s := []byte{1, 2, 3}
	str := strings.Repeat("a", 3)
	tests := []struct {
		name string
		v    any
		exp  unsafe.Pointer
	}{
		{"nil", nil, nil},
		{"nil pointer", (*int)(nil), nil},
		{"pointer", x, unsafe.Pointer(x)},
		{"unsafe pointer", unsafe.Pointer(x), unsafe.Pointer(x)},
		{"slice", s, unsafe.Pointer(&s[0])},
		{"empty slice", []byte{}, nil},
		{"string", str, unsafe.Pointer(unsafe.StringData(str))},
		{"empty string", "", nil},
	}
	for _, tc := range tests {
		if got := Pin(&p, tc.v); got != tc.exp {
			t.Errorf("%s: expected %v got %v", tc.name, tc.exp, got)
		}
	}
}

func TestPinInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	var p runtime.Pinner
	defer p.Unpin()
	Pin(&p, 42)
}

func TestLogCommand(t *testing.T) {
	hook := test.NewLocal(logging.DefaultLogger)
	defer hook.Reset()
	level := logging.DefaultLogger.GetLevel()
	defer logging.DefaultLogger.SetLevel(level)

	logging.DefaultLogger.SetLevel(logrus.DebugLevel)
	LogCommand("glClear", nil, uint32(0x4000))
	if n := len(hook.AllEntries()); n != 0 {
		t.Fatalf("expected no entries below trace level, got %d", n)
	}

	logging.DefaultLogger.SetLevel(logrus.TraceLevel)
	LogCommand("glIsTexture", uint8(1), uint32(7))
	e := hook.LastEntry()
	if e == nil {
		t.Fatal("no entry logged")
	}
	exp := logrus.Fields{
		logging.LogSubsys: "binding",
		"command":         "glIsTexture",
		"args":            "7",
		"ret":             uint8(1),
	}
	if diff := cmp.Diff(exp, e.Data); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}
}

func TestCheckErrors(t *testing.T) {
	defer SetErrorCheck(nil)
	// No check installed.
	CheckErrors("glClear")

	var checked []string
	SetErrorCheck(func(command string) {
		checked = append(checked, command)
		// Commands called by the check are not checked again.
		CheckErrors("glGetError")
	})
	CheckErrors("glClear")
	CheckErrors("glFlush")
	if diff := cmp.Diff([]string{"glClear", "glFlush"}, checked); diff != "" {
		t.Errorf("checked (-want +got):\n%s", diff)
	}

	SetErrorCheck(nil)
	CheckErrors("glFinish")
	if len(checked) != 2 {
		t.Errorf("check ran after removal")
	}
}

func TestCheckErrorsOneAtATime(t *testing.T) {
	defer SetErrorCheck(nil)
	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var checked []string
	SetErrorCheck(func(command string) {
		mu.Lock()
		checked = append(checked, command)
		mu.Unlock()
		if command == "glClear" {
			close(entered)
			<-release
		}
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		CheckErrors("glClear")
	}()
	<-entered
	// Skipped while the check of glClear runs.
	CheckErrors("glFlush")
	close(release)
	<-done
	CheckErrors("glFinish")
	if diff := cmp.Diff([]string{"glClear", "glFinish"}, checked); diff != "" {
		t.Errorf("checked (-want +got):\n%s", diff)
	}
}

func TestPanicOnError(t *testing.T) {
	defer SetErrorCheck(nil)
	code := uint32(0)
	SetErrorCheck(PanicOnError(func() uint32 { return code }))
	CheckErrors("glClear")

	code = 0x0500
	defer func() {
		err, ok := recover().(Error)
		if !ok {
			t.Fatalf("expected an Error panic, got %v", err)
		}
		if exp := "glBindTexture: error 0x0500"; err.Error() != exp {
			t.Errorf("expected %q got %q", exp, err.Error())
		}
	}()
	CheckErrors("glBindTexture")
}

func TestNotImplementedError(t *testing.T) {
	tests := []struct {
		err NotImplementedError
		exp string
	}{
		{NotImplementedError{Command: "glClear"}, "glClear is not implemented"},
		{NotImplementedError{Command: "glFramebufferTextureFaceARB", Aliases: true}, "glFramebufferTextureFaceARB (and other aliases) are not implemented"},
	}
	for _, tc := range tests {
		if got := tc.err.Error(); got != tc.exp {
			t.Errorf("expected %q got %q", tc.exp, got)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	level := logging.DefaultLogger.GetLevel()
	defer logging.DefaultLogger.SetLevel(level)
	if err := SetLogLevel("trace"); err != nil {
		t.Fatal(err)
	}
	if !logging.DefaultLogger.IsLevelEnabled(logrus.TraceLevel) {
		t.Error("trace level not enabled")
	}
	if err := SetLogLevel("loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
