// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux

package binding

import (
	"strings"
	"testing"
)

func TestOpenMissing(t *testing.T) {
	if _, err := Open(nil, ""); err == nil || !strings.Contains(err.Error(), "no library for linux") {
		t.Errorf("expected a no library error, got %v", err)
	}
	_, err := Open([]string{"libglbind-missing.so.1", "libglbind-missing.so"}, "")
	if err == nil || !strings.HasPrefix(err.Error(), "binding: open libglbind-missing.so.1, libglbind-missing.so") {
		t.Errorf("expected an open error naming the libraries, got %v", err)
	}
}

func TestOpenLibc(t *testing.T) {
	lib, err := Open([]string{"libglbind-missing.so", "libc.so.6"}, "glbindNoSuchLoader")
	if err != nil {
		t.Skipf("libc unavailable: %v", err)
	}
	defer lib.Close()
	if lib.getProc != nil {
		t.Error("resolved a loader entry point that does not exist")
	}
	if _, err := lib.Lookup("glbindNoSuchSymbol"); err == nil {
		t.Error("expected an error for a missing symbol")
	}

	var strlen func(s string) int
	var tab Table
	tab.Add("strlen", &strlen)
	if missing := tab.Load(lib); len(missing) != 0 {
		t.Fatalf("unresolved symbols %v", missing)
	}
	if n := strlen("hello"); n != 5 {
		t.Errorf("expected 5 got %d", n)
	}
}
