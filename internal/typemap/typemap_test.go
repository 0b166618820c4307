// SPDX-License-Identifier: Unlicense OR MIT

package typemap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolve(t *testing.T) {
	m := New(nil)
	tests := []struct {
		c   string
		exp Type
	}{
		{"void", Type{C: "void", Base: "void"}},
		{"GLenum", Type{C: "GLenum", Base: "GLenum", Go: "uint32"}},
		{"GLboolean", Type{C: "GLboolean", Base: "GLboolean", Go: "uint8", Boolean: true}},
		{"const GLchar *", Type{C: "const GLchar *", Base: "GLchar", Go: "uint8", Pointers: 1, Const: true}},
		{"const GLchar *const*", Type{C: "const GLchar *const*", Base: "GLchar", Go: "uint8", Pointers: 2, Const: true}},
		{"GLuint *", Type{C: "GLuint *", Base: "GLuint", Go: "uint32", Pointers: 1}},
		{"const void *", Type{C: "const void *", Base: "void", Pointers: 1, Const: true}},
		{"void **", Type{C: "void **", Base: "void", Pointers: 2}},
		{"struct _cl_context *", Type{C: "struct _cl_context *", Base: "struct _cl_context", Go: "uintptr", Pointers: 1}},
		{"EGLDisplay", Type{C: "EGLDisplay", Base: "EGLDisplay", Go: "uintptr"}},
		{"MysteryHandle", Type{C: "MysteryHandle", Base: "MysteryHandle", Go: "uintptr"}},
	}
	for _, test := range tests {
		got := m.Resolve(test.c)
		if diff := cmp.Diff(test.exp, got); diff != "" {
			t.Errorf("%q (-want +got):\n%s", test.c, diff)
		}
	}
}

func TestOverrides(t *testing.T) {
	m := New(map[string]string{"GLhandleARB": "uint32", "GLcustom": "int16"})
	if got := m.Resolve("GLhandleARB").Go; got != "uint32" {
		t.Errorf("expected override uint32 got %q", got)
	}
	if got := m.Resolve("GLcustom").Go; got != "int16" {
		t.Errorf("expected int16 got %q", got)
	}
	if got := New(nil).Resolve("GLhandleARB").Go; got != "uintptr" {
		t.Errorf("overrides leaked into the built-in table: %q", got)
	}
}

func TestClassify(t *testing.T) {
	m := New(nil)
	tests := []struct {
		c               string
		void, str, data bool
	}{
		{"void", true, false, false},
		{"const GLchar *", false, true, false},
		{"const GLubyte *", false, false, false},
		{"const char *", false, true, false},
		{"GLchar *", false, false, false},
		{"const void *", false, false, true},
		{"void *", false, false, true},
		{"void **", false, false, false},
		{"GLint", false, false, false},
	}
	for _, test := range tests {
		typ := m.Resolve(test.c)
		if typ.IsVoid() != test.void || typ.IsString() != test.str || typ.IsData() != test.data {
			t.Errorf("%q: got void=%v string=%v data=%v", test.c, typ.IsVoid(), typ.IsString(), typ.IsData())
		}
	}
}
