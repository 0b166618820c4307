// SPDX-License-Identifier: Unlicense OR MIT

// Package typemap maps the C types of the Khronos registries to Go types.
package typemap

import (
	"strings"
)

// Type is a resolved C declaration type.
type Type struct {
	// C is the declaration text, for example "const GLchar *const*".
	C string
	// Base is the C base type name, "GLchar" above.
	Base string
	// Go is the Go type of Base, "" for void.
	Go string
	// Pointers is the pointer indirection count.
	Pointers int
	// Const reports whether the pointed-to data is const.
	Const bool
	// Boolean reports whether Base carries a C boolean.
	Boolean bool
}

// Map resolves C types. The zero value is not usable; use New.
type Map struct {
	types map[string]string
}

var builtin = map[string]string{
	"void": "",

	"GLenum":     "uint32",
	"GLbitfield": "uint32",
	"GLuint":     "uint32",
	"GLint":      "int32",
	"GLsizei":    "int32",
	"GLfixed":    "int32",
	"GLclampx":   "int32",
	"GLboolean":  "uint8",
	"GLbyte":     "int8",
	"GLubyte":    "uint8",
	"GLchar":     "uint8",
	"GLcharARB":  "uint8",
	"GLshort":    "int16",
	"GLushort":   "uint16",
	"GLhalf":     "uint16",
	"GLhalfARB":  "uint16",
	"GLhalfNV":   "uint16",
	"GLfloat":    "float32",
	"GLclampf":   "float32",
	"GLdouble":   "float64",
	"GLclampd":   "float64",

	"GLint64":          "int64",
	"GLint64EXT":       "int64",
	"GLuint64":         "uint64",
	"GLuint64EXT":      "uint64",
	"GLintptr":         "int",
	"GLintptrARB":      "int",
	"GLsizeiptr":       "int",
	"GLsizeiptrARB":    "int",
	"GLvdpauSurfaceNV": "int",

	"GLsync":               "uintptr",
	"GLhandleARB":          "uintptr",
	"GLeglImageOES":        "uintptr",
	"GLeglClientBufferEXT": "uintptr",
	"GLDEBUGPROC":          "uintptr",
	"GLDEBUGPROCARB":       "uintptr",
	"GLDEBUGPROCKHR":       "uintptr",
	"GLDEBUGPROCAMD":       "uintptr",
	"GLVULKANPROCNV":       "uintptr",
	"struct _cl_context":   "uintptr",
	"struct _cl_event":     "uintptr",

	"char":          "uint8",
	"int":           "int32",
	"unsigned int":  "uint32",
	"long":          "int",
	"unsigned long": "uint",
	"float":         "float32",
	"int32_t":       "int32",
	"int64_t":       "int64",
	"float_t":       "float32",

	"EGLint":                     "int32",
	"EGLBoolean":                 "uint32",
	"EGLenum":                    "uint32",
	"EGLAttrib":                  "int",
	"EGLAttribKHR":               "int",
	"EGLTime":                    "uint64",
	"EGLTimeKHR":                 "uint64",
	"EGLTimeNV":                  "uint64",
	"EGLuint64KHR":               "uint64",
	"EGLuint64NV":                "uint64",
	"EGLnsecsANDROID":            "int64",
	"EGLsizeiANDROID":            "int",
	"EGLNativeFileDescriptorKHR": "int32",

	"EGLDisplay":        "uintptr",
	"EGLConfig":         "uintptr",
	"EGLSurface":        "uintptr",
	"EGLContext":        "uintptr",
	"EGLClientBuffer":   "uintptr",
	"EGLImage":          "uintptr",
	"EGLImageKHR":       "uintptr",
	"EGLSync":           "uintptr",
	"EGLSyncKHR":        "uintptr",
	"EGLSyncNV":         "uintptr",
	"EGLStreamKHR":      "uintptr",
	"EGLDeviceEXT":      "uintptr",
	"EGLOutputLayerEXT": "uintptr",
	"EGLOutputPortEXT":  "uintptr",
	"EGLLabelKHR":       "uintptr",
	"EGLObjectKHR":      "uintptr",

	"EGLNativeDisplayType":                     "uintptr",
	"EGLNativeWindowType":                      "uintptr",
	"EGLNativePixmapType":                      "uintptr",
	"EGLDEBUGPROCKHR":                          "uintptr",
	"EGLGetBlobFuncANDROID":                    "uintptr",
	"EGLSetBlobFuncANDROID":                    "uintptr",
	"__eglMustCastToProperFunctionPointerType": "uintptr",

	"Bool":        "uint32",
	"BOOL":        "uint32",
	"Display":     "uintptr",
	"Window":      "uintptr",
	"Pixmap":      "uintptr",
	"Colormap":    "uintptr",
	"Font":        "uintptr",
	"Status":      "int32",
	"XVisualInfo": "uintptr",

	"GLXContext":   "uintptr",
	"GLXFBConfig":  "uintptr",
	"GLXDrawable":  "uintptr",
	"GLXPixmap":    "uintptr",
	"GLXWindow":    "uintptr",
	"GLXPbuffer":   "uintptr",
	"GLXContextID": "uintptr",

	"GLXVideoDeviceNV":        "uint32",
	"GLXVideoSourceSGIX":      "uintptr",
	"GLXHyperpipeNetworkSGIX": "uintptr",
	"GLXFBConfigSGIX":         "uintptr",
	"GLXPbufferSGIX":          "uintptr",
	"__GLXextFuncPtr":         "uintptr",

	"HDC":         "uintptr",
	"HGLRC":       "uintptr",
	"HANDLE":      "uintptr",
	"HPBUFFERARB": "uintptr",
	"HPBUFFEREXT": "uintptr",

	"HPVIDEODEV":           "uintptr",
	"HPGPUNV":              "uintptr",
	"HGPUNV":               "uintptr",
	"HVIDEOOUTPUTDEVICENV": "uintptr",
	"HVIDEOINPUTDEVICENV":  "uintptr",

	"LPVOID": "uintptr",
	"PROC":   "uintptr",
	"DWORD":  "uint32",
	"UINT":   "uint32",
	"USHORT": "uint16",
	"INT":    "int32",
	"INT32":  "int32",
	"INT64":  "int64",
	"FLOAT":  "float32",
	"VOID":   "",
}

var booleans = map[string]bool{
	"GLboolean":  true,
	"EGLBoolean": true,
	"BOOL":       true,
	"Bool":       true,
}

// New returns a Map with the built-in table extended and overridden by
// overrides.
func New(overrides map[string]string) *Map {
	m := &Map{types: make(map[string]string, len(builtin)+len(overrides))}
	for k, v := range builtin {
		m.types[k] = v
	}
	for k, v := range overrides {
		m.types[k] = v
	}
	return m
}

// Resolve parses the C declaration type ctype.
func (m *Map) Resolve(ctype string) Type {
	t := Type{C: ctype}
	decl := strings.TrimSpace(ctype)
	t.Pointers = strings.Count(decl, "*")
	base := strings.ReplaceAll(decl, "*", " ")
	var words []string
	for _, w := range strings.Fields(base) {
		if w == "const" {
			t.Const = t.Const || t.Pointers > 0
			continue
		}
		words = append(words, w)
	}
	t.Base = strings.Join(words, " ")
	if t.Base == "" {
		t.Base = "void"
	}
	t.Go = m.goType(t.Base)
	t.Boolean = booleans[t.Base]
	return t
}

func (m *Map) goType(base string) string {
	if g, ok := m.types[base]; ok {
		return g
	}
	// Unknown handles and opaque types are passed as machine words.
	return "uintptr"
}

// IsVoid reports whether t is a plain void.
func (t Type) IsVoid() bool {
	return t.Pointers == 0 && t.Go == ""
}

// IsString reports whether t is a NUL-terminated input string. Constant
// GLubyte pointers are byte arrays.
func (t Type) IsString() bool {
	if t.Pointers != 1 || !t.Const {
		return false
	}
	switch t.Base {
	case "GLchar", "GLcharARB", "char":
		return true
	}
	return false
}

// IsData reports whether t is an untyped data pointer (void*).
func (t Type) IsData() bool {
	return t.Pointers == 1 && t.Go == ""
}
