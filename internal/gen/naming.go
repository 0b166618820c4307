// SPDX-License-Identifier: Unlicense OR MIT

package gen

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var enumPrefixes = []string{"GL_", "EGL_", "GLX_", "WGL_"}

// funcPrefixes are tried longest first so that glX wins over gl.
var funcPrefixes = []string{"glX", "egl", "wgl", "gl"}

// reserved holds the names a generated parameter must not shadow.
var reserved = map[string]bool{
	// Keywords.
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,

	// Predeclared identifiers.
	"any": true, "append": true, "bool": true, "byte": true, "cap": true,
	"clear": true, "close": true, "complex": true, "complex64": true, "complex128": true,
	"copy": true, "delete": true, "error": true, "false": true, "float32": true,
	"float64": true, "imag": true, "int": true, "int8": true, "int16": true,
	"int32": true, "int64": true, "iota": true, "len": true, "make": true,
	"max": true, "min": true, "new": true, "nil": true, "panic": true,
	"print": true, "println": true, "real": true, "recover": true, "rune": true,
	"string": true, "true": true, "uint": true, "uint8": true, "uint16": true,
	"uint32": true, "uint64": true, "uintptr": true,

	// Identifiers of the generated code.
	"binding": true, "runtime": true, "unsafe": true, "ret": true, "pinner": true,
}

// packageNames are the package level identifiers of procs.go.
var packageNames = map[string]bool{
	"Init":        true,
	"InitWith":    true,
	"libraries":   true,
	"procAddress": true,
	"procs":       true,
}

var goos = map[string]bool{
	"aix": true, "android": true, "darwin": true, "dragonfly": true, "freebsd": true,
	"hurd": true, "illumos": true, "ios": true, "js": true, "linux": true,
	"nacl": true, "netbsd": true, "openbsd": true, "plan9": true, "solaris": true,
	"wasip1": true, "windows": true, "zos": true,
}

var goarch = map[string]bool{
	"386": true, "amd64": true, "amd64p32": true, "arm": true, "armbe": true,
	"arm64": true, "arm64be": true, "loong64": true, "mips": true, "mipsle": true,
	"mips64": true, "mips64le": true, "mips64p32": true, "mips64p32le": true, "ppc": true,
	"ppc64": true, "ppc64le": true, "riscv": true, "riscv64": true, "s390": true,
	"s390x": true, "sparc": true, "sparc64": true, "wasm": true,
}

// trimPrefixFold removes prefix from s, ignoring case.
func trimPrefixFold(s, prefix string) (string, bool) {
	if len(s) <= len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

// funcName returns the Go name of the command symbol.
func funcName(symbol, prefix string) string {
	name, _ := trimPrefixFold(symbol, prefix)
	return exported(name)
}

// enumName returns the Go name of the enumerant symbol.
func enumName(symbol string) string {
	name := symbol
	for _, p := range enumPrefixes {
		if strings.HasPrefix(name, p) && len(name) > len(p) {
			name = name[len(p):]
			break
		}
	}
	return exported(name)
}

// exported makes name a valid exported identifier: a leading digit is
// prefixed with an underscore.
func exported(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	switch {
	case size == 0:
		return name
	case unicode.IsDigit(r):
		return "_" + name
	case unicode.IsLower(r):
		return string(unicode.ToUpper(r)) + name[size:]
	}
	return name
}

// paramName returns the Go name of a command parameter.
func paramName(name string) string {
	if reserved[name] {
		return "x" + name
	}
	return name
}

// fileName returns the file an interface is generated into. Names whose
// last element the go command would read as a build constraint get an
// _ext suffix.
func fileName(iface string) string {
	name := strings.ToLower(iface)
	parts := strings.Split(name, "_")
	if last := parts[len(parts)-1]; goos[last] || goarch[last] || last == "test" {
		name += "_ext"
	}
	return name + ".go"
}

// Namer names the Go symbols generated for registry symbols, for
// documentation cross references.
type Namer struct{}

func (Namer) ConstName(symbol string) string {
	return enumName(symbol)
}

func (Namer) FuncName(symbol string) string {
	for _, p := range funcPrefixes {
		if name, ok := trimPrefixFold(symbol, p); ok {
			return exported(name)
		}
	}
	return symbol
}
