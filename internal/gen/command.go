// SPDX-License-Identifier: Unlicense OR MIT

package gen

import (
	"fmt"
	"strings"

	"gioui.org/glbind/internal/manpage"
	"gioui.org/glbind/internal/typemap"
	"gioui.org/glbind/registry"
)

// kind is how a parameter crosses from the wrapper to the native call.
type kind int

const (
	// scalar values are passed through, converted from their group type.
	scalar kind = iota
	// boolean values are bool in the wrapper.
	boolean
	// str is a NUL-terminated input string.
	str
	// slice is a typed pointer, passed as the address of the first element.
	slice
	// pointer is an untyped or multi-level pointer.
	pointer
)

type param struct {
	// symbol is the registry parameter name.
	symbol string
	name   string
	typ    typemap.Type
	kind   kind
	// group is the Go group type of the value or slice element, or "".
	group string
}

// result is a command return value.
type result struct {
	typ   typemap.Type
	kind  kind
	group string
}

type command struct {
	cmd    *registry.Command
	symbol string
	name   string
	params []param
	ret    result

	required []registry.Requirement
	removed  []registry.Requirement
	// aliases are the emitted members of the alias family with the
	// same native signature.
	aliases []*command
	doc     manpage.Doc
}

func newParam(p registry.ProtoOrParam, types *typemap.Map) param {
	t := types.Resolve(p.CType())
	return param{
		symbol: p.Name,
		name:   paramName(p.Name),
		typ:    t,
		kind:   classify(t),
	}
}

func classify(t typemap.Type) kind {
	switch {
	case t.IsString():
		return str
	case t.Pointers == 1 && t.Go != "":
		return slice
	case t.Pointers > 0:
		return pointer
	case t.Boolean:
		return boolean
	}
	return scalar
}

func newResult(p registry.ProtoOrParam, types *typemap.Map) result {
	t := types.Resolve(p.CType())
	r := result{typ: t, kind: classify(t)}
	switch {
	case p.Group == "String" && t.Pointers == 1:
		r.kind = str
	case r.kind == slice:
		// Returned pointers carry no length.
		r.kind = pointer
	}
	return r
}

// elem returns the wrapper type of a value of t, or of the slice element.
func elem(t typemap.Type, group string) string {
	if group != "" {
		return group
	}
	return t.Go
}

// rawType returns the type of p in the native function signature.
func (p param) rawType() string {
	switch p.kind {
	case str:
		return "string"
	case slice, pointer:
		return "unsafe.Pointer"
	}
	return p.typ.Go
}

// wrapType returns the type of p in the wrapper signature.
func (p param) wrapType() string {
	switch p.kind {
	case boolean:
		return "bool"
	case str:
		return "string"
	case slice:
		return "[]" + elem(p.typ, p.group)
	case pointer:
		return "unsafe.Pointer"
	}
	return elem(p.typ, p.group)
}

// arg converts the wrapper parameter to its native argument.
func (p param) arg() string {
	switch p.kind {
	case boolean:
		return fmt.Sprintf("binding.Boolean[%s](%s)", p.typ.Go, p.name)
	case slice:
		return fmt.Sprintf("binding.SliceData(%s)", p.name)
	case scalar:
		if p.group != "" {
			return fmt.Sprintf("%s(%s)", p.typ.Go, p.name)
		}
	}
	return p.name
}

// pinnable reports whether p is untyped data a caller may pass as a Go
// object.
func (p param) pinnable() bool {
	return p.kind == pointer && p.typ.IsData()
}

func (r result) void() bool {
	return r.typ.IsVoid()
}

func (r result) rawType() string {
	switch r.kind {
	case str:
		return "string"
	case pointer:
		return "unsafe.Pointer"
	}
	return r.typ.Go
}

func (r result) wrapType() string {
	switch r.kind {
	case boolean:
		return "bool"
	case str:
		return "string"
	case pointer:
		return "unsafe.Pointer"
	}
	return elem(r.typ, r.group)
}

// convert converts the native return value v to the wrapper type.
func (r result) convert(v string) string {
	switch {
	case r.kind == boolean:
		return v + " != 0"
	case r.kind == scalar && r.group != "":
		return fmt.Sprintf("%s(%s)", r.group, v)
	}
	return v
}

// signature is the native function type of c.
func (c *command) signature() string {
	var params []string
	for _, p := range c.params {
		params = append(params, p.name+" "+p.rawType())
	}
	sig := "func(" + strings.Join(params, ", ") + ")"
	if !c.ret.void() {
		sig += " " + c.ret.rawType()
	}
	return sig
}

// rawTypes identifies the native signature regardless of parameter names.
func (c *command) rawTypes() string {
	var b strings.Builder
	for _, p := range c.params {
		b.WriteString(p.rawType())
		b.WriteByte(',')
	}
	if !c.ret.void() {
		b.WriteString(c.ret.rawType())
	}
	return b.String()
}

func (c *command) pinned() bool {
	for _, p := range c.params {
		if p.pinnable() {
			return true
		}
	}
	return false
}

func (c *command) paramRefs() []manpage.ParamRef {
	refs := make([]manpage.ParamRef, len(c.params))
	for i, p := range c.params {
		refs[i] = manpage.ParamRef{
			ImportName: p.symbol,
			ImplName:   p.name,
			TypeName:   p.wrapType(),
		}
	}
	return refs
}

func (c *command) usesUnsafe() bool {
	for _, p := range c.params {
		if p.rawType() == "unsafe.Pointer" {
			return true
		}
	}
	return c.ret.rawType() == "unsafe.Pointer"
}
