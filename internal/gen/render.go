// SPDX-License-Identifier: Unlicense OR MIT

package gen

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"gioui.org/glbind/internal/manpage"
	"gioui.org/glbind/registry"
)

func (p *pkg) render() map[string][]byte {
	out := make(map[string][]byte)
	for _, f := range p.files {
		out[fileName(f.iface)] = p.renderFile(f)
	}
	if len(p.groups) > 0 {
		out["types.go"] = p.renderTypes()
	}
	out["procs.go"] = p.renderProcs()
	return out
}

func (p *pkg) header(w *bytes.Buffer, deps ...string) {
	fmt.Fprintf(w, "// Code generated by glbind from %s. DO NOT EDIT.\n\n", filepath.Base(p.spec.Path))
	fmt.Fprintf(w, "package %s\n\n", p.spec.Name)
	if len(deps) == 0 {
		return
	}
	w.WriteString("import (\n")
	for _, imp := range deps {
		fmt.Fprintf(w, "\t%q\n", imp)
	}
	w.WriteString(")\n\n")
}

func (p *pkg) renderFile(f *file) []byte {
	var deps []string
	pinned, needUnsafe := false, false
	for _, c := range f.commands {
		pinned = pinned || c.pinned()
		needUnsafe = needUnsafe || c.usesUnsafe()
	}
	if pinned {
		deps = append(deps, "runtime")
	}
	if needUnsafe {
		deps = append(deps, "unsafe")
	}
	if len(f.commands) > 0 {
		deps = append(deps, BindingImport)
	}
	w := new(bytes.Buffer)
	p.header(w, deps...)

	if len(f.enums) > 0 {
		w.WriteString("const (\n")
		for i, e := range f.enums {
			if i > 0 {
				w.WriteString("\n")
			}
			p.renderConst(w, e)
		}
		w.WriteString(")\n\n")
	}
	if len(f.commands) > 0 {
		w.WriteString("var (\n")
		for _, c := range f.commands {
			fmt.Fprintf(w, "\tp%s %s\n", c.symbol, c.signature())
		}
		w.WriteString(")\n")
	}
	for _, c := range f.commands {
		w.WriteString("\n")
		p.renderCommand(w, c)
		if c.pinned() {
			w.WriteString("\n")
			p.renderPinned(w, c)
		}
	}
	return w.Bytes()
}

func (p *pkg) renderConst(w *bytes.Buffer, e *constant) {
	fmt.Fprintf(w, "\t// %s is the value of %s.\n", e.name, e.symbol)
	var notes []string
	if e.alias != "" {
		notes = append(notes, fmt.Sprintf("Alias of %s.", e.alias))
	}
	notes = append(notes, requirementNote("Required by", e.required))
	w.WriteString("\t//\n")
	for _, n := range notes {
		fmt.Fprintf(w, "\t// %s\n", n)
	}
	fmt.Fprintf(w, "\t%s = %s\n", e.name, e.value)
}

func requirementNote(verb string, reqs []registry.Requirement) string {
	var names []string
	for _, r := range reqs {
		n := r.Name
		if r.Profile != "" {
			n += " (" + r.Profile + " profile)"
		}
		names = append(names, n)
	}
	return fmt.Sprintf("%s %s.", verb, strings.Join(names, ", "))
}

func sentence(s string) string {
	switch {
	case s == "":
		return s
	case strings.HasSuffix(s, "."), strings.HasSuffix(s, "!"), strings.HasSuffix(s, "?"):
		return s
	}
	return s + "."
}

func (p *pkg) renderDoc(w *bytes.Buffer, c *command) {
	fmt.Fprintf(w, "// %s calls %s.\n", c.name, c.symbol)
	w.WriteString("//\n")
	for _, l := range manpage.Wrap(sentence(c.doc.Summary), p.width) {
		fmt.Fprintf(w, "// %s\n", l)
	}
	if len(c.doc.Params) > 0 {
		w.WriteString("//\n// Parameters:\n//\n")
		for _, pd := range c.doc.Params {
			for i, l := range pd.Lines {
				if i == 0 {
					fmt.Fprintf(w, "//   - %s: %s\n", pd.Name, l)
				} else {
					fmt.Fprintf(w, "//     %s\n", l)
				}
			}
		}
	}
	var notes []string
	if len(c.aliases) > 0 {
		var names []string
		for _, a := range c.aliases {
			names = append(names, a.symbol)
		}
		notes = append(notes, fmt.Sprintf("Falls back to %s.", strings.Join(names, ", ")))
	}
	if v := c.cmd.VecEquiv.Name; v != "" {
		notes = append(notes, fmt.Sprintf("Vector equivalent: %s.", v))
	}
	for _, g := range c.cmd.Glx {
		notes = append(notes, fmt.Sprintf("GLX %s opcode %s.", g.Type, g.Opcode))
	}
	notes = append(notes, requirementNote("Required by", c.required))
	if len(c.removed) > 0 {
		notes = append(notes, requirementNote("Removed by", c.removed))
	}
	w.WriteString("//\n")
	for _, n := range notes {
		fmt.Fprintf(w, "// %s\n", n)
	}
}

func (c *command) wrapParams(pinned bool) string {
	var params []string
	for _, p := range c.params {
		t := p.wrapType()
		if pinned && p.pinnable() {
			t = "any"
		}
		params = append(params, p.name+" "+t)
	}
	return strings.Join(params, ", ")
}

func (c *command) wrapResult() string {
	if c.ret.void() {
		return ""
	}
	return " " + c.ret.wrapType()
}

func (p *pkg) renderCommand(w *bytes.Buffer, c *command) {
	p.renderDoc(w, c)
	fmt.Fprintf(w, "func %s(%s)%s {\n", c.name, c.wrapParams(false), c.wrapResult())
	if !c.ret.void() {
		fmt.Fprintf(w, "\tvar ret %s\n", c.ret.rawType())
	}
	var args, logArgs []string
	for _, pr := range c.params {
		args = append(args, pr.arg())
		logArgs = append(logArgs, ", "+pr.name)
	}
	logRet := "nil"
	assign := ""
	if !c.ret.void() {
		logRet = "ret"
		assign = "ret = "
	}
	w.WriteString("\tswitch {\n")
	for _, a := range append([]*command{c}, c.aliases...) {
		fmt.Fprintf(w, "\tcase p%s != nil:\n", a.symbol)
		fmt.Fprintf(w, "\t\t%sp%s(%s)\n", assign, a.symbol, strings.Join(args, ", "))
		fmt.Fprintf(w, "\t\tbinding.LogCommand(%q, %s%s)\n", a.symbol, logRet, strings.Join(logArgs, ""))
	}
	w.WriteString("\tdefault:\n")
	fmt.Fprintf(w, "\t\tpanic(binding.NotImplementedError{Command: %q, Aliases: %v})\n", c.symbol, len(c.aliases) > 0)
	w.WriteString("\t}\n")
	fmt.Fprintf(w, "\tbinding.CheckErrors(%q)\n", c.symbol)
	if !c.ret.void() {
		fmt.Fprintf(w, "\treturn %s\n", c.ret.convert("ret"))
	}
	w.WriteString("}\n")
}

func (p *pkg) renderPinned(w *bytes.Buffer, c *command) {
	var pinned, args []string
	for _, pr := range c.params {
		if pr.pinnable() {
			pinned = append(pinned, pr.name)
			args = append(args, fmt.Sprintf("binding.Pin(&pinner, %s)", pr.name))
		} else {
			args = append(args, pr.name)
		}
	}
	fmt.Fprintf(w, "// %sPinned is like %s, but takes %s as Go values\n", c.name, c.name, strings.Join(pinned, " and "))
	w.WriteString("// pinned for the duration of the call.\n")
	fmt.Fprintf(w, "func %sPinned(%s)%s {\n", c.name, c.wrapParams(true), c.wrapResult())
	w.WriteString("\tvar pinner runtime.Pinner\n")
	w.WriteString("\tdefer pinner.Unpin()\n")
	ret := ""
	if !c.ret.void() {
		ret = "return "
	}
	fmt.Fprintf(w, "\t%s%s(%s)\n", ret, c.name, strings.Join(args, ", "))
	w.WriteString("}\n")
}

func (p *pkg) renderTypes() []byte {
	w := new(bytes.Buffer)
	p.header(w)
	names := maps.Keys(p.groups)
	slices.Sort(names)
	for i, name := range names {
		if i > 0 {
			w.WriteString("\n")
		}
		fmt.Fprintf(w, "// %s is the type of the %s enumerant group.\n", name, name)
		fmt.Fprintf(w, "type %s %s\n", name, p.groups[name])
	}
	return w.Bytes()
}

func (p *pkg) renderProcs() []byte {
	w := new(bytes.Buffer)
	fmt.Fprintf(w, "// Code generated by glbind from %s. DO NOT EDIT.\n\n", filepath.Base(p.spec.Path))
	fmt.Fprintf(w, "// Package %s binds the native %s API (%s).\n", p.spec.Name, p.spec.Name, strings.Join(p.spec.APIs, ", "))
	fmt.Fprintf(w, "package %s\n\n", p.spec.Name)
	fmt.Fprintf(w, "import (\n\t\"runtime\"\n\n\t%q\n)\n\n", BindingImport)

	w.WriteString("var libraries = map[string][]string{\n")
	systems := maps.Keys(p.spec.Libraries)
	slices.Sort(systems)
	for _, sys := range systems {
		var libs []string
		for _, l := range p.spec.Libraries[sys] {
			libs = append(libs, fmt.Sprintf("%q", l))
		}
		fmt.Fprintf(w, "\t%q: {%s},\n", sys, strings.Join(libs, ", "))
	}
	w.WriteString("}\n\n")
	fmt.Fprintf(w, "const procAddress = %q\n\n", p.spec.ProcAddress)

	w.WriteString("var procs binding.Table\n\n")
	w.WriteString("func init() {\n")
	for _, f := range p.files {
		for _, c := range f.commands {
			fmt.Fprintf(w, "\tprocs.Add(%q, &p%s)\n", c.symbol, c.symbol)
		}
	}
	w.WriteString("}\n\n")

	w.WriteString(`// Init opens the native library of the running platform and resolves the
// commands with it. It returns the names of the commands the library does
// not provide; calling them panics unless an alias is available.
func Init() ([]string, error) {
	lib, err := binding.Open(libraries[runtime.GOOS], procAddress)
	if err != nil {
		return nil, err
	}
	return InitWith(lib), nil
}

// InitWith resolves the commands with loader and returns the names of the
// missing ones.
func InitWith(loader binding.SymbolLoader) []string {
	return procs.Load(loader)
}
`)
	return w.Bytes()
}
