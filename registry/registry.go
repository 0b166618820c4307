// SPDX-License-Identifier: Unlicense OR MIT

// Package registry decodes the Khronos XML API registries (gl.xml, egl.xml,
// glx.xml and wgl.xml) and answers the questions a binding generator asks
// about them: which commands alias each other, which features require a
// symbol, and which enumerant groups exist.
package registry

import (
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

type Registry struct {
	Comment    string       `xml:"comment"`
	Types      []*Type      `xml:"types>type"`
	Groups     []*Group     `xml:"groups>group"`
	Enums      []*Enums     `xml:"enums"`
	Commands   []*Command   `xml:"commands>command"`
	Features   []*Feature   `xml:"feature"`
	Extensions []*Extension `xml:"extensions>extension"`

	commands map[string]*Command
	enums    map[string]*Enum
	groups   map[string]bool
	families map[string][]*Command
	targets  map[string]bool
	required map[string]map[string][]Requirement
	removed  map[string]map[string][]Requirement
	vendors  []string
}

type NamedElement struct {
	Name string `xml:"name,attr"`
}

type NamedElementList []NamedElement

type Type struct {
	Name     string `xml:"name,attr"`
	API      string `xml:"api,attr"`
	Requires string `xml:"requires,attr"`
	Comment  string `xml:"comment,attr"`
	InnerXML string `xml:",innerxml"`
	TypeName string `xml:"name"`
}

type Group struct {
	NamedElement
	Enum NamedElementList `xml:"enum"`
}

type Enums struct {
	Namespace string  `xml:"namespace,attr"`
	Group     string  `xml:"group,attr"`
	Type      string  `xml:"type,attr"` // "bitmask"
	Vendor    string  `xml:"vendor,attr"`
	Comment   string  `xml:"comment,attr"`
	Enum      []*Enum `xml:"enum"`
}

type Enum struct {
	NamedElement
	Value   string `xml:"value,attr"`
	Type    string `xml:"type,attr"` // "u" or "ull"
	API     string `xml:"api,attr"`
	Alias   string `xml:"alias,attr"`
	Group   string `xml:"group,attr"`
	Comment string `xml:"comment,attr"`
}

type Command struct {
	Comment  string         `xml:"comment,attr"`
	Proto    ProtoOrParam   `xml:"proto"`
	Params   []ProtoOrParam `xml:"param"`
	Alias    NamedElement   `xml:"alias"`
	VecEquiv NamedElement   `xml:"vecequiv"`
	Glx      []GlxProto     `xml:"glx"`
}

// ProtoOrParam is a command prototype or parameter: a C declaration with
// the type and name marked up.
type ProtoOrParam struct {
	InnerXML string `xml:",innerxml"`
	Group    string `xml:"group,attr"`
	Len      string `xml:"len,attr"`
	Class    string `xml:"class,attr"`
	Ptype    string `xml:"ptype"`
	Name     string `xml:"name"`
}

// GlxProto is the GLX protocol encoding of a command.
type GlxProto struct {
	Type    string `xml:"type,attr"`
	Opcode  string `xml:"opcode,attr"`
	Name    string `xml:"name,attr"`
	Comment string `xml:"comment,attr"`
}

type Feature struct {
	NamedElement
	API     string              `xml:"api,attr"`
	Number  string              `xml:"number,attr"`
	Require RequireOrRemoveList `xml:"require"`
	Remove  RequireOrRemoveList `xml:"remove"`
}

type Extension struct {
	NamedElement
	Supported string              `xml:"supported,attr"`
	Require   RequireOrRemoveList `xml:"require"`
	Remove    RequireOrRemoveList `xml:"remove"`
}

type RequireOrRemoveList []RequireOrRemove

type RequireOrRemove struct {
	API     string           `xml:"api,attr"` // for extensions only
	Profile string           `xml:"profile,attr"`
	Comment string           `xml:"comment,attr"`
	Enum    NamedElementList `xml:"enum"`
	Command NamedElementList `xml:"command"`
}

// Requirement names an interface (feature or extension) that requires or
// removes a symbol.
type Requirement struct {
	Name string
	// API is the feature API, or the extension's supported APIs.
	API       string
	Profile   string
	Extension bool
}

// Load decodes the registry at path.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "registry")
	}
	defer f.Close()
	r, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "registry: %s", path)
	}
	return r, nil
}

// Decode reads a registry document and indexes it.
func Decode(r io.Reader) (*Registry, error) {
	reg := new(Registry)
	if err := xml.NewDecoder(r).Decode(reg); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if err := reg.index(); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *Registry) index() error {
	r.commands = make(map[string]*Command)
	r.enums = make(map[string]*Enum)
	r.groups = make(map[string]bool)
	r.families = make(map[string][]*Command)
	r.required = make(map[string]map[string][]Requirement)
	r.removed = make(map[string]map[string][]Requirement)
	for i, c := range r.Commands {
		if c.Proto.Name == "" {
			return errors.Errorf("command %d has no name", i)
		}
		if _, exists := r.commands[c.Proto.Name]; !exists {
			r.commands[c.Proto.Name] = c
		}
	}
	for _, g := range r.Groups {
		r.groups[g.Name] = true
	}
	for _, e := range r.Enums {
		for _, g := range splitList(e.Group, ",") {
			r.groups[g] = true
		}
		for _, v := range e.Enum {
			for _, g := range splitList(v.Group, ",") {
				r.groups[g] = true
			}
			if _, exists := r.enums[v.Name]; !exists {
				r.enums[v.Name] = v
			}
		}
	}
	r.targets = make(map[string]bool)
	for _, c := range r.Commands {
		if c.Alias.Name != "" {
			r.targets[c.Alias.Name] = true
		}
	}
	for _, c := range r.Commands {
		root := r.aliasRoot(c)
		if root == "" {
			continue
		}
		r.families[root] = append(r.families[root], c)
	}
	vendors := make(map[string]bool)
	for _, e := range r.Extensions {
		parts := strings.SplitN(e.Name, "_", 3)
		if len(parts) == 3 && parts[1] != "" {
			vendors[parts[1]] = true
		}
	}
	for v := range vendors {
		r.vendors = append(r.vendors, v)
	}
	slices.Sort(r.vendors)
	return nil
}

// aliasRoot follows alias declarations from c and returns the name of the
// family root, or "" if c neither aliases nor is aliased.
func (r *Registry) aliasRoot(c *Command) string {
	name := c.Proto.Name
	seen := map[string]bool{name: true}
	for {
		cmd := r.commands[name]
		if cmd == nil || cmd.Alias.Name == "" || seen[cmd.Alias.Name] {
			break
		}
		name = cmd.Alias.Name
		seen[name] = true
	}
	if name != c.Proto.Name {
		return name
	}
	// c may be the target of other aliases.
	if r.targets[name] {
		return name
	}
	return ""
}

// Command returns the command named name, or nil.
func (r *Registry) Command(name string) *Command {
	return r.commands[name]
}

// Enum returns the first enumerant named name, or nil.
func (r *Registry) Enum(name string) *Enum {
	return r.enums[name]
}

// EnumFor returns the enumerant named name that applies to one of apis:
// either untagged or tagged with one of them.
func (r *Registry) EnumFor(name string, apis []string) *Enum {
	for _, e := range r.Enums {
		for _, v := range e.Enum {
			if v.Name != name {
				continue
			}
			if v.API == "" || slices.Contains(apis, v.API) {
				return v
			}
		}
	}
	return nil
}

// HasGroup reports whether name is a declared enumerant group.
func (r *Registry) HasGroup(name string) bool {
	return r.groups[name]
}

// Aliases returns the members of cmd's alias family other than cmd itself,
// in registry order.
func (r *Registry) Aliases(cmd *Command) []*Command {
	root := r.aliasRoot(cmd)
	if root == "" {
		return nil
	}
	var aliases []*Command
	for _, c := range r.families[root] {
		if c != cmd {
			aliases = append(aliases, c)
		}
	}
	return aliases
}

// RequiredBy returns the interfaces requiring the command or enumerant
// name for one of apis: features first, then extensions.
func (r *Registry) RequiredBy(name string, apis []string) []Requirement {
	key := strings.Join(apis, "|")
	idx, ok := r.required[key]
	if !ok {
		idx = r.buildIndex(apis, false)
		r.required[key] = idx
	}
	return idx[name]
}

// RemovedBy returns the interfaces removing name for one of apis.
func (r *Registry) RemovedBy(name string, apis []string) []Requirement {
	key := strings.Join(apis, "|")
	idx, ok := r.removed[key]
	if !ok {
		idx = r.buildIndex(apis, true)
		r.removed[key] = idx
	}
	return idx[name]
}

func (r *Registry) buildIndex(apis []string, remove bool) map[string][]Requirement {
	want := make(map[string]bool)
	for _, a := range apis {
		want[a] = true
	}
	idx := make(map[string][]Requirement)
	add := func(req Requirement, lists RequireOrRemoveList) {
		seen := make(map[string]bool)
		for _, l := range lists {
			if l.API != "" && !want[l.API] {
				continue
			}
			req := req
			if l.Profile != "" {
				req.Profile = l.Profile
			}
			for _, names := range []NamedElementList{l.Command, l.Enum} {
				for _, n := range names {
					if seen[n.Name] {
						continue
					}
					seen[n.Name] = true
					idx[n.Name] = append(idx[n.Name], req)
				}
			}
		}
	}
	for _, f := range r.Features {
		if !want[f.API] {
			continue
		}
		lists := f.Require
		if remove {
			lists = f.Remove
		}
		add(Requirement{Name: f.Name, API: f.API}, lists)
	}
	for _, e := range r.Extensions {
		if !e.supports(want) {
			continue
		}
		lists := e.Require
		if remove {
			lists = e.Remove
		}
		add(Requirement{Name: e.Name, API: e.Supported, Extension: true}, lists)
	}
	return idx
}

func (e *Extension) supports(apis map[string]bool) bool {
	for _, s := range splitList(e.Supported, "|") {
		if apis[s] {
			return true
		}
	}
	return false
}

// ExtensionVendors returns the sorted vendor postfixes of the registry
// extensions, such as ARB, EXT or NV.
func (r *Registry) ExtensionVendors() []string {
	return r.vendors
}

// ExtensionPostfix returns the vendor postfix name ends with, or "".
// The longest matching vendor wins.
func (r *Registry) ExtensionPostfix(name string) string {
	best := ""
	for _, v := range r.vendors {
		if strings.HasSuffix(name, v) && len(v) > len(best) && len(v) < len(name) {
			best = v
		}
	}
	return best
}

// Name returns the command name.
func (c *Command) Name() string {
	return c.Proto.Name
}

// CType returns the C type of the declaration with the name removed, for
// example "const GLchar *".
func (p ProtoOrParam) CType() string {
	decl := p.InnerXML
	if i := strings.Index(decl, "<name>"); i >= 0 {
		decl = decl[:i]
	}
	decl = strings.Replace(decl, "<ptype>", "", 1)
	decl = strings.Replace(decl, "</ptype>", "", 1)
	return strings.Join(strings.Fields(decl), " ")
}

func splitList(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
