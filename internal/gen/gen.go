// SPDX-License-Identifier: Unlicense OR MIT

// Package gen generates Go bindings from the Khronos API registries.
//
// Every registry becomes a package with one file per feature or extension,
// a types.go holding the enumerant group types, and a procs.go that loads
// the native entry points through the binding package.
package gen

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/imports"

	"gioui.org/glbind/internal/config"
	"gioui.org/glbind/internal/logging"
	"gioui.org/glbind/internal/manpage"
	"gioui.org/glbind/internal/typemap"
	"gioui.org/glbind/registry"
)

// BindingImport is the import path of the runtime support package.
const BindingImport = "gioui.org/glbind/binding"

// DocSource documents commands.
type DocSource interface {
	Lookup(command string, params []manpage.ParamRef) manpage.Doc
}

// DocsFunc returns the documentation source for the commands of reg.
type DocsFunc func(reg *registry.Registry) (DocSource, error)

// Stats summarizes a generation run.
type Stats struct {
	Commands int
	Enums    int
	Files    int
	// Docs counts the commands documented by each source.
	Docs map[manpage.Source]int
}

func (s *Stats) add(o Stats) {
	s.Commands += o.Commands
	s.Enums += o.Enums
	s.Files += o.Files
	if s.Docs == nil {
		s.Docs = make(map[manpage.Source]int)
	}
	for k, v := range o.Docs {
		s.Docs[k] += v
	}
}

type Generator struct {
	cfg   *config.Config
	docs  DocsFunc
	types *typemap.Map
	log   logrus.FieldLogger
}

// New returns a generator for cfg. A nil logger selects the default.
func New(cfg *config.Config, docs DocsFunc, logger logrus.FieldLogger) *Generator {
	if logger == nil {
		logger = logging.DefaultLogger.WithField(logging.LogSubsys, "gen")
	}
	return &Generator{
		cfg:   cfg,
		docs:  docs,
		types: typemap.New(cfg.Types),
		log:   logger,
	}
}

// Run loads and generates the configured registries in order. If only is
// not empty, it names the registries to generate.
func (g *Generator) Run(only []string) (Stats, error) {
	for _, name := range only {
		if _, ok := g.cfg.Lookup(name); !ok {
			return Stats{}, errors.Errorf("unknown registry %q", name)
		}
	}
	var total Stats
	for _, spec := range g.cfg.Registry {
		if len(only) > 0 && !slices.Contains(only, spec.Name) {
			continue
		}
		reg, err := registry.Load(g.cfg.Resolve(spec.Path))
		if err != nil {
			return Stats{}, err
		}
		st, err := g.Generate(spec, reg)
		if err != nil {
			return Stats{}, err
		}
		total.add(st)
	}
	return total, nil
}

// Generate writes the package of one registry.
func (g *Generator) Generate(spec config.Registry, reg *registry.Registry) (Stats, error) {
	log := g.log.WithField("package", spec.Name)
	docs, err := g.docs(reg)
	if err != nil {
		return Stats{}, err
	}
	p := g.build(spec, reg, docs, log)
	dir := filepath.Join(g.cfg.Resolve(g.cfg.OutDir), spec.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Stats{}, errors.Wrap(err, "gen")
	}
	st := Stats{Docs: make(map[manpage.Source]int)}
	out := p.render()
	names := make([]string, 0, len(out))
	for name := range out {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		path := filepath.Join(dir, name)
		src, err := format(path, out[name])
		if err != nil {
			return Stats{}, err
		}
		if err := os.WriteFile(path, src, 0644); err != nil {
			return Stats{}, errors.Wrap(err, "gen")
		}
		st.Files++
	}
	for _, f := range p.files {
		st.Enums += len(f.enums)
		st.Commands += len(f.commands)
		for _, c := range f.commands {
			st.Docs[c.doc.Source]++
		}
	}
	log.WithFields(logrus.Fields{
		"commands": st.Commands,
		"enums":    st.Enums,
		"files":    st.Files,
	}).Info("Generated package")
	return st, nil
}

func format(path string, src []byte) ([]byte, error) {
	out, err := imports.Process(path, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "format %s", filepath.Base(path))
	}
	return out, nil
}

// pkg is the model of a generated package.
type pkg struct {
	spec  config.Registry
	reg   *registry.Registry
	width int
	files []*file
	// groups maps the emitted group types to their underlying type.
	groups map[string]string
}

// file is the output of one feature or extension.
type file struct {
	iface    string
	enums    []*constant
	commands []*command
}

type constant struct {
	symbol   string
	name     string
	value    string
	alias    string
	required []registry.Requirement
}

func (g *Generator) newPkg(spec config.Registry, reg *registry.Registry) *pkg {
	p := &pkg{spec: spec, reg: reg, width: g.cfg.WrapWidth, groups: make(map[string]string)}
	if p.width <= 0 {
		p.width = 120
	}
	return p
}

func (g *Generator) newCommand(spec config.Registry, reg *registry.Registry, rc *registry.Command) *command {
	sym := rc.Name()
	c := &command{
		cmd:      rc,
		symbol:   sym,
		name:     funcName(sym, spec.Prefix),
		ret:      newResult(rc.Proto, g.types),
		required: reg.RequiredBy(sym, spec.APIs),
		removed:  reg.RemovedBy(sym, spec.APIs),
	}
	for _, rp := range rc.Params {
		c.params = append(c.params, newParam(rp, g.types))
	}
	return c
}

// groupOf returns the group type of a value of type t and kind k, or "" if
// the value keeps its plain type. names holds the command names the type
// must not collide with.
func (p *pkg) groupOf(group string, t typemap.Type, k kind, names map[string]bool) string {
	if group == "" || group == "Boolean" || !p.reg.HasGroup(group) {
		return ""
	}
	if k != scalar && k != slice {
		return ""
	}
	if names[group] || packageNames[group] || t.Go == "" {
		return ""
	}
	base, ok := p.groups[group]
	if !ok {
		p.groups[group] = t.Go
		return group
	}
	if base != t.Go {
		return ""
	}
	return group
}

func (p *pkg) assignGroups(c *command, names map[string]bool) {
	for i := range c.params {
		pr := &c.params[i]
		pr.group = p.groupOf(c.cmd.Params[i].Group, pr.typ, pr.kind, names)
	}
	c.ret.group = p.groupOf(c.cmd.Proto.Group, c.ret.typ, c.ret.kind, names)
}

func (g *Generator) build(spec config.Registry, reg *registry.Registry, docs DocSource, log logrus.FieldLogger) *pkg {
	p := g.newPkg(spec, reg)
	files := make(map[string]*file)
	fileFor := func(iface string) *file {
		f, ok := files[iface]
		if !ok {
			f = &file{iface: iface}
			files[iface] = f
			p.files = append(p.files, f)
		}
		return f
	}

	// Commands, placed with their first requirement.
	var commands []*command
	bySymbol := make(map[string]*command)
	names := make(map[string]bool)
	for _, rc := range reg.Commands {
		sym := rc.Name()
		if bySymbol[sym] != nil {
			continue
		}
		c := g.newCommand(spec, reg, rc)
		if len(c.required) == 0 {
			log.WithField("command", sym).Debug("Not required, skipping")
			continue
		}
		if names[c.name] || packageNames[c.name] {
			log.WithField("command", sym).Warn("Duplicate Go name, skipping")
			continue
		}
		names[c.name] = true
		bySymbol[sym] = c
		commands = append(commands, c)
		f := fileFor(c.required[0].Name)
		f.commands = append(f.commands, c)
	}

	// Group types, unless they collide with a function.
	for _, c := range commands {
		p.assignGroups(c, names)
	}

	// Alias chains and documentation.
	for _, c := range commands {
		for _, a := range reg.Aliases(c.cmd) {
			ac := bySymbol[a.Name()]
			if ac == nil {
				continue
			}
			if ac.rawTypes() != c.rawTypes() {
				log.WithFields(logrus.Fields{
					"command": c.symbol,
					"alias":   ac.symbol,
				}).Debug("Alias signature differs, not chained")
				continue
			}
			c.aliases = append(c.aliases, ac)
		}
		c.doc = docs.Lookup(c.symbol, c.paramRefs())
	}

	// Enumerants.
	seen := make(map[string]bool)
	consts := make(map[string]bool)
	for _, block := range reg.Enums {
		for _, re := range block.Enum {
			if seen[re.Name] {
				continue
			}
			seen[re.Name] = true
			req := reg.RequiredBy(re.Name, spec.APIs)
			if len(req) == 0 {
				continue
			}
			e := reg.EnumFor(re.Name, spec.APIs)
			if e == nil {
				e = re
			}
			v, err := enumValue(e.Value)
			if err != nil {
				log.WithField("enum", re.Name).WithError(err).Warn("Skipping enumerant")
				continue
			}
			name := enumName(re.Name)
			if consts[name] || names[name] || p.groups[name] != "" || packageNames[name] {
				log.WithField("enum", re.Name).Warn("Duplicate Go name, skipping")
				continue
			}
			consts[name] = true
			fileFor(req[0].Name).enums = append(fileFor(req[0].Name).enums, &constant{
				symbol:   re.Name,
				name:     name,
				value:    v,
				alias:    e.Alias,
				required: req,
			})
		}
	}

	// Features before extensions, in registry order.
	order := make(map[string]int)
	for _, f := range reg.Features {
		if _, ok := order[f.Name]; !ok {
			order[f.Name] = len(order)
		}
	}
	for _, e := range reg.Extensions {
		if _, ok := order[e.Name]; !ok {
			order[e.Name] = len(order)
		}
	}
	slices.SortStableFunc(p.files, func(a, b *file) bool {
		return order[a.iface] < order[b.iface]
	})
	return p
}
