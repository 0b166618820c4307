// SPDX-License-Identifier: Unlicense OR MIT

package gen

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"

	"gioui.org/glbind/internal/config"
	"gioui.org/glbind/registry"
)

// Document renders the comment and signature generated for the command
// symbol of spec. Group types are those of a package holding the command
// alone.
func (g *Generator) Document(spec config.Registry, reg *registry.Registry, symbol string) (string, error) {
	rc := reg.Command(symbol)
	if rc == nil {
		return "", errors.Errorf("%s: unknown command %s", spec.Name, symbol)
	}
	p := g.newPkg(spec, reg)
	c := g.newCommand(spec, reg, rc)
	if len(c.required) == 0 {
		return "", errors.Errorf("%s: %s is not required by %v", spec.Name, symbol, spec.APIs)
	}
	names := map[string]bool{c.name: true}
	p.assignGroups(c, names)
	for _, a := range reg.Aliases(rc) {
		ac := g.newCommand(spec, reg, a)
		if len(ac.required) == 0 {
			continue
		}
		p.assignGroups(ac, names)
		if ac.rawTypes() == c.rawTypes() {
			c.aliases = append(c.aliases, ac)
		}
	}
	docs, err := g.docs(reg)
	if err != nil {
		return "", err
	}
	c.doc = docs.Lookup(c.symbol, c.paramRefs())
	w := new(bytes.Buffer)
	p.renderDoc(w, c)
	fmt.Fprintf(w, "func %s(%s)%s\n", c.name, c.wrapParams(false), c.wrapResult())
	if c.pinned() {
		fmt.Fprintf(w, "func %sPinned(%s)%s\n", c.name, c.wrapParams(true), c.wrapResult())
	}
	return w.String(), nil
}
