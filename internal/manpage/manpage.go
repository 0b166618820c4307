// SPDX-License-Identifier: Unlicense OR MIT

// Package manpage extracts binding documentation from the OpenGL DocBook
// reference pages. Pages are looked up in the GL4 tree, then the GL2 tree,
// and a generic stub is synthesized when neither documents a command.
package manpage

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"gioui.org/glbind/internal/dtd"
	"gioui.org/glbind/internal/logging"
)

var log = logging.DefaultLogger.WithField(logging.LogSubsys, "manpage")

// Source identifies where a Doc came from.
type Source int

const (
	Stub Source = iota
	GL4
	GL2
)

func (s Source) String() string {
	switch s {
	case GL4:
		return "GL4"
	case GL2:
		return "GL2"
	default:
		return "stub"
	}
}

// Doc is the documentation of a command.
type Doc struct {
	Source  Source
	Summary string
	Params  []ParamDoc
}

// ParamDoc documents a wrapper parameter with wrapped lines.
type ParamDoc struct {
	Name  string
	Lines []string
}

// ParamRef describes a wrapper parameter to document.
type ParamRef struct {
	// ImportName is the registry name, matched against the page.
	ImportName string
	// ImplName is the Go parameter name.
	ImplName string
	// TypeName is the Go parameter type, used by the default text.
	TypeName string
}

// Namer names the Go symbols that inline references render to.
type Namer interface {
	ConstName(symbol string) string
	FuncName(symbol string) string
}

type identity struct{}

func (identity) ConstName(s string) string { return s }
func (identity) FuncName(s string) string  { return s }

type Options struct {
	GL4Dir string
	GL2Dir string
	// DTD resolves the entities of GL2 pages. If nil, GL2 pages are
	// decoded leniently with the HTML entities.
	DTD       *dtd.Cache
	WrapWidth int
	Namer     Namer
	// Postfix returns the vendor postfix of a command name, such as
	// "ARB", or "".
	Postfix   func(name string) string
	CacheSize int
}

// Resolver looks up command documentation.
type Resolver struct {
	opts  Options
	pages *lru.Cache
}

type cachedPage struct {
	page *refentry
	err  error
}

type schema struct {
	source Source
	dir    string
	decode func(data []byte) (*refentry, error)
}

// NewResolver returns a Resolver for opts. Zero options select a wrap
// width of 120 and a 512 page cache.
func NewResolver(opts Options) (*Resolver, error) {
	if opts.WrapWidth <= 0 {
		opts.WrapWidth = 120
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 512
	}
	if opts.Namer == nil {
		opts.Namer = identity{}
	}
	pages, err := lru.New(opts.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "manpage")
	}
	return &Resolver{opts: opts, pages: pages}, nil
}

// Lookup documents command and its parameters. It never fails: a command
// without a usable page gets the stub documentation.
func (r *Resolver) Lookup(command string, params []ParamRef) Doc {
	schemas := []schema{
		{GL4, r.opts.GL4Dir, decodeGL4},
		{GL2, r.opts.GL2Dir, r.decodeGL2},
	}
	for _, s := range schemas {
		if s.dir == "" {
			continue
		}
		for _, name := range r.candidates(command) {
			page, err := r.page(s, name)
			if err != nil {
				log.WithFields(logrus.Fields{
					"command": command,
					"source":  s.source,
				}).WithError(err).Debug("No documentation")
				continue
			}
			return r.document(s.source, page, command, params)
		}
	}
	return r.document(Stub, nil, command, params)
}

// candidates returns the page names tried for command: the command itself,
// then the command without its extension postfix.
func (r *Resolver) candidates(command string) []string {
	names := []string{command}
	if r.opts.Postfix == nil {
		return names
	}
	if p := r.opts.Postfix(command); p != "" && strings.HasSuffix(command, p) {
		names = append(names, strings.TrimSuffix(command, p))
	}
	return names
}

func (r *Resolver) page(s schema, name string) (*refentry, error) {
	path := filepath.Join(s.dir, name+".xml")
	if v, ok := r.pages.Get(path); ok {
		c := v.(cachedPage)
		return c.page, c.err
	}
	page, err := r.load(s, path)
	r.pages.Add(path, cachedPage{page: page, err: err})
	return page, err
}

func (r *Resolver) load(s schema, path string) (*refentry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	page, err := s.decode(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return page, nil
}

func (r *Resolver) decodeGL2(data []byte) (*refentry, error) {
	if r.opts.DTD != nil {
		entities, err := r.opts.DTD.Entities(data)
		if err == nil {
			return decodePage(bytes.NewReader(data), "", true, entities)
		}
		log.WithError(err).Debug("DTD unavailable, decoding leniently")
	}
	return decodePage(bytes.NewReader(data), "", false, xml.HTMLEntity)
}

// StubSummary is the summary of undocumented commands.
func StubSummary(command string) string {
	return fmt.Sprintf("Binding for %s.", command)
}

func (r *Resolver) document(src Source, page *refentry, command string, params []ParamRef) Doc {
	doc := Doc{Source: src, Summary: StubSummary(command)}
	if page != nil && page.Purpose != nil {
		if s := Clean(page.Purpose.render(r.opts.Namer)); s != "" {
			doc.Summary = s
		}
	}
	for _, p := range params {
		pd := ParamDoc{
			Name:  p.ImplName,
			Lines: Wrap(fmt.Sprintf("A %s.", p.TypeName), r.opts.WrapWidth),
		}
		if page != nil {
			if para := page.param(p.ImportName); para != nil {
				if lines := Wrap(Clean(para.render(r.opts.Namer)), r.opts.WrapWidth); len(lines) > 0 {
					pd.Lines = lines
				}
			}
		}
		doc.Params = append(doc.Params, pd)
	}
	return doc
}
