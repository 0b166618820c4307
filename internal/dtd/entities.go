// SPDX-License-Identifier: Unlicense OR MIT

package dtd

import (
	"bytes"
	"encoding/xml"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	doctypeRe = regexp.MustCompile(`^DOCTYPE\s+[^\s\[]+\s+(?:PUBLIC\s+("[^"]*"|'[^']*')\s+("[^"]*"|'[^']*')|SYSTEM\s+("[^"]*"|'[^']*'))`)
	commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	// declRe matches an entity declaration or a parameter entity reference.
	declRe    = regexp.MustCompile(`<!ENTITY\s+(%\s+)?(\S+)\s+(?:PUBLIC\s+("[^"]*"|'[^']*')\s*("[^"]*"|'[^']*')?|SYSTEM\s+("[^"]*"|'[^']*')|("[^"]*"|'[^']*'))[^>]*>|%([^\s;%]+);`)
	charRefRe = regexp.MustCompile(`&#(x[0-9a-fA-F]+|[0-9]+);`)
	entRefRe  = regexp.MustCompile(`&([^\s;&#]+);`)
)

// The predefined XML entities are handled by the decoder itself.
var predefined = map[string]bool{
	"amp":  true,
	"lt":   true,
	"gt":   true,
	"quot": true,
	"apos": true,
}

type paramEntity struct {
	// value is the replacement text of an internal entity.
	value string
	// url locates an external entity.
	url string
}

type scanner struct {
	cache   *Cache
	general map[string]string
	params  map[string]paramEntity
	loaded  map[string]bool
}

// Entities returns the general entities declared by the DTD doc refers
// to, for use as an xml.Decoder Entity map. Declarations of the internal
// subset take precedence. An error is returned only if the external DTD
// itself cannot be obtained; failures of nested modules are logged.
//
// The entities of documents without an internal subset are scanned once
// per DTD; the returned map is then shared and must not be modified.
func (c *Cache) Entities(doc []byte) (map[string]string, error) {
	directive, err := doctype(doc)
	if err != nil {
		return nil, err
	}
	s := &scanner{
		cache:   c,
		general: make(map[string]string),
		params:  make(map[string]paramEntity),
		loaded:  make(map[string]bool),
	}
	subset := false
	if i := strings.IndexByte(directive, '['); i >= 0 {
		decls := directive[i+1:]
		if j := strings.LastIndexByte(decls, ']'); j >= 0 {
			decls = decls[:j]
		}
		s.scan(decls, "")
		subset = true
	}
	m := doctypeRe.FindStringSubmatch(directive)
	if m == nil {
		return s.general, nil
	}
	rawURL := unquote(m[3])
	if m[1] != "" {
		rawURL = Resolve(unquote(m[1]), unquote(m[2]))
	}
	if !subset {
		if ents, ok := c.scanned(rawURL); ok {
			return ents, nil
		}
	}
	if err := s.load(rawURL); err != nil {
		return nil, err
	}
	if !subset {
		c.mu.Lock()
		c.entities[rawURL] = s.general
		c.mu.Unlock()
	}
	return s.general, nil
}

func (c *Cache) scanned(rawURL string) (map[string]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ents, ok := c.entities[rawURL]
	return ents, ok
}

// doctype returns the text of the document type declaration of doc, or ""
// if it has none.
func doctype(doc []byte) (string, error) {
	d := xml.NewDecoder(bytes.NewReader(doc))
	d.Strict = false
	for {
		tok, err := d.RawToken()
		if err == io.EOF {
			return "", nil
		}
		if err != nil {
			return "", errors.Wrap(err, "dtd: doctype")
		}
		switch tok := tok.(type) {
		case xml.Directive:
			if bytes.HasPrefix(tok, []byte("DOCTYPE")) {
				return string(tok), nil
			}
		case xml.StartElement:
			return "", nil
		}
	}
}

func (s *scanner) load(rawURL string) error {
	if s.loaded[rawURL] {
		return nil
	}
	s.loaded[rawURL] = true
	f, err := s.cache.OpenURL(rawURL)
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return errors.Wrapf(err, "dtd: %s", rawURL)
	}
	s.scan(string(data), rawURL)
	return nil
}

func (s *scanner) scan(text, base string) {
	text = commentRe.ReplaceAllString(text, "")
	for _, m := range declRe.FindAllStringSubmatch(text, -1) {
		if ref := m[7]; ref != "" {
			s.include(ref)
			continue
		}
		isParam, name := m[1] != "", m[2]
		var system string
		switch {
		case m[3] != "":
			system = Resolve(unquote(m[3]), unquote(m[4]))
		case m[5] != "":
			system = unquote(m[5])
		}
		if isParam {
			if _, exists := s.params[name]; exists {
				continue
			}
			s.params[name] = paramEntity{value: unquote(m[6]), url: resolveRef(base, system)}
			continue
		}
		if system != "" || predefined[name] {
			// External general entities are not expanded.
			continue
		}
		if _, exists := s.general[name]; exists {
			continue
		}
		s.general[name] = s.expand(unquote(m[6]))
	}
}

// include follows a parameter entity reference to an external module.
func (s *scanner) include(name string) {
	pe, ok := s.params[name]
	if !ok || pe.url == "" {
		return
	}
	if err := s.load(pe.url); err != nil {
		log.WithError(err).WithField("entity", name).Debug("Skipping module")
	}
}

// expand decodes character references and known entity references in an
// entity value.
func (s *scanner) expand(v string) string {
	// Values such as "&#38;#60;" escape their references twice.
	for i := 0; i < 2 && strings.Contains(v, "&"); i++ {
		v = charRefRe.ReplaceAllStringFunc(v, func(ref string) string {
			num := ref[2 : len(ref)-1]
			var n uint64
			var err error
			if num[0] == 'x' {
				n, err = strconv.ParseUint(num[1:], 16, 32)
			} else {
				n, err = strconv.ParseUint(num, 10, 32)
			}
			if err != nil {
				return ref
			}
			return string(rune(n))
		})
		v = entRefRe.ReplaceAllStringFunc(v, func(ref string) string {
			if r, ok := s.general[ref[1:len(ref)-1]]; ok {
				return r
			}
			return ref
		})
	}
	return v
}

// resolveRef resolves a system identifier against the URL of the module
// declaring it.
func resolveRef(base, system string) string {
	if base == "" || system == "" {
		return system
	}
	b, err := url.Parse(base)
	if err != nil {
		return system
	}
	ref, err := url.Parse(system)
	if err != nil {
		return system
	}
	return b.ResolveReference(ref).String()
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}
