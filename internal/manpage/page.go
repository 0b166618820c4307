// SPDX-License-Identifier: Unlicense OR MIT

package manpage

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// docbookNS is the DocBook 5 namespace of the GL4 reference pages.
const docbookNS = "http://docbook.org/ns/docbook"

// refentry is the part of a DocBook reference page used for bindings.
type refentry struct {
	XMLName  xml.Name
	Purpose  *node     `xml:"refnamediv>refpurpose"`
	Sections []section `xml:"refsect1"`
}

type section struct {
	// ID matches both id (DocBook 4) and xml:id (DocBook 5).
	ID    string         `xml:"id,attr"`
	Lists []variableList `xml:"variablelist"`
}

type variableList struct {
	Entries []varListEntry `xml:"varlistentry"`
}

type varListEntry struct {
	Terms []struct {
		Parameters []string `xml:"parameter"`
	} `xml:"term"`
	Items []struct {
		Paras []*node `xml:"para"`
	} `xml:"listitem"`
}

// node is an element or, when Name is empty, a text run of inline
// DocBook markup.
type node struct {
	Name     string
	Text     string
	Children []*node
}

func (n *node) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	n.Name = start.Name.Local
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			child := new(node)
			if err := child.UnmarshalXML(d, tok); err != nil {
				return err
			}
			n.Children = append(n.Children, child)
		case xml.CharData:
			n.Children = append(n.Children, &node{Text: string(tok)})
		case xml.EndElement:
			return nil
		}
	}
}

// text returns the concatenated character data of n.
func (n *node) text() string {
	if n.Name == "" {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.text())
	}
	return b.String()
}

// render converts inline markup to plain text, naming constants and
// functions the way the generated package does.
func (n *node) render(namer Namer) string {
	var b strings.Builder
	n.renderTo(&b, namer)
	return b.String()
}

func (n *node) renderTo(b *strings.Builder, namer Namer) {
	switch n.Name {
	case "":
		b.WriteString(n.Text)
	case "constant":
		b.WriteString(namer.ConstName(strings.TrimSpace(n.text())))
	case "function":
		b.WriteString(namer.FuncName(strings.TrimSpace(n.text())))
	case "citerefentry":
		title := n.text()
		for _, c := range n.Children {
			if c.Name == "refentrytitle" {
				title = c.text()
				break
			}
		}
		b.WriteString(namer.FuncName(strings.TrimSpace(title)))
	default:
		for _, c := range n.Children {
			c.renderTo(b, namer)
		}
	}
}

// param returns the description paragraph of the parameter name.
func (r *refentry) param(name string) *node {
	for _, s := range r.Sections {
		if s.ID != "parameters" {
			continue
		}
		for _, l := range s.Lists {
			for _, e := range l.Entries {
				if !e.describes(name) {
					continue
				}
				for _, item := range e.Items {
					if len(item.Paras) > 0 {
						return item.Paras[0]
					}
				}
			}
		}
	}
	return nil
}

func (e *varListEntry) describes(name string) bool {
	for _, t := range e.Terms {
		for _, p := range t.Parameters {
			if strings.TrimSpace(p) == name {
				return true
			}
		}
	}
	return false
}

// decodePage decodes a reference page whose root must be a refentry in
// namespace ns.
func decodePage(r io.Reader, ns string, strict bool, entities map[string]string) (*refentry, error) {
	d := xml.NewDecoder(r)
	d.Strict = strict
	d.Entity = entities
	page := new(refentry)
	if err := d.Decode(page); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if page.XMLName.Local != "refentry" || page.XMLName.Space != ns {
		return nil, errors.Errorf("root element is %s, not refentry", qualified(page.XMLName))
	}
	return page, nil
}

func decodeGL4(data []byte) (*refentry, error) {
	return decodePage(bytes.NewReader(data), docbookNS, false, xml.HTMLEntity)
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + " " + n.Local
}
