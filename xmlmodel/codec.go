package xmlmodel

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

// Parse reads an XOAI-style metadata document into a Document tree.
// Namespace prefixes are ignored (matching local-name() XPath semantics,
// spec.md §4.6); only the element/field tag names and @name attributes
// are interpreted.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	doc := NewDocument()
	stack := []*Node{doc.Root}
	var text []byte

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, oai.ParseErrorf("parsing xml metadata: %v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "metadata" {
				continue
			}
			n := &Node{Tag: t.Name.Local, Name: attrValue(t.Attr, "name"), Parent: stack[len(stack)-1]}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, n)
			stack = append(stack, n)
			text = text[:0]
		case xml.CharData:
			text = append(text, t...)
		case xml.EndElement:
			if t.Name.Local == "metadata" {
				continue
			}
			n := stack[len(stack)-1]
			if n.Tag == TagField {
				n.Text = string(text)
			}
			text = text[:0]
			stack = stack[:len(stack)-1]
		}
	}
	return doc, nil
}

func attrValue(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Serialize writes doc as indented XML with the XOAI/DC/OAI-DMI namespace
// declarations on the root metadata element (spec.md §4.6 "Namespace
// handling"), omitting the XML declaration (spec.md §4.7's output
// configuration applies here too: "omit the XML declaration, indent, and
// encode UTF-8").
func Serialize(w io.Writer, doc *Document) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "<metadata%s>\n", namespaceDeclarations()); err != nil {
		return oai.StoreIOf("writing metadata root: %v", err)
	}
	for _, c := range doc.Root.Children {
		if err := writeNode(bw, c, 1); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprint(bw, "</metadata>\n"); err != nil {
		return oai.StoreIOf("writing metadata close: %v", err)
	}
	return bw.Flush()
}

func writeNode(w *bufio.Writer, n *Node, depth int) error {
	indent := indentFor(depth)
	if n.Tag == TagField {
		if _, err := fmt.Fprintf(w, "%s<field name=%q>", indent, n.Name); err != nil {
			return err
		}
		if err := xml.EscapeText(w, []byte(n.Text)); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, "</field>\n")
		return err
	}

	if _, err := fmt.Fprintf(w, "%s<%s name=%q>\n", indent, n.Tag, n.Name); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := writeNode(w, c, depth+1); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s</%s>\n", indent, n.Tag)
	return err
}

func indentFor(depth int) string {
	b := make([]byte, depth*2)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
