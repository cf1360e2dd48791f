// Package xmlmodel implements the XOAI-style record DOM and its dotted
// field addressing (spec.md §4.6). No XPath/DOM library exists anywhere in
// the retrieved example corpus (checked across every repo's go.mod and
// other_examples/ manifests), so this package is grounded directly on
// stdlib encoding/xml: a small mutable tree replaces the DOM a Java XPath
// engine would otherwise walk, since encoding/xml itself only offers
// struct-tag marshaling, not a queryable mutable document.
package xmlmodel

// Tag names in the XOAI element/field vocabulary (spec.md §4.6).
const (
	TagElement = "element"
	TagField   = "field"
)

// Node is one element or field node in a record's metadata DOM. Elements
// carry a @name attribute and nest further elements/fields; fields carry
// @name and a text value.
type Node struct {
	Tag      string // TagElement or TagField
	Name     string // the @name attribute
	Text     string // field text content; unused on elements
	Parent   *Node
	Children []*Node
}

// Document wraps the <metadata> root of a record's DOM (spec.md §4.6's
// XPath chain is always rooted at `*[local-name()='metadata']`).
type Document struct {
	Root *Node
}

// NewDocument returns an empty metadata document.
func NewDocument() *Document {
	return &Document{Root: &Node{Tag: "metadata"}}
}

// navigate walks start's descendants along segments (each either a
// literal element @name or the "*" wildcard), returning every element
// node reached. Multiple matches at one level (repeated elements, or a
// "*" wildcard) fan out independently into the next level.
func navigate(start *Node, segments []string) []*Node {
	current := []*Node{start}
	for _, seg := range segments {
		var next []*Node
		for _, n := range current {
			for _, c := range n.Children {
				if c.Tag != TagElement {
					continue
				}
				if seg == wildcardToken || c.Name == seg {
					next = append(next, c)
				}
			}
		}
		current = next
	}
	return current
}

// ensureElements walks/creates a literal (non-wildcard) element chain
// under start, returning the single leaf node reached.
func ensureElements(start *Node, segments []string) *Node {
	n := start
	for _, seg := range segments {
		var found *Node
		for _, c := range n.Children {
			if c.Tag == TagElement && c.Name == seg {
				found = c
				break
			}
		}
		if found == nil {
			found = &Node{Tag: TagElement, Name: seg, Parent: n}
			n.Children = append(n.Children, found)
		}
		n = found
	}
	return n
}

// fieldText returns the text of el's first field child named fieldName,
// or "" if none exists.
func fieldText(el *Node, fieldName string) string {
	for _, c := range el.Children {
		if c.Tag == TagField && c.Name == fieldName {
			return c.Text
		}
	}
	return ""
}

// removeChild removes target from children, preserving order.
func removeChild(children []*Node, target *Node) []*Node {
	out := children[:0]
	for _, c := range children {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}

// pruneEmptyAncestors removes n and any ancestor element nodes that
// become childless, up to (but not including) the document root
// (spec.md §4.6 removeFieldOccurrence: "any ancestor element nodes that
// become childless").
func pruneEmptyAncestors(n *Node) {
	for n != nil && n.Parent != nil && n.Tag == TagElement && len(n.Children) == 0 {
		parent := n.Parent
		parent.Children = removeChild(parent.Children, n)
		n = parent
	}
}
