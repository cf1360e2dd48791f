package xmlmodel

import "strings"

// wildcardToken matches any element @name at its level in the dotted path
// (spec.md §4.6: "`*` matches any element at that level").
const wildcardToken = "*"

// truncateToken, used as the field-name suffix, sets Address.Truncate.
// Only AddFieldOccurrence acts on it, adding a field named "value" to the
// element. No accessor returns the element itself: GetFieldOccurrences,
// RemoveFieldOccurrence and ReplaceFieldOccurrence look for a field
// literally named "$", and GetBitstreams walks its subtree with navigate
// without using it.
const truncateToken = "$"

// defaultFieldName is used when a dotted address carries no `:field`
// suffix (spec.md §4.6).
const defaultFieldName = "value"

// Address is a parsed XOAI dotted field address: `a.b.c:field`.
type Address struct {
	Segments  []string
	FieldName string
	Truncate  bool
}

// ParseAddress parses a dotted field name into its element path and
// target field name (spec.md §4.6).
func ParseAddress(name string) Address {
	path := name
	field := defaultFieldName
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		path = name[:idx]
		field = name[idx+1:]
	}
	return Address{
		Segments:  strings.Split(path, "."),
		FieldName: field,
		Truncate:  field == truncateToken,
	}
}

// GetFieldOccurrences returns the ordered text of every field matching
// name across every element path matched (spec.md §4.6
// getFieldOccurrences).
func (d *Document) GetFieldOccurrences(name string) []string {
	addr := ParseAddress(name)
	var out []string
	for _, el := range navigate(d.Root, addr.Segments) {
		for _, c := range el.Children {
			if c.Tag == TagField && c.Name == addr.FieldName {
				out = append(out, c.Text)
			}
		}
	}
	return out
}

// AddFieldOccurrence ensures the intermediate element chain exists, then
// appends a new field leaf with content (spec.md §4.6
// addFieldOccurrence). Repeated calls for the same address append
// sibling fields rather than replacing the prior one.
func (d *Document) AddFieldOccurrence(name, content string) {
	addr := ParseAddress(name)
	el := ensureElements(d.Root, addr.Segments)
	fieldName := addr.FieldName
	if addr.Truncate {
		fieldName = defaultFieldName
	}
	el.Children = append(el.Children, &Node{Tag: TagField, Name: fieldName, Text: content, Parent: el})
}

// RemoveFieldOccurrence removes every field matching name, pruning any
// ancestor element that becomes childless (spec.md §4.6
// removeFieldOccurrence).
func (d *Document) RemoveFieldOccurrence(name string) {
	addr := ParseAddress(name)
	for _, el := range navigate(d.Root, addr.Segments) {
		el.Children = filterOutFields(el.Children, addr.FieldName)
		pruneEmptyAncestors(el)
	}
}

func filterOutFields(children []*Node, fieldName string) []*Node {
	out := children[:0]
	for _, c := range children {
		if c.Tag == TagField && c.Name == fieldName {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ReplaceFieldOccurrence replaces the text of the single matching field
// (spec.md §4.6 replaceFieldOccurrence). Returns false if no field
// matched.
func (d *Document) ReplaceFieldOccurrence(name, content string) bool {
	addr := ParseAddress(name)
	for _, el := range navigate(d.Root, addr.Segments) {
		for _, c := range el.Children {
			if c.Tag == TagField && c.Name == addr.FieldName {
				c.Text = content
				return true
			}
		}
	}
	return false
}
