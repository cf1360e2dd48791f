package transform

import (
	"bytes"
	"encoding/xml"

	"github.com/lareferencia/lareferencia-core-lib-sub002/log"
)

// ParameterSet holds the named parameters set on a Transformer before it
// runs. Values are either a plain string or a list, the latter rendered
// as an `<items><item>…</item>…</items>` XML document so a transformer
// func can iterate it the way a stylesheet would (spec.md §4.7).
type ParameterSet struct {
	scalars map[string]string
	lists   map[string][]string
}

// NewParameterSet returns an empty parameter set.
func NewParameterSet() *ParameterSet {
	return &ParameterSet{scalars: map[string]string{}, lists: map[string][]string{}}
}

// SetParameter sets a scalar string parameter. A null name or value
// (empty string) is ignored with a warning (spec.md §4.7).
func (p *ParameterSet) SetParameter(name, value string) {
	if name == "" {
		log.Warn("transform: ignoring parameter with empty name")
		return
	}
	if value == "" {
		log.Warn("transform: ignoring nil/empty value for parameter", "name", name)
		return
	}
	p.scalars[name] = value
}

// SetParameterList sets a list parameter, later available both as its raw
// slice (ParamList) and as the rendered <items> XML document (ParamXML)
// (spec.md §4.7).
func (p *ParameterSet) SetParameterList(name string, values []string) {
	if name == "" {
		log.Warn("transform: ignoring list parameter with empty name")
		return
	}
	if len(values) == 0 {
		log.Warn("transform: ignoring nil/empty list for parameter", "name", name)
		return
	}
	p.lists[name] = append([]string(nil), values...)
}

// Param returns the scalar value set for name, or "" if unset.
func (p *ParameterSet) Param(name string) string {
	return p.scalars[name]
}

// ParamList returns the list values set for name, or nil if unset.
func (p *ParameterSet) ParamList(name string) []string {
	return p.lists[name]
}

// ParamXML renders the list parameter name as an
// `<items><item>…</item>…</items>` document, or "" if unset (spec.md
// §4.7: "List parameters are passed as an XML document ... so that
// stylesheets can iterate them").
func (p *ParameterSet) ParamXML(name string) string {
	values, ok := p.lists[name]
	if !ok {
		return ""
	}
	var buf bytes.Buffer
	buf.WriteString("<items>")
	for _, v := range values {
		buf.WriteString("<item>")
		xml.EscapeText(&buf, []byte(v))
		buf.WriteString("</item>")
	}
	buf.WriteString("</items>")
	return buf.String()
}
