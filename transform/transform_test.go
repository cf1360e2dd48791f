package transform

import (
	"strings"
	"testing"

	"github.com/lareferencia/lareferencia-core-lib-sub002/xmlmodel"
)

func dcToOAIDC(src *xmlmodel.Document, params *ParameterSet) (*xmlmodel.Document, error) {
	out := xmlmodel.NewDocument()
	for _, title := range src.GetFieldOccurrences("dc.title:value") {
		out.AddFieldOccurrence("oai_dc.title:value", title)
	}
	if suffix := params.Param("suffix"); suffix != "" {
		for _, tag := range params.ParamList("tags") {
			out.AddFieldOccurrence("oai_dc.tag:value", tag+suffix)
		}
	}
	return out, nil
}

func TestTransformRunsRegisteredFunc(t *testing.T) {
	reg := NewRegistry()
	reg.Register("dc", "oai_dc", dcToOAIDC)

	src := xmlmodel.NewDocument()
	src.AddFieldOccurrence("dc.title:value", "A paper")

	tr, err := reg.Transformer("dc", "oai_dc")
	if err != nil {
		t.Fatalf("Transformer: %v", err)
	}
	out, err := tr.Transform(src)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	got := out.GetFieldOccurrences("oai_dc.title:value")
	if len(got) != 1 || got[0] != "A paper" {
		t.Fatalf("got %v", got)
	}
}

func TestTransformerNotFoundForUnregisteredPair(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Transformer("dc", "mods")
	if err == nil {
		t.Fatal("expected error for unregistered pair")
	}
	if !isNotFound(err) {
		t.Fatalf("expected ErrNotFound-compatible error, got %v", err)
	}
}

func isNotFound(err error) bool {
	return strings.Contains(err.Error(), "not found")
}

func TestSetParameterIgnoresEmptyNameOrValue(t *testing.T) {
	p := NewParameterSet()
	p.SetParameter("", "x")
	p.SetParameter("name", "")
	if p.Param("name") != "" {
		t.Fatal("expected empty-value parameter to be ignored")
	}

	p.SetParameter("ok", "value")
	if p.Param("ok") != "value" {
		t.Fatal("expected set parameter to stick")
	}
}

func TestSetParameterListRendersItemsXML(t *testing.T) {
	p := NewParameterSet()
	p.SetParameterList("tags", []string{"a", "b & c"})

	got := p.ParamXML("tags")
	if !strings.HasPrefix(got, "<items>") || !strings.HasSuffix(got, "</items>") {
		t.Fatalf("unexpected wrapper: %q", got)
	}
	if !strings.Contains(got, "<item>a</item>") {
		t.Fatalf("missing first item: %q", got)
	}
	if strings.Contains(got, "b & c") {
		t.Fatal("expected ampersand to be escaped")
	}
}

func TestTransformUsesListParameters(t *testing.T) {
	reg := NewRegistry()
	reg.Register("dc", "oai_dc", dcToOAIDC)

	tr, err := reg.Transformer("dc", "oai_dc")
	if err != nil {
		t.Fatalf("Transformer: %v", err)
	}
	tr.params.SetParameter("suffix", "!")
	tr.params.SetParameterList("tags", []string{"x", "y"})

	out, err := tr.Transform(xmlmodel.NewDocument())
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	got := out.GetFieldOccurrences("oai_dc.tag:value")
	if len(got) != 2 || got[0] != "x!" || got[1] != "y!" {
		t.Fatalf("got %v", got)
	}
}

type transformerConfig struct {
	SourceEncoding string
	MaxDepth       int
	Tags           []string
	skipped        string
}

func TestApplyConfigReflectsStructFields(t *testing.T) {
	p := NewParameterSet()
	cfg := transformerConfig{SourceEncoding: "utf-8", MaxDepth: 3, Tags: []string{"a", "b"}}
	p.ApplyConfig("cfg.", cfg)

	if p.Param("cfg.sourceencoding") != "utf-8" {
		t.Fatalf("got %q", p.Param("cfg.sourceencoding"))
	}
	if p.Param("cfg.maxdepth") != "3" {
		t.Fatalf("got %q", p.Param("cfg.maxdepth"))
	}
	if tags := p.ParamList("cfg.tags"); len(tags) != 2 {
		t.Fatalf("got %v", tags)
	}
}

func TestApplyConfigSkipsZeroFields(t *testing.T) {
	p := NewParameterSet()
	p.ApplyConfig("cfg.", transformerConfig{SourceEncoding: "utf-8"})
	if p.Param("cfg.maxdepth") != "" {
		t.Fatal("expected zero-valued field to be skipped")
	}
}

func TestApplyConfigReflectsMap(t *testing.T) {
	p := NewParameterSet()
	p.ApplyConfig("cfg.", map[string]any{"Encoding": "utf-8"})
	if p.Param("cfg.encoding") != "utf-8" {
		t.Fatalf("got %q", p.Param("cfg.encoding"))
	}
}

func TestApplyConfigIgnoresNilPointer(t *testing.T) {
	p := NewParameterSet()
	var cfg *transformerConfig
	p.ApplyConfig("cfg.", cfg)
	if p.Param("cfg.sourceencoding") != "" {
		t.Fatal("expected nil pointer to contribute nothing")
	}
}
