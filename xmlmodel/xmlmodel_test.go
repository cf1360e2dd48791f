package xmlmodel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-test/deep"
)

func sampleXML() string {
	return `<metadata>
  <element name="dc">
    <element name="title">
      <field name="value">A paper</field>
    </element>
  </element>
  <element name="bundles">
    <element name="bundle">
      <field name="name">ORIGINAL</field>
      <element name="bitstreams">
        <element name="bitstream">
          <field name="sid">42</field>
          <field name="name">paper.pdf</field>
          <field name="format">application/pdf</field>
          <field name="size">1024</field>
          <field name="url">http://example.org/bitstream/42/paper.pdf</field>
          <field name="checksum">abc123</field>
        </element>
      </element>
    </element>
  </element>
</metadata>`
}

func TestParseThenGetFieldOccurrences(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleXML()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := doc.GetFieldOccurrences("dc.title:value")
	if len(got) != 1 || got[0] != "A paper" {
		t.Fatalf("got %v", got)
	}
}

func TestAddGetReplaceRemoveFieldOccurrenceRoundTrip(t *testing.T) {
	doc := NewDocument()

	doc.AddFieldOccurrence("dc.creator:value", "Alice")
	doc.AddFieldOccurrence("dc.creator:value", "Bob")
	got := doc.GetFieldOccurrences("dc.creator:value")
	if len(got) != 2 || got[0] != "Alice" || got[1] != "Bob" {
		t.Fatalf("after add, got %v", got)
	}

	if !doc.ReplaceFieldOccurrence("dc.creator:value", "Carol") {
		t.Fatal("replace returned false")
	}
	got = doc.GetFieldOccurrences("dc.creator:value")
	if len(got) != 2 || got[0] != "Carol" {
		t.Fatalf("after replace, got %v", got)
	}

	doc.RemoveFieldOccurrence("dc.creator:value")
	got = doc.GetFieldOccurrences("dc.creator:value")
	if len(got) != 0 {
		t.Fatalf("after remove, got %v", got)
	}

	// ancestor element should have been pruned since it is now childless
	if len(navigate(doc.Root, []string{"dc"})) != 0 {
		t.Fatal("expected dc element to be pruned after last field removed")
	}
}

func TestDefaultFieldNameUsedWithoutSuffix(t *testing.T) {
	doc := NewDocument()
	doc.AddFieldOccurrence("dc.title", "Untitled")
	got := doc.GetFieldOccurrences("dc.title:value")
	if len(got) != 1 || got[0] != "Untitled" {
		t.Fatalf("got %v", got)
	}
}

func TestWildcardMatchesAnyElementAtLevel(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleXML()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := doc.GetFieldOccurrences("*.title:value")
	if len(got) != 1 || got[0] != "A paper" {
		t.Fatalf("got %v", got)
	}
}

func TestGetBitstreamsParsesSIDAsPlainInteger(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleXML()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	bs, err := doc.GetBitstreams()
	if err != nil {
		t.Fatalf("GetBitstreams: %v", err)
	}
	if len(bs) != 1 {
		t.Fatalf("expected 1 bitstream, got %d", len(bs))
	}
	b := bs[0]
	if b.SID != 42 {
		t.Fatalf("expected sid 42, got %d", b.SID)
	}
	if b.Type != "ORIGINAL" {
		t.Fatalf("expected bundle type ORIGINAL, got %q", b.Type)
	}
	if b.Size != 1024 {
		t.Fatalf("expected size 1024, got %d", b.Size)
	}
	if b.URL != "http://example.org/bitstream/42/paper.pdf" {
		t.Fatalf("unexpected url %q", b.URL)
	}
}

func TestGetBitstreamsRejectsUnparseableSID(t *testing.T) {
	xmlIn := `<metadata>
  <element name="bundles">
    <element name="bundle">
      <field name="name">ORIGINAL</field>
      <element name="bitstreams">
        <element name="bitstream">
          <field name="sid">not-a-number</field>
        </element>
      </element>
    </element>
  </element>
</metadata>`
	doc, err := Parse(strings.NewReader(xmlIn))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := doc.GetBitstreams(); err == nil {
		t.Fatal("expected error for non-numeric sid")
	}
}

func TestParseSerializeRoundTripPreservesFields(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleXML()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var buf bytes.Buffer
	if err := Serialize(&buf, doc); err != nil {
		t.Fatalf("serialize: %v", err)
	}

	reparsed, err := Parse(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	got := reparsed.GetFieldOccurrences("dc.title:value")
	if len(got) != 1 || got[0] != "A paper" {
		t.Fatalf("round trip lost field, got %v", got)
	}

	bs, err := reparsed.GetBitstreams()
	if err != nil || len(bs) != 1 || bs[0].SID != 42 {
		t.Fatalf("round trip lost bitstream: %v %v", bs, err)
	}

	original, err := doc.GetBitstreams()
	if err != nil {
		t.Fatalf("GetBitstreams on original: %v", err)
	}
	if diff := deep.Equal(original, bs); diff != nil {
		t.Fatalf("bitstream round trip changed structure: %v", diff)
	}

	if !strings.Contains(buf.String(), NamespaceXOAI) {
		t.Fatal("expected xoai namespace declaration on root element")
	}
	if strings.HasPrefix(buf.String(), "<?xml") {
		t.Fatal("expected no xml declaration in serialized output")
	}
}

func TestSerializeEscapesFieldText(t *testing.T) {
	doc := NewDocument()
	doc.AddFieldOccurrence("dc.title:value", "Tom & Jerry <live>")

	var buf bytes.Buffer
	if err := Serialize(&buf, doc); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if strings.Contains(buf.String(), "Tom & Jerry <live>") {
		t.Fatal("expected raw text to be escaped")
	}

	reparsed, err := Parse(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	got := reparsed.GetFieldOccurrences("dc.title:value")
	if len(got) != 1 || got[0] != "Tom & Jerry <live>" {
		t.Fatalf("escaping round trip failed, got %v", got)
	}
}

func TestBuilderPoolGetPutReusesDocuments(t *testing.T) {
	pool := NewBuilderPool(1)
	d1 := pool.Get()
	d1.AddFieldOccurrence("dc.title:value", "leftover")
	pool.Put(d1)

	d2 := pool.Get()
	if len(d2.Root.Children) != 0 {
		t.Fatal("expected pooled document to be reset before reuse")
	}
}
