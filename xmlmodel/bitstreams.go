package xmlmodel

import (
	"net/url"
	"strconv"

	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

// Bitstream is one entry of a bundles.bundle.bitstreams.bitstream subtree
// (spec.md §4.6 getBitstreams).
type Bitstream struct {
	SID      int
	Type     string
	Name     string
	Format   string
	Size     int64
	URL      string
	Checksum string
}

// GetBitstreams interprets the bundles.bundle / bundle.bitstreams.bitstream
// subtree into Bitstream records, URL-decoding and validating URLs
// (spec.md §4.6). The `sid` field parses with strconv.Atoi — not a
// system-property lookup, per SPEC_FULL.md §13 decision 5 (the source's
// `Integer.getInteger` read a JVM system property keyed by the string,
// almost certainly a bug; the intended semantics is a plain integer
// parse).
func (d *Document) GetBitstreams() ([]Bitstream, error) {
	var out []Bitstream
	for _, bundle := range navigate(d.Root, []string{"bundles", "bundle"}) {
		bundleType := fieldText(bundle, "name")
		for _, bs := range navigate(bundle, []string{"bitstreams", "bitstream"}) {
			b, err := bitstreamFromNode(bs, bundleType)
			if err != nil {
				return nil, err
			}
			out = append(out, b)
		}
	}
	return out, nil
}

func bitstreamFromNode(bs *Node, bundleType string) (Bitstream, error) {
	sidText := fieldText(bs, "sid")
	sid, err := strconv.Atoi(sidText)
	if err != nil {
		return Bitstream{}, oai.ParseErrorf("bitstream sid %q: %v", sidText, err)
	}

	rawURL := fieldText(bs, "url")
	decoded, err := url.QueryUnescape(rawURL)
	if err != nil {
		return Bitstream{}, oai.ParseErrorf("bitstream url %q: %v", rawURL, err)
	}
	if decoded != "" {
		if _, err := url.ParseRequestURI(decoded); err != nil {
			return Bitstream{}, oai.Invalidf("bitstream url %q: %v", decoded, err)
		}
	}

	sizeText := fieldText(bs, "size")
	var size int64
	if sizeText != "" {
		size, err = strconv.ParseInt(sizeText, 10, 64)
		if err != nil {
			return Bitstream{}, oai.ParseErrorf("bitstream size %q: %v", sizeText, err)
		}
	}

	return Bitstream{
		SID:      sid,
		Type:     bundleType,
		Name:     fieldText(bs, "name"),
		Format:   fieldText(bs, "format"),
		Size:     size,
		URL:      decoded,
		Checksum: fieldText(bs, "checksum"),
	}, nil
}
