// Package transform implements the format transformer service (spec.md
// §4.7): a registry mapping (sourceFormat, targetFormat) pairs to
// parameterized transformers operating on xmlmodel documents. No XSLT
// engine exists anywhere in the retrieved corpus, so a "stylesheet" here
// is an idiomatic Go closure registered against its format pair rather
// than an interpreted template — the registry/lookup/dispatch shape is
// grounded on the teacher's (erigon) pattern of a map-keyed handler
// registry resolved at call time (e.g. erigon's JSON-RPC method table).
package transform

import (
	"fmt"
	"sync"

	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
	"github.com/lareferencia/lareferencia-core-lib-sub002/xmlmodel"
)

// Func is a single transformer stylesheet: it maps a source document to
// a target document given the parameters set on it via Transformer.
type Func func(src *xmlmodel.Document, params *ParameterSet) (*xmlmodel.Document, error)

// formatPair keys the registry by (sourceFormat, targetFormat).
type formatPair struct {
	source string
	target string
}

// Registry holds transformers keyed by format pair (spec.md §4.7: "A
// registry maps (sourceFormat, targetFormat) to a transformer").
type Registry struct {
	mu      sync.RWMutex
	entries map[formatPair]Func
}

// NewRegistry returns an empty transformer registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[formatPair]Func)}
}

// Register binds fn as the transformer for (sourceFormat, targetFormat).
// A later call for the same pair replaces the earlier one.
func (r *Registry) Register(sourceFormat, targetFormat string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[formatPair{sourceFormat, targetFormat}] = fn
}

// Transformer is a bound (registry, format pair, parameters) ready to
// run. Obtained via Registry.Transformer.
type Transformer struct {
	registry *Registry
	pair     formatPair
	params   *ParameterSet
}

// Transformer looks up the transformer registered for (sourceFormat,
// targetFormat), returning oai.ErrNotFound-compatible TransformerNotFound
// if no mapping exists (spec.md §4.7).
func (r *Registry) Transformer(sourceFormat, targetFormat string) (*Transformer, error) {
	r.mu.RLock()
	_, ok := r.entries[formatPair{sourceFormat, targetFormat}]
	r.mu.RUnlock()
	if !ok {
		return nil, TransformerNotFound(sourceFormat, targetFormat)
	}
	return &Transformer{
		registry: r,
		pair:     formatPair{sourceFormat, targetFormat},
		params:   NewParameterSet(),
	}, nil
}

// TransformerNotFound builds the error spec.md §4.7 requires when a
// (sourceFormat, targetFormat) pair has no registered transformer.
func TransformerNotFound(sourceFormat, targetFormat string) error {
	return oai.NotFoundf("transformer not found for %s -> %s", sourceFormat, targetFormat)
}

// SetParameter sets a scalar parameter on this transformer (see
// ParameterSet.SetParameter).
func (t *Transformer) SetParameter(name, value string) {
	t.params.SetParameter(name, value)
}

// SetParameterList sets a list parameter on this transformer (see
// ParameterSet.SetParameterList).
func (t *Transformer) SetParameterList(name string, values []string) {
	t.params.SetParameterList(name, values)
}

// Transform invokes the resolved transformer on src with whatever
// parameters have been set via SetParameter/SetParameterList.
func (t *Transformer) Transform(src *xmlmodel.Document) (*xmlmodel.Document, error) {
	t.registry.mu.RLock()
	fn, ok := t.registry.entries[t.pair]
	t.registry.mu.RUnlock()
	if !ok {
		return nil, TransformerNotFound(t.pair.source, t.pair.target)
	}
	out, err := fn(src, t.params)
	if err != nil {
		return nil, fmt.Errorf("transforming %s -> %s: %w", t.pair.source, t.pair.target, err)
	}
	return out, nil
}
