package xmlmodel

import "fmt"

// Fixed XOAI/DC/OAI-DMI namespace declarations (spec.md §4.6: "a fixed set
// of XOAI/DC/OAI-DMI namespaces is declared once on a namespace-anchor
// element and reused for every XPath evaluation").
const (
	NamespaceXOAI   = "http://www.lyncode.com/xoai"
	NamespaceDC     = "http://purl.org/dc/elements/1.1/"
	NamespaceOAIDMI = "http://schemas.datacite.org/oai/oai-dmi/"
)

func namespaceDeclarations() string {
	return fmt.Sprintf(` xmlns="%s" xmlns:dc="%s" xmlns:oai_dmi="%s"`, NamespaceXOAI, NamespaceDC, NamespaceOAIDMI)
}

// BuilderPool replaces the source's thread-local DOM builders with an
// explicit, bounded pool. NewBuilderPool allocates all size Documents up
// front, so creation is not lazy. Each checkout gets an empty Document
// ready to populate; namespaces are not stored on a Document but written
// by Serialize. Parse allocates its own Document and does not draw from
// the pool. What the pool saves is the root node and its Children slice
// capacity, reused instead of reallocated per document.
type BuilderPool struct {
	slots chan *Document
}

// NewBuilderPool creates a pool bounded at size concurrent builders.
func NewBuilderPool(size int) *BuilderPool {
	if size < 1 {
		size = 1
	}
	p := &BuilderPool{slots: make(chan *Document, size)}
	for i := 0; i < size; i++ {
		p.slots <- NewDocument()
	}
	return p
}

// Get checks out a builder, blocking if all are in use. Reset the
// returned Document before reuse via Document.Reset.
func (p *BuilderPool) Get() *Document {
	return <-p.slots
}

// Put returns a builder to the pool after resetting it.
func (p *BuilderPool) Put(d *Document) {
	d.Reset()
	p.slots <- d
}

// Reset clears a Document's children so it can be reused by the pool
// without reallocating the root node.
func (d *Document) Reset() {
	d.Root.Children = d.Root.Children[:0]
}
