package graph

import (
	"fmt"

	"github.com/aretw0/pixelpilot/pkg/schema"
)

// Build creates a graph from a document. Nodes are added in document order,
// then links. Rules in the document are ignored here; see package rules.
func Build(doc *schema.Document, opts ...Option) (*Graph, error) {
	g := New(opts...)
	if err := g.Load(doc); err != nil {
		return nil, err
	}
	return g, nil
}

// Load adds every node and link of doc to g.
func (g *Graph) Load(doc *schema.Document) error {
	for i, n := range doc.Nodes {
		if _, err := g.AddNode(n); err != nil {
			return fmt.Errorf("nodes[%d]: %w", i, err)
		}
	}
	for i, l := range doc.Links {
		if err := g.AddLink(l); err != nil {
			return fmt.Errorf("links[%d]: %w", i, err)
		}
	}
	return nil
}

// Document captures the current structure as a document.
func (g *Graph) Document(name string) *schema.Document {
	g.mu.RLock()
	defer g.mu.RUnlock()
	doc := schema.NewDocument(name)
	doc.Nodes = g.nodeSpecs()
	doc.Links = g.linkList()
	return doc
}
