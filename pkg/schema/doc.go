// Package schema describes the shape of PixelPilot data.
//
// It has two halves. The first is a small type system used to declare the
// configuration parameters of each block type:
//
//	params := schema.Schema{
//	    "x":          schema.Int(),
//	    "y":          schema.Int(),
//	    "target_rgb": schema.Color(),
//	    "tolerance":  schema.Optional(schema.Int()),
//	}
//
//	if err := schema.Validate(params, node.Config); err != nil {
//	    // err is an *AggregateError listing every failing field
//	}
//
// The second is the graph Document, the JSON/YAML file format holding nodes,
// links and legacy rules:
//
//	doc, err := schema.Decode(data)
//	if err != nil {
//	    // unreadable or incompatible version
//	}
//	if err := schema.ValidateDocument(doc, catalog); err != nil {
//	    // structural problems, all reported at once
//	}
//
// Building a live graph from a Document is done by package graph.
package schema
