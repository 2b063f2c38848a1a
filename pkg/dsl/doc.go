/*
Package dsl provides a Go DSL for programmatically constructing PixelPilot graphs.

It allows developers to define block graphs and rules using a fluent builder
instead of writing YAML or JSON documents by hand. This is particularly useful
for generated graphs and unit tests.

Example usage:

	b := dsl.New("auto-space")

	b.PixelColor("white", 10, 10, "#ffffff").To("gate", "In1")
	b.Input("armed", "state_equals").Set("key", "armed").To("gate", "In2")
	b.Process("gate", "and")
	b.KeyPress("space", "space").Rising()
	b.Link("gate", "space", "Trig")

	b.Rule("buff").
		When("timer", map[string]any{"interval": "30s", "timer_id": "buff"}).
		Then("key_press", map[string]any{"key": "f"})

	doc := b.Document()
	// ... eng.Load(doc), or schema.Encode(doc, schema.FormatYAML)
*/
package dsl
