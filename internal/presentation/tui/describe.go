package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/registry"
	"github.com/aretw0/pixelpilot/pkg/schema"
)

// CatalogMarkdown documents the block catalogue as Markdown tables grouped by kind.
func CatalogMarkdown(infos []registry.Info) string {
	var sb strings.Builder
	sb.WriteString("# Block catalogue\n")

	var kind domain.NodeKind
	for _, info := range infos {
		if info.Kind != kind {
			kind = info.Kind
			fmt.Fprintf(&sb, "\n## %s blocks\n\n| Type | Parameters | Description |\n|---|---|---|\n", kindTitle(kind))
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", info.Type, params(info.Params), info.Description)
	}
	return sb.String()
}

func kindTitle(k domain.NodeKind) string {
	s := string(k)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func params(s schema.Schema) string {
	if len(s) == 0 {
		return "-"
	}
	fields := s.Fields()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("`%s: %s`", f.Name, f.Type))
	}
	return strings.Join(parts, ", ")
}

// DocumentMarkdown summarises a graph document.
func DocumentMarkdown(doc *schema.Document) string {
	var sb strings.Builder
	name := doc.Name
	if name == "" {
		name = "graph"
	}
	fmt.Fprintf(&sb, "# %s\n\n%d nodes, %d links, %d rules (format %s)\n", name, len(doc.Nodes), len(doc.Links), len(doc.Rules), doc.Version)

	if len(doc.Nodes) > 0 {
		sb.WriteString("\n## Nodes\n\n| ID | Kind | Type |\n|---|---|---|\n")
		for _, n := range doc.Nodes {
			fmt.Fprintf(&sb, "| `%s` | %s | `%s` |\n", n.ID, n.Kind, n.Type)
		}
	}
	if len(doc.Links) > 0 {
		sb.WriteString("\n## Links\n\n")
		for _, l := range doc.Links {
			fmt.Fprintf(&sb, "- `%s` -> `%s`\n", l.Source(), l.Target())
		}
	}
	if len(doc.Rules) > 0 {
		sb.WriteString("\n## Rules\n\n")
		for _, r := range doc.Rules {
			fmt.Fprintf(&sb, "- `%s`: %d conditions (%s), %d actions\n", r.ID, len(r.Conditions), r.Logic, len(r.Actions))
		}
	}
	return sb.String()
}
