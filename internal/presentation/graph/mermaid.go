package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/schema"
)

// GraphOverlay contains live tick data to visualize on the graph.
type GraphOverlay struct {
	Active  []string // nodes whose Out is high
	Faulted []string
}

// GenerateMermaid produces a Mermaid flowchart from a graph document.
// It applies semantic styling per node kind:
// - Input: [/Parallelogram/]
// - Process: {{Hexagon}}
// - Output: [[Subroutine]]
// Links are labelled with their ports. Rules, if any, are drawn in their own
// subgraph. Overlay styles are applied when provided.
func GenerateMermaid(doc *schema.Document, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range doc.Nodes {
		opener, closer := "[", "]"
		switch node.Kind {
		case domain.KindInput:
			opener, closer = "[/", "/]"
		case domain.KindProcess:
			opener, closer = "{{", "}}"
		case domain.KindOutput:
			opener, closer = "[[", "]]"
		}

		text := node.ID
		if node.Name != "" {
			text = node.Name
		}
		fmt.Fprintf(&sb, "    %s%s\"%s <br/> %s\"%s\n", sanitizeMermaidID(node.ID), opener, escapeLabel(text), node.Type, closer)
	}

	for _, l := range doc.Links {
		fmt.Fprintf(&sb, "    %s -- \"%s:%s\" --> %s\n", sanitizeMermaidID(l.FromNode), l.FromPort, l.ToPort, sanitizeMermaidID(l.ToNode))
	}

	if len(doc.Rules) > 0 {
		sb.WriteString("    subgraph rules\n")
		for _, r := range doc.Rules {
			logic := r.Logic
			if logic == "" {
				logic = domain.LogicAnd
			}
			label := fmt.Sprintf("%s <br/> %d %s -> %d actions", escapeLabel(r.ID), len(r.Conditions), strings.ToUpper(logic), len(r.Actions))
			if r.Disabled {
				label += " (disabled)"
			}
			fmt.Fprintf(&sb, "        rule_%s([\"%s\"])\n", sanitizeMermaidID(r.ID), label)
		}
		sb.WriteString("    end\n")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast regardless of theme.
		sb.WriteString("    classDef active fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef faulted fill:#ffcdd2,stroke:#c62828,stroke-width:4px,color:#000;\n")
		writeClass(&sb, overlay.Active, "active")
		writeClass(&sb, overlay.Faulted, "faulted")
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, ids []string, class string) {
	seen := make(map[string]bool)
	for _, id := range ids {
		safeID := sanitizeMermaidID(id)
		if safeID == "" || seen[safeID] {
			continue
		}
		seen[safeID] = true
		fmt.Fprintf(sb, "    class %s %s;\n", safeID, class)
	}
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", ":", "_", " ", "_")
	return r.Replace(id)
}
