package graph

import (
	"fmt"
	"strings"

	"github.com/strandkit/strand/pkg/domain"
)

// Overlay contains dynamic execution state to visualize on the graph.
type Overlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a chain.
// It applies semantic styling:
// - Entry node (main input): ((Circle))
// - AI node: [[Subroutine]]
// - Programmatic node: [Rectangle]
// Edges are labeled with their port pair when it differs from the default
// "out" -> same-name wiring. It also applies overlay styles
// (Visited/Current) if provided.
func GenerateMermaid(chain *domain.Chain, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	entryID, _ := splitPortRef(chain.MainIn)

	for _, node := range chain.Nodes {
		// Sanitize ID for Mermaid
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.ID == entryID:
			opener, closer = "((", "))" // Circle
		case node.Kind == domain.KindAI:
			opener, closer = "[[", "]]" // Subroutine
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, node.ID, closer))
	}

	for _, edge := range chain.Edges {
		safeFrom := sanitizeMermaidID(edge.Source)
		safeTo := sanitizeMermaidID(edge.Target)

		arrow := "-->"
		if edge.SourcePort != "out" || edge.SourcePort != edge.TargetPort {
			// Escape double quotes in the label for Mermaid
			label := strings.ReplaceAll(edge.SourcePort+" : "+edge.TargetPort, "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" -->", label)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeFrom, arrow, safeTo))
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentNode != "" {
			safeCurrent := sanitizeMermaidID(overlay.CurrentNode)
			sb.WriteString(fmt.Sprintf("    class %s current;\n", safeCurrent))
		}
	}

	return sb.String()
}

func splitPortRef(ref string) (node, port string) {
	idx := strings.LastIndex(ref, "/")
	if idx < 0 {
		return ref, ""
	}
	return ref[:idx], ref[idx+1:]
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
