// Package graph renders a workflow schema as a Mermaid flowchart for docs,
// the HTTP adapter and the CLI.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/schema"
)

// Overlay contains dynamic call data to visualize on the graph.
type Overlay struct {
	VisitedStates []string
	CurrentState  string
}

// Mermaid produces a Mermaid flowchart from the workflow schema.
// Semantic shapes:
//   - entry states: ((circle))
//   - tool states: [[subroutine]]
//   - recovery states: {{hexagon}}
//   - terminal states: ([stadium])
//   - default: [rectangle]
//
// Model-directed transitions are solid edges, keyword rules dashed edges
// labeled with their reason.
func Mermaid(s *schema.Schema) string {
	return MermaidWithOverlay(s, nil)
}

// MermaidWithOverlay renders the graph with visited/current styling applied.
func MermaidWithOverlay(s *schema.Schema, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")

	endCallUsed := false
	for _, st := range s.States {
		opener, closer := "[", "]"
		switch {
		case s.IsEntry(st.Name):
			opener, closer = "((", "))"
		case len(st.Tools) > 0:
			opener, closer = "[[", "]]"
		case st.Recovery:
			opener, closer = "{{", "}}"
		case st.Terminal:
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID(st.Name), opener, st.Name, closer)

		for _, target := range st.AllowedTransitions {
			if target == domain.EndCallTarget {
				endCallUsed = true
			}
			fmt.Fprintf(&sb, "    %s --> %s\n", safeID(st.Name), safeID(target))
		}
	}

	for _, r := range s.Rules {
		label := r.Reason
		if label == "" {
			label = r.Trigger.Kind
		}
		fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", safeID(r.FromState), escapeLabel(label), safeID(r.ToState))
	}

	if endCallUsed {
		fmt.Fprintf(&sb, "    %s([\"%s\"])\n", safeID(domain.EndCallTarget), "end call")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.VisitedStates {
			id := safeID(name)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", id)
		}
		if overlay.CurrentState != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", safeID(overlay.CurrentState))
		}
	}

	return sb.String()
}

func safeID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}

func escapeLabel(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}
