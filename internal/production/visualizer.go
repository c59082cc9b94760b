package production

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/comalice/storybook/internal/primitives"
)

// DefaultVisualizer renders definitions as Graphviz DOT.
type DefaultVisualizer struct{}

// ExportDOT generates Graphviz DOT source for the statechart. Nodes are
// keyed by path; compound states become clusters. Paths in active are
// highlighted.
func (v *DefaultVisualizer) ExportDOT(config *primitives.MachineConfig, active []string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `digraph %q {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`, config.ID)

	on := make(map[string]bool, len(active))
	for _, p := range active {
		on[p] = true
	}
	if config.Initial != "" {
		buf.WriteString("  \"__start\" [shape=point];\n")
		fmt.Fprintf(&buf, "  \"__start\" -> %q;\n", config.Initial)
	}
	for _, s := range config.States {
		renderState(&buf, s, "", on, "  ")
	}
	for _, e := range collectEdges(config) {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, e.Label)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes the machine config to JSON.
func (v *DefaultVisualizer) ExportJSON(config *primitives.MachineConfig) ([]byte, error) {
	return json.MarshalIndent(config, "", "  ")
}

// Edge represents a transition edge between two state paths.
type Edge struct {
	From  string
	To    string
	Label string
}

// collectEdges lists every targeted transition in declaration order (event
// maps by sorted key). Root-level transitions leave from the machine ID.
func collectEdges(config *primitives.MachineConfig) []Edge {
	var edges []Edge
	add := func(from, label string, ts []primitives.TransitionConfig) {
		for _, t := range ts {
			if t.Target == "" {
				continue
			}
			to, err := config.ResolveTarget(t.Target)
			if err != nil {
				continue
			}
			l := label
			if len(t.Guards) > 0 {
				l += " [guarded]"
			}
			edges = append(edges, Edge{From: from, To: to, Label: l})
		}
	}
	addOn := func(from string, on map[string][]primitives.TransitionConfig) {
		events := make([]string, 0, len(on))
		for evt := range on {
			events = append(events, evt)
		}
		sort.Strings(events)
		for _, evt := range events {
			add(from, evt, on[evt])
		}
	}

	addOn(config.ID, config.On)
	config.Walk(func(path string, s *primitives.StateConfig) {
		addOn(path, s.On)
		add(path, "always", s.Always)
		for _, d := range s.After {
			add(path, "after "+d.Delay.String(), []primitives.TransitionConfig{d.Transition})
		}
		add(path, "done", s.OnDone)
		if inv := s.Invoke; inv != nil {
			add(path, "done."+inv.ID, inv.OnDone)
			add(path, "error."+inv.ID, inv.OnError)
		}
	})
	return edges
}

// renderState writes state and its descendants.
func renderState(buf *bytes.Buffer, s *primitives.StateConfig, parent string, active map[string]bool, indent string) {
	path := primitives.JoinPath(parent, s.ID)
	style := ""
	if active[path] {
		style = " style=\"rounded,filled\" fillcolor=lightgreen"
	}
	shape := ""
	if s.Type == primitives.Final {
		shape = " peripheries=2"
	}
	if len(s.Children) == 0 {
		fmt.Fprintf(buf, "%s%q [label=%q%s%s];\n", indent, path, s.ID, shape, style)
		return
	}

	fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+path)
	fmt.Fprintf(buf, "%s  label=%q;\n", indent, s.ID)
	if active[path] {
		fmt.Fprintf(buf, "%s  style=filled; fillcolor=lightyellow;\n", indent)
	}
	fmt.Fprintf(buf, "%s  %q [label=%q shape=ellipse%s];\n", indent, path, s.ID, style)
	for _, child := range s.Children {
		renderState(buf, child, path, active, indent+"  ")
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}
