package export

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dusk-indust/codescope/internal/graph"
)

// Mermaid produces a Mermaid "graph TD" diagram of g. Modules are grouped
// by cluster; resolved import edges become arrows.
func Mermaid(g *graph.DependencyGraph, clusters []graph.Cluster) string {
	// Node IDs must be alphanumeric.
	nodeIDs := make(map[string]string)
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", len(nodeIDs))
		nodeIDs[key] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	clustered := make(map[string]bool)
	for _, c := range clusters {
		if len(c.Members) == 0 {
			continue
		}
		members := append([]string(nil), c.Members...)
		sort.Strings(members)

		fmt.Fprintf(&sb, "  subgraph %s[\"%.40s\"]\n", getID("cluster:"+c.Name), clusterLabel(c.Name))
		for _, m := range members {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", getID(m), shortPath(m))
			clustered[m] = true
		}
		sb.WriteString("  end\n")
	}

	for _, m := range g.Modules() {
		if !clustered[m] {
			fmt.Fprintf(&sb, "  %s[\"%s\"]\n", getID(m), shortPath(m))
		}
	}

	for _, l := range g.Links() {
		fmt.Fprintf(&sb, "  %s --> %s\n", getID(l.Source), getID(l.Target))
	}
	return sb.String()
}

// shortPath returns the last 2 path segments for readability.
func shortPath(p string) string {
	parts := strings.Split(path.Clean(p), "/")
	if len(parts) <= 2 {
		return p
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
