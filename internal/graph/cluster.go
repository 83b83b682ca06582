package graph

import (
	"sort"
	"strings"
)

// Clusters groups modules into weakly connected components of the import
// graph. Components with fewer than two modules are omitted. Each cluster is
// named after the longest common directory prefix of its members and scored
// by edge density: distinct connected pairs over possible pairs.
func (d *DependencyGraph) Clusters() []Cluster {
	d.mu.RLock()
	defer d.mu.RUnlock()

	adj, err := d.g.AdjacencyMap()
	if err != nil {
		return nil
	}

	undirected := make(map[string]map[string]bool, len(adj))
	for p := range adj {
		undirected[p] = make(map[string]bool)
	}
	for src, targets := range adj {
		for tgt := range targets {
			if src == tgt {
				continue
			}
			undirected[src][tgt] = true
			undirected[tgt][src] = true
		}
	}

	nodes := make([]string, 0, len(undirected))
	for p := range undirected {
		nodes = append(nodes, p)
	}
	sort.Strings(nodes)

	visited := make(map[string]bool, len(nodes))
	var clusters []Cluster
	for _, start := range nodes {
		if visited[start] {
			continue
		}
		members := component(start, undirected, visited)
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)
		clusters = append(clusters, Cluster{
			Name:     commonDir(members),
			Cohesion: density(members, undirected),
			Members:  members,
		})
	}
	return clusters
}

// component returns every node reachable from start, marking them visited.
func component(start string, adj map[string]map[string]bool, visited map[string]bool) []string {
	var members []string
	queue := []string{start}
	visited[start] = true
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		members = append(members, n)
		for nb := range adj[n] {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	return members
}

// density is connected pairs / (n*(n-1)/2) over the undirected graph.
func density(members []string, adj map[string]map[string]bool) float64 {
	n := len(members)
	if n < 2 {
		return 0
	}
	pairs := 0
	for i, a := range members {
		for _, b := range members[i+1:] {
			if adj[a][b] {
				pairs++
			}
		}
	}
	return float64(pairs) / float64(n*(n-1)/2)
}

// commonDir returns the longest shared directory prefix of paths, with a
// trailing slash, or "" when they share none.
func commonDir(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	prefix := paths[0]
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		prefix = prefix[:i+1]
	} else {
		return ""
	}
	for _, p := range paths[1:] {
		for !strings.HasPrefix(p, prefix) {
			i := strings.LastIndex(strings.TrimSuffix(prefix, "/"), "/")
			if i < 0 {
				return ""
			}
			prefix = prefix[:i+1]
		}
	}
	return prefix
}
