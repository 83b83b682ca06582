package graph

import "sort"

// Impact returns the modules that import any of changed, directly or
// transitively. Changed modules are never reported as affected.
func (d *DependencyGraph) Impact(changed []string) Impact {
	d.mu.RLock()
	defer d.mu.RUnlock()

	pred, err := d.g.PredecessorMap()
	if err != nil {
		return Impact{Direct: []string{}, Transitive: []string{}}
	}

	isChanged := make(map[string]bool, len(changed))
	for _, p := range changed {
		isChanged[p] = true
	}

	direct := make(map[string]bool)
	for _, p := range changed {
		for importer := range pred[p] {
			if !isChanged[importer] {
				direct[importer] = true
			}
		}
	}

	affected := make(map[string]bool, len(direct))
	frontier := make([]string, 0, len(direct))
	for p := range direct {
		affected[p] = true
		frontier = append(frontier, p)
	}
	for len(frontier) > 0 {
		var next []string
		for _, p := range frontier {
			for importer := range pred[p] {
				if isChanged[importer] || affected[importer] {
					continue
				}
				affected[importer] = true
				next = append(next, importer)
			}
		}
		frontier = next
	}

	out := Impact{Direct: sortedKeys(direct), Transitive: sortedKeys(affected)}
	if len(pred) > 0 {
		out.Risk = float64(len(out.Transitive)) / float64(len(pred))
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
