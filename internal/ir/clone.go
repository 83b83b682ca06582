package ir

// Clone returns a deep copy of m. Cached modules are cloned before rules
// attach findings so the cached value keeps its pre-rule shape.
func (m *Module) Clone() *Module {
	if m == nil {
		return nil
	}
	out := &Module{
		Path:           m.Path,
		Language:       clonePtr(m.Language),
		LOC:            m.LOC,
		CommentLines:   m.CommentLines,
		BlankLines:     m.BlankLines,
		Symbols:        make([]Symbol, len(m.Symbols)),
		Metrics:        cloneMetrics(m.Metrics),
		Outgoing:       cloneEdges(m.Outgoing),
		Incoming:       cloneEdges(m.Incoming),
		CompositeScore: clonePtr(m.CompositeScore),
	}
	for i, s := range m.Symbols {
		out.Symbols[i] = s.Clone()
	}
	if m.Suggestions != nil {
		out.Suggestions = append([]string(nil), m.Suggestions...)
	}
	return out
}

// Clone returns a deep copy of s.
func (s Symbol) Clone() Symbol {
	s.BranchingComplexity = clonePtr(s.BranchingComplexity)
	s.SizeScore = clonePtr(s.SizeScore)
	s.Metrics = cloneMetrics(s.Metrics)
	return s
}

// Clone returns a deep copy of e.
func (e DepEdge) Clone() DepEdge {
	e.Source = clonePtr(e.Source)
	e.Target = clonePtr(e.Target)
	e.Files = clonePtr(e.Files)
	return e
}

func cloneMetrics(in []QualityMetric) []QualityMetric {
	out := make([]QualityMetric, len(in))
	for i, q := range in {
		q.Threshold = clonePtr(q.Threshold)
		q.Message = clonePtr(q.Message)
		out[i] = q
	}
	return out
}

func cloneEdges(in []DepEdge) []DepEdge {
	out := make([]DepEdge, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
