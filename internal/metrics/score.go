package metrics

import "github.com/dusk-indust/codescope/internal/ir"

// Composite score weights and saturation divisors. These are heuristic
// relative-risk constants, tunable but fixed.
const (
	DensityWeight     = 0.4
	SizeWeight        = 0.6
	ModuleSizeDivisor = 50.0
	SymbolSizeDivisor = 30.0
)

// ModuleScore returns the composite 0..1 score for a module with loc code
// lines and symbolCount symbols. It is exactly 0 when loc is 0.
func ModuleScore(loc, symbolCount int) float64 {
	if loc <= 0 {
		return 0
	}

	density := min(float64(symbolCount)/float64(loc), 1.0)

	avgSize := 0.0
	if symbolCount > 0 {
		avgSize = float64(loc) / float64(symbolCount)
	}

	score := DensityWeight*density + SizeWeight*saturate(avgSize, ModuleSizeDivisor)
	return clamp01(score)
}

// SymbolScore returns the saturating size score for a symbol of loc lines.
func SymbolScore(loc int) float64 {
	return saturate(float64(loc), SymbolSizeDivisor)
}

// ApplyScores fills the composite score of m and the size score of each of
// its symbols.
func ApplyScores(m *ir.Module) {
	m.CompositeScore = ir.Ptr(ModuleScore(m.LOC, len(m.Symbols)))
	for i := range m.Symbols {
		m.Symbols[i].SizeScore = ir.Ptr(SymbolScore(m.Symbols[i].LOC))
	}
}

// saturate maps an unbounded size into [0,1).
func saturate(size, divisor float64) float64 {
	return 1 - 1/(1+size/divisor)
}

func clamp01(v float64) float64 {
	return max(0, min(v, 1))
}
