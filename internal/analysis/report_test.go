package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codescope/internal/ir"
)

func TestSummarize(t *testing.T) {
	a := ir.NewModule("a.ts")
	a.LOC, a.CommentLines, a.BlankLines = 30, 4, 2
	a.Symbols = []ir.Symbol{
		{Kind: ir.SymbolKindFunction, Name: "f", LOC: 5, BranchingComplexity: ir.Ptr(3)},
		{Kind: ir.SymbolKindFunction, Name: "g", LOC: 5, BranchingComplexity: ir.Ptr(1),
			Metrics: []ir.QualityMetric{{Name: "function_size", Severity: ir.SeverityError}}},
		{Kind: ir.SymbolKindClass, Name: "C", LOC: 10},
	}
	a.Metrics = []ir.QualityMetric{
		{Name: "file_loc", Severity: ir.SeverityInfo},
		{Name: "fan_out", Severity: ir.SeverityWarning},
	}

	b := ir.NewModule("b.ts")
	b.LOC = 30

	c := ir.NewModule("c.ts")
	c.LOC = 50

	s := Summarize([]*ir.Module{a, b, c}, 2)
	assert.Equal(t, 3, s.Files)
	assert.Equal(t, 2, s.Failures)
	assert.Equal(t, 110, s.LOC)
	assert.Equal(t, 4, s.CommentLines)
	assert.Equal(t, 2, s.BlankLines)
	assert.Equal(t, 3, s.Symbols)
	assert.Equal(t, 2, s.Functions)
	assert.Equal(t, FindingCounts{Info: 1, Warning: 1, Error: 1}, s.Findings)
	assert.Equal(t, 2, s.Findings.Breaches())
	assert.InDelta(t, 2.0, s.AvgComplexity, 1e-9)
	assert.Equal(t, []FileSize{{"c.ts", 50}, {"a.ts", 30}, {"b.ts", 30}}, s.TopFiles)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, 0)
	assert.Zero(t, s.Files)
	assert.Zero(t, s.AvgComplexity)
	assert.NotNil(t, s.TopFiles)
}

func TestSummarize_TopFilesLimit(t *testing.T) {
	var modules []*ir.Module
	for i := 0; i < TopFilesLimit+5; i++ {
		m := ir.NewModule(fmt.Sprintf("m%02d.go", i))
		m.LOC = i
		modules = append(modules, m)
	}
	s := Summarize(modules, 0)
	require.Len(t, s.TopFiles, TopFilesLimit)
	assert.Equal(t, TopFilesLimit+4, s.TopFiles[0].LOC)
}

func TestFormatProgress(t *testing.T) {
	tests := []struct {
		ev   ProgressEvent
		want string
	}{
		{ProgressEvent{Path: "a.ts", Index: 0, Total: 2, Status: ProgressWorking}, "[1/2] ● a.ts..."},
		{ProgressEvent{Path: "a.ts", Index: 1, Total: 2, Status: ProgressComplete}, "[2/2] ✓ a.ts"},
		{ProgressEvent{Path: "a.ts", Index: 1, Total: 2, Status: ProgressCached}, "[2/2] ✓ a.ts (cached)"},
		{ProgressEvent{Path: "a.ts", Index: 0, Total: 1, Status: ProgressFailed, Message: "boom"}, "[1/1] ✗ a.ts failed: boom"},
		{ProgressEvent{Path: "a.ts", Index: 0, Total: 1, Status: "odd"}, "[1/1] ? a.ts (unknown status)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatProgress(tt.ev))
	}
}

func TestProgressReporter_DropsWhenFull(t *testing.T) {
	pr := NewProgressReporter(2)
	for i := 0; i < 5; i++ {
		pr.Emit(ProgressEvent{Index: i})
	}
	pr.Close()

	var got []int
	for ev := range pr.Subscribe() {
		got = append(got, ev.Index)
	}
	assert.Equal(t, []int{0, 1}, got)
}
