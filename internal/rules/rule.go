// Package rules turns Module IR into threshold-checked quality findings.
// Rules are independent; the Registry runs them in registration order.
package rules

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/codescope/internal/ir"
)

// Rule inspects a module or one of its symbols and emits findings.
type Rule interface {
	// Name identifies the rule in logs and reports.
	Name() string

	// CheckModule returns module-level findings.
	CheckModule(m *ir.Module) []ir.QualityMetric

	// CheckSymbol returns findings for a single symbol.
	CheckSymbol(s *ir.Symbol) []ir.QualityMetric
}

// Registry owns an ordered set of rules.
type Registry struct {
	rules []Rule
}

// NewRegistry returns a registry holding rules in the given order.
func NewRegistry(rules ...Rule) *Registry {
	r := &Registry{}
	for _, rule := range rules {
		r.Register(rule)
	}
	return r
}

// Register appends rule to the registry.
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
}

// Rules returns the registered rules in order.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// CheckModule concatenates the module findings of every rule.
func (r *Registry) CheckModule(m *ir.Module) []ir.QualityMetric {
	out := []ir.QualityMetric{}
	for _, rule := range r.rules {
		out = append(out, rule.CheckModule(m)...)
	}
	return out
}

// CheckSymbol concatenates the symbol findings of every rule.
func (r *Registry) CheckSymbol(s *ir.Symbol) []ir.QualityMetric {
	out := []ir.QualityMetric{}
	for _, rule := range r.rules {
		out = append(out, rule.CheckSymbol(s)...)
	}
	return out
}

// Apply attaches module and symbol findings to m. Only the metrics fields
// are touched.
func (r *Registry) Apply(m *ir.Module) {
	m.Metrics = append(m.Metrics, r.CheckModule(m)...)
	for i := range m.Symbols {
		m.Symbols[i].Metrics = append(m.Symbols[i].Metrics, r.CheckSymbol(&m.Symbols[i])...)
	}
}

// --- finding constructors ---

// info returns an informational finding without a threshold.
func info(name string, value float64) ir.QualityMetric {
	return ir.QualityMetric{Name: name, Value: value, Severity: ir.SeverityInfo}
}

// measure returns a thresholded finding. It carries sev and a message only
// when value exceeds threshold; otherwise it is Info.
func measure(name string, value, threshold float64, sev ir.Severity, message func() string) ir.QualityMetric {
	q := ir.QualityMetric{
		Name:      name,
		Value:     value,
		Threshold: ir.Ptr(threshold),
		Severity:  ir.SeverityInfo,
	}
	if value > threshold {
		q.Severity = sev
		q.Message = ir.Ptr(message())
	}
	return q
}

// offender is a function exceeding a per-symbol threshold.
type offender struct {
	name  string
	value int
}

// aggregate returns the module-level summary of per-symbol breaches, or nil
// when there are none. itemFormat receives the symbol name and value.
func aggregate(name string, offenders []offender, header, itemFormat string, sev ir.Severity) []ir.QualityMetric {
	if len(offenders) == 0 {
		return nil
	}
	items := make([]string, len(offenders))
	for i, o := range offenders {
		items[i] = fmt.Sprintf(itemFormat, o.name, o.value)
	}
	msg := fmt.Sprintf("%d functions exceed %s: %s", len(offenders), header, strings.Join(items, ", "))
	return []ir.QualityMetric{{
		Name:      name,
		Value:     float64(len(offenders)),
		Threshold: ir.Ptr(0.0),
		Severity:  sev,
		Message:   ir.Ptr(msg),
	}}
}
