package simconfig

import "fmt"

// Signal directions accepted by AddRule. The values are part of the external
// tabular format and are matched case-sensitively.
const (
	DirectionIncreases = "increases"
	DirectionDecreases = "decreases"
)

// Fixed ruleset metadata stamped on every registered record. The consuming
// engine only understands this one protocol revision.
const (
	ruleSetProtocol = "CBHG"
	ruleSetVersion  = "3.0"
	ruleSetFormat   = "csv"

	defaultRuleFolder   = "./config"
	defaultRuleFilename = "cell_rules.csv"
)

// Rule is one behavior-modulation entry: a signal drives a behavior of a cell
// type along a Hill response curve. Rules carry no identity beyond their
// field values; duplicates are legal and insertion order is significant.
type Rule struct {
	CellType        string
	Signal          string
	Direction       string
	Behavior        string
	SaturationValue float64
	HalfMax         float64
	HillPower       float64
	ApplyToDead     int
}

// RuleSet points at an external tabular rule source. Protocol, Version and
// Format are fixed at registration time.
type RuleSet struct {
	Folder   string
	Filename string
	Enabled  bool
	Protocol string
	Version  string
	Format   string
}

// RulesModule owns the ordered rule list and the named ruleset registry.
// It is not safe for concurrent use; one configuration belongs to one
// logical thread of control.
type RulesModule struct {
	rules    []Rule
	ruleSets map[string]RuleSet
	order    []string
}

// NewRulesModule returns an empty rule store.
func NewRulesModule() *RulesModule {
	return &RulesModule{ruleSets: make(map[string]RuleSet)}
}

// RegisterRuleSet upserts a ruleset record under the given name. Re-registering
// an existing name replaces the record but keeps its position in the emission
// order. Always succeeds.
func (m *RulesModule) RegisterRuleSet(name, folder, filename string, enabled bool) {
	if _, exists := m.ruleSets[name]; !exists {
		m.order = append(m.order, name)
	}
	m.ruleSets[name] = RuleSet{
		Folder:   folder,
		Filename: filename,
		Enabled:  enabled,
		Protocol: ruleSetProtocol,
		Version:  ruleSetVersion,
		Format:   ruleSetFormat,
	}
}

// AddRule validates and appends a rule. Direction must be exactly "increases"
// or "decreases"; ApplyToDead must be 0 or 1.
func (m *RulesModule) AddRule(r Rule) error {
	if r.Direction != DirectionIncreases && r.Direction != DirectionDecreases {
		return InvalidArgumentError{
			Field:  "direction",
			Value:  r.Direction,
			Reason: fmt.Sprintf("must be %q or %q", DirectionIncreases, DirectionDecreases),
		}
	}
	if r.ApplyToDead != 0 && r.ApplyToDead != 1 {
		return InvalidArgumentError{
			Field:  "apply_to_dead",
			Value:  fmt.Sprintf("%d", r.ApplyToDead),
			Reason: "must be 0 or 1",
		}
	}
	m.rules = append(m.rules, r)
	return nil
}

// Rules returns a copy of the stored rules in insertion order.
func (m *RulesModule) Rules() []Rule {
	out := make([]Rule, len(m.rules))
	copy(out, m.rules)
	return out
}

// RuleSets returns a copy of the registry keyed by name.
func (m *RulesModule) RuleSets() map[string]RuleSet {
	out := make(map[string]RuleSet, len(m.ruleSets))
	for name, rs := range m.ruleSets {
		out[name] = rs
	}
	return out
}

// RuleSetNames returns the registered names in registration order.
func (m *RulesModule) RuleSetNames() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// ClearRules drops every stored rule.
func (m *RulesModule) ClearRules() {
	m.rules = nil
}

// ClearRuleSets drops every registered ruleset.
func (m *RulesModule) ClearRuleSets() {
	m.ruleSets = make(map[string]RuleSet)
	m.order = nil
}
