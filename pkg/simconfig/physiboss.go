package simconfig

import (
	"sort"

	"simconfig/pkg/xmltree"
)

// Boolean-network defaults applied on every Enable call.
const (
	defaultBoolNetTimeStep  = 12.0
	defaultBoolNetScaling   = 10.0
	defaultBoolNetStartTime = 0.0
)

// BoolNetworkSettings is the settings bag of an enabled boolean-network
// integration: the model file plus timing scalars and three free-form maps.
type BoolNetworkSettings struct {
	ModelFile     string
	TimeStep      float64
	Scaling       float64
	StartTime     float64
	InitialValues map[string]bool
	Mutations     map[string]map[string]bool
	Parameters    map[string]float64
}

func (s BoolNetworkSettings) clone() BoolNetworkSettings {
	out := s
	out.InitialValues = make(map[string]bool, len(s.InitialValues))
	for k, v := range s.InitialValues {
		out.InitialValues[k] = v
	}
	out.Mutations = make(map[string]map[string]bool, len(s.Mutations))
	for line, nodes := range s.Mutations {
		m := make(map[string]bool, len(nodes))
		for k, v := range nodes {
			m[k] = v
		}
		out.Mutations[line] = m
	}
	out.Parameters = make(map[string]float64, len(s.Parameters))
	for k, v := range s.Parameters {
		out.Parameters[k] = v
	}
	return out
}

// EnableOption seeds part of the settings bag during Enable.
type EnableOption func(*BoolNetworkSettings)

// WithInitialValues seeds per-node initial boolean states.
func WithInitialValues(values map[string]bool) EnableOption {
	return func(s *BoolNetworkSettings) {
		for k, v := range values {
			s.InitialValues[k] = v
		}
	}
}

// WithMutations seeds per-cell-line node overrides.
func WithMutations(mutations map[string]map[string]bool) EnableOption {
	return func(s *BoolNetworkSettings) {
		for line, nodes := range mutations {
			m := make(map[string]bool, len(nodes))
			for k, v := range nodes {
				m[k] = v
			}
			s.Mutations[line] = m
		}
	}
}

// WithParameters seeds free-form numeric parameters.
func WithParameters(params map[string]float64) EnableOption {
	return func(s *BoolNetworkSettings) {
		for k, v := range params {
			s.Parameters[k] = v
		}
	}
}

// BoolNetworkModule holds the optional boolean-network integration. The
// module starts disabled; every mutator except Enable requires the enabled
// state, and there is no transition back to disabled.
type BoolNetworkModule struct {
	enabled  bool
	settings BoolNetworkSettings
}

// NewBoolNetworkModule returns a disabled module.
func NewBoolNetworkModule() *BoolNetworkModule {
	return &BoolNetworkModule{}
}

// Enable switches the module on with the given model file. Calling Enable
// again resets the settings bag: defaults first, then whatever the options
// supply. Options never remove the defaults, they only overlay them.
func (m *BoolNetworkModule) Enable(modelFile string, opts ...EnableOption) {
	m.enabled = true
	m.settings = BoolNetworkSettings{
		ModelFile:     modelFile,
		TimeStep:      defaultBoolNetTimeStep,
		Scaling:       defaultBoolNetScaling,
		StartTime:     defaultBoolNetStartTime,
		InitialValues: make(map[string]bool),
		Mutations:     make(map[string]map[string]bool),
		Parameters:    make(map[string]float64),
	}
	for _, opt := range opts {
		opt(&m.settings)
	}
}

// SetTimeStep sets the network update interval in minutes.
func (m *BoolNetworkModule) SetTimeStep(v float64) error {
	if err := m.requireEnabled("set time step"); err != nil {
		return err
	}
	return m.setPositive("time_step", v, func() { m.settings.TimeStep = v })
}

// SetScaling sets the network execution speed scaling factor.
func (m *BoolNetworkModule) SetScaling(v float64) error {
	if err := m.requireEnabled("set scaling"); err != nil {
		return err
	}
	return m.setPositive("scaling", v, func() { m.settings.Scaling = v })
}

// AddInitialValue upserts the initial boolean state of a node.
func (m *BoolNetworkModule) AddInitialValue(node string, value bool) error {
	if err := m.requireEnabled("add initial value"); err != nil {
		return err
	}
	m.settings.InitialValues[node] = value
	return nil
}

// AddMutation forces a node to a fixed value for one cell line.
func (m *BoolNetworkModule) AddMutation(cellLine, node string, value bool) error {
	if err := m.requireEnabled("add mutation"); err != nil {
		return err
	}
	nodes, ok := m.settings.Mutations[cellLine]
	if !ok {
		nodes = make(map[string]bool)
		m.settings.Mutations[cellLine] = nodes
	}
	nodes[node] = value
	return nil
}

// AddParameter upserts a free-form numeric parameter.
func (m *BoolNetworkModule) AddParameter(name string, value float64) error {
	if err := m.requireEnabled("add parameter"); err != nil {
		return err
	}
	m.settings.Parameters[name] = value
	return nil
}

// IsEnabled reports whether Enable has been called.
func (m *BoolNetworkModule) IsEnabled() bool {
	return m.enabled
}

// Settings returns a deep copy of the settings bag, or the zero value while
// the module is disabled.
func (m *BoolNetworkModule) Settings() BoolNetworkSettings {
	if !m.enabled {
		return BoolNetworkSettings{}
	}
	return m.settings.clone()
}

func (m *BoolNetworkModule) requireEnabled(op string) error {
	if !m.enabled {
		return InvalidStateError{Op: op, Reason: "boolean network must be enabled first"}
	}
	return nil
}

func (m *BoolNetworkModule) setPositive(field string, v float64, apply func()) error {
	if !(v > 0) {
		return InvalidArgumentError{Field: field, Value: formatNumber(v), Reason: "must be a positive number"}
	}
	apply()
	return nil
}

// Serialize appends the physiboss fragment under parent. A disabled module
// emits nothing. The three optional blocks are omitted entirely when empty;
// map-keyed children are written in sorted key order so output is stable.
func (m *BoolNetworkModule) Serialize(parent *xmltree.Element) {
	if !m.enabled {
		return
	}
	root := parent.Child("physiboss")
	root.SetAttr("enabled", "true")

	settings := root.Child("physiboss_settings")
	settings.ChildText("physiboss_bnd_file", m.settings.ModelFile)
	settings.ChildText("physiboss_time_step", formatNumber(m.settings.TimeStep)).SetAttr("units", "min")
	settings.ChildText("physiboss_scaling", formatNumber(m.settings.Scaling))
	settings.ChildText("physiboss_start_time", formatNumber(m.settings.StartTime)).SetAttr("units", "min")

	if len(m.settings.InitialValues) > 0 {
		block := root.Child("physiboss_initial_values")
		for _, node := range sortedKeys(m.settings.InitialValues) {
			el := block.ChildText("physiboss_initial_value", formatBool(m.settings.InitialValues[node]))
			el.SetAttr("node", node)
		}
	}

	if len(m.settings.Mutations) > 0 {
		block := root.Child("physiboss_mutations")
		for _, line := range sortedKeys(m.settings.Mutations) {
			lineEl := block.Child("physiboss_mutation")
			lineEl.SetAttr("cell_line", line)
			nodes := m.settings.Mutations[line]
			for _, node := range sortedKeys(nodes) {
				el := lineEl.ChildText("physiboss_mutation_value", formatBool(nodes[node]))
				el.SetAttr("node", node)
			}
		}
	}

	if len(m.settings.Parameters) > 0 {
		block := root.Child("physiboss_parameters")
		for _, name := range sortedKeys(m.settings.Parameters) {
			el := block.ChildText("physiboss_parameter", formatNumber(m.settings.Parameters[name]))
			el.SetAttr("name", name)
		}
	}
}

// Deserialize rebuilds the module from a physiboss element. A nil element is
// a no-op. An element flagged enabled="false" is ignored the same way; the
// fragment is only ever written for enabled modules.
func (m *BoolNetworkModule) Deserialize(el *xmltree.Element) {
	if el == nil {
		return
	}
	if !parseBool(el.AttrDefault("enabled", "true")) {
		return
	}

	m.Enable(defaultBoolNetModelFile(el))
	settings := el.Find("physiboss_settings")
	if settings != nil {
		if v, err := parseNumber(settings.ChildTextOf("physiboss_time_step")); err == nil && v > 0 {
			m.settings.TimeStep = v
		}
		if v, err := parseNumber(settings.ChildTextOf("physiboss_scaling")); err == nil && v > 0 {
			m.settings.Scaling = v
		}
		if v, err := parseNumber(settings.ChildTextOf("physiboss_start_time")); err == nil {
			m.settings.StartTime = v
		}
	}

	if block := el.Find("physiboss_initial_values"); block != nil {
		for _, node := range block.FindAll("physiboss_initial_value") {
			if name, ok := node.Attr("node"); ok {
				m.settings.InitialValues[name] = parseBool(node.Text)
			}
		}
	}
	if block := el.Find("physiboss_mutations"); block != nil {
		for _, lineEl := range block.FindAll("physiboss_mutation") {
			line, ok := lineEl.Attr("cell_line")
			if !ok {
				continue
			}
			for _, node := range lineEl.FindAll("physiboss_mutation_value") {
				if name, okNode := node.Attr("node"); okNode {
					nodes, exists := m.settings.Mutations[line]
					if !exists {
						nodes = make(map[string]bool)
						m.settings.Mutations[line] = nodes
					}
					nodes[name] = parseBool(node.Text)
				}
			}
		}
	}
	if block := el.Find("physiboss_parameters"); block != nil {
		for _, param := range block.FindAll("physiboss_parameter") {
			name, ok := param.Attr("name")
			if !ok {
				continue
			}
			if v, err := parseNumber(param.Text); err == nil {
				m.settings.Parameters[name] = v
			}
		}
	}
}

func defaultBoolNetModelFile(el *xmltree.Element) string {
	if settings := el.Find("physiboss_settings"); settings != nil {
		if file := settings.ChildTextOf("physiboss_bnd_file"); file != "" {
			return file
		}
	}
	return "boolean_model.bnd"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
