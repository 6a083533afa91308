package simconfig

import (
	"strconv"
	"strings"

	"simconfig/pkg/xmltree"
)

// Substrate describes one diffusible field of the microenvironment.
type Substrate struct {
	Name                 string
	Units                string
	DiffusionCoefficient float64
	DecayRate            float64
	InitialCondition     float64
	DirichletEnabled     bool
	DirichletValue       float64
}

// SubstratesModule owns the ordered set of named substrates.
type SubstratesModule struct {
	order      []string
	substrates map[string]Substrate
}

// NewSubstratesModule returns an empty substrate container.
func NewSubstratesModule() *SubstratesModule {
	return &SubstratesModule{substrates: make(map[string]Substrate)}
}

// Add upserts a substrate by name. Re-adding keeps the original position.
func (m *SubstratesModule) Add(s Substrate) error {
	if strings.TrimSpace(s.Name) == "" {
		return InvalidArgumentError{Field: "substrate name", Value: s.Name, Reason: "must not be empty"}
	}
	if s.DiffusionCoefficient < 0 {
		return InvalidArgumentError{Field: "diffusion_coefficient", Value: formatNumber(s.DiffusionCoefficient), Reason: "must not be negative"}
	}
	if s.DecayRate < 0 {
		return InvalidArgumentError{Field: "decay_rate", Value: formatNumber(s.DecayRate), Reason: "must not be negative"}
	}
	if s.Units == "" {
		s.Units = "dimensionless"
	}
	if _, exists := m.substrates[s.Name]; !exists {
		m.order = append(m.order, s.Name)
	}
	m.substrates[s.Name] = s
	return nil
}

// Get returns the named substrate.
func (m *SubstratesModule) Get(name string) (Substrate, bool) {
	s, ok := m.substrates[name]
	return s, ok
}

// Names returns the substrate names in insertion order.
func (m *SubstratesModule) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// List returns the substrates in insertion order.
func (m *SubstratesModule) List() []Substrate {
	out := make([]Substrate, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.substrates[name])
	}
	return out
}

// Clear drops every substrate.
func (m *SubstratesModule) Clear() {
	m.substrates = make(map[string]Substrate)
	m.order = nil
}

// Serialize appends one variable element per substrate under parent, which is
// expected to be the microenvironment_setup element.
func (m *SubstratesModule) Serialize(parent *xmltree.Element) {
	for i, name := range m.order {
		s := m.substrates[name]
		variable := parent.Child("variable")
		variable.SetAttr("name", s.Name)
		variable.SetAttr("units", s.Units)
		variable.SetAttr("ID", strconv.Itoa(i))

		params := variable.Child("physical_parameter_set")
		params.ChildText("diffusion_coefficient", formatNumber(s.DiffusionCoefficient)).SetAttr("units", "micron^2/min")
		params.ChildText("decay_rate", formatNumber(s.DecayRate)).SetAttr("units", "1/min")

		variable.ChildText("initial_condition", formatNumber(s.InitialCondition)).SetAttr("units", s.Units)
		dirichlet := variable.ChildText("Dirichlet_boundary_condition", formatNumber(s.DirichletValue))
		dirichlet.SetAttr("units", s.Units)
		dirichlet.SetAttr("enabled", formatBool(s.DirichletEnabled))
	}
}

// Deserialize replaces the substrate set from the variable children of a
// microenvironment_setup element. A nil element is a no-op.
func (m *SubstratesModule) Deserialize(el *xmltree.Element) {
	if el == nil {
		return
	}
	variables := el.FindAll("variable")
	if len(variables) == 0 {
		return
	}
	m.Clear()
	for _, variable := range variables {
		name, ok := variable.Attr("name")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		s := Substrate{Name: name, Units: variable.AttrDefault("units", "dimensionless")}
		if params := variable.Find("physical_parameter_set"); params != nil {
			readNumber(params, "diffusion_coefficient", &s.DiffusionCoefficient)
			readNumber(params, "decay_rate", &s.DecayRate)
		}
		readNumber(variable, "initial_condition", &s.InitialCondition)
		if dirichlet := variable.Find("Dirichlet_boundary_condition"); dirichlet != nil {
			if v, err := parseNumber(dirichlet.Text); err == nil {
				s.DirichletValue = v
			}
			s.DirichletEnabled = parseBool(dirichlet.AttrDefault("enabled", "false"))
		}
		if _, exists := m.substrates[s.Name]; !exists {
			m.order = append(m.order, s.Name)
		}
		m.substrates[s.Name] = s
	}
}
