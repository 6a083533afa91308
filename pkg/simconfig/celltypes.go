package simconfig

import (
	"strconv"
	"strings"

	"simconfig/pkg/xmltree"
)

// CellType describes one agent phenotype with a minimal parameter surface.
type CellType struct {
	Name            string
	CycleRate       float64
	ApoptosisRate   float64
	MotilitySpeed   float64
	MotilityPersist float64
	MotilityEnabled bool
}

// CellTypesModule owns the ordered set of named cell definitions.
type CellTypesModule struct {
	order     []string
	cellTypes map[string]CellType
}

// NewCellTypesModule returns an empty cell-type container.
func NewCellTypesModule() *CellTypesModule {
	return &CellTypesModule{cellTypes: make(map[string]CellType)}
}

// Add upserts a cell type by name. Re-adding keeps the original position.
func (m *CellTypesModule) Add(c CellType) error {
	if strings.TrimSpace(c.Name) == "" {
		return InvalidArgumentError{Field: "cell type name", Value: c.Name, Reason: "must not be empty"}
	}
	for field, v := range map[string]float64{
		"cycle rate":     c.CycleRate,
		"apoptosis rate": c.ApoptosisRate,
		"motility speed": c.MotilitySpeed,
	} {
		if v < 0 {
			return InvalidArgumentError{Field: field, Value: formatNumber(v), Reason: "must not be negative"}
		}
	}
	if _, exists := m.cellTypes[c.Name]; !exists {
		m.order = append(m.order, c.Name)
	}
	m.cellTypes[c.Name] = c
	return nil
}

// Get returns the named cell type.
func (m *CellTypesModule) Get(name string) (CellType, bool) {
	c, ok := m.cellTypes[name]
	return c, ok
}

// Names returns the cell type names in insertion order.
func (m *CellTypesModule) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// List returns the cell types in insertion order.
func (m *CellTypesModule) List() []CellType {
	out := make([]CellType, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.cellTypes[name])
	}
	return out
}

// Clear drops every cell type.
func (m *CellTypesModule) Clear() {
	m.cellTypes = make(map[string]CellType)
	m.order = nil
}

// Serialize appends one cell_definition element per cell type under parent,
// which is expected to be the cell_definitions element.
func (m *CellTypesModule) Serialize(parent *xmltree.Element) {
	for i, name := range m.order {
		c := m.cellTypes[name]
		def := parent.Child("cell_definition")
		def.SetAttr("name", c.Name)
		def.SetAttr("ID", strconv.Itoa(i))

		phenotype := def.Child("phenotype")
		cycle := phenotype.Child("cycle")
		cycle.ChildText("rate", formatNumber(c.CycleRate)).SetAttr("units", "1/min")
		death := phenotype.Child("death")
		death.ChildText("rate", formatNumber(c.ApoptosisRate)).SetAttr("units", "1/min")
		motility := phenotype.Child("motility")
		motility.ChildText("speed", formatNumber(c.MotilitySpeed)).SetAttr("units", "micron/min")
		motility.ChildText("persistence_time", formatNumber(c.MotilityPersist)).SetAttr("units", "min")
		motility.ChildText("enabled", formatBool(c.MotilityEnabled))
	}
}

// Deserialize replaces the cell-type set from the cell_definition children of
// a cell_definitions element. A nil element is a no-op.
func (m *CellTypesModule) Deserialize(el *xmltree.Element) {
	if el == nil {
		return
	}
	defs := el.FindAll("cell_definition")
	if len(defs) == 0 {
		return
	}
	m.Clear()
	for _, def := range defs {
		name, ok := def.Attr("name")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		c := CellType{Name: name}
		if phenotype := def.Find("phenotype"); phenotype != nil {
			if cycle := phenotype.Find("cycle"); cycle != nil {
				readNumber(cycle, "rate", &c.CycleRate)
			}
			if death := phenotype.Find("death"); death != nil {
				readNumber(death, "rate", &c.ApoptosisRate)
			}
			if motility := phenotype.Find("motility"); motility != nil {
				readNumber(motility, "speed", &c.MotilitySpeed)
				readNumber(motility, "persistence_time", &c.MotilityPersist)
				if enabled := motility.Find("enabled"); enabled != nil {
					c.MotilityEnabled = parseBool(enabled.Text)
				}
			}
		}
		if _, exists := m.cellTypes[c.Name]; !exists {
			m.order = append(m.order, c.Name)
		}
		m.cellTypes[c.Name] = c
	}
}
