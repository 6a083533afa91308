// Package simconfig builds and parses XML configuration documents for an
// external agent-based cell simulation engine. A Config aggregates one module
// per document section; callers mutate module state through the accessors and
// then generate the document in one shot, or load an existing document back
// into the same in-memory model. Generation is deterministic: the same module
// state always yields the same bytes.
package simconfig

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"simconfig/pkg/xmltree"
)

const (
	rootTag     = "PhysiCell_settings"
	rootVersion = "simconfig-1.0"
)

// Config is the aggregate builder. It owns one module per document section
// and is intended for single-threaded use.
type Config struct {
	domain     *DomainModule
	options    *OptionsModule
	substrates *SubstratesModule
	cellTypes  *CellTypesModule
	rules      *RulesModule
	boolNet    *BoolNetworkModule
}

// New returns a configuration with every module at its defaults.
func New() *Config {
	return &Config{
		domain:     NewDomainModule(),
		options:    NewOptionsModule(),
		substrates: NewSubstratesModule(),
		cellTypes:  NewCellTypesModule(),
		rules:      NewRulesModule(),
		boolNet:    NewBoolNetworkModule(),
	}
}

// Domain returns the mesh geometry module.
func (c *Config) Domain() *DomainModule { return c.domain }

// Options returns the timing and output options module.
func (c *Config) Options() *OptionsModule { return c.options }

// Substrates returns the diffusible substrate module.
func (c *Config) Substrates() *SubstratesModule { return c.substrates }

// CellTypes returns the cell definition module.
func (c *Config) CellTypes() *CellTypesModule { return c.cellTypes }

// Rules returns the behavior-rule module.
func (c *Config) Rules() *RulesModule { return c.rules }

// BoolNetwork returns the boolean-network integration module.
func (c *Config) BoolNetwork() *BoolNetworkModule { return c.boolNet }

// Document assembles a fresh document tree from the current module state.
// The tree is a write-once artifact: it holds no references back into the
// modules, and section order is fixed.
func (c *Config) Document() *xmltree.Element {
	root := xmltree.New(rootTag)
	root.SetAttr("version", rootVersion)

	c.domain.Serialize(root)
	c.options.SerializeOverall(root)
	c.options.SerializeSave(root)

	micro := root.Child("microenvironment_setup")
	c.substrates.Serialize(micro)
	c.rules.Serialize(micro)

	cellDefs := root.Child("cell_definitions")
	c.cellTypes.Serialize(cellDefs)

	c.boolNet.Serialize(root)
	return root
}

// GenerateXML returns the serialized document.
func (c *Config) GenerateXML() []byte {
	return c.Document().Bytes()
}

// WriteXML serializes the document to w.
func (c *Config) WriteXML(w io.Writer) error {
	return c.Document().WriteTo(w)
}

// SaveXML writes the document to path, creating missing parent directories.
func (c *Config) SaveXML(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	if err := c.WriteXML(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// LoadXML parses a document and hands each section to its module. Sections
// absent from the document are tolerated silently: the owning module keeps
// its current state.
func (c *Config) LoadXML(r io.Reader) error {
	root, err := xmltree.Parse(r)
	if err != nil {
		return err
	}
	if root.Tag != rootTag {
		return fmt.Errorf("unexpected root element %q, want %q", root.Tag, rootTag)
	}

	c.domain.Deserialize(root.Find("domain"))
	c.options.DeserializeOverall(root.Find("overall"))
	c.options.DeserializeSave(root.Find("save"))

	micro := root.Find("microenvironment_setup")
	c.substrates.Deserialize(micro)
	c.rules.Deserialize(micro.Find("cell_rules"))

	c.cellTypes.Deserialize(root.Find("cell_definitions"))
	c.boolNet.Deserialize(root.Find("physiboss"))
	return nil
}

// LoadXMLFile is LoadXML over a file path.
func (c *Config) LoadXMLFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return c.LoadXML(f)
}
