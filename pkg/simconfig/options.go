package simconfig

import (
	"strings"

	"simconfig/pkg/xmltree"
)

// OptionsModule holds the overall timing parameters and the output options.
// Two document sections are derived from it: overall and save.
type OptionsModule struct {
	MaxTime    float64
	TimeUnits  string
	SpaceUnits string

	DiffusionDT float64
	MechanicsDT float64
	PhenotypeDT float64

	OutputFolder     string
	FullDataInterval float64
	FullDataEnable   bool
	SVGInterval      float64
	SVGEnable        bool
	LegacyData       bool
}

// NewOptionsModule returns options with the engine's stock defaults.
func NewOptionsModule() *OptionsModule {
	return &OptionsModule{
		MaxTime:          8640,
		TimeUnits:        "min",
		SpaceUnits:       "micron",
		DiffusionDT:      0.01,
		MechanicsDT:      0.1,
		PhenotypeDT:      6,
		OutputFolder:     "output",
		FullDataInterval: 60,
		FullDataEnable:   true,
		SVGInterval:      60,
		SVGEnable:        true,
	}
}

// SetMaxTime sets the total simulated time in the configured time units.
func (m *OptionsModule) SetMaxTime(v float64) error {
	if !(v > 0) {
		return InvalidArgumentError{Field: "max_time", Value: formatNumber(v), Reason: "must be a positive number"}
	}
	m.MaxTime = v
	return nil
}

// SetTimeSteps sets the three solver step sizes. All must be positive.
func (m *OptionsModule) SetTimeSteps(diffusion, mechanics, phenotype float64) error {
	for _, v := range []float64{diffusion, mechanics, phenotype} {
		if !(v > 0) {
			return InvalidArgumentError{Field: "time step", Value: formatNumber(v), Reason: "must be a positive number"}
		}
	}
	m.DiffusionDT, m.MechanicsDT, m.PhenotypeDT = diffusion, mechanics, phenotype
	return nil
}

// SetOutputFolder sets the engine's output directory.
func (m *OptionsModule) SetOutputFolder(folder string) error {
	if strings.TrimSpace(folder) == "" {
		return InvalidArgumentError{Field: "output folder", Value: folder, Reason: "must not be empty"}
	}
	m.OutputFolder = folder
	return nil
}

// SetFullDataInterval sets the full-state snapshot interval.
func (m *OptionsModule) SetFullDataInterval(v float64, enable bool) error {
	if !(v > 0) {
		return InvalidArgumentError{Field: "full_data interval", Value: formatNumber(v), Reason: "must be a positive number"}
	}
	m.FullDataInterval = v
	m.FullDataEnable = enable
	return nil
}

// SetSVGInterval sets the SVG snapshot interval.
func (m *OptionsModule) SetSVGInterval(v float64, enable bool) error {
	if !(v > 0) {
		return InvalidArgumentError{Field: "SVG interval", Value: formatNumber(v), Reason: "must be a positive number"}
	}
	m.SVGInterval = v
	m.SVGEnable = enable
	return nil
}

// SerializeOverall appends the overall timing section under parent.
func (m *OptionsModule) SerializeOverall(parent *xmltree.Element) {
	overall := parent.Child("overall")
	overall.ChildText("max_time", formatNumber(m.MaxTime)).SetAttr("units", m.TimeUnits)
	overall.ChildText("time_units", m.TimeUnits)
	overall.ChildText("space_units", m.SpaceUnits)
	overall.ChildText("dt_diffusion", formatNumber(m.DiffusionDT)).SetAttr("units", m.TimeUnits)
	overall.ChildText("dt_mechanics", formatNumber(m.MechanicsDT)).SetAttr("units", m.TimeUnits)
	overall.ChildText("dt_phenotype", formatNumber(m.PhenotypeDT)).SetAttr("units", m.TimeUnits)
}

// SerializeSave appends the save/output section under parent.
func (m *OptionsModule) SerializeSave(parent *xmltree.Element) {
	save := parent.Child("save")
	save.ChildText("folder", m.OutputFolder)
	fullData := save.Child("full_data")
	fullData.ChildText("interval", formatNumber(m.FullDataInterval)).SetAttr("units", m.TimeUnits)
	fullData.ChildText("enable", formatBool(m.FullDataEnable))
	svg := save.Child("SVG")
	svg.ChildText("interval", formatNumber(m.SVGInterval)).SetAttr("units", m.TimeUnits)
	svg.ChildText("enable", formatBool(m.SVGEnable))
	legacy := save.Child("legacy_data")
	legacy.ChildText("enable", formatBool(m.LegacyData))
}

// DeserializeOverall replaces the timing parameters from an overall element.
// A nil element is a no-op; omitted fields keep their current values.
func (m *OptionsModule) DeserializeOverall(el *xmltree.Element) {
	if el == nil {
		return
	}
	readNumber(el, "max_time", &m.MaxTime)
	if t := el.ChildTextOf("time_units"); t != "" {
		m.TimeUnits = t
	}
	if s := el.ChildTextOf("space_units"); s != "" {
		m.SpaceUnits = s
	}
	readNumber(el, "dt_diffusion", &m.DiffusionDT)
	readNumber(el, "dt_mechanics", &m.MechanicsDT)
	readNumber(el, "dt_phenotype", &m.PhenotypeDT)
}

// DeserializeSave replaces the output options from a save element. A nil
// element is a no-op.
func (m *OptionsModule) DeserializeSave(el *xmltree.Element) {
	if el == nil {
		return
	}
	if f := el.ChildTextOf("folder"); f != "" {
		m.OutputFolder = f
	}
	if fullData := el.Find("full_data"); fullData != nil {
		readNumber(fullData, "interval", &m.FullDataInterval)
		if c := fullData.Find("enable"); c != nil {
			m.FullDataEnable = parseBool(c.Text)
		}
	}
	if svg := el.Find("SVG"); svg != nil {
		readNumber(svg, "interval", &m.SVGInterval)
		if c := svg.Find("enable"); c != nil {
			m.SVGEnable = parseBool(c.Text)
		}
	}
	if legacy := el.Find("legacy_data"); legacy != nil {
		if c := legacy.Find("enable"); c != nil {
			m.LegacyData = parseBool(c.Text)
		}
	}
}
