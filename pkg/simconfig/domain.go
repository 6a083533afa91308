package simconfig

import (
	"simconfig/pkg/xmltree"
)

// DomainModule holds the simulation mesh geometry. It is a plain data holder
// with range validation; the interesting behavior lives in the codecs.
type DomainModule struct {
	XMin, XMax float64
	YMin, YMax float64
	ZMin, ZMax float64
	DX, DY, DZ float64
	Use2D      bool
}

// NewDomainModule returns a domain with the engine's stock defaults: a
// 1000-micron cube, 20-micron voxels, two-dimensional.
func NewDomainModule() *DomainModule {
	return &DomainModule{
		XMin: -500, XMax: 500,
		YMin: -500, YMax: 500,
		ZMin: -10, ZMax: 10,
		DX: 20, DY: 20, DZ: 20,
		Use2D: true,
	}
}

// SetBounds sets the mesh extents. Each max must exceed its min.
func (m *DomainModule) SetBounds(xmin, xmax, ymin, ymax, zmin, zmax float64) error {
	for _, pair := range [][2]float64{{xmin, xmax}, {ymin, ymax}, {zmin, zmax}} {
		if pair[1] <= pair[0] {
			return InvalidArgumentError{
				Field:  "bounds",
				Value:  formatNumber(pair[1]),
				Reason: "max must exceed min",
			}
		}
	}
	m.XMin, m.XMax = xmin, xmax
	m.YMin, m.YMax = ymin, ymax
	m.ZMin, m.ZMax = zmin, zmax
	return nil
}

// SetSpacing sets the voxel size along each axis. All values must be positive.
func (m *DomainModule) SetSpacing(dx, dy, dz float64) error {
	for _, v := range []float64{dx, dy, dz} {
		if !(v > 0) {
			return InvalidArgumentError{Field: "spacing", Value: formatNumber(v), Reason: "must be a positive number"}
		}
	}
	m.DX, m.DY, m.DZ = dx, dy, dz
	return nil
}

// Serialize appends the domain section under parent.
func (m *DomainModule) Serialize(parent *xmltree.Element) {
	domain := parent.Child("domain")
	domain.ChildText("x_min", formatNumber(m.XMin)).SetAttr("units", "micron")
	domain.ChildText("x_max", formatNumber(m.XMax)).SetAttr("units", "micron")
	domain.ChildText("y_min", formatNumber(m.YMin)).SetAttr("units", "micron")
	domain.ChildText("y_max", formatNumber(m.YMax)).SetAttr("units", "micron")
	domain.ChildText("z_min", formatNumber(m.ZMin)).SetAttr("units", "micron")
	domain.ChildText("z_max", formatNumber(m.ZMax)).SetAttr("units", "micron")
	domain.ChildText("dx", formatNumber(m.DX)).SetAttr("units", "micron")
	domain.ChildText("dy", formatNumber(m.DY)).SetAttr("units", "micron")
	domain.ChildText("dz", formatNumber(m.DZ)).SetAttr("units", "micron")
	domain.ChildText("use_2D", formatBool(m.Use2D))
}

// Deserialize replaces the geometry from a domain element, keeping current
// values for any field the element omits. A nil element is a no-op.
func (m *DomainModule) Deserialize(el *xmltree.Element) {
	if el == nil {
		return
	}
	readNumber(el, "x_min", &m.XMin)
	readNumber(el, "x_max", &m.XMax)
	readNumber(el, "y_min", &m.YMin)
	readNumber(el, "y_max", &m.YMax)
	readNumber(el, "z_min", &m.ZMin)
	readNumber(el, "z_max", &m.ZMax)
	readNumber(el, "dx", &m.DX)
	readNumber(el, "dy", &m.DY)
	readNumber(el, "dz", &m.DZ)
	if c := el.Find("use_2D"); c != nil {
		m.Use2D = parseBool(c.Text)
	}
}

// readNumber overwrites dst with the parsed child text when present and valid.
func readNumber(el *xmltree.Element, tag string, dst *float64) {
	if c := el.Find(tag); c != nil {
		if v, err := parseNumber(c.Text); err == nil {
			*dst = v
		}
	}
}
