package simconfig

import (
	"errors"
	"reflect"
	"testing"

	"simconfig/pkg/xmltree"
)

func TestDomainValidation(t *testing.T) {
	m := NewDomainModule()
	var argErr InvalidArgumentError
	if err := m.SetBounds(100, -100, 0, 10, 0, 10); !errors.As(err, &argErr) {
		t.Fatalf("expected InvalidArgumentError for inverted bounds, got %v", err)
	}
	if err := m.SetSpacing(0, 20, 20); !errors.As(err, &argErr) {
		t.Fatalf("expected InvalidArgumentError for zero spacing, got %v", err)
	}
	if m.XMin != -500 || m.DX != 20 {
		t.Fatalf("rejected values must not stick: %+v", m)
	}
}

func TestDomainSerializeRoundTrip(t *testing.T) {
	src := NewDomainModule()
	if err := src.SetBounds(-400, 400, -300, 300, 0, 40); err != nil {
		t.Fatalf("SetBounds: %v", err)
	}
	if err := src.SetSpacing(10, 10, 10); err != nil {
		t.Fatalf("SetSpacing: %v", err)
	}
	src.Use2D = false

	parent := xmltree.New("root")
	src.Serialize(parent)

	dst := NewDomainModule()
	dst.Deserialize(parent.Find("domain"))
	if !reflect.DeepEqual(dst, src) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", dst, src)
	}
}

func TestOptionsValidation(t *testing.T) {
	m := NewOptionsModule()
	var argErr InvalidArgumentError
	if err := m.SetMaxTime(0); !errors.As(err, &argErr) {
		t.Fatalf("expected InvalidArgumentError, got %v", err)
	}
	if err := m.SetTimeSteps(0.01, -1, 6); !errors.As(err, &argErr) {
		t.Fatalf("expected InvalidArgumentError, got %v", err)
	}
	if err := m.SetOutputFolder("  "); !errors.As(err, &argErr) {
		t.Fatalf("expected InvalidArgumentError, got %v", err)
	}
	if m.MaxTime != 8640 || m.MechanicsDT != 0.1 || m.OutputFolder != "output" {
		t.Fatalf("rejected values must not stick: %+v", m)
	}
}

func TestOptionsSerializeRoundTrip(t *testing.T) {
	src := NewOptionsModule()
	if err := src.SetMaxTime(1440); err != nil {
		t.Fatalf("SetMaxTime: %v", err)
	}
	if err := src.SetFullDataInterval(30, false); err != nil {
		t.Fatalf("SetFullDataInterval: %v", err)
	}
	if err := src.SetSVGInterval(15, true); err != nil {
		t.Fatalf("SetSVGInterval: %v", err)
	}
	src.LegacyData = true

	parent := xmltree.New("root")
	src.SerializeOverall(parent)
	src.SerializeSave(parent)

	dst := NewOptionsModule()
	dst.DeserializeOverall(parent.Find("overall"))
	dst.DeserializeSave(parent.Find("save"))
	if !reflect.DeepEqual(dst, src) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", dst, src)
	}
}

func TestSubstratesAddValidation(t *testing.T) {
	m := NewSubstratesModule()
	var argErr InvalidArgumentError
	if err := m.Add(Substrate{Name: " "}); !errors.As(err, &argErr) {
		t.Fatalf("expected InvalidArgumentError for blank name, got %v", err)
	}
	if err := m.Add(Substrate{Name: "oxygen", DiffusionCoefficient: -1}); !errors.As(err, &argErr) {
		t.Fatalf("expected InvalidArgumentError for negative coefficient, got %v", err)
	}
	if err := m.Add(Substrate{Name: "oxygen"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if s, _ := m.Get("oxygen"); s.Units != "dimensionless" {
		t.Fatalf("default units = %q", s.Units)
	}
}

func TestSubstratesUpsertKeepsOrder(t *testing.T) {
	m := NewSubstratesModule()
	for _, name := range []string{"oxygen", "glucose"} {
		if err := m.Add(Substrate{Name: name}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if err := m.Add(Substrate{Name: "oxygen", DecayRate: 0.1}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got, want := m.Names(), []string{"oxygen", "glucose"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if s, _ := m.Get("oxygen"); s.DecayRate != 0.1 {
		t.Fatalf("upsert did not replace: %+v", s)
	}
}

func TestSubstratesSerializeRoundTrip(t *testing.T) {
	src := NewSubstratesModule()
	if err := src.Add(Substrate{
		Name:                 "oxygen",
		Units:                "mmHg",
		DiffusionCoefficient: 100000,
		DecayRate:            0.1,
		InitialCondition:     38,
		DirichletEnabled:     true,
		DirichletValue:       38,
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := src.Add(Substrate{Name: "glucose", DiffusionCoefficient: 600}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	parent := xmltree.New("microenvironment_setup")
	src.Serialize(parent)

	dst := NewSubstratesModule()
	dst.Deserialize(parent)
	if !reflect.DeepEqual(dst.List(), src.List()) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", dst.List(), src.List())
	}
}

func TestCellTypesAddValidation(t *testing.T) {
	m := NewCellTypesModule()
	var argErr InvalidArgumentError
	if err := m.Add(CellType{Name: ""}); !errors.As(err, &argErr) {
		t.Fatalf("expected InvalidArgumentError for blank name, got %v", err)
	}
	if err := m.Add(CellType{Name: "tumor", CycleRate: -1}); !errors.As(err, &argErr) {
		t.Fatalf("expected InvalidArgumentError for negative rate, got %v", err)
	}
	if err := m.Add(CellType{Name: "tumor", CycleRate: 0.00072}); err != nil {
		t.Fatalf("Add: %v", err)
	}
}

func TestCellTypesSerializeRoundTrip(t *testing.T) {
	src := NewCellTypesModule()
	for _, c := range []CellType{
		{Name: "tumor", CycleRate: 0.00072, ApoptosisRate: 0.00053, MotilitySpeed: 1, MotilityPersist: 15, MotilityEnabled: true},
		{Name: "macrophage", MotilitySpeed: 4, MotilityPersist: 5, MotilityEnabled: true},
	} {
		if err := src.Add(c); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	parent := xmltree.New("cell_definitions")
	src.Serialize(parent)

	if got := parent.FindAll("cell_definition")[1].AttrDefault("ID", ""); got != "1" {
		t.Fatalf("second cell definition ID = %q", got)
	}

	dst := NewCellTypesModule()
	dst.Deserialize(parent)
	if !reflect.DeepEqual(dst.List(), src.List()) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", dst.List(), src.List())
	}
}
