package simconfig

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"simconfig/pkg/xmltree"
)

func sampleRules() []Rule {
	return []Rule{
		{
			CellType:        "tumor",
			Signal:          "oxygen",
			Direction:       DirectionIncreases,
			Behavior:        "cycle entry",
			SaturationValue: 0.0007,
			HalfMax:         21.5,
			HillPower:       4,
			ApplyToDead:     0,
		},
		{
			CellType:        "tumor",
			Signal:          "pressure",
			Direction:       DirectionDecreases,
			Behavior:        "cycle entry",
			SaturationValue: 0,
			HalfMax:         1,
			HillPower:       4,
			ApplyToDead:     0,
		},
		{
			CellType:        "macrophage",
			Signal:          "dead",
			Direction:       DirectionIncreases,
			Behavior:        "migration speed",
			SaturationValue: 2.5,
			HalfMax:         0.1,
			HillPower:       2,
			ApplyToDead:     1,
		},
	}
}

func TestAddRuleValidation(t *testing.T) {
	m := NewRulesModule()
	for _, r := range sampleRules() {
		if err := m.AddRule(r); err != nil {
			t.Fatalf("AddRule: %v", err)
		}
	}
	if got := len(m.Rules()); got != 3 {
		t.Fatalf("expected 3 rules, got %d", got)
	}

	bad := sampleRules()[0]
	bad.Direction = "Increases"
	err := m.AddRule(bad)
	var argErr InvalidArgumentError
	if !errors.As(err, &argErr) || argErr.Field != "direction" {
		t.Fatalf("expected direction InvalidArgumentError, got %v", err)
	}

	bad = sampleRules()[0]
	bad.ApplyToDead = 2
	if err := m.AddRule(bad); !errors.As(err, &argErr) || argErr.Field != "apply_to_dead" {
		t.Fatalf("expected apply_to_dead InvalidArgumentError, got %v", err)
	}

	if got := len(m.Rules()); got != 3 {
		t.Fatalf("rejected rules must not be stored, got %d", got)
	}
}

func TestRulesCSVRoundTrip(t *testing.T) {
	src := NewRulesModule()
	for _, r := range sampleRules() {
		if err := src.AddRule(r); err != nil {
			t.Fatalf("AddRule: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "nested", "rules.csv")
	if err := src.ExportRulesCSV(path); err != nil {
		t.Fatalf("ExportRulesCSV: %v", err)
	}

	dst := NewRulesModule()
	if err := dst.ImportRulesCSV(path); err != nil {
		t.Fatalf("ImportRulesCSV: %v", err)
	}
	if !reflect.DeepEqual(dst.Rules(), src.Rules()) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", dst.Rules(), src.Rules())
	}
}

func TestExportRulesCSVEmpty(t *testing.T) {
	m := NewRulesModule()
	err := m.ExportRulesCSV(filepath.Join(t.TempDir(), "rules.csv"))
	var stateErr InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
}

func TestImportRulesCSVMissingFile(t *testing.T) {
	m := NewRulesModule()
	err := m.ImportRulesCSV(filepath.Join(t.TempDir(), "absent.csv"))
	var nfErr NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func writeRulesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestImportRulesCSVSkipsBlankRowsAndTrims(t *testing.T) {
	path := writeRulesFile(t, strings.Join([]string{
		"",
		"tumor, oxygen , increases,cycle entry, 0.0007 ,21.5,4,0",
		"   ",
		"macrophage,dead,increases,migration speed,2.5,0.1,2,1",
		"",
	}, "\n"))

	m := NewRulesModule()
	if err := m.ImportRulesCSV(path); err != nil {
		t.Fatalf("ImportRulesCSV: %v", err)
	}
	rules := m.Rules()
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].Signal != "oxygen" || rules[0].SaturationValue != 0.0007 {
		t.Fatalf("fields not trimmed/parsed: %+v", rules[0])
	}
}

func TestImportRulesCSVFormatErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		row     int
		reason  string
	}{
		{
			name:    "short row",
			content: "tumor,oxygen,increases,cycle entry,0.0007,21.5\n",
			row:     1,
			reason:  "expected 8 columns",
		},
		{
			name: "bad half_max",
			content: "tumor,oxygen,increases,cycle entry,0.0007,21.5,4,0\n" +
				"tumor,pressure,decreases,cycle entry,0,abc,4,0\n",
			row:    2,
			reason: "half_max",
		},
		{
			name:    "bad apply_to_dead",
			content: "tumor,oxygen,increases,cycle entry,0.0007,21.5,4,yes\n",
			row:     1,
			reason:  "apply_to_dead",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewRulesModule()
			err := m.ImportRulesCSV(writeRulesFile(t, tc.content))
			var fmtErr FormatError
			if !errors.As(err, &fmtErr) {
				t.Fatalf("expected FormatError, got %v", err)
			}
			if fmtErr.Row != tc.row {
				t.Fatalf("expected row %d, got %d", tc.row, fmtErr.Row)
			}
			if !strings.Contains(fmtErr.Reason, tc.reason) {
				t.Fatalf("reason %q does not mention %q", fmtErr.Reason, tc.reason)
			}
			if len(m.Rules()) != 0 {
				t.Fatalf("failed import must leave the store untouched, got %d rules", len(m.Rules()))
			}
		})
	}
}

func TestRegisterRuleSetUpsertKeepsOrder(t *testing.T) {
	m := NewRulesModule()
	m.RegisterRuleSet("base", "./config", "base.csv", true)
	m.RegisterRuleSet("extra", "./config", "extra.csv", false)
	m.RegisterRuleSet("base", "./other", "base_v2.csv", false)

	if got, want := m.RuleSetNames(), []string{"base", "extra"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	rs := m.RuleSets()["base"]
	if rs.Folder != "./other" || rs.Filename != "base_v2.csv" || rs.Enabled {
		t.Fatalf("upsert did not replace record: %+v", rs)
	}
	if rs.Protocol != "CBHG" || rs.Version != "3.0" || rs.Format != "csv" {
		t.Fatalf("metadata stamp wrong: %+v", rs)
	}
}

func TestRulesSerializePlaceholderWhenEmpty(t *testing.T) {
	m := NewRulesModule()
	parent := xmltree.New("microenvironment_setup")
	m.Serialize(parent)

	cellRules := parent.Find("cell_rules")
	if cellRules == nil {
		t.Fatal("missing cell_rules element")
	}
	rulesets := cellRules.Find("rulesets").FindAll("ruleset")
	if len(rulesets) != 1 {
		t.Fatalf("expected 1 placeholder ruleset, got %d", len(rulesets))
	}
	rs := rulesets[0]
	if got := rs.AttrDefault("enabled", ""); got != "false" {
		t.Fatalf("placeholder enabled = %q, want false", got)
	}
	if got := rs.ChildTextOf("folder"); got != "./config" {
		t.Fatalf("placeholder folder = %q", got)
	}
	if got := rs.ChildTextOf("filename"); got != "cell_rules.csv" {
		t.Fatalf("placeholder filename = %q", got)
	}
	if cellRules.Find("settings") == nil {
		t.Fatal("missing trailing settings element")
	}
}

func TestRulesSerializeRegisteredSets(t *testing.T) {
	m := NewRulesModule()
	m.RegisterRuleSet("base", "./config", "base.csv", true)
	m.RegisterRuleSet("immune", "./config", "immune.csv", false)

	parent := xmltree.New("microenvironment_setup")
	m.Serialize(parent)

	rulesets := parent.Find("cell_rules").Find("rulesets").FindAll("ruleset")
	if len(rulesets) != 2 {
		t.Fatalf("expected 2 rulesets, got %d", len(rulesets))
	}
	if got := rulesets[0].ChildTextOf("filename"); got != "base.csv" {
		t.Fatalf("first ruleset filename = %q", got)
	}
	if got := rulesets[0].AttrDefault("protocol", ""); got != "CBHG" {
		t.Fatalf("protocol = %q", got)
	}
	if got := rulesets[1].AttrDefault("enabled", ""); got != "false" {
		t.Fatalf("second ruleset enabled = %q", got)
	}
}

func TestRulesDeserializeRenamesByFilenameStem(t *testing.T) {
	m := NewRulesModule()
	m.RegisterRuleSet("base", "./config", "rules.csv", true)
	m.RegisterRuleSet("immune", "./other", "rules.csv", false)

	parent := xmltree.New("microenvironment_setup")
	m.Serialize(parent)

	loaded := NewRulesModule()
	loaded.Deserialize(parent.Find("cell_rules"))

	if got, want := loaded.RuleSetNames(), []string{"rules", "rules_1"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	sets := loaded.RuleSets()
	if sets["rules"].Folder != "./config" || !sets["rules"].Enabled {
		t.Fatalf("first ruleset mismatch: %+v", sets["rules"])
	}
	if sets["rules_1"].Folder != "./other" || sets["rules_1"].Enabled {
		t.Fatalf("second ruleset mismatch: %+v", sets["rules_1"])
	}
}

func TestRulesDeserializeSkipsIncompleteRuleset(t *testing.T) {
	cellRules := xmltree.New("cell_rules")
	rulesets := cellRules.Child("rulesets")

	complete := rulesets.Child("ruleset")
	complete.SetAttr("enabled", "true")
	complete.ChildText("folder", "./config")
	complete.ChildText("filename", "good.csv")

	partial := rulesets.Child("ruleset")
	partial.ChildText("folder", "./config")

	m := NewRulesModule()
	m.Deserialize(cellRules)
	if got, want := m.RuleSetNames(), []string{"good"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
}

func TestRulesDeserializeNilKeepsState(t *testing.T) {
	m := NewRulesModule()
	m.RegisterRuleSet("base", "./config", "base.csv", true)
	m.Deserialize(nil)
	if got := m.RuleSetNames(); len(got) != 1 || got[0] != "base" {
		t.Fatalf("nil Deserialize must keep state, got %v", got)
	}
}

func TestRulesDeserializeDoesNotTouchRuleList(t *testing.T) {
	m := NewRulesModule()
	for _, r := range sampleRules() {
		if err := m.AddRule(r); err != nil {
			t.Fatalf("AddRule: %v", err)
		}
	}
	empty := xmltree.New("cell_rules")
	empty.Child("rulesets")
	m.Deserialize(empty)
	if got := len(m.Rules()); got != 3 {
		t.Fatalf("rule list must survive Deserialize, got %d", got)
	}
}
