// Command configgen builds a reference simulation configuration, writes the
// document and its rule table to disk, and can verify that an existing
// document reloads without drift.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"simconfig/pkg/simconfig"
)

var exitFunc = os.Exit

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "configgen: %v\n", err)
		exitFunc(1)
		return
	}
	exitFunc(0)
}

func run(args []string) error {
	fs := flag.NewFlagSet("configgen", flag.ContinueOnError)
	out := fs.String("out", "", "write the reference configuration document to this path")
	rules := fs.String("rules", "", "write the reference rule table to this path")
	check := fs.String("check", "", "load a document and verify it reproduces itself")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *check != "" {
		return checkDocument(*check)
	}
	if *out == "" && *rules == "" {
		return fmt.Errorf("nothing to do: pass -out, -rules or -check")
	}

	cfg, err := buildReference()
	if err != nil {
		return err
	}
	if *out != "" {
		if err := cfg.SaveXML(*out); err != nil {
			return fmt.Errorf("write document: %w", err)
		}
	}
	if *rules != "" {
		if err := cfg.Rules().ExportRulesCSV(*rules); err != nil {
			return fmt.Errorf("write rule table: %w", err)
		}
	}
	return nil
}

// checkDocument loads the document at path, regenerates it and compares the
// result byte for byte against the file contents.
func checkDocument(path string) error {
	original, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	cfg := simconfig.New()
	if err := cfg.LoadXML(bytes.NewReader(original)); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	if regenerated := cfg.GenerateXML(); !bytes.Equal(regenerated, original) {
		return fmt.Errorf("document %s does not reproduce itself after reload", path)
	}
	return nil
}

// buildReference assembles a small tumor-and-oxygen scenario exercising every
// configuration section.
func buildReference() (*simconfig.Config, error) {
	cfg := simconfig.New()

	if err := cfg.Domain().SetBounds(-400, 400, -400, 400, -20, 20); err != nil {
		return nil, err
	}
	if err := cfg.Domain().SetSpacing(20, 20, 20); err != nil {
		return nil, err
	}
	if err := cfg.Options().SetMaxTime(7200); err != nil {
		return nil, err
	}
	if err := cfg.Options().SetFullDataInterval(60, true); err != nil {
		return nil, err
	}
	if err := cfg.Options().SetSVGInterval(60, true); err != nil {
		return nil, err
	}

	if err := cfg.Substrates().Add(simconfig.Substrate{
		Name:                 "oxygen",
		Units:                "mmHg",
		DiffusionCoefficient: 100000,
		DecayRate:            0.1,
		InitialCondition:     38,
		DirichletEnabled:     true,
		DirichletValue:       38,
	}); err != nil {
		return nil, err
	}

	if err := cfg.CellTypes().Add(simconfig.CellType{
		Name:            "tumor",
		CycleRate:       0.00072,
		ApoptosisRate:   5.31667e-05,
		MotilitySpeed:   1,
		MotilityPersist: 1,
		MotilityEnabled: true,
	}); err != nil {
		return nil, err
	}

	referenceRules := []simconfig.Rule{
		{CellType: "tumor", Signal: "oxygen", Direction: simconfig.DirectionIncreases, Behavior: "cycle entry", SaturationValue: 0.00072, HalfMax: 21.5, HillPower: 4},
		{CellType: "tumor", Signal: "pressure", Direction: simconfig.DirectionDecreases, Behavior: "cycle entry", SaturationValue: 0, HalfMax: 1, HillPower: 4},
	}
	for _, rule := range referenceRules {
		if err := cfg.Rules().AddRule(rule); err != nil {
			return nil, err
		}
	}
	cfg.Rules().RegisterRuleSet("base", "./config", "cell_rules.csv", true)

	cfg.BoolNetwork().Enable("model.bnd",
		simconfig.WithInitialValues(map[string]bool{"Survival": true}),
		simconfig.WithParameters(map[string]float64{"death_rate": 0.05}),
	)

	return cfg, nil
}
