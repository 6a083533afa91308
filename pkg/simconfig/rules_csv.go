package simconfig

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ruleColumns is the fixed CBHG v3.0 column order. The format has no header
// row; column meaning is positional.
const ruleColumns = 8

// ImportRulesCSV reads a rule table and appends its rows to the store in file
// order. The file is parsed completely before anything is appended: a corrupt
// row aborts the whole import and leaves the store untouched. Blank rows are
// skipped, every field is trimmed, and columns 5-8 must parse as numbers with
// apply_to_dead restricted to literal 0 or 1.
func (m *RulesModule) ImportRulesCSV(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NotFoundError{Path: path}
	}
	if err != nil {
		return fmt.Errorf("open rules file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return FormatError{Path: path, Reason: err.Error()}
	}

	var parsed []Rule
	row := 0
	for _, record := range records {
		if isBlankRow(record) {
			continue
		}
		row++
		if len(record) < ruleColumns {
			return FormatError{
				Path:   path,
				Row:    row,
				Reason: fmt.Sprintf("expected %d columns, got %d", ruleColumns, len(record)),
			}
		}
		rule := Rule{
			CellType:  strings.TrimSpace(record[0]),
			Signal:    strings.TrimSpace(record[1]),
			Direction: strings.TrimSpace(record[2]),
			Behavior:  strings.TrimSpace(record[3]),
		}
		if rule.SaturationValue, err = parseNumber(record[4]); err != nil {
			return FormatError{Path: path, Row: row, Reason: fmt.Sprintf("saturation_value %q is not a number", strings.TrimSpace(record[4]))}
		}
		if rule.HalfMax, err = parseNumber(record[5]); err != nil {
			return FormatError{Path: path, Row: row, Reason: fmt.Sprintf("half_max %q is not a number", strings.TrimSpace(record[5]))}
		}
		if rule.HillPower, err = parseNumber(record[6]); err != nil {
			return FormatError{Path: path, Row: row, Reason: fmt.Sprintf("hill_power %q is not a number", strings.TrimSpace(record[6]))}
		}
		dead := strings.TrimSpace(record[7])
		applyToDead, err := strconv.Atoi(dead)
		if err != nil || (applyToDead != 0 && applyToDead != 1) {
			return FormatError{Path: path, Row: row, Reason: fmt.Sprintf("apply_to_dead %q must be 0 or 1", dead)}
		}
		rule.ApplyToDead = applyToDead
		parsed = append(parsed, rule)
	}

	m.rules = append(m.rules, parsed...)
	return nil
}

// WriteCSV writes every stored rule to w as a headerless CSV table. Writing
// an empty store is an error.
func (m *RulesModule) WriteCSV(w io.Writer) error {
	if len(m.rules) == 0 {
		return InvalidStateError{Op: "export rules", Reason: "no rules to export"}
	}
	writer := csv.NewWriter(w)
	for _, rule := range m.rules {
		record := []string{
			rule.CellType,
			rule.Signal,
			rule.Direction,
			rule.Behavior,
			formatNumber(rule.SaturationValue),
			formatNumber(rule.HalfMax),
			formatNumber(rule.HillPower),
			strconv.Itoa(rule.ApplyToDead),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write rule row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush rules: %w", err)
	}
	return nil
}

// ExportRulesCSV writes the rule table to path, creating missing parent
// directories.
func (m *RulesModule) ExportRulesCSV(path string) error {
	if len(m.rules) == 0 {
		return InvalidStateError{Op: "export rules", Reason: "no rules to export"}
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create rules dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create rules file: %w", err)
	}
	if err := m.WriteCSV(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func isBlankRow(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
