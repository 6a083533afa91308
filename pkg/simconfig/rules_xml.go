package simconfig

import (
	"fmt"
	"path/filepath"
	"strings"

	"simconfig/pkg/xmltree"
)

// Serialize appends the cell_rules fragment under parent. The section is
// always emitted, schema-complete, even when nothing is registered: an empty
// registry produces a single disabled placeholder ruleset so the consuming
// engine always finds the section. A trailing empty settings element closes
// the fragment.
func (m *RulesModule) Serialize(parent *xmltree.Element) {
	cellRules := parent.Child("cell_rules")
	rulesets := cellRules.Child("rulesets")

	if len(m.order) > 0 {
		for _, name := range m.order {
			rs := m.ruleSets[name]
			el := rulesets.Child("ruleset")
			el.SetAttr("protocol", rs.Protocol)
			el.SetAttr("version", rs.Version)
			el.SetAttr("format", rs.Format)
			el.SetAttr("enabled", formatBool(rs.Enabled))
			el.ChildText("folder", rs.Folder)
			el.ChildText("filename", rs.Filename)
		}
	} else {
		el := rulesets.Child("ruleset")
		el.SetAttr("protocol", ruleSetProtocol)
		el.SetAttr("version", ruleSetVersion)
		el.SetAttr("format", ruleSetFormat)
		el.SetAttr("enabled", "false")
		el.ChildText("folder", defaultRuleFolder)
		el.ChildText("filename", defaultRuleFilename)
	}

	cellRules.Child("settings")
}

// Deserialize replaces the ruleset registry from a cell_rules element. A nil
// element is a no-op: prior state survives a missing section. Ruleset names
// are not carried on the wire, so each entry is renamed after its filename
// stem, with a numeric suffix on collision. The rule list itself is not
// touched.
func (m *RulesModule) Deserialize(el *xmltree.Element) {
	if el == nil {
		return
	}
	m.ruleSets = make(map[string]RuleSet)
	m.order = nil

	rulesets := el.Find("rulesets")
	if rulesets == nil {
		return
	}
	for _, rs := range rulesets.FindAll("ruleset") {
		folderEl := rs.Find("folder")
		filenameEl := rs.Find("filename")
		if folderEl == nil || filenameEl == nil {
			continue
		}
		folder := strings.TrimSpace(folderEl.Text)
		if folder == "" {
			folder = defaultRuleFolder
		}
		filename := strings.TrimSpace(filenameEl.Text)
		if filename == "" {
			filename = defaultRuleFilename
		}

		stem := strings.TrimSuffix(filename, filepath.Ext(filename))
		name := stem
		for counter := 1; ; counter++ {
			if _, taken := m.ruleSets[name]; !taken {
				break
			}
			name = fmt.Sprintf("%s_%d", stem, counter)
		}

		m.order = append(m.order, name)
		m.ruleSets[name] = RuleSet{
			Folder:   folder,
			Filename: filename,
			Enabled:  parseBool(rs.AttrDefault("enabled", "false")),
			Protocol: rs.AttrDefault("protocol", ruleSetProtocol),
			Version:  rs.AttrDefault("version", ruleSetVersion),
			Format:   rs.AttrDefault("format", ruleSetFormat),
		}
	}
}
