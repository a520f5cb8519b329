package utils

import (
	"regexp"
	"strings"

	"chem-purchase-assistant/models"
)

// quantityLineRegex matches "<qty+unit> <name> (<formula>)", e.g. "500g Sodium Chloride (NaCl)"
var quantityLineRegex = regexp.MustCompile(`^(\d+[A-Za-z]+)\s+(.+?)(?:\s*\(([^)]+)\))?$`)

// nameLineRegex matches "<name> (<formula>)" or a bare name. It matches any non-empty line.
var nameLineRegex = regexp.MustCompile(`^(.+?)(?:\s*\(([^)]+)\))?$`)

// ParseLines parses a free-text chemical list, one chemical per line.
// Blank lines are skipped; every other line yields exactly one item, in input order.
func ParseLines(text string) []models.ChemicalLineItem {
	lines := strings.Split(text, "\n")
	items := make([]models.ChemicalLineItem, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, ParseLine(line))
	}

	return items
}

// ParseLine parses a single trimmed, non-empty line.
// The quantity pattern is tried first; the name pattern is the fallback.
func ParseLine(line string) models.ChemicalLineItem {
	if item, ok := matchQuantityLine(line); ok {
		return item
	}
	if item, ok := matchNameLine(line); ok {
		return item
	}
	return models.ChemicalLineItem{RawText: line}
}

func matchQuantityLine(line string) (models.ChemicalLineItem, bool) {
	matches := quantityLineRegex.FindStringSubmatch(line)
	if len(matches) != 4 {
		return models.ChemicalLineItem{}, false
	}
	return models.ChemicalLineItem{
		RawText:  line,
		Quantity: matches[1],
		Name:     matches[2],
		Formula:  matches[3],
	}, true
}

func matchNameLine(line string) (models.ChemicalLineItem, bool) {
	matches := nameLineRegex.FindStringSubmatch(line)
	if len(matches) != 3 {
		return models.ChemicalLineItem{}, false
	}
	return models.ChemicalLineItem{
		RawText: line,
		Name:    matches[1],
		Formula: matches[2],
	}, true
}

// FormatChemicalDisplay renders a parsed item as "<qty> <name> (<formula>)"
// with subscript digits in the formula. Items without a formula show their raw text.
func FormatChemicalDisplay(item models.ChemicalLineItem) string {
	if item.RawText == "" {
		return "Invalid item"
	}
	if item.Formula == "" {
		return item.RawText
	}

	var b strings.Builder
	if item.Quantity != "" {
		b.WriteString(item.Quantity)
		b.WriteByte(' ')
	}
	name := item.Name
	if name == "" {
		name = item.RawText
	}
	b.WriteString(name)
	b.WriteString(" (")
	b.WriteString(InsertFormula(item.Formula))
	b.WriteByte(')')
	return b.String()
}
