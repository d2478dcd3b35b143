package generate

import "strings"

// Templates indent with tabs; reindent swaps every leading tab for unit.
func reindent(s, unit string) string {
	if unit == "\t" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, "\t")
		if depth := len(line) - len(trimmed); depth > 0 {
			lines[i] = strings.Repeat(unit, depth) + trimmed
		}
	}
	return strings.Join(lines, "\n")
}

// indentBlock nests s one level deeper, leaving blank lines empty.
func indentBlock(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = "\t" + line
		}
	}
	return strings.Join(lines, "\n")
}
