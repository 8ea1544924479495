package timeline

import (
	"strings"
)

// findTable returns the rows of the first pipe-delimited block in lines,
// with separator rows removed. It returns nil when the text has no table.
func findTable(lines []string) []string {
	var rows []string
	inTable := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "|") {
			if inTable {
				break
			}
			continue
		}
		inTable = true
		if isSeparatorRow(trimmed) {
			continue
		}
		rows = append(rows, trimmed)
	}
	return rows
}

// isSeparatorRow reports whether a row consists only of '-', '|', ':' and
// whitespace, as in "|---|:---:|".
func isSeparatorRow(row string) bool {
	hasDash := false
	for _, r := range row {
		switch r {
		case '-':
			hasDash = true
		case '|', ':', ' ', '\t':
		default:
			return false
		}
	}
	return hasDash
}

// splitRow splits a table row into trimmed cells. A pipe inside a backtick
// code span is part of the cell. The empty cells produced by the row's
// outer pipes are removed.
func splitRow(row string) []string {
	var (
		cells []string
		cur   strings.Builder
		code  bool
	)
	for _, r := range row {
		switch {
		case r == '`':
			code = !code
			cur.WriteRune(r)
		case r == '|' && !code:
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	cells = append(cells, strings.TrimSpace(cur.String()))

	if len(cells) > 0 && cells[0] == "" {
		cells = cells[1:]
	}
	if len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

// normalizeHeader lowercases a header cell and joins its words with '_'.
func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), "_")
}
