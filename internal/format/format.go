// Package format applies the final presentation pass to an assembled
// translation before it is written to the output file.
package format

import "strings"

const indent = "  "

// Indent prefixes every non-empty line with two spaces. Lines that are
// already indented and blank lines pass through unchanged, so running
// the pass twice is a no-op.
func Indent(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" || strings.HasPrefix(line, indent) {
			continue
		}
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
