package internal

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// UnifiedLines renders a line-level diff of before and after with "+", "-"
// and " " prefixes. Unchanged runs longer than 2*context lines are elided.
func UnifiedLines(before, after string, context int) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for i, d := range diffs {
		text := strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			writePrefixed(&sb, "+", text)
		case diffmatchpatch.DiffDelete:
			writePrefixed(&sb, "-", text)
		default:
			writePrefixed(&sb, " ", elide(text, context, i == 0, i == len(diffs)-1))
		}
	}
	return sb.String()
}

func writePrefixed(sb *strings.Builder, prefix string, lines []string) {
	for _, l := range lines {
		sb.WriteString(prefix)
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
}

func elide(lines []string, context int, first, last bool) []string {
	head, tail := context, context
	if first {
		head = 0
	}
	if last {
		tail = 0
	}
	if len(lines) <= head+tail+1 {
		return lines
	}

	out := append([]string{}, lines[:head]...)
	out = append(out, "...")
	return append(out, lines[len(lines)-tail:]...)
}
