package render

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fragmede/hnflat/internal/thread"
)

const indentUnit = "  "

// Markdown renders the forest as a nested markdown list, one item per
// comment:
//
//   - @author [+N]: first line
//     following lines and paragraphs
//   - @replier: ...
//
// The [+N] badge counts every descendant and is left out for leaves.
func Markdown(f thread.Forest) string {
	var sb strings.Builder
	for _, c := range f {
		writeTree(&sb, c, 0)
	}
	return sb.String()
}

// Length is the rune length of Markdown(f).
func Length(f thread.Forest) int {
	return utf8.RuneCountInString(Markdown(f))
}

// BlockLength is the rune length of the block c renders as at the given
// depth, without its replies.
func BlockLength(c *thread.Comment, depth int) int {
	var sb strings.Builder
	writeBlock(&sb, c, depth)
	return utf8.RuneCountInString(sb.String())
}

func writeTree(sb *strings.Builder, c *thread.Comment, depth int) {
	writeBlock(sb, c, depth)
	for _, child := range c.Children {
		writeTree(sb, child, depth+1)
	}
}

func writeBlock(sb *strings.Builder, c *thread.Comment, depth int) {
	indent := strings.Repeat(indentUnit, depth)

	sb.WriteString(indent)
	sb.WriteString("- @")
	sb.WriteString(c.Author)
	if n := c.DescendantCount(); n > 0 {
		sb.WriteString(" [+")
		sb.WriteString(strconv.Itoa(n))
		sb.WriteString("]")
	}
	sb.WriteString(":")

	lines := bodyLines(c.Paragraphs)
	if len(lines) > 0 {
		sb.WriteString(" ")
		sb.WriteString(lines[0])
	}
	sb.WriteString("\n")

	for _, line := range lines[min(1, len(lines)):] {
		if line != "" {
			sb.WriteString(indent)
			sb.WriteString(indentUnit)
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}
}

// bodyLines flattens paragraphs into lines with a blank line between
// paragraphs.
func bodyLines(paragraphs []string) []string {
	var lines []string
	for i, p := range paragraphs {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, strings.Split(p, "\n")...)
	}
	return lines
}
