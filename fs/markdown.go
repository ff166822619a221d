package fs

import (
	"strconv"
	"strings"

	"github.com/fwojciec/knowcore"
)

// FormatDocument renders a document as Markdown with YAML frontmatter.
// Figure images link to the document-relative asset path; unresolved
// figures render as their caption.
func FormatDocument(doc *knowcore.Document) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: ")
	b.WriteString(frontmatterValue(doc.Meta.Title))
	b.WriteString("\nsource: ")
	b.WriteString(frontmatterValue(sourceOf(doc)))
	b.WriteString("\ndoc_id: ")
	b.WriteString(doc.DocID)
	if !doc.Meta.IngestedAt.IsZero() {
		b.WriteString("\ningested: ")
		b.WriteString(doc.Meta.IngestedAt.Format("2006-01-02"))
	}
	b.WriteString("\n---\n")

	for _, s := range doc.Sections {
		block := formatSection(s)
		if block == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(block)
		b.WriteString("\n")
	}
	return b.String()
}

func sourceOf(doc *knowcore.Document) string {
	if doc.Meta.Source.URL != "" {
		return doc.Meta.Source.URL
	}
	return doc.Meta.Source.Path
}

// frontmatterValue quotes values YAML would otherwise misread.
func frontmatterValue(s string) string {
	if s == "" || strings.ContainsAny(s, ":#\"'\n") || strings.TrimSpace(s) != s {
		return strconv.Quote(s)
	}
	return s
}

func formatSection(s knowcore.Section) string {
	switch s.Type {
	case knowcore.BlockHeading:
		level := min(max(s.Level, 1), 6)
		return strings.Repeat("#", level) + " " + s.Content
	case knowcore.BlockCode:
		return "```" + s.Annotations.Language + "\n" + s.Content + "\n```"
	case knowcore.BlockFigure:
		return formatFigure(s)
	case knowcore.BlockList:
		var b strings.Builder
		writeItems(&b, s.Items, 0)
		return strings.TrimRight(b.String(), "\n")
	case knowcore.BlockTable:
		return formatTable(s.Header, s.Rows)
	default:
		return s.Content
	}
}

func formatFigure(s knowcore.Section) string {
	var lines []string
	for _, a := range s.Assets {
		caption := a.Caption
		if caption == "" {
			caption = s.Content
		}
		if a.Resolved() {
			lines = append(lines, "!["+escapeBrackets(caption)+"]("+a.Path+")")
		} else if caption != "" {
			lines = append(lines, caption)
		}
	}
	if len(lines) == 0 {
		return s.Content
	}
	return strings.Join(lines, "\n\n")
}

func escapeBrackets(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}

func writeItems(b *strings.Builder, items []knowcore.ListItem, depth int) {
	for _, item := range items {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString("- ")
		b.WriteString(item.Text)
		b.WriteString("\n")
		writeItems(b, item.Items, depth+1)
	}
}

// formatTable renders a GFM table. Without a header the first row is used.
func formatTable(header []string, rows [][]string) string {
	if len(header) == 0 {
		if len(rows) == 0 {
			return ""
		}
		header, rows = rows[0], rows[1:]
	}
	width := len(header)
	for _, r := range rows {
		width = max(width, len(r))
	}

	var b strings.Builder
	writeRow(&b, header, width)
	b.WriteString("|")
	for range width {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, r := range rows {
		writeRow(&b, r, width)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeRow(b *strings.Builder, cells []string, width int) {
	b.WriteString("|")
	for i := range width {
		cell := ""
		if i < len(cells) {
			cell = strings.ReplaceAll(cells[i], "|", `\|`)
		}
		b.WriteString(" ")
		b.WriteString(cell)
		b.WriteString(" |")
	}
	b.WriteString("\n")
}
