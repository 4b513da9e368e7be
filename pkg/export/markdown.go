package export

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/smantzavinos/activity_viewer/pkg/model"
)

// escapeTableCell makes text safe inside a markdown table cell.
func escapeTableCell(text string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"\r\n", "<br>",
		"\n", "<br>",
		"\r", "",
	)
	return replacer.Replace(strings.TrimSpace(text))
}

// GenerateMarkdown creates a markdown report of a consolidated page
func GenerateMarkdown(s *model.Summary, t *model.Table, title string) (string, error) {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", time.Now().Format(time.RFC1123)))

	// Summary Statistics
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Count |\n|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| **Blocks** | %d |\n", s.TotalBlocks))
	sb.WriteString(fmt.Sprintf("| Groups | %d |\n", s.GroupCount()))
	sb.WriteString(fmt.Sprintf("| Without timestamp | %d |\n", s.SkippedBlocks))
	sb.WriteString(fmt.Sprintf("| Fields | %d |\n\n", len(s.Schema)))

	if len(t.Rows) == 0 {
		sb.WriteString("_No timestamped activity found._\n")
		return sb.String(), nil
	}

	// Table of Contents
	sb.WriteString("## Table of Contents\n\n")
	for _, row := range t.Rows {
		label := row.Key.Display()
		sb.WriteString(fmt.Sprintf("- [%s](#%s) (%d blocks)\n", label, createSlug(label), len(s.Blocks[row.Key])))
	}
	sb.WriteString("\n---\n\n")

	// Consolidated table
	sb.WriteString("## Activity Details Summary\n\n")
	sb.WriteString(renderMarkdownTable(t))
	sb.WriteString("\n---\n\n")

	// Individual groups
	for _, row := range t.Rows {
		g := s.Group(row.Key)
		if g == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", row.Key.Display()))

		sb.WriteString("| Property | Value |\n|----------|-------|\n")
		sb.WriteString(fmt.Sprintf("| **Key** | `%s` |\n", row.Key))
		sb.WriteString(fmt.Sprintf("| **Blocks** | %d |\n", len(s.Blocks[row.Key])))
		if g.Users.Len() > 0 {
			users := make([]string, 0, g.Users.Len())
			for _, u := range g.Users.Values() {
				users = append(users, "@"+escapeTableCell(u))
			}
			sb.WriteString(fmt.Sprintf("| **Users** | %s |\n", strings.Join(users, ", ")))
		}
		sb.WriteString("\n")

		var changed []string
		for _, name := range s.Schema {
			if set := g.Field(name); set.Len() > 0 {
				changed = append(changed, fmt.Sprintf("- **%s**: %s", name, set.Join(", ")))
			}
		}
		if len(changed) > 0 {
			sb.WriteString("### Changes\n\n")
			sb.WriteString(strings.Join(changed, "\n"))
			sb.WriteString("\n\n")
		}

		if s.TrackComments && g.Comments.Len() > 0 {
			sb.WriteString("### Comments\n\n")
			for _, c := range g.Comments.Values() {
				escapedText := strings.ReplaceAll(c, "\n", "\n> ")
				sb.WriteString(fmt.Sprintf("> %s\n\n", escapedText))
			}
		}

		sb.WriteString("---\n\n")
	}

	return sb.String(), nil
}

// renderMarkdownTable renders the summary rows as a pipe table
func renderMarkdownTable(t *model.Table) string {
	var sb strings.Builder
	headers := make([]string, len(t.Headers))
	dividers := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = escapeTableCell(h)
		dividers[i] = "---"
	}
	sb.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	sb.WriteString("|" + strings.Join(dividers, "|") + "|\n")
	for _, row := range t.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = escapeTableCell(c)
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return sb.String()
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// createSlug creates a URL-friendly anchor from a heading
func createSlug(heading string) string {
	slug := strings.ToLower(heading)
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// SaveMarkdownToFile writes the generated markdown to a file
func SaveMarkdownToFile(s *model.Summary, t *model.Table, filename string) error {
	content, err := GenerateMarkdown(s, t, "Activity Summary")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(content), 0644)
}
