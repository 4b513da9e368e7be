package page

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/smantzavinos/activity_viewer/pkg/model"
)

// Styles applied to the generated markup.
const (
	groupHeaderStyle    = "padding: 8px; margin: 10px 0 5px 0; background-color: #e1e1e1; font-weight: bold; border-radius: 3px; font-size: 0.9em;"
	groupContainerStyle = "padding: 5px; margin-bottom: 5px; border-radius: 3px;"
	groupedBlockStyle   = "margin-left: 15px; border-left: 2px solid #ccc; padding-left: 10px;"
	summaryTableStyle   = "width: 100%; border-collapse: collapse; margin-bottom: 20px; font-size: 0.85em; table-layout: fixed;"
	summaryHeaderStyle  = "background-color: #f0f0f0; padding: 8px; border: 1px solid #ddd; text-align: left; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; resize: horizontal; min-width: 50px;"
	summaryCellStyle    = "padding: 8px; border: 1px solid #ddd; overflow: hidden; text-overflow: ellipsis;"
	exportLinkStyle     = "display: inline-block; margin-bottom: 10px; padding: 4px 8px; font-size: 12px; background-color: #f0f0f0; border: 1px solid #ccc; border-radius: 3px; color: inherit; text-decoration: none;"
)

var (
	groupBackgrounds = [2]string{"#f7f7f7", "#eef5fd"}
	rowBackgrounds   = [2]string{"#fff", "#f9f9f9"}
)

// AugmentOptions carry the rendered CSV the download link embeds.
type AugmentOptions struct {
	CSV         string
	CSVFilename string
}

// AugmentResult reports what Augment changed.
type AugmentResult struct {
	Groups  int
	Blocks  int
	Mounted bool
}

func (r AugmentResult) String() string {
	return fmt.Sprintf("Grouped %d items into %d datetime groups with alternating backgrounds", r.Blocks, r.Groups)
}

// Augment rewrites d in place: every group's blocks move into a styled
// container placed where the group's first block was, and the summary
// table plus a CSV download link are appended to the mount point.
//
// Without a mount point only the grouping is applied. Calling Augment twice
// on the same document nests the containers again.
func (d *HTMLDocument) Augment(s *model.Summary, t *model.Table, opts AugmentOptions) AugmentResult {
	var res AugmentResult

	for i, row := range t.Rows {
		indices := s.Blocks[row.Key]
		if len(indices) == 0 {
			continue
		}
		first := d.blockSelection(indices[0])
		if first == nil {
			continue
		}

		first.BeforeHtml(fmt.Sprintf(
			`<div class="datetime-group-container" style="background-color: %s; %s"><div class="datetime-group-header" style="%s">Activities at %s</div></div>`,
			groupBackgrounds[i%2], groupContainerStyle, groupHeaderStyle, html.EscapeString(row.Key.Display()),
		))
		container := first.Prev()

		for _, idx := range indices {
			sel := d.blockSelection(idx)
			if sel == nil {
				continue
			}
			style, _ := sel.Attr("style")
			sel.SetAttr("style", strings.TrimSpace(style+" "+groupedBlockStyle))
			container.AppendSelection(sel)
			res.Blocks++
		}
		res.Groups++
	}

	mount := d.doc.Find(d.selectors.Mount).First()
	if mount.Length() == 0 {
		return res
	}
	mount.AppendHtml(renderSummaryHTML(t, opts))
	res.Mounted = true
	return res
}

func (d *HTMLDocument) blockSelection(idx int) *goquery.Selection {
	if idx < 0 || idx >= len(d.blocks) {
		return nil
	}
	return d.blocks[idx].sel
}

func renderSummaryHTML(t *model.Table, opts AugmentOptions) string {
	var sb strings.Builder
	sb.WriteString(`<hr style="margin: 20px 0;"/>`)
	sb.WriteString(`<h3 style="margin: 15px 0;">Activity Details Summary</h3>`)
	sb.WriteString(`<div class="activity-summary-tip" style="margin-bottom: 5px; color: #666;"><small><em>Tip: Drag column edges to resize. Hover a cell to see its full content.</em></small></div>`)

	filename := opts.CSVFilename
	if filename == "" {
		filename = "activity_summary.csv"
	}
	fmt.Fprintf(&sb, `<a class="activity-summary-export" download="%s" href="data:text/csv;charset=utf-8,%s" style="%s">Export to CSV</a>`,
		html.EscapeString(filename), csvDataURIEscape(opts.CSV), exportLinkStyle)

	fmt.Fprintf(&sb, `<table class="activity-summary" style="%s"><thead><tr>`, summaryTableStyle)
	for _, h := range t.Headers {
		fmt.Fprintf(&sb, `<th style="%s">%s</th>`, summaryHeaderStyle, html.EscapeString(h))
	}
	sb.WriteString(`</tr></thead><tbody>`)

	for i, row := range t.Rows {
		fmt.Fprintf(&sb, `<tr style="background-color: %s;">`, rowBackgrounds[i%2])
		for c, cell := range row.Cells {
			fmt.Fprintf(&sb, `<td style="%s" title="%s">%s</td>`,
				summaryCellStyle, html.EscapeString(CellTooltip(t, row, c)), html.EscapeString(cell))
		}
		sb.WriteString(`</tr>`)
	}
	sb.WriteString(`</tbody></table>`)
	return sb.String()
}

// CellTooltip is the hover text of a summary cell: the column header, the
// row's datetime and users, then the full content.
func CellTooltip(t *model.Table, row model.TableRow, col int) string {
	var datetime, user string
	if len(row.Cells) > 0 {
		datetime = row.Cells[0]
	}
	if len(row.Cells) > 1 {
		user = row.Cells[1]
	}
	header := ""
	if col < len(t.Headers) {
		header = t.Headers[col]
	}
	return fmt.Sprintf("%s\n%s: %s\n\nFull content:\n%s", header, datetime, user, row.Cells[col])
}

// csvDataURIEscape percent-encodes s for a data: URI the way
// encodeURIComponent does, so spaces become %20 rather than +.
func csvDataURIEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
