package page

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// HTMLDocument is a DocumentQuery over a parsed HTML page.
type HTMLDocument struct {
	doc       *goquery.Document
	selectors Selectors
	blocks    []*htmlBlock
}

// ParseHTML parses r and indexes its activity blocks. Empty selectors fall
// back to DefaultSelectors.
func ParseHTML(r io.Reader, selectors Selectors) (*HTMLDocument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return newHTMLDocument(doc, selectors.WithDefaults()), nil
}

func newHTMLDocument(doc *goquery.Document, sel Selectors) *HTMLDocument {
	d := &HTMLDocument{doc: doc, selectors: sel}
	doc.Find(sel.Block).Each(func(_ int, s *goquery.Selection) {
		d.blocks = append(d.blocks, &htmlBlock{sel: s, selectors: &d.selectors})
	})
	return d
}

// Blocks returns the activity blocks indexed at parse time.
func (d *HTMLDocument) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	for i, b := range d.blocks {
		out[i] = b
	}
	return out
}

// FieldLabels returns the text of every label element on the page.
func (d *HTMLDocument) FieldLabels() []string {
	var labels []string
	d.doc.Find(d.selectors.Label).Each(func(_ int, s *goquery.Selection) {
		labels = append(labels, s.Text())
	})
	return labels
}

// HasMountPoint reports whether the summary container exists.
func (d *HTMLDocument) HasMountPoint() bool {
	return d.doc.Find(d.selectors.Mount).Length() > 0
}

// Selectors returns the selectors the document was parsed with.
func (d *HTMLDocument) Selectors() Selectors {
	return d.selectors
}

// Render writes the current (possibly augmented) document as HTML.
func (d *HTMLDocument) Render(w io.Writer) error {
	if len(d.doc.Nodes) == 0 {
		return nil
	}
	return html.Render(w, d.doc.Nodes[0])
}

// HTML returns the rendered document as a string.
func (d *HTMLDocument) HTML() (string, error) {
	var sb strings.Builder
	if err := d.Render(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

type htmlBlock struct {
	sel       *goquery.Selection
	selectors *Selectors
}

func (b *htmlBlock) Timestamp() (string, bool) {
	el := b.sel.Find(b.selectors.Timestamp).First()
	if el.Length() == 0 {
		return "", false
	}
	return el.Attr(b.selectors.TimestampAttr)
}

func (b *htmlBlock) UserText() (string, bool) {
	el := b.sel.Find(b.selectors.User).First()
	if el.Length() == 0 {
		return "", false
	}
	return el.Text(), true
}

func (b *htmlBlock) IsComment() bool {
	return b.sel.HasClass(b.selectors.CommentClass)
}

func (b *htmlBlock) CommentBody() (string, bool) {
	el := b.sel.Find(b.selectors.CommentBody).First()
	if el.Length() == 0 {
		return "", false
	}
	return el.Text(), true
}

func (b *htmlBlock) Rows() []Row {
	var rows []Row
	b.sel.Find(b.selectors.Row).Each(func(_ int, tr *goquery.Selection) {
		var r Row
		if label := tr.Find(b.selectors.Label).First(); label.Length() > 0 {
			r.Label, r.HasLabel = label.Text(), true
		}
		if val := tr.Find(b.selectors.NewValue).First(); val.Length() > 0 {
			r.NewValue, r.HasNewValue = val.Text(), true
		}
		rows = append(rows, r)
	})
	return rows
}
