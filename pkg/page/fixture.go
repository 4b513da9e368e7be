package page

import (
	"encoding/json"
	"fmt"
	"io"
)

// Fixture is an in-memory DocumentQuery. Its JSON form is what `av` accepts
// through --fixture, and tests build it directly.
type Fixture struct {
	BlockList   []FixtureBlock `json:"blocks"`
	ExtraLabels []string       `json:"extra_labels,omitempty"`
	Mount       bool           `json:"mount"`
}

// FixtureBlock describes one block. Nil pointers mean the element is absent.
type FixtureBlock struct {
	Time    *string      `json:"timestamp,omitempty"`
	User    *string      `json:"user,omitempty"`
	Comment bool         `json:"comment,omitempty"`
	Body    *string      `json:"body,omitempty"`
	RowList []FixtureRow `json:"rows,omitempty"`
}

// FixtureRow describes one change-table row.
type FixtureRow struct {
	Label    *string `json:"label,omitempty"`
	NewValue *string `json:"new_value,omitempty"`
}

// LoadFixture decodes a JSON fixture.
func LoadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// Str returns a pointer to s, for building fixtures inline.
func Str(s string) *string { return &s }

// Change returns a row with both a label and a new-value cell.
func Change(label, newValue string) FixtureRow {
	return FixtureRow{Label: Str(label), NewValue: Str(newValue)}
}

func (f *Fixture) Blocks() []Block {
	out := make([]Block, len(f.BlockList))
	for i := range f.BlockList {
		out[i] = &f.BlockList[i]
	}
	return out
}

// FieldLabels returns the labels of every block row in order, followed by
// the extra labels that live outside any block.
func (f *Fixture) FieldLabels() []string {
	var labels []string
	for _, b := range f.BlockList {
		for _, r := range b.RowList {
			if r.Label != nil {
				labels = append(labels, *r.Label)
			}
		}
	}
	return append(labels, f.ExtraLabels...)
}

func (f *Fixture) HasMountPoint() bool { return f.Mount }

func (b *FixtureBlock) Timestamp() (string, bool) { return deref(b.Time) }

func (b *FixtureBlock) UserText() (string, bool) { return deref(b.User) }

func (b *FixtureBlock) IsComment() bool { return b.Comment }

func (b *FixtureBlock) CommentBody() (string, bool) { return deref(b.Body) }

func (b *FixtureBlock) Rows() []Row {
	rows := make([]Row, 0, len(b.RowList))
	for _, r := range b.RowList {
		var row Row
		row.Label, row.HasLabel = deref(r.Label)
		row.NewValue, row.HasNewValue = deref(r.NewValue)
		rows = append(rows, row)
	}
	return rows
}

func deref(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}
