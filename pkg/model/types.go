// Package model holds the activity-log data model shared by the scraper,
// the consolidator and every exporter.
package model

import "strings"

// GroupKeyLength is the number of timestamp characters kept in a GroupKey
// (YYYY-MM-DDTHH:MM).
const GroupKeyLength = 16

// GroupKey buckets activity blocks by minute.
type GroupKey string

// NewGroupKey truncates a raw ISO-8601 timestamp to minute precision.
// Length is counted in characters, not bytes. Timestamps shorter than
// GroupKeyLength are used as-is.
func NewGroupKey(timestamp string) GroupKey {
	n := 0
	for i := range timestamp {
		if n == GroupKeyLength {
			return GroupKey(timestamp[:i])
		}
		n++
	}
	return GroupKey(timestamp)
}

// Display returns the key formatted as DD.MM.YYYY HH:MM.
func (k GroupKey) Display() string {
	return FormatGroupKey(string(k))
}

// FormatGroupKey reformats "YYYY-MM-DDTHH:MM" as "DD.MM.YYYY HH:MM".
// Keys that don't have that shape are returned unchanged.
func FormatGroupKey(key string) string {
	datePart, timePart, ok := strings.Cut(key, "T")
	if !ok {
		return key
	}
	ymd := strings.Split(datePart, "-")
	hm := strings.Split(timePart, ":")
	if len(ymd) != 3 || len(hm) < 2 {
		return key
	}
	return ymd[2] + "." + ymd[1] + "." + ymd[0] + " " + hm[0] + ":" + hm[1]
}

// FieldChange is one (label, new value) pair scraped from a block's table.
type FieldChange struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ActivityBlock is the extracted form of one activity-log block.
type ActivityBlock struct {
	Index        int           `json:"index"`
	Timestamp    string        `json:"timestamp,omitempty"`
	HasTimestamp bool          `json:"has_timestamp"`
	User         string        `json:"user,omitempty"`
	IsComment    bool          `json:"is_comment,omitempty"`
	CommentText  string        `json:"comment_text,omitempty"`
	Fields       []FieldChange `json:"fields,omitempty"`
}

// Key returns the block's group key. ok is false for blocks with no timestamp.
func (b ActivityBlock) Key() (GroupKey, bool) {
	if !b.HasTimestamp {
		return "", false
	}
	return NewGroupKey(b.Timestamp), true
}

// ConsolidatedGroup aggregates every block that shares a GroupKey.
type ConsolidatedGroup struct {
	Key      GroupKey
	Users    *OrderedSet
	Comments *OrderedSet
	Fields   map[string]*OrderedSet
}

// NewConsolidatedGroup returns a group pre-seeded with an empty set for each
// schema field, so absent fields render as empty cells.
func NewConsolidatedGroup(key GroupKey, schema []string) *ConsolidatedGroup {
	g := &ConsolidatedGroup{
		Key:      key,
		Users:    NewOrderedSet(),
		Comments: NewOrderedSet(),
		Fields:   make(map[string]*OrderedSet, len(schema)),
	}
	for _, name := range schema {
		g.Fields[name] = NewOrderedSet()
	}
	return g
}

// Field returns the value set for name, or nil if name is not in the schema.
func (g *ConsolidatedGroup) Field(name string) *OrderedSet {
	if g == nil {
		return nil
	}
	return g.Fields[name]
}

// Summary is the result of one consolidation pass over a page.
type Summary struct {
	// Schema is the page-wide field-name column list, first-seen order.
	Schema []string

	// Keys lists group keys in first-discovery order.
	Keys []GroupKey

	Groups map[GroupKey]*ConsolidatedGroup

	// Blocks maps each key to the indices of its source blocks, page order.
	Blocks map[GroupKey][]int

	// Extracted holds every scraped block, including the skipped ones.
	Extracted []ActivityBlock

	TotalBlocks   int
	SkippedBlocks int
	TrackComments bool
}

// GroupCount returns the number of distinct keys.
func (s *Summary) GroupCount() int {
	if s == nil {
		return 0
	}
	return len(s.Keys)
}

// Group returns the consolidated group for key.
func (s *Summary) Group(key GroupKey) *ConsolidatedGroup {
	if s == nil {
		return nil
	}
	return s.Groups[key]
}

// TableRow is one rendered summary row.
type TableRow struct {
	Key   GroupKey `json:"key"`
	Cells []string `json:"cells"`
}

// Table is the rendered summary: a header row plus one row per group.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    []TableRow `json:"rows"`
}

// Records returns the header followed by every row's cells.
func (t *Table) Records() [][]string {
	if t == nil {
		return nil
	}
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, t.Headers)
	for _, r := range t.Rows {
		out = append(out, r.Cells)
	}
	return out
}

// ColumnIndex returns the index of the named header, or -1.
func (t *Table) ColumnIndex(header string) int {
	if t == nil {
		return -1
	}
	for i, h := range t.Headers {
		if h == header {
			return i
		}
	}
	return -1
}
