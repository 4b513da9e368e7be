// Package consolidate turns a page's scattered activity blocks into one
// consolidated record per minute.
//
// Nothing in this package fails: missing elements degrade to empty strings
// and blocks without a timestamp are left out of the summary.
package consolidate

import (
	"strings"

	"github.com/smantzavinos/activity_viewer/pkg/model"
	"github.com/smantzavinos/activity_viewer/pkg/page"
)

// DefaultLabelPrefix is the literal the tracker prepends to every new value.
const DefaultLabelPrefix = "Jaunā vērtība"

// ExtractTimestamp returns the block's raw datetime. An empty attribute
// counts as absent.
func ExtractTimestamp(b page.Block) (string, bool) {
	ts, ok := b.Timestamp()
	if !ok || ts == "" {
		return "", false
	}
	return ts, true
}

// ExtractUser returns the trimmed user text, or "" if there is none.
func ExtractUser(b page.Block) string {
	text, ok := b.UserText()
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}

// ExtractComment returns the trimmed comment body of a comment block.
// Other blocks always yield "".
func ExtractComment(b page.Block) string {
	if !b.IsComment() {
		return ""
	}
	text, ok := b.CommentBody()
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}

// DiscoverFieldNames returns the distinct trimmed field labels of the whole
// page in first-seen order. This is the column schema for the run.
func DiscoverFieldNames(doc page.DocumentQuery) []string {
	seen := model.NewOrderedSet()
	for _, label := range doc.FieldLabels() {
		seen.Add(strings.TrimSpace(label))
	}
	names := seen.Values()
	if names == nil {
		return []string{}
	}
	return names
}

// ExtractFieldValue returns the new value recorded for fieldName in b.
// The first row whose label matches and that has a value cell wins; the
// first occurrence of prefix is removed before trimming.
func ExtractFieldValue(b page.Block, fieldName, prefix string) string {
	for _, row := range b.Rows() {
		if !row.HasLabel || strings.TrimSpace(row.Label) != fieldName {
			continue
		}
		if !row.HasNewValue {
			continue
		}
		value := row.NewValue
		if prefix != "" {
			value = strings.Replace(value, prefix, "", 1)
		}
		return strings.TrimSpace(value)
	}
	return ""
}

// ExtractBlock captures everything the summary needs from one block.
func ExtractBlock(index int, b page.Block, schema []string, prefix string) model.ActivityBlock {
	ab := model.ActivityBlock{
		Index:       index,
		User:        ExtractUser(b),
		IsComment:   b.IsComment(),
		CommentText: ExtractComment(b),
	}
	ab.Timestamp, ab.HasTimestamp = ExtractTimestamp(b)
	for _, name := range schema {
		if v := ExtractFieldValue(b, name, prefix); v != "" {
			ab.Fields = append(ab.Fields, model.FieldChange{Name: name, Value: v})
		}
	}
	return ab
}
