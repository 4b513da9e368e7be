package consolidate

import (
	"sort"

	"github.com/smantzavinos/activity_viewer/pkg/model"
	"github.com/smantzavinos/activity_viewer/pkg/page"
)

// Options control a consolidation pass.
type Options struct {
	// LabelPrefix is stripped from every new-value cell.
	LabelPrefix string

	// TrackComments adds a Comments set to every group and a Comments
	// column to the table.
	TrackComments bool
}

// DefaultOptions mirrors the tracker page the tool was written for.
func DefaultOptions() Options {
	return Options{
		LabelPrefix:   DefaultLabelPrefix,
		TrackComments: true,
	}
}

// Consolidate scans doc once and groups its blocks by minute.
//
// Keys appear in first-discovery order and blocks keep page order within a
// key. Blocks without a timestamp contribute nothing. Every group carries
// one (possibly empty) set per discovered field name.
func Consolidate(doc page.DocumentQuery, opts Options) *model.Summary {
	schema := DiscoverFieldNames(doc)
	blocks := doc.Blocks()

	s := &model.Summary{
		Schema:        schema,
		Groups:        make(map[model.GroupKey]*model.ConsolidatedGroup),
		Blocks:        make(map[model.GroupKey][]int),
		Extracted:     make([]model.ActivityBlock, 0, len(blocks)),
		TotalBlocks:   len(blocks),
		TrackComments: opts.TrackComments,
	}

	for i, b := range blocks {
		ab := ExtractBlock(i, b, schema, opts.LabelPrefix)
		s.Extracted = append(s.Extracted, ab)

		key, ok := ab.Key()
		if !ok {
			s.SkippedBlocks++
			continue
		}

		group, seen := s.Groups[key]
		if !seen {
			group = model.NewConsolidatedGroup(key, schema)
			s.Groups[key] = group
			s.Keys = append(s.Keys, key)
		}
		s.Blocks[key] = append(s.Blocks[key], i)

		if ab.User != "" {
			group.Users.Add(ab.User)
		}
		if opts.TrackComments && ab.CommentText != "" {
			group.Comments.Add(ab.CommentText)
		}
		for _, fc := range ab.Fields {
			group.Fields[fc.Name].Add(fc.Value)
		}
	}

	return s
}

// TableOptions control how a summary is rendered into rows.
type TableOptions struct {
	// Chronological sorts rows by key instead of first-discovery order.
	Chronological bool

	// Separator joins set values inside a cell. Defaults to ", ".
	Separator string
}

// Fixed table headers.
const (
	HeaderDatetime = "Datetime"
	HeaderUser     = "User"
	HeaderComments = "Comments"
)

// BuildTable renders s into header and rows: Datetime, User, Comments (when
// tracked), then one column per schema field.
func BuildTable(s *model.Summary, opts TableOptions) *model.Table {
	sep := opts.Separator
	if sep == "" {
		sep = ", "
	}

	headers := []string{HeaderDatetime, HeaderUser}
	if s.TrackComments {
		headers = append(headers, HeaderComments)
	}
	headers = append(headers, s.Schema...)

	keys := make([]model.GroupKey, len(s.Keys))
	copy(keys, s.Keys)
	if opts.Chronological {
		sort.SliceStable(keys, func(i, j int) bool { return keys[i] < keys[j] })
	}

	t := &model.Table{Headers: headers, Rows: make([]model.TableRow, 0, len(keys))}
	for _, key := range keys {
		g := s.Groups[key]
		if g == nil {
			continue
		}
		cells := make([]string, 0, len(headers))
		cells = append(cells, key.Display(), g.Users.Join(sep))
		if s.TrackComments {
			cells = append(cells, g.Comments.Join(sep))
		}
		for _, name := range s.Schema {
			cells = append(cells, g.Field(name).Join(sep))
		}
		t.Rows = append(t.Rows, model.TableRow{Key: key, Cells: cells})
	}
	return t
}
