package export

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/smantzavinos/activity_viewer/pkg/analysis"
	"github.com/smantzavinos/activity_viewer/pkg/model"
)

// FormatVersion is bumped whenever an exported layout changes.
const FormatVersion = "1.0.0"

// ExportMeta describes one export run.
type ExportMeta struct {
	Version     string    `json:"version"`
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source,omitempty"`
	Title       string    `json:"title,omitempty"`
	DataHash    string    `json:"data_hash"`
	BlockCount  int       `json:"block_count"`
	GroupCount  int       `json:"group_count"`
	Skipped     int       `json:"skipped_count"`
}

// NewExportMeta stamps a fresh run ID and hash for t.
func NewExportMeta(s *model.Summary, t *model.Table, source string) ExportMeta {
	return ExportMeta{
		Version:     FormatVersion,
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Source:      source,
		DataHash:    analysis.ComputeDataHash(t),
		BlockCount:  s.TotalBlocks,
		GroupCount:  s.GroupCount(),
		Skipped:     s.SkippedBlocks,
	}
}

// ExportGroup is the JSON form of one consolidated group.
type ExportGroup struct {
	Key      model.GroupKey      `json:"key"`
	Display  string              `json:"display"`
	Blocks   []int               `json:"blocks"`
	Users    []string            `json:"users"`
	Comments []string            `json:"comments,omitempty"`
	Fields   map[string][]string `json:"fields"`
}

// Document is the full JSON export.
type Document struct {
	Meta   ExportMeta          `json:"meta"`
	Schema []string            `json:"schema"`
	Groups []ExportGroup       `json:"groups"`
	Table  *model.Table        `json:"table"`
	Stats  analysis.GroupStats `json:"stats"`
}

// BuildDocument assembles the JSON export. Groups follow the table's row
// order.
func BuildDocument(s *model.Summary, t *model.Table, meta ExportMeta) Document {
	doc := Document{
		Meta:   meta,
		Schema: s.Schema,
		Groups: make([]ExportGroup, 0, len(t.Rows)),
		Table:  t,
		Stats:  analysis.ComputeStats(s),
	}
	for _, row := range t.Rows {
		g := s.Group(row.Key)
		if g == nil {
			continue
		}
		eg := ExportGroup{
			Key:     row.Key,
			Display: row.Key.Display(),
			Blocks:  s.Blocks[row.Key],
			Users:   nonNil(g.Users.Values()),
			Fields:  make(map[string][]string, len(s.Schema)),
		}
		if s.TrackComments {
			eg.Comments = g.Comments.Values()
		}
		for _, name := range s.Schema {
			eg.Fields[name] = nonNil(g.Field(name).Values())
		}
		doc.Groups = append(doc.Groups, eg)
	}
	return doc
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// SaveJSONToFile writes the JSON export to path.
func SaveJSONToFile(s *model.Summary, t *model.Table, meta ExportMeta, path string) error {
	return writeJSON(path, BuildDocument(s, t, meta))
}

// writeJSON writes data as JSON to a file.
func writeJSON(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
