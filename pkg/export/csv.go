package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/smantzavinos/activity_viewer/pkg/model"
)

// DefaultCSVFilename is the name the browser download used.
const DefaultCSVFilename = "activity_summary.csv"

// EncodeCSV renders t with every cell trimmed and double-quoted, embedded
// quotes doubled, cells joined by commas and rows joined by "\n" (no
// trailing newline).
func EncodeCSV(t *model.Table) string {
	records := t.Records()
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		cells := make([]string, len(rec))
		for i, c := range rec {
			cells[i] = quoteCSVCell(c)
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n")
}

func quoteCSVCell(s string) string {
	return `"` + strings.ReplaceAll(strings.TrimSpace(s), `"`, `""`) + `"`
}

// WriteCSV writes the encoded table to w.
func WriteCSV(w io.Writer, t *model.Table) error {
	_, err := io.WriteString(w, EncodeCSV(t))
	return err
}

// SaveCSVToFile writes the encoded table to filename.
func SaveCSVToFile(t *model.Table, filename string) error {
	if filename == "" {
		filename = DefaultCSVFilename
	}
	return os.WriteFile(filename, []byte(EncodeCSV(t)), 0644)
}

// ParseCSV reads back the format produced by EncodeCSV.
func ParseCSV(data string) ([][]string, error) {
	if data == "" {
		return nil, nil
	}
	r := csv.NewReader(strings.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}
