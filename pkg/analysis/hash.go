package analysis

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/smantzavinos/activity_viewer/pkg/model"
)

// ComputeDataHash fingerprints a rendered table. Equal tables hash equal,
// row order included, since order is visible in the output.
func ComputeDataHash(t *model.Table) string {
	if t == nil || (len(t.Headers) == 0 && len(t.Rows) == 0) {
		return "empty"
	}
	h := sha256.New()
	write := func(cells []string) {
		for _, c := range cells {
			h.Write([]byte(c))
			h.Write([]byte{0})
		}
		h.Write([]byte{'\n'})
	}
	write(t.Headers)
	for _, row := range t.Rows {
		h.Write([]byte(row.Key))
		h.Write([]byte{0})
		write(row.Cells)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
