// Package page adapts an issue page's markup to the typed DocumentQuery
// interface the consolidator depends on.
//
// HTMLDocument is backed by a parsed HTML tree (goquery); Fixture is an
// in-memory implementation used by tests and JSON fixtures.
package page

// DocumentQuery is the page-level capability the consolidator needs.
type DocumentQuery interface {
	// Blocks returns every activity block in page order.
	Blocks() []Block

	// FieldLabels returns the raw text of every field-name label on the
	// page, in page order, duplicates included.
	FieldLabels() []string

	// HasMountPoint reports whether the page has a container the summary
	// can be attached to.
	HasMountPoint() bool
}

// Block is one activity-log record on the page.
type Block interface {
	// Timestamp returns the raw datetime attribute of the block's
	// timestamp element. ok is false if there is no such element.
	Timestamp() (value string, ok bool)

	// UserText returns the raw text of the user element.
	UserText() (text string, ok bool)

	// IsComment reports whether the block carries the comment marker.
	IsComment() bool

	// CommentBody returns the raw text of the nested comment body.
	CommentBody() (text string, ok bool)

	// Rows returns the block's internal table rows in page order.
	Rows() []Row
}

// Row is one row of a block's change table.
type Row struct {
	Label       string `json:"label,omitempty"`
	HasLabel    bool   `json:"has_label"`
	NewValue    string `json:"new_value,omitempty"`
	HasNewValue bool   `json:"has_new_value"`
}

// Selectors are the CSS selectors used to locate each part of the page.
type Selectors struct {
	Block         string `mapstructure:"block" yaml:"block"`
	Timestamp     string `mapstructure:"timestamp" yaml:"timestamp"`
	TimestampAttr string `mapstructure:"timestamp_attr" yaml:"timestamp_attr"`
	User          string `mapstructure:"user" yaml:"user"`
	CommentClass  string `mapstructure:"comment_class" yaml:"comment_class"`
	CommentBody   string `mapstructure:"comment_body" yaml:"comment_body"`
	Row           string `mapstructure:"row" yaml:"row"`
	Label         string `mapstructure:"label" yaml:"label"`
	NewValue      string `mapstructure:"new_value" yaml:"new_value"`
	Mount         string `mapstructure:"mount" yaml:"mount"`
}

// DefaultSelectors matches the issue tracker's activity tab markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Block:         ".issue-data-block",
		Timestamp:     "time.livestamp",
		TimestampAttr: "datetime",
		User:          ".user-hover",
		CommentClass:  "activity-comment",
		CommentBody:   ".action-body.flooded",
		Row:           "tr",
		Label:         ".activity-name",
		NewValue:      ".activity-new-val",
		Mount:         ".issuePanelContainer",
	}
}

// WithDefaults fills every empty selector from DefaultSelectors.
func (s Selectors) WithDefaults() Selectors {
	d := DefaultSelectors()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&s.Block, d.Block)
	fill(&s.Timestamp, d.Timestamp)
	fill(&s.TimestampAttr, d.TimestampAttr)
	fill(&s.User, d.User)
	fill(&s.CommentClass, d.CommentClass)
	fill(&s.CommentBody, d.CommentBody)
	fill(&s.Row, d.Row)
	fill(&s.Label, d.Label)
	fill(&s.NewValue, d.NewValue)
	fill(&s.Mount, d.Mount)
	return s
}
