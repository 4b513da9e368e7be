package consolidate_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/smantzavinos/activity_viewer/pkg/consolidate"
	"github.com/smantzavinos/activity_viewer/pkg/model"
	"github.com/smantzavinos/activity_viewer/pkg/page"
)

func block(ts, user string, rows ...page.FixtureRow) page.FixtureBlock {
	b := page.FixtureBlock{User: page.Str(user), RowList: rows}
	if ts != "" {
		b.Time = page.Str(ts)
	}
	return b
}

func comment(ts, user, body string) page.FixtureBlock {
	return page.FixtureBlock{Time: page.Str(ts), User: page.Str(user), Comment: true, Body: page.Str(body)}
}

// =============================================================================
// Extraction
// =============================================================================

func TestExtractFieldValue_StripsPrefix(t *testing.T) {
	b := block("2024-03-01T10:15:42Z", "anna", page.Change("Statuss", "Jaunā vērtībaAtvērts"))
	got := consolidate.ExtractFieldValue(&b, "Statuss", consolidate.DefaultLabelPrefix)
	if got != "Atvērts" {
		t.Errorf("ExtractFieldValue = %q, want %q", got, "Atvērts")
	}
}

func TestExtractFieldValue_FirstMatchWins(t *testing.T) {
	b := block("2024-03-01T10:15:42Z", "anna",
		page.Change("Statuss", "Jaunā vērtība Open"),
		page.Change("Statuss", "Jaunā vērtība Closed"),
	)
	if got := consolidate.ExtractFieldValue(&b, "Statuss", consolidate.DefaultLabelPrefix); got != "Open" {
		t.Errorf("expected first row to win, got %q", got)
	}
}

func TestExtractFieldValue_LabelRowWithoutValueIsSkipped(t *testing.T) {
	b := block("2024-03-01T10:15:42Z", "anna",
		page.FixtureRow{Label: page.Str("Statuss")},
		page.Change("Statuss", "Jaunā vērtībaDone"),
	)
	if got := consolidate.ExtractFieldValue(&b, "Statuss", consolidate.DefaultLabelPrefix); got != "Done" {
		t.Errorf("expected scan to continue past a row with no value cell, got %q", got)
	}
}

func TestExtractFieldValue_NoMatch(t *testing.T) {
	b := block("2024-03-01T10:15:42Z", "anna", page.Change("Statuss", "x"))
	if got := consolidate.ExtractFieldValue(&b, "Prioritāte", consolidate.DefaultLabelPrefix); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestExtractFieldValue_TrimsLabelAndRemovesFirstPrefixOnly(t *testing.T) {
	b := block("t", "u", page.Change("  Statuss \n", "  Jaunā vērtība A Jaunā vērtība  "))
	got := consolidate.ExtractFieldValue(&b, "Statuss", consolidate.DefaultLabelPrefix)
	if got != "A Jaunā vērtība" {
		t.Errorf("got %q", got)
	}
}

func TestExtractUserAndComment(t *testing.T) {
	c := comment("2024-03-01T10:15:00Z", "  anna  ", "\n  looks good \n")
	if got := consolidate.ExtractUser(&c); got != "anna" {
		t.Errorf("ExtractUser = %q", got)
	}
	if got := consolidate.ExtractComment(&c); got != "looks good" {
		t.Errorf("ExtractComment = %q", got)
	}

	notComment := page.FixtureBlock{Body: page.Str("hidden")}
	if got := consolidate.ExtractComment(&notComment); got != "" {
		t.Errorf("non-comment block must not yield a comment, got %q", got)
	}
	if got := consolidate.ExtractUser(&notComment); got != "" {
		t.Errorf("missing user should be empty, got %q", got)
	}
}

func TestExtractTimestamp_EmptyIsAbsent(t *testing.T) {
	b := page.FixtureBlock{Time: page.Str("")}
	if _, ok := consolidate.ExtractTimestamp(&b); ok {
		t.Error("empty datetime should count as absent")
	}
}

func TestDiscoverFieldNames_FirstSeenOrder(t *testing.T) {
	doc := &page.Fixture{
		BlockList: []page.FixtureBlock{
			block("t1", "u", page.Change(" B ", "x"), page.Change("A", "y")),
			block("t2", "u", page.Change("B", "z"), page.Change("C", "w")),
		},
		ExtraLabels: []string{"A", "D"},
	}
	got := consolidate.DiscoverFieldNames(doc)
	want := []string{"B", "A", "C", "D"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiscoverFieldNames = %v, want %v", got, want)
	}
}

// =============================================================================
// Grouping
// =============================================================================

func TestConsolidate_GroupsByMinute(t *testing.T) {
	doc := &page.Fixture{BlockList: []page.FixtureBlock{
		block("2024-03-01T10:15:42Z", "anna", page.Change("Statuss", "Jaunā vērtībaAtvērts")),
		block("2024-03-01T10:15:58Z", "janis", page.Change("Statuss", "Jaunā vērtībaSlēgts")),
	}}

	s := consolidate.Consolidate(doc, consolidate.DefaultOptions())
	if len(s.Keys) != 1 || s.Keys[0] != "2024-03-01T10:15" {
		t.Fatalf("Keys = %v, want [2024-03-01T10:15]", s.Keys)
	}
	tbl := consolidate.BuildTable(s, consolidate.TableOptions{})
	if len(tbl.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(tbl.Rows))
	}
	if tbl.Rows[0].Cells[0] != "01.03.2024 10:15" {
		t.Errorf("Datetime cell = %q", tbl.Rows[0].Cells[0])
	}
	if tbl.Rows[0].Cells[1] != "anna, janis" {
		t.Errorf("User cell = %q", tbl.Rows[0].Cells[1])
	}
	if got := tbl.Rows[0].Cells[tbl.ColumnIndex("Statuss")]; got != "Atvērts, Slēgts" {
		t.Errorf("Statuss cell = %q", got)
	}
}

func TestConsolidate_EveryTimestampedBlockInExactlyOneGroup(t *testing.T) {
	stamps := []string{
		"2024-03-01T10:15:42Z", "2024-03-01T10:16:01Z", "", "2024-03-01T10:15:00Z",
		"2024-03-02", "", "2024-03-01T10:16:59Z",
	}
	var blocks []page.FixtureBlock
	for _, ts := range stamps {
		blocks = append(blocks, block(ts, "u"))
	}
	s := consolidate.Consolidate(&page.Fixture{BlockList: blocks}, consolidate.DefaultOptions())

	membership := make(map[int]model.GroupKey)
	for key, idxs := range s.Blocks {
		for _, i := range idxs {
			if prev, dup := membership[i]; dup {
				t.Fatalf("block %d in two groups: %s and %s", i, prev, key)
			}
			membership[i] = key
		}
	}
	for i, ts := range stamps {
		key, ok := membership[i]
		if ts == "" {
			if ok {
				t.Errorf("block %d has no timestamp but landed in %s", i, key)
			}
			continue
		}
		if !ok {
			t.Errorf("block %d (%s) is in no group", i, ts)
			continue
		}
		if want := model.NewGroupKey(ts); key != want {
			t.Errorf("block %d key = %s, want %s", i, key, want)
		}
	}
	if s.SkippedBlocks != 2 || s.TotalBlocks != len(stamps) {
		t.Errorf("Skipped=%d Total=%d", s.SkippedBlocks, s.TotalBlocks)
	}
}

func TestConsolidate_FirstDiscoveryOrderAndStableBlocks(t *testing.T) {
	doc := &page.Fixture{BlockList: []page.FixtureBlock{
		block("2024-03-02T09:00:00Z", "a"),
		block("2024-03-01T08:00:00Z", "b"),
		block("2024-03-02T09:00:30Z", "c"),
	}}
	s := consolidate.Consolidate(doc, consolidate.DefaultOptions())

	wantKeys := []model.GroupKey{"2024-03-02T09:00", "2024-03-01T08:00"}
	if !reflect.DeepEqual(s.Keys, wantKeys) {
		t.Errorf("Keys = %v, want %v", s.Keys, wantKeys)
	}
	if got := s.Blocks["2024-03-02T09:00"]; !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("Blocks = %v, want [0 2]", got)
	}

	chrono := consolidate.BuildTable(s, consolidate.TableOptions{Chronological: true})
	if chrono.Rows[0].Key != "2024-03-01T08:00" {
		t.Errorf("chronological first row = %s", chrono.Rows[0].Key)
	}
	natural := consolidate.BuildTable(s, consolidate.TableOptions{})
	if natural.Rows[0].Key != "2024-03-02T09:00" {
		t.Errorf("default order should be first discovery, got %s", natural.Rows[0].Key)
	}
}

func TestConsolidate_SchemaSeededInEveryGroup(t *testing.T) {
	doc := &page.Fixture{BlockList: []page.FixtureBlock{
		block("2024-03-01T10:00:00Z", "anna", page.Change("A", "Jaunā vērtība1")),
		block("2024-03-01T11:00:00Z", "anna", page.Change("B", "Jaunā vērtība2")),
	}}
	s := consolidate.Consolidate(doc, consolidate.DefaultOptions())
	for _, key := range s.Keys {
		g := s.Groups[key]
		if len(g.Fields) != len(s.Schema) {
			t.Errorf("group %s has %d fields, want %d", key, len(g.Fields), len(s.Schema))
		}
		for _, name := range s.Schema {
			if g.Field(name) == nil {
				t.Errorf("group %s missing field %s", key, name)
			}
		}
	}

	tbl := consolidate.BuildTable(s, consolidate.TableOptions{})
	a, b := tbl.ColumnIndex("A"), tbl.ColumnIndex("B")
	first := tbl.Rows[0].Cells
	if first[a] != "1" || first[b] != "" {
		t.Errorf("row 0: A=%q B=%q, want A=1 B=empty", first[a], first[b])
	}
}

func TestConsolidate_DuplicateValuesCollapse(t *testing.T) {
	doc := &page.Fixture{BlockList: []page.FixtureBlock{
		block("2024-03-01T10:00:01Z", "anna", page.Change("A", "Jaunā vērtībax")),
		block("2024-03-01T10:00:02Z", "anna", page.Change("A", "Jaunā vērtībax")),
	}}
	s := consolidate.Consolidate(doc, consolidate.DefaultOptions())
	g := s.Groups["2024-03-01T10:00"]
	if g.Users.Len() != 1 || g.Field("A").Len() != 1 {
		t.Errorf("users=%d A=%d, want 1 and 1", g.Users.Len(), g.Field("A").Len())
	}
}

func TestConsolidate_Comments(t *testing.T) {
	doc := &page.Fixture{BlockList: []page.FixtureBlock{
		comment("2024-03-01T10:00:01Z", "anna", "first"),
		comment("2024-03-01T10:00:02Z", "anna", "second"),
		{Time: page.Str("2024-03-01T10:00:03Z"), Body: page.Str("not a comment")},
	}}

	s := consolidate.Consolidate(doc, consolidate.DefaultOptions())
	tbl := consolidate.BuildTable(s, consolidate.TableOptions{})
	if !reflect.DeepEqual(tbl.Headers, []string{"Datetime", "User", "Comments"}) {
		t.Fatalf("Headers = %v", tbl.Headers)
	}
	if got := tbl.Rows[0].Cells[2]; got != "first, second" {
		t.Errorf("Comments = %q", got)
	}

	noComments := consolidate.Consolidate(doc, consolidate.Options{LabelPrefix: consolidate.DefaultLabelPrefix})
	tbl = consolidate.BuildTable(noComments, consolidate.TableOptions{})
	for _, h := range tbl.Headers {
		if h == "Comments" {
			t.Error("Comments column should be absent when comments are not tracked")
		}
	}
	if noComments.Groups["2024-03-01T10:00"].Comments.Len() != 0 {
		t.Error("comment set should stay empty when not tracked")
	}
}

func TestConsolidate_ShortTimestampUsedAsIs(t *testing.T) {
	doc := &page.Fixture{BlockList: []page.FixtureBlock{block("2024-03-01", "x")}}
	s := consolidate.Consolidate(doc, consolidate.DefaultOptions())
	if len(s.Keys) != 1 || s.Keys[0] != "2024-03-01" {
		t.Fatalf("Keys = %v", s.Keys)
	}
	tbl := consolidate.BuildTable(s, consolidate.TableOptions{})
	if tbl.Rows[0].Cells[0] != "2024-03-01" {
		t.Errorf("malformed key should render unchanged, got %q", tbl.Rows[0].Cells[0])
	}
}

func TestConsolidate_HTMLDocument(t *testing.T) {
	const src = `<html><body>
<div class="issuePanelContainer">
 <div class="issue-data-block">
  <time class="livestamp" datetime="2024-03-01T10:15:42Z"></time>
  <a class="user-hover"> Anna </a>
  <table><tr><td class="activity-name">Statuss</td><td class="activity-new-val">Jaunā vērtībaAtvērts</td></tr></table>
 </div>
 <div class="issue-data-block activity-comment">
  <time class="livestamp" datetime="2024-03-01T10:15:58Z"></time>
  <a class="user-hover">Jānis</a>
  <div class="action-body flooded"> Please check </div>
 </div>
 <div class="issue-data-block"><a class="user-hover">ghost</a></div>
</div></body></html>`

	doc, err := page.ParseHTML(strings.NewReader(src), page.Selectors{})
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	s := consolidate.Consolidate(doc, consolidate.DefaultOptions())
	tbl := consolidate.BuildTable(s, consolidate.TableOptions{})

	want := []string{"01.03.2024 10:15", "Anna, Jānis", "Please check", "Atvērts"}
	if len(tbl.Rows) != 1 || !reflect.DeepEqual(tbl.Rows[0].Cells, want) {
		t.Errorf("rows = %+v, want one row %v", tbl.Rows, want)
	}
	if s.SkippedBlocks != 1 {
		t.Errorf("SkippedBlocks = %d, want 1", s.SkippedBlocks)
	}
}
