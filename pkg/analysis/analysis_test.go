package analysis_test

import (
	"math"
	"testing"

	"github.com/smantzavinos/activity_viewer/pkg/analysis"
	"github.com/smantzavinos/activity_viewer/pkg/consolidate"
	"github.com/smantzavinos/activity_viewer/pkg/model"
	"github.com/smantzavinos/activity_viewer/pkg/page"
)

func sampleSummary() *model.Summary {
	b := func(ts, user string, rows ...page.FixtureRow) page.FixtureBlock {
		return page.FixtureBlock{Time: page.Str(ts), User: page.Str(user), RowList: rows}
	}
	doc := &page.Fixture{BlockList: []page.FixtureBlock{
		b("2024-03-01T10:00:01Z", "anna", page.Change("Statuss", "Jaunā vērtībaOpen")),
		b("2024-03-01T10:00:02Z", "anna"),
		b("2024-03-01T11:00:00Z", "janis", page.Change("Prioritāte", "Jaunā vērtībaHigh")),
		b("2024-03-01T12:00:00Z", "anna"),
		b("2024-03-01T12:00:10Z", "janis"),
		b("2024-03-01T12:00:20Z", "ilze"),
		{User: page.Str("nobody")},
	}}
	return consolidate.Consolidate(doc, consolidate.DefaultOptions())
}

// =============================================================================
// ComputeStats Tests
// =============================================================================

func TestComputeStats_GroupSizes(t *testing.T) {
	st := analysis.ComputeStats(sampleSummary())

	if st.Groups != 3 {
		t.Fatalf("Groups = %d, want 3", st.Groups)
	}
	if st.Blocks != 7 || st.Grouped != 6 || st.Skipped != 1 {
		t.Errorf("Blocks=%d Grouped=%d Skipped=%d", st.Blocks, st.Grouped, st.Skipped)
	}
	if st.MeanSize != 2 {
		t.Errorf("MeanSize = %v, want 2", st.MeanSize)
	}
	if st.MedianSize != 2 {
		t.Errorf("MedianSize = %v, want 2", st.MedianSize)
	}
	if math.Abs(st.StdDevSize-1) > 1e-9 {
		t.Errorf("StdDevSize = %v, want 1", st.StdDevSize)
	}
	if st.MaxSize != 3 || st.BusiestKey != "2024-03-01T12:00" {
		t.Errorf("MaxSize=%d BusiestKey=%s", st.MaxSize, st.BusiestKey)
	}
}

func TestComputeStats_UsersAndFill(t *testing.T) {
	st := analysis.ComputeStats(sampleSummary())

	if st.BlocksPerUser["anna"] != 3 || st.BlocksPerUser["janis"] != 2 {
		t.Errorf("BlocksPerUser = %v", st.BlocksPerUser)
	}
	if _, ok := st.BlocksPerUser["nobody"]; ok {
		t.Error("blocks without a timestamp must not count")
	}
	if len(st.TopUsers) == 0 || st.TopUsers[0].User != "anna" {
		t.Errorf("TopUsers = %v", st.TopUsers)
	}
	want := 1.0 / 3.0
	if got := st.FieldFillRate["Statuss"]; math.Abs(got-want) > 1e-9 {
		t.Errorf("FieldFillRate[Statuss] = %v, want %v", got, want)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	st := analysis.ComputeStats(consolidate.Consolidate(&page.Fixture{}, consolidate.DefaultOptions()))
	if st.Groups != 0 || st.MeanSize != 0 || st.MaxSize != 0 {
		t.Errorf("unexpected stats for empty page: %+v", st)
	}
}

// =============================================================================
// ComputeDataHash Tests
// =============================================================================

func TestComputeDataHash_Empty(t *testing.T) {
	if hash := analysis.ComputeDataHash(nil); hash != "empty" {
		t.Errorf("Expected 'empty' for nil table, got %s", hash)
	}
	if hash := analysis.ComputeDataHash(&model.Table{}); hash != "empty" {
		t.Errorf("Expected 'empty' for empty table, got %s", hash)
	}
}

func TestComputeDataHash_Deterministic(t *testing.T) {
	s := sampleSummary()
	t1 := consolidate.BuildTable(s, consolidate.TableOptions{})
	t2 := consolidate.BuildTable(s, consolidate.TableOptions{})
	if analysis.ComputeDataHash(t1) != analysis.ComputeDataHash(t2) {
		t.Error("Hash should be deterministic")
	}
}

func TestComputeDataHash_DifferentData(t *testing.T) {
	base := &model.Table{Headers: []string{"Datetime"}, Rows: []model.TableRow{{Key: "a", Cells: []string{"x"}}}}
	changed := &model.Table{Headers: []string{"Datetime"}, Rows: []model.TableRow{{Key: "a", Cells: []string{"y"}}}}
	// Cell boundaries matter: ["ab",""] must differ from ["a","b"].
	split1 := &model.Table{Headers: []string{"ab", ""}}
	split2 := &model.Table{Headers: []string{"a", "b"}}

	if analysis.ComputeDataHash(base) == analysis.ComputeDataHash(changed) {
		t.Error("Different cell text should produce different hash")
	}
	if analysis.ComputeDataHash(split1) == analysis.ComputeDataHash(split2) {
		t.Error("Cell boundaries should affect the hash")
	}
}

func TestGroupSizes(t *testing.T) {
	s := sampleSummary()
	tbl := consolidate.BuildTable(s, consolidate.TableOptions{})
	sizes := analysis.GroupSizes(s, tbl)
	want := []int{2, 1, 3}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("GroupSizes = %v, want %v", sizes, want)
		}
	}
}
