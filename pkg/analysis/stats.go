// Package analysis derives statistics and fingerprints from a consolidated
// activity summary.
package analysis

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/smantzavinos/activity_viewer/pkg/model"
)

// GroupStats describes how blocks are spread over groups.
type GroupStats struct {
	Groups        int                `json:"groups"`
	Blocks        int                `json:"blocks"`
	Grouped       int                `json:"grouped_blocks"`
	Skipped       int                `json:"skipped_blocks"`
	MeanSize      float64            `json:"mean_group_size"`
	StdDevSize    float64            `json:"stddev_group_size"`
	MedianSize    float64            `json:"median_group_size"`
	MaxSize       int                `json:"max_group_size"`
	BusiestKey    model.GroupKey     `json:"busiest_key,omitempty"`
	BlocksPerUser map[string]int     `json:"blocks_per_user"`
	FieldFillRate map[string]float64 `json:"field_fill_rate"`
	TopUsers      []UserCount        `json:"top_users"`
}

// UserCount pairs a user with the number of blocks they authored.
type UserCount struct {
	User   string `json:"user"`
	Blocks int    `json:"blocks"`
}

// ComputeStats summarises group sizes, user activity and how often each
// field column is non-empty.
func ComputeStats(s *model.Summary) GroupStats {
	st := GroupStats{
		Groups:        s.GroupCount(),
		Blocks:        s.TotalBlocks,
		Skipped:       s.SkippedBlocks,
		BlocksPerUser: make(map[string]int),
		FieldFillRate: make(map[string]float64, len(s.Schema)),
	}
	if st.Groups == 0 {
		for _, name := range s.Schema {
			st.FieldFillRate[name] = 0
		}
		return st
	}

	sizes := make([]float64, 0, st.Groups)
	for _, key := range s.Keys {
		n := len(s.Blocks[key])
		st.Grouped += n
		sizes = append(sizes, float64(n))
		if n > st.MaxSize {
			st.MaxSize = n
			st.BusiestKey = key
		}
	}

	st.MeanSize = stat.Mean(sizes, nil)
	if len(sizes) > 1 {
		st.StdDevSize = stat.StdDev(sizes, nil)
	}
	sorted := make([]float64, len(sizes))
	copy(sorted, sizes)
	sort.Float64s(sorted)
	st.MedianSize = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	st.MaxSize = int(floats.Max(sizes))

	for _, b := range s.Extracted {
		if !b.HasTimestamp || b.User == "" {
			continue
		}
		st.BlocksPerUser[b.User]++
	}
	for user, n := range st.BlocksPerUser {
		st.TopUsers = append(st.TopUsers, UserCount{User: user, Blocks: n})
	}
	sort.Slice(st.TopUsers, func(i, j int) bool {
		if st.TopUsers[i].Blocks != st.TopUsers[j].Blocks {
			return st.TopUsers[i].Blocks > st.TopUsers[j].Blocks
		}
		return st.TopUsers[i].User < st.TopUsers[j].User
	})

	for _, name := range s.Schema {
		filled := 0
		for _, key := range s.Keys {
			if s.Groups[key].Field(name).Len() > 0 {
				filled++
			}
		}
		st.FieldFillRate[name] = float64(filled) / float64(st.Groups)
	}

	return st
}

// GroupSizes returns the number of blocks per group in the table's row order.
func GroupSizes(s *model.Summary, t *model.Table) []int {
	out := make([]int, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = len(s.Blocks[row.Key])
	}
	return out
}
