package algo

import (
	"slices"
	"time"

	"github.com/huangsam/cadence/schema"
)

// DetectSessions partitions commits into work sessions. A new session starts
// when the time since the previous commit is strictly greater than gapMinutes.
//
// The input does not need to be sorted: commits are stable-sorted by timestamp
// on a copy, so the caller's slice is left untouched. Empty input yields zero
// sessions with zero-valued stats and range.
func DetectSessions(commits []schema.Commit, gapMinutes float64) schema.SessionDetectionResult {
	result := schema.SessionDetectionResult{
		Sessions:            []schema.Session{},
		GapThresholdMinutes: gapMinutes,
	}
	if len(commits) == 0 {
		return result
	}

	sorted := slices.Clone(commits)
	slices.SortStableFunc(sorted, func(a, b schema.Commit) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	var groups [][]schema.Commit
	current := []schema.Commit{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].Timestamp.Sub(sorted[i-1].Timestamp).Minutes()
		if gap > gapMinutes {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, sorted[i])
	}
	groups = append(groups, current)

	for i, members := range groups {
		result.Sessions = append(result.Sessions, newSession(i+1, members))
	}
	result.Stats = computeSessionStats(result.Sessions)
	result.Range = schema.TimeRange{
		Start: sorted[0].Timestamp,
		End:   sorted[len(sorted)-1].Timestamp,
	}
	return result
}

func newSession(id int, members []schema.Commit) schema.Session {
	start := members[0].Timestamp
	end := members[len(members)-1].Timestamp
	s := schema.Session{
		ID:              id,
		Start:           start,
		End:             end,
		DurationMinutes: minutesBetween(start, end),
		Commits:         members,
		CommitCount:     len(members),
		Authors:         schema.UniqueAuthors(members),
	}
	for _, c := range members {
		s.Additions += c.Additions
		s.Deletions += c.Deletions
	}
	return s
}

func minutesBetween(start, end time.Time) float64 {
	return end.Sub(start).Minutes()
}

func computeSessionStats(sessions []schema.Session) schema.SessionStats {
	stats := schema.SessionStats{TotalSessions: len(sessions)}
	if len(sessions) == 0 {
		return stats
	}

	durations := make([]float64, len(sessions))
	for i, s := range sessions {
		durations[i] = s.DurationMinutes
		stats.TotalCommits += s.CommitCount
		stats.TotalDurationMinutes += s.DurationMinutes
	}
	slices.Sort(durations)

	n := float64(len(sessions))
	stats.AvgCommitsPerSession = float64(stats.TotalCommits) / n
	stats.AvgDurationMinutes = stats.TotalDurationMinutes / n
	stats.MedianDurationMinutes = median(durations)
	stats.MinDurationMinutes = durations[0]
	stats.MaxDurationMinutes = durations[len(durations)-1]
	return stats
}

// median expects sorted, non-empty input.
func median(sorted []float64) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
