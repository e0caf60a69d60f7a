package algo

import (
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionEpoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// commitsAt builds commits at the given minute offsets from sessionEpoch.
func commitsAt(minutes ...int) []schema.Commit {
	commits := make([]schema.Commit, len(minutes))
	for i, m := range minutes {
		commits[i] = schema.Commit{
			Hash:      string(rune('a' + i%26)),
			Author:    "Alice",
			Timestamp: sessionEpoch.Add(time.Duration(m) * time.Minute),
		}
	}
	return commits
}

func TestDetectSessionsExample(t *testing.T) {
	result := DetectSessions(commitsAt(0, 30, 200), 90)

	require.Len(t, result.Sessions, 2)
	first, second := result.Sessions[0], result.Sessions[1]

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, first.CommitCount)
	assert.InDelta(t, 30.0, first.DurationMinutes, 1e-9)

	assert.Equal(t, 2, second.ID)
	assert.Equal(t, 1, second.CommitCount)
	assert.Zero(t, second.DurationMinutes)

	assert.Equal(t, 2, result.Stats.TotalSessions)
	assert.Equal(t, 3, result.Stats.TotalCommits)
	assert.InDelta(t, 1.5, result.Stats.AvgCommitsPerSession, 1e-9)
	assert.InDelta(t, 15.0, result.Stats.AvgDurationMinutes, 1e-9)
	assert.InDelta(t, 15.0, result.Stats.MedianDurationMinutes, 1e-9)
	assert.InDelta(t, 30.0, result.Stats.MaxDurationMinutes, 1e-9)
	assert.Zero(t, result.Stats.MinDurationMinutes)
	assert.Equal(t, sessionEpoch, result.Range.Start)
	assert.Equal(t, sessionEpoch.Add(200*time.Minute), result.Range.End)
	assert.InDelta(t, 90.0, result.GapThresholdMinutes, 1e-9)
}

func TestDetectSessionsGapBoundary(t *testing.T) {
	t.Run("gap equal to threshold does not split", func(t *testing.T) {
		result := DetectSessions(commitsAt(0, 90), 90)
		require.Len(t, result.Sessions, 1)
		assert.InDelta(t, 90.0, result.Sessions[0].DurationMinutes, 1e-9)
	})

	t.Run("gap just above threshold splits", func(t *testing.T) {
		commits := commitsAt(0, 0)
		commits[1].Timestamp = commits[0].Timestamp.Add(90*time.Minute + time.Second)
		result := DetectSessions(commits, 90)
		assert.Len(t, result.Sessions, 2)
	})

	t.Run("gap measured from previous commit", func(t *testing.T) {
		// Session spans 0..240 because no single gap exceeds 90.
		result := DetectSessions(commitsAt(0, 80, 160, 240), 90)
		require.Len(t, result.Sessions, 1)
		assert.InDelta(t, 240.0, result.Sessions[0].DurationMinutes, 1e-9)
	})
}

func TestDetectSessionsSingleCommit(t *testing.T) {
	result := DetectSessions(commitsAt(42), 60)
	require.Len(t, result.Sessions, 1)
	assert.Equal(t, 1, result.Sessions[0].CommitCount)
	assert.Zero(t, result.Sessions[0].DurationMinutes)
	assert.Equal(t, result.Range.Start, result.Range.End)
}

func TestDetectSessionsEmpty(t *testing.T) {
	result := DetectSessions(nil, 60)
	assert.Empty(t, result.Sessions)
	assert.NotNil(t, result.Sessions)
	assert.Equal(t, schema.SessionStats{}, result.Stats)
	assert.True(t, result.Range.Start.IsZero())
	assert.True(t, result.Range.End.IsZero())
}

func TestDetectSessionsSortsCopy(t *testing.T) {
	commits := commitsAt(200, 0, 30)
	original := slices.Clone(commits)

	result := DetectSessions(commits, 90)

	assert.Equal(t, original, commits, "input slice must not be reordered")
	require.Len(t, result.Sessions, 2)
	assert.Equal(t, sessionEpoch, result.Sessions[0].Start)
	assert.Equal(t, sessionEpoch.Add(30*time.Minute), result.Sessions[0].End)
	assert.Equal(t, sessionEpoch, result.Range.Start)
}

func TestDetectSessionsStableForEqualTimestamps(t *testing.T) {
	commits := commitsAt(10, 10, 10)
	result := DetectSessions(commits, 5)
	require.Len(t, result.Sessions, 1)
	hashes := make([]string, 0, 3)
	for _, c := range result.Sessions[0].Commits {
		hashes = append(hashes, c.Hash)
	}
	assert.Equal(t, []string{"a", "b", "c"}, hashes)
}

func TestDetectSessionsAggregatesAuthorsAndChurn(t *testing.T) {
	commits := commitsAt(0, 10, 20)
	commits[0].Author, commits[0].Additions, commits[0].Deletions = "Bob", 10, 2
	commits[1].Author, commits[1].Additions = "Alice", 5
	commits[2].Author, commits[2].Deletions = "Bob", 7

	result := DetectSessions(commits, 60)
	require.Len(t, result.Sessions, 1)
	s := result.Sessions[0]
	assert.Equal(t, []string{"Alice", "Bob"}, s.Authors)
	assert.Equal(t, 15, s.Additions)
	assert.Equal(t, 9, s.Deletions)
}

func TestDetectSessionsMedian(t *testing.T) {
	// Durations: 10, 0, 40, 20 -> sorted 0, 10, 20, 40 -> median 15.
	result := DetectSessions(commitsAt(0, 10, 100, 200, 240, 400, 420), 50)
	require.Len(t, result.Sessions, 4)
	assert.InDelta(t, 15.0, result.Stats.MedianDurationMinutes, 1e-9)
	assert.InDelta(t, 17.5, result.Stats.AvgDurationMinutes, 1e-9)
	assert.InDelta(t, 70.0, result.Stats.TotalDurationMinutes, 1e-9)
	assert.InDelta(t, 40.0, result.Stats.MaxDurationMinutes, 1e-9)
	assert.Zero(t, result.Stats.MinDurationMinutes)
}

func TestDetectSessionsNonPositiveThreshold(t *testing.T) {
	result := DetectSessions(commitsAt(0, 0, 1, 2), 0)
	assert.Len(t, result.Sessions, 3, "zero threshold splits on every positive gap")
}

func TestDetectSessionsPartitionProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for range 50 {
		n := 1 + rng.IntN(60)
		minutes := make([]int, n)
		for i := range minutes {
			minutes[i] = rng.IntN(5000)
		}
		gap := float64(1 + rng.IntN(240))

		result := DetectSessions(commitsAt(minutes...), gap)

		total := 0
		for i, s := range result.Sessions {
			total += s.CommitCount
			assert.Equal(t, i+1, s.ID)
			assert.Len(t, s.Commits, s.CommitCount)
			for j := 1; j < len(s.Commits); j++ {
				d := s.Commits[j].Timestamp.Sub(s.Commits[j-1].Timestamp).Minutes()
				assert.LessOrEqual(t, d, gap, "no gap inside a session exceeds the threshold")
			}
			if i > 0 {
				prev := result.Sessions[i-1]
				assert.Greater(t, s.Start.Sub(prev.End).Minutes(), gap, "every boundary exceeds the threshold")
				assert.False(t, s.Start.Before(prev.Start), "sessions are in start order")
			}
		}
		assert.Equal(t, n, total)
		assert.Equal(t, n, result.Stats.TotalCommits)
	}
}
