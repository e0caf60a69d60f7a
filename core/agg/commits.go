// Package agg turns repository input into analyzer results: file scoring
// across a tree, commit-log parsing and cached session detection.
package agg

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

// FetchCommits reads the commit log for the window and returns commits in
// ascending timestamp order. Zero times leave that side of the window open.
func FetchCommits(ctx context.Context, client contract.GitClient, repoPath string, start, end time.Time) ([]schema.Commit, error) {
	out, err := client.GetCommitLog(ctx, repoPath, start, end)
	if err != nil {
		return nil, err
	}
	commits := ParseCommitLog(out)

	// git log is newest first
	slices.Reverse(commits)
	slices.SortStableFunc(commits, func(a, b schema.Commit) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return commits, nil
}

// ParseCommitLog converts `git log --numstat` output into commits, in log order.
// A header that cannot be parsed is dropped along with its numstat lines.
func ParseCommitLog(out []byte) []schema.Commit {
	var commits []schema.Commit
	var current *schema.Commit

	flush := func() {
		if current != nil {
			commits = append(commits, *current)
			current = nil
		}
	}

	for l := range strings.SplitSeq(string(out), "\n") {
		l = strings.TrimRight(l, "\r")

		if strings.HasPrefix(l, contract.CommitHeaderPrefix) {
			flush()
			if c, ok := parseCommitHeader(l); ok {
				current = &c
			}
			continue
		}
		if current == nil || strings.TrimSpace(l) == "" {
			continue
		}

		add, del, ok := parseNumstatLine(l)
		if !ok {
			continue
		}
		current.Additions += add
		current.Deletions += del
		current.FilesChanged++
	}
	flush()

	if commits == nil {
		return []schema.Commit{}
	}
	return commits
}

// parseCommitHeader parses "--hash|author|date|subject". The subject may contain '|'.
func parseCommitHeader(line string) (schema.Commit, bool) {
	parts := strings.SplitN(strings.TrimPrefix(line, contract.CommitHeaderPrefix), "|", 4)
	if len(parts) < 3 || parts[0] == "" {
		return schema.Commit{}, false
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[2]))
	if err != nil {
		return schema.Commit{}, false
	}
	c := schema.Commit{
		Hash:      parts[0],
		Author:    parts[1],
		Timestamp: ts,
	}
	if len(parts) == 4 {
		c.Message = parts[3]
	}
	return c, true
}

// parseNumstatLine parses "add\tdel\tpath". Binary files report "-" for both counts.
func parseNumstatLine(line string) (int, int, bool) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 3 || parts[2] == "" {
		return 0, 0, false
	}
	add, ok := parseChurnValue(parts[0])
	if !ok {
		return 0, 0, false
	}
	del, ok := parseChurnValue(parts[1])
	if !ok {
		return 0, 0, false
	}
	return add, del, true
}

// parseChurnValue converts a churn string to int, handling "-" as 0.
func parseChurnValue(s string) (int, bool) {
	if s == "-" {
		return 0, true
	}
	val, err := strconv.Atoi(s)
	if err != nil || val < 0 {
		return 0, false
	}
	return val, true
}
