package agg

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/huangsam/cadence/core/algo"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"golang.org/x/sync/errgroup"
)

// perfectAverage is the summary mean reported when no file qualifies.
const perfectAverage = 10.0

// fileOutcome is what one scoring task produces. Exactly one of scored and exempt is set.
type fileOutcome struct {
	scored *schema.FileModularityResult
	exempt *schema.ExemptedFile
	lines  int
}

// AnalyzeModularity scores every file the scanner lists under root.
// Reads and scoring fan out across opts.Workers goroutines. The first read
// error cancels the remaining work and is returned with no partial result.
func AnalyzeModularity(ctx context.Context, scanner contract.FileScanner, root string, opts schema.ModularityOptions) (*schema.ModularityResult, error) {
	paths, err := scanner.ListFiles(ctx, root)
	if err != nil {
		return nil, err
	}

	outcomes := make([]fileOutcome, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := scanner.ReadFile(root, path)
			if err != nil {
				return fmt.Errorf("modularity analysis aborted: %w", err)
			}
			scored, exempt := algo.ScoreFile(rec)
			outcomes[i] = fileOutcome{scored: scored, exempt: exempt, lines: rec.Lines}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totalLines := 0
	files := make([]schema.FileModularityResult, 0, len(outcomes))
	exempted := make([]schema.ExemptedFile, 0)
	for _, o := range outcomes {
		totalLines += o.lines
		switch {
		case o.exempt != nil:
			exempted = append(exempted, *o.exempt)
		case o.scored != nil && included(*o.scored, opts):
			files = append(files, *o.scored)
		}
	}

	algo.RankFiles(files)
	algo.RankExempted(exempted)

	return &schema.ModularityResult{
		Files:    files,
		Summary:  summarize(files, len(paths), totalLines),
		Exempted: exempted,
	}, nil
}

// included applies the line floor and the pattern allow-list.
func included(f schema.FileModularityResult, opts schema.ModularityOptions) bool {
	if !opts.IncludeAll && f.Lines < opts.MinLines {
		return false
	}
	if len(opts.Patterns) == 0 {
		return true
	}
	pattern := f.Pattern
	if pattern == "" {
		pattern = schema.NoPattern
	}
	return slices.Contains(opts.Patterns, pattern)
}

// summarize derives the summary from the included files. The totals come from the whole scan.
func summarize(files []schema.FileModularityResult, totalFiles, totalLines int) schema.ModularitySummary {
	distribution := make(map[schema.Rating]int, len(schema.AllRatings))
	for _, r := range schema.AllRatings {
		distribution[r] = 0
	}

	average := perfectAverage
	if len(files) > 0 {
		sum := 0
		for _, f := range files {
			sum += f.Score
			distribution[f.Rating]++
		}
		average = math.Round(float64(sum)/float64(len(files))*10) / 10
	}

	return schema.ModularitySummary{
		TotalFiles:   totalFiles,
		TotalLines:   totalLines,
		AverageScore: average,
		Distribution: distribution,
		LargestFiles: algo.LargestFiles(files),
	}
}
