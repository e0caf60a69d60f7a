package algo

import (
	"cmp"
	"slices"

	"github.com/huangsam/cadence/schema"
)

// largestFilesLimit caps the largest-files list in the modularity summary.
const largestFilesLimit = 5

// RankFiles sorts files worst first: by score ascending, then by line count
// descending. Path breaks the remaining ties so the order does not depend on
// the order in which files were scored.
func RankFiles(files []schema.FileModularityResult) {
	slices.SortFunc(files, func(a, b schema.FileModularityResult) int {
		return cmp.Or(
			cmp.Compare(a.Score, b.Score),
			cmp.Compare(b.Lines, a.Lines),
			cmp.Compare(a.Path, b.Path),
		)
	})
}

// LargestFiles returns up to five files sorted by line count descending,
// independent of the order of the input.
func LargestFiles(files []schema.FileModularityResult) []schema.LargestFile {
	bySize := slices.Clone(files)
	slices.SortFunc(bySize, func(a, b schema.FileModularityResult) int {
		return cmp.Or(cmp.Compare(b.Lines, a.Lines), cmp.Compare(a.Path, b.Path))
	})
	if len(bySize) > largestFilesLimit {
		bySize = bySize[:largestFilesLimit]
	}
	out := make([]schema.LargestFile, len(bySize))
	for i, f := range bySize {
		out[i] = schema.LargestFile{Path: f.Path, Lines: f.Lines, Score: f.Score}
	}
	return out
}

// RankExempted sorts exempted files by path.
func RankExempted(files []schema.ExemptedFile) {
	slices.SortFunc(files, func(a, b schema.ExemptedFile) int {
		return cmp.Compare(a.Path, b.Path)
	})
}

// LimitFiles returns at most limit files. A non-positive limit returns all of them.
func LimitFiles(files []schema.FileModularityResult, limit int) []schema.FileModularityResult {
	if limit > 0 && len(files) > limit {
		return files[:limit]
	}
	return files
}
