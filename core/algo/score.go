package algo

import (
	"regexp"
	"strings"

	"github.com/huangsam/cadence/schema"
)

// Thresholds are the line counts above which a file is considered large
// (Yellow) or severely large (Red) for its pattern.
type Thresholds struct {
	Yellow int
	Red    int
}

// sizeThresholds has no entry for test or generated files. Those are exempt
// and never reach the scorer.
var sizeThresholds = map[schema.Pattern]Thresholds{
	schema.ControllerPattern:      {Yellow: 800, Red: 1200},
	schema.DataStorePattern:       {Yellow: 1500, Red: 2500},
	schema.RouteTablePattern:      {Yellow: 1000, Red: 1500},
	schema.TypeDefinitionsPattern: {Yellow: 800, Red: 1200},
	schema.StateMachinePattern:    {Yellow: 600, Red: 900},
	schema.UIComponentPattern:     {Yellow: 250, Red: 400},
	schema.MiddlewarePattern:      {Yellow: 400, Red: 600},
	schema.UtilityPattern:         {Yellow: 150, Red: 250},
	schema.NoPattern:              {Yellow: 300, Red: 500},
}

// ThresholdsFor returns the size thresholds of a pattern. An empty pattern is
// treated as unclassified. Exempt patterns return false.
func ThresholdsFor(p schema.Pattern) (Thresholds, bool) {
	if p == "" {
		p = schema.NoPattern
	}
	t, ok := sizeThresholds[p]
	return t, ok
}

// Scoring constants.
const (
	maxScore              = 10
	structureMinLines     = 300 // internal structure only matters above this size
	couplingSevereImports = 25
	couplingImports       = 15
	exportBloatCount      = 20
	grabBagExportCount    = 10
)

var roleTypeRegex = regexp.MustCompile(`\b(?:class|interface|type|struct)\s+(\w*(?:Manager|Handler|Service|Controller|Store))\b`)

// genericUtilityStems are file names that say nothing about what the file does.
var genericUtilityStems = map[string]struct{}{
	"utils": {}, "util": {}, "helpers": {}, "helper": {},
	"common": {}, "misc": {}, "shared": {},
}

// recognizedPatterns are structurally expected to run larger and earn a credit.
var recognizedPatterns = map[schema.Pattern]struct{}{
	schema.ControllerPattern:   {},
	schema.DataStorePattern:    {},
	schema.RouteTablePattern:   {},
	schema.StateMachinePattern: {},
}

// Score computes the 0-10 modularity score of a file and the flags raised along the way.
// Every rule reads the original signals, never the running score. The result is clamped.
func Score(lines int, pattern schema.Pattern, signals schema.StructuralSignals, content, filePath string) (int, []schema.Flag) {
	score := maxScore
	flags := []schema.Flag{}
	shape := newFileShape(filePath, content)

	// Size
	if t, ok := ThresholdsFor(pattern); ok {
		if lines > t.Red {
			score -= 3
		} else if lines > t.Yellow {
			score--
		}
	}

	// Single responsibility
	if countRoleTypes(content) > 1 || isGenericUtility(shape) {
		score -= 2
		flags = append(flags, schema.NoSingleResponsibilityFlag)
	}

	// Internal structure
	if lines > structureMinLines {
		if signals.HasSectionMarkers || signals.HasMultipleTypes {
			score++
		} else {
			score -= 2
			flags = append(flags, schema.NoInternalStructureFlag)
		}
	}

	// Coupling: the severe branch carries no flag.
	if signals.ImportCount > couplingSevereImports {
		score -= 2
	} else if signals.ImportCount > couplingImports {
		score--
		flags = append(flags, schema.HighCouplingFlag)
	}

	// Export bloat
	if signals.ExportCount > exportBloatCount && pattern != schema.TypeDefinitionsPattern {
		score--
		flags = append(flags, schema.LowCohesionFlag)
	}

	// Recognized pattern
	if _, ok := recognizedPatterns[pattern]; ok {
		score++
	}

	// Utility grab-bag
	if isUtilityPath(shape) && signals.ExportCount > grabBagExportCount {
		score -= 2
		flags = append(flags, schema.UtilityGrabBagFlag)
	}

	return min(max(score, 0), maxScore), flags
}

// RatingFor maps a score to its rating band.
func RatingFor(score int) schema.Rating {
	switch {
	case score >= 9:
		return schema.EliteRating
	case score >= 7:
		return schema.GoodRating
	case score >= 5:
		return schema.AcceptableRating
	case score >= 3:
		return schema.NeedsWorkRating
	default:
		return schema.PoorRating
	}
}

// countRoleTypes counts distinct type names ending in a role suffix.
func countRoleTypes(content string) int {
	seen := make(map[string]struct{})
	for _, m := range roleTypeRegex.FindAllStringSubmatch(content, -1) {
		seen[m[1]] = struct{}{}
	}
	return len(seen)
}

func isGenericUtility(f fileShape) bool {
	_, ok := genericUtilityStems[f.stem]
	return ok
}

var utilityWords = []string{"utils", "util", "helpers", "helper"}

// isUtilityPath matches a stem or directory that ends in a utility word,
// such as "utils.ts", "string_helpers.py" or "pkg/stringutil/".
func isUtilityPath(f fileShape) bool {
	if f.stemEndsWith(utilityWords...) {
		return true
	}
	for _, d := range f.dirs {
		compact := separatorStripper.Replace(d)
		for _, w := range utilityWords {
			if strings.HasSuffix(compact, w) {
				return true
			}
		}
	}
	return false
}

// ScoreFile classifies a file and either scores it or reports why it is exempt.
// Exactly one of the return values is non-nil.
func ScoreFile(rec schema.FileRecord) (*schema.FileModularityResult, *schema.ExemptedFile) {
	pattern := Classify(rec.Path, rec.Content)
	if reason, exempt := Exemption(pattern); exempt {
		return nil, &schema.ExemptedFile{Path: rec.Path, Lines: rec.Lines, Reason: reason}
	}

	signals := ExtractSignals(rec.Content)
	score, flags := Score(rec.Lines, pattern, signals, rec.Content, rec.Path)

	res := &schema.FileModularityResult{
		Path:        rec.Path,
		Lines:       rec.Lines,
		Score:       score,
		Rating:      RatingFor(score),
		Flags:       flags,
		Signals:     signals,
		Fingerprint: rec.Fingerprint,
	}
	if pattern != schema.NoPattern {
		res.Pattern = pattern
	}
	return res, nil
}
