package algo

import (
	"regexp"
	"strings"

	"github.com/huangsam/cadence/schema"
)

var (
	sectionMarkerRegexes = []*regexp.Regexp{
		regexp.MustCompile(`^(?://|#|/\*|--|;)\s*[-=*#~_]{3,}`),
		regexp.MustCompile(`^//\s*MARK:`),
		regexp.MustCompile(`^(?://\s*#?|#)\s*(?:end)?region\b`),
	}
	exportRegexes = []*regexp.Regexp{
		regexp.MustCompile(`^export\s`),
		regexp.MustCompile(`^(?:func|type|var|const)\s+[A-Z]`),
	}
	importRegexes = []*regexp.Regexp{
		regexp.MustCompile(`^import\s`),
		regexp.MustCompile(`^from\s+\S+\s+import\s`),
		regexp.MustCompile(`^(?:const|let|var)\s+[^=]+=\s*require\(`),
		regexp.MustCompile(`^#include\b`),
		regexp.MustCompile(`^use\s`),
	}
	goImportBlockRegex = regexp.MustCompile(`^import\s*\($`)
	typeDefRegexes     = []*regexp.Regexp{
		regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?(?:class|interface|enum)\s+\w+`),
		regexp.MustCompile(`^\s*type\s+\w+\s+(?:struct|interface)\b`),
	}
	goMethodRegex     = regexp.MustCompile(`^func\s*\([^)]*\)\s*\w+\s*[\[(]`)
	pyMethodRegex     = regexp.MustCompile(`^\s+(?:async\s+)?def\s+\w+\s*\(`)
	memberMethodRegex = regexp.MustCompile(`^\s+(?:(?:public|private|protected|static|async|override|readonly|abstract|final|synchronized|get|set)\s+)*(?:([\w<>\[\],.]+)\s+)?(\w+)\s*\([^;]*\)\s*(?::\s*[^{]+)?\{\s*$`)
)

// controlKeywords look like member declarations to memberMethodRegex but are not.
var controlKeywords = map[string]struct{}{
	"if": {}, "for": {}, "while": {}, "switch": {}, "catch": {}, "with": {},
	"function": {}, "return": {}, "else": {}, "do": {}, "try": {}, "new": {},
	"await": {}, "throw": {}, "typeof": {}, "select": {}, "go": {}, "defer": {},
}

// ExtractSignals derives structural signals from file text with line-based heuristics.
func ExtractSignals(content string) schema.StructuralSignals {
	var (
		signals       schema.StructuralSignals
		typeCount     int
		inImportBlock bool
	)

	for raw := range strings.SplitSeq(content, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		trimmed := strings.TrimSpace(line)

		if inImportBlock {
			switch {
			case trimmed == ")":
				inImportBlock = false
			case trimmed != "" && !strings.HasPrefix(trimmed, "//"):
				signals.ImportCount++
			}
			continue
		}
		if goImportBlockRegex.MatchString(trimmed) {
			inImportBlock = true
			continue
		}

		if matchAny(sectionMarkerRegexes, trimmed) {
			signals.SectionMarkerCount++
		}
		if matchAny(exportRegexes, line) {
			signals.ExportCount++
		}
		if matchAny(importRegexes, line) {
			signals.ImportCount++
		}
		if matchAny(typeDefRegexes, line) {
			typeCount++
		}
		if isMethodLike(line) {
			signals.MethodCount++
		}
	}

	signals.HasSectionMarkers = signals.SectionMarkerCount > 0
	signals.HasMultipleTypes = typeCount > 1
	return signals
}

func matchAny(regexes []*regexp.Regexp, s string) bool {
	for _, re := range regexes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func isMethodLike(line string) bool {
	if goMethodRegex.MatchString(line) || pyMethodRegex.MatchString(line) {
		return true
	}
	m := memberMethodRegex.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	if _, ok := controlKeywords[m[1]]; ok {
		return false
	}
	_, ok := controlKeywords[m[2]]
	return !ok
}
