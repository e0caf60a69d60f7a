package algo

import (
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/huangsam/cadence/schema"
)

// fileShape is the normalized view of a file that classifier rules inspect.
type fileShape struct {
	lower   string   // lower-cased, slash-separated path
	base    string   // lower-cased base name
	stem    string   // base name up to its first dot
	compact string   // stem without separators, so "state_machine" reads "statemachine"
	ext     string   // extension of the base name, including the dot
	dirs    []string // lower-cased directory segments
	content string
}

// separatorStripper joins words so "state_machine" and "state-machine" both read "statemachine".
var separatorStripper = strings.NewReplacer("_", "", "-", "", " ", "")

func newFileShape(p, content string) fileShape {
	lower := strings.ToLower(strings.ReplaceAll(p, "\\", "/"))
	segments := strings.Split(strings.Trim(lower, "/"), "/")
	base := segments[len(segments)-1]
	stem, _, _ := strings.Cut(base, ".")
	compact := separatorStripper.Replace(stem)
	return fileShape{
		lower:   lower,
		base:    base,
		stem:    stem,
		compact: compact,
		ext:     path.Ext(base),
		dirs:    segments[:len(segments)-1],
		content: content,
	}
}

func (f fileShape) inDir(names ...string) bool {
	for _, d := range f.dirs {
		if slices.Contains(names, d) {
			return true
		}
	}
	return false
}

func (f fileShape) stemEndsWith(suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(f.compact, s) {
			return true
		}
	}
	return false
}

var (
	testBaseRegexes = []*regexp.Regexp{
		regexp.MustCompile(`\.(test|spec)\.[a-z0-9]+$`),
		regexp.MustCompile(`_test\.[a-z0-9]+$`),
		regexp.MustCompile(`^test_.*\.py$`),
	}
	typesBaseRegex      = regexp.MustCompile(`\.types\.[a-z0-9]+$`)
	exportedTypeRegex   = regexp.MustCompile(`(?m)^export\s+(?:declare\s+)?(?:type|interface)\s+\w+`)
	goExportedTypeRegex = regexp.MustCompile(`(?m)^type\s+[A-Z]\w*`)
	reconcileRegex      = regexp.MustCompile(`(?i)\breconcile\b`)
	structRegex         = regexp.MustCompile(`\bstruct\b`)
	routerRegex         = regexp.MustCompile(`express\.Router\(|\bRouter\(|createRouter\(|NewRouter\(|NewServeMux\(`)
	mountRegex          = regexp.MustCompile(`app\.use\(|\.Mount\(|app\.listen\(|http\.ListenAndServe\(`)
	transitionRegex     = regexp.MustCompile(`(?i)\btransitions?\b`)
	stateRegex          = regexp.MustCompile(`(?i)\bstates?\b`)
	uiExportRegex       = regexp.MustCompile(`(?m)^export\s+(?:default\s+)?(?:function|const)\b`)
)

var generatedMarkers = []string{".generated.", ".gen.", "_generated.", ".pb.", "_pb2."}

var uiExtensions = []string{".tsx", ".jsx", ".vue", ".svelte"}

// classifierRule pairs a pattern with the predicate that recognizes it.
type classifierRule struct {
	pattern schema.Pattern
	match   func(f fileShape) bool
}

// classifierRules is evaluated top to bottom and the first match wins.
// Test and generated come first so exemption holds even when a file also
// looks like something else.
var classifierRules = []classifierRule{
	{schema.TestPattern, func(f fileShape) bool {
		for _, re := range testBaseRegexes {
			if re.MatchString(f.base) {
				return true
			}
		}
		return f.inDir("__tests__", "test", "tests", "spec")
	}},
	{schema.GeneratedPattern, func(f fileShape) bool {
		for _, m := range generatedMarkers {
			if strings.Contains(f.base, m) {
				return true
			}
		}
		return strings.HasSuffix(f.base, ".d.ts") ||
			strings.HasSuffix(f.base, ".min.js") ||
			f.inDir("generated", "__generated__")
	}},
	{schema.TypeDefinitionsPattern, func(f fileShape) bool {
		switch f.stem {
		case "types", "type", "typings":
			return true
		}
		if typesBaseRegex.MatchString(f.base) || f.inDir("types") {
			return true
		}
		re := exportedTypeRegex
		if f.ext == ".go" {
			re = goExportedTypeRegex
		}
		return len(re.FindAllStringIndex(f.content, 11)) > 10
	}},
	{schema.ControllerPattern, func(f fileShape) bool {
		if f.stemEndsWith("controller") {
			return true
		}
		return reconcileRegex.MatchString(f.content) && structRegex.MatchString(f.content)
	}},
	{schema.DataStorePattern, func(f fileShape) bool {
		return f.stemEndsWith("store", "repository", "repo", "dao")
	}},
	{schema.RouteTablePattern, func(f fileShape) bool {
		if f.stemEndsWith("routes", "router", "routing") {
			return true
		}
		return routerRegex.MatchString(f.content) && mountRegex.MatchString(f.content)
	}},
	{schema.StateMachinePattern, func(f fileShape) bool {
		if f.stemEndsWith("lifecycle", "statemachine", "fsm") {
			return true
		}
		return transitionRegex.MatchString(f.content) && stateRegex.MatchString(f.content)
	}},
	{schema.MiddlewarePattern, func(f fileShape) bool {
		return strings.Contains(f.lower, "middleware")
	}},
	{schema.UIComponentPattern, func(f fileShape) bool {
		return slices.Contains(uiExtensions, f.ext) && uiExportRegex.MatchString(f.content)
	}},
	{schema.UtilityPattern, func(f fileShape) bool {
		if f.stem == "lib" || f.stemEndsWith("utils", "util", "helpers", "helper") {
			return true
		}
		return f.inDir("utils", "util", "helpers", "lib")
	}},
}

// Classify assigns a file to at most one structural pattern. It returns
// schema.NoPattern when no rule matches.
func Classify(filePath, content string) schema.Pattern {
	f := newFileShape(filePath, content)
	for _, rule := range classifierRules {
		if rule.match(f) {
			return rule.pattern
		}
	}
	return schema.NoPattern
}

// Exemption reports whether files of the given pattern bypass scoring,
// along with the reason shown to users.
func Exemption(p schema.Pattern) (string, bool) {
	switch p {
	case schema.TestPattern:
		return "test file", true
	case schema.GeneratedPattern:
		return "generated file", true
	default:
		return "", false
	}
}
