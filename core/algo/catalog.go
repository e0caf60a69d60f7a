package algo

import "github.com/huangsam/cadence/schema"

// PatternCatalog lists every pattern in classifier precedence order with its
// size thresholds, whether it earns the recognized-pattern credit, and the
// exemption reason for patterns that are never scored.
func PatternCatalog() []schema.PatternInfo {
	out := make([]schema.PatternInfo, 0, len(schema.AllPatterns))
	for _, p := range schema.AllPatterns {
		info := schema.PatternInfo{Pattern: p}
		if reason, exempt := Exemption(p); exempt {
			info.ExemptReason = reason
		} else if t, ok := ThresholdsFor(p); ok {
			info.YellowLines, info.RedLines = t.Yellow, t.Red
			_, info.Credit = recognizedPatterns[p]
		}
		out = append(out, info)
	}
	return out
}
