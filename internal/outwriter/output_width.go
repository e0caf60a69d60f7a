package outwriter

import (
	"os"

	"github.com/huangsam/cadence/internal/contract"
	"golang.org/x/term"
)

// Path column bounds for table output.
const (
	minPathWidth = 15
	maxPathWidth = 70
)

// terminalWidth returns the override width or the detected stdout width.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80 // conservative default for CI and pipes
	}
	return detected
}

// getMaxTablePathWidth returns the room left for the path column once the fixed
// columns of a table are accounted for.
func getMaxTablePathWidth(cfg *contract.Config, fixedColumns int) int {
	// borders, separators and padding
	available := terminalWidth(cfg) - fixedColumns - 20
	return min(max(available, minPathWidth), maxPathWidth)
}
