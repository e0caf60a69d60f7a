package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// modularityFixedWidth covers Rank, Score, Rating, Pattern, Lines and Flags with formatting.
const modularityFixedWidth = 80

// writeModularityTable generates and writes the human-readable table.
func writeModularityTable(w io.Writer, result *schema.ModularityResult, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Path", "Score", "Rating", "Pattern", "Lines", "Flags"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := getMaxTablePathWidth(cfg, modularityFixedWidth)
	data := make([][]string, 0, len(result.Files))
	for i, f := range result.Files {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(f.Path, pathWidth),
			strconv.Itoa(f.Score),
			ratingLabel(f.Rating, cfg),
			contract.FormatPattern(f.Pattern),
			strconv.Itoa(f.Lines),
			contract.FormatFlags(f.Flags),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if cfg.ShowExempt && len(result.Exempted) > 0 {
		if err := writeExemptedTable(w, result.Exempted, pathWidth); err != nil {
			return err
		}
	}

	return writeModularityFooter(w, result, cfg, duration)
}

// writeExemptedTable lists files that were routed away from scoring.
func writeExemptedTable(w io.Writer, exempted []schema.ExemptedFile, pathWidth int) error {
	if _, err := fmt.Fprintf(w, "\nExempted files (%d):\n", len(exempted)); err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Path", "Lines", "Reason"})
	data := make([][]string, 0, len(exempted))
	for _, e := range exempted {
		data = append(data, []string{contract.TruncatePath(e.Path, pathWidth), strconv.Itoa(e.Lines), e.Reason})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeModularityFooter(w io.Writer, result *schema.ModularityResult, cfg *contract.Config, duration time.Duration) error {
	s := result.Summary
	dist := make([]string, 0, len(schema.AllRatings))
	for _, r := range schema.AllRatings {
		dist = append(dist, fmt.Sprintf("%s %d", r, s.Distribution[r]))
	}

	lines := []string{
		fmt.Sprintf("Showing %d scored files (total files: %d, total lines: %d, exempted: %d)",
			len(result.Files), s.TotalFiles, s.TotalLines, len(result.Exempted)),
		fmt.Sprintf("Average score: %.1f | %s", s.AverageScore, strings.Join(dist, ", ")),
	}
	if len(s.LargestFiles) > 0 {
		largest := make([]string, len(s.LargestFiles))
		for i, f := range s.LargestFiles {
			largest[i] = fmt.Sprintf("%s (%d)", f.Path, f.Lines)
		}
		lines = append(lines, "Largest: "+strings.Join(largest, ", "))
	}
	lines = append(lines, fmt.Sprintf("Analysis completed in %v with %d workers.", duration, cfg.Workers))

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// modularityCSVHeader is shared by the modularity and report CSV writers.
var modularityCSVHeader = []string{
	"rank", "path", "score", "rating", "pattern", "lines", "flags",
	"imports", "exports", "section_markers", "methods", "fingerprint",
}

// writeModularityCSV writes one row per scored file.
func writeModularityCSV(w io.Writer, result *schema.ModularityResult, _ *contract.Config) error {
	return writeCSVWithHeader(w, modularityCSVHeader, func(cw *csv.Writer) error {
		return writeModularityRows(cw, result)
	})
}

func writeModularityRows(cw *csv.Writer, result *schema.ModularityResult) error {
	for i, f := range result.Files {
		pattern := f.Pattern
		if pattern == "" {
			pattern = schema.NoPattern
		}
		flags := make([]string, len(f.Flags))
		for j, flag := range f.Flags {
			flags[j] = string(flag)
		}
		rec := []string{
			strconv.Itoa(i + 1),
			f.Path,
			strconv.Itoa(f.Score),
			string(f.Rating),
			string(pattern),
			strconv.Itoa(f.Lines),
			strings.Join(flags, "|"),
			strconv.Itoa(f.Signals.ImportCount),
			strconv.Itoa(f.Signals.ExportCount),
			strconv.Itoa(f.Signals.SectionMarkerCount),
			strconv.Itoa(f.Signals.MethodCount),
			f.Fingerprint,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}

// writeModularityJSON writes the full result with a rank on every file.
func writeModularityJSON(w io.Writer, result *schema.ModularityResult) error {
	type rankedFile struct {
		Rank int `json:"rank"`
		schema.FileModularityResult
	}
	files := make([]rankedFile, len(result.Files))
	for i, f := range result.Files {
		files[i] = rankedFile{Rank: i + 1, FileModularityResult: f}
	}

	return writeJSON(w, struct {
		Files    []rankedFile             `json:"files"`
		Summary  schema.ModularitySummary `json:"summary"`
		Exempted []schema.ExemptedFile    `json:"exempted"`
	}{files, result.Summary, result.Exempted})
}
