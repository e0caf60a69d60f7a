package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/huangsam/cadence/schema"
	"github.com/olekukonko/tablewriter"
)

var patternsCSVHeader = []string{"pattern", "yellow_lines", "red_lines", "credit", "exempt_reason"}

func patternRow(info schema.PatternInfo, dash string) []string {
	if info.ExemptReason != "" {
		return []string{string(info.Pattern), dash, dash, "no", info.ExemptReason}
	}
	credit := "no"
	if info.Credit {
		credit = "yes"
	}
	return []string{
		string(info.Pattern),
		strconv.Itoa(info.YellowLines),
		strconv.Itoa(info.RedLines),
		credit,
		dash,
	}
}

func writePatternsTable(w io.Writer, catalog []schema.PatternInfo) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Pattern", "Yellow", "Red", "Credit", "Exempt"})

	data := make([][]string, 0, len(catalog))
	for _, info := range catalog {
		data = append(data, patternRow(info, "-"))
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := io.WriteString(w, "Files above Yellow lose 1 point, above Red 3 points. Patterns with credit gain 1 point.\n")
	return err
}

func writePatternsCSV(w io.Writer, catalog []schema.PatternInfo) error {
	return writeCSVWithHeader(w, patternsCSVHeader, func(cw *csv.Writer) error {
		for _, info := range catalog {
			if err := cw.Write(patternRow(info, "")); err != nil {
				return err
			}
		}
		return nil
	})
}
