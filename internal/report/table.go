package report

import (
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/YuminosukeSato/outcomecv/internal/importance"
	"github.com/YuminosukeSato/outcomecv/pkg/log"
)

// RenderTable formats records as a plain text table.
func RenderTable(records []importance.Record) string {
	var sb strings.Builder
	tw := tablewriter.NewWriter(&sb)
	tw.SetHeader([]string{"Rank", "Feature", "Score", "Class"})
	tw.SetAutoFormatHeaders(false)
	tw.SetBorder(false)
	tw.SetColumnSeparator(" ")
	tw.SetCenterSeparator(" ")
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, r := range records {
		tw.Append([]string{
			strconv.Itoa(r.Rank),
			r.Feature,
			strconv.FormatFloat(r.Score, 'g', 6, 64),
			r.Class,
		})
	}
	tw.Render()
	return sb.String()
}

// LogTable logs title between dashed rules followed by the table, one line
// per record.
func LogTable(logger log.Logger, title string, records []importance.Record) {
	rows := strings.Split(strings.TrimRight(RenderTable(records), "\n"), "\n")
	width := len(title)
	if len(rows) > 0 && len(rows[0]) > width {
		width = len(rows[0])
	}
	rule := strings.Repeat("-", width)

	logger.Info(rule)
	logger.Info(title)
	logger.Info(rule)
	for _, row := range rows {
		logger.Info(row)
	}
	logger.Info("")
}
