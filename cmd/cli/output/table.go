package output

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderTable writes a formatted table to w. Count-style columns ("Total",
// "Count") are right-aligned; everything else stays left-aligned.
func RenderTable(w io.Writer, headers []string, rows [][]interface{}) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, 0, len(headers))
	var configs []table.ColumnConfig
	for i, h := range headers {
		headerRow = append(headerRow, h)
		if h == "Total" || h == "Count" {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	t.AppendHeader(headerRow)
	if len(configs) > 0 {
		t.SetColumnConfigs(configs)
	}

	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}

	t.Render()
}
