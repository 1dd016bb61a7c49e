package main

import (
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"novaremote/services/settingsync"
)

func renderTable(headers []string, rows [][]string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
			WidthMax:    60,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func fieldRows(fields []settingsync.Field, reveal bool) [][]string {
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		value := f.Value
		if !reveal && isSecret(f.Path) && value != "" {
			value = "********"
		}
		rows = append(rows, []string{f.Path, f.Label, value})
	}
	return rows
}

func isSecret(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, "password") || strings.HasSuffix(lower, "apikey")
}

func errorRows(errs settingsync.ValidationErrors) [][]string {
	paths := make([]string, 0, len(errs))
	for path := range errs {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	rows := make([][]string, 0, len(paths))
	for _, path := range paths {
		rows = append(rows, []string{path, errs[path]})
	}
	return rows
}
