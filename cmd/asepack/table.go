package main

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"asepack/internal/catalog"
)

// Catalog tables share one look: rounded borders, left-aligned headers,
// and a right-aligned frame count in the third column.
func newCatalogTable(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw
}

// fileTable renders the list command's view of the catalog.
func fileTable(files []catalog.FileRow) string {
	tw := newCatalogTable(table.Row{"File", "Status", "Frames", "Batch", "Processed"})
	for _, file := range files {
		tw.AppendRow(table.Row{
			file.Path,
			file.Status,
			file.FrameCount,
			file.BatchID,
			file.ProcessedAt.Local().Format(time.DateTime),
		})
	}
	return tw.Render()
}

// packSummaryTable renders the per-file outcome of one pack run. The
// detail column carries the failure reason for dropped files.
func packSummaryTable(files []catalog.FileRow) string {
	tw := newCatalogTable(table.Row{"File", "Status", "Frames", "Detail"})
	for _, file := range files {
		detail := file.FailureReason
		if detail == "" {
			detail = "-"
		}
		tw.AppendRow(table.Row{file.Path, file.Status, file.FrameCount, detail})
	}
	return tw.Render()
}

// assetTable renders the show command's asset listing for one file. The
// whole-file default animation is cataloged under the empty name.
func assetTable(assets []catalog.AssetRow) string {
	tw := newCatalogTable(table.Row{"Kind", "Name", "Frames"})
	for _, a := range assets {
		name := a.Name
		if name == "" {
			name = "(default)"
		}
		tw.AppendRow(table.Row{a.Kind, name, a.Frames})
	}
	return tw.Render()
}
