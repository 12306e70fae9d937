package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"chronology/internal/client"
	"chronology/internal/dataset"
	"chronology/internal/ui/textutil"
)

var datasetsFlags struct {
	apiURL string
	limit  int
}

var datasetsCmd = &cobra.Command{
	Use:   "datasets [dataset-id]",
	Short: "List the CSV datasets of a running server, or show one",
	Long: `Without arguments, lists every dataset with its size, sample count and
columns. With a dataset id, prints the first rows of that dataset.

Examples:
  chronology datasets
  chronology datasets 1a2b3c4d --limit 20`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDatasets,
}

func init() {
	f := datasetsCmd.Flags()
	f.StringVar(&datasetsFlags.apiURL, "api-url", "", "API base URL (default http://localhost:8000/api/v1)")
	f.IntVarP(&datasetsFlags.limit, "limit", "n", 0, "rows to show (default from the server)")
	rootCmd.AddCommand(datasetsCmd)
}

func runDatasets(cmd *cobra.Command, args []string) error {
	if datasetsFlags.apiURL != "" {
		cfg.APIURL = datasetsFlags.apiURL
	}
	c := client.FromConfig(cfg, logger)

	if len(args) == 0 {
		list, err := c.ListDatasets(cmd.Context())
		if err != nil {
			return err
		}
		writeDatasetList(cmd.OutOrStdout(), list)
		return nil
	}

	content, err := c.DatasetContent(cmd.Context(), args[0], datasetsFlags.limit)
	if err != nil {
		return err
	}
	writeDatasetContent(cmd.OutOrStdout(), content)
	return nil
}

func writeDatasetList(w io.Writer, list []dataset.Dataset) {
	if len(list) == 0 {
		fmt.Fprintln(w, "no datasets")
		return
	}
	headers := []string{"ID", "FILE", "SIZE", "SAMPLES", "COLUMNS"}
	rows := make([][]string, len(list))
	for i, d := range list {
		rows[i] = []string{d.ID, d.Filename, dataset.FormatFileSize(d.Size), strconv.Itoa(d.Samples), strconv.Itoa(len(d.Columns))}
	}
	writeColumns(w, headers, rows, map[int]bool{2: true, 3: true, 4: true})
}

func writeDatasetContent(w io.Writer, content *dataset.Content) {
	fmt.Fprintf(w, "%s (%s, showing %d of %d rows)\n\n",
		content.Dataset.Name, dataset.FormatFileSize(content.Dataset.Size), content.ReturnedRows, content.TotalRows)
	rows := make([][]string, len(content.Rows))
	for i, row := range content.Rows {
		cells := make([]string, len(content.Columns))
		for j, col := range content.Columns {
			cells[j] = row[col]
		}
		rows[i] = cells
	}
	writeColumns(w, content.Columns, rows, nil)
}

func writeColumns(w io.Writer, headers []string, rows [][]string, right map[int]bool) {
	widths := textutil.FitWidths(headers, rows, 32)
	cols := make([]textutil.Column, len(widths))
	for i, width := range widths {
		cols[i] = textutil.Column{Width: width}
		if right[i] {
			cols[i].Align = textutil.AlignRight
		}
	}
	fmt.Fprintln(w, textutil.Row(cols, headers, 2))
	for _, row := range rows {
		fmt.Fprintln(w, textutil.Row(cols, row, 2))
	}
}
