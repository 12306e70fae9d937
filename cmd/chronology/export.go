package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"chronology/internal/client"
	"chronology/internal/export"
	"chronology/internal/table"
)

var exportFlags struct {
	apiURL string
	format string
	out    string
	sort   string
}

var exportCmd = &cobra.Command{
	Use:   "export <project-id>",
	Short: "Download a project's metrics from a running server",
	Long: `Exports the metric records of a project as CSV, Excel, JSON or Parquet.
The file is named after the project and today's date unless --out is given.

Examples:
  chronology export 1
  chronology export 1 --format xlsx --sort accuracy:desc
  chronology export 2 --format json --out -`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFlags.apiURL, "api-url", "", "API base URL (default http://localhost:8000/api/v1)")
	f.StringVarP(&exportFlags.format, "format", "f", string(export.CSV), "csv, xlsx, json or parquet")
	f.StringVarP(&exportFlags.out, "out", "o", "", "output file, or - for stdout")
	f.StringVar(&exportFlags.sort, "sort", "", "sort rows by key[:asc|desc], e.g. timestamp:desc")
	rootCmd.AddCommand(exportCmd)
}

// parseSort parses "key" or "key:dir". An empty string means no sort.
func parseSort(s string) (*table.SortConfig, error) {
	if s == "" {
		return nil, nil
	}
	key, dir, _ := strings.Cut(s, ":")
	sc := &table.SortConfig{Key: key, Direction: table.Asc}
	switch table.Direction(strings.ToLower(dir)) {
	case "", table.Asc:
	case table.Desc:
		sc.Direction = table.Desc
	default:
		return nil, fmt.Errorf("invalid sort direction %q", dir)
	}
	if key == "" {
		return nil, fmt.Errorf("invalid sort %q", s)
	}
	return sc, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFlags.format)
	if err != nil {
		return err
	}
	sort, err := parseSort(exportFlags.sort)
	if err != nil {
		return err
	}
	if exportFlags.apiURL != "" {
		cfg.APIURL = exportFlags.apiURL
	}
	c := client.FromConfig(cfg, logger)

	if exportFlags.out == "-" {
		_, err := c.Export(cmd.Context(), cmd.OutOrStdout(), args[0], format, sort)
		return err
	}

	tmp, err := os.CreateTemp(".", ".chronology-export-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	name, err := c.Export(cmd.Context(), tmp, args[0], format, sort)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	path := exportFlags.out
	if path == "" {
		path = filepath.Base(name)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	return nil
}
