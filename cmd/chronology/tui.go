package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"chronology/internal/client"
	"chronology/internal/ui"
)

var tuiFlags struct {
	apiURL    string
	exportDir string
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal dashboard",
	Long: `Browses projects, charts and metric tables of a running Chronology
server. Press SPC for commands and q to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tuiFlags.apiURL != "" {
			cfg.APIURL = tuiFlags.apiURL
		}
		dir := tuiFlags.exportDir
		if dir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			dir = wd
		}

		c := client.FromConfig(cfg, logger)
		p := tea.NewProgram(ui.NewAppModel(c, dir).AsTeaModel(), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		_, err := p.Run()
		return err
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiFlags.apiURL, "api-url", "", "API base URL (default http://localhost:8000/api/v1)")
	tuiCmd.Flags().StringVar(&tuiFlags.exportDir, "export-dir", "", "directory for exported files (default current directory)")
	rootCmd.AddCommand(tuiCmd)
}
