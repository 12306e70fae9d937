package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chronology/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample projects into an empty store",
	Long: `Inserts three sample projects with nine metric records each. A store
that already holds projects is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyServeFlags(cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		inserted, err := seed.Apply(cmd.Context(), st, logger)
		if err != nil {
			return err
		}
		if inserted {
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d projects\n", len(seed.Projects()))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "store already has projects, nothing to do")
		}
		return nil
	},
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&serveFlags.storage, "storage", "", "storage backend: sqlite or memory")
	f.StringVar(&serveFlags.db, "db", "", "SQLite database path")
	rootCmd.AddCommand(seedCmd)
}
