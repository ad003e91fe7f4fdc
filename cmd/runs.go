/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/doctran/internal/store"
)

var runsDBPath string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage the translation run history",
	Long:  `List, inspect, and clear the SQLite run history.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded translation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(runsDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No recorded runs.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWHEN\tINPUT\tLANGS\tSERVICE\tCHUNKS\tOK\tFAILED\tDURATION")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s→%s\t%s\t%d\t%d\t%d\t%s\n",
				r.ID, r.Timestamp.Format("2006-01-02 15:04"), r.InputFile,
				r.SourceLang, r.TargetLang, r.Service,
				r.TotalChunks, r.Successes, r.Failures,
				(time.Duration(r.DurationMS) * time.Millisecond).Round(time.Millisecond))
		}
		return w.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show per-chunk outcomes of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(runsDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		chunks, err := db.GetRunChunks(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get run chunks: %w", err)
		}

		if len(chunks) == 0 {
			fmt.Printf("No chunks recorded for run %s.\n", args[0])
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CHUNK\tTOKENS\tATTEMPTS\tSTATE\tERROR")
		for _, c := range chunks {
			fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\n",
				c.ChunkIndex+1, c.Tokens, c.Attempts, c.State, c.Error)
		}
		return w.Flush()
	},
}

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show run history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(runsDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		stats, err := db.Stats(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		fmt.Printf("Total runs:     %d\n", stats.TotalRuns)
		fmt.Printf("Total chunks:   %d\n", stats.TotalChunks)
		fmt.Printf("Retried chunks: %d\n", stats.TotalRetried)
		fmt.Printf("Failed chunks:  %d\n", stats.TotalFailed)
		return nil
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a recorded run by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(runsDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.DeleteRun(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete run: %w", err)
		}
		fmt.Printf("Deleted run: %s\n", args[0])
		return nil
	},
}

var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(runsDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		n, err := db.ClearRuns(context.Background())
		if err != nil {
			return fmt.Errorf("failed to clear runs: %w", err)
		}
		fmt.Printf("Cleared %d runs from history.\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.PersistentFlags().StringVar(&runsDBPath, "db", "./data/doctran.db", "Database path")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsStatsCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	runsCmd.AddCommand(runsClearCmd)
}
