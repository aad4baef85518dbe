package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/logspectre/internal/cardml"
	"github.com/ppiankov/logspectre/internal/history"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command group
func NewHistoryCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded analysis runs",
		Long: `List, show, and prune analysis runs recorded with
'logspectre analyze --history <db>'.`,
	}

	cmd.PersistentFlags().StringVar(&path, "db", "logspectre-history.db", "History database path")

	cmd.AddCommand(newHistoryListCmd(&path))
	cmd.AddCommand(newHistoryShowCmd(&path))
	cmd.AddCommand(newHistoryPruneCmd(&path))

	return cmd
}

func newHistoryListCmd(path *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openExistingStore(*path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs recorded.")
				return nil
			}

			fmt.Printf("%-10s %-20s %10s %12s %12s %6s\n",
				"RUN", "CREATED", "WORKSPACES", "INGESTED GB", "SAVINGS/MO", "CARDS")
			for _, run := range runs {
				fmt.Printf("%-10s %-20s %10d %12.2f %12.2f %6d\n",
					shortID(run.ID),
					run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					run.Workspaces,
					run.TotalIngestedGB,
					run.ProjectedSavings,
					run.Cards,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")

	return cmd
}

func newHistoryShowCmd(path *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded run (id prefixes accepted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openExistingStore(*path)
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := store.Get(context.Background(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal report: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("Run %s generated %s over %d days\n\n",
				report.Metadata.RunID,
				report.Metadata.GeneratedAt.Local().Format("2006-01-02 15:04:05"),
				report.Metadata.LookbackDays)
			fmt.Print(renderTerminal(cardml.RenderMarkdown(renderTitle, report.Cards)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the stored report as JSON")

	return cmd
}

func newHistoryPruneCmd(path *string) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 1 {
				return fmt.Errorf("--keep must be at least 1")
			}

			store, err := openExistingStore(*path)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(context.Background(), keep)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Pruned %d runs, kept the newest %d\n", removed, keep)
			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 10, "Number of newest runs to keep")

	return cmd
}

// openExistingStore opens the history database without creating it, so a
// typoed path fails instead of minting an empty database.
func openExistingStore(path string) (*history.Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found: %s", path)
		}
		return nil, err
	}
	return history.Open(path)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
