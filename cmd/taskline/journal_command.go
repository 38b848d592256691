package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"taskline/internal/board"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the local operation journal",
	}

	journalCmd.AddCommand(newJournalListCommand(ctx))
	journalCmd.AddCommand(newJournalPruneCommand(ctx))

	return journalCmd
}

func newJournalListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var stateFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recorded operations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := board.OpenStore(cfg.BoardDBPath())
			if err != nil {
				return err
			}
			defer store.Close()

			var states []board.OpState
			switch stateFilter {
			case "":
			case string(board.StatePending), string(board.StateConfirmed),
				string(board.StateFailed), string(board.StateRolledBack):
				states = append(states, board.OpState(stateFilter))
			default:
				return fmt.Errorf("invalid state %q (use pending, confirmed, failed, or rolled_back)", stateFilter)
			}

			ops, err := store.Operations(cmd.Context(), states...)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, ops)
			}
			if len(ops) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Journal is empty")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderJournalTable(ops))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	cmd.Flags().StringVar(&stateFilter, "state", "", "Filter by state: pending, confirmed, failed, rolled_back")
	return cmd
}

func newJournalPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove resolved journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := board.OpenStore(cfg.BoardDBPath())
			if err != nil {
				return err
			}
			defer store.Close()

			pruned, err := store.PruneResolved(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d journal entries\n", pruned)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "Only prune entries older than this")
	return cmd
}

func renderJournalTable(ops []board.Operation) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Kind", "Task", "State", "Detail", "When"})

	for _, op := range ops {
		taskRef := ""
		if op.TaskID != 0 {
			taskRef = fmt.Sprintf("%d", op.TaskID)
		}
		tw.AppendRow(table.Row{
			op.ID,
			string(op.Kind),
			taskRef,
			string(op.State),
			op.Detail,
			op.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}
