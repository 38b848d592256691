package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskline/internal/board"
	"taskline/internal/taskapi"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var cached bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withBoard(func(b *board.Board, store *board.Store) error {
				if cached {
					tasks, refreshed, err := store.Snapshot(cmd.Context())
					if err != nil {
						return err
					}
					if !refreshed.IsZero() {
						fmt.Fprintf(cmd.ErrOrStderr(), "cached tasks from %s\n", refreshed.Local().Format("2006-01-02 15:04"))
					}
					return printTasks(cmd, tasks, jsonOut)
				}
				if err := b.Load(cmd.Context()); err != nil {
					if errors.Is(err, board.ErrSessionExpired) {
						return err
					}
					// Offline fallback: show the last snapshot when the
					// server is unreachable.
					cached, refreshed, cacheErr := store.Snapshot(cmd.Context())
					if cacheErr != nil || len(cached) == 0 {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
					fmt.Fprintf(cmd.ErrOrStderr(), "showing cached tasks from %s\n", refreshed.Local().Format("2006-01-02 15:04"))
					return printTasks(cmd, cached, jsonOut)
				}
				return printTasks(cmd, b.Tasks(), jsonOut)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	cmd.Flags().BoolVar(&cached, "cached", false, "Show the last snapshot without contacting the server")
	return cmd
}

func printTasks(cmd *cobra.Command, tasks []taskapi.Task, jsonOut bool) error {
	if jsonOut {
		return writeJSON(cmd, tasks)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTaskTable(tasks))
	return nil
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var description string
	var priority string
	var dueDate string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			normalized, ok := taskapi.NormalizePriority(priority)
			if !ok {
				return fmt.Errorf("invalid priority %q (use high, medium, or low)", priority)
			}

			req := taskapi.CreateTaskRequest{
				Title:       strings.Join(args, " "),
				Description: strings.TrimSpace(description),
				Priority:    normalized,
				DueDate:     taskapi.TruncateDueDate(dueDate),
			}

			return ctx.withBoard(func(b *board.Board, _ *board.Store) error {
				created, err := b.Create(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created task %d: %s\n", created.ID, created.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "desc", "d", "", "Task description")
	cmd.Flags().StringVarP(&priority, "priority", "P", "medium", "Priority: high, medium, or low")
	cmd.Flags().StringVar(&dueDate, "due", "", "Due date, e.g. 2026-09-01T12:00")
	return cmd
}

func newDoneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			return ctx.withBoard(func(b *board.Board, _ *board.Store) error {
				if err := b.Load(cmd.Context()); err != nil {
					return err
				}
				updated, err := b.Toggle(cmd.Context(), id)
				if err != nil {
					return err
				}
				state := "reopened"
				if updated.Completed {
					state = "completed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %d %s: %s\n", updated.ID, state, updated.Title)
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			return ctx.withBoard(func(b *board.Board, _ *board.Store) error {
				if err := b.Load(cmd.Context()); err != nil {
					return err
				}

				ok, err := confirm(cmd, fmt.Sprintf("Delete task %d?", id), assumeYes)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}

				if err := b.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
