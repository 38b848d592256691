package main

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"taskline/internal/taskapi"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderTaskTable renders the task list the way the server orders it, newest
// first.
func renderTaskTable(tasks []taskapi.Task) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Done", "Title", "Priority", "Due"})

	for _, task := range tasks {
		done := ""
		if task.Completed {
			done = "x"
		}
		tw.AppendRow(table.Row{
			strconv.FormatInt(task.ID, 10),
			done,
			task.Title,
			priorityLabel(task.Priority),
			formatDueDate(task.DueDate),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft},
		{Number: 4, Align: text.AlignLeft},
		{Number: 5, Align: text.AlignLeft},
	})

	return tw.Render()
}

// priorityLabel converts the server's shouty priority constants into
// human-friendly labels.
func priorityLabel(priority taskapi.Priority) string {
	value := strings.ToLower(string(priority))
	if value == "" {
		return ""
	}
	return cases.Title(language.Und).String(value)
}

// formatDueDate shortens the server's ISO timestamp for display: the date
// alone when the time is midnight, date and minutes otherwise.
func formatDueDate(dueDate string) string {
	dueDate = taskapi.TruncateDueDate(dueDate)
	if strings.HasSuffix(dueDate, "T00:00") {
		return strings.TrimSuffix(dueDate, "T00:00")
	}
	return strings.Replace(dueDate, "T", " ", 1)
}
