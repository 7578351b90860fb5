package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/taskclient/internal/model"
	"github.com/nhle/taskclient/internal/theme"
)

func tasksCmd() *cobra.Command {
	var status, priority string

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(status, priority)
			if err != nil {
				return err
			}

			_, sess, err := loadSession()
			if err != nil {
				return err
			}
			user, err := sess.Restore(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get user info: %w", err)
			}
			if user == nil {
				return errNotLoggedIn
			}

			tasks, err := sess.Client().ListTasks(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to load tasks: %w", err)
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTasks(tasks))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "all", "Status filter (all, active, completed)")
	cmd.Flags().StringVar(&priority, "priority", "all", "Priority filter (all, low, medium, high)")

	return cmd
}

func parseFilter(status, priority string) (model.Filter, error) {
	f := model.Filter{Status: model.StatusFilter(status), Priority: model.Priority(priority)}

	switch f.Status {
	case model.StatusAll, model.StatusActive, model.StatusCompleted:
	default:
		return f, fmt.Errorf("unknown status %q", status)
	}
	if f.Priority != model.PriorityAll && !f.Priority.Valid() {
		return f, fmt.Errorf("unknown priority %q", priority)
	}
	return f, nil
}

func renderTasks(tasks []model.Task) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(theme.DimmedStyle).
		Headers("ID", "DONE", "PRIORITY", "DUE", "TITLE")

	for _, task := range tasks {
		done := " "
		if task.Completed {
			done = "x"
		}
		due := "-"
		if task.DueDate != nil {
			due = task.DueDate.Local().Format("Jan 2, 2006 15:04")
		}
		t.Row(strconv.Itoa(task.ID), done, string(task.Priority), due, task.Title)
	}
	return t.Render()
}
