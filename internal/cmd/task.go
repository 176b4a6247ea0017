package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gsms/gsms/internal/api"
	"github.com/gsms/gsms/internal/ux"
)

func (c *CLI) newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Browse tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(c.newTaskListCmd(), c.newTaskShowCmd(), c.newTaskSubtasksCmd())
	return cmd
}

func taskRows(tasks []api.TaskInfo) [][]string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10), t.Title, orDash(t.Status.String()), orDash(t.Priority.String()),
			orDash(t.AssigneeName), orDash(t.ProjectName), orDash(t.PlanEndDate),
		})
	}
	return rows
}

var taskHeaders = []string{"ID", "TITLE", "STATUS", "PRIORITY", "ASSIGNEE", "PROJECT", "DUE"}

func (c *CLI) newTaskListCmd() *cobra.Command {
	var q api.TaskQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd, "/tasks")
			if err != nil {
				return err
			}
			page, err := a.Client.SearchTasks(cmd.Context(), q)
			if err != nil {
				return err
			}
			return c.output(cmd, page, ux.Table{
				Headers: taskHeaders,
				Rows:    taskRows(page.List),
				Empty:   "No tasks found.",
				Footer:  footerOf(page),
			})
		},
	}
	cmd.Flags().Int64Var(&q.ProjectID, "project", 0, "filter by project id")
	cmd.Flags().Int64Var(&q.AssigneeID, "assignee", 0, "filter by assignee user id")
	cmd.Flags().Int64Var(&q.IterationID, "iteration", 0, "filter by iteration id")
	cmd.Flags().StringVar(&q.Status, "status", "", "filter by status")
	addPageFlags(cmd, &q.PageQuery)
	return cmd
}

type taskDetail struct{ *api.TaskInfo }

func (d taskDetail) RenderText(s *ux.Styles) string {
	t := d.TaskInfo
	pairs := [][2]string{
		{"ID", strconv.FormatInt(t.ID, 10)},
		{"Status", orDash(t.Status.String())},
		{"Priority", orDash(t.Priority.String())},
		{"Type", orDash(t.Type.String())},
		{"Project", orDash(t.ProjectName) + " (" + itoa(t.ProjectID) + ")"},
		{"Iteration", orDash(t.IterationName)},
		{"Assignee", orDash(t.AssigneeName)},
		{"Planned", orDash(t.PlanStartDate) + " .. " + orDash(t.PlanEndDate)},
		{"Actual", orDash(t.ActualStartDate) + " .. " + orDash(t.ActualEndDate)},
		{"Description", orDash(t.Description)},
	}
	if t.ParentID != 0 {
		pairs = append(pairs, [2]string{"Parent", itoa(t.ParentID)})
	}
	return ux.KeyValues{Title: t.Title, Pairs: pairs}.RenderText(s)
}

func (c *CLI) newTaskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := c.open(cmd, "/tasks/"+args[0])
			if err != nil {
				return err
			}
			t, err := a.Client.GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.output(cmd, t, taskDetail{t})
		},
	}
}

func (c *CLI) newTaskSubtasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subtasks ID",
		Short: "List the subtasks of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := c.open(cmd, "/tasks/"+args[0])
			if err != nil {
				return err
			}
			tasks, err := a.Client.Subtasks(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.output(cmd, tasks, ux.Table{Headers: taskHeaders, Rows: taskRows(tasks), Empty: "No subtasks."})
		},
	}
}
