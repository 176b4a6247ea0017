package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gsms/gsms/internal/api"
	"github.com/gsms/gsms/internal/ux"
)

func (c *CLI) newWorkHourCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workhour",
		Aliases: []string{"workhours", "wh"},
		Short:   "Browse work hour records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(c.newWorkHourListCmd(), c.newWorkHourShowCmd())
	return cmd
}

func hours(h float64) string {
	return strconv.FormatFloat(h, 'f', 1, 64)
}

func (c *CLI) newWorkHourListCmd() *cobra.Command {
	var q api.WorkHourQuery
	var mine bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Query work hour records",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd, "/workhours")
			if err != nil {
				return err
			}
			if mine {
				q.UserID = a.Session.UserID()
			}
			page, err := a.Client.QueryWorkHours(cmd.Context(), q)
			if err != nil {
				return err
			}

			var total float64
			t := ux.Table{
				Headers: []string{"ID", "DATE", "HOURS", "USER", "PROJECT", "TASK", "CONTENT"},
				Empty:   "No work hours found.",
			}
			for _, w := range page.List {
				total += w.Hours
				t.Rows = append(t.Rows, []string{
					strconv.FormatInt(w.ID, 10), w.WorkDate, hours(w.Hours),
					orDash(w.UserName), orDash(w.ProjectName), orDash(w.TaskName), w.Content,
				})
			}
			t.Footer = hours(total) + "h on this page, " + footerOf(page)
			return c.output(cmd, page, t)
		},
	}
	cmd.Flags().Int64Var(&q.UserID, "user", 0, "filter by user id")
	cmd.Flags().BoolVar(&mine, "mine", false, "only records of the logged-in user")
	cmd.Flags().Int64Var(&q.ProjectID, "project", 0, "filter by project id")
	cmd.Flags().Int64Var(&q.TaskID, "task", 0, "filter by task id")
	cmd.Flags().StringVar(&q.StartDate, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.EndDate, "to", "", "end date (YYYY-MM-DD)")
	addPageFlags(cmd, &q.PageQuery)
	return cmd
}

func (c *CLI) newWorkHourShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a work hour record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := c.open(cmd, "/workhours")
			if err != nil {
				return err
			}
			w, err := a.Client.GetWorkHour(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.output(cmd, w, ux.KeyValues{
				Title: "Work hours " + strconv.FormatInt(w.ID, 10),
				Pairs: [][2]string{
					{"Date", w.WorkDate},
					{"Hours", hours(w.Hours)},
					{"User", orDash(w.UserName)},
					{"Project", orDash(w.ProjectName)},
					{"Task", orDash(w.TaskName)},
					{"Status", orDash(w.Status.String())},
					{"Content", w.Content},
				},
			})
		},
	}
}
