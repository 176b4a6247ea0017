package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gsms/gsms/internal/api"
	"github.com/gsms/gsms/internal/ux"
)

func (c *CLI) newIterationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "iteration",
		Aliases: []string{"iterations"},
		Short:   "Browse iterations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(c.newIterationListCmd(), c.newIterationShowCmd())
	return cmd
}

func (c *CLI) newIterationListCmd() *cobra.Command {
	var q api.IterationQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List iterations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd, "/iterations")
			if err != nil {
				return err
			}
			page, err := a.Client.QueryIterations(cmd.Context(), q)
			if err != nil {
				return err
			}
			t := ux.Table{
				Headers: []string{"ID", "NAME", "PROJECT", "STATUS", "PLANNED"},
				Empty:   "No iterations found.",
				Footer:  footerOf(page),
			}
			for _, it := range page.List {
				t.Rows = append(t.Rows, []string{
					strconv.FormatInt(it.ID, 10), it.Name, itoa(it.ProjectID), orDash(it.Status.String()),
					orDash(it.PlanStartDate) + " .. " + orDash(it.PlanEndDate),
				})
			}
			return c.output(cmd, page, t)
		},
	}
	cmd.Flags().Int64Var(&q.ProjectID, "project", 0, "filter by project id")
	cmd.Flags().StringVar(&q.Status, "status", "", "filter by status")
	addPageFlags(cmd, &q.PageQuery)
	return cmd
}

func (c *CLI) newIterationShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show iteration details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := c.open(cmd, "/iterations")
			if err != nil {
				return err
			}
			it, err := a.Client.GetIteration(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.output(cmd, it, ux.KeyValues{
				Title: it.Name,
				Pairs: [][2]string{
					{"ID", strconv.FormatInt(it.ID, 10)},
					{"Project", itoa(it.ProjectID)},
					{"Status", orDash(it.Status.String())},
					{"Planned", orDash(it.PlanStartDate) + " .. " + orDash(it.PlanEndDate)},
					{"Actual", orDash(it.ActualStartDate) + " .. " + orDash(it.ActualEndDate)},
					{"Description", orDash(it.Description)},
					{"Created by", orDash(it.CreateUserName)},
				},
			})
		},
	}
}
