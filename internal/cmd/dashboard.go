package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gsms/gsms/internal/api"
	"github.com/gsms/gsms/internal/ux"
)

type dashboardView struct{ *api.Dashboard }

func (d dashboardView) RenderText(s *ux.Styles) string {
	summary := ux.KeyValues{
		Title: "Dashboard",
		Pairs: [][2]string{
			{"Projects", strconv.Itoa(d.ProjectCount)},
			{"Pending tasks", strconv.Itoa(d.PendingTaskCount)},
			{"Hours today", hours(d.TodayHours)},
			{"Hours this week", hours(d.WeekHours)},
			{"Hours this month", hours(d.MonthHours)},
			{"Hours total", hours(d.TotalHours)},
		},
	}

	projects := ux.Table{Headers: []string{"ID", "CODE", "NAME", "STATUS"}, Empty: "No projects."}
	for _, p := range d.Projects {
		status := p.Status.String()
		if n, ok := p.Status.Int(); ok {
			status = api.ProjectStatus(n).String()
		}
		projects.Rows = append(projects.Rows, []string{strconv.FormatInt(p.ID, 10), p.Code, p.Name, status})
	}

	tasks := ux.Table{Headers: []string{"ID", "TITLE", "STATUS", "PRIORITY", "DUE"}, Empty: "No pending tasks."}
	for _, t := range d.PendingTasks {
		tasks.Rows = append(tasks.Rows, []string{
			strconv.FormatInt(t.ID, 10), t.Title, orDash(t.Status.String()), orDash(t.Priority.String()), orDash(t.PlanEndDate),
		})
	}

	return strings.Join([]string{
		summary.RenderText(s),
		s.Title.Render("Projects"),
		projects.RenderText(s),
		s.Title.Render("Pending tasks"),
		tasks.RenderText(s),
	}, "\n\n")
}

func (c *CLI) newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard summary of the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd, "/dashboard")
			if err != nil {
				return err
			}
			d, err := a.Client.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			return c.output(cmd, d, dashboardView{d})
		},
	}
}
