package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gsms/gsms/internal/api"
	"github.com/gsms/gsms/internal/ux"
)

func (c *CLI) newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage projects",
		Long: `List, show, create and delete projects.

Examples:
  gsms project list --status 2
  gsms project show 12
  gsms project create --name "Apollo" --code APO --manager 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		c.newProjectListCmd(),
		c.newProjectShowCmd(),
		c.newProjectCreateCmd(),
		c.newProjectDeleteCmd(),
		c.newProjectStatsCmd(),
	)
	return cmd
}

func projectTable(p *api.Page[api.Project]) ux.Table {
	t := ux.Table{
		Headers: []string{"ID", "CODE", "NAME", "STATUS", "MANAGER", "PLAN END"},
		Empty:   "No projects found.",
		Footer:  footerOf(p),
	}
	for _, pr := range p.List {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(pr.ID, 10), pr.Code, pr.Name, pr.Status.String(), itoa(pr.ManagerID), orDash(pr.PlanEndDate),
		})
	}
	return t
}

func (c *CLI) newProjectListCmd() *cobra.Command {
	var q api.ProjectQuery
	var status int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd, "/projects")
			if err != nil {
				return err
			}
			q.Status = api.ProjectStatus(status)
			page, err := a.Client.ListProjects(cmd.Context(), q)
			if err != nil {
				return err
			}
			return c.output(cmd, page, projectTable(page))
		},
	}
	cmd.Flags().StringVar(&q.Name, "name", "", "filter by name")
	cmd.Flags().IntVar(&status, "status", 0, "filter by status (1 not started, 2 in progress, 3 completed, 4 suspended)")
	addPageFlags(cmd, &q.PageQuery)
	return cmd
}

type projectDetail struct{ *api.Project }

func (d projectDetail) RenderText(s *ux.Styles) string {
	p := d.Project
	return ux.KeyValues{
		Title: p.Name,
		Pairs: [][2]string{
			{"ID", strconv.FormatInt(p.ID, 10)},
			{"Code", p.Code},
			{"Status", p.Status.String()},
			{"Description", orDash(p.Description)},
			{"Manager", orDash(itoa(p.ManagerID))},
			{"Planned", orDash(p.PlanStartDate) + " .. " + orDash(p.PlanEndDate)},
			{"Actual", orDash(p.ActualStartDate) + " .. " + orDash(p.ActualEndDate)},
			{"Created", orDash(p.CreateTime)},
			{"Updated", orDash(p.UpdateTime)},
		},
	}.RenderText(s)
}

func (c *CLI) newProjectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show project details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := c.open(cmd, "/projects/"+args[0])
			if err != nil {
				return err
			}
			p, err := a.Client.GetProject(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.output(cmd, p, projectDetail{p})
		},
	}
}

func (c *CLI) newProjectCreateCmd() *cobra.Command {
	var req api.ProjectCreateRequest
	var status int
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Name == "" || req.Code == "" {
				return fmt.Errorf("--name and --code are required")
			}
			a, err := c.open(cmd, "/projects")
			if err != nil {
				return err
			}
			req.Status = api.ProjectStatus(status)
			if err := a.Client.CreateProject(cmd.Context(), req); err != nil {
				return err
			}
			message(cmd, "Project %s (%s) created.", req.Name, req.Code)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "project name")
	cmd.Flags().StringVar(&req.Code, "code", "", "unique project code")
	cmd.Flags().StringVar(&req.Description, "description", "", "description")
	cmd.Flags().Int64Var(&req.ManagerID, "manager", 0, "manager user id")
	cmd.Flags().IntVar(&status, "status", 0, "initial status (default not started)")
	return cmd
}

func (c *CLI) newProjectDeleteCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := c.open(cmd, "/projects/"+args[0])
			if err != nil {
				return err
			}
			if !force {
				ok, err := c.confirm(fmt.Sprintf("Delete project %d?", id), false)
				if err != nil {
					return err
				}
				if !ok {
					message(cmd, "Cancelled.")
					return nil
				}
			}
			if err := a.Client.DeleteProject(cmd.Context(), id); err != nil {
				return err
			}
			message(cmd, "Project %d deleted.", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")
	return cmd
}

type projectStats struct {
	Hours      *api.ProjectWorkHourStats `json:"hours" yaml:"hours"`
	Completion *api.ProjectCompletion    `json:"completion" yaml:"completion"`
}

func (c *CLI) newProjectStatsCmd() *cobra.Command {
	var r api.DateRange
	cmd := &cobra.Command{
		Use:   "stats ID",
		Short: "Show work hour and completion statistics of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := c.open(cmd, "/projects/"+args[0])
			if err != nil {
				return err
			}
			hours, err := a.Client.ProjectWorkHours(cmd.Context(), id, r)
			if err != nil {
				return err
			}
			completion, err := a.Client.ProjectCompletion(cmd.Context(), id)
			if err != nil {
				return err
			}
			stats := projectStats{Hours: hours, Completion: completion}
			return c.output(cmd, stats, stats)
		},
	}
	cmd.Flags().StringVar(&r.StartDate, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&r.EndDate, "to", "", "end date (YYYY-MM-DD)")
	return cmd
}

func (p projectStats) RenderText(s *ux.Styles) string {
	pairs := [][2]string{
		{"Total hours", strconv.FormatFloat(p.Hours.TotalHours, 'f', 1, 64)},
		{"Records", strconv.Itoa(p.Hours.TotalRecords)},
		{"Contributors", strconv.Itoa(p.Hours.UserCount)},
	}
	if cp := p.Completion; cp != nil {
		pairs = append(pairs,
			[2]string{"Tasks", strconv.Itoa(cp.TotalTasks)},
			[2]string{"Todo", strconv.Itoa(cp.TodoTasks)},
			[2]string{"In progress", strconv.Itoa(cp.InProgressTasks)},
			[2]string{"Done", strconv.Itoa(cp.DoneTasks)},
			[2]string{"Completion", orDash(cp.CompletionRate)},
		)
	}
	return ux.KeyValues{Title: "Project " + strconv.FormatInt(p.Hours.ProjectID, 10), Pairs: pairs}.RenderText(s)
}
