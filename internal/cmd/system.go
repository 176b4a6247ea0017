package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gsms/gsms/internal/api"
	"github.com/gsms/gsms/internal/ux"
)

func groupCmd(use, short string, children ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:     use,
		Aliases: []string{use + "s"},
		Short:   short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(children...)
	return cmd
}

func (c *CLI) newUserCmd() *cobra.Command {
	var q api.UserQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "List users (requires USER_VIEW)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd, "/users")
			if err != nil {
				return err
			}
			page, err := a.Client.ListUsers(cmd.Context(), q)
			if err != nil {
				return err
			}
			t := ux.Table{
				Headers: []string{"ID", "USERNAME", "NICKNAME", "EMAIL", "DEPARTMENT", "STATUS"},
				Empty:   "No users found.",
				Footer:  footerOf(page),
			}
			for _, u := range page.List {
				t.Rows = append(t.Rows, []string{
					strconv.FormatInt(u.ID, 10), u.Username, orDash(u.Nickname), orDash(u.Email),
					orDash(u.DepartmentName), orDash(u.Status.String()),
				})
			}
			return c.output(cmd, page, t)
		},
	}
	list.Flags().StringVar(&q.Username, "username", "", "filter by username")
	list.Flags().Int64Var(&q.DepartmentID, "department", 0, "filter by department id")
	addPageFlags(list, &q.PageQuery)
	return groupCmd("user", "Browse users", list)
}

func (c *CLI) newRoleCmd() *cobra.Command {
	var q api.RoleQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "List roles (requires ROLE_VIEW)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd, "/roles")
			if err != nil {
				return err
			}
			page, err := a.Client.ListRoles(cmd.Context(), q)
			if err != nil {
				return err
			}
			t := ux.Table{
				Headers: []string{"ID", "CODE", "NAME", "TYPE", "DESCRIPTION"},
				Empty:   "No roles found.",
				Footer:  footerOf(page),
			}
			for _, r := range page.List {
				t.Rows = append(t.Rows, []string{
					strconv.FormatInt(r.ID, 10), r.Code, r.Name, orDash(r.RoleType), orDash(r.Description),
				})
			}
			return c.output(cmd, page, t)
		},
	}
	list.Flags().StringVar(&q.Name, "name", "", "filter by name")
	list.Flags().StringVar(&q.Code, "code", "", "filter by code")
	addPageFlags(list, &q.PageQuery)
	return groupCmd("role", "Browse roles", list)
}

func (c *CLI) newPermissionCmd() *cobra.Command {
	var q api.PermissionQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "List permission definitions (requires PERMISSION_VIEW)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd, "/permissions")
			if err != nil {
				return err
			}
			page, err := a.Client.ListPermissions(cmd.Context(), q)
			if err != nil {
				return err
			}
			t := ux.Table{
				Headers: []string{"ID", "CODE", "NAME", "HELD"},
				Empty:   "No permissions defined.",
				Footer:  footerOf(page),
			}
			for _, p := range page.List {
				held := ""
				if a.Session.HasPermission(p.Code) {
					held = "yes"
				}
				t.Rows = append(t.Rows, []string{strconv.FormatInt(p.ID, 10), p.Code, p.Name, held})
			}
			return c.output(cmd, page, t)
		},
	}
	list.Flags().StringVar(&q.Name, "name", "", "filter by name")
	list.Flags().StringVar(&q.Code, "code", "", "filter by code")
	addPageFlags(list, &q.PageQuery)
	return groupCmd("permission", "Browse permission definitions", list)
}
