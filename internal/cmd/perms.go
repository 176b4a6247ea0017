package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gsms/gsms/internal/api"
	"github.com/gsms/gsms/internal/authz"
	gerrors "github.com/gsms/gsms/internal/errors"
	"github.com/gsms/gsms/internal/nav"
	"github.com/gsms/gsms/internal/ux"
)

func (c *CLI) newPermsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "perms",
		Short: "Inspect the permissions of the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(c.newPermsListCmd(), c.newPermsCheckCmd(), c.newPermsDescribeCmd())
	return cmd
}

type heldPermission struct {
	Code   string `json:"code" yaml:"code"`
	Module string `json:"module" yaml:"module"`
	Action string `json:"action" yaml:"action"`
}

func (c *CLI) newPermsListCmd() *cobra.Command {
	var module string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List permissions held by the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.session(cmd)
			if err != nil {
				return err
			}
			if !a.Session.IsAuthenticated() {
				return gerrors.NewNotLoggedInError()
			}

			codes := a.Session.Permissions()
			sort.Strings(codes)
			held := make([]heldPermission, 0, len(codes))
			table := ux.Table{Headers: []string{"CODE", "MODULE", "ACTION"}, Empty: "No permissions held."}
			for _, code := range codes {
				m := authz.ModuleOf(code)
				if module != "" && string(m) != module {
					continue
				}
				p := heldPermission{Code: code, Module: string(m), Action: authz.ActionOf(code)}
				held = append(held, p)
				table.Rows = append(table.Rows, []string{p.Code, p.Module, p.Action})
			}
			return c.output(cmd, held, table)
		},
	}
	cmd.Flags().StringVar(&module, "module", "", "only show codes of this module (project, task, user, ...)")
	return cmd
}

type checkResult struct {
	Codes   []string `json:"codes" yaml:"codes"`
	Mode    string   `json:"mode" yaml:"mode"`
	Granted bool     `json:"granted" yaml:"granted"`
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

func (r checkResult) RenderText(s *ux.Styles) string {
	if r.Granted {
		return s.Success.Render("granted")
	}
	return s.Error.Render("denied") + s.Muted.Render(" (missing "+strings.Join(r.Missing, ", ")+")")
}

func (c *CLI) newPermsCheckCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "check CODE...",
		Short: "Check whether the session holds permissions",
		Long: `Check permission codes against the session. By default any one of the
codes suffices; with --all every code is required. The command exits with
a permission error when the check fails.`,
		Example: `  gsms perms check USER_VIEW
  gsms perms check PROJECT_EDIT PROJECT_DELETE --all`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.session(cmd)
			if err != nil {
				return err
			}

			set := a.Session.PermissionSet()
			r := checkResult{Codes: args, Mode: "any", Missing: set.Missing(args...)}
			if all {
				r.Mode = "all"
				r.Granted = a.Session.HasAllPermissions(args...)
			} else {
				r.Granted = a.Session.HasAnyPermission(args...)
			}

			if err := c.output(cmd, r, r); err != nil {
				return err
			}
			if !r.Granted {
				return gerrors.New(gerrors.ErrCodePermissionDenied,
					fmt.Sprintf("permission check failed (%s of %s)", r.Mode, strings.Join(args, ", ")))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "require every code instead of any one")
	return cmd
}

type permissionDescription struct {
	Code        string   `json:"code" yaml:"code"`
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Module      string   `json:"module" yaml:"module"`
	Action      string   `json:"action" yaml:"action"`
	Held        bool     `json:"held" yaml:"held"`
	Routes      []string `json:"routes,omitempty" yaml:"routes,omitempty"`
}

func (d permissionDescription) RenderText(s *ux.Styles) string {
	held := s.Error.Render("no")
	if d.Held {
		held = s.Success.Render("yes")
	}
	return ux.KeyValues{
		Title: d.Code,
		Pairs: [][2]string{
			{"Name", orDash(d.Name)},
			{"Description", orDash(d.Description)},
			{"Module", d.Module},
			{"Action", d.Action},
			{"Held", held},
			{"Opens", orDash(strings.Join(d.Routes, ", "))},
		},
	}.RenderText(s)
}

func (c *CLI) newPermsDescribeCmd() *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "describe CODE",
		Short: "Describe a permission code and the screens it opens",
		Long: `Describe a permission code: its module and action, whether the session
holds it and which routes it opens. The name and description are looked
up in the backend's permission catalogue unless --offline is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			a, err := c.session(cmd)
			if err != nil {
				return err
			}

			d := permissionDescription{
				Code:   code,
				Module: string(authz.ModuleOf(code)),
				Action: authz.ActionOf(code),
				Held:   a.Session.HasPermission(code),
				Routes: routesRequiring(a.Navigator.Table(), code),
			}

			if !offline {
				if _, err := a.Open(cmd.Context(), "/permissions"); err != nil {
					return err
				}
				catalogue, err := a.Client.AllPermissions(cmd.Context())
				if err != nil {
					return err
				}
				info, ok := findPermission(catalogue, code)
				if !ok {
					return gerrors.New(gerrors.ErrCodeAPINotFound, fmt.Sprintf("permission %s is not defined on the backend", code))
				}
				d.Name, d.Description = info.Name, info.Description
			}
			return c.output(cmd, d, d)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the backend catalogue lookup")
	return cmd
}

func findPermission(list []api.PermissionInfo, code string) (api.PermissionInfo, bool) {
	for _, p := range list {
		if p.Code == code {
			return p, true
		}
	}
	return api.PermissionInfo{}, false
}

func routesRequiring(t *nav.Table, code string) []string {
	var paths []string
	for _, r := range t.Routes() {
		for _, p := range r.Permissions {
			if p == code {
				paths = append(paths, r.Path)
				break
			}
		}
	}
	return paths
}
