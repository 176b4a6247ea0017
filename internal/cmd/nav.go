package cmd

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gsms/gsms/internal/nav"
	"github.com/gsms/gsms/internal/ux"
)

type navView struct {
	nav.Result
	Requested string `json:"requested" yaml:"requested"`
}

func (v navView) RenderText(s *ux.Styles) string {
	decision := s.Success.Render(v.Kind.String())
	if !v.Allowed() {
		decision = s.Warning.Render(v.Kind.String())
	}
	pairs := [][2]string{
		{"Path", v.Path},
		{"Route", v.Route.Name},
		{"Title", v.Title},
		{"Decision", decision},
	}
	if v.Location != "" {
		pairs = append(pairs, [2]string{"Location", v.Location})
	}
	if len(v.Required) > 0 {
		pairs = append(pairs, [2]string{"Requires", strings.Join(v.Required, " or ")})
	}
	keys := make([]string, 0, len(v.Params))
	for k := range v.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, [2]string{"Param " + k, v.Params[k]})
	}
	return ux.KeyValues{Pairs: pairs}.RenderText(s)
}

func (c *CLI) newNavCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "nav PATH",
		Short: "Show what navigating to a path would do",
		Long: `Resolve PATH against the route table and evaluate the navigation guard
for the current session. The decision, the page title and any redirect
location are printed. With --strict a redirect is reported as an error.`,
		Example: `  gsms nav /users
  gsms nav "/projects/12?tab=tasks"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.session(cmd)
			if err != nil {
				return err
			}
			if strict {
				res, err := a.Open(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				v := navView{Result: res, Requested: args[0]}
				return c.output(cmd, v, v)
			}
			res, err := a.Navigator.Navigate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			v := navView{Result: res, Requested: args[0]}
			return c.output(cmd, v, v)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail unless navigation is allowed")
	return cmd
}

type routeView struct {
	Name         string   `json:"name" yaml:"name"`
	Path         string   `json:"path" yaml:"path"`
	Title        string   `json:"title,omitempty" yaml:"title,omitempty"`
	RequiresAuth bool     `json:"requiresAuth" yaml:"requiresAuth"`
	GuestOnly    bool     `json:"guestOnly,omitempty" yaml:"guestOnly,omitempty"`
	Permissions  []string `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Redirect     string   `json:"redirect,omitempty" yaml:"redirect,omitempty"`
	Access       string   `json:"access" yaml:"access"`
}

func (c *CLI) newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the route table and what the session may open",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.session(cmd)
			if err != nil {
				return err
			}

			routes := a.Navigator.Table().Routes()
			views := make([]routeView, 0, len(routes))
			table := ux.Table{Headers: []string{"NAME", "PATH", "TITLE", "REQUIRES", "ACCESS"}}
			for _, r := range routes {
				v := routeView{
					Name:         r.Name,
					Path:         r.Path,
					Title:        r.Title,
					RequiresAuth: r.RequiresAuth,
					GuestOnly:    r.GuestOnly,
					Permissions:  r.Permissions,
					Redirect:     r.Redirect,
				}
				res, err := a.Navigator.Navigate(cmd.Context(), r.Path)
				if err != nil {
					return err
				}
				v.Access = res.Kind.String()
				views = append(views, v)
				table.Rows = append(table.Rows, []string{r.Name, r.Path, orDash(r.Title), requirement(r), v.Access})
			}
			return c.output(cmd, views, table)
		},
	}
}

func requirement(r nav.Route) string {
	switch {
	case r.Redirect != "":
		return "-> " + r.Redirect
	case r.GuestOnly:
		return "guest"
	case len(r.Permissions) > 0:
		return strings.Join(r.Permissions, "|")
	case r.RequiresAuth:
		return "login"
	default:
		return "-"
	}
}
