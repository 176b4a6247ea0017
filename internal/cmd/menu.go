package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/gsms/gsms/internal/api"
	"github.com/gsms/gsms/internal/nav"
	"github.com/gsms/gsms/internal/ux"
)

type menuTree struct {
	menus  []api.MenuInfo
	all    bool
	access map[string]nav.Kind
}

func (m menuTree) RenderText(s *ux.Styles) string {
	if len(m.menus) == 0 {
		return s.Muted.Render("No menus.")
	}
	var b strings.Builder
	api.WalkMenus(m.menus, func(menu api.MenuInfo, depth int) bool {
		if !m.all && (!menu.IsVisible() || menu.Type == api.MenuButton) {
			return false
		}
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(menu.Name)
		if menu.Path != "" {
			b.WriteString(" ")
			label := menu.Path
			if kind, ok := m.access[menu.Path]; ok && kind != nav.Allowed {
				b.WriteString(s.Warning.Render(label + " [" + kind.String() + "]"))
			} else {
				b.WriteString(s.Muted.Render(label))
			}
		}
		b.WriteString("\n")
		return true
	})
	return strings.TrimRight(b.String(), "\n")
}

func (c *CLI) newMenuCmd() *cobra.Command {
	var all, full bool
	tree := &cobra.Command{
		Use:   "tree",
		Short: "Show the menu tree of the current user",
		Long: `Show the menus the backend grants the current user. Entries whose
path the navigation guard would refuse are marked. With --full the
complete menu tree is fetched instead of the user's.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd, "/dashboard")
			if err != nil {
				return err
			}
			var menus []api.MenuInfo
			if full {
				menus, err = a.Client.MenuTree(cmd.Context())
			} else {
				menus, err = a.Client.UserMenuTree(cmd.Context())
			}
			if err != nil {
				return err
			}

			access := make(map[string]nav.Kind)
			var navErr error
			api.WalkMenus(menus, func(menu api.MenuInfo, _ int) bool {
				if menu.Path == "" || navErr != nil {
					return navErr == nil
				}
				res, err := a.Navigator.Navigate(cmd.Context(), menu.Path)
				if err != nil {
					navErr = err
					return false
				}
				access[menu.Path] = res.Kind
				return true
			})
			if navErr != nil {
				return navErr
			}
			return c.output(cmd, menus, menuTree{menus: menus, all: all, access: access})
		},
	}
	tree.Flags().BoolVar(&all, "all", false, "include hidden menus and buttons")
	tree.Flags().BoolVar(&full, "full", false, "fetch the complete menu tree")
	return groupCmd("menu", "Browse menus", tree)
}
