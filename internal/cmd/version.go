package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gsms/gsms/internal/ux"
	"github.com/gsms/gsms/internal/version"
)

type versionView struct {
	version.Info
	verbose bool
}

func (v versionView) RenderText(*ux.Styles) string {
	if v.verbose {
		return v.Info.String()
	}
	return "gsms " + v.Short()
}

func (c *CLI) newVersionCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()
			return c.output(cmd, info, versionView{Info: info, verbose: verbose})
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed version information")
	return cmd
}
