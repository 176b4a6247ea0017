package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gsms/gsms/internal/config"
	gerrors "github.com/gsms/gsms/internal/errors"
	"github.com/gsms/gsms/internal/ux"
)

func (c *CLI) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize the gsms configuration",
		Long: `Configuration is read from ~/.gsms/config.yaml (or --config), then
overridden by a .env file in the working directory and by GSMS_*
environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(c.newConfigViewCmd(), c.newConfigPathCmd(), c.newConfigInitCmd())
	return cmd
}

type yamlText struct{ v interface{} }

func (y yamlText) RenderText(*ux.Styles) string {
	data, err := yaml.Marshal(y.v)
	if err != nil {
		return err.Error()
	}
	return strings.TrimRight(string(data), "\n")
}

func (c *CLI) newConfigViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config(cmd)
			if err != nil {
				return err
			}
			redacted := *cfg
			if redacted.Redis.Password != "" {
				redacted.Redis.Password = "********"
			}
			return c.output(cmd, &redacted, yamlText{&redacted})
		},
	}
}

func (c *CLI) newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configPath(cmd)
			if err != nil {
				return err
			}
			message(cmd, "%s", path)
			return nil
		},
	}
}

func (c *CLI) newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configPath(cmd)
			if err != nil {
				return err
			}
			exists, err := afero.Exists(c.loader.FS, path)
			if err != nil {
				return gerrors.Wrap(gerrors.ErrCodeConfigWrite, "failed to check config file", err)
			}
			if exists && !force {
				return gerrors.New(gerrors.ErrCodeConfigWrite, fmt.Sprintf("config file already exists: %s", path)).
					WithSuggestion("Use --force to overwrite it")
			}
			if err := config.Save(c.loader.FS, path, config.Default()); err != nil {
				return err
			}
			message(cmd, "Wrote %s", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func (c *CLI) configPath(cmd *cobra.Command) (string, error) {
	gf, err := readGlobalFlags(cmd)
	if err != nil {
		return "", err
	}
	if gf.configPath != "" {
		return config.ExpandHome(gf.configPath), nil
	}
	return config.DefaultPath()
}
