package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// globalFlags are the persistent flags every subcommand inherits.
type globalFlags struct {
	format     string
	noColor    bool
	configPath string
	logLevel   string
}

func readGlobalFlags(cmd *cobra.Command) (globalFlags, error) {
	f := cmd.Flags()
	format, errFormat := f.GetString("format")
	noColor, errColor := f.GetBool("no-color")
	configPath, errConfig := f.GetString("config")
	logLevel, errLevel := f.GetString("log-level")
	if err := errors.Join(errFormat, errColor, errConfig, errLevel); err != nil {
		return globalFlags{}, fmt.Errorf("reading global flags: %w", err)
	}
	return globalFlags{
		format:     format,
		noColor:    noColor,
		configPath: configPath,
		logLevel:   logLevel,
	}, nil
}
