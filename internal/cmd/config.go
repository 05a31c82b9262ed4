package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/archstrap/archstrap/internal/config"
)

// configCommand creates a new command which prints the effective configuration.
func configCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		Long: strings.TrimSpace(`
config prints the configuration install runs with, after the
configuration file and the environment were applied. The
output is valid configuration file content.
		`),
		Args: cobra.NoArgs,
	}

	var env bool
	cmd.Flags().BoolVar(&env, "env", false, "list the environment variables instead")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if env {
			usage, err := config.Usage()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), usage)
			return err
		}

		return writeConfig(cmd.OutOrStdout(), opts.cfg)
	}

	return cmd
}

// writeConfig writes the configuration as YAML.
func writeConfig(w io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("cannot encode configuration: %w", err)
	}

	return enc.Close()
}
