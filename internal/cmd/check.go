package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archstrap/archstrap/internal/contextual"
	"github.com/archstrap/archstrap/internal/preflight"
	"github.com/archstrap/archstrap/internal/storage"
	"github.com/archstrap/archstrap/internal/util"
)

// checkCommand creates a new command which reports whether the live system is ready for an install.
func checkCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [disk]",
		Short: "check the live system for an install",
		Long: strings.TrimSpace(`
check verifies the live system can run an install: root
privileges, the required tools, UEFI firmware and the
btrfs-progs version. The microcode package that will be
installed is reported too. When a disk (e.g. /dev/sda) is
given its current partitions are listed.
		`),
		Args: cobra.MaximumNArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		results := (&preflight.Checker{Platform: contextual.Platform(ctx)}).Run(ctx)
		printResults(cmd.OutOrStdout(), results)

		if len(args) == 1 {
			streams := util.Streams{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
			devices, err := storage.New(streams).BlockDevices(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			for _, line := range storage.Describe(devices) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
		}

		return preflight.Err(results)
	}

	return cmd
}

// printResults writes one aligned line per check.
func printResults(w io.Writer, results []preflight.Result) {
	for _, r := range results {
		fmt.Fprintf(w, "%-12s %-8s %s\n", r.Name, r.Severity, r.Detail)
	}
}
