package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archstrap/archstrap/internal/config"
	"github.com/archstrap/archstrap/internal/storage"
)

// layoutCommand creates a new command which prints the disk layout an install creates.
func layoutCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "print the partition table and subvolumes",
		Long: strings.TrimSpace(`
layout prints the sfdisk script install applies to the disk
and the btrfs subvolumes with their mount points, in the
order they are mounted. Nothing is changed.
		`),
		Args: cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return writeLayout(cmd.OutOrStdout(), opts.cfg)
	}

	return cmd
}

// writeLayout renders the partition table and the subvolume table for the configuration.
func writeLayout(w io.Writer, cfg *config.Config) error {
	table, err := storage.ParsePartitionTable(cfg.EFISize)
	if err != nil {
		return err
	}
	rendered, err := table.Render()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Partition table:")
	fmt.Fprintln(w, rendered)
	fmt.Fprintln(w, "Subvolumes:")
	for _, sv := range storage.DefaultLayout() {
		options := strings.Join(storage.SubvolumeOptions(sv, cfg.MountOptions), ",")
		fmt.Fprintf(w, "%-12s %-28s %s\n", sv.Label, sv.Target(cfg.MountRoot), options)
	}

	return nil
}
