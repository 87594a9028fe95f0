package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <table-root>",
		Short: "Print the version, file count, and total size of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "version:      %d\n", snap.GetVersion())
			fmt.Fprintf(cmd.OutOrStdout(), "files:        %d\n", snap.GetNumOfFiles())
			fmt.Fprintf(cmd.OutOrStdout(), "size (bytes): %d\n", snap.GetSizeInBytes())
			fmt.Fprintf(cmd.OutOrStdout(), "provider:     %s\n", snap.GetMetadata().Format().Provider)
			return nil
		},
	}
}
