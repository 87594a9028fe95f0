package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files <table-root>",
		Short: "List the live data files in a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			for _, f := range snap.GetAllFiles() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", f.Path, f.Size)
			}
			return nil
		},
	}
}
