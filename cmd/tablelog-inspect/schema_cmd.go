package main

import (
	"fmt"

	"github.com/parquetlake/tablelog/server/schema"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table-root>",
		Short: "Print a snapshot's schema as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			sch, err := snap.GetMetadata().Schema()
			if err != nil {
				return err
			}

			out, err := schema.Emit(sch)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
