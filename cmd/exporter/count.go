package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCountCmd() *cobra.Command {
	var filters filterFlags

	c := &cobra.Command{
		Use:   "count",
		Short: "Count records explicitly flagged unexported",
		RunE: func(c *cobra.Command, args []string) error {
			filter, err := filters.build()
			if err != nil {
				return err
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			count, err := st.ExportState().CountUnexported(c.Context(), filter)
			if err != nil {
				return err
			}
			fmt.Printf("%d unexported %s record(s)\n", count, filter.Kind)
			return nil
		},
	}

	filters.register(c)
	return c
}
