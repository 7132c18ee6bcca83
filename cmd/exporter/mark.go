package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shopops/order-csv-exporter/internal/model"
)

// newMarkCmd builds the manual flag-repair commands. mark sets records
// exported, unmark resets them so the next automated run picks them up again
// (the manual remedy after a failed delivery under mark-before semantics).
func newMarkCmd(exported bool) *cobra.Command {
	use, short := "mark", "Mark records as exported"
	if !exported {
		use, short = "unmark", "Flag records as not exported"
	}

	var (
		kind string
		ids  []int64
	)

	c := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(c *cobra.Command, args []string) error {
			recordKind := model.RecordKind(kind)
			switch recordKind {
			case model.KindOrder, model.KindCustomer:
			default:
				return fmt.Errorf("invalid record kind: %q", kind)
			}
			if len(ids) == 0 {
				return fmt.Errorf("--ids is required")
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.ExportState().SetExportedAll(c.Context(), recordKind, ids, exported); err != nil {
				return err
			}
			fmt.Printf("Updated %d %s record(s)\n", len(ids), recordKind)
			return nil
		},
	}

	c.Flags().StringVar(&kind, "kind", "order", "Record kind: order or customer")
	c.Flags().Int64SliceVar(&ids, "ids", nil, "Record ids to update")
	return c
}
