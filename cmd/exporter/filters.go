package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	conf "github.com/shopops/order-csv-exporter/config"
	"github.com/shopops/order-csv-exporter/internal/model"
	"github.com/shopops/order-csv-exporter/internal/store/postgres"
)

const flagDateLayout = "2006-01-02"

// filterFlags is the shared record-selection surface of the one-shot
// commands.
type filterFlags struct {
	kind      string
	statuses  []string
	ids       []int64
	startDate string
	endDate   string
}

func (f *filterFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.kind, "kind", "order", "Record kind: order or customer")
	c.Flags().StringSliceVar(&f.statuses, "statuses", nil, "Order statuses to include")
	c.Flags().Int64SliceVar(&f.ids, "ids", nil, "Explicit record ids; overrides statuses and dates")
	c.Flags().StringVar(&f.startDate, "start", "", "Earliest creation date (YYYY-MM-DD, inclusive)")
	c.Flags().StringVar(&f.endDate, "end", "", "Latest creation date (YYYY-MM-DD, inclusive)")
}

func (f *filterFlags) build() (model.ExportFilter, error) {
	kind := model.RecordKind(f.kind)
	switch kind {
	case model.KindOrder, model.KindCustomer:
	default:
		return model.ExportFilter{}, fmt.Errorf("invalid record kind: %q", f.kind)
	}

	filter := model.ExportFilter{Kind: kind, Statuses: f.statuses, IDs: f.ids}
	if f.startDate != "" {
		t, err := time.Parse(flagDateLayout, f.startDate)
		if err != nil {
			return model.ExportFilter{}, fmt.Errorf("invalid --start date: %q", f.startDate)
		}
		filter.StartDate = &t
	}
	if f.endDate != "" {
		t, err := time.Parse(flagDateLayout, f.endDate)
		if err != nil {
			return model.ExportFilter{}, fmt.Errorf("invalid --end date: %q", f.endDate)
		}
		t = t.Add(24*time.Hour - time.Second)
		filter.EndDate = &t
	}
	return filter, nil
}

// openStore loads the configuration and opens the postgres store for a
// one-shot command.
func openStore() (*postgres.Store, error) {
	config, err := conf.LoadConfig()
	if err != nil {
		return nil, err
	}
	st := postgres.New(config.Database)
	if err := st.Open(); err != nil {
		return nil, err
	}
	return st, nil
}
