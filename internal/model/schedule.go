package model

import "time"

const (
	DefaultIntervalMinutes  = 30
	DefaultOrderFilename    = "orders-export-%%timestamp%%.csv"
	DefaultCustomerFilename = "customers-export-%%timestamp%%.csv"
)

// ScheduleConfig is the persisted automated-export configuration. It is
// written by the settings store and consumed by the scheduler; any change to
// Enabled or IntervalMinutes re-arms the schedule from "now + interval".
type ScheduleConfig struct {
	Enabled          bool            `json:"enabled"`
	IntervalMinutes  int             `json:"interval_minutes"`
	Kind             RecordKind      `json:"kind"`
	Statuses         []string        `json:"statuses,omitempty"`
	OrderFormat      ExportFormat    `json:"order_format"`
	CustomerFormat   ExportFormat    `json:"customer_format"`
	OrderFilename    string          `json:"order_filename"`
	CustomerFilename string          `json:"customer_filename"`
	Transport        TransportConfig `json:"transport"`
}

// DefaultScheduleConfig mirrors the stock settings of a fresh install.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		Enabled:          false,
		IntervalMinutes:  DefaultIntervalMinutes,
		Kind:             KindOrder,
		OrderFormat:      FormatDefault,
		CustomerFormat:   FormatDefault,
		OrderFilename:    DefaultOrderFilename,
		CustomerFilename: DefaultCustomerFilename,
		Transport:        TransportConfig{Kind: TransportFTP},
	}
}

func (c ScheduleConfig) Interval() time.Duration {
	minutes := c.IntervalMinutes
	if minutes <= 0 {
		minutes = DefaultIntervalMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// Filter builds the export filter the schedule runs with. Automated exports
// only pick up records explicitly flagged unexported; that restriction is
// applied by the record source, not the filter.
func (c ScheduleConfig) Filter() ExportFilter {
	return ExportFilter{Kind: c.Kind, Statuses: c.Statuses}
}

// Format resolves the format for the scheduled kind.
func (c ScheduleConfig) Format() ExportFormat {
	if c.Kind == KindCustomer {
		return c.CustomerFormat
	}
	return c.OrderFormat
}

// FilenameTemplate resolves the filename template for the scheduled kind.
func (c ScheduleConfig) FilenameTemplate() string {
	if c.Kind == KindCustomer {
		if c.CustomerFilename == "" {
			return DefaultCustomerFilename
		}
		return c.CustomerFilename
	}
	if c.OrderFilename == "" {
		return DefaultOrderFilename
	}
	return c.OrderFilename
}
