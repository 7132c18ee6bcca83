package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ExportFilter selects export candidates. When IDs is non-empty it overrides
// status and date filtering entirely.
type ExportFilter struct {
	Kind      RecordKind
	Statuses  []string
	StartDate *time.Time // inclusive
	EndDate   *time.Time // inclusive
	IDs       []int64
}

// Matches reports whether a record passes the filter. Payload-less records
// never match; they cannot be evaluated against statuses or dates.
func (f ExportFilter) Matches(r Record) bool {
	if r.Kind != f.Kind {
		return false
	}
	if len(f.IDs) > 0 {
		for _, id := range f.IDs {
			if id == r.ID {
				return true
			}
		}
		return false
	}

	var createdAt time.Time
	switch r.Kind {
	case KindOrder:
		if r.Order == nil {
			return false
		}
		createdAt = r.Order.CreatedAt
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, r.Order.Status) {
			return false
		}
	case KindCustomer:
		if r.Customer == nil {
			return false
		}
		createdAt = r.Customer.CreatedAt
	default:
		return false
	}

	if f.StartDate != nil && createdAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && createdAt.After(*f.EndDate) {
		return false
	}
	return true
}

// Key is the filter's identity used for run mutual exclusion. Two filters
// selecting the same candidate set produce the same key.
func (f ExportFilter) Key() string {
	var b strings.Builder
	b.WriteString(string(f.Kind))
	if len(f.IDs) > 0 {
		ids := append([]int64(nil), f.IDs...)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			fmt.Fprintf(&b, ":%d", id)
		}
		return b.String()
	}
	statuses := append([]string(nil), f.Statuses...)
	sort.Strings(statuses)
	b.WriteString(":" + strings.Join(statuses, ","))
	if f.StartDate != nil {
		b.WriteString(":" + f.StartDate.UTC().Format(time.RFC3339))
	}
	if f.EndDate != nil {
		b.WriteString(":" + f.EndDate.UTC().Format(time.RFC3339))
	}
	return b.String()
}

func containsStatus(statuses []string, status string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
