package format

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperr "github.com/shopops/order-csv-exporter/internal/errors"
	"github.com/shopops/order-csv-exporter/internal/model"
)

const (
	dateLayout    = "2006-01-02 15:04:05"
	itemSeparator = ";"
)

func errUnknownFormat(kind model.RecordKind, format model.ExportFormat) error {
	return fmt.Errorf("unknown export format %q for kind %q", format, kind)
}

// Render serializes records into a CSV byte stream under the given format.
// The header row is always emitted, even for an empty batch. Records whose
// payload for the kind is missing are skipped and reported per record; the
// batch never aborts on record data. Output is deterministic: the same
// records in the same order produce byte-identical CSV.
func Render(kind model.RecordKind, records []model.Record, format model.ExportFormat) ([]byte, []model.RecordError, error) {
	columns, err := Columns(kind, format)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columns); err != nil {
		return nil, nil, err
	}

	var recordErrs []model.RecordError
	for _, r := range records {
		rows, serr := rowsFor(r, kind, format)
		if serr != nil {
			recordErrs = append(recordErrs, model.RecordError{
				RecordID: r.ID,
				Kind:     model.ErrKindSerialization,
			})
			continue
		}
		for _, row := range rows {
			if err := w.Write(row); err != nil {
				return nil, nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), recordErrs, nil
}

func rowsFor(r model.Record, kind model.RecordKind, format model.ExportFormat) ([][]string, error) {
	switch kind {
	case model.KindOrder:
		if r.Order == nil {
			return nil, apperr.NewSerializationError(r.ID, "order payload missing")
		}
		return orderRows(r.Order, format), nil
	case model.KindCustomer:
		if r.Customer == nil {
			return nil, apperr.NewSerializationError(r.ID, "customer payload missing")
		}
		return [][]string{customerRow(r.Customer, format)}, nil
	}
	return nil, apperr.NewSerializationError(r.ID, "unknown record kind")
}

func orderRows(o *model.Order, format model.ExportFormat) [][]string {
	switch format {
	case model.FormatDefault:
		return [][]string{{
			itoa(o.ID),
			o.Number,
			date(o.CreatedAt),
			o.Status,
			money(o.ShippingTotal),
			money(o.ShippingTax),
			money(o.FeeTotal),
			money(o.FeeTax),
			money(o.TaxTotal),
			money(o.DiscountTotal),
			money(o.Total),
			o.PaymentMethod,
			o.ShippingMethod,
			itoa(o.CustomerID),
			o.Billing.FirstName,
			o.Billing.LastName,
			o.Billing.Company,
			o.Billing.Email,
			o.Billing.Phone,
			o.Billing.Address1,
			o.Billing.Address2,
			o.Billing.City,
			o.Billing.State,
			o.Billing.Postcode,
			o.Billing.Country,
			o.Shipping.FirstName,
			o.Shipping.LastName,
			o.Shipping.Company,
			o.Shipping.Address1,
			o.Shipping.Address2,
			o.Shipping.City,
			o.Shipping.State,
			o.Shipping.Postcode,
			o.Shipping.Country,
			o.CustomerNote,
			packedItems(o.Items),
		}}
	case model.FormatImport:
		return [][]string{{
			itoa(o.ID),
			o.Billing.Email,
			date(o.CreatedAt),
			o.Status,
			money(o.ShippingTotal),
			money(o.TaxTotal),
			money(o.DiscountTotal),
			money(o.Total),
			o.PaymentMethod,
			o.ShippingMethod,
			o.Billing.FirstName,
			o.Billing.LastName,
			o.Billing.Company,
			o.Billing.Address1,
			o.Billing.Address2,
			o.Billing.City,
			o.Billing.State,
			o.Billing.Postcode,
			o.Billing.Country,
			o.Billing.Phone,
			o.Shipping.FirstName,
			o.Shipping.LastName,
			o.Shipping.Company,
			o.Shipping.Address1,
			o.Shipping.Address2,
			o.Shipping.City,
			o.Shipping.State,
			o.Shipping.Postcode,
			o.Shipping.Country,
			o.CustomerNote,
			packedItems(o.Items),
		}}
	case model.FormatLegacyOneRowPerItem:
		prefix := orderLegacyRow(o)
		if len(o.Items) == 0 {
			row := append(append([]string{}, prefix...), "", "", "", "", "")
			return [][]string{row}
		}
		rows := make([][]string, 0, len(o.Items))
		for _, item := range o.Items {
			row := append(append([]string{}, prefix...),
				item.Name,
				item.SKU,
				strconv.Itoa(item.Quantity),
				money(item.UnitPrice),
				money(item.Total),
			)
			rows = append(rows, row)
		}
		return rows
	case model.FormatLegacySingleColumn:
		row := append(append([]string{}, orderLegacyRow(o)...), legacyItemsCell(o.Items))
		return [][]string{row}
	}
	return nil
}

func orderLegacyRow(o *model.Order) []string {
	return []string{
		itoa(o.ID),
		date(o.CreatedAt),
		o.Status,
		money(o.Total),
		money(o.ShippingTotal),
		money(o.TaxTotal),
		o.PaymentMethod,
		o.Billing.FirstName,
		o.Billing.LastName,
		o.Billing.Email,
		o.Billing.Phone,
		o.CustomerNote,
	}
}

func customerRow(c *model.Customer, format model.ExportFormat) []string {
	switch format {
	case model.FormatDefault:
		return []string{
			itoa(c.ID),
			c.Username,
			c.Email,
			c.FirstName,
			c.LastName,
			date(c.CreatedAt),
			c.Billing.FirstName,
			c.Billing.LastName,
			c.Billing.Company,
			c.Billing.Email,
			c.Billing.Phone,
			c.Billing.Address1,
			c.Billing.Address2,
			c.Billing.City,
			c.Billing.State,
			c.Billing.Postcode,
			c.Billing.Country,
			c.Shipping.FirstName,
			c.Shipping.LastName,
			c.Shipping.Company,
			c.Shipping.Address1,
			c.Shipping.Address2,
			c.Shipping.City,
			c.Shipping.State,
			c.Shipping.Postcode,
			c.Shipping.Country,
		}
	case model.FormatImport:
		return []string{
			c.Username,
			c.Email,
			c.FirstName,
			c.LastName,
			c.Billing.FirstName,
			c.Billing.LastName,
			c.Billing.Company,
			c.Billing.Address1,
			c.Billing.Address2,
			c.Billing.City,
			c.Billing.State,
			c.Billing.Postcode,
			c.Billing.Country,
			c.Billing.Phone,
			c.Shipping.FirstName,
			c.Shipping.LastName,
			c.Shipping.Company,
			c.Shipping.Address1,
			c.Shipping.Address2,
			c.Shipping.City,
			c.Shipping.State,
			c.Shipping.Postcode,
			c.Shipping.Country,
		}
	case model.FormatLegacy:
		return []string{
			itoa(c.ID),
			c.Email,
			c.FirstName,
			c.LastName,
		}
	}
	return nil
}

// packedItems renders all line items into one cell as
// "name|sku|qty|total" entries joined by ";".
func packedItems(items []model.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, strings.Join([]string{
			item.Name,
			item.SKU,
			strconv.Itoa(item.Quantity),
			money(item.Total),
		}, "|"))
	}
	return strings.Join(parts, itemSeparator)
}

// legacyItemsCell renders "name x qty" entries joined by "; ".
func legacyItemsCell(items []model.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x %d", item.Name, item.Quantity))
	}
	return strings.Join(parts, "; ")
}

func itoa(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}
