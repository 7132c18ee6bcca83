package format

import "github.com/shopops/order-csv-exporter/internal/model"

// Fixed ordered column lists per export format. The header row is always the
// column list verbatim; the bit layout of every variant is frozen because
// downstream imports key on it.

var orderDefaultColumns = []string{
	"order_id",
	"order_number",
	"date",
	"status",
	"shipping_total",
	"shipping_tax_total",
	"fee_total",
	"fee_tax_total",
	"tax_total",
	"discount_total",
	"order_total",
	"payment_method",
	"shipping_method",
	"customer_id",
	"billing_first_name",
	"billing_last_name",
	"billing_company",
	"billing_email",
	"billing_phone",
	"billing_address_1",
	"billing_address_2",
	"billing_city",
	"billing_state",
	"billing_postcode",
	"billing_country",
	"shipping_first_name",
	"shipping_last_name",
	"shipping_company",
	"shipping_address_1",
	"shipping_address_2",
	"shipping_city",
	"shipping_state",
	"shipping_postcode",
	"shipping_country",
	"customer_note",
	"line_items",
}

var orderImportColumns = []string{
	"order_id",
	"customer_email",
	"order_date",
	"status",
	"shipping_total",
	"tax_total",
	"discount_total",
	"order_total",
	"payment_method",
	"shipping_method",
	"billing_first_name",
	"billing_last_name",
	"billing_company",
	"billing_address_1",
	"billing_address_2",
	"billing_city",
	"billing_state",
	"billing_postcode",
	"billing_country",
	"billing_phone",
	"shipping_first_name",
	"shipping_last_name",
	"shipping_company",
	"shipping_address_1",
	"shipping_address_2",
	"shipping_city",
	"shipping_state",
	"shipping_postcode",
	"shipping_country",
	"customer_note",
	"line_items",
}

// Shared order-level prefix of both legacy variants; they diverge only in
// how line items are flattened.
var orderLegacyColumns = []string{
	"order_id",
	"date",
	"status",
	"order_total",
	"shipping_total",
	"tax_total",
	"payment_method",
	"billing_first_name",
	"billing_last_name",
	"billing_email",
	"billing_phone",
	"customer_note",
}

var orderLegacyItemColumns = []string{
	"item_name",
	"item_sku",
	"item_quantity",
	"item_price",
	"item_total",
}

const orderLegacySingleColumn = "order_items"

var customerDefaultColumns = []string{
	"customer_id",
	"username",
	"email",
	"first_name",
	"last_name",
	"date_registered",
	"billing_first_name",
	"billing_last_name",
	"billing_company",
	"billing_email",
	"billing_phone",
	"billing_address_1",
	"billing_address_2",
	"billing_city",
	"billing_state",
	"billing_postcode",
	"billing_country",
	"shipping_first_name",
	"shipping_last_name",
	"shipping_company",
	"shipping_address_1",
	"shipping_address_2",
	"shipping_city",
	"shipping_state",
	"shipping_postcode",
	"shipping_country",
}

var customerImportColumns = []string{
	"username",
	"email",
	"first_name",
	"last_name",
	"billing_first_name",
	"billing_last_name",
	"billing_company",
	"billing_address_1",
	"billing_address_2",
	"billing_city",
	"billing_state",
	"billing_postcode",
	"billing_country",
	"billing_phone",
	"shipping_first_name",
	"shipping_last_name",
	"shipping_company",
	"shipping_address_1",
	"shipping_address_2",
	"shipping_city",
	"shipping_state",
	"shipping_postcode",
	"shipping_country",
}

var customerLegacyColumns = []string{
	"customer_id",
	"email",
	"first_name",
	"last_name",
}

// Columns returns the header row for a kind/format pair.
func Columns(kind model.RecordKind, format model.ExportFormat) ([]string, error) {
	switch kind {
	case model.KindOrder:
		switch format {
		case model.FormatDefault:
			return orderDefaultColumns, nil
		case model.FormatImport:
			return orderImportColumns, nil
		case model.FormatLegacyOneRowPerItem:
			return append(append([]string{}, orderLegacyColumns...), orderLegacyItemColumns...), nil
		case model.FormatLegacySingleColumn:
			return append(append([]string{}, orderLegacyColumns...), orderLegacySingleColumn), nil
		}
	case model.KindCustomer:
		switch format {
		case model.FormatDefault:
			return customerDefaultColumns, nil
		case model.FormatImport:
			return customerImportColumns, nil
		case model.FormatLegacy:
			return customerLegacyColumns, nil
		}
	}
	return nil, errUnknownFormat(kind, format)
}
