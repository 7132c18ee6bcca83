package format

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopops/order-csv-exporter/internal/model"
)

func testOrder(id int64, items ...model.LineItem) model.Record {
	return model.Record{
		ID:   id,
		Kind: model.KindOrder,
		Order: &model.Order{
			ID:            id,
			Number:        "1000",
			CreatedAt:     time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
			Status:        "completed",
			Total:         25.50,
			ShippingTotal: 4.99,
			TaxTotal:      1.20,
			PaymentMethod: "bacs",
			Billing: model.Address{
				FirstName: "Jamie",
				LastName:  "Doe",
				Email:     "jamie@example.com",
				Phone:     "555-0100",
			},
			CustomerNote: "leave at the, \"back\" door\nplease",
			Items:        items,
		},
	}
}

func TestRenderEmitsHeaderForEmptyBatch(t *testing.T) {
	out, recordErrs, err := Render(model.KindOrder, nil, model.FormatDefault)
	require.NoError(t, err)
	require.Empty(t, recordErrs)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, orderDefaultColumns, rows[0])
}

func TestRenderRoundTripsCellValues(t *testing.T) {
	records := []model.Record{
		testOrder(10, model.LineItem{Name: "Widget, large", SKU: "W-1", Quantity: 2, Total: 10.00}),
		testOrder(11),
	}

	out, recordErrs, err := Render(model.KindOrder, records, model.FormatDefault)
	require.NoError(t, err)
	require.Empty(t, recordErrs)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	cell := func(row []string, column string) string {
		for i, name := range header {
			if name == column {
				return row[i]
			}
		}
		t.Fatalf("column %q not found", column)
		return ""
	}

	// Quoting survives the round trip: embedded commas, quotes and newlines.
	assert.Equal(t, "leave at the, \"back\" door\nplease", cell(rows[1], "customer_note"))
	assert.Equal(t, "Widget, large|W-1|2|10.00", cell(rows[1], "line_items"))
	assert.Equal(t, "2024-03-05 10:00:00", cell(rows[1], "date"))
	assert.Equal(t, "25.50", cell(rows[1], "order_total"))
	assert.Equal(t, "", cell(rows[2], "line_items"))
}

func TestRenderIsDeterministic(t *testing.T) {
	records := []model.Record{
		testOrder(3, model.LineItem{Name: "A", Quantity: 1, Total: 1}),
		testOrder(1),
	}

	first, _, err := Render(model.KindOrder, records, model.FormatImport)
	require.NoError(t, err)
	second, _, err := Render(model.KindOrder, records, model.FormatImport)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("render output differs between runs:\n%s", diff)
	}
}

func TestRenderLegacyOneRowPerItemFanout(t *testing.T) {
	records := []model.Record{
		testOrder(1,
			model.LineItem{Name: "Shirt", SKU: "S-1", Quantity: 1, UnitPrice: 10, Total: 10},
			model.LineItem{Name: "Hat", SKU: "H-1", Quantity: 2, UnitPrice: 5, Total: 10},
		),
		testOrder(2,
			model.LineItem{Name: "Mug", SKU: "M-1", Quantity: 1, UnitPrice: 8, Total: 8},
		),
	}

	out, recordErrs, err := Render(model.KindOrder, records, model.FormatLegacyOneRowPerItem)
	require.NoError(t, err)
	require.Empty(t, recordErrs)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)

	// 1 header + 3 data rows (2 items + 1 item).
	require.Len(t, rows, 4)
	assert.Equal(t, "Shirt", rows[1][len(orderLegacyColumns)])
	assert.Equal(t, "Hat", rows[2][len(orderLegacyColumns)])
	assert.Equal(t, "Mug", rows[3][len(orderLegacyColumns)])

	// Order-level columns repeat per line item.
	assert.Equal(t, rows[1][0], rows[2][0])
}

func TestRenderLegacySingleColumnConcatenatesItems(t *testing.T) {
	records := []model.Record{
		testOrder(1,
			model.LineItem{Name: "Shirt", Quantity: 1},
			model.LineItem{Name: "Hat", Quantity: 2},
		),
	}

	out, _, err := Render(model.KindOrder, records, model.FormatLegacySingleColumn)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Shirt x 1; Hat x 2", rows[1][len(rows[1])-1])
}

func TestRenderSkipsRecordsWithMissingPayload(t *testing.T) {
	records := []model.Record{
		testOrder(1),
		{ID: 2, Kind: model.KindOrder}, // payload missing
		testOrder(3),
	}

	out, recordErrs, err := Render(model.KindOrder, records, model.FormatDefault)
	require.NoError(t, err)

	require.Len(t, recordErrs, 1)
	assert.Equal(t, int64(2), recordErrs[0].RecordID)
	assert.Equal(t, model.ErrKindSerialization, recordErrs[0].Kind)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3) // header + 2 surviving records
}

func TestRenderCustomerFormats(t *testing.T) {
	record := model.Record{
		ID:   7,
		Kind: model.KindCustomer,
		Customer: &model.Customer{
			ID:        7,
			Username:  "jdoe",
			Email:     "jdoe@example.com",
			FirstName: "Jamie",
			LastName:  "Doe",
			CreatedAt: time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC),
		},
	}

	for _, f := range []model.ExportFormat{model.FormatDefault, model.FormatImport, model.FormatLegacy} {
		t.Run(string(f), func(t *testing.T) {
			out, recordErrs, err := Render(model.KindCustomer, []model.Record{record}, f)
			require.NoError(t, err)
			require.Empty(t, recordErrs)

			rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
			require.NoError(t, err)
			require.Len(t, rows, 2)

			columns, err := Columns(model.KindCustomer, f)
			require.NoError(t, err)
			assert.Equal(t, columns, rows[0])
			assert.Len(t, rows[1], len(columns))
		})
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	_, _, err := Render(model.KindCustomer, nil, model.FormatLegacySingleColumn)
	assert.Error(t, err)
}
