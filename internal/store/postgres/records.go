package postgres

import (
	"context"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"

	dberr "github.com/shopops/order-csv-exporter/internal/errors"
	"github.com/shopops/order-csv-exporter/internal/model"
)

// Records reads export candidates from the shop tables. Results are ordered
// by id so a run over the same candidate set is stable.
type Records struct {
	storage *Store
}

func (r *Records) Query(ctx context.Context, filter model.ExportFilter, unexportedOnly bool) ([]model.Record, error) {
	if filter.Kind == model.KindCustomer {
		return r.queryCustomers(ctx, filter, unexportedOnly)
	}
	return r.queryOrders(ctx, filter, unexportedOnly)
}

func (r *Records) queryOrders(ctx context.Context, filter model.ExportFilter, unexportedOnly bool) ([]model.Record, error) {
	db, err := r.storage.Database()
	if err != nil {
		return nil, dberr.NewDBInternalError("query_orders", err)
	}

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	query := psql.
		Select(
			"o.id",
			"o.number",
			"o.created_at",
			"o.status",
			"o.shipping_total",
			"o.shipping_tax",
			"o.fee_total",
			"o.fee_tax",
			"o.tax_total",
			"o.discount_total",
			"o.total",
			"o.payment_method",
			"o.shipping_method",
			"o.customer_id",
			"o.customer_note",
			"o.billing",
			"o.shipping",
			`COALESCE(
				(SELECT json_agg(json_build_object(
					'name', i.name,
					'sku', i.sku,
					'quantity', i.quantity,
					'unit_price', i.unit_price,
					'total', i.total
				) ORDER BY i.id)
				FROM exporter.order_items i WHERE i.order_id = o.id),
				'[]'
			) AS items`,
		).
		From("exporter.orders o").
		OrderBy("o.id ASC")

	query = applyOrderFilter(query, filter)
	if unexportedOnly {
		query = query.Join(
			"exporter.export_state s ON s.kind = 'order' AND s.record_id = o.id AND s.exported = false")
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, dberr.NewDBInternalError("query_orders", err)
	}

	rows, err := db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, dberr.NewDBInternalError("query_orders", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var o model.Order
		var billing, shipping, items []byte
		err := rows.Scan(
			&o.ID,
			&o.Number,
			&o.CreatedAt,
			&o.Status,
			&o.ShippingTotal,
			&o.ShippingTax,
			&o.FeeTotal,
			&o.FeeTax,
			&o.TaxTotal,
			&o.DiscountTotal,
			&o.Total,
			&o.PaymentMethod,
			&o.ShippingMethod,
			&o.CustomerID,
			&o.CustomerNote,
			&billing,
			&shipping,
			&items,
		)
		if err != nil {
			return nil, dberr.NewDBInternalError("query_orders", err)
		}
		if err := unmarshalOrderPayload(&o, billing, shipping, items); err != nil {
			return nil, dberr.NewDBInternalError("query_orders", err)
		}
		records = append(records, model.Record{ID: o.ID, Kind: model.KindOrder, Order: &o})
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.NewDBInternalError("query_orders", err)
	}
	return records, nil
}

func (r *Records) queryCustomers(ctx context.Context, filter model.ExportFilter, unexportedOnly bool) ([]model.Record, error) {
	db, err := r.storage.Database()
	if err != nil {
		return nil, dberr.NewDBInternalError("query_customers", err)
	}

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	query := psql.
		Select(
			"c.id",
			"c.username",
			"c.email",
			"c.first_name",
			"c.last_name",
			"c.created_at",
			"c.billing",
			"c.shipping",
		).
		From("exporter.customers c").
		OrderBy("c.id ASC")

	if len(filter.IDs) > 0 {
		query = query.Where(sq.Eq{"c.id": filter.IDs})
	} else {
		if filter.StartDate != nil {
			query = query.Where(sq.GtOrEq{"c.created_at": *filter.StartDate})
		}
		if filter.EndDate != nil {
			query = query.Where(sq.LtOrEq{"c.created_at": *filter.EndDate})
		}
	}
	if unexportedOnly {
		query = query.Join(
			"exporter.export_state s ON s.kind = 'customer' AND s.record_id = c.id AND s.exported = false")
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, dberr.NewDBInternalError("query_customers", err)
	}

	rows, err := db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, dberr.NewDBInternalError("query_customers", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var c model.Customer
		var billing, shipping []byte
		err := rows.Scan(
			&c.ID,
			&c.Username,
			&c.Email,
			&c.FirstName,
			&c.LastName,
			&c.CreatedAt,
			&billing,
			&shipping,
		)
		if err != nil {
			return nil, dberr.NewDBInternalError("query_customers", err)
		}
		if err := json.Unmarshal(billing, &c.Billing); err != nil {
			return nil, dberr.NewDBInternalError("query_customers", err)
		}
		if err := json.Unmarshal(shipping, &c.Shipping); err != nil {
			return nil, dberr.NewDBInternalError("query_customers", err)
		}
		records = append(records, model.Record{ID: c.ID, Kind: model.KindCustomer, Customer: &c})
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.NewDBInternalError("query_customers", err)
	}
	return records, nil
}

func applyOrderFilter(query sq.SelectBuilder, filter model.ExportFilter) sq.SelectBuilder {
	if len(filter.IDs) > 0 {
		// Explicit ids override status/date filtering.
		return query.Where(sq.Eq{"o.id": filter.IDs})
	}
	if len(filter.Statuses) > 0 {
		query = query.Where(sq.Eq{"o.status": filter.Statuses})
	}
	if filter.StartDate != nil {
		query = query.Where(sq.GtOrEq{"o.created_at": *filter.StartDate})
	}
	if filter.EndDate != nil {
		query = query.Where(sq.LtOrEq{"o.created_at": *filter.EndDate})
	}
	return query
}

func unmarshalOrderPayload(o *model.Order, billing, shipping, items []byte) error {
	if err := json.Unmarshal(billing, &o.Billing); err != nil {
		return err
	}
	if err := json.Unmarshal(shipping, &o.Shipping); err != nil {
		return err
	}
	var rawItems []struct {
		Name      string  `json:"name"`
		SKU       string  `json:"sku"`
		Quantity  int     `json:"quantity"`
		UnitPrice float64 `json:"unit_price"`
		Total     float64 `json:"total"`
	}
	if err := json.Unmarshal(items, &rawItems); err != nil {
		return err
	}
	for _, item := range rawItems {
		o.Items = append(o.Items, model.LineItem{
			Name:      item.Name,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
		})
	}
	return nil
}
