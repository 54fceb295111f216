package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertSale = `
INSERT INTO sale (sale_date, subtotal, discount, total, customer_id, branch_id, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, sale_date, subtotal, discount, total, canceled, customer_id, branch_id,
          created_by, created_at, edited_by, edited_at, canceled_by, canceled_at
`

// InsertSaleParams carries values for a new sale row. Monetary amounts are in
// minor units; totals are expected to be computed before insertion.
type InsertSaleParams struct {
	SaleDate   pgtype.Timestamptz
	Subtotal   int64
	Discount   int64
	Total      int64
	CustomerID pgtype.UUID
	BranchID   pgtype.UUID
	CreatedBy  pgtype.UUID
}

func (q *Queries) InsertSale(ctx context.Context, arg InsertSaleParams) (Sale, error) {
	row := q.db.QueryRow(ctx, insertSale,
		arg.SaleDate, arg.Subtotal, arg.Discount, arg.Total,
		arg.CustomerID, arg.BranchID, arg.CreatedBy,
	)
	return scanSale(row)
}

const getSaleByID = `
SELECT id, sale_date, subtotal, discount, total, canceled, customer_id, branch_id,
       created_by, created_at, edited_by, edited_at, canceled_by, canceled_at
FROM sale WHERE id = $1
`

func (q *Queries) GetSaleByID(ctx context.Context, id pgtype.UUID) (Sale, error) {
	return scanSale(q.db.QueryRow(ctx, getSaleByID, id))
}

const listSales = `
SELECT id, sale_date, subtotal, discount, total, canceled, customer_id, branch_id,
       created_by, created_at, edited_by, edited_at, canceled_by, canceled_at
FROM sale
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`

// ListSalesParams carries pagination bounds for ListSales.
type ListSalesParams struct {
	LimitValue  int32
	OffsetValue int32
}

func (q *Queries) ListSales(ctx context.Context, arg ListSalesParams) ([]Sale, error) {
	rows, err := q.db.Query(ctx, listSales, arg.LimitValue, arg.OffsetValue)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const countSales = `
SELECT count(*) FROM sale
`

func (q *Queries) CountSales(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countSales)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteSale = `
DELETE FROM sale WHERE id = $1
`

// DeleteSale removes a sale. Line items go with it via the cascading foreign
// key on product_sale.sale_id.
func (q *Queries) DeleteSale(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteSale, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const markSaleCanceled = `
UPDATE sale
SET canceled = TRUE, canceled_by = $2, canceled_at = now()
WHERE id = $1 AND NOT canceled
RETURNING id, sale_date, subtotal, discount, total, canceled, customer_id, branch_id,
          created_by, created_at, edited_by, edited_at, canceled_by, canceled_at
`

// MarkSaleCanceledParams identifies the sale and the acting user.
type MarkSaleCanceledParams struct {
	ID         pgtype.UUID
	CanceledBy pgtype.UUID
}

func (q *Queries) MarkSaleCanceled(ctx context.Context, arg MarkSaleCanceledParams) (Sale, error) {
	return scanSale(q.db.QueryRow(ctx, markSaleCanceled, arg.ID, arg.CanceledBy))
}

const updateSaleTotals = `
UPDATE sale
SET subtotal = $2, discount = $3, total = $4, edited_by = $5, edited_at = now()
WHERE id = $1
RETURNING id, sale_date, subtotal, discount, total, canceled, customer_id, branch_id,
          created_by, created_at, edited_by, edited_at, canceled_by, canceled_at
`

// UpdateSaleTotalsParams carries recomputed totals after a line-item change.
type UpdateSaleTotalsParams struct {
	ID       pgtype.UUID
	Subtotal int64
	Discount int64
	Total    int64
	EditedBy pgtype.UUID
}

func (q *Queries) UpdateSaleTotals(ctx context.Context, arg UpdateSaleTotalsParams) (Sale, error) {
	return scanSale(q.db.QueryRow(ctx, updateSaleTotals,
		arg.ID, arg.Subtotal, arg.Discount, arg.Total, arg.EditedBy,
	))
}

const insertProductSale = `
INSERT INTO product_sale (sale_id, product_id, qty, unit_price, line_total)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, sale_id, product_id, qty, unit_price, line_total
`

// InsertProductSaleParams carries values for one line item of a sale.
type InsertProductSaleParams struct {
	SaleID    pgtype.UUID
	ProductID pgtype.UUID
	Qty       int32
	UnitPrice int64
	LineTotal int64
}

func (q *Queries) InsertProductSale(ctx context.Context, arg InsertProductSaleParams) (ProductSale, error) {
	row := q.db.QueryRow(ctx, insertProductSale,
		arg.SaleID, arg.ProductID, arg.Qty, arg.UnitPrice, arg.LineTotal,
	)
	return scanProductSale(row)
}

const listProductSalesBySale = `
SELECT id, sale_id, product_id, qty, unit_price, line_total
FROM product_sale
WHERE sale_id = $1
ORDER BY id
`

func (q *Queries) ListProductSalesBySale(ctx context.Context, saleID pgtype.UUID) ([]ProductSale, error) {
	rows, err := q.db.Query(ctx, listProductSalesBySale, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ProductSale
	for rows.Next() {
		ps, err := scanProductSale(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ps)
	}
	return items, rows.Err()
}

const getProductSaleByID = `
SELECT id, sale_id, product_id, qty, unit_price, line_total
FROM product_sale WHERE id = $1
`

func (q *Queries) GetProductSaleByID(ctx context.Context, id pgtype.UUID) (ProductSale, error) {
	return scanProductSale(q.db.QueryRow(ctx, getProductSaleByID, id))
}

const deleteProductSale = `
DELETE FROM product_sale WHERE id = $1
`

func (q *Queries) DeleteProductSale(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteProductSale, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSale(row scanner) (Sale, error) {
	var s Sale
	err := row.Scan(
		&s.ID, &s.SaleDate, &s.Subtotal, &s.Discount, &s.Total, &s.Canceled,
		&s.CustomerID, &s.BranchID,
		&s.CreatedBy, &s.CreatedAt, &s.EditedBy, &s.EditedAt, &s.CanceledBy, &s.CanceledAt,
	)
	return s, err
}

func scanProductSale(row scanner) (ProductSale, error) {
	var ps ProductSale
	err := row.Scan(&ps.ID, &ps.SaleID, &ps.ProductID, &ps.Qty, &ps.UnitPrice, &ps.LineTotal)
	return ps, err
}
