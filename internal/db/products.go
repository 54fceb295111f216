package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertProduct = `
INSERT INTO product (name, price, stock)
VALUES ($1, $2, $3)
RETURNING id, name, price, stock
`

// InsertProductParams carries values for a new catalog entry.
type InsertProductParams struct {
	Name  string
	Price int64
	Stock int32
}

func (q *Queries) InsertProduct(ctx context.Context, arg InsertProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, insertProduct, arg.Name, arg.Price, arg.Stock)
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	return p, err
}

const getProductByID = `
SELECT id, name, price, stock FROM product WHERE id = $1
`

func (q *Queries) GetProductByID(ctx context.Context, id pgtype.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, getProductByID, id)
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	return p, err
}

const listProducts = `
SELECT id, name, price, stock FROM product
ORDER BY name
LIMIT $1 OFFSET $2
`

// ListProductsParams carries pagination bounds for ListProducts.
type ListProductsParams struct {
	LimitValue  int32
	OffsetValue int32
}

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts, arg.LimitValue, arg.OffsetValue)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const countProducts = `
SELECT count(*) FROM product
`

func (q *Queries) CountProducts(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countProducts)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteProduct = `
DELETE FROM product WHERE id = $1
`

func (q *Queries) DeleteProduct(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteProduct, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
