package db

import "github.com/jackc/pgx/v5/pgtype"

// Branch is a store branch where sales take place.
type Branch struct {
	ID   pgtype.UUID
	Name string
}

// Product is a catalog entry. Price is stored in minor units.
type Product struct {
	ID    pgtype.UUID
	Name  string
	Price int64
	Stock int32
}

// Sale is one completed transaction. Total holds the post-discount amount and
// Discount the discount amount, both in minor units.
type Sale struct {
	ID         pgtype.UUID
	SaleDate   pgtype.Timestamptz
	Subtotal   int64
	Discount   int64
	Total      int64
	Canceled   bool
	CustomerID pgtype.UUID
	BranchID   pgtype.UUID
	CreatedBy  pgtype.UUID
	CreatedAt  pgtype.Timestamptz
	EditedBy   pgtype.UUID
	EditedAt   pgtype.Timestamptz
	CanceledBy pgtype.UUID
	CanceledAt pgtype.Timestamptz
}

// ProductSale is one line item of a sale.
type ProductSale struct {
	ID        pgtype.UUID
	SaleID    pgtype.UUID
	ProductID pgtype.UUID
	Qty       int32
	UnitPrice int64
	LineTotal int64
}

// DomainEvent is a persisted record of something that happened to an aggregate.
type DomainEvent struct {
	ID          pgtype.UUID
	Topic       string
	AggregateID pgtype.UUID
	Payload     []byte
	OccurredAt  pgtype.Timestamptz
}
