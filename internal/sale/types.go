package sale

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-vendas/internal/pricing"
)

// LineItem is one proposed product-quantity entry of a sale, prior to
// validation. Monetary values are minor units.
type LineItem struct {
	ProductID pgtype.UUID
	Qty       int
	UnitPrice pricing.Money
	LineTotal pricing.Money
}

// Totals aggregates the computed pricing components of a sale. Total is the
// post-discount amount; Discount is an amount, not a percentage.
type Totals struct {
	Subtotal pricing.Money
	Discount pricing.Money
	Total    pricing.Money
}
