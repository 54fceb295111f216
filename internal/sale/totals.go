package sale

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-vendas/internal/common"
	"github.com/noah-isme/backend-vendas/internal/db"
	"github.com/noah-isme/backend-vendas/internal/obs"
	"github.com/noah-isme/backend-vendas/internal/pricing"
)

// ProductGetter looks up catalog products referenced by sale items. Satisfied
// by *db.Queries and by the catalog service.
type ProductGetter interface {
	GetProductByID(ctx context.Context, id pgtype.UUID) (db.Product, error)
}

// ComputeTotals validates the items and prices the sale without persisting
// anything. Each line gets its quantity tier discount, and the discounted
// lines are summed.
//
// Items referencing unknown products, or quoting a unit price that differs
// from the catalog, are priced as submitted; those findings are logged and
// counted but do not fail the sale.
func (s *Service) ComputeTotals(ctx context.Context, items []LineItem) (Totals, error) {
	if violations := ValidateItems(items); len(violations) > 0 {
		return Totals{}, &ValidationError{Violations: violations}
	}

	var t Totals
	for _, item := range items {
		s.checkCatalog(ctx, item)

		bps, err := pricing.DiscountBps(item.Qty)
		if err != nil {
			return Totals{}, err
		}
		discount := pricing.LineDiscount(item.LineTotal, bps)
		t.Subtotal += item.LineTotal
		t.Discount += discount
		t.Total += item.LineTotal - discount
	}
	return t, nil
}

// repriceItems recomputes sale totals from persisted line items, applying the
// same per-line tier discount used at creation. Items are trusted to have been
// validated when they were stored; a quantity outside the tier range means the
// row was corrupted and is reported as an error.
func repriceItems(items []db.ProductSale) (Totals, error) {
	var t Totals
	for _, ps := range items {
		bps, err := pricing.DiscountBps(int(ps.Qty))
		if err != nil {
			return Totals{}, fmt.Errorf("reprice item %s: %w", common.UUIDString(ps.ID), err)
		}
		discount := pricing.LineDiscount(ps.LineTotal, bps)
		t.Subtotal += ps.LineTotal
		t.Discount += discount
		t.Total += ps.LineTotal - discount
	}
	return t, nil
}

// checkCatalog cross-references one item against the catalog. Lookup failures
// other than a missing row are also treated as soft; the sale proceeds on the
// submitted figures.
func (s *Service) checkCatalog(ctx context.Context, item LineItem) {
	if s.Catalog == nil {
		return
	}
	product, err := s.Catalog.GetProductByID(ctx, item.ProductID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		s.softWarn("product_not_found", item, 0)
	case err != nil:
		s.Logger.Warn().Err(err).
			Str("product_id", common.UUIDString(item.ProductID)).
			Msg("catalog lookup failed, pricing sale from submitted values")
	case product.Price != item.UnitPrice:
		s.softWarn("price_mismatch", item, product.Price)
	}
}

func (s *Service) softWarn(reason string, item LineItem, catalogPrice pricing.Money) {
	evt := s.Logger.Warn().
		Str("reason", reason).
		Str("product_id", common.UUIDString(item.ProductID)).
		Int64("unit_price", item.UnitPrice)
	if reason == "price_mismatch" {
		evt = evt.Int64("catalog_price", catalogPrice)
	}
	evt.Msg("sale item catalog check")
	if obs.SaleSoftWarningsTotal != nil {
		obs.SaleSoftWarningsTotal.WithLabelValues(reason).Inc()
	}
}
