package sale

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-vendas/internal/common"
	"github.com/noah-isme/backend-vendas/internal/db"
	"github.com/noah-isme/backend-vendas/internal/pricing"
)

type fakeCatalog struct {
	products map[string]db.Product
}

func (f *fakeCatalog) GetProductByID(_ context.Context, id pgtype.UUID) (db.Product, error) {
	p, ok := f.products[common.UUIDString(id)]
	if !ok {
		return db.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func mustUUID(t *testing.T) pgtype.UUID {
	t.Helper()
	id, err := common.ToUUID(uuid.NewString())
	require.NoError(t, err)
	return id
}

func newTotalsService(catalog ProductGetter) *Service {
	return &Service{Catalog: catalog, Logger: zerolog.Nop()}
}

func TestComputeTotalsAppliesTierDiscountPerLine(t *testing.T) {
	svc := newTotalsService(nil)

	// Five units at 100.00 fall in the ten percent tier.
	got, err := svc.ComputeTotals(context.Background(), []LineItem{
		{ProductID: mustUUID(t), Qty: 5, UnitPrice: 10_000, LineTotal: 50_000},
	})
	require.NoError(t, err)
	require.Equal(t, Totals{Subtotal: 50_000, Discount: 5_000, Total: 45_000}, got)
}

func TestComputeTotalsMixedTiers(t *testing.T) {
	svc := newTotalsService(nil)

	got, err := svc.ComputeTotals(context.Background(), []LineItem{
		{ProductID: mustUUID(t), Qty: 10, UnitPrice: 700, LineTotal: 7_000},
		{ProductID: mustUUID(t), Qty: 1, UnitPrice: 300, LineTotal: 300},
	})
	require.NoError(t, err)
	require.Equal(t, pricing.Money(7_300), got.Subtotal)
	require.Equal(t, pricing.Money(1_400), got.Discount, "only the ten-unit line is discounted")
	require.Equal(t, pricing.Money(5_900), got.Total)
}

func TestComputeTotalsTwoBulkLines(t *testing.T) {
	svc := newTotalsService(nil)

	// Ten Guaranas and ten Aguas, both in the twenty percent tier.
	got, err := svc.ComputeTotals(context.Background(), []LineItem{
		{ProductID: mustUUID(t), Qty: 10, UnitPrice: 700, LineTotal: 7_000},
		{ProductID: mustUUID(t), Qty: 10, UnitPrice: 300, LineTotal: 3_000},
	})
	require.NoError(t, err)
	require.Equal(t, Totals{Subtotal: 10_000, Discount: 2_000, Total: 8_000}, got)
}

func TestComputeTotalsRejectsInvalidItems(t *testing.T) {
	svc := newTotalsService(nil)

	_, err := svc.ComputeTotals(context.Background(), []LineItem{
		{ProductID: mustUUID(t), Qty: 21, UnitPrice: 100, LineTotal: 2_100},
	})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Violations, 1)
	require.Equal(t, CodeInvalidQuantity, vErr.Violations[0].Code)
}

func TestComputeTotalsRejectsEmptySale(t *testing.T) {
	svc := newTotalsService(nil)

	_, err := svc.ComputeTotals(context.Background(), nil)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, CodeEmptySale, vErr.Violations[0].Code)
}

func TestComputeTotalsUnknownProductIsSoft(t *testing.T) {
	svc := newTotalsService(&fakeCatalog{products: map[string]db.Product{}})

	got, err := svc.ComputeTotals(context.Background(), []LineItem{
		{ProductID: mustUUID(t), Qty: 2, UnitPrice: 500, LineTotal: 1_000},
	})
	require.NoError(t, err, "missing catalog product must not fail the sale")
	require.Equal(t, Totals{Subtotal: 1_000, Discount: 0, Total: 1_000}, got)
}

func TestComputeTotalsPriceDriftIsSoft(t *testing.T) {
	productID := mustUUID(t)
	svc := newTotalsService(&fakeCatalog{products: map[string]db.Product{
		common.UUIDString(productID): {ID: productID, Name: "Guarana", Price: 700},
	}})

	got, err := svc.ComputeTotals(context.Background(), []LineItem{
		{ProductID: productID, Qty: 4, UnitPrice: 650, LineTotal: 2_600},
	})
	require.NoError(t, err)
	require.Equal(t, pricing.Money(2_600), got.Subtotal, "submitted price wins over the catalog price")
	require.Equal(t, pricing.Money(260), got.Discount)
}

type failingCatalog struct{}

func (failingCatalog) GetProductByID(context.Context, pgtype.UUID) (db.Product, error) {
	return db.Product{}, errors.New("connection reset")
}

func TestComputeTotalsCatalogOutageIsSoft(t *testing.T) {
	svc := newTotalsService(failingCatalog{})

	got, err := svc.ComputeTotals(context.Background(), []LineItem{
		{ProductID: mustUUID(t), Qty: 1, UnitPrice: 300, LineTotal: 300},
	})
	require.NoError(t, err)
	require.Equal(t, pricing.Money(300), got.Total)
}

func TestRepriceItemsAppliesTierPerLine(t *testing.T) {
	got, err := repriceItems([]db.ProductSale{
		{ID: mustUUID(t), Qty: 10, UnitPrice: 700, LineTotal: 7_000},
		{ID: mustUUID(t), Qty: 2, UnitPrice: 300, LineTotal: 600},
	})
	require.NoError(t, err)
	require.Equal(t, Totals{Subtotal: 7_600, Discount: 1_400, Total: 6_200}, got)
}

func TestRepriceItemsRejectsStoredQuantityOutOfRange(t *testing.T) {
	_, err := repriceItems([]db.ProductSale{
		{ID: mustUUID(t), Qty: 21, UnitPrice: 100, LineTotal: 2_100},
	})
	require.ErrorIs(t, err, pricing.ErrQuantityOutOfRange)
}
