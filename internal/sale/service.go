package sale

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-vendas/internal/common"
	"github.com/noah-isme/backend-vendas/internal/db"
	"github.com/noah-isme/backend-vendas/internal/events"
	"github.com/noah-isme/backend-vendas/internal/obs"
	"github.com/noah-isme/backend-vendas/internal/pricing"
)

// Querier is the subset of db.Queries the sale service reads outside of a
// transaction. Writes that must be atomic go through Pool instead.
type Querier interface {
	GetSaleByID(ctx context.Context, id pgtype.UUID) (db.Sale, error)
	ListSales(ctx context.Context, arg db.ListSalesParams) ([]db.Sale, error)
	CountSales(ctx context.Context) (int64, error)
	DeleteSale(ctx context.Context, id pgtype.UUID) (int64, error)
	MarkSaleCanceled(ctx context.Context, arg db.MarkSaleCanceledParams) (db.Sale, error)
	ListProductSalesBySale(ctx context.Context, saleID pgtype.UUID) ([]db.ProductSale, error)
	GetProductSaleByID(ctx context.Context, id pgtype.UUID) (db.ProductSale, error)
}

type Service struct {
	Q        Querier
	Pool     *pgxpool.Pool
	Catalog  ProductGetter
	Events   *events.Bus
	Validate *validator.Validate
	Currency string
	Logger   zerolog.Logger
}

type ItemInput struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Qty       int    `json:"qty"`
	UnitPrice int64  `json:"unitPrice"`
	LineTotal int64  `json:"lineTotal"`
}

type CreateInput struct {
	SaleDate   time.Time   `json:"saleDate" validate:"required"`
	CustomerID string      `json:"customerId" validate:"required,uuid"`
	BranchID   string      `json:"branchId" validate:"required,uuid"`
	CreatedBy  string      `json:"createdBy" validate:"required,uuid"`
	Items      []ItemInput `json:"items" validate:"dive"`
}

type ItemOutput struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Qty       int32  `json:"qty"`
	UnitPrice int64  `json:"unitPrice"`
	LineTotal int64  `json:"lineTotal"`
}

type Output struct {
	ID         string       `json:"id"`
	SaleDate   time.Time    `json:"saleDate"`
	Subtotal   int64        `json:"subtotal"`
	Discount   int64        `json:"discount"`
	Total      int64        `json:"total"`
	Currency   string       `json:"currency,omitempty"`
	Canceled   bool         `json:"canceled"`
	CustomerID string       `json:"customerId"`
	BranchID   string       `json:"branchId"`
	CreatedBy  string       `json:"createdBy"`
	CreatedAt  time.Time    `json:"createdAt"`
	Items      []ItemOutput `json:"items,omitempty"`
}

var (
	errNotFound        = common.NewAppError("NOT_FOUND", "sale not found", http.StatusNotFound, nil)
	errItemNotFound    = common.NewAppError("NOT_FOUND", "sale item not found", http.StatusNotFound, nil)
	errAlreadyCanceled = common.NewAppError("ALREADY_CANCELED", "sale is already canceled", http.StatusConflict, nil)
	errLastItem        = common.NewAppError("LAST_ITEM", "a sale cannot be left without items", http.StatusConflict, nil)
)

// Create validates the payload, prices every line item with its quantity tier
// discount, and persists the sale and its items in a single transaction. The
// sale materialises fully or not at all.
func (s *Service) Create(ctx context.Context, in CreateInput) (Output, error) {
	if s == nil {
		return Output{}, errors.New("sale service not configured")
	}
	if s.Validate != nil {
		if err := s.Validate.Struct(in); err != nil {
			return Output{}, common.NewAppError("BAD_REQUEST", err.Error(), http.StatusBadRequest, err)
		}
	}
	customerID, err := common.ToUUID(in.CustomerID)
	if err != nil {
		return Output{}, common.NewAppError("BAD_REQUEST", "invalid customer id", http.StatusBadRequest, err)
	}
	branchID, err := common.ToUUID(in.BranchID)
	if err != nil {
		return Output{}, common.NewAppError("BAD_REQUEST", "invalid branch id", http.StatusBadRequest, err)
	}
	createdBy, err := common.ToUUID(in.CreatedBy)
	if err != nil {
		return Output{}, common.NewAppError("BAD_REQUEST", "invalid creator id", http.StatusBadRequest, err)
	}

	items := make([]LineItem, 0, len(in.Items))
	for _, it := range in.Items {
		pID, err := common.ToUUID(it.ProductID)
		if err != nil {
			return Output{}, common.NewAppError("BAD_REQUEST", fmt.Sprintf("invalid product id %q", it.ProductID), http.StatusBadRequest, err)
		}
		items = append(items, LineItem{
			ProductID: pID,
			Qty:       it.Qty,
			UnitPrice: pricing.Money(it.UnitPrice),
			LineTotal: pricing.Money(it.LineTotal),
		})
	}

	totals, err := s.ComputeTotals(ctx, items)
	if err != nil {
		if obs.SalesCreatedTotal != nil {
			obs.SalesCreatedTotal.WithLabelValues("rejected").Inc()
		}
		return Output{}, err
	}

	if s.Pool == nil {
		return Output{}, errors.New("sale service not configured")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Output{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	qtx := db.New(tx)
	row, err := qtx.InsertSale(ctx, db.InsertSaleParams{
		SaleDate:   pgtype.Timestamptz{Time: in.SaleDate, Valid: true},
		Subtotal:   totals.Subtotal,
		Discount:   totals.Discount,
		Total:      totals.Total,
		CustomerID: customerID,
		BranchID:   branchID,
		CreatedBy:  createdBy,
	})
	if err != nil {
		return Output{}, err
	}
	saved := make([]db.ProductSale, 0, len(items))
	for _, item := range items {
		ps, err := qtx.InsertProductSale(ctx, db.InsertProductSaleParams{
			SaleID:    row.ID,
			ProductID: item.ProductID,
			Qty:       int32(item.Qty),
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
		if err != nil {
			return Output{}, err
		}
		saved = append(saved, ps)
	}
	if err := tx.Commit(ctx); err != nil {
		return Output{}, err
	}

	if obs.SalesCreatedTotal != nil {
		obs.SalesCreatedTotal.WithLabelValues("created").Inc()
	}
	if obs.SaleItemsHistogram != nil {
		obs.SaleItemsHistogram.Observe(float64(len(items)))
	}
	s.emit(ctx, events.TopicSaleCreated, row.ID, map[string]any{
		"saleId":    common.UUIDString(row.ID),
		"createdBy": in.CreatedBy,
		"createdAt": row.CreatedAt.Time,
		"total":     totals.Total,
	})
	return s.toOutput(row, saved), nil
}

// Get returns one sale with its line items.
func (s *Service) Get(ctx context.Context, saleID pgtype.UUID) (Output, error) {
	row, err := s.Q.GetSaleByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Output{}, errNotFound
		}
		return Output{}, err
	}
	items, err := s.Q.ListProductSalesBySale(ctx, saleID)
	if err != nil {
		return Output{}, err
	}
	return s.toOutput(row, items), nil
}

// List returns a page of sales, newest first, plus the overall count. Line
// items are not expanded on the list view.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Output, int64, error) {
	total, err := s.Q.CountSales(ctx)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.Q.ListSales(ctx, db.ListSalesParams{
		LimitValue:  int32(perPage),
		OffsetValue: int32((page - 1) * perPage),
	})
	if err != nil {
		return nil, 0, err
	}
	out := make([]Output, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.toOutput(row, nil))
	}
	return out, total, nil
}

// Delete removes a sale and, through the cascading foreign key, its items.
func (s *Service) Delete(ctx context.Context, saleID pgtype.UUID) error {
	affected, err := s.Q.DeleteSale(ctx, saleID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errNotFound
	}
	return nil
}

// Cancel marks a sale canceled. The rows stay; cancellation is a status, not
// a deletion. Canceling twice is a conflict.
func (s *Service) Cancel(ctx context.Context, saleID, canceledBy pgtype.UUID) (Output, error) {
	row, err := s.Q.MarkSaleCanceled(ctx, db.MarkSaleCanceledParams{ID: saleID, CanceledBy: canceledBy})
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return Output{}, err
		}
		existing, getErr := s.Q.GetSaleByID(ctx, saleID)
		if getErr == nil && existing.Canceled {
			return Output{}, errAlreadyCanceled
		}
		return Output{}, errNotFound
	}
	if obs.SalesCanceledTotal != nil {
		obs.SalesCanceledTotal.Inc()
	}
	s.emit(ctx, events.TopicSaleCanceled, row.ID, map[string]any{
		"saleId":     common.UUIDString(row.ID),
		"canceledBy": common.UUIDString(canceledBy),
		"canceledAt": row.CanceledAt.Time,
	})
	return s.toOutput(row, nil), nil
}

// CancelItem removes one line item and reprices the sale from the remaining
// items, all inside one transaction. Removing the final item is refused; a
// sale with no items is not a valid sale, cancel the sale instead.
func (s *Service) CancelItem(ctx context.Context, saleID, itemID, editedBy pgtype.UUID) (Output, error) {
	if s == nil || s.Q == nil {
		return Output{}, errors.New("sale service not configured")
	}
	sl, err := s.Q.GetSaleByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Output{}, errNotFound
		}
		return Output{}, err
	}
	if sl.Canceled {
		return Output{}, errAlreadyCanceled
	}
	item, err := s.Q.GetProductSaleByID(ctx, itemID)
	if err != nil || !common.UUIDEqual(item.SaleID, saleID) {
		if err == nil || errors.Is(err, pgx.ErrNoRows) {
			return Output{}, errItemNotFound
		}
		return Output{}, err
	}
	all, err := s.Q.ListProductSalesBySale(ctx, saleID)
	if err != nil {
		return Output{}, err
	}
	if len(all) <= 1 {
		return Output{}, errLastItem
	}

	if s.Pool == nil {
		return Output{}, errors.New("sale service not configured")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Output{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	qtx := db.New(tx)

	if _, err := qtx.DeleteProductSale(ctx, itemID); err != nil {
		return Output{}, err
	}
	// Re-list inside the transaction so the recompute sees exactly what the
	// commit will persist.
	remaining, err := qtx.ListProductSalesBySale(ctx, saleID)
	if err != nil {
		return Output{}, err
	}
	if len(remaining) == 0 {
		return Output{}, errLastItem
	}
	totals, err := repriceItems(remaining)
	if err != nil {
		return Output{}, err
	}
	row, err := qtx.UpdateSaleTotals(ctx, db.UpdateSaleTotalsParams{
		ID:       saleID,
		Subtotal: totals.Subtotal,
		Discount: totals.Discount,
		Total:    totals.Total,
		EditedBy: editedBy,
	})
	if err != nil {
		return Output{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Output{}, err
	}

	s.emit(ctx, events.TopicSaleItemCanceled, saleID, map[string]any{
		"saleId":    common.UUIDString(saleID),
		"itemId":    common.UUIDString(itemID),
		"productId": common.UUIDString(item.ProductID),
		"editedBy":  common.UUIDString(editedBy),
	})
	s.emit(ctx, events.TopicSaleModified, saleID, map[string]any{
		"saleId":   common.UUIDString(saleID),
		"editedBy": common.UUIDString(editedBy),
		"subtotal": totals.Subtotal,
		"discount": totals.Discount,
		"total":    totals.Total,
	})
	return s.toOutput(row, remaining), nil
}

func (s *Service) emit(ctx context.Context, topic string, aggregateID pgtype.UUID, payload map[string]any) {
	if s.Events == nil {
		return
	}
	if _, err := s.Events.Emit(ctx, topic, aggregateID, payload); err != nil {
		s.Logger.Error().Err(err).Str("topic", topic).Msg("emit domain event")
	}
}

func (s *Service) toOutput(row db.Sale, items []db.ProductSale) Output {
	out := Output{
		ID:         common.UUIDString(row.ID),
		SaleDate:   row.SaleDate.Time,
		Subtotal:   row.Subtotal,
		Discount:   row.Discount,
		Total:      row.Total,
		Currency:   s.Currency,
		Canceled:   row.Canceled,
		CustomerID: common.UUIDString(row.CustomerID),
		BranchID:   common.UUIDString(row.BranchID),
		CreatedBy:  common.UUIDString(row.CreatedBy),
		CreatedAt:  row.CreatedAt.Time,
	}
	for _, it := range items {
		out.Items = append(out.Items, ItemOutput{
			ID:        common.UUIDString(it.ID),
			ProductID: common.UUIDString(it.ProductID),
			Qty:       it.Qty,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return out
}
