package sale_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-vendas/internal/common"
	"github.com/noah-isme/backend-vendas/internal/db"
	"github.com/noah-isme/backend-vendas/internal/sale"
)

type fakeQueries struct {
	sales map[string]db.Sale
	items map[string][]db.ProductSale
}

func newFakeQueries() *fakeQueries {
	return &fakeQueries{
		sales: make(map[string]db.Sale),
		items: make(map[string][]db.ProductSale),
	}
}

func (f *fakeQueries) GetSaleByID(_ context.Context, id pgtype.UUID) (db.Sale, error) {
	s, ok := f.sales[common.UUIDString(id)]
	if !ok {
		return db.Sale{}, pgx.ErrNoRows
	}
	return s, nil
}

func (f *fakeQueries) ListSales(_ context.Context, arg db.ListSalesParams) ([]db.Sale, error) {
	out := make([]db.Sale, 0, len(f.sales))
	for _, s := range f.sales {
		out = append(out, s)
	}
	if int(arg.OffsetValue) >= len(out) {
		return nil, nil
	}
	out = out[arg.OffsetValue:]
	if int(arg.LimitValue) < len(out) {
		out = out[:arg.LimitValue]
	}
	return out, nil
}

func (f *fakeQueries) CountSales(context.Context) (int64, error) {
	return int64(len(f.sales)), nil
}

func (f *fakeQueries) DeleteSale(_ context.Context, id pgtype.UUID) (int64, error) {
	key := common.UUIDString(id)
	if _, ok := f.sales[key]; !ok {
		return 0, nil
	}
	delete(f.sales, key)
	delete(f.items, key)
	return 1, nil
}

func (f *fakeQueries) MarkSaleCanceled(_ context.Context, arg db.MarkSaleCanceledParams) (db.Sale, error) {
	key := common.UUIDString(arg.ID)
	s, ok := f.sales[key]
	if !ok || s.Canceled {
		return db.Sale{}, pgx.ErrNoRows
	}
	s.Canceled = true
	s.CanceledBy = arg.CanceledBy
	f.sales[key] = s
	return s, nil
}

func (f *fakeQueries) ListProductSalesBySale(_ context.Context, saleID pgtype.UUID) ([]db.ProductSale, error) {
	return f.items[common.UUIDString(saleID)], nil
}

func (f *fakeQueries) GetProductSaleByID(_ context.Context, id pgtype.UUID) (db.ProductSale, error) {
	for _, items := range f.items {
		for _, it := range items {
			if common.UUIDEqual(it.ID, id) {
				return it, nil
			}
		}
	}
	return db.ProductSale{}, pgx.ErrNoRows
}

func toUUID(t *testing.T, s string) pgtype.UUID {
	t.Helper()
	id, err := common.ToUUID(s)
	require.NoError(t, err)
	return id
}

func seedSale(t *testing.T, q *fakeQueries, total int64) string {
	t.Helper()
	id := uuid.NewString()
	q.sales[id] = db.Sale{
		ID:       toUUID(t, id),
		Subtotal: total,
		Total:    total,
	}
	q.items[id] = []db.ProductSale{
		{ID: toUUID(t, uuid.NewString()), SaleID: toUUID(t, id), ProductID: toUUID(t, uuid.NewString()), Qty: 2, UnitPrice: total / 2, LineTotal: total},
	}
	return id
}

func newRouter(h *sale.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/sales", h.Create)
	r.Get("/sales", h.List)
	r.Get("/sales/{saleId}", h.Get)
	r.Delete("/sales/{saleId}", h.Delete)
	r.Post("/sales/{saleId}/cancel", h.Cancel)
	r.Post("/sales/{saleId}/items/{itemId}/cancel", h.CancelItem)
	return r
}

func newHandler(q *fakeQueries) *sale.Handler {
	return &sale.Handler{
		Svc:             &sale.Service{Q: q, Currency: "BRL", Logger: zerolog.Nop()},
		PageSizeDefault: 20,
		PageSizeMax:     100,
	}
}

func TestGetSaleReturnsItems(t *testing.T) {
	q := newFakeQueries()
	id := seedSale(t, q, 1_000)
	router := newRouter(newHandler(q))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sales/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data sale.Output `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, id, body.Data.ID)
	require.Len(t, body.Data.Items, 1)
	require.Equal(t, int64(1_000), body.Data.Total)
	require.Equal(t, "BRL", body.Data.Currency)
}

func TestGetSaleNotFound(t *testing.T) {
	router := newRouter(newHandler(newFakeQueries()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sales/"+uuid.NewString(), nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestListSalesPaginates(t *testing.T) {
	q := newFakeQueries()
	for i := 0; i < 3; i++ {
		seedSale(t, q, int64(1_000*(i+1)))
	}
	router := newRouter(newHandler(q))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sales?page=1&limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "3", rec.Header().Get("X-Total-Count"))

	var body struct {
		Data       []sale.Output `json:"data"`
		Pagination struct {
			Page       int   `json:"page"`
			PerPage    int   `json:"per_page"`
			TotalItems int64 `json:"total_items"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	require.Equal(t, int64(3), body.Pagination.TotalItems)
}

func TestDeleteSale(t *testing.T) {
	q := newFakeQueries()
	id := seedSale(t, q, 500)
	router := newRouter(newHandler(q))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/sales/"+id, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/sales/"+id, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelSale(t *testing.T) {
	q := newFakeQueries()
	id := seedSale(t, q, 500)
	router := newRouter(newHandler(q))
	payload := `{"canceledBy":"` + uuid.NewString() + `"}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sales/"+id+"/cancel", strings.NewReader(payload)))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data sale.Output `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Data.Canceled)

	// Second cancellation conflicts instead of silently succeeding.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sales/"+id+"/cancel", strings.NewReader(payload)))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateSaleValidationFailureListsViolations(t *testing.T) {
	router := newRouter(newHandler(newFakeQueries()))
	payload := map[string]any{
		"saleDate":   "2026-08-30T10:00:00Z",
		"customerId": uuid.NewString(),
		"branchId":   uuid.NewString(),
		"createdBy":  uuid.NewString(),
		"items": []map[string]any{
			{"productId": uuid.NewString(), "qty": 21, "unitPrice": 100, "lineTotal": 2100},
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(string(raw))))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error struct {
			Code    string           `json:"code"`
			Details []sale.Violation `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "VALIDATION_FAILED", body.Error.Code)
	require.Len(t, body.Error.Details, 1)
	require.Equal(t, sale.CodeInvalidQuantity, body.Error.Details[0].Code)
	require.Equal(t, "items[0].qty", body.Error.Details[0].Field)
}

func TestCreateSaleEmptyItems(t *testing.T) {
	router := newRouter(newHandler(newFakeQueries()))
	payload := `{"saleDate":"2026-08-30T10:00:00Z","customerId":"` + uuid.NewString() +
		`","branchId":"` + uuid.NewString() + `","createdBy":"` + uuid.NewString() + `","items":[]}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(payload)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error struct {
			Code    string           `json:"code"`
			Details []sale.Violation `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, sale.CodeEmptySale, body.Error.Details[0].Code)
}

func firstItemID(t *testing.T, q *fakeQueries, saleID string) string {
	t.Helper()
	items := q.items[saleID]
	require.NotEmpty(t, items)
	return common.UUIDString(items[0].ID)
}

func TestCancelLastItemRefused(t *testing.T) {
	q := newFakeQueries()
	id := seedSale(t, q, 1_000)
	itemID := firstItemID(t, q, id)
	router := newRouter(newHandler(q))
	payload := `{"editedBy":"` + uuid.NewString() + `"}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sales/"+id+"/items/"+itemID+"/cancel", strings.NewReader(payload)))
	require.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "LAST_ITEM", body.Error.Code)
}

func TestCancelItemUnderWrongSale(t *testing.T) {
	q := newFakeQueries()
	first := seedSale(t, q, 1_000)
	second := seedSale(t, q, 500)
	itemID := firstItemID(t, q, second)
	router := newRouter(newHandler(q))
	payload := `{"editedBy":"` + uuid.NewString() + `"}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sales/"+first+"/items/"+itemID+"/cancel", strings.NewReader(payload)))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelItemUnknownItem(t *testing.T) {
	q := newFakeQueries()
	id := seedSale(t, q, 1_000)
	router := newRouter(newHandler(q))
	payload := `{"editedBy":"` + uuid.NewString() + `"}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sales/"+id+"/items/"+uuid.NewString()+"/cancel", strings.NewReader(payload)))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelItemOnCanceledSale(t *testing.T) {
	q := newFakeQueries()
	id := seedSale(t, q, 1_000)
	s := q.sales[id]
	s.Canceled = true
	q.sales[id] = s
	itemID := firstItemID(t, q, id)
	router := newRouter(newHandler(q))
	payload := `{"editedBy":"` + uuid.NewString() + `"}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sales/"+id+"/items/"+itemID+"/cancel", strings.NewReader(payload)))
	require.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ALREADY_CANCELED", body.Error.Code)
}
