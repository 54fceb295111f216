package branch_test

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
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-vendas/internal/branch"
	"github.com/noah-isme/backend-vendas/internal/common"
	"github.com/noah-isme/backend-vendas/internal/db"
)

type fakeBranchQueries struct {
	branches map[string]db.Branch
}

func newFakeBranchQueries() *fakeBranchQueries {
	return &fakeBranchQueries{branches: make(map[string]db.Branch)}
}

func (f *fakeBranchQueries) InsertBranch(_ context.Context, name string) (db.Branch, error) {
	id, err := common.ToUUID(uuid.NewString())
	if err != nil {
		return db.Branch{}, err
	}
	b := db.Branch{ID: id, Name: name}
	f.branches[common.UUIDString(id)] = b
	return b, nil
}

func (f *fakeBranchQueries) GetBranchByID(_ context.Context, id pgtype.UUID) (db.Branch, error) {
	b, ok := f.branches[common.UUIDString(id)]
	if !ok {
		return db.Branch{}, pgx.ErrNoRows
	}
	return b, nil
}

func (f *fakeBranchQueries) ListBranches(_ context.Context, arg db.ListBranchesParams) ([]db.Branch, error) {
	out := make([]db.Branch, 0, len(f.branches))
	for _, b := range f.branches {
		out = append(out, b)
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

func (f *fakeBranchQueries) CountBranches(context.Context) (int64, error) {
	return int64(len(f.branches)), nil
}

func (f *fakeBranchQueries) DeleteBranch(_ context.Context, id pgtype.UUID) (int64, error) {
	key := common.UUIDString(id)
	if _, ok := f.branches[key]; !ok {
		return 0, nil
	}
	delete(f.branches, key)
	return 1, nil
}

func newBranchRouter(q branch.Querier) *chi.Mux {
	h := &branch.Handler{Q: q, PageSizeDefault: 20, PageSizeMax: 100}
	r := chi.NewRouter()
	r.Post("/branches", h.Create)
	r.Get("/branches", h.List)
	r.Get("/branches/{branchId}", h.Get)
	r.Delete("/branches/{branchId}", h.Delete)
	return r
}

func TestBranchLifecycle(t *testing.T) {
	router := newBranchRouter(newFakeBranchQueries())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/branches", strings.NewReader(`{"name":"Centro"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data branch.Branch `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "Centro", created.Data.Name)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/branches/"+created.Data.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/branches/"+created.Data.ID, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/branches/"+created.Data.ID, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBranchCreateRequiresName(t *testing.T) {
	router := newBranchRouter(newFakeBranchQueries())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/branches", strings.NewReader(`{"name":"  "}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBranchListPaginates(t *testing.T) {
	q := newFakeBranchQueries()
	for _, name := range []string{"Centro", "Norte", "Sul"} {
		_, err := q.InsertBranch(context.Background(), name)
		require.NoError(t, err)
	}
	router := newBranchRouter(q)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/branches?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "3", rec.Header().Get("X-Total-Count"))
}
