package branch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-vendas/internal/common"
	"github.com/noah-isme/backend-vendas/internal/db"
)

// Querier is the subset of db.Queries the branch handlers need.
type Querier interface {
	InsertBranch(ctx context.Context, name string) (db.Branch, error)
	GetBranchByID(ctx context.Context, id pgtype.UUID) (db.Branch, error)
	ListBranches(ctx context.Context, arg db.ListBranchesParams) ([]db.Branch, error)
	CountBranches(ctx context.Context) (int64, error)
	DeleteBranch(ctx context.Context, id pgtype.UUID) (int64, error)
}

type Handler struct {
	Q               Querier
	PageSizeDefault int
	PageSizeMax     int
}

// Branch is the API representation of a point of sale.
type Branch struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type createBody struct {
	Name string `json:"name"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Q == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "branch queries not configured", nil)
		return
	}
	var body createBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "name is required", nil)
		return
	}
	row, err := h.Q.InsertBranch(r.Context(), name)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create branch", nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": toBranch(row)})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Q == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "branch queries not configured", nil)
		return
	}
	id, err := common.ToUUID(chi.URLParam(r, "branchId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid branch id", nil)
		return
	}
	row, err := h.Q.GetBranchByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "branch not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load branch", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": toBranch(row)})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Q == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "branch queries not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, h.PageSizeDefault, h.PageSizeMax)
	total, err := h.Q.CountBranches(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to count branches", nil)
		return
	}
	rows, err := h.Q.ListBranches(r.Context(), db.ListBranchesParams{
		LimitValue:  int32(perPage),
		OffsetValue: int32((page - 1) * perPage),
	})
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list branches", nil)
		return
	}
	branches := make([]Branch, 0, len(rows))
	for _, row := range rows {
		branches = append(branches, toBranch(row))
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": branches,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: total,
		},
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.Q == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "branch queries not configured", nil)
		return
	}
	id, err := common.ToUUID(chi.URLParam(r, "branchId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid branch id", nil)
		return
	}
	affected, err := h.Q.DeleteBranch(r.Context(), id)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete branch", nil)
		return
	}
	if affected == 0 {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "branch not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toBranch(row db.Branch) Branch {
	return Branch{ID: common.UUIDString(row.ID), Name: row.Name}
}
