package sale

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-vendas/internal/common"
)

type Handler struct {
	Svc             *Service
	PageSizeDefault int
	PageSizeMax     int
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "sale service not configured", nil)
		return
	}
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	out, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": out})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "sale service not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, h.PageSizeDefault, h.PageSizeMax)
	sales, total, err := h.Svc.List(r.Context(), page, perPage)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": sales,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: total,
		},
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "sale service not configured", nil)
		return
	}
	saleID, err := common.ToUUID(chi.URLParam(r, "saleId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid sale id", nil)
		return
	}
	out, err := h.Svc.Get(r.Context(), saleID)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "sale service not configured", nil)
		return
	}
	saleID, err := common.ToUUID(chi.URLParam(r, "saleId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid sale id", nil)
		return
	}
	if err := h.Svc.Delete(r.Context(), saleID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type cancelBody struct {
	CanceledBy string `json:"canceledBy"`
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "sale service not configured", nil)
		return
	}
	saleID, err := common.ToUUID(chi.URLParam(r, "saleId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid sale id", nil)
		return
	}
	var body cancelBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	canceledBy, err := common.ToUUID(body.CanceledBy)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid canceledBy id", nil)
		return
	}
	out, err := h.Svc.Cancel(r.Context(), saleID, canceledBy)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

type cancelItemBody struct {
	EditedBy string `json:"editedBy"`
}

func (h *Handler) CancelItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "sale service not configured", nil)
		return
	}
	saleID, err := common.ToUUID(chi.URLParam(r, "saleId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid sale id", nil)
		return
	}
	itemID, err := common.ToUUID(chi.URLParam(r, "itemId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item id", nil)
		return
	}
	var body cancelItemBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	editedBy, err := common.ToUUID(body.EditedBy)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid editedBy id", nil)
		return
	}
	out, err := h.Svc.CancelItem(r.Context(), saleID, itemID, editedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

// writeError maps service errors to the response envelope. Validation
// failures surface every violation in the details field.
func writeError(w http.ResponseWriter, err error) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_FAILED", "sale payload failed validation", vErr.Violations)
		return
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unexpected error", nil)
}
