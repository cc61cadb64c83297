package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	budget := Budget{
		UserID:       currentUserID(r),
		Category:     req.Category,
		MonthlyLimit: req.MonthlyLimit,
	}

	created, err := h.store.CreateBudget(r.Context(), budget)
	if err != nil {
		if errors.Is(err, ErrDuplicateCategory) {
			writeError(w, http.StatusBadRequest, "budget category already exists")
			return
		}
		h.serverError(w, "create budget", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.store.ListBudgets(r.Context(), currentUserID(r))
	if err != nil {
		h.serverError(w, "list budgets", err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (h *Handler) TotalBudgets(w http.ResponseWriter, r *http.Request) {
	total, err := h.store.SumBudgets(r.Context(), currentUserID(r))
	if err != nil {
		h.serverError(w, "sum budgets", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": total})
}

func (h *Handler) BudgetStatusReport(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.store.BudgetStatuses(r.Context(), currentUserID(r))
	if err != nil {
		h.serverError(w, "budget statuses", err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	budgetID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || budgetID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid budget ID")
		return
	}

	var req budgetUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	fields := req.Fields()
	if len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	updated, err := h.store.UpdateBudget(r.Context(), currentUserID(r), budgetID, fields)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "budget not found")
		case errors.Is(err, ErrDuplicateCategory):
			writeError(w, http.StatusBadRequest, "budget category already exists")
		default:
			h.serverError(w, "update budget", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	budgetID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || budgetID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid budget ID")
		return
	}

	if err := h.store.DeleteBudget(r.Context(), currentUserID(r), budgetID); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "budget not found")
			return
		}
		h.serverError(w, "delete budget", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "budget deleted successfully"})
}
