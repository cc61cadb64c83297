package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

var nearingFactor = decimal.NewFromFloat(0.8)

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	date, _ := ParseDate(req.Date)
	expense := Expense{
		UserID:      currentUserID(r),
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        date,
	}

	created, err := h.store.CreateExpense(r.Context(), expense)
	if err != nil {
		h.serverError(w, "create expense", err)
		return
	}

	h.checkBudgetAlert(r, created.UserID, created.Category)

	writeJSON(w, http.StatusCreated, created)
}

// checkBudgetAlert publishes when the expense's category has a budget and
// month-to-date spend is past it, or past 80% of it. Failures are logged
// and never surfaced to the client.
func (h *Handler) checkBudgetAlert(r *http.Request, userID int, category string) {
	statuses, err := h.store.BudgetStatuses(r.Context(), userID)
	if err != nil {
		slog.Error("check budget status", "error", err)
		return
	}

	for _, s := range statuses {
		if s.Category != category {
			continue
		}

		var message string
		if s.OverBudget {
			message = "You have exceeded your monthly budget for " + s.Category + "!"
		} else if s.Spent.GreaterThan(s.Limit.Mul(nearingFactor)) {
			message = "You are nearing your monthly budget for " + s.Category + "!"
		}
		if message == "" {
			return
		}

		alert := BudgetAlert{
			UserID:   userID,
			Category: s.Category,
			Limit:    s.Limit,
			Spent:    s.Spent,
			Message:  message,
		}
		if err := h.publisher.Publish(alert); err != nil {
			slog.Error("publish budget alert", "error", err)
		}
		return
	}
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.store.ListExpenses(r.Context(), currentUserID(r))
	if err != nil {
		h.serverError(w, "list expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (h *Handler) TotalExpenses(w http.ResponseWriter, r *http.Request) {
	total, err := h.store.SumExpenses(r.Context(), currentUserID(r))
	if err != nil {
		h.serverError(w, "sum expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": total})
}

func (h *Handler) expenseSummary(period SummaryPeriod) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		total, err := h.store.SumExpensesInPeriod(r.Context(), currentUserID(r), period)
		if err != nil {
			h.serverError(w, "sum expenses in period", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"period": string(period),
			"total":  total,
		})
	}
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || expenseID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid expense ID")
		return
	}

	var req expenseUpdateRequest
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

	updated, err := h.store.UpdateExpense(r.Context(), currentUserID(r), expenseID, fields)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		h.serverError(w, "update expense", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || expenseID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid expense ID")
		return
	}

	if err := h.store.DeleteExpense(r.Context(), currentUserID(r), expenseID); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		h.serverError(w, "delete expense", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "expense deleted successfully"})
}
