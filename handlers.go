package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handler encapsulates HTTP handling logic. Dependencies are passed in
// explicitly; there is no process-global registration.
type Handler struct {
	store     Store
	tokens    *TokenService
	publisher AlertPublisher
}

func NewHandler(store Store, tokens *TokenService, publisher AlertPublisher) *Handler {
	return &Handler{store: store, tokens: tokens, publisher: publisher}
}

func RegisterRoutes(mux *chi.Mux, h *Handler) {
	mux.Use(middleware.Logger)
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
	}))

	mux.Get("/", h.Root)

	mux.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(h.tokens.RequireAuth).Get("/me", h.Me)
	})

	mux.Route("/expenses", func(r chi.Router) {
		r.Use(h.tokens.RequireAuth)
		r.Post("/", h.CreateExpense)
		r.Get("/", h.ListExpenses)
		r.Get("/total", h.TotalExpenses)
		r.Get("/summary/today", h.expenseSummary(PeriodToday))
		r.Get("/summary/weekly", h.expenseSummary(PeriodWeekly))
		r.Get("/summary/monthly", h.expenseSummary(PeriodMonthly))
		r.Put("/{id}", h.UpdateExpense)
		r.Delete("/{id}", h.DeleteExpense)
	})

	mux.Route("/budgets", func(r chi.Router) {
		r.Use(h.tokens.RequireAuth)
		r.Post("/", h.CreateBudget)
		r.Get("/", h.ListBudgets)
		r.Get("/total", h.TotalBudgets)
		r.Get("/status", h.BudgetStatusReport)
		r.Put("/{id}", h.UpdateBudget)
		r.Delete("/{id}", h.DeleteBudget)
	})
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to Expense Tracker",
		"status":  "running",
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		h.serverError(w, "hash password", err)
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Name, req.Email, hash)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, "email already registered")
			return
		}
		h.serverError(w, "create user", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "user registered successfully",
		"user":    user,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	// Unknown email and wrong password share one response so the API
	// never reveals which emails are registered.
	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.serverError(w, "get user by email", err)
		return
	}
	if !CheckPasswordHash(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.serverError(w, "generate token", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUserByID(r.Context(), currentUserID(r))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.serverError(w, "get user by id", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	slog.Error(op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeValidationError(w http.ResponseWriter, err error) {
	var fe fieldErrors
	if errors.As(err, &fe) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": fe,
		})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}
