package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBuildUpdateQuerySingleField(t *testing.T) {
	fields := []updateField{{Name: "description", Value: "rent"}}

	query, args, err := buildUpdateQuery("expenses", expenseColumns, fields, 10, 3,
		"id, user_id, description, amount, category, date")
	if err != nil {
		t.Fatalf("build query: %v", err)
	}

	want := "UPDATE expenses SET description = $1 WHERE id = $2 AND user_id = $3 RETURNING id, user_id, description, amount, category, date"
	if query != want {
		t.Fatalf("query mismatch:\n got: %s\nwant: %s", query, want)
	}
	if len(args) != 3 || args[0] != "rent" || args[1] != 10 || args[2] != 3 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildUpdateQueryMultipleFields(t *testing.T) {
	amount := decimal.RequireFromString("12.34")
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	fields := []updateField{
		{Name: "amount", Value: amount},
		{Name: "date", Value: date},
	}

	query, args, err := buildUpdateQuery("expenses", expenseColumns, fields, 5, 1, "id")
	if err != nil {
		t.Fatalf("build query: %v", err)
	}

	want := "UPDATE expenses SET amount = $1, date = $2 WHERE id = $3 AND user_id = $4 RETURNING id"
	if query != want {
		t.Fatalf("query mismatch:\n got: %s\nwant: %s", query, want)
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(args))
	}
}

func TestBuildUpdateQueryRejectsUnknownField(t *testing.T) {
	fields := []updateField{{Name: "user_id", Value: 999}}

	if _, _, err := buildUpdateQuery("expenses", expenseColumns, fields, 5, 1, "id"); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestBuildUpdateQueryRejectsEmptyFields(t *testing.T) {
	if _, _, err := buildUpdateQuery("budgets", budgetColumns, nil, 5, 1, "id"); err == nil {
		t.Fatal("expected empty field list to be rejected")
	}
}

func TestBuildUpdateQueryBudgetColumns(t *testing.T) {
	fields := []updateField{{Name: "monthly_limit", Value: decimal.RequireFromString("250.00")}}

	query, _, err := buildUpdateQuery("budgets", budgetColumns, fields, 2, 8, "id, user_id, category, monthly_limit")
	if err != nil {
		t.Fatalf("build query: %v", err)
	}

	want := "UPDATE budgets SET monthly_limit = $1 WHERE id = $2 AND user_id = $3 RETURNING id, user_id, category, monthly_limit"
	if query != want {
		t.Fatalf("query mismatch:\n got: %s\nwant: %s", query, want)
	}
}
