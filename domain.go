package main

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayout is the wire format for calendar dates: DD-MM-YYYY.
const dateLayout = "02-01-2006"

// Date is a calendar date carried over the API in DD-MM-YYYY form.
type Date struct {
	time.Time
}

func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

type Expense struct {
	ID          int             `json:"id"`
	UserID      int             `json:"user_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        Date            `json:"date"`
}

type Budget struct {
	ID           int             `json:"id"`
	UserID       int             `json:"user_id"`
	Category     string          `json:"category"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
}

// BudgetStatus compares a budget's limit with the month-to-date spend in
// the same category. Spend attribution joins on the category name, so a
// renamed budget no longer matches expenses recorded under the old name.
type BudgetStatus struct {
	Category   string          `json:"category"`
	Limit      decimal.Decimal `json:"limit"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	OverBudget bool            `json:"over_budget"`
}
