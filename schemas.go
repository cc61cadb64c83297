package main

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var categoryPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// fieldErrors collects per-field validation failures for a 400 response.
type fieldErrors map[string]string

func (fe fieldErrors) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(fe))
}

func (fe fieldErrors) orNil() error {
	if len(fe) > 0 {
		return fe
	}
	return nil
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *registerRequest) Validate() error {
	fe := fieldErrors{}

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" || len(r.Name) > 100 {
		fe["name"] = "name must be between 1 and 100 characters"
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		fe["email"] = "invalid email address"
	}
	if len(r.Password) < 8 || len(r.Password) > 100 {
		fe["password"] = "password must be between 8 and 100 characters"
	} else if !hasLetterAndDigit(r.Password) {
		fe["password"] = "password must contain at least one letter and one number"
	}

	return fe.orNil()
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginRequest) Validate() error {
	fe := fieldErrors{}

	if _, err := mail.ParseAddress(r.Email); err != nil {
		fe["email"] = "invalid email address"
	}
	if r.Password == "" {
		fe["password"] = "password must not be empty"
	}

	return fe.orNil()
}

type expenseCreateRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
}

func (r *expenseCreateRequest) Validate() error {
	fe := fieldErrors{}

	r.Description = strings.TrimSpace(r.Description)
	if msg := validateDescription(r.Description); msg != "" {
		fe["description"] = msg
	}
	if msg := validateAmount(r.Amount); msg != "" {
		fe["amount"] = msg
	}
	if msg := validateCategory(r.Category); msg != "" {
		fe["category"] = msg
	}
	if _, err := ParseDate(r.Date); err != nil {
		fe["date"] = "date must be in DD-MM-YYYY format (e.g. 15-02-2003)"
	}

	return fe.orNil()
}

// expenseUpdateRequest carries an arbitrary subset of expense fields.
// Nil pointers are left untouched; at least one field must be set.
type expenseUpdateRequest struct {
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"`
	Date        *string          `json:"date"`
}

func (r *expenseUpdateRequest) Validate() error {
	fe := fieldErrors{}

	if r.Description != nil {
		trimmed := strings.TrimSpace(*r.Description)
		r.Description = &trimmed
		if msg := validateDescription(trimmed); msg != "" {
			fe["description"] = msg
		}
	}
	if r.Amount != nil {
		if msg := validateAmount(*r.Amount); msg != "" {
			fe["amount"] = msg
		}
	}
	if r.Category != nil {
		if msg := validateCategory(*r.Category); msg != "" {
			fe["category"] = msg
		}
	}
	if r.Date != nil {
		if _, err := ParseDate(*r.Date); err != nil {
			fe["date"] = "date must be in DD-MM-YYYY format (e.g. 15-02-2003)"
		}
	}

	return fe.orNil()
}

// Fields converts the supplied subset into update columns. Call Validate
// first; the date is assumed parseable here.
func (r *expenseUpdateRequest) Fields() []updateField {
	var fields []updateField
	if r.Description != nil {
		fields = append(fields, updateField{Name: "description", Value: *r.Description})
	}
	if r.Amount != nil {
		fields = append(fields, updateField{Name: "amount", Value: *r.Amount})
	}
	if r.Category != nil {
		fields = append(fields, updateField{Name: "category", Value: *r.Category})
	}
	if r.Date != nil {
		d, _ := ParseDate(*r.Date)
		fields = append(fields, updateField{Name: "date", Value: d.Time})
	}
	return fields
}

type budgetCreateRequest struct {
	Category     string          `json:"category"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
}

func (r *budgetCreateRequest) Validate() error {
	fe := fieldErrors{}

	if msg := validateCategory(r.Category); msg != "" {
		fe["category"] = msg
	}
	if msg := validateLimit(r.MonthlyLimit); msg != "" {
		fe["monthly_limit"] = msg
	}

	return fe.orNil()
}

type budgetUpdateRequest struct {
	Category     *string          `json:"category"`
	MonthlyLimit *decimal.Decimal `json:"monthly_limit"`
}

func (r *budgetUpdateRequest) Validate() error {
	fe := fieldErrors{}

	if r.Category != nil {
		if msg := validateCategory(*r.Category); msg != "" {
			fe["category"] = msg
		}
	}
	if r.MonthlyLimit != nil {
		if msg := validateLimit(*r.MonthlyLimit); msg != "" {
			fe["monthly_limit"] = msg
		}
	}

	return fe.orNil()
}

func (r *budgetUpdateRequest) Fields() []updateField {
	var fields []updateField
	if r.Category != nil {
		fields = append(fields, updateField{Name: "category", Value: *r.Category})
	}
	if r.MonthlyLimit != nil {
		fields = append(fields, updateField{Name: "monthly_limit", Value: *r.MonthlyLimit})
	}
	return fields
}

func validateDescription(s string) string {
	if s == "" || len(s) > 200 {
		return "description must be between 1 and 200 characters"
	}
	return ""
}

func validateCategory(s string) string {
	if s == "" || len(s) > 50 {
		return "category must be between 1 and 50 characters"
	}
	if !categoryPattern.MatchString(s) {
		return "category can only contain letters, numbers and underscores"
	}
	return ""
}

// Monetary values carry at most 2 fractional digits on every write.
func validateAmount(d decimal.Decimal) string {
	if !d.IsPositive() {
		return "amount must be greater than 0"
	}
	if !d.Equal(d.Round(2)) {
		return "amount can have at most 2 decimal places"
	}
	return ""
}

func validateLimit(d decimal.Decimal) string {
	if !d.IsPositive() {
		return "monthly limit must be greater than 0"
	}
	if !d.Equal(d.Round(2)) {
		return "monthly limit can have at most 2 decimal places"
	}
	return ""
}

func hasLetterAndDigit(s string) bool {
	var letter, digit bool
	for _, c := range s {
		switch {
		case unicode.IsLetter(c):
			letter = true
		case unicode.IsDigit(c):
			digit = true
		}
	}
	return letter && digit
}
