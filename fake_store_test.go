package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	users    map[int]User
	expenses map[int]Expense
	budgets  map[int]Budget
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[int]User),
		expenses: make(map[int]Expense),
		budgets:  make(map[int]Budget),
	}
}

func (f *fakeStore) newID() int {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) CreateUser(_ context.Context, name, email, passwordHash string) (User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return User{}, ErrDuplicateEmail
		}
	}
	u := User{ID: f.newID(), Name: name, Email: email, PasswordHash: passwordHash}
	f.users[u.ID] = u
	return User{ID: u.ID, Name: u.Name, Email: u.Email}, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (f *fakeStore) GetUserByID(_ context.Context, id int) (User, error) {
	u, ok := f.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return User{ID: u.ID, Name: u.Name, Email: u.Email}, nil
}

func (f *fakeStore) CreateExpense(_ context.Context, e Expense) (Expense, error) {
	e.ID = f.newID()
	f.expenses[e.ID] = e
	return e, nil
}

func (f *fakeStore) ListExpenses(_ context.Context, userID int) ([]Expense, error) {
	out := []Expense{}
	for _, e := range f.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out, nil
}

func (f *fakeStore) SumExpenses(_ context.Context, userID int) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range f.expenses {
		if e.UserID == userID {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (f *fakeStore) SumExpensesInPeriod(_ context.Context, userID int, period SummaryPeriod) (decimal.Decimal, error) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var from time.Time
	switch period {
	case PeriodToday:
		from = today
	case PeriodWeekly:
		from = today.AddDate(0, 0, -7)
	case PeriodMonthly:
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return decimal.Zero, fmt.Errorf("unknown summary period %q", period)
	}

	total := decimal.Zero
	for _, e := range f.expenses {
		if e.UserID != userID || e.Date.Before(from) {
			continue
		}
		if period == PeriodToday && !e.Date.Equal(today) {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total, nil
}

func (f *fakeStore) UpdateExpense(_ context.Context, userID, expenseID int, fields []updateField) (Expense, error) {
	e, ok := f.expenses[expenseID]
	if !ok || e.UserID != userID {
		return Expense{}, ErrNotFound
	}
	for _, fld := range fields {
		switch fld.Name {
		case "description":
			e.Description = fld.Value.(string)
		case "amount":
			e.Amount = fld.Value.(decimal.Decimal)
		case "category":
			e.Category = fld.Value.(string)
		case "date":
			e.Date = Date{Time: fld.Value.(time.Time)}
		default:
			return Expense{}, fmt.Errorf("field %q cannot be updated", fld.Name)
		}
	}
	f.expenses[expenseID] = e
	return e, nil
}

func (f *fakeStore) DeleteExpense(_ context.Context, userID, expenseID int) error {
	e, ok := f.expenses[expenseID]
	if !ok || e.UserID != userID {
		return ErrNotFound
	}
	delete(f.expenses, expenseID)
	return nil
}

func (f *fakeStore) CreateBudget(_ context.Context, b Budget) (Budget, error) {
	for _, existing := range f.budgets {
		if existing.UserID == b.UserID && existing.Category == b.Category {
			return Budget{}, ErrDuplicateCategory
		}
	}
	b.ID = f.newID()
	f.budgets[b.ID] = b
	return b, nil
}

func (f *fakeStore) ListBudgets(_ context.Context, userID int) ([]Budget, error) {
	out := []Budget{}
	for _, b := range f.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonthlyLimit.GreaterThan(out[j].MonthlyLimit) })
	return out, nil
}

func (f *fakeStore) SumBudgets(_ context.Context, userID int) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, b := range f.budgets {
		if b.UserID == userID {
			total = total.Add(b.MonthlyLimit)
		}
	}
	return total, nil
}

func (f *fakeStore) UpdateBudget(_ context.Context, userID, budgetID int, fields []updateField) (Budget, error) {
	b, ok := f.budgets[budgetID]
	if !ok || b.UserID != userID {
		return Budget{}, ErrNotFound
	}
	for _, fld := range fields {
		switch fld.Name {
		case "category":
			category := fld.Value.(string)
			for id, other := range f.budgets {
				if id != budgetID && other.UserID == userID && other.Category == category {
					return Budget{}, ErrDuplicateCategory
				}
			}
			b.Category = category
		case "monthly_limit":
			b.MonthlyLimit = fld.Value.(decimal.Decimal)
		default:
			return Budget{}, fmt.Errorf("field %q cannot be updated", fld.Name)
		}
	}
	f.budgets[budgetID] = b
	return b, nil
}

func (f *fakeStore) DeleteBudget(_ context.Context, userID, budgetID int) error {
	b, ok := f.budgets[budgetID]
	if !ok || b.UserID != userID {
		return ErrNotFound
	}
	delete(f.budgets, budgetID)
	return nil
}

func (f *fakeStore) BudgetStatuses(ctx context.Context, userID int) ([]BudgetStatus, error) {
	statuses := []BudgetStatus{}
	for _, b := range f.budgets {
		if b.UserID != userID {
			continue
		}
		spent := decimal.Zero
		monthStart := time.Date(time.Now().UTC().Year(), time.Now().UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
		for _, e := range f.expenses {
			if e.UserID == userID && e.Category == b.Category && !e.Date.Before(monthStart) {
				spent = spent.Add(e.Amount)
			}
		}
		remaining := b.MonthlyLimit.Sub(spent)
		statuses = append(statuses, BudgetStatus{
			Category:   b.Category,
			Limit:      b.MonthlyLimit,
			Spent:      spent,
			Remaining:  remaining,
			OverBudget: remaining.IsNegative(),
		})
	}
	return statuses, nil
}

// alertRecorder captures published budget alerts.
type alertRecorder struct {
	alerts []BudgetAlert
}

func (r *alertRecorder) Publish(alert BudgetAlert) error {
	r.alerts = append(r.alerts, alert)
	return nil
}
