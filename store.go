package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateCategory = errors.New("budget category already exists")
)

type SummaryPeriod string

const (
	PeriodToday   SummaryPeriod = "today"
	PeriodWeekly  SummaryPeriod = "weekly"
	PeriodMonthly SummaryPeriod = "monthly"
)

type Store interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id int) (User, error)

	CreateExpense(ctx context.Context, e Expense) (Expense, error)
	ListExpenses(ctx context.Context, userID int) ([]Expense, error)
	SumExpenses(ctx context.Context, userID int) (decimal.Decimal, error)
	SumExpensesInPeriod(ctx context.Context, userID int, period SummaryPeriod) (decimal.Decimal, error)
	UpdateExpense(ctx context.Context, userID, expenseID int, fields []updateField) (Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID int) error

	CreateBudget(ctx context.Context, b Budget) (Budget, error)
	ListBudgets(ctx context.Context, userID int) ([]Budget, error)
	SumBudgets(ctx context.Context, userID int) (decimal.Decimal, error)
	UpdateBudget(ctx context.Context, userID, budgetID int, fields []updateField) (Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID int) error
	BudgetStatuses(ctx context.Context, userID int) ([]BudgetStatus, error)
}

// updateField is one column of a partial update. Name is a schema field
// name, resolved against a fixed allow-list before it reaches SQL text;
// Value is always bound as a parameter.
type updateField struct {
	Name  string
	Value any
}

var expenseColumns = map[string]string{
	"description": "description",
	"amount":      "amount",
	"category":    "category",
	"date":        "date",
}

var budgetColumns = map[string]string{
	"category":      "category",
	"monthly_limit": "monthly_limit",
}

// buildUpdateQuery assembles a partial UPDATE scoped to the owning user.
// Field names outside the allow-list are rejected before any SQL is built.
func buildUpdateQuery(table string, columns map[string]string, fields []updateField, id, userID int, returning string) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, errors.New("no fields to update")
	}

	setClauses := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+2)
	for _, f := range fields {
		col, ok := columns[f.Name]
		if !ok {
			return "", nil, fmt.Errorf("field %q cannot be updated", f.Name)
		}
		args = append(args, f.Value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	args = append(args, id, userID)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d AND user_id = $%d RETURNING %s",
		table, strings.Join(setClauses, ", "), len(args)-1, len(args), returning)
	return query, args, nil
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Close() {
	p.pool.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (p *PostgresStore) CreateUser(ctx context.Context, name, email, passwordHash string) (User, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return User{}, ErrDuplicateEmail
	}

	var u User
	err = p.pool.QueryRow(ctx, `
        INSERT INTO users (name, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING id, name, email;
    `, name, email, passwordHash).Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (p *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := p.pool.QueryRow(ctx, `
        SELECT id, name, email, password_hash
        FROM users
        WHERE email = $1;
    `, email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (p *PostgresStore) GetUserByID(ctx context.Context, id int) (User, error) {
	var u User
	err := p.pool.QueryRow(ctx, `
        SELECT id, name, email
        FROM users
        WHERE id = $1;
    `, id).Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (p *PostgresStore) CreateExpense(ctx context.Context, e Expense) (Expense, error) {
	err := p.pool.QueryRow(ctx, `
        INSERT INTO expenses (user_id, description, amount, category, date)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id;
    `, e.UserID, e.Description, e.Amount, e.Category, e.Date.Time).Scan(&e.ID)
	if err != nil {
		return Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return e, nil
}

func (p *PostgresStore) ListExpenses(ctx context.Context, userID int) ([]Expense, error) {
	rows, err := p.pool.Query(ctx, `
        SELECT id, user_id, description, amount, category, date
        FROM expenses
        WHERE user_id = $1
        ORDER BY date DESC;
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses for user %d: %w", userID, err)
	}
	defer rows.Close()

	expenses := []Expense{}
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &e.Amount, &e.Category, &e.Date.Time); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return expenses, nil
}

func (p *PostgresStore) SumExpenses(ctx context.Context, userID int) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := p.pool.QueryRow(ctx, `
        SELECT COALESCE(SUM(amount), 0)
        FROM expenses
        WHERE user_id = $1;
    `, userID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses: %w", err)
	}
	return total, nil
}

func (p *PostgresStore) SumExpensesInPeriod(ctx context.Context, userID int, period SummaryPeriod) (decimal.Decimal, error) {
	var window string
	switch period {
	case PeriodToday:
		window = "date = CURRENT_DATE"
	case PeriodWeekly:
		// Rolling 7-day window ending today, not an aligned calendar week.
		window = "date >= CURRENT_DATE - INTERVAL '7 days'"
	case PeriodMonthly:
		window = "date >= date_trunc('month', CURRENT_DATE)"
	default:
		return decimal.Zero, fmt.Errorf("unknown summary period %q", period)
	}

	var total decimal.Decimal
	query := fmt.Sprintf(`
        SELECT COALESCE(SUM(amount), 0)
        FROM expenses
        WHERE user_id = $1 AND %s;
    `, window)
	if err := p.pool.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum %s expenses: %w", period, err)
	}
	return total, nil
}

func (p *PostgresStore) UpdateExpense(ctx context.Context, userID, expenseID int, fields []updateField) (Expense, error) {
	query, args, err := buildUpdateQuery("expenses", expenseColumns, fields, expenseID, userID,
		"id, user_id, description, amount, category, date")
	if err != nil {
		return Expense{}, err
	}

	var e Expense
	err = p.pool.QueryRow(ctx, query, args...).Scan(&e.ID, &e.UserID, &e.Description, &e.Amount, &e.Category, &e.Date.Time)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Expense{}, ErrNotFound
		}
		return Expense{}, fmt.Errorf("update expense: %w", err)
	}
	return e, nil
}

func (p *PostgresStore) DeleteExpense(ctx context.Context, userID, expenseID int) error {
	result, err := p.pool.Exec(ctx, `
        DELETE FROM expenses
        WHERE id = $1 AND user_id = $2;
    `, expenseID, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) CreateBudget(ctx context.Context, b Budget) (Budget, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM budgets WHERE user_id = $1 AND category = $2)`,
		b.UserID, b.Category).Scan(&exists)
	if err != nil {
		return Budget{}, fmt.Errorf("check budget category: %w", err)
	}
	if exists {
		return Budget{}, ErrDuplicateCategory
	}

	err = p.pool.QueryRow(ctx, `
        INSERT INTO budgets (user_id, category, monthly_limit)
        VALUES ($1, $2, $3)
        RETURNING id;
    `, b.UserID, b.Category, b.MonthlyLimit).Scan(&b.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Budget{}, ErrDuplicateCategory
		}
		return Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return b, nil
}

func (p *PostgresStore) ListBudgets(ctx context.Context, userID int) ([]Budget, error) {
	rows, err := p.pool.Query(ctx, `
        SELECT id, user_id, category, monthly_limit
        FROM budgets
        WHERE user_id = $1
        ORDER BY monthly_limit DESC;
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets for user %d: %w", userID, err)
	}
	defer rows.Close()

	budgets := []Budget{}
	for rows.Next() {
		var b Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.MonthlyLimit); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return budgets, nil
}

func (p *PostgresStore) SumBudgets(ctx context.Context, userID int) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := p.pool.QueryRow(ctx, `
        SELECT COALESCE(SUM(monthly_limit), 0)
        FROM budgets
        WHERE user_id = $1;
    `, userID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum budgets: %w", err)
	}
	return total, nil
}

func (p *PostgresStore) UpdateBudget(ctx context.Context, userID, budgetID int, fields []updateField) (Budget, error) {
	query, args, err := buildUpdateQuery("budgets", budgetColumns, fields, budgetID, userID,
		"id, user_id, category, monthly_limit")
	if err != nil {
		return Budget{}, err
	}

	var b Budget
	err = p.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.UserID, &b.Category, &b.MonthlyLimit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Budget{}, ErrNotFound
		}
		if isUniqueViolation(err) {
			return Budget{}, ErrDuplicateCategory
		}
		return Budget{}, fmt.Errorf("update budget: %w", err)
	}
	return b, nil
}

func (p *PostgresStore) DeleteBudget(ctx context.Context, userID, budgetID int) error {
	result, err := p.pool.Exec(ctx, `
        DELETE FROM budgets
        WHERE id = $1 AND user_id = $2;
    `, budgetID, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// BudgetStatuses joins each budget with the month-to-date spend in its
// category. Categories with no matching expenses report spent = 0.
func (p *PostgresStore) BudgetStatuses(ctx context.Context, userID int) ([]BudgetStatus, error) {
	rows, err := p.pool.Query(ctx, `
        SELECT
            b.category,
            b.monthly_limit,
            COALESCE(SUM(e.amount), 0) AS spent
        FROM budgets b
        LEFT JOIN expenses e
            ON e.category = b.category
            AND e.user_id = b.user_id
            AND e.date >= date_trunc('month', CURRENT_DATE)
        WHERE b.user_id = $1
        GROUP BY b.category, b.monthly_limit;
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("budget statuses for user %d: %w", userID, err)
	}
	defer rows.Close()

	statuses := []BudgetStatus{}
	for rows.Next() {
		var s BudgetStatus
		if err := rows.Scan(&s.Category, &s.Limit, &s.Spent); err != nil {
			return nil, fmt.Errorf("scan budget status: %w", err)
		}
		s.Remaining = s.Limit.Sub(s.Spent)
		s.OverBudget = s.Remaining.IsNegative()
		statuses = append(statuses, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return statuses, nil
}
