// Package sqlite is the persistent Store implementation on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/store"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

var _ store.Store = (*Repository)(nil)

func New(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// isUniqueViolation detects the partial unique index on active limits.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// --- users ---

func (r *Repository) CreateUser(ctx context.Context, u *core.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (name, created_at) VALUES (?, ?) RETURNING id`,
		u.Name, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.CreatedAt)
	if err != nil {
		return core.User{}, notFound(err)
	}
	return u, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Name, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// --- categories ---

func (r *Repository) CreateCategory(ctx context.Context, c *core.Category) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, type, emoji, created_at) VALUES (?, ?, ?, ?) RETURNING id`,
		c.Name, string(c.Type), c.Emoji, c.CreatedAt).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	var typ string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, emoji, created_at FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &typ, &c.Emoji, &c.CreatedAt)
	if err != nil {
		return core.Category{}, notFound(err)
	}
	c.Type = core.OperationType(typ)
	return c, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, emoji, created_at FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &typ, &c.Emoji, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.OperationType(typ)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ?, emoji = ? WHERE id = ?`,
		c.Name, string(c.Type), c.Emoji, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	var n int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM operations WHERE category_id = ?`, id).Scan(&n); err != nil {
		return fmt.Errorf("count category operations: %w", err)
	}
	if n > 0 {
		return store.ErrCategoryInUse
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM limits WHERE category_id = ?`, id); err != nil {
		return fmt.Errorf("delete category limits: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}

	return tx.Commit()
}

// --- operations ---

func (r *Repository) AddOperation(ctx context.Context, op *core.Operation) error {
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add operation: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO operations (user_id, category_id, type, amount_cents, note, op_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		op.UserID, op.CategoryID, string(op.Type), op.Amount.Cents, op.Note, op.Date.UTC(), op.CreatedAt).
		Scan(&op.ID)
	if err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}

	if op.Type == core.Expense {
		// Running total on the active limit moves in the same transaction
		// as the operation row; no read-modify-write from Go.
		_, err = tx.ExecContext(ctx,
			`UPDATE limits SET current_cents = current_cents + ? WHERE category_id = ? AND active = 1`,
			op.Amount.Cents, op.CategoryID)
		if err != nil {
			return fmt.Errorf("increment limit: %w", err)
		}
	}

	return tx.Commit()
}

func (r *Repository) GetOperation(ctx context.Context, id int64) (core.Operation, error) {
	op, err := scanOperation(r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category_id, type, amount_cents, note, op_date, created_at
		 FROM operations WHERE id = ?`, id))
	if err != nil {
		return core.Operation{}, notFound(err)
	}
	return op, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOperation(row rowScanner) (core.Operation, error) {
	var op core.Operation
	var typ string
	err := row.Scan(&op.ID, &op.UserID, &op.CategoryID, &typ, &op.Amount.Cents,
		&op.Note, &op.Date, &op.CreatedAt)
	if err != nil {
		return core.Operation{}, err
	}
	op.Type = core.OperationType(typ)
	return op, nil
}

func operationWhere(f store.OperationFilter) (string, []any) {
	var conds []string
	var args []any
	if f.UserID != nil {
		conds = append(conds, "user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.CategoryID != nil {
		conds = append(conds, "category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}
	if !f.From.IsZero() {
		conds = append(conds, "op_date >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		conds = append(conds, "op_date <= ?")
		args = append(args, f.To.UTC())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *Repository) ListOperations(ctx context.Context, f store.OperationFilter) ([]core.Operation, error) {
	where, args := operationWhere(f)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, type, amount_cents, note, op_date, created_at
		 FROM operations`+where+` ORDER BY op_date, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	var out []core.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		out = append(out, op)
	}
	return out, rows.Err()
}

func (r *Repository) CountOperations(ctx context.Context, f store.OperationFilter) (int64, error) {
	where, args := operationWhere(f)
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM operations`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count operations: %w", err)
	}
	return n, nil
}

func (r *Repository) RemoveOperation(ctx context.Context, id int64) (core.Operation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Operation{}, fmt.Errorf("begin remove operation: %w", err)
	}
	defer tx.Rollback()

	op, err := scanOperation(tx.QueryRowContext(ctx,
		`SELECT id, user_id, category_id, type, amount_cents, note, op_date, created_at
		 FROM operations WHERE id = ?`, id))
	if err != nil {
		return core.Operation{}, notFound(err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM operations WHERE id = ?`, id); err != nil {
		return core.Operation{}, fmt.Errorf("delete operation: %w", err)
	}

	if op.Type == core.Expense {
		// MAX keeps the accumulated total from going negative when the
		// deleted amount exceeds what the limit has recorded.
		_, err = tx.ExecContext(ctx,
			`UPDATE limits SET current_cents = MAX(0, current_cents - ?) WHERE category_id = ? AND active = 1`,
			op.Amount.Cents, op.CategoryID)
		if err != nil {
			return core.Operation{}, fmt.Errorf("decrement limit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Operation{}, fmt.Errorf("commit remove operation: %w", err)
	}
	return op, nil
}

// --- limits ---

func (r *Repository) CreateLimitIfAbsent(ctx context.Context, l *core.Limit) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO limits (category_id, limit_cents, current_cents, active, auto_created, created_at)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		l.CategoryID, l.LimitAmount.Cents, l.CurrentAmount.Cents, l.Active, l.AutoCreated, l.CreatedAt).
		Scan(&l.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrLimitExists
		}
		return fmt.Errorf("create limit: %w", err)
	}
	return nil
}

func scanLimit(row rowScanner) (core.Limit, error) {
	var l core.Limit
	err := row.Scan(&l.ID, &l.CategoryID, &l.LimitAmount.Cents, &l.CurrentAmount.Cents,
		&l.Active, &l.AutoCreated, &l.CreatedAt)
	return l, err
}

const limitColumns = `id, category_id, limit_cents, current_cents, active, auto_created, created_at`

func (r *Repository) GetLimit(ctx context.Context, id int64) (core.Limit, error) {
	l, err := scanLimit(r.db.QueryRowContext(ctx,
		`SELECT `+limitColumns+` FROM limits WHERE id = ?`, id))
	if err != nil {
		return core.Limit{}, notFound(err)
	}
	return l, nil
}

func (r *Repository) GetActiveLimitByCategory(ctx context.Context, categoryID int64) (core.Limit, error) {
	l, err := scanLimit(r.db.QueryRowContext(ctx,
		`SELECT `+limitColumns+` FROM limits WHERE category_id = ? AND active = 1`, categoryID))
	if err != nil {
		return core.Limit{}, notFound(err)
	}
	return l, nil
}

func (r *Repository) ListLimits(ctx context.Context, activeOnly bool) ([]core.Limit, error) {
	query := `SELECT ` + limitColumns + ` FROM limits`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	rows, err := r.db.QueryContext(ctx, query+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list limits: %w", err)
	}
	defer rows.Close()

	var out []core.Limit
	for rows.Next() {
		l, err := scanLimit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan limit: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateLimit(ctx context.Context, l core.Limit) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE limits SET limit_cents = ?, current_cents = ?, active = ? WHERE id = ?`,
		l.LimitAmount.Cents, l.CurrentAmount.Cents, l.Active, l.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrLimitExists
		}
		return fmt.Errorf("update limit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteLimitsByCategory(ctx context.Context, categoryID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM limits WHERE category_id = ?`, categoryID)
	if err != nil {
		return 0, fmt.Errorf("delete limits by category: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// --- goals ---

func (r *Repository) CreateGoal(ctx context.Context, g *core.Goal) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	var deadline any
	if !g.Deadline.IsZero() {
		deadline = g.Deadline.UTC()
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO goals (title, target_cents, current_cents, deadline, emoji, archived, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		g.Title, g.TargetAmount.Cents, g.CurrentAmount.Cents, deadline, g.Emoji, g.Archived, g.CreatedAt).
		Scan(&g.ID)
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

func scanGoal(row rowScanner) (core.Goal, error) {
	var g core.Goal
	var deadline sql.NullTime
	err := row.Scan(&g.ID, &g.Title, &g.TargetAmount.Cents, &g.CurrentAmount.Cents,
		&deadline, &g.Emoji, &g.Archived, &g.CreatedAt)
	if err != nil {
		return core.Goal{}, err
	}
	if deadline.Valid {
		g.Deadline = deadline.Time
	}
	return g, nil
}

const goalColumns = `id, title, target_cents, current_cents, deadline, emoji, archived, created_at`

func (r *Repository) GetGoal(ctx context.Context, id int64) (core.Goal, error) {
	g, err := scanGoal(r.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
	if err != nil {
		return core.Goal{}, notFound(err)
	}
	return g, nil
}

func (r *Repository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateGoal(ctx context.Context, g core.Goal) error {
	var deadline any
	if !g.Deadline.IsZero() {
		deadline = g.Deadline.UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET title = ?, target_cents = ?, current_cents = ?, deadline = ?, emoji = ?, archived = ?
		 WHERE id = ?`,
		g.Title, g.TargetAmount.Cents, g.CurrentAmount.Cents, deadline, g.Emoji, g.Archived, g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteGoal(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) AddGoalProgress(ctx context.Context, id int64, amount core.Money) (core.Goal, error) {
	// Single atomic update; no upper clamp by design.
	g, err := scanGoal(r.db.QueryRowContext(ctx,
		`UPDATE goals SET current_cents = current_cents + ? WHERE id = ?
		 RETURNING `+goalColumns, amount.Cents, id))
	if err != nil {
		return core.Goal{}, notFound(err)
	}
	return g, nil
}
