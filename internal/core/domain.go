package core

import (
	"errors"
	"strings"
	"time"
)

// OperationType tells whether a category or operation moves money in or out.
type OperationType string

const (
	Income  OperationType = "income"
	Expense OperationType = "expense"
)

// DefaultLimitCents is the ceiling assigned to automatically created limits
// (10000.00 in the account currency).
const DefaultLimitCents int64 = 10000 * 100

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid operation type")
	ErrEmptyName     = errors.New("empty name")
	ErrEmptyTitle    = errors.New("empty title")
	ErrTypeMismatch  = errors.New("operation type does not match category type")
	ErrZeroDate      = errors.New("date cannot be zero")
)

// Valid reports whether t is one of the two known operation types.
func (t OperationType) Valid() bool {
	return t == Income || t == Expense
}

// User is a member of the household. Users are created by seeding or an
// admin action and are never deleted in the normal flow.
type User struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Category groups operations. Its type constrains which operations may
// reference it and whether a spending limit may exist for it: only expense
// categories carry limits.
type Category struct {
	ID        int64
	Name      string
	Type      OperationType
	Emoji     string
	CreatedAt time.Time
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// Operation is a single income or expense event. Operations are immutable
// once created; the only mutation is deletion.
type Operation struct {
	ID         int64
	UserID     int64
	CategoryID int64
	Type       OperationType
	Amount     Money
	Note       string
	Date       time.Time
	CreatedAt  time.Time
}

func (o Operation) Validate() error {
	if !o.Type.Valid() {
		return ErrInvalidType
	}
	if err := o.Amount.Validate(); err != nil {
		return err
	}
	if o.Date.IsZero() {
		return ErrZeroDate
	}
	if len(o.Note) > 200 {
		return errors.New("note too long (max 200 characters)")
	}
	return nil
}

// Limit is a monthly spending ceiling for one expense category.
// CurrentAmount is a running total maintained by operation writes,
// independent of the analytics computation. At most one limit per
// category is active at a time.
type Limit struct {
	ID            int64
	CategoryID    int64
	LimitAmount   Money
	CurrentAmount Money
	Active        bool
	AutoCreated   bool
	CreatedAt     time.Time
}

func (l Limit) Validate() error {
	if l.LimitAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if l.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Goal is a savings target funded incrementally. Funding has no upper
// clamp, so CurrentAmount may exceed TargetAmount. Archiving is a manual
// flag and is never set automatically on completion.
type Goal struct {
	ID            int64
	Title         string
	TargetAmount  Money
	CurrentAmount Money
	Deadline      time.Time // zero means no deadline
	Emoji         string
	Archived      bool
	CreatedAt     time.Time
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if len(g.Title) > 100 {
		return errors.New("title too long (max 100 characters)")
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Completed reports whether the goal has reached its target.
func (g Goal) Completed() bool {
	return g.CurrentAmount.Cents >= g.TargetAmount.Cents
}
