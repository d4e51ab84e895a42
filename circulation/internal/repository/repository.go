package repository

import (
	"context"
	"time"

	"github.com/Astemirdum/circulation-service/circulation/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

// Repository is the persistence contract of the circulation engine.
// Every mutation goes through InTx; rows read through Tx inside InTx stay locked until fn returns.
type Repository interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	// View runs fn against a read-only snapshot. Tx reads take no locks and writes are rejected.
	View(ctx context.Context, fn func(tx Tx) error) error

	ListLoans(ctx context.Context, filter LoanFilter) ([]model.LoanRecord, error)
	// SweepOverdue flips every BORROWED loan with due_at < now to OVERDUE, one row at a time,
	// and returns the flipped loans. An empty borrowerID sweeps all borrowers.
	SweepOverdue(ctx context.Context, now time.Time, borrowerID string) ([]model.LoanRecord, error)
	UpsertPolicy(ctx context.Context, policy model.Policy) error
}

// Tx is a unit of work. Lock order is borrower, then loan, then item.
type Tx interface {
	LockBorrower(ctx context.Context, borrowerID string) error
	GetItem(ctx context.Context, itemID string) (model.Item, error)
	GetLoan(ctx context.Context, loanID string) (model.LoanRecord, error)
	GetPolicy(ctx context.Context, category string) (model.Policy, error)
	HasActiveLoan(ctx context.Context, borrowerID, itemID string) (bool, error)
	CountActiveLoans(ctx context.Context, borrowerID string) (int, error)

	// UpdateItem and UpdateLoan are version checked: a stale version yields errs.ErrConcurrencyConflict.
	UpdateItem(ctx context.Context, item model.Item) error
	CreateLoan(ctx context.Context, loan model.LoanRecord) error
	UpdateLoan(ctx context.Context, loan model.LoanRecord) error
}

type LoanFilter struct {
	BorrowerID string
	ItemID     string
	Statuses   []model.LoanStatus
}

func (f LoanFilter) match(loan model.LoanRecord) bool {
	if f.BorrowerID != "" && loan.BorrowerID != f.BorrowerID {
		return false
	}
	if f.ItemID != "" && loan.ItemID != f.ItemID {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, st := range f.Statuses {
		if loan.Status == st {
			return true
		}
	}
	return false
}

func activeStatuses() []string {
	return []string{string(model.LoanBorrowed), string(model.LoanOverdue)}
}
