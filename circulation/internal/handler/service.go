package handler

import (
	"context"
	"time"

	"github.com/Astemirdum/circulation-service/circulation/internal/model"
	"github.com/Astemirdum/circulation-service/circulation/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CirculationService interface {
	Checkout(ctx context.Context, itemID, borrowerID, category string) (model.LoanRecord, error)
	Checkin(ctx context.Context, loanID, borrowerID string) error
	Renew(ctx context.Context, loanID, borrowerID string) (time.Time, error)
	AdminForceReturn(ctx context.Context, loanID string) error
	AdminForceRenew(ctx context.Context, loanID string, extendDays int) (time.Time, error)

	ListActiveLoans(ctx context.Context, borrowerID string) (model.ListLoans, error)
	ListOverdue(ctx context.Context, borrowerID string) (model.ListLoans, error)
	ListItemLoans(ctx context.Context, itemID string) (model.ListLoans, error)
	CanBorrow(ctx context.Context, borrowerID, category, itemID string) (model.CanBorrowResponse, error)
	GetLoan(ctx context.Context, loanID, borrowerID string) (model.LoanRecord, error)
	GetItem(ctx context.Context, itemID string) (model.Item, error)
	GetPolicy(ctx context.Context, category string) (model.Policy, error)

	WithdrawItem(ctx context.Context, itemID string) (model.Item, error)
	SweepOverdue(ctx context.Context) (int, error)
}

var _ CirculationService = (*service.Service)(nil)
