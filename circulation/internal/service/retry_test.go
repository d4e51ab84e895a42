package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/circulation-service/circulation/internal/errs"
	"github.com/Astemirdum/circulation-service/circulation/internal/model"
	"github.com/Astemirdum/circulation-service/circulation/internal/repository"
	"github.com/Astemirdum/circulation-service/circulation/internal/service"
	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	repo_mocks "github.com/Astemirdum/circulation-service/circulation/internal/repository/mocks"
)

func TestService_RetryOnConflict(t *testing.T) {
	t.Parallel()
	conflict := errors.Wrap(errs.ErrConcurrencyConflict, "UpdateItem")

	tests := []struct {
		name         string
		mockBehavior func(r *repo_mocks.MockRepository)
		wantErr      error
	}{
		{
			name: "ok after two conflicts",
			mockBehavior: func(r *repo_mocks.MockRepository) {
				gomock.InOrder(
					r.EXPECT().InTx(gomock.Any(), gomock.Any()).Return(conflict).Times(2),
					r.EXPECT().InTx(gomock.Any(), gomock.Any()).Return(nil),
				)
			},
		},
		{
			name: "conflict surfaces after three attempts",
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().InTx(gomock.Any(), gomock.Any()).Return(conflict).Times(3)
			},
			wantErr: errs.ErrConcurrencyConflict,
		},
		{
			name: "validation failure is not retried",
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().InTx(gomock.Any(), gomock.Any()).Return(errs.ErrNoAvailableCopies).Times(1)
			},
			wantErr: errs.ErrNoAvailableCopies,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			repo := repo_mocks.NewMockRepository(c)
			tt.mockBehavior(repo)

			svc := service.NewService(repo, zap.NewNop(), service.WithRetry(3, 0))
			_, err := svc.Checkout(context.Background(), "B1", "U1", "student")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestService_CheckoutSurfacesCreateFailure(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	repo := repo_mocks.NewMockRepository(c)
	tx := repo_mocks.NewMockTx(c)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	repo.EXPECT().InTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(repository.Tx) error) error {
			return fn(tx)
		})
	gomock.InOrder(
		tx.EXPECT().LockBorrower(gomock.Any(), "U1").Return(nil),
		tx.EXPECT().GetItem(gomock.Any(), "B1").Return(model.Item{ItemID: "B1", TotalCopies: 1, AvailableCopies: 1, Status: model.ItemInStock}, nil),
		tx.EXPECT().HasActiveLoan(gomock.Any(), "U1", "B1").Return(false, nil),
		tx.EXPECT().GetPolicy(gomock.Any(), "student").Return(student, nil),
		tx.EXPECT().CountActiveLoans(gomock.Any(), "U1").Return(0, nil),
		tx.EXPECT().UpdateItem(gomock.Any(), model.Item{ItemID: "B1", TotalCopies: 1, AvailableCopies: 0, Status: model.ItemFullyBorrowed}).Return(nil),
		tx.EXPECT().CreateLoan(gomock.Any(), model.LoanRecord{
			LoanID:     "L1",
			ItemID:     "B1",
			BorrowerID: "U1",
			Category:   "student",
			BorrowedAt: now,
			DueAt:      now.Add(30 * day),
			Status:     model.LoanBorrowed,
		}).Return(errs.ErrDuplicateActiveLoan),
	)

	svc := service.NewService(repo, zap.NewNop(),
		service.WithClock(func() time.Time { return now }),
		service.WithIDGenerator(func() string { return "L1" }),
	)
	_, err := svc.Checkout(context.Background(), "B1", "U1", "student")
	require.ErrorIs(t, err, errs.ErrDuplicateActiveLoan)
}
