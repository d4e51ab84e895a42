package service

import (
	"context"
	"time"

	"github.com/Astemirdum/circulation-service/circulation/internal/errs"
	"github.com/Astemirdum/circulation-service/circulation/internal/model"
	"github.com/Astemirdum/circulation-service/circulation/internal/repository"
	"github.com/Astemirdum/circulation-service/pkg/kafka"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Service struct {
	log    *zap.Logger
	repo   repository.Repository
	events EventPublisher
	now    func() time.Time
	newID  func() string
	retry  retryConfig
}

type Option func(s *Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(s *Service) {
		if attempts > 0 {
			s.retry.maxAttempts = attempts
		}
		if baseDelay >= 0 {
			s.retry.baseDelay = baseDelay
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		s.newID = gen
	}
}

func NewService(repo repository.Repository, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:    log.Named("engine"),
		repo:   repo,
		events: noopPublisher{},
		now:    time.Now,
		newID:  uuid.NewString,
		retry: retryConfig{
			maxAttempts:  defaultMaxAttempts,
			baseDelay:    defaultBaseDelay,
			jitterFactor: defaultJitterFactor,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// checkoutPreconditions evaluates the borrow rules in order and stops at the first failure.
// Inside InTx every row it reads stays locked.
func checkoutPreconditions(ctx context.Context, tx repository.Tx, itemID, borrowerID, category string) (model.Item, model.Policy, error) {
	item, err := tx.GetItem(ctx, itemID)
	if err != nil {
		return model.Item{}, model.Policy{}, err
	}
	switch item.Status {
	case model.ItemWithdrawn:
		return item, model.Policy{}, errs.ErrItemWithdrawn
	case model.ItemInStock, model.ItemFullyBorrowed:
	}
	if item.AvailableCopies <= 0 {
		return item, model.Policy{}, errs.ErrNoAvailableCopies
	}

	dup, err := tx.HasActiveLoan(ctx, borrowerID, itemID)
	if err != nil {
		return item, model.Policy{}, err
	}
	if dup {
		return item, model.Policy{}, errs.ErrDuplicateActiveLoan
	}

	policy, err := tx.GetPolicy(ctx, category)
	if err != nil {
		return item, model.Policy{}, err
	}
	if !policy.Active {
		return item, policy, errs.ErrPolicyInactive
	}

	active, err := tx.CountActiveLoans(ctx, borrowerID)
	if err != nil {
		return item, policy, err
	}
	if active >= policy.MaxConcurrentBorrows {
		return item, policy, errs.ErrBorrowLimitExceeded
	}
	return item, policy, nil
}

func (s *Service) Checkout(ctx context.Context, itemID, borrowerID, category string) (model.LoanRecord, error) {
	var loan model.LoanRecord
	err := s.withRetry(ctx, "checkout", func(ctx context.Context) error {
		now := s.now()
		return s.repo.InTx(ctx, func(tx repository.Tx) error {
			// serializes the borrow limit across checkouts of different items
			if err := tx.LockBorrower(ctx, borrowerID); err != nil {
				return err
			}
			item, policy, err := checkoutPreconditions(ctx, tx, itemID, borrowerID, category)
			if err != nil {
				return err
			}

			item.Take()
			if err = tx.UpdateItem(ctx, item); err != nil {
				return err
			}
			loan = model.LoanRecord{
				LoanID:     s.newID(),
				ItemID:     itemID,
				BorrowerID: borrowerID,
				Category:   policy.Category,
				BorrowedAt: now,
				DueAt:      now.Add(policy.LoanPeriod()),
				RenewCount: 0,
				Status:     model.LoanBorrowed,
			}
			return tx.CreateLoan(ctx, loan)
		})
	})
	if err != nil {
		s.logRejected("checkout", err, zap.String("item", itemID), zap.String("borrower", borrowerID))
		return model.LoanRecord{}, err
	}
	s.log.Debug("checkout", zap.String("loan", loan.LoanID), zap.String("item", itemID),
		zap.String("borrower", borrowerID), zap.Time("due", loan.DueAt))
	s.emit(kafka.EventCheckout, loan, loan.BorrowedAt)
	return loan, nil
}

// CanBorrow runs the checkout preconditions against a read-only snapshot.
// A failed precondition is reported through the response, not the error.
func (s *Service) CanBorrow(ctx context.Context, borrowerID, category, itemID string) (model.CanBorrowResponse, error) {
	err := s.repo.View(ctx, func(tx repository.Tx) error {
		_, _, err := checkoutPreconditions(ctx, tx, itemID, borrowerID, category)
		return err
	})
	if err == nil {
		return model.CanBorrowResponse{CanBorrow: true}, nil
	}
	if kind := errs.KindOf(err); kind != errs.KindInternal {
		return model.CanBorrowResponse{CanBorrow: false, Reason: string(kind)}, nil
	}
	return model.CanBorrowResponse{}, err
}

func (s *Service) Checkin(ctx context.Context, loanID, borrowerID string) error {
	_, err := s.returnLoan(ctx, loanID, borrowerID, false)
	return err
}

func (s *Service) AdminForceReturn(ctx context.Context, loanID string) error {
	_, err := s.returnLoan(ctx, loanID, "", true)
	return err
}

func (s *Service) returnLoan(ctx context.Context, loanID, borrowerID string, admin bool) (model.LoanRecord, error) {
	var loan model.LoanRecord
	err := s.withRetry(ctx, "checkin", func(ctx context.Context) error {
		now := s.now()
		return s.repo.InTx(ctx, func(tx repository.Tx) error {
			var err error
			loan, err = tx.GetLoan(ctx, loanID)
			if err != nil {
				return err
			}
			if !admin && loan.BorrowerID != borrowerID {
				return errs.ErrNotLoanOwner
			}
			switch loan.Status {
			case model.LoanReturned:
				return errs.ErrAlreadyReturned
			case model.LoanBorrowed, model.LoanOverdue:
			}

			loan.ReturnedAt = &now
			loan.Status = model.LoanReturned
			if err = tx.UpdateLoan(ctx, loan); err != nil {
				return err
			}

			item, err := tx.GetItem(ctx, loan.ItemID)
			if err != nil {
				return err
			}
			item.Put()
			return tx.UpdateItem(ctx, item)
		})
	})
	if err != nil {
		s.logRejected("checkin", err, zap.String("loan", loanID), zap.Bool("admin", admin))
		return model.LoanRecord{}, err
	}

	eventType := kafka.EventCheckin
	if admin {
		eventType = kafka.EventForceReturn
	}
	s.log.Debug("checkin", zap.String("loan", loanID), zap.String("item", loan.ItemID), zap.Bool("admin", admin))
	s.emit(eventType, loan, *loan.ReturnedAt)
	return loan, nil
}

// Renew extends a BORROWED loan. A loan found lapsed under the lock is flipped to OVERDUE
// and committed before NotRenewable is returned.
func (s *Service) Renew(ctx context.Context, loanID, borrowerID string) (time.Time, error) {
	return s.renew(ctx, loanID, borrowerID, false, 0)
}

// AdminForceRenew skips ownership, the renewal limit and the renewal window.
// extendDays == 0 falls back to the policy extension.
func (s *Service) AdminForceRenew(ctx context.Context, loanID string, extendDays int) (time.Time, error) {
	if extendDays < 0 {
		return time.Time{}, errs.NotRenewable("negative extension")
	}
	return s.renew(ctx, loanID, "", true, extendDays)
}

func (s *Service) renew(ctx context.Context, loanID, borrowerID string, admin bool, extendDays int) (time.Time, error) {
	var (
		loan    model.LoanRecord
		lapsed  bool
		flipped time.Time
	)
	err := s.withRetry(ctx, "renew", func(ctx context.Context) error {
		now := s.now()
		lapsed = false
		return s.repo.InTx(ctx, func(tx repository.Tx) error {
			var err error
			loan, err = tx.GetLoan(ctx, loanID)
			if err != nil {
				return err
			}
			if !admin && loan.BorrowerID != borrowerID {
				return errs.ErrNotLoanOwner
			}
			switch loan.Status {
			case model.LoanReturned:
				return errs.ErrAlreadyReturned
			case model.LoanOverdue:
				return errs.NotRenewable("loan is overdue")
			case model.LoanBorrowed:
			}
			if loan.Lapsed(now) {
				loan.Status = model.LoanOverdue
				lapsed, flipped = true, now
				return tx.UpdateLoan(ctx, loan)
			}

			extension := time.Duration(extendDays) * 24 * time.Hour
			if !admin || extendDays == 0 {
				policy, err := tx.GetPolicy(ctx, loan.Category)
				if err != nil {
					return err
				}
				if !admin {
					if err = renewable(loan, policy, now); err != nil {
						return err
					}
				}
				if extendDays == 0 {
					extension = policy.RenewalExtension()
				}
			}

			loan.DueAt = loan.DueAt.Add(extension)
			loan.RenewCount++
			return tx.UpdateLoan(ctx, loan)
		})
	})
	if err == nil && lapsed {
		s.emit(kafka.EventOverdue, loan, flipped)
		err = errs.NotRenewable("loan is overdue")
	}
	if err != nil {
		s.logRejected("renew", err, zap.String("loan", loanID), zap.Bool("admin", admin))
		return time.Time{}, err
	}

	eventType := kafka.EventRenew
	if admin {
		eventType = kafka.EventForceRenew
	}
	s.log.Debug("renew", zap.String("loan", loanID), zap.Time("due", loan.DueAt), zap.Int("renewCount", loan.RenewCount))
	s.emit(eventType, loan, s.now())
	return loan.DueAt, nil
}

// renewable checks the borrower-side renewal rules of a BORROWED loan.
// The active flag only gates new checkouts.
func renewable(loan model.LoanRecord, policy model.Policy, now time.Time) error {
	if loan.RenewCount >= policy.MaxRenewals {
		return errs.NotRenewable("renewal limit reached")
	}
	if now.Before(loan.DueAt.Add(-policy.RenewalWindow())) {
		return errs.NotRenewable("outside renewal window")
	}
	return nil
}

func (s *Service) WithdrawItem(ctx context.Context, itemID string) (model.Item, error) {
	var item model.Item
	err := s.withRetry(ctx, "withdraw", func(ctx context.Context) error {
		return s.repo.InTx(ctx, func(tx repository.Tx) error {
			var err error
			item, err = tx.GetItem(ctx, itemID)
			if err != nil {
				return err
			}
			switch item.Status {
			case model.ItemWithdrawn:
				return errs.ErrItemWithdrawn
			case model.ItemInStock, model.ItemFullyBorrowed:
			}
			item.Status = model.ItemWithdrawn
			if err = tx.UpdateItem(ctx, item); err != nil {
				return err
			}
			item.Version++
			return nil
		})
	})
	if err != nil {
		s.logRejected("withdraw", err, zap.String("item", itemID))
		return model.Item{}, err
	}
	s.log.Info("item withdrawn", zap.String("item", itemID))
	s.events.Publish(kafka.CirculationEvent{Timestamp: s.now(), EventType: kafka.EventWithdraw, ItemID: itemID})
	return item, nil
}

// SweepOverdue reclassifies every lapsed BORROWED loan and returns how many were flipped.
func (s *Service) SweepOverdue(ctx context.Context) (int, error) {
	swept, err := s.sweep(ctx, "")
	if err != nil {
		return 0, err
	}
	if len(swept) > 0 {
		s.log.Info("overdue sweep", zap.Int("swept", len(swept)))
	}
	return len(swept), nil
}

func (s *Service) sweep(ctx context.Context, borrowerID string) ([]model.LoanRecord, error) {
	var swept []model.LoanRecord
	err := s.withRetry(ctx, "sweep", func(ctx context.Context) error {
		var err error
		swept, err = s.repo.SweepOverdue(ctx, s.now(), borrowerID)
		return err
	})
	// loans flipped before a failure are committed and still get their event
	for _, loan := range swept {
		s.emit(kafka.EventOverdue, loan, s.now())
	}
	if err != nil {
		s.log.Error("sweep", zap.String("borrower", borrowerID), zap.Error(err))
		return swept, errors.Wrap(err, "sweep overdue")
	}
	return swept, nil
}

// ListActiveLoans sweeps the borrower's lapsed loans first, so OVERDUE is current.
func (s *Service) ListActiveLoans(ctx context.Context, borrowerID string) (model.ListLoans, error) {
	return s.listLoans(ctx, repository.LoanFilter{
		BorrowerID: borrowerID,
		Statuses:   []model.LoanStatus{model.LoanBorrowed, model.LoanOverdue},
	})
}

// ListOverdue lists OVERDUE loans of one borrower, or of everybody when borrowerID is empty.
func (s *Service) ListOverdue(ctx context.Context, borrowerID string) (model.ListLoans, error) {
	return s.listLoans(ctx, repository.LoanFilter{
		BorrowerID: borrowerID,
		Statuses:   []model.LoanStatus{model.LoanOverdue},
	})
}

// ListItemLoans lists the active loans holding copies of an item, evaluated at now.
func (s *Service) ListItemLoans(ctx context.Context, itemID string) (model.ListLoans, error) {
	loans, err := s.repo.ListLoans(ctx, repository.LoanFilter{
		ItemID:   itemID,
		Statuses: []model.LoanStatus{model.LoanBorrowed, model.LoanOverdue},
	})
	if err != nil {
		return model.ListLoans{}, err
	}
	now := s.now()
	for i := range loans {
		loans[i] = loans[i].Evaluated(now)
	}
	return model.ListLoans{Items: loans}, nil
}

func (s *Service) listLoans(ctx context.Context, filter repository.LoanFilter) (model.ListLoans, error) {
	if _, err := s.sweep(ctx, filter.BorrowerID); err != nil {
		return model.ListLoans{}, err
	}
	loans, err := s.repo.ListLoans(ctx, filter)
	if err != nil {
		return model.ListLoans{}, err
	}
	return model.ListLoans{Items: loans}, nil
}

// GetLoan reads one loan of the borrower. Status is evaluated at now, so a lapsed loan
// reads as OVERDUE even before the sweeper reaches it.
func (s *Service) GetLoan(ctx context.Context, loanID, borrowerID string) (model.LoanRecord, error) {
	var loan model.LoanRecord
	err := s.repo.View(ctx, func(tx repository.Tx) error {
		var err error
		loan, err = tx.GetLoan(ctx, loanID)
		return err
	})
	if err != nil {
		return model.LoanRecord{}, err
	}
	if loan.BorrowerID != borrowerID {
		return model.LoanRecord{}, errs.ErrNotLoanOwner
	}
	return loan.Evaluated(s.now()), nil
}

func (s *Service) GetItem(ctx context.Context, itemID string) (model.Item, error) {
	var item model.Item
	err := s.repo.View(ctx, func(tx repository.Tx) error {
		var err error
		item, err = tx.GetItem(ctx, itemID)
		return err
	})
	return item, err
}

func (s *Service) GetPolicy(ctx context.Context, category string) (model.Policy, error) {
	var policy model.Policy
	err := s.repo.View(ctx, func(tx repository.Tx) error {
		var err error
		policy, err = tx.GetPolicy(ctx, category)
		return err
	})
	return policy, err
}

// SeedPolicies upserts the configured policy table.
func (s *Service) SeedPolicies(ctx context.Context, policies []model.Policy) error {
	for _, p := range policies {
		if p.RenewalWindowDays == 0 {
			p.RenewalWindowDays = model.DefaultRenewalWindowDays
		}
		if err := s.repo.UpsertPolicy(ctx, p); err != nil {
			return errors.Wrapf(err, "seed policy %s", p.Category)
		}
	}
	s.log.Info("policies seeded", zap.Int("count", len(policies)))
	return nil
}

func (s *Service) logRejected(op string, err error, fields ...zap.Field) {
	kind := errs.KindOf(err)
	fields = append(fields, zap.String("kind", string(kind)), zap.Error(err))
	if kind == errs.KindInternal {
		s.log.Error(op, fields...)
		return
	}
	s.log.Debug(op+" rejected", fields...)
}
