package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Astemirdum/circulation-service/circulation/internal/errs"
	"github.com/Astemirdum/circulation-service/circulation/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	itemsTableName    = `items`
	policiesTableName = `policies`
	loansTableName    = `loans`

	activeLoanIndexName = `loans_active_borrower_item_uidx`
)

var (
	qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	itemColumns   = []string{"item_id", "title", "total_copies", "available_copies", "status", "version"}
	policyColumns = []string{"category", "max_concurrent_borrows", "max_loan_days", "max_renewals", "renewal_extension_days", "renewal_window_days", "active"}
	loanColumns   = []string{"loan_id", "item_id", "borrower_id", "category", "borrowed_at", "due_at", "returned_at", "renew_count", "status", "version"}
)

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	if db == nil {
		return nil, errors.New("nil db pool")
	}
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

var _ Repository = (*repository)(nil)

func (r *repository) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return r.inTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, true, fn)
}

func (r *repository) View(ctx context.Context, fn func(tx Tx) error) error {
	return r.inTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, false, fn)
}

func (r *repository) inTx(ctx context.Context, opts pgx.TxOptions, forUpdate bool, fn func(tx Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, opts)
	if err != nil {
		return mapPgError(errors.Wrap(err, "begin tx"))
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.log.Warn("rollback", zap.Error(rbErr))
			}
		}
	}()

	if err = fn(&pgTx{tx: tx, forUpdate: forUpdate, log: r.log}); err != nil {
		return mapPgError(err)
	}
	if err = tx.Commit(ctx); err != nil {
		return mapPgError(errors.Wrap(err, "commit"))
	}
	return nil
}

func (r *repository) ListLoans(ctx context.Context, filter LoanFilter) ([]model.LoanRecord, error) {
	q := qb.Select(loanColumns...).From(loansTableName)
	if filter.BorrowerID != "" {
		q = q.Where(sq.Eq{"borrower_id": filter.BorrowerID})
	}
	if filter.ItemID != "" {
		q = q.Where(sq.Eq{"item_id": filter.ItemID})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, st := range filter.Statuses {
			statuses = append(statuses, string(st))
		}
		q = q.Where(sq.Eq{"status": statuses})
	}
	query, args, err := q.OrderBy("due_at", "loan_id").ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListLoans", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "ListLoans")
	}
	defer rows.Close()

	loans, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.LoanRecord])
	if err != nil {
		return nil, errors.Wrap(err, "pgx.CollectRows")
	}
	return loans, nil
}

func (r *repository) SweepOverdue(ctx context.Context, now time.Time, borrowerID string) ([]model.LoanRecord, error) {
	q := qb.Update(loansTableName).
		Set("status", string(model.LoanOverdue)).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"status": string(model.LoanBorrowed)}).
		Where(sq.Lt{"due_at": now})
	if borrowerID != "" {
		q = q.Where(sq.Eq{"borrower_id": borrowerID})
	}
	query, args, err := q.Suffix("RETURNING " + strings.Join(loanColumns, ", ")).ToSql()
	if err != nil {
		return nil, err
	}

	// A single UPDATE takes the row lock of each loan it flips and re-checks the predicate
	// after waiting on a concurrent renew or checkin of the same row.
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(errors.Wrap(err, "SweepOverdue"))
	}
	defer rows.Close()

	swept, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.LoanRecord])
	if err != nil {
		return nil, mapPgError(errors.Wrap(err, "pgx.CollectRows"))
	}
	return swept, nil
}

func (r *repository) UpsertPolicy(ctx context.Context, p model.Policy) error {
	query, args, err := qb.Insert(policiesTableName).
		Columns(policyColumns...).
		Values(p.Category, p.MaxConcurrentBorrows, p.MaxLoanDays, p.MaxRenewals, p.RenewalExtensionDays, p.RenewalWindowDays, p.Active).
		Suffix(`ON CONFLICT (category) DO UPDATE SET
	max_concurrent_borrows = EXCLUDED.max_concurrent_borrows,
	max_loan_days = EXCLUDED.max_loan_days,
	max_renewals = EXCLUDED.max_renewals,
	renewal_extension_days = EXCLUDED.renewal_extension_days,
	renewal_window_days = EXCLUDED.renewal_window_days,
	active = EXCLUDED.active`).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return errors.Wrap(err, "UpsertPolicy")
}

type pgTx struct {
	tx        pgx.Tx
	forUpdate bool
	log       *zap.Logger
}

func (t *pgTx) lockSuffix(q sq.SelectBuilder) sq.SelectBuilder {
	if t.forUpdate {
		return q.Suffix("FOR UPDATE")
	}
	return q
}

func (t *pgTx) LockBorrower(ctx context.Context, borrowerID string) error {
	if !t.forUpdate {
		return nil
	}
	_, err := t.tx.Exec(ctx, `select pg_advisory_xact_lock(hashtextextended(@borrower_id, 0))`,
		pgx.NamedArgs{"borrower_id": borrowerID})
	return errors.Wrap(err, "LockBorrower")
}

func (t *pgTx) GetItem(ctx context.Context, itemID string) (model.Item, error) {
	query, args, err := t.lockSuffix(qb.Select(itemColumns...).
		From(itemsTableName).
		Where(sq.Eq{"item_id": itemID})).
		ToSql()
	if err != nil {
		return model.Item{}, err
	}

	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return model.Item{}, errors.Wrap(err, "GetItem")
	}
	defer rows.Close()

	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Item])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Item{}, errs.ErrItemNotFound
		}
		return model.Item{}, errors.Wrap(err, "GetItem")
	}
	return item, nil
}

func (t *pgTx) GetLoan(ctx context.Context, loanID string) (model.LoanRecord, error) {
	query, args, err := t.lockSuffix(qb.Select(loanColumns...).
		From(loansTableName).
		Where(sq.Eq{"loan_id": loanID})).
		ToSql()
	if err != nil {
		return model.LoanRecord{}, err
	}

	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return model.LoanRecord{}, errors.Wrap(err, "GetLoan")
	}
	defer rows.Close()

	loan, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.LoanRecord])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.LoanRecord{}, errs.ErrLoanNotFound
		}
		return model.LoanRecord{}, errors.Wrap(err, "GetLoan")
	}
	return loan, nil
}

func (t *pgTx) GetPolicy(ctx context.Context, category string) (model.Policy, error) {
	query, args, err := qb.Select(policyColumns...).
		From(policiesTableName).
		Where(sq.Eq{"category": category}).
		ToSql()
	if err != nil {
		return model.Policy{}, err
	}

	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return model.Policy{}, errors.Wrap(err, "GetPolicy")
	}
	defer rows.Close()

	policy, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Policy])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Policy{}, errs.ErrPolicyNotFound
		}
		return model.Policy{}, errors.Wrap(err, "GetPolicy")
	}
	return policy, nil
}

func (t *pgTx) HasActiveLoan(ctx context.Context, borrowerID, itemID string) (bool, error) {
	n, err := t.countLoans(ctx, sq.Eq{
		"borrower_id": borrowerID,
		"item_id":     itemID,
		"status":      activeStatuses(),
	})
	return n > 0, err
}

func (t *pgTx) CountActiveLoans(ctx context.Context, borrowerID string) (int, error) {
	return t.countLoans(ctx, sq.Eq{
		"borrower_id": borrowerID,
		"status":      activeStatuses(),
	})
}

func (t *pgTx) countLoans(ctx context.Context, where sq.Eq) (int, error) {
	query, args, err := qb.Select("count(*)").
		From(loansTableName).
		Where(where).
		ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	if err = t.tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "countLoans")
	}
	return count, nil
}

func (t *pgTx) UpdateItem(ctx context.Context, item model.Item) error {
	query, args, err := qb.Update(itemsTableName).
		Set("available_copies", item.AvailableCopies).
		Set("status", string(item.Status)).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"item_id": item.ItemID, "version": item.Version}).
		ToSql()
	if err != nil {
		return err
	}
	return t.execVersioned(ctx, "UpdateItem", query, args)
}

func (t *pgTx) CreateLoan(ctx context.Context, loan model.LoanRecord) error {
	query, args, err := qb.Insert(loansTableName).
		Columns(loanColumns...).
		Values(loan.LoanID, loan.ItemID, loan.BorrowerID, loan.Category, loan.BorrowedAt, loan.DueAt,
			loan.ReturnedAt, loan.RenewCount, string(loan.Status), loan.Version).
		ToSql()
	if err != nil {
		return err
	}
	if _, err = t.tx.Exec(ctx, query, args...); err != nil {
		t.log.Error("CreateLoan", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return errors.Wrap(err, "CreateLoan")
	}
	return nil
}

func (t *pgTx) UpdateLoan(ctx context.Context, loan model.LoanRecord) error {
	query, args, err := qb.Update(loansTableName).
		Set("due_at", loan.DueAt).
		Set("returned_at", loan.ReturnedAt).
		Set("renew_count", loan.RenewCount).
		Set("status", string(loan.Status)).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"loan_id": loan.LoanID, "version": loan.Version}).
		ToSql()
	if err != nil {
		return err
	}
	return t.execVersioned(ctx, "UpdateLoan", query, args)
}

func (t *pgTx) execVersioned(ctx context.Context, op, query string, args []interface{}) error {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, op)
	}
	if tag.RowsAffected() == 0 {
		t.log.Info("version mismatch", zap.String("op", op))
		return errors.Wrap(errs.ErrConcurrencyConflict, op)
	}
	return nil
}

// mapPgError turns lock and constraint failures into circulation error kinds.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
		return errors.Wrap(errs.ErrConcurrencyConflict, pgErr.Message)
	case pgerrcode.UniqueViolation:
		if pgErr.ConstraintName == activeLoanIndexName {
			return errs.ErrDuplicateActiveLoan
		}
	}
	return err
}

