package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Astemirdum/circulation-service/circulation/internal/errs"
	"github.com/Astemirdum/circulation-service/circulation/internal/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var errReadOnly = errors.New("write in read-only view")

// keyedMutex hands out one mutex per key and forgets it once nobody holds or waits for it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// MemoryRepository keeps the catalog, policy table and ledger in process.
// Row locks are per item, per loan and per borrower; mu only guards the maps for the
// duration of a single read or a commit.
type MemoryRepository struct {
	mu         sync.RWMutex
	items      map[string]model.Item
	policies   map[string]model.Policy
	loans      map[string]model.LoanRecord
	byBorrower map[string]map[string]struct{}
	byItem     map[string]map[string]struct{}

	rowLocks keyedMutex
	log      *zap.Logger
}

func NewMemoryRepository(log *zap.Logger) *MemoryRepository {
	return &MemoryRepository{
		items:      make(map[string]model.Item),
		policies:   make(map[string]model.Policy),
		loans:      make(map[string]model.LoanRecord),
		byBorrower: make(map[string]map[string]struct{}),
		byItem:     make(map[string]map[string]struct{}),
		log:        log.Named("memrepo"),
	}
}

var _ Repository = (*MemoryRepository)(nil)

// PutItem registers a catalog entry. Catalog administration lives outside the engine,
// this is the seeding hook for the memory driver and tests.
func (r *MemoryRepository) PutItem(item model.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.Status == "" {
		item.Status = model.ItemInStock
		if item.AvailableCopies == 0 {
			item.Status = model.ItemFullyBorrowed
		}
	}
	r.items[item.ItemID] = item
}

func (r *MemoryRepository) UpsertPolicy(_ context.Context, policy model.Policy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[policy.Category] = policy
	return nil
}

func (r *MemoryRepository) InTx(_ context.Context, fn func(tx Tx) error) error {
	tx := r.newTx(true)
	defer tx.release()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

func (r *MemoryRepository) View(_ context.Context, fn func(tx Tx) error) error {
	tx := r.newTx(false)
	defer tx.release()
	return fn(tx)
}

func (r *MemoryRepository) ListLoans(_ context.Context, filter LoanFilter) ([]model.LoanRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.LoanRecord, 0)
	switch {
	case filter.BorrowerID != "":
		for id := range r.byBorrower[filter.BorrowerID] {
			if loan := r.loans[id]; filter.match(loan) {
				out = append(out, loan)
			}
		}
	case filter.ItemID != "":
		for id := range r.byItem[filter.ItemID] {
			if loan := r.loans[id]; filter.match(loan) {
				out = append(out, loan)
			}
		}
	default:
		for _, loan := range r.loans {
			if filter.match(loan) {
				out = append(out, loan)
			}
		}
	}
	sortLoans(out)
	return out, nil
}

func (r *MemoryRepository) SweepOverdue(ctx context.Context, now time.Time, borrowerID string) ([]model.LoanRecord, error) {
	candidates, err := r.ListLoans(ctx, LoanFilter{BorrowerID: borrowerID, Statuses: []model.LoanStatus{model.LoanBorrowed}})
	if err != nil {
		return nil, err
	}

	swept := make([]model.LoanRecord, 0)
	for _, c := range candidates {
		if !c.Lapsed(now) {
			continue
		}
		var flipped *model.LoanRecord
		err := r.InTx(ctx, func(tx Tx) error {
			// re-read under the loan lock: a renew or checkin may have won the race
			loan, err := tx.GetLoan(ctx, c.LoanID)
			if err != nil {
				return err
			}
			if !loan.Lapsed(now) {
				return nil
			}
			loan.Status = model.LoanOverdue
			if err := tx.UpdateLoan(ctx, loan); err != nil {
				return err
			}
			loan.Version++
			flipped = &loan
			return nil
		})
		if err != nil {
			return swept, err
		}
		if flipped != nil {
			swept = append(swept, *flipped)
		}
	}
	return swept, nil
}

func (r *MemoryRepository) newTx(forUpdate bool) *memTx {
	return &memTx{
		repo:      r,
		forUpdate: forUpdate,
		held:      make(map[string]func()),
		items:     make(map[string]model.Item),
		loans:     make(map[string]model.LoanRecord),
	}
}

type memTx struct {
	repo      *MemoryRepository
	forUpdate bool

	held  map[string]func()
	order []string

	items map[string]model.Item
	loans map[string]model.LoanRecord
	added []string
}

func (t *memTx) lock(key string) {
	if !t.forUpdate {
		return
	}
	if _, ok := t.held[key]; ok {
		return
	}
	t.held[key] = t.repo.rowLocks.lock(key)
	t.order = append(t.order, key)
}

func (t *memTx) release() {
	for i := len(t.order) - 1; i >= 0; i-- {
		t.held[t.order[i]]()
	}
	t.held = nil
	t.order = nil
}

func (t *memTx) commit() error {
	if len(t.items) == 0 && len(t.loans) == 0 {
		return nil
	}
	r := t.repo
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, item := range t.items {
		r.items[id] = item
	}
	for id, loan := range t.loans {
		r.loans[id] = loan
	}
	for _, id := range t.added {
		loan := t.loans[id]
		index(r.byBorrower, loan.BorrowerID, id)
		index(r.byItem, loan.ItemID, id)
	}
	return nil
}

func index(idx map[string]map[string]struct{}, key, loanID string) {
	set, ok := idx[key]
	if !ok {
		set = make(map[string]struct{})
		idx[key] = set
	}
	set[loanID] = struct{}{}
}

func (t *memTx) LockBorrower(_ context.Context, borrowerID string) error {
	t.lock("borrower:" + borrowerID)
	return nil
}

func (t *memTx) GetItem(_ context.Context, itemID string) (model.Item, error) {
	t.lock("item:" + itemID)
	if item, ok := t.items[itemID]; ok {
		return item, nil
	}
	t.repo.mu.RLock()
	item, ok := t.repo.items[itemID]
	t.repo.mu.RUnlock()
	if !ok {
		return model.Item{}, errs.ErrItemNotFound
	}
	return item, nil
}

func (t *memTx) GetLoan(_ context.Context, loanID string) (model.LoanRecord, error) {
	t.lock("loan:" + loanID)
	if loan, ok := t.loans[loanID]; ok {
		return loan, nil
	}
	t.repo.mu.RLock()
	loan, ok := t.repo.loans[loanID]
	t.repo.mu.RUnlock()
	if !ok {
		return model.LoanRecord{}, errs.ErrLoanNotFound
	}
	return loan, nil
}

func (t *memTx) GetPolicy(_ context.Context, category string) (model.Policy, error) {
	t.repo.mu.RLock()
	defer t.repo.mu.RUnlock()
	policy, ok := t.repo.policies[category]
	if !ok {
		return model.Policy{}, errs.ErrPolicyNotFound
	}
	return policy, nil
}

// borrowerLoans merges committed loans of the borrower with the ones staged in this tx.
func (t *memTx) borrowerLoans(borrowerID string) []model.LoanRecord {
	t.repo.mu.RLock()
	out := make([]model.LoanRecord, 0, len(t.repo.byBorrower[borrowerID]))
	for id := range t.repo.byBorrower[borrowerID] {
		if _, staged := t.loans[id]; staged {
			continue
		}
		out = append(out, t.repo.loans[id])
	}
	t.repo.mu.RUnlock()
	for _, loan := range t.loans {
		if loan.BorrowerID == borrowerID {
			out = append(out, loan)
		}
	}
	return out
}

func (t *memTx) HasActiveLoan(_ context.Context, borrowerID, itemID string) (bool, error) {
	for _, loan := range t.borrowerLoans(borrowerID) {
		if loan.ItemID == itemID && loan.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CountActiveLoans(_ context.Context, borrowerID string) (int, error) {
	n := 0
	for _, loan := range t.borrowerLoans(borrowerID) {
		if loan.Status.Active() {
			n++
		}
	}
	return n, nil
}

func (t *memTx) UpdateItem(_ context.Context, item model.Item) error {
	if !t.forUpdate {
		return errReadOnly
	}
	current, ok := t.items[item.ItemID]
	if !ok {
		t.repo.mu.RLock()
		current, ok = t.repo.items[item.ItemID]
		t.repo.mu.RUnlock()
	}
	if !ok {
		return errs.ErrItemNotFound
	}
	if current.Version != item.Version {
		return errors.Wrap(errs.ErrConcurrencyConflict, "UpdateItem")
	}
	item.Version++
	t.items[item.ItemID] = item
	return nil
}

func (t *memTx) CreateLoan(ctx context.Context, loan model.LoanRecord) error {
	if !t.forUpdate {
		return errReadOnly
	}
	t.repo.mu.RLock()
	_, exists := t.repo.loans[loan.LoanID]
	t.repo.mu.RUnlock()
	if _, staged := t.loans[loan.LoanID]; exists || staged {
		return errors.Errorf("loan %s already exists", loan.LoanID)
	}
	if loan.Status.Active() {
		// mirrors the partial unique index on active (borrower, item)
		dup, _ := t.HasActiveLoan(ctx, loan.BorrowerID, loan.ItemID)
		if dup {
			return errs.ErrDuplicateActiveLoan
		}
	}
	t.loans[loan.LoanID] = loan
	t.added = append(t.added, loan.LoanID)
	return nil
}

func (t *memTx) UpdateLoan(_ context.Context, loan model.LoanRecord) error {
	if !t.forUpdate {
		return errReadOnly
	}
	current, ok := t.loans[loan.LoanID]
	if !ok {
		t.repo.mu.RLock()
		current, ok = t.repo.loans[loan.LoanID]
		t.repo.mu.RUnlock()
	}
	if !ok {
		return errs.ErrLoanNotFound
	}
	if current.Version != loan.Version {
		return errors.Wrap(errs.ErrConcurrencyConflict, "UpdateLoan")
	}
	loan.Version++
	t.loans[loan.LoanID] = loan
	return nil
}

func sortLoans(loans []model.LoanRecord) {
	sort.Slice(loans, func(i, j int) bool {
		if !loans[i].DueAt.Equal(loans[j].DueAt) {
			return loans[i].DueAt.Before(loans[j].DueAt)
		}
		return loans[i].LoanID < loans[j].LoanID
	})
}
