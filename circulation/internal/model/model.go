package model

import (
	"time"
)

const day = 24 * time.Hour

type ItemStatus string

const (
	ItemInStock       ItemStatus = "IN_STOCK"
	ItemFullyBorrowed ItemStatus = "FULLY_BORROWED"
	ItemWithdrawn     ItemStatus = "WITHDRAWN"
)

type Item struct {
	ItemID          string     `json:"itemId" yaml:"itemId" db:"item_id" validate:"required"`
	Title           string     `json:"title" yaml:"title" db:"title"`
	TotalCopies     int        `json:"totalCopies" yaml:"totalCopies" db:"total_copies" validate:"gte=0"`
	AvailableCopies int        `json:"availableCopies" yaml:"availableCopies" db:"available_copies" validate:"gte=0,ltefield=TotalCopies"`
	Status          ItemStatus `json:"status" yaml:"status" db:"status"`
	Version         int64      `json:"-" yaml:"-" db:"version"`
}

// Take hands out one copy. The caller has already checked availability.
func (i *Item) Take() {
	i.AvailableCopies--
	if i.AvailableCopies <= 0 {
		i.AvailableCopies = 0
		if i.Status == ItemInStock {
			i.Status = ItemFullyBorrowed
		}
	}
}

// Put takes one copy back, clamped to TotalCopies.
func (i *Item) Put() {
	if i.AvailableCopies < i.TotalCopies {
		i.AvailableCopies++
	}
	if i.Status == ItemFullyBorrowed && i.AvailableCopies > 0 {
		i.Status = ItemInStock
	}
}

type Policy struct {
	Category             string `json:"category" yaml:"category" db:"category" validate:"required"`
	MaxConcurrentBorrows int    `json:"maxConcurrentBorrows" yaml:"maxConcurrentBorrows" db:"max_concurrent_borrows" validate:"gte=0"`
	MaxLoanDays          int    `json:"maxLoanDays" yaml:"maxLoanDays" db:"max_loan_days" validate:"gte=0"`
	MaxRenewals          int    `json:"maxRenewals" yaml:"maxRenewals" db:"max_renewals" validate:"gte=0"`
	RenewalExtensionDays int    `json:"renewalExtensionDays" yaml:"renewalExtensionDays" db:"renewal_extension_days" validate:"gte=0"`
	RenewalWindowDays    int    `json:"renewalWindowDays" yaml:"renewalWindowDays" db:"renewal_window_days" validate:"gte=0"`
	Active               bool   `json:"active" yaml:"active" db:"active"`
}

const DefaultRenewalWindowDays = 10

func (p Policy) LoanPeriod() time.Duration {
	return time.Duration(p.MaxLoanDays) * day
}

func (p Policy) RenewalExtension() time.Duration {
	return time.Duration(p.RenewalExtensionDays) * day
}

func (p Policy) RenewalWindow() time.Duration {
	return time.Duration(p.RenewalWindowDays) * day
}

type LoanStatus string

const (
	LoanBorrowed LoanStatus = "BORROWED"
	LoanReturned LoanStatus = "RETURNED"
	LoanOverdue  LoanStatus = "OVERDUE"
)

// Active reports whether the loan still holds a copy.
func (s LoanStatus) Active() bool {
	switch s {
	case LoanBorrowed, LoanOverdue:
		return true
	case LoanReturned:
		return false
	}
	return false
}

type LoanRecord struct {
	LoanID     string     `json:"loanId" db:"loan_id"`
	ItemID     string     `json:"itemId" db:"item_id"`
	BorrowerID string     `json:"borrowerId" db:"borrower_id"`
	Category   string     `json:"category" db:"category"`
	BorrowedAt time.Time  `json:"borrowedAt" db:"borrowed_at"`
	DueAt      time.Time  `json:"dueAt" db:"due_at"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty" db:"returned_at"`
	RenewCount int        `json:"renewCount" db:"renew_count"`
	Status     LoanStatus `json:"status" db:"status"`
	Version    int64      `json:"-" db:"version"`
}

// Lapsed reports a BORROWED loan whose due date has passed but has not been swept yet.
func (l LoanRecord) Lapsed(now time.Time) bool {
	return l.Status == LoanBorrowed && l.DueAt.Before(now)
}

// Evaluated returns the loan as it reads at now: lapsed loans show up as OVERDUE.
func (l LoanRecord) Evaluated(now time.Time) LoanRecord {
	if l.Lapsed(now) {
		l.Status = LoanOverdue
	}
	return l
}

type CheckoutRequest struct {
	ItemID     string `json:"itemId" validate:"required"`
	Category   string `json:"category" validate:"required"`
	BorrowerID string `json:"-" validate:"required"`
}

type CheckoutResponse struct {
	LoanID string    `json:"loanId"`
	DueAt  time.Time `json:"dueAt"`
}

type RenewResponse struct {
	NewDueAt time.Time `json:"newDueAt"`
}

type ForceRenewRequest struct {
	ExtendDays int `json:"extendDays" validate:"gte=0"`
}

type OkResponse struct {
	Ok bool `json:"ok"`
}

type CanBorrowResponse struct {
	CanBorrow bool   `json:"canBorrow"`
	Reason    string `json:"reason,omitempty"`
}

type SweepResponse struct {
	Swept int `json:"swept"`
}

type ListLoans struct {
	Items []LoanRecord `json:"items"`
}
