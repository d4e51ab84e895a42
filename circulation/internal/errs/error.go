package errs

import (
	"errors"
)

type Kind string

const (
	KindItemNotFound        Kind = "ItemNotFound"
	KindItemWithdrawn       Kind = "ItemWithdrawn"
	KindNoAvailableCopies   Kind = "NoAvailableCopies"
	KindDuplicateActiveLoan Kind = "DuplicateActiveLoan"
	KindPolicyNotFound      Kind = "PolicyNotFound"
	KindPolicyInactive      Kind = "PolicyInactive"
	KindBorrowLimitExceeded Kind = "BorrowLimitExceeded"
	KindLoanNotFound        Kind = "LoanNotFound"
	KindNotLoanOwner        Kind = "NotLoanOwner"
	KindAlreadyReturned     Kind = "AlreadyReturned"
	KindNotRenewable        Kind = "NotRenewable"
	KindConcurrencyConflict Kind = "ConcurrencyConflict"
	KindInternal            Kind = "Internal"
)

// Error is a typed circulation failure. Two errors match under errors.Is when their kinds match.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	ErrItemNotFound        = New(KindItemNotFound, "item not found")
	ErrItemWithdrawn       = New(KindItemWithdrawn, "item is withdrawn from circulation")
	ErrNoAvailableCopies   = New(KindNoAvailableCopies, "no available copies")
	ErrDuplicateActiveLoan = New(KindDuplicateActiveLoan, "borrower already holds this item")
	ErrPolicyNotFound      = New(KindPolicyNotFound, "no policy for category")
	ErrPolicyInactive      = New(KindPolicyInactive, "policy for category is inactive")
	ErrBorrowLimitExceeded = New(KindBorrowLimitExceeded, "borrow limit exceeded")
	ErrLoanNotFound        = New(KindLoanNotFound, "loan not found")
	ErrNotLoanOwner        = New(KindNotLoanOwner, "loan belongs to another borrower")
	ErrAlreadyReturned     = New(KindAlreadyReturned, "loan already returned")
	ErrNotRenewable        = New(KindNotRenewable, "loan is not renewable")
	ErrConcurrencyConflict = New(KindConcurrencyConflict, "concurrent update detected, retry")
)

// NotRenewable narrows ErrNotRenewable with the reason.
func NotRenewable(reason string) *Error {
	return New(KindNotRenewable, "loan is not renewable: "+reason)
}

// KindOf extracts the kind of a circulation error, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

type ErrorResponse struct {
	ErrorKind Kind   `json:"errorKind"`
	Message   string `json:"message"`
}
