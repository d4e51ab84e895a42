package errs_test

import (
	"fmt"
	"testing"

	"github.com/Astemirdum/circulation-service/circulation/internal/errs"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestKindMatching(t *testing.T) {
	t.Parallel()
	err := errs.NotRenewable("loan is overdue")
	require.ErrorIs(t, err, errs.ErrNotRenewable)
	require.NotErrorIs(t, err, errs.ErrAlreadyReturned)
	require.Equal(t, "loan is not renewable: loan is overdue", err.Error())

	wrapped := errors.Wrap(errs.ErrConcurrencyConflict, "update item")
	require.ErrorIs(t, wrapped, errs.ErrConcurrencyConflict)
	require.Equal(t, errs.KindConcurrencyConflict, errs.KindOf(wrapped))

	require.Equal(t, errs.KindLoanNotFound, errs.KindOf(fmt.Errorf("checkin: %w", errs.ErrLoanNotFound)))
	require.Equal(t, errs.KindInternal, errs.KindOf(errors.New("db down")))
}
