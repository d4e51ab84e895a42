package auth_test

import (
	"context"
	"testing"

	"github.com/Astemirdum/circulation-service/pkg/auth"
	"github.com/stretchr/testify/require"
)

func TestAuthContext(t *testing.T) {
	t.Parallel()
	_, err := auth.GetUserName(context.Background())
	require.ErrorIs(t, err, auth.ErrNoUserName)
	require.False(t, auth.IsAdmin(context.Background()))

	ctx := auth.SetAuthContext(context.Background(), "U1", auth.RoleAdmin)
	name, err := auth.GetUserName(ctx)
	require.NoError(t, err)
	require.Equal(t, "U1", name)
	require.True(t, auth.IsAdmin(ctx))

	ctx = auth.SetAuthContext(context.Background(), "U2", auth.RoleReader)
	require.False(t, auth.IsAdmin(ctx))
}
