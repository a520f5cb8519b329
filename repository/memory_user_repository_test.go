package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryUserRepository(t *testing.T) {
	t.Parallel()

	repo := NewMemoryUserRepository()

	alice, err := repo.Create(t.Context(), "alice", "hash-a")
	require.NoError(t, err)
	require.EqualValues(t, 1, alice.ID)
	require.NotEmpty(t, alice.CreatedAt)

	bob, err := repo.Create(t.Context(), "bob", "hash-b")
	require.NoError(t, err)
	require.EqualValues(t, 2, bob.ID)

	_, err = repo.Create(t.Context(), "alice", "other")
	require.ErrorIs(t, err, ErrUserExists)

	got, err := repo.GetByUsername(t.Context(), "alice")
	require.NoError(t, err)
	require.Equal(t, "hash-a", got.PasswordHash)

	_, err = repo.GetByUsername(t.Context(), "carol")
	require.ErrorIs(t, err, ErrUserNotFound)
}
