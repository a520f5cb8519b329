package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"chem-purchase-assistant/repository"
)

func TestAuthService_RegisterAndAuthenticate(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryUserRepository()
	svc := NewAuthService(repo, bcrypt.MinCost, nil)

	user, err := svc.Register(t.Context(), " alice ", "s3cret!")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.NotEqual(t, "s3cret!", user.PasswordHash)

	_, err = svc.Register(t.Context(), "alice", "another1")
	require.ErrorIs(t, err, ErrUsernameTaken)

	got, err := svc.Authenticate(t.Context(), "alice", "s3cret!")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(t.Context(), "alice", "wrong-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(t.Context(), "nobody", "s3cret!")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(repository.NewMemoryUserRepository(), bcrypt.MinCost, nil)

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{name: "missing username", username: " ", password: "secret1", want: ErrCredentialsRequired},
		{name: "missing password", username: "bob", password: "", want: ErrCredentialsRequired},
		{name: "space in username", username: "bob smith", password: "secret1", want: ErrInvalidUsername},
		{name: "long username", username: strings.Repeat("b", 65), password: "secret1", want: ErrInvalidUsername},
		{name: "short password", username: "bob", password: "12345", want: ErrWeakPassword},
		{name: "long password", username: "bob", password: strings.Repeat("p", 73), want: ErrWeakPassword},
	}
	for _, tt := range tests {
		_, err := svc.Register(t.Context(), tt.username, tt.password)
		require.ErrorIs(t, err, tt.want, tt.name)
	}

	_, err := svc.Authenticate(t.Context(), "", "x")
	require.ErrorIs(t, err, ErrCredentialsRequired)
}
