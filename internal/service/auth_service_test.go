package service

import (
	"context"
	"testing"

	"banmaytinh/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegisterLoginLogout(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()

	u, err := s.auth.Register(ctx, RegisterRequest{Name: "an", Email: "An@Example.com", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "an@example.com", u.Email)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	_, err = s.auth.Register(ctx, RegisterRequest{Name: "an", Email: "other@example.com", Password: "secret1", ConfirmPassword: "secret1"})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	_, err = s.auth.Login(ctx, LoginRequest{Login: "an", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	sess, err := s.auth.Login(ctx, LoginRequest{Login: "an@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, u.UserID, sess.UserID)
	assert.Equal(t, domain.RoleUser, sess.Role)

	got, err := s.auth.Session(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, *sess, *got)

	require.NoError(t, s.auth.Logout(ctx, sess.Token))
	_, err = s.auth.Session(ctx, sess.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_Register_Validation(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()

	cases := []RegisterRequest{
		{Name: "", Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret1"},
		{Name: "a", Email: "not-an-email", Password: "secret1", ConfirmPassword: "secret1"},
		{Name: "a", Email: "a@example.com", Password: "123", ConfirmPassword: "123"},
		{Name: "a", Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret2"},
	}
	for _, req := range cases {
		_, err := s.auth.Register(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, "request %+v", req)
	}
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()

	require.NoError(t, s.auth.EnsureAdmin(ctx, "admin", "admin@example.com", "ChangeMe123!"))
	require.NoError(t, s.auth.EnsureAdmin(ctx, "admin", "admin@example.com", "ChangeMe123!"))

	sess, err := s.auth.Login(ctx, LoginRequest{Login: "admin", Password: "ChangeMe123!"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, sess.Role)
}
