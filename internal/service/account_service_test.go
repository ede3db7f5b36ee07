package service

import (
	"context"
	"testing"

	"banmaytinh/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_UserLifecycle(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()

	_, err := s.accounts.CreateAccount(ctx, domain.RoleUser, AccountRequest{Name: "an", Email: "an@example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	u, err := s.accounts.CreateAccount(ctx, domain.RoleUser, AccountRequest{
		Name: "an", Email: "An@Example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "an@example.com", u.Email)

	// 密码留空：保留原密码
	updated, err := s.accounts.UpdateAccount(ctx, 0, domain.RoleUser, u.UserID, AccountRequest{Name: "an2", Email: "an2@example.com"})
	require.NoError(t, err)
	assert.Equal(t, u.PasswordHash, updated.PasswordHash)
	_, err = s.auth.Login(ctx, LoginRequest{Login: "an2", Password: "secret1"})
	require.NoError(t, err)

	_, err = s.accounts.UpdateAccount(ctx, 0, domain.RoleUser, u.UserID, AccountRequest{
		Name: "an2", Email: "an2@example.com", Password: "newpass1", ConfirmPassword: "other",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = s.accounts.UpdateAccount(ctx, 0, domain.RoleAdmin, u.UserID, AccountRequest{Name: "x", Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	mouse := s.product(t, "Mouse", 200000, false, nil)
	_, err = s.cart.AddProduct(ctx, u.UserID, AddProductRequest{ProductID: mouse})
	require.NoError(t, err)
	_, err = s.orders.Checkout(ctx, u.UserID)
	require.NoError(t, err)
	orders, err := s.accounts.UserOrders(ctx, u.UserID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	require.NoError(t, s.accounts.DeleteAccount(ctx, 0, domain.RoleUser, u.UserID))
	users, err := s.accounts.ListAccounts(ctx, domain.RoleUser)
	require.NoError(t, err)
	assert.Empty(t, users)
	_, err = s.accounts.UserOrders(ctx, u.UserID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.auth.Login(ctx, LoginRequest{Login: "an2", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAccountService_AdminGuards(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()
	boss, err := s.accounts.CreateAccount(ctx, domain.RoleAdmin, AccountRequest{
		Name: "boss", Email: "boss@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)

	_, err = s.accounts.UpdateAccount(ctx, boss.UserID, domain.RoleAdmin, boss.UserID, AccountRequest{Name: "boss", Email: "b@example.com"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, s.accounts.DeleteAccount(ctx, boss.UserID, domain.RoleAdmin, boss.UserID), domain.ErrForbidden)
	// 只剩一个管理员
	assert.ErrorIs(t, s.accounts.DeleteAccount(ctx, 0, domain.RoleAdmin, boss.UserID), domain.ErrForbidden)

	second, err := s.accounts.CreateAccount(ctx, domain.RoleAdmin, AccountRequest{
		Name: "second", Email: "second@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	_, err = s.accounts.UpdateAccount(ctx, boss.UserID, domain.RoleAdmin, second.UserID, AccountRequest{Name: "boss", Email: "second@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	require.NoError(t, s.accounts.DeleteAccount(ctx, boss.UserID, domain.RoleAdmin, second.UserID))
	admins, err := s.accounts.ListAccounts(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, boss.UserID, admins[0].UserID)
}
