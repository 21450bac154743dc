package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/testutil"
	"backend/pkg/apperror"

	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesProfile(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), repository.NewTransactionManager(db))
	ctx := context.Background()

	brand, err := svc.Register(ctx, RegisterRequest{
		Email:       "brand@example.com",
		Password:    "secret123",
		Role:        model.RoleBrand,
		CompanyName: "Acme",
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleBrand, brand.Role)

	var profile model.Brand
	require.NoError(t, db.First(&profile, "company_name = ?", "Acme").Error)
	require.Equal(t, model.ProfilePending, profile.Status)

	_, err = svc.Register(ctx, RegisterRequest{
		Email:    "creator@example.com",
		Password: "secret123",
		Role:     model.RoleInfluencer,
		Name:     "Creator",
	})
	require.NoError(t, err)

	var influencer model.Influencer
	require.NoError(t, db.First(&influencer, "name = ?", "Creator").Error)

	// Duplicate email and missing profile fields
	_, err = svc.Register(ctx, RegisterRequest{Email: "brand@example.com", Password: "secret123", Role: model.RoleBrand, CompanyName: "Acme"})
	require.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.Register(ctx, RegisterRequest{Email: "no-name@example.com", Password: "secret123", Role: model.RoleInfluencer})
	require.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.Register(ctx, RegisterRequest{Email: "admin@example.com", Password: "secret123", Role: model.RoleAdmin})
	require.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestLoginAndRefreshRotation(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), repository.NewTransactionManager(db))
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Email:    "creator@example.com",
		Password: "secret123",
		Role:     model.RoleInfluencer,
		Name:     "Creator",
	})
	require.NoError(t, err)

	tokens, err := svc.Login(ctx, LoginRequest{Email: "creator@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, tokens.Token)
	require.NotEmpty(t, tokens.RefreshToken)

	_, err = svc.Login(ctx, LoginRequest{Email: "creator@example.com", Password: "wrong"})
	require.True(t, apperror.IsKind(err, apperror.KindValidation))

	// Refresh rotates the token; the old one is spent
	rotated, err := svc.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	_, err = svc.Refresh(ctx, tokens.RefreshToken)
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))

	require.NoError(t, svc.Logout(ctx, rotated.RefreshToken))
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
