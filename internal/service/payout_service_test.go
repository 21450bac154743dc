package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func (f *fixture) completeWithPayouts(t *testing.T) {
	t.Helper()
	f.advanceToCompleted(t, f.service(), "29.99")
}

func (f *fixture) addPaymentDetails(t *testing.T) {
	t.Helper()
	details := model.PaymentDetails{
		InfluencerID:      f.influencer.ID,
		AccountHolderName: "Creator",
		AccountNumber:     "123456789",
		RoutingNumber:     "021000021",
		BankName:          "Test Bank",
	}
	require.NoError(t, f.db.Create(&details).Error)
}

func TestSettlePayout(t *testing.T) {
	f := newFixture(t)
	f.completeWithPayouts(t)
	f.addPaymentDetails(t)
	svc := NewPayoutService(f.db)
	ctx := context.Background()

	rows := f.payouts(t)
	require.Len(t, rows, 2)

	settled, err := svc.SettlePayout(ctx, f.adminActor, rows[0].ID.String(), SettlePayoutRequest{Status: model.PayoutPaid, Notes: "wire ref 8841"})
	require.NoError(t, err)
	require.Equal(t, model.PayoutPaid, settled.Status)
	require.NotNil(t, settled.PaidAt)
	require.NotNil(t, settled.PaidBy)

	// Settling again is a no-op, not an error
	again, err := svc.SettlePayout(ctx, f.adminActor, rows[0].ID.String(), SettlePayoutRequest{Status: model.PayoutPaid})
	require.NoError(t, err)
	require.Equal(t, model.PayoutPaid, again.Status)

	// paid -> pending does not exist
	_, err = svc.SettlePayout(ctx, f.adminActor, rows[0].ID.String(), SettlePayoutRequest{Status: model.PayoutPending})
	require.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestSettleRequiresPaymentDetails(t *testing.T) {
	f := newFixture(t)
	f.completeWithPayouts(t)
	svc := NewPayoutService(f.db)

	rows := f.payouts(t)
	_, err := svc.SettlePayout(context.Background(), f.adminActor, rows[0].ID.String(), SettlePayoutRequest{Status: model.PayoutPaid})
	require.True(t, apperror.IsKind(err, apperror.KindInvalidState))

	// Row untouched
	require.Equal(t, model.PayoutPending, f.payouts(t)[0].Status)
}

func TestListPayoutsScopedByRole(t *testing.T) {
	f := newFixture(t)
	f.completeWithPayouts(t)
	svc := NewPayoutService(f.db)
	ctx := context.Background()

	// A second influencer with no payouts sees an empty ledger
	otherUser := model.User{Email: "empty@example.com", Password: "x", Role: model.RoleInfluencer}
	require.NoError(t, f.db.Create(&otherUser).Error)
	other := model.Influencer{UserID: otherUser.ID, Name: "Empty", Status: model.ProfileApproved}
	require.NoError(t, f.db.Create(&other).Error)

	mine, total, err := svc.ListPayouts(ctx, f.influencerActor, PayoutFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, mine, 2)

	none, total, err := svc.ListPayouts(ctx, Actor{UserID: otherUser.ID.String(), Role: model.RoleInfluencer}, PayoutFilter{})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, none)

	// Type filter
	commissions, _, err := svc.ListPayouts(ctx, f.adminActor, PayoutFilter{PayoutType: model.PayoutCommission})
	require.NoError(t, err)
	require.Len(t, commissions, 1)
	require.True(t, commissions[0].Amount.Equal(decimal.RequireFromString("10.00")))
}

func TestGetPayoutOwnership(t *testing.T) {
	f := newFixture(t)
	f.completeWithPayouts(t)
	svc := NewPayoutService(f.db)
	ctx := context.Background()

	rows := f.payouts(t)

	got, err := svc.GetPayout(ctx, f.influencerActor, rows[0].ID.String())
	require.NoError(t, err)
	require.Equal(t, rows[0].ID, got.ID)

	strangerUser := model.User{Email: "stranger@example.com", Password: "x", Role: model.RoleInfluencer}
	require.NoError(t, f.db.Create(&strangerUser).Error)
	stranger := model.Influencer{UserID: strangerUser.ID, Name: "Stranger", Status: model.ProfileApproved}
	require.NoError(t, f.db.Create(&stranger).Error)

	_, err = svc.GetPayout(ctx, Actor{UserID: strangerUser.ID.String(), Role: model.RoleInfluencer}, rows[0].ID.String())
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))
}
