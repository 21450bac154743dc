package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/stretchr/testify/require"
)

func TestListAssignmentsScopedByRole(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	mine, total, err := svc.ListAssignments(ctx, f.influencerActor, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, f.assignment.ID, mine[0].ID)

	brands, total, err := svc.ListAssignments(ctx, f.brandActor, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, brands, 1)

	// A brand with no campaigns sees nothing
	otherUser := model.User{Email: "idle-brand@example.com", Password: "x", Role: model.RoleBrand}
	require.NoError(t, f.db.Create(&otherUser).Error)
	idle := model.Brand{UserID: otherUser.ID, CompanyName: "Idle", Status: model.ProfileApproved}
	require.NoError(t, f.db.Create(&idle).Error)

	none, total, err := svc.ListAssignments(ctx, Actor{UserID: otherUser.ID.String(), Role: model.RoleBrand}, 1, 20)
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, none)
}

func TestGetAmazonLink(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	t.Setenv("PUBLIC_BASE_URL", "https://links.example.com")

	url, err := svc.GetAmazonLink(ctx, f.influencerActor, f.assignment.ID.String())
	require.NoError(t, err)
	require.Equal(t, "https://links.example.com/r/"+f.assignment.RedirectToken, url)

	// Only the owning influencer gets the link
	otherUser := model.User{Email: "peek@example.com", Password: "x", Role: model.RoleInfluencer}
	require.NoError(t, f.db.Create(&otherUser).Error)
	other := model.Influencer{UserID: otherUser.ID, Name: "Peek", Status: model.ProfileApproved}
	require.NoError(t, f.db.Create(&other).Error)

	_, err = svc.GetAmazonLink(ctx, Actor{UserID: otherUser.ID.String(), Role: model.RoleInfluencer}, f.assignment.ID.String())
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))
}

func TestVerificationQueue(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	_, err := svc.SubmitPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String(), proofRequest("29.99"))
	require.NoError(t, err)

	items, err := svc.VerificationQueue(ctx, f.brandActor, "purchase", "")
	require.NoError(t, err)
	proofs, ok := items.([]model.PurchaseProof)
	require.True(t, ok)
	require.Len(t, proofs, 1)
	require.Equal(t, model.ProofPending, proofs[0].Status)

	// The post queue is still empty, and bad queue types are rejected
	items, err = svc.VerificationQueue(ctx, f.adminActor, "post", "")
	require.NoError(t, err)
	posts, ok := items.([]model.PostSubmission)
	require.True(t, ok)
	require.Empty(t, posts)

	_, err = svc.VerificationQueue(ctx, f.brandActor, "reviews", "")
	require.True(t, apperror.IsKind(err, apperror.KindValidation))

	// A rival brand's queue does not include this campaign's proofs
	rivalUser := model.User{Email: "rival-queue@example.com", Password: "x", Role: model.RoleBrand}
	require.NoError(t, f.db.Create(&rivalUser).Error)
	rival := model.Brand{UserID: rivalUser.ID, CompanyName: "Rival", Status: model.ProfileApproved}
	require.NoError(t, f.db.Create(&rival).Error)

	items, err = svc.VerificationQueue(ctx, Actor{UserID: rivalUser.ID.String(), Role: model.RoleBrand}, "purchase", "")
	require.NoError(t, err)
	require.Empty(t, items.([]model.PurchaseProof))
}

func TestGetLatestProofAfterResubmission(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	first, err := svc.SubmitPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String(), proofRequest("29.99"))
	require.NoError(t, err)
	_, err = svc.ReviewPurchaseProof(ctx, f.brandActor, first.ID.String(), ReviewDecisionRequest{Status: model.ProofRejected})
	require.NoError(t, err)

	second, err := svc.SubmitPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String(), proofRequest("31.50"))
	require.NoError(t, err)

	current, err := svc.GetAssignmentPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String())
	require.NoError(t, err)
	require.Equal(t, second.ID, current.ID)
	require.Equal(t, model.ProofPending, current.Status)
}
