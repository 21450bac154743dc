package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/stretchr/testify/require"
)

func TestApplyAndAccept(t *testing.T) {
	f := newFixture(t)
	svc := NewApplicationService(f.db)
	ctx := context.Background()

	// Fresh influencer applying to the existing published campaign
	user := model.User{Email: "applicant@example.com", Password: "x", Role: model.RoleInfluencer}
	require.NoError(t, f.db.Create(&user).Error)
	applicant := model.Influencer{UserID: user.ID, Name: "Applicant", Status: model.ProfileApproved}
	require.NoError(t, f.db.Create(&applicant).Error)
	actor := Actor{UserID: user.ID.String(), Role: model.RoleInfluencer}

	application, err := svc.Apply(ctx, actor, ApplyRequest{CampaignID: f.campaign.ID.String()})
	require.NoError(t, err)
	require.Equal(t, model.ApplicationApplied, application.Status)

	// No double applications
	_, err = svc.Apply(ctx, actor, ApplyRequest{CampaignID: f.campaign.ID.String()})
	require.True(t, apperror.IsKind(err, apperror.KindInvalidState))

	accepted, err := svc.Decide(ctx, f.brandActor, application.ID.String(), ApplicationDecisionRequest{Status: model.ApplicationAccepted})
	require.NoError(t, err)
	require.Equal(t, model.ApplicationAccepted, accepted.Status)

	// Acceptance spawns the assignment, ready for the lifecycle
	var assignment model.Assignment
	require.NoError(t, f.db.First(&assignment, "application_id = ?", application.ID).Error)
	require.Equal(t, model.AssignmentPurchaseRequired, assignment.Status)
	require.Equal(t, model.ReviewStatusNone, assignment.ReviewStatus)
	require.Len(t, assignment.RedirectToken, 16)

	// Deciding twice conflicts and spawns nothing new
	_, err = svc.Decide(ctx, f.brandActor, application.ID.String(), ApplicationDecisionRequest{Status: model.ApplicationRejected})
	require.True(t, apperror.IsKind(err, apperror.KindAlreadyReviewed))

	var count int64
	require.NoError(t, f.db.Model(&model.Assignment{}).Where("application_id = ?", application.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestApplyToUnpublishedCampaign(t *testing.T) {
	f := newFixture(t)
	svc := NewApplicationService(f.db)

	require.NoError(t, f.db.Model(&model.Campaign{}).
		Where("id = ?", f.campaign.ID).
		Update("status", model.CampaignDraft).Error)

	_, err := svc.Apply(context.Background(), f.influencerActor, ApplyRequest{CampaignID: f.campaign.ID.String()})
	require.True(t, apperror.IsKind(err, apperror.KindInvalidState))
}

func TestRejectedApplicationCreatesNoAssignment(t *testing.T) {
	f := newFixture(t)
	svc := NewApplicationService(f.db)
	ctx := context.Background()

	user := model.User{Email: "reject-me@example.com", Password: "x", Role: model.RoleInfluencer}
	require.NoError(t, f.db.Create(&user).Error)
	applicant := model.Influencer{UserID: user.ID, Name: "Unlucky", Status: model.ProfileApproved}
	require.NoError(t, f.db.Create(&applicant).Error)

	application, err := svc.Apply(ctx, Actor{UserID: user.ID.String(), Role: model.RoleInfluencer}, ApplyRequest{CampaignID: f.campaign.ID.String()})
	require.NoError(t, err)

	_, err = svc.Decide(ctx, f.brandActor, application.ID.String(), ApplicationDecisionRequest{Status: model.ApplicationRejected, Notes: "audience mismatch"})
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&model.Assignment{}).Where("application_id = ?", application.ID).Count(&count).Error)
	require.Zero(t, count)
}
