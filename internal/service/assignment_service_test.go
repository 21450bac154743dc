package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/testutil"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db *gorm.DB

	brandActor      Actor
	influencerActor Actor
	adminActor      Actor

	brand      model.Brand
	influencer model.Influencer
	campaign   model.Campaign
	assignment model.Assignment
}

// newFixture seeds one brand, one influencer, one published campaign
// (commission 10.00, review bonus 5.00) and one assignment in
// purchase_required.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)

	brandUser := model.User{Email: "brand@example.com", Password: "x", Role: model.RoleBrand}
	require.NoError(t, db.Create(&brandUser).Error)
	influencerUser := model.User{Email: "creator@example.com", Password: "x", Role: model.RoleInfluencer}
	require.NoError(t, db.Create(&influencerUser).Error)
	adminUser := model.User{Email: "admin@example.com", Password: "x", Role: model.RoleAdmin}
	require.NoError(t, db.Create(&adminUser).Error)

	brand := model.Brand{UserID: brandUser.ID, CompanyName: "Acme", Status: model.ProfileApproved}
	require.NoError(t, db.Create(&brand).Error)
	influencer := model.Influencer{UserID: influencerUser.ID, Name: "Creator", Status: model.ProfileApproved}
	require.NoError(t, db.Create(&influencer).Error)

	now := time.Now()
	campaign := model.Campaign{
		BrandID:              brand.ID,
		Title:                "Spring launch",
		AmazonAttributionURL: "https://www.amazon.com/dp/B000TEST00?tag=acme-20",
		CommissionAmount:     decimal.RequireFromString("10.00"),
		ReviewBonus:          decimal.RequireFromString("5.00"),
		PurchaseWindowStart:  now.Add(-24 * time.Hour),
		PurchaseWindowEnd:    now.Add(24 * time.Hour),
		PostWindowStart:      now.Add(-24 * time.Hour),
		PostWindowEnd:        now.Add(7 * 24 * time.Hour),
		Status:               model.CampaignPublished,
	}
	require.NoError(t, db.Create(&campaign).Error)

	assignment := model.Assignment{
		CampaignID:    campaign.ID,
		InfluencerID:  influencer.ID,
		ApplicationID: uuid.New(),
		Status:        model.AssignmentPurchaseRequired,
		ReviewStatus:  model.ReviewStatusNone,
	}
	require.NoError(t, db.Create(&assignment).Error)

	return &fixture{
		db:              db,
		brandActor:      Actor{UserID: brandUser.ID.String(), Role: model.RoleBrand},
		influencerActor: Actor{UserID: influencerUser.ID.String(), Role: model.RoleInfluencer},
		adminActor:      Actor{UserID: adminUser.ID.String(), Role: model.RoleAdmin},
		brand:           brand,
		influencer:      influencer,
		campaign:        campaign,
		assignment:      assignment,
	}
}

func (f *fixture) service() AssignmentService {
	return NewAssignmentService(f.db, nil)
}

func (f *fixture) reloadAssignment(t *testing.T) model.Assignment {
	t.Helper()
	var a model.Assignment
	require.NoError(t, f.db.First(&a, "id = ?", f.assignment.ID).Error)
	return a
}

func (f *fixture) payouts(t *testing.T) []model.Payout {
	t.Helper()
	var rows []model.Payout
	require.NoError(t, f.db.Where("assignment_id = ?", f.assignment.ID).Order("payout_type").Find(&rows).Error)
	return rows
}

func proofRequest(total string) SubmitPurchaseProofRequest {
	req := SubmitPurchaseProofRequest{
		OrderID:        "114-3941689-8772232",
		OrderDate:      time.Now(),
		ASIN:           "B000TEST00",
		ScreenshotURLs: []string{"https://cdn.example.com/proof1.png"},
	}
	if total != "" {
		d := decimal.RequireFromString(total)
		req.Total = &d
	}
	return req
}

func postRequest() SubmitPostRequest {
	return SubmitPostRequest{
		Platform: model.PlatformInstagram,
		PostType: model.PostTypeReel,
		PostURL:  "https://instagram.com/reel/abc123",
	}
}

// advanceToCompleted walks the assignment through the whole happy path and
// returns the approved proof so tests can assert on its snapshot.
func (f *fixture) advanceToCompleted(t *testing.T, svc AssignmentService, total string) *model.PurchaseProof {
	t.Helper()
	ctx := context.Background()

	proof, err := svc.SubmitPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String(), proofRequest(total))
	require.NoError(t, err)
	_, err = svc.ReviewPurchaseProof(ctx, f.brandActor, proof.ID.String(), ReviewDecisionRequest{Status: model.ProofApproved})
	require.NoError(t, err)

	post, err := svc.SubmitPostSubmission(ctx, f.influencerActor, f.assignment.ID.String(), postRequest())
	require.NoError(t, err)
	_, err = svc.ReviewPostSubmission(ctx, f.brandActor, post.ID.String(), ReviewDecisionRequest{Status: model.ProofApproved})
	require.NoError(t, err)

	return proof
}

func TestFullLifecyclePayouts(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	f.advanceToCompleted(t, svc, "29.99")

	a := f.reloadAssignment(t)
	require.Equal(t, model.AssignmentCompleted, a.Status)
	require.Equal(t, model.ReviewStatusNone, a.ReviewStatus)

	rows := f.payouts(t)
	require.Len(t, rows, 2)
	byType := map[string]model.Payout{}
	for _, p := range rows {
		byType[p.PayoutType] = p
	}
	require.True(t, byType[model.PayoutReimbursement].Amount.Equal(decimal.RequireFromString("29.99")))
	require.True(t, byType[model.PayoutCommission].Amount.Equal(decimal.RequireFromString("10.00")))
	for _, p := range rows {
		require.Equal(t, model.PayoutPending, p.Status)
		require.Equal(t, "USD", p.Currency)
		require.Equal(t, f.influencer.ID, p.InfluencerID)
		require.Equal(t, f.brand.ID, p.BrandID)
	}

	// Bonus round: product review approval adds the third ledger row
	review, err := svc.SubmitProductReview(ctx, f.influencerActor, f.assignment.ID.String(), SubmitProductReviewRequest{
		ReviewText:    "Great product, five stars.",
		Rating:        5,
		ScreenshotURL: "https://cdn.example.com/review.png",
	})
	require.NoError(t, err)
	require.Equal(t, model.ReviewStatusReview, f.reloadAssignment(t).ReviewStatus)

	_, err = svc.ReviewProductReview(ctx, f.adminActor, review.ID.String(), ReviewDecisionRequest{Status: model.ProofApproved})
	require.NoError(t, err)
	require.Equal(t, model.ReviewStatusApproved, f.reloadAssignment(t).ReviewStatus)

	rows = f.payouts(t)
	require.Len(t, rows, 3)
	sum := decimal.Zero
	for _, p := range rows {
		sum = sum.Add(p.Amount)
	}
	require.True(t, sum.Equal(decimal.RequireFromString("44.99")))
}

func TestZeroPriceProofReimbursesNothing(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	// No receipt total at all: reimbursement row still exists, at zero
	f.advanceToCompleted(t, svc, "")

	rows := f.payouts(t)
	require.Len(t, rows, 2)
	for _, p := range rows {
		if p.PayoutType == model.PayoutReimbursement {
			require.True(t, p.Amount.IsZero())
		}
	}
}

func TestSubmitProofValidation(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	req := proofRequest("29.99")
	req.OrderID = "  "
	_, err := svc.SubmitPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String(), req)
	require.True(t, apperror.IsKind(err, apperror.KindValidation))

	req = proofRequest("29.99")
	req.ScreenshotURLs = nil
	_, err = svc.SubmitPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String(), req)
	require.True(t, apperror.IsKind(err, apperror.KindValidation))

	negative := decimal.RequireFromString("-1.00")
	req = proofRequest("")
	req.Total = &negative
	_, err = svc.SubmitPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String(), req)
	require.True(t, apperror.IsKind(err, apperror.KindValidation))

	// Order date outside the campaign purchase window
	req = proofRequest("29.99")
	req.OrderDate = time.Now().Add(-30 * 24 * time.Hour)
	_, err = svc.SubmitPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String(), req)
	require.True(t, apperror.IsKind(err, apperror.KindValidation))

	// Nothing above may have moved the assignment
	require.Equal(t, model.AssignmentPurchaseRequired, f.reloadAssignment(t).Status)
}

func TestSubmitProofWrongState(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	_, err := svc.SubmitPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String(), proofRequest("29.99"))
	require.NoError(t, err)
	require.Equal(t, model.AssignmentPurchaseReview, f.reloadAssignment(t).Status)

	// Second submission while the first is pending
	_, err = svc.SubmitPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String(), proofRequest("29.99"))
	require.True(t, apperror.IsKind(err, apperror.KindInvalidState))

	// Posting before purchase approval
	_, err = svc.SubmitPostSubmission(ctx, f.influencerActor, f.assignment.ID.String(), postRequest())
	require.True(t, apperror.IsKind(err, apperror.KindInvalidState))

	// Product review long before completion
	_, err = svc.SubmitProductReview(ctx, f.influencerActor, f.assignment.ID.String(), SubmitProductReviewRequest{
		ReviewText:    "too early",
		Rating:        4,
		ScreenshotURL: "https://cdn.example.com/r.png",
	})
	require.True(t, apperror.IsKind(err, apperror.KindInvalidState))
}

func TestProofRejectionCyclesBack(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	proof, err := svc.SubmitPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String(), proofRequest("29.99"))
	require.NoError(t, err)

	rejected, err := svc.ReviewPurchaseProof(ctx, f.brandActor, proof.ID.String(), ReviewDecisionRequest{Status: model.ProofRejected, Notes: "screenshot unreadable"})
	require.NoError(t, err)
	require.Equal(t, model.ProofRejected, rejected.Status)
	require.Equal(t, model.AssignmentPurchaseRequired, f.reloadAssignment(t).Status)

	// Resubmission is allowed; the rejected row stays as history
	second, err := svc.SubmitPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String(), proofRequest("31.50"))
	require.NoError(t, err)
	require.NotEqual(t, proof.ID, second.ID)

	var count int64
	require.NoError(t, f.db.Model(&model.PurchaseProof{}).Where("assignment_id = ?", f.assignment.ID).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestDoubleReviewConflicts(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	proof, err := svc.SubmitPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String(), proofRequest("29.99"))
	require.NoError(t, err)

	_, err = svc.ReviewPurchaseProof(ctx, f.brandActor, proof.ID.String(), ReviewDecisionRequest{Status: model.ProofApproved})
	require.NoError(t, err)

	// The losing reviewer gets a conflict, and the decision stands
	_, err = svc.ReviewPurchaseProof(ctx, f.adminActor, proof.ID.String(), ReviewDecisionRequest{Status: model.ProofRejected})
	require.True(t, apperror.IsKind(err, apperror.KindAlreadyReviewed))
	require.Equal(t, model.AssignmentPurchaseApproved, f.reloadAssignment(t).Status)
}

func TestPostRejectionAllowsResubmission(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	proof, err := svc.SubmitPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String(), proofRequest("29.99"))
	require.NoError(t, err)
	_, err = svc.ReviewPurchaseProof(ctx, f.brandActor, proof.ID.String(), ReviewDecisionRequest{Status: model.ProofApproved})
	require.NoError(t, err)

	post, err := svc.SubmitPostSubmission(ctx, f.influencerActor, f.assignment.ID.String(), postRequest())
	require.NoError(t, err)

	_, err = svc.ReviewPostSubmission(ctx, f.brandActor, post.ID.String(), ReviewDecisionRequest{Status: model.ProofRejected, Notes: "caption missing disclosure"})
	require.NoError(t, err)
	require.Equal(t, model.AssignmentPosting, f.reloadAssignment(t).Status)

	// Rejection must not have minted any money
	require.Empty(t, f.payouts(t))

	second, err := svc.SubmitPostSubmission(ctx, f.influencerActor, f.assignment.ID.String(), postRequest())
	require.NoError(t, err)
	_, err = svc.ReviewPostSubmission(ctx, f.brandActor, second.ID.String(), ReviewDecisionRequest{Status: model.ProofApproved})
	require.NoError(t, err)
	require.Equal(t, model.AssignmentCompleted, f.reloadAssignment(t).Status)
	require.Len(t, f.payouts(t), 2)
}

func TestReviewerAuthorization(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	proof, err := svc.SubmitPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String(), proofRequest("29.99"))
	require.NoError(t, err)

	// A different brand must not review someone else's campaign
	otherUser := model.User{Email: "other@example.com", Password: "x", Role: model.RoleBrand}
	require.NoError(t, f.db.Create(&otherUser).Error)
	otherBrand := model.Brand{UserID: otherUser.ID, CompanyName: "Rival", Status: model.ProfileApproved}
	require.NoError(t, f.db.Create(&otherBrand).Error)

	_, err = svc.ReviewPurchaseProof(ctx, Actor{UserID: otherUser.ID.String(), Role: model.RoleBrand}, proof.ID.String(), ReviewDecisionRequest{Status: model.ProofApproved})
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))

	// And an influencer can only touch their own assignment
	otherCreatorUser := model.User{Email: "creator2@example.com", Password: "x", Role: model.RoleInfluencer}
	require.NoError(t, f.db.Create(&otherCreatorUser).Error)
	otherCreator := model.Influencer{UserID: otherCreatorUser.ID, Name: "Other", Status: model.ProfileApproved}
	require.NoError(t, f.db.Create(&otherCreator).Error)

	_, err = svc.SubmitPostSubmission(ctx, Actor{UserID: otherCreatorUser.ID.String(), Role: model.RoleInfluencer}, f.assignment.ID.String(), postRequest())
	require.True(t, apperror.IsKind(err, apperror.KindForbidden))
}

func TestProductReviewRejectionAllowsRetry(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	f.advanceToCompleted(t, svc, "29.99")

	review, err := svc.SubmitProductReview(ctx, f.influencerActor, f.assignment.ID.String(), SubmitProductReviewRequest{
		ReviewText:    "Decent.",
		Rating:        3,
		ScreenshotURL: "https://cdn.example.com/review.png",
	})
	require.NoError(t, err)

	_, err = svc.ReviewProductReview(ctx, f.brandActor, review.ID.String(), ReviewDecisionRequest{Status: model.ProofRejected, Notes: "not live on the product page"})
	require.NoError(t, err)
	require.Equal(t, model.ReviewStatusRejected, f.reloadAssignment(t).ReviewStatus)

	// No bonus minted on rejection
	require.Len(t, f.payouts(t), 2)

	// Rejected means try again
	retry, err := svc.SubmitProductReview(ctx, f.influencerActor, f.assignment.ID.String(), SubmitProductReviewRequest{
		ReviewText:    "Now it is live.",
		Rating:        4,
		ScreenshotURL: "https://cdn.example.com/review2.png",
	})
	require.NoError(t, err)
	_, err = svc.ReviewProductReview(ctx, f.brandActor, retry.ID.String(), ReviewDecisionRequest{Status: model.ProofApproved})
	require.NoError(t, err)
	require.Len(t, f.payouts(t), 3)
}

func TestProductReviewAfterApprovalRejected(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	f.advanceToCompleted(t, svc, "29.99")

	review, err := svc.SubmitProductReview(ctx, f.influencerActor, f.assignment.ID.String(), SubmitProductReviewRequest{
		ReviewText:    "Great.",
		Rating:        5,
		ScreenshotURL: "https://cdn.example.com/review.png",
	})
	require.NoError(t, err)
	_, err = svc.ReviewProductReview(ctx, f.brandActor, review.ID.String(), ReviewDecisionRequest{Status: model.ProofApproved})
	require.NoError(t, err)

	ledgerBefore := f.payouts(t)

	// An approved bonus is final: no further submissions, no more money
	_, err = svc.SubmitProductReview(ctx, f.influencerActor, f.assignment.ID.String(), SubmitProductReviewRequest{
		ReviewText:    "Another one.",
		Rating:        5,
		ScreenshotURL: "https://cdn.example.com/review3.png",
	})
	require.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	require.Equal(t, len(ledgerBefore), len(f.payouts(t)))
}

func TestPayoutsSnapshotProofAtApprovalTime(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	proof := f.advanceToCompleted(t, svc, "29.99")

	// The ledger row references the approved proof's total even if someone
	// later tampers with the campaign's commission settings.
	require.NoError(t, f.db.Model(&model.Campaign{}).
		Where("id = ?", f.campaign.ID).
		Update("commission_amount", decimal.RequireFromString("999.00")).Error)

	rows := f.payouts(t)
	for _, p := range rows {
		switch p.PayoutType {
		case model.PayoutReimbursement:
			require.True(t, p.Amount.Equal(*proof.Total))
		case model.PayoutCommission:
			require.True(t, p.Amount.Equal(decimal.RequireFromString("10.00")))
		}
	}
}

func TestCompletionIsIdempotentPerAssignment(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	proof, err := svc.SubmitPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String(), proofRequest("29.99"))
	require.NoError(t, err)
	_, err = svc.ReviewPurchaseProof(ctx, f.brandActor, proof.ID.String(), ReviewDecisionRequest{Status: model.ProofApproved})
	require.NoError(t, err)
	post, err := svc.SubmitPostSubmission(ctx, f.influencerActor, f.assignment.ID.String(), postRequest())
	require.NoError(t, err)
	_, err = svc.ReviewPostSubmission(ctx, f.brandActor, post.ID.String(), ReviewDecisionRequest{Status: model.ProofApproved})
	require.NoError(t, err)

	// A second approval of the same post loses the CAS and mints nothing
	_, err = svc.ReviewPostSubmission(ctx, f.adminActor, post.ID.String(), ReviewDecisionRequest{Status: model.ProofApproved})
	require.True(t, apperror.IsKind(err, apperror.KindAlreadyReviewed))
	require.Len(t, f.payouts(t), 2)
}

func TestInvalidDecisionStatus(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	proof, err := svc.SubmitPurchaseProof(ctx, f.influencerActor, f.assignment.ID.String(), proofRequest("29.99"))
	require.NoError(t, err)

	_, err = svc.ReviewPurchaseProof(ctx, f.brandActor, proof.ID.String(), ReviewDecisionRequest{Status: "maybe"})
	require.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.ReviewPurchaseProof(ctx, f.brandActor, uuid.NewString(), ReviewDecisionRequest{Status: model.ProofApproved})
	require.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = svc.ReviewPurchaseProof(ctx, f.brandActor, "not-a-uuid", ReviewDecisionRequest{Status: model.ProofApproved})
	require.True(t, apperror.IsKind(err, apperror.KindValidation))
}
