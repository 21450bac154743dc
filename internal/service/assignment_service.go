package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/model"
	ws "backend/internal/websocket"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Actor is the request-scoped identity resolved by the auth middleware.
// It is passed explicitly into every operation; the service holds no
// session state of its own.
type Actor struct {
	UserID string
	Role   string
}

// --- DTOs ---

type SubmitPurchaseProofRequest struct {
	OrderID        string           `json:"order_id" binding:"required"`
	OrderDate      time.Time        `json:"order_date" binding:"required"`
	ASIN           string           `json:"asin"`
	Total          *decimal.Decimal `json:"total"`
	ScreenshotURLs []string         `json:"screenshot_urls" binding:"required"`
}

type SubmitPostRequest struct {
	Platform      string `json:"platform" binding:"required"`
	PostType      string `json:"post_type" binding:"required"`
	PostURL       string `json:"post_url" binding:"required"`
	ScreenshotURL string `json:"screenshot_url"`
	Caption       string `json:"caption"`
}

type SubmitProductReviewRequest struct {
	ReviewText    string `json:"review_text" binding:"required"`
	Rating        int    `json:"rating" binding:"required"`
	ScreenshotURL string `json:"screenshot_url" binding:"required"`
	Platform      string `json:"platform"`
}

type ReviewDecisionRequest struct {
	Status string `json:"status" binding:"required"` // approved or rejected
	Notes  string `json:"notes"`
}

// AssignmentService drives the assignment lifecycle: influencer
// submissions move an assignment into a review state, brand/admin
// decisions either advance it or send it back for resubmission, and the
// approval that completes the lifecycle writes the payout ledger rows in
// the same transaction as the status flip.
type AssignmentService interface {
	SubmitPurchaseProof(ctx context.Context, actor Actor, assignmentID string, req SubmitPurchaseProofRequest) (*model.PurchaseProof, error)
	ReviewPurchaseProof(ctx context.Context, actor Actor, proofID string, req ReviewDecisionRequest) (*model.PurchaseProof, error)
	SubmitPostSubmission(ctx context.Context, actor Actor, assignmentID string, req SubmitPostRequest) (*model.PostSubmission, error)
	ReviewPostSubmission(ctx context.Context, actor Actor, postID string, req ReviewDecisionRequest) (*model.PostSubmission, error)
	SubmitProductReview(ctx context.Context, actor Actor, assignmentID string, req SubmitProductReviewRequest) (*model.ProductReview, error)
	ReviewProductReview(ctx context.Context, actor Actor, reviewID string, req ReviewDecisionRequest) (*model.ProductReview, error)

	ListAssignments(ctx context.Context, actor Actor, page, limit int) ([]model.Assignment, int64, error)
	GetAssignment(ctx context.Context, actor Actor, assignmentID string) (*model.Assignment, error)
	GetAssignmentPurchaseProof(ctx context.Context, actor Actor, assignmentID string) (*model.PurchaseProof, error)
	GetAssignmentPostSubmission(ctx context.Context, actor Actor, assignmentID string) (*model.PostSubmission, error)
	GetAssignmentProductReview(ctx context.Context, actor Actor, assignmentID string) (*model.ProductReview, error)
	GetAmazonLink(ctx context.Context, actor Actor, assignmentID string) (string, error)
	VerificationQueue(ctx context.Context, actor Actor, queueType, status string) (interface{}, error)
}

type assignmentService struct {
	db  *gorm.DB
	hub *ws.Hub
}

func NewAssignmentService(db *gorm.DB, hub *ws.Hub) AssignmentService {
	return &assignmentService{db: db, hub: hub}
}

// --- Helpers ---

func parseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid %s id", kind)
	}
	return id, nil
}

// actorInfluencer loads the influencer profile of the acting user and
// verifies it owns the assignment
func (s *assignmentService) actorInfluencer(tx *gorm.DB, actor Actor, assignment *model.Assignment) (*model.Influencer, error) {
	var influencer model.Influencer
	if err := tx.First(&influencer, "user_id = ?", actor.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("influencer profile not found")
		}
		return nil, err
	}
	if assignment.InfluencerID != influencer.ID {
		return nil, apperror.Forbidden("not your assignment")
	}
	return &influencer, nil
}

// authorizeReviewer verifies the acting user may decide reviews for the
// campaign: admins always, brands only for campaigns they own
func (s *assignmentService) authorizeReviewer(tx *gorm.DB, actor Actor, campaignID uuid.UUID) error {
	if actor.Role == model.RoleAdmin {
		return nil
	}
	if actor.Role != model.RoleBrand {
		return apperror.Forbidden("only brand or admin may review")
	}

	var brand model.Brand
	if err := tx.First(&brand, "user_id = ?", actor.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("brand profile not found")
		}
		return err
	}

	var campaign model.Campaign
	if err := tx.First(&campaign, "id = ?", campaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("campaign not found")
		}
		return err
	}
	if campaign.BrandID != brand.ID {
		return apperror.Forbidden("not your campaign")
	}
	return nil
}

func validDecision(status string) bool {
	return status == model.ProofApproved || status == model.ProofRejected
}

func (s *assignmentService) audit(tx *gorm.DB, actor Actor, action, entityID string, details map[string]interface{}) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(actor.UserID); err == nil {
		uid = &parsed
	}
	payload, _ := json.Marshal(details)
	entry := model.AuditLog{
		UserID:   uid,
		Action:   action,
		EntityID: entityID,
		Details:  string(payload),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// casAssignmentStatus performs the atomic check-and-set on the assignment
// status column. Zero rows affected means the expected source state was
// gone by the time the write landed.
func casAssignmentStatus(tx *gorm.DB, assignmentID uuid.UUID, from []string, to string) (bool, error) {
	res := tx.Model(&model.Assignment{}).
		Where("id = ? AND status IN ?", assignmentID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// --- Purchase proof ---

func (s *assignmentService) SubmitPurchaseProof(ctx context.Context, actor Actor, assignmentID string, req SubmitPurchaseProofRequest) (*model.PurchaseProof, error) {
	aid, err := parseID("assignment", assignmentID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.OrderID) == "" {
		return nil, apperror.Validation("order_id is required")
	}
	if req.OrderDate.IsZero() {
		return nil, apperror.Validation("order_date is required")
	}
	if len(req.ScreenshotURLs) == 0 {
		return nil, apperror.Validation("at least one screenshot is required")
	}
	if req.Total != nil && !req.Total.IsPositive() {
		return nil, apperror.Validation("total must be positive when provided")
	}

	var proof model.PurchaseProof
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assignment model.Assignment
		if findErr := tx.First(&assignment, "id = ?", aid).Error; findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("assignment not found")
			}
			return findErr
		}

		if _, ownErr := s.actorInfluencer(tx, actor, &assignment); ownErr != nil {
			return ownErr
		}

		if assignment.Status != model.AssignmentPurchaseRequired {
			return apperror.InvalidState("purchase proof not accepted while assignment is %s", assignment.Status)
		}

		var campaign model.Campaign
		if findErr := tx.First(&campaign, "id = ?", assignment.CampaignID).Error; findErr != nil {
			return findErr
		}
		if req.OrderDate.Before(campaign.PurchaseWindowStart) || req.OrderDate.After(campaign.PurchaseWindowEnd) {
			return apperror.Validation("order date is outside the campaign purchase window")
		}

		// Rejected proofs stay as history; only one row may be live
		var active int64
		if countErr := tx.Model(&model.PurchaseProof{}).
			Where("assignment_id = ? AND status IN ?", assignment.ID, []string{model.ProofPending, model.ProofApproved}).
			Count(&active).Error; countErr != nil {
			return countErr
		}
		if active > 0 {
			return apperror.InvalidState("a purchase proof is already awaiting review")
		}

		proof = model.PurchaseProof{
			AssignmentID:   assignment.ID,
			OrderID:        req.OrderID,
			OrderDate:      req.OrderDate,
			ASIN:           req.ASIN,
			Total:          req.Total,
			ScreenshotURLs: strings.Join(req.ScreenshotURLs, "\n"),
			Status:         model.ProofPending,
		}
		if createErr := tx.Create(&proof).Error; createErr != nil {
			return fmt.Errorf("failed to create purchase proof: %w", createErr)
		}

		ok, casErr := casAssignmentStatus(tx, assignment.ID, []string{model.AssignmentPurchaseRequired}, model.AssignmentPurchaseReview)
		if casErr != nil {
			return casErr
		}
		if !ok {
			return apperror.InvalidState("assignment changed state during submission")
		}

		return s.audit(tx, actor, model.ActionSubmitPurchaseProof, proof.ID.String(), map[string]interface{}{
			"assignment_id": assignment.ID.String(),
			"order_id":      req.OrderID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(ws.Event{Type: "purchase_proof.submitted", AssignmentID: proof.AssignmentID.String(), EntityID: proof.ID.String()})
	return &proof, nil
}

func (s *assignmentService) ReviewPurchaseProof(ctx context.Context, actor Actor, proofID string, req ReviewDecisionRequest) (*model.PurchaseProof, error) {
	pid, err := parseID("purchase proof", proofID)
	if err != nil {
		return nil, err
	}
	if !validDecision(req.Status) {
		return nil, apperror.Validation("status must be 'approved' or 'rejected'")
	}

	var proof model.PurchaseProof
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if findErr := tx.First(&proof, "id = ?", pid).Error; findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("purchase proof not found")
			}
			return findErr
		}

		var assignment model.Assignment
		if findErr := tx.First(&assignment, "id = ?", proof.AssignmentID).Error; findErr != nil {
			return findErr
		}
		if authErr := s.authorizeReviewer(tx, actor, assignment.CampaignID); authErr != nil {
			return authErr
		}

		if proof.Status != model.ProofPending {
			return apperror.AlreadyReviewed("purchase proof is already %s", proof.Status)
		}

		reviewerID, _ := uuid.Parse(actor.UserID)
		now := time.Now()
		res := tx.Model(&model.PurchaseProof{}).
			Where("id = ? AND status = ?", proof.ID, model.ProofPending).
			Updates(map[string]interface{}{
				"status":       req.Status,
				"review_notes": req.Notes,
				"reviewed_by":  reviewerID,
				"reviewed_at":  now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.AlreadyReviewed("purchase proof was reviewed concurrently")
		}

		// Approval unlocks posting; rejection sends the influencer back to resubmit
		target := model.AssignmentPurchaseApproved
		if req.Status == model.ProofRejected {
			target = model.AssignmentPurchaseRequired
		}
		ok, casErr := casAssignmentStatus(tx, assignment.ID, []string{model.AssignmentPurchaseReview}, target)
		if casErr != nil {
			return casErr
		}
		if !ok {
			return apperror.InvalidState("assignment is not awaiting purchase review")
		}

		proof.Status = req.Status
		proof.ReviewNotes = req.Notes
		proof.ReviewedBy = &reviewerID
		proof.ReviewedAt = &now

		return s.audit(tx, actor, model.ActionReviewPurchaseProof, proof.ID.String(), map[string]interface{}{
			"assignment_id": assignment.ID.String(),
			"status":        req.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(ws.Event{Type: "purchase_proof." + proof.Status, AssignmentID: proof.AssignmentID.String(), EntityID: proof.ID.String(), Status: proof.Status})
	return &proof, nil
}

// --- Post submission ---

func validPlatform(p string) bool {
	switch p {
	case model.PlatformInstagram, model.PlatformTikTok, model.PlatformYouTube, model.PlatformTwitter:
		return true
	}
	return false
}

func validPostType(t string) bool {
	switch t {
	case model.PostTypePost, model.PostTypeStory, model.PostTypeReel, model.PostTypeVideo:
		return true
	}
	return false
}

func (s *assignmentService) SubmitPostSubmission(ctx context.Context, actor Actor, assignmentID string, req SubmitPostRequest) (*model.PostSubmission, error) {
	aid, err := parseID("assignment", assignmentID)
	if err != nil {
		return nil, err
	}
	if !validPlatform(req.Platform) {
		return nil, apperror.Validation("platform must be one of instagram, tiktok, youtube, twitter")
	}
	if !validPostType(req.PostType) {
		return nil, apperror.Validation("post_type must be one of post, story, reel, video")
	}
	if strings.TrimSpace(req.PostURL) == "" {
		return nil, apperror.Validation("post_url is required")
	}

	var post model.PostSubmission
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assignment model.Assignment
		if findErr := tx.First(&assignment, "id = ?", aid).Error; findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("assignment not found")
			}
			return findErr
		}

		influencer, ownErr := s.actorInfluencer(tx, actor, &assignment)
		if ownErr != nil {
			return ownErr
		}

		if assignment.Status != model.AssignmentPurchaseApproved && assignment.Status != model.AssignmentPosting {
			return apperror.InvalidState("post not accepted while assignment is %s", assignment.Status)
		}

		var active int64
		if countErr := tx.Model(&model.PostSubmission{}).
			Where("assignment_id = ? AND status IN ?", assignment.ID, []string{model.ProofPending, model.ProofApproved}).
			Count(&active).Error; countErr != nil {
			return countErr
		}
		if active > 0 {
			return apperror.InvalidState("a post submission is already awaiting review")
		}

		post = model.PostSubmission{
			AssignmentID:  assignment.ID,
			CampaignID:    assignment.CampaignID,
			InfluencerID:  influencer.ID,
			Platform:      req.Platform,
			PostType:      req.PostType,
			PostURL:       req.PostURL,
			ScreenshotURL: req.ScreenshotURL,
			Caption:       req.Caption,
			Status:        model.ProofPending,
		}
		if createErr := tx.Create(&post).Error; createErr != nil {
			return fmt.Errorf("failed to create post submission: %w", createErr)
		}

		ok, casErr := casAssignmentStatus(tx, assignment.ID,
			[]string{model.AssignmentPurchaseApproved, model.AssignmentPosting}, model.AssignmentPostReview)
		if casErr != nil {
			return casErr
		}
		if !ok {
			return apperror.InvalidState("assignment changed state during submission")
		}

		return s.audit(tx, actor, model.ActionSubmitPost, post.ID.String(), map[string]interface{}{
			"assignment_id": assignment.ID.String(),
			"platform":      req.Platform,
			"post_url":      req.PostURL,
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(ws.Event{Type: "post_submission.submitted", AssignmentID: post.AssignmentID.String(), EntityID: post.ID.String()})
	return &post, nil
}

func (s *assignmentService) ReviewPostSubmission(ctx context.Context, actor Actor, postID string, req ReviewDecisionRequest) (*model.PostSubmission, error) {
	pid, err := parseID("post submission", postID)
	if err != nil {
		return nil, err
	}
	if !validDecision(req.Status) {
		return nil, apperror.Validation("status must be 'approved' or 'rejected'")
	}

	var post model.PostSubmission
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if findErr := tx.First(&post, "id = ?", pid).Error; findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("post submission not found")
			}
			return findErr
		}

		var assignment model.Assignment
		if findErr := tx.First(&assignment, "id = ?", post.AssignmentID).Error; findErr != nil {
			return findErr
		}
		if authErr := s.authorizeReviewer(tx, actor, assignment.CampaignID); authErr != nil {
			return authErr
		}

		if post.Status != model.ProofPending {
			return apperror.AlreadyReviewed("post submission is already %s", post.Status)
		}

		reviewerID, _ := uuid.Parse(actor.UserID)
		now := time.Now()
		res := tx.Model(&model.PostSubmission{}).
			Where("id = ? AND status = ?", post.ID, model.ProofPending).
			Updates(map[string]interface{}{
				"status":       req.Status,
				"review_notes": req.Notes,
				"reviewed_by":  reviewerID,
				"reviewed_at":  now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.AlreadyReviewed("post submission was reviewed concurrently")
		}

		if req.Status == model.ProofRejected {
			ok, casErr := casAssignmentStatus(tx, assignment.ID, []string{model.AssignmentPostReview}, model.AssignmentPosting)
			if casErr != nil {
				return casErr
			}
			if !ok {
				return apperror.InvalidState("assignment is not awaiting post review")
			}
		} else {
			// Completing the lifecycle and writing the two payout rows is one
			// transaction: an assignment must never be completed without its
			// reimbursement and commission in the ledger.
			ok, casErr := casAssignmentStatus(tx, assignment.ID, []string{model.AssignmentPostReview}, model.AssignmentCompleted)
			if casErr != nil {
				return casErr
			}
			if !ok {
				return apperror.InvalidState("assignment is not awaiting post review")
			}
			if payErr := s.createCompletionPayouts(tx, actor, &assignment); payErr != nil {
				return payErr
			}
		}

		post.Status = req.Status
		post.ReviewNotes = req.Notes
		post.ReviewedBy = &reviewerID
		post.ReviewedAt = &now

		return s.audit(tx, actor, model.ActionReviewPost, post.ID.String(), map[string]interface{}{
			"assignment_id": assignment.ID.String(),
			"status":        req.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(ws.Event{Type: "post_submission." + post.Status, AssignmentID: post.AssignmentID.String(), EntityID: post.ID.String(), Status: post.Status})
	return &post, nil
}

// createCompletionPayouts writes the reimbursement and commission ledger
// rows earned by post approval. The reimbursement snapshot is the approved
// proof's price, taken now rather than at proof approval so nothing is
// owed before the content is verified.
func (s *assignmentService) createCompletionPayouts(tx *gorm.DB, actor Actor, assignment *model.Assignment) error {
	var campaign model.Campaign
	if err := tx.First(&campaign, "id = ?", assignment.CampaignID).Error; err != nil {
		return apperror.PayoutCreation(err, "failed to load campaign for payout")
	}

	reimbursement := decimal.Zero
	var proof model.PurchaseProof
	err := tx.Where("assignment_id = ? AND status = ?", assignment.ID, model.ProofApproved).
		Order("created_at desc").First(&proof).Error
	if err == nil && proof.Total != nil {
		reimbursement = *proof.Total
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.PayoutCreation(err, "failed to load approved purchase proof")
	}

	payouts := []model.Payout{
		{
			AssignmentID: assignment.ID,
			CampaignID:   campaign.ID,
			InfluencerID: assignment.InfluencerID,
			BrandID:      campaign.BrandID,
			PayoutType:   model.PayoutReimbursement,
			Amount:       reimbursement,
			Status:       model.PayoutPending,
		},
		{
			AssignmentID: assignment.ID,
			CampaignID:   campaign.ID,
			InfluencerID: assignment.InfluencerID,
			BrandID:      campaign.BrandID,
			PayoutType:   model.PayoutCommission,
			Amount:       campaign.CommissionAmount,
			Status:       model.PayoutPending,
		},
	}

	for i := range payouts {
		var existing int64
		if err := tx.Model(&model.Payout{}).
			Where("assignment_id = ? AND payout_type = ?", assignment.ID, payouts[i].PayoutType).
			Count(&existing).Error; err != nil {
			return apperror.PayoutCreation(err, "failed to verify payout uniqueness")
		}
		if existing > 0 {
			return apperror.PayoutCreation(nil, "payout already exists for assignment")
		}
		if err := tx.Create(&payouts[i]).Error; err != nil {
			return apperror.PayoutCreation(err, "failed to write payout ledger")
		}
		if err := s.audit(tx, actor, model.ActionCreatePayout, payouts[i].ID.String(), map[string]interface{}{
			"assignment_id": assignment.ID.String(),
			"payout_type":   payouts[i].PayoutType,
			"amount":        payouts[i].Amount.StringFixed(2),
		}); err != nil {
			return apperror.PayoutCreation(err, "failed to audit payout")
		}
	}

	return nil
}

// --- Product review (bonus) ---

func (s *assignmentService) SubmitProductReview(ctx context.Context, actor Actor, assignmentID string, req SubmitProductReviewRequest) (*model.ProductReview, error) {
	aid, err := parseID("assignment", assignmentID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ReviewText) == "" {
		return nil, apperror.Validation("review_text is required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperror.Validation("rating must be between 1 and 5")
	}
	if strings.TrimSpace(req.ScreenshotURL) == "" {
		return nil, apperror.Validation("screenshot_url is required")
	}

	var review model.ProductReview
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assignment model.Assignment
		if findErr := tx.First(&assignment, "id = ?", aid).Error; findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("assignment not found")
			}
			return findErr
		}

		influencer, ownErr := s.actorInfluencer(tx, actor, &assignment)
		if ownErr != nil {
			return ownErr
		}

		if assignment.Status != model.AssignmentCompleted {
			return apperror.InvalidState("product review requires a completed assignment")
		}
		if assignment.ReviewStatus != model.ReviewStatusNone && assignment.ReviewStatus != model.ReviewStatusRejected {
			return apperror.InvalidState("a product review is already %s", assignment.ReviewStatus)
		}

		review = model.ProductReview{
			AssignmentID:  assignment.ID,
			CampaignID:    assignment.CampaignID,
			InfluencerID:  influencer.ID,
			ReviewText:    req.ReviewText,
			Rating:        req.Rating,
			ScreenshotURL: req.ScreenshotURL,
			Platform:      req.Platform,
			Status:        model.ProofPending,
		}
		if createErr := tx.Create(&review).Error; createErr != nil {
			return fmt.Errorf("failed to create product review: %w", createErr)
		}

		res := tx.Model(&model.Assignment{}).
			Where("id = ? AND status = ? AND review_status IN ?", assignment.ID, model.AssignmentCompleted,
				[]string{model.ReviewStatusNone, model.ReviewStatusRejected}).
			Update("review_status", model.ReviewStatusReview)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.InvalidState("assignment changed state during submission")
		}

		return s.audit(tx, actor, model.ActionSubmitProductReview, review.ID.String(), map[string]interface{}{
			"assignment_id": assignment.ID.String(),
			"rating":        req.Rating,
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(ws.Event{Type: "product_review.submitted", AssignmentID: review.AssignmentID.String(), EntityID: review.ID.String()})
	return &review, nil
}

func (s *assignmentService) ReviewProductReview(ctx context.Context, actor Actor, reviewID string, req ReviewDecisionRequest) (*model.ProductReview, error) {
	rid, err := parseID("product review", reviewID)
	if err != nil {
		return nil, err
	}
	if !validDecision(req.Status) {
		return nil, apperror.Validation("status must be 'approved' or 'rejected'")
	}

	var review model.ProductReview
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if findErr := tx.First(&review, "id = ?", rid).Error; findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("product review not found")
			}
			return findErr
		}

		var assignment model.Assignment
		if findErr := tx.First(&assignment, "id = ?", review.AssignmentID).Error; findErr != nil {
			return findErr
		}
		if authErr := s.authorizeReviewer(tx, actor, assignment.CampaignID); authErr != nil {
			return authErr
		}

		if review.Status != model.ProofPending {
			return apperror.AlreadyReviewed("product review is already %s", review.Status)
		}

		reviewerID, _ := uuid.Parse(actor.UserID)
		now := time.Now()
		res := tx.Model(&model.ProductReview{}).
			Where("id = ? AND status = ?", review.ID, model.ProofPending).
			Updates(map[string]interface{}{
				"status":       req.Status,
				"review_notes": req.Notes,
				"reviewed_by":  reviewerID,
				"reviewed_at":  now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.AlreadyReviewed("product review was reviewed concurrently")
		}

		target := model.ReviewStatusApproved
		if req.Status == model.ProofRejected {
			target = model.ReviewStatusRejected
		}
		casRes := tx.Model(&model.Assignment{}).
			Where("id = ? AND review_status = ?", assignment.ID, model.ReviewStatusReview).
			Update("review_status", target)
		if casRes.Error != nil {
			return casRes.Error
		}
		if casRes.RowsAffected == 0 {
			return apperror.InvalidState("assignment is not awaiting product review")
		}

		if req.Status == model.ProofApproved {
			if bonusErr := s.createReviewBonusPayout(tx, actor, &assignment, &review); bonusErr != nil {
				return bonusErr
			}
		}

		review.Status = req.Status
		review.ReviewNotes = req.Notes
		review.ReviewedBy = &reviewerID
		review.ReviewedAt = &now

		return s.audit(tx, actor, model.ActionReviewProductReview, review.ID.String(), map[string]interface{}{
			"assignment_id": assignment.ID.String(),
			"status":        req.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(ws.Event{Type: "product_review." + review.Status, AssignmentID: review.AssignmentID.String(), EntityID: review.ID.String(), Status: review.Status})
	return &review, nil
}

func (s *assignmentService) createReviewBonusPayout(tx *gorm.DB, actor Actor, assignment *model.Assignment, review *model.ProductReview) error {
	var campaign model.Campaign
	if err := tx.First(&campaign, "id = ?", assignment.CampaignID).Error; err != nil {
		return apperror.PayoutCreation(err, "failed to load campaign for review bonus")
	}

	var existing int64
	if err := tx.Model(&model.Payout{}).
		Where("assignment_id = ? AND payout_type = ?", assignment.ID, model.PayoutReviewBonus).
		Count(&existing).Error; err != nil {
		return apperror.PayoutCreation(err, "failed to verify review bonus uniqueness")
	}
	if existing > 0 {
		return apperror.PayoutCreation(nil, "review bonus already paid for assignment")
	}

	payout := model.Payout{
		AssignmentID: assignment.ID,
		CampaignID:   campaign.ID,
		InfluencerID: assignment.InfluencerID,
		BrandID:      campaign.BrandID,
		PayoutType:   model.PayoutReviewBonus,
		Amount:       campaign.ReviewBonus,
		Status:       model.PayoutPending,
	}
	if err := tx.Create(&payout).Error; err != nil {
		return apperror.PayoutCreation(err, "failed to write review bonus payout")
	}

	return s.audit(tx, actor, model.ActionCreatePayout, payout.ID.String(), map[string]interface{}{
		"assignment_id": assignment.ID.String(),
		"payout_type":   model.PayoutReviewBonus,
		"amount":        payout.Amount.StringFixed(2),
		"review_id":     review.ID.String(),
	})
}
