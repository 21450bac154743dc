package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"backend/internal/model"
	"backend/pkg/apperror"

	"gorm.io/gorm"
)

// ListAssignments returns assignments scoped to the acting role:
// influencers see their own, brands see assignments of campaigns they own,
// admins see everything.
func (s *assignmentService) ListAssignments(ctx context.Context, actor Actor, page, limit int) ([]model.Assignment, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	db := s.db.WithContext(ctx)
	query := db.Model(&model.Assignment{})

	switch actor.Role {
	case model.RoleInfluencer:
		var influencer model.Influencer
		if err := db.First(&influencer, "user_id = ?", actor.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, apperror.NotFound("influencer profile not found")
			}
			return nil, 0, err
		}
		query = query.Where("influencer_id = ?", influencer.ID)
	case model.RoleBrand:
		var brand model.Brand
		if err := db.First(&brand, "user_id = ?", actor.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, apperror.NotFound("brand profile not found")
			}
			return nil, 0, err
		}
		query = query.Where("campaign_id IN (?)",
			db.Model(&model.Campaign{}).Select("id").Where("brand_id = ?", brand.ID))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var assignments []model.Assignment
	if err := query.
		Preload("Campaign").
		Preload("Influencer").
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&assignments).Error; err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}

// loadAssignmentFor fetches an assignment and enforces role-based access to it
func (s *assignmentService) loadAssignmentFor(ctx context.Context, actor Actor, assignmentID string) (*model.Assignment, error) {
	aid, err := parseID("assignment", assignmentID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var assignment model.Assignment
	if err := db.Preload("Campaign").First(&assignment, "id = ?", aid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("assignment not found")
		}
		return nil, err
	}

	switch actor.Role {
	case model.RoleInfluencer:
		if _, err := s.actorInfluencer(db, actor, &assignment); err != nil {
			return nil, err
		}
	case model.RoleBrand:
		if err := s.authorizeReviewer(db, actor, assignment.CampaignID); err != nil {
			return nil, err
		}
	}

	return &assignment, nil
}

func (s *assignmentService) GetAssignment(ctx context.Context, actor Actor, assignmentID string) (*model.Assignment, error) {
	return s.loadAssignmentFor(ctx, actor, assignmentID)
}

// GetAssignmentPurchaseProof returns the current proof: the latest row,
// which is the only pending/approved one or the most recent rejection
func (s *assignmentService) GetAssignmentPurchaseProof(ctx context.Context, actor Actor, assignmentID string) (*model.PurchaseProof, error) {
	assignment, err := s.loadAssignmentFor(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}

	var proof model.PurchaseProof
	if err := s.db.WithContext(ctx).
		Where("assignment_id = ?", assignment.ID).
		Order("created_at desc").
		First(&proof).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("no purchase proof found for this assignment")
		}
		return nil, err
	}
	return &proof, nil
}

func (s *assignmentService) GetAssignmentPostSubmission(ctx context.Context, actor Actor, assignmentID string) (*model.PostSubmission, error) {
	assignment, err := s.loadAssignmentFor(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}

	var post model.PostSubmission
	if err := s.db.WithContext(ctx).
		Where("assignment_id = ?", assignment.ID).
		Order("created_at desc").
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("no post submission found for this assignment")
		}
		return nil, err
	}
	return &post, nil
}

func (s *assignmentService) GetAssignmentProductReview(ctx context.Context, actor Actor, assignmentID string) (*model.ProductReview, error) {
	assignment, err := s.loadAssignmentFor(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}

	var review model.ProductReview
	if err := s.db.WithContext(ctx).
		Where("assignment_id = ?", assignment.ID).
		Order("created_at desc").
		First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("no product review found for this assignment")
		}
		return nil, err
	}
	return &review, nil
}

// GetAmazonLink builds the public attribution redirect URL for the owning influencer
func (s *assignmentService) GetAmazonLink(ctx context.Context, actor Actor, assignmentID string) (string, error) {
	aid, err := parseID("assignment", assignmentID)
	if err != nil {
		return "", err
	}

	db := s.db.WithContext(ctx)
	var assignment model.Assignment
	if err := db.First(&assignment, "id = ?", aid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperror.NotFound("assignment not found")
		}
		return "", err
	}
	if _, err := s.actorInfluencer(db, actor, &assignment); err != nil {
		return "", err
	}

	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return fmt.Sprintf("%s/r/%s", baseURL, assignment.RedirectToken), nil
}

// VerificationQueue lists pending purchase proofs or post submissions for
// reviewers, scoped to the brand's own campaigns unless the actor is admin
func (s *assignmentService) VerificationQueue(ctx context.Context, actor Actor, queueType, status string) (interface{}, error) {
	if queueType != "purchase" && queueType != "post" {
		return nil, apperror.Validation("queue_type must be 'purchase' or 'post'")
	}
	if status == "" {
		status = model.ProofPending
	}

	db := s.db.WithContext(ctx)

	var campaignScope *gorm.DB
	if actor.Role == model.RoleBrand {
		var brand model.Brand
		if err := db.First(&brand, "user_id = ?", actor.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("brand profile not found")
			}
			return nil, err
		}
		campaignScope = db.Model(&model.Campaign{}).Select("id").Where("brand_id = ?", brand.ID)
	}

	if queueType == "purchase" {
		query := db.Model(&model.PurchaseProof{}).Where("purchase_proofs.status = ?", status)
		if campaignScope != nil {
			query = query.
				Joins("JOIN assignments ON assignments.id = purchase_proofs.assignment_id").
				Where("assignments.campaign_id IN (?)", campaignScope)
		}
		var proofs []model.PurchaseProof
		if err := query.Order("purchase_proofs.created_at asc").Find(&proofs).Error; err != nil {
			return nil, err
		}
		return proofs, nil
	}

	query := db.Model(&model.PostSubmission{}).Where("status = ?", status)
	if campaignScope != nil {
		query = query.Where("campaign_id IN (?)", campaignScope)
	}
	var posts []model.PostSubmission
	if err := query.Order("created_at asc").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}
