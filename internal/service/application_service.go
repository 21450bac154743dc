package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type ApplyRequest struct {
	CampaignID string          `json:"campaign_id" binding:"required"`
	Answers    json.RawMessage `json:"answers"`
}

type ApplicationDecisionRequest struct {
	Status string `json:"status" binding:"required"` // accepted or rejected
	Notes  string `json:"notes"`
}

// ApplicationService handles influencer applications to campaigns.
// Accepting an application is what brings an Assignment into existence,
// already in purchase_required with a fresh redirect token.
type ApplicationService interface {
	Apply(ctx context.Context, actor Actor, req ApplyRequest) (*model.Application, error)
	ListByCampaign(ctx context.Context, actor Actor, campaignID string) ([]model.Application, error)
	Decide(ctx context.Context, actor Actor, applicationID string, req ApplicationDecisionRequest) (*model.Application, error)
}

type applicationService struct {
	db *gorm.DB
}

func NewApplicationService(db *gorm.DB) ApplicationService {
	return &applicationService{db: db}
}

func (s *applicationService) Apply(ctx context.Context, actor Actor, req ApplyRequest) (*model.Application, error) {
	cid, err := parseID("campaign", req.CampaignID)
	if err != nil {
		return nil, err
	}

	var application model.Application
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var influencer model.Influencer
		if findErr := tx.First(&influencer, "user_id = ?", actor.UserID).Error; findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("influencer profile not found")
			}
			return findErr
		}

		var campaign model.Campaign
		if findErr := tx.First(&campaign, "id = ?", cid).Error; findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("campaign not found")
			}
			return findErr
		}
		if campaign.Status != model.CampaignPublished {
			return apperror.InvalidState("campaign is not open for applications")
		}

		var existing int64
		if countErr := tx.Model(&model.Application{}).
			Where("campaign_id = ? AND influencer_id = ?", campaign.ID, influencer.ID).
			Count(&existing).Error; countErr != nil {
			return countErr
		}
		if existing > 0 {
			return apperror.InvalidState("already applied to this campaign")
		}

		application = model.Application{
			CampaignID:   campaign.ID,
			InfluencerID: influencer.ID,
			Status:       model.ApplicationApplied,
			Answers:      string(req.Answers),
		}
		if createErr := tx.Create(&application).Error; createErr != nil {
			return fmt.Errorf("failed to create application: %w", createErr)
		}

		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(actor.UserID); parseErr == nil {
			uid = &parsed
		}
		audit := model.AuditLog{
			UserID:   uid,
			Action:   model.ActionApplyToCampaign,
			EntityID: application.ID.String(),
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, err
	}

	return &application, nil
}

func (s *applicationService) ListByCampaign(ctx context.Context, actor Actor, campaignID string) ([]model.Application, error) {
	cid, err := parseID("campaign", campaignID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if actor.Role == model.RoleBrand {
		var brand model.Brand
		if err := db.First(&brand, "user_id = ?", actor.UserID).Error; err != nil {
			return nil, apperror.NotFound("brand profile not found")
		}
		var campaign model.Campaign
		if err := db.First(&campaign, "id = ?", cid).Error; err != nil {
			return nil, apperror.NotFound("campaign not found")
		}
		if campaign.BrandID != brand.ID {
			return nil, apperror.Forbidden("not your campaign")
		}
	}

	var applications []model.Application
	if err := db.Preload("Influencer").
		Where("campaign_id = ?", cid).
		Order("created_at desc").
		Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

// Decide accepts or rejects an application. Acceptance creates the
// Assignment in the same transaction so a crash cannot leave an accepted
// application without its lifecycle record.
func (s *applicationService) Decide(ctx context.Context, actor Actor, applicationID string, req ApplicationDecisionRequest) (*model.Application, error) {
	aid, err := parseID("application", applicationID)
	if err != nil {
		return nil, err
	}
	if req.Status != model.ApplicationAccepted && req.Status != model.ApplicationRejected {
		return nil, apperror.Validation("status must be 'accepted' or 'rejected'")
	}

	var application model.Application
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if findErr := tx.First(&application, "id = ?", aid).Error; findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("application not found")
			}
			return findErr
		}

		var campaign model.Campaign
		if findErr := tx.First(&campaign, "id = ?", application.CampaignID).Error; findErr != nil {
			return findErr
		}

		if actor.Role == model.RoleBrand {
			var brand model.Brand
			if findErr := tx.First(&brand, "user_id = ?", actor.UserID).Error; findErr != nil {
				return apperror.NotFound("brand profile not found")
			}
			if campaign.BrandID != brand.ID {
				return apperror.Forbidden("not your campaign")
			}
		}

		if application.Status != model.ApplicationApplied {
			return apperror.AlreadyReviewed("application is already %s", application.Status)
		}

		res := tx.Model(&model.Application{}).
			Where("id = ? AND status = ?", application.ID, model.ApplicationApplied).
			Updates(map[string]interface{}{"status": req.Status, "notes": req.Notes})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.AlreadyReviewed("application was decided concurrently")
		}
		application.Status = req.Status
		application.Notes = req.Notes

		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(actor.UserID); parseErr == nil {
			uid = &parsed
		}

		if req.Status == model.ApplicationAccepted {
			assignment := model.Assignment{
				CampaignID:    application.CampaignID,
				InfluencerID:  application.InfluencerID,
				ApplicationID: application.ID,
				Status:        model.AssignmentPurchaseRequired,
				ReviewStatus:  model.ReviewStatusNone,
			}
			if createErr := tx.Create(&assignment).Error; createErr != nil {
				return fmt.Errorf("failed to create assignment: %w", createErr)
			}

			audit := model.AuditLog{
				UserID:   uid,
				Action:   model.ActionCreateAssignment,
				EntityID: assignment.ID.String(),
			}
			if auditErr := tx.Create(&audit).Error; auditErr != nil {
				return auditErr
			}
		}

		audit := model.AuditLog{
			UserID:   uid,
			Action:   model.ActionUpdateApplication,
			EntityID: application.ID.String(),
			Details:  fmt.Sprintf(`{"status":%q}`, req.Status),
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, err
	}

	return &application, nil
}
