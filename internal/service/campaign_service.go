package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var amazonURLPattern = regexp.MustCompile(`amazon\.[a-z.]+|amzn\.to`)

// --- DTOs ---

type CreateCampaignRequest struct {
	Title                string          `json:"title" binding:"required"`
	Description          string          `json:"description"`
	AmazonAttributionURL string          `json:"amazon_attribution_url" binding:"required"`
	CommissionAmount     decimal.Decimal `json:"commission_amount"`
	ReviewBonus          decimal.Decimal `json:"review_bonus"`
	PurchaseWindowStart  time.Time       `json:"purchase_window_start" binding:"required"`
	PurchaseWindowEnd    time.Time       `json:"purchase_window_end" binding:"required"`
	PostWindowStart      time.Time       `json:"post_window_start" binding:"required"`
	PostWindowEnd        time.Time       `json:"post_window_end" binding:"required"`
	ASINAllowlist        []string        `json:"asin_allowlist"`
}

type CampaignFilter struct {
	Status string
	Page   int
	Limit  int
}

// CampaignService owns the campaign entity. The assignment lifecycle
// treats campaigns as a read-only policy source for commission amount,
// review bonus and date windows.
type CampaignService interface {
	CreateCampaign(ctx context.Context, actor Actor, req CreateCampaignRequest) (*model.Campaign, error)
	PublishCampaign(ctx context.Context, actor Actor, campaignID string) (*model.Campaign, error)
	ListCampaigns(ctx context.Context, actor Actor, filter CampaignFilter) ([]model.Campaign, int64, error)
	GetCampaign(ctx context.Context, actor Actor, campaignID string) (*model.Campaign, error)
}

type campaignService struct {
	db *gorm.DB
}

func NewCampaignService(db *gorm.DB) CampaignService {
	return &campaignService{db: db}
}

func (s *campaignService) actorBrand(ctx context.Context, actor Actor) (*model.Brand, error) {
	var brand model.Brand
	if err := s.db.WithContext(ctx).First(&brand, "user_id = ?", actor.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("brand profile not found")
		}
		return nil, err
	}
	return &brand, nil
}

func (s *campaignService) CreateCampaign(ctx context.Context, actor Actor, req CreateCampaignRequest) (*model.Campaign, error) {
	if !amazonURLPattern.MatchString(strings.ToLower(req.AmazonAttributionURL)) {
		return nil, apperror.Validation("amazon_attribution_url must be a valid Amazon link (amazon.* or amzn.to)")
	}
	if req.CommissionAmount.IsNegative() || req.ReviewBonus.IsNegative() {
		return nil, apperror.Validation("commission_amount and review_bonus must not be negative")
	}
	if !req.PurchaseWindowEnd.After(req.PurchaseWindowStart) {
		return nil, apperror.Validation("purchase window end must be after start")
	}
	if !req.PostWindowEnd.After(req.PostWindowStart) {
		return nil, apperror.Validation("post window end must be after start")
	}

	brand, err := s.actorBrand(ctx, actor)
	if err != nil {
		return nil, err
	}

	campaign := model.Campaign{
		BrandID:              brand.ID,
		Title:                req.Title,
		Description:          req.Description,
		AmazonAttributionURL: req.AmazonAttributionURL,
		CommissionAmount:     req.CommissionAmount,
		ReviewBonus:          req.ReviewBonus,
		PurchaseWindowStart:  req.PurchaseWindowStart,
		PurchaseWindowEnd:    req.PurchaseWindowEnd,
		PostWindowStart:      req.PostWindowStart,
		PostWindowEnd:        req.PostWindowEnd,
		Status:               model.CampaignDraft,
		ASINAllowlist:        strings.Join(req.ASINAllowlist, ","),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if createErr := tx.Create(&campaign).Error; createErr != nil {
			return createErr
		}
		audit := model.AuditLog{
			Action:     model.ActionCreateCampaign,
			EntityID:   campaign.ID.String(),
			EntityName: campaign.Title,
		}
		if uid, parseErr := parseID("user", actor.UserID); parseErr == nil {
			audit.UserID = &uid
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, err
	}

	return &campaign, nil
}

func (s *campaignService) PublishCampaign(ctx context.Context, actor Actor, campaignID string) (*model.Campaign, error) {
	cid, err := parseID("campaign", campaignID)
	if err != nil {
		return nil, err
	}

	var campaign model.Campaign
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if findErr := tx.First(&campaign, "id = ?", cid).Error; findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("campaign not found")
			}
			return findErr
		}

		if actor.Role != model.RoleAdmin {
			brand, brandErr := s.actorBrand(ctx, actor)
			if brandErr != nil {
				return brandErr
			}
			if campaign.BrandID != brand.ID {
				return apperror.Forbidden("not your campaign")
			}
		}

		if campaign.Status != model.CampaignDraft {
			return apperror.InvalidState("only draft campaigns can be published")
		}

		res := tx.Model(&model.Campaign{}).
			Where("id = ? AND status = ?", campaign.ID, model.CampaignDraft).
			Update("status", model.CampaignPublished)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.InvalidState("campaign changed state during publish")
		}
		campaign.Status = model.CampaignPublished

		audit := model.AuditLog{
			Action:     model.ActionPublishCampaign,
			EntityID:   campaign.ID.String(),
			EntityName: campaign.Title,
		}
		if uid, parseErr := parseID("user", actor.UserID); parseErr == nil {
			audit.UserID = &uid
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, err
	}

	return &campaign, nil
}

// ListCampaigns shows brands their own campaigns regardless of status and
// everyone else the published ones
func (s *campaignService) ListCampaigns(ctx context.Context, actor Actor, filter CampaignFilter) ([]model.Campaign, int64, error) {
	db := s.db.WithContext(ctx)
	query := db.Model(&model.Campaign{})

	switch actor.Role {
	case model.RoleBrand:
		brand, err := s.actorBrand(ctx, actor)
		if err != nil {
			return nil, 0, err
		}
		query = query.Where("brand_id = ?", brand.ID)
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	case model.RoleAdmin:
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	default:
		query = query.Where("status = ?", model.CampaignPublished)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	var campaigns []model.Campaign
	if err := query.
		Preload("Brand").
		Order("created_at desc").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

func (s *campaignService) GetCampaign(ctx context.Context, actor Actor, campaignID string) (*model.Campaign, error) {
	cid, err := parseID("campaign", campaignID)
	if err != nil {
		return nil, err
	}

	var campaign model.Campaign
	if err := s.db.WithContext(ctx).Preload("Brand").First(&campaign, "id = ?", cid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("campaign not found")
		}
		return nil, err
	}

	// Unpublished campaigns are visible to their brand and admins only
	if campaign.Status != model.CampaignPublished && actor.Role != model.RoleAdmin {
		brand, brandErr := s.actorBrand(ctx, actor)
		if brandErr != nil || campaign.BrandID != brand.ID {
			return nil, apperror.NotFound("campaign not found")
		}
	}

	return &campaign, nil
}
