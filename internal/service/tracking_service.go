package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"backend/internal/model"
	"backend/pkg/apperror"

	"gorm.io/gorm"
)

// TrackingService resolves public attribution redirects and records the
// click trail. The token is the only credential; no auth on this path.
type TrackingService interface {
	ResolveRedirect(ctx context.Context, token, clientIP, userAgent string) (string, error)
	CountClicks(ctx context.Context, assignmentID string) (int64, error)
}

type trackingService struct {
	db *gorm.DB
}

func NewTrackingService(db *gorm.DB) TrackingService {
	return &trackingService{db: db}
}

// ResolveRedirect looks up the assignment behind a redirect token, logs
// the click, and returns the Amazon destination (assignment override
// first, campaign default otherwise)
func (s *trackingService) ResolveRedirect(ctx context.Context, token, clientIP, userAgent string) (string, error) {
	if token == "" {
		return "", apperror.NotFound("unknown redirect token")
	}

	db := s.db.WithContext(ctx)
	var assignment model.Assignment
	if err := db.First(&assignment, "redirect_token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperror.NotFound("unknown redirect token")
		}
		return "", err
	}

	// Raw IPs never hit the database
	ipHash := sha256.Sum256([]byte(clientIP))
	click := model.ClickLog{
		AssignmentID: assignment.ID,
		IPHash:       hex.EncodeToString(ipHash[:]),
		UserAgent:    userAgent,
	}
	if err := db.Create(&click).Error; err != nil {
		return "", err
	}

	if assignment.AmazonAttributionURL != "" {
		return assignment.AmazonAttributionURL, nil
	}

	var campaign model.Campaign
	if err := db.First(&campaign, "id = ?", assignment.CampaignID).Error; err != nil {
		return "", err
	}
	return campaign.AmazonAttributionURL, nil
}

func (s *trackingService) CountClicks(ctx context.Context, assignmentID string) (int64, error) {
	aid, err := parseID("assignment", assignmentID)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.ClickLog{}).
		Where("assignment_id = ?", aid).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
