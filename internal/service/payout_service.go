package service

import (
	"context"
	"errors"
	"time"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PayoutFilter struct {
	Status     string
	PayoutType string
	Page       int
	Limit      int
}

type SettlePayoutRequest struct {
	Status string `json:"status" binding:"required"` // only "paid" is accepted
	Notes  string `json:"notes"`
}

// PayoutService is the read/settlement side of the ledger. It never
// creates rows; that is the assignment lifecycle's job. The only write is
// the one-way pending -> paid flip.
type PayoutService interface {
	ListPayouts(ctx context.Context, actor Actor, filter PayoutFilter) ([]model.Payout, int64, error)
	GetPayout(ctx context.Context, actor Actor, payoutID string) (*model.Payout, error)
	SettlePayout(ctx context.Context, actor Actor, payoutID string, req SettlePayoutRequest) (*model.Payout, error)
}

type payoutService struct {
	db *gorm.DB
}

func NewPayoutService(db *gorm.DB) PayoutService {
	return &payoutService{db: db}
}

func (s *payoutService) scope(ctx context.Context, actor Actor, query *gorm.DB) (*gorm.DB, error) {
	db := s.db.WithContext(ctx)
	switch actor.Role {
	case model.RoleInfluencer:
		var influencer model.Influencer
		if err := db.First(&influencer, "user_id = ?", actor.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("influencer profile not found")
			}
			return nil, err
		}
		return query.Where("influencer_id = ?", influencer.ID), nil
	case model.RoleBrand:
		var brand model.Brand
		if err := db.First(&brand, "user_id = ?", actor.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("brand profile not found")
			}
			return nil, err
		}
		return query.Where("brand_id = ?", brand.ID), nil
	}
	return query, nil
}

func (s *payoutService) ListPayouts(ctx context.Context, actor Actor, filter PayoutFilter) ([]model.Payout, int64, error) {
	db := s.db.WithContext(ctx)
	query := db.Model(&model.Payout{})
	query, err := s.scope(ctx, actor, query)
	if err != nil {
		return nil, 0, err
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PayoutType != "" {
		query = query.Where("payout_type = ?", filter.PayoutType)
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

	var payouts []model.Payout
	if err := query.
		Preload("Assignment").
		Preload("Campaign").
		Order("created_at desc").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&payouts).Error; err != nil {
		return nil, 0, err
	}

	return payouts, total, nil
}

func (s *payoutService) GetPayout(ctx context.Context, actor Actor, payoutID string) (*model.Payout, error) {
	pid, err := parseID("payout", payoutID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var payout model.Payout
	if err := db.Preload("Assignment").Preload("Campaign").First(&payout, "id = ?", pid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("payout not found")
		}
		return nil, err
	}

	switch actor.Role {
	case model.RoleInfluencer:
		var influencer model.Influencer
		if err := db.First(&influencer, "user_id = ?", actor.UserID).Error; err != nil {
			return nil, apperror.NotFound("influencer profile not found")
		}
		if payout.InfluencerID != influencer.ID {
			return nil, apperror.Forbidden("not your payout")
		}
	case model.RoleBrand:
		var brand model.Brand
		if err := db.First(&brand, "user_id = ?", actor.UserID).Error; err != nil {
			return nil, apperror.NotFound("brand profile not found")
		}
		if payout.BrandID != brand.ID {
			return nil, apperror.Forbidden("not your payout")
		}
	}

	return &payout, nil
}

// SettlePayout flips a pending payout to paid. Idempotent: settling an
// already paid payout returns it unchanged. Refuses to pay out while the
// influencer has no payment details on file.
func (s *payoutService) SettlePayout(ctx context.Context, actor Actor, payoutID string, req SettlePayoutRequest) (*model.Payout, error) {
	pid, err := parseID("payout", payoutID)
	if err != nil {
		return nil, err
	}
	if req.Status != model.PayoutPaid {
		return nil, apperror.Validation("status must be 'paid'")
	}

	var payout model.Payout
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if findErr := tx.First(&payout, "id = ?", pid).Error; findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("payout not found")
			}
			return findErr
		}

		if actor.Role == model.RoleBrand {
			var brand model.Brand
			if findErr := tx.First(&brand, "user_id = ?", actor.UserID).Error; findErr != nil {
				return apperror.NotFound("brand profile not found")
			}
			if payout.BrandID != brand.ID {
				return apperror.Forbidden("not your payout")
			}
		}

		if payout.Status == model.PayoutPaid {
			return nil // one-way flip already happened
		}

		var details int64
		if countErr := tx.Model(&model.PaymentDetails{}).
			Where("influencer_id = ?", payout.InfluencerID).
			Count(&details).Error; countErr != nil {
			return countErr
		}
		if details == 0 {
			return apperror.InvalidState("influencer has not set up payment details yet")
		}

		payerID, _ := uuid.Parse(actor.UserID)
		now := time.Now()
		res := tx.Model(&model.Payout{}).
			Where("id = ? AND status = ?", payout.ID, model.PayoutPending).
			Updates(map[string]interface{}{
				"status":  model.PayoutPaid,
				"paid_by": payerID,
				"paid_at": now,
				"notes":   req.Notes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// raced with another settlement of the same row; flip is one-way
			return nil
		}

		payout.Status = model.PayoutPaid
		payout.PaidBy = &payerID
		payout.PaidAt = &now
		payout.Notes = req.Notes

		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(actor.UserID); parseErr == nil {
			uid = &parsed
		}
		audit := model.AuditLog{
			UserID:   uid,
			Action:   model.ActionSettlePayout,
			EntityID: payout.ID.String(),
			Details:  `{"status":"paid"}`,
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, err
	}

	return &payout, nil
}
