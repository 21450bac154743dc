package service

import (
	"context"
	"errors"

	"backend/internal/model"
	"backend/pkg/apperror"

	"gorm.io/gorm"
)

type UpsertPaymentDetailsRequest struct {
	AccountHolderName string `json:"account_holder_name" binding:"required"`
	AccountNumber     string `json:"account_number" binding:"required"`
	RoutingNumber     string `json:"routing_number" binding:"required"`
	BankName          string `json:"bank_name" binding:"required"`
	SwiftCode         string `json:"swift_code"`
	IBAN              string `json:"iban"`
	PaypalEmail       string `json:"paypal_email"`
}

// ProfileService serves the influencer-side profile surface: payout
// destination details, which gate settlement.
type ProfileService interface {
	GetPaymentDetails(ctx context.Context, actor Actor) (*model.PaymentDetails, error)
	UpsertPaymentDetails(ctx context.Context, actor Actor, req UpsertPaymentDetailsRequest) (*model.PaymentDetails, error)
}

type profileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) ProfileService {
	return &profileService{db: db}
}

func (s *profileService) actorInfluencer(ctx context.Context, actor Actor) (*model.Influencer, error) {
	var influencer model.Influencer
	if err := s.db.WithContext(ctx).First(&influencer, "user_id = ?", actor.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("influencer profile not found")
		}
		return nil, err
	}
	return &influencer, nil
}

func (s *profileService) GetPaymentDetails(ctx context.Context, actor Actor) (*model.PaymentDetails, error) {
	influencer, err := s.actorInfluencer(ctx, actor)
	if err != nil {
		return nil, err
	}

	var details model.PaymentDetails
	if err := s.db.WithContext(ctx).First(&details, "influencer_id = ?", influencer.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("payment details not set up yet")
		}
		return nil, err
	}
	return &details, nil
}

func (s *profileService) UpsertPaymentDetails(ctx context.Context, actor Actor, req UpsertPaymentDetailsRequest) (*model.PaymentDetails, error) {
	influencer, err := s.actorInfluencer(ctx, actor)
	if err != nil {
		return nil, err
	}

	var details model.PaymentDetails
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.First(&details, "influencer_id = ?", influencer.ID).Error
		if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		details.InfluencerID = influencer.ID
		details.AccountHolderName = req.AccountHolderName
		details.AccountNumber = req.AccountNumber
		details.RoutingNumber = req.RoutingNumber
		details.BankName = req.BankName
		details.SwiftCode = req.SwiftCode
		details.IBAN = req.IBAN
		details.PaypalEmail = req.PaypalEmail

		return tx.Save(&details).Error
	})
	if err != nil {
		return nil, err
	}

	return &details, nil
}
