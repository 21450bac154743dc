package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayoutType enum constants
const (
	PayoutReimbursement = "reimbursement"
	PayoutCommission    = "commission"
	PayoutReviewBonus   = "review_bonus"
)

// PayoutStatus enum constants
const (
	PayoutPending = "pending"
	PayoutPaid    = "paid"
)

// Payout is an append-only ledger entry for money owed to an influencer.
// Rows are created exclusively by the assignment lifecycle inside the same
// transaction as the status flip that earns them; the only permitted
// mutation afterwards is the one-way pending -> paid settlement flip.
type Payout struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID       `gorm:"type:uuid;not null;index" json:"assignment_id"`
	Assignment   *Assignment     `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`
	CampaignID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"campaign_id"`
	Campaign     *Campaign       `gorm:"foreignKey:CampaignID" json:"campaign,omitempty"`
	InfluencerID uuid.UUID       `gorm:"type:uuid;not null;index" json:"influencer_id"`
	BrandID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"brand_id"`
	PayoutType   string          `gorm:"type:varchar(20);not null;index" json:"payout_type"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Currency     string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Status       string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Notes        string          `gorm:"type:text" json:"notes,omitempty"`
	PaidBy       *uuid.UUID      `gorm:"type:uuid" json:"paid_by,omitempty"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (p *Payout) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	return nil
}
