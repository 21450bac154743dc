package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CampaignStatus enum constants
const (
	CampaignDraft     = "draft"
	CampaignPublished = "published"
	CampaignClosed    = "closed"
)

// ApplicationStatus enum constants
const (
	ApplicationApplied  = "applied"
	ApplicationAccepted = "accepted"
	ApplicationRejected = "rejected"
)

// Campaign is the brand-owned offer influencers apply to. Its commission
// amount, review bonus and date windows parameterize payout computation;
// the assignment lifecycle reads them but never writes them.
type Campaign struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BrandID              uuid.UUID       `gorm:"type:uuid;not null;index" json:"brand_id"`
	Brand                *Brand          `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Title                string          `gorm:"type:varchar(255);not null" json:"title"`
	Description          string          `gorm:"type:text" json:"description"`
	AmazonAttributionURL string          `gorm:"type:text;not null" json:"amazon_attribution_url"`
	CommissionAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"commission_amount"`
	ReviewBonus          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"review_bonus"`
	PurchaseWindowStart  time.Time       `gorm:"not null" json:"purchase_window_start"`
	PurchaseWindowEnd    time.Time       `gorm:"not null" json:"purchase_window_end"`
	PostWindowStart      time.Time       `gorm:"not null" json:"post_window_start"`
	PostWindowEnd        time.Time       `gorm:"not null" json:"post_window_end"`
	Status               string          `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	ASINAllowlist        string          `gorm:"type:text" json:"asin_allowlist,omitempty"` // comma separated ASINs, empty = any
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Application is an influencer's request to join a campaign. Accepting it
// spawns the Assignment that the lifecycle state machine operates on.
type Application struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	CampaignID   uuid.UUID   `gorm:"type:uuid;not null;index:idx_app_campaign_influencer,unique" json:"campaign_id"`
	Campaign     *Campaign   `gorm:"foreignKey:CampaignID" json:"campaign,omitempty"`
	InfluencerID uuid.UUID   `gorm:"type:uuid;not null;index:idx_app_campaign_influencer,unique" json:"influencer_id"`
	Influencer   *Influencer `gorm:"foreignKey:InfluencerID" json:"influencer,omitempty"`
	Status       string      `gorm:"type:varchar(20);not null;default:'applied';index" json:"status"`
	Answers      string      `gorm:"type:jsonb" json:"answers,omitempty"` // free-form questionnaire payload
	Notes        string      `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
