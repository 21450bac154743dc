package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignmentStatus enum constants. Status only moves forward along the
// transition graph; the sole regressions are explicit review rejections.
const (
	AssignmentPurchaseRequired = "purchase_required"
	AssignmentPurchaseReview   = "purchase_review"
	AssignmentPurchaseApproved = "purchase_approved"
	AssignmentPosting          = "posting"
	AssignmentPostReview       = "post_review"
	AssignmentCompleted        = "completed"
)

// ReviewStatus sub-state constants, only meaningful once status = completed
const (
	ReviewStatusNone     = "none"
	ReviewStatusReview   = "review"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// Assignment pairs one influencer with one campaign and tracks the
// completion lifecycle. Every transition is a compare-and-swap on Status
// (or ReviewStatus) inside a transaction, so racing reviewers lose cleanly.
type Assignment struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	CampaignID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"campaign_id"`
	Campaign      *Campaign   `gorm:"foreignKey:CampaignID" json:"campaign,omitempty"`
	InfluencerID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"influencer_id"`
	Influencer    *Influencer `gorm:"foreignKey:InfluencerID" json:"influencer,omitempty"`
	ApplicationID uuid.UUID   `gorm:"type:uuid;not null" json:"application_id"`
	Status        string      `gorm:"type:varchar(30);not null;default:'purchase_required';index" json:"status"`
	ReviewStatus  string      `gorm:"type:varchar(20);not null;default:'none'" json:"review_status"`
	// AmazonAttributionURL overrides the campaign URL when set
	AmazonAttributionURL string    `gorm:"type:text" json:"amazon_attribution_url,omitempty"`
	RedirectToken        string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"redirect_token"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.RedirectToken == "" {
		a.RedirectToken = NewRedirectToken()
	}
	return nil
}

// NewRedirectToken returns the short opaque token embedded in attribution links
func NewRedirectToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}

// ClickLog records one hit on an assignment's attribution redirect
type ClickLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"assignment_id"`
	IPHash       string    `gorm:"type:varchar(64);not null" json:"ip_hash"`
	UserAgent    string    `gorm:"type:text" json:"user_agent,omitempty"`
	ClickedAt    time.Time `gorm:"autoCreateTime;index" json:"clicked_at"`
}

func (c *ClickLog) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
