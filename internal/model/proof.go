package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProofStatus enum constants shared by purchase proofs, post submissions
// and product reviews
const (
	ProofPending  = "pending"
	ProofApproved = "approved"
	ProofRejected = "rejected"
)

// SocialPlatform enum constants
const (
	PlatformInstagram = "instagram"
	PlatformTikTok    = "tiktok"
	PlatformYouTube   = "youtube"
	PlatformTwitter   = "twitter"
)

// PostType enum constants
const (
	PostTypePost  = "post"
	PostTypeStory = "story"
	PostTypeReel  = "reel"
	PostTypeVideo = "video"
)

// PurchaseProof is the influencer's purchase receipt for an assignment.
// Rejected rows are kept as history; at most one row per assignment is
// pending or approved at a time. Approved proofs are immutable and their
// Total becomes the reimbursement amount at completion.
type PurchaseProof struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"assignment_id"`
	Assignment     *Assignment      `gorm:"foreignKey:AssignmentID" json:"-"`
	OrderID        string           `gorm:"type:varchar(64);not null" json:"order_id"`
	OrderDate      time.Time        `gorm:"not null" json:"order_date"`
	ASIN           string           `gorm:"type:varchar(20)" json:"asin,omitempty"`
	Total          *decimal.Decimal `gorm:"type:decimal(18,4)" json:"total,omitempty"`
	ScreenshotURLs string           `gorm:"type:text;not null" json:"screenshot_urls"` // newline separated, opaque to the core
	Status         string           `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewNotes    string           `gorm:"type:text" json:"review_notes,omitempty"`
	ReviewedBy     *uuid.UUID       `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (p *PurchaseProof) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PostSubmission is the influencer's published content for an assignment
type PostSubmission struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"assignment_id"`
	Assignment    *Assignment `gorm:"foreignKey:AssignmentID" json:"-"`
	CampaignID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"campaign_id"`
	InfluencerID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"influencer_id"`
	Platform      string      `gorm:"type:varchar(20);not null" json:"platform"`
	PostType      string      `gorm:"type:varchar(20);not null" json:"post_type"`
	PostURL       string      `gorm:"type:text;not null" json:"post_url"`
	ScreenshotURL string      `gorm:"type:text" json:"screenshot_url,omitempty"`
	Caption       string      `gorm:"type:text" json:"caption,omitempty"`
	Status        string      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewNotes   string      `gorm:"type:text" json:"review_notes,omitempty"`
	ReviewedBy    *uuid.UUID  `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time  `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (p *PostSubmission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProductReview is the optional bonus deliverable unlocked after the main
// lifecycle completes. Approving it pays the campaign's review bonus.
type ProductReview struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"assignment_id"`
	Assignment    *Assignment `gorm:"foreignKey:AssignmentID" json:"-"`
	CampaignID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"campaign_id"`
	InfluencerID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"influencer_id"`
	ReviewText    string      `gorm:"type:text;not null" json:"review_text"`
	Rating        int         `gorm:"not null" json:"rating"` // 1..5
	ScreenshotURL string      `gorm:"type:text;not null" json:"screenshot_url"`
	Platform      string      `gorm:"type:varchar(20)" json:"platform,omitempty"`
	Status        string      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewNotes   string      `gorm:"type:text" json:"review_notes,omitempty"`
	ReviewedBy    *uuid.UUID  `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time  `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (r *ProductReview) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
