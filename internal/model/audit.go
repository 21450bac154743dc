package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateCampaign      = "CREATE_CAMPAIGN"
	ActionPublishCampaign     = "PUBLISH_CAMPAIGN"
	ActionApplyToCampaign     = "APPLY_TO_CAMPAIGN"
	ActionUpdateApplication   = "UPDATE_APPLICATION"
	ActionCreateAssignment    = "CREATE_ASSIGNMENT"
	ActionSubmitPurchaseProof = "SUBMIT_PURCHASE_PROOF"
	ActionReviewPurchaseProof = "REVIEW_PURCHASE_PROOF"
	ActionSubmitPost          = "SUBMIT_POST"
	ActionReviewPost          = "REVIEW_POST"
	ActionSubmitProductReview = "SUBMIT_PRODUCT_REVIEW"
	ActionReviewProductReview = "REVIEW_PRODUCT_REVIEW"
	ActionCreatePayout        = "CREATE_PAYOUT"
	ActionSettlePayout        = "SETTLE_PAYOUT"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated bot
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
