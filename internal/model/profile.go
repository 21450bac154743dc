package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileStatus enum constants
const (
	ProfilePending   = "pending"
	ProfileApproved  = "approved"
	ProfileSuspended = "suspended"
)

// Brand is the advertiser profile owning campaigns
type Brand struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"-"`
	CompanyName string    `gorm:"type:varchar(255);not null" json:"company_name"`
	Website     string    `gorm:"type:varchar(255)" json:"website,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	LogoURL     string    `gorm:"type:text" json:"logo_url,omitempty"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Influencer is the creator profile applying to campaigns
type Influencer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Bio       string    `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL string    `gorm:"type:text" json:"avatar_url,omitempty"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Influencer) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// PaymentDetails stores the bank/paypal destination for influencer payouts.
// Settlement refuses to mark a payout paid while this is missing.
type PaymentDetails struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	InfluencerID      uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex" json:"influencer_id"`
	Influencer        *Influencer `gorm:"foreignKey:InfluencerID" json:"-"`
	AccountHolderName string      `gorm:"type:varchar(255)" json:"account_holder_name"`
	AccountNumber     string      `gorm:"type:varchar(64)" json:"account_number"`
	RoutingNumber     string      `gorm:"type:varchar(64)" json:"routing_number"`
	BankName          string      `gorm:"type:varchar(255)" json:"bank_name"`
	SwiftCode         string      `gorm:"type:varchar(20)" json:"swift_code,omitempty"`
	IBAN              string      `gorm:"type:varchar(40)" json:"iban,omitempty"`
	PaypalEmail       string      `gorm:"type:varchar(255)" json:"paypal_email,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

func (p *PaymentDetails) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
