package social

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/dwitter-backend/internal/domain/account"
)

// Profile is the one-to-one companion of an Account.
type Profile struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null;column:account_id" json:"account_id"`
	Account   *account.Account `gorm:"constraint:OnDelete:CASCADE;foreignKey:AccountID;references:ID" json:"account,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string { return "profile" }

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// DisplayName is read from the owning account every time; nothing is cached on the profile.
func (p *Profile) DisplayName() string {
	if p == nil || p.Account == nil {
		return ""
	}
	return p.Account.Username
}

func (p *Profile) String() string { return p.DisplayName() }
