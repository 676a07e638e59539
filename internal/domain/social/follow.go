package social

import (
	"time"

	"github.com/google/uuid"
)

// Follow is one directed edge of the follows relation: ProfileID follows FollowedID.
// There is no reciprocal edge.
type Follow struct {
	ProfileID uuid.UUID `gorm:"type:uuid;primaryKey;column:profile_id;check:chk_profile_follow_not_self,profile_id <> followed_id" json:"profile_id"`
	Profile   *Profile  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProfileID;references:ID" json:"profile,omitempty"`

	FollowedID uuid.UUID `gorm:"type:uuid;primaryKey;column:followed_id" json:"followed_id"`
	Followed   *Profile  `gorm:"constraint:OnDelete:CASCADE;foreignKey:FollowedID;references:ID" json:"followed,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Follow) TableName() string { return "profile_follow" }

// FollowStats counts both directions of a profile's edges.
type FollowStats struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Followers int64     `json:"followers"`
	Following int64     `json:"following"`
}
