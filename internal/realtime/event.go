package realtime

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventAccountCreated    EventType = "account.created"
	EventAccountRenamed    EventType = "account.renamed"
	EventAccountDeleted    EventType = "account.deleted"
	EventProfileFollowed   EventType = "profile.followed"
	EventProfileUnfollowed EventType = "profile.unfollowed"
)

// SocialEvent is published after a committed account or follow mutation.
type SocialEvent struct {
	Type            EventType `json:"type"`
	AccountID       uuid.UUID `json:"account_id,omitempty"`
	ProfileID       uuid.UUID `json:"profile_id,omitempty"`
	TargetProfileID uuid.UUID `json:"target_profile_id,omitempty"`
	Username        string    `json:"username,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}
