package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/dwitter-backend/internal/domain"
	"github.com/yungbote/dwitter-backend/internal/pkg/logger"
	"github.com/yungbote/dwitter-backend/internal/realtime"
	"github.com/yungbote/dwitter-backend/internal/realtime/bus"
)

// SocialNotifier announces committed account and follow mutations.
type SocialNotifier interface {
	AccountCreated(ctx context.Context, account *types.Account, profile *types.Profile)
	AccountRenamed(ctx context.Context, account *types.Account, profileID uuid.UUID)
	AccountDeleted(ctx context.Context, accountID, profileID uuid.UUID)
	Followed(ctx context.Context, profileID, targetID uuid.UUID)
	Unfollowed(ctx context.Context, profileID, targetID uuid.UUID)
}

type socialNotifier struct {
	bus bus.Bus
	log *logger.Logger
}

// NewSocialNotifier publishes to b. A nil bus yields a notifier that drops everything.
func NewSocialNotifier(b bus.Bus, log *logger.Logger) SocialNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &socialNotifier{bus: b, log: log.With("service", "SocialNotifier")}
}

func (n *socialNotifier) AccountCreated(ctx context.Context, account *types.Account, profile *types.Profile) {
	if account == nil || profile == nil {
		return
	}
	n.publish(ctx, realtime.SocialEvent{
		Type:      realtime.EventAccountCreated,
		AccountID: account.ID,
		ProfileID: profile.ID,
		Username:  account.Username,
	})
}

func (n *socialNotifier) AccountRenamed(ctx context.Context, account *types.Account, profileID uuid.UUID) {
	if account == nil {
		return
	}
	n.publish(ctx, realtime.SocialEvent{
		Type:      realtime.EventAccountRenamed,
		AccountID: account.ID,
		ProfileID: profileID,
		Username:  account.Username,
	})
}

func (n *socialNotifier) AccountDeleted(ctx context.Context, accountID, profileID uuid.UUID) {
	n.publish(ctx, realtime.SocialEvent{
		Type:      realtime.EventAccountDeleted,
		AccountID: accountID,
		ProfileID: profileID,
	})
}

func (n *socialNotifier) Followed(ctx context.Context, profileID, targetID uuid.UUID) {
	n.publish(ctx, realtime.SocialEvent{
		Type:            realtime.EventProfileFollowed,
		ProfileID:       profileID,
		TargetProfileID: targetID,
	})
}

func (n *socialNotifier) Unfollowed(ctx context.Context, profileID, targetID uuid.UUID) {
	n.publish(ctx, realtime.SocialEvent{
		Type:            realtime.EventProfileUnfollowed,
		ProfileID:       profileID,
		TargetProfileID: targetID,
	})
}

func (n *socialNotifier) publish(ctx context.Context, evt realtime.SocialEvent) {
	if n == nil || n.bus == nil {
		return
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	if err := n.bus.Publish(ctx, evt); err != nil {
		n.log.Warn("social event publish failed", "event", string(evt.Type), "error", err)
	}
}
