package graph

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/dwitter-backend/internal/realtime"
	"github.com/yungbote/dwitter-backend/internal/realtime/bus"
)

func TestSocialGraphDisabledIsNoop(t *testing.T) {
	g := NewSocialGraph(nil, nil)
	if g.Enabled() {
		t.Fatalf("graph without client should be disabled")
	}

	ctx := context.Background()
	events := []realtime.SocialEvent{
		{Type: realtime.EventAccountCreated, ProfileID: uuid.New(), Username: "user1"},
		{Type: realtime.EventProfileFollowed, ProfileID: uuid.New(), TargetProfileID: uuid.New()},
		{Type: realtime.EventProfileUnfollowed, ProfileID: uuid.New(), TargetProfileID: uuid.New()},
		{Type: realtime.EventAccountDeleted, ProfileID: uuid.New()},
	}
	for _, evt := range events {
		if err := g.Apply(ctx, evt); err != nil {
			t.Fatalf("Apply(%s): %v", evt.Type, err)
		}
	}

	var nilGraph *SocialGraph
	if err := nilGraph.MergeFollow(ctx, uuid.New(), uuid.New()); err != nil {
		t.Fatalf("nil graph MergeFollow: %v", err)
	}
}

func TestStartProjectorSkipsDisabledGraph(t *testing.T) {
	b := bus.NewMemoryBus(nil)
	defer b.Close()
	if err := StartProjector(context.Background(), b, NewSocialGraph(nil, nil), nil); err != nil {
		t.Fatalf("StartProjector: %v", err)
	}
}
