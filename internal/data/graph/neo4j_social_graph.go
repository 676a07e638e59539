package graph

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/dwitter-backend/internal/pkg/logger"
	"github.com/yungbote/dwitter-backend/internal/platform/neo4jdb"
	"github.com/yungbote/dwitter-backend/internal/realtime"
)

// SocialGraph mirrors profiles and follow edges into Neo4j as
// (:Profile {id})-[:FOLLOWS]->(:Profile {id}). A nil client turns every call into a no-op.
type SocialGraph struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewSocialGraph(client *neo4jdb.Client, log *logger.Logger) *SocialGraph {
	if log == nil {
		log = logger.Nop()
	}
	return &SocialGraph{client: client, log: log.With("graph", "SocialGraph")}
}

func (g *SocialGraph) Enabled() bool {
	return g != nil && g.client != nil && g.client.Driver != nil
}

// Apply projects one social event onto the graph.
func (g *SocialGraph) Apply(ctx context.Context, evt realtime.SocialEvent) error {
	if !g.Enabled() {
		return nil
	}
	switch evt.Type {
	case realtime.EventAccountCreated, realtime.EventAccountRenamed:
		return g.UpsertProfile(ctx, evt.ProfileID, evt.Username)
	case realtime.EventAccountDeleted:
		return g.DeleteProfile(ctx, evt.ProfileID)
	case realtime.EventProfileFollowed:
		return g.MergeFollow(ctx, evt.ProfileID, evt.TargetProfileID)
	case realtime.EventProfileUnfollowed:
		return g.DeleteFollow(ctx, evt.ProfileID, evt.TargetProfileID)
	default:
		return nil
	}
}

func (g *SocialGraph) UpsertProfile(ctx context.Context, profileID uuid.UUID, username string) error {
	if !g.Enabled() || profileID == uuid.Nil {
		return nil
	}
	return g.write(ctx, `
MERGE (p:Profile {id: $profile_id})
SET p.username = $username,
    p.synced_at = $synced_at
`, map[string]any{
		"profile_id": profileID.String(),
		"username":   username,
		"synced_at":  time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (g *SocialGraph) DeleteProfile(ctx context.Context, profileID uuid.UUID) error {
	if !g.Enabled() || profileID == uuid.Nil {
		return nil
	}
	return g.write(ctx, `
MATCH (p:Profile {id: $profile_id})
DETACH DELETE p
`, map[string]any{"profile_id": profileID.String()})
}

func (g *SocialGraph) MergeFollow(ctx context.Context, profileID, followedID uuid.UUID) error {
	if !g.Enabled() || profileID == uuid.Nil || followedID == uuid.Nil || profileID == followedID {
		return nil
	}
	return g.write(ctx, `
MERGE (a:Profile {id: $profile_id})
MERGE (b:Profile {id: $followed_id})
MERGE (a)-[f:FOLLOWS]->(b)
ON CREATE SET f.created_at = $synced_at
SET f.synced_at = $synced_at
`, map[string]any{
		"profile_id":  profileID.String(),
		"followed_id": followedID.String(),
		"synced_at":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (g *SocialGraph) DeleteFollow(ctx context.Context, profileID, followedID uuid.UUID) error {
	if !g.Enabled() || profileID == uuid.Nil || followedID == uuid.Nil {
		return nil
	}
	return g.write(ctx, `
MATCH (:Profile {id: $profile_id})-[f:FOLLOWS]->(:Profile {id: $followed_id})
DELETE f
`, map[string]any{
		"profile_id":  profileID.String(),
		"followed_id": followedID.String(),
	})
}

func (g *SocialGraph) write(ctx context.Context, cypher string, params map[string]any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	session := g.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: g.client.Database,
	})
	defer session.Close(ctx)

	g.ensureSchema(ctx, session)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

// Best-effort schema init.
func (g *SocialGraph) ensureSchema(ctx context.Context, session neo4j.SessionWithContext) {
	res, err := session.Run(ctx, `CREATE CONSTRAINT profile_id_unique IF NOT EXISTS FOR (p:Profile) REQUIRE p.id IS UNIQUE`, nil)
	if err != nil {
		g.log.Warn("neo4j schema init failed (continuing)", "error", err)
		return
	}
	_, _ = res.Consume(ctx)
}
