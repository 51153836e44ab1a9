// Package persistence is the engine's save/load boundary. The domain
// state lives in memory; a Store only has to persist opaque snapshots
// per entity kind, so any key-value or document backend fits.
package persistence

import "context"

// Entity kinds used as storage keys.
const (
	KindUsers         = "users"
	KindTeams         = "teams"
	KindMissions      = "missions"
	KindChallenges    = "challenges"
	KindXPEvents      = "xp_events"
	KindNotifications = "notifications"
	KindWeeklyGoal    = "weekly_goal"
)

// Store persists one JSON snapshot per entity kind. Load returns
// (nil, nil) when the kind has never been saved.
type Store interface {
	Load(ctx context.Context, kind string) ([]byte, error)
	Save(ctx context.Context, kind string, payload []byte) error
}
