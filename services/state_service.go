package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"academiaQuestAPI/internal/challenge"
	"academiaQuestAPI/internal/event"
	"academiaQuestAPI/internal/mission"
	"academiaQuestAPI/internal/notification"
	"academiaQuestAPI/internal/persistence"
	"academiaQuestAPI/internal/team"
	"academiaQuestAPI/internal/user"
	"academiaQuestAPI/internal/weeklygoal"
)

// AppState is the whole in-memory domain: every entity collection plus
// the append-only XP event and notification logs. The engine is the
// only writer; everything else reads through StateStore.View.
type AppState struct {
	Users         []*user.User
	Teams         []*team.Team
	Missions      []*mission.Mission
	Challenges    []*challenge.Challenge
	XPEvents      []*event.XPEvent
	Notifications []*notification.Notification
	WeeklyGoal    *weeklygoal.WeeklyGoal
}

func (s *AppState) findUser(id string) *user.User {
	for _, u := range s.Users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *AppState) findUserByClerkID(clerkID string) *user.User {
	for _, u := range s.Users {
		if u.ClerkID == clerkID {
			return u
		}
	}
	return nil
}

func (s *AppState) findTeam(id string) *team.Team {
	for _, t := range s.Teams {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *AppState) findMission(id string) *mission.Mission {
	for _, m := range s.Missions {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (s *AppState) findChallenge(id string) *challenge.Challenge {
	for _, c := range s.Challenges {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// StateStore owns AppState behind one RWMutex and glues it to the
// persistence boundary. Mutations run serialized through Update; every
// engine operation ends with an explicit Commit of the kinds it touched
// rather than observing changes.
type StateStore struct {
	mu    sync.RWMutex
	state *AppState
	store persistence.Store
}

func NewStateStore(store persistence.Store) *StateStore {
	return &StateStore{
		state: &AppState{},
		store: store,
	}
}

// View runs fn with shared read access to the state.
func (st *StateStore) View(fn func(*AppState)) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	fn(st.state)
}

// Update runs fn with exclusive access. fn must validate its
// preconditions before mutating anything so a returned error always
// means "no state change".
func (st *StateStore) Update(fn func(*AppState) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return fn(st.state)
}

// Commit persists the given entity kinds. Persistence is best effort:
// a failed save is logged and the in-memory state stays authoritative.
func (st *StateStore) Commit(ctx context.Context, kinds ...string) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	for _, kind := range kinds {
		payload, err := st.marshalKind(kind)
		if err != nil {
			log.Printf("Commit: failed to marshal %s: %v", kind, err)
			continue
		}
		if err := st.store.Save(ctx, kind, payload); err != nil {
			log.Printf("Commit: failed to save %s: %v", kind, err)
		}
	}
}

// CommitAll persists every entity kind.
func (st *StateStore) CommitAll(ctx context.Context) {
	st.Commit(ctx,
		persistence.KindUsers,
		persistence.KindTeams,
		persistence.KindMissions,
		persistence.KindChallenges,
		persistence.KindXPEvents,
		persistence.KindNotifications,
		persistence.KindWeeklyGoal,
	)
}

// LoadAll hydrates the state from the store. A store that has never
// been written leaves the state empty; the caller decides whether to
// seed.
func (st *StateStore) LoadAll(ctx context.Context) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	loaders := []struct {
		kind string
		into any
	}{
		{persistence.KindUsers, &st.state.Users},
		{persistence.KindTeams, &st.state.Teams},
		{persistence.KindMissions, &st.state.Missions},
		{persistence.KindChallenges, &st.state.Challenges},
		{persistence.KindXPEvents, &st.state.XPEvents},
		{persistence.KindNotifications, &st.state.Notifications},
		{persistence.KindWeeklyGoal, &st.state.WeeklyGoal},
	}

	for _, l := range loaders {
		payload, err := st.store.Load(ctx, l.kind)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", l.kind, err)
		}
		if payload == nil {
			continue
		}
		if err := json.Unmarshal(payload, l.into); err != nil {
			return fmt.Errorf("failed to decode %s: %w", l.kind, err)
		}
	}

	return nil
}

// Empty reports whether the store has never held any users, i.e. a
// first boot that should be seeded.
func (st *StateStore) Empty() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.state.Users) == 0
}

func (st *StateStore) marshalKind(kind string) ([]byte, error) {
	switch kind {
	case persistence.KindUsers:
		return json.Marshal(st.state.Users)
	case persistence.KindTeams:
		return json.Marshal(st.state.Teams)
	case persistence.KindMissions:
		return json.Marshal(st.state.Missions)
	case persistence.KindChallenges:
		return json.Marshal(st.state.Challenges)
	case persistence.KindXPEvents:
		return json.Marshal(st.state.XPEvents)
	case persistence.KindNotifications:
		return json.Marshal(st.state.Notifications)
	case persistence.KindWeeklyGoal:
		return json.Marshal(st.state.WeeklyGoal)
	}
	return nil, fmt.Errorf("unknown entity kind %q", kind)
}
