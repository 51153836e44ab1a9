package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"academiaQuestAPI/internal/badge"
	"academiaQuestAPI/internal/clock"
	"academiaQuestAPI/internal/event"
	"academiaQuestAPI/internal/gamification"
	"academiaQuestAPI/internal/mission"
	"academiaQuestAPI/internal/persistence"
	"academiaQuestAPI/internal/user"
)

type UserService struct {
	state *StateStore
	clock clock.Clock
}

func NewUserService(state *StateStore, clk clock.Clock) *UserService {
	return &UserService{state: state, clock: clk}
}

// GetUserByClerkID resolves the authenticated identity to a domain
// user. Returns a copy so callers never touch live state.
func (s *UserService) GetUserByClerkID(clerkID string) (*user.User, error) {
	var found *user.User
	s.state.View(func(st *AppState) {
		if u := st.findUserByClerkID(clerkID); u != nil {
			copied := *u
			copied.Badges = append([]string(nil), u.Badges...)
			found = &copied
		}
	})
	if found == nil {
		return nil, fmt.Errorf("user with clerk id %s: %w", clerkID, ErrNotFound)
	}
	return found, nil
}

// CreateUser provisions a fresh account at level 0 with no badges.
// Idempotent on clerk id so webhook retries are harmless.
func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	var created *user.User

	err := s.state.Update(func(st *AppState) error {
		if existing := st.findUserByClerkID(req.ClerkID); existing != nil {
			copied := *existing
			created = &copied
			return nil
		}

		now := s.clock.Now()
		u := &user.User{
			ID:        uuid.New().String(),
			ClerkID:   req.ClerkID,
			Name:      req.Name,
			Avatar:    initials(req.Name),
			Email:     req.Email,
			Level:     0,
			XP:        0,
			Streak:    0,
			Badges:    []string{},
			JoinDate:  now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		st.Users = append(st.Users, u)

		copied := *u
		created = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.state.Commit(ctx, persistence.KindUsers)
	return created, nil
}

// DeleteUserByClerkID removes the account and its team membership.
// Historical XP events and notifications stay.
func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	err := s.state.Update(func(st *AppState) error {
		u := st.findUserByClerkID(clerkID)
		if u == nil {
			return fmt.Errorf("user with clerk id %s: %w", clerkID, ErrNotFound)
		}

		if u.TeamID != "" {
			if t := st.findTeam(u.TeamID); t != nil {
				for i, id := range t.MemberIDs {
					if id == u.ID {
						t.MemberIDs = append(t.MemberIDs[:i], t.MemberIDs[i+1:]...)
						break
					}
				}
			}
		}

		for i, candidate := range st.Users {
			if candidate.ID == u.ID {
				st.Users = append(st.Users[:i], st.Users[i+1:]...)
				break
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.state.Commit(ctx, persistence.KindUsers, persistence.KindTeams)
	return nil
}

// GetProfile returns the user plus derived level-progress numbers.
func (s *UserService) GetProfile(userID string) (*user.ProfileResponse, error) {
	var resp *user.ProfileResponse

	s.state.View(func(st *AppState) {
		u := st.findUser(userID)
		if u == nil {
			return
		}
		copied := *u
		copied.Badges = append([]string(nil), u.Badges...)
		resp = &user.ProfileResponse{
			User:           &copied,
			RankName:       gamification.RankForLevel(u.Level).Name,
			XPWithinLevel:  gamification.XPWithinLevel(u.XP, u.Level),
			XPForNextLevel: gamification.XPForNextLevel(u.Level),
		}
	})
	if resp == nil {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return resp, nil
}

// GetStats aggregates the user's progress counters for the stats page.
func (s *UserService) GetStats(userID string) (*user.StatsResponse, error) {
	var resp *user.StatsResponse

	s.state.View(func(st *AppState) {
		u := st.findUser(userID)
		if u == nil {
			return
		}

		completed := 0
		teamCompleted := 0
		for _, m := range st.Missions {
			if m.Status != mission.StatusCompleted {
				continue
			}
			if m.AssignedTo == u.ID {
				completed++
			}
			if m.Type == mission.TypeTeam && m.TeamID != "" {
				if t := st.findTeam(m.TeamID); t != nil && t.HasMember(u.ID) {
					teamCompleted++
				}
			}
		}

		resp = &user.StatsResponse{
			MissionsCompleted:     completed,
			TeamMissionsCompleted: teamCompleted,
			CurrentStreak:         u.Streak,
			Level:                 u.Level,
			TotalXP:               u.XP,
			BadgesCount:           len(u.Badges),
			Rank:                  rankByXP(st, u.ID),
		}
	})
	if resp == nil {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return resp, nil
}

// GetBadges returns the full catalog with the user's unlock status.
func (s *UserService) GetBadges(userID string) ([]badge.WithStatus, error) {
	var (
		owned []string
		found bool
	)
	s.state.View(func(st *AppState) {
		if u := st.findUser(userID); u != nil {
			owned = append([]string(nil), u.Badges...)
			found = true
		}
	})
	if !found {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	ownedSet := make(map[string]bool, len(owned))
	for _, id := range owned {
		ownedSet[id] = true
	}

	catalog := badge.Catalog()
	out := make([]badge.WithStatus, 0, len(catalog))
	for _, b := range catalog {
		out = append(out, badge.WithStatus{Badge: b, Unlocked: ownedSet[b.ID]})
	}
	return out, nil
}

// GetXPEvents returns the user's XP history, newest first.
func (s *UserService) GetXPEvents(userID string, limit int) []*event.XPEvent {
	out := []*event.XPEvent{}
	s.state.View(func(st *AppState) {
		for i := len(st.XPEvents) - 1; i >= 0; i-- {
			ev := st.XPEvents[i]
			if ev.UserID != userID {
				continue
			}
			copied := *ev
			out = append(out, &copied)
			if limit > 0 && len(out) >= limit {
				return
			}
		}
	})
	return out
}

// initials derives the avatar text from the display name, "?" when the
// name is empty.
func initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "?"
	}
	var b strings.Builder
	for i, f := range fields {
		if i == 2 {
			break
		}
		b.WriteString(strings.ToUpper(f[:1]))
	}
	return b.String()
}
