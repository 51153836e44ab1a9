package services

import (
	"fmt"
	"sort"

	"academiaQuestAPI/internal/team"
)

type TeamService struct {
	state *StateStore
}

func NewTeamService(state *StateStore) *TeamService {
	return &TeamService{state: state}
}

// ListTeams returns all teams with their current positions, sorted by
// pooled XP.
func (s *TeamService) ListTeams() []*team.Team {
	out := []*team.Team{}
	s.state.View(func(st *AppState) {
		for _, t := range st.Teams {
			copied := *t
			copied.MemberIDs = append([]string(nil), t.MemberIDs...)
			out = append(out, &copied)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].XPTotal != out[j].XPTotal {
			return out[i].XPTotal > out[j].XPTotal
		}
		return out[i].ID < out[j].ID
	})
	for i, t := range out {
		t.Position = i + 1
	}
	return out
}

// GetTeam returns one team with its position among all teams.
func (s *TeamService) GetTeam(teamID string) (*team.Team, error) {
	for _, t := range s.ListTeams() {
		if t.ID == teamID {
			return t, nil
		}
	}
	return nil, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
}
