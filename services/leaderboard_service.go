package services

import (
	"sort"

	"academiaQuestAPI/internal/gamification"
	"academiaQuestAPI/internal/leaderboard"
)

type LeaderboardService struct {
	state *StateStore
}

func NewLeaderboardService(state *StateStore) *LeaderboardService {
	return &LeaderboardService{state: state}
}

// GetLeaderboards ranks users by XP and teams by pooled XP, both
// descending with id as the deterministic tie-break. The requesting
// user's own entry is surfaced separately so the client can pin it.
func (s *LeaderboardService) GetLeaderboards(forUserID string) *leaderboard.Leaderboard {
	board := &leaderboard.Leaderboard{
		Entries: []*leaderboard.Entry{},
		Teams:   []*leaderboard.TeamEntry{},
	}

	s.state.View(func(st *AppState) {
		for _, u := range st.Users {
			board.Entries = append(board.Entries, &leaderboard.Entry{
				UserID:   u.ID,
				Name:     u.Name,
				Avatar:   u.Avatar,
				Level:    u.Level,
				XP:       u.XP,
				Streak:   u.Streak,
				TeamID:   u.TeamID,
				RankName: gamification.RankForLevel(u.Level).Name,
			})
		}
		sort.Slice(board.Entries, func(i, j int) bool {
			a, b := board.Entries[i], board.Entries[j]
			if a.XP != b.XP {
				return a.XP > b.XP
			}
			return a.UserID < b.UserID
		})
		for i, e := range board.Entries {
			e.Rank = i + 1
			if e.UserID == forUserID {
				board.UserPosition = e
			}
		}
		board.TotalUsers = len(board.Entries)

		for _, t := range st.Teams {
			board.Teams = append(board.Teams, &leaderboard.TeamEntry{
				TeamID:      t.ID,
				Name:        t.Name,
				MemberCount: len(t.MemberIDs),
				XPTotal:     t.XPTotal,
			})
		}
		sort.Slice(board.Teams, func(i, j int) bool {
			a, b := board.Teams[i], board.Teams[j]
			if a.XPTotal != b.XPTotal {
				return a.XPTotal > b.XPTotal
			}
			return a.TeamID < b.TeamID
		})
		for i, e := range board.Teams {
			e.Rank = i + 1
		}
	})
	return board
}
