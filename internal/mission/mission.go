package mission

import (
	"time"

	"academiaQuestAPI/internal/gamification"
)

type Status string

const (
	StatusAvailable  Status = "available"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type Type string

const (
	TypeTask      Type = "task"
	TypeChallenge Type = "challenge" // challenge-like solo task, not a Challenge entity
	TypeTeam      Type = "team"
)

// Contribution is one team member's share of a team mission.
// At most one entry per user.
type Contribution struct {
	UserID   string `json:"user_id"`
	Progress int    `json:"progress"`
}

type Mission struct {
	ID            string                  `json:"id"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description,omitempty"`
	Type          Type                    `json:"type"`
	Difficulty    gamification.Difficulty `json:"difficulty"`
	Progress      int                     `json:"progress"` // 0-100
	RewardXP      int                     `json:"reward_xp"`
	Deadline      time.Time               `json:"deadline"`
	AssignedTo    string                  `json:"assigned_to,omitempty"` // empty when unclaimed or type=team
	Status        Status                  `json:"status"`
	TeamID        string                  `json:"team_id,omitempty"` // set iff type=team
	Contributions []Contribution          `json:"contributions,omitempty"`
}

// ContributionFor returns the index of the user's contribution entry,
// or -1 when the user has not contributed yet.
func (m *Mission) ContributionFor(userID string) int {
	for i, c := range m.Contributions {
		if c.UserID == userID {
			return i
		}
	}
	return -1
}

type UpdateProgressRequest struct {
	// Exactly one of the two forms is used: a relative delta or an
	// explicit absolute value. Both clamp to [0, 100].
	Delta *int `json:"delta,omitempty"`
	Value *int `json:"value,omitempty"`
}

type ContributeRequest struct {
	ProgressDelta int `json:"progress_delta"`
}
