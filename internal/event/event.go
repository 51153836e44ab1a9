package event

import "time"

// Type tags the fixed set of XP-granting actions.
type Type string

const (
	TypeMissionComplete     Type = "mission_complete"
	TypeChallengeComplete   Type = "challenge_complete"
	TypeStreakBonus         Type = "streak_bonus"
	TypeTeamMissionComplete Type = "team_mission_complete"
	TypeWeeklyGoal          Type = "weekly_goal"
)

// XPEvent is an append-only log record. Amount is the final awarded
// value after the streak bonus, never the base reward.
type XPEvent struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	UserID      string    `json:"user_id"`
	Amount      int       `json:"amount"`
	Timestamp   time.Time `json:"timestamp"`
	SourceID    string    `json:"source_id,omitempty"` // mission/challenge that produced it
	Description string    `json:"description,omitempty"`
}
