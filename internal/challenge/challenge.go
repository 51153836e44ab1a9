package challenge

import (
	"time"

	"academiaQuestAPI/internal/gamification"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusExpired    Status = "expired"
)

// Attempt records one participant's completion try.
type Attempt struct {
	UserID    string    `json:"user_id"`
	Completed bool      `json:"completed"`
	Timestamp time.Time `json:"timestamp"`
}

type Challenge struct {
	ID            string                  `json:"id"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description"`
	Difficulty    gamification.Difficulty `json:"difficulty"`
	RewardXP      int                     `json:"reward_xp"`
	DurationHours int                     `json:"duration_hours"`
	Participants  []string                `json:"participants"`
	Status        Status                  `json:"status"`
	StartTime     *time.Time              `json:"start_time,omitempty"` // set on first accept
	EndTime       *time.Time              `json:"end_time,omitempty"`
	Attempts      []Attempt               `json:"attempts,omitempty"`
}

// HasParticipant reports whether the user already accepted the challenge.
func (c *Challenge) HasParticipant(userID string) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}
