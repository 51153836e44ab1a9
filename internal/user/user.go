package user

import "time"

type User struct {
	ID        string    `json:"id"`
	ClerkID   string    `json:"clerk_id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"` // initials shown in the UI
	Email     string    `json:"email,omitempty"`
	Level     int       `json:"level"` // cached, always LevelForXP(XP)
	XP        int       `json:"xp"`
	Streak    int       `json:"streak"`
	TeamID    string    `json:"team_id,omitempty"` // weak reference, may be empty
	Badges    []string  `json:"badges"`
	JoinDate  time.Time `json:"join_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateUserRequest struct {
	ClerkID string `json:"clerk_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// ProfileResponse is the dashboard payload: the user plus the derived
// level-progress numbers the client would otherwise recompute.
type ProfileResponse struct {
	User           *User  `json:"user"`
	RankName       string `json:"rank_name"`
	XPWithinLevel  int    `json:"xp_within_level"`
	XPForNextLevel int    `json:"xp_for_next_level"`
}

type StatsResponse struct {
	MissionsCompleted     int `json:"missions_completed"`
	TeamMissionsCompleted int `json:"team_missions_completed"`
	CurrentStreak         int `json:"current_streak"`
	Level                 int `json:"level"`
	TotalXP               int `json:"total_xp"`
	BadgesCount           int `json:"badges_count"`
	Rank                  int `json:"rank"`
}
