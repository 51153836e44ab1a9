package leaderboard

type Entry struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Level    int    `json:"level"`
	XP       int    `json:"xp"`
	Streak   int    `json:"streak"`
	TeamID   string `json:"team_id,omitempty"`
	Rank     int    `json:"rank"`
	RankName string `json:"rank_name"`
}

type TeamEntry struct {
	TeamID      string `json:"team_id"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
	XPTotal     int    `json:"xp_total"`
	Rank        int    `json:"rank"`
}

type Leaderboard struct {
	Entries      []*Entry     `json:"entries"`
	Teams        []*TeamEntry `json:"teams"`
	UserPosition *Entry       `json:"user_position"`
	TotalUsers   int          `json:"total_users"`
}
