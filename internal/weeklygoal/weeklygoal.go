package weeklygoal

import "time"

// WeeklyGoal is the process-wide weekly mission counter. Any user's
// completion increments Current; the bonus pays out once per week.
type WeeklyGoal struct {
	Current   int       `json:"current"`
	Target    int       `json:"target"`
	XPBonus   int       `json:"xp_bonus"`
	WeekStart time.Time `json:"week_start"`
	WeekEnd   time.Time `json:"week_end"`
}

// NewForWeek builds a fresh goal for the week containing now.
// Weeks start on Sunday at midnight.
func NewForWeek(now time.Time, target, xpBonus int) *WeeklyGoal {
	start := now.AddDate(0, 0, -int(now.Weekday()))
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	return &WeeklyGoal{
		Current:   0,
		Target:    target,
		XPBonus:   xpBonus,
		WeekStart: start,
		WeekEnd:   start.AddDate(0, 0, 7),
	}
}

// Expired reports whether now falls outside the goal's week window.
func (g *WeeklyGoal) Expired(now time.Time) bool {
	return !now.Before(g.WeekEnd)
}
