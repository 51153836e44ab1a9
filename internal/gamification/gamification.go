// Package gamification holds the pure reward math: the level curve,
// the streak bonus and the static XP reward tables. Everything here is
// deterministic and free of I/O so it can be tuned and tested in isolation.
package gamification

import "math"

type Difficulty string

const (
	DifficultyBasic        Difficulty = "basic"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// StreakConfig is data, not logic: balance changes should only ever
// touch these numbers, never the formulas below.
type StreakConfig struct {
	BonusPerDay float64
	MaxBonus    float64
	Milestones  []int
}

var Streak = StreakConfig{
	BonusPerDay: 0.02, // +2% per consecutive day
	MaxBonus:    0.20, // capped at +20% (10 days)
	Milestones:  []int{7, 30, 60, 100},
}

type WeeklyGoalConfig struct {
	TargetMissions int
	BonusXP        int
}

var WeeklyGoal = WeeklyGoalConfig{
	TargetMissions: 15,
	BonusXP:        500,
}

// DifficultyMultiplier scales the base reward when authoring missions.
// The paid-out amount always comes from the mission's stored reward_xp,
// never from re-applying this table at grant time.
var DifficultyMultiplier = map[Difficulty]float64{
	DifficultyBasic:        1.0,
	DifficultyIntermediate: 1.5,
	DifficultyAdvanced:     2.0,
}

// MissionTypeMultiplier scales the reward by mission type. The team
// multiplier applies to each member's share; the engine grants the full
// reward per member without dividing it.
var MissionTypeMultiplier = map[string]float64{
	"task":      1.0,
	"challenge": 1.3,
	"team":      1.2,
}

const baseRewardXP = 100

// BaseXPForDifficulty returns the formulaic default reward for newly
// authored content. Stored reward_xp can override it.
func BaseXPForDifficulty(d Difficulty) int {
	mult, ok := DifficultyMultiplier[d]
	if !ok {
		mult = 1.0
	}
	return int(math.Floor(baseRewardXP * mult))
}

// LevelForXP maps total accumulated XP to a level.
// level = floor(sqrt(xp / 1000) * 2). Monotonic non-decreasing.
func LevelForXP(xp int) int {
	if xp <= 0 {
		return 0
	}
	return int(math.Floor(math.Sqrt(float64(xp)/1000.0) * 2))
}

// XPForLevel is the inverse of LevelForXP up to floor rounding:
// xp = floor((level/2)^2 * 1000). LevelForXP(XPForLevel(l)) == l holds
// for every l >= 0; fractional intermediates skew down by design.
func XPForLevel(level int) int {
	if level <= 0 {
		return 0
	}
	half := float64(level) / 2.0
	return int(math.Floor(half * half * 1000.0))
}

// XPForNextLevel returns the total XP needed to reach the next level.
func XPForNextLevel(level int) int {
	return XPForLevel(level + 1)
}

// XPWithinLevel returns progress inside the current level. Non-negative
// as long as level was derived from totalXP.
func XPWithinLevel(totalXP, level int) int {
	return totalXP - XPForLevel(level)
}

// StreakBonusFraction returns the XP bonus fraction for a streak,
// min(streak * BonusPerDay, MaxBonus).
func StreakBonusFraction(streak int) float64 {
	if streak <= 0 {
		return 0
	}
	bonus := float64(streak) * Streak.BonusPerDay
	if bonus > Streak.MaxBonus {
		bonus = Streak.MaxBonus
	}
	return bonus
}

// ApplyStreakBonus is the single place the streak affects a reward.
// It is applied once per grant and never compounded.
func ApplyStreakBonus(baseXP, streak int) int {
	if baseXP <= 0 {
		return 0
	}
	return int(math.Floor(float64(baseXP) * (1 + StreakBonusFraction(streak))))
}

// Rank is a display tier derived from level.
type Rank struct {
	Name     string `json:"name"`
	MinLevel int    `json:"min_level"`
}

var Ranks = []Rank{
	{Name: "Explorer", MinLevel: 1},
	{Name: "Active Learner", MinLevel: 5},
	{Name: "Challenger", MinLevel: 10},
	{Name: "Knowledge Master", MinLevel: 20},
}

// RankForLevel returns the highest rank whose MinLevel the user meets.
func RankForLevel(level int) Rank {
	current := Ranks[0]
	for _, r := range Ranks {
		if level >= r.MinLevel {
			current = r
		}
	}
	return current
}
