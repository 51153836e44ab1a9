package badge

// Metric names a user statistic a badge condition is checked against.
type Metric string

const (
	MetricMissionsCompleted Metric = "missions_completed"
	MetricStreak            Metric = "streak"
	MetricLevel             Metric = "level"
	MetricRanking           Metric = "ranking"
	MetricTeamMissions      Metric = "team_missions"
)

// Condition is a declarative unlock rule: the metric reaches the
// threshold. For ranking the comparison is inverted (position 1 beats
// position 10), so a ranking badge unlocks at position <= threshold.
type Condition struct {
	Metric    Metric `json:"metric"`
	Threshold int    `json:"threshold"`
}

type Badge struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	Condition   Condition `json:"condition"`
}

// WithStatus decorates a catalog badge with a user's unlock state.
type WithStatus struct {
	Badge
	Unlocked bool `json:"unlocked"`
}

// Stats is the derived snapshot badges are evaluated against.
// Ranking is 1-based; 0 means the position is unavailable and ranking
// badges are skipped for this evaluation.
type Stats struct {
	MissionsCompleted int
	Streak            int
	Level             int
	Ranking           int
	TeamMissions      int
}

// Catalog returns the fixed badge set in evaluation order. The order is
// the deterministic tie-break when several badges unlock at once.
func Catalog() []Badge {
	return []Badge{
		{ID: "b1", Title: "First Mission", Icon: "star", Description: "Complete your first mission", Condition: Condition{Metric: MetricMissionsCompleted, Threshold: 1}},
		{ID: "b2", Title: "7-Day Streak", Icon: "fire", Description: "Keep a streak going for 7 consecutive days", Condition: Condition{Metric: MetricStreak, Threshold: 7}},
		{ID: "b3", Title: "10 Missions Completed", Icon: "target", Description: "Complete 10 missions", Condition: Condition{Metric: MetricMissionsCompleted, Threshold: 10}},
		{ID: "b4", Title: "30-Day Streak", Icon: "zap", Description: "Keep a streak going for 30 consecutive days", Condition: Condition{Metric: MetricStreak, Threshold: 30}},
		{ID: "b5", Title: "50 Missions", Icon: "trophy", Description: "Complete 50 missions", Condition: Condition{Metric: MetricMissionsCompleted, Threshold: 50}},
		{ID: "b6", Title: "Collaborator", Icon: "users", Description: "Complete 5 team missions", Condition: Condition{Metric: MetricTeamMissions, Threshold: 5}},
		{ID: "b7", Title: "Top 10", Icon: "medal", Description: "Reach the top 10 of the ranking", Condition: Condition{Metric: MetricRanking, Threshold: 10}},
		{ID: "b8", Title: "Number One", Icon: "crown", Description: "Reach #1 in the ranking", Condition: Condition{Metric: MetricRanking, Threshold: 1}},
	}
}

// Evaluate returns the ids of badges that newly unlock for the given
// stats, in catalog order. Already-owned badges are skipped, so calling
// it again with unchanged stats yields nothing.
func Evaluate(owned []string, stats Stats) []string {
	ownedSet := make(map[string]bool, len(owned))
	for _, id := range owned {
		ownedSet[id] = true
	}

	var unlocked []string
	for _, b := range Catalog() {
		if ownedSet[b.ID] {
			continue
		}
		if met(b.Condition, stats) {
			unlocked = append(unlocked, b.ID)
		}
	}
	return unlocked
}

// ByID looks a badge up in the catalog.
func ByID(id string) (Badge, bool) {
	for _, b := range Catalog() {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

func met(c Condition, stats Stats) bool {
	switch c.Metric {
	case MetricMissionsCompleted:
		return stats.MissionsCompleted >= c.Threshold
	case MetricStreak:
		return stats.Streak >= c.Threshold
	case MetricLevel:
		return stats.Level >= c.Threshold
	case MetricRanking:
		return stats.Ranking > 0 && stats.Ranking <= c.Threshold
	case MetricTeamMissions:
		return stats.TeamMissions >= c.Threshold
	}
	return false
}
