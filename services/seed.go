package services

import (
	"context"
	"time"

	"academiaQuestAPI/internal/challenge"
	"academiaQuestAPI/internal/gamification"
	"academiaQuestAPI/internal/mission"
	"academiaQuestAPI/internal/team"
	"academiaQuestAPI/internal/user"
	"academiaQuestAPI/internal/weeklygoal"
)

// Seed populates an empty store with the demo cohort: ten users, two
// teams, a board of missions and three open challenges. Levels are
// derived from XP so the level invariant holds from the first boot.
func Seed(ctx context.Context, st *StateStore, now time.Time) {
	st.Update(func(s *AppState) error {
		s.Users = seedUsers(now)
		s.Teams = seedTeams()
		s.Missions = seedMissions(now)
		s.Challenges = seedChallenges()

		goal := weeklygoal.NewForWeek(now, gamification.WeeklyGoal.TargetMissions, gamification.WeeklyGoal.BonusXP)
		goal.Current = 8
		s.WeeklyGoal = goal
		return nil
	})
	st.CommitAll(ctx)
}

func seedUser(id, name, avatar, email string, xp, streak int, teamID string, badges []string, joined time.Time) *user.User {
	return &user.User{
		ID:        id,
		Name:      name,
		Avatar:    avatar,
		Email:     email,
		Level:     gamification.LevelForXP(xp),
		XP:        xp,
		Streak:    streak,
		TeamID:    teamID,
		Badges:    badges,
		JoinDate:  joined,
		CreatedAt: joined,
		UpdatedAt: joined,
	}
}

func seedUsers(now time.Time) []*user.User {
	joined := func(daysAgo int) time.Time { return now.AddDate(0, 0, -daysAgo) }

	return []*user.User{
		seedUser("u1", "Miguel", "MG", "miguel@example.com", 15420, 7, "t1", []string{"b1", "b2", "b3"}, joined(120)),
		seedUser("u2", "Ana Garcia", "AG", "ana@example.com", 18500, 12, "t1", []string{"b1", "b2", "b3", "b4", "b7"}, joined(150)),
		seedUser("u3", "Carlos Ruiz", "CR", "carlos@example.com", 17200, 5, "t1", []string{"b1", "b2", "b3"}, joined(145)),
		seedUser("u4", "Maria Lopez", "ML", "maria@example.com", 16800, 8, "t1", []string{"b1", "b2", "b3", "b6"}, joined(140)),
		seedUser("u5", "David Martin", "DM", "david@example.com", 15900, 3, "t2", []string{"b1", "b2"}, joined(110)),
		seedUser("u6", "Laura Sanchez", "LS", "laura@example.com", 15600, 6, "t2", []string{"b1", "b2", "b3"}, joined(108)),
		seedUser("u7", "Pedro Jimenez", "PJ", "pedro@example.com", 15400, 4, "", []string{"b1", "b2"}, joined(105)),
		seedUser("u8", "Sofia Torres", "ST", "sofia@example.com", 15300, 9, "t2", []string{"b1", "b2", "b3"}, joined(103)),
		seedUser("u9", "Miguel Angel", "MA", "miguel.angel@example.com", 14200, 2, "", []string{"b1"}, joined(100)),
		seedUser("u10", "Elena Vega", "EV", "elena@example.com", 13800, 5, "t2", []string{"b1", "b2"}, joined(98)),
	}
}

func seedTeams() []*team.Team {
	return []*team.Team{
		{
			ID:         "t1",
			Name:       "The Innovators",
			MemberIDs:  []string{"u1", "u2", "u3", "u4"},
			XPTotal:    67920,
			Position:   1,
			InviteCode: "INNOV2025",
		},
		{
			ID:         "t2",
			Name:       "United Brains",
			MemberIDs:  []string{"u5", "u6", "u8", "u10"},
			XPTotal:    60600,
			Position:   2,
			InviteCode: "BRAINS2025",
		},
	}
}

func seedMissions(now time.Time) []*mission.Mission {
	return []*mission.Mission{
		{
			ID: "m1", Title: "Linear Algebra: Matrices", Type: mission.TypeTask,
			Difficulty: gamification.DifficultyIntermediate, Progress: 75, RewardXP: 150,
			Deadline: now.Add(2 * 24 * time.Hour), AssignedTo: "u1", Status: mission.StatusInProgress,
			Description: "Practice with matrix and determinant exercises. Solve at least 5 problems.",
		},
		{
			ID: "m2", Title: "World History Quiz", Type: mission.TypeChallenge,
			Difficulty: gamification.DifficultyAdvanced, Progress: 30, RewardXP: 200,
			Deadline: now.Add(5 * time.Hour), AssignedTo: "u1", Status: mission.StatusInProgress,
			Description: "Answer at least 8 out of 10 questions correctly, from antiquity to the modern age.",
		},
		{
			ID: "m3", Title: "Collaborative Project", Type: mission.TypeTeam,
			Difficulty: gamification.DifficultyIntermediate, Progress: 60, RewardXP: 300,
			Deadline: now.Add(7 * 24 * time.Hour), Status: mission.StatusInProgress, TeamID: "t1",
			Description: "Build a team presentation on renewable energy, one slide per member.",
			Contributions: []mission.Contribution{
				{UserID: "u1", Progress: 20},
				{UserID: "u2", Progress: 25},
				{UserID: "u3", Progress: 15},
			},
		},
		{
			ID: "m4", Title: "Introduction to Python", Type: mission.TypeTask,
			Difficulty: gamification.DifficultyBasic, Progress: 20, RewardXP: 100,
			Deadline: now.Add(3 * 24 * time.Hour), AssignedTo: "u1", Status: mission.StatusInProgress,
			Description: "Complete the first 5 hands-on exercises: variables, types, operators.",
		},
		{
			ID: "m5", Title: "Quantum Physics: Core Concepts", Type: mission.TypeTask,
			Difficulty: gamification.DifficultyAdvanced, Progress: 0, RewardXP: 250,
			Deadline: now.Add(7 * 24 * time.Hour), Status: mission.StatusAvailable,
			Description: "Study wave-particle duality, uncertainty and superposition; write a 500-word summary.",
		},
		{
			ID: "m6", Title: "Academic Writing", Type: mission.TypeChallenge,
			Difficulty: gamification.DifficultyIntermediate, Progress: 0, RewardXP: 180,
			Deadline: now.Add(4 * 24 * time.Hour), Status: mission.StatusAvailable,
			Description: "Write a 1000-word essay with introduction, argument and conclusion.",
		},
		{
			ID: "m7", Title: "Applied Physics Project", Type: mission.TypeTeam,
			Difficulty: gamification.DifficultyIntermediate, Progress: 65, RewardXP: 250,
			Deadline: now.Add(3 * 24 * time.Hour), Status: mission.StatusInProgress, TeamID: "t1",
			Description: "Each member explains a different physical phenomenon with everyday examples.",
			Contributions: []mission.Contribution{
				{UserID: "u1", Progress: 20},
				{UserID: "u2", Progress: 25},
				{UserID: "u3", Progress: 20},
			},
		},
		{
			ID: "m8", Title: "Historical Research", Type: mission.TypeTeam,
			Difficulty: gamification.DifficultyIntermediate, Progress: 40, RewardXP: 200,
			Deadline: now.Add(5 * 24 * time.Hour), Status: mission.StatusInProgress, TeamID: "t1",
			Description: "Research the Industrial Revolution: causes, inventions, social impact.",
			Contributions: []mission.Contribution{
				{UserID: "u2", Progress: 25},
				{UserID: "u4", Progress: 15},
			},
		},
	}
}

func seedChallenges() []*challenge.Challenge {
	return []*challenge.Challenge{
		{
			ID: "c1", Title: "Math Master",
			Description: "Solve 20 calculus problems without mistakes",
			Difficulty:  gamification.DifficultyAdvanced, RewardXP: 500, DurationHours: 48,
			Participants: []string{"u1", "u5"}, Status: challenge.StatusOpen,
		},
		{
			ID: "c2", Title: "Mental Speed",
			Description: "Complete 10 quick math, logic and memory exercises in under 5 minutes",
			Difficulty:  gamification.DifficultyIntermediate, RewardXP: 300, DurationHours: 24,
			Participants: []string{"u2", "u3", "u6"}, Status: challenge.StatusOpen,
		},
		{
			ID: "c3", Title: "Supreme Collaboration",
			Description: "Complete 3 team projects this week",
			Difficulty:  gamification.DifficultyBasic, RewardXP: 400, DurationHours: 168,
			Participants: []string{"u1", "u2", "u3", "u4"}, Status: challenge.StatusOpen,
		},
	}
}
