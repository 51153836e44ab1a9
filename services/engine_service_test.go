package services_test

import (
	"context"
	"testing"
	"time"

	"academiaQuestAPI/internal/challenge"
	"academiaQuestAPI/internal/clock"
	"academiaQuestAPI/internal/event"
	"academiaQuestAPI/internal/mission"
	"academiaQuestAPI/internal/notification"
	"academiaQuestAPI/internal/persistence"
	"academiaQuestAPI/internal/team"
	"academiaQuestAPI/internal/user"
	"academiaQuestAPI/internal/weeklygoal"
	"academiaQuestAPI/services"
)

var testNow = time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)

// newTestEngine wires an engine against an in-memory store with a
// frozen clock and a minimal roster: four users, u1-u3 on team t1.
func newTestEngine(t *testing.T) (*services.EngineService, *services.StateStore, *clock.Fake) {
	t.Helper()

	st := services.NewStateStore(persistence.NewMemoryStore())
	err := st.Update(func(s *services.AppState) error {
		s.Users = []*user.User{
			testUser("u1", 0, 0, "t1"),
			testUser("u2", 900, 0, "t1"),
			testUser("u3", 2000, 0, "t1"),
			testUser("u4", 5000, 0, ""),
		}
		s.Teams = []*team.Team{
			{ID: "t1", Name: "Test Team", MemberIDs: []string{"u1", "u2", "u3"}, XPTotal: 2900},
		}
		s.Missions = []*mission.Mission{
			{ID: "m1", Title: "Solo Task", Type: mission.TypeTask, Progress: 0, RewardXP: 150, Status: mission.StatusAvailable},
			{ID: "m2", Title: "Running Task", Type: mission.TypeTask, Progress: 100, RewardXP: 100, Status: mission.StatusInProgress, AssignedTo: "u1"},
			{ID: "m3", Title: "Team Push", Type: mission.TypeTeam, TeamID: "t1", Progress: 100, RewardXP: 300, Status: mission.StatusInProgress},
			{ID: "m4", Title: "Halfway", Type: mission.TypeTask, Progress: 80, RewardXP: 100, Status: mission.StatusInProgress, AssignedTo: "u1"},
			{ID: "m5", Title: "Joint Effort", Type: mission.TypeTeam, TeamID: "t1", Progress: 0, RewardXP: 200, Status: mission.StatusInProgress},
		}
		s.Challenges = []*challenge.Challenge{
			{ID: "c1", Title: "Sprint", RewardXP: 250, DurationHours: 24, Status: challenge.StatusOpen},
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed test state: %v", err)
	}

	clk := clock.NewFake(testNow)
	notifs := services.NewNotificationService(st)
	t.Cleanup(notifs.Stop)
	return services.NewEngineService(st, notifs, clk), st, clk
}

func testUser(id string, xp, streak int, teamID string) *user.User {
	return &user.User{
		ID:      id,
		ClerkID: "clerk_" + id,
		Name:    "User " + id,
		XP:      xp,
		Level:   levelFor(xp),
		Streak:  streak,
		TeamID:  teamID,
		Badges:  []string{},
	}
}

func levelFor(xp int) int {
	switch {
	case xp < 250:
		return 0
	case xp < 1000:
		return 1
	case xp < 2250:
		return 2
	case xp < 4000:
		return 3
	default:
		return 4
	}
}

func getUser(t *testing.T, st *services.StateStore, id string) user.User {
	t.Helper()
	var found *user.User
	st.View(func(s *services.AppState) {
		for _, u := range s.Users {
			if u.ID == id {
				copied := *u
				found = &copied
			}
		}
	})
	if found == nil {
		t.Fatalf("user %s not in state", id)
	}
	return *found
}

func notificationsFor(st *services.StateStore, userID string, typ notification.Type) []notification.Notification {
	var out []notification.Notification
	st.View(func(s *services.AppState) {
		for _, n := range s.Notifications {
			if n.UserID == userID && n.Type == typ {
				out = append(out, *n)
			}
		}
	})
	return out
}

func TestGrantXP_NoStreakNoLevelUp(t *testing.T) {
	engine, st, _ := newTestEngine(t)

	outcome, err := engine.GrantXP(context.Background(), "u1", 150, event.TypeMissionComplete, "m1", "test grant")
	if err != nil {
		t.Fatalf("GrantXP: %v", err)
	}
	if !outcome.Applied {
		t.Fatalf("grant rejected: %s", outcome.Reason)
	}

	u := getUser(t, st, "u1")
	if u.XP != 150 {
		t.Errorf("XP = %d, want 150", u.XP)
	}
	if u.Level != 0 {
		t.Errorf("Level = %d, want 0", u.Level)
	}

	if got := notificationsFor(st, "u1", notification.TypeLevel); len(got) != 0 {
		t.Errorf("unexpected level notifications: %v", got)
	}
	if got := notificationsFor(st, "u1", notification.TypeXP); len(got) != 1 {
		t.Errorf("xp notifications = %d, want 1", len(got))
	}

	st.View(func(s *services.AppState) {
		if len(s.XPEvents) != 1 {
			t.Fatalf("xp events = %d, want 1", len(s.XPEvents))
		}
		ev := s.XPEvents[0]
		if ev.Amount != 150 || ev.UserID != "u1" || ev.Type != event.TypeMissionComplete {
			t.Errorf("unexpected event %+v", ev)
		}
	})
}

func TestGrantXP_StreakBonusAndLevelUp(t *testing.T) {
	engine, st, _ := newTestEngine(t)

	// u2 sits at 900 XP with a maxed streak; 100 base becomes 120 and
	// crosses the 1000 XP level boundary.
	st.Update(func(s *services.AppState) error {
		for _, u := range s.Users {
			if u.ID == "u2" {
				u.Streak = 10
			}
		}
		return nil
	})

	if _, err := engine.GrantXP(context.Background(), "u2", 100, event.TypeMissionComplete, "", ""); err != nil {
		t.Fatalf("GrantXP: %v", err)
	}

	u := getUser(t, st, "u2")
	if u.XP != 1020 {
		t.Errorf("XP = %d, want 1020", u.XP)
	}
	if u.Level != 2 {
		t.Errorf("Level = %d, want 2", u.Level)
	}

	levelNotifs := notificationsFor(st, "u2", notification.TypeLevel)
	if len(levelNotifs) != 1 {
		t.Fatalf("level notifications = %d, want exactly 1", len(levelNotifs))
	}
	if levelNotifs[0].Message != "You reached Level 2" {
		t.Errorf("level message = %q", levelNotifs[0].Message)
	}
}

func TestGrantXP_MaintainsTeamTotal(t *testing.T) {
	engine, st, _ := newTestEngine(t)

	if _, err := engine.GrantXP(context.Background(), "u1", 100, event.TypeMissionComplete, "", ""); err != nil {
		t.Fatalf("GrantXP: %v", err)
	}

	st.View(func(s *services.AppState) {
		if s.Teams[0].XPTotal != 3000 {
			t.Errorf("team XPTotal = %d, want 3000", s.Teams[0].XPTotal)
		}
	})
}

func TestGrantXP_UnknownUser(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	if _, err := engine.GrantXP(context.Background(), "ghost", 100, event.TypeMissionComplete, "", ""); err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestCompleteMission_ProgressInsufficient(t *testing.T) {
	engine, st, _ := newTestEngine(t)

	outcome, err := engine.CompleteMission(context.Background(), "m4", "u1")
	if err != nil {
		t.Fatalf("CompleteMission: %v", err)
	}
	if outcome.Applied {
		t.Fatal("mission at 80% completed")
	}
	if outcome.Reason != "progress insufficient" {
		t.Errorf("reason = %q", outcome.Reason)
	}

	u := getUser(t, st, "u1")
	if u.XP != 0 {
		t.Errorf("rejected completion granted XP: %d", u.XP)
	}
	st.View(func(s *services.AppState) {
		for _, m := range s.Missions {
			if m.ID == "m4" && m.Status != mission.StatusInProgress {
				t.Errorf("mission status changed to %s", m.Status)
			}
		}
	})
}

func TestCompleteMission_Solo(t *testing.T) {
	engine, st, _ := newTestEngine(t)

	outcome, err := engine.CompleteMission(context.Background(), "m2", "u1")
	if err != nil {
		t.Fatalf("CompleteMission: %v", err)
	}
	if !outcome.Applied {
		t.Fatalf("rejected: %s", outcome.Reason)
	}

	u := getUser(t, st, "u1")
	if u.XP != 100 {
		t.Errorf("XP = %d, want 100", u.XP)
	}
	if u.Streak != 1 {
		t.Errorf("Streak = %d, want 1", u.Streak)
	}
	// First completed mission unlocks the first badge. With a four
	// person roster everyone sits inside the top 10, so the ranking
	// badge comes along too.
	owned := make(map[string]bool, len(u.Badges))
	for _, id := range u.Badges {
		owned[id] = true
	}
	if !owned["b1"] || !owned["b7"] || len(u.Badges) != 2 {
		t.Errorf("Badges = %v, want b1 and b7", u.Badges)
	}

	st.View(func(s *services.AppState) {
		if s.WeeklyGoal == nil || s.WeeklyGoal.Current != 1 {
			t.Errorf("weekly goal not advanced: %+v", s.WeeklyGoal)
		}
	})
}

func TestCompleteMission_AlreadyCompleted(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	if _, err := engine.CompleteMission(context.Background(), "m2", "u1"); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	outcome, err := engine.CompleteMission(context.Background(), "m2", "u1")
	if err != nil {
		t.Fatalf("second completion: %v", err)
	}
	if outcome.Applied {
		t.Fatal("completed the same mission twice")
	}
}

func TestCompleteMission_TeamFullRewardPerMember(t *testing.T) {
	engine, st, _ := newTestEngine(t)

	outcome, err := engine.CompleteMission(context.Background(), "m3", "u1")
	if err != nil {
		t.Fatalf("CompleteMission: %v", err)
	}
	if !outcome.Applied {
		t.Fatalf("rejected: %s", outcome.Reason)
	}

	// 300 XP each, not split three ways.
	for _, id := range []string{"u1", "u2", "u3"} {
		before := map[string]int{"u1": 0, "u2": 900, "u3": 2000}[id]
		u := getUser(t, st, id)
		if u.XP != before+300 {
			t.Errorf("%s XP = %d, want %d", id, u.XP, before+300)
		}
	}
	// The outsider gets nothing.
	if u := getUser(t, st, "u4"); u.XP != 5000 {
		t.Errorf("u4 XP = %d, want 5000", u.XP)
	}
	// Only the actor's streak moves.
	if u := getUser(t, st, "u1"); u.Streak != 1 {
		t.Errorf("actor streak = %d, want 1", u.Streak)
	}
	if u := getUser(t, st, "u2"); u.Streak != 0 {
		t.Errorf("member streak = %d, want 0", u.Streak)
	}
}

func TestWeeklyGoal_BonusExactlyOnce(t *testing.T) {
	engine, st, _ := newTestEngine(t)

	// Put the goal one completion short of the target.
	st.Update(func(s *services.AppState) error {
		g := weeklygoal.NewForWeek(testNow, 15, 500)
		g.Current = 14
		s.WeeklyGoal = g
		return nil
	})

	if _, err := engine.CompleteMission(context.Background(), "m2", "u1"); err != nil {
		t.Fatalf("CompleteMission: %v", err)
	}

	u := getUser(t, st, "u1")
	// 100 mission reward at streak 0, then 500 bonus at streak 1
	// (streak moves after the weekly bonus payout).
	if u.XP != 100+500 {
		t.Errorf("XP = %d, want 600", u.XP)
	}

	var bonusEvents int
	st.View(func(s *services.AppState) {
		for _, ev := range s.XPEvents {
			if ev.Type == event.TypeWeeklyGoal {
				bonusEvents++
			}
		}
		if s.WeeklyGoal.Current != 15 {
			t.Errorf("goal current = %d, want 15", s.WeeklyGoal.Current)
		}
	})
	if bonusEvents != 1 {
		t.Fatalf("weekly bonus events = %d, want 1", bonusEvents)
	}

	// Another completion past the target must not pay again.
	st.Update(func(s *services.AppState) error {
		for _, m := range s.Missions {
			if m.ID == "m4" {
				m.Progress = 100
			}
		}
		return nil
	})
	if _, err := engine.CompleteMission(context.Background(), "m4", "u1"); err != nil {
		t.Fatalf("CompleteMission m4: %v", err)
	}

	bonusEvents = 0
	st.View(func(s *services.AppState) {
		for _, ev := range s.XPEvents {
			if ev.Type == event.TypeWeeklyGoal {
				bonusEvents++
			}
		}
	})
	if bonusEvents != 1 {
		t.Errorf("weekly bonus paid %d times", bonusEvents)
	}
}

func TestStartMission(t *testing.T) {
	engine, st, _ := newTestEngine(t)

	outcome, err := engine.StartMission(context.Background(), "m1", "u1")
	if err != nil {
		t.Fatalf("StartMission: %v", err)
	}
	if !outcome.Applied {
		t.Fatalf("rejected: %s", outcome.Reason)
	}

	st.View(func(s *services.AppState) {
		for _, m := range s.Missions {
			if m.ID != "m1" {
				continue
			}
			if m.Status != mission.StatusInProgress {
				t.Errorf("status = %s", m.Status)
			}
			if m.AssignedTo != "u1" {
				t.Errorf("assignedTo = %q", m.AssignedTo)
			}
		}
	})

	// A second start must be rejected.
	outcome, err = engine.StartMission(context.Background(), "m1", "u2")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if outcome.Applied {
		t.Error("started a mission that was already running")
	}
}

func TestUpdateMissionProgress(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()

	delta := 30
	outcome, err := engine.UpdateMissionProgress(ctx, "m4", &mission.UpdateProgressRequest{Delta: &delta})
	if err != nil {
		t.Fatalf("UpdateMissionProgress: %v", err)
	}
	if !outcome.Applied {
		t.Fatalf("rejected: %s", outcome.Reason)
	}
	st.View(func(s *services.AppState) {
		for _, m := range s.Missions {
			if m.ID == "m4" && m.Progress != 100 {
				t.Errorf("progress = %d, want clamp at 100", m.Progress)
			}
		}
	})

	// Absolute form.
	value := 40
	if _, err := engine.UpdateMissionProgress(ctx, "m4", &mission.UpdateProgressRequest{Value: &value}); err != nil {
		t.Fatalf("absolute update: %v", err)
	}
	st.View(func(s *services.AppState) {
		for _, m := range s.Missions {
			if m.ID == "m4" && m.Progress != 40 {
				t.Errorf("progress = %d, want 40", m.Progress)
			}
		}
	})

	// Negative delta clamps at zero.
	neg := -70
	if _, err := engine.UpdateMissionProgress(ctx, "m4", &mission.UpdateProgressRequest{Delta: &neg}); err != nil {
		t.Fatalf("negative delta: %v", err)
	}
	st.View(func(s *services.AppState) {
		for _, m := range s.Missions {
			if m.ID == "m4" && m.Progress != 0 {
				t.Errorf("progress = %d, want 0", m.Progress)
			}
		}
	})

	// Empty request carries neither form.
	outcome, err = engine.UpdateMissionProgress(ctx, "m4", &mission.UpdateProgressRequest{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if outcome.Applied {
		t.Error("empty update applied")
	}

	// Not-in-progress missions reject updates.
	outcome, err = engine.UpdateMissionProgress(ctx, "m1", &mission.UpdateProgressRequest{Delta: &delta})
	if err != nil {
		t.Fatalf("available update: %v", err)
	}
	if outcome.Applied {
		t.Error("updated an available mission")
	}
}

func TestContributeToTeamMission(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()

	// First contribution is stored as given, beyond 100 included.
	if _, err := engine.ContributeToTeamMission(ctx, "m5", "u1", 120); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	st.View(func(s *services.AppState) {
		for _, m := range s.Missions {
			if m.ID != "m5" {
				continue
			}
			if len(m.Contributions) != 1 || m.Contributions[0].Progress != 120 {
				t.Errorf("contributions = %+v", m.Contributions)
			}
			// 120 over 3 members.
			if m.Progress != 40 {
				t.Errorf("progress = %d, want 40", m.Progress)
			}
		}
	})

	// Updates clamp the entry at 100.
	if _, err := engine.ContributeToTeamMission(ctx, "m5", "u2", 90); err != nil {
		t.Fatalf("contribute u2: %v", err)
	}
	if _, err := engine.ContributeToTeamMission(ctx, "m5", "u2", 50); err != nil {
		t.Fatalf("contribute u2 again: %v", err)
	}
	st.View(func(s *services.AppState) {
		for _, m := range s.Missions {
			if m.ID != "m5" {
				continue
			}
			if got := m.Contributions[m.ContributionFor("u2")].Progress; got != 100 {
				t.Errorf("u2 contribution = %d, want 100", got)
			}
			// (120 + 100) / 3 = 73
			if m.Progress != 73 {
				t.Errorf("progress = %d, want 73", m.Progress)
			}
		}
	})

	// Non-team missions reject contributions.
	outcome, err := engine.ContributeToTeamMission(ctx, "m2", "u1", 10)
	if err != nil {
		t.Fatalf("contribute to solo: %v", err)
	}
	if outcome.Applied {
		t.Error("contributed to a non-team mission")
	}
}

func TestAcceptChallenge(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	ctx := context.Background()

	outcome, err := engine.AcceptChallenge(ctx, "c1", "u1")
	if err != nil {
		t.Fatalf("AcceptChallenge: %v", err)
	}
	if !outcome.Applied {
		t.Fatalf("rejected: %s", outcome.Reason)
	}

	st.View(func(s *services.AppState) {
		c := s.Challenges[0]
		if c.Status != challenge.StatusInProgress {
			t.Errorf("status = %s", c.Status)
		}
		if c.StartTime == nil || !c.StartTime.Equal(testNow) {
			t.Errorf("start time = %v", c.StartTime)
		}
		if c.EndTime == nil || !c.EndTime.Equal(testNow.Add(24*time.Hour)) {
			t.Errorf("end time = %v", c.EndTime)
		}
	})

	// Re-accept by the same user is rejected.
	outcome, err = engine.AcceptChallenge(ctx, "c1", "u1")
	if err != nil {
		t.Fatalf("re-accept: %v", err)
	}
	if outcome.Applied {
		t.Fatal("accepted the same challenge twice")
	}
	if outcome.Reason != "already participating" {
		t.Errorf("reason = %q", outcome.Reason)
	}

	// A second user joins without resetting the window.
	if _, err := engine.AcceptChallenge(ctx, "c1", "u2"); err != nil {
		t.Fatalf("second accept: %v", err)
	}
	st.View(func(s *services.AppState) {
		c := s.Challenges[0]
		if len(c.Participants) != 2 {
			t.Errorf("participants = %v", c.Participants)
		}
		if !c.StartTime.Equal(testNow) {
			t.Errorf("window reset by second accept: %v", c.StartTime)
		}
	})
}

func TestCompleteChallenge(t *testing.T) {
	engine, st, clk := newTestEngine(t)
	ctx := context.Background()

	// Non-participants cannot complete.
	if _, err := engine.AcceptChallenge(ctx, "c1", "u1"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	outcome, err := engine.CompleteChallenge(ctx, "c1", "u2")
	if err != nil {
		t.Fatalf("complete as outsider: %v", err)
	}
	if outcome.Applied {
		t.Fatal("non-participant completed the challenge")
	}

	clk.Advance(2 * time.Hour)
	outcome, err = engine.CompleteChallenge(ctx, "c1", "u1")
	if err != nil {
		t.Fatalf("CompleteChallenge: %v", err)
	}
	if !outcome.Applied {
		t.Fatalf("rejected: %s", outcome.Reason)
	}

	u := getUser(t, st, "u1")
	if u.XP != 250 {
		t.Errorf("XP = %d, want 250", u.XP)
	}
	st.View(func(s *services.AppState) {
		c := s.Challenges[0]
		if c.Status != challenge.StatusCompleted {
			t.Errorf("status = %s", c.Status)
		}
		if len(c.Attempts) != 1 || !c.Attempts[0].Completed {
			t.Errorf("attempts = %+v", c.Attempts)
		}
	})
}

func TestCompleteChallenge_WindowClosed(t *testing.T) {
	engine, _, clk := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.AcceptChallenge(ctx, "c1", "u1"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	clk.Advance(25 * time.Hour)

	outcome, err := engine.CompleteChallenge(ctx, "c1", "u1")
	if err != nil {
		t.Fatalf("CompleteChallenge: %v", err)
	}
	if outcome.Applied {
		t.Fatal("completed a challenge after its window closed")
	}
}

func TestExpireChallenges(t *testing.T) {
	engine, st, clk := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.AcceptChallenge(ctx, "c1", "u1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if n := engine.ExpireChallenges(ctx); n != 0 {
		t.Errorf("expired %d challenges inside the window", n)
	}

	clk.Advance(25 * time.Hour)
	if n := engine.ExpireChallenges(ctx); n != 1 {
		t.Errorf("expired %d challenges, want 1", n)
	}
	st.View(func(s *services.AppState) {
		if s.Challenges[0].Status != challenge.StatusExpired {
			t.Errorf("status = %s", s.Challenges[0].Status)
		}
	})

	// Idempotent on a second sweep.
	if n := engine.ExpireChallenges(ctx); n != 0 {
		t.Errorf("second sweep expired %d", n)
	}
}

func TestWeeklyGoalRead_FreshWhenExpired(t *testing.T) {
	engine, st, clk := newTestEngine(t)

	st.Update(func(s *services.AppState) error {
		g := weeklygoal.NewForWeek(testNow, 15, 500)
		g.Current = 9
		s.WeeklyGoal = g
		return nil
	})

	if got := engine.WeeklyGoal(); got.Current != 9 {
		t.Errorf("current = %d, want 9", got.Current)
	}

	clk.Advance(8 * 24 * time.Hour)
	got := engine.WeeklyGoal()
	if got.Current != 0 {
		t.Errorf("expired goal still reports current = %d", got.Current)
	}
	if !got.WeekStart.After(testNow) {
		t.Errorf("fresh goal window starts at %v", got.WeekStart)
	}
}
