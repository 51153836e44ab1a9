package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"academiaQuestAPI/internal/badge"
	"academiaQuestAPI/internal/challenge"
	"academiaQuestAPI/internal/clock"
	"academiaQuestAPI/internal/event"
	"academiaQuestAPI/internal/gamification"
	"academiaQuestAPI/internal/mission"
	"academiaQuestAPI/internal/notification"
	"academiaQuestAPI/internal/persistence"
	"academiaQuestAPI/internal/user"
	"academiaQuestAPI/internal/weeklygoal"
)

// ErrNotFound marks a referenced entity that does not resolve. The
// whole operation is aborted before any mutation when it happens.
var ErrNotFound = errors.New("not found")

// Outcome reports whether a domain-rule check let the operation apply.
// A rejected outcome is not an error: the state did not change and the
// caller can retry with corrected input.
type Outcome struct {
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

var applied = Outcome{Applied: true}

func rejected(reason string) Outcome {
	return Outcome{Applied: false, Reason: reason}
}

// EngineService is the gamification rules engine: the single writer of
// the domain state. Every operation is one atomic read-compute-commit
// pass under the state lock, followed by an explicit persistence commit
// and async dispatch of the notifications it produced.
type EngineService struct {
	state  *StateStore
	notifs *NotificationService
	clock  clock.Clock
}

func NewEngineService(state *StateStore, notifs *NotificationService, clk clock.Clock) *EngineService {
	return &EngineService{
		state:  state,
		notifs: notifs,
		clock:  clk,
	}
}

// GrantXP awards XP to a user: streak bonus applied once, XP event
// appended, level recomputed, badges re-evaluated. Returns the
// notifications it produced so composite operations dispatch them after
// their own commit.
func (e *EngineService) GrantXP(ctx context.Context, userID string, amount int, eventType event.Type, sourceID, description string) (Outcome, error) {
	var created []*notification.Notification

	err := e.state.Update(func(s *AppState) error {
		u := s.findUser(userID)
		if u == nil {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		created = e.grantXPLocked(s, u, amount, eventType, sourceID, description)
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	e.state.Commit(ctx,
		persistence.KindUsers,
		persistence.KindTeams,
		persistence.KindXPEvents,
		persistence.KindNotifications,
	)
	e.notifs.Dispatch(created...)
	return applied, nil
}

// grantXPLocked is the core grant path. Caller holds the state lock and
// has already resolved the user.
func (e *EngineService) grantXPLocked(s *AppState, u *user.User, amount int, eventType event.Type, sourceID, description string) []*notification.Notification {
	now := e.clock.Now()

	finalAmount := gamification.ApplyStreakBonus(amount, u.Streak)
	oldLevel := u.Level
	u.XP += finalAmount
	u.Level = gamification.LevelForXP(u.XP)
	u.UpdatedAt = now

	// Keep the team aggregate in step with its members.
	if u.TeamID != "" {
		if t := s.findTeam(u.TeamID); t != nil {
			t.XPTotal += finalAmount
		}
	}

	s.XPEvents = append(s.XPEvents, &event.XPEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		UserID:      u.ID,
		Amount:      finalAmount,
		Timestamp:   now,
		SourceID:    sourceID,
		Description: description,
	})
	xpGrantedTotal.WithLabelValues(string(eventType)).Add(float64(finalAmount))

	message := description
	if message == "" {
		message = fmt.Sprintf("You earned %d XP", finalAmount)
	}
	created := []*notification.Notification{
		e.appendNotification(s, u.ID, notification.TypeXP, fmt.Sprintf("+%d XP Earned", finalAmount), message),
	}

	// One level notification per grant even when levels are skipped.
	if u.Level > oldLevel {
		levelUpsTotal.Inc()
		created = append(created, e.appendNotification(s, u.ID, notification.TypeLevel,
			"Level Up!", fmt.Sprintf("You reached Level %d", u.Level)))
	}

	created = append(created, e.evaluateBadgesLocked(s, u)...)
	return created
}

// evaluateBadgesLocked runs the badge rules for the user and appends an
// achievement notification per new badge, in catalog order.
func (e *EngineService) evaluateBadgesLocked(s *AppState, u *user.User) []*notification.Notification {
	stats := deriveStats(s, u)

	var created []*notification.Notification
	for _, id := range badge.Evaluate(u.Badges, stats) {
		u.Badges = append(u.Badges, id)
		badgesUnlockedTotal.Inc()

		b, _ := badge.ByID(id)
		created = append(created, e.appendNotification(s, u.ID, notification.TypeAchievement,
			"New Badge Unlocked", fmt.Sprintf("You earned the %q badge", b.Title)))
	}
	return created
}

func (e *EngineService) appendNotification(s *AppState, userID string, typ notification.Type, title, message string) *notification.Notification {
	n := &notification.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Read:      false,
		Timestamp: e.clock.Now(),
	}
	s.Notifications = append(s.Notifications, n)
	return n
}

// CompleteMission finishes a mission at 100% progress. Team missions
// pay the full reward to every member; the acting user's completion
// also advances the shared weekly goal and their streak.
func (e *EngineService) CompleteMission(ctx context.Context, missionID, actingUserID string) (Outcome, error) {
	var (
		created []*notification.Notification
		outcome = applied
	)

	err := e.state.Update(func(s *AppState) error {
		m := s.findMission(missionID)
		if m == nil {
			return fmt.Errorf("mission %s: %w", missionID, ErrNotFound)
		}
		actor := s.findUser(actingUserID)
		if actor == nil {
			return fmt.Errorf("user %s: %w", actingUserID, ErrNotFound)
		}

		if m.Status == mission.StatusCompleted {
			outcome = rejected("mission already completed")
			return nil
		}
		if m.Progress < 100 {
			outcome = rejected("progress insufficient")
			return nil
		}

		if m.Type == mission.TypeTeam && m.TeamID != "" {
			// Full reward per member, not divided.
			if t := s.findTeam(m.TeamID); t != nil {
				for _, memberID := range t.MemberIDs {
					member := s.findUser(memberID)
					if member == nil {
						continue // stale reference
					}
					created = append(created, e.grantXPLocked(s, member, m.RewardXP,
						event.TypeTeamMissionComplete, m.ID, "Team mission completed: "+m.Title)...)
				}
			}
		} else {
			created = append(created, e.grantXPLocked(s, actor, m.RewardXP,
				event.TypeMissionComplete, m.ID, "Mission completed: "+m.Title)...)
		}

		m.Status = mission.StatusCompleted
		m.Progress = 100
		missionsCompletedTotal.WithLabelValues(string(m.Type)).Inc()

		created = append(created, e.advanceWeeklyGoalLocked(s, actor)...)

		// Streak grows per completion, not per calendar day. Badges are
		// re-checked because the streak may have crossed a milestone.
		actor.Streak++
		created = append(created, e.evaluateBadgesLocked(s, actor)...)
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	if !outcome.Applied {
		return outcome, nil
	}

	e.state.Commit(ctx,
		persistence.KindUsers,
		persistence.KindTeams,
		persistence.KindMissions,
		persistence.KindXPEvents,
		persistence.KindNotifications,
		persistence.KindWeeklyGoal,
	)
	e.notifs.Dispatch(created...)
	return outcome, nil
}

// advanceWeeklyGoalLocked counts one completion toward the shared
// weekly goal and pays the bonus exactly when the target is first hit.
func (e *EngineService) advanceWeeklyGoalLocked(s *AppState, actor *user.User) []*notification.Notification {
	now := e.clock.Now()

	if s.WeeklyGoal == nil || s.WeeklyGoal.Expired(now) {
		s.WeeklyGoal = weeklygoal.NewForWeek(now, gamification.WeeklyGoal.TargetMissions, gamification.WeeklyGoal.BonusXP)
	}

	goal := s.WeeklyGoal
	before := goal.Current
	goal.Current++

	if before < goal.Target && goal.Current >= goal.Target {
		return e.grantXPLocked(s, actor, goal.XPBonus, event.TypeWeeklyGoal, "", "Weekly goal reached")
	}
	return nil
}

// StartMission claims an available mission. Non-team missions are
// assigned to the acting user; team missions stay unassigned.
func (e *EngineService) StartMission(ctx context.Context, missionID, userID string) (Outcome, error) {
	var (
		created []*notification.Notification
		outcome = applied
	)

	err := e.state.Update(func(s *AppState) error {
		m := s.findMission(missionID)
		if m == nil {
			return fmt.Errorf("mission %s: %w", missionID, ErrNotFound)
		}
		u := s.findUser(userID)
		if u == nil {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}

		if m.Status != mission.StatusAvailable {
			outcome = rejected("mission is not available")
			return nil
		}

		m.Status = mission.StatusInProgress
		if m.Type != mission.TypeTeam {
			m.AssignedTo = u.ID
		}

		created = append(created, e.appendNotification(s, u.ID, notification.TypeMission,
			"Mission Started", "You started the mission: "+m.Title))
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	if !outcome.Applied {
		return outcome, nil
	}

	e.state.Commit(ctx, persistence.KindMissions, persistence.KindNotifications)
	e.notifs.Dispatch(created...)
	return outcome, nil
}

// UpdateMissionProgress moves progress by a delta or to an explicit
// value, clamped to [0, 100]. Only legal while the mission is running.
func (e *EngineService) UpdateMissionProgress(ctx context.Context, missionID string, req *mission.UpdateProgressRequest) (Outcome, error) {
	outcome := applied

	err := e.state.Update(func(s *AppState) error {
		m := s.findMission(missionID)
		if m == nil {
			return fmt.Errorf("mission %s: %w", missionID, ErrNotFound)
		}

		if m.Status != mission.StatusInProgress {
			outcome = rejected("mission is not in progress")
			return nil
		}

		switch {
		case req.Delta != nil:
			m.Progress = clampProgress(m.Progress + *req.Delta)
		case req.Value != nil:
			m.Progress = clampProgress(*req.Value)
		default:
			outcome = rejected("either delta or value is required")
		}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	if !outcome.Applied {
		return outcome, nil
	}

	e.state.Commit(ctx, persistence.KindMissions)
	return outcome, nil
}

// ContributeToTeamMission records a member's progress share. Existing
// entries clamp at 100; a first contribution is stored as given. The
// mission progress is the contribution sum averaged over the team size,
// with no averaging when the team cannot be resolved.
func (e *EngineService) ContributeToTeamMission(ctx context.Context, missionID, userID string, progressDelta int) (Outcome, error) {
	outcome := applied

	err := e.state.Update(func(s *AppState) error {
		m := s.findMission(missionID)
		if m == nil {
			return fmt.Errorf("mission %s: %w", missionID, ErrNotFound)
		}
		u := s.findUser(userID)
		if u == nil {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}

		if m.Type != mission.TypeTeam || m.TeamID == "" {
			outcome = rejected("not a team mission")
			return nil
		}

		if i := m.ContributionFor(u.ID); i >= 0 {
			next := m.Contributions[i].Progress + progressDelta
			if next > 100 {
				next = 100
			}
			m.Contributions[i].Progress = next
		} else {
			m.Contributions = append(m.Contributions, mission.Contribution{
				UserID:   u.ID,
				Progress: progressDelta,
			})
		}

		memberCount := 1
		if t := s.findTeam(m.TeamID); t != nil && len(t.MemberIDs) > 0 {
			memberCount = len(t.MemberIDs)
		}

		total := 0
		for _, c := range m.Contributions {
			total += c.Progress
		}
		progress := total / memberCount
		if progress > 100 {
			progress = 100
		}
		m.Progress = progress
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	if !outcome.Applied {
		return outcome, nil
	}

	e.state.Commit(ctx, persistence.KindMissions)
	return outcome, nil
}

// AcceptChallenge joins a challenge. The first accept opens the time
// window; later accepts only add participants.
func (e *EngineService) AcceptChallenge(ctx context.Context, challengeID, userID string) (Outcome, error) {
	var (
		created []*notification.Notification
		outcome = applied
	)

	err := e.state.Update(func(s *AppState) error {
		c := s.findChallenge(challengeID)
		if c == nil {
			return fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
		}
		u := s.findUser(userID)
		if u == nil {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}

		if c.HasParticipant(u.ID) {
			outcome = rejected("already participating")
			return nil
		}
		if c.Status == challenge.StatusCompleted || c.Status == challenge.StatusExpired {
			outcome = rejected("challenge is closed")
			return nil
		}

		if c.Status == challenge.StatusOpen {
			now := e.clock.Now()
			end := now.Add(time.Duration(c.DurationHours) * time.Hour)
			c.Status = challenge.StatusInProgress
			c.StartTime = &now
			c.EndTime = &end
		}
		c.Participants = append(c.Participants, u.ID)

		created = append(created, e.appendNotification(s, u.ID, notification.TypeChallenge,
			"Challenge Accepted", "You accepted the challenge: "+c.Title))
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	if !outcome.Applied {
		return outcome, nil
	}

	e.state.Commit(ctx, persistence.KindChallenges, persistence.KindNotifications)
	e.notifs.Dispatch(created...)
	return outcome, nil
}

// CompleteChallenge lets a participant finish a running challenge
// inside its time window and collects the reward.
func (e *EngineService) CompleteChallenge(ctx context.Context, challengeID, userID string) (Outcome, error) {
	var (
		created []*notification.Notification
		outcome = applied
	)

	err := e.state.Update(func(s *AppState) error {
		c := s.findChallenge(challengeID)
		if c == nil {
			return fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
		}
		u := s.findUser(userID)
		if u == nil {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}

		if !c.HasParticipant(u.ID) {
			outcome = rejected("not a participant")
			return nil
		}
		if c.Status != challenge.StatusInProgress {
			outcome = rejected("challenge is not in progress")
			return nil
		}
		now := e.clock.Now()
		if c.EndTime != nil && now.After(*c.EndTime) {
			outcome = rejected("challenge window has closed")
			return nil
		}

		created = append(created, e.grantXPLocked(s, u, c.RewardXP,
			event.TypeChallengeComplete, c.ID, "Challenge completed: "+c.Title)...)

		c.Attempts = append(c.Attempts, challenge.Attempt{
			UserID:    u.ID,
			Completed: true,
			Timestamp: now,
		})
		c.Status = challenge.StatusCompleted
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	if !outcome.Applied {
		return outcome, nil
	}

	e.state.Commit(ctx,
		persistence.KindUsers,
		persistence.KindTeams,
		persistence.KindChallenges,
		persistence.KindXPEvents,
		persistence.KindNotifications,
	)
	e.notifs.Dispatch(created...)
	return outcome, nil
}

// ExpireChallenges flips running challenges whose window has passed to
// expired. Returns how many were expired; driven by a ticker in main.
func (e *EngineService) ExpireChallenges(ctx context.Context) int {
	expired := 0

	e.state.Update(func(s *AppState) error {
		now := e.clock.Now()
		for _, c := range s.Challenges {
			if c.Status == challenge.StatusInProgress && c.EndTime != nil && now.After(*c.EndTime) {
				c.Status = challenge.StatusExpired
				expired++
			}
		}
		return nil
	})

	if expired > 0 {
		log.Printf("ExpireChallenges: %d challenge(s) expired", expired)
		e.state.Commit(ctx, persistence.KindChallenges)
	}
	return expired
}

// WeeklyGoal returns the current goal, or the fresh window for this
// week when none is active. Read-only; completions create the real one.
func (e *EngineService) WeeklyGoal() *weeklygoal.WeeklyGoal {
	var goal weeklygoal.WeeklyGoal

	e.state.View(func(s *AppState) {
		now := e.clock.Now()
		if s.WeeklyGoal == nil || s.WeeklyGoal.Expired(now) {
			goal = *weeklygoal.NewForWeek(now, gamification.WeeklyGoal.TargetMissions, gamification.WeeklyGoal.BonusXP)
			return
		}
		goal = *s.WeeklyGoal
	})
	return &goal
}

// ListMissions returns a snapshot of all missions.
func (e *EngineService) ListMissions() []*mission.Mission {
	var out []*mission.Mission
	e.state.View(func(s *AppState) {
		for _, m := range s.Missions {
			copied := *m
			out = append(out, &copied)
		}
	})
	return out
}

// ListChallenges returns a snapshot of all challenges.
func (e *EngineService) ListChallenges() []*challenge.Challenge {
	var out []*challenge.Challenge
	e.state.View(func(s *AppState) {
		for _, c := range s.Challenges {
			copied := *c
			out = append(out, &copied)
		}
	})
	return out
}

// deriveStats builds the badge-evaluation snapshot for a user from the
// current state. Ranking is 1-based by total XP; ties break by id so
// the result is deterministic.
func deriveStats(s *AppState, u *user.User) badge.Stats {
	completed := 0
	teamCompleted := 0
	for _, m := range s.Missions {
		if m.Status != mission.StatusCompleted {
			continue
		}
		if m.AssignedTo == u.ID {
			completed++
		}
		if m.Type == mission.TypeTeam && m.TeamID != "" {
			if t := s.findTeam(m.TeamID); t != nil && t.HasMember(u.ID) {
				teamCompleted++
			}
		}
	}

	return badge.Stats{
		MissionsCompleted: completed,
		Streak:            u.Streak,
		Level:             u.Level,
		Ranking:           rankByXP(s, u.ID),
		TeamMissions:      teamCompleted,
	}
}

func rankByXP(s *AppState, userID string) int {
	type row struct {
		id string
		xp int
	}
	rows := make([]row, 0, len(s.Users))
	for _, u := range s.Users {
		rows = append(rows, row{id: u.ID, xp: u.XP})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].xp != rows[j].xp {
			return rows[i].xp > rows[j].xp
		}
		return rows[i].id < rows[j].id
	})
	for i, r := range rows {
		if r.id == userID {
			return i + 1
		}
	}
	return 0
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
