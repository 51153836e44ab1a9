package services_test

import (
	"context"
	"testing"
	"time"

	"academiaQuestAPI/internal/clock"
	"academiaQuestAPI/internal/event"
	"academiaQuestAPI/internal/persistence"
	"academiaQuestAPI/internal/team"
	"academiaQuestAPI/internal/user"
	"academiaQuestAPI/services"
)

func newTestUserService(t *testing.T) (*services.UserService, *services.StateStore) {
	t.Helper()
	st := services.NewStateStore(persistence.NewMemoryStore())
	err := st.Update(func(s *services.AppState) error {
		s.Users = []*user.User{
			testUser("u1", 1020, 4, "t1"),
			testUser("u2", 5000, 0, ""),
		}
		s.Teams = []*team.Team{
			{ID: "t1", Name: "Test Team", MemberIDs: []string{"u1"}, XPTotal: 1020},
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return services.NewUserService(st, clock.NewFake(testNow)), st
}

func TestCreateUser_Fresh(t *testing.T) {
	svc, _ := newTestUserService(t)

	created, err := svc.CreateUser(context.Background(), &user.CreateUserRequest{
		ClerkID: "clerk_new",
		Name:    "Nora Webb",
		Email:   "nora@example.com",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if created.ID == "" {
		t.Error("no id assigned")
	}
	if created.Level != 0 || created.XP != 0 || created.Streak != 0 {
		t.Errorf("new user not at zero: %+v", created)
	}
	if created.Avatar != "NW" {
		t.Errorf("avatar = %q, want NW", created.Avatar)
	}
	if len(created.Badges) != 0 {
		t.Errorf("new user owns badges: %v", created.Badges)
	}
	if !created.JoinDate.Equal(testNow) {
		t.Errorf("join date = %v", created.JoinDate)
	}
}

func TestCreateUser_IdempotentOnClerkID(t *testing.T) {
	svc, st := newTestUserService(t)
	ctx := context.Background()

	first, err := svc.CreateUser(ctx, &user.CreateUserRequest{ClerkID: "clerk_x", Name: "X"})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := svc.CreateUser(ctx, &user.CreateUserRequest{ClerkID: "clerk_x", Name: "X Again"})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("retry created a new user: %s vs %s", first.ID, second.ID)
	}

	st.View(func(s *services.AppState) {
		count := 0
		for _, u := range s.Users {
			if u.ClerkID == "clerk_x" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("%d users for one clerk id", count)
		}
	})
}

func TestDeleteUserByClerkID(t *testing.T) {
	svc, st := newTestUserService(t)

	if err := svc.DeleteUserByClerkID(context.Background(), "clerk_u1"); err != nil {
		t.Fatalf("DeleteUserByClerkID: %v", err)
	}

	st.View(func(s *services.AppState) {
		for _, u := range s.Users {
			if u.ID == "u1" {
				t.Error("user still present")
			}
		}
		if s.Teams[0].HasMember("u1") {
			t.Error("team still lists the deleted user")
		}
	})

	if err := svc.DeleteUserByClerkID(context.Background(), "clerk_u1"); err == nil {
		t.Error("deleting twice succeeded")
	}
}

func TestGetProfile(t *testing.T) {
	svc, _ := newTestUserService(t)

	profile, err := svc.GetProfile("u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.User.ID != "u1" {
		t.Errorf("user id = %s", profile.User.ID)
	}
	if profile.RankName != "Explorer" {
		t.Errorf("rank = %q", profile.RankName)
	}
	// Level 2 spans [1000, 2250); 1020 total leaves 20 inside it.
	if profile.XPWithinLevel != 20 {
		t.Errorf("xp within level = %d, want 20", profile.XPWithinLevel)
	}
	if profile.XPForNextLevel != 2250 {
		t.Errorf("xp for next level = %d, want 2250", profile.XPForNextLevel)
	}
}

func TestGetStats(t *testing.T) {
	svc, _ := newTestUserService(t)

	stats, err := svc.GetStats("u1")
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalXP != 1020 || stats.Level != 2 || stats.CurrentStreak != 4 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	// u2 holds more XP, so u1 ranks second.
	if stats.Rank != 2 {
		t.Errorf("rank = %d, want 2", stats.Rank)
	}
}

func TestGetBadges_FullCatalogWithStatus(t *testing.T) {
	svc, st := newTestUserService(t)

	st.Update(func(s *services.AppState) error {
		for _, u := range s.Users {
			if u.ID == "u1" {
				u.Badges = []string{"b1", "b3"}
			}
		}
		return nil
	})

	badges, err := svc.GetBadges("u1")
	if err != nil {
		t.Fatalf("GetBadges: %v", err)
	}
	if len(badges) != 8 {
		t.Fatalf("catalog size = %d, want 8", len(badges))
	}
	for _, b := range badges {
		wantUnlocked := b.ID == "b1" || b.ID == "b3"
		if b.Unlocked != wantUnlocked {
			t.Errorf("badge %s unlocked = %v", b.ID, b.Unlocked)
		}
	}
}

func TestGetXPEvents_NewestFirstWithLimit(t *testing.T) {
	svc, st := newTestUserService(t)

	st.Update(func(s *services.AppState) error {
		for i := 0; i < 5; i++ {
			s.XPEvents = append(s.XPEvents, &event.XPEvent{
				ID:        string(rune('a' + i)),
				Type:      event.TypeMissionComplete,
				UserID:    "u1",
				Amount:    100 + i,
				Timestamp: testNow.Add(time.Duration(i) * time.Minute),
			})
		}
		s.XPEvents = append(s.XPEvents, &event.XPEvent{ID: "other", UserID: "u2", Amount: 1})
		return nil
	})

	events := svc.GetXPEvents("u1", 3)
	if len(events) != 3 {
		t.Fatalf("len = %d, want 3", len(events))
	}
	// Appended last means returned first.
	if events[0].Amount != 104 || events[2].Amount != 102 {
		t.Errorf("order wrong: %d, %d", events[0].Amount, events[2].Amount)
	}
	for _, ev := range events {
		if ev.UserID != "u1" {
			t.Errorf("foreign event leaked: %+v", ev)
		}
	}
}
