package weeklygoal_test

import (
	"testing"
	"time"

	"academiaQuestAPI/internal/weeklygoal"
)

func TestNewForWeek_WindowBounds(t *testing.T) {
	// A Wednesday. The window must span the surrounding Sunday-to-Sunday week.
	now := time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)
	g := weeklygoal.NewForWeek(now, 15, 500)

	wantStart := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	if !g.WeekStart.Equal(wantStart) {
		t.Errorf("WeekStart = %v, want %v", g.WeekStart, wantStart)
	}
	if !g.WeekEnd.Equal(wantStart.AddDate(0, 0, 7)) {
		t.Errorf("WeekEnd = %v, want %v", g.WeekEnd, wantStart.AddDate(0, 0, 7))
	}
	if g.Current != 0 || g.Target != 15 || g.XPBonus != 500 {
		t.Errorf("unexpected goal fields: %+v", g)
	}
}

func TestNewForWeek_OnSunday(t *testing.T) {
	sunday := time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC)
	g := weeklygoal.NewForWeek(sunday, 15, 500)

	wantStart := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	if !g.WeekStart.Equal(wantStart) {
		t.Errorf("WeekStart = %v, want %v", g.WeekStart, wantStart)
	}
}

func TestExpired(t *testing.T) {
	now := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	g := weeklygoal.NewForWeek(now, 15, 500)

	if g.Expired(now) {
		t.Error("goal expired inside its own week")
	}
	if g.Expired(g.WeekEnd.Add(-time.Second)) {
		t.Error("goal expired one second before the week end")
	}
	if !g.Expired(g.WeekEnd) {
		t.Error("goal not expired at the week end boundary")
	}
	if !g.Expired(g.WeekEnd.Add(48 * time.Hour)) {
		t.Error("goal not expired after the week end")
	}
}
