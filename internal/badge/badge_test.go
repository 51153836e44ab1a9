package badge_test

import (
	"reflect"
	"testing"

	"academiaQuestAPI/internal/badge"
)

func TestEvaluate_FirstMission(t *testing.T) {
	got := badge.Evaluate(nil, badge.Stats{MissionsCompleted: 1})
	want := []string{"b1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Evaluate = %v, want %v", got, want)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	stats := badge.Stats{MissionsCompleted: 12, Streak: 8}

	first := badge.Evaluate(nil, stats)
	want := []string{"b1", "b2", "b3"}
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("first evaluation = %v, want %v", first, want)
	}

	owned := append([]string(nil), first...)
	second := badge.Evaluate(owned, stats)
	if len(second) != 0 {
		t.Errorf("second evaluation with unchanged stats = %v, want none", second)
	}
}

func TestEvaluate_CatalogOrder(t *testing.T) {
	// Everything unlocks at once; the result must follow catalog order.
	stats := badge.Stats{
		MissionsCompleted: 50,
		Streak:            30,
		Level:             25,
		Ranking:           1,
		TeamMissions:      5,
	}
	got := badge.Evaluate(nil, stats)
	want := []string{"b1", "b2", "b3", "b4", "b5", "b6", "b7", "b8"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Evaluate = %v, want %v", got, want)
	}
}

func TestEvaluate_RankingSkippedWhenUnavailable(t *testing.T) {
	got := badge.Evaluate(nil, badge.Stats{Ranking: 0})
	if len(got) != 0 {
		t.Errorf("ranking badges unlocked with no ranking: %v", got)
	}
}

func TestEvaluate_RankingPositionSemantics(t *testing.T) {
	got := badge.Evaluate(nil, badge.Stats{Ranking: 10})
	if !reflect.DeepEqual(got, []string{"b7"}) {
		t.Errorf("position 10 should unlock only b7, got %v", got)
	}

	got = badge.Evaluate(nil, badge.Stats{Ranking: 11})
	if len(got) != 0 {
		t.Errorf("position 11 should unlock nothing, got %v", got)
	}

	got = badge.Evaluate(nil, badge.Stats{Ranking: 1})
	if !reflect.DeepEqual(got, []string{"b7", "b8"}) {
		t.Errorf("position 1 should unlock b7 and b8, got %v", got)
	}
}

func TestEvaluate_ThresholdBoundaries(t *testing.T) {
	if got := badge.Evaluate(nil, badge.Stats{Streak: 6}); len(got) != 0 {
		t.Errorf("streak 6 should unlock nothing, got %v", got)
	}
	if got := badge.Evaluate(nil, badge.Stats{Streak: 7}); !reflect.DeepEqual(got, []string{"b2"}) {
		t.Errorf("streak 7 should unlock b2, got %v", got)
	}
}

func TestByID(t *testing.T) {
	b, ok := badge.ByID("b6")
	if !ok {
		t.Fatal("b6 not found")
	}
	if b.Title != "Collaborator" {
		t.Errorf("b6 title = %q", b.Title)
	}
	if _, ok := badge.ByID("nope"); ok {
		t.Error("unknown id resolved")
	}
}
