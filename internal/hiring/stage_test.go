package hiring_test

import (
	"testing"

	"talentd/internal/hiring"
)

func TestCanTransitionForwardPath(t *testing.T) {
	path := []hiring.Stage{
		hiring.StageApplied,
		hiring.StageScreening,
		hiring.StageInterview,
		hiring.StageOffer,
		hiring.StageHired,
	}
	for i := 0; i < len(path)-1; i++ {
		if !hiring.CanTransition(path[i], path[i+1]) {
			t.Errorf("expected %s -> %s to be allowed", path[i], path[i+1])
		}
	}
}

func TestCanTransitionRejectFromAnyActiveStage(t *testing.T) {
	for _, from := range []hiring.Stage{
		hiring.StageApplied,
		hiring.StageScreening,
		hiring.StageInterview,
		hiring.StageOffer,
	} {
		if !hiring.CanTransition(from, hiring.StageRejected) {
			t.Errorf("expected %s -> REJECTED to be allowed", from)
		}
	}
}

func TestCanTransitionDisallowed(t *testing.T) {
	cases := []struct {
		from, to hiring.Stage
	}{
		{hiring.StageApplied, hiring.StageInterview},
		{hiring.StageApplied, hiring.StageOffer},
		{hiring.StageApplied, hiring.StageHired},
		{hiring.StageScreening, hiring.StageApplied},
		{hiring.StageScreening, hiring.StageOffer},
		{hiring.StageInterview, hiring.StageScreening},
		{hiring.StageInterview, hiring.StageHired},
		{hiring.StageOffer, hiring.StageInterview},
		{hiring.StageApplied, hiring.StageApplied},
		{hiring.StageOffer, hiring.StageOffer},
		{hiring.Stage("UNKNOWN"), hiring.StageScreening},
		{hiring.StageApplied, hiring.Stage("UNKNOWN")},
	}
	for _, tc := range cases {
		if hiring.CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestTerminalStagesHaveNoSuccessors(t *testing.T) {
	for _, from := range []hiring.Stage{hiring.StageHired, hiring.StageRejected} {
		if !from.IsTerminal() {
			t.Errorf("expected %s to be terminal", from)
		}
		for _, to := range hiring.AllStages() {
			if hiring.CanTransition(from, to) {
				t.Errorf("expected no transition out of terminal stage %s, got %s", from, to)
			}
		}
	}
}

func TestParseStage(t *testing.T) {
	cases := []struct {
		input string
		want  hiring.Stage
		ok    bool
	}{
		{"APPLIED", hiring.StageApplied, true},
		{"screening", hiring.StageScreening, true},
		{"  Interview ", hiring.StageInterview, true},
		{"OFFER", hiring.StageOffer, true},
		{"HIRED", hiring.StageHired, true},
		{"REJECTED", hiring.StageRejected, true},
		{"", "", false},
		{"ONBOARDING", "", false},
	}
	for _, tc := range cases {
		got, ok := hiring.ParseStage(tc.input)
		if ok != tc.ok {
			t.Errorf("ParseStage(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("ParseStage(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}
