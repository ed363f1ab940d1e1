package nav_test

import (
	"math"
	"strings"
	"testing"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/k-amith1610/geocity-sub000/internal/core/nav"
)

// turnLeg is a 1000 m leg whose first step ends 280 m in with a left turn,
// so fixes early in the first step stay nearest to its start while
// approaching the turn.
func turnLeg() domain.Leg {
	leg := eastLeg(1000, []float64{280, 580}, []string{
		"Head east on Gran Via",
		"Turn left onto Elm St",
		"Turn right onto Askao Kalea",
	})
	leg.Steps[1].Maneuver = domain.ManeuverTurnLeft
	leg.Steps[2].Maneuver = domain.ManeuverTurnRight
	return leg
}

func selectAt(t *testing.T, leg domain.Leg, traveledMeters float64) nav.Selection {
	t.Helper()
	fix := fixAt(traveledMeters)
	return nav.SelectInstruction(leg, fix, nav.NearestStep(leg, fix.Location), nav.DefaultPolicy())
}

func TestSelectInstruction_SurfacesUpcomingTurn(t *testing.T) {
	leg := turnLeg()

	// 30 m in: 250 m from the turn, inside the 300 m surfacing radius.
	sel := selectAt(t, leg, 30)
	if sel.Instruction == nil {
		t.Fatal("expected an instruction")
	}
	if sel.UpcomingIndex != 1 {
		t.Fatalf("expected upcoming step 1, got %d", sel.UpcomingIndex)
	}
	if sel.Instruction.Maneuver != domain.ManeuverTurnLeft {
		t.Errorf("expected turn-left, got %s", sel.Instruction.Maneuver)
	}
	if math.Abs(sel.Instruction.DistanceMeters-250) > 2 {
		t.Errorf("expected ~250 m countdown, got %.1f", sel.Instruction.DistanceMeters)
	}
	if sel.Instruction.Text != "left onto Elm St" {
		t.Errorf("unexpected text %q", sel.Instruction.Text)
	}
}

func TestSelectInstruction_ContinueOutsideSurfacingRadius(t *testing.T) {
	// A long first step: 100 m in, the next step start is 600 m away.
	leg := eastLeg(2000, []float64{700}, []string{"Head east on Gran Via", "Turn left onto Elm St"})

	sel := selectAt(t, leg, 100)
	if sel.Instruction == nil {
		t.Fatal("expected an instruction")
	}
	if sel.UpcomingIndex != -1 {
		t.Fatalf("expected no upcoming step, got %d", sel.UpcomingIndex)
	}
	if sel.Instruction.Text != "Continue Head east on Gran Via" {
		t.Errorf("unexpected text %q", sel.Instruction.Text)
	}
	if sel.Instruction.DistanceMeters != 0 {
		t.Errorf("expected 0 distance on continue, got %.1f", sel.Instruction.DistanceMeters)
	}
	if sel.Instruction.Maneuver != domain.ManeuverStraight {
		t.Errorf("expected straight, got %s", sel.Instruction.Maneuver)
	}
}

func TestSelectInstruction_LastStepContinues(t *testing.T) {
	leg := turnLeg()

	// Well into the last step: nothing upcoming, continue phrasing, and the
	// redundant leading "Turn" is dropped.
	sel := selectAt(t, leg, 700)
	if sel.Instruction == nil {
		t.Fatal("expected an instruction")
	}
	if sel.UpcomingIndex != -1 {
		t.Fatalf("expected no upcoming step, got %d", sel.UpcomingIndex)
	}
	if !strings.HasPrefix(sel.Instruction.Text, "Continue ") {
		t.Errorf("expected continue phrasing, got %q", sel.Instruction.Text)
	}
}

func TestSelectInstruction_NoSteps(t *testing.T) {
	leg := domain.Leg{StartLocation: eastPoint(0), EndLocation: eastPoint(1000)}

	sel := selectAt(t, leg, 500)
	if sel.Instruction != nil {
		t.Errorf("expected nil instruction for a stepless leg, got %+v", sel.Instruction)
	}
	if sel.StepIndex != -1 {
		t.Errorf("expected step index -1, got %d", sel.StepIndex)
	}
}

func TestCleanInstruction(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Turn left onto Elm St", "left onto Elm St"},
		{"Turn <b>right</b> onto Askao Kalea", "right onto Askao Kalea"},
		{"Head  east \n on Gran Via", "Head east on Gran Via"},
		{"Merge onto A-8 toward Bilbao &amp; Barakaldo", "Merge onto A-8 toward Bilbao & Barakaldo"},
		{"<div>Continue straight</div>", "Continue straight"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := nav.CleanInstruction(tc.in); got != tc.want {
			t.Errorf("CleanInstruction(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
