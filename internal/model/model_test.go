package model

import "testing"

func TestIdeaStatusIsValid(t *testing.T) {
	valid := []IdeaStatus{StatusProposed, StatusAccepted, StatusInProgress, StatusShipped, StatusRejected, StatusArchived}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("IsValid(%q) = false, want true", s)
		}
	}
	for _, s := range []IdeaStatus{"", "open", "closed", "PROPOSED"} {
		if s.IsValid() {
			t.Errorf("IsValid(%q) = true, want false", s)
		}
	}
}

func TestIdeaStatusIsDecided(t *testing.T) {
	if StatusProposed.IsDecided() {
		t.Error("proposed should not be decided")
	}
	for _, s := range []IdeaStatus{StatusAccepted, StatusRejected, StatusShipped, StatusArchived} {
		if !s.IsDecided() {
			t.Errorf("%q should be decided", s)
		}
	}
}

func TestFrameworkIsValid(t *testing.T) {
	for _, f := range []Framework{"", FrameworkDjango, FrameworkExpress, FrameworkFastAPI, FrameworkGeneric} {
		if !f.IsValid() {
			t.Errorf("IsValid(%q) = false, want true", f)
		}
	}
	if Framework("rails").IsValid() {
		t.Error("IsValid(\"rails\") = true, want false")
	}
}

func TestScanStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to ScanStatus
		want     bool
	}{
		{ScanPending, ScanRunning, true},
		{ScanPending, ScanCanceled, true},
		{ScanPending, ScanCompleted, false},
		{ScanPending, ScanFailed, false},
		{ScanRunning, ScanCompleted, true},
		{ScanRunning, ScanFailed, true},
		{ScanRunning, ScanCanceled, false},
		{ScanRunning, ScanPending, false},
		{ScanCompleted, ScanRunning, false},
		{ScanFailed, ScanPending, false},
		{ScanCanceled, ScanRunning, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestScanStatusIsTerminal(t *testing.T) {
	for _, s := range []ScanStatus{ScanCompleted, ScanFailed, ScanCanceled} {
		if !s.IsTerminal() {
			t.Errorf("%q should be terminal", s)
		}
	}
	for _, s := range []ScanStatus{ScanPending, ScanRunning} {
		if s.IsTerminal() {
			t.Errorf("%q should not be terminal", s)
		}
	}
}
