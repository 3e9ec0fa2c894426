package scheduling

import (
	"testing"

	"github.com/clinic/clinic/pkg/apperrors"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"scheduled", "completed", "cancelled", "no_show"} {
		got, err := ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q", s, got)
		}
	}
}

func TestParseStatus_Invalid(t *testing.T) {
	for _, s := range []string{"", "archived", "Scheduled", "no-show", "noshow"} {
		if _, err := ParseStatus(s); !apperrors.IsValidation(err) {
			t.Errorf("ParseStatus(%q): expected validation error, got %v", s, err)
		}
	}
}

func TestCanTransition_AnyToAny(t *testing.T) {
	for _, from := range Statuses() {
		for _, to := range Statuses() {
			if !CanTransition(from, to) {
				t.Errorf("expected %s -> %s to be allowed", from, to)
			}
		}
	}
	if CanTransition(StatusScheduled, "archived") {
		t.Error("transition to an unknown status must be rejected")
	}
}
