package domain

import (
	"errors"
	"testing"
)

func TestParseFeedbackAction(t *testing.T) {
	valid := []string{"clicked", "dismissed", "added_to_library", "started_reading"}
	for _, raw := range valid {
		action, err := ParseFeedbackAction(raw)
		if err != nil {
			t.Errorf("%s: unexpected error %v", raw, err)
		}
		if string(action) != raw {
			t.Errorf("%s: parsed as %s", raw, action)
		}
	}

	for _, raw := range []string{"", "purchased", "CLICKED"} {
		if _, err := ParseFeedbackAction(raw); !errors.Is(err, ErrInvalidAction) {
			t.Errorf("%q: expected ErrInvalidAction, got %v", raw, err)
		}
	}
}
