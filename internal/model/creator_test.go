package model

import (
	"testing"
	"time"
)

func TestCreator_LastSync(t *testing.T) {
	synced := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		value    string
		expected time.Time
	}{
		{"", time.Time{}},
		{"not a time", time.Time{}},
		{synced.Format(time.RFC3339), synced},
	}

	for _, test := range tests {
		c := Creator{Mid: "1", LastSyncTime: test.value}
		if got := c.LastSync(); !got.Equal(test.expected) {
			t.Errorf("LastSync() with %q = %v, expected %v", test.value, got, test.expected)
		}
	}
}

func TestCreator_DisplayName(t *testing.T) {
	if got := (Creator{Mid: "42"}).DisplayName(); got != "42" {
		t.Errorf("Expected mid fallback, got %q", got)
	}
	if got := (Creator{Mid: "42", Name: "up"}).DisplayName(); got != "up" {
		t.Errorf("Expected name, got %q", got)
	}
}
