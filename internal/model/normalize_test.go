package model_test

import (
	"testing"

	"github.com/Loskoss/Productivity-Tracker/internal/model"
)

func TestCleanAppName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Chrome 119.0.2.1", "Chrome"},
		{"Chrome 120", "Chrome"},
		{"Chrome", "Chrome"},
		{"Notepad.exe", "Notepad"},
		{"Notepad.EXE", "Notepad"},
		{"Safari.app", "Safari"},
		{"Installer.dmg", "Installer"},
		{"Notepad2.exe", "Notepad"},
		{"  Slack  ", "Slack"},
		{"Firefox 121.0.1.app", "Firefox"},
		{"", ""},
	}
	for _, tt := range tests {
		got := model.CleanAppName(tt.raw)
		if got != tt.want {
			t.Errorf("CleanAppName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCleanAppNameIdempotent(t *testing.T) {
	inputs := []string{"Chrome 119.0.2.1", "Notepad.exe", "Safari.app", "Code 1.85", "plain"}
	for _, raw := range inputs {
		once := model.CleanAppName(raw)
		twice := model.CleanAppName(once)
		if once != twice {
			t.Errorf("CleanAppName not idempotent for %q: %q != %q", raw, once, twice)
		}
	}
}
