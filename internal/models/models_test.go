package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestNewModuleProgress(t *testing.T) {
	p := NewModuleProgress("user-1", "course-1", "mod-1", 42.5)

	if p.ID == uuid.Nil {
		t.Error("Progress ID not set")
	}
	if p.LastTimestampSeconds != 42.5 {
		t.Errorf("LastTimestampSeconds = %v, want 42.5", p.LastTimestampSeconds)
	}
	if p.Completed {
		t.Error("new progress should not be completed")
	}
	if p.CompletedAt != nil {
		t.Error("CompletedAt should be nil")
	}
}

func TestInteractionPoint_HidesAnswer(t *testing.T) {
	p := InteractionPoint{
		ID:               "q1",
		ModuleID:         "mod-1",
		TimestampSeconds: 10,
		Question:         "Pick one",
		Options:          []string{"a", "b"},
		CorrectOption:    "b",
		Feedback:         "Review the intro",
	}

	if !p.IsCorrect("b") || p.IsCorrect("a") {
		t.Error("IsCorrect() returned the wrong verdict")
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, hidden := range []string{"CorrectOption", "correct_option", "Feedback", "feedback"} {
		if _, ok := decoded[hidden]; ok {
			t.Errorf("JSON exposes %s", hidden)
		}
	}
}

func TestModule_HasVideo(t *testing.T) {
	tests := []struct {
		name     string
		videoURL string
		want     bool
	}{
		{"With video", "https://cdn.example.com/a.mp4", true},
		{"Without video", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModule("mod-1", "course-1", "Intro", 1, tt.videoURL)
			if got := m.HasVideo(); got != tt.want {
				t.Errorf("HasVideo() = %v, want %v", got, tt.want)
			}
		})
	}
}
