package player

import (
	"errors"
	"fmt"
	"testing"
)

func TestContent_Validate(t *testing.T) {
	valid := func() Content { return quizContent("mod_01") }

	tests := []struct {
		name       string
		mutate     func(c *Content)
		wantErr    bool
		wantReason ContentReason
	}{
		{"Valid", func(c *Content) {}, false, 0},
		{"No checkpoints", func(c *Content) { c.Checkpoints = nil }, false, 0},
		{"Missing module", func(c *Content) { c.ModuleID = "" }, true, ReasonMissingModule},
		{"Missing video", func(c *Content) { c.VideoURL = "" }, true, ReasonMissingVideo},
		{"Empty checkpoint id", func(c *Content) { c.Checkpoints[0].ID = "" }, true, ReasonInvalidCheckpoint},
		{"Negative timestamp", func(c *Content) { c.Checkpoints[0].TriggerTimestamp = -1 }, true, ReasonInvalidCheckpoint},
		{"No options", func(c *Content) { c.Checkpoints[0].Options = nil }, true, ReasonInvalidCheckpoint},
		{"Repeated option", func(c *Content) { c.Checkpoints[0].Options = []string{"a", "a"} }, true, ReasonInvalidCheckpoint},
		{
			"Duplicate id",
			func(c *Content) { c.Checkpoints = append(c.Checkpoints, c.Checkpoints[0]) },
			true,
			ReasonInvalidCheckpoint,
		},
		{
			"Shared trigger timestamp",
			func(c *Content) {
				c.Checkpoints = append(c.Checkpoints, Checkpoint{ID: "q2", TriggerTimestamp: 10, Options: []string{"yes", "no"}})
			},
			false,
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}

			var contentErr *ContentError
			if !errors.As(err, &contentErr) {
				t.Fatalf("Validate() error = %v, want *ContentError", err)
			}
			if contentErr.Reason != tt.wantReason {
				t.Errorf("Reason = %v, want %v", contentErr.Reason, tt.wantReason)
			}
		})
	}
}

func TestContentReason_String(t *testing.T) {
	tests := []struct {
		reason   ContentReason
		expected string
	}{
		{ReasonMissingModule, "missing_module"},
		{ReasonMissingVideo, "missing_video"},
		{ReasonInvalidCheckpoint, "invalid_checkpoint"},
		{ReasonLoadFailed, "load_failed"},
		{ContentReason(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.reason.String(); got != tt.expected {
				t.Errorf("ContentReason.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestContentError_Unwrap(t *testing.T) {
	cause := errors.New("record not found")
	err := fmt.Errorf("load module: %w", NewContentError(ReasonLoadFailed, "module lookup failed", cause))

	if !IsContentError(err) {
		t.Error("IsContentError() = false for wrapped ContentError")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is() did not find the cause")
	}
	if IsContentError(cause) {
		t.Error("IsContentError() = true for plain error")
	}
}

func TestState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateIdle, StateQuizActive, true},
		{StateQuizActive, StateIdle, true},
		{StateIdle, StateIdle, false},
		{StateQuizActive, StateQuizActive, false},
		{State("paused"), StateIdle, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}

	if State("paused").IsValid() {
		t.Error("IsValid() = true for unknown state")
	}
}

func TestScheduler_Due(t *testing.T) {
	s := NewScheduler([]Checkpoint{
		{ID: "b", TriggerTimestamp: 30, Options: []string{"x"}},
		{ID: "a", TriggerTimestamp: 10, Options: []string{"x"}},
		{ID: "a2", TriggerTimestamp: 10, Options: []string{"x"}},
	}, nil)

	tests := []struct {
		name     string
		from, to int
		wantID   string
	}{
		{"Before first", 0, 9, ""},
		{"Exact second", 9, 10, "a"},
		{"Same second tick", 10, 10, "a"},
		{"Stepped over", 8, 12, "a"},
		{"Backward move", 40, 20, ""},
		{"Between checkpoints", 11, 29, ""},
		{"Second checkpoint", 29, 30, "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp, ok := s.Due(tt.from, tt.to)
			if tt.wantID == "" {
				if ok {
					t.Errorf("Due(%d, %d) = %s, want none", tt.from, tt.to, cp.ID)
				}
				return
			}
			if !ok || cp.ID != tt.wantID {
				t.Errorf("Due(%d, %d) = %q (%v), want %q", tt.from, tt.to, cp.ID, ok, tt.wantID)
			}
		})
	}

	s.Consume("a")
	if cp, ok := s.Due(9, 10); !ok || cp.ID != "a2" {
		t.Errorf("after consuming a, Due(9, 10) = %q, want a2", cp.ID)
	}
	if !s.IsConsumed("a") || s.IsConsumed("b") {
		t.Error("IsConsumed() reports wrong membership")
	}
}

func TestTracker_Advance(t *testing.T) {
	tr := NewTracker(5)
	tr.SetDuration(12)

	steps := []struct {
		pos        float64
		wantReport bool
		wantMax    float64
	}{
		{0.2, true, 0.2},
		{3.9, false, 3.9},
		{5.1, true, 5.1},
		{5.6, false, 5.6},
		{2.0, false, 5.6},
		{5.0, false, 5.6},
		{10.0, true, 10.0},
		{15.0, false, 12.0},
	}

	for _, step := range steps {
		if got := tr.Advance(step.pos); got != step.wantReport {
			t.Errorf("Advance(%v) report = %v, want %v", step.pos, got, step.wantReport)
		}
		if tr.MaxWatched() != step.wantMax {
			t.Errorf("after Advance(%v) MaxWatched = %v, want %v", step.pos, tr.MaxWatched(), step.wantMax)
		}
		if tr.Current() > tr.MaxWatched() {
			t.Errorf("Current %v exceeds MaxWatched %v", tr.Current(), tr.MaxWatched())
		}
	}
}

func TestReporter_InitialPosition(t *testing.T) {
	r := &Reporter{}

	pos, ok := r.InitialPosition(42)
	if !ok || pos != 42 {
		t.Fatalf("InitialPosition(42) = %v, %v; want 42, true", pos, ok)
	}
	if _, ok := r.InitialPosition(42); ok {
		t.Error("InitialPosition() applied the resume point twice")
	}

	fresh := &Reporter{}
	if _, ok := fresh.InitialPosition(0); ok {
		t.Error("InitialPosition(0) requested a seek")
	}
}
