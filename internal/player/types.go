// Package player implements the guarded playback engine for a single viewer:
// position tracking, forward-seek prevention, timed interaction checkpoints
// that gate playback behind a quiz, and resume/progress reporting.
package player

import (
	"fmt"
	"sort"
)

// Checkpoint is an interaction point authored on a module's timeline.
// Checkpoints are immutable once the module content has been loaded.
type Checkpoint struct {
	ID               string   `json:"id"`
	TriggerTimestamp int      `json:"trigger_timestamp"`
	Question         string   `json:"question"`
	Options          []string `json:"options"`
}

// HasOption reports whether option is one of the checkpoint's choices
func (c Checkpoint) HasOption(option string) bool {
	for _, o := range c.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Content is everything the engine needs to mount a module
type Content struct {
	CourseID    string
	ModuleID    string
	VideoURL    string
	Checkpoints []Checkpoint

	// WatchedHistory is the server-side resume point in seconds.
	WatchedHistory float64

	// Answered lists checkpoint IDs the backend has already recorded as answered.
	Answered []string
}

// Validate checks the content for the problems that would leave the engine
// half-initialised. Duplicate trigger timestamps are allowed (see DuplicateTriggers).
func (c *Content) Validate() error {
	if c.ModuleID == "" {
		return NewContentError(ReasonMissingModule, "module id is required", nil)
	}
	if c.VideoURL == "" {
		return NewContentError(ReasonMissingVideo, fmt.Sprintf("module %s has no video", c.ModuleID), nil)
	}

	seen := make(map[string]bool, len(c.Checkpoints))
	for _, cp := range c.Checkpoints {
		if cp.ID == "" {
			return NewContentError(ReasonInvalidCheckpoint, "checkpoint id is required", nil)
		}
		if seen[cp.ID] {
			return NewContentError(ReasonInvalidCheckpoint, fmt.Sprintf("duplicate checkpoint id %q", cp.ID), nil)
		}
		seen[cp.ID] = true

		if cp.TriggerTimestamp < 0 {
			return NewContentError(ReasonInvalidCheckpoint, fmt.Sprintf("checkpoint %q has a negative timestamp", cp.ID), nil)
		}
		if len(cp.Options) == 0 {
			return NewContentError(ReasonInvalidCheckpoint, fmt.Sprintf("checkpoint %q has no options", cp.ID), nil)
		}
		opts := make(map[string]bool, len(cp.Options))
		for _, o := range cp.Options {
			if opts[o] {
				return NewContentError(ReasonInvalidCheckpoint, fmt.Sprintf("checkpoint %q repeats option %q", cp.ID, o), nil)
			}
			opts[o] = true
		}
	}
	return nil
}

// DuplicateTriggers returns trigger timestamps shared by more than one checkpoint,
// mapped to the checkpoint IDs in authored order. Only the first of each group can fire.
func (c *Content) DuplicateTriggers() map[int][]string {
	byTrigger := make(map[int][]string)
	for _, cp := range c.Checkpoints {
		byTrigger[cp.TriggerTimestamp] = append(byTrigger[cp.TriggerTimestamp], cp.ID)
	}
	dups := make(map[int][]string)
	for ts, ids := range byTrigger {
		if len(ids) > 1 {
			dups[ts] = ids
		}
	}
	return dups
}

// Verdict is the answer validator's ruling on a submission
type Verdict struct {
	IsCorrect bool   `json:"is_correct"`
	Message   string `json:"message"`
}

// CommandKind names an instruction for the native playback handle
type CommandKind string

// Media commands
const (
	CommandPlay  CommandKind = "play"
	CommandPause CommandKind = "pause"
	CommandSeek  CommandKind = "seek"
)

// Command is a single instruction issued to the native playback handle
type Command struct {
	Kind     CommandKind `json:"kind"`
	Position float64     `json:"position"`
}

// QuizView is the externally visible part of the active quiz
type QuizView struct {
	CheckpointID   string   `json:"checkpoint_id"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	SelectedOption string   `json:"selected_option,omitempty"`
	Result         *Verdict `json:"result,omitempty"`
	Failure        string   `json:"failure,omitempty"`
	Submitting     bool     `json:"submitting"`
	Attempts       int      `json:"attempts"`
}

// Snapshot is a point-in-time copy of the engine state
type Snapshot struct {
	CourseID           string    `json:"course_id"`
	ModuleID           string    `json:"module_id"`
	VideoURL           string    `json:"video_url"`
	State              State     `json:"state"`
	CurrentPosition    float64   `json:"current_position"`
	MaxWatchedPosition float64   `json:"max_watched_position"`
	Duration           float64   `json:"duration_seconds"`
	Playing            bool      `json:"playing"`
	SeekWarning        bool      `json:"seek_warning"`
	Consumed           []string  `json:"consumed_checkpoints"`
	Quiz               *QuizView `json:"quiz,omitempty"`
	Completed          bool      `json:"completed"`
}

// sortedCopy returns the checkpoints ordered by trigger time, keeping authored
// order for equal timestamps.
func sortedCopy(checkpoints []Checkpoint) []Checkpoint {
	out := make([]Checkpoint, len(checkpoints))
	copy(out, checkpoints)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TriggerTimestamp < out[j].TriggerTimestamp
	})
	return out
}
