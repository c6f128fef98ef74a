// Package builder implements the step machine behind the program builder:
// pick a team, walk down to one exercise, configure its sets, then review
// and assign.
package builder

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Step string

const (
	StepTeamSelection     Step = "team-selection"
	StepPhaseSelection    Step = "phase-selection"
	StepBlockSelection    Step = "block-selection"
	StepExerciseSelection Step = "exercise-selection"
	StepSetsConfiguration Step = "sets-configuration"
	StepSummary           Step = "summary"
)

// Steps lists every step in wizard order.
var Steps = []Step{
	StepTeamSelection,
	StepPhaseSelection,
	StepBlockSelection,
	StepExerciseSelection,
	StepSetsConfiguration,
	StepSummary,
}

var (
	ErrWrongStep      = errors.New("action is not valid at the current step")
	ErrStepLocked     = errors.New("step is not unlocked")
	ErrUnknownStep    = errors.New("unknown step")
	ErrEmptySelection = errors.New("selection must not be empty")
)

// StepState is one breadcrumb entry.
type StepState struct {
	Step     Step `json:"step"`
	Unlocked bool `json:"unlocked"`
	Current  bool `json:"current"`
}

// View is a read-only copy of a wizard.
type View struct {
	ID         string      `json:"id"`
	ProgramID  string      `json:"programId"`
	TeamID     string      `json:"teamId,omitempty"`
	PhaseID    string      `json:"phaseId,omitempty"`
	BlockID    string      `json:"blockId,omitempty"`
	ExerciseID string      `json:"exerciseId,omitempty"`
	Current    Step        `json:"current"`
	Steps      []StepState `json:"steps"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Wizard tracks one builder session. It is not safe for concurrent use.
type Wizard struct {
	id        string
	programID string
	current   int
	unlocked  int // highest unlocked step index

	// team, phase, block and exercise ids, indexed by step
	selections [4]string

	createdAt time.Time
	updatedAt time.Time
}

// New starts a wizard for programID at team selection.
func New(id, programID string, now time.Time) *Wizard {
	return &Wizard{id: id, programID: programID, createdAt: now, updatedAt: now}
}

func (w *Wizard) ID() string           { return w.id }
func (w *Wizard) ProgramID() string    { return w.programID }
func (w *Wizard) Current() Step        { return Steps[w.current] }
func (w *Wizard) TeamID() string       { return w.selections[0] }
func (w *Wizard) PhaseID() string      { return w.selections[1] }
func (w *Wizard) BlockID() string      { return w.selections[2] }
func (w *Wizard) ExerciseID() string   { return w.selections[3] }
func (w *Wizard) UpdatedAt() time.Time { return w.updatedAt }

// Unlocked reports whether the breadcrumb for step may be used.
func (w *Wizard) Unlocked(step Step) bool {
	i := indexOf(step)
	return i >= 0 && i <= w.unlocked
}

func (w *Wizard) SelectTeam(teamID string, now time.Time) error {
	return w.selectAt(StepTeamSelection, teamID, now)
}

func (w *Wizard) SelectPhase(phaseID string, now time.Time) error {
	return w.selectAt(StepPhaseSelection, phaseID, now)
}

func (w *Wizard) SelectBlock(blockID string, now time.Time) error {
	return w.selectAt(StepBlockSelection, blockID, now)
}

func (w *Wizard) SelectExercise(exerciseID string, now time.Time) error {
	return w.selectAt(StepExerciseSelection, exerciseID, now)
}

// ConfirmSets finishes set configuration and moves to the summary.
func (w *Wizard) ConfirmSets(now time.Time) error {
	if w.Current() != StepSetsConfiguration {
		return fmt.Errorf("confirm sets at %s: %w", w.Current(), ErrWrongStep)
	}
	w.advance(now)
	return nil
}

// Back jumps to an earlier unlocked step. Selections are kept until a new
// choice is made at that step.
func (w *Wizard) Back(step Step, now time.Time) error {
	i := indexOf(step)
	switch {
	case i < 0:
		return fmt.Errorf("%q: %w", step, ErrUnknownStep)
	case i > w.unlocked:
		return fmt.Errorf("%s: %w", step, ErrStepLocked)
	case i > w.current:
		return fmt.Errorf("back to %s from %s: %w", step, w.Current(), ErrWrongStep)
	}
	w.current = i
	w.updatedAt = now
	return nil
}

// ReadyToAssign reports whether the wizard reached the summary with a team.
func (w *Wizard) ReadyToAssign() bool {
	return w.Current() == StepSummary && w.TeamID() != ""
}

func (w *Wizard) View() View {
	v := View{
		ID:         w.id,
		ProgramID:  w.programID,
		TeamID:     w.TeamID(),
		PhaseID:    w.PhaseID(),
		BlockID:    w.BlockID(),
		ExerciseID: w.ExerciseID(),
		Current:    w.Current(),
		Steps:      make([]StepState, len(Steps)),
		CreatedAt:  w.createdAt,
		UpdatedAt:  w.updatedAt,
	}
	for i, s := range Steps {
		v.Steps[i] = StepState{Step: s, Unlocked: i <= w.unlocked, Current: i == w.current}
	}
	return v
}

// selectAt records a choice at step and moves forward. Choosing again at an
// earlier step relocks and clears everything after it.
func (w *Wizard) selectAt(step Step, id string, now time.Time) error {
	id = strings.TrimSpace(id)
	if w.Current() != step {
		return fmt.Errorf("select at %s while at %s: %w", step, w.Current(), ErrWrongStep)
	}
	if id == "" {
		return fmt.Errorf("%s: %w", step, ErrEmptySelection)
	}
	i := w.current
	w.selections[i] = id
	for j := i + 1; j < len(w.selections); j++ {
		w.selections[j] = ""
	}
	w.unlocked = i
	w.advance(now)
	return nil
}

func (w *Wizard) advance(now time.Time) {
	w.current++
	if w.current > w.unlocked {
		w.unlocked = w.current
	}
	w.updatedAt = now
}

func indexOf(step Step) int {
	for i, s := range Steps {
		if s == step {
			return i
		}
	}
	return -1
}
