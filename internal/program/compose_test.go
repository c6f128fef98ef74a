package program

import (
	"testing"
	"time"

	"alcyxob/program-builder/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeIsIdempotent(t *testing.T) {
	s, _, _ := buildTwoPhaseStore(t)
	p := domain.Program{ID: "P", Name: "Knee rehab"}
	before := s.Clone()

	first := Compose(p, s)
	second := Compose(p, s)

	assert.Empty(t, cmp.Diff(first, second))
	assert.Empty(t, cmp.Diff(before.ProgramPhases, s.ProgramPhases), "compose must not touch the store")
}

func TestComposeSortsByOrderAndSkipsTombstones(t *testing.T) {
	s := NewStore()
	s.Phases["ph-a"] = domain.Phase{ID: "ph-a", Title: "A"}
	s.Phases["ph-b"] = domain.Phase{ID: "ph-b", Title: "B"}
	s.Blocks["bl-1"] = domain.Block{ID: "bl-1", Name: "one"}
	s.ProgramPhases = []domain.ProgramPhase{
		{ProgramID: "P", PhaseID: "ph-b", Order: 1},
		{ProgramID: "P", PhaseID: "ghost", Order: 2},
		{ProgramID: "P", PhaseID: "ph-a", Order: 0},
		{ProgramID: "Q", PhaseID: "ph-a", Order: 0},
	}
	s.PhaseBlocks = []domain.PhaseBlock{
		{PhaseID: "ph-a", BlockID: "missing-block", Order: 0},
		{PhaseID: "ph-a", BlockID: "bl-1", Order: 1},
	}

	tree := Compose(domain.Program{ID: "P"}, s)

	require.Len(t, tree.Phases, 2)
	assert.Equal(t, "ph-a", tree.Phases[0].Phase.ID)
	assert.Equal(t, "ph-b", tree.Phases[1].Phase.ID)
	require.Len(t, tree.Phases[0].Blocks, 1)
	assert.Equal(t, "bl-1", tree.Phases[0].Blocks[0].Block.ID)
	assert.NotNil(t, tree.Phases[1].Blocks)
}

func TestSummarize(t *testing.T) {
	s, _, _ := buildTwoPhaseStore(t)
	stats := Summarize(Compose(domain.Program{ID: "P"}, s))

	assert.Equal(t, "P", stats.ProgramID)
	assert.Equal(t, 2, stats.PhaseCount)
	assert.Equal(t, 4, stats.BlockCount)
	assert.Equal(t, 8, stats.ExerciseCount)
	assert.Equal(t, 24, stats.SetCount)
}

func TestSnapshotExcludesOtherPrograms(t *testing.T) {
	s := NewStore()
	own, _ := s.AddPhase("P", "Own")
	ownBlock, _ := s.AddBlock(own.ID, "own block", false)
	ownEx, _ := s.AddExercise(ownBlock.ID, "lib-1", nil)
	_, _ = s.AddSet(ownEx.ID, SetInput{SetNumber: 1, Reps: intPtr(5)})

	other, _ := s.AddPhase("Q", "Other")
	otherBlock, _ := s.AddBlock(other.ID, "other block", true)
	otherEx, _ := s.AddExercise(otherBlock.ID, "lib-2", nil)
	_, _ = s.AddSet(otherEx.ID, SetInput{SetNumber: 1, Time: intPtr(45)})

	p := &domain.Program{ID: "P"}
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a, err := Snapshot(p, s, "team-1", "asg-1", at)
	require.NoError(t, err)

	assert.Equal(t, "asg-1", a.ID)
	assert.Equal(t, "team-1", a.TeamID)
	assert.Equal(t, "P", a.ProgramID)
	assert.Equal(t, at, a.AssignedAt)
	for _, r := range a.ProgramPhases {
		assert.Equal(t, "P", r.ProgramID)
	}
	require.Len(t, a.PhaseBlocks, 1)
	assert.Equal(t, own.ID, a.PhaseBlocks[0].PhaseID)
	require.Len(t, a.BlockExercises, 1)
	assert.Equal(t, ownBlock.ID, a.BlockExercises[0].BlockID)
	require.Len(t, a.ExerciseSets, 1)
	assert.Equal(t, ownEx.ID, a.ExerciseSets[0].ExerciseID)
	assert.Len(t, a.Entities.Phases, 1)
	assert.Len(t, a.Entities.Blocks, 1)
}

func TestSnapshotValidation(t *testing.T) {
	s := NewStore()
	_, err := Snapshot(nil, s, "team-1", "a", time.Now())
	assert.ErrorIs(t, err, ErrValidation)

	_, err = Snapshot(&domain.Program{ID: "P"}, s, "  ", "a", time.Now())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSnapshotOfEmptyProgram(t *testing.T) {
	a, err := Snapshot(&domain.Program{ID: "P"}, NewStore(), "team-1", "a", time.Now())
	require.NoError(t, err)
	assert.NotNil(t, a.ProgramPhases)
	assert.Empty(t, a.ProgramPhases)
	assert.Empty(t, a.ExerciseSets)
}

func TestFromAssignmentRebuildsSameTree(t *testing.T) {
	s, _, _ := buildTwoPhaseStore(t)
	p := domain.Program{ID: "P", Name: "Knee rehab"}
	a, err := Snapshot(&p, s, "team-1", "a", time.Now())
	require.NoError(t, err)

	// Later edits to the live store do not leak into the snapshot.
	phases := s.PhaseIDs("P")
	require.NoError(t, s.DeletePhase(phases[0]))

	rebuilt := Compose(a.Entities.Program, FromAssignment(a))
	original := Compose(p, func() *Store {
		fresh, _, _ := buildTwoPhaseStore(t)
		return fresh
	}())
	assert.Empty(t, cmp.Diff(original, rebuilt))
}
