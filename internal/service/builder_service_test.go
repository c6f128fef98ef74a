package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/program-builder/internal/builder"
	"alcyxob/program-builder/internal/program"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderSessionWalkAndAssign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := seedScenario(t, f)
	tree, err := f.programSvc.GetProgramTree(ctx, p.ID)
	require.NoError(t, err)
	warm := tree.Phases[1]

	v, err := f.builderSvc.Start(ctx, p.ID)
	require.NoError(t, err)
	id := v.ID
	assert.Equal(t, builder.StepTeamSelection, v.Current)

	_, err = f.builderSvc.SelectTeam(ctx, id, "team-7")
	require.NoError(t, err)
	_, err = f.builderSvc.SelectPhase(ctx, id, warm.Phase.ID)
	require.NoError(t, err)
	_, err = f.builderSvc.SelectBlock(ctx, id, warm.Blocks[0].Block.ID)
	require.NoError(t, err)
	_, err = f.builderSvc.SelectExercise(ctx, id, warm.Blocks[0].Exercises[0].Exercise.ID)
	require.NoError(t, err)

	// Sets added while the session is open are saved right away.
	_, err = f.programSvc.AddSet(ctx, p.ID, 0, warm.Blocks[0].Exercises[0].Exercise.ID,
		program.SetInput{SetNumber: 2, Reps: intPtr(12)})
	require.NoError(t, err)

	_, err = f.builderSvc.Assign(ctx, id)
	assert.ErrorIs(t, err, ErrNotReadyToAssign)

	v, err = f.builderSvc.ConfirmSets(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, builder.StepSummary, v.Current)

	got, err := f.assignSvc.GetTeamAssignment(ctx, "team-7")
	require.NoError(t, err)
	assert.Nil(t, got, "nothing is assigned before the summary step commits")

	a, err := f.builderSvc.Assign(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, p.ID, a.ProgramID)
	assert.Len(t, a.ExerciseSets, 2)

	_, err = f.builderSvc.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestBuilderRejectsSelectionsOutsideScope(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := seedScenario(t, f)
	tree, _ := f.programSvc.GetProgramTree(ctx, p.ID)
	mainSet, warm := tree.Phases[0], tree.Phases[1]

	v, err := f.builderSvc.Start(ctx, p.ID)
	require.NoError(t, err)

	_, err = f.builderSvc.SelectTeam(ctx, v.ID, "team-404")
	assert.ErrorIs(t, err, ErrTeamNotFound)
	_, err = f.builderSvc.SelectTeam(ctx, v.ID, "team-7")
	require.NoError(t, err)

	_, err = f.builderSvc.SelectPhase(ctx, v.ID, "foreign-phase")
	assert.ErrorIs(t, err, program.ErrValidation)

	_, err = f.builderSvc.SelectPhase(ctx, v.ID, mainSet.Phase.ID)
	require.NoError(t, err)
	// The Mobility block hangs off Warm Up, not Main Set.
	_, err = f.builderSvc.SelectBlock(ctx, v.ID, warm.Blocks[0].Block.ID)
	assert.ErrorIs(t, err, program.ErrValidation)

	_, err = f.builderSvc.Back(ctx, v.ID, builder.StepSummary)
	assert.ErrorIs(t, err, builder.ErrStepLocked)

	back, err := f.builderSvc.Back(ctx, v.ID, builder.StepPhaseSelection)
	require.NoError(t, err)
	assert.Equal(t, builder.StepPhaseSelection, back.Current)
}

func TestBuilderSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.program(t, "Wrist")

	_, err := f.builderSvc.Start(ctx, "missing")
	assert.ErrorIs(t, err, ErrProgramNotFound)

	v, err := f.builderSvc.Start(ctx, p.ID)
	require.NoError(t, err)
	got, err := f.builderSvc.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ProgramID)

	require.NoError(t, f.builderSvc.Discard(ctx, v.ID))
	assert.ErrorIs(t, f.builderSvc.Discard(ctx, v.ID), ErrSessionNotFound)
}

func TestBuilderSessionsExpireWhenIdle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.program(t, "Elbow")

	svc := f.builderSvc.(*builderService)
	clock := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	v, err := svc.Start(ctx, p.ID)
	require.NoError(t, err)

	clock = clock.Add(DefaultSessionIdleTimeout + time.Minute)
	_, err = svc.Get(ctx, v.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestBuilderStartSkipsBusySessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.program(t, "Shoulder")

	svc := f.builderSvc.(*builderService)
	clock := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	busy, err := svc.Start(ctx, p.ID)
	require.NoError(t, err)

	// Hold the session as a slow assign would.
	svc.mu.Lock()
	sess := svc.sessions[busy.ID]
	svc.mu.Unlock()
	sess.mu.Lock()

	clock = clock.Add(DefaultSessionIdleTimeout + time.Minute)
	started := make(chan error, 1)
	go func() {
		_, err := svc.Start(ctx, p.ID)
		started <- err
	}()
	select {
	case err := <-started:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		sess.mu.Unlock()
		t.Fatal("Start blocked on a session in use")
	}

	svc.mu.Lock()
	_, kept := svc.sessions[busy.ID]
	svc.mu.Unlock()
	assert.True(t, kept, "a session in use is not swept")
	sess.mu.Unlock()
}
