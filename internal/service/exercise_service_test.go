package service

import (
	"context"
	"testing"

	"alcyxob/program-builder/internal/domain"
	"alcyxob/program-builder/internal/program"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExerciseServiceCreateAndList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ex, err := f.exerciseSvc.CreateExercise(ctx, ExerciseInput{
		Name:         "Glute Bridge",
		MuscleGroups: []string{"Glutes", " "},
		Equipment:    nil,
		Difficulty:   "Beginner",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DifficultyBeginner, ex.Difficulty)
	assert.Equal(t, []string{"Glutes"}, ex.MuscleGroups)
	assert.NotNil(t, ex.Equipment)

	_, err = f.exerciseSvc.CreateExercise(ctx, ExerciseInput{Name: "Plank", Difficulty: "expert"})
	assert.ErrorIs(t, err, program.ErrValidation)
	_, err = f.exerciseSvc.CreateExercise(ctx, ExerciseInput{Name: ""})
	assert.ErrorIs(t, err, program.ErrValidation)

	_, err = f.exerciseSvc.CreateExercise(ctx, ExerciseInput{ID: ex.ID, Name: "Dup"})
	assert.ErrorIs(t, err, program.ErrValidation)

	got, err := f.exerciseSvc.GetExerciseByID(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, "Glute Bridge", got.Name)
	_, err = f.exerciseSvc.GetExerciseByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrExerciseNotFound)

	all, err := f.exerciseSvc.ListExercises(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
