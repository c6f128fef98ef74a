package memory

import (
	"context"
	"testing"
	"time"

	"alcyxob/program-builder/internal/domain"
	"alcyxob/program-builder/internal/program"
	"alcyxob/program-builder/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	id, err := repo.Create(ctx, &domain.User{Email: "Ana@clinic.test", Role: domain.RolePhysiologist})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = repo.Create(ctx, &domain.User{Email: "ana@clinic.test", Role: domain.RolePatient})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := repo.GetByEmail(ctx, "ANA@clinic.test")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTeamAddPatientIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewTeamRepository()
	id, err := repo.Create(ctx, &domain.Team{Name: "Knees"})
	require.NoError(t, err)

	require.NoError(t, repo.AddPatient(ctx, id, "pt-1"))
	require.NoError(t, repo.AddPatient(ctx, id, "pt-1"))
	require.NoError(t, repo.AddPatient(ctx, id, "pt-2"))

	team, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"pt-1", "pt-2"}, team.PatientIDs)

	assert.ErrorIs(t, repo.AddPatient(ctx, "missing", "pt-1"), repository.ErrNotFound)
}

func TestProgramStructureVersioning(t *testing.T) {
	ctx := context.Background()
	repo := NewProgramRepository()
	p := &domain.Program{Name: "Shoulder"}
	id, err := repo.Create(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Version)

	s, err := repo.LoadStructure(ctx, id)
	require.NoError(t, err)
	_, err = s.AddPhase(id, "Foundation")
	require.NoError(t, err)

	v, err := repo.SaveStructure(ctx, id, 1, s)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	// A writer still holding version 1 is rejected.
	_, err = repo.SaveStructure(ctx, id, 1, s)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)

	// Version 0 skips the check.
	v, err = repo.SaveStructure(ctx, id, 0, s)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	_, err = repo.SaveStructure(ctx, "missing", 0, s)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProgramStructureIsCopiedOnLoadAndSave(t *testing.T) {
	ctx := context.Background()
	repo := NewProgramRepository()
	id, err := repo.Create(ctx, &domain.Program{Name: "Hip"})
	require.NoError(t, err)

	s, _ := repo.LoadStructure(ctx, id)
	phase, _ := s.AddPhase(id, "Warm Up")
	_, err = repo.SaveStructure(ctx, id, 0, s)
	require.NoError(t, err)

	// Mutating the caller's store after save does not reach the repository.
	_, _ = s.RenamePhase(phase.ID, "Changed")
	// Rows of other programs are not stored under this program.
	_, _ = s.AddPhase("other-program", "Foreign")

	loaded, err := repo.LoadStructure(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Warm Up", loaded.Phases[phase.ID].Title)
	assert.Len(t, loaded.ProgramPhases, 1)
	assert.Len(t, loaded.Phases, 1)
}

func TestAssignmentReplaceKeepsOnePerTeam(t *testing.T) {
	ctx := context.Background()
	repo := NewAssignmentRepository()
	now := time.Now().UTC()

	require.NoError(t, repo.ReplaceForTeam(ctx, &domain.TeamProgramAssignment{ID: "a1", TeamID: "team-7", ProgramID: "A", AssignedAt: now}))
	require.NoError(t, repo.ReplaceForTeam(ctx, &domain.TeamProgramAssignment{ID: "a2", TeamID: "team-7", ProgramID: "B", AssignedAt: now.Add(time.Second)}))
	require.NoError(t, repo.ReplaceForTeam(ctx, &domain.TeamProgramAssignment{ID: "a3", TeamID: "team-8", ProgramID: "A", AssignedAt: now}))

	got, err := repo.GetByTeamID(ctx, "team-7")
	require.NoError(t, err)
	assert.Equal(t, "B", got.ProgramID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a2", all[0].ID)

	byA, err := repo.ListByProgramID(ctx, "A")
	require.NoError(t, err)
	require.Len(t, byA, 1)
	assert.Equal(t, "team-8", byA[0].TeamID)

	_, err = repo.GetByTeamID(ctx, "team-9")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAssignmentIsCopiedOnReadAndWrite(t *testing.T) {
	ctx := context.Background()
	repo := NewAssignmentRepository()
	reps := 10
	in := &domain.TeamProgramAssignment{
		ID:            "a1",
		TeamID:        "team-7",
		ProgramID:     "A",
		ProgramPhases: []domain.ProgramPhase{{ProgramID: "A", PhaseID: "ph-1"}},
		Entities: domain.AssignmentEntities{
			Exercises: []domain.AssignedExercise{{ID: "ae-1", ExerciseID: "ex-1", Equipment: []string{"Band"}}},
			Sets:      []domain.ExerciseSet{{ID: "s-1", SetNumber: 1, Reps: &reps}},
		},
	}
	require.NoError(t, repo.ReplaceForTeam(ctx, in))
	in.ProgramPhases[0].PhaseID = "changed by caller"
	in.Entities.Exercises[0].Equipment[0] = "changed by caller"

	got, err := repo.GetByTeamID(ctx, "team-7")
	require.NoError(t, err)
	got.ProgramPhases[0].PhaseID = "changed by reader"
	got.Entities.Exercises[0].Equipment[0] = "changed by reader"
	*got.Entities.Sets[0].Reps = 99

	all, err := repo.List(ctx)
	require.NoError(t, err)
	all[0].ProgramPhases[0].PhaseID = "changed by lister"

	again, err := repo.GetByTeamID(ctx, "team-7")
	require.NoError(t, err)
	assert.Equal(t, "ph-1", again.ProgramPhases[0].PhaseID)
	assert.Equal(t, []string{"Band"}, again.Entities.Exercises[0].Equipment)
	assert.Equal(t, 10, *again.Entities.Sets[0].Reps)
}

func TestPersistenceErrorMatchesSentinel(t *testing.T) {
	err := repository.Persist("save structure", assert.AnError)
	assert.ErrorIs(t, err, repository.ErrPersistence)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, repository.Persist("noop", nil))
	assert.NotErrorIs(t, program.ErrValidation, repository.ErrPersistence)
}
