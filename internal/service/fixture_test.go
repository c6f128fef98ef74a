package service

import (
	"context"
	"testing"

	"alcyxob/program-builder/internal/domain"
	"alcyxob/program-builder/internal/logger"
	"alcyxob/program-builder/internal/repository"
	"alcyxob/program-builder/internal/repository/memory"
	"alcyxob/program-builder/internal/storage"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	users       repository.UserRepository
	exercises   repository.ExerciseRepository
	teams       repository.TeamRepository
	programs    repository.ProgramRepository
	assignRepo  repository.AssignmentRepository
	files       *storage.MemoryStorage
	programSvc  ProgramService
	assignSvc   AssignmentService
	teamSvc     TeamService
	exerciseSvc ExerciseService
	builderSvc  BuilderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNop()
	f := &fixture{
		users:      memory.NewUserRepository(),
		exercises:  memory.NewExerciseRepository(),
		teams:      memory.NewTeamRepository(),
		programs:   memory.NewProgramRepository(),
		assignRepo: memory.NewAssignmentRepository(),
		files:      storage.NewMemoryStorage(),
	}
	f.programSvc = NewProgramService(f.programs, f.exercises, f.assignRepo, f.teams, log)
	f.assignSvc = NewAssignmentService(f.assignRepo, f.programs, f.teams, f.files, log)
	f.teamSvc = NewTeamService(f.teams, f.users, log)
	f.exerciseSvc = NewExerciseService(f.exercises, log)
	f.builderSvc = NewBuilderService(f.programs, f.teams, f.assignSvc, 0, log)
	return f
}

func (f *fixture) libraryExercise(t *testing.T, id, name string) {
	t.Helper()
	_, err := f.exercises.Create(context.Background(), &domain.Exercise{ID: id, Name: name})
	require.NoError(t, err)
}

func (f *fixture) team(t *testing.T, id string, patients ...string) {
	t.Helper()
	_, err := f.teams.Create(context.Background(), &domain.Team{ID: id, Name: id, PatientIDs: patients})
	require.NoError(t, err)
}

func (f *fixture) program(t *testing.T, name string) *domain.Program {
	t.Helper()
	p, err := f.programSvc.CreateProgram(context.Background(), name, "", true)
	require.NoError(t, err)
	return p
}

func intPtr(v int) *int { return &v }
