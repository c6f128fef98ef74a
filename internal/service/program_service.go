package service

import (
	"context"
	"errors"
	"strings"

	"alcyxob/program-builder/internal/domain"
	"alcyxob/program-builder/internal/logger"
	"alcyxob/program-builder/internal/program"
	"alcyxob/program-builder/internal/repository"
)

// Versioned pairs the result of a structural edit with the program version
// it produced. Clients send the version back as expectedVersion.
type Versioned[T any] struct {
	Item    T     `json:"item"`
	Version int64 `json:"version"`
}

// ProgramService edits program structure. Every edit loads the program's
// structure, applies one store mutation and saves it back guarded by the
// program version. An expectedVersion of 0 skips the caller-side check; the
// save is still guarded by the version read at load time.
type ProgramService interface {
	CreateProgram(ctx context.Context, name, description string, isTemplate bool) (*domain.Program, error)
	GetProgram(ctx context.Context, programID string) (*domain.Program, error)
	ListPrograms(ctx context.Context) ([]domain.Program, error)
	GetProgramTree(ctx context.Context, programID string) (*domain.ProgramTree, error)
	GetProgramStats(ctx context.Context, programID string) (*domain.ProgramStats, error)

	AddPhase(ctx context.Context, programID string, expectedVersion int64, title string) (Versioned[domain.Phase], error)
	RenamePhase(ctx context.Context, programID string, expectedVersion int64, phaseID, title string) (Versioned[domain.Phase], error)
	DeletePhase(ctx context.Context, programID string, expectedVersion int64, phaseID string) (int64, error)
	ReorderPhases(ctx context.Context, programID string, expectedVersion int64, orderedPhaseIDs []string) (int64, error)

	AddBlock(ctx context.Context, programID string, expectedVersion int64, phaseID, name string, isSuperset bool) (Versioned[domain.Block], error)
	UpdateBlock(ctx context.Context, programID string, expectedVersion int64, blockID, name string, isSuperset bool) (Versioned[domain.Block], error)
	DeleteBlock(ctx context.Context, programID string, expectedVersion int64, blockID string) (int64, error)

	AddExercise(ctx context.Context, programID string, expectedVersion int64, blockID, libraryExerciseID string, equipment []string) (Versioned[domain.AssignedExercise], error)
	DeleteExercise(ctx context.Context, programID string, expectedVersion int64, exerciseID string) (int64, error)

	AddSet(ctx context.Context, programID string, expectedVersion int64, exerciseID string, in program.SetInput) (Versioned[domain.ExerciseSet], error)
	DeleteSet(ctx context.Context, programID string, expectedVersion int64, setID string) (int64, error)
}

type programService struct {
	programRepo    repository.ProgramRepository
	exerciseRepo   repository.ExerciseRepository
	assignmentRepo repository.AssignmentRepository
	teamRepo       repository.TeamRepository
	log            *logger.Logger
}

func NewProgramService(
	programRepo repository.ProgramRepository,
	exerciseRepo repository.ExerciseRepository,
	assignmentRepo repository.AssignmentRepository,
	teamRepo repository.TeamRepository,
	log *logger.Logger,
) ProgramService {
	return &programService{
		programRepo:    programRepo,
		exerciseRepo:   exerciseRepo,
		assignmentRepo: assignmentRepo,
		teamRepo:       teamRepo,
		log:            log.With("service", "ProgramService"),
	}
}

func (s *programService) CreateProgram(ctx context.Context, name, description string, isTemplate bool) (*domain.Program, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &program.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	p := &domain.Program{Name: name, Description: strings.TrimSpace(description), IsTemplate: isTemplate}
	if _, err := s.programRepo.Create(ctx, p); err != nil {
		return nil, repository.Persist("create program", err)
	}
	s.log.Info("program created", "program_id", p.ID)
	return p, nil
}

func (s *programService) GetProgram(ctx context.Context, programID string) (*domain.Program, error) {
	p, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, repository.Persist("get program", err)
	}
	return p, nil
}

func (s *programService) ListPrograms(ctx context.Context) ([]domain.Program, error) {
	programs, err := s.programRepo.List(ctx)
	if err != nil {
		return nil, repository.Persist("list programs", err)
	}
	return programs, nil
}

func (s *programService) GetProgramTree(ctx context.Context, programID string) (*domain.ProgramTree, error) {
	p, store, err := s.load(ctx, programID)
	if err != nil {
		return nil, err
	}
	tree := program.Compose(*p, store)
	return &tree, nil
}

// GetProgramStats reduces the composed tree and counts the distinct patients
// of every team currently assigned the program.
func (s *programService) GetProgramStats(ctx context.Context, programID string) (*domain.ProgramStats, error) {
	tree, err := s.GetProgramTree(ctx, programID)
	if err != nil {
		return nil, err
	}
	stats := program.Summarize(*tree)

	assignments, err := s.assignmentRepo.ListByProgramID(ctx, programID)
	if err != nil {
		return nil, repository.Persist("list assignments", err)
	}
	stats.TeamCount = len(assignments)

	patients := map[string]struct{}{}
	for _, a := range assignments {
		team, err := s.teamRepo.GetByID(ctx, a.TeamID)
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("assignment references missing team", "team_id", a.TeamID, "program_id", programID)
			continue
		}
		if err != nil {
			return nil, repository.Persist("get team", err)
		}
		for _, id := range team.PatientIDs {
			patients[id] = struct{}{}
		}
	}
	stats.PatientReach = len(patients)
	return &stats, nil
}

// --- Structural edits ---

func (s *programService) AddPhase(ctx context.Context, programID string, expectedVersion int64, title string) (Versioned[domain.Phase], error) {
	var out domain.Phase
	v, err := s.mutate(ctx, programID, expectedVersion, "add phase", func(st *program.Store) (err error) {
		out, err = st.AddPhase(programID, title)
		return err
	})
	return Versioned[domain.Phase]{Item: out, Version: v}, err
}

func (s *programService) RenamePhase(ctx context.Context, programID string, expectedVersion int64, phaseID, title string) (Versioned[domain.Phase], error) {
	var out domain.Phase
	v, err := s.mutate(ctx, programID, expectedVersion, "rename phase", func(st *program.Store) (err error) {
		out, err = st.RenamePhase(phaseID, title)
		return err
	})
	return Versioned[domain.Phase]{Item: out, Version: v}, err
}

func (s *programService) DeletePhase(ctx context.Context, programID string, expectedVersion int64, phaseID string) (int64, error) {
	return s.mutate(ctx, programID, expectedVersion, "delete phase", func(st *program.Store) error {
		return st.DeletePhase(phaseID)
	})
}

func (s *programService) ReorderPhases(ctx context.Context, programID string, expectedVersion int64, orderedPhaseIDs []string) (int64, error) {
	return s.mutate(ctx, programID, expectedVersion, "reorder phases", func(st *program.Store) error {
		return st.ReorderPhases(programID, orderedPhaseIDs)
	})
}

func (s *programService) AddBlock(ctx context.Context, programID string, expectedVersion int64, phaseID, name string, isSuperset bool) (Versioned[domain.Block], error) {
	var out domain.Block
	v, err := s.mutate(ctx, programID, expectedVersion, "add block", func(st *program.Store) (err error) {
		out, err = st.AddBlock(phaseID, name, isSuperset)
		return err
	})
	return Versioned[domain.Block]{Item: out, Version: v}, err
}

func (s *programService) UpdateBlock(ctx context.Context, programID string, expectedVersion int64, blockID, name string, isSuperset bool) (Versioned[domain.Block], error) {
	var out domain.Block
	v, err := s.mutate(ctx, programID, expectedVersion, "update block", func(st *program.Store) (err error) {
		out, err = st.UpdateBlock(blockID, name, isSuperset)
		return err
	})
	return Versioned[domain.Block]{Item: out, Version: v}, err
}

func (s *programService) DeleteBlock(ctx context.Context, programID string, expectedVersion int64, blockID string) (int64, error) {
	return s.mutate(ctx, programID, expectedVersion, "delete block", func(st *program.Store) error {
		return st.DeleteBlock(blockID)
	})
}

// AddExercise checks the library exercise exists before touching the structure.
func (s *programService) AddExercise(ctx context.Context, programID string, expectedVersion int64, blockID, libraryExerciseID string, equipment []string) (Versioned[domain.AssignedExercise], error) {
	libraryExerciseID = strings.TrimSpace(libraryExerciseID)
	if libraryExerciseID != "" {
		if _, err := s.exerciseRepo.GetByID(ctx, libraryExerciseID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return Versioned[domain.AssignedExercise]{}, &program.ValidationError{Field: "exerciseId", Reason: "no library exercise " + libraryExerciseID}
			}
			return Versioned[domain.AssignedExercise]{}, repository.Persist("get exercise", err)
		}
	}

	var out domain.AssignedExercise
	v, err := s.mutate(ctx, programID, expectedVersion, "add exercise", func(st *program.Store) (err error) {
		out, err = st.AddExercise(blockID, libraryExerciseID, equipment)
		return err
	})
	return Versioned[domain.AssignedExercise]{Item: out, Version: v}, err
}

func (s *programService) DeleteExercise(ctx context.Context, programID string, expectedVersion int64, exerciseID string) (int64, error) {
	return s.mutate(ctx, programID, expectedVersion, "delete exercise", func(st *program.Store) error {
		return st.DeleteExercise(exerciseID)
	})
}

// AddSet stores the set even when reps and time are both or neither given.
func (s *programService) AddSet(ctx context.Context, programID string, expectedVersion int64, exerciseID string, in program.SetInput) (Versioned[domain.ExerciseSet], error) {
	if (in.Reps == nil) == (in.Time == nil) {
		s.log.Warn("set should carry exactly one of reps or time",
			"program_id", programID, "exercise_id", exerciseID,
			"has_reps", in.Reps != nil, "has_time", in.Time != nil)
	}

	var out domain.ExerciseSet
	v, err := s.mutate(ctx, programID, expectedVersion, "add set", func(st *program.Store) (err error) {
		out, err = st.AddSet(exerciseID, in)
		return err
	})
	return Versioned[domain.ExerciseSet]{Item: out, Version: v}, err
}

func (s *programService) DeleteSet(ctx context.Context, programID string, expectedVersion int64, setID string) (int64, error) {
	return s.mutate(ctx, programID, expectedVersion, "delete set", func(st *program.Store) error {
		return st.DeleteSet(setID)
	})
}

// --- helpers ---

func (s *programService) load(ctx context.Context, programID string) (*domain.Program, *program.Store, error) {
	p, err := s.GetProgram(ctx, programID)
	if err != nil {
		return nil, nil, err
	}
	store, err := s.programRepo.LoadStructure(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrProgramNotFound
		}
		return nil, nil, repository.Persist("load structure", err)
	}
	return p, store, nil
}

// mutate applies fn to a freshly loaded structure and saves it. A failing fn
// leaves storage untouched.
func (s *programService) mutate(ctx context.Context, programID string, expectedVersion int64, op string, fn func(*program.Store) error) (int64, error) {
	p, store, err := s.load(ctx, programID)
	if err != nil {
		return 0, err
	}
	if expectedVersion != 0 && expectedVersion != p.Version {
		return 0, repository.ErrVersionConflict
	}
	if err := fn(store); err != nil {
		return 0, err
	}

	version, err := s.programRepo.SaveStructure(ctx, programID, p.Version, store)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return 0, ErrProgramNotFound
	case errors.Is(err, repository.ErrVersionConflict):
		s.log.Info("stale structure write rejected", "program_id", programID, "op", op, "version", p.Version)
		return 0, repository.ErrVersionConflict
	default:
		s.log.Error("structure save failed", "program_id", programID, "op", op, "error", err)
		return 0, repository.Persist(op, err)
	}
	s.log.Debug("structure saved", "program_id", programID, "op", op, "version", version)
	return version, nil
}
