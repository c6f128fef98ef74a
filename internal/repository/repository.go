package repository

import (
	"context"
	"fmt"

	"alcyxob/program-builder/internal/domain"
	"alcyxob/program-builder/internal/program"
)

// Error constants for the repository layer.
var (
	ErrNotFound        = RepositoryError("not found")
	ErrDuplicate       = RepositoryError("duplicate key")
	ErrVersionConflict = RepositoryError("version conflict")
	ErrPersistence     = RepositoryError("persistence failure")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// PersistenceError wraps a failure of the backing store. errors.Is(err,
// ErrPersistence) holds for every PersistenceError.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Persist wraps err as a PersistenceError for op. Nil stays nil.
func Persist(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (string, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// ExerciseRepository is the read side of the exercise library plus seeding.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Exercise, error)
	List(ctx context.Context) ([]domain.Exercise, error)
}

// TeamRepository defines the interface for the team directory.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
	AddPatient(ctx context.Context, teamID, patientID string) error // idempotent
}

// ProgramRepository stores program roots and their structure. The structure
// of one program (entities plus relation rows) is always saved as a whole.
type ProgramRepository interface {
	Create(ctx context.Context, p *domain.Program) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Program, error)
	List(ctx context.Context) ([]domain.Program, error)
	LoadStructure(ctx context.Context, programID string) (*program.Store, error)
	// SaveStructure replaces the stored structure of programID with its
	// closure in s and bumps the program version. A non-zero expectedVersion
	// must match the stored one or ErrVersionConflict is returned.
	SaveStructure(ctx context.Context, programID string, expectedVersion int64, s *program.Store) (int64, error)
}

// AssignmentRepository holds at most one current assignment per team.
type AssignmentRepository interface {
	GetByTeamID(ctx context.Context, teamID string) (*domain.TeamProgramAssignment, error)
	// ReplaceForTeam removes any assignment of a.TeamID and stores a.
	ReplaceForTeam(ctx context.Context, a *domain.TeamProgramAssignment) error
	List(ctx context.Context) ([]domain.TeamProgramAssignment, error)
	ListByProgramID(ctx context.Context, programID string) ([]domain.TeamProgramAssignment, error)
}
