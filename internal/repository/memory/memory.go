// Package memory provides mutex-guarded in-process implementations of the
// repository interfaces. They back the "memory" database backend and the
// service and handler tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"alcyxob/program-builder/internal/domain"
	"alcyxob/program-builder/internal/program"
	"alcyxob/program-builder/internal/repository"

	"github.com/google/uuid"
)

// --- Users ---

type userRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{users: make(map[string]domain.User)}
}

func (r *userRepository) Create(_ context.Context, user *domain.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(user.Email)
	for _, u := range r.users {
		if strings.ToLower(u.Email) == email {
			return "", repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = strings.ToLower(email)
	for _, u := range r.users {
		if strings.ToLower(u.Email) == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// --- Exercise library ---

type exerciseRepository struct {
	mu        sync.RWMutex
	exercises map[string]domain.Exercise
}

func NewExerciseRepository() repository.ExerciseRepository {
	return &exerciseRepository{exercises: make(map[string]domain.Exercise)}
}

func (r *exerciseRepository) Create(_ context.Context, e *domain.Exercise) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	} else if _, exists := r.exercises[e.ID]; exists {
		return "", repository.ErrDuplicate
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	cp := *e
	cp.MuscleGroups = append([]string(nil), e.MuscleGroups...)
	cp.Equipment = append([]string(nil), e.Equipment...)
	r.exercises[e.ID] = cp
	return e.ID, nil
}

func (r *exerciseRepository) GetByID(_ context.Context, id string) (*domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

// List returns the library sorted by name.
func (r *exerciseRepository) List(_ context.Context) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Exercise, 0, len(r.exercises))
	for _, e := range r.exercises {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- Teams ---

type teamRepository struct {
	mu    sync.RWMutex
	teams map[string]domain.Team
}

func NewTeamRepository() repository.TeamRepository {
	return &teamRepository{teams: make(map[string]domain.Team)}
}

func (r *teamRepository) Create(_ context.Context, t *domain.Team) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	} else if _, exists := r.teams[t.ID]; exists {
		return "", repository.ErrDuplicate
	}
	if t.PatientIDs == nil {
		t.PatientIDs = []string{}
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	cp := *t
	cp.PatientIDs = append([]string{}, t.PatientIDs...)
	r.teams[t.ID] = cp
	return t.ID, nil
}

func (r *teamRepository) GetByID(_ context.Context, id string) (*domain.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.PatientIDs = append([]string{}, t.PatientIDs...)
	return &t, nil
}

func (r *teamRepository) List(_ context.Context) ([]domain.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Team, 0, len(r.teams))
	for _, t := range r.teams {
		t.PatientIDs = append([]string{}, t.PatientIDs...)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *teamRepository) AddPatient(_ context.Context, teamID, patientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return repository.ErrNotFound
	}
	if t.HasPatient(patientID) {
		return nil
	}
	t.PatientIDs = append(append([]string{}, t.PatientIDs...), patientID)
	t.UpdatedAt = time.Now().UTC()
	r.teams[teamID] = t
	return nil
}

// --- Programs ---

type programRepository struct {
	mu         sync.RWMutex
	programs   map[string]domain.Program
	structures map[string]*program.Store
}

func NewProgramRepository() repository.ProgramRepository {
	return &programRepository{
		programs:   make(map[string]domain.Program),
		structures: make(map[string]*program.Store),
	}
}

func (r *programRepository) Create(_ context.Context, p *domain.Program) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if _, exists := r.programs[p.ID]; exists {
		return "", repository.ErrDuplicate
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Version = 1
	r.programs[p.ID] = *p
	r.structures[p.ID] = program.NewStore()
	return p.ID, nil
}

func (r *programRepository) GetByID(_ context.Context, id string) (*domain.Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

// List returns programs newest first.
func (r *programRepository) List(_ context.Context) ([]domain.Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Program, 0, len(r.programs))
	for _, p := range r.programs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *programRepository) LoadStructure(_ context.Context, programID string) (*program.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.structures[programID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.Clone(), nil
}

func (r *programRepository) SaveStructure(_ context.Context, programID string, expectedVersion int64, s *program.Store) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.programs[programID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if expectedVersion != 0 && expectedVersion != p.Version {
		return 0, repository.ErrVersionConflict
	}
	r.structures[programID] = program.FromClosure(program.ClosureOf(programID, s))
	p.Version++
	p.UpdatedAt = time.Now().UTC()
	r.programs[programID] = p
	return p.Version, nil
}

// --- Assignments ---

type assignmentRepository struct {
	mu     sync.RWMutex
	byTeam map[string]domain.TeamProgramAssignment
}

func NewAssignmentRepository() repository.AssignmentRepository {
	return &assignmentRepository{byTeam: make(map[string]domain.TeamProgramAssignment)}
}

func (r *assignmentRepository) GetByTeamID(_ context.Context, teamID string) (*domain.TeamProgramAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byTeam[teamID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a = cloneAssignment(a)
	return &a, nil
}

// ReplaceForTeam stores a copy of a as the only assignment of its team.
func (r *assignmentRepository) ReplaceForTeam(_ context.Context, a *domain.TeamProgramAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTeam[a.TeamID] = cloneAssignment(*a)
	return nil
}

func (r *assignmentRepository) List(_ context.Context) ([]domain.TeamProgramAssignment, error) {
	return r.filter(func(domain.TeamProgramAssignment) bool { return true }), nil
}

func (r *assignmentRepository) ListByProgramID(_ context.Context, programID string) ([]domain.TeamProgramAssignment, error) {
	return r.filter(func(a domain.TeamProgramAssignment) bool { return a.ProgramID == programID }), nil
}

// filter returns matching assignments, newest first.
func (r *assignmentRepository) filter(keep func(domain.TeamProgramAssignment) bool) []domain.TeamProgramAssignment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.TeamProgramAssignment, 0, len(r.byTeam))
	for _, a := range r.byTeam {
		if keep(a) {
			out = append(out, cloneAssignment(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AssignedAt.Equal(out[j].AssignedAt) {
			return out[i].TeamID < out[j].TeamID
		}
		return out[i].AssignedAt.After(out[j].AssignedAt)
	})
	return out
}

// cloneAssignment copies every slice and pointer of a so callers never share
// memory with the stored value.
func cloneAssignment(a domain.TeamProgramAssignment) domain.TeamProgramAssignment {
	a.ProgramPhases = slices.Clone(a.ProgramPhases)
	a.PhaseBlocks = slices.Clone(a.PhaseBlocks)
	a.BlockExercises = slices.Clone(a.BlockExercises)
	a.ExerciseSets = slices.Clone(a.ExerciseSets)
	a.Entities.Phases = slices.Clone(a.Entities.Phases)
	a.Entities.Blocks = slices.Clone(a.Entities.Blocks)
	a.Entities.Exercises = slices.Clone(a.Entities.Exercises)
	for i := range a.Entities.Exercises {
		a.Entities.Exercises[i].Equipment = slices.Clone(a.Entities.Exercises[i].Equipment)
	}
	a.Entities.Sets = slices.Clone(a.Entities.Sets)
	for i := range a.Entities.Sets {
		set := &a.Entities.Sets[i]
		set.Reps = cloneInt(set.Reps)
		set.Time = cloneInt(set.Time)
		set.Rest = cloneInt(set.Rest)
	}
	return a
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
