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

// ExerciseInput carries the fields of a new library exercise.
type ExerciseInput struct {
	ID           string
	Name         string
	Description  string
	MuscleGroups []string
	Equipment    []string
	Difficulty   string
}

// ExerciseService exposes the exercise library.
type ExerciseService interface {
	CreateExercise(ctx context.Context, in ExerciseInput) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID string) (*domain.Exercise, error)
	ListExercises(ctx context.Context) ([]domain.Exercise, error)
}

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	log          *logger.Logger
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, log *logger.Logger) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		log:          log.With("service", "ExerciseService"),
	}
}

// CreateExercise validates and stores a library exercise.
func (s *exerciseService) CreateExercise(ctx context.Context, in ExerciseInput) (*domain.Exercise, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &program.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	difficulty := strings.ToLower(strings.TrimSpace(in.Difficulty))
	if !domain.ValidDifficulty(difficulty) {
		return nil, &program.ValidationError{Field: "difficulty", Reason: "must be beginner, intermediate or advanced"}
	}

	exercise := &domain.Exercise{
		ID:           strings.TrimSpace(in.ID),
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		MuscleGroups: trimAll(in.MuscleGroups),
		Equipment:    trimAll(in.Equipment),
		Difficulty:   difficulty,
	}
	if _, err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &program.ValidationError{Field: "id", Reason: "already exists"}
		}
		return nil, repository.Persist("create exercise", err)
	}
	s.log.Info("exercise created", "exercise_id", exercise.ID, "name", exercise.Name)
	return exercise, nil
}

func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID string) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, repository.Persist("get exercise", err)
	}
	return exercise, nil
}

func (s *exerciseService) ListExercises(ctx context.Context) ([]domain.Exercise, error) {
	exercises, err := s.exerciseRepo.List(ctx)
	if err != nil {
		return nil, repository.Persist("list exercises", err)
	}
	return exercises, nil
}

// trimAll trims entries and drops blanks, always returning a non-nil slice.
func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
