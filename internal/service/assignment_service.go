package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/program-builder/internal/domain"
	"alcyxob/program-builder/internal/logger"
	"alcyxob/program-builder/internal/program"
	"alcyxob/program-builder/internal/repository"
	"alcyxob/program-builder/internal/storage"

	"github.com/google/uuid"
)

var ErrExportUnavailable = errors.New("export storage is not configured")

// ExportResult points at an uploaded export of a team's program.
type ExportResult struct {
	ObjectKey string    `json:"objectKey"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// exportDocument is the JSON body written to object storage.
type exportDocument struct {
	TeamID       string             `json:"teamId"`
	AssignmentID string             `json:"assignmentId"`
	AssignedAt   time.Time          `json:"assignedAt"`
	ExportedAt   time.Time          `json:"exportedAt"`
	Structure    domain.ProgramTree `json:"structure"`
}

// AssignmentService binds programs to teams.
type AssignmentService interface {
	// AssignProgramToTeam snapshots the program's current closure and makes
	// it the team's only assignment.
	AssignProgramToTeam(ctx context.Context, programID, teamID string) (*domain.TeamProgramAssignment, error)
	// GetTeamAssignment returns nil, nil when the team has no assignment.
	GetTeamAssignment(ctx context.Context, teamID string) (*domain.TeamProgramAssignment, error)
	// LoadTeamProgramStructure returns nil, nil when the team has no assignment.
	LoadTeamProgramStructure(ctx context.Context, teamID string) (*domain.ProgramTree, error)
	ListAllAssignments(ctx context.Context) ([]domain.TeamProgramAssignment, error)
	ExportTeamProgram(ctx context.Context, teamID string) (*ExportResult, error)
}

type assignmentService struct {
	assignmentRepo repository.AssignmentRepository
	programRepo    repository.ProgramRepository
	teamRepo       repository.TeamRepository
	files          storage.FileStorage // nil disables export
	log            *logger.Logger
	now            func() time.Time
}

func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	programRepo repository.ProgramRepository,
	teamRepo repository.TeamRepository,
	files storage.FileStorage,
	log *logger.Logger,
) AssignmentService {
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		programRepo:    programRepo,
		teamRepo:       teamRepo,
		files:          files,
		log:            log.With("service", "AssignmentService"),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *assignmentService) AssignProgramToTeam(ctx context.Context, programID, teamID string) (*domain.TeamProgramAssignment, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, &program.ValidationError{Field: "teamId", Reason: "must not be empty"}
	}

	p, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, repository.Persist("get program", err)
	}
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, repository.Persist("get team", err)
	}

	store, err := s.programRepo.LoadStructure(ctx, programID)
	if err != nil {
		return nil, repository.Persist("load structure", err)
	}
	a, err := program.Snapshot(p, store, teamID, uuid.NewString(), s.now())
	if err != nil {
		return nil, err
	}
	if err := s.assignmentRepo.ReplaceForTeam(ctx, a); err != nil {
		s.log.Error("assignment write failed", "team_id", teamID, "program_id", programID, "error", err)
		return nil, repository.Persist("replace assignment", err)
	}

	s.log.Info("program assigned",
		"team_id", teamID, "program_id", programID, "assignment_id", a.ID,
		"phases", len(a.ProgramPhases), "sets", len(a.ExerciseSets))
	return a, nil
}

func (s *assignmentService) GetTeamAssignment(ctx context.Context, teamID string) (*domain.TeamProgramAssignment, error) {
	a, err := s.assignmentRepo.GetByTeamID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, repository.Persist("get assignment", err)
	}
	return a, nil
}

// LoadTeamProgramStructure rebuilds the tree from the entity copies stored
// with the assignment, so later edits to the program do not show through.
func (s *assignmentService) LoadTeamProgramStructure(ctx context.Context, teamID string) (*domain.ProgramTree, error) {
	a, err := s.GetTeamAssignment(ctx, teamID)
	if err != nil || a == nil {
		return nil, err
	}
	tree := program.Compose(a.Entities.Program, program.FromAssignment(a))
	return &tree, nil
}

func (s *assignmentService) ListAllAssignments(ctx context.Context) ([]domain.TeamProgramAssignment, error) {
	all, err := s.assignmentRepo.List(ctx)
	if err != nil {
		return nil, repository.Persist("list assignments", err)
	}
	return all, nil
}

// ExportTeamProgram uploads the team's structure as JSON and returns a
// presigned download URL for it.
func (s *assignmentService) ExportTeamProgram(ctx context.Context, teamID string) (*ExportResult, error) {
	if s.files == nil {
		return nil, ErrExportUnavailable
	}
	a, err := s.GetTeamAssignment(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAssignmentNotFound
	}

	now := s.now()
	doc := exportDocument{
		TeamID:       teamID,
		AssignmentID: a.ID,
		AssignedAt:   a.AssignedAt,
		ExportedAt:   now,
		Structure:    program.Compose(a.Entities.Program, program.FromAssignment(a)),
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", teamID, uuid.NewString())
	if err := s.files.PutObject(ctx, key, "application/json", bytes.NewReader(body)); err != nil {
		return nil, repository.Persist("upload export", err)
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
	if err != nil {
		// An export nobody can download is removed again.
		if derr := s.files.DeleteObject(ctx, key); derr != nil {
			s.log.Warn("orphaned export object", "key", key, "error", derr)
		}
		return nil, repository.Persist("presign export", err)
	}

	s.log.Info("program exported", "team_id", teamID, "key", key, "bytes", len(body))
	return &ExportResult{ObjectKey: key, URL: url, ExpiresAt: now.Add(storage.DefaultPresignedURLExpiry)}, nil
}
