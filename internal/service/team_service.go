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

var (
	ErrPatientNotFound = errors.New("patient user not found")
	ErrNotPatientRole  = errors.New("user found but is not a patient")
)

// TeamService manages the team directory.
type TeamService interface {
	CreateTeam(ctx context.Context, name, description string) (*domain.Team, error)
	GetTeam(ctx context.Context, teamID string) (*domain.Team, error)
	ListTeams(ctx context.Context) ([]domain.Team, error)
	AddPatientByEmail(ctx context.Context, teamID, patientEmail string) (*domain.Team, error)
}

type teamService struct {
	teamRepo repository.TeamRepository
	userRepo repository.UserRepository
	log      *logger.Logger
}

func NewTeamService(teamRepo repository.TeamRepository, userRepo repository.UserRepository, log *logger.Logger) TeamService {
	return &teamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
		log:      log.With("service", "TeamService"),
	}
}

func (s *teamService) CreateTeam(ctx context.Context, name, description string) (*domain.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &program.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	team := &domain.Team{Name: name, Description: strings.TrimSpace(description), PatientIDs: []string{}}
	if _, err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, repository.Persist("create team", err)
	}
	s.log.Info("team created", "team_id", team.ID)
	return team, nil
}

func (s *teamService) GetTeam(ctx context.Context, teamID string) (*domain.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, repository.Persist("get team", err)
	}
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, repository.Persist("list teams", err)
	}
	return teams, nil
}

// AddPatientByEmail finds a patient by email and adds them to the team.
// Adding an existing member is a no-op.
func (s *teamService) AddPatientByEmail(ctx context.Context, teamID, patientEmail string) (*domain.Team, error) {
	patientEmail = strings.TrimSpace(patientEmail)
	if teamID == "" || patientEmail == "" {
		return nil, &program.ValidationError{Field: "email", Reason: "team id and patient email are required"}
	}

	patient, err := s.userRepo.GetByEmail(ctx, patientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, repository.Persist("get user by email", err)
	}
	if !patient.IsPatient() {
		return nil, ErrNotPatientRole
	}

	if err := s.teamRepo.AddPatient(ctx, teamID, patient.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, repository.Persist("add patient", err)
	}
	s.log.Info("patient added to team", "team_id", teamID, "patient_id", patient.ID)
	return s.GetTeam(ctx, teamID)
}
