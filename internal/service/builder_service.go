package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"alcyxob/program-builder/internal/builder"
	"alcyxob/program-builder/internal/domain"
	"alcyxob/program-builder/internal/logger"
	"alcyxob/program-builder/internal/program"
	"alcyxob/program-builder/internal/repository"

	"github.com/google/uuid"
)

// DefaultSessionIdleTimeout is how long an untouched builder session lives.
const DefaultSessionIdleTimeout = 2 * time.Hour

var ErrNotReadyToAssign = errors.New("builder session has not reached the summary step")

// BuilderService runs program builder sessions. Structural edits made while
// a session is open go through ProgramService and are saved immediately; the
// team link is only written by Assign.
type BuilderService interface {
	Start(ctx context.Context, programID string) (builder.View, error)
	Get(ctx context.Context, sessionID string) (builder.View, error)
	Discard(ctx context.Context, sessionID string) error

	SelectTeam(ctx context.Context, sessionID, teamID string) (builder.View, error)
	SelectPhase(ctx context.Context, sessionID, phaseID string) (builder.View, error)
	SelectBlock(ctx context.Context, sessionID, blockID string) (builder.View, error)
	SelectExercise(ctx context.Context, sessionID, exerciseID string) (builder.View, error)
	ConfirmSets(ctx context.Context, sessionID string) (builder.View, error)
	Back(ctx context.Context, sessionID string, step builder.Step) (builder.View, error)

	// Assign commits the team assignment and closes the session.
	Assign(ctx context.Context, sessionID string) (*domain.TeamProgramAssignment, error)
}

type session struct {
	mu     sync.Mutex
	wizard *builder.Wizard
	closed bool
}

type builderService struct {
	mu       sync.Mutex
	sessions map[string]*session

	programRepo repository.ProgramRepository
	teamRepo    repository.TeamRepository
	assignments AssignmentService
	idle        time.Duration
	log         *logger.Logger
	now         func() time.Time
}

func NewBuilderService(
	programRepo repository.ProgramRepository,
	teamRepo repository.TeamRepository,
	assignments AssignmentService,
	idle time.Duration,
	log *logger.Logger,
) BuilderService {
	if idle <= 0 {
		idle = DefaultSessionIdleTimeout
	}
	return &builderService{
		sessions:    make(map[string]*session),
		programRepo: programRepo,
		teamRepo:    teamRepo,
		assignments: assignments,
		idle:        idle,
		log:         log.With("service", "BuilderService"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *builderService) Start(ctx context.Context, programID string) (builder.View, error) {
	if _, err := s.programRepo.GetByID(ctx, programID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return builder.View{}, ErrProgramNotFound
		}
		return builder.View{}, repository.Persist("get program", err)
	}

	now := s.now()
	w := builder.New(uuid.NewString(), programID, now)

	s.mu.Lock()
	s.sweep(now)
	s.sessions[w.ID()] = &session{wizard: w}
	s.mu.Unlock()

	s.log.Debug("builder session started", "session_id", w.ID(), "program_id", programID)
	return w.View(), nil
}

func (s *builderService) Get(_ context.Context, sessionID string) (builder.View, error) {
	var v builder.View
	err := s.with(sessionID, func(w *builder.Wizard) error {
		v = w.View()
		return nil
	})
	return v, err
}

func (s *builderService) Discard(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *builderService) SelectTeam(ctx context.Context, sessionID, teamID string) (builder.View, error) {
	return s.step(sessionID, func(w *builder.Wizard) error {
		if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTeamNotFound
			}
			return repository.Persist("get team", err)
		}
		return w.SelectTeam(teamID, s.now())
	})
}

func (s *builderService) SelectPhase(ctx context.Context, sessionID, phaseID string) (builder.View, error) {
	return s.step(sessionID, func(w *builder.Wizard) error {
		if err := s.requireChild(ctx, w.ProgramID(), func(st *program.Store) bool {
			for _, r := range st.ProgramPhases {
				if r.ProgramID == w.ProgramID() && r.PhaseID == phaseID {
					return true
				}
			}
			return false
		}); err != nil {
			return withField(err, "phaseId", phaseID)
		}
		return w.SelectPhase(phaseID, s.now())
	})
}

func (s *builderService) SelectBlock(ctx context.Context, sessionID, blockID string) (builder.View, error) {
	return s.step(sessionID, func(w *builder.Wizard) error {
		if err := s.requireChild(ctx, w.ProgramID(), func(st *program.Store) bool {
			for _, r := range st.PhaseBlocks {
				if r.PhaseID == w.PhaseID() && r.BlockID == blockID {
					return true
				}
			}
			return false
		}); err != nil {
			return withField(err, "blockId", blockID)
		}
		return w.SelectBlock(blockID, s.now())
	})
}

func (s *builderService) SelectExercise(ctx context.Context, sessionID, exerciseID string) (builder.View, error) {
	return s.step(sessionID, func(w *builder.Wizard) error {
		if err := s.requireChild(ctx, w.ProgramID(), func(st *program.Store) bool {
			for _, r := range st.BlockExercises {
				if r.BlockID == w.BlockID() && r.ExerciseID == exerciseID {
					return true
				}
			}
			return false
		}); err != nil {
			return withField(err, "exerciseId", exerciseID)
		}
		return w.SelectExercise(exerciseID, s.now())
	})
}

func (s *builderService) ConfirmSets(_ context.Context, sessionID string) (builder.View, error) {
	return s.step(sessionID, func(w *builder.Wizard) error {
		return w.ConfirmSets(s.now())
	})
}

func (s *builderService) Back(_ context.Context, sessionID string, step builder.Step) (builder.View, error) {
	return s.step(sessionID, func(w *builder.Wizard) error {
		return w.Back(step, s.now())
	})
}

func (s *builderService) Assign(ctx context.Context, sessionID string) (*domain.TeamProgramAssignment, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()

	var a *domain.TeamProgramAssignment
	err := s.with(sessionID, func(w *builder.Wizard) error {
		if !w.ReadyToAssign() {
			return ErrNotReadyToAssign
		}
		var err error
		if a, err = s.assignments.AssignProgramToTeam(ctx, w.ProgramID(), w.TeamID()); err != nil {
			return err
		}
		// with holds sess.mu here, so a concurrent Assign sees the session closed.
		sess.closed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if ok {
		s.drop(sessionID)
	}
	s.log.Info("builder session assigned", "session_id", sessionID, "assignment_id", a.ID)
	return a, nil
}

// --- helpers ---

// with runs fn on the session's wizard while holding the session lock.
func (s *builderService) with(sessionID string, fn func(*builder.Wizard) error) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	if sess.closed || s.now().Sub(sess.wizard.UpdatedAt()) > s.idle {
		sess.mu.Unlock()
		s.drop(sessionID)
		return ErrSessionNotFound
	}
	defer sess.mu.Unlock()
	return fn(sess.wizard)
}

func (s *builderService) drop(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

func (s *builderService) step(sessionID string, fn func(*builder.Wizard) error) (builder.View, error) {
	var v builder.View
	err := s.with(sessionID, func(w *builder.Wizard) error {
		if err := fn(w); err != nil {
			return err
		}
		v = w.View()
		return nil
	})
	return v, err
}

// requireChild loads the program structure and reports a not-found error
// unless found accepts it.
func (s *builderService) requireChild(ctx context.Context, programID string, found func(*program.Store) bool) error {
	st, err := s.programRepo.LoadStructure(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProgramNotFound
		}
		return repository.Persist("load structure", err)
	}
	if !found(st) {
		return errNotInSelection
	}
	return nil
}

var errNotInSelection = errors.New("not part of the current selection")

func withField(err error, field, id string) error {
	if errors.Is(err, errNotInSelection) {
		return &program.ValidationError{Field: field, Reason: id + " is not part of the current selection"}
	}
	return err
}

// sweep drops idle sessions. Callers hold s.mu. A session whose lock is held
// is in use and is skipped rather than waited on.
func (s *builderService) sweep(now time.Time) {
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		stale := now.Sub(sess.wizard.UpdatedAt()) > s.idle
		sess.mu.Unlock()
		if stale {
			delete(s.sessions, id)
			s.log.Debug("builder session expired", "session_id", id)
		}
	}
}
