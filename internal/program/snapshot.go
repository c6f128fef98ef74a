package program

import (
	"strings"
	"time"

	"alcyxob/program-builder/internal/domain"
)

// Closure is the set of relation rows and entities reachable from one program.
type Closure struct {
	ProgramPhases  []domain.ProgramPhase
	PhaseBlocks    []domain.PhaseBlock
	BlockExercises []domain.BlockExercise
	ExerciseSets   []domain.ExerciseSetRelation

	Phases    []domain.Phase
	Blocks    []domain.Block
	Exercises []domain.AssignedExercise
	Sets      []domain.ExerciseSet
}

// ClosureOf walks the relation tables from programID down to sets. Rows that
// belong to other programs are never included, whatever the store holds.
func ClosureOf(programID string, s *Store) Closure {
	var c Closure

	phaseIDs := map[string]struct{}{}
	c.ProgramPhases = filterRows(s.ProgramPhases, func(r domain.ProgramPhase) bool {
		if r.ProgramID != programID {
			return false
		}
		phaseIDs[r.PhaseID] = struct{}{}
		return true
	})

	blockIDs := map[string]struct{}{}
	c.PhaseBlocks = filterRows(s.PhaseBlocks, func(r domain.PhaseBlock) bool {
		if _, ok := phaseIDs[r.PhaseID]; !ok {
			return false
		}
		blockIDs[r.BlockID] = struct{}{}
		return true
	})

	exerciseIDs := map[string]struct{}{}
	c.BlockExercises = filterRows(s.BlockExercises, func(r domain.BlockExercise) bool {
		if _, ok := blockIDs[r.BlockID]; !ok {
			return false
		}
		exerciseIDs[r.ExerciseID] = struct{}{}
		return true
	})

	setIDs := map[string]struct{}{}
	c.ExerciseSets = filterRows(s.ExerciseSets, func(r domain.ExerciseSetRelation) bool {
		if _, ok := exerciseIDs[r.ExerciseID]; !ok {
			return false
		}
		setIDs[r.SetID] = struct{}{}
		return true
	})

	// Entities are collected in relation order so the output is stable.
	seen := map[string]struct{}{}
	for _, r := range c.ProgramPhases {
		if e, ok := s.Phases[r.PhaseID]; ok && once(seen, e.ID) {
			c.Phases = append(c.Phases, e)
		}
	}
	for _, r := range c.PhaseBlocks {
		if e, ok := s.Blocks[r.BlockID]; ok && once(seen, e.ID) {
			c.Blocks = append(c.Blocks, e)
		}
	}
	for _, r := range c.BlockExercises {
		if e, ok := s.Exercises[r.ExerciseID]; ok && once(seen, e.ID) {
			c.Exercises = append(c.Exercises, e)
		}
	}
	for _, r := range c.ExerciseSets {
		if e, ok := s.Sets[r.SetID]; ok && once(seen, e.ID) {
			c.Sets = append(c.Sets, e)
		}
	}
	return c
}

func once(seen map[string]struct{}, id string) bool {
	if _, ok := seen[id]; ok {
		return false
	}
	seen[id] = struct{}{}
	return true
}

// Snapshot builds the assignment record binding teamID to the current
// closure of p. The store is re-walked rather than trusted to be pre-filtered.
func Snapshot(p *domain.Program, s *Store, teamID, id string, at time.Time) (*domain.TeamProgramAssignment, error) {
	if p == nil || p.ID == "" {
		return nil, invalid("program", "is required")
	}
	if strings.TrimSpace(teamID) == "" {
		return nil, invalid("teamId", "must not be empty")
	}

	c := ClosureOf(p.ID, s.Clone())
	return &domain.TeamProgramAssignment{
		ID:             id,
		TeamID:         teamID,
		ProgramID:      p.ID,
		AssignedAt:     at,
		ProgramPhases:  nonNil(c.ProgramPhases),
		PhaseBlocks:    nonNil(c.PhaseBlocks),
		BlockExercises: nonNil(c.BlockExercises),
		ExerciseSets:   nonNil(c.ExerciseSets),
		Entities: domain.AssignmentEntities{
			Program:   *p,
			Phases:    nonNil(c.Phases),
			Blocks:    nonNil(c.Blocks),
			Exercises: nonNil(c.Exercises),
			Sets:      nonNil(c.Sets),
		},
	}, nil
}

// FromAssignment rebuilds a store holding exactly the snapshot of a.
func FromAssignment(a *domain.TeamProgramAssignment) *Store {
	return FromClosure(Closure{
		ProgramPhases:  a.ProgramPhases,
		PhaseBlocks:    a.PhaseBlocks,
		BlockExercises: a.BlockExercises,
		ExerciseSets:   a.ExerciseSets,
		Phases:         a.Entities.Phases,
		Blocks:         a.Entities.Blocks,
		Exercises:      a.Entities.Exercises,
		Sets:           a.Entities.Sets,
	})
}

// FromClosure builds a store holding exactly the rows and entities of c.
// The result shares no memory with c.
func FromClosure(c Closure) *Store {
	s := NewStore()
	for _, e := range c.Phases {
		s.Phases[e.ID] = e
	}
	for _, e := range c.Blocks {
		s.Blocks[e.ID] = e
	}
	for _, e := range c.Exercises {
		s.Exercises[e.ID] = e
	}
	for _, e := range c.Sets {
		s.Sets[e.ID] = e
	}
	s.ProgramPhases = append(s.ProgramPhases, c.ProgramPhases...)
	s.PhaseBlocks = append(s.PhaseBlocks, c.PhaseBlocks...)
	s.BlockExercises = append(s.BlockExercises, c.BlockExercises...)
	s.ExerciseSets = append(s.ExerciseSets, c.ExerciseSets...)
	return s.Clone()
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
