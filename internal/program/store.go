// Package program holds the program template model: an entity store plus
// ordered relation rows, the mutations over them, the composition of the
// nested tree and the assignment snapshot.
package program

import (
	"alcyxob/program-builder/internal/domain"

	"github.com/google/uuid"
)

// Store holds the entities of one or more programs and the four relation
// tables linking them. It has no internal locking; callers own it under a
// single-writer discipline.
type Store struct {
	Phases    map[string]domain.Phase
	Blocks    map[string]domain.Block
	Exercises map[string]domain.AssignedExercise
	Sets      map[string]domain.ExerciseSet

	ProgramPhases  []domain.ProgramPhase
	PhaseBlocks    []domain.PhaseBlock
	BlockExercises []domain.BlockExercise
	ExerciseSets   []domain.ExerciseSetRelation

	newID func() string
}

// NewStore returns an empty store that mints UUID identifiers.
func NewStore() *Store {
	return &Store{
		Phases:    make(map[string]domain.Phase),
		Blocks:    make(map[string]domain.Block),
		Exercises: make(map[string]domain.AssignedExercise),
		Sets:      make(map[string]domain.ExerciseSet),
		newID:     uuid.NewString,
	}
}

// WithIDGenerator replaces the identifier source. Used by tests that need
// predictable ids.
func (s *Store) WithIDGenerator(gen func() string) *Store {
	s.newID = gen
	return s
}

// Clone returns a deep copy so a mutation can be applied and discarded on failure.
func (s *Store) Clone() *Store {
	c := &Store{
		Phases:         make(map[string]domain.Phase, len(s.Phases)),
		Blocks:         make(map[string]domain.Block, len(s.Blocks)),
		Exercises:      make(map[string]domain.AssignedExercise, len(s.Exercises)),
		Sets:           make(map[string]domain.ExerciseSet, len(s.Sets)),
		ProgramPhases:  append([]domain.ProgramPhase(nil), s.ProgramPhases...),
		PhaseBlocks:    append([]domain.PhaseBlock(nil), s.PhaseBlocks...),
		BlockExercises: append([]domain.BlockExercise(nil), s.BlockExercises...),
		ExerciseSets:   append([]domain.ExerciseSetRelation(nil), s.ExerciseSets...),
		newID:          s.newID,
	}
	for k, v := range s.Phases {
		c.Phases[k] = v
	}
	for k, v := range s.Blocks {
		c.Blocks[k] = v
	}
	for k, v := range s.Exercises {
		if v.Equipment != nil {
			v.Equipment = append([]string{}, v.Equipment...)
		}
		c.Exercises[k] = v
	}
	for k, v := range s.Sets {
		v.Reps = cloneInt(v.Reps)
		v.Time = cloneInt(v.Time)
		v.Rest = cloneInt(v.Rest)
		c.Sets[k] = v
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	return c
}

func (s *Store) id() string {
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s.newID()
}

// PhaseIDs returns the phase ids of programID ordered by their relation order.
func (s *Store) PhaseIDs(programID string) []string {
	rows := filterRows(s.ProgramPhases, func(r domain.ProgramPhase) bool { return r.ProgramID == programID })
	sortByOrder(rows, func(r domain.ProgramPhase) int { return r.Order })
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.PhaseID
	}
	return ids
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
