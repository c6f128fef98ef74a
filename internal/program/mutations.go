package program

import (
	"strings"

	"alcyxob/program-builder/internal/domain"
)

// SetInput carries the fields of a new set. Exactly one of Reps or Time is
// expected, but the store does not enforce it.
type SetInput struct {
	SetNumber int
	Reps      *int
	Time      *int
	Rest      *int
	Notes     string
}

// AddPhase creates a phase and appends it as the last phase of programID.
func (s *Store) AddPhase(programID, title string) (domain.Phase, error) {
	title = strings.TrimSpace(title)
	if programID == "" {
		return domain.Phase{}, invalid("programId", "is required")
	}
	if title == "" {
		return domain.Phase{}, invalid("title", "must not be empty")
	}

	phase := domain.Phase{ID: s.id(), Title: title}
	order := countRows(s.ProgramPhases, func(r domain.ProgramPhase) bool { return r.ProgramID == programID })
	s.Phases[phase.ID] = phase
	s.ProgramPhases = append(s.ProgramPhases, domain.ProgramPhase{ProgramID: programID, PhaseID: phase.ID, Order: order})
	return phase, nil
}

// AddBlock creates a block and appends it as the last block of phaseID.
func (s *Store) AddBlock(phaseID, name string, isSuperset bool) (domain.Block, error) {
	name = strings.TrimSpace(name)
	if _, ok := s.Phases[phaseID]; !ok {
		return domain.Block{}, missing("phaseId", phaseID)
	}
	if name == "" {
		return domain.Block{}, invalid("name", "must not be empty")
	}

	block := domain.Block{ID: s.id(), Name: name, IsSuperset: isSuperset}
	order := countRows(s.PhaseBlocks, func(r domain.PhaseBlock) bool { return r.PhaseID == phaseID })
	s.Blocks[block.ID] = block
	s.PhaseBlocks = append(s.PhaseBlocks, domain.PhaseBlock{PhaseID: phaseID, BlockID: block.ID, Order: order})
	return block, nil
}

// AddExercise appends an assigned exercise referencing the library exercise
// libraryExerciseID to blockID. Whether the library id resolves is the
// caller's concern.
func (s *Store) AddExercise(blockID, libraryExerciseID string, equipment []string) (domain.AssignedExercise, error) {
	libraryExerciseID = strings.TrimSpace(libraryExerciseID)
	if _, ok := s.Blocks[blockID]; !ok {
		return domain.AssignedExercise{}, missing("blockId", blockID)
	}
	if libraryExerciseID == "" {
		return domain.AssignedExercise{}, invalid("exerciseId", "is required")
	}

	ex := domain.AssignedExercise{ID: s.id(), ExerciseID: libraryExerciseID, Equipment: cleanEquipment(equipment)}
	order := countRows(s.BlockExercises, func(r domain.BlockExercise) bool { return r.BlockID == blockID })
	s.Exercises[ex.ID] = ex
	s.BlockExercises = append(s.BlockExercises, domain.BlockExercise{BlockID: blockID, ExerciseID: ex.ID, Order: order})
	return ex, nil
}

// AddSet appends a set to the assigned exercise exerciseID.
func (s *Store) AddSet(exerciseID string, in SetInput) (domain.ExerciseSet, error) {
	if _, ok := s.Exercises[exerciseID]; !ok {
		return domain.ExerciseSet{}, missing("exerciseId", exerciseID)
	}

	set := domain.ExerciseSet{
		ID:        s.id(),
		SetNumber: in.SetNumber,
		Reps:      cloneInt(in.Reps),
		Time:      cloneInt(in.Time),
		Rest:      cloneInt(in.Rest),
		Notes:     strings.TrimSpace(in.Notes),
	}
	order := countRows(s.ExerciseSets, func(r domain.ExerciseSetRelation) bool { return r.ExerciseID == exerciseID })
	s.Sets[set.ID] = set
	s.ExerciseSets = append(s.ExerciseSets, domain.ExerciseSetRelation{ExerciseID: exerciseID, SetID: set.ID, Order: order})
	return set, nil
}

// RenamePhase changes a phase title in place.
func (s *Store) RenamePhase(phaseID, title string) (domain.Phase, error) {
	title = strings.TrimSpace(title)
	phase, ok := s.Phases[phaseID]
	if !ok {
		return domain.Phase{}, missing("phaseId", phaseID)
	}
	if title == "" {
		return domain.Phase{}, invalid("title", "must not be empty")
	}
	phase.Title = title
	s.Phases[phaseID] = phase
	return phase, nil
}

// UpdateBlock changes a block's name and superset flag in place.
func (s *Store) UpdateBlock(blockID, name string, isSuperset bool) (domain.Block, error) {
	name = strings.TrimSpace(name)
	block, ok := s.Blocks[blockID]
	if !ok {
		return domain.Block{}, missing("blockId", blockID)
	}
	if name == "" {
		return domain.Block{}, invalid("name", "must not be empty")
	}
	block.Name = name
	block.IsSuperset = isSuperset
	s.Blocks[blockID] = block
	return block, nil
}

// ReorderPhases sets the order of every phase of programID to its position
// in orderedPhaseIDs. The list must be an exact permutation of the
// program's current phase ids; anything else is rejected.
func (s *Store) ReorderPhases(programID string, orderedPhaseIDs []string) error {
	current := s.PhaseIDs(programID)
	if len(current) != len(orderedPhaseIDs) {
		return invalid("phaseIds", "must list every phase of the program exactly once")
	}
	position := make(map[string]int, len(orderedPhaseIDs))
	for i, id := range orderedPhaseIDs {
		if _, dup := position[id]; dup {
			return invalid("phaseIds", "contains duplicate id "+id)
		}
		position[id] = i
	}
	for _, id := range current {
		if _, ok := position[id]; !ok {
			return invalid("phaseIds", "is missing phase "+id)
		}
	}

	for i := range s.ProgramPhases {
		if s.ProgramPhases[i].ProgramID == programID {
			s.ProgramPhases[i].Order = position[s.ProgramPhases[i].PhaseID]
		}
	}
	return nil
}

// DeletePhase removes a phase, its program rows and every block, exercise
// and set reachable only through it. Remaining phases are renumbered.
func (s *Store) DeletePhase(phaseID string) error {
	if _, ok := s.Phases[phaseID]; !ok {
		return missing("phaseId", phaseID)
	}

	programs := map[string]struct{}{}
	s.ProgramPhases = filterRows(s.ProgramPhases, func(r domain.ProgramPhase) bool {
		if r.PhaseID == phaseID {
			programs[r.ProgramID] = struct{}{}
			return false
		}
		return true
	})
	for programID := range programs {
		renumber(s.ProgramPhases,
			func(r domain.ProgramPhase) bool { return r.ProgramID == programID },
			func(r domain.ProgramPhase) int { return r.Order },
			func(r *domain.ProgramPhase, n int) { r.Order = n })
	}
	s.dropPhase(phaseID)
	return nil
}

// DeleteBlock removes a block from every phase holding it, cascading to its
// exercises and sets. Sibling blocks are renumbered.
func (s *Store) DeleteBlock(blockID string) error {
	if _, ok := s.Blocks[blockID]; !ok {
		return missing("blockId", blockID)
	}

	phases := map[string]struct{}{}
	s.PhaseBlocks = filterRows(s.PhaseBlocks, func(r domain.PhaseBlock) bool {
		if r.BlockID == blockID {
			phases[r.PhaseID] = struct{}{}
			return false
		}
		return true
	})
	for phaseID := range phases {
		s.renumberBlocks(phaseID)
	}
	s.dropBlock(blockID)
	return nil
}

// DeleteExercise removes an assigned exercise and its sets. Sibling
// exercises are renumbered.
func (s *Store) DeleteExercise(exerciseID string) error {
	if _, ok := s.Exercises[exerciseID]; !ok {
		return missing("exerciseId", exerciseID)
	}

	blocks := map[string]struct{}{}
	s.BlockExercises = filterRows(s.BlockExercises, func(r domain.BlockExercise) bool {
		if r.ExerciseID == exerciseID {
			blocks[r.BlockID] = struct{}{}
			return false
		}
		return true
	})
	for blockID := range blocks {
		s.renumberExercises(blockID)
	}
	s.dropExercise(exerciseID)
	return nil
}

// DeleteSet removes a set. Sibling sets are renumbered.
func (s *Store) DeleteSet(setID string) error {
	if _, ok := s.Sets[setID]; !ok {
		return missing("setId", setID)
	}

	exercises := map[string]struct{}{}
	s.ExerciseSets = filterRows(s.ExerciseSets, func(r domain.ExerciseSetRelation) bool {
		if r.SetID == setID {
			exercises[r.ExerciseID] = struct{}{}
			return false
		}
		return true
	})
	for exerciseID := range exercises {
		s.renumberSets(exerciseID)
	}
	delete(s.Sets, setID)
	return nil
}

// dropPhase deletes the phase entity and its block rows, then any block left
// without a parent.
func (s *Store) dropPhase(phaseID string) {
	delete(s.Phases, phaseID)
	var children []string
	s.PhaseBlocks = filterRows(s.PhaseBlocks, func(r domain.PhaseBlock) bool {
		if r.PhaseID == phaseID {
			children = append(children, r.BlockID)
			return false
		}
		return true
	})
	for _, blockID := range children {
		if !s.blockReferenced(blockID) {
			s.dropBlock(blockID)
		}
	}
}

func (s *Store) dropBlock(blockID string) {
	delete(s.Blocks, blockID)
	var children []string
	s.BlockExercises = filterRows(s.BlockExercises, func(r domain.BlockExercise) bool {
		if r.BlockID == blockID {
			children = append(children, r.ExerciseID)
			return false
		}
		return true
	})
	for _, exerciseID := range children {
		if !s.exerciseReferenced(exerciseID) {
			s.dropExercise(exerciseID)
		}
	}
}

func (s *Store) dropExercise(exerciseID string) {
	delete(s.Exercises, exerciseID)
	var children []string
	s.ExerciseSets = filterRows(s.ExerciseSets, func(r domain.ExerciseSetRelation) bool {
		if r.ExerciseID == exerciseID {
			children = append(children, r.SetID)
			return false
		}
		return true
	})
	for _, setID := range children {
		if !s.setReferenced(setID) {
			delete(s.Sets, setID)
		}
	}
}

func (s *Store) blockReferenced(id string) bool {
	return countRows(s.PhaseBlocks, func(r domain.PhaseBlock) bool { return r.BlockID == id }) > 0
}

func (s *Store) exerciseReferenced(id string) bool {
	return countRows(s.BlockExercises, func(r domain.BlockExercise) bool { return r.ExerciseID == id }) > 0
}

func (s *Store) setReferenced(id string) bool {
	return countRows(s.ExerciseSets, func(r domain.ExerciseSetRelation) bool { return r.SetID == id }) > 0
}

func (s *Store) renumberBlocks(phaseID string) {
	renumber(s.PhaseBlocks,
		func(r domain.PhaseBlock) bool { return r.PhaseID == phaseID },
		func(r domain.PhaseBlock) int { return r.Order },
		func(r *domain.PhaseBlock, n int) { r.Order = n })
}

func (s *Store) renumberExercises(blockID string) {
	renumber(s.BlockExercises,
		func(r domain.BlockExercise) bool { return r.BlockID == blockID },
		func(r domain.BlockExercise) int { return r.Order },
		func(r *domain.BlockExercise, n int) { r.Order = n })
}

func (s *Store) renumberSets(exerciseID string) {
	renumber(s.ExerciseSets,
		func(r domain.ExerciseSetRelation) bool { return r.ExerciseID == exerciseID },
		func(r domain.ExerciseSetRelation) int { return r.Order },
		func(r *domain.ExerciseSetRelation, n int) { r.Order = n })
}

// cleanEquipment trims entries and drops blanks. Free-text entries are kept.
func cleanEquipment(in []string) []string {
	out := make([]string, 0, len(in))
	for _, e := range in {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}
