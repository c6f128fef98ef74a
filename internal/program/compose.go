package program

import "alcyxob/program-builder/internal/domain"

// index groups relation rows by parent id, each group sorted by order. It is
// built once per composition so the walk is linear in the number of rows.
type index struct {
	phases    map[string][]domain.ProgramPhase
	blocks    map[string][]domain.PhaseBlock
	exercises map[string][]domain.BlockExercise
	sets      map[string][]domain.ExerciseSetRelation
}

func buildIndex(s *Store) index {
	idx := index{
		phases:    make(map[string][]domain.ProgramPhase),
		blocks:    make(map[string][]domain.PhaseBlock),
		exercises: make(map[string][]domain.BlockExercise),
		sets:      make(map[string][]domain.ExerciseSetRelation),
	}
	for _, r := range s.ProgramPhases {
		idx.phases[r.ProgramID] = append(idx.phases[r.ProgramID], r)
	}
	for _, r := range s.PhaseBlocks {
		idx.blocks[r.PhaseID] = append(idx.blocks[r.PhaseID], r)
	}
	for _, r := range s.BlockExercises {
		idx.exercises[r.BlockID] = append(idx.exercises[r.BlockID], r)
	}
	for _, r := range s.ExerciseSets {
		idx.sets[r.ExerciseID] = append(idx.sets[r.ExerciseID], r)
	}
	for _, rows := range idx.phases {
		sortByOrder(rows, func(r domain.ProgramPhase) int { return r.Order })
	}
	for _, rows := range idx.blocks {
		sortByOrder(rows, func(r domain.PhaseBlock) int { return r.Order })
	}
	for _, rows := range idx.exercises {
		sortByOrder(rows, func(r domain.BlockExercise) int { return r.Order })
	}
	for _, rows := range idx.sets {
		sortByOrder(rows, func(r domain.ExerciseSetRelation) int { return r.Order })
	}
	return idx
}

// Compose rebuilds the ordered tree of p from the store. Rows whose child
// entity is missing are skipped. Compose does not modify the store.
func Compose(p domain.Program, s *Store) domain.ProgramTree {
	idx := buildIndex(s)
	tree := domain.ProgramTree{Program: p, Phases: []domain.PhaseNode{}}

	for _, pr := range idx.phases[p.ID] {
		phase, ok := s.Phases[pr.PhaseID]
		if !ok {
			continue
		}
		pn := domain.PhaseNode{Phase: phase, Order: pr.Order, Blocks: []domain.BlockNode{}}
		for _, br := range idx.blocks[phase.ID] {
			block, ok := s.Blocks[br.BlockID]
			if !ok {
				continue
			}
			bn := domain.BlockNode{Block: block, Order: br.Order, Exercises: []domain.ExerciseNode{}}
			for _, er := range idx.exercises[block.ID] {
				ex, ok := s.Exercises[er.ExerciseID]
				if !ok {
					continue
				}
				en := domain.ExerciseNode{Exercise: ex, Order: er.Order, Sets: []domain.ExerciseSet{}}
				for _, sr := range idx.sets[ex.ID] {
					if set, ok := s.Sets[sr.SetID]; ok {
						en.Sets = append(en.Sets, set)
					}
				}
				bn.Exercises = append(bn.Exercises, en)
			}
			pn.Blocks = append(pn.Blocks, bn)
		}
		tree.Phases = append(tree.Phases, pn)
	}
	return tree
}

// Summarize reduces a tree to its structural counts. Team reach is filled in
// by callers that know the team directory.
func Summarize(tree domain.ProgramTree) domain.ProgramStats {
	stats := domain.ProgramStats{ProgramID: tree.Program.ID, PhaseCount: len(tree.Phases)}
	for _, p := range tree.Phases {
		stats.BlockCount += len(p.Blocks)
		for _, b := range p.Blocks {
			stats.ExerciseCount += len(b.Exercises)
			for _, e := range b.Exercises {
				stats.SetCount += len(e.Sets)
			}
		}
	}
	return stats
}
