package program

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"alcyxob/program-builder/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// assertContiguous checks that every parent scope of every relation table
// holds orders 0..n-1 exactly once.
func assertContiguous(t *testing.T, s *Store) {
	t.Helper()
	check := func(kind string, scopes map[string][]int) {
		for parent, orders := range scopes {
			sort.Ints(orders)
			for i, o := range orders {
				assert.Equalf(t, i, o, "%s scope %s has orders %v", kind, parent, orders)
			}
		}
	}
	pp := map[string][]int{}
	for _, r := range s.ProgramPhases {
		pp[r.ProgramID] = append(pp[r.ProgramID], r.Order)
	}
	pb := map[string][]int{}
	for _, r := range s.PhaseBlocks {
		pb[r.PhaseID] = append(pb[r.PhaseID], r.Order)
	}
	be := map[string][]int{}
	for _, r := range s.BlockExercises {
		be[r.BlockID] = append(be[r.BlockID], r.Order)
	}
	es := map[string][]int{}
	for _, r := range s.ExerciseSets {
		es[r.ExerciseID] = append(es[r.ExerciseID], r.Order)
	}
	check("program-phase", pp)
	check("phase-block", pb)
	check("block-exercise", be)
	check("exercise-set", es)
}

func phaseOrder(s *Store, programID, phaseID string) int {
	for _, r := range s.ProgramPhases {
		if r.ProgramID == programID && r.PhaseID == phaseID {
			return r.Order
		}
	}
	return -1
}

func TestWarmUpMainSetScenario(t *testing.T) {
	p := domain.Program{ID: "P", Name: "Rehab"}
	s := NewStore()

	warm, err := s.AddPhase(p.ID, "Warm Up")
	require.NoError(t, err)
	mainSet, err := s.AddPhase(p.ID, "Main Set")
	require.NoError(t, err)
	assert.Equal(t, 0, phaseOrder(s, p.ID, warm.ID))
	assert.Equal(t, 1, phaseOrder(s, p.ID, mainSet.ID))

	block, err := s.AddBlock(warm.ID, "Mobility", false)
	require.NoError(t, err)
	assert.Equal(t, 0, s.PhaseBlocks[0].Order)

	ex, err := s.AddExercise(block.ID, "ex-123", []string{"Mat"})
	require.NoError(t, err)
	_, err = s.AddSet(ex.ID, SetInput{SetNumber: 1, Reps: intPtr(10), Rest: intPtr(30)})
	require.NoError(t, err)

	require.NoError(t, s.ReorderPhases(p.ID, []string{mainSet.ID, warm.ID}))
	assert.Equal(t, 0, phaseOrder(s, p.ID, mainSet.ID))
	assert.Equal(t, 1, phaseOrder(s, p.ID, warm.ID))

	tree := Compose(p, s)
	require.Len(t, tree.Phases, 2)
	assert.Equal(t, "Main Set", tree.Phases[0].Phase.Title)
	assert.Equal(t, "Warm Up", tree.Phases[1].Phase.Title)

	a, err := Snapshot(&p, s, "team-7", "a-1", time.Now())
	require.NoError(t, err)
	assert.Len(t, a.ProgramPhases, 2)
	assert.Len(t, a.BlockExercises, 1)
	require.Len(t, a.ExerciseSets, 1)
	require.Len(t, a.Entities.Sets, 1)
	set := a.Entities.Sets[0]
	assert.Equal(t, a.ExerciseSets[0].SetID, set.ID)
	require.NotNil(t, set.Reps)
	require.NotNil(t, set.Rest)
	assert.Equal(t, 10, *set.Reps)
	assert.Equal(t, 30, *set.Rest)
	assert.Nil(t, set.Time)
}

func TestAddValidation(t *testing.T) {
	s := NewStore()

	_, err := s.AddPhase("P", "   ")
	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	_, err = s.AddPhase("", "Warm Up")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.AddBlock("nope", "Mobility", false)
	assert.ErrorIs(t, err, ErrValidation)

	phase, err := s.AddPhase("P", "  Warm Up ")
	require.NoError(t, err)
	assert.Equal(t, "Warm Up", phase.Title)

	_, err = s.AddBlock(phase.ID, "", true)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.AddExercise("nope", "ex-1", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.AddSet("nope", SetInput{SetNumber: 1})
	assert.ErrorIs(t, err, ErrValidation)

	// Failed adds leave nothing behind.
	assert.Len(t, s.Phases, 1)
	assert.Empty(t, s.Blocks)
	assert.Empty(t, s.PhaseBlocks)
}

func TestAddSetDoesNotEnforceRepsOrTime(t *testing.T) {
	s := NewStore()
	phase, _ := s.AddPhase("P", "Main")
	block, _ := s.AddBlock(phase.ID, "Strength", false)
	ex, _ := s.AddExercise(block.ID, "ex-1", []string{" Band ", "", "Custom sled"})
	assert.Equal(t, []string{"Band", "Custom sled"}, ex.Equipment)

	both, err := s.AddSet(ex.ID, SetInput{SetNumber: 1, Reps: intPtr(8), Time: intPtr(30)})
	require.NoError(t, err)
	neither, err := s.AddSet(ex.ID, SetInput{SetNumber: 2})
	require.NoError(t, err)

	assert.NotNil(t, both.Reps)
	assert.NotNil(t, both.Time)
	assert.Nil(t, neither.Reps)
	assert.Nil(t, neither.Time)
	assert.Equal(t, 1, s.ExerciseSets[1].Order)
}

func TestReorderPhasesRejectsMalformedLists(t *testing.T) {
	s := NewStore()
	a, _ := s.AddPhase("P", "A")
	b, _ := s.AddPhase("P", "B")
	before := s.Clone()

	cases := map[string][]string{
		"missing":   {a.ID},
		"extra":     {a.ID, b.ID, "x"},
		"duplicate": {a.ID, a.ID},
		"foreign":   {a.ID, "x"},
		"empty":     {},
	}
	for name, ids := range cases {
		t.Run(name, func(t *testing.T) {
			err := s.ReorderPhases("P", ids)
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, before.ProgramPhases, s.ProgramPhases)
		})
	}
}

func TestReorderPhasesEmptyProgram(t *testing.T) {
	s := NewStore()
	assert.NoError(t, s.ReorderPhases("P", nil))
}

func buildTwoPhaseStore(t *testing.T) (*Store, domain.Phase, domain.Phase) {
	t.Helper()
	s := NewStore().WithIDGenerator(seqIDs())
	p0, _ := s.AddPhase("P", "Foundation")
	p1, _ := s.AddPhase("P", "Build")
	p2, _ := s.AddPhase("P", "Peak")
	for _, ph := range []domain.Phase{p0, p1, p2} {
		for b := 0; b < 2; b++ {
			block, err := s.AddBlock(ph.ID, fmt.Sprintf("%s-b%d", ph.Title, b), b == 1)
			require.NoError(t, err)
			for e := 0; e < 2; e++ {
				ex, err := s.AddExercise(block.ID, "lib-1", []string{"Mat"})
				require.NoError(t, err)
				for n := 1; n <= 3; n++ {
					_, err := s.AddSet(ex.ID, SetInput{SetNumber: n, Reps: intPtr(10)})
					require.NoError(t, err)
				}
			}
		}
	}
	require.NoError(t, s.DeletePhase(p2.ID))
	return s, p0, p1
}

func TestDeletePhaseCascades(t *testing.T) {
	s, p0, p1 := buildTwoPhaseStore(t)
	p := domain.Program{ID: "P"}
	before := Compose(p, s)
	keep := before.Phases[1]

	require.NoError(t, s.DeletePhase(p0.ID))

	assert.NotContains(t, s.Phases, p0.ID)
	assert.Len(t, s.Blocks, 2)
	assert.Len(t, s.Exercises, 4)
	assert.Len(t, s.Sets, 12)
	for _, r := range s.PhaseBlocks {
		assert.NotEqual(t, p0.ID, r.PhaseID)
	}
	assertContiguous(t, s)

	after := Compose(p, s)
	require.Len(t, after.Phases, 1)
	assert.Equal(t, p1.ID, after.Phases[0].Phase.ID)
	assert.Equal(t, 0, after.Phases[0].Order)
	keep.Order = 0
	assert.Empty(t, cmp.Diff(keep, after.Phases[0]), "surviving subtree must be unchanged")
}

func TestDeletePhaseKeepsSharedChildren(t *testing.T) {
	s := NewStore()
	a, _ := s.AddPhase("P", "A")
	b, _ := s.AddPhase("P", "B")
	block, _ := s.AddBlock(a.ID, "Shared", false)
	s.PhaseBlocks = append(s.PhaseBlocks, domain.PhaseBlock{PhaseID: b.ID, BlockID: block.ID, Order: 0})

	require.NoError(t, s.DeletePhase(a.ID))
	assert.Contains(t, s.Blocks, block.ID)
}

func TestDeleteBlockExerciseSet(t *testing.T) {
	s, p0, _ := buildTwoPhaseStore(t)
	tree := Compose(domain.Program{ID: "P"}, s)
	firstBlock := tree.Phases[0].Blocks[0]
	secondBlock := tree.Phases[0].Blocks[1]

	require.NoError(t, s.DeleteBlock(firstBlock.Block.ID))
	assert.NotContains(t, s.Blocks, firstBlock.Block.ID)
	for _, en := range firstBlock.Exercises {
		assert.NotContains(t, s.Exercises, en.Exercise.ID)
		for _, set := range en.Sets {
			assert.NotContains(t, s.Sets, set.ID)
		}
	}
	assertContiguous(t, s)

	ex := secondBlock.Exercises[0]
	require.NoError(t, s.DeleteSet(ex.Sets[1].ID))
	assertContiguous(t, s)
	require.NoError(t, s.DeleteExercise(ex.Exercise.ID))
	assertContiguous(t, s)

	tree = Compose(domain.Program{ID: "P"}, s)
	require.Len(t, tree.Phases[0].Blocks, 1)
	assert.Equal(t, p0.ID, tree.Phases[0].Phase.ID)
	assert.Len(t, tree.Phases[0].Blocks[0].Exercises, 1)

	assert.ErrorIs(t, s.DeleteBlock("nope"), ErrValidation)
	assert.ErrorIs(t, s.DeleteExercise("nope"), ErrValidation)
	assert.ErrorIs(t, s.DeleteSet("nope"), ErrValidation)
	assert.ErrorIs(t, s.DeletePhase("nope"), ErrValidation)
}

func TestOrderContiguityUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := NewStore()
	programs := []string{"P1", "P2"}

	for step := 0; step < 400; step++ {
		switch rng.Intn(8) {
		case 0, 1:
			_, _ = s.AddPhase(programs[rng.Intn(2)], "phase")
		case 2:
			if id := pick(rng, keys(s.Phases)); id != "" {
				_, _ = s.AddBlock(id, "block", rng.Intn(2) == 0)
			}
		case 3:
			if id := pick(rng, keys(s.Blocks)); id != "" {
				_, _ = s.AddExercise(id, "lib", nil)
			}
		case 4:
			if id := pick(rng, keys(s.Exercises)); id != "" {
				_, _ = s.AddSet(id, SetInput{SetNumber: 1, Reps: intPtr(5)})
			}
		case 5:
			if id := pick(rng, keys(s.Phases)); id != "" && rng.Intn(3) == 0 {
				require.NoError(t, s.DeletePhase(id))
			}
		case 6:
			if id := pick(rng, keys(s.Blocks)); id != "" && rng.Intn(2) == 0 {
				require.NoError(t, s.DeleteBlock(id))
			}
		case 7:
			pid := programs[rng.Intn(2)]
			ids := s.PhaseIDs(pid)
			rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
			require.NoError(t, s.ReorderPhases(pid, ids))
		}
		assertContiguous(t, s)
	}
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func pick(rng *rand.Rand, ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[rng.Intn(len(ids))]
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewStore()
	phase, _ := s.AddPhase("P", "A")
	block, _ := s.AddBlock(phase.ID, "B", false)
	ex, _ := s.AddExercise(block.ID, "lib", []string{"Mat"})
	set, _ := s.AddSet(ex.ID, SetInput{SetNumber: 1, Reps: intPtr(10)})

	c := s.Clone()
	*c.Sets[set.ID].Reps = 99
	c.Exercises[ex.ID].Equipment[0] = "Band"
	require.NoError(t, c.DeletePhase(phase.ID))

	assert.Contains(t, s.Phases, phase.ID)
	assert.Len(t, s.ProgramPhases, 1)
	assert.Equal(t, 10, *s.Sets[set.ID].Reps)
	assert.Equal(t, "Mat", s.Exercises[ex.ID].Equipment[0])
}
