package mongo

import (
	"testing"

	"alcyxob/program-builder/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStructureDocsFlattenProgramID(t *testing.T) {
	reps := 10
	raw, err := bson.Marshal(exerciseSetDoc{
		ExerciseSet: domain.ExerciseSet{ID: "set-1", SetNumber: 1, Reps: &reps},
		ProgramID:   "P",
	})
	require.NoError(t, err)

	var flat bson.M
	require.NoError(t, bson.Unmarshal(raw, &flat))
	assert.Equal(t, "set-1", flat["_id"])
	assert.Equal(t, "P", flat["programId"])
	assert.EqualValues(t, 10, flat["reps"])
	assert.NotContains(t, flat, "time")

	var back exerciseSetDoc
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.Equal(t, "set-1", back.ID)
	require.NotNil(t, back.Reps)
	assert.Equal(t, 10, *back.Reps)
	assert.Nil(t, back.Time)
}

func TestRelationDocIgnoresGeneratedID(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"_id":       "generated",
		"programId": "P",
		"phaseId":   "ph-1",
		"blockId":   "bl-1",
		"order":     2,
	})
	require.NoError(t, err)

	var d phaseBlockDoc
	require.NoError(t, bson.Unmarshal(raw, &d))
	assert.Equal(t, domain.PhaseBlock{PhaseID: "ph-1", BlockID: "bl-1", Order: 2}, d.PhaseBlock)
	assert.Equal(t, "P", d.ProgramID)
}
