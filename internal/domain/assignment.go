package domain

import "time"

// TeamProgramAssignment is the immutable snapshot binding one team to the
// relation closure of one program at a point in time. A team has at most one
// current assignment; a new one replaces it.
type TeamProgramAssignment struct {
	ID             string                `bson:"_id" json:"id"`
	TeamID         string                `bson:"teamId" json:"teamId"`
	ProgramID      string                `bson:"programId" json:"programId"`
	AssignedAt     time.Time             `bson:"assignedAt" json:"assignedAt"`
	ProgramPhases  []ProgramPhase        `bson:"programPhases" json:"programPhases"`
	PhaseBlocks    []PhaseBlock          `bson:"phaseBlocks" json:"phaseBlocks"`
	BlockExercises []BlockExercise       `bson:"blockExercises" json:"blockExercises"`
	ExerciseSets   []ExerciseSetRelation `bson:"exerciseSets" json:"exerciseSets"`

	// Entity copies taken with the relations so the structure can be rebuilt
	// exactly as it was when assigned.
	Entities AssignmentEntities `bson:"entities" json:"-"`
}

// AssignmentEntities holds the entities reachable from an assignment's relations.
type AssignmentEntities struct {
	Program   Program            `bson:"program"`
	Phases    []Phase            `bson:"phases"`
	Blocks    []Block            `bson:"blocks"`
	Exercises []AssignedExercise `bson:"exercises"`
	Sets      []ExerciseSet      `bson:"sets"`
}
