package domain

import "time"

// Program is the root of a composed workout program. It owns nothing
// directly; phases hang off it through ProgramPhase rows.
type Program struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	IsTemplate  bool      `bson:"isTemplate" json:"isTemplate"`
	Version     int64     `bson:"version" json:"version"` // bumped on every structural save
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Phase is a named stage of a program, e.g. "Foundation".
type Phase struct {
	ID    string `bson:"_id" json:"id"`
	Title string `bson:"title" json:"title"`
}

// Block groups exercises within a phase. A superset block is performed as one circuit.
type Block struct {
	ID         string `bson:"_id" json:"id"`
	Name       string `bson:"name" json:"name"`
	IsSuperset bool   `bson:"isSuperset" json:"isSuperset"`
}

// AssignedExercise references a library exercise plus the equipment picked for it.
// Equipment may contain free-text entries that are not in the library.
type AssignedExercise struct {
	ID         string   `bson:"_id" json:"id"`
	ExerciseID string   `bson:"exerciseId" json:"exerciseId"`
	Equipment  []string `bson:"equipment" json:"equipment"`
}

// ExerciseSet is one set of an assigned exercise. Reps and Time (seconds) are
// meant to be mutually exclusive; Rest is in seconds.
type ExerciseSet struct {
	ID        string `bson:"_id" json:"id"`
	SetNumber int    `bson:"setNumber" json:"setNumber"`
	Reps      *int   `bson:"reps,omitempty" json:"reps,omitempty"`
	Time      *int   `bson:"time,omitempty" json:"time,omitempty"`
	Rest      *int   `bson:"rest,omitempty" json:"rest,omitempty"`
	Notes     string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// --- Relation rows ---
// Each row links a parent to a child with a zero-based order, unique and
// contiguous within the parent scope.

type ProgramPhase struct {
	ProgramID string `bson:"programId" json:"programId"`
	PhaseID   string `bson:"phaseId" json:"phaseId"`
	Order     int    `bson:"order" json:"order"`
}

type PhaseBlock struct {
	PhaseID string `bson:"phaseId" json:"phaseId"`
	BlockID string `bson:"blockId" json:"blockId"`
	Order   int    `bson:"order" json:"order"`
}

type BlockExercise struct {
	BlockID    string `bson:"blockId" json:"blockId"`
	ExerciseID string `bson:"exerciseId" json:"exerciseId"` // AssignedExercise ID, not the library ID
	Order      int    `bson:"order" json:"order"`
}

type ExerciseSetRelation struct {
	ExerciseID string `bson:"exerciseId" json:"exerciseId"`
	SetID      string `bson:"setId" json:"setId"`
	Order      int    `bson:"order" json:"order"`
}
