package domain

// ProgramTree is the ordered, nested view of a program rebuilt from relation rows.
type ProgramTree struct {
	Program Program     `json:"program"`
	Phases  []PhaseNode `json:"phases"`
}

type PhaseNode struct {
	Phase  Phase       `json:"phase"`
	Order  int         `json:"order"`
	Blocks []BlockNode `json:"blocks"`
}

type BlockNode struct {
	Block     Block          `json:"block"`
	Order     int            `json:"order"`
	Exercises []ExerciseNode `json:"exercises"`
}

type ExerciseNode struct {
	Exercise AssignedExercise `json:"exercise"`
	Order    int              `json:"order"`
	Sets     []ExerciseSet    `json:"sets"`
}

// ProgramStats are reductions over a composed tree plus team reach.
type ProgramStats struct {
	ProgramID     string `json:"programId"`
	PhaseCount    int    `json:"phaseCount"`
	BlockCount    int    `json:"blockCount"`
	ExerciseCount int    `json:"exerciseCount"`
	SetCount      int    `json:"setCount"`
	TeamCount     int    `json:"teamCount"`
	PatientReach  int    `json:"patientReach"`
}
