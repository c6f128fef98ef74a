package service

import "errors"

// Lookup failures shared by the services. Handlers map them to 404.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrProgramNotFound    = errors.New("program not found")
	ErrExerciseNotFound   = errors.New("exercise not found")
	ErrAssignmentNotFound = errors.New("team has no program assigned")
	ErrSessionNotFound    = errors.New("builder session not found")
)
