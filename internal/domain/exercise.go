package domain

import "time"

// Difficulty levels accepted by the exercise library. Empty means unrated.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Exercise represents a single exercise definition in the library.
type Exercise struct {
	ID           string    `bson:"_id" json:"id" yaml:"id"`
	Name         string    `bson:"name" json:"name" yaml:"name"`
	Description  string    `bson:"description,omitempty" json:"description,omitempty" yaml:"description"`
	MuscleGroups []string  `bson:"muscleGroups" json:"muscleGroups" yaml:"muscleGroups"` // e.g. "Chest", "Legs"
	Equipment    []string  `bson:"equipment" json:"equipment" yaml:"equipment"`          // canonical equipment list
	Difficulty   string    `bson:"difficulty,omitempty" json:"difficulty,omitempty" yaml:"difficulty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt" yaml:"-"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt" yaml:"-"`
}

// ValidDifficulty reports whether d is one of the known levels or empty.
func ValidDifficulty(d string) bool {
	switch d {
	case "", DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}
