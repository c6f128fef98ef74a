package domain

import "time"

// Team is a group of patients that programs are assigned to.
type Team struct {
	ID          string    `bson:"_id" json:"id" yaml:"id"`
	Name        string    `bson:"name" json:"name" yaml:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty" yaml:"description"`
	PatientIDs  []string  `bson:"patientIds" json:"patientIds" yaml:"patientIds"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt" yaml:"-"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt" yaml:"-"`
}

// HasPatient reports whether patientID is a member.
func (t *Team) HasPatient(patientID string) bool {
	for _, id := range t.PatientIDs {
		if id == patientID {
			return true
		}
	}
	return false
}
