package domain

import "time"

// Role type to distinguish between user roles
type Role string

const (
	RolePhysiologist Role = "physiologist"
	RolePatient      Role = "patient"
)

// User is either a physiologist (edits programs) or a patient (team member).
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`    // unique
	PasswordHash string    `bson:"passwordHash" json:"-"` // never exposed
	Role         Role      `bson:"role" json:"role"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsPhysiologist() bool {
	return u.Role == RolePhysiologist
}

func (u *User) IsPatient() bool {
	return u.Role == RolePatient
}
