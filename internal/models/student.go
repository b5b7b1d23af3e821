package models

import (
	"time"

	"gorm.io/datatypes"
)

// Student represents a learner that receives generated assignments.
type Student struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	ParentID       uint                        `gorm:"not null;index" json:"parent_id"`
	FirstName      string                      `gorm:"size:128;not null" json:"first_name"`
	LastName       string                      `gorm:"size:128" json:"last_name"`
	Email          string                      `gorm:"size:255" json:"email"`
	Grade          string                      `gorm:"size:64" json:"grade"`
	Strengths      datatypes.JSONSlice[string] `json:"strengths"`
	Weaknesses     datatypes.JSONSlice[string] `json:"weaknesses"`
	LearningStyles datatypes.JSONSlice[string] `json:"learning_styles"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}
