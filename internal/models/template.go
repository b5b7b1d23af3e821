package models

import (
	"time"

	"gorm.io/datatypes"
)

// AssignmentTemplate stores reusable generation criteria saved by a parent.
type AssignmentTemplate struct {
	ID        uint                                   `gorm:"primaryKey" json:"id"`
	ParentID  uint                                   `gorm:"not null;index" json:"parent_id"`
	Name      string                                 `gorm:"size:255;not null" json:"name"`
	Criteria  datatypes.JSONType[AssignmentCriteria] `json:"criteria"`
	CreatedAt time.Time                              `json:"created_at"`
	UpdatedAt time.Time                              `json:"updated_at"`
}
