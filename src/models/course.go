package models

import (
	"prepdesk/src/types"

	"github.com/google/uuid"
)

type Course struct {
	ID          uint               `gorm:"primarykey" json:"id"`
	Title       string             `json:"title,omitempty"`
	Slug        string             `gorm:"uniqueIndex" json:"slug,omitempty"`
	Description *string            `json:"description,omitempty"`
	Status      types.CourseStatus `gorm:"default:'draft'" json:"status,omitempty"`
	CreatedBy   uint               `json:"created_by,omitempty"`
	TenantID    *uuid.UUID         `gorm:"type:uuid" json:"-"`

	Creator User              `gorm:"foreignKey:created_by" json:"-"`
	Slots   []ReservationSlot `gorm:"foreignKey:course_id" json:"slots,omitempty"`

	types.Timestamps
}
