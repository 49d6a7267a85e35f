package models

import (
	"prepdesk/src/types"
	"time"

	"github.com/google/uuid"
)

// Reservation is a user's claim against a slot. The unique index over
// (user_id, slot_id, course_id, category) is the duplicate-booking guard;
// the application treats a violation as a conflict, not an internal error.
type Reservation struct {
	ID        uint                    `gorm:"primarykey" json:"id"`
	UserID    uint                    `gorm:"uniqueIndex:idx_user_slot_course_category" json:"user_id,omitempty"`
	SlotID    *uint                   `gorm:"uniqueIndex:idx_user_slot_course_category" json:"slot_id,omitempty"`
	CourseID  uint                    `gorm:"uniqueIndex:idx_user_slot_course_category" json:"course_id,omitempty"`
	Category  types.Category          `gorm:"uniqueIndex:idx_user_slot_course_category" json:"category,omitempty"`
	Status    types.ReservationStatus `gorm:"default:'processing'" json:"status,omitempty"`
	ValidFrom *time.Time              `json:"valid_from,omitempty"`
	ValidTill *time.Time              `json:"valid_till,omitempty"`
	Verified  bool                    `json:"verified"`
	PlanID    *uint                   `json:"plan_id,omitempty"`
	TenantID  *uuid.UUID              `gorm:"type:uuid" json:"-"`

	User   User             `gorm:"foreignKey:user_id" json:"-"`
	Slot   *ReservationSlot `gorm:"foreignKey:slot_id;constraint:OnDelete:CASCADE" json:"slot,omitempty"`
	Course Course           `gorm:"foreignKey:course_id" json:"course,omitempty"`
	Plan   *Plan            `gorm:"foreignKey:plan_id" json:"plan,omitempty"`

	Transactions []Transaction `gorm:"foreignKey:reservation_id" json:"transactions,omitempty"`

	types.Timestamps
}
