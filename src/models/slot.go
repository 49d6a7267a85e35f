package models

import (
	"prepdesk/src/types"
	"time"

	"github.com/google/uuid"
)

type ReservationSlot struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	CourseID   uint           `json:"course_id,omitempty"`
	Category   types.Category `gorm:"index" json:"category,omitempty"`
	Date       time.Time      `gorm:"type:date" json:"date,omitempty"`
	Time       string         `json:"time,omitempty"`
	TotalSeats uint           `json:"total_seats,omitempty"`
	TenantID   *uuid.UUID     `gorm:"type:uuid" json:"-"`

	Course       Course        `gorm:"foreignKey:course_id;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Reservations []Reservation `gorm:"foreignKey:slot_id" json:"reservations,omitempty"`

	Stats *SlotStats `gorm:"-" json:"stats,omitempty"`

	types.Timestamps
}

// SlotStats is derived on read, never stored.
type SlotStats struct {
	SlotID    uint `json:"slot_id,omitempty"`
	Booked    uint `json:"booked_seats"`
	Available int  `json:"available_seats"`
}
