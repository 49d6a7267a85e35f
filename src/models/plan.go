package models

import (
	"prepdesk/src/types"

	"github.com/google/uuid"
)

type Plan struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	Name          string     `json:"name,omitempty"`
	Price         float64    `json:"price"`
	Currency      string     `json:"currency,omitempty"`
	DurationDays  uint       `json:"duration_days,omitempty"`
	Description   *string    `json:"description,omitempty"`
	StripePriceId *string    `json:"-"`
	TenantID      *uuid.UUID `gorm:"type:uuid" json:"-"`

	types.Attachment

	types.Timestamps
}
