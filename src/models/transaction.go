package models

import (
	"prepdesk/src/types"

	"github.com/google/uuid"
)

type Transaction struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	ReservationID uint                    `json:"reservation_id,omitempty"`
	Amount        float64                 `json:"amount,omitempty"`
	Currency      string                  `json:"currency,omitempty"`
	PaymentMethod string                  `json:"payment_method,omitempty"`
	ImageURL      string                  `json:"image_url,omitempty"`
	Status        types.TransactionStatus `gorm:"default:'pending'" json:"status,omitempty"`
	ReferenceID   string                  `json:"-"`
	Metadata      types.JSONB             `gorm:"type:jsonb" json:"-"`
	TenantID      *uuid.UUID              `gorm:"type:uuid" json:"-"`

	Reservation Reservation `gorm:"foreignKey:reservation_id;constraint:OnDelete:CASCADE" json:"-"`

	types.Timestamps
}
