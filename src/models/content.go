package models

import (
	"prepdesk/src/types"

	"github.com/google/uuid"
)

type FAQ struct {
	ID       uint       `gorm:"primarykey" json:"id"`
	Question string     `json:"question,omitempty"`
	Answer   string     `json:"answer,omitempty"`
	TenantID *uuid.UUID `gorm:"type:uuid" json:"-"`

	types.Attachment

	types.Timestamps
}

type CarouselItem struct {
	ID       uint       `gorm:"primarykey" json:"id"`
	Title    string     `json:"title,omitempty"`
	ImageURL string     `json:"image_url,omitempty"`
	Rank     uint       `json:"rank,omitempty"`
	TenantID *uuid.UUID `gorm:"type:uuid" json:"-"`

	types.Attachment

	types.Timestamps
}
