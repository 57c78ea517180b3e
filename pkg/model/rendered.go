package model

import "time"

// RenderedConfig is the database row for one output.
type RenderedConfig struct {
	Name      string    `gorm:"primaryKey;size:191" json:"name"`
	Node      string    `gorm:"index;size:128" json:"node"`
	Peer      string    `gorm:"size:128" json:"peer,omitempty"`
	Content   string    `gorm:"type:text" json:"content"`
	Digest    string    `gorm:"size:64" json:"digest"`
	UpdatedAt time.Time `json:"updatedAt"`
}
