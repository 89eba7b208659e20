package models

import (
	"time"

	"github.com/google/uuid"
)

// Bookmark relaciona usuario y material. La clave primaria compuesta
// garantiza que el par sea único; el alta usa insert-or-ignore sobre ella.
type Bookmark struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	MaterialID uuid.UUID `gorm:"type:uuid;primaryKey" json:"material_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	User     User     `gorm:"constraint:OnDelete:CASCADE;" json:"user,omitempty"`
	Material Material `gorm:"constraint:OnDelete:CASCADE;" json:"material,omitempty"`
}
