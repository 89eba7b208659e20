package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Material struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"` // dueño (inmutable)
	User     User      `gorm:"constraint:OnDelete:CASCADE;" json:"user,omitempty"`
	Title    string    `gorm:"size:100;not null" json:"title"`
	Semester int       `gorm:"not null;index:idx_materials_semester_unit" json:"semester"` // 1-6
	Unit     int       `gorm:"not null;index:idx_materials_semester_unit" json:"unit"`     // 1-4
	FilePath string    `gorm:"type:text;not null" json:"file_path"`                        // URL pública en el Storage
	Preview  string    `gorm:"type:text" json:"preview,omitempty"`                         // texto extraído (best effort)
	Rating   int       `gorm:"not null;default:0" json:"rating"`                           // 0-5

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
