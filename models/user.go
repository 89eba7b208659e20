package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"   // Administra el sistema
	RoleTeacher UserRole = "teacher" // Profesor (sube material como cualquier usuario)
	RoleUser    UserRole = "user"    // Estudiante
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relaciones
	Materials []Material `json:"materials,omitempty"`
	Bookmarks []Bookmark `json:"bookmarks,omitempty"`
}

// El ID se genera en la aplicación y no con gen_random_uuid() del motor,
// para que los tests puedan correr sobre SQLite.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
