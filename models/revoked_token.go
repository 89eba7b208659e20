package models

import "time"

// RevokedToken es la lista negra de sesiones cerradas. El JTI viene del
// claim del JWT; el job de limpieza borra las filas ya expiradas.
type RevokedToken struct {
	JTI       string    `gorm:"size:36;primaryKey" json:"jti"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
