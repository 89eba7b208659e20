package utils

import (
	"log"
	"time"

	"github.com/Emilio-Bravo/polieduca/config"
	"github.com/Emilio-Bravo/polieduca/models"
)

// CleanupExpiredTokens borra de la lista negra los tokens que ya expiraron
// por sí solos; conservar esas filas no aporta nada.
func CleanupExpiredTokens() {
	db := config.DB

	result := db.Where("expires_at < ?", time.Now()).Delete(&models.RevokedToken{})
	if result.Error != nil {
		log.Printf("Error al borrar tokens revocados: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("Se borraron %d tokens revocados ya expirados", result.RowsAffected)
	}
}

// StartCleanupJob corre la limpieza al arrancar y después cada 6 horas.
func StartCleanupJob() {
	CleanupExpiredTokens()

	ticker := time.NewTicker(6 * time.Hour)

	go func() {
		defer ticker.Stop()
		for range ticker.C {
			CleanupExpiredTokens()
		}
	}()

	log.Println("Job de limpieza de tokens iniciado (cada 6 horas)")
}
