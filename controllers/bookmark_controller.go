package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Emilio-Bravo/polieduca/models"
	"github.com/Emilio-Bravo/polieduca/ws"
)

const bookmarksPerPage = 10

// Agrega el material a favoritos. La operación es idempotente: repetirla
// no duplica la fila ni cambia la respuesta. La unicidad la garantiza la
// clave compuesta con insert-or-ignore, no un check previo.
func AddBookmark(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id inválido"})
		return
	}

	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var material models.Material
	if err := db.First(&material, "id = ?", materialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"status": "Material not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo obtener el material"})
		return
	}

	bookmark := models.Bookmark{
		UserID:     userID,
		MaterialID: materialID,
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&bookmark)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo agregar a favoritos"})
		return
	}

	// Solo la primera vez se notifica al dueño
	if result.RowsAffected > 0 && material.UserID != userID {
		notifyOwner(db, userID, material)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Material añadido a favoritos",
	})
}

func notifyOwner(db *gorm.DB, userID uuid.UUID, material models.Material) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return
	}

	noti := models.Notification{
		UserID:     material.UserID,
		Title:      "Tu material fue guardado",
		Message:    user.Name + " añadió \"" + material.Title + "\" a sus favoritos",
		Type:       "bookmark",
		MaterialID: &material.ID,
	}
	db.Create(&noti)

	var count int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", material.UserID).
		Count(&count)

	payload := map[string]interface{}{
		"type":        "bookmark_notification",
		"title":       noti.Title,
		"message":     noti.Message,
		"material_id": material.ID,
	}
	if data, err := json.Marshal(payload); err == nil {
		ws.H.BroadcastToUser(material.UserID.String(), data)
	}
	ws.SendBadgeUpdate(material.UserID.String(), count)
}

// Quita el material de favoritos. Si el par no existía, es un no-op y
// también responde éxito.
func RemoveBookmark(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id inválido"})
		return
	}

	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var material models.Material
	if err := db.Select("id").First(&material, "id = ?", materialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"status": "Material not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo obtener el material"})
		return
	}

	if err := db.Where("user_id = ? AND material_id = ?", userID, materialID).
		Delete(&models.Bookmark{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo quitar de favoritos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Material removido de favoritos",
	})
}

// Lista los favoritos del usuario, ordenados por fecha de guardado.
func GetBookmarks(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id inválido"})
		return
	}

	query := db.Model(&models.Bookmark{}).
		Joins("JOIN materials ON materials.id = bookmarks.material_id").
		Where("bookmarks.user_id = ?", userID)

	if semester := c.Query("semester"); semester != "" {
		query = query.Where("materials.semester = ?", semester)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo contar los favoritos"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	totalPages := int((total + bookmarksPerPage - 1) / bookmarksPerPage)

	var bookmarks []models.Bookmark
	if err := query.Preload("Material").Preload("Material.User").
		Order("bookmarks.created_at DESC, bookmarks.material_id DESC").
		Limit(bookmarksPerPage).
		Offset((page - 1) * bookmarksPerPage).
		Find(&bookmarks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo obtener los favoritos"})
		return
	}

	items := make([]gin.H, 0, len(bookmarks))
	for _, b := range bookmarks {
		m := b.Material

		// file_url nulo si el material quedó sin ruta
		var fileURL interface{}
		if m.FilePath != "" {
			fileURL = m.FilePath
		}

		// Fallback solo de presentación; el dueño siempre debería resolver
		professor := m.User.Name
		if professor == "" {
			professor = "Profesor desconocido"
		}

		items = append(items, gin.H{
			"id":         m.ID,
			"title":      m.Title,
			"file_url":   fileURL,
			"semester":   m.Semester,
			"unit":       m.Unit,
			"professor":  professor,
			"created_at": b.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"bookmarks": items,
		"pagination": gin.H{
			"current_page": page,
			"total_pages":  totalPages,
			"total_items":  total,
			"per_page":     bookmarksPerPage,
		},
	})
}
