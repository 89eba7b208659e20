package controllers

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Emilio-Bravo/polieduca/models"
	"github.com/Emilio-Bravo/polieduca/policies"
	"github.com/Emilio-Bravo/polieduca/services"
	"github.com/Emilio-Bravo/polieduca/utils"
)

const (
	materialsPerPage = 10
	maxFileSize      = 100 * 1024 * 1024 // 100MB
)

// Listado con búsqueda, filtros exactos y paginación. Cada elemento indica
// si el usuario autenticado lo tiene en favoritos.
func GetMaterials(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id inválido"})
		return
	}

	// El join con users resuelve siempre el nombre del profesor y permite
	// buscar por él; los filtros vacíos no agregan condición.
	query := db.Model(&models.Material{}).
		Joins("JOIN users ON users.id = materials.user_id")

	search := c.Query("search")
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(materials.title) LIKE ? OR LOWER(users.name) LIKE ?", pattern, pattern)
	}

	semester := c.Query("semester")
	if semester != "" {
		query = query.Where("materials.semester = ?", semester)
	}

	unit := c.Query("unit")
	if unit != "" {
		query = query.Where("materials.unit = ?", unit)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo contar los materiales"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	totalPages := int((total + materialsPerPage - 1) / materialsPerPage)

	var materials []models.Material
	if err := query.Preload("User").
		Order("materials.created_at DESC, materials.id DESC").
		Limit(materialsPerPage).
		Offset((page - 1) * materialsPerPage).
		Find(&materials).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo obtener la lista de materiales"})
		return
	}

	// Una sola consulta resuelve los favoritos de la página
	bookmarked := make(map[uuid.UUID]bool)
	if len(materials) > 0 {
		ids := make([]uuid.UUID, 0, len(materials))
		for _, m := range materials {
			ids = append(ids, m.ID)
		}
		var rows []models.Bookmark
		if err := db.Where("user_id = ? AND material_id IN ?", userID, ids).Find(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo resolver los favoritos"})
			return
		}
		for _, b := range rows {
			bookmarked[b.MaterialID] = true
		}
	}

	items := make([]gin.H, 0, len(materials))
	for _, m := range materials {
		items = append(items, gin.H{
			"id":            m.ID,
			"title":         m.Title,
			"professor":     m.User.Name,
			"file_url":      m.FilePath,
			"semester":      m.Semester,
			"unit":          m.Unit,
			"created_at":    m.CreatedAt.Format(time.RFC3339),
			"is_bookmarked": bookmarked[m.ID],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"content": items,
		"filters": gin.H{
			"search":   search,
			"semester": semester,
			"unit":     unit,
		},
		"pagination": gin.H{
			"current_page": page,
			"total_pages":  totalPages,
		},
	})
}

func CreateMaterial(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	uid, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id inválido"})
		return
	}

	errs := map[string][]string{}

	title := c.PostForm("title")
	validateTitle(title, true, errs)
	semester := validateIntField(c, "semester", 1, 6, true, errs)
	unit := validateIntField(c, "unit", 1, 4, true, errs)
	rating := validateIntField(c, "rating", 0, 5, false, errs)

	file, err := c.FormFile("file")
	var ext string
	if err != nil {
		errs["file"] = append(errs["file"], "El archivo es obligatorio")
	} else {
		ext = validateFile(file, errs)
	}

	// Se reportan todas las violaciones juntas; no hay aplicación parcial
	if len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "error", "errors": errs})
		return
	}

	matID := uuid.New()

	// Primero el blob, después la fila: si la fila falla queda a lo sumo
	// un blob huérfano recuperable, nunca una fila sin archivo.
	fileURL, err := utils.Storage.Upload(file, matID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al subir el archivo", "details": err.Error()})
		return
	}

	preview, err := services.ExtractPreview(file, ext)
	if err != nil {
		log.Printf("No se pudo extraer el preview de %s: %v", file.Filename, err)
	}

	material := models.Material{
		ID:       matID,
		UserID:   uid,
		Title:    title,
		Semester: semester,
		Unit:     unit,
		FilePath: fileURL,
		Preview:  preview,
		Rating:   rating,
	}

	if err := db.Create(&material).Error; err != nil {
		if delErr := utils.Storage.Delete(fileURL); delErr != nil {
			log.Printf("No se pudo limpiar el blob %s: %v", fileURL, delErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo guardar el material"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "created",
		"data":   material,
	})
}

func GetMaterialDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var material models.Material
	if err := db.Preload("User").First(&material, "id = ?", materialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"status": "Material not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo obtener el material"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   material,
	})
}

// Actualización parcial: solo los campos presentes en el formulario.
// Si viene archivo nuevo, primero se sube el nuevo y el viejo se borra al
// final (best effort) para no dejar la fila sin respaldo.
func UpdateMaterial(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

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

	principal, err := currentPrincipal(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id inválido"})
		return
	}
	if !policies.CanMutateMaterial(principal, material) {
		c.JSON(http.StatusForbidden, gin.H{
			"status":  "error",
			"message": "No tienes permiso. Requieres ser el dueño o administrador",
		})
		return
	}

	errs := map[string][]string{}
	updates := map[string]interface{}{}

	if title, ok := c.GetPostForm("title"); ok {
		validateTitle(title, true, errs)
		updates["title"] = title
	}
	if _, ok := c.GetPostForm("semester"); ok {
		updates["semester"] = validateIntField(c, "semester", 1, 6, true, errs)
	}
	if _, ok := c.GetPostForm("unit"); ok {
		updates["unit"] = validateIntField(c, "unit", 1, 4, true, errs)
	}
	if _, ok := c.GetPostForm("rating"); ok {
		updates["rating"] = validateIntField(c, "rating", 0, 5, false, errs)
	}

	file, fileErr := c.FormFile("file")
	var ext string
	if fileErr == nil {
		ext = validateFile(file, errs)
	}

	if len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "error", "errors": errs})
		return
	}

	oldPath := ""
	if fileErr == nil {
		newURL, err := utils.Storage.Upload(file, uuid.NewString())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al subir el archivo", "details": err.Error()})
			return
		}
		oldPath = material.FilePath
		updates["file_path"] = newURL

		preview, err := services.ExtractPreview(file, ext)
		if err != nil {
			log.Printf("No se pudo extraer el preview de %s: %v", file.Filename, err)
		}
		updates["preview"] = preview
	}

	if len(updates) > 0 {
		if err := db.Model(&material).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo actualizar el material"})
			return
		}
	}

	// El blob anterior recién se borra con la fila ya apuntando al nuevo
	if oldPath != "" {
		if err := utils.Storage.Delete(oldPath); err != nil {
			log.Printf("No se pudo borrar el blob anterior %s: %v", oldPath, err)
		}
	}

	if err := db.Preload("User").First(&material, "id = ?", materialID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo recargar el material"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "updated",
		"data":   material,
	})
}

func DeleteMaterial(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

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

	principal, err := currentPrincipal(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id inválido"})
		return
	}
	if !policies.CanMutateMaterial(principal, material) {
		c.JSON(http.StatusForbidden, gin.H{
			"status":  "error",
			"message": "No tienes permiso para eliminar este material",
		})
		return
	}

	tx := db.Begin()
	if err := tx.Where("material_id = ?", material.ID).Delete(&models.Bookmark{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo eliminar los favoritos del material"})
		return
	}
	if err := tx.Model(&models.Notification{}).
		Where("material_id = ?", material.ID).
		Update("material_id", nil).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo desvincular las notificaciones"})
		return
	}
	if err := tx.Delete(&models.Material{}, "id = ?", material.ID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo eliminar el material"})
		return
	}
	tx.Commit()

	// Fila fuera primero; un blob huérfano es basura recuperable
	if err := utils.Storage.Delete(material.FilePath); err != nil {
		log.Printf("No se pudo borrar el blob %s: %v", material.FilePath, err)
	}

	c.Status(http.StatusNoContent)
}

// ====== HELPERS ======

func currentPrincipal(c *gin.Context) (models.User, error) {
	uid, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		return models.User{}, err
	}
	return models.User{ID: uid, Role: models.UserRole(c.GetString("role"))}, nil
}

func validateTitle(title string, required bool, errs map[string][]string) {
	if title == "" {
		if required {
			errs["title"] = append(errs["title"], "El título es obligatorio")
		}
		return
	}
	if len([]rune(title)) > 100 {
		errs["title"] = append(errs["title"], "El título no debe exceder 100 caracteres")
	}
}

func validateIntField(c *gin.Context, field string, min, max int, required bool, errs map[string][]string) int {
	raw := c.PostForm(field)
	if raw == "" {
		if required {
			errs[field] = append(errs[field], fmt.Sprintf("El campo %s es obligatorio", field))
		}
		return min
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		errs[field] = append(errs[field], fmt.Sprintf("El campo %s debe ser un número entero", field))
		return min
	}
	if value < min || value > max {
		errs[field] = append(errs[field], fmt.Sprintf("El campo %s debe estar entre %d y %d", field, min, max))
	}
	return value
}

func validateFile(file *multipart.FileHeader, errs map[string][]string) string {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".pdf", ".docx", ".pptx":
	default:
		errs["file"] = append(errs["file"], "El archivo debe ser pdf, docx o pptx")
	}
	if file.Size > maxFileSize {
		errs["file"] = append(errs["file"], "El archivo no debe exceder 100MB")
	}
	return ext
}
