package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Emilio-Bravo/polieduca/models"
	"github.com/Emilio-Bravo/polieduca/policies"
	"github.com/Emilio-Bravo/polieduca/utils"
)

// Listado de usuarios (solo admin).
func GetUsers(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var users []models.User
	if err := db.Order("created_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo obtener la lista de usuarios"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   users,
	})
}

type UpdateUserInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// Actualización de usuario por un admin; incluye el cambio de rol.
func UpdateUser(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"status": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo obtener el usuario"})
		return
	}

	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "error", "errors": bindingErrors(err)})
		return
	}

	errs := map[string][]string{}
	updates := map[string]interface{}{}

	if input.Name != nil {
		if *input.Name == "" || len([]rune(*input.Name)) > 100 {
			errs["name"] = append(errs["name"], "El campo name debe tener entre 1 y 100 caracteres")
		} else {
			updates["name"] = *input.Name
		}
	}

	if input.Email != nil {
		var other models.User
		if err := db.Where("email = ? AND id <> ?", *input.Email, user.ID).First(&other).Error; err == nil {
			errs["email"] = append(errs["email"], "El correo ya está registrado")
		} else {
			updates["email"] = *input.Email
		}
	}

	if input.Password != nil {
		if len(*input.Password) < 8 {
			errs["password"] = append(errs["password"], "El campo password debe tener al menos 8 caracteres")
		} else {
			hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo cifrar la contraseña"})
				return
			}
			updates["password"] = string(hashed)
		}
	}

	if input.Role != nil {
		switch models.UserRole(*input.Role) {
		case models.RoleUser, models.RoleTeacher, models.RoleAdmin:
			updates["role"] = *input.Role
		default:
			errs["role"] = append(errs["role"], "El rol debe ser user, teacher o admin")
		}
	}

	if len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "error", "errors": errs})
		return
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar el usuario"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "updated",
		"data":   user,
	})
}

// Elimina al usuario junto con sus materiales (filas y blobs) y todos los
// favoritos que lo referencian. Un admin puede borrar a cualquiera; un
// usuario solo a sí mismo.
func DeleteUser(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var target models.User
	if err := db.First(&target, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"status": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo obtener el usuario"})
		return
	}

	actor, err := currentPrincipal(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id inválido"})
		return
	}
	if !policies.CanDeleteUser(actor, target) {
		c.JSON(http.StatusForbidden, gin.H{
			"status":  "error",
			"message": "No tienes permiso para eliminar este usuario",
		})
		return
	}

	var materials []models.Material
	if err := db.Where("user_id = ?", target.ID).Find(&materials).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo obtener los materiales del usuario"})
		return
	}
	materialIDs := make([]uuid.UUID, 0, len(materials))
	for _, m := range materials {
		materialIDs = append(materialIDs, m.ID)
	}

	tx := db.Begin()
	// Favoritos hechos por el usuario y favoritos sobre sus materiales
	if err := tx.Where("user_id = ?", target.ID).Delete(&models.Bookmark{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo eliminar los favoritos"})
		return
	}
	if len(materialIDs) > 0 {
		if err := tx.Where("material_id IN ?", materialIDs).Delete(&models.Bookmark{}).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo eliminar los favoritos"})
			return
		}
		if err := tx.Model(&models.Notification{}).
			Where("material_id IN ?", materialIDs).
			Update("material_id", nil).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo desvincular las notificaciones"})
			return
		}
	}
	if err := tx.Where("user_id = ?", target.ID).Delete(&models.Notification{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo eliminar las notificaciones"})
		return
	}
	if err := tx.Where("user_id = ?", target.ID).Delete(&models.Material{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo eliminar los materiales"})
		return
	}
	if err := tx.Delete(&models.User{}, "id = ?", target.ID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo eliminar el usuario"})
		return
	}
	tx.Commit()

	// Las filas ya no existen; los blobs se limpian best effort
	for _, m := range materials {
		if err := utils.Storage.Delete(m.FilePath); err != nil {
			log.Printf("No se pudo borrar el blob %s: %v", m.FilePath, err)
		}
	}

	c.Status(http.StatusNoContent)
}
