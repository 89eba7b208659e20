package controllers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"

	"github.com/Emilio-Bravo/polieduca/models"
	"github.com/Emilio-Bravo/polieduca/utils"
)

// ====== INPUT STRUCTS ======
type RegisterInput struct {
	Name                 string `json:"name" binding:"required,max=100"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ====== HANDLERS ======
func Register(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "error", "errors": bindingErrors(err)})
		return
	}

	// El correo debe ser único
	var existing models.User
	if err := db.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": "error",
			"errors": gin.H{"email": []string{"El correo ya está registrado"}},
		})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo cifrar la contraseña"})
		return
	}

	// El registro siempre crea rol user; los roles los asigna un admin
	newUser := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashed),
		Role:     models.RoleUser,
	}

	if err := db.Create(&newUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al crear el usuario"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "created",
		"data":   newUser,
	})
}

func Login(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "error", "errors": bindingErrors(err)})
		return
	}

	var user models.User
	if err := db.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Credenciales incorrectas"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Credenciales incorrectas"})
		return
	}

	token, err := utils.GenerateToken(user.ID.String(), string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo generar el token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

type GoogleLoginInput struct {
	IDToken string `json:"id_token" binding:"required"`
}

func GoogleLogin(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input GoogleLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "error", "errors": bindingErrors(err)})
		return
	}

	// Verifica el token contra el GOOGLE_CLIENT_ID de la app
	payload, err := idtoken.Validate(c, input.IDToken, os.Getenv("GOOGLE_CLIENT_ID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token de Google inválido"})
		return
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)

	// Busca el usuario; si no existe lo crea
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		user = models.User{
			Email: email,
			Name:  name,
			Role:  models.RoleUser,
			// Password vacío: la cuenta entra solo por Google
		}
		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo crear el usuario de Google"})
			return
		}
	}

	token, err := utils.GenerateToken(user.ID.String(), string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo generar el token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout revoca la sesión actual: el jti del token entra a la lista negra
// hasta que expire por sí solo.
func Logout(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	claimsValue, exists := c.Get("claims")
	claims, ok := claimsValue.(*utils.Claims)
	if !exists || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no válida"})
		return
	}

	expiresAt := time.Now().Add(72 * time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	revoked := models.RevokedToken{JTI: claims.ID, ExpiresAt: expiresAt}
	if err := db.Create(&revoked).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo cerrar la sesión"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Sesión cerrada",
	})
}

// GetProfile devuelve el perfil del usuario autenticado.
func GetProfile(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetString("user_id")

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   user,
	})
}

// Campos opcionales: solo se aplica lo que venga presente en el cuerpo.
type UpdateProfileInput struct {
	Name                 *string `json:"name"`
	Email                *string `json:"email"`
	Password             *string `json:"password"`
	PasswordConfirmation *string `json:"password_confirmation"`
}

func UpdateProfile(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetString("user_id")

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "User not found"})
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "error", "errors": bindingErrors(err)})
		return
	}

	errs := map[string][]string{}
	updates := map[string]interface{}{}

	if input.Name != nil {
		if *input.Name == "" {
			errs["name"] = append(errs["name"], "El nombre no puede estar vacío")
		} else if len([]rune(*input.Name)) > 100 {
			errs["name"] = append(errs["name"], "El campo name no debe exceder 100 caracteres")
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
		switch {
		case len(*input.Password) < 8:
			errs["password"] = append(errs["password"], "El campo password debe tener al menos 8 caracteres")
		case input.PasswordConfirmation == nil || *input.PasswordConfirmation != *input.Password:
			errs["password"] = append(errs["password"], "La confirmación de contraseña no coincide")
		default:
			hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo cifrar la contraseña"})
				return
			}
			updates["password"] = string(hashed)
		}
	}

	if len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "error", "errors": errs})
		return
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar el perfil"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "updated",
		"data":   user,
	})
}
