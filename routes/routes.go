package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Emilio-Bravo/polieduca/controllers"
	"github.com/Emilio-Bravo/polieduca/middleware"
	"github.com/Emilio-Bravo/polieduca/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")
	api.Use(middleware.DBMiddleware(db))

	// Autenticación
	api.POST("/register", controllers.Register)
	api.POST("/login", controllers.Login)
	api.POST("/login/google", controllers.GoogleLogin)

	// Rutas protegidas (requieren token)
	auth := api.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		// Perfil
		auth.GET("/user", controllers.GetProfile)
		auth.PUT("/user", controllers.UpdateProfile)
		auth.POST("/logout", controllers.Logout)

		// Materiales
		auth.GET("/materials", controllers.GetMaterials)
		auth.POST("/materials", controllers.CreateMaterial)
		auth.GET("/materials/:id", controllers.GetMaterialDetail)
		auth.PUT("/materials/:id", controllers.UpdateMaterial)
		auth.PATCH("/materials/:id", controllers.UpdateMaterial)
		auth.DELETE("/materials/:id", controllers.DeleteMaterial)

		// Favoritos
		auth.POST("/materials/:id/bookmark", controllers.AddBookmark)
		auth.DELETE("/materials/:id/bookmark", controllers.RemoveBookmark)
		auth.GET("/users/me/bookmarks", controllers.GetBookmarks)

		// Notificaciones
		auth.GET("/notifications", controllers.GetNotifications)
		auth.GET("/notifications/unread-count", controllers.GetUnreadCount)
		auth.PATCH("/notifications/:id/read", controllers.MarkNotificationAsRead)

		// El propio usuario puede darse de baja; un admin puede borrar a cualquiera
		auth.DELETE("/users/:id", controllers.DeleteUser)
	}

	// Administración de usuarios
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles("admin"))
	{
		admin.GET("/users", controllers.GetUsers)
		admin.PUT("/users/:id", controllers.UpdateUser)
	}

	r.GET("/ws/notifications", ws.HandleNotificationsWebSocket)

	return r
}
