package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Emilio-Bravo/polieduca/config"
	"github.com/Emilio-Bravo/polieduca/routes"
	"github.com/Emilio-Bravo/polieduca/utils"
)

func main() {
	// Carga .env
	if err := godotenv.Load(); err != nil {
		log.Println("No se encontró el archivo .env")
	}

	config.InitDB()

	// Limpieza periódica de tokens revocados
	utils.StartCleanupJob()

	r := gin.Default()

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r = routes.SetupRouter(r, config.DB)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Servidor escuchando en el puerto " + port)
	r.Run(":" + port)
}
