package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/opencodefirst/codefirst/config"
	"github.com/opencodefirst/codefirst/internal/handler"
)

func Setup(
	cfg *config.Config,
	syncHandler *handler.SyncHandler,
	schemaHandler *handler.SchemaHandler,
	contentHandler *handler.ContentHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		syncHandler.RegisterRoutes(api)
		schemaHandler.RegisterRoutes(api)
		contentHandler.RegisterRoutes(api)
	}

	return r
}
