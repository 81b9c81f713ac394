package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/romangod6/site2md/internal/storage"
)

type Server struct {
	router *gin.Engine
	port   int
	server *http.Server
}

// NewServer exposes the run and document ledger of store. A nil runner
// disables POST /api/runs.
func NewServer(port int, store storage.Store, runner Runner) *Server {
	return &Server{
		router: NewRouter(NewHandler(store, runner)),
		port:   port,
	}
}

func NewRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	// Setup CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Setup routes
	api := router.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		// Runs routes
		runs := api.Group("/runs")
		{
			runs.GET("", handler.ListRuns)
			runs.POST("", handler.StartRun)
			runs.GET("/:id", handler.GetRun)
			runs.GET("/:id/documents", handler.GetDocumentsByRun)
		}

		// Documents routes
		documents := api.Group("/documents")
		{
			documents.GET("", handler.ListDocuments)
			documents.GET("/search", handler.SearchDocuments)
			documents.GET("/:id", handler.GetDocument)
		}
	}

	return router
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
