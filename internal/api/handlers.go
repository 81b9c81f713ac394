package api

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/romangod6/site2md/internal/crawler"
	"github.com/romangod6/site2md/internal/models"
	"github.com/romangod6/site2md/internal/storage"
)

// Runner processes a run that has already been recorded.
// *crawler.Crawler satisfies it.
type Runner interface {
	Process(ctx context.Context, run *models.Run) (*models.RunSummary, error)
}

type Handler struct {
	store  storage.Store
	runner Runner
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PaginationResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalCount int         `json:"total_count,omitempty"`
}

type StartRunRequest struct {
	Root string `json:"root" binding:"required"`
}

func NewHandler(store storage.Store, runner Runner) *Handler {
	return &Handler{store: store, runner: runner}
}

func (h *Handler) ListRuns(c *gin.Context) {
	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	runs, err := h.store.ListRuns(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch runs"})
		return
	}

	if runs == nil {
		runs = []*models.Run{}
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  runs,
		Page:  page,
		Limit: limit,
	})
}

func (h *Handler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid run ID"})
		return
	}

	run, err := h.store.GetRun(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch run"})
		return
	}

	if run == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Run not found"})
		return
	}

	c.JSON(http.StatusOK, run)
}

// StartRun records a run for the requested root and processes it in the
// background. The response carries the run as recorded.
func (h *Handler) StartRun(c *gin.Context) {
	if h.runner == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Runs are not enabled"})
		return
	}

	var req StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload"})
		return
	}

	root := crawler.NormalizeRoot(req.Root)
	if root == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Site root is required"})
		return
	}

	run := models.NewRun(root)
	if err := h.store.CreateRun(c.Request.Context(), run); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to record run"})
		return
	}

	accepted := *run

	// Start the run in a goroutine
	go func() {
		log.Printf("Starting run %s for %s", run.ID, run.Root)
		summary, err := h.runner.Process(context.Background(), run)
		if err != nil {
			log.Printf("Run %s failed: %v", run.ID, err)
			return
		}
		log.Printf("Run %s completed: %d of %d page(s) converted", run.ID, summary.Converted, summary.Discovered)
	}()

	c.JSON(http.StatusAccepted, accepted)
}

func (h *Handler) GetDocumentsByRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid run ID"})
		return
	}

	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	docs, err := h.store.GetDocumentsByRun(c.Request.Context(), runID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch documents"})
		return
	}

	respondDocuments(c, docs, page, limit)
}

func (h *Handler) ListDocuments(c *gin.Context) {
	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	docs, err := h.store.ListDocuments(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch documents"})
		return
	}

	respondDocuments(c, docs, page, limit)
}

func (h *Handler) GetDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid document ID"})
		return
	}

	doc, err := h.store.GetDocument(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch document"})
		return
	}

	if doc == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Document not found"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *Handler) SearchDocuments(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Search query is required"})
		return
	}

	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	docs, err := h.store.SearchDocuments(c.Request.Context(), query, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to search documents"})
		return
	}

	respondDocuments(c, docs, page, limit)
}

func respondDocuments(c *gin.Context, docs []*models.Document, page, limit int) {
	if docs == nil {
		docs = []*models.Document{}
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  docs,
		Page:  page,
		Limit: limit,
	})
}

// Utility functions
func getPaginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	return page, limit
}
