package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/models"
	"github.com/newsroom-api/internal/service"
	"github.com/rs/zerolog"
)

// NewsHandler handles public and dashboard article endpoints
type NewsHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewNewsHandler creates a new NewsHandler
func NewNewsHandler(services *service.Services, log zerolog.Logger) *NewsHandler {
	return &NewsHandler{
		services: services,
		log:      log.With().Str("handler", "news").Logger(),
	}
}

// Search handles GET /v1/news?q=...&category=...&page=...&limit=...
func (h *NewsHandler) Search(c *gin.Context) {
	page, err := h.services.Article.Search(c.Request.Context(), service.SearchQuery{
		Query:        c.Query("q"),
		CategorySlug: c.Query("category"),
		Page:         queryInt(c, "page", 1),
		Limit:        queryInt(c, "limit", models.DefaultPageSize),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// View handles GET /v1/news/:id
// Counts the read and returns the rendered article
func (h *NewsHandler) View(c *gin.Context) {
	view, err := h.services.Article.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// List handles GET /v1/dashboard/news
func (h *NewsHandler) List(c *gin.Context) {
	articles, err := h.services.Article.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

// Get handles GET /v1/dashboard/news/:id
func (h *NewsHandler) Get(c *gin.Context) {
	article, _ := h.services.Article.Get(c.Request.Context(), c.Param("id"))
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "News not found"})
		return
	}
	c.JSON(http.StatusOK, article)
}

// Create handles POST /v1/dashboard/news
// Accepts JSON or multipart with an optional "file" image
func (h *NewsHandler) Create(c *gin.Context) {
	var in models.ArticleInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	upload, closeUpload, err := formUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image upload"})
		return
	}
	defer closeUpload()

	article, err := h.services.Article.Create(c.Request.Context(), auth.IdentityFrom(c), &in, upload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "news": article})
}

// Update handles PUT /v1/dashboard/news/:id
func (h *NewsHandler) Update(c *gin.Context) {
	var in models.ArticleInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	upload, closeUpload, err := formUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image upload"})
		return
	}
	defer closeUpload()

	article, err := h.services.Article.Update(c.Request.Context(), auth.IdentityFrom(c), c.Param("id"), &in, upload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "news": article})
}

// Delete handles DELETE /v1/dashboard/news/:id
func (h *NewsHandler) Delete(c *gin.Context) {
	if err := h.services.Article.Delete(c.Request.Context(), auth.IdentityFrom(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
