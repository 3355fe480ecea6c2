package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/sitemapgen/internal/config"
	"github.com/nao1215/sitemapgen/internal/database"
	"github.com/nao1215/sitemapgen/internal/model"
	"github.com/nao1215/sitemapgen/internal/pipeline"
	"github.com/nao1215/sitemapgen/internal/sitemap"
)

// Error bodies returned by the API.
const (
	msgInvalidURL       = "invalid URL"
	msgGenerationFailed = "failed to generate sitemap"
	msgNotFound         = "sitemap not found"
	msgArchiveFailed    = "failed to read archive"
)

// generateRequest is the body of POST /generate-sitemap.
type generateRequest struct {
	URL        string `json:"url"`
	ChangeFreq string `json:"changeFreq"`
	Priority   string `json:"priority"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) generateSitemap(c *gin.Context) {
	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidURL})
		return
	}
	if err := config.ValidateURL(body.URL); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidURL})
		return
	}

	result, err := s.generator.Generate(c.Request.Context(), pipeline.Request{
		URL: body.URL,
		Options: model.SitemapOptions{
			ChangeFrequency: body.ChangeFreq,
			Priority:        body.Priority,
		},
	})
	if err != nil {
		s.logger.Error("failed to generate sitemap", "url", body.URL, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: msgGenerationFailed})
		return
	}

	c.Data(http.StatusOK, sitemap.ContentType, []byte(result.Document))
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listSitemaps(c *gin.Context) {
	list, err := s.archive.ListSitemaps(c.Request.Context(), c.Query("url"))
	if err != nil {
		s.logger.Error("failed to list sitemaps", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: msgArchiveFailed})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getSitemap(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, errorResponse{Error: msgNotFound})
		return
	}

	record, err := s.archive.GetSitemap(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorResponse{Error: msgNotFound})
		return
	}
	if err != nil {
		s.logger.Error("failed to read sitemap", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: msgArchiveFailed})
		return
	}

	c.Data(http.StatusOK, sitemap.ContentType, []byte(record.Document))
}
