package addon

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/titulkysubs/titulkysubs/internal/config"
	"github.com/titulkysubs/titulkysubs/internal/models"
	"github.com/titulkysubs/titulkysubs/internal/reporting"
)

// SubtitleService answers subtitle requests.
type SubtitleService interface {
	GetSubtitles(ctx context.Context, contentType, externalID string) models.SubtitlesResponse
}

// FileStore gives access to stored subtitle files.
type FileStore interface {
	Route() string
	Exists(name string) bool
	Path(name string) string
}

// Handler serves the addon routes.
type Handler struct {
	service  SubtitleService
	files    FileStore
	manifest Manifest
	logger   zerolog.Logger
}

// NewHandler creates the addon handler.
func NewHandler(service SubtitleService, files FileStore, manifest Manifest) *Handler {
	return &Handler{
		service:  service,
		files:    files,
		manifest: manifest,
		logger:   config.GetLogger().With().Str("component", "addon").Logger(),
	}
}

// Router builds the gin engine with all addon routes.
//
//	GET /                                   landing page
//	GET /manifest.json                      addon manifest
//	GET {route}/{type}/{id}[.json]          subtitles for an id
//	GET {route}/{type}/{id}/{extra}[.json]  same, extra arguments ignored
//	GET {route}/{file}                      stored subtitle file
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(reporting.GinRecovery(), requestLogger(h.logger), corsHeaders(), noCache())

	router.GET("/", h.handleIndex)
	router.GET("/manifest.json", h.handleManifest)

	route := h.files.Route() + "/*path"
	router.GET(route, h.handleSubtitles)
	router.HEAD(route, h.handleSubtitles)
	return router
}

func (h *Handler) handleIndex(c *gin.Context) {
	c.String(http.StatusOK, fmt.Sprintf("%s subtitles addon %s\nInstall: /manifest.json\n", h.manifest.Name, h.manifest.Version))
}

func (h *Handler) handleManifest(c *gin.Context) {
	c.JSON(http.StatusOK, h.manifest)
}

func (h *Handler) handleSubtitles(c *gin.Context) {
	segments := strings.Split(strings.Trim(c.Param("path"), "/"), "/")

	switch len(segments) {
	case 1:
		h.serveFile(c, segments[0])
	case 2, 3:
		contentType := segments[0]
		externalID := strings.TrimSuffix(segments[1], ".json")
		h.logger.Info().Str("type", contentType).Str("id", externalID).Msg("Subtitles requested")
		c.JSON(http.StatusOK, h.service.GetSubtitles(c.Request.Context(), contentType, externalID))
	default:
		c.JSON(http.StatusNotFound, models.EmptySubtitles())
	}
}

func (h *Handler) serveFile(c *gin.Context, name string) {
	if name == "" || name != path.Base(name) || !h.files.Exists(name) {
		c.Status(http.StatusNotFound)
		return
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".srt", ".sub":
		c.Header("Content-Type", "text/plain; charset=utf-8")
	}
	c.File(h.files.Path(name))
}
