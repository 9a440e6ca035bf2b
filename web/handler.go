// Package web serves the server-rendered contribution graph page.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contribgraph/graph"
	"contribgraph/logger"
	"contribgraph/models"
	"contribgraph/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	graphTemplate = "graph.html"
	errorTemplate = "error.html"
)

// User-facing page messages
const (
	InvalidUsernameMessage = "Invalid GitHub username format. " + validation.InvalidIdentifierMessage + "."
	UserNotFoundMessage    = "The GitHub user you're looking for doesn't exist. Please check the username and try again."
	NoDataMessage          = "No contribution data available for this user"
)

// ContributionsService validates raw input and fetches contributions
type ContributionsService interface {
	Contributions(ctx context.Context, raw string) (validation.Identifier, models.FetchOutcome)
}

// Templates parses the embedded page templates. Install them on the engine
// with SetHTMLTemplate before serving pages.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// Handler renders the contribution graph page
type Handler struct {
	service ContributionsService
}

// NewHandler creates a page handler
func NewHandler(service ContributionsService) *Handler {
	return &Handler{service: service}
}

// Register mounts the page route
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/:username", h.Page)
}

type graphView struct {
	Username    string
	Theme       models.Theme
	Total       string
	Columns     []graph.Column
	Legend      []string
	CellSize    int
	CellGap     int
	GridPadding int
}

type errorView struct {
	StatusCode int
	Heading    string
	Message    string
}

// Page handles GET /:username?theme=light|dark
func (h *Handler) Page(c *gin.Context) {
	theme := validation.ValidateTheme(c.Query("theme"))
	username, outcome := h.service.Contributions(c.Request.Context(), c.Param("username"))

	switch outcome.Kind {
	case models.OutcomeRejectedInput:
		renderError(c, http.StatusBadRequest, InvalidUsernameMessage)
		return
	case models.OutcomeNotFound:
		renderError(c, http.StatusNotFound, UserNotFoundMessage)
		return
	case models.OutcomeTransportError:
		logger.Warn("Rendering error page for failed fetch",
			zap.String("username", username.String()),
			zap.String("reason", outcome.Message))
		renderError(c, http.StatusInternalServerError, validation.SafeErrorMessage(errors.New(outcome.Message)))
		return
	}

	calendar := outcome.Calendar()
	if calendar == nil {
		renderError(c, http.StatusNotFound, NoDataMessage)
		return
	}

	// the rendered page is cached for the fresh window only
	pagePolicy := models.CachePolicy{MaxAge: outcome.Cache.MaxAge}
	if header := pagePolicy.Header(); header != "" {
		c.Header("Cache-Control", header)
	}

	c.HTML(http.StatusOK, graphTemplate, graphView{
		Username:    username.String(),
		Theme:       theme,
		Total:       graph.ContributionLabel(calendar.TotalContributions),
		Columns:     graph.Layout(calendar, theme),
		Legend:      graph.Legend(theme),
		CellSize:    graph.CellSize,
		CellGap:     graph.CellGap,
		GridPadding: graph.GridPadding,
	})
}

func renderError(c *gin.Context, status int, message string) {
	heading := "Error"
	if status == http.StatusNotFound {
		heading = "User Not Found"
	}
	c.HTML(status, errorTemplate, errorView{
		StatusCode: status,
		Heading:    heading,
		Message:    message,
	})
}
