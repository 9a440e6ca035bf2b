// Package api serves contribution data as JSON.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contribgraph/logger"
	"contribgraph/models"
	"contribgraph/validation"
)

// ContributionsService validates raw input and fetches contributions
type ContributionsService interface {
	Contributions(ctx context.Context, raw string) (validation.Identifier, models.FetchOutcome)
}

// ErrorResponse is the body of every non-200 response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Handler serves GET /api/contributions/:username
type Handler struct {
	service ContributionsService
}

// NewHandler creates an API handler
func NewHandler(service ContributionsService) *Handler {
	return &Handler{service: service}
}

// Register mounts the API routes
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/api/contributions/:username", h.Contributions)
}

// Contributions returns the contributions collection of a user. Only
// success and not-found answers carry a Cache-Control header.
func (h *Handler) Contributions(c *gin.Context) {
	username, outcome := h.service.Contributions(c.Request.Context(), c.Param("username"))

	switch outcome.Kind {
	case models.OutcomeRejectedInput:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   validation.ErrInvalidIdentifier.Error(),
			Message: validation.InvalidIdentifierMessage,
		})
		return
	case models.OutcomeNotFound:
		setCacheControl(c, outcome.Cache)
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "User not found",
			Message: fmt.Sprintf("GitHub user %q does not exist", username.String()),
		})
		return
	case models.OutcomeTransportError:
		logger.Warn("Contributions request failed",
			zap.String("username", username.String()),
			zap.String("reason", outcome.Message))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "GitHub API error",
			Message: validation.SafeErrorMessage(errors.New(outcome.Message)),
		})
		return
	}

	if outcome.Calendar() == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "No data",
			Message: "No contribution data available",
		})
		return
	}

	setCacheControl(c, outcome.Cache)
	c.JSON(http.StatusOK, outcome.Collection)
}

// RecoveryHandler answers a panic anywhere in the chain with a generic 500
func RecoveryHandler(c *gin.Context, recovered any) {
	logger.Error("Recovered from panic while serving request",
		zap.Any("panic", recovered),
		zap.String("path", c.Request.URL.Path))
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "Internal server error",
		Message: validation.SafeErrorMessage(nil),
	})
}

func setCacheControl(c *gin.Context, policy models.CachePolicy) {
	if header := policy.Header(); header != "" {
		c.Header("Cache-Control", header)
	}
}
