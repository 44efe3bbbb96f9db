package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/appscout/mobbin-proxy/internal/apperrors"
	"github.com/appscout/mobbin-proxy/internal/mobbin"
	"github.com/appscout/mobbin-proxy/internal/utils"
	"github.com/appscout/mobbin-proxy/pkg/logger"
)

// AppHandlers provides HTTP handlers for the app data endpoints.
type AppHandlers struct {
	client *mobbin.Client
}

// NewAppHandlers creates a new app data handler around the shared client.
func NewAppHandlers(client *mobbin.Client) *AppHandlers {
	return &AppHandlers{client: client}
}

// Search runs a full-text app search. An empty result is a valid 200
// response; only an upstream failure produces an error status.
func (h *AppHandlers) Search(c *gin.Context) {
	var req struct {
		Query    string `form:"q" binding:"required,notblank"`
		Platform string `form:"platform" binding:"omitempty,platform"`
	}

	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ProblemBadRequest(c, "The q parameter is required; platform must be one of ios, android, web")
		return
	}

	apps, err := h.client.SearchApps(c.Request.Context(), req.Query, req.Platform)
	if err != nil {
		handleClientError(c, err, "search")
		return
	}

	if apps == nil {
		apps = []mobbin.App{}
	}
	utils.Success(c, apps)
}

// Latest lists the most recently updated apps.
func (h *AppHandlers) Latest(c *gin.Context) {
	var req struct {
		Limit    int    `form:"limit,default=20" binding:"min=1,max=100"`
		Platform string `form:"platform" binding:"omitempty,platform"`
	}

	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ProblemBadRequest(c, "limit must be between 1 and 100; platform must be one of ios, android, web")
		return
	}

	apps, err := h.client.LatestApps(c.Request.Context(), req.Limit, req.Platform)
	if err != nil {
		handleClientError(c, err, "latest-apps")
		return
	}

	if apps == nil {
		apps = []mobbin.App{}
	}
	utils.Success(c, apps)
}

// handleClientError converts apperrors.Error to appropriate HTTP responses.
// Internal error details are logged but never exposed to clients.
func handleClientError(c *gin.Context, err error, operation string) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		if appErr.Internal != "" {
			logger.Error("%s error: %s (internal: %s)", operation, appErr.Message, appErr.Internal)
		}
		if appErr.Err != nil {
			logger.Error("%s underlying error: %v", operation, appErr.Err)
		}

		switch appErr.Code {
		case apperrors.CodeAuthentication:
			utils.ProblemAuthentication(c, appErr.Message)
		case apperrors.CodeForbidden:
			utils.ProblemSessionRequired(c, appErr.Message)
		case apperrors.CodeInvalidInput, apperrors.CodeValidation:
			utils.ProblemBadRequest(c, appErr.Message)
		case apperrors.CodeUpstream:
			utils.ProblemUpstream(c, appErr.Message)
		default:
			utils.ProblemInternalServer(c, "Failed to process "+operation)
		}
		return
	}

	logger.Error("Unhandled error for %s: %v", operation, err)
	utils.ProblemInternalServer(c, "Failed to process "+operation)
}
