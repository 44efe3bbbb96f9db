package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/appscout/mobbin-proxy/internal/mobbin"
	"github.com/appscout/mobbin-proxy/internal/utils"
	"github.com/appscout/mobbin-proxy/pkg/logger"
)

// AuthHandlers provides HTTP handlers for the login endpoints. Both flows
// end in the same place: a session token held by the shared client.
type AuthHandlers struct {
	client *mobbin.Client
}

// NewAuthHandlers creates a new authentication handler around the shared client.
func NewAuthHandlers(client *mobbin.Client) *AuthHandlers {
	return &AuthHandlers{client: client}
}

// SendCode requests a one-time login code for the given email address.
// Returns 200 with a confirmation message; upstream failures map to 502.
// Repeated calls issue independent upstream requests.
func (h *AuthHandlers) SendCode(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ProblemBadRequest(c, "A valid email address is required")
		return
	}

	if err := h.client.RequestOneTimeCode(c.Request.Context(), req.Email); err != nil {
		logger.Error("send-code failed for %s: %v", req.Email, err)
		utils.ProblemUpstream(c, "Failed to send one-time code")
		return
	}

	utils.Message(c, fmt.Sprintf("One-time code sent to %s", req.Email))
}

// VerifyCode completes the OTP flow. On success the shared client holds the
// session and data routes become available. Wrong, expired, or unverifiable
// codes all map to 401.
func (h *AuthHandlers) VerifyCode(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required,notblank"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ProblemBadRequest(c, "A valid email address and code are required")
		return
	}

	session, err := h.client.VerifyOneTimeCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		logger.Error("verify failed for %s: %v", req.Email, err)
		utils.ProblemAuthentication(c, "Verification failed: code is wrong or expired")
		return
	}

	logger.Info("login: session established for %s", session.User.Email)
	utils.Message(c, "Login successful")
}

// PasswordLogin authenticates with email and password. Only works for
// accounts that have set a password upstream. Same result contract as
// VerifyCode.
func (h *AuthHandlers) PasswordLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ProblemBadRequest(c, "A valid email address and password are required")
		return
	}

	session, err := h.client.LoginWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.Error("password login failed for %s: %v", req.Email, err)
		utils.ProblemAuthentication(c, "Login failed: check email and password")
		return
	}

	logger.Info("login: session established for %s", session.User.Email)
	utils.Message(c, "Login successful")
}
