// Package httpserver exposes the session service over HTTP. The routes
// mirror the browser flow: check for an existing session, authenticate
// with ERP credentials, log out, and fetch the full credential bundle for
// trusted server-side agent use.
package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agentreports/erpauth/core/authsession"
	"github.com/agentreports/erpauth/core/logger"
	"github.com/agentreports/erpauth/pkg/clientip"
)

// Handler serves the /api/auth routes.
type Handler struct {
	sessions *authsession.Service
	log      *slog.Logger
}

// NewHandler creates the auth handler around the session service.
func NewHandler(sessions *authsession.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{sessions: sessions, log: log}
}

// RegisterRoutes mounts the auth routes on the engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	auth := r.Group("/api/auth")
	auth.POST("/check-session", h.checkSession)
	auth.POST("/authenticate", h.authenticate)
	auth.POST("/logout", h.logout)
	auth.POST("/credentials", h.credentials)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

type authenticateRequest struct {
	URL      string `json:"url"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// publicCredentials is the credential view returned to browsers: every
// field except the password.
func publicCredentials(creds authsession.Credentials) gin.H {
	return gin.H{
		"url":      creds.URL,
		"database": creds.Database,
		"username": creds.Username,
	}
}

func (h *Handler) checkSession(c *gin.Context) {
	session, err := h.sessions.GetSession(c.Request.Context(), c.Request.UserAgent(), clientip.GetIP(c.Request))
	if errors.Is(err, authsession.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{
			"authenticated": false,
			"message":       "No valid session found",
		})
		return
	}
	if err != nil {
		h.log.Error("session check failed", logger.Component("httpserver"), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"authenticated": false,
			"error":         "Session check failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"session_id":    session.ID,
		"credentials":   publicCredentials(session.Credentials),
		"message":       "Valid session found",
	})
}

func (h *Handler) authenticate(c *gin.Context) {
	var req authenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "No data provided",
		})
		return
	}

	creds := authsession.Credentials{
		URL:      strings.TrimSpace(req.URL),
		Database: strings.TrimSpace(req.Database),
		Username: strings.TrimSpace(req.Username),
		Password: strings.TrimSpace(req.Password),
	}

	result, err := h.sessions.AuthenticateAndSave(c.Request.Context(), creds, c.Request.UserAgent(), clientip.GetIP(c.Request))
	if err != nil {
		var verr *authsession.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": verr.Error(),
			})
		case errors.Is(err, authsession.ErrConnection):
			h.log.Warn("authentication rejected",
				logger.Component("httpserver"),
				logger.ID("username", creds.Username))
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": err.Error(),
			})
		default:
			h.log.Error("authentication failed", logger.Component("httpserver"), logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Authentication failed",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"session_id":  result.SessionID,
		"message":     result.Message,
		"credentials": publicCredentials(creds),
	})
}

func (h *Handler) logout(c *gin.Context) {
	err := h.sessions.ClearSession(c.Request.Context(), c.Request.UserAgent(), clientip.GetIP(c.Request))
	if err != nil {
		h.log.Error("logout failed", logger.Component("httpserver"), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to clear session",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Session cleared successfully",
	})
}

// credentials returns the full bundle including the password. It exists
// for trusted server-side collaborators (the reporting agent) and must
// never be exposed to untrusted clients; deploy it behind the internal
// network boundary.
func (h *Handler) credentials(c *gin.Context) {
	session, err := h.sessions.GetSession(c.Request.Context(), c.Request.UserAgent(), clientip.GetIP(c.Request))
	if errors.Is(err, authsession.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "No valid session found",
		})
		return
	}
	if err != nil {
		h.log.Error("credential fetch failed", logger.Component("httpserver"), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch credentials",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"session_id":  session.ID,
		"credentials": session.Credentials,
	})
}
