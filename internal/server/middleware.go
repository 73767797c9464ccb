package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gigflow/internal/auth"
	"gigflow/internal/models"
	"gigflow/services/bidding/helpers"
	"gigflow/utils"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestIDMiddleware reuses an upstream X-Request-ID or assigns a new one,
// echoes it in the response and keeps it on the gin context for logging.
func RequestIDMiddleware(c *gin.Context) {
	id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
	if id == "" || len(id) > 128 {
		id = utils.GenerateID()
	}
	c.Set(requestIDKey, id)
	c.Header(RequestIDHeader, id)
	c.Next()
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"status":     c.Writer.Status(),
		"latency":    time.Since(start).String(),
		"request_id": c.GetString(requestIDKey),
	})
}

// CORSMiddleware allows the configured browser origin to call the API with
// credentials (the session cookie).
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	const (
		methods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
		headers = "Accept, Authorization, Content-Type, " + RequestIDHeader
	)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowedOrigin == "*" || origin == allowedOrigin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", headers)
			c.Header("Access-Control-Max-Age", "300")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Authenticator resolves a session token to the user it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// AuthMiddleware rejects requests without a valid session and attaches the
// caller to the context for the handlers.
func AuthMiddleware(authenticator Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.TokenFromRequest(c.Request, cookieName)
		user, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			status, message := helpers.MapErrorToHTTP(err)
			if status != http.StatusInternalServerError {
				status, message = http.StatusUnauthorized, "not authorized"
			}
			utils.Warn("AuthMiddleware: request not authenticated", map[string]any{
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(requestIDKey),
				"error":      err.Error(),
			})
			if status == http.StatusInternalServerError {
				err = errors.New(message)
			}
			utils.AbortWithError(c, status, err, message)
			return
		}

		c.Set(helpers.ContextUserIDKey, user.ID)
		c.Set(helpers.ContextUserKey, user)
		c.Next()
	}
}
