package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gigflow/internal/gigerrors"
	"gigflow/internal/models"
	"gigflow/utils"
)

// Context keys set by the auth middleware.
const (
	ContextUserIDKey = "userID"
	ContextUserKey   = "user"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, gigerrors.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, gigerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, gigerrors.ErrUnauthenticated):
		return http.StatusUnauthorized, "not authorized"
	case errors.Is(err, gigerrors.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, gigerrors.ErrBidNotFound):
		return http.StatusNotFound, "bid not found"
	case errors.Is(err, gigerrors.ErrGigNotFound):
		return http.StatusNotFound, "gig not found"
	case errors.Is(err, gigerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, gigerrors.ErrInvalidState):
		return http.StatusBadRequest, "invalid state"
	case errors.Is(err, gigerrors.ErrEmailTaken):
		return http.StatusConflict, "email already in use"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondServiceError maps err, writes the error envelope and logs it. Server
// errors keep their cause out of the response body in release mode.
func RespondServiceError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["status"] = status
	fields["error"] = err.Error()

	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", fields)
		if gin.Mode() == gin.ReleaseMode {
			utils.JSONError(c, status, errors.New(message), message)
			return
		}
	} else {
		utils.Warn(handlerName+": request rejected", fields)
	}

	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// CurrentUser returns the user the auth middleware attached to the request.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// CookieOptions describes the session cookie.
type CookieOptions struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// SameSite is Strict for secure (production) cookies and Lax otherwise.
func (o CookieOptions) SameSite() http.SameSite {
	if o.Secure {
		return http.SameSiteStrictMode
	}
	return http.SameSiteLaxMode
}

// SetAuthCookie stores the session token in an HttpOnly cookie.
func SetAuthCookie(c *gin.Context, opts CookieOptions, token string) {
	c.SetSameSite(opts.SameSite())
	c.SetCookie(opts.Name, token, int(opts.MaxAge.Seconds()), "/", "", opts.Secure, true)
}

// ClearAuthCookie expires the session cookie.
func ClearAuthCookie(c *gin.Context, opts CookieOptions) {
	c.SetSameSite(opts.SameSite())
	c.SetCookie(opts.Name, "", -1, "/", "", opts.Secure, true)
}
