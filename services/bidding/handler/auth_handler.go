package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"gigflow/internal/auth"
	"gigflow/internal/gigerrors"
	"gigflow/services/bidding/helpers"
	"gigflow/utils"
)

//go:generate mockgen -source=auth_handler.go -destination=mock_auth_service.go -package=handler

type AuthServiceInterface interface {
	Register(ctx context.Context, name, email, password string) (auth.Session, error)
	Login(ctx context.Context, email, password string) (auth.Session, error)
}

type AuthHandler struct {
	service AuthServiceInterface
	cookie  helpers.CookieOptions
}

func NewAuthHandler(service AuthServiceInterface, cookie helpers.CookieOptions) *AuthHandler {
	return &AuthHandler{service: service, cookie: cookie}
}

// RegisterHandler handles POST /api/auth/register
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req helpers.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	session, err := h.service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		helpers.RespondServiceError(c, "RegisterHandler", err, nil)
		return
	}

	helpers.SetAuthCookie(c, h.cookie, session.Token)
	utils.JSONResponse(c, http.StatusCreated, helpers.NewUserResponse(session.User), "user registered successfully")
	helpers.LogSuccess("RegisterHandler", "user registered", map[string]any{"user_id": session.User.ID})
}

// LoginHandler handles POST /api/auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		helpers.RespondServiceError(c, "LoginHandler", err, nil)
		return
	}

	helpers.SetAuthCookie(c, h.cookie, session.Token)
	utils.JSONResponse(c, http.StatusOK, helpers.NewUserResponse(session.User), "logged in successfully")
	helpers.LogSuccess("LoginHandler", "user logged in", map[string]any{"user_id": session.User.ID})
}

// LogoutHandler handles POST /api/auth/logout
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	helpers.ClearAuthCookie(c, h.cookie)
	utils.JSONResponse(c, http.StatusOK, nil, "logged out successfully")
}

// MeHandler handles GET /api/auth/me
func (h *AuthHandler) MeHandler(c *gin.Context) {
	user, ok := helpers.CurrentUser(c)
	if !ok {
		helpers.RespondServiceError(c, "MeHandler", gigerrors.ErrUnauthenticated, nil)
		return
	}
	utils.JSONResponse(c, http.StatusOK, helpers.NewUserResponse(user), "user retrieved successfully")
}
