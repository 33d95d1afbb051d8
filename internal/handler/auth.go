package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xddprog/auth-backend/internal/model"
	"github.com/xddprog/auth-backend/internal/service"
)

const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

// VKProvider and YandexProvider are the slices of internal/client the
// handlers need; tests substitute fakes.
type VKProvider interface {
	ExchangeCode(ctx context.Context, code string) (*model.ExternalUser, error)
}

type YandexProvider interface {
	GetUser(ctx context.Context, accessToken string) (*model.ExternalUser, error)
}

type AuthHandler struct {
	svc    *service.AuthService
	vk     VKProvider
	yandex YandexProvider
}

func NewAuthHandler(svc *service.AuthService, vk VKProvider, yandex YandexProvider) *AuthHandler {
	return &AuthHandler{svc: svc, vk: vk, yandex: yandex}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RegisterForm true "Username, email and password"
// @Success 201 {object} model.UserResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var form model.RegisterForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, accessToken, refreshToken, err := h.svc.Register(c.Request.Context(), form)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	h.setAuthCookies(c, accessToken, refreshToken)
	c.JSON(http.StatusCreated, model.NewUserResponse(user))
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginForm true "Email and password"
// @Success 200 {object} model.UserResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var form model.LoginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, accessToken, refreshToken, err := h.svc.Login(c.Request.Context(), form)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	h.setAuthCookies(c, accessToken, refreshToken)
	c.JSON(http.StatusOK, model.NewUserResponse(user))
}

// Refresh godoc
// @Summary Refresh the access token
// @Description Uses the refresh_token cookie. The refresh token itself is
// @Description not rotated.
// @Tags auth
// @Produce json
// @Success 200 {object} model.StatusResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie(refreshCookieName)
	accessToken, err := h.svc.RefreshAccessToken(c.Request.Context(), refreshToken)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	h.setCookie(c, accessCookieName, accessToken, h.svc.AccessCookieMaxAge())
	c.JSON(http.StatusOK, model.StatusResponse{Status: "refreshed"})
}

// Logout godoc
// @Summary Logout
// @Description Clears both token cookies. Outstanding tokens stay valid
// @Description until natural expiry; there is no server-side revocation.
// @Tags auth
// @Produce json
// @Success 200 {object} model.LogoutResponse
// @Router /logout [delete]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearCookie(c, accessCookieName)
	h.clearCookie(c, refreshCookieName)
	c.JSON(http.StatusOK, model.LogoutResponse{Detail: "logged out"})
}

// CurrentUser godoc
// @Summary Get the current user
// @Description Requires a valid access_token cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} model.UserResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /current_user [get]
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	user := GetCurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, model.NewUserResponse(user))
}

// LoginVK godoc
// @Summary Login through VK
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.VKLoginRequest true "VK authorization code"
// @Success 200 {object} model.UserResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /vk [post]
func (h *AuthHandler) LoginVK(c *gin.Context) {
	var req model.VKLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ext, err := h.vk.ExchangeCode(c.Request.Context(), req.Code)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "provider exchange failed"})
		return
	}

	h.loginExternal(c, *ext)
}

// LoginYandex godoc
// @Summary Login through Yandex
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.YandexLoginRequest true "Yandex OAuth access token"
// @Success 200 {object} model.UserResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /yandex [post]
func (h *AuthHandler) LoginYandex(c *gin.Context) {
	var req model.YandexLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ext, err := h.yandex.GetUser(c.Request.Context(), req.AccessToken)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "provider exchange failed"})
		return
	}

	h.loginExternal(c, *ext)
}

func (h *AuthHandler) loginExternal(c *gin.Context, ext model.ExternalUser) {
	user, accessToken, refreshToken, err := h.svc.LoginWithExternalIdentity(c.Request.Context(), ext)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	h.setAuthCookies(c, accessToken, refreshToken)
	c.JSON(http.StatusOK, model.NewUserResponse(user))
}

func (h *AuthHandler) setAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	h.setCookie(c, accessCookieName, accessToken, h.svc.AccessCookieMaxAge())
	h.setCookie(c, refreshCookieName, refreshToken, h.svc.RefreshCookieMaxAge())
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	cfg := h.svc.CookieConfig()
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(name, value, maxAge, cfg.Path, cfg.Domain, cfg.Secure, true)
}

func (h *AuthHandler) clearCookie(c *gin.Context, name string) {
	cfg := h.svc.CookieConfig()
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(name, "", -1, cfg.Path, cfg.Domain, cfg.Secure, true)
}

func writeAuthError(c *gin.Context, err error) {
	switch err {
	case service.ErrUserAlreadyRegistered:
		c.JSON(http.StatusConflict, gin.H{"error": "user already registered"})
	case service.ErrUsernameTaken:
		c.JSON(http.StatusConflict, gin.H{"error": "username taken"})
	case service.ErrUserNotRegistered:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not registered"})
	case service.ErrInvalidCredentials:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case service.ErrInvalidToken:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case service.ErrUserNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
