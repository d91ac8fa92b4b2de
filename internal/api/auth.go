package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/lalith-99/tasklane/internal/service"
)

// AuthHandler serves /auth. Register and login are public; they are what
// hands out tokens in the first place.
//
// The token-bearing responses keep token and user at the top level of the
// body, next to success, because browser clients read data.token directly.
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type registerTenantRequest struct {
	TenantName    string `json:"tenantName" binding:"max=200"`
	Subdomain     string `json:"subdomain" binding:"max=63"`
	AdminName     string `json:"adminName" binding:"max=200"`
	AdminEmail    string `json:"adminEmail" binding:"omitempty,email,max=254"`
	AdminPassword string `json:"adminPassword" binding:"max=72"`
}

type loginRequest struct {
	Email     string `json:"email" binding:"max=254"`
	Password  string `json:"password" binding:"max=72"`
	Subdomain string `json:"subdomain" binding:"max=63"`
}

type registerResponse struct {
	Success bool           `json:"success"`
	Token   string         `json:"token"`
	Tenant  *models.Tenant `json:"tenant"`
	User    *models.User   `json:"user"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

// RegisterTenant handles POST /api/auth/register-tenant
func (h *AuthHandler) RegisterTenant(c *gin.Context) {
	var req registerTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindMessage(err))
		return
	}

	res, err := h.svc.RegisterTenant(c.Request.Context(), service.RegisterTenantInput{
		TenantName:    req.TenantName,
		Subdomain:     req.Subdomain,
		AdminName:     req.AdminName,
		AdminEmail:    req.AdminEmail,
		AdminPassword: req.AdminPassword,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registerResponse{
		Success: true,
		Token:   res.Token,
		Tenant:  res.Tenant,
		User:    res.User,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindMessage(err))
		return
	}

	res, err := h.svc.Login(c.Request.Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		Subdomain: req.Subdomain,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Success: true, Token: res.Token, User: res.User})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	profile, err := h.svc.Me(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", profile)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.svc.Logout(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Logged out successfully", nil)
}
