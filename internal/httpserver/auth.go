package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"techstore/internal/domain"
	customersvc "techstore/internal/service/customer"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Role        string `json:"role"`
	UserID      int64  `json:"userId"`
	Username    string `json:"username"`
	Name        string `json:"name,omitempty"`
}

func (h *handlers) register(c *gin.Context) {
	var req customersvc.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	account, err := h.deps.CustomerSvc.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			writeError(c, http.StatusConflict, "Username or email already registered")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Printf("auth: register error=%v", err)
		writeError(c, http.StatusInternalServerError, "Registration failed")
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	account, token, err := h.deps.CustomerSvc.Login(c.Request.Context(), req.Role, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, customersvc.ErrInvalidRole):
			writeError(c, http.StatusBadRequest, "Invalid role")
		case errors.Is(err, customersvc.ErrInvalidCredentials):
			writeError(c, http.StatusUnauthorized, "Invalid username or password")
		default:
			h.logger.Printf("auth: login role=%s error=%v", req.Role, err)
			writeError(c, http.StatusInternalServerError, "Login failed")
		}
		return
	}
	c.JSON(http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   h.deps.CustomerSvc.AccessTTLSeconds(),
		Role:        strings.ToLower(strings.TrimSpace(req.Role)),
		UserID:      account.ID,
		Username:    account.Username,
		Name:        account.Name,
	})
}

func (h *handlers) me(c *gin.Context) {
	c.JSON(http.StatusOK, accountFrom(c.Request.Context()))
}

func (h *handlers) logout(c *gin.Context) {
	token, _ := c.Request.Context().Value(tokenCtxKey).(string)
	if err := h.deps.CustomerSvc.Logout(c.Request.Context(), token); err != nil {
		h.logger.Printf("auth: logout error=%v", err)
		writeError(c, http.StatusInternalServerError, "Logout failed")
		return
	}
	c.Status(http.StatusNoContent)
}
