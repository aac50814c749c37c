package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polyia/polyia-backend/internal/requestdata"
	"github.com/polyia/polyia-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	NivelIdioma string    `json:"nivel_idioma"`
	UsuarioID   uuid.UUID `json:"usuario_id"`
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required,min=6"`
		NivelIdioma string `json:"nivel_idioma"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusUnprocessableEntity, "validacion", err)
		return
	}
	user, token, err := ah.authService.RegisterUser(c.Request.Context(), req.Email, req.Password, req.NivelIdioma)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		NivelIdioma: user.NivelIdioma,
		UsuarioID:   user.ID,
	})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusUnprocessableEntity, "validacion", err)
		return
	}
	user, token, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		NivelIdioma: user.NivelIdioma,
		UsuarioID:   user.ID,
	})
}

func (ah *AuthHandler) Me(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.User == nil {
		RespondError(c, http.StatusUnauthorized, "token_invalido", fmt.Errorf("No se pudo validar el token."))
		return
	}
	RespondOK(c, gin.H{
		"id":           rd.User.ID,
		"email":        rd.User.Email,
		"nivel_idioma": rd.User.NivelIdioma,
	})
}
