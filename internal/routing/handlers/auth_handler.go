package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"library-admin/internal/managers"
	"library-admin/internal/middleware"
	"library-admin/internal/schemas"
	"library-admin/internal/utils"
)

type AuthHdl interface {
	ShowLogin(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
}

type AuthHandler struct {
	AuthManager   managers.AuthMgr
	JWTManager    managers.JWTMgr
	SecureCookies bool
}

func NewAuthHandler(authManager managers.AuthMgr, jwtManager managers.JWTMgr, secureCookies bool) AuthHdl {
	return &AuthHandler{
		AuthManager:   authManager,
		JWTManager:    jwtManager,
		SecureCookies: secureCookies,
	}
}

func (handler *AuthHandler) ShowLogin(c *gin.Context) {
	page := &schemas.LoginPageDTO{PageDTO: newPage(c, "Library Management System Login", "login")}
	c.HTML(http.StatusOK, "login", page)
}

// Login checks the submitted credentials and issues the session cookie.
func (handler *AuthHandler) Login(c *gin.Context) {
	request := payload[schemas.LoginRequest](c)

	identity, err := handler.AuthManager.Login(c, request.Email, request.Password)
	if err != nil {
		if errors.Is(err, managers.ErrInvalidCredentials) {
			utils.RedirectWithError(c, "/login", schemas.InvalidCredentials, nil)
			return
		}
		utils.RedirectWithError(c, "/login", schemas.DatabaseError, err)
		return
	}

	token, err := handler.JWTManager.GenerateJWT(handler.JWTManager.GenerateClaims(identity))
	if err != nil {
		utils.RedirectWithError(c, "/login", schemas.InternalServerError, err)
		return
	}

	middleware.SetSessionCookie(c, token, identity.ExpiresAt, handler.SecureCookies)
	utils.RedirectWithSuccess(c, "/books", "Welcome, "+identity.Name+"!")
}

// Logout clears the session unconditionally.
func (handler *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c, handler.SecureCookies)
	utils.RedirectWithSuccess(c, "/login", "You have been logged out.")
}
