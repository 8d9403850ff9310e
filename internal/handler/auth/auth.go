package auth

import (
	"net/http"
	"net/mail"
	"strings"

	"mini-ecommerce/internal/api"
	"mini-ecommerce/internal/database"
	"mini-ecommerce/internal/middleware"
	"mini-ecommerce/internal/model"
	"mini-ecommerce/internal/service"
	"mini-ecommerce/internal/store"

	"github.com/labstack/echo/v4"
)

var (
	hashPassword     = service.HashPassword
	authenticateUser = service.AuthenticateUser
	createUser       = store.CreateUser
	getUserByEmail   = store.GetUserByEmail
)

// RegisterHandler 建立帳號並直接發行令牌（註冊即登入）
// @Summary     Register a new user
// @Description 建立新帳號 (Email 會自動轉小寫)，成功時回傳存取令牌
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body api.RegisterRequest true "註冊資料"
// @Success     201 {object} api.AuthResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /users/register [post]
func RegisterHandler(auth *service.Auth, db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.RegisterRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: err.Error()})
		}

		req.Email = strings.ToLower(req.Email)
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid email format"})
		}

		hash, err := hashPassword(req.Password)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to hash password"})
		}

		user, err := createUser(c.Request().Context(), db, &model.User{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
		})
		if err != nil {
			if store.IsUniqueViolation(err) {
				return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "user already exists"})
			}
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to create user"})
		}

		token, err := auth.IssueAccessToken(*user)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to issue token"})
		}

		return c.JSON(http.StatusCreated, api.AuthResponse{
			Message: "User registered successfully",
			Token:   token,
			User: api.UserResponse{
				ID:      user.ID,
				Name:    user.Name,
				Email:   user.Email,
				IsAdmin: user.IsAdmin,
			},
		})
	}
}

// LoginHandler 使用 Email/Password 驗證並回傳 JWT
// @Summary     登入使用者
// @Description 使用 Email 與 Password 進行驗證，回傳存取令牌與使用者摘要
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body api.LoginRequest true "登入資料"
// @Success     200 {object} api.AuthResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     401 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /users/login [post]
func LoginHandler(auth *service.Auth, db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.LoginRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: err.Error()})
		}

		// 查無帳號與密碼錯誤回傳同一訊息，避免洩漏哪個欄位錯了
		user, err := getUserByEmail(c.Request().Context(), db, strings.ToLower(req.Email))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "invalid credentials"})
		}

		authUser, err := authenticateUser(c.Request().Context(), *user, req.Password)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "invalid credentials"})
		}

		token, err := auth.IssueAccessToken(*authUser)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to issue token"})
		}

		return c.JSON(http.StatusOK, api.AuthResponse{
			Message: "Login successful",
			Token:   token,
			User: api.UserResponse{
				ID:      authUser.ID,
				Name:    authUser.Name,
				Email:   authUser.Email,
				IsAdmin: authUser.IsAdmin,
			},
		})
	}
}

// ProfileHandler 取得當前使用者資料
// @Summary     Get current user profile
// @Description 透過 JWT Token 取得當前使用者詳細資訊（不含密碼欄位）
// @Tags        auth
// @Produce     json
// @Success     200 {object} api.UserResponse
// @Failure     401 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /users/profile [get]
func ProfileHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := c.Get(middleware.ContextUserKey).(*middleware.CurrentUser)
		if !ok {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "invalid or missing token"})
		}
		return c.JSON(http.StatusOK, api.UserResponse{
			ID:      user.ID,
			Name:    user.Name,
			Email:   user.Email,
			IsAdmin: user.IsAdmin,
		})
	}
}
