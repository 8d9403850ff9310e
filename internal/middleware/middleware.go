package middleware

import (
	"net/http"
	"strings"

	"mini-ecommerce/internal/database"
	"mini-ecommerce/internal/service"
	"mini-ecommerce/internal/store"

	"github.com/labstack/echo/v4"
)

const ContextUserKey = "user"

// CurrentUser 通過驗證後掛在請求 context 上的身分
type CurrentUser struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

var getUserByID = store.GetUserByID

// extractToken 逐步檢查 Authorization 標頭，回傳 token 字串。
// 前端未登入時可能送出字面值 "null"/"undefined"，一律視為未帶 token。
func extractToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" || authHeader == "null" || authHeader == "undefined" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
	}
	tokenString := parts[1]
	if tokenString == "" || tokenString == "null" || tokenString == "undefined" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	return tokenString, nil
}

// RequireAuth 驗證 token 並載入使用者，掛上 *CurrentUser 後放行
func RequireAuth(auth *service.Auth, db database.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := extractToken(c)
			if err != nil {
				return err
			}
			claims, err := auth.VerifyAccessToken(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			user, err := getUserByID(c.Request().Context(), db, claims.UserID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "user not found")
			}
			c.Set(ContextUserKey, &CurrentUser{
				ID:      user.ID,
				Name:    user.Name,
				Email:   user.Email,
				IsAdmin: user.IsAdmin,
			})
			return next(c)
		}
	}
}

// RequireAdmin 於 RequireAuth 之後檢查管理員旗標
func RequireAdmin(auth *service.Auth, db database.DB) echo.MiddlewareFunc {
	requireAuth := RequireAuth(auth, db)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return requireAuth(func(c echo.Context) error {
			user, ok := c.Get(ContextUserKey).(*CurrentUser)
			if !ok || !user.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin privileges required")
			}
			return next(c)
		})
	}
}
