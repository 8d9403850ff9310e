// File: internal/service/authentication.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mini-ecommerce/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims 定義 JWT 負載內容
type CustomClaims struct {
	UserID  int  `json:"id"`
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}

// Auth 負責令牌簽發與驗證，簽章密鑰於建構時注入。
// is_admin 直接寫進令牌內，授權檢查不需查資料庫；
// 代價是管理員旗標變更要等令牌到期重發才生效。
type Auth struct {
	Secret   string
	TokenTTL time.Duration
}

func NewAuth(secret string, ttl time.Duration) *Auth {
	return &Auth{Secret: secret, TokenTTL: ttl}
}

// AuthenticateUser 根據使用者結構和明文密碼驗證，成功回傳使用者
func AuthenticateUser(ctx context.Context, user model.User, password string) (*model.User, error) {
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return nil, errors.New("invalid password")
	}
	return &user, nil
}

// IssueAccessToken 依據使用者資訊產生 JWT
func (a *Auth) IssueAccessToken(user model.User) (string, error) {
	if a.Secret == "" {
		return "", fmt.Errorf("signing secret not set")
	}

	now := time.Now()
	claims := CustomClaims{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.Secret))
}

// VerifyAccessToken 驗證並解析 JWT 令牌
func (a *Auth) VerifyAccessToken(tokenString string) (*CustomClaims, error) {
	if a.Secret == "" {
		return nil, fmt.Errorf("signing secret not set")
	}

	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(a.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
