package api

// AuthResponse 註冊與登入成功時回傳的令牌與使用者摘要
// swagger:model api.AuthResponse
type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}
