package handler

import (
	"moodmeal/internal/service"
	"moodmeal/pkg/jwt"
	"moodmeal/pkg/redis"
	"moodmeal/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service  *service.UserService
	presence *redis.Presence
}

func NewUserHandler(s *service.UserService, presence *redis.Presence) *UserHandler {
	return &UserHandler{service: s, presence: presence}
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	type req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required"`
		Nickname string `json:"nickname"`
		School   string `json:"school"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Register(c.Request.Context(), service.RegisterInput{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
		Nickname: r.Nickname,
		School:   r.School,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "注册成功", &response.RegisterResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
		ExpiresIn:   h.service.TokenTTL(),
	})
}

// Login 用户登录
func (h *UserHandler) Login(c *gin.Context) {
	type req struct {
		UsernameOrEmail string `json:"usernameOrEmail" binding:"required"`
		Password        string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Login(c.Request.Context(), r.UsernameOrEmail, r.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", &response.LoginResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
		ExpiresIn:   h.service.TokenTTL(),
	})
}

// GetProfile 获取当前用户资料
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterUserInfo(user))
}

// TokenInfo 查看当前 token 的声明
func (h *UserHandler) TokenInfo(c *gin.Context) {
	claims := jwt.GetClaims(c)
	if claims == nil {
		response.Unauthorized(c, "用户未认证")
		return
	}
	userID, _ := jwt.GetUserID(c)

	var issuedAt, expiresAt string
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time.Format("2006-01-02 15:04:05")
	}
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time.Format("2006-01-02 15:04:05")
	}

	response.Success(c, gin.H{
		"user_id":    userID,
		"username":   jwt.GetUsername(c),
		"issuer":     claims.Issuer,
		"issued_at":  issuedAt,
		"expires_at": expiresAt,
	})
}

// Logout 用户登出：标记离线
func (h *UserHandler) Logout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.service.Logout(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已离线", nil)
}

// CheckUserOnline 检查指定用户是否在线
func (h *UserHandler) CheckUserOnline(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	presence, err := h.presence.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	result := gin.H{
		"user_id": userID,
		"online":  presence != nil,
	}
	if presence != nil {
		result["username"] = presence.Username
		result["last_seen"] = presence.LastSeen.Format("2006-01-02 15:04:05")
	}
	response.Success(c, result)
}
