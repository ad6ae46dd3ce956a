package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"moodmeal/internal/model"
	"moodmeal/internal/repository"
	"moodmeal/pkg/async"
	"moodmeal/pkg/jwt"
	"moodmeal/pkg/logger"
	"moodmeal/pkg/password"

	"go.uber.org/zap"
)

const (
	minPasswordLength = 6
	maxUsernameLength = 64
	loginTaskTimeout  = 5 * time.Second
)

// RegisterInput 注册参数
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Nickname string
	School   string
}

type UserService struct {
	repo       repository.IUserRepository
	jwtService *jwt.JWTService
	presence   PresenceStore
}

func NewUserService(repo repository.IUserRepository, jwtService *jwt.JWTService, presence PresenceStore) *UserService {
	return &UserService{repo: repo, jwtService: jwtService, presence: presence}
}

// Register 注册并签发 token
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || len(username) > maxUsernameLength {
		return nil, "", fmt.Errorf("%w: username must be 1-%d characters", ErrInvalidParam, maxUsernameLength)
	}
	if len(in.Password) < minPasswordLength {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidParam, minPasswordLength)
	}

	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", ErrUserExists
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, "", err
	}
	nickname := strings.TrimSpace(in.Nickname)
	if nickname == "" {
		nickname = username
	}
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Nickname:     nickname,
		School:       strings.TrimSpace(in.School),
		Status:       model.UserStatusOffline,
		LastSeen:     time.Now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// 并发注册时唯一索引兜底
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, "", ErrUserExists
		}
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	logger.Ctx(ctx).Info("用户注册成功", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, token, nil
}

// Login 登录，成功后异步更新最近在线时间与在线状态
func (s *UserService) Login(ctx context.Context, identifier, plainPassword string) (*model.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || plainPassword == "" {
		return nil, "", fmt.Errorf("%w: identifier and password are required", ErrInvalidParam)
	}
	u, err := s.repo.GetByUsernameOrEmail(ctx, identifier)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !password.Verify(plainPassword, u.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}

	userID, username := u.ID, u.Username
	async.RunSafe(ctx, func(ctx context.Context) {
		if err := s.repo.TouchLastSeen(ctx, userID); err != nil {
			logger.Ctx(ctx).Warn("更新最近在线时间失败", zap.Uint("user_id", userID), zap.Error(err))
		}
		if err := s.presence.SetOnline(ctx, userID, username); err != nil {
			logger.Ctx(ctx).Warn("设置在线状态失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}, loginTaskTimeout)

	return u, token, nil
}

// Logout 标记离线
func (s *UserService) Logout(ctx context.Context, userID uint) error {
	if err := s.repo.UpdateStatus(ctx, userID, model.UserStatusOffline); err != nil {
		return err
	}
	if err := s.presence.SetOffline(ctx, userID); err != nil {
		logger.Ctx(ctx).Warn("清除在线状态失败", zap.Uint("user_id", userID), zap.Error(err))
	}
	return nil
}

// GetProfile 查询用户资料
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*model.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// TokenTTL token 有效期（秒）
func (s *UserService) TokenTTL() int64 {
	return int64(s.jwtService.ExpireAfter().Seconds())
}

func (s *UserService) issueToken(u *model.User) (string, error) {
	return s.jwtService.GenerateToken(u.ID, map[string]interface{}{"username": u.Username})
}
