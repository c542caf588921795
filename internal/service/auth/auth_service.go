// Package auth 提供认证服务
package auth

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yuewen2025/homestay-backend/internal/common/cache"
	"github.com/yuewen2025/homestay-backend/internal/common/crypto"
	"github.com/yuewen2025/homestay-backend/internal/common/errors"
	"github.com/yuewen2025/homestay-backend/internal/common/jwt"
	"github.com/yuewen2025/homestay-backend/internal/common/logger"
	"github.com/yuewen2025/homestay-backend/internal/common/utils"
	"github.com/yuewen2025/homestay-backend/internal/models"
	"github.com/yuewen2025/homestay-backend/internal/repository"
)

// redisCmdable 认证服务依赖的 Redis 命令子集
type redisCmdable interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService 认证服务
type AuthService struct {
	db              *gorm.DB
	userRepo        *repository.UserRepository
	jwtManager      *jwt.Manager
	rdb             redisCmdable
	refreshTokenTTL time.Duration
}

// NewAuthService 创建认证服务
func NewAuthService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	jwtManager *jwt.Manager,
	rdb redisCmdable,
	refreshTokenTTL time.Duration,
) *AuthService {
	return &AuthService{
		db:              db,
		userRepo:        userRepo,
		jwtManager:      jwtManager,
		rdb:             rdb,
		refreshTokenTTL: refreshTokenTTL,
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=64"`
	Nickname string `json:"nickname" binding:"omitempty,max=50"`
	Role     string `json:"role" binding:"omitempty,oneof=guest host"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	User      *UserInfo      `json:"user"`
	TokenPair *jwt.TokenPair `json:"token"`
}

// UserInfo 用户信息
type UserInfo struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	Phone     *string   `json:"phone,omitempty"`
	Avatar    *string   `json:"avatar,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Register 注册
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.ValidateEmail(email) {
		return nil, errors.ErrEmailInvalid
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrEmailExists
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleGuest
	}
	nickname := req.Nickname
	if nickname == "" {
		nickname = defaultNickname(email)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Nickname:     nickname,
		Role:         role,
		Status:       models.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	logger.Info("用户注册成功", logger.UserID(user.ID), zap.String("email", crypto.MaskEmail(email)))
	return s.issueTokens(ctx, user)
}

// Login 邮箱密码登录
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPasswordError
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if !crypto.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, errors.ErrPasswordError
	}
	if user.Status == models.UserStatusDisabled {
		return nil, errors.ErrAccountDisabled
	}

	return s.issueTokens(ctx, user)
}

// RefreshToken 刷新令牌
// 仅接受白名单内的刷新令牌，旧令牌刷新后立即失效
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := s.jwtManager.ParseToken(refreshToken)
	if err != nil {
		if err == jwt.ErrTokenExpired {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrTokenInvalid
	}

	key := refreshTokenKey(claims.UserID)
	stored, err := s.rdb.Get(ctx, key).Result()
	if err != nil || stored != refreshToken {
		return nil, errors.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if user.Status == models.UserStatusDisabled {
		return nil, errors.ErrAccountDisabled
	}

	pair, err := s.jwtManager.GenerateTokenPair(user.ID, jwt.UserTypeUser, user.Role)
	if err != nil {
		return nil, errors.ErrTokenRefreshFail.WithError(err)
	}
	if err := s.rdb.Set(ctx, key, pair.RefreshToken, s.refreshTokenTTL).Err(); err != nil {
		return nil, errors.ErrCacheError.WithError(err)
	}
	return pair, nil
}

// Logout 登出，使刷新令牌失效
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.rdb.Del(ctx, refreshTokenKey(userID)).Err(); err != nil {
		return errors.ErrCacheError.WithError(err)
	}
	return nil
}

// UpdateProfileRequest 更新资料请求
type UpdateProfileRequest struct {
	Nickname *string `json:"nickname,omitempty" binding:"omitempty,max=50"`
	Phone    *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Avatar   *string `json:"avatar,omitempty" binding:"omitempty,max=255"`
}

// UpdateProfile 更新当前用户资料，只更新提交的字段
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	fields := map[string]interface{}{}
	if req.Nickname != nil && *req.Nickname != "" {
		fields["nickname"] = *req.Nickname
		user.Nickname = *req.Nickname
	}
	if req.Phone != nil {
		fields["phone"] = req.Phone
		user.Phone = req.Phone
	}
	if req.Avatar != nil {
		fields["avatar"] = req.Avatar
		user.Avatar = req.Avatar
	}
	if len(fields) == 0 {
		return s.toUserInfo(user), nil
	}

	if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	phone := ""
	if user.Phone != nil {
		phone = *user.Phone
	}
	logger.Info("用户资料已更新", logger.UserID(userID), zap.String("phone", crypto.MaskPhone(phone)))
	return s.toUserInfo(user), nil
}

// GetProfile 获取当前用户信息
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return s.toUserInfo(user), nil
}

// issueTokens 签发令牌对并登记刷新令牌白名单
func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*LoginResponse, error) {
	pair, err := s.jwtManager.GenerateTokenPair(user.ID, jwt.UserTypeUser, user.Role)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	if err := s.rdb.Set(ctx, refreshTokenKey(user.ID), pair.RefreshToken, s.refreshTokenTTL).Err(); err != nil {
		return nil, errors.ErrCacheError.WithError(err)
	}
	return &LoginResponse{
		User:      s.toUserInfo(user),
		TokenPair: pair,
	}, nil
}

// toUserInfo 转换为用户信息
func (s *AuthService) toUserInfo(user *models.User) *UserInfo {
	return &UserInfo{
		ID:        user.ID,
		Email:     user.Email,
		Nickname:  user.Nickname,
		Phone:     user.Phone,
		Avatar:    user.Avatar,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// refreshTokenKey 刷新令牌白名单键
func refreshTokenKey(userID int64) string {
	return cache.BuildKey(cache.KeyPrefixRefreshToken, strconv.FormatInt(userID, 10))
}

// defaultNickname 根据邮箱生成默认昵称
func defaultNickname(email string) string {
	at := strings.Index(email, "@")
	if at > 0 {
		return email[:at]
	}
	return "用户" + strconv.FormatInt(time.Now().UnixNano()%10000, 10)
}
