package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appErrors "github.com/yuewen2025/homestay-backend/internal/common/errors"
	"github.com/yuewen2025/homestay-backend/internal/common/jwt"
	"github.com/yuewen2025/homestay-backend/internal/models"
	"github.com/yuewen2025/homestay-backend/internal/repository"
)

const testJWTSecret = "test-secret-key-for-auth-service"

// newTestRedisClient 用 miniredis 提供刷新令牌白名单存储
func newTestRedisClient(t *testing.T) redisCmdable {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func newTestJWTManager() *jwt.Manager {
	return jwt.NewManager(&jwt.Config{
		Secret:            testJWTSecret,
		AccessExpireTime:  15 * time.Minute,
		RefreshExpireTime: 7 * 24 * time.Hour,
		Issuer:            "homestay-backend",
	})
}

func setupAuthTestService(t *testing.T) (*gorm.DB, *AuthService, redisCmdable) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}))

	rdb := newTestRedisClient(t)
	userRepo := repository.NewUserRepository(db)
	svc := NewAuthService(db, userRepo, newTestJWTManager(), rdb, 7*24*time.Hour)
	return db, svc, rdb
}

func TestAuthService_Register(t *testing.T) {
	db, svc, rdb := setupAuthTestService(t)
	ctx := context.Background()

	t.Run("注册成功并签发令牌", func(t *testing.T) {
		resp, err := svc.Register(ctx, &RegisterRequest{
			Email:    "alice@example.com",
			Password: "password123",
			Nickname: "小爱",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", resp.User.Email)
		assert.Equal(t, "小爱", resp.User.Nickname)
		assert.Equal(t, models.RoleGuest, resp.User.Role)
		assert.NotEmpty(t, resp.TokenPair.AccessToken)
		assert.NotEmpty(t, resp.TokenPair.RefreshToken)

		// 刷新令牌已写入白名单
		stored, err := rdb.Get(ctx, refreshTokenKey(resp.User.ID)).Result()
		require.NoError(t, err)
		assert.Equal(t, resp.TokenPair.RefreshToken, stored)

		// 密码以哈希存储
		var user models.User
		require.NoError(t, db.First(&user, resp.User.ID).Error)
		assert.NotEqual(t, "password123", user.PasswordHash)
	})

	t.Run("邮箱统一转为小写", func(t *testing.T) {
		resp, err := svc.Register(ctx, &RegisterRequest{
			Email:    "  Bob@Example.COM ",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", resp.User.Email)
	})

	t.Run("默认昵称取邮箱前缀", func(t *testing.T) {
		resp, err := svc.Register(ctx, &RegisterRequest{
			Email:    "carol@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.Equal(t, "carol", resp.User.Nickname)
	})

	t.Run("可注册为房东", func(t *testing.T) {
		resp, err := svc.Register(ctx, &RegisterRequest{
			Email:    "host@example.com",
			Password: "password123",
			Role:     models.RoleHost,
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleHost, resp.User.Role)
	})

	t.Run("邮箱格式非法", func(t *testing.T) {
		_, err := svc.Register(ctx, &RegisterRequest{
			Email:    "not-an-email",
			Password: "password123",
		})
		assert.Equal(t, appErrors.ErrEmailInvalid, err)
	})

	t.Run("邮箱已注册", func(t *testing.T) {
		_, err := svc.Register(ctx, &RegisterRequest{
			Email:    "Alice@example.com",
			Password: "password456",
		})
		assert.Equal(t, appErrors.ErrEmailExists, err)
	})
}

func TestAuthService_Login(t *testing.T) {
	db, svc, _ := setupAuthTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{
		Email:    "dave@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	t.Run("登录成功", func(t *testing.T) {
		resp, err := svc.Login(ctx, &LoginRequest{
			Email:    "dave@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, resp.User.ID)
		assert.NotEmpty(t, resp.TokenPair.AccessToken)
	})

	t.Run("邮箱大小写不敏感", func(t *testing.T) {
		resp, err := svc.Login(ctx, &LoginRequest{
			Email:    "DAVE@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, resp.User.ID)
	})

	t.Run("密码错误", func(t *testing.T) {
		_, err := svc.Login(ctx, &LoginRequest{
			Email:    "dave@example.com",
			Password: "wrong-password",
		})
		assert.Equal(t, appErrors.ErrPasswordError, err)
	})

	t.Run("用户不存在时同样返回密码错误", func(t *testing.T) {
		_, err := svc.Login(ctx, &LoginRequest{
			Email:    "nobody@example.com",
			Password: "password123",
		})
		assert.Equal(t, appErrors.ErrPasswordError, err)
	})

	t.Run("禁用账号不可登录", func(t *testing.T) {
		require.NoError(t, db.Model(&models.User{}).
			Where("id = ?", registered.User.ID).
			Update("status", models.UserStatusDisabled).Error)

		_, err := svc.Login(ctx, &LoginRequest{
			Email:    "dave@example.com",
			Password: "password123",
		})
		assert.Equal(t, appErrors.ErrAccountDisabled, err)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	db, svc, rdb := setupAuthTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{
		Email:    "erin@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	t.Run("刷新成功并轮换白名单", func(t *testing.T) {
		pair, err := svc.RefreshToken(ctx, registered.TokenPair.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)

		stored, err := rdb.Get(ctx, refreshTokenKey(registered.User.ID)).Result()
		require.NoError(t, err)
		assert.Equal(t, pair.RefreshToken, stored)
	})

	t.Run("伪造令牌被拒", func(t *testing.T) {
		forged := jwt.NewManager(&jwt.Config{
			Secret:            "another-secret",
			AccessExpireTime:  15 * time.Minute,
			RefreshExpireTime: 7 * 24 * time.Hour,
			Issuer:            "homestay-backend",
		})
		pair, err := forged.GenerateTokenPair(registered.User.ID, jwt.UserTypeUser, models.RoleGuest)
		require.NoError(t, err)

		_, err = svc.RefreshToken(ctx, pair.RefreshToken)
		assert.Equal(t, appErrors.ErrTokenInvalid, err)
	})

	t.Run("过期令牌被拒", func(t *testing.T) {
		expired := jwt.NewManager(&jwt.Config{
			Secret:            testJWTSecret,
			AccessExpireTime:  -time.Hour,
			RefreshExpireTime: -time.Hour,
			Issuer:            "homestay-backend",
		})
		pair, err := expired.GenerateTokenPair(registered.User.ID, jwt.UserTypeUser, models.RoleGuest)
		require.NoError(t, err)

		_, err = svc.RefreshToken(ctx, pair.RefreshToken)
		assert.Equal(t, appErrors.ErrTokenExpired, err)
	})

	t.Run("登出后令牌不在白名单", func(t *testing.T) {
		pair, err := svc.RefreshToken(ctx, mustStoredToken(t, rdb, registered.User.ID))
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, registered.User.ID))

		_, err = svc.RefreshToken(ctx, pair.RefreshToken)
		assert.Equal(t, appErrors.ErrTokenInvalid, err)
	})

	t.Run("禁用账号不可刷新", func(t *testing.T) {
		resp, err := svc.Register(ctx, &RegisterRequest{
			Email:    "frank@example.com",
			Password: "password123",
		})
		require.NoError(t, err)

		require.NoError(t, db.Model(&models.User{}).
			Where("id = ?", resp.User.ID).
			Update("status", models.UserStatusDisabled).Error)

		_, err = svc.RefreshToken(ctx, resp.TokenPair.RefreshToken)
		assert.Equal(t, appErrors.ErrAccountDisabled, err)
	})
}

func TestAuthService_GetProfile(t *testing.T) {
	_, svc, _ := setupAuthTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{
		Email:    "grace@example.com",
		Password: "password123",
		Nickname: "格蕾丝",
	})
	require.NoError(t, err)

	t.Run("获取当前用户信息", func(t *testing.T) {
		info, err := svc.GetProfile(ctx, registered.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "grace@example.com", info.Email)
		assert.Equal(t, "格蕾丝", info.Nickname)
	})

	t.Run("用户不存在", func(t *testing.T) {
		_, err := svc.GetProfile(ctx, 99999)
		assert.Equal(t, appErrors.ErrUserNotFound, err)
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	_, svc, _ := setupAuthTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{
		Email:    "helen@example.com",
		Password: "password123",
		Nickname: "海伦",
	})
	require.NoError(t, err)

	t.Run("更新昵称和手机号", func(t *testing.T) {
		nickname := "海伦娜"
		phone := "13812345678"
		info, err := svc.UpdateProfile(ctx, registered.User.ID, &UpdateProfileRequest{
			Nickname: &nickname,
			Phone:    &phone,
		})
		require.NoError(t, err)
		assert.Equal(t, "海伦娜", info.Nickname)
		require.NotNil(t, info.Phone)
		assert.Equal(t, "13812345678", *info.Phone)

		fresh, err := svc.GetProfile(ctx, registered.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "海伦娜", fresh.Nickname)
	})

	t.Run("空请求不改变资料", func(t *testing.T) {
		info, err := svc.UpdateProfile(ctx, registered.User.ID, &UpdateProfileRequest{})
		require.NoError(t, err)
		assert.Equal(t, "海伦娜", info.Nickname)
	})

	t.Run("用户不存在", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, 99999, &UpdateProfileRequest{})
		assert.Equal(t, appErrors.ErrUserNotFound, err)
	})
}

// mustStoredToken 读取白名单中当前的刷新令牌
func mustStoredToken(t *testing.T, rdb redisCmdable, userID int64) string {
	t.Helper()
	token, err := rdb.Get(context.Background(), refreshTokenKey(userID)).Result()
	require.NoError(t, err)
	return token
}
