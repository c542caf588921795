// Package repository 操作日志仓储单元测试
package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yuewen2025/homestay-backend/internal/models"
)

func setupOperationLogTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.OperationLog{})
	require.NoError(t, err)

	return db
}

func newOpLog(userID int64, module, action, ip string) *models.OperationLog {
	return &models.OperationLog{
		UserID: userID,
		Module: module,
		Action: action,
		IP:     ip,
	}
}

func TestOperationLogRepository_Create(t *testing.T) {
	db := setupOperationLogTestDB(t)
	repo := NewOperationLogRepository(db)
	ctx := context.Background()

	targetID := int64(10)
	targetType := "hotel"
	log := &models.OperationLog{
		UserID:     1,
		Module:     "hotel",
		Action:     "update",
		TargetType: &targetType,
		TargetID:   &targetID,
		BeforeData: models.JSON{"base_price_per_night": 300},
		AfterData:  models.JSON{"base_price_per_night": 500},
		IP:         "127.0.0.1",
	}

	err := repo.Create(ctx, log)
	require.NoError(t, err)
	assert.NotZero(t, log.ID)

	found, err := repo.GetByID(ctx, log.ID)
	require.NoError(t, err)
	assert.Equal(t, "hotel", found.Module)
	require.NotNil(t, found.TargetID)
	assert.Equal(t, int64(10), *found.TargetID)
}

func TestOperationLogRepository_List(t *testing.T) {
	db := setupOperationLogTestDB(t)
	repo := NewOperationLogRepository(db)
	ctx := context.Background()

	db.Create(newOpLog(1, "hotel", "create", "127.0.0.1"))
	db.Create(newOpLog(1, "hotel", "update", "127.0.0.1"))
	db.Create(newOpLog(2, "coupon", "create", "10.0.0.1"))

	t.Run("按用户过滤", func(t *testing.T) {
		logs, total, err := repo.List(ctx, 0, 10, map[string]interface{}{"user_id": int64(1)})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, logs, 2)
	})

	t.Run("按模块过滤", func(t *testing.T) {
		_, total, err := repo.List(ctx, 0, 10, map[string]interface{}{"module": "coupon"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("按操作类型过滤", func(t *testing.T) {
		_, total, err := repo.List(ctx, 0, 10, map[string]interface{}{"action": "create"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("按 IP 过滤", func(t *testing.T) {
		_, total, err := repo.List(ctx, 0, 10, map[string]interface{}{"ip": "10.0.0.1"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})
}

func TestOperationLogRepository_ListByTarget(t *testing.T) {
	db := setupOperationLogTestDB(t)
	repo := NewOperationLogRepository(db)
	ctx := context.Background()

	targetType := "hotel"
	targetID := int64(5)
	log := newOpLog(1, "hotel", "update", "127.0.0.1")
	log.TargetType = &targetType
	log.TargetID = &targetID
	db.Create(log)
	db.Create(newOpLog(1, "hotel", "create", "127.0.0.1"))

	logs, total, err := repo.ListByTarget(ctx, "hotel", 5, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, logs, 1)
}

func TestOperationLogRepository_GetModuleStats(t *testing.T) {
	db := setupOperationLogTestDB(t)
	repo := NewOperationLogRepository(db)
	ctx := context.Background()

	db.Create(newOpLog(1, "hotel", "create", "127.0.0.1"))
	db.Create(newOpLog(1, "hotel", "update", "127.0.0.1"))
	db.Create(newOpLog(1, "booking", "confirm", "127.0.0.1"))

	stats, err := repo.GetModuleStats(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats["hotel"])
	assert.Equal(t, int64(1), stats["booking"])
}

func TestOperationLogRepository_DeleteBefore(t *testing.T) {
	db := setupOperationLogTestDB(t)
	repo := NewOperationLogRepository(db)
	ctx := context.Background()

	old := newOpLog(1, "hotel", "create", "127.0.0.1")
	db.Create(old)
	// 手工回拨创建时间
	db.Model(old).UpdateColumn("created_at", time.Now().AddDate(0, -6, 0))
	db.Create(newOpLog(1, "hotel", "update", "127.0.0.1"))

	deleted, err := repo.DeleteBefore(ctx, time.Now().AddDate(0, -3, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, total, err := repo.List(ctx, 0, 10, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
