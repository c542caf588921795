// Package repository 优惠券仓储单元测试
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

func setupCouponTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Hotel{}, &models.Coupon{})
	require.NoError(t, err)

	return db
}

func newTestCoupon(hotelID int64, code string, percent float64, maxUses *int) *models.Coupon {
	return &models.Coupon{
		HotelID:            hotelID,
		Code:               code,
		DiscountPercentage: percent,
		ValidFrom:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidTo:            time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		MaxUses:            maxUses,
	}
}

func TestCouponRepository_Create(t *testing.T) {
	db := setupCouponTestDB(t)
	repo := NewCouponRepository(db)
	ctx := context.Background()

	coupon := newTestCoupon(1, "SUMMER10", 10, nil)
	err := repo.Create(ctx, coupon)
	require.NoError(t, err)
	assert.NotZero(t, coupon.ID)

	t.Run("同一民宿下券码唯一", func(t *testing.T) {
		dup := newTestCoupon(1, "SUMMER10", 20, nil)
		assert.Error(t, repo.Create(ctx, dup))
	})

	t.Run("不同民宿可用相同券码", func(t *testing.T) {
		other := newTestCoupon(2, "SUMMER10", 20, nil)
		assert.NoError(t, repo.Create(ctx, other))
	})
}

func TestCouponRepository_GetByHotelAndCode(t *testing.T) {
	db := setupCouponTestDB(t)
	repo := NewCouponRepository(db)
	ctx := context.Background()

	coupon := newTestCoupon(1, "SUMMER10", 10, nil)
	db.Create(coupon)

	t.Run("精确匹配", func(t *testing.T) {
		found, err := repo.GetByHotelAndCode(ctx, 1, "SUMMER10")
		require.NoError(t, err)
		assert.Equal(t, coupon.ID, found.ID)
	})

	t.Run("大小写不敏感", func(t *testing.T) {
		found, err := repo.GetByHotelAndCode(ctx, 1, "summer10")
		require.NoError(t, err)
		assert.Equal(t, coupon.ID, found.ID)
	})

	t.Run("不存在的券码", func(t *testing.T) {
		_, err := repo.GetByHotelAndCode(ctx, 1, "WINTER20")
		assert.Equal(t, gorm.ErrRecordNotFound, err)
	})

	t.Run("其他民宿的券码不可见", func(t *testing.T) {
		_, err := repo.GetByHotelAndCode(ctx, 2, "SUMMER10")
		assert.Equal(t, gorm.ErrRecordNotFound, err)
	})
}

func TestCouponRepository_IncrementUsage(t *testing.T) {
	db := setupCouponTestDB(t)
	repo := NewCouponRepository(db)
	ctx := context.Background()

	t.Run("未达上限时递增", func(t *testing.T) {
		maxUses := 2
		coupon := newTestCoupon(1, "LIMITED", 10, &maxUses)
		db.Create(coupon)

		require.NoError(t, repo.IncrementUsage(ctx, db, coupon.ID))
		require.NoError(t, repo.IncrementUsage(ctx, db, coupon.ID))

		// 第三次递增应失败，次数已耗尽
		err := repo.IncrementUsage(ctx, db, coupon.ID)
		assert.Equal(t, gorm.ErrRecordNotFound, err)

		found, _ := repo.GetByID(ctx, coupon.ID)
		assert.Equal(t, 2, found.CurrentUses)
	})

	t.Run("不限次数的券可一直递增", func(t *testing.T) {
		coupon := newTestCoupon(1, "UNLIMITED", 10, nil)
		db.Create(coupon)

		for i := 0; i < 5; i++ {
			require.NoError(t, repo.IncrementUsage(ctx, db, coupon.ID))
		}

		found, _ := repo.GetByID(ctx, coupon.ID)
		assert.Equal(t, 5, found.CurrentUses)
	})
}

func TestCouponRepository_ListByHotel(t *testing.T) {
	db := setupCouponTestDB(t)
	repo := NewCouponRepository(db)
	ctx := context.Background()

	db.Create(newTestCoupon(1, "A10", 10, nil))
	db.Create(newTestCoupon(1, "B20", 20, nil))
	db.Create(newTestCoupon(2, "C30", 30, nil))

	coupons, total, err := repo.ListByHotel(ctx, 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, coupons, 2)
}

func TestCouponRepository_ListActive(t *testing.T) {
	db := setupCouponTestDB(t)
	repo := NewCouponRepository(db)
	ctx := context.Background()

	now := time.Now()

	// 有效期内且未用尽
	usable := newTestCoupon(1, "USABLE", 10, nil)
	usable.ValidFrom = now.AddDate(0, -1, 0)
	usable.ValidTo = now.AddDate(0, 1, 0)
	db.Create(usable)

	// 已过期
	expired := newTestCoupon(1, "EXPIRED", 10, nil)
	expired.ValidFrom = now.AddDate(0, -2, 0)
	expired.ValidTo = now.AddDate(0, -1, 0)
	db.Create(expired)

	// 已用尽
	maxUses := 1
	exhausted := newTestCoupon(1, "USED", 10, &maxUses)
	exhausted.ValidFrom = now.AddDate(0, -1, 0)
	exhausted.ValidTo = now.AddDate(0, 1, 0)
	exhausted.CurrentUses = 1
	db.Create(exhausted)

	coupons, total, err := repo.ListActive(ctx, 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, coupons, 1)
	assert.Equal(t, "USABLE", coupons[0].Code)
}

func TestCouponRepository_ExistsByHotelAndCode(t *testing.T) {
	db := setupCouponTestDB(t)
	repo := NewCouponRepository(db)
	ctx := context.Background()

	db.Create(newTestCoupon(1, "SUMMER10", 10, nil))

	exists, err := repo.ExistsByHotelAndCode(ctx, 1, "summer10")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByHotelAndCode(ctx, 1, "WINTER20")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCouponRepository_Delete(t *testing.T) {
	db := setupCouponTestDB(t)
	repo := NewCouponRepository(db)
	ctx := context.Background()

	coupon := newTestCoupon(1, "SUMMER10", 10, nil)
	db.Create(coupon)

	require.NoError(t, repo.Delete(ctx, coupon.ID))

	_, err := repo.GetByID(ctx, coupon.ID)
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}
