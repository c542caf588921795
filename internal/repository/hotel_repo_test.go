// Package repository 民宿仓储单元测试
package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yuewen2025/homestay-backend/internal/models"
)

// sqlRecorder 记录生成的 SQL，用于断言语句形态
type sqlRecorder struct {
	sqls []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface { return r }

func (r *sqlRecorder) Info(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Warn(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.sqls = append(r.sqls, sql)
}

func setupHotelTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Hotel{})
	require.NoError(t, err)

	return db
}

func newHotel(hostID int64, name, city string, approved, suspended bool) *models.Hotel {
	return &models.Hotel{
		HostID: hostID, Name: name, Province: "广东省", City: city, District: "南山区",
		Address: "测试地址", MaxGuests: 4, TotalRooms: 1,
		BasePricePerNight: 300, IsApproved: approved, IsSuspended: suspended,
	}
}

func TestHotelRepository_Create(t *testing.T) {
	db := setupHotelTestDB(t)
	repo := NewHotelRepository(db)
	ctx := context.Background()

	hotel := newHotel(1, "山居小院", "杭州市", false, false)
	err := repo.Create(ctx, hotel)
	require.NoError(t, err)
	assert.NotZero(t, hotel.ID)
}

func TestHotelRepository_GetByID(t *testing.T) {
	db := setupHotelTestDB(t)
	repo := NewHotelRepository(db)
	ctx := context.Background()

	hotel := newHotel(1, "山居小院", "杭州市", true, false)
	db.Create(hotel)

	found, err := repo.GetByID(ctx, hotel.ID)
	require.NoError(t, err)
	assert.Equal(t, "山居小院", found.Name)

	_, err = repo.GetByID(ctx, 99999)
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}

func TestHotelRepository_GetByIDForUpdate(t *testing.T) {
	t.Run("事务内读取民宿", func(t *testing.T) {
		db := setupHotelTestDB(t)
		repo := NewHotelRepository(db)
		ctx := context.Background()

		hotel := newHotel(1, "山居小院", "杭州市", true, false)
		db.Create(hotel)

		err := db.Transaction(func(tx *gorm.DB) error {
			found, err := repo.GetByIDForUpdate(ctx, tx, hotel.ID)
			require.NoError(t, err)
			assert.Equal(t, "山居小院", found.Name)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("生成的查询携带行锁", func(t *testing.T) {
		// DryRun 下不建立连接，只检查 postgres 方言渲染出的语句
		recorder := &sqlRecorder{}
		db, err := gorm.Open(postgres.Open("host=127.0.0.1 user=dryrun dbname=dryrun"), &gorm.Config{
			DryRun:               true,
			DisableAutomaticPing: true,
			Logger:               recorder,
		})
		require.NoError(t, err)

		repo := NewHotelRepository(db)
		_, _ = repo.GetByIDForUpdate(context.Background(), db, 1)

		require.NotEmpty(t, recorder.sqls)
		assert.Contains(t, recorder.sqls[len(recorder.sqls)-1], "FOR UPDATE")
	})
}

func TestHotelRepository_UpdateFields(t *testing.T) {
	db := setupHotelTestDB(t)
	repo := NewHotelRepository(db)
	ctx := context.Background()

	hotel := newHotel(1, "山居小院", "杭州市", true, false)
	db.Create(hotel)

	err := repo.UpdateFields(ctx, hotel.ID, map[string]interface{}{
		"base_price_per_night": 500.0,
		"is_suspended":         true,
	})
	require.NoError(t, err)

	found, _ := repo.GetByID(ctx, hotel.ID)
	assert.Equal(t, 500.0, found.BasePricePerNight)
	assert.True(t, found.IsSuspended)
}

func TestHotelRepository_ListBookable(t *testing.T) {
	db := setupHotelTestDB(t)
	repo := NewHotelRepository(db)
	ctx := context.Background()

	db.Create(newHotel(1, "已上架", "深圳市", true, false))
	db.Create(newHotel(1, "待审核", "深圳市", false, false))
	db.Create(newHotel(1, "已停用", "深圳市", true, true))
	db.Create(newHotel(2, "外地房源", "杭州市", true, false))

	t.Run("只返回已审核且未停用", func(t *testing.T) {
		hotels, total, err := repo.ListBookable(ctx, 0, 10, map[string]interface{}{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, hotels, 2)
	})

	t.Run("按城市过滤", func(t *testing.T) {
		hotels, total, err := repo.ListBookable(ctx, 0, 10, map[string]interface{}{"city": "杭州市"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "外地房源", hotels[0].Name)
	})

	t.Run("按可住人数过滤", func(t *testing.T) {
		_, total, err := repo.ListBookable(ctx, 0, 10, map[string]interface{}{"min_guests": 10})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}

func TestHotelRepository_ListByHost(t *testing.T) {
	db := setupHotelTestDB(t)
	repo := NewHotelRepository(db)
	ctx := context.Background()

	db.Create(newHotel(1, "房源一", "深圳市", true, false))
	db.Create(newHotel(1, "房源二", "深圳市", false, false))
	db.Create(newHotel(2, "别人的", "深圳市", true, false))

	hotels, total, err := repo.ListByHost(ctx, 1, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, hotels, 2)
}

func TestHotelRepository_GetCities(t *testing.T) {
	db := setupHotelTestDB(t)
	repo := NewHotelRepository(db)
	ctx := context.Background()

	db.Create(newHotel(1, "房源一", "深圳市", true, false))
	db.Create(newHotel(1, "房源二", "深圳市", true, false))
	db.Create(newHotel(1, "房源三", "杭州市", true, false))
	db.Create(newHotel(1, "未审核", "北京市", false, false))

	cities, err := repo.GetCities(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"深圳市", "杭州市"}, cities)
}

func TestHotelRepository_Search(t *testing.T) {
	db := setupHotelTestDB(t)
	repo := NewHotelRepository(db)
	ctx := context.Background()

	db.Create(newHotel(1, "海景民宿", "深圳市", true, false))
	db.Create(newHotel(1, "山居小院", "杭州市", true, false))
	db.Create(newHotel(1, "海景待审核", "深圳市", false, false))

	hotels, total, err := repo.Search(ctx, "海景", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "海景民宿", hotels[0].Name)
}

func TestHotelRepository_Delete(t *testing.T) {
	db := setupHotelTestDB(t)
	repo := NewHotelRepository(db)
	ctx := context.Background()

	hotel := newHotel(1, "山居小院", "杭州市", true, false)
	db.Create(hotel)

	require.NoError(t, repo.Delete(ctx, hotel.ID))

	_, err := repo.GetByID(ctx, hotel.ID)
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}
