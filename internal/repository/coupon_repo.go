// Package repository 提供数据访问层
package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yuewen2025/homestay-backend/internal/common/database"
	"github.com/yuewen2025/homestay-backend/internal/models"
)

// CouponRepository 优惠券仓储
type CouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠券仓储
func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

// Create 创建优惠券
func (r *CouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

// GetByID 根据 ID 获取优惠券
func (r *CouponRepository) GetByID(ctx context.Context, id int64) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).First(&coupon, id).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// GetByHotelAndCode 根据民宿和券码获取优惠券（券码不区分大小写）
func (r *CouponRepository) GetByHotelAndCode(ctx context.Context, hotelID int64, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Where("UPPER(code) = ?", strings.ToUpper(code)).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// Update 更新优惠券
func (r *CouponRepository) Update(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Save(coupon).Error
}

// UpdateFields 更新指定字段
func (r *CouponRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Coupon{}).Where("id = ?", id).Updates(fields).Error
}

// Delete 删除优惠券
func (r *CouponRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Coupon{}, id).Error
}

// CouponListParams 优惠券列表查询参数
type CouponListParams struct {
	Page       int
	PageSize   int
	HotelID    int64
	Keyword    string
	ValidOn    *time.Time
	OnlyUsable bool
}

// List 获取优惠券列表
func (r *CouponRepository) List(ctx context.Context, params CouponListParams) ([]*models.Coupon, int64, error) {
	var coupons []*models.Coupon
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Coupon{})

	// 过滤条件
	if params.HotelID > 0 {
		query = query.Where("hotel_id = ?", params.HotelID)
	}
	if params.Keyword != "" {
		query = query.Where("code LIKE ? OR description LIKE ?",
			"%"+strings.ToUpper(params.Keyword)+"%", "%"+params.Keyword+"%")
	}
	if params.ValidOn != nil {
		query = query.Where("valid_from <= ?", *params.ValidOn).
			Where("valid_to >= ?", *params.ValidOn)
	}
	if params.OnlyUsable {
		query = query.Where("max_uses IS NULL OR current_uses < max_uses")
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 查询列表
	if err := query.Scopes(database.OrderByCreatedDesc, database.Paginate(params.Page, params.PageSize)).Find(&coupons).Error; err != nil {
		return nil, 0, err
	}

	return coupons, total, nil
}

// ListByHotel 获取民宿下的优惠券列表
func (r *CouponRepository) ListByHotel(ctx context.Context, hotelID int64, page, pageSize int) ([]*models.Coupon, int64, error) {
	return r.List(ctx, CouponListParams{
		Page:     page,
		PageSize: pageSize,
		HotelID:  hotelID,
	})
}

// ListActive 获取当前有效且未用尽的优惠券列表
func (r *CouponRepository) ListActive(ctx context.Context, hotelID int64, page, pageSize int) ([]*models.Coupon, int64, error) {
	now := time.Now()
	return r.List(ctx, CouponListParams{
		Page:       page,
		PageSize:   pageSize,
		HotelID:    hotelID,
		ValidOn:    &now,
		OnlyUsable: true,
	})
}

// IncrementUsage 原子增加使用次数
// 条件更新保证并发下不会超发，影响行数为 0 表示次数已耗尽
func (r *CouponRepository) IncrementUsage(ctx context.Context, tx *gorm.DB, id int64) error {
	result := tx.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ? AND (max_uses IS NULL OR current_uses < max_uses)", id).
		UpdateColumn("current_uses", gorm.Expr("current_uses + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ExistsByHotelAndCode 检查券码在民宿下是否已存在
func (r *CouponRepository) ExistsByHotelAndCode(ctx context.Context, hotelID int64, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("hotel_id = ?", hotelID).
		Where("UPPER(code) = ?", strings.ToUpper(code)).
		Count(&count).Error
	return count > 0, err
}
