// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yuewen2025/homestay-backend/internal/models"
)

// HotelRepository 民宿仓储
type HotelRepository struct {
	db *gorm.DB
}

// NewHotelRepository 创建民宿仓储
func NewHotelRepository(db *gorm.DB) *HotelRepository {
	return &HotelRepository{db: db}
}

// Create 创建民宿
func (r *HotelRepository) Create(ctx context.Context, hotel *models.Hotel) error {
	return r.db.WithContext(ctx).Create(hotel).Error
}

// GetByID 根据 ID 获取民宿
func (r *HotelRepository) GetByID(ctx context.Context, id int64) (*models.Hotel, error) {
	var hotel models.Hotel
	err := r.db.WithContext(ctx).First(&hotel, id).Error
	if err != nil {
		return nil, err
	}
	return &hotel, nil
}

// GetByIDForUpdate 根据 ID 获取民宿并加行锁（需在事务中调用）
func (r *HotelRepository) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*models.Hotel, error) {
	var hotel models.Hotel
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&hotel, id).Error
	if err != nil {
		return nil, err
	}
	return &hotel, nil
}

// Update 更新民宿
func (r *HotelRepository) Update(ctx context.Context, hotel *models.Hotel) error {
	return r.db.WithContext(ctx).Save(hotel).Error
}

// UpdateFields 更新指定字段
func (r *HotelRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Hotel{}).Where("id = ?", id).Updates(fields).Error
}

// List 获取民宿列表
func (r *HotelRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Hotel, int64, error) {
	var hotels []*models.Hotel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Hotel{})

	// 应用过滤条件
	if name, ok := filters["name"].(string); ok && name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}
	if city, ok := filters["city"].(string); ok && city != "" {
		query = query.Where("city = ?", city)
	}
	if district, ok := filters["district"].(string); ok && district != "" {
		query = query.Where("district = ?", district)
	}
	if province, ok := filters["province"].(string); ok && province != "" {
		query = query.Where("province = ?", province)
	}
	if hostID, ok := filters["host_id"].(int64); ok && hostID > 0 {
		query = query.Where("host_id = ?", hostID)
	}
	if minGuests, ok := filters["min_guests"].(int); ok && minGuests > 0 {
		query = query.Where("max_guests >= ?", minGuests)
	}
	if approved, ok := filters["is_approved"].(bool); ok {
		query = query.Where("is_approved = ?", approved)
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 查询列表
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&hotels).Error; err != nil {
		return nil, 0, err
	}

	return hotels, total, nil
}

// ListBookable 获取可预订的民宿列表（访客端）
func (r *HotelRepository) ListBookable(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Hotel, int64, error) {
	var hotels []*models.Hotel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Hotel{}).
		Where("is_approved = ?", true).
		Where("is_suspended = ?", false)

	if province, ok := filters["province"].(string); ok && province != "" {
		query = query.Where("province = ?", province)
	}
	if city, ok := filters["city"].(string); ok && city != "" {
		query = query.Where("city = ?", city)
	}
	if district, ok := filters["district"].(string); ok && district != "" {
		query = query.Where("district = ?", district)
	}
	if minGuests, ok := filters["min_guests"].(int); ok && minGuests > 0 {
		query = query.Where("max_guests >= ?", minGuests)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&hotels).Error; err != nil {
		return nil, 0, err
	}

	return hotels, total, nil
}

// ListByHost 获取房东名下的民宿列表
func (r *HotelRepository) ListByHost(ctx context.Context, hostID int64, offset, limit int) ([]*models.Hotel, int64, error) {
	var hotels []*models.Hotel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Hotel{}).Where("host_id = ?", hostID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&hotels).Error; err != nil {
		return nil, 0, err
	}

	return hotels, total, nil
}

// GetCities 获取所有城市列表
func (r *HotelRepository) GetCities(ctx context.Context) ([]string, error) {
	var cities []string
	err := r.db.WithContext(ctx).Model(&models.Hotel{}).
		Where("is_approved = ?", true).
		Distinct("city").
		Pluck("city", &cities).Error
	return cities, err
}

// Search 搜索民宿
func (r *HotelRepository) Search(ctx context.Context, keyword string, offset, limit int) ([]*models.Hotel, int64, error) {
	var hotels []*models.Hotel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Hotel{}).
		Where("is_approved = ?", true).
		Where("is_suspended = ?", false).
		Where("name LIKE ? OR address LIKE ? OR description LIKE ?",
			"%"+keyword+"%", "%"+keyword+"%", "%"+keyword+"%")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&hotels).Error; err != nil {
		return nil, 0, err
	}

	return hotels, total, nil
}

// Delete 删除民宿
func (r *HotelRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Hotel{}, id).Error
}
