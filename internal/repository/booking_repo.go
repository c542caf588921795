// Package repository 提供数据访问层
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yuewen2025/homestay-backend/internal/models"
)

// BookingRepository 预订仓储
type BookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository 创建预订仓储
func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create 创建预订
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

// GetByID 根据 ID 获取预订
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByIDWithDetails 根据 ID 获取预订（包含关联信息）
func (r *BookingRepository) GetByIDWithDetails(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Guest").
		Preload("Hotel").
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByBookingNo 根据预订号获取预订
func (r *BookingRepository) GetByBookingNo(ctx context.Context, bookingNo string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where("booking_no = ?", bookingNo).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Update 更新预订
func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

// UpdateFields 更新指定字段
func (r *BookingRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateStatus 更新预订状态
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Update("status", status).Error
}

// List 获取预订列表
func (r *BookingRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Booking, int64, error) {
	var bookings []*models.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Booking{})

	// 应用过滤条件
	if guestID, ok := filters["guest_id"].(int64); ok && guestID > 0 {
		query = query.Where("guest_id = ?", guestID)
	}
	if hotelID, ok := filters["hotel_id"].(int64); ok && hotelID > 0 {
		query = query.Where("hotel_id = ?", hotelID)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if statuses, ok := filters["statuses"].([]string); ok && len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if bookingNo, ok := filters["booking_no"].(string); ok && bookingNo != "" {
		query = query.Where("booking_no LIKE ?", "%"+bookingNo+"%")
	}
	if startDate, ok := filters["start_date"].(time.Time); ok {
		query = query.Where("check_in_date >= ?", startDate)
	}
	if endDate, ok := filters["end_date"].(time.Time); ok {
		query = query.Where("check_in_date <= ?", endDate)
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 查询列表
	if err := query.
		Preload("Hotel").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// ListByGuest 获取房客的预订列表
func (r *BookingRepository) ListByGuest(ctx context.Context, guestID int64, offset, limit int, status *string) ([]*models.Booking, int64, error) {
	filters := map[string]interface{}{
		"guest_id": guestID,
	}
	if status != nil {
		filters["status"] = *status
	}
	return r.List(ctx, offset, limit, filters)
}

// ListByHotel 获取民宿的预订列表
func (r *BookingRepository) ListByHotel(ctx context.Context, hotelID int64, offset, limit int, status *string) ([]*models.Booking, int64, error) {
	filters := map[string]interface{}{
		"hotel_id": hotelID,
	}
	if status != nil {
		filters["status"] = *status
	}
	return r.List(ctx, offset, limit, filters)
}

// CountOverlapping 统计与指定日期区间重叠的活跃预订数量
// 半开区间 [check_in_date, check_out_date)，退房日与入住日相接不算重叠
// excludeID 大于 0 时排除该预订自身（改期场景）
func (r *BookingRepository) CountOverlapping(ctx context.Context, tx *gorm.DB, hotelID int64, checkIn, checkOut time.Time, excludeID int64) (int64, error) {
	var count int64
	query := tx.WithContext(ctx).Model(&models.Booking{}).
		Where("hotel_id = ?", hotelID).
		Where("status IN ?", models.ActiveBookingStatuses).
		Where("(check_in_date < ? AND check_out_date > ?)", checkOut, checkIn)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count, err
}

// ListOverlapping 获取与指定日期区间重叠的活跃预订列表
func (r *BookingRepository) ListOverlapping(ctx context.Context, hotelID int64, checkIn, checkOut time.Time) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Where("status IN ?", models.ActiveBookingStatuses).
		Where("(check_in_date < ? AND check_out_date > ?)", checkOut, checkIn).
		Find(&bookings).Error
	return bookings, err
}

// ListStalePending 获取入住日已过仍未确认的预订列表
func (r *BookingRepository) ListStalePending(ctx context.Context, before time.Time, limit int) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", models.BookingStatusPending).
		Where("check_in_date < ?", before).
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

// ListToComplete 获取退房日已过、需要标记完成的预订列表
func (r *BookingRepository) ListToComplete(ctx context.Context, before time.Time, limit int) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", models.BookingStatusCheckedOut).
		Where("check_out_date < ?", before).
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

// Complete 标记完成
func (r *BookingRepository) Complete(ctx context.Context, id int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.BookingStatusCompleted,
			"completed_at": now,
		}).Error
}

// Cancel 取消预订
func (r *BookingRepository) Cancel(ctx context.Context, id int64, reason *string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.BookingStatusCancelled,
			"cancel_reason": reason,
			"cancelled_at":  now,
		}).Error
}

// CountByGuestAndStatus 统计房客指定状态的预订数量
func (r *BookingRepository) CountByGuestAndStatus(ctx context.Context, guestID int64, statuses []string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("guest_id = ?", guestID).
		Where("status IN ?", statuses).
		Count(&count).Error
	return count, err
}

// CountActive 统计当前活跃预订总数
func (r *BookingRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("status IN ?", models.ActiveBookingStatuses).
		Count(&count).Error
	return count, err
}

// CountActiveByHotel 统计民宿的活跃预订数量
func (r *BookingRepository) CountActiveByHotel(ctx context.Context, hotelID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("hotel_id = ?", hotelID).
		Where("status IN ?", models.ActiveBookingStatuses).
		Count(&count).Error
	return count, err
}
