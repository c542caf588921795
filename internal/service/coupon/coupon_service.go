// Package coupon 提供优惠券服务
package coupon

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yuewen2025/homestay-backend/internal/common/errors"
	"github.com/yuewen2025/homestay-backend/internal/common/metrics"
	"github.com/yuewen2025/homestay-backend/internal/models"
	"github.com/yuewen2025/homestay-backend/internal/repository"
)

// CouponService 优惠券服务
type CouponService struct {
	db         *gorm.DB
	couponRepo *repository.CouponRepository
	hotelRepo  *repository.HotelRepository
}

// NewCouponService 创建优惠券服务
func NewCouponService(
	db *gorm.DB,
	couponRepo *repository.CouponRepository,
	hotelRepo *repository.HotelRepository,
) *CouponService {
	return &CouponService{
		db:         db,
		couponRepo: couponRepo,
		hotelRepo:  hotelRepo,
	}
}

// CreateCouponRequest 创建优惠券请求
type CreateCouponRequest struct {
	Code               string  `json:"code" binding:"required,min=3,max=32"`
	Description        *string `json:"description,omitempty"`
	DiscountPercentage float64 `json:"discount_percentage" binding:"required"`
	ValidFrom          string  `json:"valid_from" binding:"required"`
	ValidTo            string  `json:"valid_to" binding:"required"`
	MaxUses            *int    `json:"max_uses,omitempty"`
}

// UpdateCouponRequest 更新优惠券请求
type UpdateCouponRequest struct {
	Description *string `json:"description,omitempty"`
	ValidFrom   *string `json:"valid_from,omitempty"`
	ValidTo     *string `json:"valid_to,omitempty"`
	MaxUses     *int    `json:"max_uses,omitempty"`
}

// CouponInfo 优惠券信息
type CouponInfo struct {
	ID                 int64   `json:"id"`
	HotelID            int64   `json:"hotel_id"`
	Code               string  `json:"code"`
	Description        *string `json:"description,omitempty"`
	DiscountPercentage float64 `json:"discount_percentage"`
	ValidFrom          string  `json:"valid_from"`
	ValidTo            string  `json:"valid_to"`
	MaxUses            *int    `json:"max_uses,omitempty"`
	CurrentUses        int     `json:"current_uses"`
	RemainingUses      *int    `json:"remaining_uses,omitempty"`
}

// Validate 校验优惠券
// 券码为空表示不使用优惠券，返回 (nil, nil)
// 校验顺序：存在性 → 有效期（按预订创建日判定）→ 剩余次数
func (s *CouponService) Validate(ctx context.Context, hotelID int64, code string, onDate time.Time) (*models.Coupon, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}

	coupon, err := s.couponRepo.GetByHotelAndCode(ctx, hotelID, code)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCouponNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if !coupon.IsValidOn(onDate) {
		return nil, errors.ErrCouponExpired
	}

	if coupon.IsExhausted() {
		return nil, errors.ErrCouponExhausted
	}

	return coupon, nil
}

// Redeem 核销优惠券（必须在预订事务内调用）
// 条件更新失败说明并发下次数已被抢光，调用方应回滚整个事务
func (s *CouponService) Redeem(ctx context.Context, tx *gorm.DB, couponID int64) error {
	if err := s.couponRepo.IncrementUsage(ctx, tx, couponID); err != nil {
		if err == gorm.ErrRecordNotFound {
			metrics.GetMetrics().RecordCouponRedemption("exhausted")
			return errors.ErrCouponExhausted
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	metrics.GetMetrics().RecordCouponRedemption("success")
	return nil
}

// CreateCoupon 创建优惠券（房东）
func (s *CouponService) CreateCoupon(ctx context.Context, hostID, hotelID int64, req *CreateCouponRequest) (*CouponInfo, error) {
	hotel, err := s.getOwnedHotel(ctx, hostID, hotelID)
	if err != nil {
		return nil, err
	}

	if req.DiscountPercentage <= 0 || req.DiscountPercentage > 100 {
		return nil, errors.ErrInvalidDiscount
	}
	if req.MaxUses != nil && *req.MaxUses < 1 {
		return nil, errors.ErrInvalidParams.WithMessage("最大使用次数必须大于0")
	}

	validFrom, validTo, err := parseValidityRange(req.ValidFrom, req.ValidTo)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.couponRepo.ExistsByHotelAndCode(ctx, hotel.ID, code)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrCouponCodeExists
	}

	coupon := &models.Coupon{
		HotelID:            hotel.ID,
		Code:               code,
		Description:        req.Description,
		DiscountPercentage: req.DiscountPercentage,
		ValidFrom:          validFrom,
		ValidTo:            validTo,
		MaxUses:            req.MaxUses,
	}
	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	return s.convertCouponInfo(coupon), nil
}

// UpdateCoupon 更新优惠券（房东，券码与折扣不可改）
func (s *CouponService) UpdateCoupon(ctx context.Context, hostID, couponID int64, req *UpdateCouponRequest) (*CouponInfo, error) {
	coupon, err := s.getOwnedCoupon(ctx, hostID, couponID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	validFrom := coupon.ValidFrom
	validTo := coupon.ValidTo
	if req.ValidFrom != nil {
		validFrom, err = parseDate(*req.ValidFrom)
		if err != nil {
			return nil, err
		}
		fields["valid_from"] = validFrom
	}
	if req.ValidTo != nil {
		validTo, err = parseDate(*req.ValidTo)
		if err != nil {
			return nil, err
		}
		fields["valid_to"] = validTo
	}
	if validTo.Before(validFrom) {
		return nil, errors.ErrInvalidParams.WithMessage("有效期结束不能早于开始")
	}
	if req.MaxUses != nil {
		if *req.MaxUses < coupon.CurrentUses {
			return nil, errors.ErrInvalidParams.WithMessage("最大使用次数不能小于已使用次数")
		}
		fields["max_uses"] = *req.MaxUses
	}

	if len(fields) > 0 {
		if err := s.couponRepo.UpdateFields(ctx, coupon.ID, fields); err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
	}

	coupon, err = s.couponRepo.GetByID(ctx, coupon.ID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return s.convertCouponInfo(coupon), nil
}

// DeleteCoupon 删除优惠券（房东）
func (s *CouponService) DeleteCoupon(ctx context.Context, hostID, couponID int64) error {
	coupon, err := s.getOwnedCoupon(ctx, hostID, couponID)
	if err != nil {
		return err
	}
	if err := s.couponRepo.Delete(ctx, coupon.ID); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// GetCoupon 获取优惠券详情（房东）
func (s *CouponService) GetCoupon(ctx context.Context, hostID, couponID int64) (*CouponInfo, error) {
	coupon, err := s.getOwnedCoupon(ctx, hostID, couponID)
	if err != nil {
		return nil, err
	}
	return s.convertCouponInfo(coupon), nil
}

// ListHotelCoupons 获取民宿下的优惠券列表（房东）
func (s *CouponService) ListHotelCoupons(ctx context.Context, hostID, hotelID int64, page, pageSize int) ([]*CouponInfo, int64, error) {
	if _, err := s.getOwnedHotel(ctx, hostID, hotelID); err != nil {
		return nil, 0, err
	}

	coupons, total, err := s.couponRepo.ListByHotel(ctx, hotelID, page, pageSize)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	var result []*CouponInfo
	for _, c := range coupons {
		result = append(result, s.convertCouponInfo(c))
	}
	return result, total, nil
}

// ListUsableCoupons 获取民宿当前可用的优惠券列表（房客）
func (s *CouponService) ListUsableCoupons(ctx context.Context, hotelID int64, page, pageSize int) ([]*CouponInfo, int64, error) {
	if _, err := s.hotelRepo.GetByID(ctx, hotelID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, 0, errors.ErrHotelNotFound
		}
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	coupons, total, err := s.couponRepo.ListActive(ctx, hotelID, page, pageSize)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	var result []*CouponInfo
	for _, c := range coupons {
		result = append(result, s.convertCouponInfo(c))
	}
	return result, total, nil
}

// getOwnedHotel 获取民宿并校验归属
func (s *CouponService) getOwnedHotel(ctx context.Context, hostID, hotelID int64) (*models.Hotel, error) {
	hotel, err := s.hotelRepo.GetByID(ctx, hotelID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrHotelNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if hotel.HostID != hostID {
		return nil, errors.ErrNotHotelOwner
	}
	return hotel, nil
}

// getOwnedCoupon 获取优惠券并校验归属
func (s *CouponService) getOwnedCoupon(ctx context.Context, hostID, couponID int64) (*models.Coupon, error) {
	coupon, err := s.couponRepo.GetByID(ctx, couponID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCouponNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if _, err := s.getOwnedHotel(ctx, hostID, coupon.HotelID); err != nil {
		return nil, err
	}
	return coupon, nil
}

// convertCouponInfo 转换优惠券信息
func (s *CouponService) convertCouponInfo(coupon *models.Coupon) *CouponInfo {
	info := &CouponInfo{
		ID:                 coupon.ID,
		HotelID:            coupon.HotelID,
		Code:               coupon.Code,
		Description:        coupon.Description,
		DiscountPercentage: coupon.DiscountPercentage,
		ValidFrom:          coupon.ValidFrom.Format("2006-01-02"),
		ValidTo:            coupon.ValidTo.Format("2006-01-02"),
		MaxUses:            coupon.MaxUses,
		CurrentUses:        coupon.CurrentUses,
	}
	if coupon.MaxUses != nil {
		remaining := *coupon.MaxUses - coupon.CurrentUses
		if remaining < 0 {
			remaining = 0
		}
		info.RemainingUses = &remaining
	}
	return info
}

// parseDate 解析日期（YYYY-MM-DD）
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, errors.ErrInvalidParams.WithMessage("日期格式错误，应为 YYYY-MM-DD")
	}
	return t, nil
}

// parseValidityRange 解析并校验有效期区间
func parseValidityRange(from, to string) (time.Time, time.Time, error) {
	validFrom, err := parseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	validTo, err := parseDate(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if validTo.Before(validFrom) {
		return time.Time{}, time.Time{}, errors.ErrInvalidParams.WithMessage("有效期结束不能早于开始")
	}
	return validFrom, validTo, nil
}
