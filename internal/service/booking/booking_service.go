package booking

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yuewen2025/homestay-backend/internal/common/errors"
	"github.com/yuewen2025/homestay-backend/internal/common/logger"
	"github.com/yuewen2025/homestay-backend/internal/common/metrics"
	"github.com/yuewen2025/homestay-backend/internal/common/qrcode"
	"github.com/yuewen2025/homestay-backend/internal/common/tracing"
	"github.com/yuewen2025/homestay-backend/internal/common/utils"
	"github.com/yuewen2025/homestay-backend/internal/models"
	"github.com/yuewen2025/homestay-backend/internal/repository"
	couponService "github.com/yuewen2025/homestay-backend/internal/service/coupon"
)

// BookingService 预订服务
type BookingService struct {
	db          *gorm.DB
	bookingRepo *repository.BookingRepository
	hotelRepo   *repository.HotelRepository
	couponSvc   *couponService.CouponService
}

// NewBookingService 创建预订服务
func NewBookingService(
	db *gorm.DB,
	bookingRepo *repository.BookingRepository,
	hotelRepo *repository.HotelRepository,
	couponSvc *couponService.CouponService,
) *BookingService {
	return &BookingService{
		db:          db,
		bookingRepo: bookingRepo,
		hotelRepo:   hotelRepo,
		couponSvc:   couponSvc,
	}
}

// CreateBookingRequest 创建预订请求
type CreateBookingRequest struct {
	HotelID      int64  `json:"hotel_id" binding:"required"`
	CheckInDate  string `json:"check_in_date" binding:"required"`
	CheckOutDate string `json:"check_out_date" binding:"required"`
	Guests       int    `json:"guests" binding:"required,min=1"`
	CouponCode   string `json:"coupon_code,omitempty"`
}

// RescheduleRequest 改期请求
type RescheduleRequest struct {
	CheckInDate  string `json:"check_in_date" binding:"required"`
	CheckOutDate string `json:"check_out_date" binding:"required"`
}

// CancelRequest 取消请求
type CancelRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// BookingInfo 预订信息
type BookingInfo struct {
	ID                int64      `json:"id"`
	BookingNo         string     `json:"booking_no"`
	HotelID           int64      `json:"hotel_id"`
	HotelName         string     `json:"hotel_name,omitempty"`
	GuestID           int64      `json:"guest_id"`
	CheckInDate       string     `json:"check_in_date"`
	CheckOutDate      string     `json:"check_out_date"`
	Guests            int        `json:"guests"`
	Status            string     `json:"status"`
	StatusName        string     `json:"status_name"`
	Price             PriceInfo  `json:"price"`
	AppliedCouponCode *string    `json:"applied_coupon_code,omitempty"`
	CancelReason      *string    `json:"cancel_reason,omitempty"`
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty"`
	CheckedInAt       *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt      *time.Time `json:"checked_out_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// PriceInfo 价格信息
type PriceInfo struct {
	Nights                int      `json:"nights"`
	BasePricePerNight     float64  `json:"base_price_per_night"`
	BasePriceTotal        float64  `json:"base_price_total"`
	CleaningFee           float64  `json:"cleaning_fee"`
	ServiceFee            float64  `json:"service_fee"`
	Subtotal              float64  `json:"subtotal"`
	CouponDiscountPercent *float64 `json:"coupon_discount_percent,omitempty"`
	DiscountAmount        float64  `json:"discount_amount"`
	TotalPrice            float64  `json:"total_price"`
}

// CreateBooking 创建预订
// 校验顺序：输入 → 可订性 → 优惠券 → 计价 → 落库，全程单事务
// 民宿行加排他锁后再统计重叠，避免并发超订
func (s *BookingService) CreateBooking(ctx context.Context, guestID int64, req *CreateBookingRequest) (*BookingInfo, error) {
	ctx, span := tracing.StartSpan(ctx, "booking.create",
		tracing.WithUserID(guestID), tracing.WithHotelID(req.HotelID))
	defer span.End()

	checkIn, checkOut, err := parseDateRange(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, err
	}

	var booking *models.Booking
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 锁定民宿行
		hotel, err := s.hotelRepo.GetByIDForUpdate(ctx, tx, req.HotelID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrHotelNotFound
			}
			return errors.ErrDatabaseError.WithError(err)
		}
		if !hotel.IsApproved {
			return errors.ErrHotelNotApproved
		}
		if hotel.IsSuspended {
			return errors.ErrHotelSuspended
		}

		// 2. 可订性评估
		overlap, err := s.bookingRepo.CountOverlapping(ctx, tx, hotel.ID, checkIn, checkOut, 0)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if err := EvaluateAvailability(hotel, checkIn, checkOut, req.Guests, overlap); err != nil {
			return err
		}

		// 3. 优惠券校验与核销（按创建当日判定有效期）
		coupon, err := s.couponSvc.Validate(ctx, hotel.ID, req.CouponCode, time.Now())
		if err != nil {
			return err
		}
		var discountPercent *float64
		var appliedCode *string
		if coupon != nil {
			if err := s.couponSvc.Redeem(ctx, tx, coupon.ID); err != nil {
				return err
			}
			discountPercent = &coupon.DiscountPercentage
			appliedCode = &coupon.Code
		}

		// 4. 计价并固化快照
		snapshot := CalculatePrice(hotel, checkIn, checkOut, discountPercent)

		booking = &models.Booking{
			BookingNo:         utils.GenerateBookingNo("B"),
			HotelID:           hotel.ID,
			GuestID:           guestID,
			CheckInDate:       checkIn,
			CheckOutDate:      checkOut,
			Guests:            req.Guests,
			Status:            models.BookingStatusPending,
			PriceSnapshot:     snapshot,
			AppliedCouponCode: appliedCode,
		}
		if err := tx.Create(booking).Error; err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if txErr != nil {
		tracing.SetError(ctx, txErr)
		if errors.IsAppError(txErr) {
			return nil, txErr
		}
		return nil, errors.ErrDatabaseError.WithError(txErr)
	}

	tracing.AddEvent(ctx, "booking.created", tracing.WithBookingNo(booking.BookingNo))
	metrics.GetMetrics().RecordBooking(models.BookingStatusPending)
	logger.Info("预订创建成功",
		logger.UserID(guestID),
		logger.HotelID(booking.HotelID),
		logger.BookingNo(booking.BookingNo),
	)

	return s.convertBookingInfo(booking), nil
}

// GetBooking 获取预订详情（房客本人或民宿房东可见）
func (s *BookingService) GetBooking(ctx context.Context, id, userID int64) (*BookingInfo, error) {
	booking, err := s.bookingRepo.GetByIDWithDetails(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if booking.GuestID != userID && (booking.Hotel == nil || booking.Hotel.HostID != userID) {
		return nil, errors.ErrBookingNotOwned
	}

	return s.convertBookingInfo(booking), nil
}

// GetBookingByNo 根据预订号获取预订
func (s *BookingService) GetBookingByNo(ctx context.Context, bookingNo string, userID int64) (*BookingInfo, error) {
	booking, err := s.bookingRepo.GetByBookingNo(ctx, bookingNo)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return s.GetBooking(ctx, booking.ID, userID)
}

// ListGuestBookings 获取房客的预订列表
func (s *BookingService) ListGuestBookings(ctx context.Context, guestID int64, page, pageSize int, status *string) ([]*BookingInfo, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	bookings, total, err := s.bookingRepo.ListByGuest(ctx, guestID, offset, pageSize, status)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	var result []*BookingInfo
	for _, b := range bookings {
		result = append(result, s.convertBookingInfo(b))
	}
	return result, total, nil
}

// ListHotelBookings 获取民宿的预订列表（房东）
func (s *BookingService) ListHotelBookings(ctx context.Context, hostID, hotelID int64, page, pageSize int, status *string) ([]*BookingInfo, int64, error) {
	hotel, err := s.hotelRepo.GetByID(ctx, hotelID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, 0, errors.ErrHotelNotFound
		}
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	if hotel.HostID != hostID {
		return nil, 0, errors.ErrNotHotelOwner
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	bookings, total, err := s.bookingRepo.ListByHotel(ctx, hotelID, offset, pageSize, status)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	var result []*BookingInfo
	for _, b := range bookings {
		result = append(result, s.convertBookingInfo(b))
	}
	return result, total, nil
}

// CancelBooking 取消预订（房客，pending/confirmed 可取消）
// 已核销的优惠券次数不返还，使用计数只增不减
func (s *BookingService) CancelBooking(ctx context.Context, id, guestID int64, reason *string) error {
	var changed bool
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if booking.GuestID != guestID {
			return errors.ErrBookingNotOwned
		}

		// 重复取消视为幂等成功
		if booking.Status == models.BookingStatusCancelled {
			return nil
		}
		if !CanTransition(booking.Status, models.BookingStatusCancelled) {
			return errors.ErrInvalidTransition
		}

		now := time.Now()
		fields := map[string]interface{}{
			"status":        models.BookingStatusCancelled,
			"cancel_reason": reason,
			"cancelled_at":  now,
		}
		if err := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).Updates(fields).Error; err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		changed = true
		return nil
	})
	if txErr != nil {
		if errors.IsAppError(txErr) {
			return txErr
		}
		return errors.ErrDatabaseError.WithError(txErr)
	}

	if changed {
		metrics.GetMetrics().RecordBooking(models.BookingStatusCancelled)
	}
	return nil
}

// PayBooking 模拟支付成功（房客，pending → confirmed）
func (s *BookingService) PayBooking(ctx context.Context, id, guestID int64) (*BookingInfo, error) {
	return s.transition(ctx, id, models.BookingStatusConfirmed, func(b *models.Booking) error {
		if b.GuestID != guestID {
			return errors.ErrBookingNotOwned
		}
		return nil
	})
}

// ConfirmBooking 确认预订（房东，pending → confirmed）
func (s *BookingService) ConfirmBooking(ctx context.Context, id, hostID int64) (*BookingInfo, error) {
	return s.transition(ctx, id, models.BookingStatusConfirmed, s.requireHost(ctx, hostID))
}

// RejectBooking 拒绝预订（房东，pending → cancelled）
func (s *BookingService) RejectBooking(ctx context.Context, id, hostID int64, reason *string) (*BookingInfo, error) {
	ownerCheck := s.requireHost(ctx, hostID)
	return s.transition(ctx, id, models.BookingStatusCancelled, func(b *models.Booking) error {
		if err := ownerCheck(b); err != nil {
			return err
		}
		// 房东只能拒绝待确认的预订，已确认的取消由房客发起
		if b.Status != models.BookingStatusPending && b.Status != models.BookingStatusCancelled {
			return errors.ErrInvalidTransition
		}
		b.CancelReason = reason
		return nil
	})
}

// CheckInBooking 办理入住（房东，confirmed → checked_in）
// 仅允许在 [入住日, 退房日) 的日历日内办理
func (s *BookingService) CheckInBooking(ctx context.Context, id, hostID int64) (*BookingInfo, error) {
	ownerCheck := s.requireHost(ctx, hostID)
	return s.transition(ctx, id, models.BookingStatusCheckedIn, func(b *models.Booking) error {
		if err := ownerCheck(b); err != nil {
			return err
		}
		today := utils.DateOnly(time.Now())
		if today.Before(utils.DateOnly(b.CheckInDate)) {
			return errors.ErrCheckInDateNotArrived
		}
		if !today.Before(utils.DateOnly(b.CheckOutDate)) {
			return errors.ErrInvalidTransition.WithMessage("已过退房日期，无法办理入住")
		}
		return nil
	})
}

// CheckOutBooking 办理退房（房东，checked_in → checked_out）
func (s *BookingService) CheckOutBooking(ctx context.Context, id, hostID int64) (*BookingInfo, error) {
	return s.transition(ctx, id, models.BookingStatusCheckedOut, s.requireHost(ctx, hostID))
}

// Reschedule 改期（房客，pending/confirmed 可改）
// 重新评估可订性时排除本单自身；原折扣百分比原样沿用，不重新校验优惠券
func (s *BookingService) Reschedule(ctx context.Context, id, guestID int64, req *RescheduleRequest) (*BookingInfo, error) {
	ctx, span := tracing.StartSpan(ctx, "booking.reschedule", tracing.WithUserID(guestID))
	defer span.End()

	newCheckIn, newCheckOut, err := parseDateRange(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, err
	}

	var booking *models.Booking
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := s.getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if b.GuestID != guestID {
			return errors.ErrBookingNotOwned
		}
		if b.Status != models.BookingStatusPending && b.Status != models.BookingStatusConfirmed {
			return errors.ErrInvalidTransition.WithMessage("当前状态不可改期")
		}

		hotel, err := s.hotelRepo.GetByIDForUpdate(ctx, tx, b.HotelID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrHotelNotFound
			}
			return errors.ErrDatabaseError.WithError(err)
		}

		overlap, err := s.bookingRepo.CountOverlapping(ctx, tx, hotel.ID, newCheckIn, newCheckOut, b.ID)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if err := EvaluateAvailability(hotel, newCheckIn, newCheckOut, b.Guests, overlap); err != nil {
			return err
		}

		// 重算快照，折扣百分比沿用原值
		snapshot := CalculatePrice(hotel, newCheckIn, newCheckOut, b.CouponDiscountPercent)
		b.CheckInDate = newCheckIn
		b.CheckOutDate = newCheckOut
		b.PriceSnapshot = snapshot
		if err := tx.Save(b).Error; err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		booking = b
		return nil
	})
	if txErr != nil {
		if errors.IsAppError(txErr) {
			return nil, txErr
		}
		return nil, errors.ErrDatabaseError.WithError(txErr)
	}

	logger.Info("预订改期成功",
		logger.UserID(guestID),
		logger.BookingNo(booking.BookingNo),
	)
	return s.convertBookingInfo(booking), nil
}

// CompleteCheckedOut 将退房日已过的预订标记完成（定时任务调用）
func (s *BookingService) CompleteCheckedOut(ctx context.Context, batchSize int) error {
	today := utils.DateOnly(time.Now())
	bookings, err := s.bookingRepo.ListToComplete(ctx, today, batchSize)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}

	for _, b := range bookings {
		if err := s.bookingRepo.Complete(ctx, b.ID); err != nil {
			logger.Warn("自动完成预订失败",
				logger.BookingNo(b.BookingNo),
				logger.Err(err),
			)
			continue
		}
		metrics.GetMetrics().RecordBooking(models.BookingStatusCompleted)
	}
	return nil
}

// SweepStalePending 清理入住日已过仍未确认的预订（定时任务调用）
func (s *BookingService) SweepStalePending(ctx context.Context, batchSize int) error {
	today := utils.DateOnly(time.Now())
	bookings, err := s.bookingRepo.ListStalePending(ctx, today, batchSize)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}

	reason := "入住日期已过，系统自动取消"
	for _, b := range bookings {
		id := b.ID
		sweepErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			booking, err := s.getForUpdate(ctx, tx, id)
			if err != nil {
				return err
			}
			if booking.Status != models.BookingStatusPending {
				return nil
			}
			now := time.Now()
			fields := map[string]interface{}{
				"status":        models.BookingStatusCancelled,
				"cancel_reason": reason,
				"cancelled_at":  now,
			}
			if err := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).Updates(fields).Error; err != nil {
				return errors.ErrDatabaseError.WithError(err)
			}
			return nil
		})
		if sweepErr != nil {
			logger.Warn("清理过期待确认预订失败",
				logger.BookingNo(b.BookingNo),
				logger.Err(sweepErr),
			)
			continue
		}
		metrics.GetMetrics().RecordBooking(models.BookingStatusCancelled)
	}
	return nil
}

// GetCheckInQRCode 生成入住核验二维码
// 内容为预订号，房东扫码后查单办理入住
func (s *BookingService) GetCheckInQRCode(ctx context.Context, id, guestID int64) (string, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", errors.ErrBookingNotFound
		}
		return "", errors.ErrDatabaseError.WithError(err)
	}
	if booking.GuestID != guestID {
		return "", errors.ErrBookingNotOwned
	}
	if booking.Status != models.BookingStatusConfirmed && booking.Status != models.BookingStatusCheckedIn {
		return "", errors.ErrInvalidTransition.WithMessage("当前状态无入住二维码")
	}

	dataURL, err := qrcode.NewGenerator().GenerateDataURL(booking.BookingNo)
	if err != nil {
		return "", errors.ErrInternalError.WithError(err)
	}
	return dataURL, nil
}

// transition 执行状态迁移
// 目标状态已持有时视为幂等成功；迁移表之外的流转返回 ErrInvalidTransition
func (s *BookingService) transition(ctx context.Context, id int64, target string, check func(*models.Booking) error) (*BookingInfo, error) {
	var booking *models.Booking
	var changed bool
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := s.getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(b); err != nil {
				return err
			}
		}

		if b.Status == target {
			booking = b
			return nil
		}
		if !CanTransition(b.Status, target) {
			return errors.ErrInvalidTransition
		}

		now := time.Now()
		fields := map[string]interface{}{"status": target}
		switch target {
		case models.BookingStatusConfirmed:
			fields["confirmed_at"] = now
			b.ConfirmedAt = &now
		case models.BookingStatusCheckedIn:
			fields["checked_in_at"] = now
			b.CheckedInAt = &now
		case models.BookingStatusCheckedOut:
			fields["checked_out_at"] = now
			b.CheckedOutAt = &now
		case models.BookingStatusCompleted:
			fields["completed_at"] = now
			b.CompletedAt = &now
		case models.BookingStatusCancelled:
			fields["cancelled_at"] = now
			fields["cancel_reason"] = b.CancelReason
			b.CancelledAt = &now
		}
		if err := tx.Model(&models.Booking{}).Where("id = ?", b.ID).Updates(fields).Error; err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		b.Status = target
		booking = b
		changed = true
		return nil
	})
	if txErr != nil {
		if errors.IsAppError(txErr) {
			return nil, txErr
		}
		return nil, errors.ErrDatabaseError.WithError(txErr)
	}

	if changed {
		metrics.GetMetrics().RecordBooking(target)
	}
	return s.convertBookingInfo(booking), nil
}

// requireHost 构造房东归属校验
func (s *BookingService) requireHost(ctx context.Context, hostID int64) func(*models.Booking) error {
	return func(b *models.Booking) error {
		hotel, err := s.hotelRepo.GetByID(ctx, b.HotelID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrHotelNotFound
			}
			return errors.ErrDatabaseError.WithError(err)
		}
		if hotel.HostID != hostID {
			return errors.ErrNotHotelOwner
		}
		return nil
	}
}

// getForUpdate 在事务内取预订并加行锁
func (s *BookingService) getForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return &booking, nil
}

// convertBookingInfo 转换预订信息
func (s *BookingService) convertBookingInfo(booking *models.Booking) *BookingInfo {
	info := &BookingInfo{
		ID:           booking.ID,
		BookingNo:    booking.BookingNo,
		HotelID:      booking.HotelID,
		GuestID:      booking.GuestID,
		CheckInDate:  booking.CheckInDate.Format("2006-01-02"),
		CheckOutDate: booking.CheckOutDate.Format("2006-01-02"),
		Guests:       booking.Guests,
		Status:       booking.Status,
		StatusName:   StatusName(booking.Status),
		Price: PriceInfo{
			Nights:                booking.Nights,
			BasePricePerNight:     booking.BasePricePerNight,
			BasePriceTotal:        booking.BasePriceTotal,
			CleaningFee:           booking.CleaningFee,
			ServiceFee:            booking.ServiceFee,
			Subtotal:              booking.Subtotal,
			CouponDiscountPercent: booking.CouponDiscountPercent,
			DiscountAmount:        booking.DiscountAmount,
			TotalPrice:            booking.TotalPrice,
		},
		AppliedCouponCode: booking.AppliedCouponCode,
		CancelReason:      booking.CancelReason,
		ConfirmedAt:       booking.ConfirmedAt,
		CheckedInAt:       booking.CheckedInAt,
		CheckedOutAt:      booking.CheckedOutAt,
		CompletedAt:       booking.CompletedAt,
		CancelledAt:       booking.CancelledAt,
		CreatedAt:         booking.CreatedAt,
	}
	if booking.Hotel != nil {
		info.HotelName = booking.Hotel.Name
	}
	return info
}

// parseDateRange 解析入住/退房日期
func parseDateRange(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := time.Parse("2006-01-02", checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, errors.ErrInvalidParams.WithMessage("入住日期格式错误，应为 YYYY-MM-DD")
	}
	out, err := time.Parse("2006-01-02", checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, errors.ErrInvalidParams.WithMessage("退房日期格式错误，应为 YYYY-MM-DD")
	}
	return in, out, nil
}
