package booking

import (
	"time"

	"github.com/yuewen2025/homestay-backend/internal/common/utils"
	"github.com/yuewen2025/homestay-backend/internal/models"
)

// CalculateNights 计算间夜数（日历日差，最少 1 晚）
func CalculateNights(checkIn, checkOut time.Time) int {
	nights := int(utils.DateOnly(checkOut).Sub(utils.DateOnly(checkIn)).Hours() / 24)
	if nights < 1 {
		nights = 1
	}
	return nights
}

// CalculatePrice 计算价格快照
// 纯函数，输入相同输出必然相同；中间量不舍入，
// 仅在折扣金额和总价两处做两位小数舍入
func CalculatePrice(hotel *models.Hotel, checkIn, checkOut time.Time, discountPercent *float64) models.PriceSnapshot {
	nights := CalculateNights(checkIn, checkOut)
	basePriceTotal := hotel.BasePricePerNight * float64(nights)
	subtotal := basePriceTotal + hotel.CleaningFee + hotel.ServiceFee

	var discountAmount float64
	if discountPercent != nil {
		discountAmount = utils.Round2(subtotal * (*discountPercent) / 100)
	}
	totalPrice := utils.Round2(subtotal - discountAmount)

	return models.PriceSnapshot{
		Nights:                nights,
		BasePricePerNight:     hotel.BasePricePerNight,
		BasePriceTotal:        basePriceTotal,
		CleaningFee:           hotel.CleaningFee,
		ServiceFee:            hotel.ServiceFee,
		Subtotal:              subtotal,
		CouponDiscountPercent: discountPercent,
		DiscountAmount:        discountAmount,
		TotalPrice:            totalPrice,
	}
}
