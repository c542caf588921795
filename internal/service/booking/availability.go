// Package booking 提供预订生命周期服务
package booking

import (
	"time"

	"github.com/yuewen2025/homestay-backend/internal/common/errors"
	"github.com/yuewen2025/homestay-backend/internal/common/utils"
	"github.com/yuewen2025/homestay-backend/internal/models"
)

// EvaluateAvailability 评估可订性
// 纯函数，不触库；overlapCount 为调用方在同一事务内统计的重叠预订数
// 判定顺序：人数容量 → 日期合法性 → 房量
func EvaluateAvailability(hotel *models.Hotel, checkIn, checkOut time.Time, guests int, overlapCount int64) error {
	if guests < 1 || guests > hotel.MaxGuests {
		return errors.ErrGuestsExceedCapacity
	}

	if err := ValidateDateRange(checkIn, checkOut); err != nil {
		return err
	}

	if overlapCount+1 > int64(hotel.TotalRooms) {
		return errors.ErrNoRoomsAvailable
	}

	return nil
}

// ValidateDateRange 校验日期区间
// 退房日必须晚于入住日，入住日不能早于今天（按日历日比较）
func ValidateDateRange(checkIn, checkOut time.Time) error {
	if !checkOut.After(checkIn) {
		return errors.ErrInvalidDateRange
	}
	today := utils.DateOnly(time.Now())
	if utils.DateOnly(checkIn).Before(today) {
		return errors.ErrInvalidDateRange.WithMessage("入住日期不能是过去")
	}
	return nil
}
