package models

import (
	"time"
)

// Booking 预订模型
// 预订记录只追加不删除，取消是终态而非删除
type Booking struct {
	ID                int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingNo         string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"booking_no"`
	HotelID           int64      `gorm:"index;not null" json:"hotel_id"`
	GuestID           int64      `gorm:"index;not null" json:"guest_id"`
	CheckInDate       time.Time  `gorm:"type:date;not null;index" json:"check_in_date"`
	CheckOutDate      time.Time  `gorm:"type:date;not null;index" json:"check_out_date"`
	Guests            int        `gorm:"not null;default:1" json:"guests"`
	Status            string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PriceSnapshot     `gorm:"embedded" json:"price_snapshot"`
	AppliedCouponCode *string    `gorm:"type:varchar(32)" json:"applied_coupon_code,omitempty"`
	CancelReason      *string    `gorm:"type:varchar(255)" json:"cancel_reason,omitempty"`
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty"`
	CheckedInAt       *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt      *time.Time `json:"checked_out_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Hotel *Hotel `gorm:"foreignKey:HotelID" json:"hotel,omitempty"`
	Guest *User  `gorm:"foreignKey:GuestID" json:"guest,omitempty"`
}

// TableName 表名
func (Booking) TableName() string {
	return "bookings"
}

// PriceSnapshot 价格快照
// 创建或改期时一次性计算并固化，此后房源调价不影响已生成的快照
type PriceSnapshot struct {
	Nights                int      `gorm:"not null" json:"nights"`
	BasePricePerNight     float64  `gorm:"type:decimal(10,2);not null" json:"base_price_per_night"`
	BasePriceTotal        float64  `gorm:"type:decimal(10,2);not null" json:"base_price_total"`
	CleaningFee           float64  `gorm:"type:decimal(10,2);not null;default:0" json:"cleaning_fee"`
	ServiceFee            float64  `gorm:"type:decimal(10,2);not null;default:0" json:"service_fee"`
	Subtotal              float64  `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	CouponDiscountPercent *float64 `gorm:"type:decimal(5,2)" json:"coupon_discount_percent,omitempty"`
	DiscountAmount        float64  `gorm:"type:decimal(10,2);not null;default:0" json:"discount_amount"`
	TotalPrice            float64  `gorm:"type:decimal(10,2);not null" json:"total_price"`
}

// BookingStatus 预订状态
const (
	BookingStatusPending    = "pending"     // 待确认
	BookingStatusConfirmed  = "confirmed"   // 已确认
	BookingStatusCheckedIn  = "checked_in"  // 已入住
	BookingStatusCheckedOut = "checked_out" // 已退房
	BookingStatusCompleted  = "completed"   // 已完成
	BookingStatusCancelled  = "cancelled"   // 已取消
)

// ActiveBookingStatuses 占用房量的状态集合
// 只有这些状态的预订参与重叠统计
var ActiveBookingStatuses = []string{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCheckedIn,
}

// IsTerminal 是否为终态
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCompleted || b.Status == BookingStatusCancelled
}

// IsActive 是否占用房量
func (b *Booking) IsActive() bool {
	for _, s := range ActiveBookingStatuses {
		if b.Status == s {
			return true
		}
	}
	return false
}
