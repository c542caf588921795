package models

import (
	"time"
)

// Coupon 优惠券模型
// 券码在同一房源下唯一，折扣为百分比，有效期按日历日闭区间判定
type Coupon struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	HotelID            int64     `gorm:"uniqueIndex:idx_coupons_hotel_code;not null" json:"hotel_id"`
	Code               string    `gorm:"type:varchar(32);uniqueIndex:idx_coupons_hotel_code;not null" json:"code"`
	Description        *string   `gorm:"type:varchar(255)" json:"description,omitempty"`
	DiscountPercentage float64   `gorm:"type:decimal(5,2);not null" json:"discount_percentage"`
	ValidFrom          time.Time `gorm:"type:date;not null" json:"valid_from"`
	ValidTo            time.Time `gorm:"type:date;not null" json:"valid_to"`
	MaxUses            *int      `json:"max_uses,omitempty"`
	CurrentUses        int       `gorm:"not null;default:0" json:"current_uses"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Hotel *Hotel `gorm:"foreignKey:HotelID" json:"hotel,omitempty"`
}

// TableName 表名
func (Coupon) TableName() string {
	return "coupons"
}

// IsValidOn 指定日期是否在有效期内（闭区间，按日历日比较）
func (c *Coupon) IsValidOn(date time.Time) bool {
	day := date.Truncate(24 * time.Hour)
	return !day.Before(c.ValidFrom.Truncate(24*time.Hour)) &&
		!day.After(c.ValidTo.Truncate(24*time.Hour))
}

// IsExhausted 使用次数是否已耗尽（max_uses 为空表示不限次）
func (c *Coupon) IsExhausted() bool {
	return c.MaxUses != nil && c.CurrentUses >= *c.MaxUses
}
