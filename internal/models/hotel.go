package models

import (
	"time"
)

// Hotel 民宿房源模型
type Hotel struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	HostID            int64     `gorm:"index;not null" json:"host_id"`
	Name              string    `gorm:"type:varchar(100);not null" json:"name"`
	Province          string    `gorm:"type:varchar(50);not null" json:"province"`
	City              string    `gorm:"type:varchar(50);not null" json:"city"`
	District          string    `gorm:"type:varchar(50);not null" json:"district"`
	Address           string    `gorm:"type:varchar(255);not null" json:"address"`
	Description       *string   `gorm:"type:text" json:"description,omitempty"`
	MaxGuests         int       `gorm:"not null;default:2" json:"max_guests"`
	Bedrooms          int       `gorm:"not null;default:1" json:"bedrooms"`
	Bathrooms         int       `gorm:"not null;default:1" json:"bathrooms"`
	TotalRooms        int       `gorm:"not null;default:1" json:"total_rooms"`
	BasePricePerNight float64   `gorm:"type:decimal(10,2);not null" json:"base_price_per_night"`
	CleaningFee       float64   `gorm:"type:decimal(10,2);not null;default:0" json:"cleaning_fee"`
	ServiceFee        float64   `gorm:"type:decimal(10,2);not null;default:0" json:"service_fee"`
	Amenities         JSON      `gorm:"type:jsonb" json:"amenities,omitempty"`
	IsApproved        bool      `gorm:"not null;default:false" json:"is_approved"`
	IsSuspended       bool      `gorm:"not null;default:false" json:"is_suspended"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Host     *User     `gorm:"foreignKey:HostID" json:"host,omitempty"`
	Bookings []Booking `gorm:"foreignKey:HotelID" json:"bookings,omitempty"`
	Coupons  []Coupon  `gorm:"foreignKey:HotelID" json:"coupons,omitempty"`
}

// TableName 表名
func (Hotel) TableName() string {
	return "hotels"
}

// IsBookable 房源是否可被预订（已审核且未停用）
func (h *Hotel) IsBookable() bool {
	return h.IsApproved && !h.IsSuspended
}
