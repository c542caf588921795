package booking

import (
	"github.com/yuewen2025/homestay-backend/internal/models"
)

// transitionTable 状态迁移表，预订状态只能沿表内路径流转
var transitionTable = map[string][]string{
	models.BookingStatusPending: {
		models.BookingStatusConfirmed,
		models.BookingStatusCancelled,
	},
	models.BookingStatusConfirmed: {
		models.BookingStatusCheckedIn,
		models.BookingStatusCancelled,
	},
	models.BookingStatusCheckedIn: {
		models.BookingStatusCheckedOut,
	},
	models.BookingStatusCheckedOut: {
		models.BookingStatusCompleted,
	},
	// completed / cancelled 为终态，不再流转
}

// CanTransition 判断状态迁移是否合法
func CanTransition(from, to string) bool {
	for _, next := range transitionTable[from] {
		if next == to {
			return true
		}
	}
	return false
}

// statusNames 状态中文名
var statusNames = map[string]string{
	models.BookingStatusPending:    "待确认",
	models.BookingStatusConfirmed:  "已确认",
	models.BookingStatusCheckedIn:  "已入住",
	models.BookingStatusCheckedOut: "已退房",
	models.BookingStatusCompleted:  "已完成",
	models.BookingStatusCancelled:  "已取消",
}

// StatusName 获取状态中文名
func StatusName(status string) string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return "未知"
}
