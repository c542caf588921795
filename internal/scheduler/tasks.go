// Package scheduler 提供定时任务
package scheduler

import (
	"context"

	"gorm.io/gorm"

	"github.com/yuewen2025/homestay-backend/internal/common/metrics"
	"github.com/yuewen2025/homestay-backend/internal/repository"
	bookingService "github.com/yuewen2025/homestay-backend/internal/service/booking"
)

// TaskHandler 任务处理器
type TaskHandler struct {
	db             *gorm.DB
	bookingRepo    *repository.BookingRepository
	bookingService *bookingService.BookingService
	batchSize      int
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(
	db *gorm.DB,
	bookingRepo *repository.BookingRepository,
	bookingSvc *bookingService.BookingService,
	batchSize int,
) *TaskHandler {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &TaskHandler{
		db:             db,
		bookingRepo:    bookingRepo,
		bookingService: bookingSvc,
		batchSize:      batchSize,
	}
}

// CompleteCheckedOutBookings 将退房日已过的预订标记为已完成
func (h *TaskHandler) CompleteCheckedOutBookings(ctx context.Context) error {
	return h.bookingService.CompleteCheckedOut(ctx, h.batchSize)
}

// SweepStalePendingBookings 取消入住日已过仍未确认的预订
func (h *TaskHandler) SweepStalePendingBookings(ctx context.Context) error {
	return h.bookingService.SweepStalePending(ctx, h.batchSize)
}

// RefreshActiveBookingsGauge 刷新活跃预订数指标
func (h *TaskHandler) RefreshActiveBookingsGauge(ctx context.Context) error {
	count, err := h.bookingRepo.CountActive(ctx)
	if err != nil {
		return err
	}
	metrics.GetMetrics().SetActiveBookings(float64(count))
	return nil
}
