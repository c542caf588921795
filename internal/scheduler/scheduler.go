// Package scheduler 提供定时任务调度
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yuewen2025/homestay-backend/internal/common/logger"
)

// 单次任务执行的超时上限，防止批量清理卡死拖住退出
const taskTimeout = 5 * time.Minute

// Scheduler 定时任务调度器，每个任务独立 goroutine 按固定间隔触发
type Scheduler struct {
	tasks  []*Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Task 定时任务
type Task struct {
	Name     string
	Interval time.Duration
	Handler  func(ctx context.Context) error
}

// NewScheduler 创建调度器
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddTask 注册任务，需在 Start 之前调用
func (s *Scheduler) AddTask(name string, interval time.Duration, handler func(ctx context.Context) error) {
	s.tasks = append(s.tasks, &Task{
		Name:     name,
		Interval: interval,
		Handler:  handler,
	})
}

// Start 启动调度器
func (s *Scheduler) Start() {
	logger.Info("定时任务调度器启动", zap.Int("tasks", len(s.tasks)))

	for _, task := range s.tasks {
		s.wg.Add(1)
		go s.runTask(task)
	}
}

// Stop 停止调度器，等待在途任务结束
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	logger.Info("定时任务调度器已停止")
}

// runTask 运行单个任务，启动时立即执行一次
func (s *Scheduler) runTask(task *Task) {
	defer s.wg.Done()

	logger.Info("定时任务启动",
		zap.String("task", task.Name),
		zap.Duration("interval", task.Interval),
	)

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	s.executeTask(task)

	for {
		select {
		case <-s.ctx.Done():
			logger.Info("定时任务退出", zap.String("task", task.Name))
			return
		case <-ticker.C:
			s.executeTask(task)
		}
	}
}

// executeTask 执行任务，panic 只中断本轮不杀死调度循环
func (s *Scheduler) executeTask(task *Task) {
	ctx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("定时任务 panic",
				zap.String("task", task.Name),
				logger.Err(fmt.Errorf("%v", r)),
			)
		}
	}()

	start := time.Now()
	if err := task.Handler(ctx); err != nil {
		logger.Warn("定时任务执行失败",
			zap.String("task", task.Name),
			logger.Err(err),
		)
		return
	}
	logger.Debug("定时任务执行完成",
		zap.String("task", task.Name),
		zap.Duration("cost", time.Since(start)),
	)
}
