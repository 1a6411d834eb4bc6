package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrNotRunning     = errors.New("调度器未运行")
	ErrAlreadyRunning = errors.New("调度器已经在运行中")
	ErrTaskNotFound   = errors.New("任务不存在")
	ErrInvalidTask    = errors.New("任务无效")
)

// Config 调度器配置
type Config struct {
	Slots    int
	Interval time.Duration
	Workers  int
}

// Stats 调度器统计
type Stats struct {
	Running      bool  `json:"running"`
	CurrentSlot  int   `json:"currentSlot"`
	PendingTasks int   `json:"pendingTasks"`
	WorkerCount  int   `json:"workerCount"`
	Executed     int64 `json:"executed"`
	Failed       int64 `json:"failed"`
	Panicked     int64 `json:"panicked"`
}

// Scheduler 时间轮 + 工作协程池
type Scheduler struct {
	wheel      *TimeWheel
	workerPool *WorkerPool
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger

	runningMu sync.RWMutex
	running   bool
}

// NewScheduler 创建任务调度器
func NewScheduler(cfg Config) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		wheel:      NewTimeWheel(cfg.Slots, cfg.Interval),
		workerPool: NewWorkerPool(cfg.Workers),
		ctx:        ctx,
		cancel:     cancel,
		logger:     slog.Default().With("component", "task.scheduler"),
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.running = true

	s.workerPool.Start()
	s.wg.Add(1)
	go s.tickLoop()

	s.logger.Info("任务调度器已启动",
		"slots", len(s.wheel.slots),
		"interval", s.wheel.Interval())
	return nil
}

func (s *Scheduler) tickLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.wheel.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			for _, task := range s.wheel.Tick() {
				s.workerPool.Submit(task)
			}
		}
	}
}

// Stop 停止调度器，尚未到期的任务不再执行
func (s *Scheduler) Stop() {
	s.runningMu.Lock()
	if !s.running {
		s.runningMu.Unlock()
		return
	}
	s.running = false
	s.runningMu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.workerPool.Stop()
	s.logger.Info("任务调度器已停止")
}

// AddTask 添加任务
func (s *Scheduler) AddTask(task *Task) error {
	s.runningMu.RLock()
	defer s.runningMu.RUnlock()

	if !s.running {
		return ErrNotRunning
	}
	if task == nil || task.ID == "" {
		return ErrInvalidTask
	}
	s.wheel.AddTask(task)
	return nil
}

// Schedule 延迟 delay 后以 version 调用 fn，返回任务ID
func (s *Scheduler) Schedule(kind, target string, version int64, delay time.Duration, fn Func) (string, error) {
	task := NewTask(target, version, delay, fn).WithKind(kind)
	if err := s.AddTask(task); err != nil {
		return "", err
	}
	return task.ID, nil
}

// Cancel 取消尚未到期的任务
func (s *Scheduler) Cancel(taskID string) error {
	if !s.IsRunning() {
		return ErrNotRunning
	}
	if !s.wheel.RemoveTask(taskID) {
		return ErrTaskNotFound
	}
	return nil
}

// IsRunning 调度器是否运行中
func (s *Scheduler) IsRunning() bool {
	s.runningMu.RLock()
	defer s.runningMu.RUnlock()
	return s.running
}

// Stats 调度器统计信息
func (s *Scheduler) Stats() Stats {
	return Stats{
		Running:      s.IsRunning(),
		CurrentSlot:  s.wheel.CurrentSlot(),
		PendingTasks: s.wheel.TotalTaskCount(),
		WorkerCount:  s.workerPool.workerCount,
		Executed:     s.workerPool.executed.Load(),
		Failed:       s.workerPool.failed.Load(),
		Panicked:     s.workerPool.panicked.Load(),
	}
}
