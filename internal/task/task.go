package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Func 任务执行函数，version 为任务创建时目标的版本号
type Func func(ctx context.Context, target string, version int64) error

// Task 延迟任务
type Task struct {
	ID        string        `json:"id"`        // 任务唯一ID
	Kind      string        `json:"kind"`      // 任务类型 (bot / riichi ...)
	Target    string        `json:"target"`    // 操作对象标识 (房间ID)
	Version   int64         `json:"version"`   // 创建时目标的版本号，触发时由 Fn 比对
	Delay     time.Duration `json:"delay"`     // 延迟
	Fn        Func          `json:"-"`         // 执行函数
	CreatedAt time.Time     `json:"createdAt"` // 创建时间

	rounds int // 还需转过的整圈数
}

// NewTask 创建新任务
func NewTask(target string, version int64, delay time.Duration, fn Func) *Task {
	return &Task{
		ID:        uuid.NewString(),
		Target:    target,
		Version:   version,
		Delay:     delay,
		Fn:        fn,
		CreatedAt: time.Now(),
	}
}

// WithKind 设置任务类型
func (t *Task) WithKind(kind string) *Task {
	t.Kind = kind
	return t
}

// Execute 执行任务
func (t *Task) Execute(ctx context.Context) error {
	if t.Fn == nil {
		return nil
	}
	return t.Fn(ctx, t.Target, t.Version)
}
