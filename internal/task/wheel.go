package task

import (
	"sync"
	"time"
)

const (
	DefaultSlotCount = 60
	DefaultInterval  = 100 * time.Millisecond
)

// TimeWheel 时间轮，超过一圈的延迟记在任务的圈数上
type TimeWheel struct {
	mu       sync.Mutex
	slots    []*Slot
	current  int
	interval time.Duration
	index    map[string]int // taskID -> 槽位
}

// NewTimeWheel 创建时间轮
func NewTimeWheel(slotCount int, interval time.Duration) *TimeWheel {
	if slotCount <= 0 {
		slotCount = DefaultSlotCount
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	tw := &TimeWheel{
		slots:    make([]*Slot, slotCount),
		interval: interval,
		index:    make(map[string]int),
	}
	for i := range tw.slots {
		tw.slots[i] = NewSlot()
	}
	return tw
}

// Interval 每格时长
func (tw *TimeWheel) Interval() time.Duration { return tw.interval }

// ticksFor 延迟折算成格数，不足一格按一格
func (tw *TimeWheel) ticksFor(delay time.Duration) int {
	ticks := int((delay + tw.interval - 1) / tw.interval)
	return max(ticks, 1)
}

// AddTask 添加任务到时间轮
func (tw *TimeWheel) AddTask(task *Task) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	ticks := tw.ticksFor(task.Delay)
	n := len(tw.slots)
	target := (tw.current + ticks) % n
	task.rounds = (ticks - 1) / n

	tw.slots[target].AddTask(task)
	tw.index[task.ID] = target
}

// RemoveTask 从时间轮删除任务
func (tw *TimeWheel) RemoveTask(taskID string) bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	slot, ok := tw.index[taskID]
	if !ok {
		return false
	}
	delete(tw.index, taskID)
	return tw.slots[slot].RemoveTask(taskID)
}

// Tick 推进一格，返回到期任务
func (tw *TimeWheel) Tick() []*Task {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	tw.current = (tw.current + 1) % len(tw.slots)
	due := tw.slots[tw.current].Expire()
	for _, task := range due {
		delete(tw.index, task.ID)
	}
	return due
}

// CurrentSlot 当前槽位索引
func (tw *TimeWheel) CurrentSlot() int {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.current
}

// TotalTaskCount 所有槽位的任务总数
func (tw *TimeWheel) TotalTaskCount() int {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return len(tw.index)
}
