package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func noop(ctx context.Context, target string, version int64) error { return nil }

// waitFor 轮询直到条件成立或超时
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestNewTask(t *testing.T) {
	task := NewTask("room-1", 7, 800*time.Millisecond, noop).WithKind("bot")

	if task.ID == "" {
		t.Error("期望生成任务ID")
	}
	if other := NewTask("room-1", 7, time.Second, noop); other.ID == task.ID {
		t.Error("任务ID应唯一")
	}
	if task.Target != "room-1" || task.Version != 7 || task.Kind != "bot" {
		t.Errorf("任务字段错误: %+v", task)
	}
}

func TestSlotExpire(t *testing.T) {
	slot := NewSlot()
	now := NewTask("a", 1, 0, nil)
	later := NewTask("b", 1, 0, nil)
	later.rounds = 1
	slot.AddTask(now)
	slot.AddTask(later)

	if due := slot.Expire(); len(due) != 1 || due[0].ID != now.ID {
		t.Fatalf("第一圈只应取出 a, 实际 = %v", due)
	}
	if slot.Count() != 1 {
		t.Errorf("期望剩余1个任务, 实际 = %d", slot.Count())
	}
	if due := slot.Expire(); len(due) != 1 || due[0].ID != later.ID {
		t.Fatalf("第二圈应取出 b, 实际 = %v", due)
	}
	if due := slot.Expire(); due != nil {
		t.Errorf("期望 nil, 实际 = %v", due)
	}

	slot.AddTask(now)
	if !slot.RemoveTask(now.ID) || slot.RemoveTask(now.ID) {
		t.Error("删除结果错误")
	}
}

func TestTimeWheelTicks(t *testing.T) {
	wheel := NewTimeWheel(4, 100*time.Millisecond)

	cases := []struct {
		delay time.Duration
		tick  int // 第几次推进时到期
	}{
		{0, 1},
		{100 * time.Millisecond, 1},
		{150 * time.Millisecond, 2},
		{400 * time.Millisecond, 4},
		{900 * time.Millisecond, 9},
	}
	ids := make(map[string]int)
	for _, c := range cases {
		task := NewTask("room", 1, c.delay, nil)
		wheel.AddTask(task)
		ids[task.ID] = c.tick
	}
	if wheel.TotalTaskCount() != len(cases) {
		t.Fatalf("期望总任务数 = %d, 实际 = %d", len(cases), wheel.TotalTaskCount())
	}

	for tick := 1; tick <= 10; tick++ {
		for _, task := range wheel.Tick() {
			if want := ids[task.ID]; want != tick {
				t.Errorf("延迟 %v 期望第 %d 格到期, 实际第 %d 格", task.Delay, want, tick)
			}
			delete(ids, task.ID)
		}
	}
	if len(ids) != 0 {
		t.Errorf("仍有 %d 个任务未到期", len(ids))
	}
	if wheel.TotalTaskCount() != 0 {
		t.Errorf("索引未清理, 实际 = %d", wheel.TotalTaskCount())
	}
}

func TestTimeWheelRemove(t *testing.T) {
	wheel := NewTimeWheel(0, 0)
	if len(wheel.slots) != DefaultSlotCount || wheel.Interval() != DefaultInterval {
		t.Fatal("应使用默认槽位数和间隔")
	}

	task := NewTask("room", 1, time.Second, nil)
	wheel.AddTask(task)
	if !wheel.RemoveTask(task.ID) {
		t.Fatal("期望删除成功")
	}
	if wheel.RemoveTask(task.ID) {
		t.Error("重复删除应失败")
	}
	for range 20 {
		if due := wheel.Tick(); len(due) != 0 {
			t.Fatal("已删除的任务不应到期")
		}
	}
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s := NewScheduler(Config{Slots: 16, Interval: 10 * time.Millisecond, Workers: 4})
	if err := s.Start(); err != nil {
		t.Fatalf("启动调度器失败: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewScheduler(Config{})
	if _, err := s.Schedule("bot", "room", 1, time.Millisecond, noop); !errors.Is(err, ErrNotRunning) {
		t.Errorf("未启动时添加任务应失败, 实际 = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("启动调度器失败: %v", err)
	}
	if err := s.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Error("期望重复启动失败")
	}
	s.Stop()
	s.Stop()
	if s.IsRunning() {
		t.Error("期望调度器已停止")
	}
}

func TestSchedulerExecutesWithVersion(t *testing.T) {
	s := newTestScheduler(t)

	var mu sync.Mutex
	got := make(map[string]int64)
	fn := func(ctx context.Context, target string, version int64) error {
		mu.Lock()
		got[target] = version
		mu.Unlock()
		return nil
	}

	start := time.Now()
	if _, err := s.Schedule("bot", "room-a", 3, 30*time.Millisecond, fn); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Schedule("riichi", "room-b", 9, 50*time.Millisecond, fn); err != nil {
		t.Fatal(err)
	}

	done := waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	})
	if !done {
		t.Fatalf("任务未全部执行: %v", got)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("任务过早执行: %v", elapsed)
	}
	if got["room-a"] != 3 || got["room-b"] != 9 {
		t.Errorf("版本号传递错误: %v", got)
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := newTestScheduler(t)

	var executed atomic.Int32
	id, err := s.Schedule("bot", "room", 1, 100*time.Millisecond, func(ctx context.Context, target string, version int64) error {
		executed.Add(1)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Cancel(id); err != nil {
		t.Fatalf("取消失败: %v", err)
	}
	if err := s.Cancel(id); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("重复取消应返回 ErrTaskNotFound, 实际 = %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if executed.Load() != 0 {
		t.Error("已取消的任务不应执行")
	}
}

func TestSchedulerConcurrent(t *testing.T) {
	s := newTestScheduler(t)

	var executed atomic.Int32
	fn := func(ctx context.Context, target string, version int64) error {
		executed.Add(1)
		return nil
	}

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			delay := time.Duration(i%5) * 10 * time.Millisecond
			if _, err := s.Schedule("bot", "room", int64(i), delay, fn); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if !waitFor(t, 2*time.Second, func() bool { return executed.Load() == 100 }) {
		t.Errorf("期望执行100个任务, 实际 = %d", executed.Load())
	}
}

func TestWorkerPoolPanicRecover(t *testing.T) {
	s := newTestScheduler(t)

	var executed atomic.Int32
	_, _ = s.Schedule("bot", "room-1", 1, 10*time.Millisecond, func(ctx context.Context, target string, version int64) error {
		executed.Add(1)
		panic("测试 panic")
	})
	_, _ = s.Schedule("bot", "room-2", 1, 10*time.Millisecond, func(ctx context.Context, target string, version int64) error {
		executed.Add(1)
		return errors.New("stale")
	})

	if !waitFor(t, 2*time.Second, func() bool { return s.Stats().Panicked == 1 && s.Stats().Failed == 1 }) {
		t.Errorf("panic 与失败应被统计: %+v", s.Stats())
	}
	if executed.Load() != 2 {
		t.Errorf("期望执行2个任务, 实际 = %d", executed.Load())
	}
}

func BenchmarkTimeWheelTick(b *testing.B) {
	wheel := NewTimeWheel(DefaultSlotCount, DefaultInterval)
	for range 100 {
		wheel.AddTask(NewTask("room", 1, DefaultInterval, nil))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		wheel.Tick()
	}
}
