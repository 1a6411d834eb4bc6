package room

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Mirror 玩家位置与房间成员的外部镜像（Redis），失败只记录日志
type Mirror interface {
	BindPlayer(ctx context.Context, playerID, roomID string) error
	UnbindPlayer(ctx context.Context, playerID, roomID string) error
	SetOpen(ctx context.Context, roomID string, open bool) error
	DropRoom(ctx context.Context, roomID string) error
	SaveInvite(ctx context.Context, inv Invite, ttl time.Duration) error
	ClearInvite(ctx context.Context, playerID string) error
}

// EvictFunc 房间被淘汰前的回调，调用时已持有房间锁
type EvictFunc func(ctx context.Context, r *Room)

// Manager 房间注册表
//
// 房间存放在 sync.Map 中；玩家到房间的索引由独立的读写锁保护，不与任何房间锁嵌套。
type Manager struct {
	rooms sync.Map // roomID -> *Room

	indexMu sync.RWMutex
	index   map[string]string // playerID -> roomID

	inviteMu sync.Mutex
	invites  map[string]Invite // 被邀请者 -> 邀请

	mirror Mirror

	evictTimeout  time.Duration
	evictInterval time.Duration
	onEvict       EvictFunc
	stopChan      chan struct{}
	stopOnce      sync.Once

	logger *slog.Logger
}

// NewManager 创建房间管理器，mirror 可以为 nil
func NewManager(mirror Mirror, evictTimeout, evictInterval time.Duration) *Manager {
	if evictInterval <= 0 {
		evictInterval = time.Minute
	}
	return &Manager{
		index:         make(map[string]string),
		invites:       make(map[string]Invite),
		mirror:        mirror,
		evictTimeout:  evictTimeout,
		evictInterval: evictInterval,
		stopChan:      make(chan struct{}),
		logger:        slog.Default().With("component", "room.manager"),
	}
}

// SetEvictHandler 设置淘汰回调（用于通知房间成员）
func (m *Manager) SetEvictHandler(fn EvictFunc) {
	m.onEvict = fn
}

// Create 创建房间并让 host 入座
func (m *Manager) Create(ctx context.Context, host Player, opts Options) (*Room, error) {
	r := NewRoom(uuid.NewString(), opts)
	if err := m.Reserve(ctx, host.ID, r.ID()); err != nil {
		return nil, err
	}
	if _, err := r.Join(host); err != nil {
		m.Release(ctx, host.ID, r.ID())
		return nil, err
	}
	m.rooms.Store(r.ID(), r)
	m.setOpen(ctx, r.ID(), true)

	m.logger.Info("房间已创建", "roomId", r.ID(), "host", host.ID, "mode", opts.Mode, "match", opts.Match)
	return r, nil
}

// Get 获取房间
func (m *Manager) Get(roomID string) (*Room, bool) {
	val, ok := m.rooms.Load(roomID)
	if !ok {
		return nil, false
	}
	return val.(*Room), true
}

// RoomOf 玩家所在房间
func (m *Manager) RoomOf(playerID string) (*Room, bool) {
	m.indexMu.RLock()
	roomID, ok := m.index[playerID]
	m.indexMu.RUnlock()
	if !ok {
		return nil, false
	}
	return m.Get(roomID)
}

// Reserve 登记玩家所在房间，玩家已在某个房间时返回 ErrAlreadyInRoom
func (m *Manager) Reserve(ctx context.Context, playerID, roomID string) error {
	m.indexMu.Lock()
	if _, ok := m.index[playerID]; ok {
		m.indexMu.Unlock()
		return ErrAlreadyInRoom
	}
	m.index[playerID] = roomID
	m.indexMu.Unlock()

	if m.mirror != nil {
		if err := m.mirror.BindPlayer(ctx, playerID, roomID); err != nil {
			m.logger.Warn("同步玩家位置失败", "playerId", playerID, "roomId", roomID, "error", err)
		}
	}
	// 已经入座，之前的邀请作废
	m.ClearInvite(ctx, playerID)
	return nil
}

// Release 取消玩家的房间登记，roomID 与登记不符时忽略
func (m *Manager) Release(ctx context.Context, playerID, roomID string) {
	m.indexMu.Lock()
	current, ok := m.index[playerID]
	if !ok || current != roomID {
		m.indexMu.Unlock()
		return
	}
	delete(m.index, playerID)
	m.indexMu.Unlock()

	if m.mirror != nil {
		if err := m.mirror.UnbindPlayer(ctx, playerID, roomID); err != nil {
			m.logger.Warn("清理玩家位置失败", "playerId", playerID, "roomId", roomID, "error", err)
		}
	}
}

// SetOpen 更新大厅中的可加入状态
func (m *Manager) SetOpen(ctx context.Context, r *Room) {
	m.setOpen(ctx, r.ID(), !r.Started() && !r.Full())
}

func (m *Manager) setOpen(ctx context.Context, roomID string, open bool) {
	if m.mirror == nil {
		return
	}
	if err := m.mirror.SetOpen(ctx, roomID, open); err != nil {
		m.logger.Warn("同步房间状态失败", "roomId", roomID, "error", err)
	}
}

// Remove 删除房间并清理其中真人玩家的登记，调用方需持有房间锁
func (m *Manager) Remove(ctx context.Context, r *Room) {
	m.rooms.Delete(r.ID())
	for _, id := range r.HumanIDs() {
		m.Release(ctx, id, r.ID())
	}
	if m.mirror != nil {
		if err := m.mirror.DropRoom(ctx, r.ID()); err != nil {
			m.logger.Warn("清理房间缓存失败", "roomId", r.ID(), "error", err)
		}
	}
	m.logger.Info("房间已删除", "roomId", r.ID())
}

// List 可加入的房间，按创建时间排序
func (m *Manager) List() []View {
	var views []View
	m.rooms.Range(func(_, value any) bool {
		r := value.(*Room)
		r.Lock()
		if !r.Started() && !r.Full() {
			views = append(views, r.Snapshot())
		}
		r.Unlock()
		return true
	})
	slices.SortFunc(views, func(a, b View) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return views
}

// Count 当前房间数
func (m *Manager) Count() int {
	count := 0
	m.rooms.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// Start 启动淘汰循环
func (m *Manager) Start() {
	if m.evictTimeout <= 0 {
		return
	}
	go m.evictLoop()
}

func (m *Manager) evictLoop() {
	ticker := time.NewTicker(m.evictInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.EvictInactive(context.Background(), time.Now())
		case <-m.stopChan:
			return
		}
	}
}

// EvictInactive 淘汰 now 之前超过 evictTimeout 未活跃的房间，返回淘汰数量
func (m *Manager) EvictInactive(ctx context.Context, now time.Time) int {
	m.pruneInvites(now)

	var stale []*Room
	m.rooms.Range(func(_, value any) bool {
		r := value.(*Room)
		r.Lock()
		if now.Sub(r.LastActive()) > m.evictTimeout {
			stale = append(stale, r)
		}
		r.Unlock()
		return true
	})

	evicted := 0
	for _, r := range stale {
		r.Lock()
		// 加锁后再确认一次
		if now.Sub(r.LastActive()) > m.evictTimeout {
			if m.onEvict != nil {
				m.onEvict(ctx, r)
			}
			m.Remove(ctx, r)
			evicted++
			m.logger.Info("淘汰不活跃房间", "roomId", r.ID(), "lastActive", r.LastActive())
		}
		r.Unlock()
	}
	return evicted
}

// Shutdown 停止淘汰循环
func (m *Manager) Shutdown(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.stopChan) })
	m.logger.Info("房间管理器已关闭", "rooms", m.Count())
	return nil
}
