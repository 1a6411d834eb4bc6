package room

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.im.mahjong/internal/game/mahjong/riichi"
)

type fakeMirror struct {
	mu      sync.Mutex
	players map[string]string
	open    map[string]bool
	dropped []string
	invites map[string]time.Duration
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{players: map[string]string{}, open: map[string]bool{}, invites: map[string]time.Duration{}}
}

func (f *fakeMirror) BindPlayer(_ context.Context, playerID, roomID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.players[playerID] = roomID
	return nil
}

func (f *fakeMirror) UnbindPlayer(_ context.Context, playerID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.players, playerID)
	return nil
}

func (f *fakeMirror) SetOpen(_ context.Context, roomID string, open bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open[roomID] = open
	return nil
}

func (f *fakeMirror) DropRoom(_ context.Context, roomID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropped = append(f.dropped, roomID)
	delete(f.open, roomID)
	return nil
}

func (f *fakeMirror) SaveInvite(_ context.Context, inv Invite, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invites[inv.To] = ttl
	return nil
}

func (f *fakeMirror) ClearInvite(_ context.Context, playerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.invites, playerID)
	return nil
}

func TestManagerCreateAndIndex(t *testing.T) {
	ctx := context.Background()
	mirror := newFakeMirror()
	m := NewManager(mirror, 0, 0)

	r, err := m.Create(ctx, human("alice"), Options{Mode: riichi.ModeHanchan})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, r.ID(), mirror.players["alice"])
	assert.True(t, mirror.open[r.ID()])

	got, ok := m.RoomOf("alice")
	require.True(t, ok)
	assert.Same(t, r, got)

	_, err = m.Create(ctx, human("alice"), Options{})
	assert.ErrorIs(t, err, ErrAlreadyInRoom)
	assert.Equal(t, 1, m.Count())

	require.NoError(t, m.Reserve(ctx, "bob", r.ID()))
	assert.ErrorIs(t, m.Reserve(ctx, "bob", "other"), ErrAlreadyInRoom)
	m.Release(ctx, "bob", "other")
	_, ok = m.RoomOf("bob")
	assert.True(t, ok, "房间不符时不应释放")
	m.Release(ctx, "bob", r.ID())
	_, ok = m.RoomOf("bob")
	assert.False(t, ok)
}

func TestManagerListAndRemove(t *testing.T) {
	ctx := context.Background()
	mirror := newFakeMirror()
	m := NewManager(mirror, 0, 0)

	first, err := m.Create(ctx, human("alice"), Options{})
	require.NoError(t, err)
	second, err := m.Create(ctx, human("bob"), Options{})
	require.NoError(t, err)

	second.Lock()
	for range 3 {
		_, err := second.AddBot("bob")
		require.NoError(t, err)
	}
	m.SetOpen(ctx, second)
	second.Unlock()
	assert.False(t, mirror.open[second.ID()])

	views := m.List()
	require.Len(t, views, 1, "满员房间不在大厅列表中")
	assert.Equal(t, first.ID(), views[0].ID)

	first.Lock()
	m.Remove(ctx, first)
	first.Unlock()

	_, ok := m.Get(first.ID())
	assert.False(t, ok)
	_, ok = m.RoomOf("alice")
	assert.False(t, ok)
	assert.NotContains(t, mirror.players, "alice")
	assert.Equal(t, []string{first.ID()}, mirror.dropped)
}

func TestManagerEvictInactive(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil, time.Minute, time.Hour)

	var evicted []string
	m.SetEvictHandler(func(_ context.Context, r *Room) {
		evicted = append(evicted, r.ID())
	})

	r, err := m.Create(ctx, human("alice"), Options{})
	require.NoError(t, err)

	assert.Zero(t, m.EvictInactive(ctx, time.Now()))
	assert.Equal(t, 1, m.EvictInactive(ctx, time.Now().Add(2*time.Minute)))
	assert.Equal(t, []string{r.ID()}, evicted)
	assert.Zero(t, m.Count())

	_, ok := m.RoomOf("alice")
	assert.False(t, ok)

	m.Start()
	require.NoError(t, m.Shutdown(ctx))
	require.NoError(t, m.Shutdown(ctx))
}

func TestManagerInvites(t *testing.T) {
	ctx := context.Background()
	mirror := newFakeMirror()
	m := NewManager(mirror, time.Hour, time.Hour)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	r, err := m.Create(ctx, human("alice"), Options{})
	require.NoError(t, err)

	m.Invite(ctx, Invite{RoomID: r.ID(), From: "alice", To: "bob", ExpiresAt: now.Add(5 * time.Minute)}, now)
	assert.Equal(t, 5*time.Minute, mirror.invites["bob"])

	inv, ok := m.PendingInvite("bob", now.Add(4*time.Minute))
	require.True(t, ok)
	assert.Equal(t, r.ID(), inv.RoomID)
	assert.Equal(t, "alice", inv.From)

	_, ok = m.PendingInvite("bob", now.Add(5*time.Minute))
	assert.False(t, ok, "到期的邀请失效")
	_, ok = m.PendingInvite("bob", now)
	assert.False(t, ok, "过期邀请已被删除")

	t.Run("入座后邀请作废", func(t *testing.T) {
		m.Invite(ctx, Invite{RoomID: r.ID(), From: "alice", To: "carol", ExpiresAt: now.Add(time.Minute)}, now)
		require.NoError(t, m.Reserve(ctx, "carol", r.ID()))
		_, ok := m.PendingInvite("carol", now)
		assert.False(t, ok)
		assert.NotContains(t, mirror.invites, "carol")
	})

	t.Run("淘汰循环清理过期邀请", func(t *testing.T) {
		m.Invite(ctx, Invite{RoomID: r.ID(), From: "alice", To: "dave", ExpiresAt: now.Add(time.Minute)}, now)
		m.EvictInactive(ctx, now.Add(2*time.Minute))
		m.inviteMu.Lock()
		defer m.inviteMu.Unlock()
		assert.NotContains(t, m.invites, "dave")
	})
}
