package room

import (
	"context"
	"time"
)

// Invite 房间邀请，每个玩家只保留最近收到的一条
type Invite struct {
	RoomID    string    `json:"roomId"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired 邀请在 now 时是否已过期
func (i Invite) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Invite 记录邀请，覆盖被邀请者之前的邀请
func (m *Manager) Invite(ctx context.Context, inv Invite, now time.Time) {
	m.inviteMu.Lock()
	m.invites[inv.To] = inv
	m.inviteMu.Unlock()

	if m.mirror != nil {
		if err := m.mirror.SaveInvite(ctx, inv, inv.ExpiresAt.Sub(now)); err != nil {
			m.logger.Warn("同步邀请失败", "playerId", inv.To, "roomId", inv.RoomID, "error", err)
		}
	}
}

// PendingInvite 玩家在 now 时仍有效的邀请
func (m *Manager) PendingInvite(playerID string, now time.Time) (Invite, bool) {
	m.inviteMu.Lock()
	defer m.inviteMu.Unlock()

	inv, ok := m.invites[playerID]
	if !ok {
		return Invite{}, false
	}
	if inv.Expired(now) {
		delete(m.invites, playerID)
		return Invite{}, false
	}
	return inv, true
}

// ClearInvite 删除玩家收到的邀请
func (m *Manager) ClearInvite(ctx context.Context, playerID string) {
	m.inviteMu.Lock()
	_, ok := m.invites[playerID]
	delete(m.invites, playerID)
	m.inviteMu.Unlock()

	if !ok || m.mirror == nil {
		return
	}
	if err := m.mirror.ClearInvite(ctx, playerID); err != nil {
		m.logger.Warn("清理邀请失败", "playerId", playerID, "error", err)
	}
}

// pruneInvites 清理过期邀请，Redis 中的副本由 TTL 自行过期
func (m *Manager) pruneInvites(now time.Time) {
	m.inviteMu.Lock()
	defer m.inviteMu.Unlock()
	for to, inv := range m.invites {
		if inv.Expired(now) {
			delete(m.invites, to)
		}
	}
}
