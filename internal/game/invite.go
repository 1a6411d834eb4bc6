package game

import (
	"context"
	"time"

	"sudooom.im.mahjong/internal/room"
)

// InvitePlayer 邀请不在任何房间的玩家加入自己所在的房间，被邀请者收到 INVITE 事件
func (s *Service) InvitePlayer(ctx context.Context, playerID, target string) (room.Invite, error) {
	if target == "" {
		return room.Invite{}, ErrInvalidAction
	}
	if target == playerID {
		return room.Invite{}, room.ErrCannotInviteSelf
	}
	r, err := s.lockPlayerRoom(playerID)
	if err != nil {
		return room.Invite{}, err
	}
	defer r.Unlock()

	switch {
	case r.Started():
		return room.Invite{}, room.ErrGameStarted
	case r.Full():
		return room.Invite{}, room.ErrRoomFull
	}
	if _, ok := s.rooms.RoomOf(target); ok {
		return room.Invite{}, room.ErrTargetInRoom
	}

	ttl := s.cfg.InviteTTL
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	now := s.now()
	inv := room.Invite{RoomID: r.ID(), From: playerID, To: target, ExpiresAt: now.Add(ttl)}
	s.rooms.Invite(ctx, inv, now)
	s.notifyPlayer(ctx, r.ID(), target, EventInvite, inv)

	s.logger.Info("发送房间邀请", "roomId", r.ID(), "from", playerID, "to", target)
	return inv, nil
}

// PendingInvite 玩家收到的有效邀请
func (s *Service) PendingInvite(ctx context.Context, playerID string) (room.Invite, error) {
	inv, ok := s.rooms.PendingInvite(playerID, s.now())
	if !ok {
		return room.Invite{}, room.ErrInviteNotFound
	}
	return inv, nil
}

// AcceptInvite 接受邀请并加入对应房间，邀请无论加入成功与否都被消耗
func (s *Service) AcceptInvite(ctx context.Context, playerID string) (room.View, error) {
	inv, err := s.PendingInvite(ctx, playerID)
	if err != nil {
		return room.View{}, err
	}
	s.rooms.ClearInvite(ctx, playerID)
	return s.JoinRoom(ctx, playerID, inv.RoomID)
}

func (s *Service) now() time.Time {
	if s.cfg.Now != nil {
		return s.cfg.Now()
	}
	return time.Now()
}
