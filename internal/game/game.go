package game

import (
	"context"
	"errors"
	"time"

	"sudooom.im.mahjong/internal/game/mahjong/core"
	"sudooom.im.mahjong/internal/model"
)

// 房间级事件，牌桌事件直接使用 riichi.EventKind
const (
	EventRoomUpdated   = "ROOM_UPDATED"
	EventRoomDismissed = "ROOM_DISMISSED"
	EventRoomEvicted   = "ROOM_EVICTED"
	EventHandUpdated   = "HAND_UPDATED"
	EventRankChanged   = "RANK_CHANGED"
	EventPlayerKicked  = "PLAYER_KICKED"
	EventInvite        = "INVITE"
)

// DefaultInviteTTL 邀请的默认有效期
const DefaultInviteTTL = 5 * time.Minute

// Notifier 把事件推送给玩家（NATS / WebSocket）
type Notifier interface {
	// NotifyRoom 推送给房间内的一组玩家，所有人收到相同数据
	NotifyRoom(ctx context.Context, roomID string, players []string, event string, data any) error
	// NotifyPlayer 只推送给一个玩家
	NotifyPlayer(ctx context.Context, roomID, playerID, event string, data any) error
}

// MultiNotifier 依次推送给多个通道
type MultiNotifier []Notifier

func (m MultiNotifier) NotifyRoom(ctx context.Context, roomID string, players []string, event string, data any) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyRoom(ctx, roomID, players, event, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiNotifier) NotifyPlayer(ctx context.Context, roomID, playerID, event string, data any) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyPlayer(ctx, roomID, playerID, event, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ProfileStore 玩家段位档案存储
type ProfileStore interface {
	// Load 不存在时返回初始档案
	Load(ctx context.Context, playerID string) (*model.Profile, error)
	Save(ctx context.Context, profile *model.Profile) error
}

// MatchRecorder 保存结束的对局
type MatchRecorder interface {
	SaveMatch(ctx context.Context, rec *model.MatchRecord) error
}

// Config 游戏服务配置
type Config struct {
	BotDelay    time.Duration // 机器人每步操作的延迟
	RiichiDelay time.Duration // 立直后自动摸切的延迟
	AutoDraw    bool          // 真人轮到时自动摸牌

	// NextRoundDelay 一局结束后自动开始下一局的延迟
	NextRoundDelay time.Duration

	InviteTTL time.Duration    // 邀请有效期，不大于 0 时使用 DefaultInviteTTL
	Now       func() time.Time // nil 时使用 time.Now

	// NewDeck 每个房间的牌山生成器，nil 时随机洗牌
	NewDeck func() core.DeckGenerator
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		BotDelay:    800 * time.Millisecond,
		RiichiDelay: 800 * time.Millisecond,
		AutoDraw:    true,

		NextRoundDelay: 8 * time.Second,
		InviteTTL:      DefaultInviteTTL,
	}
}
