package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sudooom.im.mahjong/internal/game"
	"sudooom.im.mahjong/internal/game/mahjong/core"
	appErrors "sudooom.im.mahjong/pkg/errors"
)

// 指令类型
const (
	ActionCreateRoom    = "CREATE_ROOM"
	ActionJoinRoom      = "JOIN_ROOM"
	ActionLeaveRoom     = "LEAVE_ROOM"
	ActionDismissRoom   = "DISMISS_ROOM"
	ActionAddBot        = "ADD_BOT"
	ActionKick          = "KICK"
	ActionInvite        = "INVITE"
	ActionPendingInvite = "PENDING_INVITE"
	ActionAcceptInvite  = "ACCEPT_INVITE"
	ActionStartGame     = "START_GAME"
	ActionNextRound     = "NEXT_ROUND"
	ActionDraw          = "DRAW"
	ActionDiscard       = "DISCARD"
	ActionCall          = "CALL"
	ActionPass          = "PASS"
	ActionRiichi        = "RIICHI"
	ActionWin           = "WIN"
	ActionConcealedKong = "CONCEALED_KONG"
	ActionAddedKong     = "ADDED_KONG"
	ActionNineTerminals = "NINE_TERMINALS"
	ActionListRooms     = "LIST_ROOMS"
	ActionSnapshot      = "SNAPSHOT"
	ActionCurrentRoom   = "CURRENT_ROOM"
	ActionHand          = "HAND"
	ActionProfile       = "PROFILE"
)

// Command 玩家指令，NATS、HTTP、WebSocket 共用
type Command struct {
	ReqId       string   `json:"reqId"`
	PlayerId    string   `json:"playerId"`
	Action      string   `json:"action"`
	RoomId      string   `json:"roomId,omitempty"`
	Mode        string   `json:"mode,omitempty"`
	MatchType   string   `json:"matchType,omitempty"`
	Target      string   `json:"target,omitempty"`
	Tile        string   `json:"tile,omitempty"`
	Claim       string   `json:"claim,omitempty"`
	WinKind     string   `json:"winKind,omitempty"`
	Composition []string `json:"composition,omitempty"`
}

// Reply 指令结果
type Reply struct {
	ReqId   string `json:"reqId"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrMissingPlayer 指令缺少玩家
var ErrMissingPlayer = errors.New("missing player id")

type actionFunc func(ctx context.Context, cmd *Command) (any, error)

// CommandHandler 把指令分发给游戏服务
type CommandHandler struct {
	actions map[string]actionFunc
	svc     *game.Service
	logger  *slog.Logger
}

// NewCommandHandler 创建指令处理器
func NewCommandHandler(svc *game.Service) *CommandHandler {
	h := &CommandHandler{
		actions: make(map[string]actionFunc),
		svc:     svc,
		logger:  slog.Default().With("component", "handler.command"),
	}

	// 注册各种指令处理函数
	h.registerActions()

	return h
}

// registerActions 注册各种指令处理函数
func (h *CommandHandler) registerActions() {
	h.actions[ActionCreateRoom] = func(ctx context.Context, cmd *Command) (any, error) {
		return h.svc.CreateRoom(ctx, cmd.PlayerId, cmd.Mode, cmd.MatchType)
	}
	h.actions[ActionJoinRoom] = func(ctx context.Context, cmd *Command) (any, error) {
		return h.svc.JoinRoom(ctx, cmd.PlayerId, cmd.RoomId)
	}
	h.actions[ActionLeaveRoom] = func(ctx context.Context, cmd *Command) (any, error) {
		return nil, h.svc.LeaveRoom(ctx, cmd.PlayerId)
	}
	h.actions[ActionDismissRoom] = func(ctx context.Context, cmd *Command) (any, error) {
		return nil, h.svc.DismissRoom(ctx, cmd.PlayerId)
	}
	h.actions[ActionAddBot] = func(ctx context.Context, cmd *Command) (any, error) {
		return h.svc.AddBot(ctx, cmd.PlayerId)
	}
	h.actions[ActionKick] = func(ctx context.Context, cmd *Command) (any, error) {
		return nil, h.svc.KickPlayer(ctx, cmd.PlayerId, cmd.Target)
	}
	h.actions[ActionInvite] = func(ctx context.Context, cmd *Command) (any, error) {
		return h.svc.InvitePlayer(ctx, cmd.PlayerId, cmd.Target)
	}
	h.actions[ActionPendingInvite] = func(ctx context.Context, cmd *Command) (any, error) {
		return h.svc.PendingInvite(ctx, cmd.PlayerId)
	}
	h.actions[ActionAcceptInvite] = func(ctx context.Context, cmd *Command) (any, error) {
		return h.svc.AcceptInvite(ctx, cmd.PlayerId)
	}
	h.actions[ActionStartGame] = func(ctx context.Context, cmd *Command) (any, error) {
		return nil, h.svc.StartGame(ctx, cmd.PlayerId)
	}
	h.actions[ActionNextRound] = func(ctx context.Context, cmd *Command) (any, error) {
		return nil, h.svc.NextRound(ctx, cmd.PlayerId)
	}

	h.actions[ActionDraw] = func(ctx context.Context, cmd *Command) (any, error) {
		return nil, h.svc.Draw(ctx, cmd.PlayerId)
	}
	h.actions[ActionDiscard] = h.withTile(h.svc.Discard)
	h.actions[ActionRiichi] = h.withTile(h.svc.DeclareRiichi)
	h.actions[ActionConcealedKong] = h.withTile(h.svc.ConcealedKong)
	h.actions[ActionAddedKong] = h.withTile(h.svc.AddedKong)
	h.actions[ActionCall] = h.call
	h.actions[ActionPass] = func(ctx context.Context, cmd *Command) (any, error) {
		return nil, h.svc.Pass(ctx, cmd.PlayerId)
	}
	h.actions[ActionWin] = func(ctx context.Context, cmd *Command) (any, error) {
		kind, ok := core.ParseWinKind(cmd.WinKind)
		if !ok {
			return nil, fmt.Errorf("%w: win kind %q", game.ErrInvalidAction, cmd.WinKind)
		}
		return nil, h.svc.DeclareWin(ctx, cmd.PlayerId, kind)
	}
	h.actions[ActionNineTerminals] = func(ctx context.Context, cmd *Command) (any, error) {
		return nil, h.svc.DeclareNineTerminals(ctx, cmd.PlayerId)
	}

	h.actions[ActionListRooms] = func(ctx context.Context, cmd *Command) (any, error) {
		return h.svc.ListRooms(), nil
	}
	h.actions[ActionSnapshot] = func(ctx context.Context, cmd *Command) (any, error) {
		return h.svc.Snapshot(ctx, cmd.RoomId)
	}
	h.actions[ActionCurrentRoom] = func(ctx context.Context, cmd *Command) (any, error) {
		return h.svc.CurrentRoom(ctx, cmd.PlayerId)
	}
	h.actions[ActionHand] = func(ctx context.Context, cmd *Command) (any, error) {
		return h.svc.Hand(ctx, cmd.PlayerId)
	}
	h.actions[ActionProfile] = func(ctx context.Context, cmd *Command) (any, error) {
		return h.svc.Profile(ctx, cmd.PlayerId)
	}
}

// withTile 需要一张牌的操作
func (h *CommandHandler) withTile(fn func(context.Context, string, core.Tile) error) actionFunc {
	return func(ctx context.Context, cmd *Command) (any, error) {
		tile, err := parseTile(cmd.Tile)
		if err != nil {
			return nil, err
		}
		return nil, fn(ctx, cmd.PlayerId, tile)
	}
}

func (h *CommandHandler) call(ctx context.Context, cmd *Command) (any, error) {
	kind, ok := core.ParseClaimKind(cmd.Claim)
	if !ok {
		return nil, fmt.Errorf("%w: claim %q", game.ErrInvalidAction, cmd.Claim)
	}
	// 不指定时取响应窗口中的牌
	var tile core.Tile
	if cmd.Tile != "" {
		t, err := parseTile(cmd.Tile)
		if err != nil {
			return nil, err
		}
		tile = t
	}
	var composition []core.Tile
	for _, s := range cmd.Composition {
		t, err := parseTile(s)
		if err != nil {
			return nil, err
		}
		composition = append(composition, t)
	}
	return nil, h.svc.Call(ctx, cmd.PlayerId, kind, tile, composition)
}

func parseTile(s string) (core.Tile, error) {
	tile, err := core.ParseTile(s)
	if err != nil {
		return core.Tile{}, fmt.Errorf("%w: %v", game.ErrInvalidTile, err)
	}
	return tile, nil
}

// Handle 执行指令并生成回复
func (h *CommandHandler) Handle(ctx context.Context, cmd *Command) *Reply {
	reply := &Reply{ReqId: cmd.ReqId}

	data, err := h.dispatch(ctx, cmd)
	if err != nil {
		appErr := ToAppError(err)
		reply.Code = appErr.Code
		reply.Message = appErr.Message
		reply.Reason = appErr.Reason
		if appErr.Code >= appErrors.CodeServerError {
			h.logger.Error("指令执行失败", "action", cmd.Action, "playerId", cmd.PlayerId, "error", err)
		} else {
			h.logger.Debug("指令被拒绝", "action", cmd.Action, "playerId", cmd.PlayerId, "error", err)
		}
		return reply
	}

	reply.Code = appErrors.CodeSuccess
	reply.Message = "success"
	reply.Data = data
	return reply
}

func (h *CommandHandler) dispatch(ctx context.Context, cmd *Command) (any, error) {
	if cmd.PlayerId == "" && cmd.Action != ActionListRooms && cmd.Action != ActionSnapshot {
		return nil, ErrMissingPlayer
	}
	action, ok := h.actions[cmd.Action]
	if !ok {
		h.logger.Warn("未知指令", "action", cmd.Action, "playerId", cmd.PlayerId, "reqId", cmd.ReqId)
		return nil, appErrors.ErrUnknownAction
	}
	return action(ctx, cmd)
}
