package riichi

import (
	"errors"
	"fmt"
	"maps"
)

// GameError 游戏错误类型
type GameError struct {
	Code    string         // 错误代码
	Message string         // 错误消息
	Cause   error          // 原因错误
	Context map[string]any // 错误上下文
}

func (e *GameError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *GameError) Unwrap() error {
	return e.Cause
}

// Is 按错误代码比较
func (e *GameError) Is(target error) bool {
	var ge *GameError
	if errors.As(target, &ge) {
		return ge.Code == e.Code
	}
	return false
}

// NewGameError 创建游戏错误
func NewGameError(code, message string) *GameError {
	return &GameError{Code: code, Message: message}
}

// WithCause 返回附带原因的副本
func (e *GameError) WithCause(cause error) *GameError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithContext 返回附带上下文的副本
func (e *GameError) WithContext(key string, value any) *GameError {
	c := e.clone()
	c.Context[key] = value
	return c
}

func (e *GameError) clone() *GameError {
	c := *e
	c.Context = make(map[string]any, len(e.Context)+1)
	maps.Copy(c.Context, e.Context)
	return &c
}

// 牌桌相关错误
var (
	ErrInvalidPhase  = NewGameError("INVALID_PHASE", "当前阶段不允许此操作")
	ErrInvalidSeat   = NewGameError("INVALID_SEAT", "无效的座位")
	ErrNotYourTurn   = NewGameError("NOT_YOUR_TURN", "还没轮到你")
	ErrMatchOver     = NewGameError("MATCH_OVER", "对局已结束")
	ErrMustDraw      = NewGameError("MUST_DRAW", "请先摸牌")
	ErrAlreadyDrew   = NewGameError("ALREADY_DREW", "已经摸过牌")
	ErrTileNotInHand = NewGameError("TILE_NOT_IN_HAND", "手牌中没有指定的牌")
	ErrDeckEmpty     = NewGameError("DECK_EMPTY", "牌山已空")
	ErrNoReplacement = NewGameError("NO_REPLACEMENT", "岭上牌已摸完")
)

// 响应相关错误
var (
	ErrWaitingForClaims   = NewGameError("WAITING_FOR_CLAIMS", "等待其他玩家响应")
	ErrNoClaimWindow      = NewGameError("NO_CLAIM_WINDOW", "当前没有可响应的牌")
	ErrClaimNotAllowed    = NewGameError("CLAIM_NOT_ALLOWED", "不能进行此响应")
	ErrAlreadyResponded   = NewGameError("ALREADY_RESPONDED", "已经响应过")
	ErrInvalidComposition = NewGameError("INVALID_COMPOSITION", "无效的副露组合")
)

// 规则相关错误
var (
	ErrKuikae          = NewGameError("KUIKAE", "食替：不能打出刚吃的牌")
	ErrRiichiLocked    = NewGameError("RIICHI_LOCKED", "立直后只能打出摸到的牌")
	ErrCannotRiichi    = NewGameError("CANNOT_RIICHI", "不能立直")
	ErrCannotKong      = NewGameError("CANNOT_KONG", "不能杠")
	ErrCannotWin       = NewGameError("CANNOT_WIN", "不能和牌")
	ErrFuriten         = NewGameError("FURITEN", "振听中不能荣和")
	ErrNoYaku          = NewGameError("NO_YAKU", "无役")
	ErrCannotAbort     = NewGameError("CANNOT_ABORT", "不满足九种九牌条件")
	ErrInvariantBroken = NewGameError("INVARIANT_VIOLATION", "牌桌状态不一致")
)
