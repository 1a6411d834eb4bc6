package game

import "errors"

// 游戏服务相关错误定义

var (
	// ErrInvalidGameMode 无效的对局长度
	ErrInvalidGameMode = errors.New("invalid game mode")

	// ErrInvalidMatchType 无效的段位场
	ErrInvalidMatchType = errors.New("invalid match type")

	// ErrInvalidTile 无法解析的牌
	ErrInvalidTile = errors.New("invalid tile")

	// ErrInvalidAction 无效的游戏操作
	ErrInvalidAction = errors.New("invalid action")

	// ErrPlayerNotInRoom 玩家不在任何房间
	ErrPlayerNotInRoom = errors.New("player not in room")

	// ErrRoundNotFinished 本局尚未结束
	ErrRoundNotFinished = errors.New("round not finished")
)
