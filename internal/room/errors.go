package room

import "errors"

// 房间错误定义

var (
	ErrRoomNotFound     = errors.New("ROOM_NOT_FOUND")
	ErrRoomFull         = errors.New("ROOM_FULL")
	ErrGameStarted      = errors.New("GAME_STARTED")
	ErrGameNotStarted   = errors.New("GAME_NOT_STARTED")
	ErrAlreadyInRoom    = errors.New("ALREADY_IN_ROOM")
	ErrNotInRoom        = errors.New("NOT_IN_ROOM")
	ErrNotRoomHost      = errors.New("NOT_ROOM_HOST")
	ErrNotEnoughPlayers = errors.New("NOT_ENOUGH_PLAYERS")
	ErrRankTooLow       = errors.New("RANK_TOO_LOW")
	ErrNoBotName        = errors.New("NO_BOT_NAME")
	ErrCannotKickSelf   = errors.New("CANNOT_KICK_SELF")
	ErrInviteNotFound   = errors.New("INVITE_NOT_FOUND")
	ErrCannotInviteSelf = errors.New("CANNOT_INVITE_SELF")
	ErrTargetInRoom     = errors.New("TARGET_IN_ROOM")
)
