package handler

import (
	"errors"

	"sudooom.im.mahjong/internal/game"
	"sudooom.im.mahjong/internal/game/mahjong/riichi"
	"sudooom.im.mahjong/internal/room"
	appErrors "sudooom.im.mahjong/pkg/errors"
)

var errorMapping = []struct {
	err    error
	appErr *appErrors.AppError
}{
	{room.ErrRoomNotFound, appErrors.ErrRoomNotFound},
	{room.ErrRoomFull, appErrors.ErrRoomFull},
	{room.ErrGameStarted, appErrors.ErrGameStarted},
	{room.ErrGameNotStarted, appErrors.ErrGameNotStarted},
	{room.ErrAlreadyInRoom, appErrors.ErrAlreadyInRoom},
	{room.ErrNotInRoom, appErrors.ErrNotInRoom},
	{room.ErrNotRoomHost, appErrors.ErrNotRoomHost},
	{room.ErrNotEnoughPlayers, appErrors.ErrNotEnoughPlayers},
	{room.ErrRankTooLow, appErrors.ErrRankTooLow},
	{room.ErrNoBotName, appErrors.ErrNoBotName},
	{room.ErrCannotKickSelf, appErrors.ErrCannotKickSelf},
	{room.ErrInviteNotFound, appErrors.ErrInviteNotFound},
	{room.ErrCannotInviteSelf, appErrors.ErrCannotInviteSelf},
	{room.ErrTargetInRoom, appErrors.ErrTargetInRoom},
	{game.ErrPlayerNotInRoom, appErrors.ErrNotInRoom},
	{game.ErrRoundNotFinished, appErrors.ErrRoundNotFinished},
	{game.ErrInvalidGameMode, appErrors.ErrInvalidGameMode},
	{game.ErrInvalidMatchType, appErrors.ErrInvalidMatchType},
	{game.ErrInvalidTile, appErrors.ErrInvalidParams},
	{game.ErrInvalidAction, appErrors.ErrInvalidParams},
	{ErrMissingPlayer, appErrors.ErrInvalidParams},
}

// ToAppError 把领域错误映射为带错误码的 AppError
func ToAppError(err error) *appErrors.AppError {
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return m.appErr.Wrap(err)
		}
	}

	var gameErr *riichi.GameError
	if errors.As(err, &gameErr) {
		if errors.Is(err, riichi.ErrInvariantBroken) {
			return appErrors.ErrInvariantBroken.WithReason(gameErr.Code, "").Wrap(err)
		}
		return appErrors.ErrIllegalAction.WithReason(gameErr.Code, gameErr.Message).Wrap(err)
	}
	return appErrors.ErrServerError.Wrap(err)
}
