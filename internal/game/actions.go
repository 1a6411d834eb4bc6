package game

import (
	"context"
	"errors"

	"sudooom.im.mahjong/internal/game/mahjong/core"
	"sudooom.im.mahjong/internal/game/mahjong/riichi"
	"sudooom.im.mahjong/internal/room"
)

// seatAction 以玩家座位执行的牌桌操作
type seatAction func(tb *riichi.Table, seat int) ([]riichi.Event, error)

// Draw 摸牌
func (s *Service) Draw(ctx context.Context, playerID string) error {
	return s.act(ctx, playerID, func(tb *riichi.Table, seat int) ([]riichi.Event, error) {
		return tb.Draw(seat)
	})
}

// Discard 打牌
func (s *Service) Discard(ctx context.Context, playerID string, tile core.Tile) error {
	return s.act(ctx, playerID, func(tb *riichi.Table, seat int) ([]riichi.Event, error) {
		return tb.Discard(seat, tile, false)
	})
}

// Call 响应别人打出的牌，tile 为零值时取响应窗口中的牌
func (s *Service) Call(ctx context.Context, playerID string, kind core.ClaimKind, tile core.Tile, composition []core.Tile) error {
	return s.act(ctx, playerID, func(tb *riichi.Table, seat int) ([]riichi.Event, error) {
		return tb.Call(seat, kind, tile, composition)
	})
}

// Pass 放弃响应
func (s *Service) Pass(ctx context.Context, playerID string) error {
	return s.act(ctx, playerID, func(tb *riichi.Table, seat int) ([]riichi.Event, error) {
		return tb.Pass(seat)
	})
}

// DeclareRiichi 立直并打出 tile
func (s *Service) DeclareRiichi(ctx context.Context, playerID string, tile core.Tile) error {
	return s.act(ctx, playerID, func(tb *riichi.Table, seat int) ([]riichi.Event, error) {
		return tb.DeclareRiichi(seat, tile)
	})
}

// DeclareWin 和牌（自摸或荣和）
func (s *Service) DeclareWin(ctx context.Context, playerID string, kind core.WinKind) error {
	return s.act(ctx, playerID, func(tb *riichi.Table, seat int) ([]riichi.Event, error) {
		return tb.DeclareWin(seat, kind)
	})
}

// ConcealedKong 暗杠
func (s *Service) ConcealedKong(ctx context.Context, playerID string, tile core.Tile) error {
	return s.act(ctx, playerID, func(tb *riichi.Table, seat int) ([]riichi.Event, error) {
		return tb.ConcealedKong(seat, tile)
	})
}

// AddedKong 加杠
func (s *Service) AddedKong(ctx context.Context, playerID string, tile core.Tile) error {
	return s.act(ctx, playerID, func(tb *riichi.Table, seat int) ([]riichi.Event, error) {
		return tb.AddedKong(seat, tile)
	})
}

// DeclareNineTerminals 九种九牌流局
func (s *Service) DeclareNineTerminals(ctx context.Context, playerID string) error {
	return s.act(ctx, playerID, func(tb *riichi.Table, seat int) ([]riichi.Event, error) {
		return tb.DeclareNineTerminals(seat)
	})
}

// act 锁定玩家所在房间，以其座位执行操作并推进后续流程
func (s *Service) act(ctx context.Context, playerID string, fn seatAction) error {
	r, err := s.lockPlayerRoom(playerID)
	if err != nil {
		return err
	}
	defer r.Unlock()

	if r.Table() == nil {
		return room.ErrGameNotStarted
	}
	seat, _ := r.SeatOf(playerID)

	err = s.apply(ctx, r, func(tb *riichi.Table) ([]riichi.Event, error) {
		return fn(tb, seat)
	})
	if mutated(err) {
		s.advance(ctx, r)
	}
	return err
}

// apply 执行一次牌桌变更，调用方需持有房间锁
//
// 操作被拒绝时牌桌没有变化，直接返回错误；不变量被破坏时本局已被中止，
// 照常推送事件并返回 ErrInvariantBroken。
func (s *Service) apply(ctx context.Context, r *room.Room, fn func(*riichi.Table) ([]riichi.Event, error)) error {
	tb := r.Table()
	events, err := fn(tb)
	if !mutated(err) {
		return err
	}

	r.Touch()
	if err != nil {
		var ge *riichi.GameError
		if errors.As(err, &ge) {
			s.logger.Error("牌桌状态不一致，本局已中止",
				"roomId", r.ID(),
				"error", err,
				"dump", ge.Context["dump"],
			)
		}
	}
	s.dispatch(ctx, r, events)

	if tb.Phase() == riichi.PhaseEnded && !r.Settled() {
		s.settle(ctx, r)
	}
	return err
}

// mutated 操作是否改变了牌桌
func mutated(err error) bool {
	return err == nil || errors.Is(err, riichi.ErrInvariantBroken)
}

// dispatch 推送牌桌事件：公开事件发给房间内所有真人，私有事件只发给对应座位
func (s *Service) dispatch(ctx context.Context, r *room.Room, events []riichi.Event) {
	humans := r.HumanIDs()
	for _, ev := range events {
		if ev.Public() {
			s.notifyRoom(ctx, r.ID(), humans, string(ev.Kind), ev)
			continue
		}
		if ev.To < 0 || ev.To >= riichi.SeatCount {
			continue
		}
		if p := r.Seat(ev.To); p != nil && !p.Bot {
			s.notifyPlayer(ctx, r.ID(), p.ID, string(ev.Kind), ev)
		}
	}
	s.pushHands(ctx, r)
}

// pushHands 把最新的私有视图推给每个真人
func (s *Service) pushHands(ctx context.Context, r *room.Room) {
	tb := r.Table()
	if tb == nil || s.notifier == nil {
		return
	}
	for seat := range riichi.SeatCount {
		p := r.Seat(seat)
		if p == nil || p.Bot {
			continue
		}
		v, err := tb.HandView(seat)
		if err != nil {
			continue
		}
		s.notifyPlayer(ctx, r.ID(), p.ID, EventHandUpdated, v)
	}
}
