package game

import (
	"context"
	"errors"
	"time"

	"sudooom.im.mahjong/internal/game/mahjong/bot"
	"sudooom.im.mahjong/internal/game/mahjong/core"
	"sudooom.im.mahjong/internal/game/mahjong/riichi"
	"sudooom.im.mahjong/internal/room"
	"sudooom.im.mahjong/internal/task"
)

// 延迟任务类型
const (
	taskBot       = "bot"
	taskRiichi    = "riichi"
	taskNextRound = "next_round"
)

// advance 推进不需要真人决定的流程，调用方需持有房间锁
//
// 机器人的操作、立直后的摸切、下一局的开始都交给延迟任务；
// 真人轮到摸牌时按配置直接摸牌。真人没有超时，房间会一直等待。
func (s *Service) advance(ctx context.Context, r *room.Room) {
	for {
		tb := r.Table()
		if tb == nil {
			return
		}
		switch tb.Phase() {
		case riichi.PhasePlaying:
		case riichi.PhaseFinished:
			s.schedule(r, taskNextRound, s.cfg.NextRoundDelay)
			return
		default:
			return
		}

		if tb.WaitingForAction() {
			for _, seat := range tb.PendingResponders() {
				if r.IsBot(seat) {
					s.schedule(r, taskBot, s.cfg.BotDelay)
					break
				}
			}
			return
		}

		seat := tb.Current()
		if r.IsBot(seat) {
			s.schedule(r, taskBot, s.cfg.BotDelay)
			return
		}
		if tb.NeedsDraw() {
			if !s.cfg.AutoDraw {
				return
			}
			err := s.apply(ctx, r, func(tb *riichi.Table) ([]riichi.Event, error) {
				return tb.Draw(seat)
			})
			if !mutated(err) {
				s.logger.Warn("自动摸牌失败", "roomId", r.ID(), "seat", seat, "error", err)
				return
			}
			continue
		}

		if v, err := tb.HandView(seat); err == nil && v.Riichi && !v.Actions.Tsumo {
			s.schedule(r, taskRiichi, s.cfg.RiichiDelay)
		}
		return
	}
}

// schedule 按房间当前版本安排延迟任务
func (s *Service) schedule(r *room.Room, kind string, delay time.Duration) {
	if s.scheduler == nil {
		return
	}
	if _, err := s.scheduler.Schedule(kind, r.ID(), r.Generation(), delay, s.runTask(kind)); err != nil {
		s.logger.Warn("安排延迟任务失败", "roomId", r.ID(), "kind", kind, "error", err)
	}
}

// runTask 延迟任务入口，房间已删除或版本不符时什么也不做
func (s *Service) runTask(kind string) task.Func {
	return func(ctx context.Context, roomID string, version int64) error {
		r, err := s.lockRoom(roomID)
		if err != nil {
			return nil
		}
		defer r.Unlock()

		if r.Generation() != version {
			return nil
		}
		switch kind {
		case taskBot:
			s.botStep(ctx, r)
		case taskRiichi:
			s.riichiStep(ctx, r)
		case taskNextRound:
			s.nextRoundStep(ctx, r)
		}
		s.advance(ctx, r)
		return nil
	}
}

// botStep 让所有该行动的机器人各走一步
func (s *Service) botStep(ctx context.Context, r *room.Room) {
	tb := r.Table()
	if tb == nil || tb.Phase() != riichi.PhasePlaying {
		return
	}

	if tb.WaitingForAction() {
		number := tb.ClaimNumber()
		for _, seat := range tb.PendingResponders() {
			if !tb.WaitingForAction() || tb.ClaimNumber() != number {
				return
			}
			if r.IsBot(seat) {
				s.botClaim(ctx, r, seat)
			}
		}
		return
	}

	seat := tb.Current()
	if !r.IsBot(seat) {
		return
	}
	if tb.NeedsDraw() {
		err := s.apply(ctx, r, func(tb *riichi.Table) ([]riichi.Event, error) {
			return tb.Draw(seat)
		})
		if err != nil {
			s.logger.Warn("机器人摸牌失败", "roomId", r.ID(), "seat", seat, "error", err)
			return
		}
		if tb.Phase() != riichi.PhasePlaying {
			return
		}
	}
	s.botTurn(ctx, r, seat)
}

func (s *Service) botClaim(ctx context.Context, r *room.Room, seat int) {
	v, err := r.Table().HandView(seat)
	if err != nil {
		return
	}
	kind := s.policy.ChooseClaim(v)
	err = s.apply(ctx, r, func(tb *riichi.Table) ([]riichi.Event, error) {
		return tb.Call(seat, kind, core.Tile{}, nil)
	})
	if mutated(err) || kind == core.ClaimPass {
		return
	}
	s.logger.Debug("机器人响应被拒绝，改为过", "roomId", r.ID(), "seat", seat, "claim", kind, "error", err)
	if err := s.apply(ctx, r, func(tb *riichi.Table) ([]riichi.Event, error) {
		return tb.Pass(seat)
	}); err != nil {
		s.logger.Warn("机器人过牌失败", "roomId", r.ID(), "seat", seat, "error", err)
	}
}

// botTurn 机器人摸牌后的决策，自摸、立直或暗杠失败时退回打牌
func (s *Service) botTurn(ctx context.Context, r *room.Room, seat int) {
	tb := r.Table()
	v, err := tb.HandView(seat)
	if err != nil {
		return
	}

	var fn func(*riichi.Table) ([]riichi.Event, error)
	switch d := s.policy.ChooseSelfAction(v); d.Action {
	case bot.ActionTsumo:
		fn = func(tb *riichi.Table) ([]riichi.Event, error) { return tb.DeclareWin(seat, core.WinTsumo) }
	case bot.ActionRiichi:
		fn = func(tb *riichi.Table) ([]riichi.Event, error) { return tb.DeclareRiichi(seat, d.Tile) }
	case bot.ActionConcealedKong:
		fn = func(tb *riichi.Table) ([]riichi.Event, error) { return tb.ConcealedKong(seat, d.Tile) }
	}
	if fn != nil {
		if err := s.apply(ctx, r, fn); mutated(err) {
			return
		}
	}

	err = s.apply(ctx, r, func(tb *riichi.Table) ([]riichi.Event, error) {
		return tb.Discard(seat, s.policy.ChooseDiscard(v), false)
	})
	if isKuikae(err) {
		err = s.apply(ctx, r, func(tb *riichi.Table) ([]riichi.Event, error) {
			return tb.Discard(seat, s.policy.FallbackDiscard(v), true)
		})
	}
	if !mutated(err) {
		s.logger.Warn("机器人打牌失败", "roomId", r.ID(), "seat", seat, "error", err)
	}
}

// riichiStep 立直的真人在等待时间内没有操作，替其摸切
func (s *Service) riichiStep(ctx context.Context, r *room.Room) {
	tb := r.Table()
	if tb == nil || tb.Phase() != riichi.PhasePlaying || tb.WaitingForAction() || tb.NeedsDraw() {
		return
	}
	seat := tb.Current()
	if r.IsBot(seat) {
		return
	}
	v, err := tb.HandView(seat)
	if err != nil || !v.Riichi || v.Actions.Tsumo || len(v.Hand) == 0 {
		return
	}
	tile := v.Hand[len(v.Hand)-1]
	if err := s.apply(ctx, r, func(tb *riichi.Table) ([]riichi.Event, error) {
		return tb.Discard(seat, tile, false)
	}); !mutated(err) {
		s.logger.Warn("立直自动摸切失败", "roomId", r.ID(), "seat", seat, "error", err)
	}
}

func (s *Service) nextRoundStep(ctx context.Context, r *room.Room) {
	tb := r.Table()
	if tb == nil || tb.Phase() != riichi.PhaseFinished {
		return
	}
	if err := s.apply(ctx, r, (*riichi.Table).StartNextRound); !mutated(err) {
		s.logger.Warn("开始下一局失败", "roomId", r.ID(), "error", err)
	}
}

func isKuikae(err error) bool {
	return errors.Is(err, riichi.ErrKuikae)
}
