package game

import (
	"context"

	"sudooom.im.mahjong/internal/game/mahjong/rank"
	"sudooom.im.mahjong/internal/game/mahjong/riichi"
	"sudooom.im.mahjong/internal/model"
	"sudooom.im.mahjong/internal/room"
)

// settle 终局结算：更新真人的段位与战绩，保存对局记录，只执行一次
func (s *Service) settle(ctx context.Context, r *room.Room) {
	r.MarkSettled()
	standings := r.Table().Standings()

	ids := make([]string, riichi.SeatCount)
	bots := make([]bool, riichi.SeatCount)
	for seat := range riichi.SeatCount {
		if p := r.Seat(seat); p != nil {
			ids[seat], bots[seat] = p.ID, p.Bot
		}
	}

	for _, st := range standings {
		if bots[st.Seat] {
			continue
		}
		s.settlePlayer(ctx, r, ids[st.Seat], st.Place)
	}

	if s.matches != nil {
		rec := model.NewMatchRecord(r.ID(), r.Mode().String(), string(r.Match()), ids, bots, standings)
		if err := s.matches.SaveMatch(ctx, rec); err != nil {
			s.logger.Error("保存对局记录失败", "roomId", r.ID(), "error", err)
		}
	}
	s.logger.Info("对局结束", "roomId", r.ID(), "standings", standings)
}

func (s *Service) settlePlayer(ctx context.Context, r *room.Room, playerID string, place int) {
	if s.profiles == nil {
		return
	}
	profile, err := s.profiles.Load(ctx, playerID)
	if err != nil {
		s.logger.Error("读取段位档案失败", "playerId", playerID, "error", err)
		return
	}

	ranked := r.Ranked()
	var change *rank.Change
	if ranked {
		c := rank.Apply(profile.Rank, profile.RankPoints, place, r.Mode())
		profile.ApplyRank(c)
		change = &c
	}
	profile.Stats.Record(place, r.Mode(), ranked)

	if err := s.profiles.Save(ctx, profile); err != nil {
		s.logger.Error("保存段位档案失败", "playerId", playerID, "error", err)
		return
	}
	if change != nil {
		s.notifyPlayer(ctx, r.ID(), playerID, EventRankChanged, change)
		if change.Promoted || change.Demoted {
			s.logger.Info("段位变化", "playerId", playerID, "before", change.Before, "after", change.After)
		}
	}
}
