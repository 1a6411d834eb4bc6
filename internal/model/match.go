package model

import (
	"time"

	"sudooom.im.mahjong/internal/game/mahjong/riichi"
)

// MatchPlayer 对局中的一个座位
type MatchPlayer struct {
	PlayerId string  `json:"playerId"`
	Seat     int     `json:"seat"`
	Bot      bool    `json:"bot"`
	Score    int     `json:"score"`
	Points   float64 `json:"points"`
	Place    int     `json:"place"`
}

// MatchRecord 一场结束的对局
type MatchRecord struct {
	Id        int64         `json:"id"`
	RoomId    string        `json:"roomId"`
	Mode      string        `json:"mode"`
	MatchType string        `json:"matchType"`
	Players   []MatchPlayer `json:"players"`
	EndedAt   time.Time     `json:"endedAt"`
}

// NewMatchRecord 按终局排名生成对局记录，ids 为按座位排列的玩家
func NewMatchRecord(roomId, mode, matchType string, ids []string, bots []bool, standings []riichi.Standing) *MatchRecord {
	rec := &MatchRecord{RoomId: roomId, Mode: mode, MatchType: matchType, EndedAt: time.Now()}
	for _, s := range standings {
		rec.Players = append(rec.Players, MatchPlayer{
			PlayerId: ids[s.Seat],
			Seat:     s.Seat,
			Bot:      bots[s.Seat],
			Score:    s.Score,
			Points:   s.Points,
			Place:    s.Place,
		})
	}
	return rec
}
