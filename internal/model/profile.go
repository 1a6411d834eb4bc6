package model

import (
	"cmp"
	"slices"
	"time"

	"sudooom.im.mahjong/internal/game/mahjong/rank"
)

// Profile 玩家段位档案
type Profile struct {
	PlayerId   string     `json:"playerId"`
	Rank       rank.Rank  `json:"rank"`
	RankPoints int        `json:"rankPoints"`
	MaxRank    rank.Rank  `json:"maxRank"`
	Stats      rank.Stats `json:"stats"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// NewProfile 新玩家从初心一开始
func NewProfile(playerId string) *Profile {
	return &Profile{
		PlayerId: playerId,
		Rank:     rank.Novice1,
		MaxRank:  rank.Novice1,
	}
}

// ApplyRank 记录一场段位战的结果
func (p *Profile) ApplyRank(c rank.Change) {
	p.Rank = c.After
	p.RankPoints = c.PointsAfter
	if c.After.Index() > p.MaxRank.Index() {
		p.MaxRank = c.After
	}
}

// SortProfiles 按段位从高到低排序，同段位按段位点
func SortProfiles(profiles []*Profile) {
	slices.SortStableFunc(profiles, func(a, b *Profile) int {
		if c := cmp.Compare(b.Rank.Index(), a.Rank.Index()); c != 0 {
			return c
		}
		return cmp.Compare(b.RankPoints, a.RankPoints)
	})
}
