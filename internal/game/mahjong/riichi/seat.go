package riichi

import (
	"slices"

	"sudooom.im.mahjong/internal/game/mahjong/core"
)

// Pao 包牌责任
type Pao struct {
	Seat int    `json:"seat"`
	Yaku string `json:"yaku"`
}

// Seat 座位状态
type Seat struct {
	Hand     []core.Tile
	Discards []core.Tile
	Melds    []core.Meld
	Score    int

	Riichi       bool
	DoubleRiichi bool
	RiichiTurn   int
	Ippatsu      bool
	FirstTurn    bool // 第一巡未被打断

	Furiten       bool // 舍张振听
	TempFuriten   bool // 同巡振听
	RiichiFuriten bool // 立直后见逃

	kuikae []core.Kind
	pao    *Pao
}

func newSeat() *Seat {
	return &Seat{Score: StartingScore}
}

// reset 开局时清空除点数外的全部状态
func (s *Seat) reset() {
	*s = Seat{Score: s.Score, FirstTurn: true, RiichiTurn: -1}
}

// Concealed 门前清（只有暗杠）
func (s *Seat) Concealed() bool {
	for _, m := range s.Melds {
		if !m.Concealed {
			return false
		}
	}
	return true
}

// IsFuriten 是否处于任意振听
func (s *Seat) IsFuriten() bool {
	return s.Furiten || s.TempFuriten || s.RiichiFuriten
}

// refreshFuriten 自己打牌后重新计算舍张振听
func (s *Seat) refreshFuriten() {
	s.Furiten = false
	for _, w := range WaitingTiles(s.Hand) {
		if slices.ContainsFunc(s.Discards, func(t core.Tile) bool { return t.Kind() == w }) {
			s.Furiten = true
			return
		}
	}
}

func (s *Seat) kuikaeForbids(kind core.Kind) bool {
	return slices.Contains(s.kuikae, kind)
}

// tripletMelds 满足条件的刻子/杠子副露数
func (s *Seat) tripletMelds(match func(core.Tile) bool) int {
	n := 0
	for _, m := range s.Melds {
		if m.IsTriplet() && match(m.Base()) {
			n++
		}
	}
	return n
}

func (s *Seat) hasKong() bool {
	return slices.ContainsFunc(s.Melds, core.Meld.IsKong)
}

// tileCount 手牌与副露的总张数（杠按三张计）
func (s *Seat) tileCount() int {
	return len(s.Hand) + 3*len(s.Melds)
}
