package riichi

import (
	"slices"

	"sudooom.im.mahjong/internal/game/mahjong/core"
)

// SeatView 座位的公开信息
type SeatView struct {
	Seat     int         `json:"seat"`
	Wind     core.Wind   `json:"wind"`
	IsTurn   bool        `json:"is_turn"`
	IsDealer bool        `json:"is_dealer"`
	Riichi   bool        `json:"riichi"`
	Score    int         `json:"score"`
	Discards []core.Tile `json:"discards"`
	Melds    []core.Meld `json:"melds"`
	HandSize int         `json:"hand_size"`
}

// TableView 发给所有座位的公开牌桌快照
type TableView struct {
	Phase            Phase        `json:"phase"`
	Mode             GameMode     `json:"mode"`
	CurrentTurn      int          `json:"current_turn"`
	DeckRemaining    int          `json:"deck_remaining"`
	RoundWind        core.Wind    `json:"round_wind"`
	RoundNumber      int          `json:"round_number"`
	Honba            int          `json:"honba"`
	RiichiSticks     int          `json:"riichi_sticks"`
	Dealer           int          `json:"dealer"`
	DoraIndicators   []core.Tile  `json:"dora_indicators"`
	Dora             []core.Tile  `json:"dora"`
	Seats            []SeatView   `json:"seats"`
	LastDiscard      *core.Tile   `json:"last_discard,omitempty"`
	LastDiscarder    int          `json:"last_discarder"`
	WaitingForAction bool         `json:"waiting_for_action"`
	ClaimNumber      int32        `json:"claim_number,omitempty"`
	Result           *RoundResult `json:"result,omitempty"`
	Standings        []Standing   `json:"standings,omitempty"`
}

// Snapshot 公开牌桌快照，不含任何暗牌
func (t *Table) Snapshot() TableView {
	v := TableView{
		Phase:            t.phase,
		Mode:             t.mode,
		CurrentTurn:      t.current,
		DeckRemaining:    len(t.deck),
		RoundWind:        t.roundWind,
		RoundNumber:      t.roundNumber,
		Honba:            t.honba,
		RiichiSticks:     t.riichiSticks,
		Dealer:           t.dealer,
		DoraIndicators:   core.CloneTiles(t.doraIndicators),
		Dora:             t.DoraTiles(),
		LastDiscarder:    t.lastDiscarder,
		WaitingForAction: t.window != nil,
		ClaimNumber:      t.ClaimNumber(),
		Result:           t.result,
		Standings:        t.standings,
	}
	if t.lastDiscarder >= 0 {
		tile := t.lastDiscard
		v.LastDiscard = &tile
	}
	for seat, s := range t.seats {
		v.Seats = append(v.Seats, SeatView{
			Seat:     seat,
			Wind:     t.SeatWind(seat),
			IsTurn:   t.phase == PhasePlaying && seat == t.current,
			IsDealer: seat == t.dealer,
			Riichi:   s.Riichi,
			Score:    s.Score,
			Discards: core.CloneTiles(s.Discards),
			Melds:    slices.Clone(s.Melds),
			HandSize: len(s.Hand),
		})
	}
	return v
}

// WaitInfo 一种待牌
type WaitInfo struct {
	Tile      core.Kind `json:"tile"`
	Remaining int       `json:"remaining"` // 自己看不到的剩余张数
	HasYaku   bool      `json:"has_yaku"`
}

// TenpaiAnalysis 听牌分析
type TenpaiAnalysis struct {
	Tenpai          bool                     `json:"tenpai"`
	Waits           []WaitInfo               `json:"waits,omitempty"`
	WaitCount       int                      `json:"wait_count"`
	HasYaku         bool                     `json:"has_yaku"`
	DiscardToTenpai map[core.Tile][]WaitInfo `json:"discard_to_tenpai,omitempty"`
}

// SelfActions 轮到自己时可做的操作
type SelfActions struct {
	Tsumo         bool        `json:"tsumo,omitempty"`
	Riichi        []core.Tile `json:"riichi,omitempty"`
	ConcealedKong []core.Kind `json:"concealed_kong,omitempty"`
	AddedKong     []core.Kind `json:"added_kong,omitempty"`
	NineTerminals bool        `json:"nine_terminals,omitempty"`
}

// HandView 只发给本人的手牌信息
type HandView struct {
	Seat           int            `json:"seat"`
	Hand           []core.Tile    `json:"hand"`
	Melds          []core.Meld    `json:"melds"`
	SeatWind       core.Wind      `json:"seat_wind"`
	RoundWind      core.Wind      `json:"round_wind"`
	Riichi         bool           `json:"riichi"`
	Furiten        bool           `json:"furiten"`
	NeedsDraw      bool           `json:"needs_draw"`
	Claim          *ClaimOptions  `json:"claim,omitempty"`
	ClaimTile      *core.Tile     `json:"claim_tile,omitempty"`
	ClaimNumber    int32          `json:"claim_number,omitempty"`
	Kuikae         []core.Kind    `json:"kuikae,omitempty"`
	Actions        SelfActions    `json:"actions"`
	Tenpai         TenpaiAnalysis `json:"tenpai"`
	YakumanCertain bool           `json:"yakuman_certain"`
}

// HandView 座位的私有视图
func (t *Table) HandView(seat int) (HandView, error) {
	if err := validSeat(seat); err != nil {
		return HandView{}, err
	}
	s := t.seats[seat]
	v := HandView{
		Seat:      seat,
		Hand:      core.CloneTiles(s.Hand),
		Melds:     slices.Clone(s.Melds),
		SeatWind:  t.SeatWind(seat),
		RoundWind: t.roundWind,
		Riichi:    s.Riichi,
		Furiten:   s.IsFuriten(),
		NeedsDraw: t.NeedsDraw() && t.current == seat,
		Kuikae:    slices.Clone(s.kuikae),
	}
	if t.window != nil {
		if o, ok := t.window.options[seat]; ok {
			if _, done := t.window.responses[seat]; !done {
				tile := t.window.Tile
				v.Claim = &o
				v.ClaimTile = &tile
				v.ClaimNumber = t.window.Number
			}
		}
	}
	if t.phase == PhasePlaying && t.requireDrawn(seat) == nil {
		v.Actions.Tsumo = t.CanTsumo(seat)
		v.Actions.Riichi = t.RiichiCandidates(seat)
		v.Actions.ConcealedKong, v.Actions.AddedKong = t.KongCandidates(seat)
		v.Actions.NineTerminals = t.canAbortNineTerminals(seat)
	}
	v.Tenpai = t.analyzeTenpai(seat)
	v.YakumanCertain = t.yakumanCertain(seat)
	return v, nil
}

// visibleCounts 座位能看到的各牌种张数：自己的手牌、所有舍牌、副露与宝牌指示牌
func (t *Table) visibleCounts(seat int) counts {
	var c counts
	for _, tile := range t.seats[seat].Hand {
		c[tile.Kind()]++
	}
	for _, s := range t.seats {
		for _, tile := range s.Discards {
			c[tile.Kind()]++
		}
		for _, m := range s.Melds {
			for _, tile := range m.Tiles {
				c[tile.Kind()]++
			}
		}
	}
	for _, tile := range t.doraIndicators {
		c[tile.Kind()]++
	}
	return c
}

// waitInfos 为 13 张形手牌列出待牌，役的判定按荣和计算
func (t *Table) waitInfos(seat int, hand []core.Tile, visible counts) []WaitInfo {
	kinds := WaitingTiles(hand)
	if len(kinds) == 0 {
		return nil
	}
	s := t.seats[seat]
	infos := make([]WaitInfo, 0, len(kinds))
	for _, k := range kinds {
		tile := k.Tile()
		ctx := t.winContext(seat, tile, core.WinRon)
		ctx.Hand = append(core.CloneTiles(hand), tile)
		ctx.Melds = s.Melds
		res, ok := EvaluateYaku(ctx)
		infos = append(infos, WaitInfo{
			Tile:      k,
			Remaining: max(0, 4-visible[k]),
			HasYaku:   ok && res.HasYaku(),
		})
	}
	return infos
}

// analyzeTenpai 听牌分析；14 张形手牌给出每张可打的牌打出后的待牌
func (t *Table) analyzeTenpai(seat int) TenpaiAnalysis {
	var a TenpaiAnalysis
	s := t.seats[seat]
	visible := t.visibleCounts(seat)

	switch len(s.Hand) % 3 {
	case 1:
		a.Waits = t.waitInfos(seat, s.Hand, visible)
	case 2:
		a.DiscardToTenpai = make(map[core.Tile][]WaitInfo)
		for i, tile := range s.Hand {
			if _, ok := a.DiscardToTenpai[tile]; ok {
				continue
			}
			rest := slices.Delete(core.CloneTiles(s.Hand), i, i+1)
			if waits := t.waitInfos(seat, rest, visible); len(waits) > 0 {
				a.DiscardToTenpai[tile] = waits
			}
		}
		if len(a.DiscardToTenpai) == 0 {
			a.DiscardToTenpai = nil
		}
	}

	a.Tenpai = len(a.Waits) > 0
	for _, w := range a.Waits {
		a.WaitCount += w.Remaining
		if w.HasYaku {
			a.HasYaku = true
		}
	}
	return a
}

// yakumanCertain 13 张形手牌听牌且每种待牌都是役满
func (t *Table) yakumanCertain(seat int) bool {
	s := t.seats[seat]
	kinds := WaitingTiles(s.Hand)
	if len(kinds) == 0 {
		return false
	}
	for _, k := range kinds {
		res, _, ok := t.evaluateWin(seat, k.Tile(), core.WinRon)
		if !ok || !res.Yakuman {
			return false
		}
	}
	return true
}
