package riichi

import (
	"slices"

	"sudooom.im.mahjong/internal/game/mahjong/core"
)

// 一局的结束方式
const (
	OutcomeWin            = "win"
	OutcomeExhaustiveDraw = "exhaustive_draw"
	OutcomeAbortiveDraw   = "abortive_draw"
	OutcomeTripleRon      = "triple_ron"
)

// 途中流局原因
const (
	AbortNineTerminals = "kyuushu_kyuuhai"
	AbortFourWinds     = "suufon_renda"
	AbortFourRiichi    = "suucha_riichi"
	AbortFourKongs     = "suukaikan"
	AbortTripleRon     = "sanchahou"
	AbortInvariant     = "invariant"
)

const (
	notenPenalty = 3000
	tsumoHonba   = HonbaBonus / 3
)

// uma 顺位马
var uma = [SeatCount]float64{15, 5, -5, -15}

// WinResult 一家和牌的结算
type WinResult struct {
	Seat          int            `json:"seat"`
	From          int            `json:"from"` // 自摸时为和牌者本人
	Kind          core.WinKind   `json:"kind"`
	WinTile       core.Tile      `json:"win_tile"`
	Hand          []core.Tile    `json:"hand"`
	Melds         []core.Meld    `json:"melds,omitempty"`
	Yaku          []Yaku         `json:"yaku"`
	Han           int            `json:"han"`
	Fu            int            `json:"fu"`
	Yakuman       bool           `json:"yakuman,omitempty"`
	Limit         string         `json:"limit,omitempty"`
	Points        int            `json:"points"`
	Deltas        [SeatCount]int `json:"deltas"`
	UraIndicators []core.Tile    `json:"ura_indicators,omitempty"`
	Pao           *Pao           `json:"pao,omitempty"`
}

// RoundResult 一局的结果
type RoundResult struct {
	Outcome      string          `json:"outcome"`
	Reason       string          `json:"reason,omitempty"`
	Wins         []WinResult     `json:"wins,omitempty"`
	Tenpai       [SeatCount]bool `json:"tenpai"`
	Deltas       [SeatCount]int  `json:"deltas"`
	Scores       [SeatCount]int  `json:"scores"`
	Renchan      bool            `json:"renchan"`
	Honba        int             `json:"honba"`
	RiichiSticks int             `json:"riichi_sticks"`
}

// Standing 终局顺位
type Standing struct {
	Seat   int     `json:"seat"`
	Score  int     `json:"score"`
	Points float64 `json:"points"`
	Place  int     `json:"place"`
}

// evaluateWin 以 tile 为和了牌判定役种，自摸时 tile 已在手牌末尾
func (t *Table) evaluateWin(seat int, tile core.Tile, kind core.WinKind) (YakuResult, WinContext, bool) {
	ctx := t.winContext(seat, tile, kind)
	res, ok := EvaluateYaku(ctx)
	return res, ctx, ok
}

func (t *Table) winContext(seat int, tile core.Tile, kind core.WinKind) WinContext {
	s := t.seats[seat]
	tsumo := kind == core.WinTsumo
	hand := core.CloneTiles(s.Hand)
	if !tsumo {
		hand = append(hand, tile)
	}

	ctx := WinContext{
		Hand:         hand,
		Melds:        s.Melds,
		WinTile:      tile,
		Tsumo:        tsumo,
		Riichi:       s.Riichi,
		DoubleRiichi: s.DoubleRiichi,
		Ippatsu:      s.Riichi && s.Ippatsu,
		Rinshan:      tsumo && t.rinshan,
		Chankan:      kind == core.WinChankan,
		Haitei:       tsumo && len(t.deck) == 0 && !t.rinshan,
		Houtei:       kind == core.WinRon && len(t.deck) == 0,
		Tenhou:       tsumo && s.FirstTurn && seat == t.dealer,
		Chihou:       tsumo && s.FirstTurn && seat != t.dealer,
		SeatWind:     t.SeatWind(seat),
		RoundWind:    t.roundWind,
	}

	tiles := slices.Clone(hand)
	for _, m := range s.Melds {
		tiles = append(tiles, m.Tiles...)
	}
	for _, d := range t.DoraTiles() {
		ctx.Dora += core.CountKind(tiles, d.Kind())
	}
	if s.Riichi {
		for _, ind := range t.uraIndicators {
			ctx.UraDora += core.CountKind(tiles, ind.Next().Kind())
		}
	}
	for _, tile := range tiles {
		if tile.Red {
			ctx.AkaDora++
		}
	}
	return ctx
}

// scoreWin 计算一家和牌的番符与点数，不含本场与供托
func (t *Table) scoreWin(seat, from int, tile core.Tile, kind core.WinKind) (WinResult, Payment) {
	res, ctx, _ := t.evaluateWin(seat, tile, kind)
	fu := CalculateFu(res.Structure, ctx.Melds, tile, ctx.Tsumo, ctx.Concealed(), ctx.SeatWind, ctx.RoundWind)
	pay := CalculateScore(res.Han, fu, seat == t.dealer, ctx.Tsumo)

	s := t.seats[seat]
	win := WinResult{
		Seat:    seat,
		From:    from,
		Kind:    kind,
		WinTile: tile,
		Hand:    core.CloneTiles(ctx.Hand),
		Melds:   slices.Clone(s.Melds),
		Yaku:    res.Yaku,
		Han:     res.Han,
		Fu:      fu,
		Yakuman: res.Yakuman,
		Limit:   LimitName(res.Han, fu),
		Points:  pay.Total,
	}
	if s.Riichi {
		win.UraIndicators = core.CloneTiles(t.uraIndicators)
	}
	if s.pao != nil && res.Has(s.pao.Yaku) {
		win.Pao = s.pao
	}
	return win, pay
}

// settleTsumo 自摸结算
func (t *Table) settleTsumo(seat int, tile core.Tile) {
	win, pay := t.scoreWin(seat, seat, tile, core.WinTsumo)

	if win.Pao != nil {
		total := pay.Total + t.honba*HonbaBonus
		win.Deltas[win.Pao.Seat] -= total
		win.Deltas[seat] += total
	} else {
		for other := range SeatCount {
			if other == seat {
				continue
			}
			owed := pay.FromNonDealer
			if other == t.dealer {
				owed = pay.FromDealer
			}
			owed += t.honba * tsumoHonba
			win.Deltas[other] -= owed
			win.Deltas[seat] += owed
		}
	}
	win.Deltas[seat] += t.riichiSticks * RiichiCost

	t.finishWins([]WinResult{win})
}

// settleRon 荣和（含抢杠）结算，多家和时本场与供托归距放铳者最近的一家
func (t *Table) settleRon(winners []int, discarder int, tile core.Tile, kind core.WinKind) {
	wins := make([]WinResult, 0, len(winners))
	for i, seat := range winners {
		win, pay := t.scoreWin(seat, discarder, tile, kind)
		total := pay.Total

		if win.Pao != nil && win.Pao.Seat != discarder {
			half := total / 2
			win.Deltas[win.Pao.Seat] -= half
			win.Deltas[discarder] -= total - half
		} else {
			win.Deltas[discarder] -= total
		}
		win.Deltas[seat] += total

		if i == 0 {
			bonus := t.honba * HonbaBonus
			win.Deltas[discarder] -= bonus
			win.Deltas[seat] += bonus + t.riichiSticks*RiichiCost
		}
		wins = append(wins, win)
	}
	t.finishWins(wins)
}

// finishWins 应用点数变动并结束本局
func (t *Table) finishWins(wins []WinResult) {
	result := &RoundResult{Outcome: OutcomeWin, Wins: wins}
	for _, w := range wins {
		for seat, d := range w.Deltas {
			result.Deltas[seat] += d
		}
		if w.Seat == t.dealer {
			result.Renchan = true
		}
	}
	t.riichiSticks = 0
	if result.Renchan {
		t.honba++
	} else {
		t.honba = 0
	}
	t.endRound(result, EventWin)
}

// exhaustiveDraw 荒牌流局，按听牌人数支付罚符
func (t *Table) exhaustiveDraw() {
	result := &RoundResult{Outcome: OutcomeExhaustiveDraw}
	tenpai := 0
	for seat, s := range t.seats {
		if s.Riichi || IsTenpai(s.Hand) {
			result.Tenpai[seat] = true
			tenpai++
		}
	}
	if tenpai > 0 && tenpai < SeatCount {
		gain := notenPenalty / tenpai
		loss := notenPenalty / (SeatCount - tenpai)
		for seat, ok := range result.Tenpai {
			if ok {
				result.Deltas[seat] = gain
			} else {
				result.Deltas[seat] = -loss
			}
		}
	}
	result.Renchan = result.Tenpai[t.dealer]
	t.honba++
	t.endRound(result, EventExhaustiveDraw)
}

// abortRound 途中流局，不移动点数，庄家连庄
func (t *Table) abortRound(reason string) {
	result := &RoundResult{Outcome: OutcomeAbortiveDraw, Reason: reason, Renchan: true}
	t.honba++
	t.endRound(result, EventAbortiveDraw)
}

// endRound 应用点数并进入一局结束阶段，满足条件时终局
func (t *Table) endRound(result *RoundResult, kind EventKind) {
	for seat, s := range t.seats {
		s.Score += result.Deltas[seat]
		result.Scores[seat] = s.Score
	}
	result.Honba = t.honba
	result.RiichiSticks = t.riichiSticks

	t.window = nil
	t.addedKong = nil
	t.justDrew = false
	t.result = result
	t.renchan = result.Renchan
	t.phase = PhaseFinished
	t.emit(kind, Everyone, result)

	if t.matchOver() {
		t.endMatch()
	}
}

// endMatch 终局：剩余供托归第一位，计算顺位与得点
func (t *Table) endMatch() {
	order := make([]int, SeatCount)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return t.seats[b].Score - t.seats[a].Score
	})
	t.seats[order[0]].Score += t.riichiSticks * RiichiCost
	t.riichiSticks = 0

	t.standings = make([]Standing, SeatCount)
	for place, seat := range order {
		score := t.seats[seat].Score
		t.standings[place] = Standing{
			Seat:   seat,
			Score:  score,
			Points: float64(score-ReturnScore)/1000 + uma[place],
			Place:  place + 1,
		}
	}
	t.phase = PhaseEnded
	t.emit(EventMatchEnded, Everyone, MatchEndedData{Standings: t.standings})
}
