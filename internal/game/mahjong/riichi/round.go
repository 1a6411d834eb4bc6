package riichi

import (
	"sudooom.im.mahjong/internal/game/mahjong/core"
)

const handSize = 13

// StartMatch 开始整场对局，东一局起庄家为 0 号座位
func (t *Table) StartMatch() ([]Event, error) {
	if t.phase != PhaseWaiting {
		return t.fail(ErrInvalidPhase.WithContext("phase", t.phase.String()))
	}
	for _, s := range t.seats {
		s.Score = StartingScore
	}
	t.roundWind = core.WindEast
	t.roundNumber = 0
	t.dealer = 0
	t.honba = 0
	t.riichiSticks = 0
	t.standings = nil
	if err := t.startRound(); err != nil {
		return t.fail(err)
	}
	return t.finish()
}

// StartNextRound 一局结束后开始下一局，连庄时庄家不变
func (t *Table) StartNextRound() ([]Event, error) {
	switch t.phase {
	case PhaseEnded:
		return t.fail(ErrMatchOver)
	case PhaseFinished:
	default:
		return t.fail(ErrInvalidPhase.WithContext("phase", t.phase.String()))
	}

	dealer, wind := t.dealer, t.roundWind
	if !t.renchan {
		dealer = (dealer + 1) % SeatCount
		if dealer == 0 {
			wind++
		}
	}
	prevDealer, prevWind, prevNumber := t.dealer, t.roundWind, t.roundNumber
	t.dealer, t.roundWind, t.roundNumber = dealer, wind, dealer
	if err := t.startRound(); err != nil {
		t.dealer, t.roundWind, t.roundNumber = prevDealer, prevWind, prevNumber
		return t.fail(err)
	}
	return t.finish()
}

// startRound 洗牌、配牌、翻开第一张宝牌指示牌
func (t *Table) startRound() error {
	wall := t.deckGen.GenerateDeck()
	if len(wall) != len(core.NewSupply()) {
		return ErrInvariantBroken.WithContext("wall", len(wall))
	}

	for _, s := range t.seats {
		s.reset()
	}
	t.deadWall = core.CloneTiles(wall[:deadWallSize])
	t.deck = core.CloneTiles(wall[deadWallSize:])
	t.rinshanTaken = 0
	t.doraIndicators = nil
	t.uraIndicators = nil
	t.kanCount = 0
	t.turnCount = 0
	t.window = nil
	t.addedKong = nil
	t.result = nil
	t.renchan = false
	t.lastDiscard = core.Tile{}
	t.lastDiscarder = -1

	for i := range SeatCount {
		seat := (t.dealer + i) % SeatCount
		n := len(t.deck)
		hand := core.CloneTiles(t.deck[n-handSize:])
		t.deck = t.deck[:n-handSize]
		t.seats[seat].Hand = hand
	}
	for _, s := range t.seats {
		core.SortTiles(s.Hand)
	}
	dealer := t.seats[t.dealer]
	dealer.Hand = append(dealer.Hand, t.deck[len(t.deck)-1])
	t.deck = t.deck[:len(t.deck)-1]

	t.revealDora()
	t.current = t.dealer
	t.justDrew = true
	t.rinshan = false
	t.phase = PhasePlaying

	t.emit(EventRoundStarted, t.dealer, RoundStartedData{
		RoundWind:      t.roundWind,
		RoundNumber:    t.roundNumber,
		Dealer:         t.dealer,
		Honba:          t.honba,
		RiichiSticks:   t.riichiSticks,
		DoraIndicators: core.CloneTiles(t.doraIndicators),
	})
	for seat, s := range t.seats {
		t.emitTo(seat, EventHandDealt, seat, HandDealtData{Hand: core.CloneTiles(s.Hand)})
	}
	return nil
}

// matchOver 一局结束后是否终局
//
// 有人被飞；最后一局（含延长）结束时有人达到返点，连庄时须庄家领先；北四局结束不再延长。
func (t *Table) matchOver() bool {
	top, leader := -1, -1
	for seat, s := range t.seats {
		if s.Score < 0 {
			return true
		}
		if s.Score > top {
			top, leader = s.Score, seat
		}
	}

	last := t.mode.lastWind()
	final := t.roundWind > last || (t.roundWind == last && t.dealer == SeatCount-1)
	if final && top >= ReturnScore && (!t.renchan || leader == t.dealer) {
		return true
	}
	return t.roundWind == core.WindNorth && t.dealer == SeatCount-1 && !t.renchan
}
