package riichi

import (
	"sudooom.im.mahjong/internal/game/mahjong/core"
)

const (
	SeatCount     = 4
	StartingScore = 25000
	ReturnScore   = 30000 // 终局判定与精算基准
	RiichiCost    = 1000
	HonbaBonus    = 300

	deadWallSize     = 14
	replacementTiles = 4
	firstDoraOffset  = 4
)

// GameMode 对局长度
type GameMode int8

const (
	ModeTonpu   GameMode = iota // 东风战
	ModeHanchan                 // 半庄战
)

func (m GameMode) String() string {
	if m == ModeTonpu {
		return "tonpu"
	}
	return "hanchan"
}

func (m GameMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseGameMode 解析对局长度
func ParseGameMode(s string) (GameMode, bool) {
	switch s {
	case "tonpu", "east":
		return ModeTonpu, true
	case "hanchan", "south", "":
		return ModeHanchan, true
	}
	return ModeHanchan, false
}

// lastWind 预定的最后一个场风
func (m GameMode) lastWind() core.Wind {
	if m == ModeTonpu {
		return core.WindEast
	}
	return core.WindSouth
}

// Phase 牌桌阶段
type Phase int8

const (
	PhaseWaiting  Phase = iota // 等待开局
	PhasePlaying               // 对局中
	PhaseFinished              // 一局结束
	PhaseEnded                 // 终局
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// pendingKong 等待抢杠判定的加杠
type pendingKong struct {
	seat int
	tile core.Tile
}

// Table 一张四人立直麻将牌桌
//
// Table 不加锁，调用方（房间）负责串行化所有操作。每个导出的状态转换在出错时不修改状态。
type Table struct {
	mode    GameMode
	deckGen core.DeckGenerator

	phase Phase
	seats [SeatCount]*Seat

	deck           []core.Tile
	deadWall       []core.Tile
	rinshanTaken   int
	doraIndicators []core.Tile
	uraIndicators  []core.Tile

	roundWind    core.Wind
	roundNumber  int
	honba        int
	dealer       int
	riichiSticks int

	current       int
	justDrew      bool
	rinshan       bool
	turnCount     int
	kanCount      int
	lastDiscard   core.Tile
	lastDiscarder int

	window    *ClaimWindow
	claimSeq  int32
	addedKong *pendingKong

	renchan   bool
	result    *RoundResult
	standings []Standing

	events []Event
}

// NewTable 创建牌桌，deck 为 nil 时使用随机牌山
func NewTable(mode GameMode, deck core.DeckGenerator) *Table {
	if deck == nil {
		deck = NewShuffledDeck(nil)
	}
	t := &Table{mode: mode, deckGen: deck, lastDiscarder: -1}
	for i := range t.seats {
		t.seats[i] = newSeat()
	}
	return t
}

func (t *Table) Phase() Phase         { return t.phase }
func (t *Table) Mode() GameMode       { return t.mode }
func (t *Table) Current() int         { return t.current }
func (t *Table) Dealer() int          { return t.dealer }
func (t *Table) Honba() int           { return t.honba }
func (t *Table) RiichiSticks() int    { return t.riichiSticks }
func (t *Table) DeckRemaining() int   { return len(t.deck) }
func (t *Table) Result() *RoundResult { return t.result }
func (t *Table) Standings() []Standing {
	return t.standings
}

// Score 座位点数
func (t *Table) Score(seat int) int {
	if seat < 0 || seat >= SeatCount {
		return 0
	}
	return t.seats[seat].Score
}

// SeatWind 座位的自风
func (t *Table) SeatWind(seat int) core.Wind {
	return core.Wind((seat - t.dealer + SeatCount) % SeatCount)
}

// RoundWind 场风
func (t *Table) RoundWind() core.Wind { return t.roundWind }

// WaitingForAction 是否有打开的响应窗口
func (t *Table) WaitingForAction() bool { return t.window != nil }

// ClaimNumber 当前响应窗口编号，没有窗口时为 0
func (t *Table) ClaimNumber() int32 {
	if t.window == nil {
		return 0
	}
	return t.window.Number
}

// PendingResponders 尚未响应的座位
func (t *Table) PendingResponders() []int {
	if t.window == nil {
		return nil
	}
	return t.window.pending()
}

// LastDiscard 最后一张打出的牌
func (t *Table) LastDiscard() (core.Tile, int, bool) {
	if t.lastDiscarder < 0 {
		return core.Tile{}, -1, false
	}
	return t.lastDiscard, t.lastDiscarder, true
}

// NeedsDraw 当前座位是否等待摸牌
func (t *Table) NeedsDraw() bool {
	return t.phase == PhasePlaying && t.window == nil && len(t.seats[t.current].Hand)%3 == 1
}

// DoraTiles 当前宝牌
func (t *Table) DoraTiles() []core.Tile {
	tiles := make([]core.Tile, len(t.doraIndicators))
	for i, ind := range t.doraIndicators {
		tiles[i] = ind.Next()
	}
	return tiles
}

func validSeat(seat int) error {
	if seat < 0 || seat >= SeatCount {
		return ErrInvalidSeat.WithContext("seat", seat)
	}
	return nil
}

// requireTurn 对局中、轮到该座位且没有打开的响应窗口
func (t *Table) requireTurn(seat int) error {
	if err := validSeat(seat); err != nil {
		return err
	}
	if t.phase != PhasePlaying {
		return ErrInvalidPhase.WithContext("phase", t.phase.String())
	}
	if t.window != nil {
		return ErrWaitingForClaims
	}
	if t.current != seat {
		return ErrNotYourTurn.WithContext("current", t.current)
	}
	return nil
}

// requireDrawn 刚摸牌（含岭上）后的自家操作
func (t *Table) requireDrawn(seat int) error {
	if err := t.requireTurn(seat); err != nil {
		return err
	}
	if len(t.seats[seat].Hand)%3 != 2 {
		return ErrMustDraw
	}
	if !t.justDrew {
		return ErrInvalidPhase.WithContext("reason", "not after a draw")
	}
	return nil
}

func (t *Table) canReplace() bool {
	return t.rinshanTaken < replacementTiles
}

// revealDora 翻开下一张宝牌指示牌及对应里宝牌
func (t *Table) revealDora() {
	pos := firstDoraOffset + 2*len(t.doraIndicators)
	if pos+1 >= len(t.deadWall) {
		return
	}
	t.doraIndicators = append(t.doraIndicators, t.deadWall[pos])
	t.uraIndicators = append(t.uraIndicators, t.deadWall[pos+1])
	if len(t.doraIndicators) > 1 {
		t.emit(EventDoraRevealed, Everyone, DoraData{Indicator: t.deadWall[pos]})
	}
}

// drawReplacement 从王牌区摸岭上牌
func (t *Table) drawReplacement(seat int) {
	tile := t.deadWall[t.rinshanTaken]
	t.rinshanTaken++
	s := t.seats[seat]
	s.Hand = append(s.Hand, tile)
	t.justDrew = true
	t.rinshan = true
	t.emitTo(seat, EventTileDrawn, seat, DrawData{Tile: tile, Rinshan: true})
}

// interrupt 鸣牌或杠打断第一巡与一发
func (t *Table) interrupt() {
	for _, s := range t.seats {
		s.Ippatsu = false
		s.FirstTurn = false
	}
}

func (t *Table) anyMelds() bool {
	for _, s := range t.seats {
		if len(s.Melds) > 0 {
			return true
		}
	}
	return false
}

// finish 校验不变量并返回本次操作产生的事件
func (t *Table) finish() ([]Event, error) {
	if err := t.verify(); err != nil {
		err = t.abortOnViolation(err)
		return t.flush(), err
	}
	return t.flush(), nil
}

func (t *Table) fail(err error) ([]Event, error) {
	t.events = nil
	return nil, err
}
