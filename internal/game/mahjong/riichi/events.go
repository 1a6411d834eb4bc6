package riichi

import "sudooom.im.mahjong/internal/game/mahjong/core"

// EventKind 牌桌事件类型
type EventKind string

const (
	EventRoundStarted      EventKind = "ROUND_STARTED"
	EventHandDealt         EventKind = "HAND_DEALT"
	EventTileDrawn         EventKind = "TILE_DRAWN"
	EventTileDiscarded     EventKind = "TILE_DISCARDED"
	EventClaimOptions      EventKind = "CLAIM_OPTIONS"
	EventClaimWindowClosed EventKind = "CLAIM_WINDOW_CLOSED"
	EventMeldCalled        EventKind = "MELD_CALLED"
	EventKongDeclared      EventKind = "KONG_DECLARED"
	EventDoraRevealed      EventKind = "DORA_REVEALED"
	EventRiichiDeclared    EventKind = "RIICHI_DECLARED"
	EventWin               EventKind = "WIN"
	EventExhaustiveDraw    EventKind = "EXHAUSTIVE_DRAW"
	EventAbortiveDraw      EventKind = "ABORTIVE_DRAW"
	EventMatchEnded        EventKind = "MATCH_ENDED"
)

// Everyone 事件对全体可见
const Everyone = -1

// Event 牌桌事件，To 为 Everyone 时广播，否则只发给该座位
type Event struct {
	Kind EventKind `json:"kind"`
	Seat int       `json:"seat"`
	To   int       `json:"-"`
	Data any       `json:"data,omitempty"`
}

// Public 是否为公开事件
func (e Event) Public() bool { return e.To == Everyone }

// RoundStartedData 开局信息
type RoundStartedData struct {
	RoundWind      core.Wind   `json:"round_wind"`
	RoundNumber    int         `json:"round_number"`
	Dealer         int         `json:"dealer"`
	Honba          int         `json:"honba"`
	RiichiSticks   int         `json:"riichi_sticks"`
	DoraIndicators []core.Tile `json:"dora_indicators"`
}

// HandDealtData 配牌（仅本人可见）
type HandDealtData struct {
	Hand []core.Tile `json:"hand"`
}

// DrawData 摸牌（仅本人可见）
type DrawData struct {
	Tile    core.Tile `json:"tile"`
	Rinshan bool      `json:"rinshan,omitempty"`
}

// DiscardData 打牌
type DiscardData struct {
	Tile   core.Tile `json:"tile"`
	Riichi bool      `json:"riichi,omitempty"`
}

// ClaimOptionsData 可响应选项（仅本人可见）
type ClaimOptionsData struct {
	Number    int32        `json:"number"`
	Tile      core.Tile    `json:"tile"`
	Discarder int          `json:"discarder"`
	Chankan   bool         `json:"chankan,omitempty"`
	Options   ClaimOptions `json:"options"`
}

// WindowClosedData 响应窗口关闭
type WindowClosedData struct {
	Number  int32  `json:"number"`
	Outcome string `json:"outcome"`
}

// MeldData 副露
type MeldData struct {
	Meld core.Meld `json:"meld"`
}

// DoraData 新宝牌指示牌
type DoraData struct {
	Indicator core.Tile `json:"indicator"`
}

// RiichiData 立直
type RiichiData struct {
	Double bool `json:"double,omitempty"`
}

// MatchEndedData 终局
type MatchEndedData struct {
	Standings []Standing `json:"standings"`
}

func (t *Table) emit(kind EventKind, seat int, data any) {
	t.events = append(t.events, Event{Kind: kind, Seat: seat, To: Everyone, Data: data})
}

func (t *Table) emitTo(to int, kind EventKind, seat int, data any) {
	t.events = append(t.events, Event{Kind: kind, Seat: seat, To: to, Data: data})
}

func (t *Table) flush() []Event {
	events := t.events
	t.events = nil
	return events
}
