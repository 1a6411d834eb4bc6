package room

import (
	"fmt"
	"sync"
	"time"

	"sudooom.im.mahjong/internal/game/mahjong/core"
	"sudooom.im.mahjong/internal/game/mahjong/rank"
	"sudooom.im.mahjong/internal/game/mahjong/riichi"
)

// MaxBots 机器人名称 bot1..bot9
const MaxBots = 9

// Player 座位上的玩家
type Player struct {
	ID   string    `json:"id"`
	Seat int       `json:"seat"`
	Bot  bool      `json:"bot"`
	Rank rank.Rank `json:"rank,omitempty"`
}

// Options 创建房间参数
type Options struct {
	Mode  riichi.GameMode
	Match rank.MatchType
	Deck  core.DeckGenerator // nil 时随机洗牌
}

// View 房间快照
type View struct {
	ID        string            `json:"roomId"`
	Host      string            `json:"host"`
	Mode      riichi.GameMode   `json:"mode"`
	Match     rank.MatchType    `json:"matchType"`
	Ranked    bool              `json:"ranked"`
	Status    string            `json:"status"`
	Players   []Player          `json:"players"`
	Table     *riichi.TableView `json:"table,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Room 房间实例
//
// 房间内所有状态由 mu 保护；除 Lock/Unlock 外，方法都要求调用方已持有房间锁，
// 这样牌桌变更与随后的通知可以在同一个临界区内完成。
type Room struct {
	mu sync.Mutex

	id    string
	host  string
	mode  riichi.GameMode
	match rank.MatchType
	deck  core.DeckGenerator

	seats [riichi.SeatCount]*Player
	table *riichi.Table

	generation int64 // 每次牌桌变更加一，延迟任务据此判断是否过期
	settled    bool  // 终局段位已结算
	createdAt  time.Time
	lastActive time.Time
}

// NewRoom 创建房间
func NewRoom(id string, opts Options) *Room {
	now := time.Now()
	return &Room{
		id:         id,
		mode:       opts.Mode,
		match:      opts.Match,
		deck:       opts.Deck,
		createdAt:  now,
		lastActive: now,
	}
}

func (r *Room) Lock()   { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

func (r *Room) ID() string            { return r.id }
func (r *Room) Host() string          { return r.host }
func (r *Room) Mode() riichi.GameMode { return r.mode }
func (r *Room) Match() rank.MatchType { return r.match }
func (r *Room) Table() *riichi.Table  { return r.table }
func (r *Room) Generation() int64     { return r.generation }
func (r *Room) LastActive() time.Time { return r.lastActive }
func (r *Room) Started() bool         { return r.table != nil }
func (r *Room) Settled() bool         { return r.settled }
func (r *Room) MarkSettled()          { r.settled = true }
func (r *Room) Seat(seat int) *Player { return r.seats[seat] }
func (r *Room) Ranked() bool          { return r.match.Ranked() }

// Touch 记录一次变更：刷新活跃时间并推进版本
func (r *Room) Touch() int64 {
	r.lastActive = time.Now()
	r.generation++
	return r.generation
}

// Status 房间状态：waiting / playing / finished / ended
func (r *Room) Status() string {
	if r.table == nil {
		return riichi.PhaseWaiting.String()
	}
	return r.table.Phase().String()
}

// Count 已入座人数（含机器人）
func (r *Room) Count() int {
	n := 0
	for _, p := range r.seats {
		if p != nil {
			n++
		}
	}
	return n
}

// Full 四个座位都已坐满
func (r *Room) Full() bool { return r.Count() == riichi.SeatCount }

// SeatOf 玩家所在座位
func (r *Room) SeatOf(playerID string) (int, bool) {
	for i, p := range r.seats {
		if p != nil && p.ID == playerID {
			return i, true
		}
	}
	return -1, false
}

// IsBot 座位是否由机器人操作
func (r *Room) IsBot(seat int) bool {
	return seat >= 0 && seat < riichi.SeatCount && r.seats[seat] != nil && r.seats[seat].Bot
}

// Players 按座位顺序的玩家
func (r *Room) Players() []Player {
	players := make([]Player, 0, riichi.SeatCount)
	for _, p := range r.seats {
		if p != nil {
			players = append(players, *p)
		}
	}
	return players
}

// HumanIDs 房间内真人玩家
func (r *Room) HumanIDs() []string {
	var ids []string
	for _, p := range r.seats {
		if p != nil && !p.Bot {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Join 入座第一个空位，房间没有房主时成为房主
func (r *Room) Join(p Player) (int, error) {
	if r.table != nil {
		return -1, ErrGameStarted
	}
	if _, ok := r.SeatOf(p.ID); ok {
		return -1, ErrAlreadyInRoom
	}
	if !p.Bot && !r.match.CanEnter(p.Rank) {
		return -1, ErrRankTooLow
	}
	seat := r.emptySeat()
	if seat < 0 {
		return -1, ErrRoomFull
	}

	p.Seat = seat
	r.seats[seat] = &p
	if r.host == "" && !p.Bot {
		r.host = p.ID
	}
	r.Touch()
	return seat, nil
}

func (r *Room) emptySeat() int {
	for i, p := range r.seats {
		if p == nil {
			return i
		}
	}
	return -1
}

// AddBot 房主添加一个机器人
func (r *Room) AddBot(by string) (Player, error) {
	if by != r.host {
		return Player{}, ErrNotRoomHost
	}
	if r.table != nil {
		return Player{}, ErrGameStarted
	}
	if r.Full() {
		return Player{}, ErrRoomFull
	}
	name, ok := r.freeBotName()
	if !ok {
		return Player{}, ErrNoBotName
	}
	seat, err := r.Join(Player{ID: name, Bot: true})
	if err != nil {
		return Player{}, err
	}
	return *r.seats[seat], nil
}

func (r *Room) freeBotName() (string, bool) {
	for i := 1; i <= MaxBots; i++ {
		name := fmt.Sprintf("bot%d", i)
		if _, used := r.SeatOf(name); !used {
			return name, true
		}
	}
	return "", false
}

// Leave 玩家离开
//
// 对局开始后座位交给机器人继续打；房主离开时转给座位顺序上第一个真人。
func (r *Room) Leave(playerID string) (int, error) {
	seat, ok := r.SeatOf(playerID)
	if !ok {
		return -1, ErrNotInRoom
	}

	if r.table != nil && !r.seats[seat].Bot {
		name, ok := r.freeBotName()
		if !ok {
			name = fmt.Sprintf("bot-%s", r.seats[seat].ID)
		}
		r.seats[seat] = &Player{ID: name, Seat: seat, Bot: true}
	} else {
		r.seats[seat] = nil
	}

	if r.host == playerID {
		r.host = ""
		if ids := r.HumanIDs(); len(ids) > 0 {
			r.host = ids[0]
		}
	}
	r.Touch()
	return seat, nil
}

// Kick 房主在开局前踢出玩家或机器人
func (r *Room) Kick(by, target string) (Player, error) {
	if by != r.host {
		return Player{}, ErrNotRoomHost
	}
	if by == target {
		return Player{}, ErrCannotKickSelf
	}
	if r.table != nil {
		return Player{}, ErrGameStarted
	}
	seat, ok := r.SeatOf(target)
	if !ok {
		return Player{}, ErrNotInRoom
	}
	p := *r.seats[seat]
	r.seats[seat] = nil
	r.Touch()
	return p, nil
}

// Empty 已没有真人玩家
func (r *Room) Empty() bool { return len(r.HumanIDs()) == 0 }

// Start 房主开始对局，四个座位必须坐满
func (r *Room) Start(by string) ([]riichi.Event, error) {
	if by != r.host {
		return nil, ErrNotRoomHost
	}
	if r.table != nil {
		return nil, ErrGameStarted
	}
	if !r.Full() {
		return nil, ErrNotEnoughPlayers
	}

	table := riichi.NewTable(r.mode, r.deck)
	events, err := table.StartMatch()
	if err != nil {
		return nil, err
	}
	r.table = table
	r.Touch()
	return events, nil
}

// Snapshot 房间快照，牌桌部分只含公开信息
func (r *Room) Snapshot() View {
	v := View{
		ID:        r.id,
		Host:      r.host,
		Mode:      r.mode,
		Match:     r.match,
		Ranked:    r.match.Ranked(),
		Status:    r.Status(),
		Players:   r.Players(),
		CreatedAt: r.createdAt,
	}
	if r.table != nil {
		tv := r.table.Snapshot()
		v.Table = &tv
	}
	return v
}
