package riichi

import (
	"slices"

	"sudooom.im.mahjong/internal/game/mahjong/core"
)

// ClaimOptions 某座位对一张牌可做的响应
type ClaimOptions struct {
	Ron  bool          `json:"ron,omitempty"`
	Pon  bool          `json:"pon,omitempty"`
	Kong bool          `json:"kong,omitempty"`
	Chi  [][]core.Tile `json:"chi,omitempty"` // 每项为手中用于吃的两张牌
}

// Any 是否有任一选项
func (o ClaimOptions) Any() bool {
	return o.Ron || o.Pon || o.Kong || len(o.Chi) > 0
}

// Allows 是否允许该响应，过总是允许
func (o ClaimOptions) Allows(kind core.ClaimKind) bool {
	switch kind {
	case core.ClaimPass:
		return true
	case core.ClaimRon:
		return o.Ron
	case core.ClaimPon:
		return o.Pon
	case core.ClaimKong:
		return o.Kong
	case core.ClaimChi:
		return len(o.Chi) > 0
	}
	return false
}

// best 可选的最高优先级
func (o ClaimOptions) best() int {
	switch {
	case o.Ron:
		return core.ClaimRon.Priority()
	case o.Pon || o.Kong:
		return core.ClaimPon.Priority()
	case len(o.Chi) > 0:
		return core.ClaimChi.Priority()
	}
	return 0
}

type claimResponse struct {
	kind  core.ClaimKind
	tiles []core.Tile
}

// ClaimWindow 打牌（或加杠）后的响应窗口
type ClaimWindow struct {
	Number    int32
	Tile      core.Tile
	Discarder int
	Chankan   bool

	options   map[int]ClaimOptions
	responses map[int]*claimResponse
}

// distance 从 from 逆时针数到 to 的距离
func distance(from, to int) int {
	return (to - from + SeatCount) % SeatCount
}

// Options 座位的响应选项
func (w *ClaimWindow) Options(seat int) (ClaimOptions, bool) {
	o, ok := w.options[seat]
	return o, ok
}

// pending 未响应的座位，按距打牌者由近到远
func (w *ClaimWindow) pending() []int {
	var seats []int
	for seat := range w.options {
		if _, ok := w.responses[seat]; !ok {
			seats = append(seats, seat)
		}
	}
	w.byDistance(seats)
	return seats
}

func (w *ClaimWindow) byDistance(seats []int) {
	slices.SortFunc(seats, func(a, b int) int {
		return distance(w.Discarder, a) - distance(w.Discarder, b)
	})
}

// ready 没有未响应的座位能压过已提交的最高响应
func (w *ClaimWindow) ready() bool {
	top := 1
	for _, r := range w.responses {
		top = max(top, r.kind.Priority())
	}
	for _, seat := range w.pending() {
		if w.options[seat].best() >= top {
			return false
		}
	}
	return true
}

// collect 按距离顺序取出某种响应的座位
func (w *ClaimWindow) collect(kinds ...core.ClaimKind) []int {
	var seats []int
	for seat, r := range w.responses {
		if slices.Contains(kinds, r.kind) {
			seats = append(seats, seat)
		}
	}
	w.byDistance(seats)
	return seats
}

// claimOptions 计算座位对一张牌的响应选项
func (t *Table) claimOptions(seat int, tile core.Tile, discarder int, chankan bool) ClaimOptions {
	var opts ClaimOptions
	s := t.seats[seat]
	if CanWin(s.Hand, tile) && !s.IsFuriten() {
		kind := core.WinRon
		if chankan {
			kind = core.WinChankan
		}
		if res, _, ok := t.evaluateWin(seat, tile, kind); ok && res.HasYaku() {
			opts.Ron = true
		}
	}
	if chankan || s.Riichi || len(t.deck) == 0 {
		return opts
	}

	n := core.CountKind(s.Hand, tile.Kind())
	opts.Pon = n >= 2
	opts.Kong = n >= 3 && t.canReplace()

	if seat == (discarder+1)%SeatCount && tile.IsNumeral() {
		opts.Chi = chiCompositions(s.Hand, tile)
	}
	return opts
}

// chiCompositions 手中能与 tile 组成顺子的两张牌
func chiCompositions(hand []core.Tile, tile core.Tile) [][]core.Tile {
	var out [][]core.Tile
	for _, offs := range [][2]int8{{-2, -1}, {-1, 1}, {1, 2}} {
		a, b := tile.Rank+offs[0], tile.Rank+offs[1]
		if a < 1 || b > 9 {
			continue
		}
		ia := core.IndexOf(hand, core.NewTile(tile.Suit, a))
		ib := core.IndexOf(hand, core.NewTile(tile.Suit, b))
		if ia < 0 || ib < 0 {
			continue
		}
		out = append(out, []core.Tile{hand[ia], hand[ib]})
	}
	return out
}

// openWindow 打开响应窗口，没有任何座位可响应时返回 false
func (t *Table) openWindow(tile core.Tile, discarder int, chankan bool) bool {
	options := make(map[int]ClaimOptions)
	for seat := range SeatCount {
		if seat == discarder {
			continue
		}
		if o := t.claimOptions(seat, tile, discarder, chankan); o.Any() {
			options[seat] = o
		}
	}
	if len(options) == 0 {
		t.markSeen(tile, discarder, nil)
		return false
	}

	t.claimSeq++
	t.window = &ClaimWindow{
		Number:    t.claimSeq,
		Tile:      tile,
		Discarder: discarder,
		Chankan:   chankan,
		options:   options,
		responses: make(map[int]*claimResponse),
	}
	for seat, o := range options {
		t.emitTo(seat, EventClaimOptions, seat, ClaimOptionsData{
			Number:    t.claimSeq,
			Tile:      tile,
			Discarder: discarder,
			Chankan:   chankan,
			Options:   o,
		})
	}
	return true
}

// markSeen 放过能和的牌进入同巡振听，立直中则永久振听
func (t *Table) markSeen(tile core.Tile, discarder int, winners []int) {
	for seat, s := range t.seats {
		if seat == discarder || slices.Contains(winners, seat) {
			continue
		}
		if CanWin(s.Hand, tile) {
			s.TempFuriten = true
			if s.Riichi {
				s.RiichiFuriten = true
			}
		}
	}
}

// respond 校验并记录一个响应，所有必要响应到齐后结算窗口
func (t *Table) respond(seat int, kind core.ClaimKind, tile core.Tile, composition []core.Tile) error {
	if err := validSeat(seat); err != nil {
		return err
	}
	if t.phase != PhasePlaying {
		return ErrInvalidPhase.WithContext("phase", t.phase.String())
	}
	w := t.window
	if w == nil {
		return ErrNoClaimWindow
	}
	if tile.Rank != 0 && !tile.SameKind(w.Tile) {
		return ErrClaimNotAllowed.WithContext("tile", tile.String())
	}
	opts, ok := w.options[seat]
	if !ok {
		return ErrClaimNotAllowed
	}
	if kind == core.ClaimRon && !opts.Ron {
		return t.ronRefusal(seat, w.Tile)
	}
	if _, done := w.responses[seat]; done {
		return ErrAlreadyResponded
	}
	if !opts.Allows(kind) {
		return ErrClaimNotAllowed.WithContext("claim", kind.String())
	}

	resp := &claimResponse{kind: kind}
	if kind == core.ClaimChi {
		tiles, err := pickChi(opts.Chi, t.seats[seat].Hand, w.Tile, composition)
		if err != nil {
			return err
		}
		resp.tiles = tiles
	}
	w.responses[seat] = resp

	if w.ready() {
		t.resolveWindow()
	}
	return nil
}

// ronRefusal 说明荣和被拒绝的原因
func (t *Table) ronRefusal(seat int, tile core.Tile) error {
	s := t.seats[seat]
	if !CanWin(s.Hand, tile) {
		return ErrCannotWin
	}
	if s.IsFuriten() {
		return ErrFuriten
	}
	return ErrNoYaku
}

// pickChi 校验吃的组合，未指定时使用第一个可选组合
func pickChi(options [][]core.Tile, hand []core.Tile, tile core.Tile, composition []core.Tile) ([]core.Tile, error) {
	if len(composition) == 0 {
		return options[0], nil
	}
	if len(composition) != 2 || !core.ContainsTiles(hand, composition) {
		return nil, ErrInvalidComposition
	}
	if !core.IsSequence([]core.Tile{composition[0], composition[1], tile}) {
		return nil, ErrInvalidComposition
	}
	return composition, nil
}

// resolveWindow 关闭窗口并执行胜出的响应
func (t *Table) resolveWindow() {
	w := t.window
	t.window = nil

	rons := w.collect(core.ClaimRon)
	t.markSeen(w.Tile, w.Discarder, rons)
	if w.Chankan && len(rons) > 0 {
		t.revertAddedKong()
	}

	switch {
	case len(rons) >= 3:
		t.emit(EventClaimWindowClosed, Everyone, WindowClosedData{Number: w.Number, Outcome: OutcomeTripleRon})
		t.abortRound(AbortTripleRon)
	case len(rons) > 0:
		t.emit(EventClaimWindowClosed, Everyone, WindowClosedData{Number: w.Number, Outcome: core.ClaimRon.String()})
		kind := core.WinRon
		if w.Chankan {
			kind = core.WinChankan
		}
		t.settleRon(rons, w.Discarder, w.Tile, kind)
	default:
		if calls := w.collect(core.ClaimPon, core.ClaimKong); len(calls) > 0 {
			r := w.responses[calls[0]]
			t.emit(EventClaimWindowClosed, Everyone, WindowClosedData{Number: w.Number, Outcome: r.kind.String()})
			t.executeCall(calls[0], r.kind, w.Discarder, r.tiles)
			return
		}
		if calls := w.collect(core.ClaimChi); len(calls) > 0 {
			r := w.responses[calls[0]]
			t.emit(EventClaimWindowClosed, Everyone, WindowClosedData{Number: w.Number, Outcome: r.kind.String()})
			t.executeCall(calls[0], r.kind, w.Discarder, r.tiles)
			return
		}
		t.emit(EventClaimWindowClosed, Everyone, WindowClosedData{Number: w.Number, Outcome: core.ClaimPass.String()})
		if w.Chankan {
			t.completeAddedKong()
			return
		}
		t.advance()
	}
}

// executeCall 执行吃、碰、大明杠
func (t *Table) executeCall(seat int, kind core.ClaimKind, discarder int, composition []core.Tile) {
	s := t.seats[seat]
	from := t.seats[discarder]
	called := from.Discards[len(from.Discards)-1]

	if kind != core.ClaimChi {
		t.checkPao(seat, discarder, called)
	}

	var taken []core.Tile
	switch kind {
	case core.ClaimChi:
		for _, c := range composition {
			var tile core.Tile
			s.Hand, tile, _ = core.RemoveTile(s.Hand, c)
			taken = append(taken, tile)
		}
	case core.ClaimPon:
		s.Hand, taken = core.TakeKind(s.Hand, called.Kind(), 2)
	case core.ClaimKong:
		s.Hand, taken = core.TakeKind(s.Hand, called.Kind(), 3)
	}
	from.Discards = from.Discards[:len(from.Discards)-1]

	meld := core.Meld{From: discarder, Called: called, Tiles: append(taken, called)}
	switch kind {
	case core.ClaimChi:
		meld.Kind = core.MeldChi
	case core.ClaimPon:
		meld.Kind = core.MeldPon
	default:
		meld.Kind = core.MeldKong
	}
	core.SortTiles(meld.Tiles)
	s.Melds = append(s.Melds, meld)

	t.interrupt()
	t.current = seat
	t.justDrew = false
	t.rinshan = false
	t.lastDiscarder = -1
	t.emit(EventMeldCalled, seat, MeldData{Meld: meld})

	switch kind {
	case core.ClaimChi:
		s.kuikae = kuikaeKinds(called, meld.Tiles)
	case core.ClaimKong:
		t.kanCount++
		t.revealDora()
		t.drawReplacement(seat)
	}
}

// kuikaeKinds 吃后同巡禁止打出的牌种：被吃的牌，以及两面吃时顺子另一端外侧的牌
func kuikaeKinds(called core.Tile, run []core.Tile) []core.Kind {
	kinds := []core.Kind{called.Kind()}
	lo, hi := run[0], run[2]
	switch {
	case called.SameKind(lo) && hi.Rank < 9:
		kinds = append(kinds, hi.Kind()+1)
	case called.SameKind(hi) && lo.Rank > 1:
		kinds = append(kinds, lo.Kind()-1)
	}
	return kinds
}

// checkPao 鸣第三组三元牌或第四组风牌时，由打出者承担包牌责任
func (t *Table) checkPao(seat, discarder int, called core.Tile) {
	s := t.seats[seat]
	switch {
	case called.IsDragon() && s.tripletMelds(core.Tile.IsDragon) == 2:
		s.pao = &Pao{Seat: discarder, Yaku: YakuDaisangen}
	case called.IsWind() && s.tripletMelds(core.Tile.IsWind) == 3:
		s.pao = &Pao{Seat: discarder, Yaku: YakuDaisuushii}
	}
}
