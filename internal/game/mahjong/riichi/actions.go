package riichi

import (
	"slices"

	"sudooom.im.mahjong/internal/game/mahjong/core"
)

// Draw 当前座位从牌山摸一张牌，牌山已空时流局
func (t *Table) Draw(seat int) ([]Event, error) {
	if err := t.requireTurn(seat); err != nil {
		return t.fail(err)
	}
	s := t.seats[seat]
	if len(s.Hand)%3 != 1 {
		return t.fail(ErrAlreadyDrew)
	}
	if len(t.deck) == 0 {
		t.exhaustiveDraw()
		return t.finish()
	}

	tile := t.deck[len(t.deck)-1]
	t.deck = t.deck[:len(t.deck)-1]
	s.Hand = append(s.Hand, tile)
	s.TempFuriten = false
	t.justDrew = true
	t.rinshan = false
	t.turnCount++

	t.emit(EventTileDrawn, seat, nil)
	t.emitTo(seat, EventTileDrawn, seat, DrawData{Tile: tile})
	return t.finish()
}

// Discard 打出一张牌；force 跳过食替限制
func (t *Table) Discard(seat int, tile core.Tile, force bool) ([]Event, error) {
	if err := t.requireTurn(seat); err != nil {
		return t.fail(err)
	}
	s := t.seats[seat]
	if len(s.Hand)%3 != 2 {
		return t.fail(ErrMustDraw)
	}

	idx := core.IndexOf(s.Hand, tile)
	if idx < 0 {
		return t.fail(ErrTileNotInHand.WithContext("tile", tile.String()))
	}
	if s.Riichi {
		last := len(s.Hand) - 1
		if !s.Hand[last].SameKind(tile) {
			return t.fail(ErrRiichiLocked)
		}
		idx = last
	}
	if !force && s.kuikaeForbids(tile.Kind()) {
		return t.fail(ErrKuikae.WithContext("tile", tile.String()))
	}

	t.applyDiscard(seat, idx, false)
	return t.finish()
}

// applyDiscard 打牌并打开响应窗口，无人可响应时轮到下家
func (t *Table) applyDiscard(seat, idx int, riichi bool) {
	s := t.seats[seat]
	tile := s.Hand[idx]
	s.Hand = slices.Delete(s.Hand, idx, idx+1)
	core.SortTiles(s.Hand)
	s.Discards = append(s.Discards, tile)

	t.lastDiscard = tile
	t.lastDiscarder = seat
	t.current = (seat + 1) % SeatCount
	t.justDrew = false
	t.rinshan = false

	s.kuikae = nil
	s.FirstTurn = false
	s.Ippatsu = false
	s.TempFuriten = false
	s.refreshFuriten()

	t.emit(EventTileDiscarded, seat, DiscardData{Tile: tile, Riichi: riichi})
	if !t.openWindow(tile, seat, false) {
		t.advance()
	}
}

// advance 无人响应后检查途中流局与荒牌
func (t *Table) advance() {
	switch {
	case t.fourWinds():
		t.abortRound(AbortFourWinds)
	case t.fourRiichi():
		t.abortRound(AbortFourRiichi)
	case t.fourKongs():
		t.abortRound(AbortFourKongs)
	case len(t.deck) == 0:
		t.exhaustiveDraw()
	}
}

// fourWinds 四家第一巡打出同一种风牌
func (t *Table) fourWinds() bool {
	if t.anyMelds() {
		return false
	}
	first := t.seats[0].Discards
	if len(first) != 1 || !first[0].IsWind() {
		return false
	}
	for _, s := range t.seats[1:] {
		if len(s.Discards) != 1 || !s.Discards[0].SameKind(first[0]) {
			return false
		}
	}
	return true
}

func (t *Table) fourRiichi() bool {
	for _, s := range t.seats {
		if !s.Riichi {
			return false
		}
	}
	return true
}

// fourKongs 四杠且不是同一人所开
func (t *Table) fourKongs() bool {
	if t.kanCount < 4 {
		return false
	}
	owners := 0
	for _, s := range t.seats {
		if s.hasKong() {
			owners++
		}
	}
	return owners >= 2
}

// Call 响应打出的牌，tile 为零值时表示当前窗口的牌
func (t *Table) Call(seat int, kind core.ClaimKind, tile core.Tile, composition []core.Tile) ([]Event, error) {
	if err := t.respond(seat, kind, tile, composition); err != nil {
		return t.fail(err)
	}
	return t.finish()
}

// Pass 放弃响应
func (t *Table) Pass(seat int) ([]Event, error) {
	return t.Call(seat, core.ClaimPass, core.Tile{}, nil)
}

// ConcealedKong 暗杠
func (t *Table) ConcealedKong(seat int, tile core.Tile) ([]Event, error) {
	if err := t.requireDrawn(seat); err != nil {
		return t.fail(err)
	}
	if err := t.canKong(); err != nil {
		return t.fail(err)
	}
	s := t.seats[seat]
	kind := tile.Kind()
	if core.CountKind(s.Hand, kind) != 4 {
		return t.fail(ErrCannotKong.WithContext("tile", tile.String()))
	}
	if s.Riichi && !riichiKongAllowed(s.Hand, kind) {
		return t.fail(ErrCannotKong.WithContext("reason", "wait would change"))
	}

	var taken []core.Tile
	s.Hand, taken = core.TakeKind(s.Hand, kind, 4)
	core.SortTiles(taken)
	meld := core.Meld{Kind: core.MeldConcealedKong, Tiles: taken, From: -1, Concealed: true}
	s.Melds = append(s.Melds, meld)

	t.kanCount++
	t.interrupt()
	t.emit(EventKongDeclared, seat, MeldData{Meld: meld})
	t.revealDora()
	t.drawReplacement(seat)
	return t.finish()
}

// riichiKongAllowed 立直后暗杠只能杠摸到的牌且不改变听牌
func riichiKongAllowed(hand []core.Tile, kind core.Kind) bool {
	last := len(hand) - 1
	if hand[last].Kind() != kind {
		return false
	}
	before := WaitingTiles(hand[:last])
	rest, _ := core.TakeKind(hand, kind, 4)
	after := WaitingTiles(rest)
	return len(before) > 0 && slices.Equal(before, after)
}

func (t *Table) canKong() error {
	if len(t.deck) == 0 {
		return ErrDeckEmpty
	}
	if !t.canReplace() {
		return ErrNoReplacement
	}
	return nil
}

// AddedKong 加杠，其他座位可抢杠
func (t *Table) AddedKong(seat int, tile core.Tile) ([]Event, error) {
	if err := t.requireDrawn(seat); err != nil {
		return t.fail(err)
	}
	if err := t.canKong(); err != nil {
		return t.fail(err)
	}
	s := t.seats[seat]
	if s.Riichi {
		return t.fail(ErrCannotKong.WithContext("reason", "riichi"))
	}
	kind := tile.Kind()
	mi := slices.IndexFunc(s.Melds, func(m core.Meld) bool {
		return m.Kind == core.MeldPon && m.Base().Kind() == kind
	})
	idx := core.IndexOf(s.Hand, tile)
	if mi < 0 || idx < 0 {
		return t.fail(ErrCannotKong.WithContext("tile", tile.String()))
	}

	added := s.Hand[idx]
	s.Hand = slices.Delete(s.Hand, idx, idx+1)
	core.SortTiles(s.Hand)
	meld := &s.Melds[mi]
	meld.Kind = core.MeldAddedKong
	meld.Tiles = append(slices.Clone(meld.Tiles), added)
	core.SortTiles(meld.Tiles)

	t.justDrew = false
	t.emit(EventKongDeclared, seat, MeldData{Meld: *meld})
	t.addedKong = &pendingKong{seat: seat, tile: added}
	if !t.openWindow(added, seat, true) {
		t.completeAddedKong()
	}
	return t.finish()
}

// completeAddedKong 无人抢杠，加杠成立并摸岭上牌
func (t *Table) completeAddedKong() {
	pk := t.addedKong
	t.addedKong = nil
	t.kanCount++
	t.interrupt()
	t.current = pk.seat
	t.revealDora()
	t.drawReplacement(pk.seat)
}

// revertAddedKong 加杠被抢，副露退回为碰，被抢的牌记入舍牌
func (t *Table) revertAddedKong() {
	pk := t.addedKong
	t.addedKong = nil
	s := t.seats[pk.seat]
	mi := slices.IndexFunc(s.Melds, func(m core.Meld) bool {
		return m.Kind == core.MeldAddedKong && m.Base().SameKind(pk.tile)
	})
	if mi < 0 {
		return
	}
	meld := &s.Melds[mi]
	var robbed core.Tile
	meld.Tiles, robbed, _ = core.RemoveTile(slices.Clone(meld.Tiles), pk.tile)
	meld.Kind = core.MeldPon
	s.Discards = append(s.Discards, robbed)
}

// DeclareRiichi 立直并打出指定的牌
func (t *Table) DeclareRiichi(seat int, tile core.Tile) ([]Event, error) {
	if err := t.requireDrawn(seat); err != nil {
		return t.fail(err)
	}
	s := t.seats[seat]
	switch {
	case s.Riichi:
		return t.fail(ErrCannotRiichi.WithContext("reason", "already riichi"))
	case !s.Concealed():
		return t.fail(ErrCannotRiichi.WithContext("reason", "hand is open"))
	case s.Score < RiichiCost:
		return t.fail(ErrCannotRiichi.WithContext("reason", "not enough points"))
	case len(t.deck) < SeatCount:
		return t.fail(ErrCannotRiichi.WithContext("reason", "too few tiles left"))
	}
	idx := core.IndexOf(s.Hand, tile)
	if idx < 0 {
		return t.fail(ErrTileNotInHand.WithContext("tile", tile.String()))
	}
	rest := slices.Delete(slices.Clone(s.Hand), idx, idx+1)
	if !IsTenpai(rest) {
		return t.fail(ErrCannotRiichi.WithContext("reason", "not tenpai"))
	}

	s.Riichi = true
	s.DoubleRiichi = s.FirstTurn
	s.RiichiTurn = len(s.Discards)
	s.Score -= RiichiCost
	t.riichiSticks++
	t.emit(EventRiichiDeclared, seat, RiichiData{Double: s.DoubleRiichi})

	t.applyDiscard(seat, idx, true)
	if t.phase == PhasePlaying {
		s.Ippatsu = true
	}
	return t.finish()
}

// RiichiCandidates 打出后可以立直的牌
func (t *Table) RiichiCandidates(seat int) []core.Tile {
	if t.requireDrawn(seat) != nil {
		return nil
	}
	s := t.seats[seat]
	if s.Riichi || !s.Concealed() || s.Score < RiichiCost || len(t.deck) < SeatCount {
		return nil
	}
	var out []core.Tile
	seen := make(map[core.Tile]bool)
	for i, tile := range s.Hand {
		if seen[tile] {
			continue
		}
		seen[tile] = true
		rest := slices.Delete(slices.Clone(s.Hand), i, i+1)
		if IsTenpai(rest) {
			out = append(out, tile)
		}
	}
	return out
}

// DeclareWin 自摸，或在响应窗口中荣和/抢杠
func (t *Table) DeclareWin(seat int, kind core.WinKind) ([]Event, error) {
	if kind != core.WinTsumo {
		return t.Call(seat, core.ClaimRon, core.Tile{}, nil)
	}
	if err := t.requireDrawn(seat); err != nil {
		return t.fail(err)
	}
	s := t.seats[seat]
	winTile := s.Hand[len(s.Hand)-1]
	hand := s.Hand[:len(s.Hand)-1]
	if !CanWin(hand, winTile) {
		return t.fail(ErrCannotWin)
	}
	if res, _, ok := t.evaluateWin(seat, winTile, core.WinTsumo); !ok || !res.HasYaku() {
		return t.fail(ErrNoYaku)
	}
	t.settleTsumo(seat, winTile)
	return t.finish()
}

// DeclareNineTerminals 九种九牌
func (t *Table) DeclareNineTerminals(seat int) ([]Event, error) {
	if err := t.requireDrawn(seat); err != nil {
		return t.fail(err)
	}
	if !t.canAbortNineTerminals(seat) {
		return t.fail(ErrCannotAbort)
	}
	t.abortRound(AbortNineTerminals)
	return t.finish()
}

func (t *Table) canAbortNineTerminals(seat int) bool {
	s := t.seats[seat]
	if !s.FirstTurn || t.anyMelds() {
		return false
	}
	return distinctTerminalHonors(s.Hand) >= 9
}

func distinctTerminalHonors(hand []core.Tile) int {
	c := core.Counts(hand)
	n := 0
	for _, k := range terminalHonorKinds {
		if c[k] > 0 {
			n++
		}
	}
	return n
}

// CanTsumo 当前摸到的牌能否自摸和
func (t *Table) CanTsumo(seat int) bool {
	if t.requireDrawn(seat) != nil {
		return false
	}
	s := t.seats[seat]
	winTile := s.Hand[len(s.Hand)-1]
	if !CanWin(s.Hand[:len(s.Hand)-1], winTile) {
		return false
	}
	res, _, ok := t.evaluateWin(seat, winTile, core.WinTsumo)
	return ok && res.HasYaku()
}

// KongCandidates 可暗杠与可加杠的牌种
func (t *Table) KongCandidates(seat int) (concealed, added []core.Kind) {
	if t.requireDrawn(seat) != nil || t.canKong() != nil {
		return nil, nil
	}
	s := t.seats[seat]
	c := core.Counts(s.Hand)
	for k, n := range c {
		kind := core.Kind(k)
		if n == 4 && (!s.Riichi || riichiKongAllowed(s.Hand, kind)) {
			concealed = append(concealed, kind)
		}
	}
	if s.Riichi {
		return concealed, nil
	}
	for _, m := range s.Melds {
		if m.Kind == core.MeldPon && c[m.Base().Kind()] > 0 {
			added = append(added, m.Base().Kind())
		}
	}
	return concealed, added
}
