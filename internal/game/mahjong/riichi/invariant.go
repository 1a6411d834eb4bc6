package riichi

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"sudooom.im.mahjong/internal/game/mahjong/core"
)

var supply = func() map[core.Tile]int {
	m := make(map[core.Tile]int)
	for _, t := range core.NewSupply() {
		m[t]++
	}
	return m
}()

// verify 检查牌数守恒、手牌张数与行动座位
func (t *Table) verify() error {
	if t.phase == PhaseWaiting {
		return nil
	}

	seen := make(map[core.Tile]int, len(supply))
	add := func(tiles []core.Tile) {
		for _, tile := range tiles {
			seen[tile]++
		}
	}
	add(t.deck)
	add(t.deadWall)
	for _, s := range t.seats {
		add(s.Hand)
		add(s.Discards)
		for _, m := range s.Melds {
			add(m.Tiles)
		}
	}
	for tile, n := range seen {
		if supply[tile] != n {
			return fmt.Errorf("tile %s counted %d times, supply %d", tile, n, supply[tile])
		}
	}
	for tile, n := range supply {
		if seen[tile] != n {
			return fmt.Errorf("tile %s counted %d times, supply %d", tile, seen[tile], n)
		}
	}

	if t.phase != PhasePlaying {
		return nil
	}
	if t.current < 0 || t.current >= SeatCount {
		return fmt.Errorf("current seat %d out of range", t.current)
	}
	for seat, s := range t.seats {
		n := s.tileCount()
		if n != handSize && n != handSize+1 {
			return fmt.Errorf("seat %d holds %d tiles", seat, n)
		}
		if n == handSize+1 && (seat != t.current || t.window != nil) {
			return fmt.Errorf("seat %d holds %d tiles out of turn", seat, n)
		}
	}
	return nil
}

// abortOnViolation 不变量被破坏时中止本局并附带现场快照
func (t *Table) abortOnViolation(cause error) error {
	dump := t.DumpYAML()
	t.events = nil
	if t.phase == PhasePlaying {
		t.abortRound(AbortInvariant)
	}
	return ErrInvariantBroken.WithCause(cause).WithContext("dump", dump)
}

type seatDump struct {
	Hand     []core.Tile   `yaml:"hand"`
	Discards []core.Tile   `yaml:"discards"`
	Melds    [][]core.Tile `yaml:"melds,omitempty"`
	Score    int           `yaml:"score"`
	Riichi   bool          `yaml:"riichi,omitempty"`
}

type tableDump struct {
	Phase          Phase       `yaml:"phase"`
	RoundWind      core.Wind   `yaml:"round_wind"`
	Dealer         int         `yaml:"dealer"`
	Honba          int         `yaml:"honba"`
	Current        int         `yaml:"current"`
	Window         int32       `yaml:"claim_window,omitempty"`
	Deck           []core.Tile `yaml:"deck"`
	DeadWall       []core.Tile `yaml:"dead_wall"`
	RinshanTaken   int         `yaml:"rinshan_taken"`
	DoraIndicators []core.Tile `yaml:"dora_indicators"`
	Seats          []seatDump  `yaml:"seats"`
}

// DumpYAML 输出完整牌桌状态（含暗牌），仅用于诊断日志
func (t *Table) DumpYAML() string {
	d := tableDump{
		Phase:          t.phase,
		RoundWind:      t.roundWind,
		Dealer:         t.dealer,
		Honba:          t.honba,
		Current:        t.current,
		Window:         t.ClaimNumber(),
		Deck:           t.deck,
		DeadWall:       t.deadWall,
		RinshanTaken:   t.rinshanTaken,
		DoraIndicators: t.doraIndicators,
	}
	for _, s := range t.seats {
		sd := seatDump{Hand: s.Hand, Discards: s.Discards, Score: s.Score, Riichi: s.Riichi}
		for _, m := range s.Melds {
			sd.Melds = append(sd.Melds, m.Tiles)
		}
		d.Seats = append(d.Seats, sd)
	}
	out, err := yaml.Marshal(d)
	if err != nil {
		return err.Error()
	}
	return string(out)
}
