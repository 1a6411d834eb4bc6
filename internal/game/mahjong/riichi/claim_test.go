package riichi

import (
	"errors"
	"slices"
	"testing"

	"sudooom.im.mahjong/internal/game/mahjong/core"
)

func TestPonBeatsChi(t *testing.T) {
	tb := startScripted(t, scriptedDeck{
		hands: [SeatCount]string{
			"3m 9m 1p 4p 7p 2s 5s 8s E S W N Chun Hatsu",
			"1m 2m 4m 2p 5p 8p 3s 6s 9s S W Haku Haku",
			"3m 3m 6m 3p 6p 9p 1s 4s 7s E N Hatsu Chun",
			"5m 7m 8m 1p 2p 3p 4s 5s 6s 7s 8s 9s Haku",
		},
	})

	events := mustAct(t, tb.Discard(0, tile("3m"), false))
	if !tb.WaitingForAction() {
		t.Fatal("应当打开响应窗口")
	}
	offered := map[int]bool{}
	for _, e := range events {
		if e.Kind == EventClaimOptions {
			offered[e.To] = true
		}
	}
	if !offered[1] || !offered[2] || offered[3] {
		t.Fatalf("响应选项发送对象错误: %v", offered)
	}
	for _, seat := range []int{0, 3} {
		if _, err := tb.Call(seat, core.ClaimRon, core.Tile{}, nil); !errors.Is(err, ErrClaimNotAllowed) {
			t.Errorf("座位 %d 不在响应窗口中，荣和期望 ErrClaimNotAllowed，实际 %v", seat, err)
		}
	}

	mustAct(t, tb.Call(1, core.ClaimChi, tile("3m"), tiles("1m 2m")))
	if !tb.WaitingForAction() {
		t.Fatal("碰的座位尚未响应，窗口不应关闭")
	}
	events = mustAct(t, tb.Call(2, core.ClaimPon, core.Tile{}, nil))

	closed, ok := findEvent(events, EventClaimWindowClosed)
	if !ok || closed.Data.(WindowClosedData).Outcome != "pon" {
		t.Fatalf("期望碰成立，实际 %+v", closed)
	}
	if len(tb.seats[2].Melds) != 1 || tb.seats[2].Melds[0].Kind != core.MeldPon {
		t.Errorf("座位 2 应有一组碰: %+v", tb.seats[2].Melds)
	}
	if len(tb.seats[1].Melds) != 0 {
		t.Error("吃不应成立")
	}
	if tb.Current() != 2 || len(tb.seats[0].Discards) != 0 {
		t.Errorf("碰后应轮到座位 2 且舍牌被取走，current=%d", tb.Current())
	}
	if _, err := tb.Call(1, core.ClaimChi, core.Tile{}, nil); !errors.Is(err, ErrNoClaimWindow) {
		t.Errorf("窗口关闭后响应期望 ErrNoClaimWindow，实际 %v", err)
	}
}

func TestKuikae(t *testing.T) {
	tb := startScripted(t, scriptedDeck{
		hands: [SeatCount]string{
			"3m 9m 1p 4p 7p 2s 5s 8s E S W N Chun Hatsu",
			"4m 5m 3m 6m 9p 9p 1s 4s 7s S W Haku Haku",
			"1m 2m 7m 8m 2p 5p 8p 3s 6s 9s E Chun Hatsu",
			"1m 2m 7m 8m 3p 6p 9p 2s 5s 8s N Haku Chun",
		},
	})
	mustAct(t, tb.Discard(0, tile("3m"), false))
	if _, err := tb.Call(1, core.ClaimChi, core.Tile{}, tiles("4m 6m")); !errors.Is(err, ErrInvalidComposition) {
		t.Errorf("不成顺子的组合期望 ErrInvalidComposition，实际 %v", err)
	}
	mustAct(t, tb.Call(1, core.ClaimChi, core.Tile{}, tiles("4m 5m")))

	if tb.Current() != 1 || tb.NeedsDraw() {
		t.Fatal("吃后应由座位 1 直接打牌")
	}
	for _, s := range []string{"3m", "6m"} {
		if _, err := tb.Discard(1, tile(s), false); !errors.Is(err, ErrKuikae) {
			t.Errorf("打出 %s 期望 ErrKuikae，实际 %v", s, err)
		}
	}
	mustAct(t, tb.Discard(1, tile("9p"), false))
	if len(tb.seats[1].kuikae) != 0 {
		t.Error("打牌后食替限制应解除")
	}
}

func TestKuikaeKinds(t *testing.T) {
	if got := kuikaeKinds(tile("3m"), tiles("3m 4m 5m")); !slices.Equal(got, kinds("3m 6m")) {
		t.Errorf("期望 [3m 6m]，实际 %v", got)
	}
	if got := kuikaeKinds(tile("9m"), tiles("7m 8m 9m")); !slices.Equal(got, kinds("9m 6m")) {
		t.Errorf("期望 [9m 6m]，实际 %v", got)
	}
	if got := kuikaeKinds(tile("4p"), tiles("3p 4p 5p")); !slices.Equal(got, kinds("4p")) {
		t.Errorf("嵌张吃只禁止被吃的牌，实际 %v", got)
	}
	if got := kuikaeKinds(tile("7s"), tiles("7s 8s 9s")); !slices.Equal(got, kinds("7s")) {
		t.Errorf("边张吃只禁止被吃的牌，实际 %v", got)
	}
}

func multiRonDeck(third string) scriptedDeck {
	return scriptedDeck{
		hands: [SeatCount]string{
			"4p 1m 9m 1s 9s 1p 9p E S W N Chun Hatsu Haku",
			"2m 3m 4m 5m 6m 7m 3s 4s 5s 6s 6s 2p 3p",
			"2m 3m 4m 6m 7m 8m 3s 4s 5s 7s 7s 5p 6p",
			third,
		},
		dora: "E",
	}
}

func TestMultiRon(t *testing.T) {
	tb := startScripted(t, multiRonDeck("5m 6m 7m 2s 3s 4s 6s 7s 8s 8p 8p 9p 9p"))

	mustAct(t, tb.Discard(0, tile("4p"), false))
	mustAct(t, tb.Call(1, core.ClaimRon, tile("4p"), nil))
	if !tb.WaitingForAction() {
		t.Fatal("另一家可以荣和，窗口不应关闭")
	}
	events := mustAct(t, tb.DeclareWin(2, core.WinRon))

	if _, ok := findEvent(events, EventWin); !ok {
		t.Fatal("缺少 WIN 事件")
	}
	res := tb.Result()
	if res.Outcome != OutcomeWin || len(res.Wins) != 2 {
		t.Fatalf("期望两家和牌，实际 %+v", res)
	}
	if res.Wins[0].Seat != 1 || res.Wins[1].Seat != 2 {
		t.Errorf("和牌顺序应按距放铳者远近: %d, %d", res.Wins[0].Seat, res.Wins[1].Seat)
	}
	for _, w := range res.Wins {
		if w.Points != 2000 || w.Han != 2 || w.Fu != 30 {
			t.Errorf("座位 %d 期望 2番30符 2000 点，实际 %d番%d符 %d", w.Seat, w.Han, w.Fu, w.Points)
		}
		if w.From != 0 {
			t.Errorf("放铳者应为 0，实际 %d", w.From)
		}
	}
	want := [SeatCount]int{21000, 27000, 27000, 25000}
	if res.Scores != want {
		t.Errorf("点数期望 %v，实际 %v", want, res.Scores)
	}
	if res.Renchan || tb.Honba() != 0 {
		t.Error("子家和牌不连庄")
	}

	mustAct(t, tb.StartNextRound())
	if tb.Dealer() != 1 || tb.RoundWind() != core.WindEast {
		t.Errorf("应轮庄到座位 1，实际 dealer=%d", tb.Dealer())
	}
}

func TestTripleRonAborts(t *testing.T) {
	tb := startScripted(t, multiRonDeck("5m 6m 7m 2s 3s 4s 6s 7s 8s 8p 8p 4p 4p"))

	mustAct(t, tb.Discard(0, tile("4p"), false))
	mustAct(t, tb.Call(1, core.ClaimRon, core.Tile{}, nil))
	mustAct(t, tb.Call(2, core.ClaimRon, core.Tile{}, nil))
	if !tb.WaitingForAction() {
		t.Fatal("第三家尚未响应")
	}
	events := mustAct(t, tb.Call(3, core.ClaimRon, core.Tile{}, nil))

	if _, ok := findEvent(events, EventAbortiveDraw); !ok {
		t.Fatal("缺少 ABORTIVE_DRAW 事件")
	}
	res := tb.Result()
	if res.Outcome != OutcomeAbortiveDraw || res.Reason != AbortTripleRon {
		t.Fatalf("期望三家和流局，实际 %+v", res)
	}
	for seat, score := range res.Scores {
		if score != StartingScore {
			t.Errorf("座位 %d 点数不应变化，实际 %d", seat, score)
		}
	}
	if !res.Renchan || tb.Honba() != 1 {
		t.Errorf("途中流局应连庄并加一本场，renchan=%v honba=%d", res.Renchan, tb.Honba())
	}
}
