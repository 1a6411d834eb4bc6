package riichi

import (
	"testing"

	"sudooom.im.mahjong/internal/game/mahjong/core"
)

func yakuNames(res YakuResult) []string {
	names := make([]string, 0, len(res.Yaku))
	for _, y := range res.Yaku {
		names = append(names, y.Name)
	}
	return names
}

func TestEvaluateYaku(t *testing.T) {
	pon := func(s string, from int) core.Meld {
		ts := tiles(s)
		return core.Meld{Kind: core.MeldPon, Tiles: ts, From: from, Called: ts[0]}
	}

	cases := []struct {
		name    string
		ctx     WinContext
		want    []string
		han     int
		yakuman bool
	}{
		{
			name: "立直一发门清自摸平和断幺",
			ctx: WinContext{
				Hand:      tiles("2m 3m 4m 5m 6m 7m 3p 4p 5p 6s 7s 8s 5p 5p"),
				WinTile:   tile("8s"),
				Tsumo:     true,
				Riichi:    true,
				Ippatsu:   true,
				SeatWind:  core.WindSouth,
				RoundWind: core.WindEast,
			},
			want: []string{YakuRiichi, YakuIppatsu, YakuMenzenTsumo, YakuTanyao, YakuPinfu},
			han:  5,
		},
		{
			name: "副露役牌与宝牌",
			ctx: WinContext{
				Hand:      tiles("2m 3m 4m 6p 7p 8p 5s 5s"),
				Melds:     []core.Meld{pon("Chun Chun Chun", 1), pon("3s 3s 3s", 2)},
				WinTile:   tile("8p"),
				Dora:      2,
				AkaDora:   1,
				SeatWind:  core.WindSouth,
				RoundWind: core.WindEast,
			},
			want: []string{YakuChun, YakuDora, YakuAkaDora},
			han:  4,
		},
		{
			name: "里宝牌只在立直时计算",
			ctx: WinContext{
				Hand:      tiles("2m 3m 4m 6p 7p 8p 5s 5s"),
				Melds:     []core.Meld{pon("Chun Chun Chun", 1), pon("3s 3s 3s", 2)},
				WinTile:   tile("8p"),
				UraDora:   3,
				SeatWind:  core.WindSouth,
				RoundWind: core.WindEast,
			},
			want: []string{YakuChun},
			han:  1,
		},
		{
			name: "清一色一气通贯平和",
			ctx: WinContext{
				Hand:      tiles("1p 2p 3p 4p 5p 6p 7p 8p 9p 2p 3p 4p 9p 9p"),
				WinTile:   tile("4p"),
				SeatWind:  core.WindWest,
				RoundWind: core.WindEast,
			},
			want: []string{YakuPinfu, YakuIttsu, YakuChinitsu},
			han:  9,
		},
		{
			name: "双东刻子只算一次",
			ctx: WinContext{
				Hand:      tiles("E E E 2m 3m 4m 6p 7p 8p 3s 4s 5s 9s 9s"),
				WinTile:   tile("3s"),
				Tsumo:     true,
				SeatWind:  core.WindEast,
				RoundWind: core.WindEast,
			},
			want: []string{YakuMenzenTsumo, YakuSeatWind},
			han:  2,
		},
		{
			name: "四暗刻短路其他役满",
			ctx: WinContext{
				Hand:      tiles("1m 1m 1m 9p 9p 9p E E E N N N 1s 1s"),
				WinTile:   tile("1s"),
				Tsumo:     true,
				SeatWind:  core.WindSouth,
				RoundWind: core.WindEast,
			},
			want:    []string{YakuSuuankou},
			han:     YakumanHan,
			yakuman: true,
		},
		{
			name: "荣和完成的刻子不算暗刻",
			ctx: WinContext{
				Hand:      tiles("1m 1m 1m 9p 9p 9p E E E N N N 1s 1s"),
				WinTile:   tile("N"),
				SeatWind:  core.WindSouth,
				RoundWind: core.WindEast,
			},
			want: []string{YakuRoundWind, YakuToitoi, YakuSanankou, YakuHonroutou},
			han:  7,
		},
		{
			name: "大三元",
			ctx: WinContext{
				Hand:      tiles("Chun Chun Chun Hatsu Hatsu Hatsu 2m 3m 4m 5p 5p"),
				Melds:     []core.Meld{pon("Haku Haku Haku", 3)},
				WinTile:   tile("4m"),
				SeatWind:  core.WindSouth,
				RoundWind: core.WindEast,
			},
			want:    []string{YakuDaisangen},
			han:     YakumanHan,
			yakuman: true,
		},
		{
			name: "天和优先",
			ctx: WinContext{
				Hand:      tiles("2m 3m 4m 5m 6m 7m 3p 4p 5p 6s 7s 8s 5p 5p"),
				WinTile:   tile("8s"),
				Tsumo:     true,
				Tenhou:    true,
				SeatWind:  core.WindEast,
				RoundWind: core.WindEast,
			},
			want:    []string{YakuTenhou},
			han:     YakumanHan,
			yakuman: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, ok := EvaluateYaku(c.ctx)
			if !ok {
				t.Fatal("手牌应当能分解")
			}
			got := yakuNames(res)
			if len(got) != len(c.want) {
				t.Fatalf("役期望 %v，实际 %v", c.want, got)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Fatalf("役期望 %v，实际 %v", c.want, got)
				}
			}
			if res.Han != c.han {
				t.Errorf("番数期望 %d，实际 %d", c.han, res.Han)
			}
			if res.Yakuman != c.yakuman {
				t.Errorf("役满标记期望 %v，实际 %v", c.yakuman, res.Yakuman)
			}
		})
	}
}

func TestDoraOnlyIsNotYaku(t *testing.T) {
	res, ok := EvaluateYaku(WinContext{
		Hand:      tiles("1m 1m 1m 2m 3m 4m 5m 6m 7m 7m 8m 9m 5p 5p"),
		WinTile:   tile("7m"),
		Dora:      3,
		SeatWind:  core.WindSouth,
		RoundWind: core.WindEast,
	})
	if !ok {
		t.Fatal("手牌应当能分解")
	}
	if res.HasYaku() {
		t.Errorf("只有宝牌不构成役: %v", yakuNames(res))
	}
	if res.Han != 3 {
		t.Errorf("宝牌番数期望 3，实际 %d", res.Han)
	}
}
