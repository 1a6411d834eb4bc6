package core

import (
	"encoding/json"
	"testing"
)

func TestNewSupply(t *testing.T) {
	supply := NewSupply()
	if len(supply) != 136 {
		t.Fatalf("期望 136 张牌，实际 %d", len(supply))
	}

	counts := Counts(supply)
	for k, n := range counts {
		if n != 4 {
			t.Errorf("牌种 %s 期望 4 张，实际 %d", Kind(k), n)
		}
	}

	red := 0
	for _, tile := range supply {
		if tile.Red {
			red++
			if tile.Rank != 5 || tile.IsHonor() {
				t.Errorf("赤牌只能是数牌五，实际 %v", tile)
			}
		}
	}
	if red != 3 {
		t.Errorf("期望 3 张赤牌，实际 %d", red)
	}
}

func TestTileNext(t *testing.T) {
	cases := []struct {
		indicator string
		want      string
	}{
		{"1m", "2m"},
		{"9m", "1m"},
		{"0p", "6p"},
		{"9s", "1s"},
		{"E", "S"},
		{"N", "E"},
		{"Chun", "Hatsu"},
		{"Hatsu", "Haku"},
		{"Haku", "Chun"},
	}
	for _, c := range cases {
		ind, err := ParseTile(c.indicator)
		if err != nil {
			t.Fatalf("解析 %s 失败: %v", c.indicator, err)
		}
		if got := ind.Next().String(); got != c.want {
			t.Errorf("%s 的宝牌期望 %s，实际 %s", c.indicator, c.want, got)
		}
	}
}

func TestTilePredicates(t *testing.T) {
	one := NewTile(SuitMan, 1)
	five := RedFive(SuitSou)
	east := WindEast.Tile()
	haku := NewTile(SuitHonor, HonorHaku)

	if !one.IsTerminal() || !one.IsTerminalOrHonor() || one.IsHonor() {
		t.Errorf("1m 判定错误")
	}
	if five.IsTerminalOrHonor() || !five.IsNumeral() {
		t.Errorf("赤五判定错误")
	}
	if five.Normalize().Red || !five.SameKind(NewTile(SuitSou, 5)) {
		t.Errorf("赤五标准化错误")
	}
	if !east.IsWind() || east.IsDragon() || east.IsTerminal() {
		t.Errorf("东判定错误")
	}
	if !haku.IsDragon() || !haku.IsTerminalOrHonor() {
		t.Errorf("白判定错误")
	}
}

func TestParseAndKind(t *testing.T) {
	for k := Kind(0); k < NumKinds; k++ {
		tile := k.Tile()
		parsed, err := ParseTile(tile.String())
		if err != nil {
			t.Fatalf("解析 %s 失败: %v", tile, err)
		}
		if parsed != tile || parsed.Kind() != k {
			t.Errorf("牌种 %d 往返不一致: %v", k, parsed)
		}
	}

	if _, err := ParseTile("xx"); err == nil {
		t.Errorf("非法牌应解析失败")
	}
	red, err := ParseTile("0p")
	if err != nil || !red.Red || red.Rank != 5 || red.Suit != SuitPin {
		t.Errorf("赤五筒解析错误: %v %v", red, err)
	}
}

func TestTileJSON(t *testing.T) {
	hand := MustParseTiles("1m 0s Chun")
	data, err := json.Marshal(hand)
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	if string(data) != `["1m","0s","Chun"]` {
		t.Errorf("序列化结果错误: %s", data)
	}

	var back []Tile
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}
	for i := range hand {
		if back[i] != hand[i] {
			t.Errorf("第 %d 张期望 %v，实际 %v", i, hand[i], back[i])
		}
	}
}

func TestSortAndRemove(t *testing.T) {
	tiles := MustParseTiles("Chun 0m 5m 1p 9s 1m")
	SortTiles(tiles)
	want := "1m 5m 0m 9s 1p Chun"
	got := ""
	for i, tile := range tiles {
		if i > 0 {
			got += " "
		}
		got += tile.String()
	}
	if got != want {
		t.Errorf("排序期望 %s，实际 %s", want, got)
	}

	rest, removed, ok := RemoveTile(tiles, RedFive(SuitMan))
	if !ok || !removed.Red || len(rest) != 5 {
		t.Errorf("应精确移除赤五: %v %v", removed, ok)
	}

	rest, removed, ok = RemoveTile(rest, NewTile(SuitMan, 5))
	if !ok || removed.Red || len(rest) != 4 {
		t.Errorf("应移除普通五: %v %v", removed, ok)
	}

	if _, _, ok := RemoveTile(rest, NewTile(SuitMan, 5)); ok {
		t.Errorf("不存在的牌不应被移除")
	}
}

func TestTakeKindAndContains(t *testing.T) {
	tiles := MustParseTiles("5p 5p 0p 7s")
	rest, taken := TakeKind(tiles, NewTile(SuitPin, 5).Kind(), 2)
	if len(taken) != 2 || len(rest) != 2 {
		t.Fatalf("期望取出 2 张，实际 %d", len(taken))
	}
	if taken[0].Red || taken[1].Red {
		t.Errorf("应先取普通牌")
	}
	if !ContainsTiles(tiles, MustParseTiles("5p 5p 5p")) {
		t.Errorf("应包含三张五筒")
	}
	if ContainsTiles(tiles, MustParseTiles("7s 7s")) {
		t.Errorf("不应包含两张七条")
	}
	if !IsSequence(MustParseTiles("3s 4s 0s")) || IsSequence(MustParseTiles("E S W")) {
		t.Errorf("顺子判定错误")
	}
}
