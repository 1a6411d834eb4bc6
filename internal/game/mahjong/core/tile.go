package core

import (
	"fmt"
	"sort"
	"strings"
)

// Suit 花色
type Suit int8

const (
	SuitMan   Suit = iota // 万
	SuitSou               // 条
	SuitPin               // 筒
	SuitHonor             // 字
)

// String 返回花色的字符串表示
func (s Suit) String() string {
	switch s {
	case SuitMan:
		return "m"
	case SuitSou:
		return "s"
	case SuitPin:
		return "p"
	case SuitHonor:
		return "z"
	default:
		return "?"
	}
}

// 字牌点数
const (
	HonorEast int8 = iota + 1
	HonorSouth
	HonorWest
	HonorNorth
	HonorChun  // 中
	HonorHatsu // 发
	HonorHaku  // 白
)

var honorNames = [...]string{"", "E", "S", "W", "N", "Chun", "Hatsu", "Haku"}

// NumKinds 牌种数量
const NumKinds = 34

// Kind 牌种 (0-33)，忽略赤宝牌标记
type Kind int8

// Tile 麻将牌，值类型
type Tile struct {
	Suit Suit
	Rank int8
	Red  bool
}

// NewTile 创建普通牌
func NewTile(suit Suit, rank int8) Tile {
	return Tile{Suit: suit, Rank: rank}
}

// RedFive 创建赤五
func RedFive(suit Suit) Tile {
	return Tile{Suit: suit, Rank: 5, Red: true}
}

// Kind 返回牌种
func (t Tile) Kind() Kind {
	return Kind(int8(t.Suit)*9 + t.Rank - 1)
}

// Normalize 赤牌转普通牌
func (t Tile) Normalize() Tile {
	t.Red = false
	return t
}

// SameKind 忽略赤宝牌比较
func (t Tile) SameKind(other Tile) bool {
	return t.Suit == other.Suit && t.Rank == other.Rank
}

func (t Tile) IsNumeral() bool { return t.Suit != SuitHonor }
func (t Tile) IsHonor() bool   { return t.Suit == SuitHonor }

// IsTerminal 老头牌 (1/9)
func (t Tile) IsTerminal() bool {
	return t.IsNumeral() && (t.Rank == 1 || t.Rank == 9)
}

// IsTerminalOrHonor 幺九牌
func (t Tile) IsTerminalOrHonor() bool {
	return t.IsHonor() || t.IsTerminal()
}

func (t Tile) IsWind() bool   { return t.IsHonor() && t.Rank <= HonorNorth }
func (t Tile) IsDragon() bool { return t.IsHonor() && t.Rank >= HonorChun }

// Next 宝牌指示牌对应的宝牌
func (t Tile) Next() Tile {
	n := Tile{Suit: t.Suit}
	switch {
	case t.IsNumeral():
		n.Rank = t.Rank%9 + 1
	case t.IsWind():
		n.Rank = t.Rank%4 + 1
	default:
		n.Rank = (t.Rank-HonorChun+1)%3 + HonorChun
	}
	return n
}

// String 文本表示: 1m..9m, 0m 为赤五, 字牌 E S W N Chun Hatsu Haku
func (t Tile) String() string {
	if t.IsHonor() {
		if t.Rank < 1 || int(t.Rank) >= len(honorNames) {
			return "?"
		}
		return honorNames[t.Rank]
	}
	if t.Red {
		return "0" + t.Suit.String()
	}
	return fmt.Sprintf("%d%s", t.Rank, t.Suit)
}

func (t Tile) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tile) UnmarshalText(text []byte) error {
	parsed, err := ParseTile(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTile 解析文本表示
func ParseTile(s string) (Tile, error) {
	s = strings.TrimSpace(s)
	for rank := 1; rank < len(honorNames); rank++ {
		if strings.EqualFold(s, honorNames[rank]) {
			return Tile{Suit: SuitHonor, Rank: int8(rank)}, nil
		}
	}
	if len(s) != 2 || s[0] < '0' || s[0] > '9' {
		return Tile{}, fmt.Errorf("invalid tile %q", s)
	}
	var suit Suit
	switch s[1] {
	case 'm':
		suit = SuitMan
	case 's':
		suit = SuitSou
	case 'p':
		suit = SuitPin
	case 'z':
		rank := int8(s[0] - '0')
		if rank < 1 || rank > HonorHaku {
			return Tile{}, fmt.Errorf("invalid tile %q", s)
		}
		return Tile{Suit: SuitHonor, Rank: rank}, nil
	default:
		return Tile{}, fmt.Errorf("invalid tile %q", s)
	}
	if s[0] == '0' {
		return RedFive(suit), nil
	}
	return Tile{Suit: suit, Rank: int8(s[0] - '0')}, nil
}

// MustParseTiles 解析空格分隔的牌，主要用于测试
func MustParseTiles(s string) []Tile {
	fields := strings.Fields(s)
	tiles := make([]Tile, 0, len(fields))
	for _, f := range fields {
		t, err := ParseTile(f)
		if err != nil {
			panic(err)
		}
		tiles = append(tiles, t)
	}
	return tiles
}

// Tile 返回牌种对应的普通牌
func (k Kind) Tile() Tile {
	return Tile{Suit: Suit(k / 9), Rank: int8(k%9) + 1}
}

func (k Kind) String() string { return k.Tile().String() }

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// NewSupply 生成136张牌，每种数牌的五含一张赤牌
func NewSupply() []Tile {
	tiles := make([]Tile, 0, 136)
	for suit := SuitMan; suit <= SuitPin; suit++ {
		for rank := int8(1); rank <= 9; rank++ {
			for i := 0; i < 4; i++ {
				tiles = append(tiles, Tile{Suit: suit, Rank: rank, Red: rank == 5 && i == 0})
			}
		}
	}
	for rank := HonorEast; rank <= HonorHaku; rank++ {
		for i := 0; i < 4; i++ {
			tiles = append(tiles, Tile{Suit: SuitHonor, Rank: rank})
		}
	}
	return tiles
}

// SortTiles 对牌进行排序，同种牌普通牌在前
func SortTiles(tiles []Tile) {
	sort.SliceStable(tiles, func(i, j int) bool {
		if tiles[i].Kind() != tiles[j].Kind() {
			return tiles[i].Kind() < tiles[j].Kind()
		}
		return !tiles[i].Red && tiles[j].Red
	})
}

// Counts 统计各牌种数量
func Counts(tiles []Tile) [NumKinds]int {
	var c [NumKinds]int
	for _, t := range tiles {
		c[t.Kind()]++
	}
	return c
}

// CountKind 统计某牌种的数量
func CountKind(tiles []Tile, kind Kind) int {
	n := 0
	for _, t := range tiles {
		if t.Kind() == kind {
			n++
		}
	}
	return n
}

// IndexOf 查找牌，先精确匹配再按牌种匹配
func IndexOf(tiles []Tile, target Tile) int {
	fallback := -1
	for i, t := range tiles {
		if t == target {
			return i
		}
		if fallback < 0 && t.SameKind(target) {
			fallback = i
		}
	}
	return fallback
}

// RemoveTile 从牌组中移除一张牌，返回新切片和实际移除的牌
func RemoveTile(tiles []Tile, target Tile) ([]Tile, Tile, bool) {
	i := IndexOf(tiles, target)
	if i < 0 {
		return tiles, Tile{}, false
	}
	removed := tiles[i]
	out := make([]Tile, 0, len(tiles)-1)
	out = append(out, tiles[:i]...)
	out = append(out, tiles[i+1:]...)
	return out, removed, true
}

// TakeKind 按牌种顺序取出n张
func TakeKind(tiles []Tile, kind Kind, n int) (rest []Tile, taken []Tile) {
	rest = make([]Tile, 0, len(tiles))
	for _, t := range tiles {
		if len(taken) < n && t.Kind() == kind {
			taken = append(taken, t)
			continue
		}
		rest = append(rest, t)
	}
	return rest, taken
}

// ContainsTiles 检查牌组是否包含多张牌（按牌种）
func ContainsTiles(tiles []Tile, targets []Tile) bool {
	counts := Counts(tiles)
	for _, t := range targets {
		counts[t.Kind()]--
		if counts[t.Kind()] < 0 {
			return false
		}
	}
	return true
}

// CloneTiles 克隆牌组
func CloneTiles(tiles []Tile) []Tile {
	result := make([]Tile, len(tiles))
	copy(result, tiles)
	return result
}

// IsSequence 检查是否为顺子
func IsSequence(tiles []Tile) bool {
	if len(tiles) != 3 || !tiles[0].IsNumeral() {
		return false
	}
	if tiles[0].Suit != tiles[1].Suit || tiles[1].Suit != tiles[2].Suit {
		return false
	}
	sorted := CloneTiles(tiles)
	SortTiles(sorted)
	return sorted[1].Rank == sorted[0].Rank+1 && sorted[2].Rank == sorted[1].Rank+1
}
