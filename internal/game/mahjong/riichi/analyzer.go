package riichi

import "sudooom.im.mahjong/internal/game/mahjong/core"

// counts 按牌种计数，值传递，递归过程中不会被共享修改
type counts = [core.NumKinds]int

// SetKind 面子类型
type SetKind int8

const (
	SetTriplet SetKind = iota // 刻子
	SetRun                    // 顺子
)

// Set 门内面子，顺子以最小的牌为代表
type Set struct {
	Kind SetKind   `json:"kind"`
	Base core.Kind `json:"base"`
}

// Shape 和牌形
type Shape int8

const (
	ShapeStandard        Shape = iota // 四面子一雀头
	ShapeSevenPairs                   // 七对子
	ShapeThirteenOrphans              // 国士无双
)

// Structure 手牌分解结果
type Structure struct {
	Shape Shape       `json:"shape"`
	Pair  core.Kind   `json:"pair"`
	Sets  []Set       `json:"sets,omitempty"`
	Pairs []core.Kind `json:"pairs,omitempty"`
}

var terminalHonorKinds = func() []core.Kind {
	var kinds []core.Kind
	for k := core.Kind(0); k < core.NumKinds; k++ {
		if k.Tile().IsTerminalOrHonor() {
			kinds = append(kinds, k)
		}
	}
	return kinds
}()

// CanWin 判断门内手牌加一张牌是否和牌
//
// 七对子与国士无双要求门内 14 张；一般形接受任意 3n+2 张，副露后门内张数相应减少。
func CanWin(hand []core.Tile, extra core.Tile) bool {
	c := core.Counts(hand)
	c[extra.Kind()]++
	return canWinCounts(c, len(hand)+1)
}

func canWinCounts(c counts, n int) bool {
	if n%3 != 2 {
		return false
	}
	if n == 14 && (isSevenPairs(c) || isThirteenOrphans(c)) {
		return true
	}
	_, ok := decomposeStandard(c)
	return ok
}

// WaitingTiles 听牌的牌种，手牌张数须为 3n+1
func WaitingTiles(hand []core.Tile) []core.Kind {
	if len(hand)%3 != 1 {
		return nil
	}
	c := core.Counts(hand)
	var waits []core.Kind
	for k := core.Kind(0); k < core.NumKinds; k++ {
		c[k]++
		if canWinCounts(c, len(hand)+1) {
			waits = append(waits, k)
		}
		c[k]--
	}
	return waits
}

// IsTenpai 是否听牌
func IsTenpai(hand []core.Tile) bool {
	return len(WaitingTiles(hand)) > 0
}

// Decompose 分解已和牌的门内手牌，优先一般形，其次七对子、国士无双
func Decompose(hand []core.Tile) (Structure, bool) {
	c := core.Counts(hand)
	if len(hand)%3 != 2 {
		return Structure{}, false
	}
	if st, ok := decomposeStandard(c); ok {
		return st, true
	}
	if len(hand) != 14 {
		return Structure{}, false
	}
	if isSevenPairs(c) {
		st := Structure{Shape: ShapeSevenPairs}
		for k, n := range c {
			if n == 2 {
				st.Pairs = append(st.Pairs, core.Kind(k))
			}
		}
		return st, true
	}
	if isThirteenOrphans(c) {
		st := Structure{Shape: ShapeThirteenOrphans}
		for _, k := range terminalHonorKinds {
			if c[k] == 2 {
				st.Pair = k
			}
		}
		return st, true
	}
	return Structure{}, false
}

func decomposeStandard(c counts) (Structure, bool) {
	for k := core.Kind(0); k < core.NumKinds; k++ {
		if c[k] < 2 {
			continue
		}
		rest := c
		rest[k] -= 2
		if sets, ok := extractSets(rest, make([]Set, 0, 4)); ok {
			return Structure{Shape: ShapeStandard, Pair: k, Sets: sets}, true
		}
	}
	return Structure{}, false
}

// extractSets 从最小的牌开始，先试刻子再试顺子
func extractSets(c counts, acc []Set) ([]Set, bool) {
	first := -1
	for k, n := range c {
		if n > 0 {
			first = k
			break
		}
	}
	if first < 0 {
		return acc, true
	}
	k := core.Kind(first)

	if c[k] >= 3 {
		rest := c
		rest[k] -= 3
		if sets, ok := extractSets(rest, append(acc, Set{Kind: SetTriplet, Base: k})); ok {
			return sets, true
		}
	}

	tile := k.Tile()
	if tile.IsNumeral() && tile.Rank <= 7 && c[k+1] > 0 && c[k+2] > 0 {
		rest := c
		rest[k]--
		rest[k+1]--
		rest[k+2]--
		if sets, ok := extractSets(rest, append(acc, Set{Kind: SetRun, Base: k})); ok {
			return sets, true
		}
	}
	return nil, false
}

func isSevenPairs(c counts) bool {
	pairs := 0
	for _, n := range c {
		switch n {
		case 0:
		case 2:
			pairs++
		default:
			return false
		}
	}
	return pairs == 7
}

func isThirteenOrphans(c counts) bool {
	total := 0
	for k, n := range c {
		if n == 0 {
			continue
		}
		if !core.Kind(k).Tile().IsTerminalOrHonor() {
			return false
		}
		total += n
	}
	for _, k := range terminalHonorKinds {
		if c[k] == 0 {
			return false
		}
	}
	return total == 14
}
