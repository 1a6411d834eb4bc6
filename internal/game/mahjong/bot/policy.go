package bot

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"sudooom.im.mahjong/internal/game/mahjong/core"
	"sudooom.im.mahjong/internal/game/mahjong/riichi"
)

// 牌的保留价值，越低越先打出
const (
	scoreTriplet       = 30
	scorePair          = 15
	scoreRyanmen       = 15
	scoreKanchan       = 10
	scorePenchan       = 8
	scoreIsolatedMid   = 6
	scoreValueHonor    = 5
	scoreIsolatedEdge  = 3
	scoreGuestWind     = 2
	scoreRedFiveBonus  = 5
	windKongPercentage = 50
)

// Action 机器人在自己回合的操作
type Action int

const (
	ActionNone Action = iota
	ActionTsumo
	ActionRiichi
	ActionConcealedKong
)

func (a Action) String() string {
	switch a {
	case ActionTsumo:
		return "tsumo"
	case ActionRiichi:
		return "riichi"
	case ActionConcealedKong:
		return "concealed_kong"
	default:
		return "none"
	}
}

// Decision 自己回合的决策，Tile 为立直打出的牌或暗杠的牌
type Decision struct {
	Action Action
	Tile   core.Tile
}

// Policy 机器人决策，只读取本座位的私有视图
type Policy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPolicy 创建机器人决策，rng 为 nil 时使用按时间播种的随机源
func NewPolicy(rng *rand.Rand) *Policy {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>7))
	}
	return &Policy{rng: rng}
}

func (p *Policy) chance(percent int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(100) < percent
}

// ChooseDiscard 选择要打出的牌；立直后摸切
func (p *Policy) ChooseDiscard(v riichi.HandView) core.Tile {
	hand := v.Hand
	if v.Riichi {
		return hand[len(hand)-1]
	}
	best, bestScore := hand[len(hand)-1], -1
	seen := make(map[core.Tile]bool, len(hand))
	for _, tile := range hand {
		if seen[tile] {
			continue
		}
		seen[tile] = true
		if score := EvaluateTile(tile, hand, v.SeatWind, v.RoundWind); bestScore < 0 || score < bestScore {
			best, bestScore = tile, score
		}
	}
	return best
}

// FallbackDiscard 食替被拒后打出第一张允许的牌
func (p *Policy) FallbackDiscard(v riichi.HandView) core.Tile {
	for _, tile := range v.Hand {
		if !slices.Contains(v.Kuikae, tile.Kind()) {
			return tile
		}
	}
	return v.Hand[len(v.Hand)-1]
}

// EvaluateTile 一张牌在手牌中的保留价值
func EvaluateTile(tile core.Tile, hand []core.Tile, seatWind, roundWind core.Wind) int {
	kind := tile.Kind()
	same := core.CountKind(hand, kind)

	score := 0
	switch {
	case same >= 3:
		score += scoreTriplet
	case same == 2:
		score += scorePair
	}

	if tile.IsNumeral() {
		if shape := bestShape(tile, hand); shape > 0 {
			score += shape
		} else if tile.IsTerminal() {
			score += scoreIsolatedEdge
		} else {
			score += scoreIsolatedMid
		}
	} else if same == 1 {
		if isValueHonor(tile, seatWind, roundWind) {
			score += scoreValueHonor
		} else {
			score += scoreGuestWind
		}
	}

	if tile.Red {
		score += scoreRedFiveBonus
	}
	return score
}

// bestShape 与同花色其他牌组成的最好搭子
func bestShape(tile core.Tile, hand []core.Tile) int {
	best := 0
	for _, other := range hand {
		if other.Suit != tile.Suit || other.SameKind(tile) {
			continue
		}
		var shape int
		switch diff := abs(int(other.Rank) - int(tile.Rank)); diff {
		case 1:
			lo, hi := min(other.Rank, tile.Rank), max(other.Rank, tile.Rank)
			if lo == 1 || hi == 9 {
				shape = scorePenchan
			} else {
				shape = scoreRyanmen
			}
		case 2:
			shape = scoreKanchan
		}
		best = max(best, shape)
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ChooseClaim 响应别人打出的牌：能和就和，役牌碰杠，不吃
func (p *Policy) ChooseClaim(v riichi.HandView) core.ClaimKind {
	if v.Claim == nil || v.ClaimTile == nil {
		return core.ClaimPass
	}
	opts, tile := *v.Claim, *v.ClaimTile
	if opts.Ron {
		return core.ClaimRon
	}
	if opts.Kong {
		if tile.IsDragon() {
			return core.ClaimKong
		}
		if tile.IsWind() && p.chance(windKongPercentage) {
			return core.ClaimKong
		}
	}
	if opts.Pon && isValueHonor(tile, v.SeatWind, v.RoundWind) {
		return core.ClaimPon
	}
	return core.ClaimPass
}

func isValueHonor(tile core.Tile, seatWind, roundWind core.Wind) bool {
	return tile.IsDragon() || tile.SameKind(seatWind.Tile()) || tile.SameKind(roundWind.Tile())
}

// ChooseSelfAction 摸牌后的决策：自摸、立直、三元牌暗杠
func (p *Policy) ChooseSelfAction(v riichi.HandView) Decision {
	a := v.Actions
	switch {
	case a.Tsumo:
		return Decision{Action: ActionTsumo}
	case len(a.Riichi) > 0:
		return Decision{Action: ActionRiichi, Tile: a.Riichi[0]}
	}
	for _, k := range a.ConcealedKong {
		if tile := k.Tile(); tile.IsDragon() {
			return Decision{Action: ActionConcealedKong, Tile: tile}
		}
	}
	return Decision{}
}
