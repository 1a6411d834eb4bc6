package riichi

import (
	"math/rand/v2"
	"time"

	"sudooom.im.mahjong/internal/game/mahjong/core"
)

// ShuffledDeck 随机洗牌的牌山生成器，非并发安全，每张牌桌独占一个
type ShuffledDeck struct {
	rng *rand.Rand
}

// NewShuffledDeck 创建牌山生成器，rng 为 nil 时按时间播种
func NewShuffledDeck(rng *rand.Rand) *ShuffledDeck {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>17))
	}
	return &ShuffledDeck{rng: rng}
}

// GenerateDeck 生成洗好的136张牌
func (d *ShuffledDeck) GenerateDeck() []core.Tile {
	tiles := core.NewSupply()
	d.rng.Shuffle(len(tiles), func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})
	return tiles
}
