package core

// DeckGenerator 牌山生成器接口
type DeckGenerator interface {
	// GenerateDeck 生成洗好的牌山，最后一张最先被摸到
	GenerateDeck() []Tile
}
