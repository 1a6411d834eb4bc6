package riichi

import "sudooom.im.mahjong/internal/game/mahjong/core"

// 役种名称
const (
	YakuRiichi         = "riichi"
	YakuDoubleRiichi   = "double_riichi"
	YakuIppatsu        = "ippatsu"
	YakuMenzenTsumo    = "menzen_tsumo"
	YakuRinshan        = "rinshan_kaihou"
	YakuChankan        = "chankan"
	YakuHaitei         = "haitei"
	YakuHoutei         = "houtei"
	YakuChiitoitsu     = "chiitoitsu"
	YakuTanyao         = "tanyao"
	YakuPinfu          = "pinfu"
	YakuIipeikou       = "iipeikou"
	YakuRyanpeikou     = "ryanpeikou"
	YakuChun           = "yakuhai_chun"
	YakuHatsu          = "yakuhai_hatsu"
	YakuHaku           = "yakuhai_haku"
	YakuSeatWind       = "jikaze"
	YakuRoundWind      = "bakaze"
	YakuSanshoku       = "sanshoku_doujun"
	YakuIttsu          = "ittsu"
	YakuChanta         = "chanta"
	YakuJunchan        = "junchan"
	YakuToitoi         = "toitoi"
	YakuSanankou       = "sanankou"
	YakuSankantsu      = "sankantsu"
	YakuShousangen     = "shousangen"
	YakuSanshokuDoukou = "sanshoku_doukou"
	YakuHonroutou      = "honroutou"
	YakuHonitsu        = "honitsu"
	YakuChinitsu       = "chinitsu"

	YakuDora    = "dora"
	YakuUraDora = "ura_dora"
	YakuAkaDora = "aka_dora"

	YakuKokushi     = "kokushi_musou"
	YakuTenhou      = "tenhou"
	YakuChihou      = "chihou"
	YakuSuuankou    = "suuankou"
	YakuDaisangen   = "daisangen"
	YakuDaisuushii  = "daisuushii"
	YakuShousuushii = "shousuushii"
	YakuTsuuiisou   = "tsuuiisou"
	YakuChinroutou  = "chinroutou"
	YakuRyuuiisou   = "ryuuiisou"
	YakuChuuren     = "chuuren_poutou"
	YakuSuukantsu   = "suukantsu"
)

// YakumanHan 役满按13番计
const YakumanHan = 13

// Yaku 役
type Yaku struct {
	Name    string `json:"name"`
	Han     int    `json:"han"`
	Yakuman bool   `json:"yakuman,omitempty"`
	Bonus   bool   `json:"bonus,omitempty"` // 宝牌类，不构成役
}

// YakuResult 役种判定结果
type YakuResult struct {
	Yaku      []Yaku    `json:"yaku"`
	Han       int       `json:"han"`
	Yakuman   bool      `json:"yakuman"`
	Structure Structure `json:"-"`
}

// HasYaku 至少有一个非宝牌的役
func (r YakuResult) HasYaku() bool {
	for _, y := range r.Yaku {
		if !y.Bonus {
			return true
		}
	}
	return false
}

// Has 是否包含某役
func (r YakuResult) Has(name string) bool {
	for _, y := range r.Yaku {
		if y.Name == name {
			return true
		}
	}
	return false
}

func (r *YakuResult) add(name string, han int) {
	r.Yaku = append(r.Yaku, Yaku{Name: name, Han: han})
	r.Han += han
}

func (r *YakuResult) addBonus(name string, han int) {
	if han <= 0 {
		return
	}
	r.Yaku = append(r.Yaku, Yaku{Name: name, Han: han, Bonus: true})
	r.Han += han
}

func (r *YakuResult) yakuman(name string) YakuResult {
	r.Yaku = []Yaku{{Name: name, Han: YakumanHan, Yakuman: true}}
	r.Han = YakumanHan
	r.Yakuman = true
	return *r
}

// WinContext 和牌时的手牌与场况
type WinContext struct {
	Hand    []core.Tile // 门内手牌，含和了牌
	Melds   []core.Meld
	WinTile core.Tile
	Tsumo   bool

	Riichi       bool
	DoubleRiichi bool
	Ippatsu      bool
	Rinshan      bool
	Chankan      bool
	Haitei       bool
	Houtei       bool
	Tenhou       bool
	Chihou       bool

	SeatWind  core.Wind
	RoundWind core.Wind

	Dora    int
	UraDora int
	AkaDora int
}

// Concealed 门前清（只有暗杠）
func (c WinContext) Concealed() bool {
	for _, m := range c.Melds {
		if !m.Concealed {
			return false
		}
	}
	return true
}

// group 面子视图，合并门内面子与副露
type group struct {
	run       bool
	base      core.Tile
	open      bool // 明刻/明杠/吃，荣和完成的刻子也视为明刻
	kong      bool
	concealed bool // 暗杠
	meld      bool
}

func collectGroups(st Structure, ctx WinContext) []group {
	winKind := ctx.WinTile.Kind()
	groups := make([]group, 0, 4)
	for _, s := range st.Sets {
		g := group{run: s.Kind == SetRun, base: s.Base.Tile()}
		if !g.run && !ctx.Tsumo && s.Base == winKind {
			g.open = true
		}
		groups = append(groups, g)
	}
	for _, m := range ctx.Melds {
		groups = append(groups, group{
			run:       m.Kind == core.MeldChi,
			base:      m.Base(),
			open:      !m.Concealed,
			kong:      m.IsKong(),
			concealed: m.Kind == core.MeldConcealedKong,
			meld:      true,
		})
	}
	return groups
}

func allTiles(ctx WinContext) []core.Tile {
	tiles := make([]core.Tile, 0, 18)
	for _, t := range ctx.Hand {
		tiles = append(tiles, t.Normalize())
	}
	for _, m := range ctx.Melds {
		for _, t := range m.Tiles {
			tiles = append(tiles, t.Normalize())
		}
	}
	return tiles
}

// EvaluateYaku 判定役种；第一个满足的役满直接返回
func EvaluateYaku(ctx WinContext) (YakuResult, bool) {
	var res YakuResult
	st, ok := Decompose(ctx.Hand)
	if !ok {
		return res, false
	}
	res.Structure = st
	if st.Shape == ShapeThirteenOrphans {
		return res.yakuman(YakuKokushi), true
	}

	groups := collectGroups(st, ctx)
	tiles := allTiles(ctx)
	concealed := ctx.Concealed()

	if name := firstYakuman(st, groups, tiles, ctx, concealed); name != "" {
		return res.yakuman(name), true
	}

	if ctx.Riichi {
		if ctx.DoubleRiichi {
			res.add(YakuDoubleRiichi, 2)
		} else {
			res.add(YakuRiichi, 1)
		}
	}
	if ctx.Ippatsu {
		res.add(YakuIppatsu, 1)
	}
	if ctx.Tsumo && concealed {
		res.add(YakuMenzenTsumo, 1)
	}
	if ctx.Rinshan {
		res.add(YakuRinshan, 1)
	}
	if ctx.Chankan {
		res.add(YakuChankan, 1)
	}
	if ctx.Haitei {
		res.add(YakuHaitei, 1)
	}
	if ctx.Houtei {
		res.add(YakuHoutei, 1)
	}

	if st.Shape == ShapeSevenPairs {
		res.add(YakuChiitoitsu, 2)
	} else {
		evaluateStandard(&res, st, groups, tiles, ctx, concealed)
	}

	res.addBonus(YakuDora, ctx.Dora)
	if ctx.Riichi {
		res.addBonus(YakuUraDora, ctx.UraDora)
	}
	res.addBonus(YakuAkaDora, ctx.AkaDora)
	return res, true
}

// openHan 门前与副露番数
func openHan(concealed bool, closed, open int) int {
	if concealed {
		return closed
	}
	return open
}

func evaluateStandard(res *YakuResult, st Structure, groups []group, tiles []core.Tile, ctx WinContext, concealed bool) {
	pair := st.Pair.Tile()
	seatWind := ctx.SeatWind.Tile()
	roundWind := ctx.RoundWind.Tile()

	if allSimples(tiles) {
		res.add(YakuTanyao, 1)
	}

	if concealed && len(ctx.Melds) == 0 && isPinfu(st, pair, seatWind, roundWind) {
		res.add(YakuPinfu, 1)
	}

	if concealed {
		switch identicalRuns(st) {
		case 2:
			res.add(YakuRyanpeikou, 3)
		case 1:
			res.add(YakuIipeikou, 1)
		}
	}

	for _, g := range groups {
		if g.run {
			continue
		}
		switch {
		case g.base.IsDragon():
			switch g.base.Rank {
			case core.HonorChun:
				res.add(YakuChun, 1)
			case core.HonorHatsu:
				res.add(YakuHatsu, 1)
			default:
				res.add(YakuHaku, 1)
			}
		case g.base == seatWind:
			res.add(YakuSeatWind, 1)
		case g.base == roundWind:
			res.add(YakuRoundWind, 1)
		}
	}

	if sameRunThreeSuits(groups) {
		res.add(YakuSanshoku, openHan(concealed, 2, 1))
	}
	if pureStraight(groups) {
		res.add(YakuIttsu, openHan(concealed, 2, 1))
	}
	if outsideHand(pair, groups) && !isHonroutou(tiles) {
		res.add(YakuChanta, openHan(concealed, 2, 1))
	}
	if terminalsInAll(pair, groups) {
		res.add(YakuJunchan, openHan(concealed, 3, 2))
	}

	triplets, concealedTriplets, kongs := 0, 0, 0
	for _, g := range groups {
		if g.run {
			continue
		}
		triplets++
		if !g.open {
			concealedTriplets++
		}
		if g.kong {
			kongs++
		}
	}
	if triplets >= 4 {
		res.add(YakuToitoi, 2)
	}
	if concealedTriplets >= 3 {
		res.add(YakuSanankou, 2)
	}
	if kongs >= 3 {
		res.add(YakuSankantsu, 2)
	}
	if dragonTriplets(groups) == 2 && pair.IsDragon() {
		res.add(YakuShousangen, 2)
	}
	if sameTripletThreeSuits(groups) {
		res.add(YakuSanshokuDoukou, 2)
	}
	if isHonroutou(tiles) {
		res.add(YakuHonroutou, 2)
	}

	honors, suits := suitProfile(tiles)
	if honors && suits == 1 {
		res.add(YakuHonitsu, openHan(concealed, 3, 2))
	}
	if !honors && suits == 1 {
		res.add(YakuChinitsu, openHan(concealed, 6, 5))
	}
}

func firstYakuman(st Structure, groups []group, tiles []core.Tile, ctx WinContext, concealed bool) string {
	switch {
	case ctx.Tenhou:
		return YakuTenhou
	case ctx.Chihou:
		return YakuChihou
	}

	if st.Shape == ShapeStandard && concealed {
		closedTriplets := 0
		for _, g := range groups {
			if !g.run && !g.open {
				closedTriplets++
			}
		}
		if closedTriplets >= 4 {
			return YakuSuuankou
		}
	}

	if dragonTriplets(groups) == 3 {
		return YakuDaisangen
	}

	winds := windTriplets(groups)
	if winds == 4 {
		return YakuDaisuushii
	}
	if winds == 3 && st.Shape == ShapeStandard && st.Pair.Tile().IsWind() {
		return YakuShousuushii
	}

	allHonors, allTerminals, allGreen := true, true, true
	for _, t := range tiles {
		if !t.IsHonor() {
			allHonors = false
		}
		if !t.IsTerminal() {
			allTerminals = false
		}
		if !isGreen(t) {
			allGreen = false
		}
	}
	switch {
	case allHonors:
		return YakuTsuuiisou
	case allTerminals:
		return YakuChinroutou
	case allGreen:
		return YakuRyuuiisou
	}

	if concealed && isNineGates(ctx.Hand) {
		return YakuChuuren
	}

	kongs := 0
	for _, g := range groups {
		if g.kong {
			kongs++
		}
	}
	if kongs >= 4 {
		return YakuSuukantsu
	}
	return ""
}

func allSimples(tiles []core.Tile) bool {
	for _, t := range tiles {
		if t.IsTerminalOrHonor() {
			return false
		}
	}
	return true
}

func isPinfu(st Structure, pair, seatWind, roundWind core.Tile) bool {
	for _, s := range st.Sets {
		if s.Kind != SetRun {
			return false
		}
	}
	return !pair.IsDragon() && pair != seatWind && pair != roundWind
}

func identicalRuns(st Structure) int {
	seen := make(map[core.Kind]int)
	for _, s := range st.Sets {
		if s.Kind == SetRun {
			seen[s.Base]++
		}
	}
	pairs := 0
	for _, n := range seen {
		pairs += n / 2
	}
	return pairs
}

func sameRunThreeSuits(groups []group) bool {
	byRank := make(map[int8]map[core.Suit]bool)
	for _, g := range groups {
		if !g.run {
			continue
		}
		if byRank[g.base.Rank] == nil {
			byRank[g.base.Rank] = make(map[core.Suit]bool)
		}
		byRank[g.base.Rank][g.base.Suit] = true
	}
	for _, suits := range byRank {
		if len(suits) >= 3 {
			return true
		}
	}
	return false
}

func pureStraight(groups []group) bool {
	starts := make(map[core.Suit]map[int8]bool)
	for _, g := range groups {
		if !g.run {
			continue
		}
		if starts[g.base.Suit] == nil {
			starts[g.base.Suit] = make(map[int8]bool)
		}
		starts[g.base.Suit][g.base.Rank] = true
	}
	for _, ranks := range starts {
		if ranks[1] && ranks[4] && ranks[7] {
			return true
		}
	}
	return false
}

// groupHasTerminal 面子是否含老头牌，顺子看首尾
func groupHasTerminal(g group) bool {
	if g.run {
		return g.base.Rank == 1 || g.base.Rank == 7
	}
	return g.base.IsTerminal()
}

func outsideHand(pair core.Tile, groups []group) bool {
	if !pair.IsTerminalOrHonor() {
		return false
	}
	hasHonor := pair.IsHonor()
	for _, g := range groups {
		if g.run {
			if !groupHasTerminal(g) {
				return false
			}
			continue
		}
		if !g.base.IsTerminalOrHonor() {
			return false
		}
		if g.base.IsHonor() {
			hasHonor = true
		}
	}
	return hasHonor
}

func terminalsInAll(pair core.Tile, groups []group) bool {
	if !pair.IsTerminal() {
		return false
	}
	for _, g := range groups {
		if !groupHasTerminal(g) {
			return false
		}
	}
	return true
}

func dragonTriplets(groups []group) int {
	seen := make(map[core.Tile]bool)
	for _, g := range groups {
		if !g.run && g.base.IsDragon() {
			seen[g.base] = true
		}
	}
	return len(seen)
}

func windTriplets(groups []group) int {
	seen := make(map[core.Tile]bool)
	for _, g := range groups {
		if !g.run && g.base.IsWind() {
			seen[g.base] = true
		}
	}
	return len(seen)
}

func sameTripletThreeSuits(groups []group) bool {
	byRank := make(map[int8]map[core.Suit]bool)
	for _, g := range groups {
		if g.run || !g.base.IsNumeral() {
			continue
		}
		if byRank[g.base.Rank] == nil {
			byRank[g.base.Rank] = make(map[core.Suit]bool)
		}
		byRank[g.base.Rank][g.base.Suit] = true
	}
	for _, suits := range byRank {
		if len(suits) >= 3 {
			return true
		}
	}
	return false
}

func isHonroutou(tiles []core.Tile) bool {
	terminal, honor := false, false
	for _, t := range tiles {
		switch {
		case t.IsTerminal():
			terminal = true
		case t.IsHonor():
			honor = true
		default:
			return false
		}
	}
	return terminal && honor
}

// suitProfile 是否含字牌，以及数牌花色数
func suitProfile(tiles []core.Tile) (honors bool, suits int) {
	seen := make(map[core.Suit]bool)
	for _, t := range tiles {
		if t.IsHonor() {
			honors = true
			continue
		}
		seen[t.Suit] = true
	}
	return honors, len(seen)
}

func isGreen(t core.Tile) bool {
	if t.IsHonor() {
		return t.Rank == core.HonorHatsu
	}
	if t.Suit != core.SuitSou {
		return false
	}
	switch t.Rank {
	case 2, 3, 4, 6, 8:
		return true
	}
	return false
}

func isNineGates(hand []core.Tile) bool {
	if len(hand) != 14 {
		return false
	}
	suit := hand[0].Suit
	var ranks [10]int
	for _, t := range hand {
		if t.IsHonor() || t.Suit != suit {
			return false
		}
		ranks[t.Rank]++
	}
	if ranks[1] < 3 || ranks[9] < 3 {
		return false
	}
	for r := 2; r <= 8; r++ {
		if ranks[r] < 1 {
			return false
		}
	}
	return true
}
