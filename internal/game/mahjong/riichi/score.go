package riichi

import "sudooom.im.mahjong/internal/game/mahjong/core"

// SevenPairsFu 七对子固定符数
const SevenPairsFu = 25

// CalculateFu 计算符数
func CalculateFu(st Structure, melds []core.Meld, winTile core.Tile, tsumo, concealed bool, seatWind, roundWind core.Wind) int {
	if st.Shape == ShapeSevenPairs {
		return SevenPairsFu
	}

	fu := 20
	if concealed && !tsumo {
		fu += 10
	}
	if tsumo {
		fu += 2
	}

	pair := st.Pair.Tile()
	if pair.IsDragon() {
		fu += 2
	}
	if pair == seatWind.Tile() {
		fu += 2
	}
	if pair == roundWind.Tile() {
		fu += 2
	}

	winKind := winTile.Kind()
	for _, s := range st.Sets {
		if s.Kind != SetTriplet {
			continue
		}
		base := 2
		if s.Base.Tile().IsTerminalOrHonor() {
			base = 4
		}
		// 荣和完成的刻子算明刻
		if tsumo || s.Base != winKind {
			base *= 2
		}
		fu += base
	}

	for _, m := range melds {
		if m.Kind == core.MeldChi {
			continue
		}
		base := 2
		if m.Base().IsTerminalOrHonor() {
			base = 4
		}
		switch m.Kind {
		case core.MeldConcealedKong:
			base *= 8
		case core.MeldKong, core.MeldAddedKong:
			base *= 4
		}
		fu += base
	}

	fu = (fu + 9) / 10 * 10
	return max(fu, 30)
}

// BasePoints 基本点
func BasePoints(han, fu int) int {
	switch {
	case han >= 13:
		return 8000
	case han >= 11:
		return 6000
	case han >= 8:
		return 4000
	case han >= 6:
		return 3000
	case han >= 5 || (han == 4 && fu >= 40) || (han == 3 && fu >= 70):
		return 2000
	}
	return min(fu<<(han+2), 2000)
}

// LimitName 满贯等称呼，未达满贯返回空串
func LimitName(han, fu int) string {
	switch BasePoints(han, fu) {
	case 8000:
		return "yakuman"
	case 6000:
		return "sanbaiman"
	case 4000:
		return "baiman"
	case 3000:
		return "haneman"
	case 2000:
		return "mangan"
	}
	return ""
}

// Payment 和牌点数及分摊
type Payment struct {
	Total         int `json:"total"`
	FromDealer    int `json:"from_dealer,omitempty"`     // 子家自摸时庄家支付
	FromNonDealer int `json:"from_non_dealer,omitempty"` // 自摸时每个子家支付
	FromDiscarder int `json:"from_discarder,omitempty"`  // 荣和时放铳者支付
}

// CalculateScore 按番符计算点数，每笔支付各自向上取整到百
func CalculateScore(han, fu int, dealer, tsumo bool) Payment {
	base := BasePoints(han, fu)
	switch {
	case dealer && tsumo:
		each := roundUp100(base * 2)
		return Payment{Total: each * 3, FromNonDealer: each}
	case dealer:
		total := roundUp100(base * 6)
		return Payment{Total: total, FromDiscarder: total}
	case tsumo:
		fromDealer := roundUp100(base * 2)
		each := roundUp100(base)
		return Payment{Total: fromDealer + each*2, FromDealer: fromDealer, FromNonDealer: each}
	default:
		total := roundUp100(base * 4)
		return Payment{Total: total, FromDiscarder: total}
	}
}

func roundUp100(n int) int {
	return (n + 99) / 100 * 100
}
