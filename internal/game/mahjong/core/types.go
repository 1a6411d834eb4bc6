package core

// Wind 风位，East=0
type Wind int8

const (
	WindEast Wind = iota
	WindSouth
	WindWest
	WindNorth
)

// Tile 返回风对应的字牌
func (w Wind) Tile() Tile {
	return Tile{Suit: SuitHonor, Rank: int8(w) + HonorEast}
}

func (w Wind) String() string { return w.Tile().String() }

func (w Wind) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// MeldKind 副露类型
type MeldKind int8

const (
	MeldChi           MeldKind = iota // 吃
	MeldPon                           // 碰
	MeldKong                          // 明杠
	MeldConcealedKong                 // 暗杠
	MeldAddedKong                     // 加杠
)

// String 返回副露类型的字符串表示
func (k MeldKind) String() string {
	switch k {
	case MeldChi:
		return "chi"
	case MeldPon:
		return "pon"
	case MeldKong:
		return "kong"
	case MeldConcealedKong:
		return "concealed_kong"
	case MeldAddedKong:
		return "added_kong"
	default:
		return "unknown"
	}
}

func (k MeldKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Meld 副露
type Meld struct {
	Kind      MeldKind `json:"kind"`
	Tiles     []Tile   `json:"tiles"`
	From      int      `json:"from"` // 来源座位，暗杠为 -1
	Concealed bool     `json:"concealed"`
	Called    Tile     `json:"called"` // 鸣的那张牌
}

// IsKong 是否为杠
func (m Meld) IsKong() bool {
	return m.Kind == MeldKong || m.Kind == MeldConcealedKong || m.Kind == MeldAddedKong
}

// IsTriplet 刻子或杠子
func (m Meld) IsTriplet() bool {
	return m.Kind != MeldChi
}

// Base 副露的代表牌（顺子为最小的牌）
func (m Meld) Base() Tile {
	base := m.Tiles[0].Normalize()
	for _, t := range m.Tiles[1:] {
		if t.Kind() < base.Kind() {
			base = t.Normalize()
		}
	}
	return base
}

// ClaimKind 响应类型
type ClaimKind int8

const (
	ClaimPass ClaimKind = iota // 过
	ClaimChi                   // 吃
	ClaimPon                   // 碰
	ClaimKong                  // 杠
	ClaimRon                   // 荣和
)

// String 返回响应类型的字符串表示
func (c ClaimKind) String() string {
	switch c {
	case ClaimPass:
		return "pass"
	case ClaimChi:
		return "chi"
	case ClaimPon:
		return "pon"
	case ClaimKong:
		return "kong"
	case ClaimRon:
		return "ron"
	default:
		return "unknown"
	}
}

func (c ClaimKind) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseClaimKind 解析响应类型
func ParseClaimKind(s string) (ClaimKind, bool) {
	for k := ClaimPass; k <= ClaimRon; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return ClaimPass, false
}

// Priority 优先级 荣和>杠/碰>吃
func (c ClaimKind) Priority() int {
	switch c {
	case ClaimRon:
		return 3
	case ClaimKong, ClaimPon:
		return 2
	case ClaimChi:
		return 1
	default:
		return 0
	}
}

// WinKind 和牌方式
type WinKind int8

const (
	WinTsumo   WinKind = iota // 自摸
	WinRon                    // 荣和
	WinChankan                // 抢杠
)

// String 返回和牌方式的字符串表示
func (w WinKind) String() string {
	switch w {
	case WinTsumo:
		return "tsumo"
	case WinRon:
		return "ron"
	case WinChankan:
		return "chankan"
	default:
		return "unknown"
	}
}

func (w WinKind) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// ParseWinKind 解析和牌方式
func ParseWinKind(s string) (WinKind, bool) {
	for k := WinTsumo; k <= WinChankan; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return WinTsumo, false
}
