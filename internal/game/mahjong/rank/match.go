package rank

// MatchType 段位场类型
type MatchType string

const (
	MatchYuujin MatchType = "yuujin" // 友人场
	MatchDou    MatchType = "dou"    // 铜之间
	MatchGin    MatchType = "gin"    // 银之间
	MatchKin    MatchType = "kin"    // 金之间
	MatchGyoku  MatchType = "gyoku"  // 玉之间
	MatchOuza   MatchType = "ouza"   // 王座之间
)

var minRanks = map[MatchType]Rank{
	MatchDou:   Novice1,
	MatchGin:   Adept1,
	MatchKin:   Expert1,
	MatchGyoku: Master1,
	MatchOuza:  Saint1,
}

// ParseMatchType 解析段位场类型，空字符串视为友人场
func ParseMatchType(s string) (MatchType, bool) {
	m := MatchType(s)
	if s == "" || m == MatchYuujin {
		return MatchYuujin, true
	}
	_, ok := minRanks[m]
	return m, ok
}

// Ranked 是否计入段位
func (m MatchType) Ranked() bool {
	_, ok := minRanks[m]
	return ok
}

// MinRank 入场最低段位
func (m MatchType) MinRank() (Rank, bool) {
	r, ok := minRanks[m]
	return r, ok
}

// CanEnter 段位是否满足入场要求
func (m MatchType) CanEnter(r Rank) bool {
	need, ok := minRanks[m]
	return !ok || r.AtLeast(need)
}
