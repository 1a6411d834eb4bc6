package rank

import "sudooom.im.mahjong/internal/game/mahjong/riichi"

// Rank 段位
type Rank string

const (
	Novice1   Rank = "novice_1"
	Novice2   Rank = "novice_2"
	Novice3   Rank = "novice_3"
	Adept1    Rank = "adept_1"
	Adept2    Rank = "adept_2"
	Adept3    Rank = "adept_3"
	Expert1   Rank = "expert_1"
	Expert2   Rank = "expert_2"
	Expert3   Rank = "expert_3"
	Master1   Rank = "master_1"
	Master2   Rank = "master_2"
	Master3   Rank = "master_3"
	Saint1    Rank = "saint_1"
	Saint2    Rank = "saint_2"
	Saint3    Rank = "saint_3"
	Celestial Rank = "celestial"
)

// Info 段位信息
type Info struct {
	Name     string `json:"name"`
	Tier     int    `json:"tier"`
	Stars    int    `json:"stars"`
	PointsUp int    `json:"points_up"` // 0 表示不能再升段
}

var order = []Rank{
	Novice1, Novice2, Novice3,
	Adept1, Adept2, Adept3,
	Expert1, Expert2, Expert3,
	Master1, Master2, Master3,
	Saint1, Saint2, Saint3,
	Celestial,
}

var infos = map[Rank]Info{
	Novice1:   {Name: "初心一", Tier: 1, Stars: 1, PointsUp: 20},
	Novice2:   {Name: "初心二", Tier: 1, Stars: 2, PointsUp: 20},
	Novice3:   {Name: "初心三", Tier: 1, Stars: 3, PointsUp: 20},
	Adept1:    {Name: "雀士一", Tier: 2, Stars: 1, PointsUp: 80},
	Adept2:    {Name: "雀士二", Tier: 2, Stars: 2, PointsUp: 80},
	Adept3:    {Name: "雀士三", Tier: 2, Stars: 3, PointsUp: 80},
	Expert1:   {Name: "雀杰一", Tier: 3, Stars: 1, PointsUp: 100},
	Expert2:   {Name: "雀杰二", Tier: 3, Stars: 2, PointsUp: 100},
	Expert3:   {Name: "雀杰三", Tier: 3, Stars: 3, PointsUp: 100},
	Master1:   {Name: "雀豪一", Tier: 4, Stars: 1, PointsUp: 200},
	Master2:   {Name: "雀豪二", Tier: 4, Stars: 2, PointsUp: 200},
	Master3:   {Name: "雀豪三", Tier: 4, Stars: 3, PointsUp: 200},
	Saint1:    {Name: "雀圣一", Tier: 5, Stars: 1, PointsUp: 400},
	Saint2:    {Name: "雀圣二", Tier: 5, Stars: 2, PointsUp: 400},
	Saint3:    {Name: "雀圣三", Tier: 5, Stars: 3, PointsUp: 400},
	Celestial: {Name: "魂天", Tier: 6},
}

// 按大段与顺位的段位点变化，下标为顺位-1
var (
	eastPoints = map[int][4]int{
		1: {20, 10, 0, 0},
		2: {40, 10, -10, -20},
		3: {50, 20, -15, -30},
		4: {60, 20, -20, -40},
		5: {70, 25, -25, -50},
		6: {80, 30, -30, -60},
	}
	southPoints = map[int][4]int{
		1: {40, 20, 0, 0},
		2: {80, 20, -20, -40},
		3: {100, 40, -30, -60},
		4: {120, 40, -40, -80},
		5: {140, 50, -50, -100},
		6: {160, 60, -60, -120},
	}
)

// Parse 解析段位，未知段位返回 false
func Parse(s string) (Rank, bool) {
	r := Rank(s)
	_, ok := infos[r]
	return r, ok
}

// Info 段位信息，未知段位按初心一处理
func (r Rank) Info() Info {
	if info, ok := infos[r]; ok {
		return info
	}
	return infos[Novice1]
}

// Index 段位在升降段顺序中的位置
func (r Rank) Index() int {
	for i, o := range order {
		if o == r {
			return i
		}
	}
	return 0
}

func (r Rank) String() string { return string(r) }

// AtLeast 是否不低于 other
func (r Rank) AtLeast(other Rank) bool {
	return r.Index() >= other.Index()
}

// PointsFor 一场段位战按顺位获得的段位点
func PointsFor(r Rank, place int, mode riichi.GameMode) int {
	if place < 1 || place > 4 {
		return 0
	}
	table := southPoints
	if mode == riichi.ModeTonpu {
		table = eastPoints
	}
	return table[r.Info().Tier][place-1]
}

// Change 一场段位战后的段位变化
type Change struct {
	Before       Rank `json:"before"`
	After        Rank `json:"after"`
	Delta        int  `json:"delta"`
	PointsBefore int  `json:"points_before"`
	PointsAfter  int  `json:"points_after"`
	Promoted     bool `json:"promoted,omitempty"`
	Demoted      bool `json:"demoted,omitempty"`
}

// Apply 按顺位结算段位点并处理升降段
//
// 升段后点数清零；点数跌破零时降段并获得新段位升段点数的一半，初心不降段，雀士不降回初心。
func Apply(r Rank, points, place int, mode riichi.GameMode) Change {
	info := r.Info()
	delta := PointsFor(r, place, mode)
	c := Change{Before: r, After: r, Delta: delta, PointsBefore: points}

	raw := points + delta
	c.PointsAfter = max(0, raw)
	idx := r.Index()

	switch {
	case info.PointsUp > 0 && c.PointsAfter >= info.PointsUp && idx < len(order)-1:
		c.After = order[idx+1]
		c.PointsAfter = 0
		c.Promoted = true
	case raw < 0 && idx > 0:
		prev := order[idx-1]
		prevTier := prev.Info().Tier
		if info.Tier > 2 || (info.Tier == 2 && prevTier == 2) {
			c.After = prev
			c.PointsAfter = prev.Info().PointsUp / 2
			c.Demoted = true
		}
	}
	return c
}

// Stats 对局统计
type Stats struct {
	TotalGames  int    `json:"total_games"`
	RankedGames int    `json:"ranked_games"`
	EastGames   int    `json:"east_games"`
	SouthGames  int    `json:"south_games"`
	Places      [4]int `json:"places"`
}

// Record 记录一场对局
func (s *Stats) Record(place int, mode riichi.GameMode, ranked bool) {
	s.TotalGames++
	if ranked {
		s.RankedGames++
	}
	if mode == riichi.ModeTonpu {
		s.EastGames++
	} else {
		s.SouthGames++
	}
	if place >= 1 && place <= 4 {
		s.Places[place-1]++
	}
}
