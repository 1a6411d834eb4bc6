package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"sudooom.im.mahjong/internal/game/mahjong/rank"
	"sudooom.im.mahjong/internal/game/mahjong/riichi"
)

func TestProfileApplyRank(t *testing.T) {
	p := NewProfile("alice")
	assert.Equal(t, rank.Novice1, p.Rank)

	p.ApplyRank(rank.Change{After: rank.Adept1, PointsAfter: 0})
	assert.Equal(t, rank.Adept1, p.Rank)
	assert.Equal(t, rank.Adept1, p.MaxRank)

	p.ApplyRank(rank.Change{After: rank.Novice3, PointsAfter: 10})
	assert.Equal(t, rank.Novice3, p.Rank)
	assert.Equal(t, 10, p.RankPoints)
	assert.Equal(t, rank.Adept1, p.MaxRank, "最高段位不回退")
}

func TestSortProfiles(t *testing.T) {
	profiles := []*Profile{
		{PlayerId: "a", Rank: rank.Novice2, RankPoints: 5},
		{PlayerId: "b", Rank: rank.Expert1, RankPoints: 0},
		{PlayerId: "c", Rank: rank.Novice2, RankPoints: 15},
	}
	SortProfiles(profiles)

	var ids []string
	for _, p := range profiles {
		ids = append(ids, p.PlayerId)
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)
}

func TestNewMatchRecord(t *testing.T) {
	standings := []riichi.Standing{
		{Seat: 2, Score: 41000, Points: 26, Place: 1},
		{Seat: 0, Score: 30000, Points: 5, Place: 2},
		{Seat: 3, Score: 20000, Points: -15, Place: 3},
		{Seat: 1, Score: 9000, Points: -36, Place: 4},
	}
	rec := NewMatchRecord("room-1", "tonpu", "dou",
		[]string{"alice", "bot1", "bot2", "bob"},
		[]bool{false, true, true, false},
		standings)

	assert.Equal(t, "room-1", rec.RoomId)
	assert.Len(t, rec.Players, 4)
	assert.Equal(t, MatchPlayer{PlayerId: "bot2", Seat: 2, Bot: true, Score: 41000, Points: 26, Place: 1}, rec.Players[0])
	assert.Equal(t, "bob", rec.Players[2].PlayerId)
}
