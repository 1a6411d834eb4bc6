package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sudooom.im.mahjong/internal/game/mahjong/bot"
	"sudooom.im.mahjong/internal/game/mahjong/core"
	"sudooom.im.mahjong/internal/game/mahjong/rank"
	"sudooom.im.mahjong/internal/game/mahjong/riichi"
	"sudooom.im.mahjong/internal/model"
	"sudooom.im.mahjong/internal/room"
	"sudooom.im.mahjong/internal/task"
)

type notification struct {
	roomID string
	player string
	event  string
	data   any
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (f *fakeNotifier) NotifyRoom(ctx context.Context, roomID string, players []string, event string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range players {
		f.sent = append(f.sent, notification{roomID, p, event, data})
	}
	return nil
}

func (f *fakeNotifier) NotifyPlayer(ctx context.Context, roomID, playerID, event string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notification{roomID, playerID, event, data})
	return nil
}

func (f *fakeNotifier) count(player, event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sent {
		if s.player == player && s.event == event {
			n++
		}
	}
	return n
}

func (f *fakeNotifier) last(player, event string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if s := f.sent[i]; s.player == player && s.event == event {
			return s.data, true
		}
	}
	return nil, false
}

type memoryProfiles struct {
	mu       sync.Mutex
	profiles map[string]model.Profile
}

func newMemoryProfiles(seed ...model.Profile) *memoryProfiles {
	m := &memoryProfiles{profiles: make(map[string]model.Profile)}
	for _, p := range seed {
		m.profiles[p.PlayerId] = p
	}
	return m
}

func (m *memoryProfiles) Load(ctx context.Context, playerID string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[playerID]; ok {
		return &p, nil
	}
	return model.NewProfile(playerID), nil
}

func (m *memoryProfiles) Save(ctx context.Context, profile *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.PlayerId] = *profile
	return nil
}

type memoryMatches struct {
	mu      sync.Mutex
	records []*model.MatchRecord
}

func (m *memoryMatches) SaveMatch(ctx context.Context, rec *model.MatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryMatches) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type testEnv struct {
	svc      *Service
	rooms    *room.Manager
	notifier *fakeNotifier
	profiles *memoryProfiles
	matches  *memoryMatches
}

func newTestEnv(t *testing.T, cfg Config, seed ...model.Profile) *testEnv {
	t.Helper()
	scheduler := task.NewScheduler(task.Config{Slots: 64, Interval: time.Millisecond, Workers: 4})
	require.NoError(t, scheduler.Start())
	t.Cleanup(scheduler.Stop)

	if cfg.NewDeck == nil {
		cfg.NewDeck = func() core.DeckGenerator {
			return riichi.NewShuffledDeck(rand.New(rand.NewPCG(7, 9)))
		}
	}
	env := &testEnv{
		rooms:    room.NewManager(nil, 0, 0),
		notifier: &fakeNotifier{},
		profiles: newMemoryProfiles(seed...),
		matches:  &memoryMatches{},
	}
	env.svc = NewService(env.rooms, scheduler, env.notifier, env.profiles, cfg).
		WithPolicy(bot.NewPolicy(rand.New(rand.NewPCG(1, 2)))).
		WithMatchRecorder(env.matches)
	return env
}

// idleConfig 延迟任务不会在测试期间触发
func idleConfig() Config {
	return Config{BotDelay: time.Hour, RiichiDelay: time.Hour, NextRoundDelay: time.Hour}
}

func (e *testEnv) generation(t *testing.T, roomID string) int64 {
	t.Helper()
	r, ok := e.rooms.Get(roomID)
	require.True(t, ok)
	r.Lock()
	defer r.Unlock()
	return r.Generation()
}

// startWithBots alice 建房并补满机器人后开局
func (e *testEnv) startWithBots(t *testing.T, matchType string) room.View {
	t.Helper()
	ctx := context.Background()
	view, err := e.svc.CreateRoom(ctx, "alice", "tonpu", matchType)
	require.NoError(t, err)
	for range 3 {
		_, err := e.svc.AddBot(ctx, "alice")
		require.NoError(t, err)
	}
	require.NoError(t, e.svc.StartGame(ctx, "alice"))
	return view
}

func TestCreateRoomValidation(t *testing.T) {
	env := newTestEnv(t, idleConfig())
	ctx := context.Background()

	_, err := env.svc.CreateRoom(ctx, "alice", "marathon", "")
	assert.ErrorIs(t, err, ErrInvalidGameMode)
	_, err = env.svc.CreateRoom(ctx, "alice", "tonpu", "diamond")
	assert.ErrorIs(t, err, ErrInvalidMatchType)

	view, err := env.svc.CreateRoom(ctx, "alice", "", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Host)
	assert.Equal(t, riichi.ModeHanchan, view.Mode)
	assert.Equal(t, rank.MatchYuujin, view.Match)
	assert.Equal(t, "waiting", view.Status)

	_, err = env.svc.CreateRoom(ctx, "alice", "tonpu", "")
	assert.ErrorIs(t, err, room.ErrAlreadyInRoom)

	assert.Len(t, env.svc.ListRooms(), 1)
}

func TestJoinRoomRankGate(t *testing.T) {
	env := newTestEnv(t, idleConfig(),
		model.Profile{PlayerId: "alice", Rank: rank.Adept2, MaxRank: rank.Adept2},
	)
	ctx := context.Background()

	view, err := env.svc.CreateRoom(ctx, "alice", "hanchan", "gin")
	require.NoError(t, err)
	assert.True(t, view.Ranked)

	_, err = env.svc.JoinRoom(ctx, "bob", view.ID)
	assert.ErrorIs(t, err, room.ErrRankTooLow)

	// 加入失败后不应残留登记
	_, err = env.svc.CurrentRoom(ctx, "bob")
	assert.ErrorIs(t, err, ErrPlayerNotInRoom)
	_, err = env.svc.CreateRoom(ctx, "bob", "tonpu", "dou")
	assert.NoError(t, err)

	_, err = env.svc.JoinRoom(ctx, "carol", "missing")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestLobbyFlow(t *testing.T) {
	env := newTestEnv(t, idleConfig())
	ctx := context.Background()

	view, err := env.svc.CreateRoom(ctx, "alice", "tonpu", "")
	require.NoError(t, err)
	joined, err := env.svc.JoinRoom(ctx, "bob", view.ID)
	require.NoError(t, err)
	assert.Len(t, joined.Players, 2)
	assert.Equal(t, 1, env.notifier.count("alice", EventRoomUpdated))

	_, err = env.svc.AddBot(ctx, "bob")
	assert.ErrorIs(t, err, room.ErrNotRoomHost)
	assert.ErrorIs(t, env.svc.StartGame(ctx, "bob"), room.ErrNotRoomHost)

	b, err := env.svc.AddBot(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "bot1", b.ID)
	assert.ErrorIs(t, env.svc.StartGame(ctx, "alice"), room.ErrNotEnoughPlayers)

	require.NoError(t, env.svc.KickPlayer(ctx, "alice", "bob"))
	assert.Equal(t, 1, env.notifier.count("bob", EventPlayerKicked))
	_, err = env.svc.CurrentRoom(ctx, "bob")
	assert.ErrorIs(t, err, ErrPlayerNotInRoom)

	require.NoError(t, env.svc.KickPlayer(ctx, "alice", "bot1"))
	current, err := env.svc.CurrentRoom(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, current.Players, 1)

	_, err = env.svc.Hand(ctx, "alice")
	assert.ErrorIs(t, err, room.ErrGameNotStarted)
	assert.ErrorIs(t, env.svc.Draw(ctx, "alice"), room.ErrGameNotStarted)
}

func TestLeaveAndDismiss(t *testing.T) {
	env := newTestEnv(t, idleConfig())
	ctx := context.Background()

	_, err := env.svc.CreateRoom(ctx, "alice", "tonpu", "")
	require.NoError(t, err)
	require.NoError(t, env.svc.LeaveRoom(ctx, "alice"))
	assert.Equal(t, 0, env.rooms.Count(), "最后一个真人离开后房间应被删除")
	assert.ErrorIs(t, env.svc.LeaveRoom(ctx, "alice"), ErrPlayerNotInRoom)

	view, err := env.svc.CreateRoom(ctx, "alice", "tonpu", "")
	require.NoError(t, err)
	_, err = env.svc.JoinRoom(ctx, "bob", view.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.DismissRoom(ctx, "bob"), room.ErrNotRoomHost)
	require.NoError(t, env.svc.DismissRoom(ctx, "alice"))
	assert.Equal(t, 1, env.notifier.count("bob", EventRoomDismissed))
	assert.Equal(t, 0, env.rooms.Count())

	_, err = env.svc.CreateRoom(ctx, "bob", "tonpu", "")
	assert.NoError(t, err, "解散后玩家可以重新建房")
}

func TestLeaveMidGameHandsSeatToBot(t *testing.T) {
	env := newTestEnv(t, idleConfig())
	ctx := context.Background()

	view, err := env.svc.CreateRoom(ctx, "alice", "tonpu", "")
	require.NoError(t, err)
	_, err = env.svc.JoinRoom(ctx, "bob", view.ID)
	require.NoError(t, err)
	for range 2 {
		_, err := env.svc.AddBot(ctx, "alice")
		require.NoError(t, err)
	}
	require.NoError(t, env.svc.StartGame(ctx, "alice"))
	assert.Empty(t, env.svc.ListRooms(), "开局后房间不在大厅中")

	require.NoError(t, env.svc.LeaveRoom(ctx, "bob"))
	current, err := env.svc.CurrentRoom(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, current.Players, 4)
	assert.True(t, current.Players[1].Bot)
	assert.Equal(t, "bot3", current.Players[1].ID)
	assert.Equal(t, 1, env.rooms.Count())
}

func TestStartGameDealsHands(t *testing.T) {
	env := newTestEnv(t, idleConfig())
	ctx := context.Background()
	env.startWithBots(t, "")

	assert.Equal(t, 1, env.notifier.count("alice", string(riichi.EventRoundStarted)))
	assert.Equal(t, 1, env.notifier.count("alice", string(riichi.EventHandDealt)))

	hv, err := env.svc.Hand(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, hv.Seat)
	assert.Len(t, hv.Hand, 14, "庄家配牌 14 张")
	assert.False(t, hv.NeedsDraw)
	assert.ErrorIs(t, env.svc.Draw(ctx, "alice"), riichi.ErrAlreadyDrew)

	assert.ErrorIs(t, env.svc.NextRound(ctx, "alice"), ErrRoundNotFinished)
}

func TestStaleTaskIsNoop(t *testing.T) {
	env := newTestEnv(t, idleConfig())
	ctx := context.Background()
	view := env.startWithBots(t, "")

	hv, err := env.svc.Hand(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, hv.Hand, 14)

	before := env.generation(t, view.ID)
	err = env.svc.Discard(ctx, "alice", hv.Hand[0])
	if errors.Is(err, riichi.ErrNotYourTurn) {
		t.Fatal("庄家应能打牌")
	}
	require.NoError(t, err)
	assert.Greater(t, env.generation(t, view.ID), before)

	// 被拒绝的操作不改变房间版本
	gen := env.generation(t, view.ID)
	assert.Error(t, env.svc.Discard(ctx, "alice", hv.Hand[1]))
	assert.Equal(t, gen, env.generation(t, view.ID))

	run := env.svc.runTask(taskBot)
	require.NoError(t, run(ctx, view.ID, gen-1))
	assert.Equal(t, gen, env.generation(t, view.ID), "过期任务不应执行")

	require.NoError(t, run(ctx, view.ID, gen))
	assert.Greater(t, env.generation(t, view.ID), gen, "机器人应行动")

	require.NoError(t, run(ctx, "missing", 1))
}

// driveHuman 用机器人策略替 alice 操作，直到对局结束或超时
func driveHuman(t *testing.T, svc *Service, timeout time.Duration) bool {
	t.Helper()
	ctx := context.Background()
	p := bot.NewPolicy(rand.New(rand.NewPCG(5, 5)))
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		view, err := svc.CurrentRoom(ctx, "alice")
		if err != nil {
			return false
		}
		switch view.Status {
		case riichi.PhaseEnded.String():
			return true
		case riichi.PhaseFinished.String():
			_ = svc.NextRound(ctx, "alice")
			continue
		}

		hv, err := svc.Hand(ctx, "alice")
		if err != nil {
			time.Sleep(time.Millisecond)
			continue
		}
		switch {
		case hv.Claim != nil:
			if err := svc.Call(ctx, "alice", p.ChooseClaim(hv), core.Tile{}, nil); err != nil {
				_ = svc.Pass(ctx, "alice")
			}
		case view.Table != nil && view.Table.CurrentTurn == hv.Seat && !view.Table.WaitingForAction && len(hv.Hand)%3 == 2:
			playTurn(ctx, svc, p, hv)
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func playTurn(ctx context.Context, svc *Service, p *bot.Policy, hv riichi.HandView) {
	var err error
	switch d := p.ChooseSelfAction(hv); d.Action {
	case bot.ActionTsumo:
		err = svc.DeclareWin(ctx, "alice", core.WinTsumo)
	case bot.ActionRiichi:
		err = svc.DeclareRiichi(ctx, "alice", d.Tile)
	case bot.ActionConcealedKong:
		err = svc.ConcealedKong(ctx, "alice", d.Tile)
	default:
		err = errors.New("discard")
	}
	if err == nil {
		return
	}
	err = svc.Discard(ctx, "alice", p.ChooseDiscard(hv))
	if errors.Is(err, riichi.ErrKuikae) {
		_ = svc.Discard(ctx, "alice", p.FallbackDiscard(hv))
	}
}

func TestBotsPlayRankedMatch(t *testing.T) {
	cfg := Config{
		BotDelay:       time.Millisecond,
		RiichiDelay:    5 * time.Millisecond,
		NextRoundDelay: 2 * time.Millisecond,
		AutoDraw:       true,
	}
	env := newTestEnv(t, cfg)
	ctx := context.Background()
	env.startWithBots(t, "dou")

	require.True(t, driveHuman(t, env.svc, time.Minute), "对局应在限定时间内结束")

	view, err := env.svc.CurrentRoom(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, view.Table)
	require.Len(t, view.Table.Standings, 4)

	var place int
	for _, st := range view.Table.Standings {
		if st.Seat == 0 {
			place = st.Place
		}
	}
	require.NotZero(t, place)

	want := rank.Apply(rank.Novice1, 0, place, riichi.ModeTonpu)
	profile, err := env.profiles.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, want.After, profile.Rank)
	assert.Equal(t, want.PointsAfter, profile.RankPoints)
	assert.Equal(t, 1, profile.Stats.TotalGames)
	assert.Equal(t, 1, profile.Stats.RankedGames)
	assert.Equal(t, 1, profile.Stats.EastGames)
	assert.Equal(t, 1, profile.Stats.Places[place-1])

	data, ok := env.notifier.last("alice", EventRankChanged)
	require.True(t, ok)
	assert.Equal(t, want, *data.(*rank.Change))
	assert.Equal(t, 1, env.notifier.count("alice", string(riichi.EventMatchEnded)))
	assert.Equal(t, 1, env.matches.len())

	// 机器人不建立档案
	env.profiles.mu.Lock()
	_, botSaved := env.profiles.profiles["bot1"]
	env.profiles.mu.Unlock()
	assert.False(t, botSaved)

	assert.ErrorIs(t, env.svc.NextRound(ctx, "alice"), ErrRoundNotFinished)
}

func TestInviteFlow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var clockMu sync.Mutex
	cfg := idleConfig()
	cfg.InviteTTL = 5 * time.Minute
	cfg.Now = func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		clockMu.Lock()
		defer clockMu.Unlock()
		now = now.Add(d)
	}

	env := newTestEnv(t, cfg)
	ctx := context.Background()

	_, err := env.svc.InvitePlayer(ctx, "alice", "bob")
	assert.ErrorIs(t, err, ErrPlayerNotInRoom)

	view, err := env.svc.CreateRoom(ctx, "alice", "tonpu", "")
	require.NoError(t, err)
	_, err = env.svc.CreateRoom(ctx, "carol", "tonpu", "")
	require.NoError(t, err)

	_, err = env.svc.InvitePlayer(ctx, "alice", "alice")
	assert.ErrorIs(t, err, room.ErrCannotInviteSelf)
	_, err = env.svc.InvitePlayer(ctx, "alice", "carol")
	assert.ErrorIs(t, err, room.ErrTargetInRoom)

	_, err = env.svc.PendingInvite(ctx, "bob")
	assert.ErrorIs(t, err, room.ErrInviteNotFound)

	inv, err := env.svc.InvitePlayer(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, view.ID, inv.RoomID)
	assert.Equal(t, 1, env.notifier.count("bob", EventInvite))
	data, ok := env.notifier.last("bob", EventInvite)
	require.True(t, ok)
	assert.Equal(t, "alice", data.(room.Invite).From)

	t.Run("过期", func(t *testing.T) {
		advance(4 * time.Minute)
		pending, err := env.svc.PendingInvite(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, view.ID, pending.RoomID)

		advance(time.Minute)
		_, err = env.svc.PendingInvite(ctx, "bob")
		assert.ErrorIs(t, err, room.ErrInviteNotFound)
		_, err = env.svc.AcceptInvite(ctx, "bob")
		assert.ErrorIs(t, err, room.ErrInviteNotFound)
	})

	t.Run("接受", func(t *testing.T) {
		_, err := env.svc.InvitePlayer(ctx, "alice", "bob")
		require.NoError(t, err)
		joined, err := env.svc.AcceptInvite(ctx, "bob")
		require.NoError(t, err)
		assert.Len(t, joined.Players, 2)

		_, err = env.svc.PendingInvite(ctx, "bob")
		assert.ErrorIs(t, err, room.ErrInviteNotFound, "接受后邀请被消耗")
	})

	t.Run("入座后邀请作废", func(t *testing.T) {
		_, err := env.svc.InvitePlayer(ctx, "bob", "dave")
		require.NoError(t, err)
		_, err = env.svc.JoinRoom(ctx, "dave", view.ID)
		require.NoError(t, err)
		_, err = env.svc.PendingInvite(ctx, "dave")
		assert.ErrorIs(t, err, room.ErrInviteNotFound)
	})

	t.Run("对局开始后不能邀请", func(t *testing.T) {
		_, err := env.svc.AddBot(ctx, "alice")
		require.NoError(t, err)
		_, err = env.svc.InvitePlayer(ctx, "alice", "erin")
		assert.ErrorIs(t, err, room.ErrRoomFull)

		require.NoError(t, env.svc.StartGame(ctx, "alice"))
		_, err = env.svc.InvitePlayer(ctx, "alice", "erin")
		assert.ErrorIs(t, err, room.ErrGameStarted)
	})
}
