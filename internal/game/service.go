package game

import (
	"context"
	"log/slog"

	"sudooom.im.mahjong/internal/game/mahjong/bot"
	"sudooom.im.mahjong/internal/game/mahjong/rank"
	"sudooom.im.mahjong/internal/game/mahjong/riichi"
	"sudooom.im.mahjong/internal/model"
	"sudooom.im.mahjong/internal/room"
	"sudooom.im.mahjong/internal/task"
)

// Service 麻将游戏服务
//
// 每个操作都在房间锁内完成：修改牌桌、推送事件、安排机器人和立直摸切的延迟任务。
// 延迟任务携带房间版本号，房间在此期间有任何变更时任务直接作废。
type Service struct {
	rooms     *room.Manager
	scheduler *task.Scheduler
	notifier  Notifier
	profiles  ProfileStore
	matches   MatchRecorder
	policy    *bot.Policy
	cfg       Config
	logger    *slog.Logger
}

// NewService 创建游戏服务，notifier 和 profiles 可以为 nil
func NewService(
	rooms *room.Manager,
	scheduler *task.Scheduler,
	notifier Notifier,
	profiles ProfileStore,
	cfg Config,
) *Service {
	s := &Service{
		rooms:     rooms,
		scheduler: scheduler,
		notifier:  notifier,
		profiles:  profiles,
		policy:    bot.NewPolicy(nil),
		cfg:       cfg,
		logger:    slog.Default().With("component", "game.service"),
	}
	rooms.SetEvictHandler(s.onEvict)
	return s
}

// WithPolicy 替换机器人决策
func (s *Service) WithPolicy(p *bot.Policy) *Service {
	s.policy = p
	return s
}

// WithMatchRecorder 设置对局记录存储
func (s *Service) WithMatchRecorder(m MatchRecorder) *Service {
	s.matches = m
	return s
}

// CreateRoom 创建房间，创建者成为房主
func (s *Service) CreateRoom(ctx context.Context, playerID, mode, matchType string) (room.View, error) {
	gameMode, ok := riichi.ParseGameMode(mode)
	if !ok {
		return room.View{}, ErrInvalidGameMode
	}
	match, ok := rank.ParseMatchType(matchType)
	if !ok {
		return room.View{}, ErrInvalidMatchType
	}
	player, err := s.player(ctx, playerID)
	if err != nil {
		return room.View{}, err
	}

	opts := room.Options{Mode: gameMode, Match: match}
	if s.cfg.NewDeck != nil {
		opts.Deck = s.cfg.NewDeck()
	}
	r, err := s.rooms.Create(ctx, player, opts)
	if err != nil {
		return room.View{}, err
	}

	r.Lock()
	defer r.Unlock()
	return r.Snapshot(), nil
}

// JoinRoom 加入房间
func (s *Service) JoinRoom(ctx context.Context, playerID, roomID string) (room.View, error) {
	player, err := s.player(ctx, playerID)
	if err != nil {
		return room.View{}, err
	}
	if err := s.rooms.Reserve(ctx, playerID, roomID); err != nil {
		return room.View{}, err
	}

	r, err := s.lockRoom(roomID)
	if err != nil {
		s.rooms.Release(ctx, playerID, roomID)
		return room.View{}, err
	}
	defer r.Unlock()

	if _, err := r.Join(player); err != nil {
		s.rooms.Release(ctx, playerID, roomID)
		return room.View{}, err
	}
	s.rooms.SetOpen(ctx, r)
	s.broadcastRoom(ctx, r)

	s.logger.Info("玩家加入房间", "roomId", roomID, "playerId", playerID)
	return r.Snapshot(), nil
}

// LeaveRoom 离开房间
//
// 对局中离开时座位交给机器人；最后一个真人离开后房间被删除。
func (s *Service) LeaveRoom(ctx context.Context, playerID string) error {
	r, err := s.lockPlayerRoom(playerID)
	if err != nil {
		return err
	}
	defer r.Unlock()

	if _, err := r.Leave(playerID); err != nil {
		return err
	}
	s.rooms.Release(ctx, playerID, r.ID())
	s.logger.Info("玩家离开房间", "roomId", r.ID(), "playerId", playerID)

	if r.Empty() {
		s.rooms.Remove(ctx, r)
		return nil
	}
	s.rooms.SetOpen(ctx, r)
	s.broadcastRoom(ctx, r)
	s.advance(ctx, r)
	return nil
}

// DismissRoom 房主在开局前解散房间
func (s *Service) DismissRoom(ctx context.Context, playerID string) error {
	r, err := s.lockPlayerRoom(playerID)
	if err != nil {
		return err
	}
	defer r.Unlock()

	if r.Host() != playerID {
		return room.ErrNotRoomHost
	}
	if r.Started() {
		return room.ErrGameStarted
	}
	s.notifyRoom(ctx, r.ID(), r.HumanIDs(), EventRoomDismissed, r.Snapshot())
	s.rooms.Remove(ctx, r)
	return nil
}

// AddBot 房主添加机器人
func (s *Service) AddBot(ctx context.Context, playerID string) (room.Player, error) {
	r, err := s.lockPlayerRoom(playerID)
	if err != nil {
		return room.Player{}, err
	}
	defer r.Unlock()

	p, err := r.AddBot(playerID)
	if err != nil {
		return room.Player{}, err
	}
	s.rooms.SetOpen(ctx, r)
	s.broadcastRoom(ctx, r)
	return p, nil
}

// KickPlayer 房主在开局前踢人
func (s *Service) KickPlayer(ctx context.Context, playerID, target string) error {
	r, err := s.lockPlayerRoom(playerID)
	if err != nil {
		return err
	}
	defer r.Unlock()

	kicked, err := r.Kick(playerID, target)
	if err != nil {
		return err
	}
	if !kicked.Bot {
		s.rooms.Release(ctx, kicked.ID, r.ID())
		s.notifyPlayer(ctx, r.ID(), kicked.ID, EventPlayerKicked, r.Snapshot())
	}
	s.rooms.SetOpen(ctx, r)
	s.broadcastRoom(ctx, r)
	return nil
}

// StartGame 房主开始对局
func (s *Service) StartGame(ctx context.Context, playerID string) error {
	r, err := s.lockPlayerRoom(playerID)
	if err != nil {
		return err
	}
	defer r.Unlock()

	events, err := r.Start(playerID)
	if err != nil {
		return err
	}
	s.rooms.SetOpen(ctx, r)
	s.broadcastRoom(ctx, r)
	s.dispatch(ctx, r, events)
	s.advance(ctx, r)

	s.logger.Info("对局开始", "roomId", r.ID(), "mode", r.Mode(), "match", r.Match())
	return nil
}

// NextRound 一局结束后由房间内任一真人开始下一局
func (s *Service) NextRound(ctx context.Context, playerID string) error {
	r, err := s.lockPlayerRoom(playerID)
	if err != nil {
		return err
	}
	defer r.Unlock()

	tb := r.Table()
	if tb == nil {
		return room.ErrGameNotStarted
	}
	if tb.Phase() != riichi.PhaseFinished {
		return ErrRoundNotFinished
	}
	err = s.apply(ctx, r, (*riichi.Table).StartNextRound)
	if mutated(err) {
		s.advance(ctx, r)
	}
	return err
}

// ListRooms 大厅中可加入的房间
func (s *Service) ListRooms() []room.View {
	return s.rooms.List()
}

// Snapshot 房间公开快照
func (s *Service) Snapshot(ctx context.Context, roomID string) (room.View, error) {
	r, err := s.lockRoom(roomID)
	if err != nil {
		return room.View{}, err
	}
	defer r.Unlock()
	return r.Snapshot(), nil
}

// CurrentRoom 玩家所在房间，用于断线重连
func (s *Service) CurrentRoom(ctx context.Context, playerID string) (room.View, error) {
	r, err := s.lockPlayerRoom(playerID)
	if err != nil {
		return room.View{}, err
	}
	defer r.Unlock()
	return r.Snapshot(), nil
}

// Hand 玩家自己的手牌视图
func (s *Service) Hand(ctx context.Context, playerID string) (riichi.HandView, error) {
	r, err := s.lockPlayerRoom(playerID)
	if err != nil {
		return riichi.HandView{}, err
	}
	defer r.Unlock()

	tb := r.Table()
	if tb == nil {
		return riichi.HandView{}, room.ErrGameNotStarted
	}
	seat, _ := r.SeatOf(playerID)
	return tb.HandView(seat)
}

// Profile 玩家段位档案
func (s *Service) Profile(ctx context.Context, playerID string) (*model.Profile, error) {
	if s.profiles == nil {
		return model.NewProfile(playerID), nil
	}
	return s.profiles.Load(ctx, playerID)
}

func (s *Service) player(ctx context.Context, playerID string) (room.Player, error) {
	profile, err := s.Profile(ctx, playerID)
	if err != nil {
		return room.Player{}, err
	}
	return room.Player{ID: playerID, Rank: profile.Rank}, nil
}

// lockRoom 获取并锁定房间，加锁后确认房间没有被删除
func (s *Service) lockRoom(roomID string) (*room.Room, error) {
	r, ok := s.rooms.Get(roomID)
	if !ok {
		return nil, room.ErrRoomNotFound
	}
	r.Lock()
	if current, ok := s.rooms.Get(roomID); !ok || current != r {
		r.Unlock()
		return nil, room.ErrRoomNotFound
	}
	return r, nil
}

// lockPlayerRoom 锁定玩家所在的房间
func (s *Service) lockPlayerRoom(playerID string) (*room.Room, error) {
	found, ok := s.rooms.RoomOf(playerID)
	if !ok {
		return nil, ErrPlayerNotInRoom
	}
	r, err := s.lockRoom(found.ID())
	if err != nil {
		return nil, err
	}
	if _, ok := r.SeatOf(playerID); !ok {
		r.Unlock()
		return nil, ErrPlayerNotInRoom
	}
	return r, nil
}

func (s *Service) onEvict(ctx context.Context, r *room.Room) {
	s.notifyRoom(ctx, r.ID(), r.HumanIDs(), EventRoomEvicted, r.Snapshot())
}

func (s *Service) broadcastRoom(ctx context.Context, r *room.Room) {
	s.notifyRoom(ctx, r.ID(), r.HumanIDs(), EventRoomUpdated, r.Snapshot())
}

func (s *Service) notifyRoom(ctx context.Context, roomID string, players []string, event string, data any) {
	if s.notifier == nil || len(players) == 0 {
		return
	}
	if err := s.notifier.NotifyRoom(ctx, roomID, players, event, data); err != nil {
		s.logger.Warn("推送房间事件失败", "roomId", roomID, "event", event, "error", err)
	}
}

func (s *Service) notifyPlayer(ctx context.Context, roomID, playerID, event string, data any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyPlayer(ctx, roomID, playerID, event, data); err != nil {
		s.logger.Warn("推送玩家事件失败", "roomId", roomID, "playerId", playerID, "event", event, "error", err)
	}
}
