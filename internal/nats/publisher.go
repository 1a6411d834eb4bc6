package nats

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// Envelope 下行事件
type Envelope struct {
	Event    string   `json:"event"`
	RoomId   string   `json:"roomId"`
	PlayerId string   `json:"playerId,omitempty"`
	Players  []string `json:"players,omitempty"`
	Data     any      `json:"data,omitempty"`
}

// EventPublisher 把游戏事件发布到 NATS，实现 game.Notifier
type EventPublisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewEventPublisher 创建事件发布器
func NewEventPublisher(nc *nats.Conn) *EventPublisher {
	return &EventPublisher{
		nc:     nc,
		logger: slog.Default().With("component", "nats.publisher"),
	}
}

// NotifyRoom 发布房间事件，players 为应收到事件的真人
func (p *EventPublisher) NotifyRoom(ctx context.Context, roomId string, players []string, event string, data any) error {
	return p.publish(BuildRoomSubject(roomId), &Envelope{
		Event:   event,
		RoomId:  roomId,
		Players: players,
		Data:    data,
	})
}

// NotifyPlayer 发布玩家私有事件
func (p *EventPublisher) NotifyPlayer(ctx context.Context, roomId, playerId, event string, data any) error {
	return p.publish(BuildPlayerSubject(playerId), &Envelope{
		Event:    event,
		RoomId:   roomId,
		PlayerId: playerId,
		Data:     data,
	})
}

func (p *EventPublisher) publish(subject string, env *Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		p.logger.Error("序列化事件失败", "event", env.Event, "error", err)
		return err
	}

	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("发布事件失败", "subject", subject, "event", env.Event, "error", err)
		return err
	}

	p.logger.Debug("事件已发布", "subject", subject, "event", env.Event)
	return nil
}
