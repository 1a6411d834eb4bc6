package nats

import (
	"context"
	"sync"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sudooom.im.mahjong/internal/handler"
)

type recordingHandler struct {
	mu   sync.Mutex
	cmds []handler.Command
}

func (h *recordingHandler) Handle(ctx context.Context, cmd *handler.Command) *handler.Reply {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cmds = append(h.cmds, *cmd)
	return &handler.Reply{ReqId: cmd.ReqId}
}

func TestSubjects(t *testing.T) {
	assert.Equal(t, "mahjong.room.r1", BuildRoomSubject("r1"))
	assert.Equal(t, "mahjong.player.alice", BuildPlayerSubject("alice"))
}

func TestHandleMessageDecodesCommand(t *testing.T) {
	h := &recordingHandler{}
	s := NewCommandSubscriber(nil, h, SubscriberConfig{})

	s.handleMessage(context.Background(), &nats.Msg{
		Subject: SubjectCommand,
		Data:    []byte(`{"reqId":"1","playerId":"alice","action":"DISCARD","tile":"5m"}`),
	})
	s.handleMessage(context.Background(), &nats.Msg{Subject: SubjectCommand, Data: []byte(`{oops`)})

	require.Len(t, h.cmds, 1)
	assert.Equal(t, "alice", h.cmds[0].PlayerId)
	assert.Equal(t, handler.ActionDiscard, h.cmds[0].Action)
	assert.Equal(t, "5m", h.cmds[0].Tile)
}

func TestSubscriberDefaults(t *testing.T) {
	s := NewCommandSubscriber(nil, &recordingHandler{}, SubscriberConfig{})
	assert.Equal(t, 16, s.config.WorkerCount)
	assert.Equal(t, 1024, s.config.BufferSize)

	current, capacity := s.GetBufferUsage()
	assert.Zero(t, current)
	assert.Zero(t, capacity)
}
