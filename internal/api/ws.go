package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"sudooom.im.mahjong/internal/handler"
	appErrors "sudooom.im.mahjong/pkg/errors"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 120 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
	maxMessage = 4096
)

// 下行帧类型
const (
	FrameEvent = "event"
	FrameReply = "reply"
)

// Frame WebSocket 下行帧
type Frame struct {
	Type   string         `json:"type"`
	Event  string         `json:"event,omitempty"`
	RoomId string         `json:"roomId,omitempty"`
	Data   any            `json:"data,omitempty"`
	Reply  *handler.Reply `json:"reply,omitempty"`
}

type client struct {
	playerID string
	ws       *websocket.Conn
	send     chan []byte
}

// Hub 管理玩家的 WebSocket 连接，实现 game.Notifier
//
// 每个玩家只保留一条连接，新连接会顶掉旧连接。
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client
	commands *handler.CommandHandler
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub 创建连接管理器，开始服务前需调用 SetCommands
func NewHub(allowedOrigins []string) *Hub {
	return &Hub{
		clients:  make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || originAllowed(allowedOrigins, origin)
			},
		},
		logger: slog.Default().With("component", "api.hub"),
	}
}

// SetCommands 设置指令处理器
func (h *Hub) SetCommands(commands *handler.CommandHandler) {
	h.commands = commands
}

// ServeWS 升级连接，需经过 JWTAuth
func (h *Hub) ServeWS(c *gin.Context) {
	playerID := GetPlayerID(c)
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket 升级失败", "playerId", playerID, "error", err)
		return
	}

	cl := &client{playerID: playerID, ws: ws, send: make(chan []byte, sendBuffer)}
	h.register(cl)
	h.logger.Info("玩家已连接", "playerId", playerID)

	go h.writePump(cl)
	h.readPump(cl)
}

// NotifyRoom 推送房间事件给在线的真人
func (h *Hub) NotifyRoom(ctx context.Context, roomID string, players []string, event string, data any) error {
	msg, err := json.Marshal(Frame{Type: FrameEvent, Event: event, RoomId: roomID, Data: data})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, p := range players {
		if cl, ok := h.clients[p]; ok {
			h.enqueue(cl, msg)
		}
	}
	return nil
}

// NotifyPlayer 推送私有事件，玩家不在线时忽略
func (h *Hub) NotifyPlayer(ctx context.Context, roomID, playerID, event string, data any) error {
	msg, err := json.Marshal(Frame{Type: FrameEvent, Event: event, RoomId: roomID, Data: data})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if cl, ok := h.clients[playerID]; ok {
		h.enqueue(cl, msg)
	}
	return nil
}

// Online 在线连接数
func (h *Hub) Online() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close 断开所有连接
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, cl := range h.clients {
		delete(h.clients, id)
		close(cl.send)
	}
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[cl.playerID]; ok {
		close(old.send)
	}
	h.clients[cl.playerID] = cl
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.clients[cl.playerID]; ok && current == cl {
		delete(h.clients, cl.playerID)
		close(cl.send)
	}
}

// enqueue 调用方需持有读锁，缓冲区满时丢弃
func (h *Hub) enqueue(cl *client, msg []byte) {
	select {
	case cl.send <- msg:
	default:
		h.logger.Warn("发送缓冲区已满，丢弃消息", "playerId", cl.playerID)
	}
}

func (h *Hub) reply(cl *client, reply *handler.Reply) {
	msg, err := json.Marshal(Frame{Type: FrameReply, Reply: reply})
	if err != nil {
		h.logger.Error("序列化回复失败", "playerId", cl.playerID, "error", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if current, ok := h.clients[cl.playerID]; ok && current == cl {
		h.enqueue(cl, msg)
	}
}

func (h *Hub) readPump(cl *client) {
	defer func() {
		h.unregister(cl)
		_ = cl.ws.Close()
		h.logger.Info("玩家已断开", "playerId", cl.playerID)
	}()

	cl.ws.SetReadLimit(maxMessage)
	_ = cl.ws.SetReadDeadline(time.Now().Add(pongWait))
	cl.ws.SetPongHandler(func(string) error {
		return cl.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := cl.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket 读取失败", "playerId", cl.playerID, "error", err)
			}
			return
		}

		var cmd handler.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.reply(cl, &handler.Reply{
				Code:    appErrors.CodeInvalidParams,
				Message: appErrors.ErrInvalidParams.Message,
			})
			continue
		}
		// 身份以握手时的 Token 为准
		cmd.PlayerId = cl.playerID
		h.reply(cl, h.commands.Handle(context.Background(), &cmd))
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
