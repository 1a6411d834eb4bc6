package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sudooom.im.mahjong/internal/handler"
	"sudooom.im.mahjong/internal/model"
	appErrors "sudooom.im.mahjong/pkg/errors"
	"sudooom.im.mahjong/pkg/jwt"
	"sudooom.im.mahjong/pkg/response"
)

// Leaderboard 段位排行
type Leaderboard interface {
	TopByRank(ctx context.Context, limit int) ([]*model.Profile, error)
}

// MatchHistory 对局记录查询
type MatchHistory interface {
	FindByPlayer(ctx context.Context, playerId string, limit int) ([]*model.MatchRecord, error)
}

// Handler HTTP 接口，所有游戏操作都转成指令交给 CommandHandler
type Handler struct {
	commands    *handler.CommandHandler
	jwt         *jwt.Service
	leaderboard Leaderboard
	history     MatchHistory
}

// NewHandler 创建 HTTP 处理器，leaderboard 和 history 可以为 nil
func NewHandler(commands *handler.CommandHandler, jwtService *jwt.Service, leaderboard Leaderboard, history MatchHistory) *Handler {
	return &Handler{
		commands:    commands,
		jwt:         jwtService,
		leaderboard: leaderboard,
		history:     history,
	}
}

// TokenRequest 签发 Token 请求
type TokenRequest struct {
	PlayerId string `json:"playerId" binding:"required,max=64"`
}

// TokenResponse 签发 Token 响应
type TokenResponse struct {
	PlayerId  string `json:"playerId"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// IssueToken 按玩家 ID 签发 Token（不含账号体系）
func (h *Handler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrInvalidParams.WithReason("", err.Error()))
		return
	}

	token, expiresAt, err := h.jwt.GenerateToken(req.PlayerId)
	if err != nil {
		response.Error(c, appErrors.ErrServerError)
		return
	}
	response.Success(c, TokenResponse{
		PlayerId:  req.PlayerId,
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	})
}

// CreateRoomRequest 创建房间请求
type CreateRoomRequest struct {
	Mode      string `json:"mode"`
	MatchType string `json:"matchType"`
}

// ListRooms 大厅房间列表
func (h *Handler) ListRooms(c *gin.Context) {
	h.run(c, &handler.Command{Action: handler.ActionListRooms})
}

// CreateRoom 创建房间
func (h *Handler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrInvalidParams.WithReason("", err.Error()))
		return
	}
	h.run(c, &handler.Command{Action: handler.ActionCreateRoom, Mode: req.Mode, MatchType: req.MatchType})
}

// GetRoom 房间快照
func (h *Handler) GetRoom(c *gin.Context) {
	h.run(c, &handler.Command{Action: handler.ActionSnapshot, RoomId: c.Param("id")})
}

// JoinRoom 加入房间
func (h *Handler) JoinRoom(c *gin.Context) {
	h.run(c, &handler.Command{Action: handler.ActionJoinRoom, RoomId: c.Param("id")})
}

// CurrentRoom 当前所在房间
func (h *Handler) CurrentRoom(c *gin.Context) {
	h.run(c, &handler.Command{Action: handler.ActionCurrentRoom})
}

// LeaveRoom 离开房间
func (h *Handler) LeaveRoom(c *gin.Context) {
	h.run(c, &handler.Command{Action: handler.ActionLeaveRoom})
}

// DismissRoom 解散房间
func (h *Handler) DismissRoom(c *gin.Context) {
	h.run(c, &handler.Command{Action: handler.ActionDismissRoom})
}

// AddBot 添加机器人
func (h *Handler) AddBot(c *gin.Context) {
	h.run(c, &handler.Command{Action: handler.ActionAddBot})
}

// KickPlayer 踢出玩家
func (h *Handler) KickPlayer(c *gin.Context) {
	h.run(c, &handler.Command{Action: handler.ActionKick, Target: c.Param("playerId")})
}

// InvitePlayer 邀请玩家加入当前房间
func (h *Handler) InvitePlayer(c *gin.Context) {
	h.run(c, &handler.Command{Action: handler.ActionInvite, Target: c.Param("playerId")})
}

// PendingInvite 收到的邀请
func (h *Handler) PendingInvite(c *gin.Context) {
	h.run(c, &handler.Command{Action: handler.ActionPendingInvite})
}

// AcceptInvite 接受邀请
func (h *Handler) AcceptInvite(c *gin.Context) {
	h.run(c, &handler.Command{Action: handler.ActionAcceptInvite})
}

// StartGame 开始对局
func (h *Handler) StartGame(c *gin.Context) {
	h.run(c, &handler.Command{Action: handler.ActionStartGame})
}

// NextRound 开始下一局
func (h *Handler) NextRound(c *gin.Context) {
	h.run(c, &handler.Command{Action: handler.ActionNextRound})
}

// GameAction 牌桌操作，请求体即指令
func (h *Handler) GameAction(c *gin.Context) {
	var cmd handler.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, appErrors.ErrInvalidParams.WithReason("", err.Error()))
		return
	}
	h.run(c, &cmd)
}

// Hand 自己的手牌
func (h *Handler) Hand(c *gin.Context) {
	h.run(c, &handler.Command{Action: handler.ActionHand})
}

// Profile 段位档案
func (h *Handler) Profile(c *gin.Context) {
	h.run(c, &handler.Command{Action: handler.ActionProfile})
}

// Matches 最近的对局记录
func (h *Handler) Matches(c *gin.Context) {
	if h.history == nil {
		response.Success(c, []*model.MatchRecord{})
		return
	}
	records, err := h.history.FindByPlayer(c.Request.Context(), GetPlayerID(c), queryLimit(c))
	if err != nil {
		response.Error(c, appErrors.ErrDBError.Wrap(err))
		return
	}
	response.Success(c, records)
}

// Leaderboard 段位排行榜
func (h *Handler) Leaderboard(c *gin.Context) {
	if h.leaderboard == nil {
		response.Success(c, []*model.Profile{})
		return
	}
	profiles, err := h.leaderboard.TopByRank(c.Request.Context(), queryLimit(c))
	if err != nil {
		response.Error(c, appErrors.ErrDBError.Wrap(err))
		return
	}
	response.Success(c, profiles)
}

// run 以当前登录玩家的身份执行指令
func (h *Handler) run(c *gin.Context, cmd *handler.Command) {
	cmd.PlayerId = GetPlayerID(c)
	reply := h.commands.Handle(c.Request.Context(), cmd)
	c.JSON(http.StatusOK, response.Response{
		Code:    reply.Code,
		Message: reply.Message,
		Reason:  reply.Reason,
		Data:    reply.Data,
	})
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
