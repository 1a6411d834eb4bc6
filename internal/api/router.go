package api

import (
	"github.com/gin-gonic/gin"

	"sudooom.im.mahjong/internal/config"
	"sudooom.im.mahjong/pkg/jwt"
)

// SetupRouter 设置路由
func SetupRouter(cfg config.HTTPConfig, jwtService *jwt.Service, h *Handler, hub *Hub) *gin.Engine {
	// 设置 Gin 模式
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(CORS(cfg.AllowedOrigins))

	// API v1
	v1 := r.Group("/api/v1")
	{
		// 认证接口（无需登录）
		v1.POST("/auth/token", h.IssueToken)
		v1.GET("/leaderboard", h.Leaderboard)

		// 需要认证的接口
		authenticated := v1.Group("")
		authenticated.Use(JWTAuth(jwtService))
		{
			rooms := authenticated.Group("/rooms")
			{
				rooms.GET("", h.ListRooms)
				rooms.POST("", h.CreateRoom)
				rooms.GET("/:id", h.GetRoom)
				rooms.POST("/:id/join", h.JoinRoom)
			}

			// 当前所在房间
			current := authenticated.Group("/room")
			{
				current.GET("", h.CurrentRoom)
				current.POST("/leave", h.LeaveRoom)
				current.DELETE("", h.DismissRoom)
				current.POST("/bots", h.AddBot)
				current.DELETE("/players/:playerId", h.KickPlayer)
				current.POST("/invites/:playerId", h.InvitePlayer)
				current.POST("/start", h.StartGame)
				current.POST("/next", h.NextRound)
			}

			game := authenticated.Group("/game")
			{
				game.POST("/action", h.GameAction)
				game.GET("/hand", h.Hand)
			}

			me := authenticated.Group("/me")
			{
				me.GET("/profile", h.Profile)
				me.GET("/matches", h.Matches)
				me.GET("/invite", h.PendingInvite)
				me.POST("/invite/accept", h.AcceptInvite)
			}

			authenticated.GET("/ws", hub.ServeWS)
		}
	}

	return r
}
