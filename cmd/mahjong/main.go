package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"sudooom.im.mahjong/internal/api"
	"sudooom.im.mahjong/internal/cache"
	"sudooom.im.mahjong/internal/config"
	"sudooom.im.mahjong/internal/game"
	"sudooom.im.mahjong/internal/handler"
	"sudooom.im.mahjong/internal/health"
	mjNats "sudooom.im.mahjong/internal/nats"
	"sudooom.im.mahjong/internal/repository"
	"sudooom.im.mahjong/internal/room"
	"sudooom.im.mahjong/internal/task"
	"sudooom.im.mahjong/pkg/jwt"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("加载配置失败", "error", err)
		os.Exit(1)
	}

	// 初始化日志
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// 创建上下文
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 连接 NATS
	natsClient, err := mjNats.NewClient(cfg.App.Name, cfg.NATS)
	if err != nil {
		logger.Error("连接 NATS 失败", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()
	logger.Info("已连接 NATS", "url", cfg.NATS.URL)

	// 连接 Redis
	redisClient := connectRedis(cfg.Redis)
	defer redisClient.Close()
	logger.Info("已连接 Redis", "host", cfg.Redis.Host)

	// 连接数据库
	db, err := connectDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Error("连接数据库失败", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("已连接 PostgreSQL", "host", cfg.Database.Host)

	// 延迟任务调度器
	scheduler := task.NewScheduler(task.Config{
		Slots:    cfg.Game.WheelSlots,
		Interval: cfg.Game.TickInterval,
		Workers:  cfg.Game.WorkerCount,
	})
	if err := scheduler.Start(); err != nil {
		logger.Error("启动调度器失败", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	// 房间管理
	rooms := room.NewManager(cache.NewRoomIndex(redisClient), cfg.Game.EvictTimeout, cfg.Game.EvictInterval)
	rooms.Start()

	// 事件同时推送到 NATS 和直连的 WebSocket
	hub := api.NewHub(cfg.HTTP.AllowedOrigins)
	notifier := game.MultiNotifier{mjNats.NewEventPublisher(natsClient.Conn()), hub}

	profiles := repository.NewProfileRepository(db)
	matches := repository.NewMatchRepository(db)

	gameCfg := game.DefaultConfig()
	gameCfg.BotDelay = cfg.Game.BotDelay
	gameCfg.RiichiDelay = cfg.Game.RiichiDelay
	gameCfg.NextRoundDelay = cfg.Game.NextRoundDelay
	gameCfg.AutoDraw = cfg.Game.AutoDraw
	gameCfg.InviteTTL = cfg.Game.InviteTTL

	svc := game.NewService(rooms, scheduler, notifier, profiles, gameCfg).
		WithMatchRecorder(matches)
	commands := handler.NewCommandHandler(svc)
	hub.SetCommands(commands)

	// 启动指令订阅
	subscriber := mjNats.NewCommandSubscriber(natsClient.Conn(), commands, mjNats.SubscriberConfig{
		WorkerCount: cfg.NATS.WorkerCount,
		BufferSize:  cfg.NATS.BufferSize,
	})
	if err := subscriber.Start(ctx); err != nil {
		logger.Error("启动指令订阅失败", "error", err)
		os.Exit(1)
	}

	// HTTP / WebSocket 服务
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expire, cfg.JWT.Issuer)
	router := api.SetupRouter(cfg.HTTP, jwtService, api.NewHandler(commands, jwtService, profiles, matches), hub)
	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}
	go serve(server, "HTTP", logger)

	// 健康检查服务
	checker := health.NewChecker(natsClient.Conn(), redisClient, db, rooms)
	healthServer := &http.Server{
		Addr:    cfg.App.HealthAddr,
		Handler: checker.Handler(),
	}
	go serve(healthServer, "健康检查", logger)

	logger.Info("麻将服务已启动", "name", cfg.App.Name, "addr", cfg.HTTP.Addr)

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭 HTTP 服务失败", "error", err)
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭健康检查服务失败", "error", err)
	}
	hub.Close()
	cancel()
	subscriber.Stop()
	if err := rooms.Shutdown(shutdownCtx); err != nil {
		logger.Error("清理房间失败", "error", err)
	}
	logger.Info("麻将服务已停止")
}

func serve(server *http.Server, name string, logger *slog.Logger) {
	logger.Info("服务已启动", "server", name, "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("服务异常退出", "server", name, "error", err)
	}
}

// connectRedis 连接 Redis
func connectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// connectDatabase 连接 PostgreSQL
func connectDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = 10 * time.Minute

	return pgxpool.NewWithConfig(ctx, poolConfig)
}
