package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"sudooom.im.mahjong/internal/handler"
	appErrors "sudooom.im.mahjong/pkg/errors"
)

// CommandHandler 指令处理器接口
type CommandHandler interface {
	Handle(ctx context.Context, cmd *handler.Command) *handler.Reply
}

// SubscriberConfig Worker Pool 配置
type SubscriberConfig struct {
	WorkerCount int // Worker 数量
	BufferSize  int // 消息缓冲区大小
}

// CommandSubscriber 指令订阅器
type CommandSubscriber struct {
	nc           *nats.Conn
	handler      CommandHandler
	logger       *slog.Logger
	subscription *nats.Subscription
	config       SubscriberConfig
	msgChan      chan *nats.Msg
	wg           sync.WaitGroup
	cancelFunc   context.CancelFunc
}

// NewCommandSubscriber 创建指令订阅器
func NewCommandSubscriber(nc *nats.Conn, handler CommandHandler, config SubscriberConfig) *CommandSubscriber {
	// 设置默认值
	if config.WorkerCount <= 0 {
		config.WorkerCount = 16
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 1024
	}

	return &CommandSubscriber{
		nc:      nc,
		handler: handler,
		logger:  slog.Default().With("component", "nats.subscriber"),
		config:  config,
	}
}

// Start 启动订阅
func (s *CommandSubscriber) Start(ctx context.Context) error {
	// 创建带缓冲的消息通道
	s.msgChan = make(chan *nats.Msg, s.config.BufferSize)

	// 创建可取消的上下文
	workerCtx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel

	// 启动 Worker Pool
	for i := 0; i < s.config.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(workerCtx)
	}

	// 使用队列组实现负载均衡
	sub, err := s.nc.QueueSubscribe(SubjectCommand, QueueGroupMahjong, s.enqueue)
	if err != nil {
		cancel()
		return err
	}

	s.subscription = sub
	s.logger.Info("NATS 指令订阅已启动",
		"subject", SubjectCommand,
		"workerCount", s.config.WorkerCount,
		"bufferSize", s.config.BufferSize,
	)
	return nil
}

func (s *CommandSubscriber) enqueue(msg *nats.Msg) {
	select {
	case s.msgChan <- msg:
	default:
		// 缓冲区满，直接回复服务繁忙
		s.logger.Warn("指令缓冲区已满，丢弃消息", "bufferSize", s.config.BufferSize)
		s.respond(msg, &handler.Reply{
			Code:    appErrors.CodeServerError,
			Message: "服务繁忙",
		})
	}
}

// worker 工作协程
func (s *CommandSubscriber) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.msgChan:
			if !ok {
				return
			}
			s.handleMessage(ctx, msg)
		}
	}
}

// handleMessage 解析并执行一条指令
func (s *CommandSubscriber) handleMessage(ctx context.Context, msg *nats.Msg) {
	var cmd handler.Command
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		s.logger.Error("指令解析失败", "error", err)
		s.respond(msg, &handler.Reply{
			Code:    appErrors.CodeInvalidParams,
			Message: appErrors.ErrInvalidParams.Message,
		})
		return
	}

	s.respond(msg, s.handler.Handle(ctx, &cmd))
}

func (s *CommandSubscriber) respond(msg *nats.Msg, reply *handler.Reply) {
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(reply)
	if err != nil {
		s.logger.Error("序列化回复失败", "reqId", reply.ReqId, "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		s.logger.Warn("回复指令失败", "reqId", reply.ReqId, "error", err)
	}
}

// Stop 停止订阅
func (s *CommandSubscriber) Stop() error {
	// 先取消订阅，不再有新消息入队
	if s.subscription != nil {
		if err := s.subscription.Unsubscribe(); err != nil {
			s.logger.Error("取消订阅失败", "error", err)
		}
	}

	// 取消 worker 上下文
	if s.cancelFunc != nil {
		s.cancelFunc()
	}

	// 等待所有 worker 完成
	s.wg.Wait()

	s.logger.Info("NATS 指令订阅已停止")
	return nil
}

// GetBufferUsage 获取缓冲区使用情况（用于监控）
func (s *CommandSubscriber) GetBufferUsage() (current int, capacity int) {
	if s.msgChan == nil {
		return 0, 0
	}
	return len(s.msgChan), cap(s.msgChan)
}
