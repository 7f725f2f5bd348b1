package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"bombsim/internal/config"
	"bombsim/pkg/protocol"
)

var (
	ErrSendQueueFull = errors.New("发送队列满")
	ErrConnClosed    = errors.New("连接已关闭")
)

// Connection 一个观看端的网络连接
type Connection struct {
	conn   net.Conn
	room   *Room
	cfg    config.ServerConfig
	logger *log.Logger
	id     atomic.Int64 // 0 表示尚未加入

	// 只限制操控输入，心跳不受影响
	limiter *rate.Limiter

	sendChan chan []byte
	closeCh  chan struct{}
	closed   bool
	closeMu  sync.Mutex

	lastRecvTime atomic.Value
	rtt          atomic.Int64
}

var _ Session = (*Connection)(nil)

// NewConnection 包装一个已接受的连接
func NewConnection(conn net.Conn, room *Room, cfg config.ServerConfig, logger *log.Logger) *Connection {
	c := &Connection{
		conn:     conn,
		room:     room,
		cfg:      cfg,
		logger:   logger.With("remote", conn.RemoteAddr().String()),
		limiter:  rate.NewLimiter(rate.Limit(cfg.InputRate), cfg.InputBurst),
		sendChan: make(chan []byte, 256),
		closeCh:  make(chan struct{}),
	}
	c.lastRecvTime.Store(time.Now())
	return c
}

// Handle 处理连接直到断开或 ctx 取消
func (c *Connection) Handle(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	wg.Add(3)
	go c.startHeartbeat(ctx, wg)
	go c.sendLoop(ctx, wg)
	go c.receiveLoop(ctx, wg)

	select {
	case <-ctx.Done():
	case <-c.closeCh:
	}
	c.Close()
}

// ID 房间分配的编号
func (c *Connection) ID() int {
	return int(c.id.Load())
}

// RTT 最近一次心跳往返时间（毫秒）
func (c *Connection) RTT() int64 {
	return c.rtt.Load()
}

// Close 关闭连接并通知房间
func (c *Connection) Close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.closeCh)
	c.conn.Close()
	close(c.sendChan)

	if id := c.ID(); id > 0 {
		go c.room.Leave(id)
	}
	c.logger.Debug("连接已关闭", "id", c.ID())
}

// Send 异步发送，队列满时丢弃
func (c *Connection) Send(data []byte) error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return ErrConnClosed
	}

	select {
	case c.sendChan <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (c *Connection) sendLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.sendChan:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := protocol.WriteFrame(c.conn, data); err != nil {
				c.logger.Warn("发送失败", "id", c.ID(), "err", err)
				c.Close()
				return
			}
		}
	}
}

func (c *Connection) receiveLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		data, err := protocol.ReadFrame(c.conn)
		if err != nil {
			var netErr net.Error
			switch {
			case errors.As(err, &netErr) && netErr.Timeout():
				c.logger.Info("读取超时", "id", c.ID())
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
			default:
				c.logger.Warn("读取失败", "id", c.ID(), "err", err)
			}
			c.Close()
			return
		}
		if len(data) == 0 {
			continue
		}

		c.lastRecvTime.Store(time.Now())
		if err := c.handleMessage(data); err != nil {
			c.logger.Warn("处理消息失败", "id", c.ID(), "err", err)
			if errors.Is(err, ErrRoomFull) || errors.Is(err, ErrRoomClosed) {
				c.Close()
				return
			}
		}
	}
}

func (c *Connection) handleMessage(data []byte) error {
	event, err := DecodePacket(data)
	if err != nil {
		return fmt.Errorf("反序列化失败: %w", err)
	}

	switch event.Kind {
	case EventHello:
		if c.ID() > 0 {
			return fmt.Errorf("重复加入请求")
		}
		_, pilot, err := c.room.Join(func(id int) Session {
			c.id.Store(int64(id))
			return c
		}, *event.Hello)
		if err != nil {
			c.id.Store(0)
			return fmt.Errorf("加入失败: %w", err)
		}
		c.logger.Info("加入成功", "id", c.ID(), "name", event.Hello.Name, "pilot", pilot)

	case EventInput:
		if c.ID() == 0 {
			return fmt.Errorf("未加入就发送输入")
		}
		if !c.limiter.Allow() {
			c.logger.Debug("输入过快，已丢弃", "id", c.ID(), "seq", event.Input.Seq)
			return nil
		}
		c.room.EnqueueInput(c.ID(), *event.Input)

	case EventPing:
		pong := protocol.NewPongPacket(event.Ping.ClientTime, time.Now().UnixMilli(), c.room.Frame())
		_ = c.Send(protocol.MarshalPacket(pong))

	case EventPong:
		if event.Pong.ClientTime > 0 {
			c.rtt.Store(time.Now().UnixMilli() - event.Pong.ClientTime)
		}

	default:
		return fmt.Errorf("未知消息类型")
	}
	return nil
}

// String 返回连接的字符串表示
func (c *Connection) String() string {
	if id := c.ID(); id > 0 {
		return fmt.Sprintf("Connection{%d, %s}", id, c.conn.RemoteAddr())
	}
	return fmt.Sprintf("Connection{%s}", c.conn.RemoteAddr())
}

func (c *Connection) startHeartbeat(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(c.cfg.Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closeCh:
			return
		case <-ticker.C:
			lastRecv, _ := c.lastRecvTime.Load().(time.Time)
			if time.Since(lastRecv) > 3*c.cfg.Heartbeat {
				c.logger.Info("心跳超时", "id", c.ID())
				c.Close()
				return
			}
			_ = c.Send(protocol.MarshalPacket(protocol.NewPingPacket(time.Now().UnixMilli())))
		}
	}
}
