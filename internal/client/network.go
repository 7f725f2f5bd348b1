package client

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
	kcp "github.com/xtaci/kcp-go/v5"

	"bombsim/pkg/core"
	"bombsim/pkg/protocol"
)

var (
	ErrHandshakeTimeout = errors.New("等待会话参数超时")
	ErrDisconnected     = errors.New("与服务器的连接已断开")
)

// NetworkClient 连接快照宿主的网络客户端
// 接收循环只保留最新一帧快照，事件与结算进入有界队列
type NetworkClient struct {
	conn       net.Conn
	serverAddr string
	proto      string
	logger     *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// 最新状态
	mu       sync.RWMutex
	welcome  protocol.Welcome
	latest   *core.Snapshot
	version  uint64
	lastRecv time.Time
	err      error

	welcomeChan chan protocol.Welcome
	eventChan   chan core.Event
	resultChan  chan protocol.Result

	sendChan  chan []byte
	inputSeq  atomic.Uint32
	rtt       atomic.Int64
	closeOnce sync.Once
}

// NewNetworkClient 创建网络客户端，Connect 之后才可用
func NewNetworkClient(serverAddr, proto string, logger *log.Logger) *NetworkClient {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = log.Default()
	}
	return &NetworkClient{
		serverAddr:  serverAddr,
		proto:       proto,
		logger:      logger.WithPrefix("net"),
		ctx:         ctx,
		cancel:      cancel,
		welcomeChan: make(chan protocol.Welcome, 1),
		eventChan:   make(chan core.Event, EventQueueSize),
		resultChan:  make(chan protocol.Result, 16),
		sendChan:    make(chan []byte, SendQueueSize),
	}
}

// Connect 建立连接并完成握手，返回服务器下发的会话参数
func (nc *NetworkClient) Connect(hello protocol.Hello) (protocol.Welcome, error) {
	nc.logger.Info("连接到服务器", "addr", nc.serverAddr, "proto", nc.proto)

	conn, err := nc.dial()
	if err != nil {
		nc.cancel()
		return protocol.Welcome{}, fmt.Errorf("连接服务器失败: %w", err)
	}
	nc.conn = conn

	nc.wg.Add(3)
	go nc.receiveLoop()
	go nc.sendLoop()
	go nc.pingLoop()

	if err := nc.send(protocol.NewHelloPacket(hello)); err != nil {
		nc.Close()
		return protocol.Welcome{}, fmt.Errorf("发送加入请求失败: %w", err)
	}

	select {
	case w := <-nc.welcomeChan:
		nc.logger.Info("已加入", "pilot", w.Pilot, "level", w.Level, "tps", w.TPS)
		return w, nil
	case <-nc.ctx.Done():
		nc.Close()
		if err := nc.Err(); err != nil {
			return protocol.Welcome{}, err
		}
		return protocol.Welcome{}, ErrDisconnected
	case <-time.After(HandshakeTimeout):
		nc.Close()
		return protocol.Welcome{}, ErrHandshakeTimeout
	}
}

func (nc *NetworkClient) dial() (net.Conn, error) {
	switch nc.proto {
	case "", "tcp":
		return net.DialTimeout("tcp", nc.serverAddr, DialTimeout)
	case "kcp":
		conn, err := kcp.DialWithOptions(nc.serverAddr, nil, 0, 0)
		if err != nil {
			return nil, err
		}
		conn.SetStreamMode(true)
		conn.SetNoDelay(1, 10, 2, 1)
		conn.SetWindowSize(256, 256)
		return conn, nil
	default:
		return nil, fmt.Errorf("不支持的协议: %s", nc.proto)
	}
}

// Close 断开连接并等待后台协程退出
func (nc *NetworkClient) Close() {
	nc.closeOnce.Do(func() {
		nc.cancel()
		if nc.conn != nil {
			nc.conn.Close()
		}
	})
	nc.wg.Wait()
}

// Done 连接断开时关闭
func (nc *NetworkClient) Done() <-chan struct{} {
	return nc.ctx.Done()
}

// Err 导致断开的错误，正常关闭时为 nil
func (nc *NetworkClient) Err() error {
	nc.mu.RLock()
	defer nc.mu.RUnlock()
	return nc.err
}

func (nc *NetworkClient) fail(err error) {
	nc.mu.Lock()
	if nc.err == nil {
		nc.err = err
	}
	nc.mu.Unlock()
	nc.cancel()
	if nc.conn != nil {
		nc.conn.Close()
	}
}

// ========== 消息接收 ==========

func (nc *NetworkClient) receiveLoop() {
	defer nc.wg.Done()

	for {
		_ = nc.conn.SetReadDeadline(time.Now().Add(ReadTimeout))
		pkt, err := protocol.ReadPacket(nc.conn)
		if err != nil {
			select {
			case <-nc.ctx.Done():
				return
			default:
			}
			if errors.Is(err, io.EOF) {
				err = ErrDisconnected
			}
			nc.logger.Warn("接收失败", "err", err)
			nc.fail(err)
			return
		}
		if err := nc.handleMessage(pkt); err != nil {
			nc.logger.Warn("处理消息失败", "type", pkt.Type, "err", err)
		}
	}
}

func (nc *NetworkClient) handleMessage(pkt protocol.Packet) error {
	switch pkt.Type {
	case protocol.MessageWelcome:
		w, err := protocol.ParseWelcome(pkt)
		if err != nil {
			return err
		}
		nc.mu.Lock()
		nc.welcome = w
		nc.mu.Unlock()
		select {
		case nc.welcomeChan <- w:
		default:
		}

	case protocol.MessageSnapshot:
		snap, err := protocol.ParseSnapshot(pkt)
		if err != nil {
			return err
		}
		nc.mu.Lock()
		nc.latest = &snap
		nc.version++
		nc.lastRecv = time.Now()
		nc.mu.Unlock()

	case protocol.MessageEvent:
		ev, err := protocol.ParseEvent(pkt)
		if err != nil {
			return err
		}
		select {
		case nc.eventChan <- ev:
		default:
			nc.logger.Debug("事件队列满，已丢弃", "event", ev.Kind)
		}

	case protocol.MessageResult:
		res, err := protocol.ParseResult(pkt)
		if err != nil {
			return err
		}
		select {
		case nc.resultChan <- res:
		default:
		}

	case protocol.MessagePing:
		clientTime, err := protocol.ParsePing(pkt)
		if err != nil {
			return err
		}
		return nc.send(protocol.NewPongPacket(clientTime, time.Now().UnixMilli(), 0))

	case protocol.MessagePong:
		pong, err := protocol.ParsePong(pkt)
		if err != nil {
			return err
		}
		if pong.ClientTime > 0 {
			nc.rtt.Store(time.Now().UnixMilli() - pong.ClientTime)
		}

	default:
		return fmt.Errorf("%w: %s", protocol.ErrUnexpectedType, pkt.Type)
	}
	return nil
}

// ========== 消息发送 ==========

func (nc *NetworkClient) sendLoop() {
	defer nc.wg.Done()

	for {
		select {
		case <-nc.ctx.Done():
			return
		case data := <-nc.sendChan:
			if err := protocol.WriteFrame(nc.conn, data); err != nil {
				nc.logger.Warn("发送失败", "err", err)
				nc.fail(err)
				return
			}
		}
	}
}

func (nc *NetworkClient) pingLoop() {
	defer nc.wg.Done()

	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-nc.ctx.Done():
			return
		case <-ticker.C:
			_ = nc.send(protocol.NewPingPacket(time.Now().UnixMilli()))
		}
	}
}

// send 非阻塞入队，队列满时丢弃
func (nc *NetworkClient) send(pkt protocol.Packet) error {
	select {
	case <-nc.ctx.Done():
		return ErrDisconnected
	case nc.sendChan <- protocol.MarshalPacket(pkt):
		return nil
	default:
		return errors.New("发送队列满")
	}
}

// SendInput 发送操控输入并返回序号
func (nc *NetworkClient) SendInput(in core.Input) uint32 {
	seq := nc.inputSeq.Add(1)
	if err := nc.send(protocol.NewInputPacket(seq, in)); err != nil {
		nc.logger.Debug("发送输入失败", "seq", seq, "err", err)
	}
	return seq
}

// ========== 状态读取 ==========

// Latest 最新快照与其版本号，版本号在每次收到快照时递增
func (nc *NetworkClient) Latest() (*core.Snapshot, uint64) {
	nc.mu.RLock()
	defer nc.mu.RUnlock()
	return nc.latest, nc.version
}

// Welcome 最近一次收到的会话参数（换关时更新）
func (nc *NetworkClient) Welcome() protocol.Welcome {
	nc.mu.RLock()
	defer nc.mu.RUnlock()
	return nc.welcome
}

// Since 距上次收到快照的时间
func (nc *NetworkClient) Since() time.Duration {
	nc.mu.RLock()
	defer nc.mu.RUnlock()
	if nc.lastRecv.IsZero() {
		return 0
	}
	return time.Since(nc.lastRecv)
}

// PollEvents 取出所有待处理事件（非阻塞）
func (nc *NetworkClient) PollEvents() []core.Event {
	var out []core.Event
	for {
		select {
		case ev := <-nc.eventChan:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// PollResult 取出一条结算（非阻塞）
func (nc *NetworkClient) PollResult() (protocol.Result, bool) {
	select {
	case res := <-nc.resultChan:
		return res, true
	default:
		return protocol.Result{}, false
	}
}

// RTT 最近一次往返时间（毫秒）
func (nc *NetworkClient) RTT() int64 {
	return nc.rtt.Load()
}
