// Package protocol 快照宿主与观看端之间的线格式
// 所有消息都按 protobuf 线格式编码，外层统一包一层 Packet{Type, Payload}
package protocol

import (
	"errors"
	"fmt"

	"bombsim/pkg/core"
)

// MessageType 消息类型
type MessageType int32

const (
	MessageUnspecified MessageType = iota
	MessageHello                   // 客户端 -> 服务器：加入会话
	MessageWelcome                 // 服务器 -> 客户端：会话参数
	MessageInput                   // 客户端 -> 服务器：操控输入
	MessageSnapshot                // 服务器 -> 客户端：整帧快照
	MessageEvent                   // 服务器 -> 客户端：模拟事件
	MessageResult                  // 服务器 -> 客户端：结算与签名凭证
	MessagePing
	MessagePong
)

func (t MessageType) String() string {
	switch t {
	case MessageHello:
		return "hello"
	case MessageWelcome:
		return "welcome"
	case MessageInput:
		return "input"
	case MessageSnapshot:
		return "snapshot"
	case MessageEvent:
		return "event"
	case MessageResult:
		return "result"
	case MessagePing:
		return "ping"
	case MessagePong:
		return "pong"
	}
	return "unspecified"
}

// ErrUnexpectedType Parse* 收到的包类型不匹配
var ErrUnexpectedType = errors.New("unexpected message type")

// Packet 外层消息
type Packet struct {
	Type    MessageType
	Payload []byte
}

// Hello 加入请求，Pilot 为 true 时申请操控玩家
type Hello struct {
	Name  string
	Pilot bool
}

// Welcome 会话参数
type Welcome struct {
	TPS    int
	Pilot  bool // 是否获得了操控权
	Level  int
	Width  int
	Height int
}

// Result 结算结果与服务器签发的凭证
type Result struct {
	core.RoundResult
	Receipt string
}

// ========== 序列化与反序列化 ==========

// MarshalPacket 将 Packet 编码为字节切片
func MarshalPacket(pkt Packet) []byte {
	var e encoder
	e.varint(1, int64(pkt.Type))
	e.bytes(2, pkt.Payload)
	return e.b
}

// UnmarshalPacket 将字节切片解码为 Packet
func UnmarshalPacket(data []byte) (Packet, error) {
	var pkt Packet
	err := walk(data, func(f field) error {
		switch f.num {
		case 1:
			pkt.Type = MessageType(f.asInt())
		case 2:
			pkt.Payload = f.raw
		}
		return nil
	})
	if err != nil {
		return Packet{}, fmt.Errorf("解析包失败: %w", err)
	}
	return pkt, nil
}

func expect(pkt Packet, t MessageType) error {
	if pkt.Type != t {
		return fmt.Errorf("%w: want %v, got %v", ErrUnexpectedType, t, pkt.Type)
	}
	return nil
}

// ========== 客户端消息 ==========

// NewHelloPacket 构造加入请求
func NewHelloPacket(h Hello) Packet {
	var e encoder
	e.str(1, h.Name)
	e.flag(2, h.Pilot)
	return Packet{Type: MessageHello, Payload: e.b}
}

// NewInputPacket 构造输入消息，seq 由客户端递增
func NewInputPacket(seq uint32, in core.Input) Packet {
	var e encoder
	e.varint(1, int64(seq))
	e.varint(2, int64(in.Bits()))
	return Packet{Type: MessageInput, Payload: e.b}
}

// NewPingPacket 构造心跳
func NewPingPacket(clientTime int64) Packet {
	var e encoder
	e.varint(1, clientTime)
	return Packet{Type: MessagePing, Payload: e.b}
}

// ========== 服务器消息 ==========

// NewWelcomePacket 构造会话参数
func NewWelcomePacket(w Welcome) Packet {
	var e encoder
	e.varint(1, int64(w.TPS))
	e.flag(2, w.Pilot)
	e.varint(3, int64(w.Level))
	e.varint(4, int64(w.Width))
	e.varint(5, int64(w.Height))
	return Packet{Type: MessageWelcome, Payload: e.b}
}

// NewSnapshotPacket 构造整帧快照
func NewSnapshotPacket(s *core.Snapshot) Packet {
	var e encoder
	encodeSnapshot(&e, s)
	return Packet{Type: MessageSnapshot, Payload: e.b}
}

// NewEventPacket 构造事件消息
func NewEventPacket(ev core.Event) Packet {
	var e encoder
	encodeEvent(&e, ev)
	return Packet{Type: MessageEvent, Payload: e.b}
}

// NewResultPacket 构造结算消息
func NewResultPacket(r Result) Packet {
	var e encoder
	encodeResult(&e, r.RoundResult)
	e.str(20, r.Receipt)
	return Packet{Type: MessageResult, Payload: e.b}
}

// NewPongPacket 构造心跳响应
func NewPongPacket(clientTime, serverTime, serverFrame int64) Packet {
	var e encoder
	e.varint(1, clientTime)
	e.varint(2, serverTime)
	e.varint(3, serverFrame)
	return Packet{Type: MessagePong, Payload: e.b}
}

// ========== 消息解析辅助 ==========

// ParseHello 从 Packet 中解析 Hello
func ParseHello(pkt Packet) (Hello, error) {
	var h Hello
	if err := expect(pkt, MessageHello); err != nil {
		return h, err
	}
	err := walk(pkt.Payload, func(f field) error {
		switch f.num {
		case 1:
			h.Name = string(f.raw)
		case 2:
			h.Pilot = f.asBool()
		}
		return nil
	})
	return h, err
}

// ParseWelcome 从 Packet 中解析 Welcome
func ParseWelcome(pkt Packet) (Welcome, error) {
	var w Welcome
	if err := expect(pkt, MessageWelcome); err != nil {
		return w, err
	}
	err := walk(pkt.Payload, func(f field) error {
		switch f.num {
		case 1:
			w.TPS = f.asInt()
		case 2:
			w.Pilot = f.asBool()
		case 3:
			w.Level = f.asInt()
		case 4:
			w.Width = f.asInt()
		case 5:
			w.Height = f.asInt()
		}
		return nil
	})
	return w, err
}

// ParseInput 从 Packet 中解析输入
func ParseInput(pkt Packet) (uint32, core.Input, error) {
	if err := expect(pkt, MessageInput); err != nil {
		return 0, core.Input{}, err
	}
	var seq uint32
	var bits uint8
	err := walk(pkt.Payload, func(f field) error {
		switch f.num {
		case 1:
			seq = uint32(f.v)
		case 2:
			bits = uint8(f.v)
		}
		return nil
	})
	return seq, core.InputFromBits(bits), err
}

// ParseSnapshot 从 Packet 中解析快照
func ParseSnapshot(pkt Packet) (core.Snapshot, error) {
	if err := expect(pkt, MessageSnapshot); err != nil {
		return core.Snapshot{}, err
	}
	return decodeSnapshot(pkt.Payload)
}

// ParseEvent 从 Packet 中解析事件
func ParseEvent(pkt Packet) (core.Event, error) {
	if err := expect(pkt, MessageEvent); err != nil {
		return core.Event{}, err
	}
	return decodeEvent(pkt.Payload)
}

// ParseResult 从 Packet 中解析结算
func ParseResult(pkt Packet) (Result, error) {
	var r Result
	if err := expect(pkt, MessageResult); err != nil {
		return r, err
	}
	rr, err := decodeResult(pkt.Payload, func(f field) {
		if f.num == 20 {
			r.Receipt = string(f.raw)
		}
	})
	r.RoundResult = rr
	return r, err
}

// ParsePing 从 Packet 中解析心跳
func ParsePing(pkt Packet) (int64, error) {
	if err := expect(pkt, MessagePing); err != nil {
		return 0, err
	}
	var t int64
	err := walk(pkt.Payload, func(f field) error {
		if f.num == 1 {
			t = f.asInt64()
		}
		return nil
	})
	return t, err
}

// Pong 心跳响应
type Pong struct {
	ClientTime  int64
	ServerTime  int64
	ServerFrame int64
}

// ParsePong 从 Packet 中解析心跳响应
func ParsePong(pkt Packet) (Pong, error) {
	var p Pong
	if err := expect(pkt, MessagePong); err != nil {
		return p, err
	}
	err := walk(pkt.Payload, func(f field) error {
		switch f.num {
		case 1:
			p.ClientTime = f.asInt64()
		case 2:
			p.ServerTime = f.asInt64()
		case 3:
			p.ServerFrame = f.asInt64()
		}
		return nil
	})
	return p, err
}
