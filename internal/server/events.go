package server

import (
	"bombsim/pkg/core"
)

// EventKind 连接收到的消息种类
type EventKind int

const (
	EventUnknown EventKind = iota
	EventHello
	EventInput
	EventPing
	EventPong
)

// HelloEvent 加入请求
type HelloEvent struct {
	Name  string
	Pilot bool // 申请操控玩家
}

// InputEvent 操控输入，Seq 由客户端递增，乱序的旧输入会被丢弃
type InputEvent struct {
	Seq   uint32
	Input core.Input
}

// PingEvent 客户端发起的心跳
type PingEvent struct {
	ClientTime int64
}

// PongEvent 客户端对服务器心跳的响应
type PongEvent struct {
	ClientTime  int64
	ServerTime  int64
	ServerFrame int64
}

// ServerEvent 解码后的消息
type ServerEvent struct {
	Kind  EventKind
	Hello *HelloEvent
	Input *InputEvent
	Ping  *PingEvent
	Pong  *PongEvent
}
