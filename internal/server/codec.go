package server

import (
	"fmt"

	"bombsim/pkg/protocol"
)

// DecodePacket 解析服务器收到的数据包
func DecodePacket(data []byte) (*ServerEvent, error) {
	pkt, err := protocol.UnmarshalPacket(data)
	if err != nil {
		return nil, err
	}

	switch pkt.Type {
	case protocol.MessageHello:
		h, err := protocol.ParseHello(pkt)
		if err != nil {
			return nil, fmt.Errorf("解析加入请求失败: %w", err)
		}
		return &ServerEvent{
			Kind:  EventHello,
			Hello: &HelloEvent{Name: h.Name, Pilot: h.Pilot},
		}, nil

	case protocol.MessageInput:
		seq, in, err := protocol.ParseInput(pkt)
		if err != nil {
			return nil, fmt.Errorf("解析输入失败: %w", err)
		}
		return &ServerEvent{
			Kind:  EventInput,
			Input: &InputEvent{Seq: seq, Input: in},
		}, nil

	case protocol.MessagePing:
		ts, err := protocol.ParsePing(pkt)
		if err != nil {
			return nil, fmt.Errorf("解析心跳失败: %w", err)
		}
		return &ServerEvent{
			Kind: EventPing,
			Ping: &PingEvent{ClientTime: ts},
		}, nil

	case protocol.MessagePong:
		pong, err := protocol.ParsePong(pkt)
		if err != nil {
			return nil, fmt.Errorf("解析心跳响应失败: %w", err)
		}
		return &ServerEvent{
			Kind: EventPong,
			Pong: &PongEvent{ClientTime: pong.ClientTime, ServerTime: pong.ServerTime, ServerFrame: pong.ServerFrame},
		}, nil

	default:
		return &ServerEvent{Kind: EventUnknown}, nil
	}
}
