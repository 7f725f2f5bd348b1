package server

import (
	"fmt"
	"net"

	kcp "github.com/xtaci/kcp-go/v5"
)

// Listener 对 tcp 与 kcp 的统一封装
type Listener interface {
	Accept() (net.Conn, error)
	Close() error
	Addr() net.Addr
}

func newListener(proto, addr string) (Listener, error) {
	switch proto {
	case "tcp":
		l, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, err
		}
		return &tcpListener{l: l}, nil
	case "kcp":
		l, err := kcp.ListenWithOptions(addr, nil, 0, 0)
		if err != nil {
			return nil, err
		}
		return &kcpListener{l: l}, nil
	default:
		return nil, fmt.Errorf("不支持的协议: %s", proto)
	}
}

type tcpListener struct {
	l net.Listener
}

func (t *tcpListener) Accept() (net.Conn, error) {
	conn, err := t.l.Accept()
	if err != nil {
		return nil, err
	}
	// 快照按帧推送，关掉 Nagle
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return conn, nil
}

func (t *tcpListener) Close() error   { return t.l.Close() }
func (t *tcpListener) Addr() net.Addr { return t.l.Addr() }

type kcpListener struct {
	l *kcp.Listener
}

// Accept 每个会话使用快速模式：nodelay, 10ms 间隔, 快速重传, 关闭拥塞控制
func (k *kcpListener) Accept() (net.Conn, error) {
	sess, err := k.l.AcceptKCP()
	if err != nil {
		return nil, err
	}
	sess.SetNoDelay(1, 10, 2, 1)
	sess.SetWindowSize(256, 256)
	sess.SetStreamMode(true)
	return sess, nil
}

func (k *kcpListener) Close() error   { return k.l.Close() }
func (k *kcpListener) Addr() net.Addr { return k.l.Addr() }
