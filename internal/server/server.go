// Package server 快照宿主：在一个房间里驱动模拟，通过 tcp/kcp 把快照推给观看端
package server

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/charmbracelet/log"

	"bombsim/internal/config"
)

// Server 监听连接并把它们交给房间
type Server struct {
	cfg    config.Config
	deps   RoomDeps
	logger *log.Logger

	room     *Room
	listener Listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// New 创建服务器
func New(cfg config.Config, deps RoomDeps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger.WithPrefix("server"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start 开始监听并启动房间，立即返回
func (s *Server) Start() error {
	l, err := newListener(s.cfg.Server.Proto, s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("监听失败: %w", err)
	}
	s.listener = l
	s.logger.Info("服务器监听中", "addr", l.Addr().String(), "proto", s.cfg.Server.Proto)

	s.room = NewRoom(s.ctx, s.cfg, s.deps)
	s.wg.Add(2)
	go s.room.Run(&s.wg)
	go s.acceptLoop()
	return nil
}

// Addr 实际监听地址
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown 关闭监听、房间和所有连接，等待协程退出
func (s *Server) Shutdown() {
	s.once.Do(func() {
		s.logger.Info("正在关闭服务器...")
		s.cancel()
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		s.logger.Info("服务器已关闭")
	})
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				s.logger.Warn("接受连接失败", "err", err)
				continue
			}
		}

		s.logger.Debug("新连接", "remote", conn.RemoteAddr().String())
		c := NewConnection(conn, s.room, s.cfg.Server, s.deps.Logger.WithPrefix("conn"))
		s.wg.Add(1)
		go c.Handle(s.ctx, &s.wg)
	}
}
