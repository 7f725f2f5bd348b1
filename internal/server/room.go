package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"bombsim/internal/config"
	"bombsim/internal/receipt"
	"bombsim/pkg/ai"
	"bombsim/pkg/core"
	"bombsim/pkg/protocol"
)

var (
	ErrRoomClosed = errors.New("房间已关闭")
	ErrRoomFull   = errors.New("观看人数已满")
)

// RoomDeps 房间依赖的协作方
type RoomDeps struct {
	Logger    *log.Logger
	Generator core.LevelGenerator
	Results   core.ResultSink  // 可为 nil
	Signer    *receipt.Signer  // 可为 nil，此时结算不带凭证
	Sinks     []core.EventSink // 额外的事件接收方
	Autopilot bool             // 没有远程操控者时由自动驾驶接管
	SessionID string           // 凭证 subject
}

// Room 驱动一局模拟并把快照推给所有观看端
// 模拟状态只在 Run 所在的协程里修改
type Room struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg    config.Config
	deps   RoomDeps
	logger *log.Logger
	dt     float64

	game      *core.Game
	brain     *ai.Brain
	autopilot *ai.Autopilot
	pending   []core.RoundResult // 本帧产生的结算
	loading   bool
	restartAt time.Time
	frame     atomic.Int64

	sessions map[int]Session
	nextID   int
	pilotID  int // 0 表示没有远程操控者
	remote   core.Input
	lastSeq  uint32

	joinCh  chan joinRequest
	inputCh chan inputEvent
	leaveCh chan int
	loadCh  chan levelLoad
}

type joinRequest struct {
	sess   func(id int) Session
	hello  HelloEvent
	respCh chan joinResult
}

type joinResult struct {
	sess  Session
	pilot bool
	err   error
}

type inputEvent struct {
	id    int
	input InputEvent
}

type levelLoad struct {
	desc core.LevelDescriptor
	err  error
}

// NewRoom 创建房间，Run 之后才开始模拟
func NewRoom(parent context.Context, cfg config.Config, deps RoomDeps) *Room {
	ctx, cancel := context.WithCancel(parent)
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	r := &Room{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		deps:     deps,
		logger:   deps.Logger.WithPrefix("room"),
		dt:       1.0 / float64(cfg.Server.TPS),
		sessions: make(map[int]Session),
		nextID:   1,
		joinCh:   make(chan joinRequest),
		inputCh:  make(chan inputEvent, 256),
		leaveCh:  make(chan int, 256),
		loadCh:   make(chan levelLoad, 1),
	}
	r.restart()
	return r
}

// Run 房间主循环
func (r *Room) Run(wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(time.Second / time.Duration(r.cfg.Server.TPS))
	defer ticker.Stop()

	r.logger.Info("房间循环启动", "tps", r.cfg.Server.TPS, "autopilot", r.deps.Autopilot)

	for {
		select {
		case <-r.ctx.Done():
			r.closeAll()
			r.logger.Info("房间循环停止")
			return

		case req := <-r.joinCh:
			req.respCh <- r.handleJoin(req)

		case ev := <-r.inputCh:
			r.handleInput(ev)

		case id := <-r.leaveCh:
			r.handleLeave(id)

		case l := <-r.loadCh:
			r.handleLoad(l)

		case now := <-ticker.C:
			r.tick(now)
		}
	}
}

// Shutdown 停止房间
func (r *Room) Shutdown() {
	r.cancel()
}

// Frame 当前帧号，可在任意协程读取
func (r *Room) Frame() int64 {
	return r.frame.Load()
}

// Join 注册一个观看端，newSession 收到分配的 ID 后构造会话
func (r *Room) Join(newSession func(id int) Session, hello HelloEvent) (Session, bool, error) {
	respCh := make(chan joinResult, 1)

	select {
	case <-r.ctx.Done():
		return nil, false, ErrRoomClosed
	case r.joinCh <- joinRequest{sess: newSession, hello: hello, respCh: respCh}:
	}

	select {
	case <-r.ctx.Done():
		return nil, false, ErrRoomClosed
	case res := <-respCh:
		return res.sess, res.pilot, res.err
	}
}

// EnqueueInput 转交操控输入
func (r *Room) EnqueueInput(id int, in InputEvent) {
	select {
	case <-r.ctx.Done():
	case r.inputCh <- inputEvent{id: id, input: in}:
	}
}

// Leave 注销观看端
func (r *Room) Leave(id int) {
	select {
	case <-r.ctx.Done():
	case r.leaveCh <- id:
	}
}

// ========== 主循环内部 ==========

func (r *Room) tick(now time.Time) {
	if !r.restartAt.IsZero() {
		if now.After(r.restartAt) {
			r.restart()
		}
		return
	}
	if r.loading || r.game.Grid == nil {
		return
	}

	r.game.Update(r.dt, r.nextInput())
	r.frame.Store(r.game.Frame())

	for _, ev := range r.game.DrainEvents() {
		r.broadcast(protocol.NewEventPacket(ev))
	}
	r.flushResults()

	snap := r.game.Snapshot()
	r.broadcast(protocol.NewSnapshotPacket(&snap))

	switch {
	case r.game.State.Terminal():
		r.restartAt = now.Add(r.cfg.Server.RestartDelay)
		r.logger.Info("本局结束", "state", r.game.State, "score", r.game.Score, "restart_in", r.cfg.Server.RestartDelay)
	case r.game.AwaitingAdvance():
		r.loadLevel(r.game.Level.Level + 1)
	}
}

// nextInput 远程操控者优先，其次自动驾驶
// 放弹与引爆只生效一次，方向键保持到下一条输入
func (r *Room) nextInput() core.Input {
	if r.pilotID != 0 {
		in := r.remote
		r.remote.Bomb = false
		r.remote.Detonate = false
		return in
	}
	if r.autopilot != nil {
		return r.autopilot.Decide(r.game, r.dt)
	}
	return core.Input{}
}

// restart 重新开一局，已连接的观看端保留
func (r *Room) restart() {
	opts := []core.Option{
		core.WithLogger(r.deps.Logger.WithPrefix("core")),
		core.WithEnemyAI(r.newBrain()),
		core.WithResultSink(resultRelay{r}),
	}
	for _, s := range r.deps.Sinks {
		opts = append(opts, core.WithEventSink(s))
	}
	r.game = core.NewGame(r.cfg.Engine, opts...)
	if r.deps.Autopilot {
		r.autopilot = ai.NewAutopilot(r.cfg.AI.AutopilotPreset(), r.cfg.Level.Seed)
	}
	r.restartAt = time.Time{}
	r.pending = nil
	r.loadLevel(1)
}

func (r *Room) newBrain() *ai.Brain {
	r.brain = ai.NewBrain(r.cfg.AI.EnemyPreset(), r.cfg.Engine.Bomb, r.cfg.Level.Seed)
	return r.brain
}

// loadLevel 在后台生成关卡，结果回到主循环里加载
func (r *Room) loadLevel(level int) {
	r.loading = true
	gen, seed := r.deps.Generator, r.cfg.Level.Seed
	go func() {
		desc, err := gen.Generate(level, seed)
		select {
		case r.loadCh <- levelLoad{desc: desc, err: err}:
		case <-r.ctx.Done():
		}
	}()
}

func (r *Room) handleLoad(l levelLoad) {
	r.loading = false
	err := l.err
	if err == nil {
		err = r.game.LoadLevel(l.desc)
	}
	if err != nil {
		r.logger.Error("加载关卡失败", "level", l.desc.Level, "err", err)
		r.restartAt = time.Now().Add(r.cfg.Server.RestartDelay)
		return
	}
	r.brain.Reset()
	r.logger.Info("关卡已加载", "level", l.desc.Level, "layout", l.desc.Layout, "enemies", len(l.desc.EnemySpawns))
	for id, sess := range r.sessions {
		_ = sess.Send(protocol.MarshalPacket(protocol.NewWelcomePacket(r.welcome(id == r.pilotID))))
	}
}

// flushResults 为本帧的结算签发凭证并推送
func (r *Room) flushResults() {
	for _, res := range r.pending {
		var token string
		if r.deps.Signer != nil {
			t, err := r.deps.Signer.Sign(res, r.deps.SessionID)
			if err != nil {
				r.logger.Error("签发凭证失败", "err", err)
			}
			token = t
		}
		r.logger.Info("结算", "level", res.Level, "outcome", res.Outcome, "score", res.Score, "stars", res.Stars)
		r.broadcast(protocol.NewResultPacket(protocol.Result{RoundResult: res, Receipt: token}))
	}
	r.pending = r.pending[:0]
}

func (r *Room) welcome(pilot bool) protocol.Welcome {
	w := protocol.Welcome{
		TPS:   r.cfg.Server.TPS,
		Pilot: pilot,
		Level: r.game.Level.Level,
	}
	if r.game.Grid != nil {
		w.Width, w.Height = r.game.Grid.Width, r.game.Grid.Height
	}
	return w
}

func (r *Room) handleJoin(req joinRequest) joinResult {
	if len(r.sessions) >= r.cfg.Server.MaxViewers {
		return joinResult{err: fmt.Errorf("%w (%d/%d)", ErrRoomFull, len(r.sessions), r.cfg.Server.MaxViewers)}
	}

	id := r.nextID
	r.nextID++
	sess := req.sess(id)

	pilot := req.hello.Pilot && r.pilotID == 0
	if err := sess.Send(protocol.MarshalPacket(protocol.NewWelcomePacket(r.welcome(pilot)))); err != nil {
		return joinResult{err: fmt.Errorf("发送会话参数失败: %w", err)}
	}
	if r.game.Grid != nil {
		snap := r.game.Snapshot()
		_ = sess.Send(protocol.MarshalPacket(protocol.NewSnapshotPacket(&snap)))
	}

	r.sessions[id] = sess
	if pilot {
		r.pilotID = id
		r.remote = core.Input{}
		r.lastSeq = 0
	}
	r.logger.Info("观看端加入", "id", id, "name", req.hello.Name, "pilot", pilot, "viewers", len(r.sessions))
	return joinResult{sess: sess, pilot: pilot}
}

func (r *Room) handleInput(ev inputEvent) {
	if ev.id != r.pilotID {
		return
	}
	if ev.input.Seq != 0 && ev.input.Seq <= r.lastSeq {
		return
	}
	r.lastSeq = ev.input.Seq

	// 放弹与引爆在下一次被消费前保持
	bomb, detonate := r.remote.Bomb, r.remote.Detonate
	r.remote = ev.input.Input
	r.remote.Bomb = r.remote.Bomb || bomb
	r.remote.Detonate = r.remote.Detonate || detonate
}

func (r *Room) handleLeave(id int) {
	if _, ok := r.sessions[id]; !ok {
		return
	}
	delete(r.sessions, id)
	if id == r.pilotID {
		r.pilotID = 0
		r.remote = core.Input{}
		r.logger.Info("操控者离开，交还自动驾驶", "id", id)
	}
	r.logger.Info("观看端离开", "id", id, "viewers", len(r.sessions))
}

func (r *Room) broadcast(pkt protocol.Packet) {
	if len(r.sessions) == 0 {
		return
	}
	data := protocol.MarshalPacket(pkt)
	for id, s := range r.sessions {
		if err := s.Send(data); err != nil && !errors.Is(err, ErrSendQueueFull) {
			r.logger.Debug("推送失败", "id", id, "type", pkt.Type, "err", err)
		}
	}
}

func (r *Room) closeAll() {
	for _, s := range r.sessions {
		s.Close()
	}
	r.sessions = make(map[int]Session)
}

// resultRelay 把结算转给持久化方，同时留给主循环签发凭证
type resultRelay struct {
	r *Room
}

func (rr resultRelay) RecordResult(res core.RoundResult) error {
	rr.r.pending = append(rr.r.pending, res)
	if rr.r.deps.Results != nil {
		return rr.r.deps.Results.RecordResult(res)
	}
	return nil
}
