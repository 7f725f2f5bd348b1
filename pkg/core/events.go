package core

// EventKind 模拟过程中产生的事件类型
type EventKind int

const (
	EventExplosion EventKind = iota
	EventPowerUp
	EventEnemyDeath
	EventPlayerDeath
	EventBombPlaced
	EventBombKicked
	EventExitBlocked
	EventLevelComplete
	EventGameOver
	EventVictory
	EventCombo
	EventSpawnWarning
	EventEnemySpawn
	EventTimeUp
	EventShieldBreak
	EventBlockDestroyed
	EventRoundStart
	EventRoundAdvance
	EventRespawn
	EventSlowMo
)

var eventNames = [...]string{
	EventExplosion:      "explosion",
	EventPowerUp:        "powerup",
	EventEnemyDeath:     "enemy_death",
	EventPlayerDeath:    "player_death",
	EventBombPlaced:     "bomb_place",
	EventBombKicked:     "kick",
	EventExitBlocked:    "exit_blocked",
	EventLevelComplete:  "level_complete",
	EventGameOver:       "game_over",
	EventVictory:        "victory",
	EventCombo:          "combo",
	EventSpawnWarning:   "spawn_warning",
	EventEnemySpawn:     "enemy_spawn",
	EventTimeUp:         "time_up",
	EventShieldBreak:    "shield_break",
	EventBlockDestroyed: "block_destroyed",
	EventRoundStart:     "round_start",
	EventRoundAdvance:   "round_advance",
	EventRespawn:        "respawn",
	EventSlowMo:         "slowmo",
}

// String 事件标识名，音效/遥测等外部接收方以此为键
func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event 一条事件
// Actor 含义随事件而定：炸弹/爆炸为所有者，敌人事件为敌人 ID
// Value 为附加数值：得分、连杀数、道具类型等
type Event struct {
	Kind  EventKind
	Frame int64
	Pos   GridPos
	Actor int
	Value int
}

func (g *Game) emit(kind EventKind, pos GridPos, actor int) {
	g.emitValue(kind, pos, actor, 0)
}

// emitValue 事件先进入队列，再同步通知所有接收方
func (g *Game) emitValue(kind EventKind, pos GridPos, actor, value int) {
	ev := Event{Kind: kind, Frame: g.frame, Pos: pos, Actor: actor, Value: value}
	g.events = append(g.events, ev)
	for _, s := range g.sinks {
		g.notify(s, ev)
	}
}

// notify 接收方的失败不能影响模拟状态
func (g *Game) notify(s EventSink, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Warn("event sink panicked", "event", ev.Kind.String(), "err", r)
		}
	}()
	s.Notify(ev.Kind.String(), ev)
}

// DrainEvents 取出并清空事件队列
func (g *Game) DrainEvents() []Event {
	out := g.events
	g.events = nil
	return out
}
