package core

// EnemySpawn 关卡描述中的敌人出生点
type EnemySpawn struct {
	Pos  GridPos
	Type EnemyType
}

// PowerUpPlacement 关卡描述中的隐藏道具
type PowerUpPlacement struct {
	Pos  GridPos
	Type PowerUpType
}

// LevelDescriptor 关卡内容生成器的输出，引擎只消费它
type LevelDescriptor struct {
	Level           int
	Seed            int64
	Width, Height   int
	Layout          LayoutPattern
	Mechanic        SpecialMechanic
	BlockDensity    float64
	PlayerSpawn     GridPos
	EnemySpawns     []EnemySpawn
	PowerUps        []PowerUpPlacement
	Exit            *GridPos // nil 时随机藏在某个砖块下
	TimeLimit       float64
	ScoreMultiplier float64
}

// LevelGenerator 关卡内容生成器
type LevelGenerator interface {
	Generate(level int, seed int64) (LevelDescriptor, error)
}

// EnemyAI 敌人 AI
// 每帧先调用一次 PrecomputeDangerZones，再为每个存活敌人调用 Update
// 实现只读取传入的状态，不得修改
type EnemyAI interface {
	PrecomputeDangerZones(grid *Grid, bombs []Bomb, explosions []*Explosion)
	Update(enemy *Enemy, player *Player, dt float64) Intent
}

// EventSink 音效、震动、遥测等事件接收方，即发即弃
type EventSink interface {
	Notify(name string, ev Event)
}

// EventSinkFunc 函数适配器
type EventSinkFunc func(name string, ev Event)

func (f EventSinkFunc) Notify(name string, ev Event) { f(name, ev) }

// Outcome 结算类型
type Outcome int

const (
	OutcomeLevelComplete Outcome = iota
	OutcomeGameOver
	OutcomeVictory
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLevelComplete:
		return "level_complete"
	case OutcomeGameOver:
		return "game_over"
	case OutcomeVictory:
		return "victory"
	}
	return "unknown"
}

// LevelStats 单关统计，结算时用于计算奖励
type LevelStats struct {
	BombsUsed         int
	EnemiesKilled     int
	DamageTaken       bool
	PowerUpsCollected int
	BlocksDestroyed   int
}

// RoundResult 交给持久化接收方的汇总数据
type RoundResult struct {
	Level         int
	Outcome       Outcome
	Score         int
	Bonus         int
	Stars         int
	TimeRemaining float64
	Lives         int
	Stats         LevelStats
}

// ResultSink 成绩持久化接收方
type ResultSink interface {
	RecordResult(r RoundResult) error
}
