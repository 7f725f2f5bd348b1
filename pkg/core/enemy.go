package core

// EnemyType 敌人行为类别
type EnemyType int

const (
	EnemyWanderer EnemyType = iota // 随机游荡
	EnemyChaser                    // 靠近时追击玩家
	EnemyGhost                     // 可穿砖
	EnemyBomber                    // 会放炸弹
	EnemyHunter                    // 超时惩罚刷出的追猎者
)

func (t EnemyType) String() string {
	switch t {
	case EnemyWanderer:
		return "wanderer"
	case EnemyChaser:
		return "chaser"
	case EnemyGhost:
		return "ghost"
	case EnemyBomber:
		return "bomber"
	case EnemyHunter:
		return "hunter"
	}
	return "unknown"
}

// ParseEnemyType 根据名称解析敌人类型
func ParseEnemyType(name string) (EnemyType, bool) {
	for t := EnemyWanderer; t <= EnemyHunter; t++ {
		if t.String() == name {
			return t, true
		}
	}
	return EnemyWanderer, false
}

// Points 击杀分值
func (t EnemyType) Points() int {
	switch t {
	case EnemyWanderer:
		return 100
	case EnemyChaser:
		return 200
	case EnemyGhost:
		return 400
	case EnemyBomber:
		return 800
	case EnemyHunter:
		return 50
	}
	return 0
}

// Speed 移动速度（像素/秒）
func (t EnemyType) Speed() float64 {
	switch t {
	case EnemyWanderer:
		return 60
	case EnemyChaser:
		return 80
	case EnemyGhost:
		return 50
	case EnemyBomber:
		return 70
	case EnemyHunter:
		return 110
	}
	return 60
}

// PassesBlocks 是否可以穿过砖块
func (t EnemyType) PassesBlocks() bool {
	return t == EnemyGhost || t == EnemyHunter
}

// contactByGrid 穿砖类敌人按格子判定接触，其余按碰撞盒
func (t EnemyType) contactByGrid() bool {
	return t == EnemyGhost
}

// Enemy 敌人
type Enemy struct {
	body
	ID               int
	Type             EnemyType
	Points           int
	Direction        Direction
	Speed            float64
	Active           bool
	IsDying          bool
	DyingTimer       float64
	MarkedForRemoval bool
	ActiveBombs      int
}

// NewEnemy 在格子中心创建敌人
func NewEnemy(id int, t EnemyType, pos GridPos) *Enemy {
	e := &Enemy{
		body:      body{W: EnemyWidth, H: EnemyHeight},
		ID:        id,
		Type:      t,
		Points:    t.Points(),
		Direction: DirNone,
		Speed:     t.Speed(),
		Active:    true,
	}
	e.placeAt(pos)
	return e
}

// IsAlive 存活且未进入死亡动画
func (e *Enemy) IsAlive() bool {
	return e.Active && !e.IsDying && !e.MarkedForRemoval
}

// Bounds 碰撞盒（左上角像素与宽高）
func (e *Enemy) Bounds() (x, y float64, w, h int) {
	return e.X, e.Y, e.W, e.H
}

// Intent 敌人 AI 每帧给出的移动/攻击意图
type Intent struct {
	Dir       Direction
	PlaceBomb bool
}

// kill 进入死亡动画
func (e *Enemy) kill(duration float64) {
	e.IsDying = true
	e.DyingTimer = duration
}

// update 推进死亡动画
func (e *Enemy) update(dt float64) {
	if !e.IsDying {
		return
	}
	e.DyingTimer -= dt
	if e.DyingTimer <= timerEpsilon {
		e.Active = false
		e.MarkedForRemoval = true
	}
}
