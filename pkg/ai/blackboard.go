package ai

import (
	"math"
	"math/rand"

	"bombsim/pkg/core"
)

// Blackboard 行为树共享数据，玩家自动驾驶与敌人共用
type Blackboard struct {
	Grid   *core.Grid
	Danger *DangerField
	Config *AIConfig
	RNG    *rand.Rand
	Walk   walkFunc

	// 角色自身
	Pos       core.GridPos
	X, Y      float64
	W, H      int
	Speed     float64 // 像素/秒
	BombRange int
	Fuse      float64
	CanBomb   bool

	// 感知
	Quarries []core.GridPos // 追击或轰炸的对象
	Exit     *core.GridPos  // 可进入的出口
	PowerUps []core.GridPos

	Target   *core.GridPos
	EscapeTo *core.GridPos
	Replan   bool // 思考间隔到期或局势变化，需要重新选目标

	// 本帧输出
	NextDir   core.Direction
	PlaceBomb bool

	// 游荡方向与剩余保持时间
	WanderDirection core.Direction
	WanderTime      float64
	Dt              float64
}

// ResetFrame 清空本帧输出
// 注意：EscapeTo、Target 与游荡方向跨帧保留，由各动作节点自行失效
func (bb *Blackboard) ResetFrame(dt float64) {
	bb.NextDir = core.DirNone
	bb.PlaceBomb = false
	bb.Dt = dt
}

// secondsPerCell 走过一格需要的时间
func (bb *Blackboard) secondsPerCell() float64 {
	if bb.Speed <= 0 {
		return math.Inf(1)
	}
	return core.TileSize / bb.Speed
}

// steer 朝相邻格子 next 移动
// 换轴前先把垂直方向对齐到格子中心，避免卡在柱子边缘
func (bb *Blackboard) steer(next core.GridPos) core.Direction {
	const slack = 2.0
	tx, ty := core.CenteredXY(next.GridX, next.GridY, bb.W, bb.H)
	dx, dy := tx-bb.X, ty-bb.Y

	if next.GridX == bb.Pos.GridX && math.Abs(dx) > slack {
		return signDir(dx, core.DirLeft, core.DirRight)
	}
	if next.GridY == bb.Pos.GridY && math.Abs(dy) > slack {
		return signDir(dy, core.DirUp, core.DirDown)
	}
	if next == bb.Pos {
		return core.DirNone
	}
	if math.Abs(dx) >= math.Abs(dy) {
		return signDir(dx, core.DirLeft, core.DirRight)
	}
	return signDir(dy, core.DirUp, core.DirDown)
}

func signDir(v float64, neg, pos core.Direction) core.Direction {
	if v < 0 {
		return neg
	}
	return pos
}
