package ai

import (
	"bombsim/pkg/ai/bt"
	"bombsim/pkg/core"
)

func condCanBomb(bb *Blackboard) bool {
	return bb.CanBomb
}

// condQuarryNear 有追击对象在追击半径内
func condQuarryNear(bb *Blackboard) bool {
	for _, q := range bb.Quarries {
		if bb.Pos.Manhattan(q) <= bb.Config.ChaseRadius {
			return true
		}
	}
	return false
}

// actChase 沿避开危险格的最短路追向最近的对象
func actChase(bb *Blackboard) bt.Status {
	q, ok := nearest(bb.Pos, bb.Quarries)
	if !ok {
		return bt.StatusFailure
	}
	step, ok := nextStepToward(avoiding(bb.Walk, bb.Danger), bb.Pos, q)
	if !ok {
		return bt.StatusFailure
	}
	bb.NextDir = bb.steer(step)
	return bt.StatusRunning
}

// actAimAtQuarry 对象已在当前格的爆炸范围内，原地作为放置点
func actAimAtQuarry(bb *Blackboard) bt.Status {
	for _, q := range bb.Quarries {
		if alignedAndClear(bb.Grid, bb.Pos, q, bb.BombRange) {
			pos := bb.Pos
			bb.Target = &pos
			return bt.StatusSuccess
		}
	}
	return bt.StatusFailure
}

// actFindTarget 选择放炸弹的位置，思考间隔内沿用上次的选择
func actFindTarget(bb *Blackboard) bt.Status {
	if !bb.Replan && bb.Target != nil {
		t := *bb.Target
		if t == bb.Pos || avoiding(bb.Walk, bb.Danger)(t.GridX, t.GridY) {
			return bt.StatusSuccess
		}
	}
	bb.Target = nil

	finders := []func(*Blackboard) (core.GridPos, bool){findQuarryTarget, findBlockTarget}
	if bb.Config.PreferBlocks {
		finders[0], finders[1] = finders[1], finders[0]
	}
	for _, find := range finders {
		if t, ok := find(bb); ok {
			bb.Target = &t
			return bt.StatusSuccess
		}
	}
	return bt.StatusFailure
}

// actPreCheckEscape 在目标格放炸弹之前确认放完还跑得掉
func actPreCheckEscape(bb *Blackboard) bt.Status {
	if bb.Target == nil {
		return bt.StatusFailure
	}
	// 还没到目标，先走过去
	if *bb.Target != bb.Pos {
		return bt.StatusSuccess
	}
	tmp := bb.Danger.WithBomb(bb.Grid, bb.Pos, bb.BombRange, bb.Fuse)
	if !canEscape(bb.Walk, tmp, bb.Pos, bb.secondsPerCell()) {
		bb.Target = nil
		return bt.StatusFailure
	}
	return bt.StatusSuccess
}

func actMoveToTarget(bb *Blackboard) bt.Status {
	if bb.Target == nil {
		return bt.StatusFailure
	}
	if *bb.Target == bb.Pos {
		return bt.StatusSuccess
	}
	step, ok := nextStepToward(avoiding(bb.Walk, bb.Danger), bb.Pos, *bb.Target)
	if !ok {
		bb.Target = nil
		return bt.StatusFailure
	}
	bb.NextDir = bb.steer(step)
	return bt.StatusRunning
}

func actPlaceBomb(bb *Blackboard) bt.Status {
	if bb.Target == nil || *bb.Target != bb.Pos {
		return bt.StatusFailure
	}
	bb.PlaceBomb = true
	bb.Target = nil
	bb.EscapeTo = nil
	return bt.StatusSuccess
}

func condExitOpen(bb *Blackboard) bool {
	return bb.Exit != nil
}

func actMoveToExit(bb *Blackboard) bt.Status {
	step, ok := nextStepToward(avoiding(bb.Walk, bb.Danger), bb.Pos, *bb.Exit)
	if !ok {
		return bt.StatusFailure
	}
	bb.NextDir = bb.steer(step)
	return bt.StatusRunning
}

// powerUpRadius 顺路捡道具的最大曼哈顿距离
const powerUpRadius = 5

// actSeekPowerUp 附近有可达的道具就先去捡
func actSeekPowerUp(bb *Blackboard) bt.Status {
	if len(bb.PowerUps) == 0 {
		return bt.StatusFailure
	}
	walk := avoiding(bb.Walk, bb.Danger)
	goal, ok := findNearest(walk, bb.Pos, func(p core.GridPos) bool {
		if bb.Pos.Manhattan(p) > powerUpRadius {
			return false
		}
		for _, pu := range bb.PowerUps {
			if pu == p {
				return true
			}
		}
		return false
	})
	if !ok {
		return bt.StatusFailure
	}
	step, ok := nextStepToward(walk, bb.Pos, goal)
	if !ok {
		return bt.StatusFailure
	}
	bb.NextDir = bb.steer(step)
	return bt.StatusRunning
}

// findQuarryTarget 已对齐则原地放，否则找最近的能炸到对象的格子
func findQuarryTarget(bb *Blackboard) (core.GridPos, bool) {
	best, bestDist, found := core.GridPos{}, 0, false
	walk := avoiding(bb.Walk, bb.Danger)
	for _, q := range bb.Quarries {
		if alignedAndClear(bb.Grid, bb.Pos, q, bb.BombRange) {
			return bb.Pos, true
		}
		for _, c := range alignedCells(walk, q, bb.BombRange) {
			if !alignedAndClear(bb.Grid, c, q, bb.BombRange) {
				continue
			}
			if _, ok := nextStepToward(walk, bb.Pos, c); !ok {
				continue
			}
			if d := bb.Pos.Manhattan(c); !found || d < bestDist {
				best, bestDist, found = c, d, true
			}
		}
	}
	return best, found
}

// findBlockTarget 最近的紧邻砖块的可达格子
func findBlockTarget(bb *Blackboard) (core.GridPos, bool) {
	nextToBlock := func(p core.GridPos) bool {
		for _, d := range core.Directions {
			n := p.Add(d, 1)
			if c := bb.Grid.CellAt(n.GridX, n.GridY); c != nil && c.Type == core.CellBlock && !c.Destroying {
				return true
			}
		}
		return false
	}
	if nextToBlock(bb.Pos) {
		return bb.Pos, true
	}
	return findNearest(avoiding(bb.Walk, bb.Danger), bb.Pos, nextToBlock)
}

func nearest(from core.GridPos, candidates []core.GridPos) (core.GridPos, bool) {
	best, bestDist, found := core.GridPos{}, 0, false
	for _, c := range candidates {
		if d := from.Manhattan(c); !found || d < bestDist {
			best, bestDist, found = c, d, true
		}
	}
	return best, found
}
