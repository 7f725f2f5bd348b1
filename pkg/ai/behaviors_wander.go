package ai

import (
	"bombsim/pkg/ai/bt"
	"bombsim/pkg/core"
)

func actWander(bb *Blackboard) bt.Status {
	if bb.RNG == nil {
		return bt.StatusFailure
	}

	// 当前方向仍然可行且未超时，继续保持
	if bb.WanderTime > 0 && bb.WanderDirection != core.DirNone {
		bb.WanderTime -= bb.Dt
		if canWanderInDirection(bb, bb.WanderDirection) {
			bb.NextDir = bb.steer(bb.Pos.Add(bb.WanderDirection, 1))
			return bt.StatusRunning
		}
		bb.WanderDirection = core.DirNone
		bb.WanderTime = 0
	}

	safe := make([]core.Direction, 0, 4)
	walkable := make([]core.Direction, 0, 4)
	for _, d := range core.Directions {
		next := bb.Pos.Add(d, 1)
		if !bb.Walk(next.GridX, next.GridY) {
			continue
		}
		walkable = append(walkable, d)
		if canWanderInDirection(bb, d) {
			safe = append(safe, d)
		}
	}
	switch {
	case len(safe) > 0:
		bb.WanderDirection = safe[bb.RNG.Intn(len(safe))]
	case len(walkable) > 0:
		// 没有安全方向，随机选一个可行方向
		bb.WanderDirection = walkable[bb.RNG.Intn(len(walkable))]
	default:
		bb.WanderDirection = core.DirNone
		bb.NextDir = bb.steer(bb.Pos)
		return bt.StatusRunning // 完全被困，回到格子中心
	}

	bb.WanderTime = bb.Config.WanderTime
	bb.NextDir = bb.steer(bb.Pos.Add(bb.WanderDirection, 1))
	return bt.StatusRunning
}

// canWanderInDirection 相邻格可走且不在危险中
func canWanderInDirection(bb *Blackboard, dir core.Direction) bool {
	next := bb.Pos.Add(dir, 1)
	if !bb.Walk(next.GridX, next.GridY) {
		return false
	}
	return !bb.Danger.InDanger(next.GridX, next.GridY)
}
