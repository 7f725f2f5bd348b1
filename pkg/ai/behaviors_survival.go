package ai

import (
	"bombsim/pkg/ai/bt"
	"bombsim/pkg/core"
)

func condInDanger(bb *Blackboard) bool {
	return bb.Danger.InDanger(bb.Pos.GridX, bb.Pos.GridY)
}

// actFindSafe 沿用仍然安全的逃生目标，否则重新找最近的安全格
func actFindSafe(bb *Blackboard) bt.Status {
	if bb.EscapeTo != nil && !bb.Danger.InDanger(bb.EscapeTo.GridX, bb.EscapeTo.GridY) {
		if _, ok := nextStepToward(bb.Walk, bb.Pos, *bb.EscapeTo); ok {
			return bt.StatusSuccess
		}
	}
	best, ok := findNearest(bb.Walk, bb.Pos, func(p core.GridPos) bool {
		return !bb.Danger.InDanger(p.GridX, p.GridY)
	})
	if !ok {
		bb.EscapeTo = nil
		return bt.StatusFailure
	}
	bb.EscapeTo = &best
	return bt.StatusSuccess
}

func actMoveToSafe(bb *Blackboard) bt.Status {
	if bb.EscapeTo == nil {
		return bt.StatusFailure
	}
	step, ok := nextStepToward(bb.Walk, bb.Pos, *bb.EscapeTo)
	if !ok {
		bb.EscapeTo = nil
		return bt.StatusFailure
	}
	bb.NextDir = bb.steer(step)
	return bt.StatusRunning
}

// actHoldStill 无路可逃时原地不动
func actHoldStill(bb *Blackboard) bt.Status {
	bb.NextDir = core.DirNone
	return bt.StatusRunning
}
