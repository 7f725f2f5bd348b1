package ai

import (
	"container/list"

	"bombsim/pkg/core"
)

// walkFunc 判断格子对当前角色是否可走，地图外必须返回 false
type walkFunc func(x, y int) bool

type stepNode struct {
	Pos  core.GridPos
	Prev *stepNode
	Time float64
}

// enemyWalkable 敌人视角：墙、危险地形、炸弹不可走；砖块只有穿砖敌人可走
func enemyWalkable(grid *core.Grid, passBlocks bool) walkFunc {
	return func(x, y int) bool {
		c := grid.CellAt(x, y)
		if c == nil || c.Type == core.CellWall || c.Type.IsHazard() {
			return false
		}
		if (c.Type == core.CellBlock || c.Destroying) && !passBlocks {
			return false
		}
		return !c.Bomb.Valid()
	}
}

// playerWalkable 玩家视角，考虑穿墙与穿弹道具；地刺无论升降都绕开
func playerWalkable(grid *core.Grid, mods core.Modifiers) walkFunc {
	return func(x, y int) bool {
		c := grid.CellAt(x, y)
		if c == nil || c.Type == core.CellWall || c.Type.IsHazard() {
			return false
		}
		if (c.Type == core.CellBlock || c.Destroying) && !mods.WallPass {
			return false
		}
		return !c.Bomb.Valid() || mods.BombPass
	}
}

// avoiding 在 walk 的基础上排除危险格
func avoiding(walk walkFunc, danger *DangerField) walkFunc {
	return func(x, y int) bool {
		return walk(x, y) && !danger.InDanger(x, y)
	}
}

// nextStepToward BFS 求从 start 到 target 的第一步，起点自身不检查可走性
func nextStepToward(walk walkFunc, start, target core.GridPos) (core.GridPos, bool) {
	if start == target {
		return start, true
	}
	queue := list.New()
	visited := map[core.GridPos]bool{start: true}
	queue.PushBack(&stepNode{Pos: start})

	var targetNode *stepNode
	for queue.Len() > 0 {
		n := queue.Remove(queue.Front()).(*stepNode)
		if n.Pos == target {
			targetNode = n
			break
		}
		for _, d := range core.Directions {
			npos := n.Pos.Add(d, 1)
			if visited[npos] || !walk(npos.GridX, npos.GridY) {
				continue
			}
			visited[npos] = true
			queue.PushBack(&stepNode{Pos: npos, Prev: n})
		}
	}

	if targetNode == nil {
		return core.GridPos{}, false
	}
	for targetNode.Prev != nil && targetNode.Prev.Pos != start {
		targetNode = targetNode.Prev
	}
	return targetNode.Pos, true
}

// findNearest BFS 找离 start 最近且满足 accept 的可达格子（不含起点）
func findNearest(walk walkFunc, start core.GridPos, accept func(p core.GridPos) bool) (core.GridPos, bool) {
	queue := []core.GridPos{start}
	visited := map[core.GridPos]bool{start: true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur != start && accept(cur) {
			return cur, true
		}
		for _, d := range core.Directions {
			npos := cur.Add(d, 1)
			if visited[npos] || !walk(npos.GridX, npos.GridY) {
				continue
			}
			visited[npos] = true
			queue = append(queue, npos)
		}
	}
	return core.GridPos{}, false
}

// canEscape 以每格 secondsPerCell 的速度从 start 出发，
// 途经的格子都在火焰到达前通过，最终能站到不会被波及的格子
func canEscape(walk walkFunc, danger *DangerField, start core.GridPos, secondsPerCell float64) bool {
	if !danger.InDanger(start.GridX, start.GridY) {
		return true
	}
	queue := list.New()
	visited := map[core.GridPos]bool{start: true}
	queue.PushBack(&stepNode{Pos: start})

	for queue.Len() > 0 {
		n := queue.Remove(queue.Front()).(*stepNode)
		for _, d := range core.Directions {
			npos := n.Pos.Add(d, 1)
			if visited[npos] || !walk(npos.GridX, npos.GridY) {
				continue
			}
			arrive := n.Time + secondsPerCell
			// 离开当前格之前火焰不能先到
			if !danger.SafeAt(n.Pos.GridX, n.Pos.GridY, arrive) || !danger.SafeAt(npos.GridX, npos.GridY, arrive) {
				continue
			}
			if !danger.InDanger(npos.GridX, npos.GridY) {
				return true
			}
			visited[npos] = true
			queue.PushBack(&stepNode{Pos: npos, Prev: n, Time: arrive})
		}
	}
	return false
}

// alignedAndClear from 与 to 同行或同列、距离不超过 rng，且中间没有墙或砖块
func alignedAndClear(grid *core.Grid, from, to core.GridPos, rng int) bool {
	if from.GridX != to.GridX && from.GridY != to.GridY {
		return false
	}
	if from.Manhattan(to) > rng {
		return false
	}
	dir := directionBetween(from, to)
	for p := from.Add(dir, 1); p != to; p = p.Add(dir, 1) {
		c := grid.CellAt(p.GridX, p.GridY)
		if c == nil || c.Type == core.CellWall || c.Type == core.CellBlock || c.Destroying {
			return false
		}
	}
	return true
}

// alignedCells 与 target 同行同列、在 rng 格以内的可走格子
func alignedCells(walk walkFunc, target core.GridPos, rng int) []core.GridPos {
	cells := make([]core.GridPos, 0, rng*4)
	for i := 1; i <= rng; i++ {
		for _, d := range core.Directions {
			c := target.Add(d, i)
			if walk(c.GridX, c.GridY) {
				cells = append(cells, c)
			}
		}
	}
	return cells
}

// directionBetween 相邻或同行同列格子之间的方向
func directionBetween(from, to core.GridPos) core.Direction {
	switch {
	case to.GridX > from.GridX:
		return core.DirRight
	case to.GridX < from.GridX:
		return core.DirLeft
	case to.GridY > from.GridY:
		return core.DirDown
	case to.GridY < from.GridY:
		return core.DirUp
	}
	return core.DirNone
}
