package core

// AffectedCell 爆炸覆盖的格子，Dir 为扩散方向（中心为 DirNone），供渲染选择火焰贴图
type AffectedCell struct {
	Pos GridPos
	Dir Direction
}

// Explosion 爆炸效果
// 覆盖范围在创建时计算一次并缓存，之后不再重算
type Explosion struct {
	Origin           GridPos
	Range            int
	Owner            int // 来源炸弹的所有者
	Cells            []AffectedCell
	Remaining        float64 // 剩余持续时间
	MarkedForRemoval bool
}

// Propagate 计算爆炸影响的所有格子
// 中心格总是包含在内；每个方向独立向外最多 rangeVal 格：
// 遇墙停止且不包含，遇砖块（含摧毁中）包含后停止，其余地形包含并继续
func Propagate(grid *Grid, origin GridPos, rangeVal int) []AffectedCell {
	if rangeVal < 0 {
		rangeVal = 0
	}
	cells := make([]AffectedCell, 0, 1+4*rangeVal)
	cells = append(cells, AffectedCell{Pos: origin, Dir: DirNone})

	for _, dir := range Directions {
		for i := 1; i <= rangeVal; i++ {
			p := origin.Add(dir, i)
			c := grid.CellAt(p.GridX, p.GridY)
			if c == nil || c.Type == CellWall {
				break
			}
			cells = append(cells, AffectedCell{Pos: p, Dir: dir})
			if c.Type == CellBlock {
				// 炸毁砖块后停止该方向
				break
			}
		}
	}
	return cells
}

// ContainsCell 检查爆炸是否包含指定格子
func (e *Explosion) ContainsCell(x, y int) bool {
	for _, cell := range e.Cells {
		if cell.Pos.GridX == x && cell.Pos.GridY == y {
			return true
		}
	}
	return false
}

// IsActive 仍在持续且未被回收
func (e *Explosion) IsActive() bool {
	return !e.MarkedForRemoval
}

// processDetonations 处理本帧所有待引爆的炸弹
// 连锁引爆在同一轮内通过工作队列完成，不会拖到下一帧
func (g *Game) processDetonations() {
	var queue []Handle[Bomb]
	g.bombs.each(func(h Handle[Bomb], b *Bomb) bool {
		if b.IsLive() && b.ShouldExplode {
			queue = append(queue, h)
		}
		return true
	})
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		b := g.bombs.get(h)
		if b == nil || b.HasExploded {
			continue
		}
		queue = g.explode(h, b, queue)
	}
}

// explode 引爆单个炸弹：清除格子登记、归还槽位、计算覆盖范围并一次性施加副作用
// 覆盖范围内的其他炸弹追加到队列中
func (g *Game) explode(h Handle[Bomb], b *Bomb, queue []Handle[Bomb]) []Handle[Bomb] {
	b.HasExploded = true
	b.ShouldExplode = false
	b.State = BombExploding
	b.SlideOffset = 0

	origin := b.Pos()
	if c := g.Grid.CellAt(origin.GridX, origin.GridY); c != nil && c.Bomb == h {
		c.Bomb = Handle[Bomb]{}
	}
	g.releaseSlots(b)

	ex := &Explosion{
		Origin:    origin,
		Range:     b.Range,
		Owner:     b.Owner,
		Cells:     Propagate(g.Grid, origin, b.Range),
		Remaining: g.cfg.Timing.ExplosionDuration,
	}

	for _, ac := range ex.Cells {
		c := g.Grid.CellAt(ac.Pos.GridX, ac.Pos.GridY)
		if c == nil {
			continue
		}
		c.Burning++
		g.Grid.beginDestroy(c)
		if pu := g.powerUps.get(c.PowerUp); pu != nil && !pu.MarkedForRemoval {
			pu.Active = false
			pu.MarkedForRemoval = true
		}
		if other := g.bombs.get(c.Bomb); other != nil && other.IsLive() {
			other.ShouldExplode = true
			queue = append(queue, c.Bomb)
		}
	}

	g.Explosions = append(g.Explosions, ex)
	g.emit(EventExplosion, origin, b.Owner)
	return queue
}

// updateExplosions 推进爆炸持续时间，到期的标记为待回收
func (g *Game) updateExplosions(dt float64) {
	for _, ex := range g.Explosions {
		if ex.MarkedForRemoval {
			continue
		}
		ex.Remaining -= dt
		if ex.Remaining <= timerEpsilon {
			ex.MarkedForRemoval = true
		}
	}
}

// releaseExplosion 回收爆炸时撤销燃烧标记并留下余辉
func (g *Game) releaseExplosion(ex *Explosion) {
	for _, ac := range ex.Cells {
		c := g.Grid.CellAt(ac.Pos.GridX, ac.Pos.GridY)
		if c == nil {
			continue
		}
		if c.Burning > 0 {
			c.Burning--
		}
		c.Afterglow = g.cfg.Timing.AfterglowDuration
	}
}

// updateDestruction 推进砖块摧毁，完成后显露隐藏的出口或道具
func (g *Game) updateDestruction(dt float64) {
	for _, c := range g.Grid.UpdateDestruction(dt, g.cfg.Timing.BlockDestroyDuration) {
		g.Stats.BlocksDestroyed++
		pos := c.Pos()
		g.emit(EventBlockDestroyed, pos, 0)
		if c.Type == CellExit {
			// 出口优先，同格的隐藏道具作废
			c.HiddenPowerUp = PowerUpNone
			continue
		}
		if c.HiddenPowerUp != PowerUpNone {
			g.spawnPowerUp(pos, c.HiddenPowerUp)
			c.HiddenPowerUp = PowerUpNone
		}
	}
}

// spawnPowerUp 在格子上生成道具，格子已有道具时不生成
func (g *Game) spawnPowerUp(pos GridPos, t PowerUpType) bool {
	c := g.Grid.CellAt(pos.GridX, pos.GridY)
	if c == nil || c.Type == CellWall || g.powerUps.get(c.PowerUp) != nil {
		return false
	}
	h, _ := g.powerUps.insert(PowerUp{Pos: pos, Type: t, Active: true})
	c.PowerUp = h
	return true
}
