package core

// BombState 炸弹状态
type BombState int

const (
	BombArmed     BombState = iota // 引信计时中
	BombSliding                    // 被踢出，持续滑行
	BombExploding                  // 已引爆，等待回收
	BombRemoved
)

func (s BombState) String() string {
	switch s {
	case BombArmed:
		return "armed"
	case BombSliding:
		return "sliding"
	case BombExploding:
		return "exploding"
	case BombRemoved:
		return "removed"
	}
	return "unknown"
}

// Bomb 炸弹（纯逻辑结构，不包含渲染）
// 由 Game 持有，所在格子只保存句柄
type Bomb struct {
	GridX, GridY  int // 当前登记的格子
	Range         int // 爆炸范围（格子数）
	Owner         int // PlayerOwnerID 或敌人 ID
	Fuse          float64
	State         BombState
	HasExploded   bool
	ShouldExplode bool
	Manual        bool // 可被遥控引爆
	SlotCost      int  // 占用的炸弹槽位数

	SlideDir    Direction
	SlideOffset float64 // 滑行时偏离格子中心的距离（格）
}

// Pos 炸弹所在格子
func (b *Bomb) Pos() GridPos {
	return GridPos{GridX: b.GridX, GridY: b.GridY}
}

// Center 炸弹中心的像素坐标（滑行时包含偏移）
func (b *Bomb) Center() (float64, float64) {
	x := float64(b.GridX*TileSize) + TileSize/2
	y := float64(b.GridY*TileSize) + TileSize/2
	if b.State == BombSliding {
		dx, dy := b.SlideDir.Delta()
		x += float64(dx) * b.SlideOffset * TileSize
		y += float64(dy) * b.SlideOffset * TileSize
	}
	return x, y
}

// IsLive 尚未引爆
func (b *Bomb) IsLive() bool {
	return !b.HasExploded && b.State != BombRemoved
}

func (b *Bomb) stopSlide() {
	b.State = BombArmed
	b.SlideDir = DirNone
	b.SlideOffset = 0
}

// canPlaceBombAt 只能在无占用的空地上放置
func (g *Game) canPlaceBombAt(pos GridPos) bool {
	c := g.Grid.CellAt(pos.GridX, pos.GridY)
	if c == nil || c.Type != CellEmpty || c.Destroying {
		return false
	}
	return g.bombs.get(c.Bomb) == nil
}

// spawnBomb 创建炸弹并登记到格子，占用检查失败时返回 false
func (g *Game) spawnBomb(pos GridPos, owner, rangeVal, cost int, manual bool) (Handle[Bomb], bool) {
	if !g.canPlaceBombAt(pos) {
		return Handle[Bomb]{}, false
	}
	h, _ := g.bombs.insert(Bomb{
		GridX:    pos.GridX,
		GridY:    pos.GridY,
		Range:    rangeVal,
		Owner:    owner,
		Fuse:     g.cfg.Bomb.Fuse,
		State:    BombArmed,
		Manual:   manual,
		SlotCost: cost,
	})
	g.Grid.CellAt(pos.GridX, pos.GridY).Bomb = h
	g.emit(EventBombPlaced, pos, owner)
	return h, true
}

// PlaceBomb 玩家在脚下放置炸弹，返回实际放置的数量
// 持有威力炸弹且没有在场炸弹时，一枚炸弹占满所有槽位；
// 持有一排炸弹且脚下已有炸弹时，沿朝向连续放置，遇到障碍或占用即停止，只计实际放置的数量
func (g *Game) PlaceBomb() int {
	p := g.Player
	if p == nil || p.IsDying || p.placementCooldown > 0 || p.FreeSlots() == 0 {
		return 0
	}
	pos := p.GridPos()

	if p.Mods.LineBomb {
		if c := g.Grid.CellAt(pos.GridX, pos.GridY); c != nil && g.bombs.get(c.Bomb) != nil {
			return g.placeLine(pos, p.Direction)
		}
	}

	rangeVal, cost := p.Mods.FireRange, 1
	if p.Mods.PowerBomb && p.ActiveBombs == 0 {
		rangeVal = p.Mods.FireRange + p.Mods.MaxBombs - 1
		cost = p.Mods.MaxBombs
	}
	if _, ok := g.spawnBomb(pos, PlayerOwnerID, rangeVal, cost, p.Mods.Detonator); !ok {
		return 0
	}
	g.onPlayerPlaced(pos, cost, 1)
	return 1
}

func (g *Game) placeLine(start GridPos, dir Direction) int {
	p := g.Player
	if dir == DirNone {
		dir = DirDown
	}
	free := p.FreeSlots()
	placed := 0
	for k := 1; placed < free; k++ {
		pos := start.Add(dir, k)
		if _, ok := g.spawnBomb(pos, PlayerOwnerID, p.Mods.FireRange, 1, p.Mods.Detonator); !ok {
			break
		}
		placed++
	}
	if placed > 0 {
		p.ActiveBombs += placed
		p.placementCooldown = g.cfg.Bomb.PlacementCooldown
		g.Stats.BombsUsed += placed
	}
	return placed
}

func (g *Game) onPlayerPlaced(pos GridPos, slots, count int) {
	p := g.Player
	p.ActiveBombs += slots
	p.placementCooldown = g.cfg.Bomb.PlacementCooldown
	g.Stats.BombsUsed += count
	// 允许玩家从刚放下的炸弹上走开
	p.bombIgnore = pos
	p.bombIgnoreActive = true
}

// enemyPlaceBomb 会放炸弹的敌人同时最多持有一枚
func (g *Game) enemyPlaceBomb(e *Enemy) {
	if e.ActiveBombs > 0 {
		return
	}
	if _, ok := g.spawnBomb(e.GridPos(), e.ID, g.cfg.Bomb.EnemyBombRange, 1, false); ok {
		e.ActiveBombs++
	}
}

// Detonate 遥控引爆玩家所有可遥控的炸弹，返回被标记的数量
func (g *Game) Detonate() int {
	p := g.Player
	if p == nil || !p.Mods.Detonator {
		return 0
	}
	n := 0
	g.bombs.each(func(_ Handle[Bomb], b *Bomb) bool {
		if b.Owner == PlayerOwnerID && b.Manual && b.IsLive() {
			b.ShouldExplode = true
			n++
		}
		return true
	})
	return n
}

// tryKick 玩家被前方炸弹挡住且拥有踢炸弹能力时，把炸弹踢出去
func (g *Game) tryKick(dir Direction) {
	p := g.Player
	if !p.Mods.Kick || p.Mods.BombPass {
		return
	}
	ahead := p.GridPos().Add(dir, 1)
	c := g.Grid.CellAt(ahead.GridX, ahead.GridY)
	if c == nil {
		return
	}
	if p.bombIgnoreActive && p.bombIgnore == ahead {
		return
	}
	b := g.bombs.get(c.Bomb)
	if b == nil || b.State != BombArmed || b.HasExploded {
		return
	}
	if g.slideBlocked(ahead.Add(dir, 1)) {
		return
	}
	b.State = BombSliding
	b.SlideDir = dir
	b.SlideOffset = 0
	g.emit(EventBombKicked, ahead, PlayerOwnerID)
}

// slideBlocked 滑行目标格是否阻挡：越界、非空地、摧毁中、已有炸弹或有存活敌人
func (g *Game) slideBlocked(pos GridPos) bool {
	c := g.Grid.CellAt(pos.GridX, pos.GridY)
	if c == nil || c.Type != CellEmpty || c.Destroying {
		return true
	}
	if g.bombs.get(c.Bomb) != nil {
		return true
	}
	for _, e := range g.Enemies {
		if e.IsAlive() && e.GridPos() == pos {
			return true
		}
	}
	return false
}

// slideBomb 滑行一帧，逐格前进，每跨入一格就迁移格子登记
func (g *Game) slideBomb(h Handle[Bomb], b *Bomb, dt float64) {
	remaining := g.cfg.Bomb.SlideSpeed * dt / TileSize
	for remaining > 0 {
		cur := b.Pos()
		next := cur.Add(b.SlideDir, 1)
		if g.slideBlocked(next) {
			// 停在当前所在格子的中心
			b.stopSlide()
			return
		}
		step := remaining
		if left := 1 - b.SlideOffset; step > left {
			step = left
		}
		b.SlideOffset += step
		remaining -= step
		if b.SlideOffset >= 1-timerEpsilon {
			if old := g.Grid.CellAt(cur.GridX, cur.GridY); old != nil && old.Bomb == h {
				old.Bomb = Handle[Bomb]{}
			}
			g.Grid.CellAt(next.GridX, next.GridY).Bomb = h
			b.GridX, b.GridY = next.GridX, next.GridY
			b.SlideOffset = 0
		}
	}
}

// updateBombs 推进引信与滑行，标记需要引爆的炸弹
func (g *Game) updateBombs(dt float64) {
	g.bombs.each(func(h Handle[Bomb], b *Bomb) bool {
		if !b.IsLive() {
			return true
		}
		b.Fuse -= dt
		if b.Fuse <= timerEpsilon {
			b.ShouldExplode = true
		}
		if b.State == BombSliding {
			g.slideBomb(h, b, dt)
		}
		// 落在仍在燃烧的格子上立即引爆
		if c := g.Grid.CellAt(b.GridX, b.GridY); c != nil && c.Burning > 0 {
			b.ShouldExplode = true
		}
		return true
	})
}

// releaseSlots 炸弹引爆后归还所有者的槽位
func (g *Game) releaseSlots(b *Bomb) {
	if b.Owner == PlayerOwnerID {
		if g.Player != nil {
			g.Player.ActiveBombs -= b.SlotCost
			if g.Player.ActiveBombs < 0 {
				g.Player.ActiveBombs = 0
			}
		}
		return
	}
	for _, e := range g.Enemies {
		if e.ID == b.Owner && e.ActiveBombs > 0 {
			e.ActiveBombs--
			return
		}
	}
}
