package core

// Player 玩家（纯逻辑，不包含渲染）
type Player struct {
	body
	Direction Direction // 朝向
	IsMoving  bool      // 是否在移动
	Lives     int
	Mods      Modifiers // 道具属性
	Spawn     GridPos   // 出生点

	ActiveBombs int // 已占用的炸弹槽位

	IsDying         bool
	SpawnProtection float64 // 出生保护剩余时间
	Invincibility   float64 // 护盾破碎后的无敌剩余时间

	placementCooldown float64 // 下一次可放置炸弹前的冷却

	bombIgnore       GridPos // 放置炸弹时忽略碰撞的格子
	bombIgnoreActive bool    // 放置炸弹后直到离开该格子
}

// NewPlayer 在出生点创建玩家
func NewPlayer(spawn GridPos, cfg PlayerConfig) *Player {
	p := &Player{
		body:      body{W: PlayerWidth, H: PlayerHeight},
		Direction: DirDown,
		Lives:     cfg.Lives,
		Spawn:     spawn,
	}
	p.Mods = Modifiers{
		FireRange: cfg.StartFireRange,
		MaxBombs:  cfg.StartBombs,
	}
	p.placeAt(spawn)
	return p
}

// Speed 当前移动速度（像素/秒）
func (p *Player) Speed(cfg PlayerConfig) float64 {
	if p.Mods.Curse == CurseSlow {
		return cfg.BaseSpeed * 0.6
	}
	return cfg.BaseSpeed + cfg.SpeedStep*float64(p.Mods.SpeedTier)
}

// IsProtected 是否处于任一无敌窗口
func (p *Player) IsProtected() bool {
	return p.SpawnProtection > 0 || p.Invincibility > 0
}

// FreeSlots 剩余炸弹槽位
func (p *Player) FreeSlots() int {
	n := p.Mods.MaxBombs - p.ActiveBombs
	if n < 0 {
		return 0
	}
	return n
}

// Bounds 碰撞盒（左上角像素与宽高）
func (p *Player) Bounds() (x, y float64, w, h int) {
	return p.X, p.Y, p.W, p.H
}

// respawn 回到出生点并获得出生保护，道具属性保留
func (p *Player) respawn(protection float64) {
	p.placeAt(p.Spawn)
	p.Direction = DirDown
	p.IsMoving = false
	p.IsDying = false
	p.ActiveBombs = 0
	p.SpawnProtection = protection
	p.Invincibility = 0
	p.placementCooldown = 0
	p.bombIgnoreActive = false
	p.Mods.Curse = CurseNone
	p.Mods.CurseTimer = 0
}

// tickTimers 推进玩家自身计时器
func (p *Player) tickTimers(dt float64) {
	if p.SpawnProtection > 0 {
		p.SpawnProtection -= dt
		if p.SpawnProtection < 0 {
			p.SpawnProtection = 0
		}
	}
	if p.Invincibility > 0 {
		p.Invincibility -= dt
		if p.Invincibility < 0 {
			p.Invincibility = 0
		}
	}
	if p.placementCooldown > 0 {
		p.placementCooldown -= dt
	}
	if p.Mods.Curse != CurseNone {
		p.Mods.CurseTimer -= dt
		if p.Mods.CurseTimer <= 0 {
			p.Mods.Curse = CurseNone
			p.Mods.CurseTimer = 0
		}
	}
}

// blocker 构造玩家视角的阻挡判定
func (g *Game) playerBlocker() blockFunc {
	p := g.Player
	return func(gx, gy int) bool {
		c := g.Grid.CellAt(gx, gy)
		if c == nil || c.Type == CellWall {
			return true
		}
		if (c.Type == CellBlock || c.Destroying) && !p.Mods.WallPass {
			return true
		}
		if c.Bomb.Valid() && !p.Mods.BombPass {
			if p.bombIgnoreActive && p.bombIgnore.GridX == gx && p.bombIgnore.GridY == gy {
				return false
			}
			if b := g.bombs.get(c.Bomb); b != nil && !b.HasExploded {
				return true
			}
		}
		return false
	}
}

// updatePlayer 处理玩家输入：移动、踢炸弹、放置和引爆
func (g *Game) updatePlayer(dt float64, in Input) {
	p := g.Player
	p.tickTimers(dt)

	if p.IsDying || !g.State.acceptsInput() {
		p.IsMoving = false
		return
	}

	if p.Mods.Curse == CurseReverse {
		in.Up, in.Down = in.Down, in.Up
		in.Left, in.Right = in.Right, in.Left
	}
	if p.Mods.Curse == CurseAutoBomb {
		in.Bomb = true
	}

	if p.bombIgnoreActive && !p.overlapsCell(p.bombIgnore.GridX, p.bombIgnore.GridY) {
		p.bombIgnoreActive = false
	}

	speed := p.Speed(g.cfg.Player) * dt
	moveX, moveY := 0.0, 0.0
	if in.Up {
		moveY -= speed
	}
	if in.Down {
		moveY += speed
	}
	if in.Left {
		moveX -= speed
	}
	if in.Right {
		moveX += speed
	}

	// 斜向移动时进行归一化，避免速度变快
	if moveX != 0 && moveY != 0 {
		moveX *= 0.70710678
		moveY *= 0.70710678
	}

	blocked := g.playerBlocker()
	p.IsMoving = false
	// 保持单轴移动以兼容拐角修正逻辑
	if moveY != 0 {
		dir := DirDown
		if moveY < 0 {
			dir = DirUp
		}
		p.Direction = dir
		if p.move(g.Grid, 0, moveY, blocked) {
			p.IsMoving = true
		} else {
			g.tryKick(dir)
		}
	}
	if moveX != 0 {
		dir := DirRight
		if moveX < 0 {
			dir = DirLeft
		}
		p.Direction = dir
		if p.move(g.Grid, moveX, 0, blocked) {
			p.IsMoving = true
		} else {
			g.tryKick(dir)
		}
	}

	if p.bombIgnoreActive && !p.overlapsCell(p.bombIgnore.GridX, p.bombIgnore.GridY) {
		p.bombIgnoreActive = false
	}

	if in.Bomb {
		g.PlaceBomb()
	}
	if in.Detonate {
		g.Detonate()
	}
}
