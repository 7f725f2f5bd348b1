package core

// resolveCollisions 每帧一次的交互判定，顺序固定：
// 玩家与爆炸、玩家与危险地形、玩家与敌人、拾取道具、出口、敌人与爆炸
// 这里只设置 IsDying/MarkedForRemoval 标记，实体在帧末统一回收
func (g *Game) resolveCollisions() {
	p := g.Player
	alive := p != nil && !p.IsDying && g.State.acceptsInput()
	var pos GridPos
	if alive {
		pos = p.GridPos()
	}

	// 1. 玩家与爆炸
	if alive && g.explosionAt(pos) && !p.Mods.FlamePass && !p.IsProtected() {
		g.killPlayer()
		alive = false
	}

	// 1b. 玩家与危险地形
	if alive && g.hazardLethal(pos) && !p.IsProtected() {
		g.killPlayer()
		alive = false
	}

	// 2. 玩家与敌人
	if alive && !p.IsProtected() {
		for _, e := range g.Enemies {
			if !e.IsAlive() || !g.touches(p, e) {
				continue
			}
			if p.Mods.Shield {
				p.Mods.Shield = false
				p.Invincibility = g.cfg.Player.ShieldInvincibility
				g.emit(EventShieldBreak, pos, e.ID)
				break
			}
			g.killPlayer()
			alive = false
			break
		}
	}

	// 3. 拾取道具
	if alive {
		g.collectPowerUp(pos)
	}

	// 4. 出口：判定推迟到敌人结算之后，避免使用过期的存活数
	onExit := alive && g.Grid.TypeAt(pos.GridX, pos.GridY) == CellExit

	// 5. 敌人与爆炸，倒序遍历
	for i := len(g.Enemies) - 1; i >= 0; i-- {
		e := g.Enemies[i]
		if !e.IsAlive() {
			continue
		}
		ep := e.GridPos()
		if g.explosionAt(ep) {
			g.killEnemy(e)
		}
	}

	if onExit {
		g.tryExit(pos)
	}
}

// explosionAt 格子是否被存活的爆炸覆盖
func (g *Game) explosionAt(pos GridPos) bool {
	for _, ex := range g.Explosions {
		if ex.IsActive() && ex.ContainsCell(pos.GridX, pos.GridY) {
			return true
		}
	}
	return false
}

// hazardLethal 熔岩始终致命，地刺仅在升起时致命
func (g *Game) hazardLethal(pos GridPos) bool {
	switch g.Grid.TypeAt(pos.GridX, pos.GridY) {
	case CellLava:
		return true
	case CellSpikes:
		return g.SpikesRaised
	}
	return false
}

// touches 穿砖类敌人按格子相等判定，其余按内缩后的碰撞盒判定
func (g *Game) touches(p *Player, e *Enemy) bool {
	if e.Type.contactByGrid() {
		return p.GridPos() == e.GridPos()
	}
	return p.overlaps(&e.body, ContactMargin)
}

func (g *Game) collectPowerUp(pos GridPos) {
	c := g.Grid.CellAt(pos.GridX, pos.GridY)
	if c == nil {
		return
	}
	pu := g.powerUps.get(c.PowerUp)
	if pu == nil || !pu.Active || pu.MarkedForRemoval {
		return
	}
	curse := CurseType(1 + g.rng.Intn(3))
	applyPowerUp(&g.Player.Mods, pu.Type, g.cfg.Player, curse)
	pu.Active = false
	pu.MarkedForRemoval = true
	c.PowerUp = Handle[PowerUp]{}
	g.Stats.PowerUpsCollected++
	g.emitValue(EventPowerUp, pos, PlayerOwnerID, int(pu.Type))
}

// tryExit 所有敌人都已死亡或正在死亡时过关，否则发出带冷却的提示
func (g *Game) tryExit(pos GridPos) {
	if g.AliveEnemies() == 0 {
		g.completeLevel()
		return
	}
	if g.exitRejectTimer > 0 {
		return
	}
	g.exitRejectTimer = g.cfg.Scoring.ExitRejectCooldown
	g.emitValue(EventExitBlocked, pos, PlayerOwnerID, g.AliveEnemies())
}

// killPlayer 玩家进入死亡状态，棋盘继续运转
func (g *Game) killPlayer() {
	p := g.Player
	p.IsDying = true
	p.IsMoving = false
	g.Stats.DamageTaken = true
	g.State = StatePlayerDied
	g.stateTimer = g.cfg.Timing.DeathDelay
	g.emit(EventPlayerDeath, p.GridPos(), PlayerOwnerID)
}

// killEnemy 击杀敌人，累计连杀并按阈值奖励
func (g *Game) killEnemy(e *Enemy) {
	e.kill(g.cfg.Timing.EnemyDeathDuration)
	pos := e.GridPos()
	g.Stats.EnemiesKilled++
	g.Score += e.Points
	g.emitValue(EventEnemyDeath, pos, e.ID, e.Points)

	if g.Combo.Timer > 0 {
		g.Combo.Count++
	} else {
		g.Combo.Count = 1
	}
	g.Combo.Timer = g.cfg.Combo.Window
	for _, tier := range g.cfg.Combo.Tiers {
		if g.Combo.Count == tier.Count {
			g.Score += tier.Bonus
			g.emitValue(EventCombo, pos, e.ID, g.Combo.Count)
		}
	}

	if g.AliveEnemies() == 0 || g.Combo.Count >= g.cfg.SlowMo.ComboTrigger {
		if g.slowMoTimer <= 0 {
			g.emit(EventSlowMo, pos, e.ID)
		}
		g.slowMoTimer = g.cfg.SlowMo.Duration
	}
}
