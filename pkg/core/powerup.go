package core

// PowerUpType 道具类型
type PowerUpType int

const (
	PowerUpNone      PowerUpType = iota
	PowerUpFire                  // 火力 +1
	PowerUpBomb                  // 炸弹数 +1
	PowerUpSpeed                 // 速度档位 +1
	PowerUpFullFire              // 火力拉满
	PowerUpWallPass              // 穿砖
	PowerUpBombPass              // 穿炸弹
	PowerUpFlamePass             // 免疫火焰
	PowerUpShield                // 一次性护盾
	PowerUpKick                  // 踢炸弹
	PowerUpDetonator             // 遥控引爆
	PowerUpPowerBomb             // 威力炸弹
	PowerUpLineBomb              // 一排炸弹
	PowerUpSkull                 // 诅咒
)

func (t PowerUpType) String() string {
	switch t {
	case PowerUpNone:
		return "none"
	case PowerUpFire:
		return "fire"
	case PowerUpBomb:
		return "bomb"
	case PowerUpSpeed:
		return "speed"
	case PowerUpFullFire:
		return "full_fire"
	case PowerUpWallPass:
		return "wall_pass"
	case PowerUpBombPass:
		return "bomb_pass"
	case PowerUpFlamePass:
		return "flame_pass"
	case PowerUpShield:
		return "shield"
	case PowerUpKick:
		return "kick"
	case PowerUpDetonator:
		return "detonator"
	case PowerUpPowerBomb:
		return "power_bomb"
	case PowerUpLineBomb:
		return "line_bomb"
	case PowerUpSkull:
		return "skull"
	}
	return "unknown"
}

// PowerUp 场上的道具
type PowerUp struct {
	Pos              GridPos
	Type             PowerUpType
	Active           bool
	MarkedForRemoval bool
}

// CurseType 诅咒效果
type CurseType int

const (
	CurseNone     CurseType = iota
	CurseSlow               // 速度降到最低
	CurseReverse            // 方向键反转
	CurseAutoBomb           // 不停地放炸弹
)

func (c CurseType) String() string {
	switch c {
	case CurseNone:
		return "none"
	case CurseSlow:
		return "slow"
	case CurseReverse:
		return "reverse"
	case CurseAutoBomb:
		return "auto_bomb"
	}
	return "unknown"
}

// Modifiers 玩家通过道具获得的属性
type Modifiers struct {
	FireRange  int
	MaxBombs   int
	SpeedTier  int
	WallPass   bool
	BombPass   bool
	FlamePass  bool
	Shield     bool
	Kick       bool
	Detonator  bool
	PowerBomb  bool
	LineBomb   bool
	Curse      CurseType
	CurseTimer float64
}

// applyPowerUp 把道具效果叠加到玩家属性上
// curse 由调用方传入，保证诅咒的随机性来自关卡 RNG
func applyPowerUp(m *Modifiers, t PowerUpType, cfg PlayerConfig, curse CurseType) {
	switch t {
	case PowerUpFire:
		if m.FireRange < cfg.MaxFireRange {
			m.FireRange++
		}
	case PowerUpBomb:
		if m.MaxBombs < cfg.MaxBombs {
			m.MaxBombs++
		}
	case PowerUpSpeed:
		if m.SpeedTier < cfg.MaxSpeedTier {
			m.SpeedTier++
		}
	case PowerUpFullFire:
		m.FireRange = cfg.MaxFireRange
	case PowerUpWallPass:
		m.WallPass = true
	case PowerUpBombPass:
		m.BombPass = true
	case PowerUpFlamePass:
		m.FlamePass = true
	case PowerUpShield:
		m.Shield = true
	case PowerUpKick:
		m.Kick = true
	case PowerUpDetonator:
		m.Detonator = true
	case PowerUpPowerBomb:
		m.PowerBomb = true
		m.LineBomb = false
	case PowerUpLineBomb:
		m.LineBomb = true
		m.PowerBomb = false
	case PowerUpSkull:
		m.Curse = curse
		m.CurseTimer = cfg.CurseDuration
	}
}
