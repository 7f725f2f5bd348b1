package protocol

import (
	"bombsim/pkg/core"
)

// ========== Modifiers 转换 ==========

// 布尔型道具效果压成一个位图
const (
	modWallPass uint64 = 1 << iota
	modBombPass
	modFlamePass
	modShield
	modKick
	modDetonator
	modPowerBomb
	modLineBomb
)

func modFlags(m core.Modifiers) uint64 {
	var bits uint64
	set := func(on bool, bit uint64) {
		if on {
			bits |= bit
		}
	}
	set(m.WallPass, modWallPass)
	set(m.BombPass, modBombPass)
	set(m.FlamePass, modFlamePass)
	set(m.Shield, modShield)
	set(m.Kick, modKick)
	set(m.Detonator, modDetonator)
	set(m.PowerBomb, modPowerBomb)
	set(m.LineBomb, modLineBomb)
	return bits
}

func applyModFlags(m *core.Modifiers, bits uint64) {
	m.WallPass = bits&modWallPass != 0
	m.BombPass = bits&modBombPass != 0
	m.FlamePass = bits&modFlamePass != 0
	m.Shield = bits&modShield != 0
	m.Kick = bits&modKick != 0
	m.Detonator = bits&modDetonator != 0
	m.PowerBomb = bits&modPowerBomb != 0
	m.LineBomb = bits&modLineBomb != 0
}

func encodeMods(e *encoder, m core.Modifiers) {
	e.varint(1, int64(m.FireRange))
	e.varint(2, int64(m.MaxBombs))
	e.varint(3, int64(m.SpeedTier))
	e.varint(4, int64(modFlags(m)))
	e.varint(5, int64(m.Curse))
	e.double(6, m.CurseTimer)
}

func decodeMods(b []byte) (core.Modifiers, error) {
	var m core.Modifiers
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.FireRange = f.asInt()
		case 2:
			m.MaxBombs = f.asInt()
		case 3:
			m.SpeedTier = f.asInt()
		case 4:
			applyModFlags(&m, f.v)
		case 5:
			m.Curse = core.CurseType(f.asInt())
		case 6:
			m.CurseTimer = f.asDouble()
		}
		return nil
	})
	return m, err
}

// ========== Snapshot 转换 ==========

func encodeSnapshot(e *encoder, s *core.Snapshot) {
	e.varint(1, s.Frame)
	e.varint(2, int64(s.Level))
	e.varint(3, int64(s.State))
	e.double(4, s.Clock)
	e.varint(5, int64(s.Score))
	e.varint(6, int64(s.Combo))
	e.flag(7, s.SlowMo)
	e.flag(8, s.SpikesRaised)
	e.varint(9, int64(s.Width))
	e.varint(10, int64(s.Height))

	for _, c := range s.Cells {
		e.message(11, func(e *encoder) {
			e.varint(1, int64(c.Type))
			e.flag(2, c.Destroying)
			e.double(3, c.DestroyProgress)
			e.flag(4, c.Burning)
			e.double(5, c.Afterglow)
		})
	}

	p := s.Player
	e.message(12, func(e *encoder) {
		e.double(1, p.X)
		e.double(2, p.Y)
		e.varint(3, int64(p.Direction))
		e.flag(4, p.IsMoving)
		e.flag(5, p.IsDying)
		e.flag(6, p.Protected)
		e.varint(7, int64(p.Lives))
		e.varint(8, int64(p.ActiveBombs))
		e.message(9, func(e *encoder) { encodeMods(e, p.Mods) })
	})

	for _, en := range s.Enemies {
		e.message(13, func(e *encoder) {
			e.varint(1, int64(en.ID))
			e.varint(2, int64(en.Type))
			e.double(3, en.X)
			e.double(4, en.Y)
			e.varint(5, int64(en.Direction))
			e.flag(6, en.IsDying)
		})
	}

	for _, b := range s.Bombs {
		e.message(14, func(e *encoder) {
			e.double(1, b.X)
			e.double(2, b.Y)
			e.double(3, b.Fuse)
			e.varint(4, int64(b.Range))
			e.varint(5, int64(b.Owner))
			e.flag(6, b.Manual)
			e.varint(7, int64(b.State))
		})
	}

	for _, pu := range s.PowerUps {
		e.message(15, func(e *encoder) {
			e.varint(1, int64(pu.Pos.GridX))
			e.varint(2, int64(pu.Pos.GridY))
			e.varint(3, int64(pu.Type))
		})
	}

	for _, ex := range s.Explosions {
		e.message(16, func(e *encoder) {
			e.varint(1, int64(ex.Origin.GridX))
			e.varint(2, int64(ex.Origin.GridY))
			e.varint(3, int64(ex.Range))
			e.varint(4, int64(ex.Owner))
			e.double(5, ex.Remaining)
			for _, c := range ex.Cells {
				e.message(6, func(e *encoder) {
					e.varint(1, int64(c.Pos.GridX))
					e.varint(2, int64(c.Pos.GridY))
					e.varint(3, int64(c.Dir))
				})
			}
		})
	}

	for _, w := range s.Warnings {
		e.message(17, func(e *encoder) {
			e.varint(1, int64(w.Pos.GridX))
			e.varint(2, int64(w.Pos.GridY))
			e.double(3, w.Remaining)
		})
	}
}

func decodeSnapshot(b []byte) (core.Snapshot, error) {
	var s core.Snapshot
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			s.Frame = f.asInt64()
		case 2:
			s.Level = f.asInt()
		case 3:
			s.State = core.RoundState(f.asInt())
		case 4:
			s.Clock = f.asDouble()
		case 5:
			s.Score = f.asInt()
		case 6:
			s.Combo = f.asInt()
		case 7:
			s.SlowMo = f.asBool()
		case 8:
			s.SpikesRaised = f.asBool()
		case 9:
			s.Width = f.asInt()
		case 10:
			s.Height = f.asInt()
		case 11:
			c, err := decodeCell(f.raw)
			if err != nil {
				return err
			}
			s.Cells = append(s.Cells, c)
		case 12:
			p, err := decodePlayer(f.raw)
			if err != nil {
				return err
			}
			s.Player = p
		case 13:
			en, err := decodeEnemy(f.raw)
			if err != nil {
				return err
			}
			s.Enemies = append(s.Enemies, en)
		case 14:
			bv, err := decodeBomb(f.raw)
			if err != nil {
				return err
			}
			s.Bombs = append(s.Bombs, bv)
		case 15:
			pu, err := decodePowerUp(f.raw)
			if err != nil {
				return err
			}
			s.PowerUps = append(s.PowerUps, pu)
		case 16:
			ex, err := decodeExplosion(f.raw)
			if err != nil {
				return err
			}
			s.Explosions = append(s.Explosions, ex)
		case 17:
			w, err := decodeWarning(f.raw)
			if err != nil {
				return err
			}
			s.Warnings = append(s.Warnings, w)
		}
		return nil
	})
	return s, err
}

func decodeCell(b []byte) (core.CellView, error) {
	var c core.CellView
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			c.Type = core.CellType(f.asInt())
		case 2:
			c.Destroying = f.asBool()
		case 3:
			c.DestroyProgress = f.asDouble()
		case 4:
			c.Burning = f.asBool()
		case 5:
			c.Afterglow = f.asDouble()
		}
		return nil
	})
	return c, err
}

func decodePlayer(b []byte) (core.PlayerView, error) {
	var p core.PlayerView
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			p.X = f.asDouble()
		case 2:
			p.Y = f.asDouble()
		case 3:
			p.Direction = core.Direction(f.asInt())
		case 4:
			p.IsMoving = f.asBool()
		case 5:
			p.IsDying = f.asBool()
		case 6:
			p.Protected = f.asBool()
		case 7:
			p.Lives = f.asInt()
		case 8:
			p.ActiveBombs = f.asInt()
		case 9:
			m, err := decodeMods(f.raw)
			if err != nil {
				return err
			}
			p.Mods = m
		}
		return nil
	})
	return p, err
}

func decodeEnemy(b []byte) (core.EnemyView, error) {
	var en core.EnemyView
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			en.ID = f.asInt()
		case 2:
			en.Type = core.EnemyType(f.asInt())
		case 3:
			en.X = f.asDouble()
		case 4:
			en.Y = f.asDouble()
		case 5:
			en.Direction = core.Direction(f.asInt())
		case 6:
			en.IsDying = f.asBool()
		}
		return nil
	})
	return en, err
}

func decodeBomb(b []byte) (core.BombView, error) {
	var bv core.BombView
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			bv.X = f.asDouble()
		case 2:
			bv.Y = f.asDouble()
		case 3:
			bv.Fuse = f.asDouble()
		case 4:
			bv.Range = f.asInt()
		case 5:
			bv.Owner = f.asInt()
		case 6:
			bv.Manual = f.asBool()
		case 7:
			bv.State = core.BombState(f.asInt())
		}
		return nil
	})
	return bv, err
}

// decodePowerUp 线上的道具都是场上可拾取的
func decodePowerUp(b []byte) (core.PowerUp, error) {
	pu := core.PowerUp{Active: true}
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			pu.Pos.GridX = f.asInt()
		case 2:
			pu.Pos.GridY = f.asInt()
		case 3:
			pu.Type = core.PowerUpType(f.asInt())
		}
		return nil
	})
	return pu, err
}

func decodeExplosion(b []byte) (core.Explosion, error) {
	var ex core.Explosion
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			ex.Origin.GridX = f.asInt()
		case 2:
			ex.Origin.GridY = f.asInt()
		case 3:
			ex.Range = f.asInt()
		case 4:
			ex.Owner = f.asInt()
		case 5:
			ex.Remaining = f.asDouble()
		case 6:
			var c core.AffectedCell
			err := walk(f.raw, func(f field) error {
				switch f.num {
				case 1:
					c.Pos.GridX = f.asInt()
				case 2:
					c.Pos.GridY = f.asInt()
				case 3:
					c.Dir = core.Direction(f.asInt())
				}
				return nil
			})
			if err != nil {
				return err
			}
			ex.Cells = append(ex.Cells, c)
		}
		return nil
	})
	return ex, err
}

func decodeWarning(b []byte) (core.SpawnWarning, error) {
	var w core.SpawnWarning
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			w.Pos.GridX = f.asInt()
		case 2:
			w.Pos.GridY = f.asInt()
		case 3:
			w.Remaining = f.asDouble()
		}
		return nil
	})
	return w, err
}

// ========== Event 转换 ==========

func encodeEvent(e *encoder, ev core.Event) {
	e.varint(1, int64(ev.Kind))
	e.varint(2, ev.Frame)
	e.varint(3, int64(ev.Pos.GridX))
	e.varint(4, int64(ev.Pos.GridY))
	e.varint(5, int64(ev.Actor))
	e.varint(6, int64(ev.Value))
}

func decodeEvent(b []byte) (core.Event, error) {
	var ev core.Event
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			ev.Kind = core.EventKind(f.asInt())
		case 2:
			ev.Frame = f.asInt64()
		case 3:
			ev.Pos.GridX = f.asInt()
		case 4:
			ev.Pos.GridY = f.asInt()
		case 5:
			ev.Actor = f.asInt()
		case 6:
			ev.Value = f.asInt()
		}
		return nil
	})
	return ev, err
}

// ========== RoundResult 转换 ==========

func encodeResult(e *encoder, r core.RoundResult) {
	e.varint(1, int64(r.Level))
	e.varint(2, int64(r.Outcome))
	e.varint(3, int64(r.Score))
	e.varint(4, int64(r.Bonus))
	e.varint(5, int64(r.Stars))
	e.double(6, r.TimeRemaining)
	e.varint(7, int64(r.Lives))
	e.varint(8, int64(r.Stats.BombsUsed))
	e.varint(9, int64(r.Stats.EnemiesKilled))
	e.flag(10, r.Stats.DamageTaken)
	e.varint(11, int64(r.Stats.PowerUpsCollected))
	e.varint(12, int64(r.Stats.BlocksDestroyed))
}

// decodeResult extra 接收结算字段以外的字段
func decodeResult(b []byte, extra func(f field)) (core.RoundResult, error) {
	var r core.RoundResult
	err := walk(b, func(f field) error {
		switch f.num {
		case 1:
			r.Level = f.asInt()
		case 2:
			r.Outcome = core.Outcome(f.asInt())
		case 3:
			r.Score = f.asInt()
		case 4:
			r.Bonus = f.asInt()
		case 5:
			r.Stars = f.asInt()
		case 6:
			r.TimeRemaining = f.asDouble()
		case 7:
			r.Lives = f.asInt()
		case 8:
			r.Stats.BombsUsed = f.asInt()
		case 9:
			r.Stats.EnemiesKilled = f.asInt()
		case 10:
			r.Stats.DamageTaken = f.asBool()
		case 11:
			r.Stats.PowerUpsCollected = f.asInt()
		case 12:
			r.Stats.BlocksDestroyed = f.asInt()
		default:
			if extra != nil {
				extra(f)
			}
		}
		return nil
	})
	return r, err
}
