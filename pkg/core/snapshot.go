package core

// CellView 渲染用的格子状态
type CellView struct {
	Type            CellType
	Destroying      bool
	DestroyProgress float64
	Burning         bool
	Afterglow       float64
}

// PlayerView 渲染用的玩家状态
type PlayerView struct {
	X, Y        float64
	Direction   Direction
	IsMoving    bool
	IsDying     bool
	Protected   bool
	Lives       int
	ActiveBombs int
	Mods        Modifiers
}

// EnemyView 渲染用的敌人状态
type EnemyView struct {
	ID        int
	Type      EnemyType
	X, Y      float64
	Direction Direction
	IsDying   bool
}

// BombView 渲染用的炸弹状态，X/Y 为中心像素
type BombView struct {
	X, Y   float64
	Fuse   float64
	Range  int
	Owner  int
	Manual bool
	State  BombState
}

// Snapshot 某一帧的只读副本，渲染端和网络层只读取它
type Snapshot struct {
	Frame        int64
	Level        int
	State        RoundState
	Clock        float64
	Score        int
	Combo        int
	SlowMo       bool
	SpikesRaised bool

	Width, Height int
	Cells         []CellView // 行优先

	Player     PlayerView
	Enemies    []EnemyView
	Bombs      []BombView
	PowerUps   []PowerUp
	Explosions []Explosion
	Warnings   []SpawnWarning
}

// Cell 取快照中的格子，越界返回 false
func (s *Snapshot) Cell(x, y int) (CellView, bool) {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return CellView{}, false
	}
	return s.Cells[y*s.Width+x], true
}

// Snapshot 复制当前状态
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Frame:        g.frame,
		Level:        g.Level.Level,
		State:        g.State,
		Clock:        g.Clock,
		Score:        g.Score,
		Combo:        g.Combo.Count,
		SlowMo:       g.SlowMo(),
		SpikesRaised: g.SpikesRaised,
	}
	if g.Grid == nil {
		return s
	}

	s.Width, s.Height = g.Grid.Width, g.Grid.Height
	s.Cells = make([]CellView, 0, g.Grid.Width*g.Grid.Height)
	g.Grid.Each(func(c *Cell) {
		s.Cells = append(s.Cells, CellView{
			Type:            c.Type,
			Destroying:      c.Destroying,
			DestroyProgress: c.DestroyProgress,
			Burning:         c.Burning > 0,
			Afterglow:       c.Afterglow,
		})
	})

	if p := g.Player; p != nil {
		s.Player = PlayerView{
			X:           p.X,
			Y:           p.Y,
			Direction:   p.Direction,
			IsMoving:    p.IsMoving,
			IsDying:     p.IsDying,
			Protected:   p.IsProtected(),
			Lives:       p.Lives,
			ActiveBombs: p.ActiveBombs,
			Mods:        p.Mods,
		}
	}

	for _, e := range g.Enemies {
		s.Enemies = append(s.Enemies, EnemyView{
			ID:        e.ID,
			Type:      e.Type,
			X:         e.X,
			Y:         e.Y,
			Direction: e.Direction,
			IsDying:   e.IsDying,
		})
	}

	for _, b := range g.Bombs() {
		x, y := b.Center()
		s.Bombs = append(s.Bombs, BombView{
			X:      x,
			Y:      y,
			Fuse:   b.Fuse,
			Range:  b.Range,
			Owner:  b.Owner,
			Manual: b.Manual,
			State:  b.State,
		})
	}

	s.PowerUps = g.PowerUps()

	for _, ex := range g.Explosions {
		if !ex.IsActive() {
			continue
		}
		cp := *ex
		cp.Cells = append([]AffectedCell(nil), ex.Cells...)
		s.Explosions = append(s.Explosions, cp)
	}

	s.Warnings = append(s.Warnings, g.Warnings...)
	return s
}
