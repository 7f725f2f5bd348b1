package core

// Config 模拟参数，时间单位均为秒，速度单位为像素/秒
type Config struct {
	MaxDelta   float64        `yaml:"max_delta"`   // 单帧最大步长，防止卡顿后穿墙
	FinalLevel int            `yaml:"final_level"` // 最后一关，通关后进入 Victory
	Timing     TimingConfig   `yaml:"timing"`
	Bomb       BombConfig     `yaml:"bomb"`
	Player     PlayerConfig   `yaml:"player"`
	Combo      ComboConfig    `yaml:"combo"`
	SlowMo     SlowMoConfig   `yaml:"slowmo"`
	Punitive   PunitiveConfig `yaml:"punitive"`
	Scoring    ScoringConfig  `yaml:"scoring"`
	Spikes     SpikesConfig   `yaml:"spikes"`
}

// TimingConfig 各类延时
type TimingConfig struct {
	StartDelay           float64 `yaml:"start_delay"`
	DeathDelay           float64 `yaml:"death_delay"`
	CompleteDelay        float64 `yaml:"complete_delay"`
	ExplosionDuration    float64 `yaml:"explosion_duration"`
	AfterglowDuration    float64 `yaml:"afterglow_duration"`
	BlockDestroyDuration float64 `yaml:"block_destroy_duration"`
	EnemyDeathDuration   float64 `yaml:"enemy_death_duration"`
}

// BombConfig 炸弹参数
type BombConfig struct {
	Fuse              float64 `yaml:"fuse"`
	SlideSpeed        float64 `yaml:"slide_speed"`
	PlacementCooldown float64 `yaml:"placement_cooldown"`
	EnemyBombRange    int     `yaml:"enemy_bomb_range"`
}

// PlayerConfig 玩家初始属性与上限
type PlayerConfig struct {
	Lives               int     `yaml:"lives"`
	BaseSpeed           float64 `yaml:"base_speed"`
	SpeedStep           float64 `yaml:"speed_step"`
	MaxSpeedTier        int     `yaml:"max_speed_tier"`
	StartFireRange      int     `yaml:"start_fire_range"`
	MaxFireRange        int     `yaml:"max_fire_range"`
	StartBombs          int     `yaml:"start_bombs"`
	MaxBombs            int     `yaml:"max_bombs"`
	SpawnProtection     float64 `yaml:"spawn_protection"`
	ShieldInvincibility float64 `yaml:"shield_invincibility"`
	CurseDuration       float64 `yaml:"curse_duration"`
}

// ComboTier 连杀达到 Count 时奖励 Bonus 分
type ComboTier struct {
	Count int `yaml:"count"`
	Bonus int `yaml:"bonus"`
}

// ComboConfig 连杀窗口
type ComboConfig struct {
	Window float64     `yaml:"window"`
	Tiers  []ComboTier `yaml:"tiers"`
}

// SlowMoConfig 慢动作反馈
type SlowMoConfig struct {
	Scale        float64 `yaml:"scale"`
	Duration     float64 `yaml:"duration"`
	ComboTrigger int     `yaml:"combo_trigger"`
}

// PunitiveConfig 超时惩罚刷怪
type PunitiveConfig struct {
	Interval    float64 `yaml:"interval"`
	Warning     float64 `yaml:"warning"`
	MaxEnemies  int     `yaml:"max_enemies"`
	MinDistance int     `yaml:"min_distance"` // 与玩家的最小曼哈顿距离
}

// EfficiencyBand 用弹数不超过 MaxBombs 时奖励 Bonus 分
type EfficiencyBand struct {
	MaxBombs int `yaml:"max_bombs"`
	Bonus    int `yaml:"bonus"`
}

// ScoringConfig 结算参数
type ScoringConfig struct {
	TimeBonusPerSecond int              `yaml:"time_bonus_per_second"`
	EfficiencyBands    []EfficiencyBand `yaml:"efficiency_bands"` // 按 MaxBombs 升序
	NoDamageBonus      int              `yaml:"no_damage_bonus"`
	ExitRejectCooldown float64          `yaml:"exit_reject_cooldown"`
}

// SpikesConfig 地刺升降周期
type SpikesConfig struct {
	Down float64 `yaml:"down"`
	Up   float64 `yaml:"up"`
}

// DefaultConfig 返回默认模拟参数
func DefaultConfig() Config {
	return Config{
		MaxDelta:   0.05,
		FinalLevel: 10,
		Timing: TimingConfig{
			StartDelay:           2.0,
			DeathDelay:           3.0,
			CompleteDelay:        3.0,
			ExplosionDuration:    0.5,
			AfterglowDuration:    0.6,
			BlockDestroyDuration: 0.5,
			EnemyDeathDuration:   0.8,
		},
		Bomb: BombConfig{
			Fuse:              2.5,
			SlideSpeed:        240,
			PlacementCooldown: 0.2,
			EnemyBombRange:    2,
		},
		Player: PlayerConfig{
			Lives:               3,
			BaseSpeed:           120,
			SpeedStep:           20,
			MaxSpeedTier:        5,
			StartFireRange:      2,
			MaxFireRange:        8,
			StartBombs:          1,
			MaxBombs:            8,
			SpawnProtection:     2.0,
			ShieldInvincibility: 1.5,
			CurseDuration:       10,
		},
		Combo: ComboConfig{
			Window: 1.5,
			Tiers: []ComboTier{
				{Count: 3, Bonus: 500},
				{Count: 5, Bonus: 1500},
				{Count: 8, Bonus: 4000},
			},
		},
		SlowMo: SlowMoConfig{
			Scale:        0.35,
			Duration:     0.8,
			ComboTrigger: 5,
		},
		Punitive: PunitiveConfig{
			Interval:    5.0,
			Warning:     1.5,
			MaxEnemies:  6,
			MinDistance: 4,
		},
		Scoring: ScoringConfig{
			TimeBonusPerSecond: 10,
			EfficiencyBands: []EfficiencyBand{
				{MaxBombs: 10, Bonus: 2000},
				{MaxBombs: 20, Bonus: 1000},
				{MaxBombs: 35, Bonus: 400},
			},
			NoDamageBonus:      1000,
			ExitRejectCooldown: 2.0,
		},
		Spikes: SpikesConfig{
			Down: 2.0,
			Up:   1.0,
		},
	}
}
