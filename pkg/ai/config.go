package ai

// AIConfig 定义 AI 的行为参数，用于控制 AI 的智力水平
type AIConfig struct {
	// ThinkInterval 重新选择目标的间隔（秒），值越小 AI 反应越快
	// 危险状态变化或炸弹数量变化时会立即重新思考
	ThinkInterval float64 `yaml:"think_interval"`

	// MistakeRate 随机失误率 (0.0-1.0)，值越高 AI 越容易犯错
	MistakeRate float64 `yaml:"mistake_rate"`

	// FullChainRecursion 是否启用完整连锁爆炸计算
	// 开启时 AI 会精确计算连锁爆炸，关闭时只计算一层
	FullChainRecursion bool `yaml:"full_chain_recursion"`

	// PreferBlocks 自动驾驶是否优先炸砖块而非追击敌人
	PreferBlocks bool `yaml:"prefer_blocks"`

	// ChaseRadius 追击型敌人开始追击玩家的曼哈顿距离
	ChaseRadius int `yaml:"chase_radius"`

	// WanderTime 游荡时保持同一方向的时间（秒）
	WanderTime float64 `yaml:"wander_time"`
}

// 预设配置：普通难度
var AIConfigNormal = AIConfig{
	ThinkInterval:      0.5,
	MistakeRate:        0.05, // 5% 失误率
	FullChainRecursion: false,
	PreferBlocks:       true, // 优先炸砖块开路
	ChaseRadius:        6,
	WanderTime:         0.5,
}

// 预设配置：困难难度
var AIConfigHard = AIConfig{
	ThinkInterval:      0.25,
	MistakeRate:        0.0, // 无失误
	FullChainRecursion: true,
	PreferBlocks:       false, // 敌人优先
	ChaseRadius:        10,
	WanderTime:         0.5,
}

// ConfigByName 按名称取预设，未知名称返回普通难度
func ConfigByName(name string) AIConfig {
	if name == "hard" {
		return AIConfigHard
	}
	return AIConfigNormal
}
