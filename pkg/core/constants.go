package core

// 地图配置
const (
	TileSize          = 32 // 每个格子的像素尺寸
	DefaultGridWidth  = 13
	DefaultGridHeight = 11
	MinGridSize       = 5 // 地图最小边长
)

// 帧率
const (
	FPS            = 60
	FixedDeltaTime = 1.0 / FPS
)

// 碰撞盒配置（像素）
const (
	PlayerWidth               = TileSize - 6 // 玩家碰撞盒宽度（留3像素边距）
	PlayerHeight              = TileSize - 6
	EnemyWidth                = TileSize - 8
	EnemyHeight               = TileSize - 8
	BodyMargin                = 1   // 碰撞检测内边距
	ContactMargin             = 4   // 玩家与敌人接触判定的内缩量
	CornerCorrectionTolerance = 8   // 拐角修正容错（像素）
	SoftAlignFactor           = 0.6 // 软对齐比例（相对本帧移动距离）
)

// PlayerOwnerID 玩家放置的炸弹使用的所有者 ID，敌人 ID 从 1 开始
const PlayerOwnerID = 0

// 随机出生点搜索的最大尝试次数
const spawnSearchAttempts = 64

// 浮点计时器判零容差
const timerEpsilon = 1e-9
