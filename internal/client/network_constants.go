package client

import (
	"time"

	"bombsim/pkg/core"
)

// ===== 网络参数（客户端专用）=====
const (
	// 连接与握手超时
	DialTimeout      = 5 * time.Second
	HandshakeTimeout = 10 * time.Second
	ReadTimeout      = 15 * time.Second

	// 客户端主动测延迟的间隔
	PingInterval = 2 * time.Second

	// 发送队列与事件队列长度，满时丢弃
	SendQueueSize  = 64
	EventQueueSize = 256

	// 插值缓冲延迟（毫秒）：实体渲染时间滞后于收到快照的时间
	// 60 TPS 下约滞后 3 帧
	InterpolationDelayMs    int64 = 50
	MinInterpolationDelayMs int64 = 16
	MaxInterpolationDelayMs int64 = 200

	// 每个实体最多缓存的位置样本数
	InterpolationBufferSize = 30

	// 航位推测最大时长（毫秒）：超过此时间未收到新位置则停在原地
	DeadReckoningMaxMs int64 = 150

	// 单次快照间位移超过此值视为瞬移（复活、换关），不做插值
	TeleportThreshold = 2.0 * core.TileSize
)
