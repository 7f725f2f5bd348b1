package client

import (
	"math"

	"bombsim/pkg/core"
)

// playerTrack 玩家在平滑器里的键，敌人用自身 ID
const playerTrack = -1

// sample 某一时刻的实体位置
type sample struct {
	timestamp int64
	x, y      float64
}

// track 单个实体的插值缓冲
type track struct {
	buffer    []sample
	velocityX float64 // 像素/毫秒
	velocityY float64
	seenAt    int64
}

// Smoother 对快照里的实体位置做插值与航位推测
// 快照按服务器节拍到达，渲染帧率与之不同步
type Smoother struct {
	tracks  map[int]*track
	delayMs int64
}

// NewSmoother 创建平滑器
func NewSmoother() *Smoother {
	return &Smoother{
		tracks:  make(map[int]*track),
		delayMs: InterpolationDelayMs,
	}
}

// SetInterpolationDelay 设置插值延迟（毫秒）
func (s *Smoother) SetInterpolationDelay(delayMs int64) {
	s.delayMs = min(max(delayMs, MinInterpolationDelayMs), MaxInterpolationDelayMs)
}

// InterpolationDelay 当前插值延迟（毫秒）
func (s *Smoother) InterpolationDelay() int64 {
	return s.delayMs
}

// Observe 记录一帧快照中所有实体的位置，快照里消失的敌人一并清理
func (s *Smoother) Observe(nowMs int64, snap *core.Snapshot) {
	s.add(playerTrack, nowMs, snap.Player.X, snap.Player.Y)
	for _, e := range snap.Enemies {
		s.add(e.ID, nowMs, e.X, e.Y)
	}
	for id, t := range s.tracks {
		if t.seenAt != nowMs {
			delete(s.tracks, id)
		}
	}
}

func (s *Smoother) add(id int, nowMs int64, x, y float64) {
	t, ok := s.tracks[id]
	if !ok {
		t = &track{buffer: make([]sample, 0, InterpolationBufferSize)}
		s.tracks[id] = t
	}
	t.seenAt = nowMs

	if n := len(t.buffer); n > 0 {
		last := t.buffer[n-1]
		if math.Hypot(x-last.x, y-last.y) > TeleportThreshold {
			// 复活或换关，丢弃旧轨迹
			t.buffer = t.buffer[:0]
			t.velocityX, t.velocityY = 0, 0
		} else if dt := float64(nowMs - last.timestamp); dt > 0 {
			t.velocityX = (x - last.x) / dt
			t.velocityY = (y - last.y) / dt
		}
	}

	t.buffer = append(t.buffer, sample{timestamp: nowMs, x: x, y: y})
	if len(t.buffer) > InterpolationBufferSize {
		t.buffer = t.buffer[1:]
	}
}

// Position 返回实体在 nowMs 时应渲染的位置，未知实体返回 false
func (s *Smoother) Position(id int, nowMs int64) (float64, float64, bool) {
	t, ok := s.tracks[id]
	if !ok || len(t.buffer) == 0 {
		return 0, 0, false
	}

	renderTime := nowMs - s.delayMs

	// 找到 renderTime 两侧的样本
	for i := 0; i < len(t.buffer)-1; i++ {
		prev, next := t.buffer[i], t.buffer[i+1]
		if prev.timestamp <= renderTime && next.timestamp >= renderTime {
			total := float64(next.timestamp - prev.timestamp)
			if total <= 0 {
				return next.x, next.y, true
			}
			alpha := float64(renderTime-prev.timestamp) / total
			return prev.x + (next.x-prev.x)*alpha, prev.y + (next.y-prev.y)*alpha, true
		}
	}

	first := t.buffer[0]
	if renderTime < first.timestamp {
		return first.x, first.y, true
	}

	// 样本不足，基于最后速度推测
	last := t.buffer[len(t.buffer)-1]
	ahead := renderTime - last.timestamp
	if ahead > DeadReckoningMaxMs {
		ahead = DeadReckoningMaxMs
	}
	return last.x + t.velocityX*float64(ahead), last.y + t.velocityY*float64(ahead), true
}

// Reset 清空所有轨迹
func (s *Smoother) Reset() {
	clear(s.tracks)
}
