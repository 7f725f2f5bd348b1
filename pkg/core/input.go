package core

// Input 表示一帧内玩家的输入（已由宿主从键盘/触屏解码）
type Input struct {
	Up       bool
	Down     bool
	Left     bool
	Right    bool
	Bomb     bool
	Detonate bool
}

// Input 位编码，网络传输与回放使用
const (
	InputUp uint8 = 1 << iota
	InputDown
	InputLeft
	InputRight
	InputBomb
	InputDetonate
)

// Bits 编码为位掩码
func (in Input) Bits() uint8 {
	var b uint8
	if in.Up {
		b |= InputUp
	}
	if in.Down {
		b |= InputDown
	}
	if in.Left {
		b |= InputLeft
	}
	if in.Right {
		b |= InputRight
	}
	if in.Bomb {
		b |= InputBomb
	}
	if in.Detonate {
		b |= InputDetonate
	}
	return b
}

// InputFromBits 从位掩码解码
func InputFromBits(b uint8) Input {
	return Input{
		Up:       b&InputUp != 0,
		Down:     b&InputDown != 0,
		Left:     b&InputLeft != 0,
		Right:    b&InputRight != 0,
		Bomb:     b&InputBomb != 0,
		Detonate: b&InputDetonate != 0,
	}
}

// Merge 合并两帧输入，服务端在一个 tick 内收到多条输入时使用
func (in Input) Merge(o Input) Input {
	return InputFromBits(in.Bits() | o.Bits())
}
